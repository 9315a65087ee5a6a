// Package preflight provides readiness checks for the filesystem paths and
// external tools the toolbox depends on.
//
// These checks run in two contexts:
//   - The daemon calls RunAll at startup and logs every failure, and serves
//     the same results from /api/status.
//   - The CLI "toolbox status" command prints them next to the dependency
//     table.
package preflight
