// Package daemonctl talks to a running toolbox daemon over its HTTP API and
// builds the status views the CLI renders, falling back to local checks when
// the daemon cannot be reached.
package daemonctl
