// Package api defines the conversion service and the wire-format types shared
// by the HTTP daemon and the CLI. It translates internal history records,
// dependency checks, and sweeper statistics into transport-friendly DTOs so
// consumers never couple to internal types.
//
// # Key Types
//
// ConvertService: runs one request end to end (dispatch, package, record
// history) and returns the finished artifact.
//
// ConversionRecord: transport representation of a history ledger row.
//
// DaemonStatus: aggregated runtime information including dependencies,
// preflight checks, and sweeper statistics.
//
// ErrorResponse: the {"error": "..."} body returned for every failure.
//
// # Design Notes
//
// DTOs use camelCase JSON tags. Timestamps use RFC3339 with milliseconds.
// Durations are reported in milliseconds.
package api
