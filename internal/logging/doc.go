// Package logging assembles structured slog loggers and formatting helpers used
// across the toolbox daemon and CLI.
//
// It owns the console/JSON handlers, centralizes level and output plumbing,
// and exposes context-aware helpers so converter code can tag log lines with
// request IDs, batch positions, and target formats. The package also provides
// a no-op logger for tests and wiring code that cannot fail, plus retention
// pruning for the daemon log directory.
package logging
