// Package history persists a ledger of conversion requests in SQLite.
//
// Each request handled by the daemon or the CLI records one Record with its
// target, input and output counts, artifact size, outcome, and duration. The
// ledger is trimmed to a configured number of rows so it never grows without
// bound. The store uses the pure-Go modernc.org/sqlite driver with WAL
// journaling and retries writes that hit SQLITE_BUSY.
package history
