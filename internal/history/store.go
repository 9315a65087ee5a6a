package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Status values recorded for a conversion.
const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// Record is one ledger row.
type Record struct {
	ID            int64
	RequestID     string
	TargetFormat  string
	Family        string
	InputCount    int
	OutputCount   int
	SkippedCount  int
	ArtifactName  string
	ArtifactBytes int64
	Status        string
	ErrorKind     string
	ErrorMessage  string
	Duration      time.Duration
	CreatedAt     time.Time
}

// Store manages ledger persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

// Open initializes or connects to the ledger at path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("history path required")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path, now: time.Now}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// Record inserts rec and returns it with ID and CreatedAt populated.
func (s *Store) Record(ctx context.Context, rec Record) (Record, error) {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now().UTC()
	}
	if rec.Status == "" {
		rec.Status = StatusSucceeded
	}
	err := retryOnBusy(ctx, func() error {
		res, err := s.db.ExecContext(ctx, `INSERT INTO conversions (
			request_id, target_format, family, input_count, output_count, skipped_count,
			artifact_name, artifact_bytes, status, error_kind, error_message, duration_ms, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.RequestID, rec.TargetFormat, rec.Family, rec.InputCount, rec.OutputCount, rec.SkippedCount,
			rec.ArtifactName, rec.ArtifactBytes, rec.Status, rec.ErrorKind, rec.ErrorMessage,
			rec.Duration.Milliseconds(), rec.CreatedAt.UTC().Format(time.RFC3339Nano),
		)
		if err != nil {
			return err
		}
		rec.ID, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return Record{}, fmt.Errorf("insert conversion: %w", err)
	}
	return rec, nil
}

// List returns up to limit records, newest first. A limit <= 0 returns all.
func (s *Store) List(ctx context.Context, limit int) ([]Record, error) {
	query := `SELECT id, request_id, target_format, family, input_count, output_count, skipped_count,
		artifact_name, artifact_bytes, status, error_kind, error_message, duration_ms, created_at
		FROM conversions ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list conversions: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			rec       Record
			durMS     int64
			createdAt string
		)
		if err := rows.Scan(&rec.ID, &rec.RequestID, &rec.TargetFormat, &rec.Family, &rec.InputCount,
			&rec.OutputCount, &rec.SkippedCount, &rec.ArtifactName, &rec.ArtifactBytes, &rec.Status,
			&rec.ErrorKind, &rec.ErrorMessage, &durMS, &createdAt); err != nil {
			return nil, fmt.Errorf("scan conversion: %w", err)
		}
		rec.Duration = time.Duration(durMS) * time.Millisecond
		if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			rec.CreatedAt = ts
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate conversions: %w", err)
	}
	return records, nil
}

// Prune keeps the newest keep rows and deletes the rest, returning the
// number removed. keep <= 0 disables pruning.
func (s *Store) Prune(ctx context.Context, keep int) (int64, error) {
	if keep <= 0 {
		return 0, nil
	}
	var removed int64
	err := retryOnBusy(ctx, func() error {
		res, err := s.db.ExecContext(ctx,
			"DELETE FROM conversions WHERE id NOT IN (SELECT id FROM conversions ORDER BY id DESC LIMIT ?)", keep)
		if err != nil {
			return err
		}
		removed, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("prune conversions: %w", err)
	}
	return removed, nil
}

// Counts returns the number of succeeded and failed conversions on record.
func (s *Store) Counts(ctx context.Context) (succeeded, failed int, err error) {
	rows, err := s.db.QueryContext(ctx, "SELECT status, COUNT(1) FROM conversions GROUP BY status")
	if err != nil {
		return 0, 0, fmt.Errorf("count conversions: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return 0, 0, fmt.Errorf("scan count: %w", err)
		}
		switch status {
		case StatusSucceeded:
			succeeded = n
		case StatusFailed:
			failed = n
		}
	}
	return succeeded, failed, rows.Err()
}
