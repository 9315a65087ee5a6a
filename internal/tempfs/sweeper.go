package tempfs

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"toolbox/internal/logging"
)

// SweepResult contains the outcome of a sweep pass.
type SweepResult struct {
	Removed []string
	Errors  []CleanupError
}

// CleanupError pairs a path with its cleanup error.
type CleanupError struct {
	Path  string
	Error error
}

// SweepStats summarises sweeper activity for status reporting.
type SweepStats struct {
	LastRun      time.Time
	Passes       int
	TotalRemoved int
	LastErrors   int
}

// Sweeper removes prefixed scratch entries older than a retention window.
type Sweeper struct {
	dir       string
	prefix    string
	retention time.Duration
	interval  time.Duration
	logger    *slog.Logger
	now       func() time.Time

	mu    sync.Mutex
	stats SweepStats
}

// NewSweeper constructs a sweeper for the manager's directory and prefix.
func NewSweeper(m *Manager, retention, interval time.Duration, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		dir:       m.Dir(),
		prefix:    m.Prefix(),
		retention: retention,
		interval:  interval,
		logger:    logging.NewComponentLogger(logger, "sweeper"),
		now:       time.Now,
	}
}

// Sweep performs a single pass. Entries that vanish mid-pass are ignored.
func (s *Sweeper) Sweep(ctx context.Context) SweepResult {
	result := SweepResult{}
	dir := strings.TrimSpace(s.dir)
	if dir == "" || s.prefix == "" {
		return result
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			result.Errors = append(result.Errors, CleanupError{Path: dir, Error: err})
		}
		s.record(result)
		return result
	}

	cutoff := s.now().Add(-s.retention)
	for _, entry := range entries {
		if ctx.Err() != nil {
			break
		}
		if !strings.HasPrefix(entry.Name(), s.prefix) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		info, err := entry.Info()
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				result.Errors = append(result.Errors, CleanupError{Path: path, Error: err})
			}
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.RemoveAll(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			result.Errors = append(result.Errors, CleanupError{Path: path, Error: err})
			logging.WarnWithContext(s.logger, "failed to remove orphaned temp entry", "temp_sweep_failed",
				logging.String("path", path),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check temp_dir permissions"),
				logging.String(logging.FieldImpact, "disk space not reclaimed"),
			)
			continue
		}
		result.Removed = append(result.Removed, path)
		s.logger.Info("removed orphaned temp entry",
			logging.String("path", path),
			logging.Duration("age", s.now().Sub(info.ModTime())),
			logging.String(logging.FieldEventType, "temp_swept"),
		)
	}

	s.record(result)
	return result
}

// Run sweeps once immediately and then on every interval tick until ctx is
// cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	s.Sweep(ctx)
	if s.interval <= 0 {
		return
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Stats returns a snapshot of sweeper activity.
func (s *Sweeper) Stats() SweepStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

func (s *Sweeper) record(result SweepResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats.LastRun = s.now()
	s.stats.Passes++
	s.stats.TotalRemoved += len(result.Removed)
	s.stats.LastErrors = len(result.Errors)
}

// EntryInfo describes a scratch entry currently on disk.
type EntryInfo struct {
	Name    string
	Path    string
	ModTime time.Time
	Size    int64
	IsDir   bool
}

// ListEntries returns the prefixed scratch entries in dir with their sizes.
func ListEntries(dir, prefix string) ([]EntryInfo, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" || prefix == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var out []EntryInfo
	for _, entry := range entries {
		if !strings.HasPrefix(entry.Name(), prefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		size := info.Size()
		if entry.IsDir() {
			size = treeSize(path)
		}
		out = append(out, EntryInfo{
			Name:    entry.Name(),
			Path:    path,
			ModTime: info.ModTime(),
			Size:    size,
			IsDir:   entry.IsDir(),
		})
	}
	return out, nil
}

func treeSize(path string) int64 {
	var size int64
	_ = filepath.WalkDir(path, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			if info, err := d.Info(); err == nil {
				size += info.Size()
			}
		}
		return nil
	})
	return size
}
