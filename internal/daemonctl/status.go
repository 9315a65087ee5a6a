package daemonctl

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/gofrs/flock"

	"toolbox/internal/api"
	"toolbox/internal/config"
	"toolbox/internal/format"
	"toolbox/internal/history"
	"toolbox/internal/preflight"
	"toolbox/internal/tempfs"
)

// Snapshot is a daemon status plus how it was obtained.
type Snapshot struct {
	Status api.DaemonStatus
	// Reachable is true when Status came from the daemon API.
	Reachable bool
	// LockHeld is true when some process holds the daemon lock.
	LockHeld bool
}

// BuildStatusSnapshot asks the daemon for its status and falls back to local
// dependency, preflight, and history checks when it cannot be reached.
func BuildStatusSnapshot(ctx context.Context, client *Client, cfg *config.Config) (Snapshot, error) {
	if cfg == nil {
		return Snapshot{}, errors.New("configuration not available")
	}

	if client != nil {
		queryCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		status, err := client.Status(queryCtx)
		cancel()
		if err == nil {
			return Snapshot{Status: status, Reachable: true, LockHeld: status.Running}, nil
		}
		if !IsAPIUnavailable(err) {
			return Snapshot{}, err
		}
	}

	status := api.DaemonStatus{
		LockFilePath: cfg.LockPath(),
		Targets:      format.Supported(),
		Dependencies: api.FromDependencyStatuses(preflight.CheckSystemDeps(cfg)),
		Preflight:    api.FromPreflightResults(preflight.RunAll(ctx, cfg)),
		Sweeper:      api.FromSweepStats(cfg.Sweeper.Enabled, cfg.Paths.TempDir, cfg.Sweeper.Prefix, tempfs.SweepStats{}),
	}
	if cfg.History.Enabled {
		status.HistoryDBPath = cfg.HistoryPath()
		if counts, err := localCounts(ctx, cfg); err == nil {
			status.Conversions = counts
		}
	}
	return Snapshot{Status: status, LockHeld: LockHeld(cfg.LockPath())}, nil
}

// LockHeld reports whether another process holds the daemon lock at path.
func LockHeld(path string) bool {
	if _, err := os.Stat(path); err != nil {
		return false
	}
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return false
	}
	if ok {
		_ = lock.Unlock()
		return false
	}
	return true
}

// LocalConversions reads the history ledger directly. A missing database
// yields an empty list.
func LocalConversions(ctx context.Context, cfg *config.Config, limit int) ([]api.ConversionRecord, error) {
	store, err := openExistingHistory(cfg)
	if err != nil || store == nil {
		return []api.ConversionRecord{}, err
	}
	defer store.Close()
	records, err := store.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	return api.FromHistoryRecords(records), nil
}

func localCounts(ctx context.Context, cfg *config.Config) (api.ConversionCounts, error) {
	store, err := openExistingHistory(cfg)
	if err != nil || store == nil {
		return api.ConversionCounts{}, err
	}
	defer store.Close()
	ok, failed, err := store.Counts(ctx)
	if err != nil {
		return api.ConversionCounts{}, err
	}
	return api.ConversionCounts{Succeeded: ok, Failed: failed}, nil
}

func openExistingHistory(cfg *config.Config) (*history.Store, error) {
	path := cfg.HistoryPath()
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return history.Open(path)
}
