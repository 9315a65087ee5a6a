package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"github.com/gofrs/flock"

	"toolbox/internal/api"
	"toolbox/internal/config"
	"toolbox/internal/format"
	"toolbox/internal/history"
	"toolbox/internal/logging"
	"toolbox/internal/preflight"
	"toolbox/internal/tempfs"
)

// Daemon serves conversion requests and enforces single-instance execution.
type Daemon struct {
	cfg     *config.Config
	logger  *slog.Logger
	convert *api.ConvertService
	history *history.Store
	temp    *tempfs.Manager
	sweeper *tempfs.Sweeper
	api     *apiServer

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New constructs a daemon. store may be nil when history is disabled.
func New(cfg *config.Config, logger *slog.Logger, convert *api.ConvertService, temp *tempfs.Manager, store *history.Store) (*Daemon, error) {
	if cfg == nil || convert == nil || temp == nil {
		return nil, errors.New("daemon requires config, conversion service, and temp manager")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	d := &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		convert:  convert,
		history:  store,
		temp:     temp,
		lockPath: cfg.LockPath(),
		lock:     flock.New(cfg.LockPath()),
	}
	if cfg.Sweeper.Enabled {
		d.sweeper = tempfs.NewSweeper(temp, cfg.SweepRetention(), cfg.SweepInterval(), logger)
	}
	srv, err := newAPIServer(cfg, d, logger)
	if err != nil {
		return nil, err
	}
	d.api = srv
	return d, nil
}

// Start acquires the daemon lock, launches the sweeper, and opens the API listener.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another toolbox daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	if err := d.api.start(runCtx); err != nil {
		cancel()
		_ = d.lock.Unlock()
		return fmt.Errorf("start api server: %w", err)
	}
	d.cancel = cancel

	if d.sweeper != nil {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			d.sweeper.Run(runCtx)
		}()
	}

	d.running.Store(true)
	d.logger.Info("toolbox daemon started",
		logging.String("lock", d.lockPath),
		logging.String("temp_dir", d.temp.Dir()),
		logging.Bool("sweeper_enabled", d.sweeper != nil),
	)
	return nil
}

// Stop stops background work and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.api.stop()
	d.wg.Wait()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock",
			logging.Error(err),
			logging.String(logging.FieldEventType, "lock_release_failed"),
			logging.String(logging.FieldErrorHint, "remove the lock file manually if the next start fails"),
		)
	}
	d.running.Store(false)
	d.logger.Info("toolbox daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.history != nil {
		return d.history.Close()
	}
	return nil
}

// Addr reports the bound API address, or an empty string when not listening.
func (d *Daemon) Addr() string {
	return d.api.addr()
}

// Status reports daemon runtime information.
func (d *Daemon) Status(ctx context.Context) api.DaemonStatus {
	status := api.DaemonStatus{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		LockFilePath: d.lockPath,
		Targets:      format.Supported(),
		Dependencies: api.FromDependencyStatuses(preflight.CheckSystemDeps(d.cfg)),
		Preflight:    api.FromPreflightResults(preflight.RunAll(ctx, d.cfg)),
	}
	if d.history != nil {
		status.HistoryDBPath = d.history.Path()
	}

	var stats tempfs.SweepStats
	if d.sweeper != nil {
		stats = d.sweeper.Stats()
	}
	status.Sweeper = api.FromSweepStats(d.sweeper != nil, d.temp.Dir(), d.temp.Prefix(), stats)

	counts, err := d.convert.Counts(ctx)
	if err != nil {
		d.logger.Warn("history counts unavailable",
			logging.Error(err),
			logging.String(logging.FieldEventType, "history_counts_failed"),
			logging.String(logging.FieldImpact, "status omits conversion totals"),
		)
	}
	status.Conversions = counts
	return status
}
