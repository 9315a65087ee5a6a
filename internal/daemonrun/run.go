package daemonrun

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"toolbox/internal/config"
	"toolbox/internal/daemon"
	"toolbox/internal/logging"
	"toolbox/internal/preflight"
)

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel    string
	Development bool
}

// Run starts the toolbox daemon and blocks until ctx is cancelled or the
// process receives SIGINT or SIGTERM.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	runID := time.Now().UTC().Format("20060102T150405.000Z")
	logPath := filepath.Join(cfg.Paths.LogDir, fmt.Sprintf("toolboxd-%s.log", runID))
	level := opts.LogLevel
	if level == "" {
		level = cfg.Logging.Level
	}
	logger, err := logging.New(logging.Options{
		Level:       level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{"stdout", logPath},
		Development: opts.Development,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	if err := ensureCurrentLogPointer(cfg.DaemonLogPath(), logPath); err != nil {
		fmt.Fprintf(os.Stderr, "warn: unable to update toolboxd.log link: %v\n", err)
	}
	pruned := logging.PruneOldLogs(logger, cfg.Paths.LogDir, "toolboxd-*.log", logPath, cfg.Logging.RetentionDays, time.Now())
	if len(pruned.Removed) > 0 {
		logger.Info("old daemon logs pruned", logging.Int("removed", len(pruned.Removed)))
	}
	logPreflight(logger, cfg)

	pidPath := filepath.Join(cfg.Paths.DataDir, "toolboxd.pid")
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	stack, err := NewStack(cfg, logger)
	if err != nil {
		logger.Error("build conversion stack", logging.Error(err))
		return err
	}
	d, err := daemon.New(cfg, logger, stack.Convert, stack.Temp, stack.History)
	if err != nil {
		_ = stack.Close()
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	if err := d.Start(signalCtx); err != nil {
		logger.Error("daemon start failed",
			logging.Error(err),
			logging.String(logging.FieldEventType, "daemon_start_failed"),
			logging.String(logging.FieldErrorHint, "check api_bind and that no other toolboxd holds the lock"),
			logging.String(logging.FieldImpact, "no conversions are served"),
		)
		return err
	}

	<-signalCtx.Done()
	logger.Info("toolbox daemon shutting down")
	return nil
}

func ensureCurrentLogPointer(current, target string) error {
	if current == "" || target == "" {
		return nil
	}
	if err := os.Remove(current); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing log pointer: %w", err)
	}
	if err := os.Symlink(target, current); err == nil {
		return nil
	}
	if err := os.Link(target, current); err != nil {
		return fmt.Errorf("link log pointer: %w", err)
	}
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}

func logPreflight(logger *slog.Logger, cfg *config.Config) {
	for _, dep := range preflight.CheckSystemDeps(cfg) {
		attrs := []logging.Attr{
			logging.String(logging.FieldEventType, "dependency_snapshot"),
			logging.String("dependency", dep.Name),
			logging.String("command", dep.Command),
			logging.Bool("available", dep.Available),
		}
		if dep.Available {
			logger.Info("dependency available", logging.Args(append(attrs, logging.String("path", dep.Path))...)...)
			continue
		}
		logging.WarnWithContext(logger, "dependency missing", "dependency_missing",
			append(attrs,
				logging.String(logging.FieldErrorHint, dep.Detail),
				logging.String(logging.FieldImpact, "conversions needing "+dep.Command+" will fail"),
			)...,
		)
	}
	for _, failed := range preflight.Failed(preflight.RunAll(context.Background(), cfg)) {
		logging.WarnWithContext(logger, "preflight check failed", "preflight_failed",
			logging.String("check", failed.Name),
			logging.String(logging.FieldErrorHint, failed.Detail),
		)
	}
}
