package daemonrun

import (
	"fmt"
	"log/slog"

	"toolbox/internal/api"
	"toolbox/internal/config"
	"toolbox/internal/conversion"
	"toolbox/internal/history"
	"toolbox/internal/packager"
	"toolbox/internal/tempfs"
)

// Stack is the conversion pipeline shared by the daemon and the CLI.
type Stack struct {
	Temp    *tempfs.Manager
	History *history.Store
	Convert *api.ConvertService
}

// NewStack wires production backends, the dispatcher, the packager, and,
// when enabled, the history ledger.
func NewStack(cfg *config.Config, logger *slog.Logger) (*Stack, error) {
	temp := conversion.NewTempManager(cfg, logger)
	backends := conversion.NewBackends(cfg, temp)

	stack := &Stack{Temp: temp}
	var opts []api.ConvertOption
	if cfg.History.Enabled {
		store, err := history.Open(cfg.HistoryPath())
		if err != nil {
			return nil, fmt.Errorf("open history: %w", err)
		}
		stack.History = store
		opts = append(opts, api.WithHistory(store, cfg.History.MaxRows))
	}
	stack.Convert = api.NewConvertService(
		conversion.NewDispatcher(backends, logger),
		packager.New(backends.PDF),
		logger,
		opts...,
	)
	return stack, nil
}

// Close releases the history ledger.
func (s *Stack) Close() error {
	if s == nil || s.History == nil {
		return nil
	}
	return s.History.Close()
}
