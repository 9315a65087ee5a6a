package daemon

import (
	"bytes"
	"mime/multipart"
	"testing"

	"toolbox/internal/api"
	"toolbox/internal/config"
	"toolbox/internal/conversion"
	"toolbox/internal/history"
	"toolbox/internal/logging"
	"toolbox/internal/packager"
)

func newTestDaemon(t *testing.T, cfg *config.Config) *Daemon {
	t.Helper()
	logger := logging.NewNop()
	temp := conversion.NewTempManager(cfg, logger)
	backends := conversion.NewBackends(cfg, temp)

	var opts []api.ConvertOption
	var store *history.Store
	if cfg.History.Enabled {
		var err error
		store, err = history.Open(cfg.HistoryPath())
		if err != nil {
			t.Fatalf("history.Open: %v", err)
		}
		opts = append(opts, api.WithHistory(store, cfg.History.MaxRows))
	}
	svc := api.NewConvertService(
		conversion.NewDispatcher(backends, logger),
		packager.New(backends.PDF),
		logger,
		opts...,
	)
	d, err := New(cfg, logger, svc, temp, store)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d
}

type formPart struct {
	field string
	file  string
	data  []byte
}

func field(name, value string) formPart { return formPart{field: name, data: []byte(value)} }

func file(name string, data []byte) formPart { return formPart{field: "files", file: name, data: data} }

func multipartBody(t *testing.T, parts ...formPart) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, p := range parts {
		if p.file != "" {
			fw, err := w.CreateFormFile(p.field, p.file)
			if err != nil {
				t.Fatalf("create form file: %v", err)
			}
			if _, err := fw.Write(p.data); err != nil {
				t.Fatalf("write form file: %v", err)
			}
			continue
		}
		if err := w.WriteField(p.field, string(p.data)); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return &buf, w.FormDataContentType()
}
