package daemonrun

import (
	"context"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"toolbox/internal/conversion"
	"toolbox/internal/logging"
	"toolbox/internal/packager"
	"toolbox/internal/testsupport"
)

func TestNewStackConvertsAndRecords(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	stack, err := NewStack(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("NewStack: %v", err)
	}
	t.Cleanup(func() { _ = stack.Close() })

	files := []conversion.UploadedFile{{Name: "a.png", Data: testsupport.PNG(t, 5, 5, color.White)}}
	artifact, err := stack.Convert.Convert(context.Background(), files, "pdf")
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if artifact.Name != packager.NamePDF {
		t.Fatalf("artifact name = %q", artifact.Name)
	}
	items, err := stack.Convert.History(context.Background(), 5)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(items) != 1 || items[0].Status != "succeeded" {
		t.Fatalf("history = %+v", items)
	}
}

func TestNewStackWithoutHistory(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithHistory(false))
	stack, err := NewStack(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("NewStack: %v", err)
	}
	if stack.History != nil {
		t.Fatal("expected no history store")
	}
	if _, err := os.Stat(cfg.HistoryPath()); !os.IsNotExist(err) {
		t.Fatalf("history database should not exist, stat err = %v", err)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Run(ctx, cfg, Options{LogLevel: "error"}) }()

	pidPath := filepath.Join(cfg.Paths.DataDir, "toolboxd.pid")
	deadline := time.Now().Add(5 * time.Second)
	for {
		if _, err := os.Stat(pidPath); err == nil {
			break
		}
		if time.Now().After(deadline) {
			cancel()
			t.Fatal("pid file never written")
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if _, err := os.Stat(pidPath); !os.IsNotExist(err) {
		t.Fatal("pid file should be removed on exit")
	}
	if _, err := os.Lstat(cfg.DaemonLogPath()); err != nil {
		t.Fatalf("log pointer missing: %v", err)
	}
}

func TestEnsureCurrentLogPointerReplacesExisting(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "toolboxd-1.log")
	current := filepath.Join(dir, "toolboxd.log")
	if err := os.WriteFile(target, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(current, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := ensureCurrentLogPointer(current, target); err != nil {
		t.Fatalf("ensureCurrentLogPointer: %v", err)
	}
	data, err := os.ReadFile(current)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "x" {
		t.Fatalf("pointer resolves to %q", data)
	}
}
