package tempfs

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"toolbox/internal/logging"
	"toolbox/internal/services"
)

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names
}

func TestWithTempFileRemovesOnSuccess(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(dir, "", logging.NewNop())

	var seen string
	err := m.WithTempFile(".pdf", func(path string) error {
		seen = path
		if !strings.HasPrefix(filepath.Base(path), DefaultPrefix) {
			t.Fatalf("expected prefix on %q", path)
		}
		if filepath.Ext(path) != ".pdf" {
			t.Fatalf("expected suffix preserved on %q", path)
		}
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("expected file to exist inside body: %v", err)
		}
		return os.WriteFile(path, []byte("data"), 0o600)
	})
	if err != nil {
		t.Fatalf("WithTempFile returned error: %v", err)
	}
	if _, err := os.Stat(seen); !os.IsNotExist(err) {
		t.Fatalf("expected temp file removed, stat err=%v", err)
	}
	if names := listDir(t, dir); len(names) != 0 {
		t.Fatalf("expected empty dir, found %v", names)
	}
}

func TestWithTempFileRemovesOnError(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(dir, "", logging.NewNop())
	boom := errors.New("boom")

	err := m.WithTempFile(".mp3", func(string) error { return boom })
	if !errors.Is(err, boom) {
		t.Fatalf("expected body error, got %v", err)
	}
	if names := listDir(t, dir); len(names) != 0 {
		t.Fatalf("expected empty dir, found %v", names)
	}
}

func TestWithTempFileRemovesOnPanic(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(dir, "", logging.NewNop())

	func() {
		defer func() {
			if recover() == nil {
				t.Fatal("expected panic to propagate")
			}
		}()
		_ = m.WithTempFile(".txt", func(string) error { panic("kaboom") })
	}()
	if names := listDir(t, dir); len(names) != 0 {
		t.Fatalf("expected empty dir after panic, found %v", names)
	}
}

func TestWithTempFileToleratesBodyRemoval(t *testing.T) {
	m := NewManager(t.TempDir(), "", logging.NewNop())
	err := m.WithTempFile(".docx", func(path string) error { return os.Remove(path) })
	if err != nil {
		t.Fatalf("expected vanished file to be tolerated, got %v", err)
	}
}

func TestNestedTempFilesAreDistinct(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(dir, "job-", logging.NewNop())
	err := m.WithTempFile(".pdf", func(in string) error {
		return m.WithTempFile(".docx", func(out string) error {
			if in == out {
				t.Fatal("expected distinct paths")
			}
			if !strings.HasPrefix(filepath.Base(out), "job-") {
				t.Fatalf("expected custom prefix on %q", out)
			}
			return nil
		})
	})
	if err != nil {
		t.Fatalf("nested WithTempFile returned error: %v", err)
	}
	if names := listDir(t, dir); len(names) != 0 {
		t.Fatalf("expected empty dir, found %v", names)
	}
}

func TestWithTempFileRejectsSeparatorInSuffix(t *testing.T) {
	m := NewManager(t.TempDir(), "", logging.NewNop())
	err := m.WithTempFile("/../escape", func(string) error { return nil })
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestWithTempFileReportsUnavailableBase(t *testing.T) {
	parent := t.TempDir()
	blocker := filepath.Join(parent, "file")
	if err := os.WriteFile(blocker, nil, 0o600); err != nil {
		t.Fatalf("write blocker: %v", err)
	}
	m := NewManager(filepath.Join(blocker, "sub"), "", logging.NewNop())
	called := false
	err := m.WithTempFile(".pdf", func(string) error { called = true; return nil })
	if !errors.Is(err, services.ErrResource) {
		t.Fatalf("expected resource error, got %v", err)
	}
	if called {
		t.Fatal("body should not run when the file cannot be created")
	}
}
