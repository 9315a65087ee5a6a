package tempfs

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"toolbox/internal/logging"
	"toolbox/internal/services"
)

// DefaultPrefix marks scratch entries owned by this process family.
const DefaultPrefix = "toolbox-"

// Manager creates scratch files under a base directory.
type Manager struct {
	dir    string
	prefix string
	logger *slog.Logger
}

// NewManager constructs a manager rooted at dir. An empty dir selects the OS
// temp directory and an empty prefix selects DefaultPrefix.
func NewManager(dir, prefix string, logger *slog.Logger) *Manager {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		dir = os.TempDir()
	}
	if strings.TrimSpace(prefix) == "" {
		prefix = DefaultPrefix
	}
	return &Manager{dir: dir, prefix: prefix, logger: logging.NewComponentLogger(logger, "tempfs")}
}

// Dir returns the base directory scratch entries are created in.
func (m *Manager) Dir() string { return m.dir }

// Prefix returns the name prefix stamped on every scratch entry.
func (m *Manager) Prefix() string { return m.prefix }

// WithTempFile creates an empty file whose name ends in suffix, invokes body
// with its path, and deletes the file afterwards whether body succeeds,
// fails, or panics. The file may be replaced or removed by body.
func (m *Manager) WithTempFile(suffix string, body func(path string) error) (err error) {
	path, err := m.createFile(suffix)
	if err != nil {
		return err
	}
	defer func() {
		if rmErr := m.remove(path); rmErr != nil {
			err = errors.Join(err, rmErr)
		}
	}()
	return body(path)
}

func (m *Manager) createFile(suffix string) (string, error) {
	if strings.ContainsRune(suffix, filepath.Separator) {
		return "", services.Wrap(services.ErrValidation, "tempfs", "create file", fmt.Sprintf("suffix %q contains a path separator", suffix), nil)
	}
	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return "", services.Wrap(services.ErrResource, "tempfs", "create file", "base directory unavailable", err)
	}
	path := filepath.Join(m.dir, m.prefix+uuid.NewString()+suffix)
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return "", services.Wrap(services.ErrResource, "tempfs", "create file", "", err)
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(path)
		return "", services.Wrap(services.ErrResource, "tempfs", "create file", "", err)
	}
	return path, nil
}

func (m *Manager) remove(path string) error {
	err := os.Remove(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	logging.WarnWithContext(m.logger, "temp entry removal failed", "temp_cleanup_failed",
		logging.String("path", path),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check temp_dir permissions"),
		logging.String(logging.FieldImpact, "entry left for the sweeper"),
	)
	return services.Wrap(services.ErrResource, "tempfs", "remove", path, err)
}
