package main

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"toolbox/internal/config"
	"toolbox/internal/daemon"
	"toolbox/internal/daemonrun"
	"toolbox/internal/logging"
	"toolbox/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	apiAddr    string
}

// setupCLITestEnv writes a config file for a fresh set of directories. When
// withDaemon is set a daemon is started on a loopback port; otherwise apiAddr
// names a port nothing listens on.
func setupCLITestEnv(t *testing.T, withDaemon bool, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()
	cfg := testsupport.NewConfig(t, opts...)
	env := &cliTestEnv{cfg: cfg}

	if withDaemon {
		stack, err := daemonrun.NewStack(cfg, logging.NewNop())
		if err != nil {
			t.Fatalf("NewStack: %v", err)
		}
		d, err := daemon.New(cfg, logging.NewNop(), stack.Convert, stack.Temp, stack.History)
		if err != nil {
			t.Fatalf("daemon.New: %v", err)
		}
		ctx, cancel := context.WithCancel(context.Background())
		if err := d.Start(ctx); err != nil {
			cancel()
			t.Fatalf("daemon.Start: %v", err)
		}
		t.Cleanup(func() {
			cancel()
			_ = d.Close()
		})
		env.apiAddr = d.Addr()
	} else {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			t.Fatalf("listen: %v", err)
		}
		env.apiAddr = ln.Addr().String()
		_ = ln.Close()
	}

	env.configPath = filepath.Join(testsupport.BaseDir(cfg), "toolbox.toml")
	writeTestConfig(t, env.configPath, cfg, env.apiAddr)
	return env
}

func (e *cliTestEnv) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	return runCLI(t, args, e.configPath)
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config, apiBind string) {
	t.Helper()
	content := fmt.Sprintf(`[paths]
temp_dir = %q
data_dir = %q
log_dir = %q
api_bind = %q
api_token = %q

[convert]
max_upload_mb = %d

[history]
enabled = %t

[logging]
level = "error"
`,
		cfg.Paths.TempDir,
		cfg.Paths.DataDir,
		cfg.Paths.LogDir,
		apiBind,
		cfg.Paths.APIToken,
		cfg.Convert.MaxUploadMB,
		cfg.History.Enabled,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
