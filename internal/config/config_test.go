package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"toolbox/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("TOOLBOX_API_TOKEN", "")
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved != filepath.Join(tempHome, ".config", "toolbox", "config.toml") {
		t.Fatalf("unexpected resolved path %q", resolved)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantData := filepath.Join(tempHome, ".local", "share", "toolbox")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.Paths.APIBind != "127.0.0.1:7490" {
		t.Fatalf("unexpected api bind: %q", cfg.Paths.APIBind)
	}
	if cfg.Convert.MaxImagePixels != 89_478_485 {
		t.Fatalf("unexpected image pixel limit: %d", cfg.Convert.MaxImagePixels)
	}
	if cfg.Convert.MaxUploadMB != 200 || cfg.MaxUploadBytes() != 200<<20 {
		t.Fatalf("unexpected upload limit: %d", cfg.Convert.MaxUploadMB)
	}
	if cfg.Convert.TextOriginX != 72 || cfg.Convert.TextOriginY != 72 {
		t.Fatalf("unexpected text origin: %v,%v", cfg.Convert.TextOriginX, cfg.Convert.TextOriginY)
	}
	if cfg.Sweeper.Prefix != "toolbox-" {
		t.Fatalf("unexpected sweeper prefix %q", cfg.Sweeper.Prefix)
	}
	if cfg.SweepRetention().Minutes() != 60 {
		t.Fatalf("unexpected sweep retention %v", cfg.SweepRetention())
	}
	if cfg.HistoryPath() != filepath.Join(wantData, "history.db") {
		t.Fatalf("unexpected history path %q", cfg.HistoryPath())
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.DataDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "toolbox.toml")

	type payload struct {
		Paths struct {
			TempDir string `toml:"temp_dir"`
			APIBind string `toml:"api_bind"`
		} `toml:"paths"`
		Convert struct {
			JPEGQuality int `toml:"jpeg_quality"`
		} `toml:"convert"`
		Tools struct {
			FFmpeg string `toml:"ffmpeg"`
		} `toml:"tools"`
	}
	custom := payload{}
	custom.Paths.TempDir = filepath.Join(tempDir, "scratch")
	custom.Paths.APIBind = "0.0.0.0:9000"
	custom.Convert.JPEGQuality = 80
	custom.Tools.FFmpeg = "/opt/ffmpeg/bin/ffmpeg"
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Paths.TempDir != filepath.Join(tempDir, "scratch") {
		t.Fatalf("unexpected temp dir %q", cfg.Paths.TempDir)
	}
	if cfg.Paths.APIBind != "0.0.0.0:9000" {
		t.Fatalf("unexpected api bind %q", cfg.Paths.APIBind)
	}
	if cfg.Convert.JPEGQuality != 80 {
		t.Fatalf("expected jpeg quality 80, got %d", cfg.Convert.JPEGQuality)
	}
	if cfg.Tools.FFmpeg != "/opt/ffmpeg/bin/ffmpeg" {
		t.Fatalf("unexpected ffmpeg binary %q", cfg.Tools.FFmpeg)
	}
	if cfg.Tools.FFprobe != "ffprobe" {
		t.Fatalf("expected default ffprobe, got %q", cfg.Tools.FFprobe)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "toolbox.toml")
	if err := os.WriteFile(configPath, []byte("[paths]\nstaging_dir = \"/tmp\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(configPath); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestAPITokenFallsBackToEnv(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("TOOLBOX_API_TOKEN", " env-token ")
	cfg, _, _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Paths.APIToken != "env-token" {
		t.Fatalf("expected token from env, got %q", cfg.Paths.APIToken)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "[sweeper]") {
		t.Fatalf("sample config missing sweeper section: %s", contents)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if cfg.Convert.MaxUploadMB != config.Default().Convert.MaxUploadMB {
		t.Fatalf("sample upload limit drifted from defaults: %d", cfg.Convert.MaxUploadMB)
	}
	if cfg.Sweeper.Prefix != config.Default().Sweeper.Prefix {
		t.Fatalf("sample sweeper prefix drifted from defaults: %q", cfg.Sweeper.Prefix)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	cfg := config.Default()
	cfg.Convert.JPEGQuality = 101
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for jpeg quality out of range")
	}

	cfg = config.Default()
	cfg.Convert.MaxImagePixels = -1
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for negative image pixel limit")
	}

	cfg = config.Default()
	cfg.Convert.TextFontSize = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for zero font size")
	}

	cfg = config.Default()
	cfg.Sweeper.IntervalSeconds = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for zero sweep interval")
	}

	cfg = config.Default()
	cfg.Sweeper.Enabled = false
	cfg.Sweeper.IntervalSeconds = 0
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled sweeper should skip interval validation: %v", err)
	}

	cfg = config.Default()
	cfg.Paths.APIBind = "nonsense"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for malformed bind address")
	}

	cfg = config.Default()
	cfg.History.MaxRows = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for zero history rows")
	}

	cfg = config.Default()
	cfg.Logging.Level = "verbose"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown log level")
	}
}
