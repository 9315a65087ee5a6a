package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeConvert()
	c.normalizeTools()
	c.normalizeSweeper()
	c.normalizeHistory()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.TempDir) == "" {
		c.Paths.TempDir = os.TempDir()
	}
	if c.Paths.TempDir, err = expandPath(c.Paths.TempDir); err != nil {
		return fmt.Errorf("paths.temp_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	c.Paths.APIToken = strings.TrimSpace(c.Paths.APIToken)
	if c.Paths.APIToken == "" {
		if value, ok := os.LookupEnv("TOOLBOX_API_TOKEN"); ok {
			c.Paths.APIToken = strings.TrimSpace(value)
		}
	}
	return nil
}

func (c *Config) normalizeConvert() {
	if c.Convert.MaxUploadMB == 0 {
		c.Convert.MaxUploadMB = defaultMaxUploadMB
	}
	if c.Convert.JPEGQuality == 0 {
		c.Convert.JPEGQuality = defaultJPEGQuality
	}
	if c.Convert.MaxImagePixels == 0 {
		c.Convert.MaxImagePixels = defaultMaxImagePixels
	}
	if c.Convert.TextFontSize == 0 {
		c.Convert.TextFontSize = defaultTextFontSize
	}
	if c.Convert.TextLineHeight == 0 {
		c.Convert.TextLineHeight = defaultTextLineHeight
	}
}

func (c *Config) normalizeTools() {
	c.Tools.FFmpeg = strings.TrimSpace(c.Tools.FFmpeg)
	if c.Tools.FFmpeg == "" {
		c.Tools.FFmpeg = defaultFFmpeg
	}
	c.Tools.FFprobe = strings.TrimSpace(c.Tools.FFprobe)
	if c.Tools.FFprobe == "" {
		c.Tools.FFprobe = defaultFFprobe
	}
	c.Tools.Soffice = strings.TrimSpace(c.Tools.Soffice)
	if c.Tools.Soffice == "" {
		c.Tools.Soffice = defaultSoffice
	}
}

func (c *Config) normalizeSweeper() {
	c.Sweeper.Prefix = strings.TrimSpace(c.Sweeper.Prefix)
	if c.Sweeper.Prefix == "" {
		c.Sweeper.Prefix = defaultTempPrefix
	}
}

func (c *Config) normalizeHistory() {
	if c.History.MaxRows == 0 {
		c.History.MaxRows = defaultHistoryMaxRows
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
