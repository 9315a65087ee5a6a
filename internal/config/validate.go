package config

import (
	"errors"
	"fmt"
	"net"
	"path/filepath"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateConvert(); err != nil {
		return err
	}
	if err := c.validateSweeper(); err != nil {
		return err
	}
	if err := c.validateHistory(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.TempDir) == "" {
		return errors.New("paths.temp_dir must be set")
	}
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		return errors.New("paths.data_dir must be set")
	}
	if _, _, err := net.SplitHostPort(c.Paths.APIBind); err != nil {
		return fmt.Errorf("paths.api_bind must be host:port: %w", err)
	}
	return nil
}

func (c *Config) validateConvert() error {
	if c.Convert.MaxUploadMB < 0 {
		return errors.New("convert.max_upload_mb must be positive")
	}
	if c.Convert.JPEGQuality < 1 || c.Convert.JPEGQuality > 100 {
		return errors.New("convert.jpeg_quality must be between 1 and 100")
	}
	if c.Convert.MaxImagePixels < 0 {
		return errors.New("convert.max_image_pixels must be positive")
	}
	if c.Convert.TextOriginX < 0 || c.Convert.TextOriginY < 0 {
		return errors.New("convert.text_origin_x and convert.text_origin_y must be >= 0")
	}
	if err := ensurePositiveMap(map[string]float64{
		"convert.text_font_size":   c.Convert.TextFontSize,
		"convert.text_line_height": c.Convert.TextLineHeight,
	}); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateSweeper() error {
	if !c.Sweeper.Enabled {
		return nil
	}
	if c.Sweeper.IntervalSeconds <= 0 {
		return errors.New("sweeper.interval_seconds must be positive when sweeper.enabled is true")
	}
	if c.Sweeper.RetentionMinutes <= 0 {
		return errors.New("sweeper.retention_minutes must be positive when sweeper.enabled is true")
	}
	if strings.ContainsRune(c.Sweeper.Prefix, filepath.Separator) {
		return errors.New("sweeper.prefix must not contain a path separator")
	}
	return nil
}

func (c *Config) validateHistory() error {
	if c.History.Enabled && c.History.MaxRows < 1 {
		return errors.New("history.max_rows must be >= 1 when history.enabled is true")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("logging.level %q is not recognized", c.Logging.Level)
	}
}

func ensurePositiveMap(values map[string]float64) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
