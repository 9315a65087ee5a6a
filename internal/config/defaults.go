package config

import "os"

const (
	defaultConfigPath       = "~/.config/toolbox/config.toml"
	defaultDataDir          = "~/.local/share/toolbox"
	defaultLogDir           = "~/.local/share/toolbox/logs"
	defaultAPIBind          = "127.0.0.1:7490"
	defaultMaxUploadMB      = 200
	defaultJPEGQuality      = 95
	defaultMaxImagePixels   = 89_478_485
	defaultTextOrigin       = 72
	defaultTextFontSize     = 11
	defaultTextLineHeight   = 14
	defaultFFmpeg           = "ffmpeg"
	defaultFFprobe          = "ffprobe"
	defaultSoffice          = "soffice"
	defaultSweepInterval    = 3600
	defaultSweepRetention   = 60
	defaultTempPrefix       = "toolbox-"
	defaultHistoryMaxRows   = 500
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultLogRetentionDays = 14
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			TempDir: os.TempDir(),
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
		},
		Convert: Convert{
			MaxUploadMB:    defaultMaxUploadMB,
			JPEGQuality:    defaultJPEGQuality,
			MaxImagePixels: defaultMaxImagePixels,
			TextOriginX:    defaultTextOrigin,
			TextOriginY:    defaultTextOrigin,
			TextFontSize:   defaultTextFontSize,
			TextLineHeight: defaultTextLineHeight,
		},
		Tools: Tools{
			FFmpeg:  defaultFFmpeg,
			FFprobe: defaultFFprobe,
			Soffice: defaultSoffice,
		},
		Sweeper: Sweeper{
			Enabled:          true,
			IntervalSeconds:  defaultSweepInterval,
			RetentionMinutes: defaultSweepRetention,
			Prefix:           defaultTempPrefix,
		},
		History: History{
			Enabled: true,
			MaxRows: defaultHistoryMaxRows,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
