package conversion

import (
	"context"
	"log/slog"
	"os"

	"toolbox/internal/format"
	"toolbox/internal/logging"
	"toolbox/internal/services"
	"toolbox/internal/services/ffmpeg"
)

// MediaTranscoder opens media files on disk and writes transcoded copies.
type MediaTranscoder interface {
	OpenAudio(ctx context.Context, path string) (ffmpeg.Source, error)
	OpenAudioVideo(ctx context.Context, path string) (ffmpeg.Source, error)
	WriteAudio(ctx context.Context, src ffmpeg.Source, outputPath, format string) error
	WriteVideo(ctx context.Context, src ffmpeg.Source, outputPath, codec string) error
}

// MediaConverter transcodes audio and video inputs.
type MediaConverter struct {
	media  MediaTranscoder
	temp   TempFiles
	logger *slog.Logger
}

// NewMediaConverter constructs a MediaConverter.
func NewMediaConverter(media MediaTranscoder, temp TempFiles, logger *slog.Logger) *MediaConverter {
	return &MediaConverter{media: media, temp: temp, logger: logging.NewComponentLogger(logger, "media")}
}

// Convert implements Converter. The input is staged under its original
// extension because ffmpeg picks the demuxer from the file name.
func (c *MediaConverter) Convert(ctx context.Context, in Input) ([]Blob, error) {
	if in.Kind != format.AudioVideo {
		return nil, nil
	}
	ext := in.Target.Ext()
	var out []byte
	err := c.temp.WithTempFile("."+in.Ext(), func(inputPath string) error {
		if err := os.WriteFile(inputPath, in.Data, 0o600); err != nil {
			return services.Wrap(services.ErrResource, "media", "stage input", in.Name, err)
		}
		return c.temp.WithTempFile("."+ext, func(outputPath string) error {
			if err := c.transcode(ctx, in, inputPath, outputPath); err != nil {
				return err
			}
			data, err := os.ReadFile(outputPath)
			if err != nil {
				return services.Wrap(services.ErrResource, "media", "read output", in.Name, err)
			}
			out = data
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	logging.WithContext(ctx, c.logger).Debug("media transcoded",
		logging.String(logging.FieldFileName, in.Name),
		logging.Int("bytes", len(out)),
	)
	return []Blob{{Name: FileName(in.Index, ext), Data: out}}, nil
}

func (c *MediaConverter) transcode(ctx context.Context, in Input, inputPath, outputPath string) error {
	if in.Target.IsAudio() {
		src, err := c.media.OpenAudio(ctx, inputPath)
		if err != nil {
			logging.WithContext(ctx, c.logger).Debug("audio open failed, retrying as video",
				logging.String(logging.FieldFileName, in.Name),
				logging.Error(err),
			)
			src, err = c.media.OpenAudioVideo(ctx, inputPath)
			if err != nil {
				return services.Wrap(services.ErrConversionTool, "media", "open", in.Name, err)
			}
		}
		if err := c.media.WriteAudio(ctx, src, outputPath, in.Target.Format); err != nil {
			return services.Wrap(services.ErrConversionTool, "media", "write audio", in.Name, err)
		}
		return nil
	}

	src, err := c.media.OpenAudioVideo(ctx, inputPath)
	if err != nil {
		return services.Wrap(services.ErrConversionTool, "media", "open", in.Name, err)
	}
	if err := c.media.WriteVideo(ctx, src, outputPath, ffmpeg.VideoCodec); err != nil {
		return services.Wrap(services.ErrConversionTool, "media", "write video", in.Name, err)
	}
	return nil
}
