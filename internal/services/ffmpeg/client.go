package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"toolbox/internal/media/ffprobe"
	"toolbox/internal/services"
)

var commandContext = exec.CommandContext

var inspect = ffprobe.Inspect

// Encoder settings for video targets.
const (
	VideoCodec    = "libx264"
	VideoPreset   = "medium"
	VideoCRF      = "23"
	VideoPixFmt   = "yuv420p"
	AudioCodec    = "aac"
	AudioBitrate  = "192k"
	FastStartFlag = "+faststart"
)

// ErrNoStream marks inputs lacking the stream a call requires.
var ErrNoStream = errors.New("required stream missing")

// Source is an opened media input. Stream indexes are absolute ffprobe
// indexes, -1 when absent.
type Source struct {
	Path        string
	AudioStream int
	VideoStream int
	Duration    float64
}

// HasAudio reports whether the source carries an audio stream.
func (s Source) HasAudio() bool { return s.AudioStream >= 0 }

// HasVideo reports whether the source carries a video stream.
func (s Source) HasVideo() bool { return s.VideoStream >= 0 }

// Transcoder defines media transcoding behaviour.
type Transcoder interface {
	OpenAudio(ctx context.Context, path string) (Source, error)
	OpenAudioVideo(ctx context.Context, path string) (Source, error)
	WriteAudio(ctx context.Context, src Source, outputPath, format string) error
	WriteVideo(ctx context.Context, src Source, outputPath, codec string) error
}

// Option configures the CLI client.
type Option func(*CLI)

// WithBinaries overrides the ffmpeg and ffprobe executables.
func WithBinaries(ffmpegBinary, ffprobeBinary string) Option {
	return func(c *CLI) {
		if ffmpegBinary != "" {
			c.ffmpeg = ffmpegBinary
		}
		if ffprobeBinary != "" {
			c.ffprobe = ffprobeBinary
		}
	}
}

// CLI wraps the ffmpeg and ffprobe binaries.
type CLI struct {
	ffmpeg  string
	ffprobe string
}

// NewCLI constructs a CLI client using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{ffmpeg: "ffmpeg", ffprobe: "ffprobe"}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// OpenAudio probes path and succeeds only when it has audio and no video.
func (c *CLI) OpenAudio(ctx context.Context, path string) (Source, error) {
	src, err := c.probe(ctx, path)
	if err != nil {
		return Source{}, err
	}
	if src.HasVideo() {
		return Source{}, services.Wrap(services.ErrUnsupportedSource, "ffmpeg", "open audio", "input has a video stream", ErrNoStream)
	}
	if !src.HasAudio() {
		return Source{}, services.Wrap(services.ErrUnsupportedSource, "ffmpeg", "open audio", "input has no audio stream", ErrNoStream)
	}
	return src, nil
}

// OpenAudioVideo probes path and succeeds when it has a video stream. The
// audio stream is optional.
func (c *CLI) OpenAudioVideo(ctx context.Context, path string) (Source, error) {
	src, err := c.probe(ctx, path)
	if err != nil {
		return Source{}, err
	}
	if !src.HasVideo() {
		return Source{}, services.Wrap(services.ErrUnsupportedSource, "ffmpeg", "open video", "input has no video stream", ErrNoStream)
	}
	return src, nil
}

// WriteAudio extracts the source's audio stream into outputPath in format
// (mp3, wav, or ogg).
func (c *CLI) WriteAudio(ctx context.Context, src Source, outputPath, format string) error {
	if !src.HasAudio() {
		return services.Wrap(services.ErrUnsupportedSource, "ffmpeg", "write audio", "input has no audio stream", ErrNoStream)
	}
	codecArgs, err := audioCodecArgs(format)
	if err != nil {
		return err
	}
	args := baseArgs(src.Path)
	args = append(args, "-map", "0:"+strconv.Itoa(src.AudioStream), "-vn")
	args = append(args, codecArgs...)
	args = append(args, outputPath)
	return c.run(ctx, "write audio", args)
}

// WriteVideo re-encodes the source's video stream, plus its audio stream when
// present, into outputPath using the given video codec.
func (c *CLI) WriteVideo(ctx context.Context, src Source, outputPath, codec string) error {
	if !src.HasVideo() {
		return services.Wrap(services.ErrUnsupportedSource, "ffmpeg", "write video", "input has no video stream", ErrNoStream)
	}
	if strings.TrimSpace(codec) == "" {
		codec = VideoCodec
	}
	args := baseArgs(src.Path)
	args = append(args, "-map", "0:"+strconv.Itoa(src.VideoStream))
	if src.HasAudio() {
		args = append(args, "-map", "0:"+strconv.Itoa(src.AudioStream))
	}
	args = append(args,
		"-c:v", codec,
		"-preset", VideoPreset,
		"-crf", VideoCRF,
		"-pix_fmt", VideoPixFmt,
	)
	if src.HasAudio() {
		args = append(args, "-c:a", AudioCodec, "-b:a", AudioBitrate)
	}
	args = append(args, "-movflags", FastStartFlag, outputPath)
	return c.run(ctx, "write video", args)
}

func (c *CLI) probe(ctx context.Context, path string) (Source, error) {
	result, err := inspect(ctx, c.ffprobe, path)
	if err != nil {
		return Source{}, services.Wrap(services.ErrConversionTool, "ffmpeg", "probe", "", err)
	}
	src := Source{Path: path, AudioStream: -1, VideoStream: -1, Duration: result.DurationSeconds()}
	if stream, ok := result.FirstAudio(); ok {
		src.AudioStream = stream.Index
	}
	if stream, ok := result.FirstVideo(); ok {
		src.VideoStream = stream.Index
	}
	return src, nil
}

func (c *CLI) run(ctx context.Context, op string, args []string) error {
	cmd := commandContext(ctx, c.ffmpeg, args...) //nolint:gosec
	output, err := cmd.CombinedOutput()
	if err != nil {
		return services.Wrap(services.ErrConversionTool, "ffmpeg", op, fmt.Sprintf("ffmpeg failed: %s", strings.TrimSpace(string(output))), err)
	}
	return nil
}

func baseArgs(input string) []string {
	return []string{"-hide_banner", "-nostdin", "-loglevel", "error", "-y", "-i", input}
}

func audioCodecArgs(format string) ([]string, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "mp3":
		return []string{"-c:a", "libmp3lame", "-q:a", "2"}, nil
	case "wav":
		return []string{"-c:a", "pcm_s16le"}, nil
	case "ogg":
		return []string{"-c:a", "libvorbis", "-q:a", "5"}, nil
	default:
		return nil, services.Wrap(services.ErrUnsupportedTarget, "ffmpeg", "write audio", fmt.Sprintf("unsupported audio format %q", format), nil)
	}
}

var _ Transcoder = (*CLI)(nil)
