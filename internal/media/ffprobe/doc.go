// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Stream: individual audio/video stream properties
//
// Inspect executes ffprobe and returns the parsed Result. The media
// transcoder uses the stream helpers to decide whether an upload is an
// audio-only file or a file carrying a video track.
package ffprobe
