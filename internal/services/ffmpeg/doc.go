// Package ffmpeg opens uploaded media with ffprobe and transcodes it with the
// ffmpeg binary.
//
// OpenAudio accepts only audio-only inputs, OpenAudioVideo accepts inputs
// carrying a video stream. WriteAudio extracts the selected audio stream into
// an audio container and WriteVideo re-encodes video with H.264 and AAC.
package ffmpeg
