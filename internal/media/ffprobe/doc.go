// Package ffprobe runs ffprobe against audio files and decodes the JSON
// report into Result, whose helpers give the audio stream count, duration,
// and bitrate used by the ffmpeg codec.
package ffprobe
