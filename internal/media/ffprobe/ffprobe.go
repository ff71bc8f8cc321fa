package ffprobe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// probeArgs limits ffprobe to the audio streams and the few fields the
// codec needs.
var probeArgs = []string{
	"-v", "error", "-hide_banner",
	"-select_streams", "a",
	"-show_entries", "format=format_name,duration,bit_rate:stream=codec_name,codec_type,duration,sample_rate,channels",
	"-of", "json",
}

// Result is the decoded ffprobe report for one file.
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

// Stream is one audio stream. Numeric fields arrive as strings from ffprobe.
type Stream struct {
	CodecName  string `json:"codec_name"`
	CodecType  string `json:"codec_type"`
	Duration   string `json:"duration"`
	SampleRate string `json:"sample_rate"`
	Channels   int    `json:"channels"`
}

type Format struct {
	FormatName string `json:"format_name"`
	Duration   string `json:"duration"`
	BitRate    string `json:"bit_rate"`
}

// Inspect runs ffprobe on path. An empty binary means "ffprobe" on PATH.
func Inspect(ctx context.Context, binary, path string) (Result, error) {
	if strings.TrimSpace(path) == "" {
		return Result{}, errors.New("ffprobe: empty path")
	}
	if binary = strings.TrimSpace(binary); binary == "" {
		binary = "ffprobe"
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, binary, append(append([]string{}, probeArgs...), "--", path)...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if detail := strings.TrimSpace(stderr.String()); detail != "" {
			return Result{}, fmt.Errorf("ffprobe %s: %w: %s", path, err, detail)
		}
		return Result{}, fmt.Errorf("ffprobe %s: %w", path, err)
	}
	return Parse(stdout.Bytes())
}

// Parse decodes ffprobe JSON output.
func Parse(data []byte) (Result, error) {
	var result Result
	if err := json.Unmarshal(data, &result); err != nil {
		return Result{}, fmt.Errorf("ffprobe: decode output: %w", err)
	}
	return result, nil
}

// AudioStreamCount counts audio streams. Streams without a codec_type are
// counted too, since -select_streams a already filtered them.
func (r Result) AudioStreamCount() int {
	n := 0
	for _, s := range r.Streams {
		if s.CodecType == "" || strings.EqualFold(s.CodecType, "audio") {
			n++
		}
	}
	return n
}

// DurationSeconds prefers the container duration and falls back to the
// longest audio stream. It is 0 when absent and NaN when malformed.
func (r Result) DurationSeconds() float64 {
	if strings.TrimSpace(r.Format.Duration) != "" {
		return number(r.Format.Duration)
	}
	var longest float64
	for _, s := range r.Streams {
		if s.CodecType != "" && !strings.EqualFold(s.CodecType, "audio") {
			continue
		}
		if d := number(s.Duration); d > longest {
			longest = d
		}
	}
	return longest
}

// Duration is DurationSeconds as a time.Duration; unknown values map to 0.
func (r Result) Duration() time.Duration {
	seconds := r.DurationSeconds()
	if !(seconds > 0) {
		return 0
	}
	return time.Duration(math.Round(seconds * float64(time.Second)))
}

// BitRate returns the container bitrate in bits per second, or 0.
func (r Result) BitRate() int64 {
	if rate := number(r.Format.BitRate); rate > 0 {
		return int64(rate)
	}
	return 0
}

func number(value string) float64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return math.NaN()
	}
	return parsed
}
