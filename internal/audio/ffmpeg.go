package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"mashup/internal/config"
	"mashup/internal/logging"
	"mashup/internal/media/ffprobe"
)

const (
	outputFormat = "mp3"
	outputCodec  = "libmp3lame"
	stderrTail   = 512
)

// FFmpeg implements Codec with the ffmpeg and ffprobe binaries.
type FFmpeg struct {
	FFmpegBinary  string
	FFprobeBinary string
	Bitrate       string
	logger        *slog.Logger
}

// NewFFmpeg builds an FFmpeg codec from the [codec] configuration section.
func NewFFmpeg(cfg *config.Config, logger *slog.Logger) *FFmpeg {
	codec := &FFmpeg{
		FFmpegBinary:  "ffmpeg",
		FFprobeBinary: "ffprobe",
		Bitrate:       "192k",
		logger:        logging.NewComponentLogger(logger, "codec"),
	}
	if cfg != nil {
		codec.FFmpegBinary = cfg.Codec.FFmpegBinary
		codec.FFprobeBinary = cfg.Codec.FFprobeBinary
		codec.Bitrate = cfg.Codec.Bitrate
	}
	return codec
}

// Duration inspects path with ffprobe.
func (f *FFmpeg) Duration(ctx context.Context, path string) (time.Duration, error) {
	result, err := ffprobe.Inspect(ctx, f.FFprobeBinary, path)
	if err != nil {
		return 0, err
	}
	if result.AudioStreamCount() == 0 {
		return 0, fmt.Errorf("%s: no audio stream", filepath.Base(path))
	}
	return result.Duration(), nil
}

// Trim re-encodes the leading max of src into dst.
func (f *FFmpeg) Trim(ctx context.Context, src, dst string, max time.Duration) error {
	if max <= 0 {
		return fmt.Errorf("trim %s: non-positive duration %v", filepath.Base(src), max)
	}
	args := []string{
		"-hide_banner", "-nostdin", "-v", "error", "-y",
		"-i", src,
		"-t", formatSeconds(max),
		"-map", "0:a:0", "-vn", "-map_metadata", "-1",
	}
	args = append(args, f.encodeArgs(dst)...)
	return f.run(ctx, "trim", args)
}

// Concat joins inputs with the ffmpeg concat demuxer and re-encodes the
// result so clip boundaries carry no container artifacts.
func (f *FFmpeg) Concat(ctx context.Context, inputs []string, dst string) error {
	if len(inputs) == 0 {
		return errors.New("concat: no inputs")
	}
	list, err := os.CreateTemp(filepath.Dir(dst), ".concat-*.txt")
	if err != nil {
		return fmt.Errorf("create concat list: %w", err)
	}
	listPath := list.Name()
	defer os.Remove(listPath)

	for _, input := range inputs {
		abs, err := filepath.Abs(input)
		if err != nil {
			_ = list.Close()
			return fmt.Errorf("resolve %s: %w", input, err)
		}
		fmt.Fprintf(list, "file '%s'\n", strings.ReplaceAll(abs, "'", `'\''`))
	}
	if err := list.Close(); err != nil {
		return fmt.Errorf("write concat list: %w", err)
	}

	args := []string{
		"-hide_banner", "-nostdin", "-v", "error", "-y",
		"-f", "concat", "-safe", "0", "-i", listPath,
		"-vn", "-map_metadata", "-1",
	}
	args = append(args, f.encodeArgs(dst)...)
	return f.run(ctx, "concat", args)
}

func (f *FFmpeg) encodeArgs(dst string) []string {
	bitrate := strings.TrimSpace(f.Bitrate)
	if bitrate == "" {
		bitrate = "192k"
	}
	return []string{"-c:a", outputCodec, "-b:a", bitrate, "-f", outputFormat, dst}
}

func (f *FFmpeg) run(ctx context.Context, op string, args []string) error {
	binary := strings.TrimSpace(f.FFmpegBinary)
	if binary == "" {
		binary = "ffmpeg"
	}
	start := time.Now()
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if len(detail) > stderrTail {
			detail = detail[len(detail)-stderrTail:]
		}
		if detail != "" {
			return fmt.Errorf("ffmpeg %s: %w: %s", op, err, detail)
		}
		return fmt.Errorf("ffmpeg %s: %w", op, err)
	}
	if f.logger != nil {
		f.logger.Debug("ffmpeg finished",
			logging.String("operation", op),
			logging.Duration("elapsed", time.Since(start)),
		)
	}
	return nil
}

func formatSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', 3, 64)
}
