// Package merge joins trimmed clips into the final mashup file.
package merge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"mashup/internal/audio"
	"mashup/internal/logging"
	"mashup/internal/media"
	"mashup/internal/services"
)

const stageName = "merge"

// Merger concatenates clips through an audio codec.
type Merger struct {
	codec  audio.Codec
	logger *slog.Logger
}

// New constructs a Merger.
func New(codec audio.Codec, logger *slog.Logger) *Merger {
	return &Merger{codec: codec, logger: logging.NewComponentLogger(logger, "merger")}
}

// Merge writes the clips back to back, in list order, to outputPath. The
// existing file at outputPath is only replaced once the encode finished.
func (m *Merger) Merge(ctx context.Context, trimmed []media.TrimmedFile, outputPath string) error {
	if len(trimmed) == 0 {
		return services.Wrap(services.ErrEmptyInput, stageName, "", "no clips to merge", nil)
	}
	if strings.TrimSpace(outputPath) == "" {
		return services.Wrap(services.ErrInvalidRequest, stageName, "", "output path is empty", nil)
	}
	if m == nil || m.codec == nil {
		return services.Wrap(services.ErrDecode, stageName, "", "no audio codec configured", nil)
	}

	logger := logging.WithContext(ctx, m.logger)
	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return services.Wrap(services.ErrIO, stageName, "prepare", "create output directory", err)
	}

	tmp := partialPath(outputPath)
	if err := m.codec.Concat(ctx, media.Paths(trimmed), tmp); err != nil {
		removePartial(logger, tmp)
		return services.Wrap(services.ErrDecode, stageName, "concat", fmt.Sprintf("%d clips", len(trimmed)), err)
	}
	// A failed length check only costs the duration in the log line.
	length, durationErr := m.codec.Duration(ctx, tmp)
	if err := os.Rename(tmp, outputPath); err != nil {
		removePartial(logger, tmp)
		return services.Wrap(services.ErrIO, stageName, "finalize", filepath.Base(outputPath), err)
	}

	attrs := []any{
		logging.String("output", outputPath),
		logging.Int("clips", len(trimmed)),
		logging.String(logging.FieldEventType, "merge_complete"),
	}
	if durationErr != nil {
		attrs = append(attrs, logging.String("duration_error", durationErr.Error()))
	} else {
		attrs = append(attrs, logging.Duration("duration", length))
	}
	logger.Info("mashup written", attrs...)
	return nil
}

// partialPath returns a hidden sibling of target that keeps its extension,
// so the encoder still infers the container format.
func partialPath(target string) string {
	ext := filepath.Ext(target)
	base := strings.TrimSuffix(filepath.Base(target), ext)
	return filepath.Join(filepath.Dir(target), fmt.Sprintf(".%s.partial-%s%s", base, uuid.NewString(), ext))
}

func removePartial(logger *slog.Logger, path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("failed to remove partial output",
			logging.String("path", path),
			logging.Error(err),
			logging.String(logging.FieldEventType, "merge_cleanup_failed"),
			logging.String(logging.FieldImpact, "stray temporary file left next to output"),
		)
	}
}
