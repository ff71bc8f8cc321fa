// Package trim cuts each acquired source down to its leading clip.
package trim

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"mashup/internal/audio"
	"mashup/internal/logging"
	"mashup/internal/media"
	"mashup/internal/services"
)

const stageName = "trim"

// Trimmer writes one clip per source file through an audio codec.
type Trimmer struct {
	codec  audio.Codec
	logger *slog.Logger
}

// New constructs a Trimmer.
func New(codec audio.Codec, logger *slog.Logger) *Trimmer {
	return &Trimmer{codec: codec, logger: logging.NewComponentLogger(logger, "trimmer")}
}

// Trim writes the first maxSeconds of every source into workDir, preserving
// input order and ordinals. The first file that cannot be processed aborts
// the whole batch.
func (t *Trimmer) Trim(ctx context.Context, sources []media.SourceFile, maxSeconds int, workDir string) ([]media.TrimmedFile, error) {
	if maxSeconds <= 0 {
		return nil, services.Wrap(services.ErrInvalidRequest, stageName, "", fmt.Sprintf("clip length must be positive, got %d", maxSeconds), nil)
	}
	if t == nil || t.codec == nil {
		return nil, services.Wrap(services.ErrDecode, stageName, "", "no audio codec configured", nil)
	}
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrIO, stageName, "prepare", "create trim directory", err)
	}

	logger := logging.WithContext(ctx, t.logger)
	limit := time.Duration(maxSeconds) * time.Second
	trimmed := make([]media.TrimmedFile, 0, len(sources))
	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return nil, services.Wrap(services.ErrIO, stageName, "", "interrupted", err)
		}
		dst := filepath.Join(workDir, media.TrimmedName(src.Ordinal, ".mp3"))
		if err := t.codec.Trim(ctx, src.Path, dst, limit); err != nil {
			return nil, services.Wrap(services.ErrDecode, stageName, "decode", filepath.Base(src.Path), err)
		}
		logger.Debug("clip written",
			logging.Int("ordinal", src.Ordinal),
			logging.String("source", filepath.Base(src.Path)),
			logging.String("clip", filepath.Base(dst)),
		)
		trimmed = append(trimmed, media.TrimmedFile{Path: dst, Ordinal: src.Ordinal})
	}

	logger.Info("sources trimmed",
		logging.Int("clips", len(trimmed)),
		logging.Int("clip_seconds", maxSeconds),
		logging.String(logging.FieldEventType, "trim_complete"),
	)
	return trimmed, nil
}
