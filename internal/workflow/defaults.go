package workflow

import (
	"log/slog"

	"mashup/internal/acquire"
	"mashup/internal/audio"
	"mashup/internal/config"
	"mashup/internal/merge"
	"mashup/internal/trim"
)

// NewDefault builds a Coordinator backed by yt-dlp search and the ffmpeg codec.
func NewDefault(cfg *config.Config, logger *slog.Logger) *Coordinator {
	codec := audio.NewFFmpeg(cfg, logger)
	scratch := ""
	if cfg != nil {
		scratch = cfg.Paths.ScratchDir
	}
	return NewCoordinator(
		acquire.New(acquire.NewYTDLP(cfg, logger), logger),
		trim.New(codec, logger),
		merge.New(codec, logger),
		scratch,
		logger,
	)
}
