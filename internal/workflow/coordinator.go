package workflow

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"mashup/internal/logging"
	"mashup/internal/media"
	"mashup/internal/services"
	"mashup/internal/staging"
)

// Acquirer produces source files for a search term.
type Acquirer interface {
	Acquire(ctx context.Context, term string, n int, workDir string) ([]media.SourceFile, error)
}

// Trimmer cuts every source to its leading clip.
type Trimmer interface {
	Trim(ctx context.Context, sources []media.SourceFile, maxSeconds int, workDir string) ([]media.TrimmedFile, error)
}

// Merger concatenates clips into the output file.
type Merger interface {
	Merge(ctx context.Context, trimmed []media.TrimmedFile, outputPath string) error
}

// Coordinator sequences the pipeline stages for one request at a time.
type Coordinator struct {
	acquirer    Acquirer
	trimmer     Trimmer
	merger      Merger
	scratchRoot string
	logger      *slog.Logger
}

// NewCoordinator wires explicit stage implementations. Workspaces are created
// under scratchRoot, or the system temp directory when it is empty.
func NewCoordinator(acquirer Acquirer, trimmer Trimmer, merger Merger, scratchRoot string, logger *slog.Logger) *Coordinator {
	return &Coordinator{
		acquirer:    acquirer,
		trimmer:     trimmer,
		merger:      merger,
		scratchRoot: scratchRoot,
		logger:      logging.NewComponentLogger(logger, "coordinator"),
	}
}

// Run executes the pipeline and returns the absolute output path.
func (c *Coordinator) Run(ctx context.Context, req Request, observe Observer) (string, error) {
	logger := logging.WithContext(ctx, c.logger)
	emit := func(percent int, message string) {
		if observe != nil {
			observe(Event{Percent: percent, Message: message})
		}
	}
	fail := func(state State, err error) (string, error) {
		logger.Error("mashup failed",
			logging.String("failed_state", string(state)),
			logging.String("error_kind", services.Kind(err)),
			logging.Error(err),
			logging.String(logging.FieldEventType, "pipeline_failed"),
		)
		return "", &StageError{Stage: state, Err: err}
	}

	if err := req.Validate(); err != nil {
		return "", &StageError{Stage: StateValidating, Err: err}
	}
	outputPath, err := filepath.Abs(req.OutputPath)
	if err != nil {
		return "", &StageError{Stage: StateValidating, Err: services.Wrap(services.ErrInvalidRequest, "validate", "", "resolve output path", err)}
	}

	start := time.Now()
	logger.Info("mashup started",
		logging.String("search_term", req.SearchTerm),
		logging.Int("count", req.Count),
		logging.Int("clip_seconds", req.ClipSeconds),
		logging.String("output", outputPath),
		logging.String(logging.FieldEventType, "pipeline_start"),
	)

	ws, err := staging.Create(c.scratchRoot)
	if err != nil {
		return fail(StateAcquiring, err)
	}
	defer ws.Release(logger)

	emit(PercentStarted, MessageStarted)
	sources, err := c.acquirer.Acquire(services.WithStage(ctx, string(StateAcquiring)), req.SearchTerm, req.Count, ws.Downloads)
	if err != nil {
		return fail(StateAcquiring, err)
	}
	emit(PercentDownloaded, DownloadedMessage(len(sources)))

	trimmed, err := c.trimmer.Trim(services.WithStage(ctx, string(StateTrimming)), sources, req.ClipSeconds, ws.Trimmed)
	if err != nil {
		return fail(StateTrimming, err)
	}
	emit(PercentTrimmed, MessageTrimmed)

	if err := c.merger.Merge(services.WithStage(ctx, string(StateMerging)), trimmed, outputPath); err != nil {
		return fail(StateMerging, err)
	}

	ws.Release(logger)
	logger.Info("mashup complete",
		logging.String("output", outputPath),
		logging.Int("tracks", len(sources)),
		logging.Duration("elapsed", time.Since(start)),
		logging.String(logging.FieldEventType, "pipeline_complete"),
	)
	emit(PercentComplete, MessageComplete)
	return outputPath, nil
}
