package acquire

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"mashup/internal/logging"
	"mashup/internal/media"
	"mashup/internal/services"
	"mashup/internal/textutil"
)

const stageName = "acquire"

// Query is the single request the acquirer sends to its search backend.
type Query struct {
	Term      string
	CountHint int
	OutputDir string
	AudioOnly bool
}

// Candidate is one search hit. Err marks a hit that failed to resolve; it
// does not fail the batch.
type Candidate struct {
	Title string
	Path  string
	Err   error
}

// Searcher is the external media search and download capability.
type Searcher interface {
	Search(ctx context.Context, q Query) ([]Candidate, error)
}

// SearcherFunc adapts a function to Searcher.
type SearcherFunc func(ctx context.Context, q Query) ([]Candidate, error)

func (f SearcherFunc) Search(ctx context.Context, q Query) ([]Candidate, error) {
	return f(ctx, q)
}

// Acquirer produces source audio files for a search term.
type Acquirer struct {
	searcher Searcher
	logger   *slog.Logger
}

// New constructs an Acquirer around the given search backend.
func New(searcher Searcher, logger *slog.Logger) *Acquirer {
	return &Acquirer{searcher: searcher, logger: logging.NewComponentLogger(logger, "acquirer")}
}

// Acquire searches for n candidates matching term and returns the usable
// ones, at most n, ordered by arrival. Files are written under workDir.
func (a *Acquirer) Acquire(ctx context.Context, term string, n int, workDir string) ([]media.SourceFile, error) {
	if a == nil || a.searcher == nil {
		return nil, services.Wrap(services.ErrExternalService, stageName, "search", "no search backend configured", nil)
	}
	logger := logging.WithContext(ctx, a.logger)
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrIO, stageName, "prepare", "create download directory", err)
	}

	query := Query{Term: strings.TrimSpace(term), CountHint: n, OutputDir: workDir, AudioOnly: true}
	logger.Info("searching for sources",
		logging.String("query", query.Term),
		logging.Int("requested", n),
		logging.String(logging.FieldEventType, "acquire_search"),
	)
	candidates, searchErr := a.searcher.Search(ctx, query)
	if searchErr != nil {
		if errors.Is(searchErr, context.Canceled) || errors.Is(searchErr, context.DeadlineExceeded) {
			return nil, services.Wrap(services.ErrExternalService, stageName, "search", "search interrupted", searchErr)
		}
		if len(candidates) == 0 {
			return nil, services.Wrap(services.ErrExternalService, stageName, "search", fmt.Sprintf("search for %q failed", query.Term), searchErr)
		}
		logging.WarnWithContext(logger, "search reported errors; keeping partial results", "acquire_search_partial",
			logging.Error(searchErr),
			logging.Int("candidates", len(candidates)),
			logging.String(logging.FieldImpact, "mashup may contain fewer tracks than requested"),
		)
	}

	sources := make([]media.SourceFile, 0, min(n, len(candidates)))
	seen := make(map[string]struct{}, len(candidates))
	skipped := 0
	for _, candidate := range candidates {
		if len(sources) >= n {
			break
		}
		if reason := a.rejectReason(candidate, seen); reason != "" {
			skipped++
			logger.Debug("candidate skipped",
				logging.String("title", candidate.Title),
				logging.String("reason", reason),
				logging.String(logging.FieldEventType, "acquire_candidate_skipped"),
			)
			continue
		}
		sources = append(sources, media.SourceFile{
			Path:    candidate.Path,
			Title:   candidate.Title,
			Ordinal: len(sources),
		})
	}

	if len(sources) == 0 {
		return nil, services.Wrap(services.ErrNoResults, stageName, "", fmt.Sprintf("no audio files could be downloaded for %q", query.Term), nil)
	}

	logger.Info("sources acquired",
		logging.Int("requested", n),
		logging.Int("obtained", len(sources)),
		logging.Int("skipped", skipped),
		logging.String(logging.FieldEventType, "acquire_complete"),
	)
	return sources, nil
}

func (a *Acquirer) rejectReason(c Candidate, seen map[string]struct{}) string {
	if c.Err != nil {
		return c.Err.Error()
	}
	if strings.TrimSpace(c.Path) == "" {
		return "no file produced"
	}
	info, err := os.Stat(c.Path)
	switch {
	case err != nil:
		return "file missing"
	case !info.Mode().IsRegular():
		return "not a regular file"
	case info.Size() == 0:
		return "empty file"
	}
	key := textutil.NormalizeTitle(c.Title)
	if key == "" {
		return ""
	}
	if _, dup := seen[key]; dup {
		return "duplicate title"
	}
	seen[key] = struct{}{}
	return ""
}
