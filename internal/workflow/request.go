package workflow

import (
	"fmt"
	"strings"

	"mashup/internal/services"
)

const (
	// MinCount is the exclusive lower bound on requested tracks.
	MinCount = 10
	// MinClipSeconds is the exclusive lower bound on clip length.
	MinClipSeconds = 20
)

// Request describes one mashup run.
type Request struct {
	SearchTerm  string
	Count       int
	ClipSeconds int
	OutputPath  string
}

// Validate rejects requests the pipeline must not start.
func (r Request) Validate() error {
	switch {
	case strings.TrimSpace(r.SearchTerm) == "":
		return invalid("search term is required")
	case r.Count <= MinCount:
		return invalid(fmt.Sprintf("count must be greater than %d, got %d", MinCount, r.Count))
	case r.ClipSeconds <= MinClipSeconds:
		return invalid(fmt.Sprintf("clip length must be greater than %d seconds, got %d", MinClipSeconds, r.ClipSeconds))
	case strings.TrimSpace(r.OutputPath) == "":
		return invalid("output path is required")
	}
	return nil
}

func invalid(msg string) error {
	return services.Wrap(services.ErrInvalidRequest, "validate", "", msg, nil)
}
