package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidRequest  = errors.New("invalid request")
	ErrNoResults       = errors.New("no results")
	ErrDecode          = errors.New("decode error")
	ErrEmptyInput      = errors.New("empty input")
	ErrIO              = errors.New("io error")
	ErrExternalService = errors.New("external service error")
	ErrConfiguration   = errors.New("configuration error")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker so callers can classify the failure with errors.Is. The
// marker should be one of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrIO
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Kind returns a short label for the marker carried by err, or "unknown".
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	case errors.Is(err, ErrNoResults):
		return "no_results"
	case errors.Is(err, ErrDecode):
		return "decode"
	case errors.Is(err, ErrEmptyInput):
		return "empty_input"
	case errors.Is(err, ErrExternalService):
		return "external_service"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	case errors.Is(err, ErrIO):
		return "io"
	default:
		return "unknown"
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "pipeline failure"
	}
	return strings.Join(parts, ": ")
}
