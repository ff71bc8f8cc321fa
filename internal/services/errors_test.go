package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"mashup/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrDecode, "trim", "decode", "track.mp3", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrDecode) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"trim", "decode", "track.mp3", "boom"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapWithoutCause(t *testing.T) {
	err := services.Wrap(services.ErrEmptyInput, "merge", "", "no trimmed files", nil)
	if !errors.Is(err, services.ErrEmptyInput) {
		t.Fatalf("expected empty input marker, got %v", err)
	}
	if got := err.Error(); got != "empty input: merge: no trimmed files" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestKind(t *testing.T) {
	cases := map[string]error{
		"invalid_request":  services.Wrap(services.ErrInvalidRequest, "validate", "", "count", nil),
		"no_results":       services.Wrap(services.ErrNoResults, "acquire", "", "", nil),
		"external_service": services.Wrap(services.ErrExternalService, "acquire", "search", "", errors.New("exit 1")),
		"unknown":          errors.New("plain"),
		"":                 nil,
	}
	for want, err := range cases {
		if got := services.Kind(err); got != want {
			t.Fatalf("Kind(%v) = %q, want %q", err, got, want)
		}
	}
}

func TestContextHelpers(t *testing.T) {
	ctx := services.WithJobID(context.Background(), "job-1")
	ctx = services.WithStage(ctx, "trimming")
	ctx = services.WithRequestID(ctx, "req-9")

	if id, ok := services.JobIDFromContext(ctx); !ok || id != "job-1" {
		t.Fatalf("unexpected job id %q (%v)", id, ok)
	}
	if stage, ok := services.StageFromContext(ctx); !ok || stage != "trimming" {
		t.Fatalf("unexpected stage %q (%v)", stage, ok)
	}
	if rid, ok := services.RequestIDFromContext(ctx); !ok || rid != "req-9" {
		t.Fatalf("unexpected request id %q (%v)", rid, ok)
	}
	if _, ok := services.JobIDFromContext(services.WithJobID(context.Background(), "")); ok {
		t.Fatal("expected empty job id to be ignored")
	}
}
