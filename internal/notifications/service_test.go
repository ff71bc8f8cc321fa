package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"mashup/internal/config"
	"mashup/internal/notifications"
)

type captured struct {
	title    string
	tags     string
	priority string
	body     string
}

func newRecorder(t *testing.T, status int) (*httptest.Server, *[]captured) {
	t.Helper()
	var requests []captured
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		requests = append(requests, captured{
			title:    r.Header.Get("Title"),
			tags:     r.Header.Get("Tags"),
			priority: r.Header.Get("Priority"),
			body:     string(body),
		})
		w.WriteHeader(status)
		_, _ = w.Write([]byte("nope"))
	}))
	t.Cleanup(srv.Close)
	return srv, &requests
}

func serviceFor(url string) notifications.Service {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = url
	return notifications.NewService(&cfg)
}

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	svc := notifications.NewService(&cfg)
	if err := svc.NotifyMashupCompleted(context.Background(), "Artist", 12, ""); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
	if err := notifications.NewService(nil).TestNotification(context.Background()); err != nil {
		t.Fatalf("nil config should yield noop, got %v", err)
	}
}

func TestNtfyServiceFormatsPayloads(t *testing.T) {
	srv, requests := newRecorder(t, http.StatusOK)
	svc := serviceFor(srv.URL)
	ctx := context.Background()

	if err := svc.NotifyMashupCompleted(ctx, " Test Artist ", 15, "fan@example.com"); err != nil {
		t.Fatalf("completed: %v", err)
	}
	if err := svc.NotifyMashupFailed(ctx, "Test Artist", errors.New("no results")); err != nil {
		t.Fatalf("failed: %v", err)
	}
	if err := svc.TestNotification(ctx); err != nil {
		t.Fatalf("test: %v", err)
	}

	got := *requests
	if len(got) != 3 {
		t.Fatalf("expected 3 requests, got %d", len(got))
	}
	if got[0].title != "Mashup - Complete" || got[0].body != "🎧 Mashup ready: Test Artist (15 tracks)\nSent to: fan@example.com" {
		t.Fatalf("unexpected completed payload: %+v", got[0])
	}
	if got[0].tags != "mashup,completed" || got[0].priority != "" {
		t.Fatalf("unexpected completed headers: %+v", got[0])
	}
	if got[1].title != "Mashup - Error" || got[1].priority != "high" || got[1].body != "❌ Mashup failed for Test Artist: no results" {
		t.Fatalf("unexpected failure payload: %+v", got[1])
	}
	if got[2].priority != "low" || !strings.Contains(got[2].body, "test") {
		t.Fatalf("unexpected test payload: %+v", got[2])
	}
}

func TestNtfyServiceReportsHTTPErrors(t *testing.T) {
	srv, _ := newRecorder(t, http.StatusForbidden)
	err := serviceFor(srv.URL).TestNotification(context.Background())
	if err == nil || !strings.Contains(err.Error(), "403") {
		t.Fatalf("expected 403 error, got %v", err)
	}
}

func TestNtfyServiceRetriesServerErrors(t *testing.T) {
	srv, requests := newRecorder(t, http.StatusBadGateway)
	err := serviceFor(srv.URL).TestNotification(context.Background())
	if err == nil || !strings.Contains(err.Error(), "502") {
		t.Fatalf("expected 502 error, got %v", err)
	}
	if len(*requests) != 3 {
		t.Fatalf("expected initial attempt plus 2 retries, got %d", len(*requests))
	}
}
