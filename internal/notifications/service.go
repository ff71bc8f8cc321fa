package notifications

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"mashup/internal/config"
)

const userAgent = "mashupd (+ntfy)"

// Service is what the job manager calls when a mashup finishes.
type Service interface {
	NotifyMashupCompleted(ctx context.Context, searchTerm string, tracks int, recipient string) error
	NotifyMashupFailed(ctx context.Context, searchTerm string, err error) error
	TestNotification(ctx context.Context) error
}

// NewService returns an ntfy publisher for cfg, or a service that drops
// every notification when no topic is set.
func NewService(cfg *config.Config) Service {
	if cfg == nil || strings.TrimSpace(cfg.Notifications.NtfyTopic) == "" {
		return discard{}
	}
	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ntfy{
		topicURL: strings.TrimSpace(cfg.Notifications.NtfyTopic),
		http:     &http.Client{Timeout: timeout},
	}
}

// note is one ntfy publish: the body plus the headers ntfy reads.
type note struct {
	body    string
	headers map[string]string
}

type ntfy struct {
	topicURL string
	http     *http.Client
}

func (n *ntfy) NotifyMashupCompleted(ctx context.Context, searchTerm string, tracks int, recipient string) error {
	body := fmt.Sprintf("🎧 Mashup ready: %s (%d tracks)", strings.TrimSpace(searchTerm), tracks)
	if to := strings.TrimSpace(recipient); to != "" {
		body += "\nSent to: " + to
	}
	return n.publish(ctx, note{body: body, headers: map[string]string{
		"Title": "Mashup - Complete",
		"Tags":  "mashup,completed",
	}})
}

func (n *ntfy) NotifyMashupFailed(ctx context.Context, searchTerm string, cause error) error {
	reason := "unknown"
	if cause != nil {
		reason = strings.TrimSpace(cause.Error())
	}
	subject := ""
	if term := strings.TrimSpace(searchTerm); term != "" {
		subject = " for " + term
	}
	return n.publish(ctx, note{
		body: "❌ Mashup failed" + subject + ": " + reason,
		headers: map[string]string{
			"Title":    "Mashup - Error",
			"Tags":     "mashup,error,alert",
			"Priority": "high",
		},
	})
}

func (n *ntfy) TestNotification(ctx context.Context) error {
	return n.publish(ctx, note{body: "🧪 Notification system test", headers: map[string]string{
		"Title":    "Mashup - Test",
		"Tags":     "mashup,test",
		"Priority": "low",
	}})
}

// publish posts msg, retrying transport failures and 5xx answers briefly.
func (n *ntfy) publish(ctx context.Context, msg note) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 250 * time.Millisecond
	policy.MaxElapsedTime = 5 * time.Second
	return backoff.Retry(func() error {
		return n.post(ctx, msg)
	}, backoff.WithContext(backoff.WithMaxRetries(policy, 2), ctx))
}

func (n *ntfy) post(ctx context.Context, msg note) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.topicURL, strings.NewReader(msg.body))
	if err != nil {
		return backoff.Permanent(fmt.Errorf("ntfy request: %w", err))
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	for key, value := range msg.headers {
		req.Header.Set(key, value)
	}

	resp, err := n.http.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return backoff.Permanent(err)
		}
		return fmt.Errorf("ntfy publish: %w", err)
	}
	defer resp.Body.Close()
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	if resp.StatusCode < 300 {
		return nil
	}
	statusErr := fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	if resp.StatusCode >= 500 {
		return statusErr
	}
	return backoff.Permanent(statusErr)
}

type discard struct{}

func (discard) NotifyMashupCompleted(context.Context, string, int, string) error { return nil }
func (discard) NotifyMashupFailed(context.Context, string, error) error          { return nil }
func (discard) TestNotification(context.Context) error                          { return nil }
