package delivery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/wneessen/go-mail"

	"mashup/internal/config"
	"mashup/internal/logging"
)

// Message is one outgoing email with an optional file attachment.
type Message struct {
	To             string
	Subject        string
	Body           string
	AttachmentPath string
	AttachmentName string
}

// Mailer sends messages.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
	Enabled() bool
}

// NewMailer returns an SMTPMailer when mail is configured and a NoopMailer
// otherwise.
func NewMailer(cfg *config.Config, logger *slog.Logger) Mailer {
	if cfg == nil || !cfg.MailConfigured() {
		return NoopMailer{}
	}
	return NewSMTPMailer(cfg.Mail, logger)
}

// NoopMailer discards messages.
type NoopMailer struct{}

func (NoopMailer) Send(context.Context, Message) error { return nil }
func (NoopMailer) Enabled() bool                        { return false }

// SMTPMailer delivers through an authenticated STARTTLS SMTP relay.
type SMTPMailer struct {
	settings config.Mail
	logger   *slog.Logger

	send       func(ctx context.Context, msg *mail.Msg) error
	newBackOff func() backoff.BackOff

	clientOnce sync.Once
	client     *mail.Client
	clientErr  error
}

// NewSMTPMailer builds a mailer for the given settings.
func NewSMTPMailer(settings config.Mail, logger *slog.Logger) *SMTPMailer {
	m := &SMTPMailer{
		settings: settings,
		logger:   logging.NewComponentLogger(logger, "mailer"),
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 2 * time.Second
			b.MaxInterval = 30 * time.Second
			return b
		},
	}
	m.send = m.dialAndSend
	return m
}

func (m *SMTPMailer) Enabled() bool { return true }

// Send builds the message and delivers it, retrying transient failures up to
// the configured number of attempts.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	built, err := m.build(msg)
	if err != nil {
		return err
	}

	attempts := m.settings.SendAttempts
	if attempts < 1 {
		attempts = 1
	}
	attempt := 0
	operation := func() error {
		attempt++
		err := m.send(ctx, built)
		if err == nil {
			return nil
		}
		if !retryable(err) {
			var perm *backoff.PermanentError
			if errors.As(err, &perm) {
				return err
			}
			return backoff.Permanent(err)
		}
		if attempt < attempts {
			m.logger.Warn("mail send failed; retrying",
				logging.Int("attempt", attempt),
				logging.Int("max_attempts", attempts),
				logging.Error(err),
				logging.String(logging.FieldEventType, "mail_retry"),
			)
		}
		return err
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(m.newBackOff(), uint64(attempts-1)), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return fmt.Errorf("send mail to %s after %d attempt(s): %w", msg.To, attempt, err)
	}
	m.logger.Info("mail sent",
		logging.String("recipient", msg.To),
		logging.Int("attempts", attempt),
		logging.String(logging.FieldEventType, "mail_sent"),
	)
	return nil
}

func (m *SMTPMailer) build(msg Message) (*mail.Msg, error) {
	built := mail.NewMsg()
	if err := built.From(m.settings.From); err != nil {
		return nil, fmt.Errorf("invalid sender %q: %w", m.settings.From, err)
	}
	if err := built.To(msg.To); err != nil {
		return nil, fmt.Errorf("invalid recipient %q: %w", msg.To, err)
	}
	built.Subject(msg.Subject)
	built.SetBodyString(mail.TypeTextPlain, msg.Body)
	if path := strings.TrimSpace(msg.AttachmentPath); path != "" {
		name := msg.AttachmentName
		if name == "" {
			name = "attachment.zip"
		}
		built.AttachFile(path,
			mail.WithFileName(name),
			mail.WithFileContentType(mail.ContentType("application/zip")),
		)
	}
	return built, nil
}

func (m *SMTPMailer) dialAndSend(ctx context.Context, msg *mail.Msg) error {
	m.clientOnce.Do(func() {
		m.client, m.clientErr = mail.NewClient(m.settings.SMTPHost,
			mail.WithPort(m.settings.SMTPPort),
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.settings.Username),
			mail.WithPassword(m.settings.Password),
			mail.WithTLSPolicy(mail.TLSMandatory),
			mail.WithTimeout(30*time.Second),
		)
	})
	if m.clientErr != nil {
		return backoff.Permanent(fmt.Errorf("configure smtp client: %w", m.clientErr))
	}
	return m.client.DialAndSendWithContext(ctx, msg)
}

// retryable treats anything but an SMTP permanent rejection as transient.
func retryable(err error) bool {
	var perm *backoff.PermanentError
	if errors.As(err, &perm) {
		return false
	}
	var sendErr *mail.SendError
	if errors.As(err, &sendErr) {
		return sendErr.IsTemp()
	}
	return !errors.Is(err, context.Canceled)
}
