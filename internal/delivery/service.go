package delivery

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"mashup/internal/logging"
	"mashup/internal/services"
)

const (
	// Subject is the subject line of every delivery email.
	Subject = "Your Mashup File"
	// AttachmentName is the file name recipients see.
	AttachmentName = "mashup.zip"
)

// Delivery describes one finished mashup to send.
type Delivery struct {
	Recipient   string
	SearchTerm  string
	Count       int
	ClipSeconds int
	AudioPath   string
}

// Service zips a finished mashup and mails it.
type Service struct {
	mailer Mailer
	logger *slog.Logger
}

// NewService wraps a Mailer.
func NewService(mailer Mailer, logger *slog.Logger) *Service {
	if mailer == nil {
		mailer = NoopMailer{}
	}
	return &Service{mailer: mailer, logger: logging.NewComponentLogger(logger, "delivery")}
}

// Enabled reports whether Deliver will actually send mail.
func (s *Service) Enabled() bool {
	return s != nil && s.mailer.Enabled()
}

// Body renders the delivery email text. The search term appears exactly
// as the user typed it.
func Body(d Delivery) string {
	return fmt.Sprintf("Hello,\n\nHere is your mashup for %s (%d videos, %d seconds each).\n\nRegards.",
		d.SearchTerm, d.Count, d.ClipSeconds)
}

// Deliver packages the audio next to itself as mashup.zip and emails it.
// It returns the archive path.
func (s *Service) Deliver(ctx context.Context, d Delivery) (string, error) {
	if !ValidEmail(d.Recipient) {
		return "", services.Wrap(services.ErrInvalidRequest, "deliver", "", fmt.Sprintf("invalid recipient %q", d.Recipient), nil)
	}
	zipPath := filepath.Join(filepath.Dir(d.AudioPath), AttachmentName)
	if err := Package(d.AudioPath, zipPath); err != nil {
		return "", services.Wrap(services.ErrIO, "deliver", "package", filepath.Base(d.AudioPath), err)
	}

	logger := logging.WithContext(ctx, s.logger)
	if err := s.mailer.Send(ctx, Message{
		To:             d.Recipient,
		Subject:        Subject,
		Body:           Body(d),
		AttachmentPath: zipPath,
		AttachmentName: AttachmentName,
	}); err != nil {
		return zipPath, services.Wrap(services.ErrExternalService, "deliver", "send", "", err)
	}
	logger.Info("mashup delivered",
		logging.String("recipient", d.Recipient),
		logging.String("archive", zipPath),
		logging.String(logging.FieldEventType, "delivery_complete"),
	)
	return zipPath, nil
}
