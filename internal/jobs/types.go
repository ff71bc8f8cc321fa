package jobs

import (
	"context"
	"errors"
	"strings"
	"time"

	"mashup/internal/delivery"
	"mashup/internal/queue"
	"mashup/internal/services"
	"mashup/internal/workflow"
)

// ErrNotFound reports an unknown job ID.
var ErrNotFound = errors.New("job not found")

const (
	MessageWaiting   = "Waiting for a free worker"
	MessageEmailSent = "Email sent."
	failurePrefix    = "Something went wrong while creating or sending mashup: "
)

// FailureMessage renders the user facing text for a failed job.
func FailureMessage(err error) string {
	if err == nil {
		return strings.TrimSpace(failurePrefix)
	}
	return failurePrefix + err.Error()
}

// Runner executes the pipeline. *workflow.Coordinator satisfies it.
type Runner interface {
	Run(ctx context.Context, req workflow.Request, observe workflow.Observer) (string, error)
}

// RunnerFunc adapts a function to Runner.
type RunnerFunc func(ctx context.Context, req workflow.Request, observe workflow.Observer) (string, error)

func (f RunnerFunc) Run(ctx context.Context, req workflow.Request, observe workflow.Observer) (string, error) {
	return f(ctx, req, observe)
}

// Deliverer sends finished mashups. *delivery.Service satisfies it.
type Deliverer interface {
	Enabled() bool
	Deliver(ctx context.Context, d delivery.Delivery) (string, error)
}

// Submission is a mashup request as received from a client.
type Submission struct {
	SearchTerm  string
	Count       int
	ClipSeconds int
	Recipient   string
}

// Validate applies the pipeline request rules plus recipient checks. A
// recipient is mandatory only when mail delivery is enabled.
func (s Submission) Validate(requireRecipient bool) error {
	if err := (workflow.Request{
		SearchTerm:  s.SearchTerm,
		Count:       s.Count,
		ClipSeconds: s.ClipSeconds,
		OutputPath:  "pending",
	}).Validate(); err != nil {
		return err
	}
	recipient := strings.TrimSpace(s.Recipient)
	if recipient == "" {
		if requireRecipient {
			return services.Wrap(services.ErrInvalidRequest, "validate", "", "email address is required", nil)
		}
		return nil
	}
	if !delivery.ValidEmail(recipient) {
		return services.Wrap(services.ErrInvalidRequest, "validate", "", "invalid email address", nil)
	}
	return nil
}

// Snapshot is a point-in-time view of a job.
type Snapshot struct {
	ID          string
	SearchTerm  string
	Count       int
	ClipSeconds int
	Recipient   string
	State       string
	Percent     int
	Message     string
	Done        bool
	Error       string
	ErrorKind   string
	OutputPath  string
	Emailed     bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
	FinishedAt  *time.Time
}

func snapshotFromJob(job *queue.Job) Snapshot {
	return Snapshot{
		ID:          job.ID,
		SearchTerm:  job.SearchTerm,
		Count:       job.Count,
		ClipSeconds: job.ClipSeconds,
		Recipient:   job.Recipient,
		State:       string(job.Status),
		Percent:     job.ProgressPercent,
		Message:     job.ProgressMessage,
		Done:        job.Status.IsTerminal(),
		Error:       job.ErrorMessage,
		ErrorKind:   job.ErrorKind,
		OutputPath:  job.OutputPath,
		Emailed:     job.Emailed,
		CreatedAt:   job.CreatedAt,
		UpdatedAt:   job.UpdatedAt,
		FinishedAt:  job.FinishedAt,
	}
}

func (s Snapshot) toJob() *queue.Job {
	return &queue.Job{
		ID:              s.ID,
		SearchTerm:      s.SearchTerm,
		Count:           s.Count,
		ClipSeconds:     s.ClipSeconds,
		Recipient:       s.Recipient,
		OutputPath:      s.OutputPath,
		Status:          queue.Status(s.State),
		ProgressPercent: s.Percent,
		ProgressMessage: s.Message,
		ErrorMessage:    s.Error,
		ErrorKind:       s.ErrorKind,
		Emailed:         s.Emailed,
		CreatedAt:       s.CreatedAt,
		FinishedAt:      s.FinishedAt,
	}
}
