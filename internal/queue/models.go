package queue

import "time"

// Status is the persisted lifecycle state of a job.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

var knownStatuses = map[Status]struct{}{
	StatusPending:   {},
	StatusRunning:   {},
	StatusSucceeded: {},
	StatusFailed:    {},
}

// ParseStatus validates a user supplied status filter.
func ParseStatus(value string) (Status, bool) {
	status := Status(value)
	_, ok := knownStatuses[status]
	return status, ok
}

// IsTerminal reports whether the status will not change again.
func (s Status) IsTerminal() bool {
	return s == StatusSucceeded || s == StatusFailed
}

// InterruptedMessage is recorded on jobs that were in flight at startup.
const InterruptedMessage = "Interrupted by daemon restart"

// Job is one persisted mashup request and its outcome.
type Job struct {
	ID              string
	SearchTerm      string
	Count           int
	ClipSeconds     int
	Recipient       string
	OutputPath      string
	Status          Status
	ProgressPercent int
	ProgressMessage string
	ErrorMessage    string
	ErrorKind       string
	Emailed         bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
	FinishedAt      *time.Time
}
