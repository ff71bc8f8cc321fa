package workflow

import "fmt"

// State is a coordinator lifecycle phase.
type State string

const (
	StateValidating State = "validating"
	StateAcquiring  State = "acquiring"
	StateTrimming   State = "trimming"
	StateMerging    State = "merging"
	StateCleaning   State = "cleaning"
	StateDone       State = "done"
	StateFailed     State = "failed"
)

// Event is one progress checkpoint.
type Event struct {
	Percent int
	Message string
}

// Observer receives checkpoints in non-decreasing percent order.
type Observer func(Event)

// Checkpoints emitted by Run.
const (
	PercentStarted    = 5
	PercentDownloaded = 40
	PercentTrimmed    = 75
	PercentComplete   = 100

	MessageStarted  = "Starting download..."
	MessageTrimmed  = "Audio trimmed."
	MessageComplete = "Mashup complete."
)

// DownloadedMessage reports the number of tracks actually acquired.
func DownloadedMessage(n int) string {
	return fmt.Sprintf("Downloaded %d tracks.", n)
}

// StageError records the state a run failed in. Unwrap exposes the cause so
// errors.Is still matches the services markers.
type StageError struct {
	Stage State
	Err   error
}

func (e *StageError) Error() string {
	if e == nil || e.Err == nil {
		return "pipeline failed"
	}
	return e.Err.Error()
}

func (e *StageError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
