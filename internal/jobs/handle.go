package jobs

import (
	"context"
	"sync"
	"time"

	"mashup/internal/queue"
	"mashup/internal/workflow"
)

// Handle tracks one submitted job.
type Handle struct {
	mu   sync.Mutex
	snap Snapshot
	done chan struct{}
}

func newHandle(snap Snapshot) *Handle {
	return &Handle{snap: snap, done: make(chan struct{})}
}

// ID returns the job identifier.
func (h *Handle) ID() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.snap.ID
}

// Snapshot returns a copy of the current job state.
func (h *Handle) Snapshot() Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.snap
}

// Done is closed once the job reached a terminal state and its outcome was
// recorded.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Wait blocks until the job finishes or ctx ends.
func (h *Handle) Wait(ctx context.Context) (Snapshot, error) {
	select {
	case <-h.done:
		return h.Snapshot(), nil
	case <-ctx.Done():
		return h.Snapshot(), ctx.Err()
	}
}

// update applies fn under the lock and returns the resulting snapshot.
func (h *Handle) update(fn func(*Snapshot)) Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	fn(&h.snap)
	h.snap.UpdatedAt = time.Now().UTC()
	return h.snap
}

// progress records a pipeline checkpoint. Percent never moves backwards.
func (h *Handle) progress(ev workflow.Event) Snapshot {
	return h.update(func(s *Snapshot) {
		if ev.Percent > s.Percent {
			s.Percent = ev.Percent
		}
		s.Message = ev.Message
	})
}

func (h *Handle) finish(fn func(*Snapshot)) Snapshot {
	return h.update(func(s *Snapshot) {
		fn(s)
		s.Done = true
		now := time.Now().UTC()
		s.FinishedAt = &now
	})
}

func (h *Handle) finished() (bool, time.Time) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.snap.State != string(queue.StatusSucceeded) && h.snap.State != string(queue.StatusFailed) {
		return false, time.Time{}
	}
	if h.snap.FinishedAt == nil {
		return true, time.Time{}
	}
	return true, *h.snap.FinishedAt
}
