package api

import (
	"time"

	"mashup/internal/deps"
	"mashup/internal/jobs"
	"mashup/internal/queue"
)

// FromSnapshot converts a job snapshot to its API representation.
func FromSnapshot(snap jobs.Snapshot) Job {
	return Job{
		ID:          snap.ID,
		SearchTerm:  snap.SearchTerm,
		Count:       snap.Count,
		ClipSeconds: snap.ClipSeconds,
		Email:       snap.Recipient,
		State:       snap.State,
		Percent:     snap.Percent,
		Message:     snap.Message,
		Done:        snap.Done,
		Error:       snap.Error,
		ErrorKind:   snap.ErrorKind,
		Emailed:     snap.Emailed,
		CreatedAt:   formatTime(snap.CreatedAt),
		UpdatedAt:   formatTime(snap.UpdatedAt),
		FinishedAt:  formatTimePtr(snap.FinishedAt),
	}
}

// FromSnapshots converts a list of snapshots, preserving order.
func FromSnapshots(snaps []jobs.Snapshot) []Job {
	out := make([]Job, 0, len(snaps))
	for _, snap := range snaps {
		out = append(out, FromSnapshot(snap))
	}
	return out
}

// FromDependencies converts dependency checks.
func FromDependencies(statuses []deps.Status) []DependencyStatus {
	out := make([]DependencyStatus, 0, len(statuses))
	for _, dep := range statuses {
		out = append(out, DependencyStatus{
			Name:        dep.Name,
			Command:     dep.Command,
			Description: dep.Description,
			Optional:    dep.Optional,
			Available:   dep.Available,
			Version:     dep.Version,
			Detail:      dep.Detail,
		})
	}
	return out
}

// JobCounts renders store stats keyed by status string, always including
// every known status.
func JobCounts(stats map[queue.Status]int) map[string]int {
	out := map[string]int{
		string(queue.StatusPending):   0,
		string(queue.StatusRunning):   0,
		string(queue.StatusSucceeded): 0,
		string(queue.StatusFailed):    0,
	}
	for status, count := range stats {
		out[string(status)] += count
	}
	return out
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateTimeFormat)
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatTime(*t)
}
