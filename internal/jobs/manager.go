package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"mashup/internal/delivery"
	"mashup/internal/logging"
	"mashup/internal/notifications"
	"mashup/internal/queue"
	"mashup/internal/services"
	"mashup/internal/workflow"
)

// handleRetention bounds how long finished handles stay in memory. Older
// jobs are still served from the store.
const handleRetention = time.Hour

// OutputName is the file each job writes inside its output directory.
const OutputName = "mashup.mp3"

// Options configures a Manager.
type Options struct {
	Runner        Runner
	Delivery      Deliverer
	Notifier      notifications.Service
	Store         *queue.Store
	OutputDir     string
	MaxConcurrent int
	Logger        *slog.Logger
}

// Manager owns job handles and the worker semaphore.
type Manager struct {
	runner    Runner
	delivery  Deliverer
	notifier  notifications.Service
	store     *queue.Store
	outputDir string
	logger    *slog.Logger
	sem       chan struct{}

	mu      sync.RWMutex
	handles map[string]*Handle
	wg      sync.WaitGroup
}

// NewManager constructs a Manager. Store and Notifier are optional.
func NewManager(opts Options) *Manager {
	limit := opts.MaxConcurrent
	if limit < 1 {
		limit = 1
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = notifications.NewService(nil)
	}
	deliverer := opts.Delivery
	if deliverer == nil {
		deliverer = delivery.NewService(nil, opts.Logger)
	}
	return &Manager{
		runner:    opts.Runner,
		delivery:  deliverer,
		notifier:  notifier,
		store:     opts.Store,
		outputDir: opts.OutputDir,
		logger:    logging.NewComponentLogger(opts.Logger, "jobs"),
		sem:       make(chan struct{}, limit),
		handles:   make(map[string]*Handle),
	}
}

// DeliveryEnabled reports whether finished jobs are emailed.
func (m *Manager) DeliveryEnabled() bool {
	return m.delivery.Enabled()
}

// Submit validates and starts a job. The returned handle is already
// registered for Lookup.
func (m *Manager) Submit(ctx context.Context, sub Submission) (*Handle, error) {
	sub.SearchTerm = strings.TrimSpace(sub.SearchTerm)
	sub.Recipient = strings.TrimSpace(sub.Recipient)
	if err := sub.Validate(m.delivery.Enabled()); err != nil {
		return nil, err
	}
	if m.runner == nil {
		return nil, services.Wrap(services.ErrConfiguration, "jobs", "submit", "no pipeline runner configured", nil)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate job id: %w", err)
	}
	now := time.Now().UTC()
	snap := Snapshot{
		ID:          id.String(),
		SearchTerm:  sub.SearchTerm,
		Count:       sub.Count,
		ClipSeconds: sub.ClipSeconds,
		Recipient:   sub.Recipient,
		State:       string(queue.StatusPending),
		Message:     MessageWaiting,
		OutputPath:  filepath.Join(m.outputDir, id.String(), OutputName),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if m.store != nil {
		if err := m.store.Insert(ctx, snap.toJob()); err != nil {
			return nil, services.Wrap(services.ErrIO, "jobs", "submit", "record job", err)
		}
	}

	h := newHandle(snap)
	m.mu.Lock()
	m.forgetFinishedLocked(now.Add(-handleRetention))
	m.handles[snap.ID] = h
	m.mu.Unlock()

	jobCtx := services.WithJobID(context.WithoutCancel(ctx), snap.ID)
	logging.WithContext(jobCtx, m.logger).Info("job submitted",
		logging.String("search_term", sub.SearchTerm),
		logging.Int("count", sub.Count),
		logging.Int("clip_seconds", sub.ClipSeconds),
		logging.Bool("email", sub.Recipient != ""),
		logging.String(logging.FieldEventType, "job_submitted"),
	)

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.run(jobCtx, h)
	}()
	return h, nil
}

func (m *Manager) run(ctx context.Context, h *Handle) {
	defer close(h.done)
	logger := logging.WithContext(ctx, m.logger)

	m.sem <- struct{}{}
	defer func() { <-m.sem }()

	snap := h.update(func(s *Snapshot) {
		s.State = string(queue.StatusRunning)
		s.Message = "Starting..."
	})
	m.persist(ctx, snap)

	req := workflow.Request{
		SearchTerm:  snap.SearchTerm,
		Count:       snap.Count,
		ClipSeconds: snap.ClipSeconds,
		OutputPath:  snap.OutputPath,
	}
	output, err := m.runner.Run(ctx, req, func(ev workflow.Event) {
		m.persist(ctx, h.progress(ev))
	})
	if err != nil {
		m.fail(ctx, h, err)
		return
	}

	emailed := false
	if m.delivery.Enabled() && snap.Recipient != "" {
		if _, err := m.delivery.Deliver(ctx, delivery.Delivery{
			Recipient:   snap.Recipient,
			SearchTerm:  snap.SearchTerm,
			Count:       snap.Count,
			ClipSeconds: snap.ClipSeconds,
			AudioPath:   output,
		}); err != nil {
			m.fail(ctx, h, err)
			return
		}
		emailed = true
	}

	final := h.finish(func(s *Snapshot) {
		s.State = string(queue.StatusSucceeded)
		s.Percent = workflow.PercentComplete
		s.OutputPath = output
		s.Emailed = emailed
		if emailed {
			s.Message = MessageEmailSent
		} else {
			s.Message = workflow.MessageComplete
		}
	})
	m.persist(ctx, final)
	logger.Info("job finished",
		logging.String("output", output),
		logging.Bool("emailed", emailed),
		logging.String(logging.FieldEventType, "job_complete"),
	)
	if err := m.notifier.NotifyMashupCompleted(ctx, final.SearchTerm, final.Count, final.Recipient); err != nil {
		logger.Warn("completion notification failed", logging.Error(err))
	}
}

func (m *Manager) fail(ctx context.Context, h *Handle, err error) {
	final := h.finish(func(s *Snapshot) {
		s.State = string(queue.StatusFailed)
		s.Message = FailureMessage(err)
		s.Error = err.Error()
		s.ErrorKind = services.Kind(err)
	})
	m.persist(ctx, final)
	logging.ErrorWithContext(logging.WithContext(ctx, m.logger), "job failed", "job_failed",
		logging.Error(err),
		logging.String("error_kind", final.ErrorKind),
	)
	if notifyErr := m.notifier.NotifyMashupFailed(ctx, final.SearchTerm, err); notifyErr != nil {
		m.logger.Warn("failure notification failed", logging.Error(notifyErr))
	}
}

func (m *Manager) persist(ctx context.Context, snap Snapshot) {
	if m.store == nil {
		return
	}
	if err := m.store.Update(ctx, snap.toJob()); err != nil {
		logging.WithContext(ctx, m.logger).Warn("failed to persist job state",
			logging.String("state", snap.State),
			logging.Error(err),
			logging.String(logging.FieldImpact, "job history may be stale after restart"),
		)
	}
}

// Lookup returns the live handle for id.
func (m *Manager) Lookup(id string) (*Handle, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	h, ok := m.handles[id]
	return h, ok
}

// Describe returns the current state of a job, falling back to the store for
// jobs no longer held in memory.
func (m *Manager) Describe(ctx context.Context, id string) (Snapshot, error) {
	if h, ok := m.Lookup(id); ok {
		return h.Snapshot(), nil
	}
	if m.store == nil {
		return Snapshot{}, ErrNotFound
	}
	job, err := m.store.Get(ctx, id)
	if err != nil {
		return Snapshot{}, err
	}
	if job == nil {
		return Snapshot{}, ErrNotFound
	}
	return snapshotFromJob(job), nil
}

// List returns known jobs newest first. Live handles take precedence over
// stored rows.
func (m *Manager) List(ctx context.Context) ([]Snapshot, error) {
	byID := make(map[string]Snapshot)
	if m.store != nil {
		stored, err := m.store.List(ctx)
		if err != nil {
			return nil, err
		}
		for _, job := range stored {
			byID[job.ID] = snapshotFromJob(job)
		}
	}
	m.mu.RLock()
	for id, h := range m.handles {
		byID[id] = h.Snapshot()
	}
	m.mu.RUnlock()

	out := make([]Snapshot, 0, len(byID))
	for _, snap := range byID {
		out = append(out, snap)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Active counts jobs that have not finished.
func (m *Manager) Active() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	active := 0
	for _, h := range m.handles {
		if done, _ := h.finished(); !done {
			active++
		}
	}
	return active
}

// Wait blocks until every submitted job has finished.
func (m *Manager) Wait() {
	m.wg.Wait()
}

func (m *Manager) forgetFinishedLocked(cutoff time.Time) {
	if m.store == nil {
		return
	}
	for id, h := range m.handles {
		if done, at := h.finished(); done && !at.IsZero() && at.Before(cutoff) {
			delete(m.handles, id)
		}
	}
}
