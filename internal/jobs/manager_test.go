package jobs_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"mashup/internal/acquire"
	"mashup/internal/delivery"
	"mashup/internal/jobs"
	"mashup/internal/logging"
	"mashup/internal/merge"
	"mashup/internal/queue"
	"mashup/internal/services"
	"mashup/internal/testsupport"
	"mashup/internal/trim"
	"mashup/internal/workflow"
)

type fakeDelivery struct {
	mu      sync.Mutex
	enabled bool
	err     error
	sent    []delivery.Delivery
}

func (f *fakeDelivery) Enabled() bool { return f.enabled }

func (f *fakeDelivery) Deliver(_ context.Context, d delivery.Delivery) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, d)
	return filepath.Join(filepath.Dir(d.AudioPath), delivery.AttachmentName), f.err
}

func (f *fakeDelivery) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type fakeNotifier struct {
	mu        sync.Mutex
	completed int
	failed    int
}

func (f *fakeNotifier) NotifyMashupCompleted(context.Context, string, int, string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.completed++
	return nil
}

func (f *fakeNotifier) NotifyMashupFailed(context.Context, string, error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failed++
	return nil
}

func (f *fakeNotifier) TestNotification(context.Context) error { return nil }

func pipelineRunner(t *testing.T, scratch string) jobs.Runner {
	t.Helper()
	codec := &testsupport.FakeCodec{}
	logger := logging.NewNop()
	return workflow.NewCoordinator(
		acquire.New(&testsupport.FakeSearcher{T: t, Tracks: 12, Length: time.Minute}, logger),
		trim.New(codec, logger),
		merge.New(codec, logger),
		scratch,
		logger,
	)
}

func waitFor(t *testing.T, h *jobs.Handle) jobs.Snapshot {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	snap, err := h.Wait(ctx)
	if err != nil {
		t.Fatalf("job %s did not finish: %v", h.ID(), err)
	}
	return snap
}

var validSubmission = jobs.Submission{SearchTerm: "Test Artist", Count: 12, ClipSeconds: 25, Recipient: "fan@example.com"}

func TestSubmitRejectsInvalidRequests(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	mgr := jobs.NewManager(jobs.Options{
		Runner:    jobs.RunnerFunc(func(context.Context, workflow.Request, workflow.Observer) (string, error) { return "", nil }),
		Delivery:  &fakeDelivery{enabled: true},
		OutputDir: cfg.Paths.OutputDir,
		Logger:    logging.NewNop(),
	})

	cases := []jobs.Submission{
		{SearchTerm: "A", Count: 10, ClipSeconds: 30, Recipient: "fan@example.com"},
		{SearchTerm: "A", Count: 11, ClipSeconds: 20, Recipient: "fan@example.com"},
		{SearchTerm: "", Count: 11, ClipSeconds: 21, Recipient: "fan@example.com"},
		{SearchTerm: "A", Count: 11, ClipSeconds: 21, Recipient: "not-an-email"},
		{SearchTerm: "A", Count: 11, ClipSeconds: 21},
	}
	for _, sub := range cases {
		if _, err := mgr.Submit(context.Background(), sub); !errors.Is(err, services.ErrInvalidRequest) {
			t.Fatalf("%+v: expected ErrInvalidRequest, got %v", sub, err)
		}
	}
	if list, _ := mgr.List(context.Background()); len(list) != 0 {
		t.Fatalf("rejected submissions should not be tracked: %v", list)
	}
}

func TestSubmitRunsPipelineAndEmails(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	deliverer := &fakeDelivery{enabled: true}
	notifier := &fakeNotifier{}
	mgr := jobs.NewManager(jobs.Options{
		Runner:    pipelineRunner(t, cfg.Paths.ScratchDir),
		Delivery:  deliverer,
		Notifier:  notifier,
		Store:     store,
		OutputDir: cfg.Paths.OutputDir,
		Logger:    logging.NewNop(),
	})

	h, err := mgr.Submit(context.Background(), validSubmission)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	snap := waitFor(t, h)

	if !snap.Done || snap.Percent != 100 || snap.State != string(queue.StatusSucceeded) {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if snap.Message != "Email sent." || !snap.Emailed || snap.Error != "" {
		t.Fatalf("unexpected outcome: %+v", snap)
	}
	wantOutput := filepath.Join(cfg.Paths.OutputDir, h.ID(), jobs.OutputName)
	if snap.OutputPath != wantOutput {
		t.Fatalf("output = %q, want %q", snap.OutputPath, wantOutput)
	}
	if _, err := os.Stat(wantOutput); err != nil {
		t.Fatalf("output missing: %v", err)
	}
	if deliverer.count() != 1 || deliverer.sent[0].Recipient != "fan@example.com" || deliverer.sent[0].AudioPath != wantOutput {
		t.Fatalf("unexpected deliveries: %+v", deliverer.sent)
	}
	if notifier.completed != 1 || notifier.failed != 0 {
		t.Fatalf("unexpected notifications: %+v", notifier)
	}

	stored, err := store.Get(context.Background(), h.ID())
	if err != nil || stored == nil {
		t.Fatalf("stored job missing: %v", err)
	}
	if stored.Status != queue.StatusSucceeded || !stored.Emailed || stored.ProgressPercent != 100 {
		t.Fatalf("unexpected stored job: %#v", stored)
	}
}

func TestSubmitWithoutMailReportsComplete(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	mgr := jobs.NewManager(jobs.Options{
		Runner:    pipelineRunner(t, cfg.Paths.ScratchDir),
		OutputDir: cfg.Paths.OutputDir,
		Logger:    logging.NewNop(),
	})
	sub := validSubmission
	sub.Recipient = ""

	h, err := mgr.Submit(context.Background(), sub)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	snap := waitFor(t, h)
	if snap.Message != "Mashup complete." || snap.Emailed {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
}

func TestPipelineFailureIsRecorded(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	deliverer := &fakeDelivery{enabled: true}
	notifier := &fakeNotifier{}
	cause := services.Wrap(services.ErrNoResults, "acquire", "", "no audio files could be downloaded", nil)
	mgr := jobs.NewManager(jobs.Options{
		Runner: jobs.RunnerFunc(func(_ context.Context, _ workflow.Request, observe workflow.Observer) (string, error) {
			observe(workflow.Event{Percent: 5, Message: workflow.MessageStarted})
			return "", &workflow.StageError{Stage: workflow.StateAcquiring, Err: cause}
		}),
		Delivery:  deliverer,
		Notifier:  notifier,
		Store:     store,
		OutputDir: cfg.Paths.OutputDir,
		Logger:    logging.NewNop(),
	})

	h, err := mgr.Submit(context.Background(), validSubmission)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	snap := waitFor(t, h)

	if !snap.Done || snap.State != string(queue.StatusFailed) || snap.ErrorKind != "no_results" {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if !strings.HasPrefix(snap.Message, "Something went wrong while creating or sending mashup: ") || !strings.Contains(snap.Message, "no audio files") {
		t.Fatalf("unexpected message: %q", snap.Message)
	}
	if snap.Error == "" {
		t.Fatal("error should be set")
	}
	if deliverer.count() != 0 {
		t.Fatal("no email should be sent on failure")
	}
	if notifier.failed != 1 {
		t.Fatalf("expected failure notification, got %+v", notifier)
	}
	stored, _ := store.Get(context.Background(), h.ID())
	if stored.Status != queue.StatusFailed || stored.ErrorMessage == "" {
		t.Fatalf("unexpected stored job: %#v", stored)
	}
}

func TestDeliveryFailureFailsJob(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	mgr := jobs.NewManager(jobs.Options{
		Runner:    pipelineRunner(t, cfg.Paths.ScratchDir),
		Delivery:  &fakeDelivery{enabled: true, err: errors.New("relay refused")},
		OutputDir: cfg.Paths.OutputDir,
		Logger:    logging.NewNop(),
	})
	h, err := mgr.Submit(context.Background(), validSubmission)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	snap := waitFor(t, h)
	if snap.State != string(queue.StatusFailed) || !strings.Contains(snap.Message, "relay refused") {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
}

func TestJobsKeepSeparateProgressAndQueue(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	release := make(chan struct{})
	started := make(chan string, 2)
	mgr := jobs.NewManager(jobs.Options{
		Runner: jobs.RunnerFunc(func(ctx context.Context, req workflow.Request, observe workflow.Observer) (string, error) {
			observe(workflow.Event{Percent: 40, Message: workflow.DownloadedMessage(req.Count)})
			id, _ := services.JobIDFromContext(ctx)
			started <- id
			<-release
			return req.OutputPath, nil
		}),
		OutputDir:     cfg.Paths.OutputDir,
		MaxConcurrent: 1,
		Logger:        logging.NewNop(),
	})

	sub := validSubmission
	sub.Recipient = ""
	first, err := mgr.Submit(context.Background(), sub)
	if err != nil {
		t.Fatalf("Submit first: %v", err)
	}
	select {
	case id := <-started:
		if id != first.ID() {
			t.Fatalf("job id in context = %q, want %q", id, first.ID())
		}
	case <-time.After(5 * time.Second):
		t.Fatal("first job did not start")
	}

	sub.Count = 20
	second, err := mgr.Submit(context.Background(), sub)
	if err != nil {
		t.Fatalf("Submit second: %v", err)
	}
	if first.ID() == second.ID() {
		t.Fatal("job ids must be unique")
	}

	if snap := first.Snapshot(); snap.Percent != 40 || snap.Message != "Downloaded 12 tracks." {
		t.Fatalf("first job progress: %+v", snap)
	}
	if snap := second.Snapshot(); snap.Percent != 0 || snap.Message != jobs.MessageWaiting {
		t.Fatalf("second job should be waiting: %+v", snap)
	}
	if mgr.Active() != 2 {
		t.Fatalf("expected 2 active jobs, got %d", mgr.Active())
	}

	close(release)
	mgr.Wait()
	if snap := second.Snapshot(); !snap.Done || snap.Percent != 100 {
		t.Fatalf("second job did not finish: %+v", snap)
	}
	if mgr.Active() != 0 {
		t.Fatalf("expected no active jobs, got %d", mgr.Active())
	}
}

func TestSubmitDetachesFromCallerContext(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	mgr := jobs.NewManager(jobs.Options{
		Runner: jobs.RunnerFunc(func(ctx context.Context, req workflow.Request, _ workflow.Observer) (string, error) {
			time.Sleep(20 * time.Millisecond)
			if err := ctx.Err(); err != nil {
				return "", err
			}
			return req.OutputPath, nil
		}),
		OutputDir: cfg.Paths.OutputDir,
		Logger:    logging.NewNop(),
	})
	ctx, cancel := context.WithCancel(context.Background())
	sub := validSubmission
	sub.Recipient = ""
	h, err := mgr.Submit(ctx, sub)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	cancel()
	if snap := waitFor(t, h); snap.State != string(queue.StatusSucceeded) {
		t.Fatalf("job should survive caller cancellation: %+v", snap)
	}
}

func TestDescribeFallsBackToStore(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	runner := jobs.RunnerFunc(func(_ context.Context, req workflow.Request, _ workflow.Observer) (string, error) {
		return req.OutputPath, nil
	})
	first := jobs.NewManager(jobs.Options{Runner: runner, Store: store, OutputDir: cfg.Paths.OutputDir, Logger: logging.NewNop()})
	sub := validSubmission
	sub.Recipient = ""
	h, err := first.Submit(context.Background(), sub)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	waitFor(t, h)

	restarted := jobs.NewManager(jobs.Options{Runner: runner, Store: store, OutputDir: cfg.Paths.OutputDir, Logger: logging.NewNop()})
	if _, ok := restarted.Lookup(h.ID()); ok {
		t.Fatal("new manager should not hold the old handle")
	}
	snap, err := restarted.Describe(context.Background(), h.ID())
	if err != nil {
		t.Fatalf("Describe: %v", err)
	}
	if !snap.Done || snap.Percent != 100 || snap.Message != "Mashup complete." {
		t.Fatalf("unexpected stored snapshot: %+v", snap)
	}
	list, err := restarted.List(context.Background())
	if err != nil || len(list) != 1 || list[0].ID != h.ID() {
		t.Fatalf("List = %v, %v", list, err)
	}
	if _, err := restarted.Describe(context.Background(), "missing"); !errors.Is(err, jobs.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
