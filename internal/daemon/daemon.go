package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"mashup/internal/config"
	"mashup/internal/deps"
	"mashup/internal/jobs"
	"mashup/internal/logging"
	"mashup/internal/preflight"
	"mashup/internal/queue"
	"mashup/internal/staging"
)

// LockName is the lock file created inside the log directory.
const LockName = "mashupd.lock"

// Daemon owns the job manager, the HTTP server, and the instance lock.
type Daemon struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   *queue.Store
	jobs    *jobs.Manager
	logPath string

	lockPath string
	lock     *flock.Flock
	api      *apiServer

	mu      sync.Mutex
	running atomic.Bool
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running         bool
	PID             int
	JobsDBPath      string
	LockFilePath    string
	LogPath         string
	ActiveJobs      int
	JobCounts       map[queue.Status]int
	Workspaces      int
	DeliveryEnabled bool
	Dependencies    []deps.Status
}

// New constructs a daemon. logPath is informational and may be empty.
func New(cfg *config.Config, store *queue.Store, logger *slog.Logger, mgr *jobs.Manager, logPath string) (*Daemon, error) {
	if cfg == nil || store == nil || mgr == nil {
		return nil, errors.New("daemon requires config, store, and job manager")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	lockPath := filepath.Join(cfg.Paths.LogDir, LockName)
	d := &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		store:    store,
		jobs:     mgr,
		logPath:  logPath,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}
	d.api = newAPIServer(cfg.Paths.APIBind, cfg.Paths.APIToken, d, logger)
	return d, nil
}

// Start acquires the instance lock, runs startup housekeeping, and begins
// serving HTTP.
func (d *Daemon) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another mashup daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.housekeeping(runCtx)

	if err := d.api.start(runCtx); err != nil {
		cancel()
		_ = d.lock.Unlock()
		return err
	}

	d.cancel = cancel
	d.running.Store(true)
	d.logger.Info("mashup daemon started",
		logging.String("lock", d.lockPath),
		logging.String("address", d.api.address()),
		logging.Bool("delivery", d.jobs.DeliveryEnabled()),
	)
	return nil
}

// Stop stops accepting requests, waits for running jobs, and releases the
// lock. Started jobs are never cancelled.
func (d *Daemon) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.api.stop()
	if active := d.jobs.Active(); active > 0 {
		d.logger.Info("waiting for running jobs", logging.Int("active", active))
	}
	d.jobs.Wait()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("mashup daemon stopped")
}

// Close stops the daemon and closes the store.
func (d *Daemon) Close() error {
	d.Stop()
	return d.store.Close()
}

// Addr returns the address the HTTP server listens on, or "" when disabled.
func (d *Daemon) Addr() string {
	return d.api.address()
}

// LogPath returns the path to the daemon log file.
func (d *Daemon) LogPath() string {
	return d.logPath
}

// Jobs exposes the job manager.
func (d *Daemon) Jobs() *jobs.Manager {
	return d.jobs
}

// Status returns the current daemon status.
func (d *Daemon) Status(ctx context.Context) Status {
	status := Status{
		Running:         d.running.Load(),
		PID:             os.Getpid(),
		JobsDBPath:      d.store.Path(),
		LockFilePath:    d.lockPath,
		LogPath:         d.logPath,
		ActiveJobs:      d.jobs.Active(),
		DeliveryEnabled: d.jobs.DeliveryEnabled(),
		Dependencies:    preflight.CheckSystemDeps(ctx, d.cfg),
	}
	if counts, err := d.store.Stats(ctx); err != nil {
		d.logger.Warn("job stats unavailable", logging.Error(err))
	} else {
		status.JobCounts = counts
	}
	if workspaces, err := staging.ListWorkspaces(d.cfg.Paths.ScratchDir); err == nil {
		status.Workspaces = len(workspaces)
	}
	return status
}

func (d *Daemon) housekeeping(ctx context.Context) {
	if hours := d.cfg.Jobs.StaleWorkspaceHours; hours > 0 {
		result := staging.CleanStale(ctx, d.cfg.Paths.ScratchDir, time.Duration(hours)*time.Hour, d.logger)
		if len(result.Removed) > 0 {
			d.logger.Info("removed stale workspaces", logging.Int("count", len(result.Removed)))
		}
	}

	if n, err := d.store.MarkInterrupted(ctx); err != nil {
		logging.WarnWithContext(d.logger, "failed to mark interrupted jobs", "startup_recovery_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "jobs from a previous run may appear stuck"),
		)
	} else if n > 0 {
		d.logger.Info("marked interrupted jobs failed", logging.Int64("count", n))
	}

	if days := d.cfg.Jobs.RetentionDays; days > 0 {
		cutoff := time.Now().AddDate(0, 0, -days)
		if n, err := d.store.PruneFinished(ctx, cutoff); err != nil {
			d.logger.Warn("failed to prune job history", logging.Error(err))
		} else if n > 0 {
			d.logger.Info("pruned job history", logging.Int64("count", n))
		}
		if removed := pruneOutputs(d.cfg.Paths.OutputDir, cutoff); removed > 0 {
			d.logger.Info("pruned job outputs", logging.Int("count", removed))
		}
	}

	if d.cfg.Logging.RetentionDays > 0 {
		logging.CleanupOldLogs(d.logger, d.cfg.Logging.RetentionDays, logging.RetentionTarget{
			Dir:     d.cfg.Paths.LogDir,
			Pattern: "mashup*.log",
			Keep:    []string{d.logPath},
		})
	}

	for _, failed := range preflight.Failed(preflight.RunAll(ctx, d.cfg)) {
		logging.WarnWithContext(d.logger, "preflight check failed", "preflight_failed",
			logging.String("check", failed.Name),
			logging.String("detail", failed.Detail),
			logging.String(logging.FieldErrorHint, "jobs will fail until this is resolved"),
		)
	}
}

// pruneOutputs removes per-job output directories older than cutoff. Only
// directories named by a job ID are considered.
func pruneOutputs(outputDir string, cutoff time.Time) int {
	entries, err := os.ReadDir(outputDir)
	if err != nil {
		return 0
	}
	removed := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, err := uuid.Parse(entry.Name()); err != nil {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if os.RemoveAll(filepath.Join(outputDir, entry.Name())) == nil {
			removed++
		}
	}
	return removed
}
