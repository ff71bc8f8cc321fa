package staging

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"mashup/internal/logging"
	"mashup/internal/services"
)

// Prefix marks directories created by Create.
const Prefix = "mashup_"

// Workspace is an isolated scratch directory for a single pipeline run.
type Workspace struct {
	Root      string
	Downloads string
	Trimmed   string
}

// Create makes a uniquely named workspace under root. An empty root uses the
// system temp directory.
func Create(root string) (*Workspace, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		root = os.TempDir()
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, services.Wrap(services.ErrIO, "workspace", "create", "scratch root", err)
	}
	dir, err := os.MkdirTemp(root, Prefix+"*")
	if err != nil {
		return nil, services.Wrap(services.ErrIO, "workspace", "create", "scratch directory", err)
	}
	ws := &Workspace{
		Root:      dir,
		Downloads: filepath.Join(dir, "downloads"),
		Trimmed:   filepath.Join(dir, "trimmed"),
	}
	for _, sub := range []string{ws.Downloads, ws.Trimmed} {
		if err := os.Mkdir(sub, 0o755); err != nil {
			_ = os.RemoveAll(dir)
			return nil, services.Wrap(services.ErrIO, "workspace", "create", filepath.Base(sub), err)
		}
	}
	return ws, nil
}

// Release removes the workspace tree. Failures are logged and swallowed so
// cleanup never masks the run's own outcome. Only the first call acts; later
// calls return without touching the disk or logging.
func (w *Workspace) Release(logger *slog.Logger) {
	if w == nil || w.Root == "" {
		return
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	root := w.Root
	w.Root = ""
	if err := os.RemoveAll(root); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("failed to remove scratch workspace",
			logging.String("path", root),
			logging.Error(err),
			logging.String(logging.FieldEventType, "workspace_cleanup_failed"),
			logging.String(logging.FieldErrorHint, "check scratch_dir permissions"),
			logging.String(logging.FieldImpact, "disk space not reclaimed until the next stale sweep"),
		)
		return
	}
	logger.Debug("scratch workspace removed", logging.String("path", root))
}
