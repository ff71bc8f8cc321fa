package staging

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"mashup/internal/logging"
)

// DirInfo describes a workspace found under the scratch root.
type DirInfo struct {
	Name    string
	Path    string
	ModTime time.Time
	Size    int64
}

// SweepResult reports what CleanStale removed and what it could not.
type SweepResult struct {
	Removed []string
	Errors  []SweepError
}

type SweepError struct {
	Path string
	Err  error
}

func (e SweepError) Error() string { return e.Path + ": " + e.Err.Error() }

// scan visits every directory under root carrying the workspace prefix.
// Anything else is ignored because the scratch root is usually the shared
// system temp directory. A missing root is not an error.
func scan(root string, visit func(entry fs.DirEntry, path string) error) error {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil
	}
	entries, err := os.ReadDir(root)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() && strings.HasPrefix(entry.Name(), Prefix) {
			if err := visit(entry, filepath.Join(root, entry.Name())); err != nil {
				return err
			}
		}
	}
	return nil
}

// CleanStale deletes workspaces under scratchDir last modified more than
// maxAge ago. It stops early when ctx is cancelled.
func CleanStale(ctx context.Context, scratchDir string, maxAge time.Duration, logger *slog.Logger) SweepResult {
	var result SweepResult
	if maxAge <= 0 {
		return result
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	cutoff := time.Now().Add(-maxAge)

	err := scan(scratchDir, func(entry fs.DirEntry, path string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		info, err := entry.Info()
		if err != nil {
			result.Errors = append(result.Errors, SweepError{Path: path, Err: err})
			return nil
		}
		if !info.ModTime().Before(cutoff) {
			return nil
		}
		if err := os.RemoveAll(path); err != nil {
			result.Errors = append(result.Errors, SweepError{Path: path, Err: err})
			logging.WarnWithContext(logger, "stale workspace not removed", "workspace_sweep_failed",
				logging.String("path", path),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check scratch_dir permissions"),
				logging.String(logging.FieldImpact, "disk space not reclaimed"),
			)
			return nil
		}
		result.Removed = append(result.Removed, path)
		logger.Info("stale workspace removed",
			logging.String("path", path),
			logging.Duration("age", time.Since(info.ModTime()).Round(time.Second)),
			logging.String(logging.FieldEventType, "workspace_sweep"),
		)
		return nil
	})
	if err != nil && ctx.Err() == nil {
		result.Errors = append(result.Errors, SweepError{Path: scratchDir, Err: err})
	}
	return result
}

// ListWorkspaces reports the workspaces currently under scratchDir.
func ListWorkspaces(scratchDir string) ([]DirInfo, error) {
	var dirs []DirInfo
	err := scan(scratchDir, func(entry fs.DirEntry, path string) error {
		info, err := entry.Info()
		if err != nil {
			return nil
		}
		dirs = append(dirs, DirInfo{
			Name:    entry.Name(),
			Path:    path,
			ModTime: info.ModTime(),
			Size:    treeSize(path),
		})
		return nil
	})
	return dirs, err
}

// treeSize sums regular file sizes under root, skipping unreadable entries.
func treeSize(root string) int64 {
	var total int64
	_ = filepath.WalkDir(root, func(_ string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if info, infoErr := d.Info(); infoErr == nil && info.Mode().IsRegular() {
			total += info.Size()
		}
		return nil
	})
	return total
}
