package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"mashup/internal/config"
	"mashup/internal/queue"
)

// Option tweaks the config built by NewConfig. base is the per-test root.
type Option func(t testing.TB, base string, cfg *config.Config)

// NewConfig returns defaults rooted in a fresh temp directory, with the
// API bound to an ephemeral port. The directories exist on return.
func NewConfig(t testing.TB, opts ...Option) *config.Config {
	t.Helper()
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths = config.Paths{
		ScratchDir: filepath.Join(base, "scratch"),
		OutputDir:  filepath.Join(base, "output"),
		LogDir:     filepath.Join(base, "logs"),
		APIBind:    "127.0.0.1:0",
	}
	for _, opt := range opts {
		opt(t, base, &cfg)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("create test directories: %v", err)
	}
	return &cfg
}

func WithAPIToken(token string) Option {
	return func(_ testing.TB, _ string, cfg *config.Config) { cfg.Paths.APIToken = token }
}

// WithStubbedBinaries puts no-op executables named after names (default:
// ffmpeg, ffprobe, yt-dlp) first on PATH for the rest of the test.
func WithStubbedBinaries(names ...string) Option {
	return func(t testing.TB, base string, _ *config.Config) {
		if len(names) == 0 {
			names = []string{"ffmpeg", "ffprobe", "yt-dlp"}
		}
		bin := filepath.Join(base, "bin")
		if err := os.MkdirAll(bin, 0o755); err != nil {
			t.Fatalf("create stub dir: %v", err)
		}
		for _, name := range names {
			if err := os.WriteFile(filepath.Join(bin, name), []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
				t.Fatalf("write stub %s: %v", name, err)
			}
		}
		t.Setenv("PATH", bin+string(os.PathListSeparator)+os.Getenv("PATH"))
	}
}

// MustOpenStore opens the job store under cfg's log directory and closes it
// when the test ends.
func MustOpenStore(t testing.TB, cfg *config.Config) *queue.Store {
	t.Helper()
	store, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("open job store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}
