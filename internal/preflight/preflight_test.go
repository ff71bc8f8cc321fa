package preflight

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"mashup/internal/config"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckSMTP(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			_ = conn.Close()
		}
	}()
	host, portStr, _ := net.SplitHostPort(ln.Addr().String())
	port, _ := strconv.Atoi(portStr)

	if result := CheckSMTP(context.Background(), host, port); !result.Passed {
		t.Fatalf("expected reachable relay, got %s", result.Detail)
	}
	if result := CheckSMTP(context.Background(), "", port); result.Passed {
		t.Fatal("expected failure for missing host")
	}
	if result := CheckSMTP(context.Background(), host, 0); result.Passed {
		t.Fatal("expected failure for missing port")
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	if results := RunAll(context.Background(), nil); results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAll_MinimalConfig(t *testing.T) {
	binDir := t.TempDir()
	for _, name := range []string{"yt-dlp", "ffmpeg", "ffprobe"} {
		if err := os.WriteFile(filepath.Join(binDir, name), []byte("#!/bin/sh\necho ok\n"), 0o755); err != nil {
			t.Fatalf("write stub: %v", err)
		}
	}
	t.Setenv("PATH", binDir)

	cfg := config.Default()
	cfg.Paths.ScratchDir = t.TempDir()
	cfg.Paths.OutputDir = t.TempDir()

	results := RunAll(context.Background(), &cfg)
	// Scratch + output directories and three binaries; mail is disabled.
	if len(results) != 5 {
		t.Fatalf("expected 5 results, got %d: %#v", len(results), results)
	}
	if failed := Failed(results); len(failed) != 0 {
		t.Fatalf("unexpected failures: %#v", failed)
	}
}

func TestRunAll_ReportsMissingBinaries(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	cfg := config.Default()
	cfg.Paths.ScratchDir = t.TempDir()
	cfg.Paths.OutputDir = t.TempDir()

	failed := Failed(RunAll(context.Background(), &cfg))
	if len(failed) != 3 {
		t.Fatalf("expected 3 failed binary checks, got %#v", failed)
	}
}
