package main

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"mashup/internal/acquire"
	"mashup/internal/config"
	"mashup/internal/jobs"
	"mashup/internal/merge"
	"mashup/internal/queue"
	"mashup/internal/testsupport"
	"mashup/internal/trim"
	"mashup/internal/workflow"
)

type cliEnv struct {
	base       string
	configPath string
}

func setupCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	base := t.TempDir()
	t.Setenv("HOME", filepath.Join(base, "home"))
	configPath := filepath.Join(base, "config.toml")
	content := fmt.Sprintf(`[paths]
scratch_dir = %q
output_dir = %q
log_dir = %q
api_bind = "127.0.0.1:0"
`, filepath.Join(base, "scratch"), filepath.Join(base, "output"), filepath.Join(base, "logs"))
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return &cliEnv{base: base, configPath: configPath}
}

func (e *cliEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	err := execute(context.Background(), cmd, append([]string{"--config", e.configPath}, args...))
	return out.String(), err
}

func useFakePipeline(t *testing.T, tracks int, length time.Duration) {
	t.Helper()
	previous := newRunner
	newRunner = func(cfg *config.Config, logger *slog.Logger) jobs.Runner {
		codec := &testsupport.FakeCodec{}
		return workflow.NewCoordinator(
			acquire.New(&testsupport.FakeSearcher{T: t, Tracks: tracks, Length: length}, logger),
			trim.New(codec, logger),
			merge.New(codec, logger),
			cfg.Paths.ScratchDir,
			logger,
		)
	}
	t.Cleanup(func() { newRunner = previous })
}

func TestArgumentErrors(t *testing.T) {
	env := setupCLIEnv(t)
	useFakePipeline(t, 15, time.Minute)

	cases := []struct {
		args []string
		want string
	}{
		{[]string{"Artist", "12", "25"}, "Error: Incorrect number of parameters.\n" + usageLine},
		{[]string{"Artist", "twelve", "25", "out.mp3"}, "Error: <Count> and <ClipSeconds> must be integers."},
		{[]string{"Artist", "12", "2.5", "out.mp3"}, "Error: <Count> and <ClipSeconds> must be integers."},
		{[]string{"Artist", "10", "25", "out.mp3"}, "Error: <Count> must be greater than 10."},
		{[]string{"Artist", "12", "20", "out.mp3"}, "Error: <ClipSeconds> must be greater than 20."},
		{[]string{"Artist", "-5", "25", "out.mp3"}, "Error: <Count> must be greater than 10."},
		{[]string{"Artist", "15", "-1", "out.mp3"}, "Error: <ClipSeconds> must be greater than 20."},
		{[]string{"-v", "Artist", "-1", "25", "out.mp3"}, "Error: <Count> must be greater than 10."},
	}
	for _, tc := range cases {
		out, err := env.run(t, tc.args...)
		if err == nil {
			t.Fatalf("%v: expected error", tc.args)
		}
		if got := formatError(err); got != tc.want {
			t.Fatalf("%v: got %q, want %q", tc.args, got, tc.want)
		}
		if strings.Contains(out, "Creating mashup") {
			t.Fatalf("%v: pipeline should not start: %q", tc.args, out)
		}
	}
}

func TestRunCreatesMashup(t *testing.T) {
	env := setupCLIEnv(t)
	useFakePipeline(t, 15, time.Minute)
	output := filepath.Join(env.base, "out.mp3")

	out, err := env.run(t, "Test Artist", "15", "25", output)
	if err != nil {
		t.Fatalf("run: %v\n%s", err, out)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	want := []string{
		"Creating mashup, please wait...",
		"[  5%] Starting download...",
		"[ 40%] Downloaded 15 tracks.",
		"[ 75%] Audio trimmed.",
		"[100%] Mashup complete.",
		"Mashup created successfully: " + output,
	}
	if strings.Join(lines, "\n") != strings.Join(want, "\n") {
		t.Fatalf("unexpected output:\n%s", out)
	}
	if total := testsupport.TotalDuration(testsupport.ReadTimeline(t, output)); total != 375*time.Second {
		t.Fatalf("expected 375s mashup, got %s", total)
	}
}

func TestSearchTermNamedLikeSubcommand(t *testing.T) {
	env := setupCLIEnv(t)
	useFakePipeline(t, 12, time.Minute)

	for _, term := range []string{"deps", "jobs", "help"} {
		output := filepath.Join(env.base, term+".mp3")
		out, err := env.run(t, term, "12", "25", output)
		if err != nil {
			t.Fatalf("%s: run: %v\n%s", term, err, out)
		}
		if !strings.Contains(out, "Mashup created successfully: "+output) {
			t.Fatalf("%s: expected mashup run, got %q", term, out)
		}
	}
}

func TestEscapeSearchTerm(t *testing.T) {
	root := newRootCommand()
	cases := []struct {
		args []string
		want []string
	}{
		{[]string{"deps", "15", "25", "o.mp3"}, []string{"--", "deps", "15", "25", "o.mp3"}},
		{[]string{"-c", "x.toml", "-v", "serve", "15", "25", "o.mp3"}, []string{"-c", "x.toml", "-v", "--", "serve", "15", "25", "o.mp3"}},
		{[]string{"deps"}, []string{"deps"}},
		{[]string{"config", "init", "--path", "x"}, []string{"config", "init", "--path", "x"}},
		{[]string{"jobs", "--status", "failed", "x"}, []string{"jobs", "--status", "failed", "x"}},
		{[]string{"Artist", "15", "25", "o.mp3"}, []string{"Artist", "15", "25", "o.mp3"}},
		{[]string{"--", "deps", "15", "25", "o.mp3"}, []string{"--", "deps", "15", "25", "o.mp3"}},
	}
	for _, tc := range cases {
		if got := escapeSearchTerm(root, tc.args); !reflect.DeepEqual(got, tc.want) {
			t.Errorf("escapeSearchTerm(%q) = %q, want %q", tc.args, got, tc.want)
		}
	}
}

func TestRunReportsPipelineFailure(t *testing.T) {
	env := setupCLIEnv(t)
	useFakePipeline(t, 0, time.Minute)

	_, err := env.run(t, "Nobody", "11", "21", filepath.Join(env.base, "out.mp3"))
	if err == nil {
		t.Fatal("expected failure with no search results")
	}
	if got := formatError(err); !strings.HasPrefix(got, "Error: ") {
		t.Fatalf("pipeline errors should be prefixed: %q", got)
	}
	if _, statErr := os.Stat(filepath.Join(env.base, "out.mp3")); !os.IsNotExist(statErr) {
		t.Fatalf("no output expected, stat err=%v", statErr)
	}
}

func TestConfigInit(t *testing.T) {
	env := setupCLIEnv(t)
	target := filepath.Join(env.base, "nested", "mashup.toml")

	out, err := env.run(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, target) {
		t.Fatalf("expected target in output: %q", out)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("sample not written: %v", err)
	}
	if _, err := env.run(t, "config", "init", "--path", target); err == nil {
		t.Fatal("expected refusal to overwrite")
	}
	if _, err := env.run(t, "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
}

func TestJobsCommandListsHistory(t *testing.T) {
	env := setupCLIEnv(t)
	cfg, _, _, err := config.Load(env.configPath)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()
	for _, job := range []*queue.Job{
		{ID: "job-ok", SearchTerm: "first artist", Count: 11, ClipSeconds: 21, Status: queue.StatusSucceeded, ProgressPercent: 100, ProgressMessage: "Email sent."},
		{ID: "job-bad", SearchTerm: "second artist", Count: 12, ClipSeconds: 22, Status: queue.StatusFailed, ErrorMessage: "no results"},
	} {
		if err := store.Insert(ctx, job); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}

	out, err := env.run(t, "jobs")
	if err != nil {
		t.Fatalf("jobs: %v", err)
	}
	for _, want := range []string{"job-ok", "job-bad", "First Artist", "no results"} {
		if !strings.Contains(out, want) {
			t.Fatalf("jobs output missing %q:\n%s", want, out)
		}
	}

	out, err = env.run(t, "jobs", "--status", "failed")
	if err != nil {
		t.Fatalf("jobs --status: %v", err)
	}
	if strings.Contains(out, "job-ok") || !strings.Contains(out, "job-bad") {
		t.Fatalf("status filter not applied:\n%s", out)
	}

	if _, err := env.run(t, "jobs", "--status", "bogus"); err == nil {
		t.Fatal("expected unknown status error")
	}
}

func TestDepsCommand(t *testing.T) {
	env := setupCLIEnv(t)
	binDir := filepath.Join(env.base, "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"ffmpeg", "ffprobe", "yt-dlp"} {
		if err := os.WriteFile(filepath.Join(binDir, name), []byte("#!/bin/sh\necho \"$0 1.0\"\n"), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	t.Setenv("PATH", binDir)

	out, err := env.run(t, "deps")
	if err != nil {
		t.Fatalf("deps: %v\n%s", err, out)
	}
	for _, want := range []string{"ffmpeg", "ffprobe", "yt-dlp", "yes"} {
		if !strings.Contains(out, want) {
			t.Fatalf("deps output missing %q:\n%s", want, out)
		}
	}

	t.Setenv("PATH", t.TempDir())
	if _, err := env.run(t, "deps"); err == nil {
		t.Fatal("expected missing dependency error")
	}
}
