package acquire

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"mashup/internal/config"
	"mashup/internal/logging"
)

func touch(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestCollectCandidatesOrdersBySearchIndex(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "010 - Tenth Song.mp3")
	touch(t, dir, "002 - Second - Live.mp3")
	touch(t, dir, "001 - First.mp3")
	touch(t, dir, "003 - Third.webm")
	touch(t, dir, "004 - Fourth.f251.webm.part")
	touch(t, dir, "005 - Fifth.temp.mp3")
	touch(t, dir, ".hidden.mp3")
	touch(t, dir, "stray.mp3")
	if err := os.Mkdir(filepath.Join(dir, "006 - Dir.mp3"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	candidates, err := collectCandidates(dir, ".mp3")
	if err != nil {
		t.Fatalf("collectCandidates: %v", err)
	}
	var titles []string
	for _, c := range candidates {
		titles = append(titles, c.Title)
	}
	want := []string{"First", "Second - Live", "Third", "Tenth Song", "stray"}
	if !slices.Equal(titles, want) {
		t.Fatalf("unexpected titles %v, want %v", titles, want)
	}
	if candidates[2].Err == nil || candidates[2].Path != "" {
		t.Fatalf("expected webm-only index to be a failed candidate, got %+v", candidates[2])
	}
	if candidates[0].Path != filepath.Join(dir, "001 - First.mp3") {
		t.Fatalf("unexpected path %q", candidates[0].Path)
	}
}

func TestCollectCandidatesPrefersTargetExtension(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "001 - Song.webm")
	touch(t, dir, "001 - Song.mp3")

	candidates, err := collectCandidates(dir, ".mp3")
	if err != nil {
		t.Fatalf("collectCandidates: %v", err)
	}
	if len(candidates) != 1 || candidates[0].Err != nil || filepath.Ext(candidates[0].Path) != ".mp3" {
		t.Fatalf("unexpected candidates %+v", candidates)
	}
}

func TestCollectCandidatesAnyExtension(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "001 - Song.webm")
	candidates, err := collectCandidates(dir, "")
	if err != nil {
		t.Fatalf("collectCandidates: %v", err)
	}
	if len(candidates) != 1 || candidates[0].Err != nil {
		t.Fatalf("unexpected candidates %+v", candidates)
	}
}

func TestSearchURLAndCommand(t *testing.T) {
	q := Query{Term: "  Sharry Maan ", CountHint: 15, OutputDir: "/tmp/x", AudioOnly: true}
	if got := searchURL(q); got != "ytsearch15:Sharry Maan" {
		t.Fatalf("unexpected search url %q", got)
	}
	cfg := config.Default()
	cfg.Search.AudioFormat = "m4a"
	y := NewYTDLP(&cfg, logging.NewNop())
	if got := y.targetExtension(q); got != ".m4a" {
		t.Fatalf("unexpected target extension %q", got)
	}
	if got := y.targetExtension(Query{}); got != "" {
		t.Fatalf("expected no extension filter without audio-only, got %q", got)
	}
	if y.command(q) == nil {
		t.Fatal("expected command")
	}
}

func TestSearchRejectsNonPositiveCount(t *testing.T) {
	y := NewYTDLP(nil, nil)
	if _, err := y.Search(context.Background(), Query{Term: "x", OutputDir: t.TempDir()}); err == nil {
		t.Fatal("expected error for zero count")
	}
}

func TestSearchKeepsDownloadsWhenYTDLPFails(t *testing.T) {
	bin := filepath.Join(t.TempDir(), "yt-dlp")
	script := `#!/bin/sh
out=""
while [ $# -gt 0 ]; do
	case "$1" in
	-o|--output) out="$2"; shift ;;
	esac
	shift
done
dir=$(dirname "$out")
printf x > "$dir/001 - First Song.mp3"
echo "ERROR: second video unavailable" >&2
exit 1
`
	if err := os.WriteFile(bin, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	logPath := filepath.Join(t.TempDir(), "acquire.log")
	logger, err := logging.New(logging.Options{Level: "debug", Format: "json", Outputs: []string{logPath}})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	cfg := config.Default()
	cfg.Search.YTDLPBinary = bin
	y := NewYTDLP(&cfg, logger)

	out := t.TempDir()
	candidates, err := y.Search(context.Background(), Query{Term: "Artist", CountHint: 2, OutputDir: out, AudioOnly: true})
	if err == nil {
		t.Fatal("expected the yt-dlp exit error")
	}
	if len(candidates) != 1 || candidates[0].Title != "First Song" {
		t.Fatalf("expected the finished download as a candidate, got %+v", candidates)
	}
	logged, readErr := os.ReadFile(logPath)
	if readErr != nil {
		t.Fatalf("read log: %v", readErr)
	}
	if !strings.Contains(string(logged), "yt-dlp exited with errors") {
		t.Fatalf("expected exit logged, got %s", logged)
	}
}
