package acquire_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"mashup/internal/acquire"
	"mashup/internal/logging"
	"mashup/internal/services"
)

func writeAudio(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("audio:"+name), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestAcquireKeepsArrivalOrderAndSkipsFailures(t *testing.T) {
	workDir := filepath.Join(t.TempDir(), "downloads")
	var seen acquire.Query
	searcher := acquire.SearcherFunc(func(_ context.Context, q acquire.Query) ([]acquire.Candidate, error) {
		seen = q
		var out []acquire.Candidate
		for i := 0; i < 12; i++ {
			title := "Track " + strconv.Itoa(i)
			switch i {
			case 3:
				out = append(out, acquire.Candidate{Title: title, Err: errors.New("no playable stream")})
			case 7:
				out = append(out, acquire.Candidate{Title: title, Path: filepath.Join(q.OutputDir, "missing.mp3")})
			default:
				out = append(out, acquire.Candidate{Title: title, Path: writeAudio(t, q.OutputDir, title+".mp3")})
			}
		}
		return out, nil
	})

	sources, err := acquire.New(searcher, logging.NewNop()).Acquire(context.Background(), " Test Artist ", 12, workDir)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if seen.Term != "Test Artist" || seen.CountHint != 12 || seen.OutputDir != workDir || !seen.AudioOnly {
		t.Fatalf("unexpected query %+v", seen)
	}
	if len(sources) != 10 {
		t.Fatalf("expected 10 usable sources, got %d", len(sources))
	}
	wantTitles := []string{"Track 0", "Track 1", "Track 2", "Track 4", "Track 5", "Track 6", "Track 8", "Track 9", "Track 10", "Track 11"}
	for i, src := range sources {
		if src.Ordinal != i {
			t.Fatalf("source %d has ordinal %d", i, src.Ordinal)
		}
		if src.Title != wantTitles[i] {
			t.Fatalf("source %d title %q, want %q", i, src.Title, wantTitles[i])
		}
	}
}

func TestAcquireSkipsDuplicatesAndEmptyFiles(t *testing.T) {
	workDir := t.TempDir()
	searcher := acquire.SearcherFunc(func(_ context.Context, q acquire.Query) ([]acquire.Candidate, error) {
		empty := filepath.Join(q.OutputDir, "empty.mp3")
		if err := os.WriteFile(empty, nil, 0o644); err != nil {
			return nil, err
		}
		return []acquire.Candidate{
			{Title: "Hit Song (Official Video)", Path: writeAudio(t, q.OutputDir, "a.mp3")},
			{Title: "HIT SONG - official video", Path: writeAudio(t, q.OutputDir, "b.mp3")},
			{Title: "Empty", Path: empty},
			{Title: "No Path"},
			{Title: "Other Song", Path: writeAudio(t, q.OutputDir, "c.mp3")},
		}, nil
	})

	sources, err := acquire.New(searcher, nil).Acquire(context.Background(), "artist", 11, workDir)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if len(sources) != 2 {
		t.Fatalf("expected 2 sources, got %+v", sources)
	}
	if filepath.Base(sources[0].Path) != "a.mp3" || filepath.Base(sources[1].Path) != "c.mp3" {
		t.Fatalf("unexpected sources %+v", sources)
	}
}

func TestAcquireCapsAtRequestedCount(t *testing.T) {
	searcher := acquire.SearcherFunc(func(_ context.Context, q acquire.Query) ([]acquire.Candidate, error) {
		var out []acquire.Candidate
		for i := 0; i < 5; i++ {
			name := "song" + strconv.Itoa(i)
			out = append(out, acquire.Candidate{Title: name, Path: writeAudio(t, q.OutputDir, name+".mp3")})
		}
		return out, nil
	})
	sources, err := acquire.New(searcher, nil).Acquire(context.Background(), "artist", 3, t.TempDir())
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if len(sources) != 3 {
		t.Fatalf("expected 3 sources, got %d", len(sources))
	}
}

func TestAcquireNoUsableFiles(t *testing.T) {
	searcher := acquire.SearcherFunc(func(context.Context, acquire.Query) ([]acquire.Candidate, error) {
		return []acquire.Candidate{{Title: "x", Err: errors.New("geo blocked")}}, nil
	})
	_, err := acquire.New(searcher, nil).Acquire(context.Background(), "nobody", 11, t.TempDir())
	if !errors.Is(err, services.ErrNoResults) {
		t.Fatalf("expected ErrNoResults, got %v", err)
	}
}

func TestAcquireSearchFailure(t *testing.T) {
	backendErr := errors.New("yt-dlp: exit status 2")
	searcher := acquire.SearcherFunc(func(context.Context, acquire.Query) ([]acquire.Candidate, error) {
		return nil, backendErr
	})
	_, err := acquire.New(searcher, nil).Acquire(context.Background(), "artist", 11, t.TempDir())
	if !errors.Is(err, services.ErrExternalService) || !errors.Is(err, backendErr) {
		t.Fatalf("expected external service error wrapping backend error, got %v", err)
	}
}

func TestAcquireSearchErrorWithPartialResults(t *testing.T) {
	searcher := acquire.SearcherFunc(func(_ context.Context, q acquire.Query) ([]acquire.Candidate, error) {
		return []acquire.Candidate{{Title: "ok", Path: writeAudio(t, q.OutputDir, "ok.mp3")}}, errors.New("exit status 1")
	})
	sources, err := acquire.New(searcher, nil).Acquire(context.Background(), "artist", 11, t.TempDir())
	if err != nil {
		t.Fatalf("expected partial success, got %v", err)
	}
	if len(sources) != 1 {
		t.Fatalf("expected 1 source, got %d", len(sources))
	}
}

func TestAcquireWithoutSearcher(t *testing.T) {
	_, err := acquire.New(nil, nil).Acquire(context.Background(), "artist", 11, t.TempDir())
	if !errors.Is(err, services.ErrExternalService) {
		t.Fatalf("expected external service error, got %v", err)
	}
}
