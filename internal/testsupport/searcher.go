package testsupport

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"mashup/internal/acquire"
)

// FakeSearcher writes synthetic timeline tracks into the query output
// directory. Tracks listed in Fail resolve to failed candidates.
type FakeSearcher struct {
	T        testing.TB
	Tracks   int
	Length   time.Duration
	Fail     map[int]bool
	Err      error
	searches atomic.Int32
}

// Searches reports how many times Search was invoked.
func (f *FakeSearcher) Searches() int {
	return int(f.searches.Load())
}

func (f *FakeSearcher) Search(_ context.Context, q acquire.Query) ([]acquire.Candidate, error) {
	f.searches.Add(1)
	if f.Err != nil {
		return nil, f.Err
	}
	length := f.Length
	if length <= 0 {
		length = time.Minute
	}
	candidates := make([]acquire.Candidate, 0, f.Tracks)
	for i := 0; i < f.Tracks; i++ {
		label := TrackLabel(i)
		title := fmt.Sprintf("%s %s", q.Term, label)
		if f.Fail[i] {
			candidates = append(candidates, acquire.Candidate{Title: title, Err: errors.New("no playable stream")})
			continue
		}
		path := filepath.Join(q.OutputDir, fmt.Sprintf("%03d - %s.mp3", i+1, title))
		WriteTrack(f.T, path, label, length)
		candidates = append(candidates, acquire.Candidate{Title: title, Path: path})
	}
	return candidates, nil
}

// TrackLabel names the synthetic marker for the i-th search hit.
func TrackLabel(i int) string {
	return fmt.Sprintf("track-%02d", i)
}
