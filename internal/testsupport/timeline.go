package testsupport

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"
)

// Segment is one labelled span inside a synthetic timeline file. Labels play
// the role of tone markers: they survive trimming and concatenation so tests
// can assert order and duration exactly.
type Segment struct {
	Label    string
	Duration time.Duration
}

const timelineHeader = "#timeline"

// WriteTrack writes a single-segment synthetic track.
func WriteTrack(t testing.TB, path, label string, d time.Duration) string {
	t.Helper()
	if err := writeTimeline(path, []Segment{{Label: label, Duration: d}}); err != nil {
		t.Fatalf("write track %s: %v", path, err)
	}
	return path
}

// ReadTimeline parses a synthetic timeline file written by WriteTrack or FakeCodec.
func ReadTimeline(t testing.TB, path string) []Segment {
	t.Helper()
	segments, err := readTimeline(path)
	if err != nil {
		t.Fatalf("read timeline %s: %v", path, err)
	}
	return segments
}

// TotalDuration sums segment durations.
func TotalDuration(segments []Segment) time.Duration {
	var total time.Duration
	for _, s := range segments {
		total += s.Duration
	}
	return total
}

// Labels returns segment labels in order, merging adjacent repeats.
func Labels(segments []Segment) []string {
	var out []string
	for _, s := range segments {
		if len(out) > 0 && out[len(out)-1] == s.Label {
			continue
		}
		out = append(out, s.Label)
	}
	return out
}

func writeTimeline(path string, segments []Segment) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	var buf bytes.Buffer
	buf.WriteString(timelineHeader + "\n")
	for _, s := range segments {
		fmt.Fprintf(&buf, "%s\t%d\n", s.Label, s.Duration.Milliseconds())
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

func readTimeline(path string) ([]Segment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	if !scanner.Scan() || scanner.Text() != timelineHeader {
		return nil, errors.New("not a timeline file")
	}
	var segments []Segment
	for scanner.Scan() {
		label, millis, ok := strings.Cut(scanner.Text(), "\t")
		if !ok {
			return nil, fmt.Errorf("malformed segment %q", scanner.Text())
		}
		ms, err := strconv.ParseInt(millis, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed duration %q", millis)
		}
		segments = append(segments, Segment{Label: label, Duration: time.Duration(ms) * time.Millisecond})
	}
	return segments, scanner.Err()
}

// FakeCodec implements audio.Codec over timeline files.
type FakeCodec struct {
	// FailOn makes Trim or Concat fail when a source base name is listed.
	FailOn map[string]error

	mu            sync.Mutex
	TrimCalls     []string
	ConcatCalls   [][]string
	DurationCalls []string
}

func (c *FakeCodec) Duration(_ context.Context, path string) (time.Duration, error) {
	c.mu.Lock()
	c.DurationCalls = append(c.DurationCalls, path)
	c.mu.Unlock()
	segments, err := readTimeline(path)
	if err != nil {
		return 0, err
	}
	return TotalDuration(segments), nil
}

func (c *FakeCodec) Trim(_ context.Context, src, dst string, max time.Duration) error {
	c.mu.Lock()
	c.TrimCalls = append(c.TrimCalls, src)
	c.mu.Unlock()
	if err := c.failure(src); err != nil {
		return err
	}
	segments, err := readTimeline(src)
	if err != nil {
		return err
	}
	var out []Segment
	remaining := max
	for _, s := range segments {
		if remaining <= 0 {
			break
		}
		if s.Duration > remaining {
			s.Duration = remaining
		}
		remaining -= s.Duration
		out = append(out, s)
	}
	return writeTimeline(dst, out)
}

func (c *FakeCodec) Concat(_ context.Context, inputs []string, dst string) error {
	c.mu.Lock()
	c.ConcatCalls = append(c.ConcatCalls, append([]string(nil), inputs...))
	c.mu.Unlock()
	var out []Segment
	for _, input := range inputs {
		if err := c.failure(input); err != nil {
			return err
		}
		segments, err := readTimeline(input)
		if err != nil {
			return err
		}
		out = append(out, segments...)
	}
	return writeTimeline(dst, out)
}

func (c *FakeCodec) failure(path string) error {
	if c.FailOn == nil {
		return nil
	}
	return c.FailOn[filepath.Base(path)]
}
