package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"
)

const consoleTimeLayout = "2006-01-02 15:04:05"

// consoleHandler writes one line per record:
//
//	2026-01-02 15:04:05 INFO  [trimmer] job 55556666/trimming: clip written path=/tmp/a.mp3 ordinal=0
//
// component, job_id, and stage are lifted out of the fields into the prefix.
type consoleHandler struct {
	mu        *sync.Mutex
	out       io.Writer
	level     *slog.LevelVar
	preset    []field
	prefix    string
	addSource bool
}

type field struct {
	key   string
	value slog.Value
}

func newPrettyHandler(w io.Writer, lvl *slog.LevelVar, addSource bool) slog.Handler {
	return &consoleHandler{mu: new(sync.Mutex), out: w, level: lvl, addSource: addSource}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	fields := slices.Clone(h.preset)
	record.Attrs(func(attr slog.Attr) bool {
		fields = appendFlattened(fields, h.prefix, attr)
		return true
	})
	fields = lastWins(fields)

	var component, jobID, stage string
	rest := fields[:0]
	for _, f := range fields {
		switch f.key {
		case FieldComponent:
			component = plain(f.value)
		case FieldJobID:
			jobID = plain(f.value)
		case FieldStage:
			stage = plain(f.value)
		default:
			rest = append(rest, f)
		}
	}

	ts := record.Time
	if ts.IsZero() {
		ts = time.Now()
	}

	var b strings.Builder
	b.WriteString(ts.Local().Format(consoleTimeLayout))
	fmt.Fprintf(&b, " %-5s", levelLabel(record.Level))
	if component != "" {
		b.WriteString(" [" + component + "]")
	}
	if subject := jobSubject(jobID, stage); subject != "" {
		b.WriteString(" " + subject + ":")
	}
	msg := strings.TrimSpace(record.Message)
	if msg == "" {
		msg = "(no message)"
	}
	b.WriteString(" " + msg)
	for _, f := range rest {
		b.WriteString(" " + f.key + "=" + quoted(f.value))
	}
	if h.addSource {
		if src := record.Source(); src != nil {
			fmt.Fprintf(&b, " (%s:%d)", filepath.Base(src.File), src.Line)
		}
	}
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, b.String())
	return err
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.preset = slices.Clone(h.preset)
	for _, attr := range attrs {
		next.preset = appendFlattened(next.preset, h.prefix, attr)
	}
	return &next
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.prefix = h.prefix + name + "."
	return &next
}

// jobSubject renders "job <id>/<stage>" using the last eight characters of
// the job ID, which are the random part of a v7 UUID.
func jobSubject(jobID, stage string) string {
	jobID = strings.TrimSpace(jobID)
	stage = strings.TrimSpace(stage)
	if len(jobID) > 8 {
		jobID = jobID[len(jobID)-8:]
	}
	switch {
	case jobID != "" && stage != "":
		return "job " + jobID + "/" + stage
	case jobID != "":
		return "job " + jobID
	default:
		return stage
	}
}

func appendFlattened(dst []field, prefix string, attr slog.Attr) []field {
	if attr.Equal(slog.Attr{}) {
		return dst
	}
	value := attr.Value.Resolve()
	if value.Kind() == slog.KindGroup {
		groupPrefix := prefix
		if attr.Key != "" {
			groupPrefix += attr.Key + "."
		}
		for _, child := range value.Group() {
			dst = appendFlattened(dst, groupPrefix, child)
		}
		return dst
	}
	if attr.Key == "" {
		return dst
	}
	return append(dst, field{key: prefix + attr.Key, value: value})
}

// lastWins keeps the first position of each key with its last value.
func lastWins(fields []field) []field {
	index := make(map[string]int, len(fields))
	out := make([]field, 0, len(fields))
	for _, f := range fields {
		if i, ok := index[f.key]; ok {
			out[i].value = f.value
			continue
		}
		index[f.key] = len(out)
		out = append(out, f)
	}
	return out
}

func plain(v slog.Value) string {
	switch v.Kind() {
	case slog.KindBool:
		return strconv.FormatBool(v.Bool())
	case slog.KindInt64:
		return strconv.FormatInt(v.Int64(), 10)
	case slog.KindUint64:
		return strconv.FormatUint(v.Uint64(), 10)
	case slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'f', -1, 64)
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindTime:
		return v.Time().UTC().Format(time.RFC3339)
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return err.Error()
		}
		return fmt.Sprint(v.Any())
	default:
		return v.String()
	}
}

// quoted renders a field value, quoting it when it is empty or contains
// spaces, quotes, or control characters.
func quoted(v slog.Value) string {
	s := plain(v)
	if s == "" || strings.ContainsFunc(s, func(r rune) bool { return r <= ' ' || r == '"' || r == '=' }) {
		return strconv.Quote(s)
	}
	return s
}

func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}
