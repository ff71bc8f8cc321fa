package queue

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

const jobColumns = "id, search_term, track_count, clip_seconds, recipient, output_path, status, progress_percent, progress_message, error_message, error_kind, emailed, created_at, updated_at, finished_at"

// Timestamps are stored as RFC 3339 text in UTC.
const timeLayout = time.RFC3339Nano

// sqliteLayout is what CURRENT_TIMESTAMP defaults produce.
const sqliteLayout = "2006-01-02 15:04:05"

// textTime scans a nullable TEXT timestamp.
type textTime struct {
	t     time.Time
	valid bool
}

func (tt *textTime) Scan(src any) error {
	var raw string
	switch v := src.(type) {
	case nil:
		*tt = textTime{}
		return nil
	case string:
		raw = v
	case []byte:
		raw = string(v)
	case time.Time:
		*tt = textTime{t: v, valid: true}
		return nil
	default:
		return fmt.Errorf("timestamp: unexpected %T", src)
	}
	for _, layout := range []string{timeLayout, sqliteLayout} {
		if parsed, err := time.Parse(layout, raw); err == nil {
			*tt = textTime{t: parsed, valid: true}
			return nil
		}
	}
	// Unparseable values read back as zero rather than failing the row.
	*tt = textTime{}
	return nil
}

func scanJob(row interface{ Scan(dest ...any) error }) (*Job, error) {
	var (
		job                          Job
		recipient, outputPath        sql.NullString
		message, errMessage, errKind sql.NullString
		percent, emailed             sql.NullInt64
		created, updated, finished   textTime
	)
	err := row.Scan(
		&job.ID, &job.SearchTerm, &job.Count, &job.ClipSeconds,
		&recipient, &outputPath, &job.Status,
		&percent, &message, &errMessage, &errKind, &emailed,
		&created, &updated, &finished,
	)
	if err != nil {
		return nil, err
	}
	job.Recipient = recipient.String
	job.OutputPath = outputPath.String
	job.ProgressPercent = int(percent.Int64)
	job.ProgressMessage = message.String
	job.ErrorMessage = errMessage.String
	job.ErrorKind = errKind.String
	job.Emailed = emailed.Int64 != 0
	job.CreatedAt = created.t
	job.UpdatedAt = updated.t
	if finished.valid {
		at := finished.t
		job.FinishedAt = &at
	}
	return &job, nil
}

// orNull maps the zero value to SQL NULL.
func orNull(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func stamp(t time.Time) string { return t.UTC().Format(timeLayout) }

func stampOrNull(t *time.Time) any {
	if t == nil {
		return nil
	}
	return stamp(*t)
}

func flag(b bool) int {
	if b {
		return 1
	}
	return 0
}

// placeholders returns "?, ?, ..." with n markers.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
