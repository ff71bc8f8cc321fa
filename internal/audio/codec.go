package audio

import (
	"context"
	"time"
)

// Codec decodes, slices, concatenates, and re-encodes audio files.
type Codec interface {
	// Duration reports the playable length of the file at path. The merger
	// uses it to record the length of each finished mashup.
	Duration(ctx context.Context, path string) (time.Duration, error)
	// Trim writes the window [0, max) of src to dst. Sources shorter than
	// max are written whole, without padding.
	Trim(ctx context.Context, src, dst string, max time.Duration) error
	// Concat writes inputs back to back, in slice order, to dst.
	Concat(ctx context.Context, inputs []string, dst string) error
}
