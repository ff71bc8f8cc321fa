package media

import (
	"fmt"
	"path/filepath"
)

// SourceFile is one acquired audio asset owned by the scratch workspace.
type SourceFile struct {
	Path    string
	Title   string
	Ordinal int
}

// TrimmedFile is a duration-bounded clip derived 1:1 from a SourceFile.
type TrimmedFile struct {
	Path    string
	Ordinal int
}

// String renders a short label for logs.
func (s SourceFile) String() string {
	if s.Title != "" {
		return fmt.Sprintf("#%d %s", s.Ordinal, s.Title)
	}
	return fmt.Sprintf("#%d %s", s.Ordinal, filepath.Base(s.Path))
}

// TrimmedName returns the clip file name for an ordinal. The zero padded
// index keeps lexical and ordinal order identical.
func TrimmedName(ordinal int, ext string) string {
	if ext == "" {
		ext = ".mp3"
	}
	return fmt.Sprintf("trimmed_%03d%s", ordinal, ext)
}

// Paths returns the file paths of trimmed clips in list order.
func Paths(files []TrimmedFile) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, f.Path)
	}
	return out
}
