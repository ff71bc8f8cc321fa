package acquire

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/lrstanley/go-ytdlp"

	"mashup/internal/config"
	"mashup/internal/logging"
)

const (
	outputTemplate   = "%(playlist_index)03d - %(title)s.%(ext)s"
	progressInterval = 2 * time.Second
)

var indexedName = regexp.MustCompile(`^(\d+) - (.+)$`)

var partialSuffixes = []string{".part", ".ytdl", ".temp", ".tmp"}

// YTDLP searches YouTube with yt-dlp and downloads audio for each hit.
type YTDLP struct {
	Binary       string
	AudioFormat  string
	AudioQuality string
	logger       *slog.Logger
}

// NewYTDLP builds a yt-dlp searcher from the [search] configuration section.
func NewYTDLP(cfg *config.Config, logger *slog.Logger) *YTDLP {
	y := &YTDLP{
		Binary:       "yt-dlp",
		AudioFormat:  "mp3",
		AudioQuality: "192",
		logger:       logging.NewComponentLogger(logger, "yt-dlp"),
	}
	if cfg != nil {
		y.Binary = cfg.Search.YTDLPBinary
		y.AudioFormat = cfg.Search.AudioFormat
		y.AudioQuality = cfg.Search.AudioQuality
	}
	return y
}

// Search runs one "ytsearchN:" query. Individual download failures are left
// to yt-dlp's --ignore-errors handling; whatever reached the output
// directory is reported back as candidates.
func (y *YTDLP) Search(ctx context.Context, q Query) ([]Candidate, error) {
	if q.CountHint <= 0 {
		return nil, fmt.Errorf("yt-dlp search: count must be positive, got %d", q.CountHint)
	}
	if err := os.MkdirAll(q.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("yt-dlp search: create output dir: %w", err)
	}

	cmd := y.command(q)
	logger := logging.WithContext(ctx, y.logger)
	cmd.ProgressFunc(progressInterval, func(update ytdlp.ProgressUpdate) {
		logger.Debug("download progress",
			logging.String("file", filepath.Base(update.Filename)),
			logging.String("status", string(update.Status)),
			logging.Float64("percent", update.Percent()),
		)
	})

	result, runErr := cmd.Run(ctx, searchURL(q))
	if runErr != nil {
		attrs := []any{logging.Error(runErr)}
		if result != nil {
			attrs = append(attrs, logging.Int("exit_code", result.ExitCode))
		}
		logger.Debug("yt-dlp exited with errors", attrs...)
	}

	candidates, err := collectCandidates(q.OutputDir, y.targetExtension(q))
	if err != nil {
		return nil, fmt.Errorf("yt-dlp search: list downloads: %w", err)
	}
	if runErr != nil {
		return candidates, fmt.Errorf("yt-dlp search: %w", runErr)
	}
	return candidates, nil
}

func (y *YTDLP) command(q Query) *ytdlp.Command {
	cmd := ytdlp.New().
		Format("bestaudio/best").
		NoPlaylist().
		IgnoreErrors().
		NoWarnings().
		Output(filepath.Join(q.OutputDir, outputTemplate))
	if binary := strings.TrimSpace(y.Binary); binary != "" {
		cmd = cmd.SetExecutable(binary)
	}
	if q.AudioOnly {
		cmd = cmd.ExtractAudio().
			AudioFormat(y.format()).
			AudioQuality(y.AudioQuality)
	}
	return cmd
}

func (y *YTDLP) format() string {
	if f := strings.TrimSpace(y.AudioFormat); f != "" {
		return f
	}
	return "mp3"
}

func (y *YTDLP) targetExtension(q Query) string {
	if !q.AudioOnly {
		return ""
	}
	return "." + y.format()
}

func searchURL(q Query) string {
	return "ytsearch" + strconv.Itoa(q.CountHint) + ":" + strings.TrimSpace(q.Term)
}

type indexedFile struct {
	index int
	title string
	path  string
	ok    bool
}

// collectCandidates lists finished downloads in dir ordered by the search
// index yt-dlp wrote into each name. When ext is set, an index that only left
// files with another extension is reported as a failed candidate.
func collectCandidates(dir, ext string) ([]Candidate, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	byIndex := make(map[int]*indexedFile)
	var unindexed []indexedFile
	for _, entry := range entries {
		if entry.IsDir() || isPartial(entry.Name()) {
			continue
		}
		name := entry.Name()
		fileExt := filepath.Ext(name)
		stem := strings.TrimSuffix(name, fileExt)
		matches := ext == "" || strings.EqualFold(fileExt, ext)
		file := indexedFile{index: -1, title: stem, path: filepath.Join(dir, name), ok: matches}

		if m := indexedName.FindStringSubmatch(stem); m != nil {
			if idx, convErr := strconv.Atoi(m[1]); convErr == nil {
				file.index = idx
				file.title = m[2]
			}
		}
		if file.index < 0 {
			if matches {
				unindexed = append(unindexed, file)
			}
			continue
		}
		existing, seen := byIndex[file.index]
		if !seen || (!existing.ok && file.ok) {
			f := file
			byIndex[file.index] = &f
		}
	}

	indices := make([]int, 0, len(byIndex))
	for idx := range byIndex {
		indices = append(indices, idx)
	}
	sort.Ints(indices)
	sort.Slice(unindexed, func(i, j int) bool { return unindexed[i].path < unindexed[j].path })

	candidates := make([]Candidate, 0, len(indices)+len(unindexed))
	for _, idx := range indices {
		file := byIndex[idx]
		if !file.ok {
			candidates = append(candidates, Candidate{
				Title: file.title,
				Err:   fmt.Errorf("audio extraction did not produce a %s file", ext),
			})
			continue
		}
		candidates = append(candidates, Candidate{Title: file.title, Path: file.path})
	}
	for _, file := range unindexed {
		candidates = append(candidates, Candidate{Title: file.title, Path: file.path})
	}
	return candidates, nil
}

func isPartial(name string) bool {
	lower := strings.ToLower(name)
	if strings.HasPrefix(lower, ".") {
		return true
	}
	for _, suffix := range partialSuffixes {
		if strings.HasSuffix(lower, suffix) || strings.Contains(lower, suffix+".") {
			return true
		}
	}
	return false
}
