package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"mashup/internal/config"
)

// DaemonLogName is the file mashupd appends to inside the log directory.
const DaemonLogName = "mashup.log"

// Options configures New. Outputs may name "stdout", "stderr" or file
// paths; an empty list means stderr. Debug level implies AddSource.
type Options struct {
	Level     string
	Format    string
	Outputs   []string
	AddSource bool
}

func New(opts Options) (*slog.Logger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}
	out, err := openOutputs(opts.Outputs)
	if err != nil {
		return nil, err
	}
	leveler := new(slog.LevelVar)
	leveler.Set(level)
	withSource := opts.AddSource || level <= slog.LevelDebug

	switch format := strings.ToLower(strings.TrimSpace(opts.Format)); format {
	case "", "console":
		return slog.New(newPrettyHandler(out, leveler, withSource)), nil
	case "json":
		return slog.New(newJSONHandler(out, leveler, withSource)), nil
	default:
		return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}
}

// NewFromConfig builds a stderr logger from cfg.Logging.
func NewFromConfig(cfg *config.Config) (*slog.Logger, error) {
	var opts Options
	if cfg != nil {
		opts = Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format}
	}
	return New(opts)
}

// NewDaemonLogger logs to stderr and to DaemonLogName under the configured
// log directory, returning the file path alongside the logger.
func NewDaemonLogger(cfg *config.Config) (*slog.Logger, string, error) {
	if cfg == nil {
		return nil, "", fmt.Errorf("daemon logger requires config")
	}
	logPath := filepath.Join(cfg.Paths.LogDir, DaemonLogName)
	logger, err := New(Options{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Outputs: []string{"stderr", logPath},
	})
	if err != nil {
		return nil, "", err
	}
	return logger, logPath, nil
}

// ParseLevel accepts the slog level names plus "warning"; blank means info.
func ParseLevel(text string) (slog.Level, error) {
	text = strings.TrimSpace(text)
	switch strings.ToLower(text) {
	case "":
		return slog.LevelInfo, nil
	case "warning":
		return slog.LevelWarn, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(text)); err != nil {
		return 0, fmt.Errorf("log level: unsupported value %q", text)
	}
	return level, nil
}

// openOutputs resolves output names to a single writer, creating parent
// directories for file targets and skipping duplicates.
func openOutputs(names []string) (io.Writer, error) {
	var writers []io.Writer
	opened := make(map[string]bool, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || opened[name] {
			continue
		}
		opened[name] = true
		switch name {
		case "stderr":
			writers = append(writers, os.Stderr)
		case "stdout":
			writers = append(writers, os.Stdout)
		default:
			if err := os.MkdirAll(filepath.Dir(name), 0o755); err != nil {
				return nil, fmt.Errorf("create log directory for %s: %w", name, err)
			}
			file, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o664)
			if err != nil {
				return nil, fmt.Errorf("open log file %s: %w", name, err)
			}
			writers = append(writers, file)
		}
	}
	if len(writers) == 0 {
		return os.Stderr, nil
	}
	return io.MultiWriter(writers...), nil
}
