package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

type Paths struct {
	ScratchDir string `toml:"scratch_dir"`
	OutputDir  string `toml:"output_dir"`
	LogDir     string `toml:"log_dir"`
	APIBind    string `toml:"api_bind"`
	APIToken   string `toml:"api_token"`
}

// Search configures yt-dlp.
type Search struct {
	YTDLPBinary  string `toml:"ytdlp_binary"`
	AudioFormat  string `toml:"audio_format"`
	AudioQuality string `toml:"audio_quality"`
}

type Codec struct {
	FFmpegBinary  string `toml:"ffmpeg_binary"`
	FFprobeBinary string `toml:"ffprobe_binary"`
	Bitrate       string `toml:"bitrate"`
}

// Mail holds the SMTP account finished mashups are sent from.
type Mail struct {
	Enabled      bool   `toml:"enabled"`
	SMTPHost     string `toml:"smtp_host"`
	SMTPPort     int    `toml:"smtp_port"`
	Username     string `toml:"username"`
	Password     string `toml:"password"`
	From         string `toml:"from"`
	SendAttempts int    `toml:"send_attempts"`
}

// Notifications points at an ntfy topic URL; empty disables pushes.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
}

type Jobs struct {
	MaxConcurrent       int `toml:"max_concurrent"`
	RetentionDays       int `toml:"retention_days"`
	StaleWorkspaceHours int `toml:"stale_workspace_hours"`
}

type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for mashup.
//
// Configuration sections by subsystem:
//   - Paths: scratch, output, and log directories plus the API bind address
//   - Search: yt-dlp binary and audio extraction settings
//   - Codec: ffmpeg/ffprobe binaries and output bitrate
//   - Mail: SMTP delivery of finished mashups
//   - Notifications: ntfy push notification settings
//   - Jobs: daemon job concurrency and housekeeping
//   - Logging: log format, level, and retention
type Config struct {
	Paths         Paths         `toml:"paths"`
	Search        Search        `toml:"search"`
	Codec         Codec         `toml:"codec"`
	Mail          Mail          `toml:"mail"`
	Notifications Notifications `toml:"notifications"`
	Jobs          Jobs          `toml:"jobs"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath is the expanded ~/.config/mashup/config.toml.
func DefaultConfigPath() (string, error) {
	return ExpandPath(defaultConfigLocation)
}

// Load reads the config at path, or the first of the default location and
// ./mashup.toml when path is empty. A missing file yields the defaults. The
// result is normalized and validated; the resolved path and whether it
// existed are returned alongside.
func Load(path string) (*Config, string, bool, error) {
	resolved, exists, err := locate(path)
	if err != nil {
		return nil, "", false, err
	}

	cfg := Default()
	if exists {
		raw, err := os.ReadFile(resolved)
		if err != nil {
			return nil, "", false, fmt.Errorf("read config: %w", err)
		}
		if err := toml.Unmarshal(raw, &cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config %s: %w", resolved, err)
		}
	}
	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolved, exists, nil
}

func locate(explicit string) (string, bool, error) {
	var candidates []string
	if explicit != "" {
		candidates = []string{explicit}
	} else {
		candidates = []string{defaultConfigLocation, "mashup.toml"}
	}

	var first string
	for _, candidate := range candidates {
		expanded, err := ExpandPath(candidate)
		if err != nil {
			return "", false, err
		}
		if first == "" {
			first = expanded
		}
		info, err := os.Stat(expanded)
		switch {
		case err == nil && !info.IsDir():
			return expanded, true, nil
		case err != nil && !errors.Is(err, fs.ErrNotExist):
			return "", false, fmt.Errorf("stat config: %w", err)
		}
	}
	return first, false, nil
}

// EnsureDirectories creates the scratch, output and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.ScratchDir, c.Paths.OutputDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// DatabasePath is the job history database, kept beside the daemon log.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.LogDir, "jobs.db")
}

// MailConfigured reports whether finished mashups can be emailed.
func (c *Config) MailConfigured() bool {
	return c.Mail.Enabled && strings.TrimSpace(c.Mail.SMTPHost) != "" && strings.TrimSpace(c.Mail.From) != ""
}

// ExpandPath resolves a leading ~ and returns an absolute, cleaned path.
// Empty input stays empty.
func ExpandPath(value string) (string, error) {
	if value == "" {
		return "", nil
	}
	if value == "~" || strings.HasPrefix(value, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		value = home + strings.TrimPrefix(value, "~")
	}
	absolute, err := filepath.Abs(value)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", value, err)
	}
	return absolute, nil
}

// CreateSample writes the commented sample config to path.
func CreateSample(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
