package config

import (
	"errors"
	"fmt"
	"net"
	"regexp"
	"strings"
)

var bitratePattern = regexp.MustCompile(`^[0-9]+k$`)

var supportedAudioFormats = map[string]struct{}{
	"mp3":  {},
	"m4a":  {},
	"opus": {},
	"flac": {},
	"wav":  {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateSearch(); err != nil {
		return err
	}
	if err := c.validateCodec(); err != nil {
		return err
	}
	if err := c.validateMail(); err != nil {
		return err
	}
	if err := c.validateJobs(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if c.Paths.ScratchDir == "" {
		return errors.New("paths.scratch_dir must be set")
	}
	if c.Paths.OutputDir == "" {
		return errors.New("paths.output_dir must be set")
	}
	if _, _, err := net.SplitHostPort(c.Paths.APIBind); err != nil {
		return fmt.Errorf("paths.api_bind must be host:port: %w", err)
	}
	return nil
}

func (c *Config) validateSearch() error {
	if _, ok := supportedAudioFormats[c.Search.AudioFormat]; !ok {
		return fmt.Errorf("search.audio_format %q is not supported (use mp3, m4a, opus, flac, or wav)", c.Search.AudioFormat)
	}
	return nil
}

func (c *Config) validateCodec() error {
	if !bitratePattern.MatchString(c.Codec.Bitrate) {
		return fmt.Errorf("codec.bitrate %q must look like 192k", c.Codec.Bitrate)
	}
	return nil
}

func (c *Config) validateMail() error {
	if c.Mail.SMTPPort < 1 || c.Mail.SMTPPort > 65535 {
		return fmt.Errorf("mail.smtp_port %d is out of range", c.Mail.SMTPPort)
	}
	if !c.Mail.Enabled {
		return nil
	}
	if c.Mail.SMTPHost == "" {
		return errors.New("mail.smtp_host must be set when mail.enabled is true")
	}
	if c.Mail.From == "" {
		return errors.New("mail.from must be set when mail.enabled is true (or set MASHUP_SMTP_USERNAME)")
	}
	if !strings.Contains(c.Mail.From, "@") {
		return fmt.Errorf("mail.from %q is not an email address", c.Mail.From)
	}
	return nil
}

func (c *Config) validateJobs() error {
	if c.Jobs.MaxConcurrent < 1 {
		return errors.New("jobs.max_concurrent must be at least 1")
	}
	if c.Jobs.RetentionDays < 0 {
		return errors.New("jobs.retention_days must be zero or positive")
	}
	if c.Jobs.StaleWorkspaceHours < 0 {
		return errors.New("jobs.stale_workspace_hours must be zero or positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format %q must be console or json", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q must be debug, info, warn, or error", c.Logging.Level)
	}
	if c.Logging.RetentionDays < 0 {
		return errors.New("logging.retention_days must be zero or positive")
	}
	return nil
}
