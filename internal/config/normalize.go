package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeSearch()
	c.normalizeCodec()
	c.normalizeMail()
	c.normalizeNotifications()
	c.normalizeJobs()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.ScratchDir) == "" {
		c.Paths.ScratchDir = os.TempDir()
	}
	if c.Paths.ScratchDir, err = ExpandPath(c.Paths.ScratchDir); err != nil {
		return fmt.Errorf("paths.scratch_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = ExpandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = ExpandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	c.Paths.APIToken = strings.TrimSpace(c.Paths.APIToken)
	if c.Paths.APIToken == "" {
		c.Paths.APIToken = strings.TrimSpace(os.Getenv("MASHUP_API_TOKEN"))
	}
	return nil
}

func (c *Config) normalizeSearch() {
	c.Search.YTDLPBinary = strings.TrimSpace(c.Search.YTDLPBinary)
	if c.Search.YTDLPBinary == "" {
		c.Search.YTDLPBinary = defaultYTDLPBinary
	}
	c.Search.AudioFormat = strings.ToLower(strings.TrimSpace(c.Search.AudioFormat))
	if c.Search.AudioFormat == "" {
		c.Search.AudioFormat = defaultAudioFormat
	}
	c.Search.AudioQuality = strings.TrimSpace(c.Search.AudioQuality)
	if c.Search.AudioQuality == "" {
		c.Search.AudioQuality = defaultAudioQuality
	}
}

func (c *Config) normalizeCodec() {
	c.Codec.FFmpegBinary = strings.TrimSpace(c.Codec.FFmpegBinary)
	if c.Codec.FFmpegBinary == "" {
		c.Codec.FFmpegBinary = defaultFFmpegBinary
	}
	c.Codec.FFprobeBinary = strings.TrimSpace(c.Codec.FFprobeBinary)
	if c.Codec.FFprobeBinary == "" {
		c.Codec.FFprobeBinary = defaultFFprobeBinary
	}
	c.Codec.Bitrate = strings.ToLower(strings.TrimSpace(c.Codec.Bitrate))
	if c.Codec.Bitrate == "" {
		c.Codec.Bitrate = defaultBitrate
	}
}

func (c *Config) normalizeMail() {
	c.Mail.SMTPHost = strings.TrimSpace(c.Mail.SMTPHost)
	c.Mail.Username = strings.TrimSpace(c.Mail.Username)
	if c.Mail.Username == "" {
		c.Mail.Username = strings.TrimSpace(os.Getenv("MASHUP_SMTP_USERNAME"))
	}
	if c.Mail.Password == "" {
		c.Mail.Password = os.Getenv("MASHUP_SMTP_PASSWORD")
	}
	c.Mail.From = strings.TrimSpace(c.Mail.From)
	if c.Mail.From == "" {
		c.Mail.From = c.Mail.Username
	}
	if c.Mail.SMTPPort == 0 {
		c.Mail.SMTPPort = defaultSMTPPort
	}
	if c.Mail.SendAttempts <= 0 {
		c.Mail.SendAttempts = defaultSendAttempts
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.NtfyTopic == "" {
		c.Notifications.NtfyTopic = strings.TrimSpace(os.Getenv("MASHUP_NTFY_TOPIC"))
	}
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyTimeout
	}
}

func (c *Config) normalizeJobs() {
	if c.Jobs.MaxConcurrent == 0 {
		c.Jobs.MaxConcurrent = defaultMaxConcurrentJobs
	}
	if c.Jobs.StaleWorkspaceHours == 0 {
		c.Jobs.StaleWorkspaceHours = defaultStaleWorkspaceHours
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
