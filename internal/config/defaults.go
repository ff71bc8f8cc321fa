package config

const (
	defaultConfigLocation      = "~/.config/mashup/config.toml"
	defaultOutputDir           = "~/.local/share/mashup/output"
	defaultLogDir              = "~/.local/share/mashup/logs"
	defaultAPIBind             = "127.0.0.1:7489"
	defaultYTDLPBinary         = "yt-dlp"
	defaultAudioFormat         = "mp3"
	defaultAudioQuality        = "192"
	defaultFFmpegBinary        = "ffmpeg"
	defaultFFprobeBinary       = "ffprobe"
	defaultBitrate             = "192k"
	defaultSMTPHost            = "smtp.gmail.com"
	defaultSMTPPort            = 587
	defaultSendAttempts        = 3
	defaultNotifyTimeout       = 10
	defaultMaxConcurrentJobs   = 1
	defaultJobRetentionDays    = 30
	defaultStaleWorkspaceHours = 24
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
	defaultLogRetentionDays    = 30
)

// Default returns a Config populated with repository defaults. ScratchDir is
// left empty and resolved to the system temp directory during normalization.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
			APIBind:   defaultAPIBind,
		},
		Search: Search{
			YTDLPBinary:  defaultYTDLPBinary,
			AudioFormat:  defaultAudioFormat,
			AudioQuality: defaultAudioQuality,
		},
		Codec: Codec{
			FFmpegBinary:  defaultFFmpegBinary,
			FFprobeBinary: defaultFFprobeBinary,
			Bitrate:       defaultBitrate,
		},
		Mail: Mail{
			SMTPHost:     defaultSMTPHost,
			SMTPPort:     defaultSMTPPort,
			SendAttempts: defaultSendAttempts,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
		},
		Jobs: Jobs{
			MaxConcurrent:       defaultMaxConcurrentJobs,
			RetentionDays:       defaultJobRetentionDays,
			StaleWorkspaceHours: defaultStaleWorkspaceHours,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
