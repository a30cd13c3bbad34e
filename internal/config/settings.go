package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment keys that override the file
const (
	EnvBotToken    = "BOT_TOKEN"
	EnvMaxFileSize = "MAX_FILESIZE"
	EnvAuditChat   = "LOGS"
	EnvLogLevel    = "LOG_LEVEL"
)

// Default values
const (
	DefaultWorkDir          = "outputs"
	DefaultMaxFileSize      = 50_000_000
	DefaultSelectionTTL     = 10 * time.Minute
	DefaultProgressInterval = 5 * time.Second
	DefaultMaxConcurrent    = 4
	DefaultPollTimeout      = 10 * time.Second
	DefaultShutdownTimeout  = 30 * time.Second
	DefaultLogLevel         = "info"
)

// Settings is the runtime configuration of the bot
type Settings struct {
	BotToken         string        `yaml:"bot_token"`
	MaxFileSize      int64         `yaml:"max_filesize"`
	AuditChat        int64         `yaml:"audit_chat"`
	WorkDir          string        `yaml:"work_dir"`
	SelectionTTL     time.Duration `yaml:"selection_ttl"`
	ProgressInterval time.Duration `yaml:"progress_interval"`
	MaxConcurrent    int           `yaml:"max_concurrent_requests"`
	PollTimeout      time.Duration `yaml:"poll_timeout"`
	ShutdownTimeout  time.Duration `yaml:"shutdown_timeout"`
	StatusAddr       string        `yaml:"status_addr"`
	FFmpegPath       string        `yaml:"ffmpeg_path"`
	FFprobePath      string        `yaml:"ffprobe_path"`
	YtdlpPath        string        `yaml:"ytdlp_path"`
	SweepOnStart     bool          `yaml:"sweep_on_start"`
	LogLevel         string        `yaml:"log_level"`
}

// Default returns the settings used when nothing is configured
func Default() Settings {
	return Settings{
		MaxFileSize:      DefaultMaxFileSize,
		WorkDir:          DefaultWorkDir,
		SelectionTTL:     DefaultSelectionTTL,
		ProgressInterval: DefaultProgressInterval,
		MaxConcurrent:    DefaultMaxConcurrent,
		PollTimeout:      DefaultPollTimeout,
		ShutdownTimeout:  DefaultShutdownTimeout,
		SweepOnStart:     true,
		LogLevel:         DefaultLogLevel,
	}
}

// Load reads YAML settings from path on top of the defaults. An empty path,
// a missing file or an empty file yield the defaults.
func Load(path string) (Settings, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	fileData, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if len(fileData) == 0 {
		return cfg, nil
	}
	if err := yaml.Unmarshal(fileData, &cfg); err != nil {
		return cfg, fmt.Errorf("parse yaml: %w", err)
	}
	if cfg.WorkDir == "" {
		cfg.WorkDir = DefaultWorkDir
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	return cfg, nil
}

// LoadDotEnv loads .env style files into the process environment without
// overriding variables that are already set. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overrides cfg with the environment as seen through lookup
func ApplyEnv(cfg *Settings, lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvBotToken); ok && v != "" {
		cfg.BotToken = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvMaxFileSize); ok && v != "" {
		size, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvMaxFileSize, err)
		}
		cfg.MaxFileSize = size
	}
	if v, ok := lookup(EnvAuditChat); ok && v != "" {
		chat, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvAuditChat, err)
		}
		cfg.AuditChat = chat
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		cfg.LogLevel = strings.TrimSpace(v)
	}
	return nil
}

// Validate reports the first setting the bot cannot run with
func (s Settings) Validate() error {
	switch {
	case s.BotToken == "":
		return fmt.Errorf("bot token is required (set %s)", EnvBotToken)
	case s.MaxFileSize <= 0:
		return fmt.Errorf("invalid max file size: %d (must be > 0)", s.MaxFileSize)
	case s.MaxConcurrent < 1:
		return fmt.Errorf("invalid max_concurrent_requests: %d (must be >= 1)", s.MaxConcurrent)
	case s.ProgressInterval <= 0:
		return fmt.Errorf("invalid progress_interval: %s (must be > 0)", s.ProgressInterval)
	case s.SelectionTTL < 0:
		return fmt.Errorf("invalid selection_ttl: %s", s.SelectionTTL)
	}
	return nil
}
