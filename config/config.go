// Package config manages application configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"ytscope/retry"
)

// Config holds all application configuration for metadata extraction.
type Config struct {
	// ListenAddr is the HTTP listen address for the API server
	ListenAddr string `json:"listen_addr"`
	// Workers is the size of the extraction worker pool
	Workers int `json:"workers"`

	// YtdlpPath is the path to the yt-dlp executable (default: "yt-dlp")
	YtdlpPath string `json:"ytdlp_path"`
	// YtdlpTimeout is the maximum time to wait for yt-dlp operations
	YtdlpTimeout time.Duration `json:"ytdlp_timeout"`

	// YouTubeAPIKey is the Data API v3 credential. Extraction via the
	// official API degrades to an immediate typed failure when empty.
	YouTubeAPIKey string `json:"-"`
	// OpenAIAPIKey is the Whisper API credential. Audio transcription via
	// the hosted API degrades to an immediate typed failure when empty.
	OpenAIAPIKey string `json:"-"`

	// WhisperModel is the local Whisper model size (tiny, base, small,
	// medium, large) used by the local transcription fallback.
	WhisperModel string `json:"whisper_model"`

	// MaxRetries is the maximum number of retries for failed operations
	MaxRetries int `json:"max_retries"`
	// InitialBackoff is the initial backoff duration for retries
	InitialBackoff time.Duration `json:"initial_backoff"`
	// MaxBackoff is the maximum backoff duration for retries
	MaxBackoff time.Duration `json:"max_backoff"`
}

// DefaultConfig returns configuration with safe defaults.
func DefaultConfig() *Config {
	return &Config{
		ListenAddr:     ":8000",
		Workers:        3,
		YtdlpPath:      "yt-dlp",
		YtdlpTimeout:   5 * time.Minute,
		WhisperModel:   "base",
		MaxRetries:     3,
		InitialBackoff: 500 * time.Millisecond,
		MaxBackoff:     10 * time.Second,
	}
}

// Load loads configuration from a .env file (if present), a JSON config
// file, and environment variables, then validates the result.
// Priority: env vars > config file > defaults.
func Load() (*Config, error) {
	// A missing .env is fine; explicit environment always wins anyway.
	_ = godotenv.Load()

	cfg := DefaultConfig()

	if err := cfg.loadFromFile(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	cfg.loadFromEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFromFile attempts to load config from ytscope.json in the current
// directory or under the user's config directory.
func (c *Config) loadFromFile() error {
	paths := []string{
		"ytscope.json",
		filepath.Join(os.Getenv("HOME"), ".config", "ytscope", "ytscope.json"),
	}

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return err
		}

		if err := json.Unmarshal(data, c); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
		return nil
	}

	return os.ErrNotExist
}

// loadFromEnv overrides config with environment variables.
func (c *Config) loadFromEnv() {
	c.YouTubeAPIKey = os.Getenv("YOUTUBE_API_KEY")
	c.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")

	if v := os.Getenv("YTSCOPE_LISTEN_ADDR"); v != "" {
		c.ListenAddr = v
	}
	if v := os.Getenv("YTSCOPE_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Workers = n
		}
	}
	if v := os.Getenv("YTSCOPE_YTDLP_PATH"); v != "" {
		c.YtdlpPath = v
	}
	if v := os.Getenv("YTSCOPE_YTDLP_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.YtdlpTimeout = d
		}
	}
	if v := os.Getenv("YTSCOPE_WHISPER_MODEL"); v != "" {
		c.WhisperModel = v
	}
	if v := os.Getenv("YTSCOPE_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxRetries = n
		}
	}
	if v := os.Getenv("YTSCOPE_INITIAL_BACKOFF"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.InitialBackoff = d
		}
	}
	if v := os.Getenv("YTSCOPE_MAX_BACKOFF"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.MaxBackoff = d
		}
	}
}

// Validate checks that configuration values are valid and consistent.
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("listen_addr must not be empty")
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive")
	}
	if c.YtdlpTimeout <= 0 {
		return fmt.Errorf("ytdlp_timeout must be positive")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max_retries must be non-negative")
	}
	if c.InitialBackoff <= 0 {
		return fmt.Errorf("initial_backoff must be positive")
	}
	if c.MaxBackoff < c.InitialBackoff {
		return fmt.Errorf("max_backoff must be >= initial_backoff")
	}
	switch c.WhisperModel {
	case "tiny", "base", "small", "medium", "large":
	default:
		return fmt.Errorf("whisper_model must be one of tiny, base, small, medium, large")
	}
	return nil
}

// RetryConfig builds the retry policy from the configured knobs.
func (c *Config) RetryConfig() retry.Config {
	rc := retry.DefaultConfig()
	rc.MaxRetries = c.MaxRetries
	rc.InitialBackoff = c.InitialBackoff
	rc.MaxBackoff = c.MaxBackoff
	return rc
}
