package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// ErrMissingToken is returned by Load when no bot token is configured.
var ErrMissingToken = errors.New("TELEGRAM_BOT_TOKEN is not set")

type Config struct {
	Telegram TelegramConfig
	Download DownloadConfig
	YouTube  YouTubeConfig
	Bot      BotConfig
	API      APIConfig
}

type TelegramConfig struct {
	Token       string
	Debug       bool
	PollTimeout int
}

type DownloadConfig struct {
	Dir              string
	MaxFileSize      int64
	MaxHeight        int
	DownloadTimeout  time.Duration
	YTDLPPath        string
	YTDLPAutoInstall bool
}

type YouTubeConfig struct {
	PreflightSizeCheck bool
	ProbeTimeout       time.Duration
}

type BotConfig struct {
	MaxConcurrentRequests int
	ShutdownTimeout       time.Duration
}

type APIConfig struct {
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

// Load reads envFile (if present) and the process environment.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			fmt.Printf("Warning: %s not loaded, using environment variables\n", envFile)
		}
	}

	cfg := &Config{}

	// Telegram configuration
	cfg.Telegram.Token = getEnv("TELEGRAM_BOT_TOKEN", "")
	if cfg.Telegram.Token == "" {
		return nil, ErrMissingToken
	}
	cfg.Telegram.Debug = getEnvBool("TELEGRAM_DEBUG", false)
	cfg.Telegram.PollTimeout = getEnvInt("TELEGRAM_POLL_TIMEOUT", 60)

	// Download configuration
	cfg.Download.Dir = getEnv("DOWNLOAD_DIR", "downloads")
	cfg.Download.MaxFileSize = getEnvInt64("MAX_FILE_SIZE", 50*1024*1024) // Telegram bot upload limit
	cfg.Download.MaxHeight = getEnvInt("MAX_VIDEO_HEIGHT", 720)
	downloadTimeout, err := time.ParseDuration(getEnv("DOWNLOAD_TIMEOUT", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid DOWNLOAD_TIMEOUT: %w", err)
	}
	cfg.Download.DownloadTimeout = downloadTimeout
	cfg.Download.YTDLPPath = getEnv("YTDLP_PATH", "")
	cfg.Download.YTDLPAutoInstall = getEnvBool("YTDLP_AUTO_INSTALL", false)

	// YouTube metadata probe
	cfg.YouTube.PreflightSizeCheck = getEnvBool("PREFLIGHT_SIZE_CHECK", false)
	probeTimeout, err := time.ParseDuration(getEnv("PREFLIGHT_TIMEOUT", "15s"))
	if err != nil {
		return nil, fmt.Errorf("invalid PREFLIGHT_TIMEOUT: %w", err)
	}
	cfg.YouTube.ProbeTimeout = probeTimeout

	// Dispatch configuration
	cfg.Bot.MaxConcurrentRequests = getEnvInt("MAX_CONCURRENT_REQUESTS", 4)
	shutdownTimeout, err := time.ParseDuration(getEnv("SHUTDOWN_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid SHUTDOWN_TIMEOUT: %w", err)
	}
	cfg.Bot.ShutdownTimeout = shutdownTimeout

	// Rate limiting (0 disables)
	cfg.API.RateLimitRequests = getEnvInt("RATE_LIMIT_REQUESTS", 0)
	rateLimitWindow, err := time.ParseDuration(getEnv("RATE_LIMIT_WINDOW", "1m"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_WINDOW: %w", err)
	}
	cfg.API.RateLimitWindow = rateLimitWindow

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Download.MaxFileSize <= 0 {
		return fmt.Errorf("MAX_FILE_SIZE must be positive, got %d", c.Download.MaxFileSize)
	}
	if c.Download.MaxHeight <= 0 {
		return fmt.Errorf("MAX_VIDEO_HEIGHT must be positive, got %d", c.Download.MaxHeight)
	}
	if c.Download.DownloadTimeout <= 0 {
		return fmt.Errorf("DOWNLOAD_TIMEOUT must be positive")
	}
	if c.Bot.MaxConcurrentRequests <= 0 {
		return fmt.Errorf("MAX_CONCURRENT_REQUESTS must be positive, got %d", c.Bot.MaxConcurrentRequests)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
