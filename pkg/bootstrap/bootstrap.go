// Package bootstrap loads process configuration from the environment and
// builds the shared logger. Everything here is deliberately thin: the CLIs
// are short-lived, one-shot processes.
package bootstrap

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	// defaultTokenDirName matches where the auth helper persists Garmin
	// session tokens.
	defaultTokenDirName = ".garminconnect"

	// Inter-item pacing defaults, matching upstream request-rate limits:
	// 1s between wellness days, 2s between activity detail fetches.
	defaultWellnessDelay = time.Second
	defaultDetailDelay   = 2 * time.Second
)

// Config holds standard configuration for all commands.
type Config struct {
	TokenDir      string
	TokenURL      string
	WellnessDelay time.Duration
	DetailDelay   time.Duration
	SentryDSN     string
	Environment   string
}

// LoadConfig reads configuration from environment variables. Unset values
// fall back to defaults; there is no config file.
func LoadConfig() *Config {
	tokenDir := os.Getenv("GARMIN_TOKEN_DIR")
	if tokenDir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			tokenDir = filepath.Join(home, defaultTokenDirName)
		} else {
			tokenDir = defaultTokenDirName
		}
	}

	env := os.Getenv("APEX_ENV")
	if env == "" {
		env = "production"
	}

	return &Config{
		TokenDir:      tokenDir,
		TokenURL:      os.Getenv("GARMIN_TOKEN_URL"),
		WellnessDelay: durationFromEnv("APEX_WELLNESS_DELAY_MS", defaultWellnessDelay),
		DetailDelay:   durationFromEnv("APEX_DETAIL_DELAY_MS", defaultDetailDelay),
		SentryDSN:     os.Getenv("SENTRY_DSN"),
		Environment:   env,
	}
}

func durationFromEnv(name string, fallback time.Duration) time.Duration {
	v := os.Getenv(name)
	if v == "" {
		return fallback
	}
	ms, err := strconv.Atoi(v)
	if err != nil || ms < 0 {
		return fallback
	}
	return time.Duration(ms) * time.Millisecond
}

// LogLevel reads LOG_LEVEL from the environment, defaulting to info.
func LogLevel() slog.Level {
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// GetSlogHandlerOptions returns the standard handler options.
func GetSlogHandlerOptions(level slog.Level) *slog.HandlerOptions {
	return &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Map standard keys to the collector's field names
			if a.Key == slog.MessageKey {
				return slog.Attr{Key: "message", Value: a.Value}
			}
			if a.Key == slog.LevelKey {
				return slog.Attr{Key: "severity", Value: a.Value}
			}
			return a
		},
	}
}

// NewLogger builds the JSON logger for a command. Diagnostics go to stderr
// only: stdout is reserved for the single JSON result document, so
// automated callers can parse it deterministically.
func NewLogger(service string) *slog.Logger {
	opts := GetSlogHandlerOptions(LogLevel())
	return slog.New(slog.NewJSONHandler(os.Stderr, opts)).With("service", service)
}
