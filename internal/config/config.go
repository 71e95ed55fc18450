package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	ServerPort string
	GinMode    string
	LogLevel   string
	LogFormat  string

	// TutorBaseURL is the base URL of the external content-analysis
	// service (session creation, upload analysis, Socratic dialogue).
	TutorBaseURL string
	// TutorTimeout bounds every tutor-service call. Analysis of a large
	// upload can legitimately take minutes.
	TutorTimeout time.Duration

	// RedisURL enables the transcript archive worker. Empty disables it.
	RedisURL string
	// TranscriptTTL is how long an archived session transcript is kept.
	TranscriptTTL time.Duration

	MaxUploadBytes int64

	// SyncPollInterval is the playback-position polling period of the
	// timestamp scheduler.
	SyncPollInterval time.Duration

	// AllowedOrigins controls HTTP CORS and WebSocket origin validation.
	// Empty slice means all origins are permitted (dev default).
	AllowedOrigins []string
}

// Load reads configuration from environment variables with sensible defaults.
// It loads .env file if present but does not fail if missing.
func Load() *Config {
	_ = godotenv.Load() // Ignore error — .env is optional

	return &Config{
		ServerPort:       getEnv("SERVER_PORT", "8080"),
		GinMode:          getEnv("GIN_MODE", "debug"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFormat:        getEnv("LOG_FORMAT", "pretty"),
		TutorBaseURL:     getEnv("TUTOR_BASE_URL", "http://localhost:8000/api"),
		TutorTimeout:     time.Duration(getEnvInt("TUTOR_TIMEOUT_SECONDS", 120)) * time.Second,
		RedisURL:         getEnv("REDIS_URL", ""),
		TranscriptTTL:    time.Duration(getEnvInt("TRANSCRIPT_TTL_HOURS", 24)) * time.Hour,
		MaxUploadBytes:   int64(getEnvInt("MAX_UPLOAD_SIZE_MB", 200)) * 1024 * 1024,
		SyncPollInterval: time.Duration(getEnvInt("SYNC_POLL_INTERVAL_MS", 500)) * time.Millisecond,
		AllowedOrigins:   parseOrigins(getEnv("ALLOWED_ORIGINS", "")),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// parseOrigins splits a comma-separated origins string into a trimmed slice.
// Returns nil (allow-all) if the input is empty.
func parseOrigins(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
