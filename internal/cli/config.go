package cli

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

type Config struct {
	APIURL     string        // Course API base URL (default: http://localhost:8000)
	SessionDB  string        // Session database path (default: ~/.lessondesk/session.db)
	SessionTTL time.Duration // Lifetime of stored session entries (default: 168h)
	Timeout    time.Duration // Per request HTTP timeout (default: 10s)
	RateLimit  float64       // Outbound requests per second, 0 disables (default: 10)
	Env        string        // Environment (dev, staging, prod) (default: dev)
	LogLevel   string        // Log level (debug, info, warn, error) (default: warn)
	LogFormat  string        // Log format (json, text) (default: text)
}

func LoadConfig() Config {
	return Config{
		APIURL:     getEnvOrDefault("LESSONDESK_API_URL", "http://localhost:8000"),
		SessionDB:  getEnvOrDefault("LESSONDESK_SESSION_DB", defaultSessionDB()),
		SessionTTL: getEnvDurationOrDefault("LESSONDESK_SESSION_TTL", 7*24*time.Hour),
		Timeout:    getEnvDurationOrDefault("LESSONDESK_TIMEOUT", 10*time.Second),
		RateLimit:  getEnvFloatOrDefault("LESSONDESK_RATE_LIMIT", 10),
		Env:        getEnvOrDefault("ENV", "dev"),
		LogLevel:   getEnvOrDefault("LOG_LEVEL", "warn"),
		LogFormat:  getEnvOrDefault("LOG_FORMAT", "text"),
	}
}

func defaultSessionDB() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "lessondesk-session.db"
	}
	return filepath.Join(home, ".lessondesk", "session.db")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if v, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil && v >= 0 {
		return v
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil && d > 0 {
		return d
	}
	return defaultValue
}
