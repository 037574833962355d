package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Issuer         string        // Issuer claim for access tokens (default: lessondesk-devapi)
	AccessTTL      time.Duration // Access token lifetime (default: 5m)
	RefreshTTL     time.Duration // Refresh token lifetime (default: 168h)
	DBPath         string        // Optional: sqlite file; empty means in-memory data
	SigningKeyFile string        // Optional: Ed25519 PEM; empty means a fresh key per run
	PepperFile     string        // Optional: password pepper file; empty means a fresh pepper per run
	AdminUsername  string        // Seeded admin account (default: admin)
	AdminPassword  string        // Seeded admin password (default: admin)
	DemoUsers      bool          // Also seed teacher/teacher and parent/parent (default: true)
	Env            string        // Environment (dev, staging, prod) (default: dev)
	LogLevel       string        // Log level (debug, info, warn, error) (default: info)
	LogFormat      string        // Log format (json, text) (default: json)
	Port           int           // HTTP server port (default: 8000)

	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Expired refresh token sweep (default: 1h)
}

func LoadConfig() Config {
	return Config{
		Issuer:         getEnvOrDefault("DEVAPI_ISSUER", "lessondesk-devapi"),
		AccessTTL:      getEnvDurationOrDefault("DEVAPI_ACCESS_TTL", 5*time.Minute),
		RefreshTTL:     getEnvDurationOrDefault("DEVAPI_REFRESH_TTL", 7*24*time.Hour),
		DBPath:         os.Getenv("DEVAPI_DB_PATH"),
		SigningKeyFile: os.Getenv("DEVAPI_SIGNING_KEY_FILE"),
		PepperFile:     os.Getenv("DEVAPI_PEPPER_FILE"),
		AdminUsername:  getEnvOrDefault("DEVAPI_ADMIN_USERNAME", "admin"),
		AdminPassword:  getEnvOrDefault("DEVAPI_ADMIN_PASSWORD", "admin"),
		DemoUsers:      getEnvBoolOrDefault("DEVAPI_DEMO_USERS", true),
		Env:            getEnvOrDefault("ENV", "dev"),
		LogLevel:       getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:      getEnvOrDefault("LOG_FORMAT", "json"),
		Port:           getEnvIntOrDefault("PORT", 8000),

		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", time.Hour),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

// getEnvDurationOrDefault accepts Go durations ("90s", "1h") or plain
// minutes.
func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}
	return defaultValue
}
