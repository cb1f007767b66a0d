package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Issuer         string // Required: issuer claim for session tokens
	BootstrapToken string // Optional: token required to perform bootstrap

	DatabaseFile   string // Optional: path to SQLite database file (default: ./authcore.db)
	SessionBackend string // Optional: session storage backend (sqlite, redis) (default: sqlite)
	RedisAddr      string // Optional: redis address for the redis session backend (default: localhost:6379)
	RedisPassword  string // Optional: redis password
	SigningKeyFile string // Optional: PKCS8 PEM Ed25519 key; ephemeral keypair when unset

	InactivityBudget    time.Duration // Session inactivity budget (default: 15m)
	NearExpiryThreshold time.Duration // Countdown warning threshold (default: 2m)
	TokenTTL            time.Duration // Outer session token lifetime (default: 12h)

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Idle-session sweep interval (default: 5m)
}

func LoadConfig() Config {
	cfg := Config{
		Issuer:         getEnvOrDefault("AUTHCORE_ISSUER", "harborhealth-authcore"),
		BootstrapToken: os.Getenv("BOOTSTRAP_TOKEN"),

		DatabaseFile:   getEnvOrDefault("AUTHCORE_DATABASE_FILE", "authcore.db"),
		SessionBackend: getEnvOrDefault("AUTHCORE_SESSION_BACKEND", "sqlite"),
		RedisAddr:      getEnvOrDefault("AUTHCORE_REDIS_ADDR", "localhost:6379"),
		RedisPassword:  os.Getenv("AUTHCORE_REDIS_PASSWORD"),
		SigningKeyFile: os.Getenv("AUTHCORE_SIGNING_KEY_FILE"),

		InactivityBudget:    getEnvDurationOrDefault("AUTHCORE_INACTIVITY_BUDGET", 15*time.Minute),
		NearExpiryThreshold: getEnvDurationOrDefault("AUTHCORE_NEAR_EXPIRY_THRESHOLD", 2*time.Minute),
		TokenTTL:            getEnvDurationOrDefault("AUTHCORE_TOKEN_TTL", 12*time.Hour),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 5*time.Minute),
	}

	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
