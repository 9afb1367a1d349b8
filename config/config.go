package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds the service settings, read from the environment and an
// optional .env file.
type Config struct {
	Port           string
	RedisAddr      string // empty selects the in-memory cache
	CacheTTL       time.Duration
	CacheSize      int // in-memory cache entry cap
	WebhookURL     string
	WebhookTimeout time.Duration
	CatalogPath    string // empty selects the embedded catalog
	LogLevel       string
	LogFormat      string // "text" or "json"
	RateLimit      int
	RateWindow     time.Duration
}

// Load reads the configuration. A missing .env file is not an error.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	return &Config{
		Port:           getEnv("PORT", "8080"),
		RedisAddr:      getEnv("REDIS_ADDR", ""),
		CacheTTL:       getEnvDuration("CACHE_TTL", 10*time.Minute),
		CacheSize:      getEnvInt("CACHE_SIZE", 10000),
		WebhookURL:     getEnv("WEBHOOK_URL", ""),
		WebhookTimeout: getEnvDuration("WEBHOOK_TIMEOUT", 10*time.Second),
		CatalogPath:    getEnv("CATALOG_PATH", ""),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "text"),
		RateLimit:      getEnvInt("RATE_LIMIT", 30),
		RateWindow:     getEnvDuration("RATE_WINDOW", time.Minute),
	}, nil
}

// NewLogger builds the process logger from the log settings. An unknown
// level falls back to info.
func (c *Config) NewLogger() *logrus.Logger {
	logger := logrus.New()
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	if c.LogFormat == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return defaultValue
	}
	return v
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}
