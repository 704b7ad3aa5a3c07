package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/vytor/quizflash/internal/logger"
)

type Config struct {
	Addr             string
	DBPath           string
	LogLevel         string
	JWTSecret        string
	TokenTTL         time.Duration
	SaveWorkerCount  int
	SaveQueueSize    int
	QuestionBankPath string // empty means the embedded bank
	ShutdownTimeout  time.Duration
	SecureCookies    bool
}

const defaultJWTSecret = "change-me-in-production"

// Load reads configuration from a .env file (if present) and environment variables,
// applying sensible defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:             envOr("ADDR", ":8080"),
		DBPath:           envOr("DB_PATH", "file:quizflash.db"),
		LogLevel:         envOr("LOG_LEVEL", "INFO"),
		JWTSecret:        envOr("JWT_SECRET", defaultJWTSecret),
		TokenTTL:         time.Duration(envIntOr("TOKEN_TTL_HOURS", 72)) * time.Hour,
		SaveWorkerCount:  envIntOr("SAVE_WORKER_COUNT", 2),
		SaveQueueSize:    envIntOr("SAVE_QUEUE_SIZE", 64),
		QuestionBankPath: os.Getenv("QUESTION_BANK_PATH"),
		ShutdownTimeout:  time.Duration(envIntOr("SHUTDOWN_TIMEOUT_SECONDS", 30)) * time.Second,
		SecureCookies:    envBoolOr("SECURE_COOKIES", false),
	}
}

// Validate checks that the loaded values are usable.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("ADDR cannot be empty")
	}
	if strings.TrimSpace(c.DBPath) == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET cannot be empty")
	}
	if len(c.JWTSecret) < 16 {
		return fmt.Errorf("JWT_SECRET must be at least 16 characters, got %d", len(c.JWTSecret))
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL_HOURS must be positive")
	}
	if c.SaveWorkerCount < 1 {
		return fmt.Errorf("SAVE_WORKER_COUNT must be at least 1, got %d", c.SaveWorkerCount)
	}
	if c.SaveQueueSize < 1 {
		return fmt.Errorf("SAVE_QUEUE_SIZE must be at least 1, got %d", c.SaveQueueSize)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT_SECONDS must be positive")
	}
	if c.QuestionBankPath != "" {
		if _, err := os.Stat(c.QuestionBankPath); err != nil {
			return fmt.Errorf("QUESTION_BANK_PATH %q: %w", c.QuestionBankPath, err)
		}
	}
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG", "INFO", "WARN", "WARNING", "ERROR":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of DEBUG, INFO, WARN, ERROR, got %q", c.LogLevel)
	}
	return nil
}

// UsesDefaultSecret is true when JWT_SECRET was not configured.
func (c Config) UsesDefaultSecret() bool {
	return c.JWTSecret == defaultJWTSecret
}

// LogLevelValue converts LogLevel for logger.WithLevel.
func (c Config) LogLevelValue() logger.Level {
	return logger.ParseLevel(c.LogLevel)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}

func envBoolOr(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
		log.Printf("invalid value for %s=%q, using default %t", key, v, def)
	}
	return def
}
