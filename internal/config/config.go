package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    slog.Level

	DatabaseURL string
	RedisURL    string

	// PublicURL is the base used to build taker-facing test links
	PublicURL     string
	AdminPassword string

	Casdoor CasdoorConfig
	AI      AIConfig
	Kafka   KafkaConfig
}

// CasdoorConfig holds the configuration for Casdoor connection
type CasdoorConfig struct {
	Endpoint     string
	ClientID     string
	ClientSecret string
	Cert         string
	Organization string
	Application  string
}

// Enabled reports whether enough Casdoor settings are present to verify tokens
func (c CasdoorConfig) Enabled() bool {
	return c.Endpoint != "" && c.Cert != ""
}

type AIConfig struct {
	APIKey  string
	BaseURL string
	Model   string

	// GradeTimeout bounds a single essay grading call
	GradeTimeout time.Duration
	// GradeConcurrency caps parallel grading calls per submission
	GradeConcurrency int
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// LoadConfig reads an optional .env file and then the process environment
func LoadConfig() (*Config, error) {
	// .env is optional; real deployments inject the environment directly
	_ = godotenv.Load()

	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		Environment:   getEnv("ENVIRONMENT", "development"),
		LogLevel:      parseLogLevel(getEnv("LOG_LEVEL", "info")),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		RedisURL:      os.Getenv("REDIS_URL"),
		PublicURL:     strings.TrimRight(getEnv("PUBLIC_URL", "http://localhost:3000"), "/"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		Casdoor: CasdoorConfig{
			Endpoint:     os.Getenv("CASDOOR_ENDPOINT"),
			ClientID:     os.Getenv("CASDOOR_CLIENT_ID"),
			ClientSecret: os.Getenv("CASDOOR_CLIENT_SECRET"),
			Cert:         os.Getenv("CASDOOR_CERT"),
			Organization: os.Getenv("CASDOOR_ORGANIZATION"),
			Application:  os.Getenv("CASDOOR_APPLICATION"),
		},
		AI: AIConfig{
			APIKey:  os.Getenv("AI_API_KEY"),
			BaseURL: os.Getenv("AI_BASE_URL"),
			Model:   getEnv("AI_MODEL", "gpt-4o-mini"),
		},
		Kafka: KafkaConfig{
			Brokers: splitList(os.Getenv("KAFKA_BROKERS")),
			Topic:   getEnv("KAFKA_TOPIC", "test-session-events"),
		},
	}

	var err error
	if cfg.AI.GradeTimeout, err = time.ParseDuration(getEnv("AI_GRADE_TIMEOUT", "30s")); err != nil {
		return nil, fmt.Errorf("invalid AI_GRADE_TIMEOUT: %w", err)
	}
	if cfg.AI.GradeConcurrency, err = strconv.Atoi(getEnv("AI_GRADE_CONCURRENCY", "4")); err != nil {
		return nil, fmt.Errorf("invalid AI_GRADE_CONCURRENCY: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.AI.GradeTimeout <= 0 {
		return fmt.Errorf("AI_GRADE_TIMEOUT must be positive")
	}
	if c.AI.GradeConcurrency < 1 {
		return fmt.Errorf("AI_GRADE_CONCURRENCY must be at least 1")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
