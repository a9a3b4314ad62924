package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// OpenET provider configuration.
	OpenETBaseURL   string
	OpenETAPIKey    string
	OpenETTimeout   time.Duration
	OpenETCacheSize int
	CacheEnabled    bool

	// Narrative summarizer configuration.
	OpenAIAPIKey   string
	OpenAIBaseURL  string
	OpenAIModel    string
	SummaryEnabled bool
	SummaryTimeout time.Duration

	// Optional report publishing.
	KafkaBrokers     []string
	KafkaReportTopic string
	KafkaEnabled     bool
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	openetTimeout, err := parseDuration("OPENET_TIMEOUT", "120s")
	if err != nil {
		return nil, err
	}

	summaryTimeout, err := parseDuration("SUMMARY_TIMEOUT", "60s")
	if err != nil {
		return nil, err
	}

	openaiKey := os.Getenv("OPENAI_API_KEY")
	summaryEnabled := openaiKey != ""
	if v := os.Getenv("SUMMARY_ENABLED"); v != "" {
		summaryEnabled = v == "true"
	}

	kafkaEnabled := os.Getenv("KAFKA_ENABLED") == "true"

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		OpenETBaseURL:   envOrDefault("OPENET_BASE_URL", "https://openet-api.org"),
		OpenETAPIKey:    os.Getenv("OPENET_API_KEY"),
		OpenETTimeout:   openetTimeout,
		OpenETCacheSize: parsePositiveInt("OPENET_CACHE_SIZE", 256),
		CacheEnabled:    envOrDefault("OPENET_CACHE_ENABLED", "true") == "true",

		OpenAIAPIKey:   openaiKey,
		OpenAIBaseURL:  os.Getenv("OPENAI_BASE_URL"),
		OpenAIModel:    envOrDefault("OPENAI_MODEL", "gpt-4o-mini"),
		SummaryEnabled: summaryEnabled,
		SummaryTimeout: summaryTimeout,

		KafkaBrokers:     parseBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaReportTopic: envOrDefault("KAFKA_REPORT_TOPIC", "et-insight-reports"),
		KafkaEnabled:     kafkaEnabled,
	}

	if cfg.OpenETAPIKey == "" {
		return nil, errors.New("OPENET_API_KEY is required")
	}
	if cfg.SummaryEnabled && cfg.OpenAIAPIKey == "" {
		return nil, errors.New("SUMMARY_ENABLED is true but OPENAI_API_KEY is not set")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
	}
	if cfg.KafkaEnabled && cfg.KafkaReportTopic == "" {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_REPORT_TOPIC is empty")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, errors.New("invalid " + key)
	}
	return d, nil
}

func parsePositiveInt(key string, fallback int) int {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func parseBrokers(s string) []string {
	var brokers []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
