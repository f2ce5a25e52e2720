package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Feed transport selectors for FEED_TRANSPORT.
const (
	TransportKafka = "kafka"
	TransportMQTT  = "mqtt"
)

// Config holds all service settings, populated from environment variables.
// The same configuration is shared by the dashboard and the feed binaries;
// each reads the subset it needs.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Simulation parameters.
	SimDefaultDays int
	SimSeed        int64

	// Feed replayer configuration.
	FeedTransport string
	FeedInterval  time.Duration
	FeedYear      int // 0 means the current year

	KafkaBrokers []string
	KafkaTopic   string

	MQTTBroker      string
	MQTTTopicPrefix string
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	feedInterval, err := parseDuration("FEED_INTERVAL", "1s")
	if err != nil {
		return nil, err
	}

	defaultDays, err := parseInt("SIM_DEFAULT_DAYS", 365)
	if err != nil {
		return nil, err
	}

	seed, err := parseInt64("SIM_SEED", 0)
	if err != nil {
		return nil, err
	}

	feedYear, err := parseInt("FEED_YEAR", 0)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		SimDefaultDays: defaultDays,
		SimSeed:        seed,

		FeedTransport: envOrDefault("FEED_TRANSPORT", TransportKafka),
		FeedInterval:  feedInterval,
		FeedYear:      feedYear,

		KafkaBrokers: parseBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:   envOrDefault("KAFKA_TOPIC", "environment-readings"),

		MQTTBroker:      envOrDefault("MQTT_BROKER", "tcp://localhost:1883"),
		MQTTTopicPrefix: envOrDefault("MQTT_TOPIC_PREFIX", "envsim/readings"),
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("HTTP_ADDR is required")
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid LOG_LEVEL %q", cfg.LogLevel)
	}
	switch cfg.LogFormat {
	case "json", "text":
	default:
		return nil, fmt.Errorf("invalid LOG_FORMAT %q", cfg.LogFormat)
	}
	if cfg.SimDefaultDays < 1 || cfg.SimDefaultDays > 3650 {
		return nil, errors.New("SIM_DEFAULT_DAYS must be between 1 and 3650")
	}
	if cfg.FeedYear < 0 {
		return nil, errors.New("FEED_YEAR must not be negative")
	}

	switch cfg.FeedTransport {
	case TransportKafka:
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required")
		}
		if cfg.KafkaTopic == "" {
			return nil, errors.New("KAFKA_TOPIC is required")
		}
	case TransportMQTT:
		if cfg.MQTTBroker == "" {
			return nil, errors.New("MQTT_BROKER is required")
		}
		if cfg.MQTTTopicPrefix == "" {
			return nil, errors.New("MQTT_TOPIC_PREFIX is required")
		}
	default:
		return nil, fmt.Errorf("invalid FEED_TRANSPORT %q", cfg.FeedTransport)
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// parseBrokers splits a comma-separated broker list, dropping empty entries.
func parseBrokers(s string) []string {
	parts := strings.Split(s, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			brokers = append(brokers, p)
		}
	}
	return brokers
}

func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}

func parseInt64(key string, def int64) (int64, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}
