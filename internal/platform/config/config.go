package config

import (
	"os"
	"strconv"
	"strings"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName  string
	HTTPPort     string
	PostgresDSN  string
	KafkaBrokers []string
	RedisAddr    string

	AdminAccountID   string
	MaxMetadataBytes int
	// RepeatLimit caps repeatable lifecycle kinds per product; 0 is unlimited.
	RepeatLimit int
}

func Load() (Config, error) {
	service := os.Getenv("SERVICE_NAME")
	if service == "" {
		service = "tracechain"
	}

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}

	var brokers []string
	for _, value := range strings.Split(os.Getenv("KAFKA_BROKERS"), ",") {
		value = strings.TrimSpace(value)
		if value != "" {
			brokers = append(brokers, value)
		}
	}
	if len(brokers) == 0 {
		brokers = []string{"localhost:9092"}
	}

	admin := strings.TrimSpace(os.Getenv("TRACE_ADMIN_ACCOUNT"))
	if admin == "" {
		admin = "admin"
	}

	return Config{
		ServiceName:  service,
		HTTPPort:     port,
		PostgresDSN:  os.Getenv("POSTGRES_DSN"),
		KafkaBrokers: brokers,
		RedisAddr:    strings.TrimSpace(os.Getenv("REDIS_ADDR")),

		AdminAccountID:   admin,
		MaxMetadataBytes: envInt("TRACE_MAX_METADATA_BYTES", 4096),
		RepeatLimit:      envInt("TRACE_REPEAT_LIMIT", 0),
	}, nil
}

func envInt(name string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}
