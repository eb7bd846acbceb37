package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	strutil "thesisflow/pkg/platform/strings"
)

// Config captures process-level configuration. FromEnv keeps main lean;
// every value has a development default so the service starts with an
// empty environment and memory stores.
type Config struct {
	Addr string

	// PostgresDSN selects durable storage; empty means in-memory stores.
	PostgresDSN string

	Redis RedisConfig

	Kafka KafkaConfig
}

// RedisConfig configures the identity-lookup cache. An empty URL
// disables caching.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	RoleTTL      time.Duration
}

// KafkaConfig configures the audit outbox publisher. Empty brokers
// disable Kafka publishing; audit events then stay in the outbox store.
type KafkaConfig struct {
	Brokers      []string
	AuditTopic   string
	PollInterval time.Duration
}

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	cfg := Config{
		Addr:        getEnv("THESISFLOW_ADDR", ":8080"),
		PostgresDSN: os.Getenv("THESISFLOW_POSTGRES_DSN"),
		Redis: RedisConfig{
			URL:          os.Getenv("THESISFLOW_REDIS_URL"),
			PoolSize:     getEnvInt("THESISFLOW_REDIS_POOL_SIZE", 10),
			MinIdleConns: getEnvInt("THESISFLOW_REDIS_MIN_IDLE", 2),
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			RoleTTL:      getEnvDuration("THESISFLOW_ROLE_CACHE_TTL", 5*time.Minute),
		},
		Kafka: KafkaConfig{
			AuditTopic:   getEnv("THESISFLOW_AUDIT_TOPIC", "thesisflow.audit"),
			PollInterval: getEnvDuration("THESISFLOW_OUTBOX_POLL_INTERVAL", 2*time.Second),
		},
	}
	if brokers := os.Getenv("THESISFLOW_KAFKA_BROKERS"); brokers != "" {
		cfg.Kafka.Brokers = strutil.DedupeAndTrim(strings.Split(brokers, ","))
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

