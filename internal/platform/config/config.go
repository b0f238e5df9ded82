package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures process level configuration.
type Server struct {
	Addr            string
	PostgresDSN     string
	Redis           RedisConfig
	Kafka           KafkaConfig
	PolicyCacheTTL  time.Duration
	ShutdownTimeout time.Duration
}

// RedisConfig tunes the shared Redis client. An empty URL disables Redis and
// the service runs without the policy cache.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig points the audit trail at a Kafka cluster. No brokers means
// audit events stay on the in-memory store.
type KafkaConfig struct {
	Brokers    []string
	AuditTopic string
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("ROLLCALL_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	cfg := Server{
		Addr:        addr,
		PostgresDSN: os.Getenv("ROLLCALL_POSTGRES_DSN"),
		Redis: RedisConfig{
			URL:          os.Getenv("ROLLCALL_REDIS_URL"),
			PoolSize:     envInt("ROLLCALL_REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("ROLLCALL_REDIS_MIN_IDLE", 2),
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Kafka: KafkaConfig{
			AuditTopic: envString("ROLLCALL_AUDIT_TOPIC", "rollcall.audit"),
		},
		PolicyCacheTTL:  envDuration("ROLLCALL_POLICY_CACHE_TTL", 5*time.Minute),
		ShutdownTimeout: envDuration("ROLLCALL_SHUTDOWN_TIMEOUT", 10*time.Second),
	}
	if brokers := os.Getenv("ROLLCALL_KAFKA_BROKERS"); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.Kafka.Brokers = append(cfg.Kafka.Brokers, b)
			}
		}
	}
	return cfg
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}
