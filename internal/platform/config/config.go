package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// DefaultSharedSecret is the signing fallback used when SHARED_SECRET is not
// set. It is deliberately weak and exists so development setups work out of
// the box; production deployments must override it.
const DefaultSharedSecret = "dev-secret-change-in-production"

// Config captures everything a service process reads from the environment.
// It is loaded once in main and passed to constructors; nothing else in the
// codebase reads the environment.
type Config struct {
	Service      string
	Addr         string
	WorkerID     string
	SharedSecret string
	DatabaseURL  string
	Redis        RedisConfig
	Issuer       IssuerConfig
	Kafka        KafkaConfig
	RateLimit    RateLimitConfig
}

// RedisConfig carries connection settings for the optional Redis instance.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// IssuerConfig points the verification service at the issuance service.
type IssuerConfig struct {
	BaseURL string
	Timeout time.Duration
}

// KafkaConfig enables the Kafka audit sink when Brokers is non-empty.
type KafkaConfig struct {
	Brokers string
	Topic   string
}

// RateLimitConfig tunes the per-IP fixed window limiter.
type RateLimitConfig struct {
	Enabled bool
	Limit   int
	Window  time.Duration
}

// FromEnv builds a Config from environment variables so main stays lean.
// defaultAddr differs per service; everything else shares names so the two
// services can be deployed from one manifest template.
func FromEnv(service, defaultAddr string) Config {
	return Config{
		Service:      service,
		Addr:         getEnv("ADDR", defaultAddr),
		WorkerID:     getEnv("WORKER_ID", defaultWorkerID(service)),
		SharedSecret: getEnv("SHARED_SECRET", DefaultSharedSecret),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     getEnvInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getEnvInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getEnvDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getEnvDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getEnvDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Issuer: IssuerConfig{
			BaseURL: getEnv("ISSUER_BASE_URL", "http://localhost:8080"),
			Timeout: getEnvDuration("ISSUER_TIMEOUT", 10*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers: os.Getenv("KAFKA_BROKERS"),
			Topic:   getEnv("KAFKA_AUDIT_TOPIC", "attest.audit"),
		},
		RateLimit: RateLimitConfig{
			Enabled: os.Getenv("RATE_LIMIT_DISABLED") != "true",
			Limit:   getEnvInt("RATE_LIMIT_REQUESTS", 100),
			Window:  getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
		},
	}
}

func defaultWorkerID(service string) string {
	host, err := os.Hostname()
	if err != nil {
		host = service
	}
	return fmt.Sprintf("%s-%d", host, os.Getpid())
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
