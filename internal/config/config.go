// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the HTTP API server listens on (e.g. :8080).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// DatabaseURL is the Postgres DSN; empty runs the server on the in-memory store.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// JWTPrivateKey is the PEM-encoded private key (RSA or ECDSA) or path to file; signs conference room tokens.
	JWTPrivateKey string `mapstructure:"JWT_PRIVATE_KEY"`
	// JWTPublicKey is the PEM-encoded public key or path to file; shared with the conferencing provider.
	JWTPublicKey string `mapstructure:"JWT_PUBLIC_KEY"`
	// ConferenceAppID is the application id registered with the conferencing provider.
	// Room names are derived as "<app id>/<session id>".
	ConferenceAppID string `mapstructure:"CONFERENCE_APP_ID"`
	// ConferenceIssuer is the iss claim on room tokens (e.g. "chat").
	ConferenceIssuer string `mapstructure:"CONFERENCE_ISSUER"`
	// ConferenceAudience is the aud claim on room tokens (e.g. "jitsi").
	ConferenceAudience string `mapstructure:"CONFERENCE_AUDIENCE"`
	// JoinBufferMinutes is the default grace buffer added to token expiry when the caller sends none.
	JoinBufferMinutes int `mapstructure:"JOIN_BUFFER_MINUTES"`
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`

	// Telemetry (optional). When Kafka brokers are set, the server emits attendance events to Kafka.
	// KafkaBrokers is a comma-separated list of Kafka broker addresses (e.g. "localhost:9092").
	KafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	// AttendanceKafkaTopic is the Kafka topic for attendance events (default webinar-attendance).
	AttendanceKafkaTopic string `mapstructure:"ATTENDANCE_KAFKA_TOPIC"`

	// Worker-only: Loki URL for the attendance worker to push logs (e.g. http://localhost:3100).
	LokiURL string `mapstructure:"LOKI_URL"`
	// KafkaGroupID is the consumer group ID for the attendance worker.
	KafkaGroupID string `mapstructure:"KAFKA_GROUP_ID"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("JWT_PRIVATE_KEY", "")
	v.SetDefault("JWT_PUBLIC_KEY", "")
	v.SetDefault("CONFERENCE_APP_ID", "webinar")
	v.SetDefault("CONFERENCE_ISSUER", "chat")
	v.SetDefault("CONFERENCE_AUDIENCE", "jitsi")
	v.SetDefault("JOIN_BUFFER_MINUTES", 30)
	v.SetDefault("APP_ENV", "")
	v.SetDefault("ATTENDANCE_KAFKA_TOPIC", "webinar-attendance")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("LOKI_URL", "")
	v.SetDefault("KAFKA_GROUP_ID", "webinar-attendance-worker")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}
	if cfg.ConferenceAppID == "" {
		return nil, errors.New("config: CONFERENCE_APP_ID must be set")
	}
	if cfg.JoinBufferMinutes <= 0 {
		return nil, errors.New("config: JOIN_BUFFER_MINUTES must be positive")
	}

	return &cfg, nil
}

// JoinBuffer returns the default token grace buffer as a time.Duration.
func (c *Config) JoinBuffer() time.Duration {
	return time.Duration(c.JoinBufferMinutes) * time.Minute
}

// KafkaBrokersList returns Kafka broker addresses from the comma-separated config.
// Used to decide if telemetry is enabled (non-empty list) and to create the producer.
func (c *Config) KafkaBrokersList() []string {
	if c == nil || c.KafkaBrokers == "" {
		return nil
	}
	parts := strings.Split(c.KafkaBrokers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
