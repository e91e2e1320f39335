package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/ShakenTheCoder/REVIfinal/pkg/config"
)

// Config holds all configuration for the review service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"REVI_HTTP_PORT" envDefault:"8010"`

	// PostgreSQL
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"revi"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"revi_secret"`
	PostgresDB   string `env:"REVI_DB_NAME" envDefault:"revi_db"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	// Redis (insight summary cache)
	RedisHost string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPass string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// Insight cache TTL in minutes.
	InsightCacheTTLMinutes int `env:"INSIGHT_CACHE_TTL_MINUTES" envDefault:"15"`

	// Kafka
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// Whether shadow reviews count toward product ratings.
	RatingIncludeShadow bool `env:"RATING_INCLUDE_SHADOW" envDefault:"false"`

	// OpenAI insight generation. Empty API key selects the static generator.
	OpenAIAPIKey         string `env:"OPENAI_API_KEY" envDefault:""`
	OpenAIModel          string `env:"OPENAI_MODEL" envDefault:""`
	OpenAITimeoutSeconds int    `env:"OPENAI_TIMEOUT_SECONDS" envDefault:"5"`

	// Tracing
	TracingEnabled    bool    `env:"TRACING_ENABLED" envDefault:"false"`
	OTLPEndpoint      string  `env:"OTLP_ENDPOINT" envDefault:"localhost:4318"`
	TracingSampleRate float64 `env:"TRACING_SAMPLE_RATE" envDefault:"1.0"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load revi config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.InsightCacheTTLMinutes < 1 {
		return fmt.Errorf("invalid insight cache TTL: %d minutes", c.InsightCacheTTLMinutes)
	}
	if c.TracingSampleRate < 0 || c.TracingSampleRate > 1 {
		return fmt.Errorf("invalid tracing sample rate: %f", c.TracingSampleRate)
	}
	return nil
}

// InsightCacheTTL returns the insight cache TTL as a duration.
func (c *Config) InsightCacheTTL() time.Duration {
	return time.Duration(c.InsightCacheTTLMinutes) * time.Minute
}

// OpenAITimeout returns the insight generation timeout as a duration.
func (c *Config) OpenAITimeout() time.Duration {
	return time.Duration(c.OpenAITimeoutSeconds) * time.Second
}
