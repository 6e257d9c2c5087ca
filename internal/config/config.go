package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/Viperzz6988/NurvioV5-admin/pkg/config"
)

const (
	devAccessSecret  = "change-this-access-secret-before-deploying"
	devRefreshSecret = "change-this-refresh-secret-before-deploying"
)

// Config holds all configuration for the admin backend.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"HTTP_PORT" envDefault:"8080"`

	// PostgreSQL
	PostgresHost          string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort          int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser          string `env:"POSTGRES_USER" envDefault:"nurvio"`
	PostgresPass          string `env:"POSTGRES_PASSWORD" envDefault:"nurvio_secret"`
	PostgresDB            string `env:"POSTGRES_DB" envDefault:"nurvio_admin"`
	PostgresSSL           string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`
	DBMaxConns            int32  `env:"DB_MAX_CONNS" envDefault:"10"`
	DBMinConns            int32  `env:"DB_MIN_CONNS" envDefault:"2"`
	DBMaxConnLifetimeMins int    `env:"DB_MAX_CONN_LIFETIME_MINS" envDefault:"60"`
	DBMaxConnIdleTimeMins int    `env:"DB_MAX_CONN_IDLE_TIME_MINS" envDefault:"10"`

	// Redis
	RedisHost     string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort     int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	CacheTTL      string `env:"CACHE_TTL" envDefault:"5m"`

	// Kafka
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// Tokens. Access and refresh tokens are signed with distinct secrets so a
	// leaked access secret cannot mint refresh tokens.
	JWTAccessSecret  string `env:"JWT_ACCESS_SECRET" envDefault:"change-this-access-secret-before-deploying"`
	JWTRefreshSecret string `env:"JWT_REFRESH_SECRET" envDefault:"change-this-refresh-secret-before-deploying"`
	JWTAccessExpiry  string `env:"JWT_ACCESS_TOKEN_EXPIRY" envDefault:"15m"`
	JWTRefreshExpiry string `env:"JWT_REFRESH_TOKEN_EXPIRY" envDefault:"168h"`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// Per-IP rate limits for the abuse-prone public endpoints.
	LoginRateRPS     float64 `env:"LOGIN_RATE_RPS" envDefault:"1"`
	LoginRateBurst   int     `env:"LOGIN_RATE_BURST" envDefault:"5"`
	ContactRateRPS   float64 `env:"CONTACT_RATE_RPS" envDefault:"0.2"`
	ContactRateBurst int     `env:"CONTACT_RATE_BURST" envDefault:"3"`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load admin config: %w", err)
	}
	if cfg.HTTPPort < 1 || cfg.HTTPPort > 65535 {
		return nil, fmt.Errorf("invalid HTTP port: %d", cfg.HTTPPort)
	}

	if _, err := time.ParseDuration(cfg.JWTAccessExpiry); err != nil {
		return nil, fmt.Errorf("parse JWT_ACCESS_TOKEN_EXPIRY %q: %w", cfg.JWTAccessExpiry, err)
	}
	if _, err := time.ParseDuration(cfg.JWTRefreshExpiry); err != nil {
		return nil, fmt.Errorf("parse JWT_REFRESH_TOKEN_EXPIRY %q: %w", cfg.JWTRefreshExpiry, err)
	}
	if _, err := time.ParseDuration(cfg.CacheTTL); err != nil {
		return nil, fmt.Errorf("parse CACHE_TTL %q: %w", cfg.CacheTTL, err)
	}

	if cfg.JWTAccessSecret == cfg.JWTRefreshSecret {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must differ")
	}

	// In non-development environments, require explicitly set, strong secrets.
	if cfg.Environment != "development" {
		for name, secret := range map[string]struct{ value, dev string }{
			"JWT_ACCESS_SECRET":  {cfg.JWTAccessSecret, devAccessSecret},
			"JWT_REFRESH_SECRET": {cfg.JWTRefreshSecret, devRefreshSecret},
		} {
			if secret.value == secret.dev {
				return nil, fmt.Errorf("%s must be explicitly set via environment variable in %q mode", name, cfg.Environment)
			}
			if len(secret.value) < 32 {
				return nil, fmt.Errorf("%s must be at least 32 characters long, got %d", name, len(secret.value))
			}
		}
	}

	return cfg, nil
}

// AccessExpiry returns the parsed access token lifetime.
func (c *Config) AccessExpiry() time.Duration {
	d, _ := time.ParseDuration(c.JWTAccessExpiry)
	return d
}

// RefreshExpiry returns the parsed refresh token lifetime.
func (c *Config) RefreshExpiry() time.Duration {
	d, _ := time.ParseDuration(c.JWTRefreshExpiry)
	return d
}

// CacheExpiry returns the parsed cache entry TTL.
func (c *Config) CacheExpiry() time.Duration {
	d, _ := time.ParseDuration(c.CacheTTL)
	return d
}
