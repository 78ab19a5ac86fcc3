// Package config centralizes process configuration loaded from the
// environment (optionally seeded from a .env file).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment string

	Server    ServerConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	CSRF      CSRFConfig
	Auth      AuthConfig
	Outbound  OutboundConfig
	Logging   LoggingConfig
}

type ServerConfig struct {
	Port         int
	TLSPort      int
	EnableTLS    bool
	AutoCert     bool
	Domain       string
	CertFile     string
	KeyFile      string
	AutoCertDir  string
	Email        string
	TrustProxy   bool
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// CORSAllowedOrigins is the credentialed-CORS allowlist; empty keeps
	// the API same-origin only.
	CORSAllowedOrigins []string
}

type RedisConfig struct {
	// URL is a redis:// or rediss:// connection string. When empty the
	// gate runs entirely on the in-process backends.
	URL      string
	PoolSize int
}

type RateLimitConfig struct {
	Limit           int
	Window          time.Duration
	MaxPayloadBytes int64
	CacheSize       int
}

type CSRFConfig struct {
	TokenTTL time.Duration
}

type AuthConfig struct {
	Enabled   bool
	JWTSecret string
}

type OutboundConfig struct {
	AllowedHosts []string
	RetryMax     int
	PerHostRPS   float64
	Burst        int
}

type LoggingConfig struct {
	Level  string
	Format string
}

// Load reads configuration from the environment, applying defaults and
// validating the values the admission gate depends on.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Port:         getEnvInt("SERVER_PORT", 8080),
			TLSPort:      getEnvInt("SERVER_TLS_PORT", 8443),
			EnableTLS:    getEnvBool("ENABLE_TLS", false),
			AutoCert:     getEnvBool("AUTO_CERT", false),
			Domain:       getEnv("SERVER_DOMAIN", "localhost"),
			CertFile:     getEnv("TLS_CERT_FILE", ""),
			KeyFile:      getEnv("TLS_KEY_FILE", ""),
			AutoCertDir:  getEnv("AUTO_CERT_DIR", "./certs"),
			Email:        getEnv("AUTO_CERT_EMAIL", ""),
			TrustProxy:   getEnvBool("TRUST_PROXY", false),
			ReadTimeout:  getEnvDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getEnvDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:  getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),

			CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS"),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", ""),
			PoolSize: getEnvInt("REDIS_POOL_SIZE", 50),
		},
		RateLimit: RateLimitConfig{
			Limit:           getEnvInt("RATE_LIMIT", 100),
			Window:          getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
			MaxPayloadBytes: getEnvInt64("MAX_PAYLOAD_BYTES", 1<<20),
			CacheSize:       getEnvInt("RATE_LIMIT_CACHE_SIZE", 10000),
		},
		CSRF: CSRFConfig{
			TokenTTL: getEnvDuration("CSRF_TOKEN_TTL", time.Hour),
		},
		Auth: AuthConfig{
			Enabled:   getEnvBool("AUTH_ENABLED", false),
			JWTSecret: getEnv("JWT_SECRET", ""),
		},
		Outbound: OutboundConfig{
			AllowedHosts: getEnvList("OUTBOUND_ALLOWED_HOSTS"),
			RetryMax:     getEnvInt("OUTBOUND_RETRY_MAX", 3),
			PerHostRPS:   getEnvFloat("OUTBOUND_PER_HOST_RPS", 10),
			Burst:        getEnvInt("OUTBOUND_BURST", 5),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.RateLimit.Limit <= 0 {
		return fmt.Errorf("RATE_LIMIT must be positive, got %d", c.RateLimit.Limit)
	}
	if c.RateLimit.Window <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive, got %s", c.RateLimit.Window)
	}
	if c.RateLimit.MaxPayloadBytes <= 0 {
		return fmt.Errorf("MAX_PAYLOAD_BYTES must be positive, got %d", c.RateLimit.MaxPayloadBytes)
	}
	if c.RateLimit.CacheSize <= 0 {
		return fmt.Errorf("RATE_LIMIT_CACHE_SIZE must be positive, got %d", c.RateLimit.CacheSize)
	}
	if c.CSRF.TokenTTL <= 0 {
		return fmt.Errorf("CSRF_TOKEN_TTL must be positive, got %s", c.CSRF.TokenTTL)
	}
	if c.Auth.Enabled && c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required when AUTH_ENABLED=true")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// HasRedis reports whether a shared backend is configured.
func (c *Config) HasRedis() bool {
	return c.Redis.URL != ""
}

func (c *Config) GetServerAddress() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
