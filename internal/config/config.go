package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config aggregates everything the service reads from the environment.
type Config struct {
	HTTPPort  int
	DB        DBConfig
	RedisAddr string

	JWTSecret   string
	JWTLifetime time.Duration

	Gateway GatewayConfig

	// Comma-separated list of allowed frontend origins. The list also picks
	// the base for payment return URLs, skipping a leading localhost entry.
	AllowedOrigins string
}

type DBConfig struct {
	Host string
	Port string
	User string
	Pass string
	Name string
}

// GatewayConfig holds the payment gateway credentials. BaseURL is
// overridable so tests can point the client at a stub server.
type GatewayConfig struct {
	AccessToken string
	PublicKey   string
	BaseURL     string
}

const (
	defaultHTTPPort       = 8080
	defaultRedisAddr      = "localhost:6379"
	defaultJWTLifetime    = 24 * time.Hour
	defaultGatewayBaseURL = "https://api.mercadopago.com"
)

// Load reads configuration from environment variables, applying defaults.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:  defaultHTTPPort,
		RedisAddr: valueOrDefault("REDIS_ADDR", defaultRedisAddr),
		DB: DBConfig{
			Host: valueOrDefault("DB_HOST", "127.0.0.1"),
			Port: valueOrDefault("DB_PORT", "3306"),
			User: valueOrDefault("DB_USER", "root"),
			Pass: os.Getenv("DB_PASS"),
			Name: valueOrDefault("DB_NAME", "commerce"),
		},
		JWTSecret:   valueOrDefault("JWT_SECRET", "secret"),
		JWTLifetime: defaultJWTLifetime,
		Gateway: GatewayConfig{
			AccessToken: os.Getenv("MP_ACCESS_TOKEN"),
			PublicKey:   os.Getenv("MP_PUBLIC_KEY"),
			BaseURL:     valueOrDefault("MP_BASE_URL", defaultGatewayBaseURL),
		},
		AllowedOrigins: valueOrDefault("ALLOWED_ORIGINS", "http://localhost:3000"),
	}

	if v := os.Getenv("HTTP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid HTTP_PORT value %q: %w", v, err)
		}
		cfg.HTTPPort = port
	}

	if v := os.Getenv("JWT_LIFETIME"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid JWT_LIFETIME: %w", err)
		}
		cfg.JWTLifetime = d
	}

	return cfg, nil
}

// DSN renders the MySQL connection string.
func (d DBConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true", d.User, d.Pass, d.Host, d.Port, d.Name)
}

func valueOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
