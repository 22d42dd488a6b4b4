package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the full application configuration, loaded from the
// environment with an optional .env file for local development.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	CORS     CORSConfig
	Security SecurityConfig
}

type ServerConfig struct {
	Port        string
	Environment string // development, staging, production
	LogLevel    string
}

type DatabaseConfig struct {
	URL                string
	MaxConnections     int
	MaxIdleConnections int
	ConnMaxLifetime    time.Duration
}

type JWTConfig struct {
	Secret             string
	RefreshSecret      string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

type SecurityConfig struct {
	BcryptCost int
}

// Load reads configuration from environment variables and validates
// the required keys. Expiry and lifetime values accept Go duration
// strings such as "15m" or "720h".
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:        envString("PORT", "8080"),
			Environment: envString("ENVIRONMENT", "development"),
			LogLevel:    envString("LOG_LEVEL", "info"),
		},
		Database: DatabaseConfig{
			URL:                envString("DATABASE_URL", ""),
			MaxConnections:     envInt("DATABASE_MAX_CONNECTIONS", 10),
			MaxIdleConnections: envInt("DATABASE_MAX_IDLE_CONNECTIONS", 5),
			ConnMaxLifetime:    envDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		JWT: JWTConfig{
			Secret:             envString("JWT_SECRET", ""),
			RefreshSecret:      envString("JWT_REFRESH_SECRET", ""),
			AccessTokenExpiry:  envDuration("JWT_ACCESS_TOKEN_EXPIRY", time.Hour),
			RefreshTokenExpiry: envDuration("JWT_REFRESH_TOKEN_EXPIRY", 7*24*time.Hour),
		},
		CORS: CORSConfig{
			AllowedOrigins: envSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
			AllowedMethods: envSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
			AllowedHeaders: envSlice("CORS_ALLOWED_HEADERS", []string{"Content-Type", "Authorization"}),
		},
		Security: SecurityConfig{
			BcryptCost: envInt("BCRYPT_COST", 12),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the keys that have no usable default.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.JWT.RefreshSecret == "" {
		return fmt.Errorf("JWT_REFRESH_SECRET is required")
	}
	return nil
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("Invalid integer value for %s, using default: %d", key, fallback)
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		// Bare integers are treated as seconds for compatibility
		// with older deployments.
		if n, convErr := strconv.Atoi(v); convErr == nil {
			return time.Duration(n) * time.Second
		}
		log.Printf("Invalid duration value for %s, using default: %s", key, fallback)
		return fallback
	}
	return d
}

func envSlice(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
