// Package config loads server settings from defaults, an optional YAML file,
// a .env file and the environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DevJWTSecret signs tokens in development when no secret is configured.
const DevJWTSecret = "dev-only-change-me"

// Config holds every server setting.
type Config struct {
	Env string `yaml:"env"`

	Port       int    `yaml:"port"`
	StaticPath string `yaml:"staticPath"`

	// DatabaseURL selects PostgreSQL when set; otherwise SQLite at DBPath is used.
	DBPath      string `yaml:"dbPath"`
	DatabaseURL string `yaml:"databaseURL"`

	JWTSecret     string        `yaml:"jwtSecret"`
	TokenDuration time.Duration `yaml:"tokenDuration"`

	LogLevel  string `yaml:"logLevel"`
	LogFormat string `yaml:"logFormat"`

	CORSOrigins []string `yaml:"corsOrigins"`

	AuthRateLimitRPS   float64 `yaml:"authRateLimitRPS"`
	AuthRateLimitBurst int     `yaml:"authRateLimitBurst"`
}

// Default returns the development defaults.
func Default() Config {
	return Config{
		Env:                "development",
		Port:               8080,
		StaticPath:         "./frontend/static",
		DBPath:             "./data/splitperfect.db",
		TokenDuration:      24 * time.Hour,
		LogLevel:           "info",
		LogFormat:          "text",
		CORSOrigins:        []string{"*"},
		AuthRateLimitRPS:   1,
		AuthRateLimitBurst: 10,
	}
}

// Load builds the configuration. path names a YAML file; when empty the
// CONFIG_FILE env var is consulted, and when that is empty too no file is read.
// A .env file in the working directory is loaded if present; it never
// overrides variables already set in the environment.
func Load(path string) (*Config, error) {
	// Missing .env is fine
	_ = godotenv.Load()

	cfg := Default()

	if path == "" {
		path = strings.TrimSpace(os.Getenv("CONFIG_FILE"))
	}
	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// IsDevelopment reports whether the server runs in development mode.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development") || strings.EqualFold(c.Env, "dev")
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	// Fields absent from the file keep their defaults
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	var errs []error

	setString(&c.Env, "APP_ENV")
	setString(&c.StaticPath, "STATIC_PATH")
	setString(&c.DBPath, "DB_PATH")
	setString(&c.DatabaseURL, "DATABASE_URL")
	setString(&c.JWTSecret, "JWT_SECRET")
	setString(&c.LogLevel, "LOG_LEVEL")
	setString(&c.LogFormat, "LOG_FORMAT")

	if raw := env("PORT"); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("PORT: %w", err))
		}
		c.Port = port
	}
	if raw := env("TOKEN_DURATION"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("TOKEN_DURATION: %w", err))
		}
		c.TokenDuration = d
	}
	if raw := env("CORS_ORIGINS"); raw != "" {
		c.CORSOrigins = splitList(raw)
	}
	if raw := env("AUTH_RATE_LIMIT_RPS"); raw != "" {
		rps, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("AUTH_RATE_LIMIT_RPS: %w", err))
		}
		c.AuthRateLimitRPS = rps
	}
	if raw := env("AUTH_RATE_LIMIT_BURST"); raw != "" {
		burst, err := strconv.Atoi(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("AUTH_RATE_LIMIT_BURST: %w", err))
		}
		c.AuthRateLimitBurst = burst
	}

	return errors.Join(errs...)
}

func (c *Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.TokenDuration <= 0 {
		return fmt.Errorf("token duration must be positive, got %s", c.TokenDuration)
	}
	if c.DatabaseURL == "" && c.DBPath == "" {
		return errors.New("one of DATABASE_URL or DB_PATH is required")
	}
	if c.JWTSecret == "" {
		if !c.IsDevelopment() {
			return errors.New("JWT_SECRET is required outside development")
		}
		c.JWTSecret = DevJWTSecret
	}
	return nil
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func setString(dst *string, key string) {
	if v := env(key); v != "" {
		*dst = v
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
