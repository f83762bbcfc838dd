package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// RedisConfig is shared by the api and the portal.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

// APIConfig holds configuration of the admissions backend loaded from environment variables.
type APIConfig struct {
	ServerPort      string        `env:"SERVER_PORT" envDefault:"8080"`
	MySQLDSN        string        `env:"MYSQL_DSN" envDefault:"user:password@tcp(localhost:3306)/admissions?charset=utf8mb4&parseTime=True&loc=Local"`
	JWTSecret       string        `env:"JWT_SECRET" envDefault:"change-me"`
	AccessTokenTTL  time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"8h"`
	SwaggerHost     string        `env:"SWAGGER_HOST"`
	ResetDB         bool          `env:"RESET_DB" envDefault:"false"`
	ProgramCacheTTL time.Duration `env:"PROGRAM_CACHE_TTL" envDefault:"5m"`

	Redis RedisConfig
	Log   LogConfig
}

// PortalConfig holds configuration of the portal web client.
type PortalConfig struct {
	Port           string        `env:"PORTAL_PORT" envDefault:"3000"`
	BackendURL     string        `env:"BACKEND_URL" envDefault:"http://localhost:8080/api"`
	BackendTimeout time.Duration `env:"BACKEND_TIMEOUT" envDefault:"10s"`
	BackendRetries int           `env:"BACKEND_RETRIES" envDefault:"2"`

	CookieSecure       bool          `env:"SESSION_COOKIE_SECURE" envDefault:"false"`
	SessionMaxAge      time.Duration `env:"SESSION_MAX_AGE" envDefault:"24h"`
	SessionCacheTTL    time.Duration `env:"SESSION_CACHE_TTL" envDefault:"1m"`
	SessionLoadTimeout time.Duration `env:"SESSION_LOAD_TIMEOUT" envDefault:"2s"`

	// FilterExclude lists path prefixes the edge filter never inspects.
	FilterExclude []string `env:"FILTER_EXCLUDE" envDefault:"/api,/static,/_image,/favicon.ico,/healthz" envSeparator:","`

	Redis RedisConfig
	Log   LogConfig
}

// LoadAPI builds APIConfig from the environment and an optional .env file.
func LoadAPI() (*APIConfig, error) {
	loadDotEnv()
	var cfg APIConfig
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse api config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadPortal builds PortalConfig from the environment and an optional .env file.
func LoadPortal() (*PortalConfig, error) {
	loadDotEnv()
	var cfg PortalConfig
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse portal config: %w", err)
	}
	cfg.Sanitize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the values env parsing cannot.
func (c *APIConfig) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET must not be empty")
	}
	if c.AccessTokenTTL <= 0 {
		return errors.New("ACCESS_TOKEN_TTL must be positive")
	}
	if c.ProgramCacheTTL < 0 {
		return errors.New("PROGRAM_CACHE_TTL must not be negative")
	}
	return nil
}

// Sanitize trims exclusion prefixes and drops empty ones.
func (c *PortalConfig) Sanitize() {
	out := c.FilterExclude[:0]
	for _, p := range c.FilterExclude {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !strings.HasPrefix(p, "/") {
			p = "/" + p
		}
		out = append(out, p)
	}
	c.FilterExclude = out
	c.BackendURL = strings.TrimRight(c.BackendURL, "/")
}

// Validate checks the values env parsing cannot.
func (c *PortalConfig) Validate() error {
	u, err := url.Parse(c.BackendURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("BACKEND_URL must be an absolute URL, got %q", c.BackendURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("BACKEND_URL scheme must be http or https, got %q", u.Scheme)
	}
	if c.BackendTimeout <= 0 {
		return errors.New("BACKEND_TIMEOUT must be positive")
	}
	if c.BackendRetries < 0 {
		return errors.New("BACKEND_RETRIES must not be negative")
	}
	if c.SessionMaxAge <= 0 {
		return errors.New("SESSION_MAX_AGE must be positive")
	}
	if c.SessionLoadTimeout <= 0 {
		return errors.New("SESSION_LOAD_TIMEOUT must be positive")
	}
	if c.SessionCacheTTL < 0 {
		return errors.New("SESSION_CACHE_TTL must not be negative")
	}
	return nil
}

// loadDotEnv reads .env if present. Real environment variables win.
func loadDotEnv() {
	_ = godotenv.Load()
}
