// Package config handles configuration for the server component:
// defaults, JSON overlay, environment overlay and command-line flags.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/iudanet/shortify/internal/server/jwt"
	"github.com/iudanet/shortify/internal/shortcode"
)

// Поддерживаемые драйверы БД и бэкенды кэша
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	CacheNone  = "none"
	CacheBolt  = "bolt"
	CacheRedis = "redis"
)

const minSecretLen = 32

// Config holds runtime settings for the shortify server.
//
// Fields:
//   - HTTPAddr: bind address for the HTTP API.
//   - DBDriver / DatabaseDSN: storage backend (sqlite file path or PostgreSQL DSN).
//   - JWTSecret: HMAC secret for signing access tokens (HS256), at least 32 bytes.
//   - AccessTokenTTL / RefreshTokenTTL: token lifetimes.
//   - CacheBackend: redirect cache, one of none|bolt|redis.
//   - RateLimit / AuthRateLimit: requests per RateWindow per client IP.
//   - BaseURL: public prefix used to build short URLs.
type Config struct {
	HTTPAddr        string
	DBDriver        string
	DatabaseDSN     string
	JWTIssuer       string
	JWTAudience     string
	JWTSecret       string
	CacheBackend    string
	BoltPath        string
	RedisAddr       string
	LogLevel        string
	BaseURL         string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	CacheTTL        time.Duration
	RateWindow      time.Duration
	ShutdownTimeout time.Duration
	CodeLength      int
	RateLimit       int
	AuthRateLimit   int
	SecureCookies   bool
}

// LoadDefaults populates Config with development defaults.
// JWTSecret is left empty and must be provided explicitly.
func (c *Config) LoadDefaults() {
	c.HTTPAddr = ":8080"
	c.DBDriver = DriverSQLite
	c.DatabaseDSN = "shortify.db"
	c.JWTIssuer = "shortify"
	c.JWTAudience = "shortify-clients"
	c.JWTSecret = ""
	c.AccessTokenTTL = 15 * time.Minute
	c.RefreshTokenTTL = 7 * 24 * time.Hour
	c.CodeLength = 6
	c.CacheBackend = CacheNone
	c.BoltPath = "redirects.db"
	c.RedisAddr = "localhost:6379"
	c.CacheTTL = time.Hour
	c.RateLimit = 100
	c.AuthRateLimit = 10
	c.RateWindow = time.Minute
	c.LogLevel = "info"
	c.BaseURL = "http://localhost:8080"
	c.ShutdownTimeout = 10 * time.Second
	c.SecureCookies = true
}

// Load builds a Config by applying defaults, then overlaying values from an
// optional JSON file (-c/-config), the environment and finally command-line flags.
// args excludes the program name.
func Load(args []string, getenv func(string) string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if path := jsonConfigPath(args); path != "" {
		if err := cfg.applyJSONFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.ApplyEnv(getenv); err != nil {
		return nil, err
	}

	if err := cfg.parseFlags(args); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	var errs []error

	if c.HTTPAddr == "" {
		errs = append(errs, errors.New("http address is required"))
	}
	switch c.DBDriver {
	case DriverSQLite, DriverPostgres:
	default:
		errs = append(errs, fmt.Errorf("unknown database driver %q", c.DBDriver))
	}
	if c.DatabaseDSN == "" {
		errs = append(errs, errors.New("database DSN is required"))
	}
	if len(c.JWTSecret) < minSecretLen {
		errs = append(errs, fmt.Errorf("jwt secret must be at least %d bytes", minSecretLen))
	}
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		errs = append(errs, errors.New("token lifetimes must be positive"))
	}
	if c.CodeLength < 1 || c.CodeLength > shortcode.MaxLength {
		errs = append(errs, fmt.Errorf("code length must be between 1 and %d", shortcode.MaxLength))
	}
	switch c.CacheBackend {
	case CacheNone:
	case CacheBolt:
		if c.BoltPath == "" {
			errs = append(errs, errors.New("bolt cache path is required"))
		}
	case CacheRedis:
		if c.RedisAddr == "" {
			errs = append(errs, errors.New("redis address is required"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown cache backend %q", c.CacheBackend))
	}
	if c.CacheBackend != CacheNone && c.CacheTTL <= 0 {
		errs = append(errs, errors.New("cache ttl must be positive"))
	}
	if c.RateLimit <= 0 || c.AuthRateLimit <= 0 || c.RateWindow <= 0 {
		errs = append(errs, errors.New("rate limits must be positive"))
	}
	if _, err := c.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	if u, err := url.Parse(c.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("invalid base url %q", c.BaseURL))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("shutdown timeout must be positive"))
	}

	return errors.Join(errs...)
}

// JWT returns signing configuration; it is copied by value and not shared
func (c *Config) JWT() jwt.Config {
	return jwt.Config{
		Issuer:     c.JWTIssuer,
		Audience:   c.JWTAudience,
		Secret:     []byte(c.JWTSecret),
		AccessTTL:  c.AccessTokenTTL,
		RefreshTTL: c.RefreshTokenTTL,
	}
}

// SlogLevel parses LogLevel
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToLower(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	return level, nil
}
