package config

import (
	"fmt"
	"strconv"
	"time"
)

// EnvPrefix префикс переменных окружения
const EnvPrefix = "SHORTIFY_"

// ApplyEnv overlays values from SHORTIFY_* environment variables.
// Empty variables are ignored.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	strs := map[string]*string{
		"ADDR":         &c.HTTPAddr,
		"DB_DRIVER":    &c.DBDriver,
		"DATABASE_DSN": &c.DatabaseDSN,
		"JWT_ISSUER":   &c.JWTIssuer,
		"JWT_AUDIENCE": &c.JWTAudience,
		"JWT_SECRET":   &c.JWTSecret,
		"CACHE":        &c.CacheBackend,
		"BOLT_PATH":    &c.BoltPath,
		"REDIS_ADDR":   &c.RedisAddr,
		"LOG_LEVEL":    &c.LogLevel,
		"BASE_URL":     &c.BaseURL,
	}
	for name, dst := range strs {
		if v := getenv(EnvPrefix + name); v != "" {
			*dst = v
		}
	}

	durations := map[string]*time.Duration{
		"ACCESS_TTL":       &c.AccessTokenTTL,
		"REFRESH_TTL":      &c.RefreshTokenTTL,
		"CACHE_TTL":        &c.CacheTTL,
		"RATE_WINDOW":      &c.RateWindow,
		"SHUTDOWN_TIMEOUT": &c.ShutdownTimeout,
	}
	for name, dst := range durations {
		v := getenv(EnvPrefix + name)
		if v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
		}
		*dst = d
	}

	ints := map[string]*int{
		"CODE_LENGTH":     &c.CodeLength,
		"RATE_LIMIT":      &c.RateLimit,
		"AUTH_RATE_LIMIT": &c.AuthRateLimit,
	}
	for name, dst := range ints {
		v := getenv(EnvPrefix + name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
		}
		*dst = n
	}

	if v := getenv(EnvPrefix + "SECURE_COOKIES"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sSECURE_COOKIES: %w", EnvPrefix, err)
		}
		c.SecureCookies = b
	}

	return nil
}
