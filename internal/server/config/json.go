package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

// Duration accepts both "15m" strings and integer nanoseconds in JSON
type Duration struct {
	time.Duration
}

// UnmarshalJSON implements json.Unmarshaler
func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value)
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		d.Duration = parsed
	default:
		return fmt.Errorf("invalid duration %s", string(b))
	}
	return nil
}

// JSONConfig is the on-disk shape of the configuration file.
// Only fields present in the file override current values.
type JSONConfig struct {
	HTTPAddr        *string   `json:"http_addr"`
	DBDriver        *string   `json:"db_driver"`
	DatabaseDSN     *string   `json:"database_dsn"`
	JWTIssuer       *string   `json:"jwt_issuer"`
	JWTAudience     *string   `json:"jwt_audience"`
	JWTSecret       *string   `json:"jwt_secret"`
	CacheBackend    *string   `json:"cache_backend"`
	BoltPath        *string   `json:"bolt_path"`
	RedisAddr       *string   `json:"redis_addr"`
	LogLevel        *string   `json:"log_level"`
	BaseURL         *string   `json:"base_url"`
	AccessTokenTTL  *Duration `json:"access_token_ttl"`
	RefreshTokenTTL *Duration `json:"refresh_token_ttl"`
	CacheTTL        *Duration `json:"cache_ttl"`
	RateWindow      *Duration `json:"rate_window"`
	ShutdownTimeout *Duration `json:"shutdown_timeout"`
	CodeLength      *int      `json:"code_length"`
	RateLimit       *int      `json:"rate_limit"`
	AuthRateLimit   *int      `json:"auth_rate_limit"`
	SecureCookies   *bool     `json:"secure_cookies"`
}

func (c *Config) applyJSONFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var jc JSONConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	jc.apply(c)
	return nil
}

func (jc *JSONConfig) apply(c *Config) {
	setString(&c.HTTPAddr, jc.HTTPAddr)
	setString(&c.DBDriver, jc.DBDriver)
	setString(&c.DatabaseDSN, jc.DatabaseDSN)
	setString(&c.JWTIssuer, jc.JWTIssuer)
	setString(&c.JWTAudience, jc.JWTAudience)
	setString(&c.JWTSecret, jc.JWTSecret)
	setString(&c.CacheBackend, jc.CacheBackend)
	setString(&c.BoltPath, jc.BoltPath)
	setString(&c.RedisAddr, jc.RedisAddr)
	setString(&c.LogLevel, jc.LogLevel)
	setString(&c.BaseURL, jc.BaseURL)
	setDuration(&c.AccessTokenTTL, jc.AccessTokenTTL)
	setDuration(&c.RefreshTokenTTL, jc.RefreshTokenTTL)
	setDuration(&c.CacheTTL, jc.CacheTTL)
	setDuration(&c.RateWindow, jc.RateWindow)
	setDuration(&c.ShutdownTimeout, jc.ShutdownTimeout)
	if jc.CodeLength != nil {
		c.CodeLength = *jc.CodeLength
	}
	if jc.RateLimit != nil {
		c.RateLimit = *jc.RateLimit
	}
	if jc.AuthRateLimit != nil {
		c.AuthRateLimit = *jc.AuthRateLimit
	}
	if jc.SecureCookies != nil {
		c.SecureCookies = *jc.SecureCookies
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v *Duration) {
	if v != nil {
		*dst = v.Duration
	}
}

// jsonConfigPath extracts the config file path given via -c or -config.
// Other arguments are ignored.
func jsonConfigPath(args []string) string {
	var path string
	for i := 0; i < len(args); i++ {
		name, value, hasValue := strings.Cut(strings.TrimLeft(args[i], "-"), "=")
		if !strings.HasPrefix(args[i], "-") || (name != "c" && name != "config") {
			continue
		}
		if hasValue {
			path = value
			continue
		}
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			path = args[i+1]
			i++
		}
	}
	return path
}
