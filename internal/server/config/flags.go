package config

import (
	"flag"
	"fmt"
	"io"
)

// parseFlags overlays Config fields from command-line flags.
//
// Supported flags:
//
//	-a string              HTTP bind address (e.g. ":8080")
//	-driver string         database driver: sqlite|postgres
//	-d string              database DSN (sqlite file path or PostgreSQL DSN)
//	-s string              JWT HMAC secret
//	-issuer, -audience     JWT issuer and audience
//	-access-ttl duration   access token lifetime
//	-refresh-ttl duration  refresh token lifetime
//	-code-length int       default short code length
//	-cache string          redirect cache: none|bolt|redis
//	-bolt-path string      bbolt cache file
//	-redis string          redis address or redis:// URL
//	-cache-ttl duration    redirect cache entry lifetime
//	-rate int              requests per window per client
//	-auth-rate int         login/register requests per window per client
//	-rate-window duration  rate limit window
//	-log-level string      debug|info|warn|error
//	-base-url string       public prefix for short URLs
//	-shutdown-timeout      graceful shutdown timeout
//	-secure-cookies        set Secure on the refresh token cookie
//	-c, -config string     JSON config file (applied before env and flags)
func (c *Config) parseFlags(args []string) error {
	fs := flag.NewFlagSet("shortify", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&c.HTTPAddr, "a", c.HTTPAddr, "address and port to run server")
	fs.StringVar(&c.DBDriver, "driver", c.DBDriver, "database driver (sqlite|postgres)")
	fs.StringVar(&c.DatabaseDSN, "d", c.DatabaseDSN, "database DSN")
	fs.StringVar(&c.JWTSecret, "s", c.JWTSecret, "JWT secret key")
	fs.StringVar(&c.JWTIssuer, "issuer", c.JWTIssuer, "JWT issuer")
	fs.StringVar(&c.JWTAudience, "audience", c.JWTAudience, "JWT audience")
	fs.DurationVar(&c.AccessTokenTTL, "access-ttl", c.AccessTokenTTL, "access token lifetime")
	fs.DurationVar(&c.RefreshTokenTTL, "refresh-ttl", c.RefreshTokenTTL, "refresh token lifetime")
	fs.IntVar(&c.CodeLength, "code-length", c.CodeLength, "default short code length")
	fs.StringVar(&c.CacheBackend, "cache", c.CacheBackend, "redirect cache (none|bolt|redis)")
	fs.StringVar(&c.BoltPath, "bolt-path", c.BoltPath, "bbolt cache file")
	fs.StringVar(&c.RedisAddr, "redis", c.RedisAddr, "redis address")
	fs.DurationVar(&c.CacheTTL, "cache-ttl", c.CacheTTL, "redirect cache entry lifetime")
	fs.IntVar(&c.RateLimit, "rate", c.RateLimit, "requests per window per client")
	fs.IntVar(&c.AuthRateLimit, "auth-rate", c.AuthRateLimit, "login/register requests per window per client")
	fs.DurationVar(&c.RateWindow, "rate-window", c.RateWindow, "rate limit window")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level")
	fs.StringVar(&c.BaseURL, "base-url", c.BaseURL, "public prefix for short URLs")
	fs.DurationVar(&c.ShutdownTimeout, "shutdown-timeout", c.ShutdownTimeout, "graceful shutdown timeout")
	fs.BoolVar(&c.SecureCookies, "secure-cookies", c.SecureCookies, "set Secure attribute on refresh cookie")

	// уже применен в applyJSONFile
	var configPath string
	fs.StringVar(&configPath, "config", "", "path to JSON config file")
	fs.StringVar(&configPath, "c", "", "path to JSON config file (short)")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	return nil
}
