package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyEnv(t *testing.T) {
	var c Config
	c.LoadDefaults()

	err := c.ApplyEnv(envOf(map[string]string{
		"SHORTIFY_ADDR":            "127.0.0.1:9000",
		"SHORTIFY_DB_DRIVER":       "postgres",
		"SHORTIFY_DATABASE_DSN":    "postgres://db/shortify",
		"SHORTIFY_JWT_SECRET":      testSecret,
		"SHORTIFY_ACCESS_TTL":      "5m",
		"SHORTIFY_CODE_LENGTH":     "8",
		"SHORTIFY_CACHE":           "redis",
		"SHORTIFY_REDIS_ADDR":      "redis://cache:6379/1",
		"SHORTIFY_SECURE_COOKIES":  "false",
		"SHORTIFY_AUTH_RATE_LIMIT": "3",
	}))
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", c.HTTPAddr)
	assert.Equal(t, DriverPostgres, c.DBDriver)
	assert.Equal(t, "postgres://db/shortify", c.DatabaseDSN)
	assert.Equal(t, testSecret, c.JWTSecret)
	assert.Equal(t, 5*time.Minute, c.AccessTokenTTL)
	assert.Equal(t, 8, c.CodeLength)
	assert.Equal(t, CacheRedis, c.CacheBackend)
	assert.Equal(t, "redis://cache:6379/1", c.RedisAddr)
	assert.False(t, c.SecureCookies)
	assert.Equal(t, 3, c.AuthRateLimit)

	// не заданные переменные не трогают значения
	assert.Equal(t, 7*24*time.Hour, c.RefreshTokenTTL)
	assert.Equal(t, "info", c.LogLevel)
}

func TestApplyEnv_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "duration", env: map[string]string{"SHORTIFY_ACCESS_TTL": "fifteen"}},
		{name: "int", env: map[string]string{"SHORTIFY_CODE_LENGTH": "six"}},
		{name: "bool", env: map[string]string{"SHORTIFY_SECURE_COOKIES": "maybe"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Config
			c.LoadDefaults()
			assert.Error(t, c.ApplyEnv(envOf(tt.env)))
		})
	}
}
