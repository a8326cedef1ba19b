package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := LoadWithPath("no-such-file.env")
	require.NoError(t, err)

	assert.Equal(t, "go-api-template", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, "/api/v1", cfg.App.APIPrefix)
	assert.Equal(t, "info", cfg.App.LogLevel)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, 15*time.Minute, cfg.JWT.AccessTokenTTL)
	assert.Equal(t, 168*time.Hour, cfg.JWT.RefreshTokenTTL)
	assert.Equal(t, 10, cfg.JWT.BcryptCost)
	assert.Equal(t, 15*time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, 100, cfg.RateLimit.MaxRequests)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "8080")
	t.Setenv("JWT_ACCESS_TOKEN_TTL", "5m")
	t.Setenv("DATABASE_DBNAME", "other_db")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadWithPath("no-such-file.env")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 5*time.Minute, cfg.JWT.AccessTokenTTL)
	assert.Equal(t, "other_db", cfg.Database.DBName)
	assert.Equal(t, "debug", cfg.App.LogLevel)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		cfg, err := LoadWithPath("no-such-file.env")
		require.NoError(t, err)
		return cfg
	}

	t.Run("default secret allowed in development", func(t *testing.T) {
		cfg := valid()
		assert.NoError(t, cfg.Validate())
	})

	t.Run("default secret rejected in production", func(t *testing.T) {
		cfg := valid()
		cfg.App.Environment = "production"
		assert.Error(t, cfg.Validate())
	})

	t.Run("empty secret rejected", func(t *testing.T) {
		cfg := valid()
		cfg.JWT.Secret = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("low bcrypt cost rejected", func(t *testing.T) {
		cfg := valid()
		cfg.JWT.BcryptCost = 4
		assert.Error(t, cfg.Validate())
	})

	t.Run("bad port rejected", func(t *testing.T) {
		cfg := valid()
		cfg.Server.Port = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("prefix must be rooted", func(t *testing.T) {
		cfg := valid()
		cfg.App.APIPrefix = "api/v1"
		assert.Error(t, cfg.Validate())
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg, err := LoadWithPath("no-such-file.env")
	require.NoError(t, err)

	dsn := cfg.Database.DSN()
	assert.Contains(t, dsn, "host=localhost")
	assert.Contains(t, dsn, "dbname=api_template")
	assert.Contains(t, dsn, "sslmode=disable")
}
