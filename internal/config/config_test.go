package config

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"DATABASE_URL", "DATABASE_DRIVER", "SERVER_ENV", "JWT_SECRET",
		"GOOGLE_CLIENT_ID", "GOOGLE_CLIENT_SECRET", "GOOGLE_REDIRECT_URL",
		"TOKEN_ENCRYPTION_KEY", "SERVER_PORT", "SCHEDULER_ENABLED",
	} {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFileWithDefaults(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
server:
  port: 8080
database:
  driver: sqlite
  url: file:dealflow.db
jwt:
  secret: file-secret
scheduler:
  enabled: true
  interval: 30m
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "development", cfg.Server.Env)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.True(t, cfg.Scheduler.Enabled)
	assert.Equal(t, 30*time.Minute, cfg.Scheduler.Interval)
	assert.Equal(t, 500*time.Millisecond, cfg.Scheduler.PairDelay)
	assert.Equal(t, 30*time.Minute, cfg.Scheduler.MeetingDuration)
	assert.Equal(t, 24*time.Hour, cfg.Matching.CacheTTL)
	assert.Equal(t, "primary", cfg.Calendar.DefaultCalendarID)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.Len(t, cfg.Google.Scopes, 2)
	assert.False(t, cfg.GoogleEnabled())
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
database:
  url: postgres://file
jwt:
  secret: file-secret
`)
	t.Setenv("DATABASE_URL", "postgres://env")
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("SCHEDULER_ENABLED", "false")
	t.Setenv("GOOGLE_CLIENT_ID", "client")
	t.Setenv("GOOGLE_CLIENT_SECRET", "secret")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres://env", cfg.Database.DSN)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "env-secret", cfg.JWT.Secret)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.False(t, cfg.Scheduler.Enabled)
	assert.True(t, cfg.GoogleEnabled())
}

func TestLoadWithoutFileNeedsDatabaseURL(t *testing.T) {
	clearEnv(t)
	missing := filepath.Join(t.TempDir(), "absent.yaml")

	_, err := Load(missing)
	assert.Error(t, err)

	t.Setenv("DATABASE_URL", "postgres://env")
	t.Setenv("JWT_SECRET", "env-secret")
	cfg, err := Load(missing)
	require.NoError(t, err)
	assert.Equal(t, 4000, cfg.Server.Port)
}

func TestValidate(t *testing.T) {
	clearEnv(t)

	base := func() *Config {
		var c Config
		c.Database.DSN = "postgres://x"
		c.Database.Driver = "postgres"
		c.JWT.Secret = "s"
		return &c
	}

	assert.NoError(t, base().Validate())

	c := base()
	c.Database.Driver = "mysql"
	assert.Error(t, c.Validate())

	c = base()
	c.JWT.Secret = ""
	assert.Error(t, c.Validate())

	c = base()
	c.Security.TokenEncryptionKey = base64.StdEncoding.EncodeToString([]byte("short"))
	assert.Error(t, c.Validate())

	c = base()
	c.Security.TokenEncryptionKey = base64.StdEncoding.EncodeToString(make([]byte, 32))
	require.NoError(t, c.Validate())
	key, err := c.TokenKey()
	require.NoError(t, err)
	assert.Len(t, key, 32)
}
