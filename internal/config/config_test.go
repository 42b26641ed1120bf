package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"SESSION_SECRET", "SESSION_MAX_AGE_MINUTES", "SESSION_IDLE_MINUTES", "PORT", "GIN_MODE",
		"CORS_ALLOWED_ORIGINS", "DATABASE_DSN", "REDIS_URL", "NOTIFY_CONCURRENCY",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, "debug", cfg.GinMode)
	assert.Equal(t, DevSessionSecret, cfg.SessionSecret)
	assert.Equal(t, 720, cfg.SessionMaxAgeMin)
	assert.Equal(t, 30, cfg.SessionIdleMinutes)
	assert.Equal(t, 2, cfg.NotifyConcurrency)
	assert.NotEmpty(t, cfg.DatabaseDSN)
}

func TestLoadEmptyPortFallsBackTo8000(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8000", cfg.Port)
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("SESSION_IDLE_MINUTES", "5")
	t.Setenv("SESSION_MAX_AGE_MINUTES", "not-a-number")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 5, cfg.SessionIdleMinutes)
	assert.Equal(t, 720, cfg.SessionMaxAgeMin)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins())
}

func TestReleaseModeRequiresSecret(t *testing.T) {
	clearEnv(t)
	t.Setenv("GIN_MODE", "release")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SESSION_SECRET")
}

func TestReleaseModeRejectsDefaultAndShortSecrets(t *testing.T) {
	cfg := &Config{
		SessionSecret:      DevSessionSecret,
		SessionMaxAgeMin:   10,
		SessionIdleMinutes: 5,
		GinMode:            "release",
		DatabaseDSN:        "dsn",
		RedisURL:           "redis://localhost:6379/0",
	}
	require.Error(t, cfg.Validate())

	cfg.SessionSecret = "short"
	require.Error(t, cfg.Validate())

	cfg.SessionSecret = strings.Repeat("x", 40)
	require.NoError(t, cfg.Validate())
}
