package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, key := range []string{"DATA_BACKEND", "STATE_BACKEND", "AUTH_MODE", "PORT", "APPLY_POLICY", "RESET_ENABLED", "TRAILING_POINTS", "ALLOWED_ORIGINS"} {
		t.Setenv(key, "")
	}

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, BackendMemory, cfg.DataBackend)
	assert.Equal(t, StateMemory, cfg.StateBackend)
	assert.Equal(t, AuthLocal, cfg.AuthMode)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, PolicyEager, cfg.ApplyPolicy)
	assert.True(t, cfg.ResetEnabled)
	assert.False(t, cfg.StrictDates)
	assert.Equal(t, 12, cfg.TrailingPoints)
	assert.Equal(t, 10000, cfg.MaxSessions)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DATA_BACKEND", "supabase")
	t.Setenv("SUPABASE_URL", "https://example.supabase.co")
	t.Setenv("SUPABASE_KEY", "key")
	t.Setenv("APPLY_POLICY", "confirm")
	t.Setenv("STRICT_DATES", "true")
	t.Setenv("HEALTH_STABLE_PCT", "40")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, BackendSupabase, cfg.DataBackend)
	assert.Equal(t, PolicyConfirm, cfg.ApplyPolicy)
	assert.True(t, cfg.StrictDates)
	assert.Equal(t, 40.0, cfg.HealthStablePct)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.NoError(t, cfg.Validate())
}

func TestValidateCollectsProblems(t *testing.T) {
	cfg := &Config{
		DataBackend:       "mongo",
		StateBackend:      StateSQLite,
		AuthMode:          AuthFirebase,
		ApplyPolicy:       "lazy",
		Port:              "http",
		HealthCriticalPct: 10,
		HealthLowPct:      5,
		HealthStablePct:   30,
		TrailingPoints:    0,
	}
	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{
		"invalid data backend", "STATE_DB_PATH", "FIREBASE_PROJECT_ID", "invalid apply policy",
		"invalid port", "ascending", "trailing points", "max sessions", "rate limit",
	} {
		assert.Contains(t, err.Error(), want)
	}
}
