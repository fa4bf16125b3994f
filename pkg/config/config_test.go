package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, StatusModePermissive, cfg.Sessions.StatusMode)
	assert.Equal(t, AdminAttributionFirst, cfg.Sessions.AdminAttribution)
	assert.Equal(t, time.Hour, cfg.JWT.Expiration)
	assert.Equal(t, 10*time.Minute, cfg.Reports.CacheTTL)
	assert.True(t, cfg.Database.AutoMigrate)
	assert.Nil(t, cfg.CORS.AllowedOrigins)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("SESSION_STATUS_MODE", "STRICT")
	t.Setenv("SESSION_ADMIN_ATTRIBUTION", "none")
	t.Setenv("JWT_EXPIRATION", "15m")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, ,http://b.test")
	t.Setenv("LOGIN_RATE_LIMIT", "0.5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, StatusModeStrict, cfg.Sessions.StatusMode)
	assert.Equal(t, AdminAttributionNone, cfg.Sessions.AdminAttribution)
	assert.Equal(t, 15*time.Minute, cfg.JWT.Expiration)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
	assert.InDelta(t, 0.5, cfg.RateLimit.LoginRate, 1e-9)
}

func TestLoadFallsBackOnInvalidValues(t *testing.T) {
	t.Setenv("SESSION_STATUS_MODE", "lenient")
	t.Setenv("REPORT_CACHE_TTL", "soon")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StatusModePermissive, cfg.Sessions.StatusMode)
	assert.Equal(t, 10*time.Minute, cfg.Reports.CacheTTL)
}

func TestLocation(t *testing.T) {
	assert.Equal(t, time.UTC, (&Config{}).Location())
	assert.Equal(t, time.UTC, (&Config{Timezone: "Mars/Olympus"}).Location())

	loc := (&Config{Timezone: "Asia/Jakarta"}).Location()
	assert.Equal(t, "Asia/Jakarta", loc.String())
}
