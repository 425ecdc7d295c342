package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, 5*time.Minute, cfg.Dashboard.CacheTTL)
	assert.Equal(t, 5, cfg.Dashboard.AnnouncementLimit)
	assert.True(t, cfg.Auth.RequireEmailVerification)
	assert.Equal(t, "log", cfg.Mail.Provider)
	assert.Empty(t, cfg.Events.NATSURL)
}

func TestLoadReadsEnvironment(t *testing.T) {
	chdirTemp(t)
	t.Setenv("ENV", EnvProduction)
	t.Setenv("JWT_EXPIRATION", "15m")
	t.Setenv("ALLOWED_ORIGINS", "https://portal.school.ke, https://admin.school.ke ,")
	t.Setenv("MAIL_PROVIDER", "SendGrid")
	t.Setenv("DASHBOARD_CACHE_TTL", "not-a-duration")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvProduction, cfg.Env)
	assert.Equal(t, 15*time.Minute, cfg.JWT.Expiration)
	assert.Equal(t, []string{"https://portal.school.ke", "https://admin.school.ke"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, "sendgrid", cfg.Mail.Provider)
	assert.Equal(t, 5*time.Minute, cfg.Dashboard.CacheTTL)
}

func chdirTemp(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
