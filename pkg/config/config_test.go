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
	assert.Equal(t, 7, cfg.Alerts.DaysToAlert)
	assert.True(t, cfg.Alerts.Enabled)
	assert.Equal(t, 100.0, cfg.Completion.Threshold)
	assert.Equal(t, 14, cfg.Widget.WarningDays)
	assert.Equal(t, 3, cfg.Widget.DangerDays)
	assert.Equal(t, time.Minute, cfg.Widget.CacheTTL)
	assert.Equal(t, "console", cfg.Mail.Provider)
	assert.Equal(t, "*/15 * * * *", cfg.Worker.Cron)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("ALERTS_DAYS_TO_ALERT", "21")
	t.Setenv("ALERTS_EMAIL_SUBJECT", "[[course_name]] ends soon")
	t.Setenv("COMPLETION_THRESHOLD", "80")
	t.Setenv("WIDGET_ACTIVE_UNITS", "3,4,5,6")
	t.Setenv("WIDGET_FORCE_TWO_DIGITS", "true")
	t.Setenv("WIDGET_CACHE_TTL", "30s")
	t.Setenv("MAIL_PROVIDER", "sendgrid")
	t.Setenv("SENDGRID_API_KEY", "SG.test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 21, cfg.Alerts.DaysToAlert)
	assert.Equal(t, "[[course_name]] ends soon", cfg.Alerts.Subject)
	assert.Equal(t, 80.0, cfg.Completion.Threshold)
	assert.Equal(t, "3,4,5,6", cfg.Widget.ActiveUnits)
	assert.True(t, cfg.Widget.ForceTwoDigits)
	assert.Equal(t, 30*time.Second, cfg.Widget.CacheTTL)
	assert.Equal(t, "sendgrid", cfg.Mail.Provider)
	assert.Equal(t, "SG.test", cfg.Mail.SendgridKey)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("ALERTS_DAYS_TO_ALERT", "0")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestLoadRejectsUnknownMailProvider(t *testing.T) {
	t.Setenv("MAIL_PROVIDER", "smoke-signals")

	_, err := Load()
	require.Error(t, err)
}

func TestParseDurationFallback(t *testing.T) {
	assert.Equal(t, time.Minute, parseDuration("", time.Minute))
	assert.Equal(t, time.Minute, parseDuration("broken", time.Minute))
	assert.Equal(t, 5*time.Second, parseDuration("5s", time.Minute))
}
