package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("ENV", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("VAPID_PUBLIC_KEY", "")
	t.Setenv("VAPID_PRIVATE_KEY", "")
	t.Setenv("REALTIME_SOURCE", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.AppEnv)
	assert.Equal(t, defaultDatabaseURL, cfg.DatabaseURL)
	assert.Equal(t, RealtimeInProcess, cfg.RealtimeSource)
	assert.Equal(t, time.Hour, cfg.SweepInterval)
	assert.Equal(t, "UTC", cfg.BookingLocation.String())
	assert.False(t, cfg.WebPushEnabled())
}

func TestLoad_VAPIDKeysMustComeTogether(t *testing.T) {
	t.Setenv("VAPID_PUBLIC_KEY", "pub")
	t.Setenv("VAPID_PRIVATE_KEY", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "VAPID_PUBLIC_KEY")
}

func TestLoad_VAPIDSubjectRequired(t *testing.T) {
	t.Setenv("VAPID_PUBLIC_KEY", "pub")
	t.Setenv("VAPID_PRIVATE_KEY", "priv")
	t.Setenv("VAPID_SUBJECT", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "VAPID_SUBJECT")
}

func TestLoad_ProdRequiresSecrets(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("SERVICE_ROLE_KEY", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoad_PostgresRealtimeNeedsPostgres(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	t.Setenv("DATABASE_URL", "local.db")
	t.Setenv("REALTIME_SOURCE", "postgres")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REALTIME_SOURCE")
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("SWEEP_INTERVAL", "soon")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SWEEP_INTERVAL")
}

func TestLoad_CORSOrigins(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://app.turfbook.in , ,https://admin.turfbook.in")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://app.turfbook.in", "https://admin.turfbook.in"}, cfg.CORSAllowedOrigins)
}
