package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("requires the supabase secret", func(t *testing.T) {
		t.Setenv("SUPABASE_JWT_SECRET", "")
		_, err := Load()
		require.Error(t, err)
	})

	t.Run("applies defaults", func(t *testing.T) {
		t.Setenv("SUPABASE_JWT_SECRET", "secret")
		t.Setenv("ADMIN_JWT_SECRET", "")
		t.Setenv("ALLOWED_ORIGINS", "http://a.test, http://b.test ,")

		cfg, err := Load()
		require.NoError(t, err)
		require.Equal(t, "secret", cfg.AdminJWTSecret)
		require.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
		require.Equal(t, 2*time.Second, cfg.RoleCheckTimeout)
		require.Equal(t, 7*24*time.Hour, cfg.PinDuration)
		require.Equal(t, "UTC", cfg.DailyResetLocation.String())
	})

	t.Run("rejects bad durations", func(t *testing.T) {
		t.Setenv("SUPABASE_JWT_SECRET", "secret")
		t.Setenv("LEDGER_TIMEOUT", "soon")
		_, err := Load()
		require.ErrorContains(t, err, "LEDGER_TIMEOUT")
	})

	t.Run("rejects unknown timezones", func(t *testing.T) {
		t.Setenv("SUPABASE_JWT_SECRET", "secret")
		t.Setenv("DAILY_RESET_TIMEZONE", "Mars/Olympus")
		_, err := Load()
		require.ErrorContains(t, err, "DAILY_RESET_TIMEZONE")
	})
}
