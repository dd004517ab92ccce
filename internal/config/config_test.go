package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "secret")
	t.Setenv("DB_PASSWORD", "pw")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, time.Hour, cfg.JWT.AccessExpiration)
	assert.True(t, cfg.Policy.StandardDayHours.Equal(decimal.NewFromInt(8)))
	assert.True(t, cfg.Policy.NominalHalfDay.Equal(decimal.NewFromInt(4)))
	assert.Equal(t, 9*time.Hour+30*time.Minute, cfg.Policy.OnTimeCutoff)
	assert.Equal(t, []time.Weekday{time.Saturday, time.Sunday}, cfg.Policy.WeeklyOffDays)
	assert.Equal(t, 12, cfg.Policy.DefaultAnnualQuota)
	assert.Equal(t, "Asia/Jakarta", cfg.Policy.Location.String())
	assert.False(t, cfg.Mattermost.Enabled())
	assert.Equal(t, "postgres://postgres:pw@localhost:5432/hris_attendance?sslmode=disable", cfg.DatabaseURL())
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "secret")
	t.Setenv("DB_DRIVER", "memory")
	t.Setenv("APP_PORT", "eighty")
	t.Setenv("ON_TIME_CUTOFF", "9am")
	t.Setenv("WEEKLY_OFF_DAYS", "funday")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "APP_PORT")
	assert.Contains(t, err.Error(), "ON_TIME_CUTOFF")
	assert.Contains(t, err.Error(), "WEEKLY_OFF_DAYS")
}

func TestValidate(t *testing.T) {
	t.Setenv("DB_DRIVER", "memory")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET_KEY is required")
}

func TestLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for raw, want := range tests {
		c := &Config{App: AppConfig{LogLevel: raw}}
		assert.Equal(t, want, c.LogLevel(), raw)
	}
}
