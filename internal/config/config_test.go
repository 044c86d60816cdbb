package config

import (
	"testing"
	"time"

	"chronos-stats/internal/calc"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"DB_PATH", "SERVER_PORT", "LOG_LEVEL", "STATS_API_URL", "STATS_API_KEY", "TX_TIMEOUT", "LEGACY_ENABLED",
		"RATING_KILL_POINTS", "RATING_DEATH_POINTS", "RATING_HEADSHOT_BONUS", "RATING_TEAMKILL_PENALTY",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, "chronos.db", cfg.DBPath)
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, 5*time.Second, cfg.TxTimeout)
	assert.True(t, cfg.LegacyEnabled)
	assert.Equal(t, calc.DefaultWeights(), cfg.Rating)
	assert.Equal(t, "http://localhost:8080", cfg.APIURL)
	assert.Empty(t, cfg.APIKey)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_PATH", "/var/lib/stats/stats.db")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("TX_TIMEOUT", "750ms")
	t.Setenv("LEGACY_ENABLED", "false")
	t.Setenv("RATING_KILL_POINTS", "3")
	t.Setenv("RATING_DEATH_POINTS", "-2")
	t.Setenv("RATING_HEADSHOT_BONUS", "1")
	t.Setenv("RATING_TEAMKILL_PENALTY", "-10")

	cfg, err := Load(zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/stats/stats.db", cfg.DBPath)
	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, 750*time.Millisecond, cfg.TxTimeout)
	assert.False(t, cfg.LegacyEnabled)
	assert.Equal(t, calc.Weights{Kill: 3, Death: -2, Headshot: 1, Teamkill: -10}, cfg.Rating)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{key: "TX_TIMEOUT", value: "soon"},
		{key: "TX_TIMEOUT", value: "-1s"},
		{key: "LEGACY_ENABLED", value: "maybe"},
		{key: "RATING_KILL_POINTS", value: "one"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load(zerolog.Nop())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}
