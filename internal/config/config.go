package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"chronos-stats/internal/calc"
	"chronos-stats/internal/constants"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type Config struct {
	DBPath        string
	ServerPort    string
	LogLevel      string
	TxTimeout     time.Duration
	LegacyEnabled bool
	Rating        calc.Weights

	// used by statsctl when submitting reports to a running service
	APIURL string
	// APIKey is sent as a Bearer token for the reverse proxy in front of the
	// JSON endpoint. The service itself does not check it.
	APIKey string
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		DBPath:     getEnv("DB_PATH", "chronos.db"),
		ServerPort: getEnv("SERVER_PORT", "8080"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		APIURL:     getEnv("STATS_API_URL", "http://localhost:8080"),
		APIKey:     getEnv("STATS_API_KEY", ""),
	}

	var err error
	if cfg.TxTimeout, err = getEnvDuration("TX_TIMEOUT", constants.TransactionTimeout); err != nil {
		return nil, err
	}
	if cfg.LegacyEnabled, err = getEnvBool("LEGACY_ENABLED", true); err != nil {
		return nil, err
	}

	defaults := calc.DefaultWeights()
	if cfg.Rating.Kill, err = getEnvInt("RATING_KILL_POINTS", defaults.Kill); err != nil {
		return nil, err
	}
	if cfg.Rating.Death, err = getEnvInt("RATING_DEATH_POINTS", defaults.Death); err != nil {
		return nil, err
	}
	if cfg.Rating.Headshot, err = getEnvInt("RATING_HEADSHOT_BONUS", defaults.Headshot); err != nil {
		return nil, err
	}
	if cfg.Rating.Teamkill, err = getEnvInt("RATING_TEAMKILL_PENALTY", defaults.Teamkill); err != nil {
		return nil, err
	}

	if cfg.TxTimeout <= 0 {
		return nil, fmt.Errorf("TX_TIMEOUT must be positive, got %s", cfg.TxTimeout)
	}

	logger.Info().
		Str("db_path", cfg.DBPath).
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Dur("tx_timeout", cfg.TxTimeout).
		Bool("legacy_enabled", cfg.LegacyEnabled).
		Int64("rating_kill", cfg.Rating.Kill).
		Int64("rating_death", cfg.Rating.Death).
		Int64("rating_headshot", cfg.Rating.Headshot).
		Int64("rating_teamkill", cfg.Rating.Teamkill).
		Msg("configuration loaded")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return d, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return b, nil
}

var Module = fx.Provide(Load)
