// Package testutil opens throwaway migrated databases for package tests.
package testutil

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"chronos-stats/internal/calc"
	"chronos-stats/internal/config"
	"chronos-stats/internal/database"
	"chronos-stats/internal/db"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// OpenDB returns a migrated sqlite database in a temp dir, closed on cleanup.
// goose keeps global state, so tests using it must not call t.Parallel.
func OpenDB(t testing.TB) (*sql.DB, *db.Queries) {
	t.Helper()

	sqlDB, err := database.Open(filepath.Join(t.TempDir(), "stats.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return sqlDB, db.New(sqlDB)
}

func Config() *config.Config {
	return &config.Config{
		DBPath:        ":memory:",
		ServerPort:    "0",
		LogLevel:      "disabled",
		TxTimeout:     5 * time.Second,
		LegacyEnabled: true,
		Rating:        calc.DefaultWeights(),
	}
}

func CountRows(t testing.TB, sqlDB *sql.DB, table string) int64 {
	t.Helper()

	var n int64
	require.NoError(t, sqlDB.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}
