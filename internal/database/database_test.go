package database

import (
	"path/filepath"
	"testing"

	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_MigratesAndIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.db")

	db, err := Open(path, zerolog.Nop())
	require.NoError(t, err)

	version, err := goose.GetDBVersion(db)
	require.NoError(t, err)
	assert.Equal(t, int64(2), version)

	var tables int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table'
		AND name IN ('players', 'servers', 'weapons', 'maps', 'map_players', 'ranks')`).Scan(&tables))
	assert.Equal(t, 6, tables)
	require.NoError(t, db.Close())

	db, err = Open(path, zerolog.Nop())
	require.NoError(t, err)
	defer db.Close()

	var journal string
	require.NoError(t, db.QueryRow("PRAGMA journal_mode").Scan(&journal))
	assert.Equal(t, "wal", journal)

	var fk int
	require.NoError(t, db.QueryRow("PRAGMA foreign_keys").Scan(&fk))
	assert.Equal(t, 1, fk)
}

func TestDSN(t *testing.T) {
	got := dsn("/tmp/stats.db")
	assert.Contains(t, got, "file:/tmp/stats.db?")
	assert.Contains(t, got, "_txlock=immediate")
	assert.Contains(t, got, "_busy_timeout=5000")
	assert.Contains(t, got, "_foreign_keys=on")
}
