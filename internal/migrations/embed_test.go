package migrations

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func openMemory(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file::memory:?_pragma=foreign_keys(1)")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestApply(t *testing.T) {
	db := openMemory(t)

	version, err := Apply(db)
	require.NoError(t, err)
	assert.Equal(t, uint(2), version)

	for _, table := range []string{"series", "series_aliases", "episodes", "remote_index", "episode_events"} {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&name)
		require.NoError(t, err, "table %s", table)
	}
}

func TestApply_Idempotent(t *testing.T) {
	db := openMemory(t)

	_, err := Apply(db)
	require.NoError(t, err)

	version, err := Apply(db)
	require.NoError(t, err)
	assert.Equal(t, uint(2), version)
}
