package cache

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func openSQLite(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func prepare(t *testing.T, db *sql.DB, query string) *sql.Stmt {
	t.Helper()
	stmt, err := db.Prepare(query)
	require.NoError(t, err)
	return stmt
}

func TestStmtCache_ClosesEvictedStatements(t *testing.T) {
	db := openSQLite(t)
	c := NewStmtCache(1)

	first, release := c.Add("SELECT 1", prepare(t, db, "SELECT 1"))
	release()
	second, release := c.Add("SELECT 2", prepare(t, db, "SELECT 2"))
	defer release()

	var n int
	assert.Error(t, first.QueryRow().Scan(&n), "evicted statement should be closed")
	require.NoError(t, second.QueryRow().Scan(&n))
	assert.Equal(t, 2, n)
	assert.Equal(t, uint64(1), c.Stats().Evictions)
}

func TestStmtCache_PinnedSurvivesEviction(t *testing.T) {
	db := openSQLite(t)
	c := NewStmtCache(1)

	_, release := c.Add("SELECT 1", prepare(t, db, "SELECT 1"))
	release()

	stmt, release, ok := c.Acquire("SELECT 1")
	require.True(t, ok)
	assert.Equal(t, 1, c.Pinned("SELECT 1"))

	_, releaseOther := c.Add("SELECT 2", prepare(t, db, "SELECT 2"))
	defer releaseOther()

	_, _, ok = c.Acquire("SELECT 1")
	assert.False(t, ok, "statement should be evicted")

	var n int
	require.NoError(t, stmt.QueryRow().Scan(&n), "pinned statement must stay open")
	assert.Equal(t, 1, n)

	release()
	release() // releasing twice is harmless
	assert.Error(t, stmt.QueryRow().Scan(&n), "statement should close on last release")
}

func TestStmtCache_AddKeepsExisting(t *testing.T) {
	db := openSQLite(t)
	c := NewStmtCache(4)

	cached, release := c.Add("SELECT 1", prepare(t, db, "SELECT 1"))
	defer release()

	duplicate := prepare(t, db, "SELECT 1")
	got, releaseDup := c.Add("SELECT 1", duplicate)
	defer releaseDup()

	assert.Same(t, cached, got)
	assert.Equal(t, 2, c.Pinned("SELECT 1"))
	assert.Equal(t, 1, c.Len())

	var n int
	assert.Error(t, duplicate.QueryRow().Scan(&n), "losing duplicate should be closed")
}

func TestStmtCache_ClearWaitsForPins(t *testing.T) {
	db := openSQLite(t)
	c := NewStmtCache(4)

	stmt, release := c.Add("SELECT 1", prepare(t, db, "SELECT 1"))
	c.Clear()
	assert.Equal(t, 0, c.Len())

	var n int
	require.NoError(t, stmt.QueryRow().Scan(&n))
	release()
	assert.Error(t, stmt.QueryRow().Scan(&n))
}
