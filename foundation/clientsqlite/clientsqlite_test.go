package clientsqlite

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *ClientSqlite {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "nvfans.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrationIsRepeatable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nvfans.db")
	for i := 0; i < 2; i++ {
		db, err := New(path)
		require.NoError(t, err)
		require.NoError(t, db.Close())
	}
}

func TestVersion(t *testing.T) {
	version, err := newTestDB(t).Version()
	require.NoError(t, err)
	assert.NotEmpty(t, version)
}

func TestCreateAndQuery(t *testing.T) {
	db := newTestDB(t)
	const insert = `
		INSERT INTO decisionlog
			(ExecutionIdentifier, Hostname, Timestamp, TemperatureC, RuleName, Command, Status, Wrote)
		VALUES
			(?, ?, ?, ?, ?, ?, ?, ?)`
	require.NoError(t, db.Create(insert, "exec-1", "x1", 100, 82, "level 7", "level 7", "set", true))
	require.NoError(t, db.Create(insert, "exec-1", "x1", 160, nil, nil, "full-speed", "invalid", true))

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM decisionlog WHERE ExecutionIdentifier = ?", []any{"exec-1"}, &count))
	assert.Equal(t, 2, count)

	var commands []string
	err := db.Query("SELECT Command FROM decisionlog ORDER BY Timestamp", nil, func(rows *sql.Rows) error {
		var command string
		if err := rows.Scan(&command); err != nil {
			return err
		}
		commands = append(commands, command)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"level 7", "full-speed"}, commands)

	require.NoError(t, db.ExecuteQuery("DELETE FROM decisionlog WHERE Timestamp < ?", []any{150}))
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM decisionlog", nil, &count))
	assert.Equal(t, 1, count)
}
