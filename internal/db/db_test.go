package db

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) (*DB, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "test.db")
	database, err := Open(path, "test-password")
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return database, path
}

func TestRunMigrations_Idempotent(t *testing.T) {
	database, _ := openTestDB(t)

	require.NoError(t, database.RunMigrations())
	require.NoError(t, database.RunMigrations())

	version, err := database.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, migrations[len(migrations)-1].version, version)

	var n int
	require.NoError(t, database.QueryRow("SELECT COUNT(*) FROM document_slots").Scan(&n))
	assert.Zero(t, n)
}

func TestOpen_WrongPasswordFails(t *testing.T) {
	database, path := openTestDB(t)
	require.NoError(t, database.RunMigrations())
	require.NoError(t, database.Close())

	other, err := Open(path, "a different password")
	if err == nil {
		defer other.Close()
		_, err = other.SchemaVersion()
	}
	assert.Error(t, err)
}

func TestOpen_FileIsEncrypted(t *testing.T) {
	database, path := openTestDB(t)
	require.NoError(t, database.RunMigrations())
	_, err := database.Exec(`INSERT INTO document_slots (name, payload) VALUES ('invoices', '[{"invoiceNumber":"INV-2026-001"}]')`)
	require.NoError(t, err)
	require.NoError(t, database.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotEmpty(t, data)
	assert.False(t, bytes.HasPrefix(data, []byte("SQLite format 3")), "database header is plaintext")
	assert.NotContains(t, string(data), "INV-2026-001")

	reopened, err := Open(path, "test-password")
	require.NoError(t, err)
	defer reopened.Close()
	var payload string
	require.NoError(t, reopened.QueryRow(`SELECT payload FROM document_slots WHERE name = 'invoices'`).Scan(&payload))
	assert.Contains(t, payload, "INV-2026-001")
}

func TestOpen_EmptyPassword(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "x.db"), "")
	assert.Error(t, err)
}
