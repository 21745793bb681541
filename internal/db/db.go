package db

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	_ "github.com/mutecomm/go-sqlcipher/v4"
)

type DB struct {
	*sql.DB
}

// Open opens an encrypted SQLite database with the given password.
// dbPath is the full path to the database file.
func Open(dbPath, password string) (*DB, error) {
	if password == "" {
		return nil, errors.New("database password cannot be empty")
	}

	// Create parent directories if they don't exist
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, errors.Wrap(err, "failed to create database directory")
	}

	connStr := fmt.Sprintf("%s?_pragma_key=%s", dbPath, url.QueryEscape(password))

	sqlDB, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}

	// Single writer
	sqlDB.SetMaxOpenConns(1)

	if _, err := sqlDB.Exec("PRAGMA journal_mode = WAL"); err != nil {
		sqlDB.Close()
		return nil, errors.Wrap(err, "failed to enable WAL mode")
	}

	// A wrong key only surfaces on the first read of the schema
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, errors.Wrap(err, "failed to ping database")
	}

	return &DB{DB: sqlDB}, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.DB.Close()
}
