package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/andy/invoicedesk/internal/db"
	"github.com/andy/invoicedesk/internal/domain"
	"github.com/cenkalti/backoff/v4"
	"github.com/cockroachdb/errors"
	sqlite3 "github.com/mutecomm/go-sqlcipher/v4"
)

// historyLimit is how many replaced payloads are kept per slot
const historyLimit = 20

// SQLiteStore keeps the collection in a named slot of the encrypted database
type SQLiteStore struct {
	db   *db.DB
	slot string
}

// NewSQLiteStore creates a new SQLiteStore for the invoice collection slot
func NewSQLiteStore(database *db.DB) *SQLiteStore {
	return &SQLiteStore{db: database, slot: CollectionSlot}
}

// Load reads and decodes the slot. A missing slot is an empty collection.
func (s *SQLiteStore) Load(ctx context.Context) (domain.Collection, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM document_slots WHERE name = ?`, s.slot,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Collection{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to read invoices")
	}

	return DecodeDocument([]byte(payload))
}

// Save replaces the slot with the encoded collection. The previous payload is
// moved to document_history. Busy errors are retried with backoff.
func (s *SQLiteStore) Save(ctx context.Context, invoices domain.Collection) error {
	data, err := EncodeDocument(invoices)
	if err != nil {
		return err
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = 20 * time.Millisecond
	policy := backoff.WithContext(backoff.WithMaxRetries(exp, 5), ctx)

	return backoff.Retry(func() error {
		err := s.write(ctx, string(data))
		if err != nil && !isBusy(err) {
			return backoff.Permanent(err)
		}
		return err
	}, policy)
}

func (s *SQLiteStore) write(ctx context.Context, payload string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO document_history (name, payload, replaced_at)
		SELECT name, payload, ? FROM document_slots WHERE name = ?
	`, formatTime(), s.slot)
	if err != nil {
		return errors.Wrap(err, "failed to archive previous invoices")
	}

	_, err = tx.ExecContext(ctx, `
		DELETE FROM document_history
		WHERE name = ? AND id NOT IN (
			SELECT id FROM document_history WHERE name = ? ORDER BY id DESC LIMIT ?
		)
	`, s.slot, s.slot, historyLimit)
	if err != nil {
		return errors.Wrap(err, "failed to prune invoice history")
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO document_slots (name, payload, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at
	`, s.slot, payload, formatTime())
	if err != nil {
		return errors.Wrap(err, "failed to save invoices")
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit invoices")
	}
	return nil
}

func isBusy(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked
}
