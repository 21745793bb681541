package repository

import (
	"context"
	"os"
	"path/filepath"

	"github.com/andy/invoicedesk/internal/domain"
	"github.com/cockroachdb/errors"
)

// FileStore keeps the collection as a plain JSON document on disk
type FileStore struct {
	path string
}

// NewFileStore creates a FileStore writing to path
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the document. A missing file is an empty collection.
func (s *FileStore) Load(ctx context.Context) (domain.Collection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return domain.Collection{}, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", s.path)
	}

	return DecodeDocument(data)
}

// Save writes the document to a temp file and renames it over the old one,
// so a crash never leaves a half-written payload.
func (s *FileStore) Save(ctx context.Context, invoices domain.Collection) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := encode(invoices, true)
	if err != nil {
		return err
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return errors.Wrap(err, "failed to create storage directory")
	}

	tmp, err := os.CreateTemp(dir, ".invoices-*.json")
	if err != nil {
		return errors.Wrap(err, "failed to create temp file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "failed to write invoices")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "failed to write invoices")
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return errors.Wrap(err, "failed to replace invoice file")
	}
	return nil
}
