package repository

import (
	"context"
	"sync"

	"github.com/andy/invoicedesk/internal/domain"
)

// MemoryStore keeps the collection in memory. It backs the ephemeral driver
// and doubles as a test fake: set LoadErr or SaveErr to inject failures.
type MemoryStore struct {
	mu      sync.Mutex
	payload []byte

	LoadErr error
	SaveErr error
	Saves   int
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// NewMemoryStoreWithPayload seeds the store with raw stored bytes
func NewMemoryStoreWithPayload(payload []byte) *MemoryStore {
	return &MemoryStore{payload: append([]byte(nil), payload...)}
}

func (s *MemoryStore) Load(ctx context.Context) (domain.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.LoadErr != nil {
		return nil, s.LoadErr
	}
	return DecodeDocument(s.payload)
}

// Save encodes the collection so callers never share memory with the store
func (s *MemoryStore) Save(ctx context.Context, invoices domain.Collection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.SaveErr != nil {
		return s.SaveErr
	}

	data, err := EncodeDocument(invoices)
	if err != nil {
		return err
	}
	s.payload = data
	s.Saves++
	return nil
}

// Payload returns a copy of the last saved bytes
func (s *MemoryStore) Payload() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.payload...)
}

// SetSaveErr swaps the injected save failure under the lock
func (s *MemoryStore) SetSaveErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.SaveErr = err
}

// SaveCount returns how many saves succeeded
func (s *MemoryStore) SaveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Saves
}
