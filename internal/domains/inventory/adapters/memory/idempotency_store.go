package memory

import (
	"context"
	"sync"
	"time"

	"github.com/Apurer/go-gin-bookstore/internal/domains/inventory/ports"
)

var _ ports.IdempotencyStore = (*IdempotencyStore)(nil)

// IdempotencyStore remembers intake keys in memory.
type IdempotencyStore struct {
	mu    sync.Mutex
	byKey map[string]ports.IdempotencyRecord
	now   func() time.Time
}

// NewIdempotencyStore constructs an empty key registry.
func NewIdempotencyStore() *IdempotencyStore {
	return &IdempotencyStore{byKey: map[string]ports.IdempotencyRecord{}, now: time.Now}
}

// WithClock overrides the time source for deterministic testing.
func (s *IdempotencyStore) WithClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Get returns the record for key, or nil when the key was never used.
func (s *IdempotencyStore) Get(_ context.Context, key string) (*ports.IdempotencyRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if record, ok := s.byKey[key]; ok {
		return &record, nil
	}
	return nil, nil
}

// Save registers the key. Reusing a key for a different payload or ISBN is a conflict.
func (s *IdempotencyStore) Save(_ context.Context, record ports.IdempotencyRecord) (*ports.IdempotencyRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.byKey[record.Key]
	if !ok {
		record.CreatedAt = s.now()
		record.UpdatedAt = record.CreatedAt
		s.byKey[record.Key] = record
		return &record, nil
	}
	if existing.RequestHash != record.RequestHash || existing.ISBN != record.ISBN {
		return &existing, ports.ErrIdempotencyConflict
	}
	return &existing, nil
}
