package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Apurer/go-gin-bookstore/internal/domains/inventory/ports"
)

var _ ports.IdempotencyStore = (*IdempotencyStore)(nil)

// IdempotencyStore persists intake Idempotency-Key values in SQLite.
type IdempotencyStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewIdempotencyStore wires a SQLite-backed idempotency store.
func NewIdempotencyStore(db *sql.DB) *IdempotencyStore {
	return &IdempotencyStore{db: db, now: time.Now}
}

// Get loads a record by key, returning nil when absent.
func (s *IdempotencyStore) Get(ctx context.Context, key string) (*ports.IdempotencyRecord, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("sqlite idempotency store not configured")
	}
	var (
		record               ports.IdempotencyRecord
		createdAt, updatedAt int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT key,request_hash,isbn,created_at,updated_at FROM stock_idempotency WHERE key=?`, key).
		Scan(&record.Key, &record.RequestHash, &record.ISBN, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	record.CreatedAt = time.Unix(0, createdAt).UTC()
	record.UpdatedAt = time.Unix(0, updatedAt).UTC()
	return &record, nil
}

// Save inserts the record. An existing key with the same hash and ISBN is returned as is,
// otherwise ErrIdempotencyConflict is returned with the stored record.
func (s *IdempotencyStore) Save(ctx context.Context, record ports.IdempotencyRecord) (*ports.IdempotencyRecord, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("sqlite idempotency store not configured")
	}
	now := s.now().UTC()
	res, err := s.db.ExecContext(ctx, `
INSERT INTO stock_idempotency(key,request_hash,isbn,created_at,updated_at) VALUES(?,?,?,?,?)
ON CONFLICT(key) DO NOTHING`,
		record.Key, record.RequestHash, record.ISBN, now.UnixNano(), now.UnixNano())
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		record.CreatedAt = now
		record.UpdatedAt = now
		return &record, nil
	}
	existing, err := s.Get(ctx, record.Key)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, errors.New("idempotency key vanished after conflict")
	}
	if existing.RequestHash != record.RequestHash || existing.ISBN != record.ISBN {
		return existing, ports.ErrIdempotencyConflict
	}
	return existing, nil
}
