package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Apurer/go-gin-bookstore/internal/domains/inventory/domain"
	"github.com/Apurer/go-gin-bookstore/internal/domains/inventory/ports"
)

var _ ports.Store = (*Store)(nil)

// Store is an in-memory inventory store used for demos/tests.
type Store struct {
	mu       sync.RWMutex
	levels   map[string]ports.StockLevel
	order    []string
	carts    map[domain.ShopperID]ports.CartSnapshot
	receipts map[string]domain.Receipt
	now      func() time.Time
}

// NewStore constructs an empty in-memory store.
func NewStore() *Store {
	return &Store{
		levels:   map[string]ports.StockLevel{},
		carts:    map[domain.ShopperID]ports.CartSnapshot{},
		receipts: map[string]domain.Receipt{},
		now:      time.Now,
	}
}

// WithClock overrides the time source for deterministic testing.
func (s *Store) WithClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// SaveStockLevel upserts a level; zero or less removes it.
func (s *Store) SaveStockLevel(_ context.Context, isbn string, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if quantity <= 0 {
		if _, ok := s.levels[isbn]; ok {
			delete(s.levels, isbn)
			for i, key := range s.order {
				if key == isbn {
					s.order = append(s.order[:i], s.order[i+1:]...)
					break
				}
			}
		}
		return nil
	}
	if _, ok := s.levels[isbn]; !ok {
		s.order = append(s.order, isbn)
	}
	s.levels[isbn] = ports.StockLevel{ISBN: isbn, Quantity: quantity, UpdatedAt: s.now()}
	return nil
}

// ListStockLevels returns levels in the order they were first saved.
func (s *Store) ListStockLevels(_ context.Context) ([]ports.StockLevel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := make([]ports.StockLevel, 0, len(s.order))
	for _, isbn := range s.order {
		list = append(list, s.levels[isbn])
	}
	return list, nil
}

// SaveCart replaces the snapshot for its owner.
func (s *Store) SaveCart(_ context.Context, snapshot ports.CartSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot.Lines = append([]ports.CartLine(nil), snapshot.Lines...)
	s.carts[snapshot.Owner] = snapshot
	return nil
}

// DeleteCart drops the snapshot for owner; unknown owners are ignored.
func (s *Store) DeleteCart(_ context.Context, owner domain.ShopperID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, owner)
	return nil
}

// ListCarts returns every snapshot ordered by owner.
func (s *Store) ListCarts(_ context.Context) ([]ports.CartSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := make([]ports.CartSnapshot, 0, len(s.carts))
	for _, snapshot := range s.carts {
		snapshot.Lines = append([]ports.CartLine(nil), snapshot.Lines...)
		list = append(list, snapshot)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Owner < list[j].Owner })
	return list, nil
}

// SaveReceipt stores the receipt and drops the owner's cart snapshot.
func (s *Store) SaveReceipt(_ context.Context, receipt domain.Receipt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.receipts[receipt.ID] = cloneReceipt(receipt)
	delete(s.carts, receipt.Owner)
	return nil
}

// GetReceipt fetches a receipt if present.
func (s *Store) GetReceipt(_ context.Context, id string) (*domain.Receipt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	receipt, ok := s.receipts[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	copy := cloneReceipt(receipt)
	return &copy, nil
}

func cloneReceipt(receipt domain.Receipt) domain.Receipt {
	lines := make([]domain.Entry, 0, len(receipt.Lines))
	for _, line := range receipt.Lines {
		line.Book = line.Book.Clone()
		lines = append(lines, line)
	}
	receipt.Lines = lines
	return receipt
}
