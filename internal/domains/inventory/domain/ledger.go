package domain

import (
	"sync"

	catalog "github.com/Apurer/go-gin-bookstore/internal/domains/catalog/domain"
)

// Ledger is the authoritative on-hand quantity per book for one store.
// Entries are unique by ISBN, kept in insertion order, and never hold a zero quantity.
type Ledger struct {
	mu      sync.RWMutex
	entries []*Entry
}

// NewLedger builds an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{}
}

// AddItem stocks qty units of book, incrementing an existing entry or appending a new one.
// An existing entry takes the details of book so the ledger follows the latest catalog record.
func (l *Ledger) AddItem(book *catalog.Book, qty int) error {
	if book == nil {
		return ErrNilItem
	}
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	if err := book.Validate(); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.addLocked(book, qty)
	return nil
}

// Reduce takes qty units out of the ledger. An entry that reaches zero is removed.
func (l *Ledger) Reduce(isbn string, qty int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, err := l.reduceLocked(isbn, qty)
	return err
}

// PutBack returns qty units to an existing entry. Unknown items are rejected, never created.
func (l *Ledger) PutBack(isbn string, qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	idx := indexOf(l.entries, isbn)
	if idx < 0 {
		return ErrNotStocked
	}
	l.entries[idx].Quantity += qty
	return nil
}

// Find looks up the entry for isbn.
func (l *Ledger) Find(isbn string) (Entry, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	idx := indexOf(l.entries, isbn)
	if idx < 0 {
		return Entry{}, false
	}
	return l.entries[idx].clone(), true
}

// Quantity reports on-hand units for isbn, zero when absent.
func (l *Ledger) Quantity(isbn string) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if idx := indexOf(l.entries, isbn); idx >= 0 {
		return l.entries[idx].Quantity
	}
	return 0
}

// Entries returns a snapshot in ledger order.
func (l *Ledger) Entries() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return cloneEntries(l.entries)
}

// Len is the number of distinct stocked items.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Restore replaces the ledger contents with a snapshot taken from Entries, keeping its order.
func (l *Ledger) Restore(snapshot []Entry) {
	entries := make([]*Entry, 0, len(snapshot))
	for _, e := range snapshot {
		if e.Book == nil || e.Quantity <= 0 {
			continue
		}
		restored := e.clone()
		restored.Holder = HolderLedger
		entries = append(entries, &restored)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = entries
}

// Search runs the tiered text search over a snapshot of the ledger.
func (l *Ledger) Search(text string) []Entry {
	return Search(l.Entries(), text)
}

// Query runs search, facet extraction, filtering and sorting over one snapshot.
func (l *Ledger) Query(q Query) Result {
	return RunQuery(l.Entries(), q)
}

func (l *Ledger) addLocked(book *catalog.Book, qty int) {
	if idx := indexOf(l.entries, book.ISBN); idx >= 0 {
		l.entries[idx].Book = book.Clone()
		l.entries[idx].Quantity += qty
		return
	}
	l.entries = append(l.entries, &Entry{Book: book.Clone(), Quantity: qty, Holder: HolderLedger})
}

// restockLocked returns reserved units. A live entry keeps its details; a drained one is re-created from book.
func (l *Ledger) restockLocked(book *catalog.Book, qty int) {
	if idx := indexOf(l.entries, book.ISBN); idx >= 0 {
		l.entries[idx].Quantity += qty
		return
	}
	l.entries = append(l.entries, &Entry{Book: book.Clone(), Quantity: qty, Holder: HolderLedger})
}

func (l *Ledger) reduceLocked(isbn string, qty int) (*catalog.Book, error) {
	if qty <= 0 {
		return nil, ErrInvalidQuantity
	}
	idx := indexOf(l.entries, isbn)
	if idx < 0 {
		return nil, ErrNotStocked
	}
	entry := l.entries[idx]
	if qty > entry.Quantity {
		return nil, ErrInsufficientStock
	}
	entry.Quantity -= qty
	if entry.Quantity == 0 {
		l.entries = append(l.entries[:idx], l.entries[idx+1:]...)
	}
	return entry.Book, nil
}
