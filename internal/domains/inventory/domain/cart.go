package domain

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Cart holds one shopper's reserved stock. Every quantity in the cart has been
// taken out of the ledger it draws from; removing it puts the units back.
//
// Lock order is always cart then ledger.
type Cart struct {
	mu        sync.Mutex
	owner     ShopperID
	ledger    *Ledger
	lines     []*Entry
	total     decimal.Decimal
	updatedAt time.Time
	now       func() time.Time
}

// Receipt is the terminal snapshot produced by Checkout.
type Receipt struct {
	ID           string
	Owner        ShopperID
	Lines        []Entry
	Quantity     int
	Total        decimal.Decimal
	CheckedOutAt time.Time
}

// NewCart attaches an empty cart for owner to ledger.
func NewCart(owner ShopperID, ledger *Ledger) *Cart {
	c := &Cart{owner: owner, ledger: ledger, total: decimal.Zero, now: time.Now}
	c.updatedAt = c.now()
	return c
}

// RestoreCart rebuilds a persisted cart without touching the ledger; the
// reserved units are assumed to already be absent from it.
func RestoreCart(owner ShopperID, ledger *Ledger, lines []Entry, updatedAt time.Time) *Cart {
	c := NewCart(owner, ledger)
	for _, line := range lines {
		if line.Book == nil || line.Quantity <= 0 {
			continue
		}
		if idx := indexOf(c.lines, line.ISBN()); idx >= 0 {
			c.lines[idx].Quantity += line.Quantity
			continue
		}
		c.lines = append(c.lines, &Entry{Book: line.Book.Clone(), Quantity: line.Quantity, Holder: HolderCart})
	}
	c.recompute()
	if !updatedAt.IsZero() {
		c.updatedAt = updatedAt
	}
	return c
}

// WithClock overrides the time source for deterministic testing.
func (c *Cart) WithClock(now func() time.Time) {
	if now == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// Owner returns the shopper the cart belongs to.
func (c *Cart) Owner() ShopperID {
	return c.owner
}

// Add moves qty units of isbn from the ledger into the cart as one atomic step.
func (c *Cart) Add(isbn string, qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ledger == nil {
		return ErrNoLedger
	}
	c.ledger.mu.Lock()
	defer c.ledger.mu.Unlock()

	book, err := c.ledger.reduceLocked(isbn, qty)
	if err != nil {
		if err == ErrNotStocked && indexOf(c.lines, isbn) >= 0 {
			return ErrInsufficientStock
		}
		return err
	}
	if idx := indexOf(c.lines, isbn); idx >= 0 {
		c.lines[idx].Quantity += qty
	} else {
		c.lines = append(c.lines, &Entry{Book: book.Clone(), Quantity: qty, Holder: HolderCart})
	}
	c.touch()
	return nil
}

// Remove moves qty units of isbn from the cart back into the ledger as one atomic step.
func (c *Cart) Remove(isbn string, qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ledger == nil {
		return ErrNoLedger
	}
	idx := indexOf(c.lines, isbn)
	if idx < 0 {
		return ErrNotInCart
	}
	line := c.lines[idx]
	if qty > line.Quantity {
		return ErrInsufficientReserved
	}

	c.ledger.mu.Lock()
	defer c.ledger.mu.Unlock()
	// restock re-creates the ledger entry if the cart had drained it
	c.ledger.restockLocked(line.Book, qty)
	line.Quantity -= qty
	if line.Quantity == 0 {
		c.lines = append(c.lines[:idx], c.lines[idx+1:]...)
	}
	c.touch()
	return nil
}

// Checkout commits the reservation: lines are cleared, the total is zeroed and
// the reserved units stay out of the ledger.
func (c *Cart) Checkout() Receipt {
	c.mu.Lock()
	defer c.mu.Unlock()
	receipt := Receipt{
		Owner:    c.owner,
		Lines:    cloneEntries(c.lines),
		Quantity: c.quantityLocked(),
		Total:    c.total,
	}
	c.lines = nil
	c.touch()
	receipt.CheckedOutAt = c.updatedAt
	return receipt
}

// Release abandons the cart, returning every reserved unit to the ledger.
func (c *Cart) Release() ([]Entry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ledger == nil {
		return nil, ErrNoLedger
	}
	released := cloneEntries(c.lines)
	if len(released) == 0 {
		return released, nil
	}
	c.ledger.mu.Lock()
	for _, line := range c.lines {
		c.ledger.restockLocked(line.Book, line.Quantity)
	}
	c.ledger.mu.Unlock()
	c.lines = nil
	c.touch()
	return released, nil
}

// Total is the sum of price times quantity across all lines.
func (c *Cart) Total() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total
}

// Entries returns the cart lines in the order they were first added.
func (c *Cart) Entries() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneEntries(c.lines)
}

// Quantity returns the units of isbn held in the cart.
func (c *Cart) Quantity(isbn string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if idx := indexOf(c.lines, isbn); idx >= 0 {
		return c.lines[idx].Quantity
	}
	return 0
}

// TotalQuantity counts every unit across all lines.
func (c *Cart) TotalQuantity() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.quantityLocked()
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lines) == 0
}

// UpdatedAt is the time of the last successful mutation.
func (c *Cart) UpdatedAt() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.updatedAt
}

func (c *Cart) quantityLocked() int {
	total := 0
	for _, line := range c.lines {
		total += line.Quantity
	}
	return total
}

func (c *Cart) touch() {
	c.recompute()
	c.updatedAt = c.now()
}

// recompute derives the total from scratch so it can never drift.
func (c *Cart) recompute() {
	total := decimal.Zero
	for _, line := range c.lines {
		total = total.Add(line.Subtotal())
	}
	c.total = total
}
