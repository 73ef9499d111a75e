package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	catalog "github.com/Apurer/go-gin-bookstore/internal/domains/catalog/domain"
	catalogports "github.com/Apurer/go-gin-bookstore/internal/domains/catalog/ports"
	invtypes "github.com/Apurer/go-gin-bookstore/internal/domains/inventory/application/types"
	"github.com/Apurer/go-gin-bookstore/internal/domains/inventory/domain"
	"github.com/Apurer/go-gin-bookstore/internal/domains/inventory/ports"
	"github.com/Apurer/go-gin-bookstore/internal/shared/projection"
)

// Release reasons carried on ReservationReleased events.
const (
	ReleaseReasonRemoved   = "removed"
	ReleaseReasonAbandoned = "abandoned"
	ReleaseReasonIdle      = "idle"
)

// Service orchestrates the inventory bounded context use cases.
//
// The ledger and carts live in memory and are the source of truth while the
// process runs; every committed mutation is written through to the store.
// Writes are serialized by mu so that persistence observes them in the order
// they were applied. A failed write-through is compensated in memory.
type Service struct {
	mu      sync.Mutex
	ledger  atomic.Pointer[domain.Ledger]
	cartsMu sync.RWMutex
	carts   map[domain.ShopperID]*domain.Cart

	catalog     catalogports.Repository
	store       ports.Store
	idempotency ports.IdempotencyStore
	publisher   ports.EventPublisher
	logger      *slog.Logger
	now         func() time.Time
	newID       func() string
}

// Option customizes the Service.
type Option func(*Service)

// WithIdempotencyStore enables Idempotency-Key handling for stock intake.
func WithIdempotencyStore(store ports.IdempotencyStore) Option {
	return func(s *Service) {
		s.idempotency = store
	}
}

// WithPublisher announces committed changes.
func WithPublisher(publisher ports.EventPublisher) Option {
	return func(s *Service) {
		s.publisher = publisher
	}
}

// WithLogger sets the logger used for non-fatal failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source for deterministic testing.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides receipt ID generation.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) {
		if newID != nil {
			s.newID = newID
		}
	}
}

// NewService wires the inventory service with its dependencies. Call Load before serving traffic
// to hydrate state from the store.
func NewService(catalogRepo catalogports.Repository, store ports.Store, opts ...Option) *Service {
	s := &Service{
		carts:   map[domain.ShopperID]*domain.Cart{},
		catalog: catalogRepo,
		store:   store,
		logger:  slog.Default(),
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.ledger.Store(domain.NewLedger())
	return s
}

// Load rebuilds the ledger and open carts from the catalog and the store.
func (s *Service) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	books, err := s.catalog.List(ctx)
	if err != nil {
		return err
	}
	byISBN := make(map[string]*catalog.Book, len(books))
	for _, proj := range books {
		byISBN[proj.Entity.ISBN] = proj.Entity
	}

	levels, err := s.store.ListStockLevels(ctx)
	if err != nil {
		return err
	}
	ledger := domain.NewLedger()
	for _, level := range levels {
		book, ok := byISBN[level.ISBN]
		if !ok {
			s.logger.Warn("stock level without catalog entry skipped", slog.String("isbn", level.ISBN))
			continue
		}
		if level.Quantity <= 0 {
			continue
		}
		if err := ledger.AddItem(book, level.Quantity); err != nil {
			return mapError(err)
		}
	}

	snapshots, err := s.store.ListCarts(ctx)
	if err != nil {
		return err
	}
	carts := make(map[domain.ShopperID]*domain.Cart, len(snapshots))
	for _, snapshot := range snapshots {
		lines := make([]domain.Entry, 0, len(snapshot.Lines))
		for _, line := range snapshot.Lines {
			book, ok := byISBN[line.ISBN]
			if !ok {
				s.logger.Warn("cart line without catalog entry skipped",
					slog.String("shopper", string(snapshot.Owner)), slog.String("isbn", line.ISBN))
				continue
			}
			reserved := book.Clone()
			reserved.Price = line.UnitPrice
			lines = append(lines, domain.Entry{Book: reserved, Quantity: line.Quantity, Holder: domain.HolderCart})
		}
		cart := domain.RestoreCart(snapshot.Owner, ledger, lines, snapshot.UpdatedAt)
		cart.WithClock(s.now)
		carts[snapshot.Owner] = cart
	}

	s.ledger.Store(ledger)
	s.cartsMu.Lock()
	s.carts = carts
	s.cartsMu.Unlock()
	s.logger.Info("inventory loaded", slog.Int("items", ledger.Len()), slog.Int("carts", len(carts)))
	return nil
}

// GetBook returns the catalog entry for isbn together with its on-hand quantity.
func (s *Service) GetBook(ctx context.Context, isbn string) (*invtypes.BookView, error) {
	proj, err := s.catalog.GetByISBN(ctx, strings.TrimSpace(isbn))
	if err != nil {
		return nil, mapError(err)
	}
	return &invtypes.BookView{
		Book:     proj.Entity,
		OnHand:   s.ledger.Load().Quantity(proj.Entity.ISBN),
		Metadata: proj.Metadata,
	}, nil
}

// StockItem upserts the book into the catalog and adds the units to the ledger.
func (s *Service) StockItem(ctx context.Context, input invtypes.StockItemInput) (*invtypes.StockEntryView, error) {
	book, err := input.Book.ToDomain()
	if err != nil {
		return nil, mapError(err)
	}
	if input.Quantity <= 0 {
		return nil, mapError(domain.ErrInvalidQuantity)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.TrimSpace(input.IdempotencyKey)
	var requestHash string
	if key != "" && s.idempotency != nil {
		requestHash, err = FingerprintStockItem(input)
		if err != nil {
			return nil, err
		}
		record, err := s.idempotency.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		if record != nil {
			if record.RequestHash != requestHash || record.ISBN != book.ISBN {
				return nil, ports.ErrIdempotencyConflict
			}
			return s.stockView(ctx, book.ISBN)
		}
	}

	ledger := s.ledger.Load()
	previous, err := s.catalog.GetByISBN(ctx, book.ISBN)
	if err != nil && !errors.Is(err, catalogports.ErrNotFound) {
		return nil, mapError(err)
	}
	if _, err := s.catalog.Save(ctx, book); err != nil {
		return nil, mapError(err)
	}
	snapshot := ledger.Entries()
	if err := ledger.AddItem(book, input.Quantity); err != nil {
		return nil, mapError(err)
	}
	onHand := ledger.Quantity(book.ISBN)
	if err := s.store.SaveStockLevel(ctx, book.ISBN, onHand); err != nil {
		ledger.Restore(snapshot)
		s.revertCatalog(ctx, previous)
		return nil, err
	}
	if key != "" && s.idempotency != nil {
		record := ports.IdempotencyRecord{Key: key, RequestHash: requestHash, ISBN: book.ISBN}
		if _, err := s.idempotency.Save(ctx, record); err != nil {
			s.logger.Warn("idempotency record not saved", slog.String("isbn", book.ISBN), slog.String("error", err.Error()))
		}
	}
	s.publish(ctx, domain.StockReceived{
		BaseEvent: domain.BaseEvent{Timestamp: s.now()},
		ISBN:      book.ISBN,
		Quantity:  input.Quantity,
		OnHand:    onHand,
	})
	entry, _ := ledger.Find(book.ISBN)
	return &invtypes.StockEntryView{Book: entry.Book, Quantity: onHand}, nil
}

// ReduceStock writes units off the ledger.
func (s *Service) ReduceStock(ctx context.Context, input invtypes.StockAdjustmentInput) (*invtypes.StockEntryView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ledger := s.ledger.Load()
	snapshot := ledger.Entries()
	entry, _ := ledger.Find(input.ISBN)
	if err := ledger.Reduce(input.ISBN, input.Quantity); err != nil {
		return nil, mapError(err)
	}
	onHand := ledger.Quantity(input.ISBN)
	if err := s.store.SaveStockLevel(ctx, input.ISBN, onHand); err != nil {
		ledger.Restore(snapshot)
		return nil, err
	}
	s.publish(ctx, domain.StockReduced{
		BaseEvent: domain.BaseEvent{Timestamp: s.now()},
		ISBN:      input.ISBN,
		Quantity:  input.Quantity,
		OnHand:    onHand,
	})
	return &invtypes.StockEntryView{Book: entry.Book, Quantity: onHand}, nil
}

// PutBackStock returns units to an existing ledger entry. Items no longer stocked are rejected.
func (s *Service) PutBackStock(ctx context.Context, input invtypes.StockAdjustmentInput) (*invtypes.StockEntryView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ledger := s.ledger.Load()
	if err := ledger.PutBack(input.ISBN, input.Quantity); err != nil {
		return nil, mapError(err)
	}
	entry, _ := ledger.Find(input.ISBN)
	if err := s.store.SaveStockLevel(ctx, input.ISBN, entry.Quantity); err != nil {
		_ = ledger.Reduce(input.ISBN, input.Quantity)
		return nil, err
	}
	s.publish(ctx, domain.StockRestocked{
		BaseEvent: domain.BaseEvent{Timestamp: s.now()},
		ISBN:      input.ISBN,
		Quantity:  input.Quantity,
		OnHand:    entry.Quantity,
	})
	return &invtypes.StockEntryView{Book: entry.Book, Quantity: entry.Quantity}, nil
}

// GetStock returns the ledger entry for isbn.
func (s *Service) GetStock(_ context.Context, isbn string) (*invtypes.StockEntryView, error) {
	entry, ok := s.ledger.Load().Find(isbn)
	if !ok {
		return nil, mapError(domain.ErrNotStocked)
	}
	return &invtypes.StockEntryView{Book: entry.Book, Quantity: entry.Quantity}, nil
}

// ListStock returns the ledger in insertion order.
func (s *Service) ListStock(_ context.Context) ([]invtypes.StockEntryView, error) {
	return invtypes.StockViews(s.ledger.Load().Entries()), nil
}

// Search runs the tiered text search over the ledger.
func (s *Service) Search(_ context.Context, text string) ([]invtypes.StockEntryView, error) {
	return invtypes.StockViews(s.ledger.Load().Search(text)), nil
}

// Query runs search, facet extraction, filtering and sorting over one ledger snapshot.
func (s *Service) Query(_ context.Context, input invtypes.QueryInput) (*invtypes.QueryResult, error) {
	order, err := domain.ParseSortOrder(input.Sort)
	if err != nil {
		return nil, mapError(err)
	}
	result := s.ledger.Load().Query(domain.Query{
		Text: input.Text,
		Criteria: domain.Criteria{
			Authors:    input.Authors,
			Genres:     input.Genres,
			Publishers: input.Publishers,
			MaxPrice:   input.MaxPrice,
		},
		Sort: order,
	})
	return &invtypes.QueryResult{Items: invtypes.StockViews(result.Entries), Facets: result.Facets}, nil
}

// AddToCart reserves units for the shopper.
func (s *Service) AddToCart(ctx context.Context, input invtypes.CartItemInput) (*invtypes.CartView, error) {
	if err := input.Shopper.Validate(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	ledger := s.ledger.Load()
	cart, existed := s.cart(input.Shopper)
	if !existed {
		cart = domain.NewCart(input.Shopper, ledger)
		cart.WithClock(s.now)
	}
	rollback := s.checkpoint(cart, existed)
	if err := cart.Add(input.ISBN, input.Quantity); err != nil {
		return nil, mapError(err)
	}
	s.setCart(cart)
	if err := s.persistCart(ctx, cart, input.ISBN); err != nil {
		rollback(ctx, input.ISBN)
		return nil, err
	}
	s.publish(ctx, domain.ItemReserved{
		BaseEvent:    domain.BaseEvent{Timestamp: s.now()},
		Shopper:      input.Shopper,
		ISBN:         input.ISBN,
		Quantity:     input.Quantity,
		CartQuantity: cart.Quantity(input.ISBN),
		OnHand:       ledger.Quantity(input.ISBN),
	})
	return invtypes.NewCartView(cart), nil
}

// RemoveFromCart returns reserved units to the ledger.
func (s *Service) RemoveFromCart(ctx context.Context, input invtypes.CartItemInput) (*invtypes.CartView, error) {
	if err := input.Shopper.Validate(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cart, ok := s.cart(input.Shopper)
	if !ok {
		if input.Quantity <= 0 {
			return nil, mapError(domain.ErrInvalidQuantity)
		}
		return nil, mapError(domain.ErrNotInCart)
	}
	rollback := s.checkpoint(cart, true)
	if err := cart.Remove(input.ISBN, input.Quantity); err != nil {
		return nil, mapError(err)
	}
	if err := s.persistCart(ctx, cart, input.ISBN); err != nil {
		rollback(ctx, input.ISBN)
		return nil, err
	}
	s.publish(ctx, domain.ReservationReleased{
		BaseEvent: domain.BaseEvent{Timestamp: s.now()},
		Shopper:   input.Shopper,
		ISBN:      input.ISBN,
		Quantity:  input.Quantity,
		OnHand:    s.ledger.Load().Quantity(input.ISBN),
		Reason:    ReleaseReasonRemoved,
	})
	return invtypes.NewCartView(cart), nil
}

// GetCart returns the shopper's cart; a shopper without one sees an empty cart.
func (s *Service) GetCart(_ context.Context, shopper domain.ShopperID) (*invtypes.CartView, error) {
	if err := shopper.Validate(); err != nil {
		return nil, err
	}
	cart, ok := s.cart(shopper)
	if !ok {
		return invtypes.EmptyCartView(shopper), nil
	}
	return invtypes.NewCartView(cart), nil
}

// Checkout commits the shopper's reservation and issues a receipt.
func (s *Service) Checkout(ctx context.Context, shopper domain.ShopperID) (*domain.Receipt, error) {
	if err := shopper.Validate(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cart, ok := s.cart(shopper)
	if !ok || cart.IsEmpty() {
		return nil, mapError(ErrEmptyCart)
	}
	previous := cart.UpdatedAt()
	receipt := cart.Checkout()
	receipt.ID = s.newID()
	if err := s.store.SaveReceipt(ctx, receipt); err != nil {
		restored := domain.RestoreCart(shopper, s.ledger.Load(), receipt.Lines, previous)
		restored.WithClock(s.now)
		s.setCart(restored)
		return nil, err
	}
	s.dropCart(shopper)
	s.publish(ctx, domain.CartCheckedOut{
		BaseEvent: domain.BaseEvent{Timestamp: receipt.CheckedOutAt},
		Shopper:   shopper,
		ReceiptID: receipt.ID,
		Quantity:  receipt.Quantity,
		Total:     receipt.Total,
	})
	return &receipt, nil
}

// GetReceipt loads a stored receipt.
func (s *Service) GetReceipt(ctx context.Context, id string) (*domain.Receipt, error) {
	receipt, err := s.store.GetReceipt(ctx, strings.TrimSpace(id))
	if err != nil {
		return nil, mapError(err)
	}
	return receipt, nil
}

// ReleaseCart abandons the shopper's cart, returning its units to the ledger.
func (s *Service) ReleaseCart(ctx context.Context, shopper domain.ShopperID) (int, error) {
	if err := shopper.Validate(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.releaseLocked(ctx, shopper, ReleaseReasonAbandoned)
}

// ReleaseIdleCarts releases every cart whose last change is at least idleFor old.
func (s *Service) ReleaseIdleCarts(ctx context.Context, idleFor time.Duration) (int, error) {
	if idleFor <= 0 {
		return 0, fmt.Errorf("%w: idle duration must be positive", ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-idleFor)
	s.cartsMu.RLock()
	var idle []domain.ShopperID
	for owner, cart := range s.carts {
		if !cart.UpdatedAt().After(cutoff) {
			idle = append(idle, owner)
		}
	}
	s.cartsMu.RUnlock()
	sort.Slice(idle, func(i, j int) bool { return idle[i] < idle[j] })

	released := 0
	var errs []error
	for _, owner := range idle {
		units, err := s.releaseLocked(ctx, owner, ReleaseReasonIdle)
		if err != nil {
			errs = append(errs, fmt.Errorf("release %s: %w", owner, err))
		}
		if units > 0 {
			released++
		}
	}
	return released, errors.Join(errs...)
}

func (s *Service) releaseLocked(ctx context.Context, shopper domain.ShopperID, reason string) (int, error) {
	cart, ok := s.cart(shopper)
	if !ok {
		return 0, nil
	}
	lines, err := cart.Release()
	if err != nil {
		return 0, err
	}
	s.dropCart(shopper)

	ledger := s.ledger.Load()
	var errs []error
	units := 0
	for _, line := range lines {
		units += line.Quantity
		if err := s.store.SaveStockLevel(ctx, line.ISBN(), ledger.Quantity(line.ISBN())); err != nil {
			errs = append(errs, err)
		}
	}
	if err := s.store.DeleteCart(ctx, shopper); err != nil {
		errs = append(errs, err)
	}
	for _, line := range lines {
		s.publish(ctx, domain.ReservationReleased{
			BaseEvent: domain.BaseEvent{Timestamp: s.now()},
			Shopper:   shopper,
			ISBN:      line.ISBN(),
			Quantity:  line.Quantity,
			OnHand:    ledger.Quantity(line.ISBN()),
			Reason:    reason,
		})
	}
	if len(errs) > 0 {
		s.logger.Error("cart released in memory but not fully persisted",
			slog.String("shopper", string(shopper)), slog.String("error", errors.Join(errs...).Error()))
	}
	return units, errors.Join(errs...)
}

// persistCart writes the touched stock level and the cart snapshot; an empty cart is deleted.
func (s *Service) persistCart(ctx context.Context, cart *domain.Cart, isbn string) error {
	if err := s.store.SaveStockLevel(ctx, isbn, s.ledger.Load().Quantity(isbn)); err != nil {
		return err
	}
	if cart.IsEmpty() {
		if err := s.store.DeleteCart(ctx, cart.Owner()); err != nil {
			return err
		}
		s.dropCart(cart.Owner())
		return nil
	}
	return s.store.SaveCart(ctx, ports.SnapshotCart(cart))
}

// checkpoint captures the ledger and the cart before a cart mutation. The returned
// func puts both back exactly, ledger order included, and resyncs the stock level.
func (s *Service) checkpoint(cart *domain.Cart, existed bool) func(ctx context.Context, isbn string) {
	ledger := s.ledger.Load()
	entries := ledger.Entries()
	lines := cart.Entries()
	updatedAt := cart.UpdatedAt()
	return func(ctx context.Context, isbn string) {
		ledger.Restore(entries)
		if existed && len(lines) > 0 {
			restored := domain.RestoreCart(cart.Owner(), ledger, lines, updatedAt)
			restored.WithClock(s.now)
			s.setCart(restored)
		} else {
			s.dropCart(cart.Owner())
		}
		if err := s.store.SaveStockLevel(ctx, isbn, ledger.Quantity(isbn)); err != nil {
			s.logger.Error("stock level resync failed", slog.String("isbn", isbn), slog.String("error", err.Error()))
		}
	}
}

// revertCatalog puts back the catalog record replaced by a failed intake, best effort.
func (s *Service) revertCatalog(ctx context.Context, previous *projection.Projection[*catalog.Book]) {
	if previous == nil || previous.Entity == nil {
		return
	}
	if _, err := s.catalog.Save(ctx, previous.Entity); err != nil {
		s.logger.Error("catalog revert failed", slog.String("isbn", previous.Entity.ISBN), slog.String("error", err.Error()))
	}
}

func (s *Service) stockView(ctx context.Context, isbn string) (*invtypes.StockEntryView, error) {
	if entry, ok := s.ledger.Load().Find(isbn); ok {
		return &invtypes.StockEntryView{Book: entry.Book, Quantity: entry.Quantity}, nil
	}
	proj, err := s.catalog.GetByISBN(ctx, isbn)
	if err != nil {
		return nil, mapError(err)
	}
	return &invtypes.StockEntryView{Book: proj.Entity, Quantity: 0}, nil
}

func (s *Service) cart(shopper domain.ShopperID) (*domain.Cart, bool) {
	s.cartsMu.RLock()
	defer s.cartsMu.RUnlock()
	cart, ok := s.carts[shopper]
	return cart, ok
}

func (s *Service) setCart(cart *domain.Cart) {
	s.cartsMu.Lock()
	defer s.cartsMu.Unlock()
	s.carts[cart.Owner()] = cart
}

func (s *Service) dropCart(shopper domain.ShopperID) {
	s.cartsMu.Lock()
	defer s.cartsMu.Unlock()
	delete(s.carts, shopper)
}

func (s *Service) publish(ctx context.Context, event domain.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("event publish failed", slog.String("event", event.EventName()), slog.String("error", err.Error()))
	}
}

var _ ports.Service = (*Service)(nil)
