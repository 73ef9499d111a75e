package observability

import (
	"context"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	invtypes "github.com/Apurer/go-gin-bookstore/internal/domains/inventory/application/types"
	"github.com/Apurer/go-gin-bookstore/internal/domains/inventory/domain"
	"github.com/Apurer/go-gin-bookstore/internal/domains/inventory/ports"
)

const tracerName = "github.com/Apurer/go-gin-bookstore/internal/domains/inventory/adapters/observability/service"

// Service decorates the inventory service with tracing, logging, and metrics.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wraps the core inventory service.
func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return s
}

func (s *Service) Load(ctx context.Context) error {
	ctx, span := s.tracer.Start(ctx, "InventoryService.Load")
	defer span.End()

	s.logInfo(ctx, "loading inventory")
	if err := s.inner.Load(ctx); err != nil {
		return s.handleError(ctx, span, err, "failed to load inventory")
	}
	return nil
}

func (s *Service) GetBook(ctx context.Context, isbn string) (*invtypes.BookView, error) {
	ctx, span := s.tracer.Start(ctx, "InventoryService.GetBook", trace.WithAttributes(attribute.String("book.isbn", isbn)))
	defer span.End()

	result, err := s.inner.GetBook(ctx, isbn)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load book", slog.String("book.isbn", isbn))
	}
	span.SetAttributes(attribute.Int("book.on_hand", result.OnHand))
	return result, nil
}

func (s *Service) StockItem(ctx context.Context, input invtypes.StockItemInput) (*invtypes.StockEntryView, error) {
	ctx, span := s.tracer.Start(ctx, "InventoryService.StockItem",
		trace.WithAttributes(attribute.String("book.isbn", input.Book.ISBN), attribute.Int("stock.quantity", input.Quantity)))
	defer span.End()

	s.logInfo(ctx, "stocking item", slog.String("book.isbn", input.Book.ISBN), slog.Int("stock.quantity", input.Quantity))
	result, err := s.inner.StockItem(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to stock item", slog.String("book.isbn", input.Book.ISBN))
	}
	s.metrics.recordStocked(ctx, input.Quantity)
	s.logInfo(ctx, "item stocked", slog.String("book.isbn", input.Book.ISBN), slog.Int("stock.on_hand", result.Quantity))
	return result, nil
}

func (s *Service) ReduceStock(ctx context.Context, input invtypes.StockAdjustmentInput) (*invtypes.StockEntryView, error) {
	ctx, span := s.tracer.Start(ctx, "InventoryService.ReduceStock",
		trace.WithAttributes(attribute.String("book.isbn", input.ISBN), attribute.Int("stock.quantity", input.Quantity)))
	defer span.End()

	s.logInfo(ctx, "reducing stock", slog.String("book.isbn", input.ISBN), slog.Int("stock.quantity", input.Quantity))
	result, err := s.inner.ReduceStock(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to reduce stock", slog.String("book.isbn", input.ISBN))
	}
	s.logInfo(ctx, "stock reduced", slog.String("book.isbn", input.ISBN), slog.Int("stock.on_hand", result.Quantity))
	return result, nil
}

func (s *Service) PutBackStock(ctx context.Context, input invtypes.StockAdjustmentInput) (*invtypes.StockEntryView, error) {
	ctx, span := s.tracer.Start(ctx, "InventoryService.PutBackStock",
		trace.WithAttributes(attribute.String("book.isbn", input.ISBN), attribute.Int("stock.quantity", input.Quantity)))
	defer span.End()

	s.logInfo(ctx, "putting stock back", slog.String("book.isbn", input.ISBN), slog.Int("stock.quantity", input.Quantity))
	result, err := s.inner.PutBackStock(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to put stock back", slog.String("book.isbn", input.ISBN))
	}
	s.metrics.recordStocked(ctx, input.Quantity)
	return result, nil
}

func (s *Service) GetStock(ctx context.Context, isbn string) (*invtypes.StockEntryView, error) {
	ctx, span := s.tracer.Start(ctx, "InventoryService.GetStock", trace.WithAttributes(attribute.String("book.isbn", isbn)))
	defer span.End()

	result, err := s.inner.GetStock(ctx, isbn)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load stock", slog.String("book.isbn", isbn))
	}
	return result, nil
}

func (s *Service) ListStock(ctx context.Context) ([]invtypes.StockEntryView, error) {
	ctx, span := s.tracer.Start(ctx, "InventoryService.ListStock")
	defer span.End()

	result, err := s.inner.ListStock(ctx)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list stock")
	}
	span.SetAttributes(attribute.Int("stock.entries", len(result)))
	return result, nil
}

func (s *Service) Search(ctx context.Context, text string) ([]invtypes.StockEntryView, error) {
	ctx, span := s.tracer.Start(ctx, "InventoryService.Search", trace.WithAttributes(attribute.String("search.text", text)))
	defer span.End()

	result, err := s.inner.Search(ctx, text)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to search", slog.String("search.text", text))
	}
	s.metrics.recordQuery(ctx, "search")
	span.SetAttributes(attribute.Int("search.results", len(result)))
	return result, nil
}

func (s *Service) Query(ctx context.Context, input invtypes.QueryInput) (*invtypes.QueryResult, error) {
	ctx, span := s.tracer.Start(ctx, "InventoryService.Query",
		trace.WithAttributes(attribute.String("search.text", input.Text), attribute.String("search.sort", input.Sort)))
	defer span.End()

	result, err := s.inner.Query(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to run query", slog.String("search.text", input.Text))
	}
	s.metrics.recordQuery(ctx, "query")
	span.SetAttributes(attribute.Int("search.results", len(result.Items)))
	return result, nil
}

func (s *Service) AddToCart(ctx context.Context, input invtypes.CartItemInput) (*invtypes.CartView, error) {
	ctx, span := s.tracer.Start(ctx, "InventoryService.AddToCart",
		trace.WithAttributes(attribute.String("book.isbn", input.ISBN), attribute.Int("cart.quantity", input.Quantity)))
	defer span.End()

	s.logInfo(ctx, "reserving item", slog.String("shopper", string(input.Shopper)), slog.String("book.isbn", input.ISBN), slog.Int("cart.quantity", input.Quantity))
	result, err := s.inner.AddToCart(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to reserve item", slog.String("book.isbn", input.ISBN))
	}
	s.metrics.recordReserved(ctx, input.Quantity)
	s.logInfo(ctx, "item reserved", slog.String("shopper", string(input.Shopper)), slog.String("cart.total", result.Total.StringFixed(2)))
	return result, nil
}

func (s *Service) RemoveFromCart(ctx context.Context, input invtypes.CartItemInput) (*invtypes.CartView, error) {
	ctx, span := s.tracer.Start(ctx, "InventoryService.RemoveFromCart",
		trace.WithAttributes(attribute.String("book.isbn", input.ISBN), attribute.Int("cart.quantity", input.Quantity)))
	defer span.End()

	s.logInfo(ctx, "releasing item", slog.String("shopper", string(input.Shopper)), slog.String("book.isbn", input.ISBN), slog.Int("cart.quantity", input.Quantity))
	result, err := s.inner.RemoveFromCart(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to release item", slog.String("book.isbn", input.ISBN))
	}
	s.metrics.recordReleased(ctx, input.Quantity, "removed")
	return result, nil
}

func (s *Service) GetCart(ctx context.Context, shopper domain.ShopperID) (*invtypes.CartView, error) {
	ctx, span := s.tracer.Start(ctx, "InventoryService.GetCart")
	defer span.End()

	result, err := s.inner.GetCart(ctx, shopper)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load cart", slog.String("shopper", string(shopper)))
	}
	span.SetAttributes(attribute.Int("cart.lines", len(result.Lines)))
	return result, nil
}

func (s *Service) Checkout(ctx context.Context, shopper domain.ShopperID) (*domain.Receipt, error) {
	ctx, span := s.tracer.Start(ctx, "InventoryService.Checkout")
	defer span.End()

	s.logInfo(ctx, "checking out", slog.String("shopper", string(shopper)))
	result, err := s.inner.Checkout(ctx, shopper)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to check out", slog.String("shopper", string(shopper)))
	}
	s.metrics.recordCheckout(ctx)
	span.SetAttributes(attribute.String("receipt.id", result.ID), attribute.Int("receipt.quantity", result.Quantity))
	s.logInfo(ctx, "checked out", slog.String("shopper", string(shopper)), slog.String("receipt.id", result.ID), slog.String("receipt.total", result.Total.StringFixed(2)))
	return result, nil
}

func (s *Service) GetReceipt(ctx context.Context, id string) (*domain.Receipt, error) {
	ctx, span := s.tracer.Start(ctx, "InventoryService.GetReceipt", trace.WithAttributes(attribute.String("receipt.id", id)))
	defer span.End()

	result, err := s.inner.GetReceipt(ctx, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load receipt", slog.String("receipt.id", id))
	}
	return result, nil
}

func (s *Service) ReleaseCart(ctx context.Context, shopper domain.ShopperID) (int, error) {
	ctx, span := s.tracer.Start(ctx, "InventoryService.ReleaseCart")
	defer span.End()

	s.logInfo(ctx, "releasing cart", slog.String("shopper", string(shopper)))
	units, err := s.inner.ReleaseCart(ctx, shopper)
	if err != nil {
		return units, s.handleError(ctx, span, err, "failed to release cart", slog.String("shopper", string(shopper)))
	}
	s.metrics.recordReleased(ctx, units, "abandoned")
	span.SetAttributes(attribute.Int("cart.released_units", units))
	return units, nil
}

func (s *Service) ReleaseIdleCarts(ctx context.Context, idleFor time.Duration) (int, error) {
	ctx, span := s.tracer.Start(ctx, "InventoryService.ReleaseIdleCarts", trace.WithAttributes(attribute.String("cart.idle_for", idleFor.String())))
	defer span.End()

	released, err := s.inner.ReleaseIdleCarts(ctx, idleFor)
	if err != nil {
		return released, s.handleError(ctx, span, err, "failed to release idle carts", slog.Duration("cart.idle_for", idleFor))
	}
	if released > 0 {
		s.metrics.recordIdleCarts(ctx, released)
		s.logInfo(ctx, "idle carts released", slog.Int("carts", released))
	}
	span.SetAttributes(attribute.Int("cart.released", released))
	return released, nil
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

type serviceMetrics struct {
	unitsStocked  metric.Int64Counter
	unitsReserved metric.Int64Counter
	unitsReleased metric.Int64Counter
	checkouts     metric.Int64Counter
	idleCarts     metric.Int64Counter
	queries       metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	unitsStocked, _ := m.Int64Counter("inventory.service.units_stocked", metric.WithDescription("Units added to the ledger"))
	unitsReserved, _ := m.Int64Counter("inventory.service.units_reserved", metric.WithDescription("Units moved from the ledger into carts"))
	unitsReleased, _ := m.Int64Counter("inventory.service.units_released", metric.WithDescription("Units returned from carts to the ledger"))
	checkouts, _ := m.Int64Counter("inventory.service.checkouts", metric.WithDescription("Number of completed checkouts"))
	idleCarts, _ := m.Int64Counter("inventory.service.idle_carts_released", metric.WithDescription("Carts released after going idle"))
	queries, _ := m.Int64Counter("inventory.service.queries", metric.WithDescription("Number of catalog searches"))
	return serviceMetrics{
		unitsStocked:  unitsStocked,
		unitsReserved: unitsReserved,
		unitsReleased: unitsReleased,
		checkouts:     checkouts,
		idleCarts:     idleCarts,
		queries:       queries,
	}
}

func (m serviceMetrics) recordStocked(ctx context.Context, units int) {
	if m.unitsStocked != nil {
		m.unitsStocked.Add(ctx, int64(units))
	}
}

func (m serviceMetrics) recordReserved(ctx context.Context, units int) {
	if m.unitsReserved != nil {
		m.unitsReserved.Add(ctx, int64(units))
	}
}

func (m serviceMetrics) recordReleased(ctx context.Context, units int, reason string) {
	if m.unitsReleased != nil && units > 0 {
		m.unitsReleased.Add(ctx, int64(units), metric.WithAttributes(attribute.String("release.reason", reason)))
	}
}

func (m serviceMetrics) recordCheckout(ctx context.Context) {
	if m.checkouts != nil {
		m.checkouts.Add(ctx, 1)
	}
}

func (m serviceMetrics) recordIdleCarts(ctx context.Context, carts int) {
	if m.idleCarts != nil {
		m.idleCarts.Add(ctx, int64(carts))
	}
}

func (m serviceMetrics) recordQuery(ctx context.Context, kind string) {
	if m.queries != nil {
		m.queries.Add(ctx, 1, metric.WithAttributes(attribute.String("query.kind", kind)))
	}
}

var _ ports.Service = (*Service)(nil)
