package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	catalog "github.com/Apurer/go-gin-bookstore/internal/domains/catalog/domain"
	"github.com/Apurer/go-gin-bookstore/internal/domains/inventory/domain"
	"github.com/Apurer/go-gin-bookstore/internal/domains/inventory/ports"
)

var _ ports.Store = (*Store)(nil)

// Store persists stock levels, open carts and receipts in PostgreSQL using GORM.
// The schema is owned by platform/migrations.
type Store struct {
	db *gorm.DB
}

// NewStore wires a PostgreSQL-backed inventory store. Caller manages DB lifecycle.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

type stockLevelRecord struct {
	ISBN      string    `gorm:"primaryKey;column:isbn;size:32"`
	Quantity  int       `gorm:"column:quantity"`
	CreatedAt time.Time `gorm:"column:created_at;index"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (stockLevelRecord) TableName() string { return "stock_levels" }

type cartLineRecord struct {
	ISBN      string          `json:"isbn"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// cartRecord keeps updated_at under caller control; it drives idle-cart release.
type cartRecord struct {
	Owner     string           `gorm:"primaryKey;column:owner;size:255"`
	Lines     []cartLineRecord `gorm:"column:lines;type:jsonb;serializer:json"`
	UpdatedAt time.Time        `gorm:"column:updated_at;autoUpdateTime:false;index"`
}

func (cartRecord) TableName() string { return "carts" }

type contributorRecord struct {
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName"`
}

type receiptLineRecord struct {
	ISBN         string              `json:"isbn"`
	Title        string              `json:"title"`
	Contributors []contributorRecord `json:"contributors,omitempty"`
	Quantity     int                 `json:"quantity"`
	UnitPrice    decimal.Decimal     `json:"unitPrice"`
}

type receiptRecord struct {
	ID           string              `gorm:"primaryKey;column:id;size:64"`
	Owner        string              `gorm:"column:owner;size:255;index"`
	Lines        []receiptLineRecord `gorm:"column:lines;type:jsonb;serializer:json"`
	Quantity     int                 `gorm:"column:quantity"`
	Total        decimal.Decimal     `gorm:"column:total;type:numeric(14,2)"`
	CheckedOutAt time.Time           `gorm:"column:checked_out_at;index"`
}

func (receiptRecord) TableName() string { return "receipts" }

// SaveStockLevel upserts the quantity for isbn; zero or less deletes the row.
func (s *Store) SaveStockLevel(ctx context.Context, isbn string, quantity int) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	if quantity <= 0 {
		return s.db.WithContext(ctx).Delete(&stockLevelRecord{}, "isbn = ?", isbn).Error
	}
	record := stockLevelRecord{ISBN: isbn, Quantity: quantity}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "isbn"}},
			DoUpdates: clause.Assignments(map[string]any{
				"quantity":   record.Quantity,
				"updated_at": gorm.Expr("NOW()"),
			}),
		}).Create(&record).Error
}

// ListStockLevels returns levels in the order they were first stocked.
func (s *Store) ListStockLevels(ctx context.Context) ([]ports.StockLevel, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	var records []stockLevelRecord
	if err := s.db.WithContext(ctx).Order("created_at ASC").Order("isbn ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	levels := make([]ports.StockLevel, 0, len(records))
	for _, rec := range records {
		levels = append(levels, ports.StockLevel{ISBN: rec.ISBN, Quantity: rec.Quantity, UpdatedAt: rec.UpdatedAt})
	}
	return levels, nil
}

// SaveCart replaces the snapshot for its owner.
func (s *Store) SaveCart(ctx context.Context, snapshot ports.CartSnapshot) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	record := toCartRecord(snapshot)
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "owner"}},
			DoUpdates: clause.AssignmentColumns([]string{"lines", "updated_at"}),
		}).Create(&record).Error
}

// DeleteCart drops the snapshot for owner; unknown owners are ignored.
func (s *Store) DeleteCart(ctx context.Context, owner domain.ShopperID) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Delete(&cartRecord{}, "owner = ?", string(owner)).Error
}

// ListCarts returns every open cart ordered by owner.
func (s *Store) ListCarts(ctx context.Context) ([]ports.CartSnapshot, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	var records []cartRecord
	if err := s.db.WithContext(ctx).Order("owner ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	snapshots := make([]ports.CartSnapshot, 0, len(records))
	for _, rec := range records {
		snapshots = append(snapshots, rec.toSnapshot())
	}
	return snapshots, nil
}

// SaveReceipt stores the receipt and drops the owner's open cart in one transaction.
func (s *Store) SaveReceipt(ctx context.Context, receipt domain.Receipt) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	if receipt.ID == "" {
		return errors.New("receipt id is required")
	}
	record := toReceiptRecord(receipt)
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
		return tx.Delete(&cartRecord{}, "owner = ?", record.Owner).Error
	})
}

// GetReceipt fetches a stored receipt by identifier.
func (s *Store) GetReceipt(ctx context.Context, id string) (*domain.Receipt, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	var record receiptRecord
	if err := s.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	receipt := record.toDomain()
	return &receipt, nil
}

func (s *Store) ensureDB() error {
	if s == nil || s.db == nil {
		return errors.New("postgres inventory store not configured")
	}
	return nil
}

func toCartRecord(snapshot ports.CartSnapshot) cartRecord {
	rec := cartRecord{
		Owner:     string(snapshot.Owner),
		Lines:     make([]cartLineRecord, 0, len(snapshot.Lines)),
		UpdatedAt: snapshot.UpdatedAt.UTC(),
	}
	for _, line := range snapshot.Lines {
		rec.Lines = append(rec.Lines, cartLineRecord(line))
	}
	return rec
}

func (r cartRecord) toSnapshot() ports.CartSnapshot {
	snapshot := ports.CartSnapshot{
		Owner:     domain.ShopperID(r.Owner),
		Lines:     make([]ports.CartLine, 0, len(r.Lines)),
		UpdatedAt: r.UpdatedAt,
	}
	for _, line := range r.Lines {
		snapshot.Lines = append(snapshot.Lines, ports.CartLine(line))
	}
	return snapshot
}

func toReceiptRecord(receipt domain.Receipt) receiptRecord {
	rec := receiptRecord{
		ID:           receipt.ID,
		Owner:        string(receipt.Owner),
		Lines:        make([]receiptLineRecord, 0, len(receipt.Lines)),
		Quantity:     receipt.Quantity,
		Total:        receipt.Total,
		CheckedOutAt: receipt.CheckedOutAt.UTC(),
	}
	for _, line := range receipt.Lines {
		if line.Book == nil {
			continue
		}
		out := receiptLineRecord{
			ISBN:      line.Book.ISBN,
			Title:     line.Book.Title,
			Quantity:  line.Quantity,
			UnitPrice: line.Book.Price,
		}
		for _, c := range line.Book.Contributors {
			out.Contributors = append(out.Contributors, contributorRecord(c))
		}
		rec.Lines = append(rec.Lines, out)
	}
	return rec
}

func (r receiptRecord) toDomain() domain.Receipt {
	receipt := domain.Receipt{
		ID:           r.ID,
		Owner:        domain.ShopperID(r.Owner),
		Lines:        make([]domain.Entry, 0, len(r.Lines)),
		Quantity:     r.Quantity,
		Total:        r.Total,
		CheckedOutAt: r.CheckedOutAt,
	}
	for _, line := range r.Lines {
		book := &catalog.Book{ISBN: line.ISBN, Title: line.Title, Price: line.UnitPrice}
		for _, c := range line.Contributors {
			book.Contributors = append(book.Contributors, catalog.Contributor(c))
		}
		receipt.Lines = append(receipt.Lines, domain.Entry{Book: book, Quantity: line.Quantity, Holder: domain.HolderCart})
	}
	return receipt
}
