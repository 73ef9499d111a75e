package migrations

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Run applies the schema for the bounded contexts. Adapters never automigrate on their own.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(
		&bookRecord{},
		&stockLevelRecord{},
		&cartRecord{},
		&receiptRecord{},
		&idempotencyRecord{},
	)
}

// Book schema mirrors the catalog Postgres adapter.
type bookRecord struct {
	ISBN                  string          `gorm:"primaryKey;column:isbn;size:32"`
	Title                 string          `gorm:"column:title;not null"`
	ContributorFirstNames pq.StringArray  `gorm:"column:contributor_first_names;type:text[]"`
	ContributorLastNames  pq.StringArray  `gorm:"column:contributor_last_names;type:text[]"`
	Publisher             string          `gorm:"column:publisher;index"`
	Genre                 string          `gorm:"column:genre;index"`
	Price                 decimal.Decimal `gorm:"column:price;type:numeric(12,2)"`
	Description           string          `gorm:"column:description"`
	CoverURL              string          `gorm:"column:cover_url"`
	PublishedOn           string          `gorm:"column:published_on"`
	CreatedAt             time.Time       `gorm:"column:created_at;index"`
	UpdatedAt             time.Time       `gorm:"column:updated_at"`
}

func (bookRecord) TableName() string { return "books" }

// Stock level schema mirrors the inventory Postgres store.
type stockLevelRecord struct {
	ISBN      string    `gorm:"primaryKey;column:isbn;size:32"`
	Quantity  int       `gorm:"column:quantity;check:chk_stock_levels_quantity,quantity > 0"`
	CreatedAt time.Time `gorm:"column:created_at;index"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (stockLevelRecord) TableName() string { return "stock_levels" }

// Cart schema keeps lines as a JSON document per shopper.
type cartRecord struct {
	Owner     string    `gorm:"primaryKey;column:owner;size:255"`
	Lines     []byte    `gorm:"column:lines;type:jsonb"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime:false;index"`
}

func (cartRecord) TableName() string { return "carts" }

type receiptRecord struct {
	ID           string          `gorm:"primaryKey;column:id;size:64"`
	Owner        string          `gorm:"column:owner;size:255;index"`
	Lines        []byte          `gorm:"column:lines;type:jsonb"`
	Quantity     int             `gorm:"column:quantity"`
	Total        decimal.Decimal `gorm:"column:total;type:numeric(14,2)"`
	CheckedOutAt time.Time       `gorm:"column:checked_out_at;index"`
}

func (receiptRecord) TableName() string { return "receipts" }

// Idempotency schema mirrors the inventory Postgres idempotency store.
type idempotencyRecord struct {
	Key         string    `gorm:"primaryKey;column:key;size:255"`
	RequestHash string    `gorm:"column:request_hash;size:128"`
	ISBN        string    `gorm:"column:isbn;size:32"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (idempotencyRecord) TableName() string { return "stock_idempotency_keys" }
