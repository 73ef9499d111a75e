package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/go-gin-bookstore/internal/domains/catalog/domain"
	"github.com/Apurer/go-gin-bookstore/internal/domains/catalog/ports"
	"github.com/Apurer/go-gin-bookstore/internal/shared/projection"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists books in PostgreSQL using GORM-mapped columns.
// The schema is owned by platform/migrations.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed catalog. The caller owns the DB lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type bookRecord struct {
	ISBN                  string          `gorm:"primaryKey;column:isbn;size:32"`
	Title                 string          `gorm:"column:title"`
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

func newBookRecord(b *domain.Book) bookRecord {
	rec := bookRecord{
		ISBN:                  b.ISBN,
		Title:                 b.Title,
		ContributorFirstNames: pq.StringArray{},
		ContributorLastNames:  pq.StringArray{},
		Publisher:             b.Publisher,
		Genre:                 b.Genre,
		Price:                 b.Price,
		Description:           b.Description,
		CoverURL:              b.CoverURL,
		PublishedOn:           b.PublishedOn,
	}
	for _, c := range b.Contributors {
		rec.ContributorFirstNames = append(rec.ContributorFirstNames, c.FirstName)
		rec.ContributorLastNames = append(rec.ContributorLastNames, c.LastName)
	}
	return rec
}

// Save inserts or updates a book.
func (r *Repository) Save(ctx context.Context, book *domain.Book) (*projection.Projection[*domain.Book], error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if book == nil {
		return nil, errors.New("cannot save nil book")
	}
	if err := book.Validate(); err != nil {
		return nil, err
	}
	record := newBookRecord(book)
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "isbn"}},
			DoUpdates: clause.Assignments(map[string]any{
				"title":                   record.Title,
				"contributor_first_names": record.ContributorFirstNames,
				"contributor_last_names":  record.ContributorLastNames,
				"publisher":               record.Publisher,
				"genre":                   record.Genre,
				"price":                   record.Price,
				"description":             record.Description,
				"cover_url":               record.CoverURL,
				"published_on":            record.PublishedOn,
				"updated_at":              gorm.Expr("NOW()"),
			}),
		}).Create(&record).Error; err != nil {
		return nil, err
	}
	return r.GetByISBN(ctx, book.ISBN)
}

// GetByISBN fetches a book by identifier.
func (r *Repository) GetByISBN(ctx context.Context, isbn string) (*projection.Projection[*domain.Book], error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record bookRecord
	if err := r.db.WithContext(ctx).First(&record, "isbn = ?", isbn).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toProjection(), nil
}

// Delete removes a book by identifier.
func (r *Repository) Delete(ctx context.Context, isbn string) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Delete(&bookRecord{}, "isbn = ?", isbn)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

// List returns all books in the order they were first saved.
func (r *Repository) List(ctx context.Context) ([]*projection.Projection[*domain.Book], error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []bookRecord
	if err := r.db.WithContext(ctx).Order("created_at ASC").Order("isbn ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	list := make([]*projection.Projection[*domain.Book], 0, len(records))
	for i := range records {
		list = append(list, records[i].toProjection())
	}
	return list, nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres catalog repository not configured")
	}
	return nil
}

func (r bookRecord) toProjection() *projection.Projection[*domain.Book] {
	book := &domain.Book{
		ISBN:        r.ISBN,
		Title:       r.Title,
		Publisher:   r.Publisher,
		Genre:       r.Genre,
		Price:       r.Price,
		Description: r.Description,
		CoverURL:    r.CoverURL,
		PublishedOn: r.PublishedOn,
	}
	for i, last := range r.ContributorLastNames {
		first := ""
		if i < len(r.ContributorFirstNames) {
			first = r.ContributorFirstNames[i]
		}
		book.Contributors = append(book.Contributors, domain.Contributor{FirstName: first, LastName: last})
	}
	return projection.New(book, projection.Metadata{CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt})
}
