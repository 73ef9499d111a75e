package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/Apurer/go-gin-bookstore/internal/domains/catalog/domain"
	"github.com/Apurer/go-gin-bookstore/internal/domains/catalog/ports"
	"github.com/Apurer/go-gin-bookstore/internal/shared/projection"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists books in a SQLite file. The schema is applied by platform/sqlite.Open.
type Repository struct {
	db  *sql.DB
	now func() time.Time
}

// NewRepository wires a SQLite-backed catalog. The caller owns the DB lifecycle.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

// WithClock overrides the time source for deterministic testing.
func (r *Repository) WithClock(now func() time.Time) {
	if now != nil {
		r.now = now
	}
}

type contributorRow struct {
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName"`
}

const selectBook = `SELECT isbn,title,contributors,publisher,genre,price,description,cover_url,published_on,created_at,updated_at FROM books`

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
	rows := make([]contributorRow, 0, len(book.Contributors))
	for _, c := range book.Contributors {
		rows = append(rows, contributorRow{FirstName: c.FirstName, LastName: c.LastName})
	}
	contributors, err := json.Marshal(rows)
	if err != nil {
		return nil, err
	}
	now := r.now().UnixNano()
	_, err = r.db.ExecContext(ctx, `
INSERT INTO books(isbn,title,contributors,publisher,genre,price,description,cover_url,published_on,created_at,updated_at)
VALUES(?,?,?,?,?,?,?,?,?,?,?)
ON CONFLICT(isbn) DO UPDATE SET
  title=excluded.title,
  contributors=excluded.contributors,
  publisher=excluded.publisher,
  genre=excluded.genre,
  price=excluded.price,
  description=excluded.description,
  cover_url=excluded.cover_url,
  published_on=excluded.published_on,
  updated_at=excluded.updated_at`,
		book.ISBN, book.Title, string(contributors), book.Publisher, book.Genre, book.Price.String(),
		book.Description, book.CoverURL, book.PublishedOn, now, now)
	if err != nil {
		return nil, err
	}
	return r.GetByISBN(ctx, book.ISBN)
}

// GetByISBN fetches a book by identifier.
func (r *Repository) GetByISBN(ctx context.Context, isbn string) (*projection.Projection[*domain.Book], error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	proj, err := scanBook(r.db.QueryRowContext(ctx, selectBook+` WHERE isbn=?`, isbn))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ports.ErrNotFound
	}
	return proj, err
}

// Delete removes a book by identifier.
func (r *Repository) Delete(ctx context.Context, isbn string) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM books WHERE isbn=?`, isbn)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ports.ErrNotFound
	}
	return nil
}

// List returns all books in the order they were first saved.
func (r *Repository) List(ctx context.Context) ([]*projection.Projection[*domain.Book], error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, selectBook+` ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*projection.Projection[*domain.Book]
	for rows.Next() {
		proj, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, proj)
	}
	return list, rows.Err()
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("sqlite catalog repository not configured")
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBook(row rowScanner) (*projection.Projection[*domain.Book], error) {
	var (
		book                 domain.Book
		contributors         string
		createdAt, updatedAt int64
	)
	if err := row.Scan(&book.ISBN, &book.Title, &contributors, &book.Publisher, &book.Genre, &book.Price,
		&book.Description, &book.CoverURL, &book.PublishedOn, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	var decoded []contributorRow
	if err := json.Unmarshal([]byte(contributors), &decoded); err != nil {
		return nil, err
	}
	for _, c := range decoded {
		book.Contributors = append(book.Contributors, domain.Contributor{FirstName: c.FirstName, LastName: c.LastName})
	}
	return projection.New(&book, projection.Metadata{
		CreatedAt: time.Unix(0, createdAt).UTC(),
		UpdatedAt: time.Unix(0, updatedAt).UTC(),
	}), nil
}
