package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	catalog "github.com/Apurer/go-gin-bookstore/internal/domains/catalog/domain"
	"github.com/Apurer/go-gin-bookstore/internal/domains/inventory/domain"
	"github.com/Apurer/go-gin-bookstore/internal/domains/inventory/ports"
)

var _ ports.Store = (*Store)(nil)

// Store persists stock levels, open carts and receipts in a SQLite file.
// The schema is applied by platform/sqlite.Open.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// NewStore wires a SQLite-backed inventory store. The caller owns the DB lifecycle.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// WithClock overrides the time source for deterministic testing.
func (s *Store) WithClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

type contributorRow struct {
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName"`
}

// SaveStockLevel upserts the quantity for isbn; zero or less deletes the row.
func (s *Store) SaveStockLevel(ctx context.Context, isbn string, quantity int) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	if quantity <= 0 {
		_, err := s.db.ExecContext(ctx, `DELETE FROM stock_levels WHERE isbn=?`, isbn)
		return err
	}
	now := s.now().UnixNano()
	_, err := s.db.ExecContext(ctx, `
INSERT INTO stock_levels(isbn,quantity,created_at,updated_at) VALUES(?,?,?,?)
ON CONFLICT(isbn) DO UPDATE SET quantity=excluded.quantity, updated_at=excluded.updated_at`,
		isbn, quantity, now, now)
	return err
}

// ListStockLevels returns levels in the order they were first stocked.
func (s *Store) ListStockLevels(ctx context.Context) ([]ports.StockLevel, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT isbn,quantity,updated_at FROM stock_levels ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var levels []ports.StockLevel
	for rows.Next() {
		var (
			level     ports.StockLevel
			updatedAt int64
		)
		if err := rows.Scan(&level.ISBN, &level.Quantity, &updatedAt); err != nil {
			return nil, err
		}
		level.UpdatedAt = time.Unix(0, updatedAt).UTC()
		levels = append(levels, level)
	}
	return levels, rows.Err()
}

// SaveCart replaces the snapshot for its owner.
func (s *Store) SaveCart(ctx context.Context, snapshot ports.CartSnapshot) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO carts(owner,updated_at) VALUES(?,?)
ON CONFLICT(owner) DO UPDATE SET updated_at=excluded.updated_at`,
			string(snapshot.Owner), snapshot.UpdatedAt.UnixNano()); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM cart_lines WHERE owner=?`, string(snapshot.Owner)); err != nil {
			return err
		}
		for i, line := range snapshot.Lines {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO cart_lines(owner,position,isbn,quantity,unit_price) VALUES(?,?,?,?,?)`,
				string(snapshot.Owner), i, line.ISBN, line.Quantity, line.UnitPrice.String()); err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteCart drops the snapshot for owner; unknown owners are ignored.
func (s *Store) DeleteCart(ctx context.Context, owner domain.ShopperID) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		return deleteCart(ctx, tx, string(owner))
	})
}

// ListCarts returns every open cart ordered by owner.
func (s *Store) ListCarts(ctx context.Context) ([]ports.CartSnapshot, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	// One connection is shared, so cart rows are drained before lines are queried.
	rows, err := s.db.QueryContext(ctx, `SELECT owner,updated_at FROM carts ORDER BY owner`)
	if err != nil {
		return nil, err
	}
	var snapshots []ports.CartSnapshot
	index := map[domain.ShopperID]int{}
	for rows.Next() {
		var (
			owner     string
			updatedAt int64
		)
		if err := rows.Scan(&owner, &updatedAt); err != nil {
			rows.Close()
			return nil, err
		}
		index[domain.ShopperID(owner)] = len(snapshots)
		snapshots = append(snapshots, ports.CartSnapshot{
			Owner:     domain.ShopperID(owner),
			Lines:     []ports.CartLine{},
			UpdatedAt: time.Unix(0, updatedAt).UTC(),
		})
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	lines, err := s.db.QueryContext(ctx, `SELECT owner,isbn,quantity,unit_price FROM cart_lines ORDER BY owner,position`)
	if err != nil {
		return nil, err
	}
	defer lines.Close()
	for lines.Next() {
		var (
			owner string
			line  ports.CartLine
		)
		if err := lines.Scan(&owner, &line.ISBN, &line.Quantity, &line.UnitPrice); err != nil {
			return nil, err
		}
		idx, ok := index[domain.ShopperID(owner)]
		if !ok {
			continue
		}
		snapshots[idx].Lines = append(snapshots[idx].Lines, line)
	}
	return snapshots, lines.Err()
}

// SaveReceipt stores the receipt and drops the owner's open cart in one transaction.
func (s *Store) SaveReceipt(ctx context.Context, receipt domain.Receipt) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	if receipt.ID == "" {
		return errors.New("receipt id is required")
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO receipts(id,owner,quantity,total,checked_out_at) VALUES(?,?,?,?,?)`,
			receipt.ID, string(receipt.Owner), receipt.Quantity, receipt.Total.String(), receipt.CheckedOutAt.UnixNano()); err != nil {
			return err
		}
		for i, line := range receipt.Lines {
			if line.Book == nil {
				continue
			}
			contributors := make([]contributorRow, 0, len(line.Book.Contributors))
			for _, c := range line.Book.Contributors {
				contributors = append(contributors, contributorRow(c))
			}
			encoded, err := json.Marshal(contributors)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO receipt_lines(receipt_id,position,isbn,title,contributors,quantity,unit_price) VALUES(?,?,?,?,?,?,?)`,
				receipt.ID, i, line.Book.ISBN, line.Book.Title, string(encoded), line.Quantity, line.Book.Price.String()); err != nil {
				return err
			}
		}
		return deleteCart(ctx, tx, string(receipt.Owner))
	})
}

// GetReceipt fetches a stored receipt by identifier.
func (s *Store) GetReceipt(ctx context.Context, id string) (*domain.Receipt, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	var (
		receipt      domain.Receipt
		owner        string
		checkedOutAt int64
	)
	err := s.db.QueryRowContext(ctx, `SELECT id,owner,quantity,total,checked_out_at FROM receipts WHERE id=?`, id).
		Scan(&receipt.ID, &owner, &receipt.Quantity, &receipt.Total, &checkedOutAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ports.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	receipt.Owner = domain.ShopperID(owner)
	receipt.CheckedOutAt = time.Unix(0, checkedOutAt).UTC()

	rows, err := s.db.QueryContext(ctx,
		`SELECT isbn,title,contributors,quantity,unit_price FROM receipt_lines WHERE receipt_id=? ORDER BY position`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			book         catalog.Book
			contributors string
			quantity     int
			price        decimal.Decimal
		)
		if err := rows.Scan(&book.ISBN, &book.Title, &contributors, &quantity, &price); err != nil {
			return nil, err
		}
		var decoded []contributorRow
		if err := json.Unmarshal([]byte(contributors), &decoded); err != nil {
			return nil, err
		}
		for _, c := range decoded {
			book.Contributors = append(book.Contributors, catalog.Contributor(c))
		}
		book.Price = price
		receipt.Lines = append(receipt.Lines, domain.Entry{Book: &book, Quantity: quantity, Holder: domain.HolderCart})
	}
	return &receipt, rows.Err()
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (s *Store) ensureDB() error {
	if s == nil || s.db == nil {
		return errors.New("sqlite inventory store not configured")
	}
	return nil
}

func deleteCart(ctx context.Context, tx *sql.Tx, owner string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM cart_lines WHERE owner=?`, owner); err != nil {
		return err
	}
	_, err := tx.ExecContext(ctx, `DELETE FROM carts WHERE owner=?`, owner)
	return err
}
