package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalog "github.com/Apurer/go-gin-bookstore/internal/domains/catalog/domain"
	"github.com/Apurer/go-gin-bookstore/internal/domains/inventory/domain"
	"github.com/Apurer/go-gin-bookstore/internal/domains/inventory/ports"
	platformsqlite "github.com/Apurer/go-gin-bookstore/internal/platform/sqlite"
)

func openDB(t *testing.T) (*Store, *IdempotencyStore) {
	t.Helper()
	db, err := platformsqlite.Open(context.Background(), filepath.Join(t.TempDir(), "inventory.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStore(db), NewIdempotencyStore(db)
}

func TestStore_StockLevelsKeepLedgerOrder(t *testing.T) {
	store, _ := openDB(t)
	ctx := context.Background()

	require.NoError(t, store.SaveStockLevel(ctx, "0446310786", 5))
	require.NoError(t, store.SaveStockLevel(ctx, "1573222453", 10))
	require.NoError(t, store.SaveStockLevel(ctx, "0062409859", 2))
	require.NoError(t, store.SaveStockLevel(ctx, "0446310786", 4))

	levels, err := store.ListStockLevels(ctx)
	require.NoError(t, err)
	require.Len(t, levels, 3)
	assert.Equal(t, "0446310786", levels[0].ISBN)
	assert.Equal(t, 4, levels[0].Quantity)

	require.NoError(t, store.SaveStockLevel(ctx, "0446310786", 0))
	require.NoError(t, store.SaveStockLevel(ctx, "0446310786", 1))
	levels, err = store.ListStockLevels(ctx)
	require.NoError(t, err)
	require.Len(t, levels, 3)
	assert.Equal(t, []string{"1573222453", "0062409859", "0446310786"},
		[]string{levels[0].ISBN, levels[1].ISBN, levels[2].ISBN})
}

func TestStore_CartSnapshots(t *testing.T) {
	store, _ := openDB(t)
	ctx := context.Background()
	touched := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

	bob := ports.CartSnapshot{
		Owner:     "bob",
		Lines:     []ports.CartLine{{ISBN: "0446310786", Quantity: 1, UnitPrice: decimal.RequireFromString("12.99")}},
		UpdatedAt: touched,
	}
	alice := ports.CartSnapshot{
		Owner: "alice",
		Lines: []ports.CartLine{
			{ISBN: "1573222453", Quantity: 2, UnitPrice: decimal.RequireFromString("22.00")},
			{ISBN: "0446310786", Quantity: 3, UnitPrice: decimal.RequireFromString("12.99")},
		},
		UpdatedAt: touched.Add(time.Minute),
	}
	require.NoError(t, store.SaveCart(ctx, bob))
	require.NoError(t, store.SaveCart(ctx, alice))

	alice.Lines = alice.Lines[:1]
	require.NoError(t, store.SaveCart(ctx, alice))

	carts, err := store.ListCarts(ctx)
	require.NoError(t, err)
	require.Len(t, carts, 2)
	assert.Equal(t, domain.ShopperID("alice"), carts[0].Owner)
	require.Len(t, carts[0].Lines, 1)
	assert.Equal(t, "1573222453", carts[0].Lines[0].ISBN)
	assert.True(t, decimal.RequireFromString("22").Equal(carts[0].Lines[0].UnitPrice))
	assert.True(t, touched.Add(time.Minute).Equal(carts[0].UpdatedAt))
	assert.True(t, touched.Equal(carts[1].UpdatedAt))

	require.NoError(t, store.DeleteCart(ctx, "bob"))
	require.NoError(t, store.DeleteCart(ctx, "nobody"))
	carts, err = store.ListCarts(ctx)
	require.NoError(t, err)
	require.Len(t, carts, 1)
}

func TestStore_ReceiptDropsCart(t *testing.T) {
	store, _ := openDB(t)
	ctx := context.Background()
	checkedOut := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, store.SaveCart(ctx, ports.CartSnapshot{
		Owner:     "alice",
		Lines:     []ports.CartLine{{ISBN: "1573222453", Quantity: 2, UnitPrice: decimal.RequireFromString("22.00")}},
		UpdatedAt: checkedOut,
	}))

	receipt := domain.Receipt{
		ID:    "receipt-1",
		Owner: "alice",
		Lines: []domain.Entry{{
			Book: &catalog.Book{
				ISBN:         "1573222453",
				Title:        "The Kite Runner",
				Contributors: []catalog.Contributor{{FirstName: "Khaled", LastName: "Hosseini"}},
				Price:        decimal.RequireFromString("22.00"),
			},
			Quantity: 2,
			Holder:   domain.HolderCart,
		}},
		Quantity:     2,
		Total:        decimal.RequireFromString("44.00"),
		CheckedOutAt: checkedOut,
	}
	require.NoError(t, store.SaveReceipt(ctx, receipt))

	carts, err := store.ListCarts(ctx)
	require.NoError(t, err)
	assert.Empty(t, carts)

	stored, err := store.GetReceipt(ctx, "receipt-1")
	require.NoError(t, err)
	assert.Equal(t, domain.ShopperID("alice"), stored.Owner)
	assert.True(t, checkedOut.Equal(stored.CheckedOutAt))
	assert.True(t, decimal.RequireFromString("44").Equal(stored.Total))
	require.Len(t, stored.Lines, 1)
	assert.Equal(t, "The Kite Runner", stored.Lines[0].Book.Title)
	assert.Equal(t, []string{"Hosseini, Khaled"}, stored.Lines[0].Book.ContributorNames())

	require.Error(t, store.SaveReceipt(ctx, receipt))

	_, err = store.GetReceipt(ctx, "missing")
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestIdempotencyStore(t *testing.T) {
	_, store := openDB(t)
	ctx := context.Background()

	missing, err := store.Get(ctx, "intake-1")
	require.NoError(t, err)
	assert.Nil(t, missing)

	saved, err := store.Save(ctx, ports.IdempotencyRecord{Key: "intake-1", RequestHash: "abc", ISBN: "1573222453"})
	require.NoError(t, err)
	assert.False(t, saved.CreatedAt.IsZero())

	again, err := store.Save(ctx, ports.IdempotencyRecord{Key: "intake-1", RequestHash: "abc", ISBN: "1573222453"})
	require.NoError(t, err)
	assert.Equal(t, "abc", again.RequestHash)

	conflict, err := store.Save(ctx, ports.IdempotencyRecord{Key: "intake-1", RequestHash: "def", ISBN: "1573222453"})
	assert.ErrorIs(t, err, ports.ErrIdempotencyConflict)
	assert.Equal(t, "abc", conflict.RequestHash)
}
