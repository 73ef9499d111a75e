package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalog "github.com/Apurer/go-gin-bookstore/internal/domains/catalog/domain"
)

func TestLedgerAddItem_RejectsNonPositiveQuantity(t *testing.T) {
	ledger := NewLedger()
	require.ErrorIs(t, ledger.AddItem(mockingbird(), 0), ErrInvalidQuantity)
	require.ErrorIs(t, ledger.AddItem(mockingbird(), -2), ErrInvalidQuantity)
	assert.Zero(t, ledger.Len())
}

func TestLedgerAddItem_RejectsNilAndInvalidBooks(t *testing.T) {
	ledger := NewLedger()
	require.ErrorIs(t, ledger.AddItem(nil, 1), ErrNilItem)
	require.ErrorIs(t, ledger.AddItem(&catalog.Book{ISBN: "1"}, 1), catalog.ErrInvalidTitle)
	assert.Zero(t, ledger.Len())
}

func TestLedgerAddItem_MergesByISBNAndKeepsInsertionOrder(t *testing.T) {
	ledger := NewLedger()
	require.NoError(t, ledger.AddItem(mockingbird(), 5))
	require.NoError(t, ledger.AddItem(kiteRunner(), 10))
	require.NoError(t, ledger.AddItem(mockingbird(), 3))

	entries := ledger.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, []string{mockingbirdISBN, kiteRunnerISBN}, isbns(entries))
	assert.Equal(t, 8, entries[0].Quantity)
	assert.Equal(t, HolderLedger, entries[0].Holder)
}

func TestLedgerReduce(t *testing.T) {
	ledger := newLedger(t, stocked{mockingbird(), 5})

	require.ErrorIs(t, ledger.Reduce(mockingbirdISBN, 0), ErrInvalidQuantity)
	require.ErrorIs(t, ledger.Reduce(mockingbirdISBN, -1), ErrInvalidQuantity)
	require.ErrorIs(t, ledger.Reduce(kiteRunnerISBN, 1), ErrNotStocked)
	require.ErrorIs(t, ledger.Reduce(mockingbirdISBN, 6), ErrInsufficientStock)
	assert.Equal(t, 5, ledger.Quantity(mockingbirdISBN))

	require.NoError(t, ledger.Reduce(mockingbirdISBN, 2))
	assert.Equal(t, 3, ledger.Quantity(mockingbirdISBN))

	require.NoError(t, ledger.Reduce(mockingbirdISBN, 3))
	_, found := ledger.Find(mockingbirdISBN)
	assert.False(t, found, "entry reaching zero must be removed")
	assert.Zero(t, ledger.Len())
}

func TestLedgerPutBack(t *testing.T) {
	ledger := NewLedger()
	require.NoError(t, ledger.AddItem(kiteRunner(), 1))

	require.ErrorIs(t, ledger.PutBack(kiteRunnerISBN, 0), ErrInvalidQuantity)
	require.ErrorIs(t, ledger.PutBack(mockingbirdISBN, 1), ErrNotStocked)
	_, found := ledger.Find(mockingbirdISBN)
	assert.False(t, found, "put back never creates entries")

	require.NoError(t, ledger.PutBack(kiteRunnerISBN, 4))
	assert.Equal(t, 5, ledger.Quantity(kiteRunnerISBN))
}

func TestLedgerFind_ReturnsSnapshot(t *testing.T) {
	ledger := NewLedger()
	require.NoError(t, ledger.AddItem(kiteRunner(), 2))

	entry, found := ledger.Find(kiteRunnerISBN)
	require.True(t, found)
	entry.Book.Title = "mutated"
	entry.Quantity = 99

	again, _ := ledger.Find(kiteRunnerISBN)
	assert.Equal(t, "The Kite Runner", again.Book.Title)
	assert.Equal(t, 2, again.Quantity)
}

func TestLedgerAddItem_CopiesBook(t *testing.T) {
	book := mockingbird()
	ledger := NewLedger()
	require.NoError(t, ledger.AddItem(book, 1))
	book.Title = "changed after stocking"

	entry, _ := ledger.Find(mockingbirdISBN)
	assert.Equal(t, "To Kill a Mockingbird", entry.Book.Title)
}

func TestLedgerAddItem_RefreshesDetailsOfStockedEntry(t *testing.T) {
	ledger := newLedger(t, stocked{mockingbird(), 5}, stocked{kiteRunner(), 10})

	reissued := mockingbird()
	reissued.Title = "To Kill a Mockingbird (Anniversary)"
	reissued.Price = decimal.RequireFromString("20.00")
	require.NoError(t, ledger.AddItem(reissued, 2))

	entry, found := ledger.Find(mockingbirdISBN)
	require.True(t, found)
	assert.Equal(t, 7, entry.Quantity)
	assert.Equal(t, "To Kill a Mockingbird (Anniversary)", entry.Book.Title)
	requireMoney(t, "20.00", entry.Book.Price)
	assert.Equal(t, []string{mockingbirdISBN, kiteRunnerISBN}, isbns(ledger.Entries()))
	assert.Equal(t, []string{mockingbirdISBN}, isbns(ledger.Search("anniversary")))
}

func TestLedgerRestore_KeepsSnapshotOrder(t *testing.T) {
	ledger := newLedger(t, stocked{mockingbird(), 1}, stocked{kiteRunner(), 10})
	snapshot := ledger.Entries()

	require.NoError(t, ledger.Reduce(mockingbirdISBN, 1))
	require.NoError(t, ledger.AddItem(mockingbird(), 1))
	require.Equal(t, []string{kiteRunnerISBN, mockingbirdISBN}, isbns(ledger.Entries()))

	ledger.Restore(snapshot)
	assert.Equal(t, []string{mockingbirdISBN, kiteRunnerISBN}, isbns(ledger.Entries()))
	assert.Equal(t, 1, ledger.Quantity(mockingbirdISBN))

	snapshot[1].Quantity = 99
	assert.Equal(t, 10, ledger.Quantity(kiteRunnerISBN))
}
