package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	catalog "github.com/Apurer/go-gin-bookstore/internal/domains/catalog/domain"
)

const (
	mockingbirdISBN = "0446310786"
	kiteRunnerISBN  = "1573222453"
	watchmanISBN    = "978-0-06-240985-0"
)

func mockingbird() *catalog.Book {
	return &catalog.Book{
		ISBN:         mockingbirdISBN,
		Title:        "To Kill a Mockingbird",
		Contributors: []catalog.Contributor{{FirstName: "Harper", LastName: "Lee"}},
		Publisher:    "Grand Central Publishing",
		Genre:        "Classical",
		Price:        decimal.RequireFromString("12.99"),
		Description: "Compassionate, dramatic, and deeply moving, To Kill A Mockingbird takes readers to the roots of human behavior - " +
			"to innocence and experience, kindness and cruelty, love and hatred, humor and pathos.",
		PublishedOn: "11/07/1960",
	}
}

func kiteRunner() *catalog.Book {
	return &catalog.Book{
		ISBN:         kiteRunnerISBN,
		Title:        "The Kite Runner",
		Contributors: []catalog.Contributor{{FirstName: "Khaled", LastName: "Hosseini"}},
		Publisher:    "Riverhead Books",
		Genre:        "Historical fiction",
		Price:        decimal.RequireFromString("22.00"),
		Description:  "The Kite Runner tells the story of Amir, a young boy from the Wazir Akbar Khan district of Kabul",
		PublishedOn:  "29/05/2003",
	}
}

func watchman() *catalog.Book {
	return &catalog.Book{
		ISBN:         watchmanISBN,
		Title:        "Go Set a Watchman",
		Contributors: []catalog.Contributor{{FirstName: "Harper", LastName: "Lee"}},
		Publisher:    "Harper Collins",
		Genre:        "Historical fiction",
		Price:        decimal.RequireFromString("14.99"),
		Description:  "Maycomb, Alabama. Twenty-six-year-old Jean Louise Finch returns home from New York City.",
	}
}

type stocked struct {
	book *catalog.Book
	qty  int
}

func newLedger(t *testing.T, items ...stocked) *Ledger {
	t.Helper()
	ledger := NewLedger()
	for _, item := range items {
		require.NoError(t, ledger.AddItem(item.book, item.qty))
	}
	return ledger
}

func isbns(entries []Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.ISBN())
	}
	return out
}

func requireMoney(t require.TestingT, expected string, actual decimal.Decimal) {
	require.True(t, decimal.RequireFromString(expected).Equal(actual), "expected %s, got %s", expected, actual.StringFixed(2))
}
