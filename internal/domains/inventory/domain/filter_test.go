package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func threeBooks(t *testing.T) []Entry {
	return newLedger(t,
		stocked{mockingbird(), 5},
		stocked{kiteRunner(), 10},
		stocked{watchman(), 2},
	).Entries()
}

func TestFilter(t *testing.T) {
	entries := threeBooks(t)
	maxPrice := decimal.RequireFromString("14.99")

	tests := []struct {
		name     string
		criteria Criteria
		want     []string
	}{
		{name: "no criteria", criteria: Criteria{}, want: []string{mockingbirdISBN, kiteRunnerISBN, watchmanISBN}},
		{name: "empty sets are no constraint", criteria: Criteria{Authors: []string{}, Genres: []string{}}, want: []string{mockingbirdISBN, kiteRunnerISBN, watchmanISBN}},
		{name: "author", criteria: Criteria{Authors: []string{"Lee, Harper"}}, want: []string{mockingbirdISBN, watchmanISBN}},
		{name: "or within facet", criteria: Criteria{Genres: []string{"Classical", "Historical fiction"}}, want: []string{mockingbirdISBN, kiteRunnerISBN, watchmanISBN}},
		{name: "and across facets", criteria: Criteria{Authors: []string{"Lee, Harper"}, Genres: []string{"Historical fiction"}}, want: []string{watchmanISBN}},
		{name: "publisher", criteria: Criteria{Publishers: []string{"Riverhead Books"}}, want: []string{kiteRunnerISBN}},
		{name: "max price inclusive", criteria: Criteria{MaxPrice: &maxPrice}, want: []string{mockingbirdISBN, watchmanISBN}},
		{name: "exact match only", criteria: Criteria{Genres: []string{"classical"}}, want: []string{}},
		{name: "eliminates everything", criteria: Criteria{Authors: []string{"Hosseini, Khaled"}, Publishers: []string{"Harper Collins"}}, want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isbns(Filter(entries, tt.criteria)))
		})
	}
}

func TestCriteriaIsZero(t *testing.T) {
	assert.True(t, Criteria{}.IsZero())
	assert.True(t, Criteria{Authors: []string{}}.IsZero())
	price := decimal.Zero
	assert.False(t, Criteria{MaxPrice: &price}.IsZero())
}

func TestParseSortOrder(t *testing.T) {
	order, err := ParseSortOrder("")
	require.NoError(t, err)
	assert.Equal(t, SortDefault, order)

	order, err = ParseSortOrder(" High_To_Low ")
	require.NoError(t, err)
	assert.Equal(t, SortPriceDescending, order)

	_, err = ParseSortOrder("newest")
	require.ErrorIs(t, err, ErrUnknownSortOrder)
}

func TestSort(t *testing.T) {
	entries := threeBooks(t)

	assert.Equal(t, []string{mockingbirdISBN, watchmanISBN, kiteRunnerISBN}, isbns(Sort(entries, SortPriceAscending)))
	assert.Equal(t, []string{kiteRunnerISBN, watchmanISBN, mockingbirdISBN}, isbns(Sort(entries, SortPriceDescending)))
	assert.Equal(t, []string{watchmanISBN, kiteRunnerISBN, mockingbirdISBN}, isbns(Sort(entries, SortAlphabetical)))
	assert.Equal(t, []string{mockingbirdISBN, kiteRunnerISBN, watchmanISBN}, isbns(Sort(entries, SortDefault)))
	assert.Equal(t, []string{mockingbirdISBN, kiteRunnerISBN, watchmanISBN}, isbns(entries), "input must not be reordered")
}

func TestSort_IsStable(t *testing.T) {
	a := mockingbird()
	b := kiteRunner()
	b.Price = a.Price
	c := watchman()
	c.Price = a.Price
	entries := newLedger(t, stocked{b, 1}, stocked{a, 1}, stocked{c, 1}).Entries()

	assert.Equal(t, []string{kiteRunnerISBN, mockingbirdISBN, watchmanISBN}, isbns(Sort(entries, SortPriceAscending)))
	assert.Equal(t, []string{kiteRunnerISBN, mockingbirdISBN, watchmanISBN}, isbns(Sort(entries, SortPriceDescending)))
}

func TestExtractFacets(t *testing.T) {
	entries := threeBooks(t)
	outOfPrint := mockingbird()
	outOfPrint.ISBN = "out-of-print"
	outOfPrint.Publisher = "Lippincott"
	outOfPrint.Contributors[0].FirstName = "Nelle"
	entries = append(entries, Entry{Book: outOfPrint, Quantity: 0})

	facets := ExtractFacets(entries)

	assert.Equal(t, []string{"Lee, Harper", "Hosseini, Khaled"}, facets.Authors)
	assert.Equal(t, []string{"Classical", "Historical fiction"}, facets.Genres)
	assert.Equal(t, []string{"Grand Central Publishing", "Riverhead Books", "Harper Collins"}, facets.Publishers)
	requireMoney(t, "12.99", facets.MinPrice)
	requireMoney(t, "22.00", facets.MaxPrice)
}

func TestExtractFacets_Empty(t *testing.T) {
	facets := ExtractFacets(nil)
	assert.NotNil(t, facets.Authors)
	assert.Empty(t, facets.Genres)
	assert.True(t, facets.MaxPrice.IsZero())
}

func TestRunQuery_ComposesSearchFilterSort(t *testing.T) {
	ledger := newLedger(t, stocked{mockingbird(), 5}, stocked{kiteRunner(), 10}, stocked{watchman(), 2})

	result := ledger.Query(Query{
		Text:     "fiction",
		Criteria: Criteria{Authors: []string{"Lee, Harper", "Hosseini, Khaled"}},
		Sort:     SortPriceAscending,
	})
	assert.Equal(t, []string{watchmanISBN, kiteRunnerISBN}, isbns(result.Entries))
	assert.Equal(t, []string{"Hosseini, Khaled", "Lee, Harper"}, result.Facets.Authors)
	assert.Equal(t, []string{"Historical fiction"}, result.Facets.Genres)

	narrowed := ledger.Query(Query{Text: "fiction", Criteria: Criteria{Publishers: []string{"Harper Collins"}}})
	assert.Equal(t, []string{watchmanISBN}, isbns(narrowed.Entries))
	assert.Equal(t, result.Facets.Publishers, narrowed.Facets.Publishers, "facets ignore facet filters")
}
