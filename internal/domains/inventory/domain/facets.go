package domain

import "github.com/shopspring/decimal"

// Facets lists the distinct values a filter UI can offer, plus the price bounds.
type Facets struct {
	Authors    []string
	Genres     []string
	Publishers []string
	MinPrice   decimal.Decimal
	MaxPrice   decimal.Decimal
}

// ExtractFacets collects distinct facet values in first-seen order.
// Out-of-stock entries contribute nothing.
func ExtractFacets(entries []Entry) Facets {
	facets := Facets{Authors: []string{}, Genres: []string{}, Publishers: []string{}}
	seenAuthors := map[string]bool{}
	seenGenres := map[string]bool{}
	seenPublishers := map[string]bool{}
	priced := false
	for _, entry := range entries {
		if entry.Book == nil || entry.Quantity <= 0 {
			continue
		}
		book := entry.Book
		for _, name := range book.ContributorNames() {
			facets.Authors = appendDistinct(facets.Authors, seenAuthors, name)
		}
		facets.Genres = appendDistinct(facets.Genres, seenGenres, book.Genre)
		facets.Publishers = appendDistinct(facets.Publishers, seenPublishers, book.Publisher)
		if !priced || book.Price.LessThan(facets.MinPrice) {
			facets.MinPrice = book.Price
		}
		if !priced || book.Price.GreaterThan(facets.MaxPrice) {
			facets.MaxPrice = book.Price
		}
		priced = true
	}
	return facets
}

func appendDistinct(values []string, seen map[string]bool, value string) []string {
	if value == "" || seen[value] {
		return values
	}
	seen[value] = true
	return append(values, value)
}
