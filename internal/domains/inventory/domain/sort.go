package domain

import (
	"slices"
	"strings"
)

// SortOrder selects the presentation order of a query result.
type SortOrder string

const (
	// SortDefault keeps the relevance order produced by Search.
	SortDefault         SortOrder = "default"
	SortPriceAscending  SortOrder = "low_to_high"
	SortPriceDescending SortOrder = "high_to_low"
	SortAlphabetical    SortOrder = "alphabetical"
)

// ParseSortOrder maps a label onto a SortOrder; blank means SortDefault.
func ParseSortOrder(raw string) (SortOrder, error) {
	switch order := SortOrder(strings.ToLower(strings.TrimSpace(raw))); order {
	case "":
		return SortDefault, nil
	case SortDefault, SortPriceAscending, SortPriceDescending, SortAlphabetical:
		return order, nil
	default:
		return "", ErrUnknownSortOrder
	}
}

// Sort returns a stably reordered copy of entries.
func Sort(entries []Entry, order SortOrder) []Entry {
	out := append([]Entry(nil), entries...)
	switch order {
	case SortPriceAscending:
		slices.SortStableFunc(out, func(a, b Entry) int { return a.Book.Price.Cmp(b.Book.Price) })
	case SortPriceDescending:
		slices.SortStableFunc(out, func(a, b Entry) int { return b.Book.Price.Cmp(a.Book.Price) })
	case SortAlphabetical:
		slices.SortStableFunc(out, func(a, b Entry) int {
			return strings.Compare(strings.ToLower(a.Book.Title), strings.ToLower(b.Book.Title))
		})
	}
	return out
}
