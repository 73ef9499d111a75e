package domain

import "github.com/shopspring/decimal"

// Criteria narrows entries by facet. Facets combine with AND; values inside
// one facet combine with OR. A nil or empty facet places no constraint.
type Criteria struct {
	Authors    []string
	Genres     []string
	Publishers []string
	MaxPrice   *decimal.Decimal
}

// IsZero reports whether the criteria would keep every entry.
func (c Criteria) IsZero() bool {
	return len(c.Authors) == 0 && len(c.Genres) == 0 && len(c.Publishers) == 0 && c.MaxPrice == nil
}

// Filter keeps the entries matching c, preserving order.
func Filter(entries []Entry, c Criteria) []Entry {
	authors := toSet(c.Authors)
	genres := toSet(c.Genres)
	publishers := toSet(c.Publishers)

	out := make([]Entry, 0, len(entries))
	for _, entry := range entries {
		book := entry.Book
		if book == nil {
			continue
		}
		if authors != nil && !anyIn(authors, book.ContributorNames()) {
			continue
		}
		if genres != nil && !genres[book.Genre] {
			continue
		}
		if publishers != nil && !publishers[book.Publisher] {
			continue
		}
		if c.MaxPrice != nil && book.Price.GreaterThan(*c.MaxPrice) {
			continue
		}
		out = append(out, entry)
	}
	return out
}

func toSet(values []string) map[string]bool {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}

func anyIn(set map[string]bool, values []string) bool {
	for _, v := range values {
		if set[v] {
			return true
		}
	}
	return false
}
