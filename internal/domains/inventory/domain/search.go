package domain

import (
	"strings"

	catalog "github.com/Apurer/go-gin-bookstore/internal/domains/catalog/domain"
)

// Search returns the entries whose text matches, ranked in two tiers.
//
// Tier one holds entries matching on title, genre, publisher or a contributor's
// full name; tier two holds the remaining entries matching on description.
// Matching is case-insensitive substring containment and each tier keeps the
// input order. Blank text returns the input unchanged; any other text is
// matched as given, surrounding spaces included.
func Search(entries []Entry, text string) []Entry {
	if strings.TrimSpace(text) == "" {
		return append([]Entry(nil), entries...)
	}
	needle := strings.ToLower(text)
	primary := make([]Entry, 0, len(entries))
	var secondary []Entry
	for _, entry := range entries {
		if entry.Book == nil {
			continue
		}
		switch {
		case matchesMetadata(entry.Book, needle):
			primary = append(primary, entry)
		case containsFold(entry.Book.Description, needle):
			secondary = append(secondary, entry)
		}
	}
	return append(primary, secondary...)
}

func matchesMetadata(book *catalog.Book, needle string) bool {
	if containsFold(book.Title, needle) || containsFold(book.Genre, needle) || containsFold(book.Publisher, needle) {
		return true
	}
	for _, contributor := range book.Contributors {
		if containsFold(contributor.FullName(), needle) {
			return true
		}
	}
	return false
}

// containsFold expects needle already lower-cased.
func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), needle)
}
