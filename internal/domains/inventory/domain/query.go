package domain

// Query is the composed catalog query: text search, facet filter, then sort.
type Query struct {
	Text     string
	Criteria Criteria
	Sort     SortOrder
}

// Result carries the ordered entries and the facets of the text-search match set.
type Result struct {
	Entries []Entry
	Facets  Facets
}

// RunQuery evaluates q over entries. Facets describe what the text search
// found before facet filtering so a filter UI can widen again.
func RunQuery(entries []Entry, q Query) Result {
	found := Search(entries, q.Text)
	return Result{
		Entries: Sort(Filter(found, q.Criteria), q.Sort),
		Facets:  ExtractFacets(found),
	}
}
