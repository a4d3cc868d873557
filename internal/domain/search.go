package domain

// EnhancedParams is the search intent extracted from a model reply.
// Extraction defaults every field, so consumers never branch on key
// existence: CorrectedQuery is "" and the slices are empty when the
// model omitted them.
type EnhancedParams struct {
	CorrectedQuery string
	Keywords       []string
	Categories     []string
	// Explanation is model reasoning kept for diagnostics only. It never
	// influences ranking.
	Explanation string
}

// IsEmpty reports whether the params carry nothing usable for a search.
func (p EnhancedParams) IsEmpty() bool {
	return p.CorrectedQuery == "" && len(p.Keywords) == 0 && len(p.Categories) == 0
}

// SearchResult is the outcome of one search request.
type SearchResult struct {
	Products   []Product
	Total      int
	SearchTerm string
	// CorrectedTerm is the model's spelling suggestion, set only when it
	// differs from the original term.
	CorrectedTerm string
	// Fallback marks results produced by plain text search after the AI
	// path failed.
	Fallback bool
}
