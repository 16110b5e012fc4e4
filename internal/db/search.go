package db

import "github.com/veridian-kb/searchd/internal/domain/search/filter"

// KNNQuery is the input for vector similarity search.
type KNNQuery struct {
	IndexName    string
	Filters      filter.Filters
	Vector       []float32
	K            int
	ReturnFields []string
}

// TextQuery is the input for BM25 text search. Tokens are matched against all
// TEXT fields of the index; per-field weights come from the index schema.
type TextQuery struct {
	IndexName    string
	Tokens       []string
	Filters      filter.Filters
	TopK         int
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}
