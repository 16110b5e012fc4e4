package search

import (
	"context"

	"github.com/veridian-kb/searchd/internal/domain"
	"github.com/veridian-kb/searchd/internal/domain/search/candidate"
	"github.com/veridian-kb/searchd/internal/domain/search/filter"
	"github.com/veridian-kb/searchd/internal/domain/search/fused"
	"github.com/veridian-kb/searchd/internal/domain/search/query"
)

// QueryPreparer normalizes, tokenizes, and embeds raw query text.
type QueryPreparer interface {
	// NormalizeText returns the canonical form of raw without embedding it.
	NormalizeText(raw string) string
	Prepare(
		ctx context.Context,
		raw string,
		identity domain.Identity,
		filters filter.Filters,
		topK int,
	) (query.Query, error)
}

// SemanticSearcher runs the vector retrieval leg.
type SemanticSearcher interface {
	Search(ctx context.Context, vector []float32, filters filter.Filters, limit int) (
		[]candidate.Candidate, error)
}

// KeywordSearcher runs the lexical retrieval leg.
type KeywordSearcher interface {
	Search(ctx context.Context, tokens []string, filters filter.Filters, limit int) (
		[]candidate.Candidate, error)
}

// PermissionReader filters document IDs down to those an identity may read.
type PermissionReader interface {
	Allowed(ctx context.Context, identity domain.Identity, ids []string) ([]string, error)
}

// ResultCache stores fused result lists keyed by query fingerprint.
type ResultCache interface {
	Get(ctx context.Context, key string) ([]fused.Result, bool)
	Put(ctx context.Context, key string, results []fused.Result)
}
