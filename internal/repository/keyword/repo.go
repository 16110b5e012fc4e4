// Package keyword implements the lexical (BM25) retrieval leg over the
// document index.
package keyword

import (
	"context"
	"fmt"

	"github.com/veridian-kb/searchd/internal/db"
	"github.com/veridian-kb/searchd/internal/domain"
	"github.com/veridian-kb/searchd/internal/domain/search/candidate"
	"github.com/veridian-kb/searchd/internal/domain/search/filter"
	"github.com/veridian-kb/searchd/internal/repository/docindex"
)

// store is the consumer interface for the keyword leg (ISP).
type store interface {
	SearchBM25(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
}

// Repo implements the keyword search client.
type Repo struct {
	store store
}

// New creates a keyword search repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Search runs a BM25 query with the extracted tokens. Title matches rank
// higher through the TEXT weight declared in the index schema. Backend
// failures are wrapped in domain.ErrKeywordUnavailable for leg degradation.
func (r *Repo) Search(
	ctx context.Context, tokens []string, filters filter.Filters, limit int,
) ([]candidate.Candidate, error) {
	if len(tokens) == 0 {
		return nil, nil
	}

	sr, err := r.store.SearchBM25(ctx, &db.TextQuery{
		IndexName:    docindex.IndexName,
		Tokens:       tokens,
		Filters:      filters,
		TopK:         limit,
		ReturnFields: docindex.ReturnFields,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrKeywordUnavailable, err)
	}
	if sr == nil || sr.Total == 0 {
		return nil, nil
	}

	results := make([]candidate.Candidate, 0, len(sr.Entries))
	for rank, entry := range sr.Entries {
		results = append(results, docindex.ParseEntry(entry, normalizeBM25(entry.Score), rank))
	}
	return results, nil
}

// normalizeBM25 maps an unbounded BM25 score to [0,1) via |s| / (1 + |s|),
// keeping the fusion arithmetic on a shared scale with cosine similarity.
func normalizeBM25(score float64) float64 {
	if score < 0 {
		score = -score
	}
	return score / (1 + score)
}
