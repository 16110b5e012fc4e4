// Package semantic implements the vector retrieval leg over the document index.
package semantic

import (
	"context"
	"fmt"

	"github.com/veridian-kb/searchd/internal/db"
	"github.com/veridian-kb/searchd/internal/domain"
	"github.com/veridian-kb/searchd/internal/domain/search/candidate"
	"github.com/veridian-kb/searchd/internal/domain/search/filter"
	"github.com/veridian-kb/searchd/internal/repository/docindex"
)

// store is the consumer interface for the semantic leg (ISP).
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// Repo implements the semantic search client.
type Repo struct {
	store store
}

// New creates a semantic search repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Search runs a KNN query against the document index. A nil embedding is a
// no-op: the caller already knows the semantic leg is unavailable.
// Backend failures are wrapped in domain.ErrSemanticUnavailable so the
// orchestrator can degrade instead of failing the request.
func (r *Repo) Search(
	ctx context.Context, vector []float32, filters filter.Filters, limit int,
) ([]candidate.Candidate, error) {
	if len(vector) == 0 {
		return nil, nil
	}

	sr, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    docindex.IndexName,
		Filters:      filters,
		Vector:       vector,
		K:            limit,
		ReturnFields: docindex.ReturnFields,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSemanticUnavailable, err)
	}
	if sr == nil || sr.Total == 0 {
		return nil, nil
	}

	// entry.Score is already cosine similarity in [0,1] from the db layer.
	results := make([]candidate.Candidate, 0, len(sr.Entries))
	for rank, entry := range sr.Entries {
		results = append(results, docindex.ParseEntry(entry, entry.Score, rank))
	}
	return results, nil
}
