// Package query models a processed search query: normalized text, extracted
// keyword tokens, and the query embedding (when the provider was reachable).
package query

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/veridian-kb/searchd/internal/domain"
	"github.com/veridian-kb/searchd/internal/domain/search/filter"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed raw query length.
	MaxQueryLength = 1024
	DefaultTopK    = 5
	MaxTopK        = 50
)

// Query is a processed, request-scoped search query.
type Query struct {
	raw                 string
	normalized          string
	tokens              []string
	embedding           []float32
	semanticUnavailable bool
	identity            domain.Identity
	filters             filter.Filters
	topK                int
}

// New validates and creates a processed query. A nil embedding together with
// semanticUnavailable=true means the embedding provider failed or timed out;
// the orchestrator decides how to degrade.
func New(
	raw, normalized string,
	tokens []string,
	embedding []float32,
	semanticUnavailable bool,
	identity domain.Identity,
	filters filter.Filters,
	topK int,
) (Query, error) {
	if raw == "" {
		return Query{}, fmt.Errorf("%w: query text is required", domain.ErrInvalidQuery)
	}
	if len(raw) > MaxQueryLength {
		return Query{}, fmt.Errorf("%w: query too long (max %d chars)", domain.ErrInvalidQuery, MaxQueryLength)
	}
	if identity.IsZero() {
		return Query{}, fmt.Errorf("%w: identity is required", domain.ErrInvalidQuery)
	}
	topK = ClampTopK(topK)

	return Query{
		raw:                 raw,
		normalized:          normalized,
		tokens:              tokens,
		embedding:           embedding,
		semanticUnavailable: semanticUnavailable,
		identity:            identity,
		filters:             filters,
		topK:                topK,
	}, nil
}

// Raw returns the original query text.
func (q *Query) Raw() string { return q.raw }

// Normalized returns the whitespace/case-normalized query text.
func (q *Query) Normalized() string { return q.normalized }

// Tokens returns the extracted keyword tokens.
func (q *Query) Tokens() []string { return q.tokens }

// Embedding returns the query embedding, or nil when the provider failed.
func (q *Query) Embedding() []float32 { return q.embedding }

// SemanticUnavailable reports whether the embedding step was degraded.
func (q *Query) SemanticUnavailable() bool { return q.semanticUnavailable }

// Identity returns the requesting principal.
func (q *Query) Identity() domain.Identity { return q.identity }

// Filters returns the structured pre-filters.
func (q *Query) Filters() filter.Filters { return q.filters }

// TopK returns the requested result count.
func (q *Query) TopK() int { return q.topK }

// CacheKey derives the result cache key from the normalized query, filters,
// and identity. Embedding and tokens are derived from the normalized text, so
// they do not participate.
func (q *Query) CacheKey() string {
	return Key(q.normalized, q.filters, q.identity, q.topK)
}

// ClampTopK applies the default and upper bound to a requested result count.
func ClampTopK(topK int) int {
	if topK <= 0 {
		return DefaultTopK
	}
	if topK > MaxTopK {
		return MaxTopK
	}
	return topK
}

// Key derives a result cache key without a full Query. The orchestrator uses
// it to probe the cache before spending an embedding call. topK must already
// be clamped.
func Key(normalized string, filters filter.Filters, identity domain.Identity, topK int) string {
	h := sha256.New()
	h.Write([]byte(normalized))
	h.Write([]byte{0})
	h.Write([]byte(filters.Fingerprint()))
	h.Write([]byte{0})
	h.Write([]byte(identity.Subject()))
	h.Write([]byte{0})
	h.Write([]byte(fmt.Sprintf("%d", topK)))
	return hex.EncodeToString(h.Sum(nil))
}
