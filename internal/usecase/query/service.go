// Package query turns raw request text into a processed search query:
// normalization, keyword token extraction, and the query embedding.
package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/veridian-kb/searchd/internal/domain"
	"github.com/veridian-kb/searchd/internal/domain/search/filter"
	"github.com/veridian-kb/searchd/internal/domain/search/query"
	"github.com/veridian-kb/searchd/internal/logger"
)

// Processor prepares search queries.
type Processor struct {
	embed        Embedder
	embedTimeout time.Duration
}

// NewProcessor creates a query processor. embedTimeout bounds the embedding
// call; on expiry the query degrades to keyword-only instead of failing.
func NewProcessor(embed Embedder, embedTimeout time.Duration) *Processor {
	return &Processor{embed: embed, embedTimeout: embedTimeout}
}

// NormalizeText exposes normalization so callers can derive cache keys
// without going through the embedder.
func (p *Processor) NormalizeText(raw string) string {
	return Normalize(raw)
}

// Prepare normalizes and tokenizes the raw text, embeds the normalized form,
// and assembles the processed query. Embedding failure or timeout never
// fails the request: the query is returned with SemanticUnavailable set.
func (p *Processor) Prepare(
	ctx context.Context,
	raw string,
	identity domain.Identity,
	filters filter.Filters,
	topK int,
) (query.Query, error) {
	normalized := Normalize(raw)
	if normalized == "" {
		return query.Query{}, domain.ErrInvalidQuery
	}
	tokens := Tokenize(normalized)

	embedding, unavailable := p.embedQuery(ctx, normalized)

	return query.New(raw, normalized, tokens, embedding, unavailable, identity, filters, topK)
}

func (p *Processor) embedQuery(ctx context.Context, normalized string) ([]float32, bool) {
	embedCtx, cancel := context.WithTimeout(ctx, p.embedTimeout)
	defer cancel()

	result, err := p.embed.Embed(embedCtx, normalized)
	if err != nil {
		err = classifyEmbedError(err)
		log := logger.FromContext(ctx)
		if errors.Is(err, domain.ErrEmbeddingTimeout) {
			log.Warn("Query embedding timed out, degrading to keyword-only",
				zap.Duration("timeout", p.embedTimeout), zap.Error(err))
		} else {
			log.Warn("Query embedding failed, degrading to keyword-only", zap.Error(err))
		}
		return nil, true
	}
	return result.Embedding, false
}

// classifyEmbedError maps a sub-timeout expiry onto the domain sentinel.
func classifyEmbedError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", domain.ErrEmbeddingTimeout, err)
	}
	return err
}
