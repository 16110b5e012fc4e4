// Package search orchestrates a hybrid search request: cache probe, query
// preparation, both retrieval legs in parallel, permission filtering, score
// fusion, and the result cache write-back.
package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/veridian-kb/searchd/internal/config"
	"github.com/veridian-kb/searchd/internal/domain"
	"github.com/veridian-kb/searchd/internal/domain/search/candidate"
	"github.com/veridian-kb/searchd/internal/domain/search/filter"
	"github.com/veridian-kb/searchd/internal/domain/search/fused"
	"github.com/veridian-kb/searchd/internal/domain/search/query"
	"github.com/veridian-kb/searchd/internal/logger"
	"github.com/veridian-kb/searchd/internal/metrics"
)

// Service handles hybrid search requests.
type Service struct {
	prep     QueryPreparer
	semantic SemanticSearcher
	keyword  KeywordSearcher
	perms    PermissionReader
	cache    ResultCache
	cfg      config.SearchConfig

	totalTimeout    time.Duration
	semanticTimeout time.Duration
	keywordTimeout  time.Duration
}

// New creates a search service.
func New(
	prep QueryPreparer,
	semantic SemanticSearcher,
	keyword KeywordSearcher,
	perms PermissionReader,
	cache ResultCache,
	cfg config.SearchConfig,
) *Service {
	return &Service{
		prep:            prep,
		semantic:        semantic,
		keyword:         keyword,
		perms:           perms,
		cache:           cache,
		cfg:             cfg,
		totalTimeout:    time.Duration(cfg.TotalTimeoutMS) * time.Millisecond,
		semanticTimeout: time.Duration(cfg.SemanticTimeoutMS) * time.Millisecond,
		keywordTimeout:  time.Duration(cfg.KeywordTimeoutMS) * time.Millisecond,
	}
}

// legOutcome collects one retrieval leg's result for the join.
type legOutcome struct {
	candidates []candidate.Candidate
	duration   time.Duration
	err        error
}

// Search runs a hybrid search for the given identity. A single failed leg
// degrades the response; both legs failing is an error. An unreachable
// permission store fails closed: empty, degraded, but not an error.
func (s *Service) Search(
	ctx context.Context,
	raw string,
	identity domain.Identity,
	filters filter.Filters,
	topK int,
) (fused.Set, error) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, s.totalTimeout)
	defer cancel()

	if len(raw) > query.MaxQueryLength {
		return fused.Set{}, fmt.Errorf("%w: query too long (max %d chars)",
			domain.ErrInvalidQuery, query.MaxQueryLength)
	}
	normalized := s.prep.NormalizeText(raw)
	if normalized == "" {
		return fused.Set{}, fmt.Errorf("%w: query text is required", domain.ErrInvalidQuery)
	}
	topK = query.ClampTopK(topK)

	cacheKey := query.Key(normalized, filters, identity, topK)
	if results, ok := s.cache.Get(ctx, cacheKey); ok {
		metrics.SearchRequestsTotal.WithLabelValues("ok").Inc()
		set := fused.NewSet(results, fused.Breakdown{}, false, false)
		return set.WithCached(fused.Breakdown{Total: time.Since(start)}), nil
	}

	q, err := s.prep.Prepare(ctx, raw, identity, filters, topK)
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues("failed").Inc()
		return fused.Set{}, fmt.Errorf("prepare query: %w", err)
	}

	var breakdown fused.Breakdown
	breakdown.Preprocess = time.Since(start)

	fetchLimit := q.TopK() * s.cfg.OverfetchFactor
	sem, kw := s.runLegs(ctx, &q, fetchLimit)

	if sem.err != nil && kw.err != nil {
		metrics.SearchRequestsTotal.WithLabelValues("failed").Inc()
		return fused.Set{}, fmt.Errorf("%w: semantic: %w; keyword: %w",
			domain.ErrBothLegsFailed, sem.err, kw.err)
	}
	degraded := sem.err != nil || kw.err != nil
	breakdown.Semantic = sem.duration
	breakdown.Keyword = kw.duration

	semCands, kwCands, permErr := s.filterPermitted(ctx, identity, sem.candidates, kw.candidates)
	if permErr != nil {
		// Fail closed: an unknown permission state must never leak documents.
		logger.FromContext(ctx).Warn("Permission check failed, returning empty result",
			zap.String("subject", identity.Subject()), zap.Error(permErr))
		metrics.SearchRequestsTotal.WithLabelValues("degraded").Inc()
		breakdown.Total = time.Since(start)
		return fused.NewSet(nil, breakdown, false, true), nil
	}

	fuseStart := time.Now()
	results := fuseWeighted(semCands, kwCands, s.cfg, time.Now())
	if len(results) > q.TopK() {
		results = results[:q.TopK()]
	}
	breakdown.Fuse = time.Since(fuseStart)
	breakdown.Total = time.Since(start)

	if degraded {
		metrics.SearchRequestsTotal.WithLabelValues("degraded").Inc()
	} else {
		metrics.SearchRequestsTotal.WithLabelValues("ok").Inc()
		// A degraded set must not mask a complete one for the TTL window.
		s.cache.Put(ctx, cacheKey, results)
	}

	return fused.NewSet(results, breakdown, false, degraded), nil
}

// runLegs executes both retrieval legs in parallel, each under its own
// timeout. Legs are independent: one failing or timing out never cancels
// the other.
func (s *Service) runLegs(ctx context.Context, q *query.Query, limit int) (sem, kw legOutcome) {
	var g errgroup.Group

	g.Go(func() error {
		if q.SemanticUnavailable() {
			sem.err = domain.ErrSemanticUnavailable
			return nil
		}
		legCtx, cancel := context.WithTimeout(ctx, s.semanticTimeout)
		defer cancel()

		legStart := time.Now()
		sem.candidates, sem.err = s.semantic.Search(legCtx, q.Embedding(), q.Filters(), limit)
		sem.duration = time.Since(legStart)
		s.observeLeg(ctx, "semantic", sem.duration, sem.err)
		return nil
	})

	g.Go(func() error {
		legCtx, cancel := context.WithTimeout(ctx, s.keywordTimeout)
		defer cancel()

		legStart := time.Now()
		kw.candidates, kw.err = s.keyword.Search(legCtx, q.Tokens(), q.Filters(), limit)
		kw.duration = time.Since(legStart)
		s.observeLeg(ctx, "keyword", kw.duration, kw.err)
		return nil
	})

	_ = g.Wait() // closures always return nil; outcomes carry the errors
	return sem, kw
}

func (s *Service) observeLeg(ctx context.Context, leg string, d time.Duration, err error) {
	metrics.SearchLegDuration.WithLabelValues(leg).Observe(d.Seconds())
	if err == nil {
		return
	}
	reason := "backend_error"
	if errors.Is(err, context.DeadlineExceeded) {
		reason = "timeout"
	}
	metrics.SearchLegFailuresTotal.WithLabelValues(leg, reason).Inc()
	logger.FromContext(ctx).Warn("Retrieval leg failed",
		zap.String("leg", leg), zap.String("reason", reason),
		zap.Duration("duration", d), zap.Error(err))
}

// filterPermitted batch-checks the union of candidate IDs and drops
// disallowed candidates from both legs before fusion.
func (s *Service) filterPermitted(
	ctx context.Context,
	identity domain.Identity,
	sem, kw []candidate.Candidate,
) ([]candidate.Candidate, []candidate.Candidate, error) {
	ids := make([]string, 0, len(sem)+len(kw))
	seen := make(map[string]bool, len(sem)+len(kw))
	for i := range sem {
		if !seen[sem[i].ID()] {
			seen[sem[i].ID()] = true
			ids = append(ids, sem[i].ID())
		}
	}
	for i := range kw {
		if !seen[kw[i].ID()] {
			seen[kw[i].ID()] = true
			ids = append(ids, kw[i].ID())
		}
	}
	if len(ids) == 0 {
		return nil, nil, nil
	}

	allowed, err := s.perms.Allowed(ctx, identity, ids)
	if err != nil {
		return nil, nil, err
	}
	allowedSet := make(map[string]bool, len(allowed))
	for _, id := range allowed {
		allowedSet[id] = true
	}

	return keepAllowed(sem, allowedSet), keepAllowed(kw, allowedSet), nil
}

func keepAllowed(cands []candidate.Candidate, allowed map[string]bool) []candidate.Candidate {
	kept := make([]candidate.Candidate, 0, len(cands))
	for i := range cands {
		if allowed[cands[i].ID()] {
			kept = append(kept, cands[i])
		}
	}
	return kept
}
