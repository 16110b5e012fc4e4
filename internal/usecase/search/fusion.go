package search

import (
	"sort"
	"time"

	"github.com/veridian-kb/searchd/internal/config"
	"github.com/veridian-kb/searchd/internal/domain/search/candidate"
	"github.com/veridian-kb/searchd/internal/domain/search/fused"
)

// fuseWeighted merges the two retrieval legs by weighted score sum and
// applies the recency multiplier. A document absent from one leg contributes
// zero from that leg. The output is sorted and NOT yet truncated: permission
// filtering happens upstream of fusion, truncation downstream.
func fuseWeighted(
	semantic, keyword []candidate.Candidate,
	cfg config.SearchConfig,
	now time.Time,
) []fused.Result {
	type merged struct {
		c             *candidate.Candidate
		semanticScore float64
		keywordScore  float64
		bestRank      int
	}

	byID := make(map[string]*merged, len(semantic)+len(keyword))
	order := make([]string, 0, len(semantic)+len(keyword))

	for i := range semantic {
		c := &semantic[i]
		byID[c.ID()] = &merged{c: c, semanticScore: c.Score(), bestRank: c.Rank()}
		order = append(order, c.ID())
	}

	for i := range keyword {
		c := &keyword[i]
		if existing, ok := byID[c.ID()]; ok {
			existing.keywordScore = c.Score()
			if c.Rank() < existing.bestRank {
				existing.bestRank = c.Rank()
			}
			continue
		}
		byID[c.ID()] = &merged{c: c, keywordScore: c.Score(), bestRank: c.Rank()}
		order = append(order, c.ID())
	}

	results := make([]fused.Result, 0, len(byID))
	for _, id := range order {
		m := byID[id]
		combined := cfg.SemanticWeight*m.semanticScore + cfg.KeywordWeight*m.keywordScore
		final := combined * recencyFactor(cfg.RecencyBoosts, m.c.CreatedAt(), now)
		results = append(results, fused.New(
			id,
			m.semanticScore, m.keywordScore, combined, final,
			m.bestRank,
			m.c.Title(), m.c.Snippet(), m.c.Source(), m.c.FileType(), m.c.URL(),
			m.c.CreatedAt(),
		))
	}

	sortResults(results)
	return results
}

// sortResults orders by final score descending, then best rank ascending,
// then ID ascending. The full chain makes the ordering deterministic for
// identical inputs.
func sortResults(results []fused.Result) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := &results[i], &results[j]
		if a.FinalScore() != b.FinalScore() {
			return a.FinalScore() > b.FinalScore()
		}
		if a.BestRank() != b.BestRank() {
			return a.BestRank() < b.BestRank()
		}
		return a.ID() < b.ID()
	})
}

// recencyFactor returns the multiplier of the first boost bucket covering the
// document age, or 1 when none does. An unknown creation time gets no boost.
func recencyFactor(boosts []config.RecencyBoost, createdAt, now time.Time) float64 {
	if createdAt.IsZero() {
		return 1
	}
	age := now.Sub(createdAt)
	for _, b := range boosts {
		if age < time.Duration(b.MaxAgeDays)*24*time.Hour {
			return b.Factor
		}
	}
	return 1
}
