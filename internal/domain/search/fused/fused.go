// Package fused models the fusion output: per-document combined scores and
// the ordered, truncated result set returned to callers.
package fused

import "time"

// Result is a single fused search hit. Scores from a leg the document was
// absent from contribute zero.
type Result struct {
	id            string
	title         string
	snippet       string
	source        string
	fileType      string
	url           string
	createdAt     time.Time
	semanticScore float64
	keywordScore  float64
	combinedScore float64
	finalScore    float64
	bestRank      int
}

// New creates a fused result. bestRank is the better (lower) of the
// document's original backend ranks and is used only for tie-breaking.
func New(
	id string,
	semanticScore, keywordScore, combinedScore, finalScore float64,
	bestRank int,
	title, snippet, source, fileType, url string,
	createdAt time.Time,
) Result {
	return Result{
		id:            id,
		semanticScore: semanticScore,
		keywordScore:  keywordScore,
		combinedScore: combinedScore,
		finalScore:    finalScore,
		bestRank:      bestRank,
		title:         title,
		snippet:       snippet,
		source:        source,
		fileType:      fileType,
		url:           url,
		createdAt:     createdAt,
	}
}

// ID returns the document identifier.
func (r *Result) ID() string { return r.id }

// SemanticScore returns the vector leg contribution (0 if absent).
func (r *Result) SemanticScore() float64 { return r.semanticScore }

// KeywordScore returns the lexical leg contribution (0 if absent).
func (r *Result) KeywordScore() float64 { return r.keywordScore }

// CombinedScore returns the weighted sum of the two leg scores.
func (r *Result) CombinedScore() float64 { return r.combinedScore }

// FinalScore returns the combined score after the recency multiplier.
func (r *Result) FinalScore() float64 { return r.finalScore }

// BestRank returns the better of the document's original backend ranks.
func (r *Result) BestRank() int { return r.bestRank }

// Title returns the document title.
func (r *Result) Title() string { return r.title }

// Snippet returns the content snippet.
func (r *Result) Snippet() string { return r.snippet }

// Source returns the document source type.
func (r *Result) Source() string { return r.source }

// FileType returns the document file type.
func (r *Result) FileType() string { return r.fileType }

// URL returns the document URL, if any.
func (r *Result) URL() string { return r.url }

// CreatedAt returns the document creation timestamp.
func (r *Result) CreatedAt() time.Time { return r.createdAt }

// Breakdown is the per-stage latency of one search request.
type Breakdown struct {
	Preprocess time.Duration
	Semantic   time.Duration
	Keyword    time.Duration
	Fuse       time.Duration
	Total      time.Duration
}

// Set is the ordered fused result set returned to a caller.
type Set struct {
	results  []Result
	latency  Breakdown
	cached   bool
	degraded bool
}

// NewSet creates a result set. Results must already be sorted and truncated.
func NewSet(results []Result, latency Breakdown, cached, degraded bool) Set {
	return Set{results: results, latency: latency, cached: cached, degraded: degraded}
}

// Results returns the ordered fused results.
func (s *Set) Results() []Result { return s.results }

// Latency returns the per-stage latency breakdown.
func (s *Set) Latency() Breakdown { return s.latency }

// Cached reports whether the set was served from the result cache.
func (s *Set) Cached() bool { return s.cached }

// Degraded reports whether at least one leg (or the permission store) was
// unavailable when the set was produced.
func (s *Set) Degraded() bool { return s.degraded }

// WithCached returns a copy flagged as a cache hit with the given latency.
func (s Set) WithCached(latency Breakdown) Set {
	s.cached = true
	s.latency = latency
	return s
}

// Len returns the number of results.
func (s *Set) Len() int { return len(s.results) }
