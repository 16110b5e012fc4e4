package fused

import (
	"testing"
	"time"
)

func TestNew_Getters(t *testing.T) {
	created := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	r := New("doc-1", 0.9, 0.5, 0.78, 0.858, 2,
		"Deploy guide", "How to deploy.", "wiki", "md", "https://example.com", created)

	if r.ID() != "doc-1" {
		t.Errorf("ID() = %q", r.ID())
	}
	if r.SemanticScore() != 0.9 || r.KeywordScore() != 0.5 {
		t.Errorf("leg scores = %v / %v", r.SemanticScore(), r.KeywordScore())
	}
	if r.CombinedScore() != 0.78 {
		t.Errorf("CombinedScore() = %v", r.CombinedScore())
	}
	if r.FinalScore() != 0.858 {
		t.Errorf("FinalScore() = %v", r.FinalScore())
	}
	if r.BestRank() != 2 {
		t.Errorf("BestRank() = %d", r.BestRank())
	}
	if !r.CreatedAt().Equal(created) {
		t.Errorf("CreatedAt() = %v", r.CreatedAt())
	}
}

func TestNewSet(t *testing.T) {
	results := []Result{
		New("a", 0.9, 0, 0.63, 0.63, 0, "t", "s", "wiki", "", "", time.Time{}),
	}
	latency := Breakdown{Total: 12 * time.Millisecond}

	set := NewSet(results, latency, false, true)
	if set.Len() != 1 {
		t.Errorf("Len() = %d", set.Len())
	}
	if set.Cached() {
		t.Error("Cached() = true, want false")
	}
	if !set.Degraded() {
		t.Error("Degraded() = false, want true")
	}
	if set.Latency().Total != 12*time.Millisecond {
		t.Errorf("Latency().Total = %v", set.Latency().Total)
	}
}

func TestWithCached(t *testing.T) {
	set := NewSet(nil, Breakdown{Total: 100 * time.Millisecond}, false, false)

	hit := set.WithCached(Breakdown{Total: time.Millisecond})
	if !hit.Cached() {
		t.Error("Cached() = false after WithCached")
	}
	if hit.Latency().Total != time.Millisecond {
		t.Errorf("Latency().Total = %v, want replaced", hit.Latency().Total)
	}
	// Original is unchanged.
	if set.Cached() {
		t.Error("WithCached mutated the original set")
	}
}
