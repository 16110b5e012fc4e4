package semantic

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/veridian-kb/searchd/internal/db"
	"github.com/veridian-kb/searchd/internal/domain"
	"github.com/veridian-kb/searchd/internal/domain/search/filter"
	"github.com/veridian-kb/searchd/internal/repository/docindex"
)

type stubStore struct {
	lastQuery *db.KNNQuery
	result    *db.SearchResult
	err       error
}

func (s *stubStore) SearchKNN(_ context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	s.lastQuery = q
	return s.result, s.err
}

func TestSearchNilVector(t *testing.T) {
	store := &stubStore{}
	repo := New(store)

	got, err := repo.Search(context.Background(), nil, filter.Filters{}, 10)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if got != nil {
		t.Errorf("Search() = %v, want nil", got)
	}
	if store.lastQuery != nil {
		t.Error("expected no backend call for nil vector")
	}
}

func TestSearchWrapsBackendError(t *testing.T) {
	store := &stubStore{err: errors.New("index offline")}
	repo := New(store)

	_, err := repo.Search(context.Background(), []float32{0.1, 0.2}, filter.Filters{}, 10)
	if !errors.Is(err, domain.ErrSemanticUnavailable) {
		t.Errorf("Search() error = %v, want ErrSemanticUnavailable", err)
	}
}

func TestSearchParsesEntries(t *testing.T) {
	store := &stubStore{
		result: &db.SearchResult{
			Total: 2,
			Entries: []db.SearchEntry{
				{
					Key:   docindex.DocKey("doc-a"),
					Score: 0.92,
					Fields: map[string]string{
						docindex.FieldTitle:  "Runbook",
						docindex.FieldSource: "wiki",
					},
				},
				{
					Key:   docindex.DocKey("doc-b"),
					Score: 0.61,
					Fields: map[string]string{
						docindex.FieldTitle: "Postmortem",
					},
				},
			},
		},
	}
	repo := New(store)

	got, err := repo.Search(context.Background(), []float32{0.1, 0.2}, filter.Filters{}, 10)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Search() returned %d candidates, want 2", len(got))
	}
	if got[0].ID() != "doc-a" || got[1].ID() != "doc-b" {
		t.Errorf("IDs = %q, %q, want doc-a, doc-b", got[0].ID(), got[1].ID())
	}
	if math.Abs(got[0].Score()-0.92) > 1e-9 {
		t.Errorf("Score = %v, want 0.92", got[0].Score())
	}
	if got[0].Rank() != 0 || got[1].Rank() != 1 {
		t.Errorf("Ranks = %d, %d, want 0, 1", got[0].Rank(), got[1].Rank())
	}
}

func TestSearchQueryShape(t *testing.T) {
	store := &stubStore{result: &db.SearchResult{}}
	repo := New(store)

	vec := []float32{0.5, 0.25}
	if _, err := repo.Search(context.Background(), vec, filter.Filters{}, 15); err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	q := store.lastQuery
	if q == nil {
		t.Fatal("backend was not called")
	}
	if q.IndexName != docindex.IndexName {
		t.Errorf("IndexName = %q, want %q", q.IndexName, docindex.IndexName)
	}
	if q.K != 15 {
		t.Errorf("K = %d, want 15", q.K)
	}
	if len(q.Vector) != 2 {
		t.Errorf("Vector length = %d, want 2", len(q.Vector))
	}
}
