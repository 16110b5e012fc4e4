package resultcache

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/veridian-kb/searchd/internal/db"
	"github.com/veridian-kb/searchd/internal/domain"
	"github.com/veridian-kb/searchd/internal/domain/search/fused"
)

type mockKVStore struct {
	getFn func(ctx context.Context, key string) ([]byte, error)
	setFn func(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

func (m *mockKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockKVStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value, ttl)
	}
	return nil
}

func sampleResults() []fused.Result {
	created := time.Date(2025, 5, 10, 8, 0, 0, 0, time.UTC)
	return []fused.Result{
		fused.New("doc-1", 0.9, 0.5, 0.78, 0.858, 0,
			"Deploy guide", "How to deploy.", "wiki", "md", "https://kb/doc-1", created),
		fused.New("doc-2", 0.4, 0.0, 0.28, 0.28, 1,
			"Postmortem", "What went wrong.", "jira", "txt", "", created),
	}
}

func TestPutGetRoundTrip(t *testing.T) {
	stored := map[string][]byte{}
	ms := &mockKVStore{
		getFn: func(_ context.Context, key string) ([]byte, error) {
			if v, ok := stored[key]; ok {
				return v, nil
			}
			return nil, db.ErrKeyNotFound
		},
		setFn: func(_ context.Context, key string, value []byte, ttl time.Duration) error {
			if ttl != 5*time.Minute {
				t.Errorf("ttl = %v, want 5m", ttl)
			}
			stored[key] = value
			return nil
		},
	}
	c := New(ms, 5*time.Minute, nil, zap.NewNop())
	ctx := context.Background()

	in := sampleResults()
	c.Put(ctx, "abc123", in)

	got, ok := c.Get(ctx, "abc123")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if len(got) != 2 {
		t.Fatalf("got %d results, want 2", len(got))
	}
	first := got[0]
	if first.ID() != "doc-1" {
		t.Errorf("ID = %q, want doc-1", first.ID())
	}
	if first.FinalScore() != 0.858 {
		t.Errorf("FinalScore = %v, want 0.858", first.FinalScore())
	}
	if first.BestRank() != 0 {
		t.Errorf("BestRank = %d, want 0", first.BestRank())
	}
	if !first.CreatedAt().Equal(in[0].CreatedAt()) {
		t.Errorf("CreatedAt = %v, want %v", first.CreatedAt(), in[0].CreatedAt())
	}
}

func TestGetMiss(t *testing.T) {
	c := New(&mockKVStore{}, time.Minute, nil, zap.NewNop())

	if _, ok := c.Get(context.Background(), "nope"); ok {
		t.Error("expected cache miss")
	}
}

func TestGetAbsorbsBackendError(t *testing.T) {
	ms := &mockKVStore{
		getFn: func(_ context.Context, _ string) ([]byte, error) {
			return nil, errors.New("connection reset")
		},
	}
	c := New(ms, time.Minute, nil, zap.NewNop())

	if _, ok := c.Get(context.Background(), "k"); ok {
		t.Error("expected miss on backend error")
	}
}

func TestGetCorruptEntry(t *testing.T) {
	ms := &mockKVStore{
		getFn: func(_ context.Context, _ string) ([]byte, error) {
			return []byte("{not json"), nil
		},
	}
	c := New(ms, time.Minute, nil, zap.NewNop())

	if _, ok := c.Get(context.Background(), "k"); ok {
		t.Error("expected miss on corrupt entry")
	}
}

func TestPutAbsorbsBackendError(t *testing.T) {
	ms := &mockKVStore{
		setFn: func(_ context.Context, _ string, _ []byte, _ time.Duration) error {
			return errors.New("write failed")
		},
	}
	c := New(ms, time.Minute, nil, zap.NewNop())

	// Must not panic or surface the error.
	c.Put(context.Background(), "k", sampleResults())
}

func TestCacheErrClassification(t *testing.T) {
	cause := errors.New("connection reset")
	err := cacheErr(cause)
	if !errors.Is(err, domain.ErrCacheUnavailable) {
		t.Errorf("cacheErr(%v) = %v, want ErrCacheUnavailable", cause, err)
	}
	if !errors.Is(err, cause) {
		t.Errorf("cacheErr(%v) = %v, want the cause preserved", cause, err)
	}
}

func TestKeyIsPrefixed(t *testing.T) {
	var gotKey string
	ms := &mockKVStore{
		setFn: func(_ context.Context, key string, _ []byte, _ time.Duration) error {
			gotKey = key
			return nil
		},
	}
	c := New(ms, time.Minute, nil, zap.NewNop())
	c.Put(context.Background(), "abc", nil)

	if want := "searchd:result_cache:abc"; gotKey != want {
		t.Errorf("key = %q, want %q", gotKey, want)
	}
}
