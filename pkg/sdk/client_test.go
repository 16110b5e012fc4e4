package sdk

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestSearch_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/search" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("Authorization = %q", got)
		}

		var req searchRequestDTO
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Query != "deploy guide" || req.TopK != 10 {
			t.Errorf("unexpected request body: %+v", req)
		}

		_ = json.NewEncoder(w).Encode(SearchResponse{
			Results: []Result{{ID: "doc-1", Title: "Deploy guide", Score: 0.92, CombinedScore: 0.84}},
			Latency: Latency{TotalMS: 42},
		})
	}))
	defer srv.Close()

	c, err := New(srv.URL, "secret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resp, err := c.Search(context.Background(), SearchRequest{Query: "deploy guide", TopK: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Results) != 1 || resp.Results[0].ID != "doc-1" {
		t.Errorf("unexpected results: %+v", resp.Results)
	}
	if resp.Results[0].CombinedScore != 0.84 {
		t.Errorf("CombinedScore = %v, want 0.84", resp.Results[0].CombinedScore)
	}
	if resp.Latency.TotalMS != 42 {
		t.Errorf("Latency.TotalMS = %d", resp.Latency.TotalMS)
	}
}

func TestSearch_SendsFilters(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req searchRequestDTO
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Filters == nil {
			t.Fatal("filters missing from request")
		}
		if len(req.Filters.Sources) != 1 || req.Filters.Sources[0] != "wiki" {
			t.Errorf("Sources = %v", req.Filters.Sources)
		}
		if req.Filters.After != "2026-01-01T00:00:00Z" {
			t.Errorf("After = %q", req.Filters.After)
		}
		_ = json.NewEncoder(w).Encode(SearchResponse{})
	}))
	defer srv.Close()

	c, _ := New(srv.URL, "secret")
	_, err := c.Search(context.Background(), SearchRequest{
		Query: "x",
		Filters: &Filters{
			Sources: []string{"wiki"},
			After:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSearch_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"code":    "both_legs_failed",
			"message": "search is temporarily unavailable",
		})
	}))
	defer srv.Close()

	c, _ := New(srv.URL, "secret")
	_, err := c.Search(context.Background(), SearchRequest{Query: "x"})
	if err == nil {
		t.Fatal("expected error")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if apiErr.Status != http.StatusServiceUnavailable || apiErr.Code != "both_legs_failed" {
		t.Errorf("unexpected APIError: %+v", apiErr)
	}
}

func TestSearch_MalformedErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream exploded"))
	}))
	defer srv.Close()

	c, _ := New(srv.URL, "secret")
	_, err := c.Search(context.Background(), SearchRequest{Query: "x"})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if apiErr.Code != "unknown" {
		t.Errorf("Code = %q, want unknown fallback", apiErr.Code)
	}
}

func TestHealth_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(HealthStatus{
			Status: "ok",
			Checks: map[string]string{"database": "ok"},
		})
	}))
	defer srv.Close()

	c, _ := New(srv.URL, "")
	status, err := c.Health(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status.Status != "ok" || status.Checks["database"] != "ok" {
		t.Errorf("unexpected status: %+v", status)
	}
}

func TestHealth_Degraded503(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(HealthStatus{
			Status: "degraded",
			Checks: map[string]string{"database": "error"},
		})
	}))
	defer srv.Close()

	c, _ := New(srv.URL, "")
	status, err := c.Health(context.Background())
	if err != nil {
		t.Fatalf("degraded health should not be an error, got %v", err)
	}
	if status.Status != "degraded" || status.Checks["database"] != "error" {
		t.Errorf("unexpected status: %+v", status)
	}
}

func TestNew_RequiresBaseURL(t *testing.T) {
	if _, err := New("", "key"); err == nil {
		t.Fatal("expected error for empty base URL")
	}
}

func TestSearch_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	c, _ := New(srv.URL, "key")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Search(ctx, SearchRequest{Query: "x"})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled in chain, got %v", err)
	}
}
