package chi

import (
	"fmt"
	"time"

	"github.com/veridian-kb/searchd/internal/domain/search/filter"
	"github.com/veridian-kb/searchd/internal/domain/search/fused"
)

// Error codes returned in ErrorResponse.Code.
const (
	codeBadRequest        = "bad_request"
	codeValidationFailed  = "validation_failed"
	codeUnauthorized      = "unauthorized"
	codeDocumentNotFound  = "document_not_found"
	codeBothLegsFailed    = "both_legs_failed"
	codeEmbeddingProvider = "embedding_provider_error"
	codeInternalError     = "internal_error"
)

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SearchFilters are the optional structured pre-filters of a search request.
type SearchFilters struct {
	Sources   []string `json:"sources,omitempty"`
	FileTypes []string `json:"file_types,omitempty"`
	After     string   `json:"after,omitempty"`  // RFC 3339
	Before    string   `json:"before,omitempty"` // RFC 3339
}

// SearchRequest is the POST /search body.
type SearchRequest struct {
	Query   string         `json:"query"`
	TopK    int            `json:"top_k,omitempty"`
	Filters *SearchFilters `json:"filters,omitempty"`
}

// SearchResultItem is one fused hit in a search response.
type SearchResultItem struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Snippet       string    `json:"snippet"`
	Source        string    `json:"source"`
	FileType      string    `json:"file_type,omitempty"`
	URL           string    `json:"url,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	Score         float64   `json:"score"`
	CombinedScore float64   `json:"combined_score"`
	SemanticScore float64   `json:"semantic_score"`
	KeywordScore  float64   `json:"keyword_score"`
}

// SearchLatency is the per-stage latency breakdown in milliseconds.
type SearchLatency struct {
	PreprocessMS int64 `json:"preprocess_ms"`
	SemanticMS   int64 `json:"semantic_ms"`
	KeywordMS    int64 `json:"keyword_ms"`
	FuseMS       int64 `json:"fuse_ms"`
	TotalMS      int64 `json:"total_ms"`
}

// SearchResponse is the POST /search reply.
type SearchResponse struct {
	Results  []SearchResultItem `json:"results"`
	Degraded bool               `json:"degraded"`
	Cached   bool               `json:"cached"`
	Latency  SearchLatency      `json:"latency"`
}

// IngestRequest is the PUT /documents/{id} body.
type IngestRequest struct {
	Title           string    `json:"title"`
	Body            string    `json:"body"`
	Source          string    `json:"source"`
	FileType        string    `json:"file_type,omitempty"`
	URL             string    `json:"url,omitempty"`
	CreatedAt       time.Time `json:"created_at,omitempty"`
	AllowedSubjects []string  `json:"allowed_subjects,omitempty"`
}

// IngestResponse is the PUT /documents/{id} reply.
type IngestResponse struct {
	ID      string `json:"id"`
	Created bool   `json:"created"`
}

// HealthResponse is the GET /health reply.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func filtersFromDTO(in *SearchFilters) (filter.Filters, error) {
	if in == nil {
		return filter.Filters{}, nil
	}

	var after, before time.Time
	var err error
	if in.After != "" {
		if after, err = time.Parse(time.RFC3339, in.After); err != nil {
			return filter.Filters{}, fmt.Errorf("invalid after timestamp: %w", err)
		}
	}
	if in.Before != "" {
		if before, err = time.Parse(time.RFC3339, in.Before); err != nil {
			return filter.Filters{}, fmt.Errorf("invalid before timestamp: %w", err)
		}
	}

	return filter.New(in.Sources, in.FileTypes, after, before)
}

func searchResponseFromSet(set *fused.Set) SearchResponse {
	results := set.Results()
	items := make([]SearchResultItem, 0, len(results))
	for i := range results {
		r := &results[i]
		items = append(items, SearchResultItem{
			ID:            r.ID(),
			Title:         r.Title(),
			Snippet:       r.Snippet(),
			Source:        r.Source(),
			FileType:      r.FileType(),
			URL:           r.URL(),
			CreatedAt:     r.CreatedAt(),
			Score:         r.FinalScore(),
			CombinedScore: r.CombinedScore(),
			SemanticScore: r.SemanticScore(),
			KeywordScore:  r.KeywordScore(),
		})
	}

	latency := set.Latency()
	return SearchResponse{
		Results:  items,
		Degraded: set.Degraded(),
		Cached:   set.Cached(),
		Latency: SearchLatency{
			PreprocessMS: latency.Preprocess.Milliseconds(),
			SemanticMS:   latency.Semantic.Milliseconds(),
			KeywordMS:    latency.Keyword.Milliseconds(),
			FuseMS:       latency.Fuse.Milliseconds(),
			TotalMS:      latency.Total.Milliseconds(),
		},
	}
}
