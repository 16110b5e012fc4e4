package sdk

import (
	"context"
	"net/http"
	"time"
)

// Filters narrows a search to specific sources, file types, or a creation
// date range. Zero values mean unbounded.
type Filters struct {
	Sources   []string
	FileTypes []string
	After     time.Time
	Before    time.Time
}

// SearchRequest is the input for Client.Search.
type SearchRequest struct {
	Query   string
	TopK    int
	Filters *Filters
}

// Result is one search hit.
type Result struct {
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

// Latency is the server-side per-stage latency in milliseconds.
type Latency struct {
	PreprocessMS int64 `json:"preprocess_ms"`
	SemanticMS   int64 `json:"semantic_ms"`
	KeywordMS    int64 `json:"keyword_ms"`
	FuseMS       int64 `json:"fuse_ms"`
	TotalMS      int64 `json:"total_ms"`
}

// SearchResponse is the output of Client.Search. Degraded means one retrieval
// leg or the permission store was unavailable and the results are partial.
type SearchResponse struct {
	Results  []Result `json:"results"`
	Degraded bool     `json:"degraded"`
	Cached   bool     `json:"cached"`
	Latency  Latency  `json:"latency"`
}

type searchFiltersDTO struct {
	Sources   []string `json:"sources,omitempty"`
	FileTypes []string `json:"file_types,omitempty"`
	After     string   `json:"after,omitempty"`
	Before    string   `json:"before,omitempty"`
}

type searchRequestDTO struct {
	Query   string            `json:"query"`
	TopK    int               `json:"top_k,omitempty"`
	Filters *searchFiltersDTO `json:"filters,omitempty"`
}

// Search runs a hybrid search.
func (c *Client) Search(ctx context.Context, req SearchRequest) (SearchResponse, error) {
	dto := searchRequestDTO{Query: req.Query, TopK: req.TopK}
	if f := req.Filters; f != nil {
		fd := searchFiltersDTO{Sources: f.Sources, FileTypes: f.FileTypes}
		if !f.After.IsZero() {
			fd.After = f.After.Format(time.RFC3339)
		}
		if !f.Before.IsZero() {
			fd.Before = f.Before.Format(time.RFC3339)
		}
		dto.Filters = &fd
	}

	var resp SearchResponse
	if err := c.doJSON(ctx, http.MethodPost, "/search", dto, &resp); err != nil {
		return SearchResponse{}, err
	}
	return resp, nil
}
