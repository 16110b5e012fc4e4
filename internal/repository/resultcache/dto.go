package resultcache

import (
	"time"

	"github.com/veridian-kb/searchd/internal/domain/search/fused"
)

// cachedSet is the JSON storage shape of a fused result list.
type cachedSet struct {
	Results []cachedResult `json:"results"`
}

type cachedResult struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Snippet       string    `json:"snippet"`
	Source        string    `json:"source"`
	FileType      string    `json:"file_type"`
	URL           string    `json:"url,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	SemanticScore float64   `json:"semantic_score"`
	KeywordScore  float64   `json:"keyword_score"`
	CombinedScore float64   `json:"combined_score"`
	FinalScore    float64   `json:"final_score"`
	BestRank      int       `json:"best_rank"`
}

func newCachedSet(results []fused.Result) cachedSet {
	out := cachedSet{Results: make([]cachedResult, 0, len(results))}
	for i := range results {
		r := &results[i]
		out.Results = append(out.Results, cachedResult{
			ID:            r.ID(),
			Title:         r.Title(),
			Snippet:       r.Snippet(),
			Source:        r.Source(),
			FileType:      r.FileType(),
			URL:           r.URL(),
			CreatedAt:     r.CreatedAt(),
			SemanticScore: r.SemanticScore(),
			KeywordScore:  r.KeywordScore(),
			CombinedScore: r.CombinedScore(),
			FinalScore:    r.FinalScore(),
			BestRank:      r.BestRank(),
		})
	}
	return out
}

func (s cachedSet) toDomain() []fused.Result {
	out := make([]fused.Result, 0, len(s.Results))
	for _, r := range s.Results {
		out = append(out, fused.New(
			r.ID,
			r.SemanticScore, r.KeywordScore, r.CombinedScore, r.FinalScore,
			r.BestRank,
			r.Title, r.Snippet, r.Source, r.FileType, r.URL,
			r.CreatedAt,
		))
	}
	return out
}
