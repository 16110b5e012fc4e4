// Package candidate models a single backend hit before fusion. Each candidate
// carries the raw score of exactly one leg and its rank within that leg.
package candidate

import "time"

// Candidate is a single raw hit from one retrieval leg.
type Candidate struct {
	id        string
	title     string
	snippet   string
	source    string
	fileType  string
	url       string
	createdAt time.Time
	score     float64
	rank      int
}

// New creates a candidate. score must already be normalized to [0,1] by the
// producing leg; rank is the zero-based position within that leg's ranking.
func New(
	id string, score float64, rank int,
	title, snippet, source, fileType, url string,
	createdAt time.Time,
) Candidate {
	return Candidate{
		id: id, score: score, rank: rank,
		title: title, snippet: snippet, source: source,
		fileType: fileType, url: url, createdAt: createdAt,
	}
}

// ID returns the document identifier.
func (c *Candidate) ID() string { return c.id }

// Score returns the leg-normalized relevance score.
func (c *Candidate) Score() float64 { return c.score }

// Rank returns the zero-based position within the producing leg.
func (c *Candidate) Rank() int { return c.rank }

// Title returns the document title.
func (c *Candidate) Title() string { return c.title }

// Snippet returns the content snippet.
func (c *Candidate) Snippet() string { return c.snippet }

// Source returns the document source type.
func (c *Candidate) Source() string { return c.source }

// FileType returns the document file type.
func (c *Candidate) FileType() string { return c.fileType }

// URL returns the document URL, if any.
func (c *Candidate) URL() string { return c.url }

// CreatedAt returns the document creation timestamp.
func (c *Candidate) CreatedAt() time.Time { return c.createdAt }
