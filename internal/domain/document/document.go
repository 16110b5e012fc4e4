// Package document models the indexed knowledge-base document aggregate.
package document

import (
	"fmt"
	"regexp"
	"time"
)

var idRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

const (
	// MaxBodySize is the maximum document body size in bytes.
	MaxBodySize = 163840 // 160KB
	// MaxIDLength bounds document identifiers.
	MaxIDLength = 256
)

// Document is the indexed document aggregate (immutable value object).
type Document struct {
	id        string
	title     string
	body      string
	source    string
	fileType  string
	url       string
	createdAt time.Time
	vector    []float32
}

// New validates and creates a Document.
// ID: ^[a-zA-Z0-9_-]+$, 1-256 chars. Title and body are required, the body
// capped at 160KB. A zero createdAt defaults to now.
func New(id, title, body, source, fileType, url string, createdAt time.Time) (Document, error) {
	if id == "" {
		return Document{}, fmt.Errorf("document ID is required")
	}
	if len(id) > MaxIDLength {
		return Document{}, fmt.Errorf("document ID too long (max %d)", MaxIDLength)
	}
	if !idRegex.MatchString(id) {
		return Document{}, fmt.Errorf("document ID must be alphanumeric with underscores and hyphens")
	}
	if title == "" {
		return Document{}, fmt.Errorf("title is required")
	}
	if body == "" {
		return Document{}, fmt.Errorf("body is required")
	}
	if len(body) > MaxBodySize {
		return Document{}, fmt.Errorf("body too large (max %d bytes)", MaxBodySize)
	}
	if source == "" {
		return Document{}, fmt.Errorf("source is required")
	}
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	return Document{
		id:        id,
		title:     title,
		body:      body,
		source:    source,
		fileType:  fileType,
		url:       url,
		createdAt: createdAt.UTC(),
	}, nil
}

// Reconstruct creates a Document without validation (storage hydration).
func Reconstruct(
	id, title, body, source, fileType, url string,
	createdAt time.Time, vector []float32,
) Document {
	return Document{
		id: id, title: title, body: body, source: source, fileType: fileType,
		url: url, createdAt: createdAt, vector: vector,
	}
}

// ID returns the document identifier.
func (d *Document) ID() string { return d.id }

// Title returns the document title.
func (d *Document) Title() string { return d.title }

// Body returns the document text content.
func (d *Document) Body() string { return d.body }

// Source returns the originating system (wiki, jira, drive, ...).
func (d *Document) Source() string { return d.source }

// FileType returns the document file type.
func (d *Document) FileType() string { return d.fileType }

// URL returns the document URL, if any.
func (d *Document) URL() string { return d.url }

// CreatedAt returns the document creation timestamp (UTC).
func (d *Document) CreatedAt() time.Time { return d.createdAt }

// Vector returns the embedding vector.
func (d *Document) Vector() []float32 { return d.vector }

// WithVector returns a copy with the given vector set.
func (d *Document) WithVector(v []float32) Document {
	c := *d
	c.vector = v
	return c
}
