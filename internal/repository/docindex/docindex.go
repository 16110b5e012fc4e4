// Package docindex defines the single document index shared by the semantic
// and keyword retrieval legs: key layout, FT schema, and hit parsing.
package docindex

import (
	"strconv"
	"strings"
	"time"

	"github.com/veridian-kb/searchd/internal/db"
	"github.com/veridian-kb/searchd/internal/domain"
	"github.com/veridian-kb/searchd/internal/domain/search/candidate"
)

// Index and key names.
const (
	// IndexName is the FT index over all searchable documents.
	IndexName = domain.KeyPrefix + "docs:idx"
	// DocPrefix prefixes every document hash key.
	DocPrefix = domain.KeyPrefix + "docs:"
)

// Document hash field names.
const (
	FieldTitle     = "title"
	FieldBody      = "body"
	FieldSource    = "source"
	FieldFileType  = "file_type"
	FieldURL       = "url"
	FieldCreatedAt = "created_at"
	FieldVector    = "__vector"
)

// SnippetLength caps the snippet carried in search results.
const SnippetLength = 240

// ReturnFields lists the hash fields fetched for search hits. The vector is
// deliberately absent: result sets never need it.
var ReturnFields = []string{
	FieldTitle, FieldBody, FieldSource, FieldFileType, FieldURL, FieldCreatedAt,
}

// HNSWConfig holds HNSW build parameters for the vector field.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

// BuildIndexDefinition assembles the FT.CREATE definition for the document
// index. titleWeight boosts title-field BM25 contributions over body matches.
func BuildIndexDefinition(vectorDim int, titleWeight float64, hnsw HNSWConfig) *db.IndexDefinition {
	return &db.IndexDefinition{
		Name:     IndexName,
		Prefixes: []string{DocPrefix},
		Fields: []db.IndexField{
			{Name: FieldTitle, Type: db.IndexFieldText, TextWeight: titleWeight},
			{Name: FieldBody, Type: db.IndexFieldText},
			{Name: FieldSource, Type: db.IndexFieldTag},
			{Name: FieldFileType, Type: db.IndexFieldTag},
			{Name: FieldCreatedAt, Type: db.IndexFieldNumeric},
			{
				Name:              FieldVector,
				Alias:             "vector",
				Type:              db.IndexFieldVector,
				VectorAlgo:        db.VectorHNSW,
				VectorDim:         vectorDim,
				VectorDistance:    db.DistanceCosine,
				VectorM:           hnsw.M,
				VectorEFConstruct: hnsw.EFConstruct,
			},
		},
	}
}

// DocKey returns the hash key for a document id.
func DocKey(id string) string {
	return DocPrefix + id
}

// ParseEntry converts a search hit into a candidate. score must already be
// normalized to [0,1] by the caller; rank is the hit's position in its leg.
func ParseEntry(entry db.SearchEntry, score float64, rank int) candidate.Candidate {
	id := strings.TrimPrefix(entry.Key, DocPrefix)

	var createdAt time.Time
	if raw, ok := entry.Fields[FieldCreatedAt]; ok {
		if unix, err := strconv.ParseInt(raw, 10, 64); err == nil {
			createdAt = time.Unix(unix, 0).UTC()
		}
	}

	return candidate.New(
		id, score, rank,
		entry.Fields[FieldTitle],
		Snippet(entry.Fields[FieldBody]),
		entry.Fields[FieldSource],
		entry.Fields[FieldFileType],
		entry.Fields[FieldURL],
		createdAt,
	)
}

// Snippet truncates body text to SnippetLength runes on a rune boundary.
func Snippet(body string) string {
	runes := []rune(body)
	if len(runes) <= SnippetLength {
		return body
	}
	return string(runes[:SnippetLength])
}
