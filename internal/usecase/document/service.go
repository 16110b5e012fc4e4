// Package document handles document writes: embedding at write time, the
// index hash record, and initial permission grants.
package document

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/veridian-kb/searchd/internal/domain"
	domdoc "github.com/veridian-kb/searchd/internal/domain/document"
)

// Input is a document write request.
type Input struct {
	ID              string
	Title           string
	Body            string
	Source          string
	FileType        string
	URL             string
	CreatedAt       time.Time
	AllowedSubjects []string
}

// Service handles document ingestion and deletion.
type Service struct {
	repo  Repository
	perms PermissionWriter
	embed Embedder
}

// New creates a document service.
func New(repo Repository, perms PermissionWriter, embed Embedder) *Service {
	return &Service{repo: repo, perms: perms, embed: embed}
}

// Ingest validates, embeds, and stores a document, then grants read access
// to the listed subjects. An empty ID gets a generated one. Returns the
// stored ID and whether the document was created (vs updated).
func (s *Service) Ingest(ctx context.Context, in Input) (string, bool, error) {
	id := in.ID
	if id == "" {
		id = uuid.NewString()
	}

	doc, err := domdoc.New(id, in.Title, in.Body, in.Source, in.FileType, in.URL, in.CreatedAt)
	if err != nil {
		return "", false, fmt.Errorf("%w: %w", domain.ErrInvalidDocument, err)
	}

	// Embedded at write time so search never embeds documents on the read path.
	embResult, err := s.embed.Embed(ctx, in.Title+"\n"+in.Body)
	if err != nil {
		return "", false, fmt.Errorf("%w: %w", domain.ErrEmbeddingProviderError, err)
	}
	doc = doc.WithVector(embResult.Embedding)

	created, err := s.repo.Put(ctx, &doc)
	if err != nil {
		return "", false, fmt.Errorf("store document %s: %w", id, err)
	}

	for _, subject := range in.AllowedSubjects {
		identity, err := domain.NewIdentity(subject)
		if err != nil {
			return "", false, fmt.Errorf("grant subject: %w", err)
		}
		if err := s.perms.Grant(ctx, identity, id); err != nil {
			return "", false, err
		}
	}

	return id, created, nil
}

// Delete removes a document from the index. Cached result sets referencing
// it age out with the cache TTL; permission set entries for a deleted ID are
// harmless because the ID can no longer appear as a candidate.
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: document ID is required", domain.ErrInvalidDocument)
	}
	return s.repo.Delete(ctx, id)
}
