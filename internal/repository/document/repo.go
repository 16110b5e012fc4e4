// Package document persists indexed documents as Redis hashes and manages
// the FT index over them.
package document

import (
	"context"
	"errors"
	"fmt"

	"github.com/veridian-kb/searchd/internal/db"
	"github.com/veridian-kb/searchd/internal/domain"
	domdoc "github.com/veridian-kb/searchd/internal/domain/document"
	"github.com/veridian-kb/searchd/internal/repository/docindex"
)

// store is the consumer interface for documents (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Repo implements usecase/document.Repository.
type Repo struct {
	store store
}

// New creates a document repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Put creates or updates a document. Returns true if created.
func (r *Repo) Put(ctx context.Context, doc *domdoc.Document) (bool, error) {
	key := docindex.DocKey(doc.ID())

	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return false, fmt.Errorf("check exists %s: %w", key, err)
	}

	if err := r.store.HSet(ctx, key, buildHashFields(doc)); err != nil {
		return false, fmt.Errorf("hset %s: %w", key, err)
	}

	return !exists, nil
}

// Delete removes a document.
func (r *Repo) Delete(ctx context.Context, id string) error {
	key := docindex.DocKey(id)

	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check exists %s: %w", key, err)
	}
	if !exists {
		return domain.ErrDocumentNotFound
	}

	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	return nil
}

// EnsureIndex creates the document FT index if it does not exist.
func (r *Repo) EnsureIndex(
	ctx context.Context, vectorDim int, titleWeight float64, hnsw docindex.HNSWConfig,
) error {
	exists, err := r.store.IndexExists(ctx, docindex.IndexName)
	if err != nil {
		return fmt.Errorf("check index %s: %w", docindex.IndexName, err)
	}
	if exists {
		return nil
	}

	def := docindex.BuildIndexDefinition(vectorDim, titleWeight, hnsw)
	if err := r.store.CreateIndex(ctx, def); err != nil {
		// Lost the create race with another replica.
		if errors.Is(err, db.ErrIndexExists) {
			return nil
		}
		return fmt.Errorf("create index %s: %w", docindex.IndexName, err)
	}
	return nil
}
