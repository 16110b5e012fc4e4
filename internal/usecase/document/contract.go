package document

import (
	"context"

	"github.com/veridian-kb/searchd/internal/domain"
	domdoc "github.com/veridian-kb/searchd/internal/domain/document"
)

// Repository defines the storage contract for documents.
type Repository interface {
	Put(ctx context.Context, doc *domdoc.Document) (created bool, err error)
	Delete(ctx context.Context, id string) error
}

// PermissionWriter grants and revokes per-identity document access.
type PermissionWriter interface {
	Grant(ctx context.Context, identity domain.Identity, ids ...string) error
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
