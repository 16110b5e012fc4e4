package domain

import "errors"

var (
	// ErrInvalidQuery signals a malformed search request.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrEmbeddingTimeout signals that the embedding call exceeded its sub-timeout.
	ErrEmbeddingTimeout = errors.New("embedding timeout")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrSemanticUnavailable signals that the vector leg failed or timed out.
	ErrSemanticUnavailable = errors.New("semantic search unavailable")
	// ErrKeywordUnavailable signals that the lexical leg failed or timed out.
	ErrKeywordUnavailable = errors.New("keyword search unavailable")
	// ErrBothLegsFailed signals that neither retrieval leg produced candidates.
	ErrBothLegsFailed = errors.New("both search legs failed")
	// ErrPermissionUnavailable signals that the permission store could not be
	// consulted. Callers must fail closed.
	ErrPermissionUnavailable = errors.New("permission store unavailable")
	// ErrCacheUnavailable signals a result cache failure. Non-fatal, bypass caching.
	ErrCacheUnavailable = errors.New("result cache unavailable")
	// ErrInvalidDocument signals a malformed document write.
	ErrInvalidDocument = errors.New("invalid document")
	// ErrDocumentNotFound signals a missing document.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrIndexNotFound signals a missing search index.
	ErrIndexNotFound = errors.New("search index not found")
	// ErrUnauthorized signals a missing or invalid identity.
	ErrUnauthorized = errors.New("unauthorized")
)
