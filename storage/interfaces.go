package storage

import (
	"context"

	"github.com/poiesic/telsearch/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// PassageRepository provides operations for managing derived passages.
type PassageRepository interface {
	Repository

	// PutPassages stores one or more passages, overwriting existing
	// entries with the same content ID. Passage IDs are content-based,
	// so re-storing an unchanged passage is a no-op in effect.
	PutPassages(ctx context.Context, passages ...*core.Passage) error

	// GetPassage retrieves a single passage by ID.
	// Returns ErrNotFound if the passage doesn't exist.
	GetPassage(ctx context.Context, id core.ID) (*core.Passage, error)

	// GetPassages retrieves multiple passages by their IDs.
	// Returns only the passages that exist (no error for missing ones).
	GetPassages(ctx context.Context, ids ...core.ID) ([]*core.Passage, error)

	// GetPassagesByDoc retrieves every stored passage of one document.
	GetPassagesByDoc(ctx context.Context, docID string) ([]*core.Passage, error)

	// AllPassages retrieves every stored passage. Used to warm the
	// search snapshot at startup.
	AllPassages(ctx context.Context) ([]*core.Passage, error)

	// DeletePassagesByDoc removes all passages of a document, typically
	// ahead of re-generating them. Missing documents are not an error.
	DeletePassagesByDoc(ctx context.Context, docID string) error
}

// DocumentRepository provides operations for managing source documents.
type DocumentRepository interface {
	Repository

	// PutDocuments stores one or more documents, overwriting existing
	// entries with the same document ID.
	PutDocuments(ctx context.Context, docs ...*core.Document) error

	// GetDocument retrieves a single document by its ID.
	// Returns ErrNotFound if the document doesn't exist.
	GetDocument(ctx context.Context, docID string) (*core.Document, error)

	// AllDocuments retrieves every stored document.
	AllDocuments(ctx context.Context) ([]*core.Document, error)

	// DeleteDocuments removes documents by their IDs.
	// Returns ErrNotFound if any document doesn't exist.
	DeleteDocuments(ctx context.Context, docIDs ...string) error
}
