package documents

import "context"

// Repo defines storage operations for documents.
type Repo interface {
	Create(ctx context.Context, doc Document) error
	GetByID(ctx context.Context, id string) (Document, error)
	// Latest returns the most recently uploaded document.
	Latest(ctx context.Context) (Document, error)
	// List returns documents newest first, honoring limit/offset. limit <= 0 means no limit.
	List(ctx context.Context, limit, offset int) ([]Document, error)
}
