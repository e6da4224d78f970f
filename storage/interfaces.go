package storage

import (
	"context"

	"github.com/poiesic/conceptmap/core"
)

// AnnotationRepository caches annotated token sequences.
// Implementations must be thread-safe and support concurrent access.
type AnnotationRepository interface {
	// GetAnnotation retrieves the tokens stored under id.
	// Returns ErrNotFound if nothing is stored or the entry expired.
	GetAnnotation(ctx context.Context, id core.ID) ([]core.Token, error)

	// PutAnnotation stores tokens under id, replacing any previous entry.
	PutAnnotation(ctx context.Context, id core.ID, tokens []core.Token) error

	// DeleteAnnotations removes every cached annotation.
	DeleteAnnotations(ctx context.Context) error

	// Close closes the storage backend and releases resources.
	Close() error
}
