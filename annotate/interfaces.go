package annotate

import (
	"context"

	"github.com/poiesic/conceptmap/core"
)

// Backend loads language models.
// Implementations must be thread-safe for concurrent use.
type Backend interface {
	// Name identifies the backend. It is part of annotation cache keys,
	// so two backends must never share a name.
	Name() string

	// Load opens the named model for a language.
	// Returns an error wrapping ErrModelMissing when the model is not installed.
	Load(ctx context.Context, lang core.Language, model string) (Model, error)

	// Acquire installs the named model so that a later Load can succeed.
	// Backends that cannot install models return ErrAcquireUnsupported.
	Acquire(ctx context.Context, lang core.Language, model string) error
}

// Model annotates text in one language.
// Implementations must be thread-safe for concurrent use.
type Model interface {
	// Annotate tokenizes, tags and parses text.
	// Tokens are returned in input order. Lower and IsStop may be left
	// empty; the Annotator fills them in.
	Annotate(ctx context.Context, text string) ([]core.Token, error)

	// Close releases the resources held by the model.
	Close() error
}
