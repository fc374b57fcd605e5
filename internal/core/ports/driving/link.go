package driving

import (
	"context"

	"github.com/custodia-labs/lenslink/internal/core/domain"
)

// LinkService resolves every variation in a document to exactly one
// pattern.
type LinkService interface {
	// Link runs the resolution cascade over the document, attaching each
	// variation to a pattern and recording tier and confidence. After a
	// successful return every variation is resolved.
	Link(ctx context.Context, doc *domain.Document) error
}
