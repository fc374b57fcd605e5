package driven

import (
	"context"

	"github.com/custodia-labs/lenslink/internal/core/domain"
)

// MappingAdvisor proposes variation-to-pattern assignments for a document.
// Its output is untrusted advice: the linkage engine validates every
// suggested ordinal against the actual pattern set before use.
//
// Implementations must degrade rather than fail: a timeout, network error
// or malformed reply yields an empty mapping plus an error the caller logs
// and ignores.
type MappingAdvisor interface {
	// SuggestMapping requests a full variation-ordinal to pattern-ordinal
	// mapping for the document's titles.
	SuggestMapping(ctx context.Context, groupKey string, patterns []*domain.Pattern, variations []*domain.Variation) (map[int]int, error)

	// Available reports whether the advisor can be consulted at all.
	Available() bool
}
