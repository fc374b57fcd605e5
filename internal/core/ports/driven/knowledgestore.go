package driven

import "context"

// KnowledgeStore persists confirmed variation-to-pattern mappings, scoped
// by document group key so corrections for one lens never leak into
// another. Entries grow only through explicit confirmation (the advisor
// path); reads happen at the start of every link, writes immediately after
// any new confirmation.
//
// The store is not designed for concurrent writers; batch runs are
// single-threaded.
type KnowledgeStore interface {
	// GetMapping returns the stored variation-ordinal to pattern-ordinal
	// mapping for a group key. A missing group yields an empty map, not
	// an error.
	GetMapping(ctx context.Context, groupKey string) (map[int]int, error)

	// AddMapping merges additions into the stored mapping for a group key
	// (last write wins per ordinal) and persists immediately.
	AddMapping(ctx context.Context, groupKey string, additions map[int]int) error

	// Groups lists every group key with at least one stored mapping.
	Groups(ctx context.Context) ([]string, error)

	// DeleteGroup removes all mappings for a group key.
	DeleteGroup(ctx context.Context, groupKey string) error

	// Close releases resources.
	Close() error
}
