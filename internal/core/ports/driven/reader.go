package driven

import "context"

// DocumentReader extracts ordered plain-text lines from a source file.
// Readers are the boundary to binary document containers; the core makes
// no assumption beyond "ordered non-empty text lines".
type DocumentReader interface {
	// Extensions returns the lowercase file extensions this reader
	// handles, including the dot.
	Extensions() []string

	// ReadLines returns the document's normalized, non-empty text lines
	// in order.
	ReadLines(ctx context.Context, path string) ([]string, error)
}
