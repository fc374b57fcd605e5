package driving

import "github.com/custodia-labs/lenslink/internal/core/domain"

// ExtractService turns ordered text lines into structured documents.
type ExtractService interface {
	// ExtractDocument scans the lines of one document for pattern and
	// variation headings. Returns domain.ErrNoStructure for documents
	// with no patterns or an invalid preamble.
	ExtractDocument(groupKey string, lines []string) (*domain.Document, error)
}
