package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lenslink/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/lenslink/internal/core/domain"
	"github.com/custodia-labs/lenslink/internal/core/ports/driven"
	"github.com/custodia-labs/lenslink/internal/core/services"
	"github.com/custodia-labs/lenslink/internal/readers/plaintext"
)

// setupTestServices wires real services with in-memory storage and no
// optional capabilities, restoring the previous globals on cleanup.
func setupTestServices(t *testing.T) *memory.KnowledgeStore {
	t.Helper()
	prevExtract := extractService
	prevLink := linkService
	prevTrain := trainService
	prevKB := knowledgeStore
	prevCkpt := checkpointStore
	prevReaders := documentReaders
	prevSettings := appSettings

	kb := memory.NewKnowledgeStore()
	settings := domain.DefaultAppSettings()
	extractService = services.NewExtractService(settings.Extract)
	linkService = services.NewLinkService(nil, kb, nil, settings.Link)
	knowledgeStore = kb
	documentReaders = []driven.DocumentReader{plaintext.New()}
	appSettings = settings

	t.Cleanup(func() {
		extractService = prevExtract
		linkService = prevLink
		trainService = prevTrain
		knowledgeStore = prevKB
		checkpointStore = prevCkpt
		documentReaders = prevReaders
		appSettings = prevSettings
	})
	return kb
}

// writeLensFile writes a text document into dir.
func writeLensFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0600))
}

// wellFormedLens is a document whose variations align positionally with
// its patterns.
const wellFormedLens = `Club Tactics Lens
This lens collects the recurring tactical patterns from club games.
Each variation refines one base pattern with a concrete move order.
Pattern 1: Greek Gift Sacrifice
The bishop goes to h7 and the king walk begins.
Pattern 2: Minority Attack
Queenside pawns advance to create a weak pawn.
Variation 1: Greek Gift Declined
Black tucks the king away instead of capturing.
Variation 2: Minority Attack Deferred
White waits for the rooks before pushing.
`

// structurelessLens has no pattern headings at all.
const structurelessLens = `Notes
Just prose without any recognisable section structure at all.
More prose follows, still without a single numbered heading.
`
