// Package cli implements the lenslink command tree. Services are injected
// from the composition root via the Set* functions before Execute runs.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/lenslink/internal/core/domain"
	"github.com/custodia-labs/lenslink/internal/core/ports/driven"
	"github.com/custodia-labs/lenslink/internal/core/ports/driving"
	"github.com/custodia-labs/lenslink/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Injected collaborators.
var (
	extractService  driving.ExtractService
	linkService     driving.LinkService
	trainService    driving.TrainService
	knowledgeStore  driven.KnowledgeStore
	checkpointStore driven.CheckpointStore
	documentReaders []driven.DocumentReader
	appSettings     *domain.AppSettings
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "lenslink",
	Short: "Link variation sections to their patterns across lens documents",
	Long: `lenslink extracts pattern and variation sections from lens documents
and assigns every variation to exactly one pattern through a cascade of
structural, semantic, fuzzy, knowledge-base and advisor strategies.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

// SetExtractService injects the extraction service.
func SetExtractService(svc driving.ExtractService) {
	extractService = svc
}

// SetLinkService injects the linkage engine.
func SetLinkService(svc driving.LinkService) {
	linkService = svc
}

// SetTrainService injects the adapter trainer.
func SetTrainService(svc driving.TrainService) {
	trainService = svc
}

// SetKnowledgeStore injects the knowledge store.
func SetKnowledgeStore(store driven.KnowledgeStore) {
	knowledgeStore = store
}

// SetCheckpointStore injects the checkpoint store.
func SetCheckpointStore(store driven.CheckpointStore) {
	checkpointStore = store
}

// SetDocumentReaders injects the file readers, in lookup order.
func SetDocumentReaders(readers []driven.DocumentReader) {
	documentReaders = readers
}

// SetAppSettings injects the loaded application settings.
func SetAppSettings(settings *domain.AppSettings) {
	appSettings = settings
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// readerFor returns the reader registered for a file extension, or nil.
func readerFor(ext string) driven.DocumentReader {
	for _, r := range documentReaders {
		for _, e := range r.Extensions() {
			if e == ext {
				return r
			}
		}
	}
	return nil
}
