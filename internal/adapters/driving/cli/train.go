package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lenslink/internal/core/domain"
	"github.com/custodia-labs/lenslink/internal/core/ports/driving"
	"github.com/custodia-labs/lenslink/internal/logger"
)

var (
	trainEpochs    int
	trainLR        float64
	trainBatchSize int
	trainSeed      int64
)

var trainCmd = &cobra.Command{
	Use:   "train [folder]",
	Short: "Fit a projection adapter from a folder of lens documents",
	Long: `Extracts every supported document in the folder and fits a linear
projection on top of the embedding backend, using the backend's own best
matches as training labels. The resulting checkpoint is applied to all
future semantic matching.`,
	Args: cobra.ExactArgs(1),
	RunE: runTrain,
}

func init() {
	trainCmd.Flags().IntVar(&trainEpochs, "epochs", 0, "training epochs (default 3)")
	trainCmd.Flags().Float64Var(&trainLR, "lr", 0, "learning rate (default 1e-4)")
	trainCmd.Flags().IntVar(&trainBatchSize, "batch", 0, "mini-batch size (default 32)")
	trainCmd.Flags().Int64Var(&trainSeed, "seed", 0, "shuffle seed (default time-based)")
	rootCmd.AddCommand(trainCmd)
}

func runTrain(cmd *cobra.Command, args []string) error {
	if extractService == nil || trainService == nil {
		return errors.New("train services not configured")
	}
	if checkpointStore == nil {
		return errors.New("checkpoint store not configured")
	}
	folder := filepath.Clean(args[0])
	ctx := cmd.Context()

	var docs []*domain.Document
	skipped := 0
	err := filepath.WalkDir(folder, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		reader := readerFor(strings.ToLower(filepath.Ext(path)))
		if reader == nil {
			return nil
		}
		lines, err := reader.ReadLines(ctx, path)
		if err != nil {
			logger.Warn("skipping %s: %v", path, err)
			skipped++
			return nil
		}
		doc, err := extractService.ExtractDocument(groupKeyFromPath(path), lines)
		if err != nil {
			if errors.Is(err, domain.ErrNoStructure) {
				skipped++
				return nil
			}
			return err
		}
		docs = append(docs, doc)
		return nil
	})
	if err != nil {
		return fmt.Errorf("collecting training documents: %w", err)
	}
	if len(docs) == 0 {
		return fmt.Errorf("no extractable documents in %s", folder)
	}
	logger.Info("collected %d documents (%d skipped)", len(docs), skipped)

	ckpt, err := trainService.Train(ctx, docs, driving.TrainOptions{
		Epochs:       trainEpochs,
		LearningRate: trainLR,
		BatchSize:    trainBatchSize,
		Seed:         trainSeed,
	})
	if err != nil {
		return fmt.Errorf("training adapter: %w", err)
	}

	if err := checkpointStore.Save(ckpt); err != nil {
		return fmt.Errorf("saving checkpoint: %w", err)
	}
	cmd.Printf("Trained projection adapter (dim %d, base %s)\n", ckpt.Dim, ckpt.BaseModel)
	return nil
}
