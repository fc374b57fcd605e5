package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/lenslink/internal/core/domain"
	"github.com/custodia-labs/lenslink/internal/core/ports/driven"
	"github.com/custodia-labs/lenslink/internal/logger"
)

var linkOutDir string

var linkCmd = &cobra.Command{
	Use:   "link [folder]",
	Short: "Extract and link every lens document in a folder",
	Long: `Walks the folder for supported documents (.docx, .txt, .md), extracts
pattern and variation sections from each, resolves every variation to a
pattern, and writes the linked documents plus a run summary as JSON.`,
	Args: cobra.ExactArgs(1),
	RunE: runLink,
}

func init() {
	linkCmd.Flags().StringVarP(&linkOutDir, "out", "o", "", "output directory (default: alongside the input folder)")
	rootCmd.AddCommand(linkCmd)
}

func runLink(cmd *cobra.Command, args []string) error {
	if extractService == nil || linkService == nil {
		return errors.New("link services not configured")
	}
	folder := filepath.Clean(args[0])
	info, err := os.Stat(folder)
	if err != nil {
		return fmt.Errorf("reading folder: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", folder)
	}

	ctx := cmd.Context()
	summary := domain.RunSummary{
		RunID:     uuid.New().String(),
		Project:   filepath.Base(folder),
		StartedAt: time.Now().UTC(),
	}

	var linked []*domain.Document
	err = filepath.WalkDir(folder, func(path string, d fs.DirEntry, err error) error {
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

		doc, err := processDocument(ctx, reader, path)
		if err != nil {
			if errors.Is(err, domain.ErrNoStructure) {
				summary.Skipped++
				return nil
			}
			return err
		}
		linked = append(linked, doc)
		summary.Documents = append(summary.Documents, domain.CollectStats(doc))
		return nil
	})
	if err != nil {
		return fmt.Errorf("processing %s: %w", folder, err)
	}
	if len(linked) == 0 && summary.Skipped == 0 {
		return fmt.Errorf("no supported documents in %s", folder)
	}

	outDir := resolveOutDir(folder)
	if err := writeOutputs(outDir, summary.Project, linked, summary); err != nil {
		return err
	}

	printSummaryTable(cmd, summary)
	cmd.Printf("\nLinked %d documents (%d skipped) -> %s\n", len(linked), summary.Skipped, outDir)
	return nil
}

// processDocument runs one file through read, extract and link.
func processDocument(ctx context.Context, reader driven.DocumentReader, path string) (*domain.Document, error) {
	lines, err := reader.ReadLines(ctx, path)
	if err != nil {
		logger.Warn("skipping %s: %v", path, err)
		return nil, domain.ErrNoStructure
	}

	groupKey := groupKeyFromPath(path)
	doc, err := extractService.ExtractDocument(groupKey, lines)
	if err != nil {
		return nil, err
	}
	doc.SourcePath = path

	if err := linkService.Link(ctx, doc); err != nil {
		return nil, fmt.Errorf("linking %s: %w", groupKey, err)
	}
	return doc, nil
}

// groupKeyFromPath derives the knowledge-store group key from the file stem.
func groupKeyFromPath(path string) string {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(stem), " ", "_"))
}

// resolveOutDir picks the output directory: the --out flag, then the
// configured output dir, then a "linked" directory beside the input.
func resolveOutDir(folder string) string {
	if linkOutDir != "" {
		return linkOutDir
	}
	if appSettings != nil && appSettings.OutputDir != "" {
		return appSettings.OutputDir
	}
	return filepath.Join(filepath.Dir(folder), filepath.Base(folder)+"_linked")
}

// writeOutputs persists the linked documents and run summary as JSON.
func writeOutputs(outDir, project string, linked []*domain.Document, summary domain.RunSummary) error {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := writeJSON(filepath.Join(outDir, project+"_linked.json"), linked); err != nil {
		return err
	}
	return writeJSON(filepath.Join(outDir, project+"_run.json"), summary)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// printSummaryTable renders per-document tier counts.
func printSummaryTable(cmd *cobra.Command, summary domain.RunSummary) {
	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.AppendHeader(table.Row{
		"Document", "Patterns", "Variations",
		"Structural", "Semantic", "Fuzzy", "Knowledge", "Advisor", "Fallback",
	})
	var totalFallback int
	for _, stats := range summary.Documents {
		t.AppendRow(table.Row{
			stats.GroupKey,
			stats.Patterns,
			stats.Variations,
			stats.Tiers[domain.TierStructural],
			stats.Tiers[domain.TierSemantic],
			stats.Tiers[domain.TierFuzzy],
			stats.Tiers[domain.TierKnowledge],
			stats.Tiers[domain.TierAdvisor],
			stats.FallbackCount(),
		})
		totalFallback += stats.FallbackCount()
	}
	t.SetStyle(table.StyleLight)
	t.Render()

	if totalFallback > 0 {
		logger.Warn("%d variations hit the fallback tier; check extraction quality", totalFallback)
	}
}
