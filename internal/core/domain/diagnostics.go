package domain

import "time"

// DocumentStats summarises one document's trip through the cascade.
// Purely observational; nothing in the core consumes it.
type DocumentStats struct {
	// GroupKey identifies the document.
	GroupKey string `json:"group_key"`

	// SourcePath is the originating file, when known.
	SourcePath string `json:"source_path,omitempty"`

	// Patterns and Variations are the extracted record counts.
	Patterns   int `json:"patterns"`
	Variations int `json:"variations"`

	// Tiers counts resolutions per tier. A rising fallback count signals
	// extraction drift and deserves attention before the data does.
	Tiers map[Tier]int `json:"tiers"`
}

// FallbackCount returns the number of fallback-tier assignments.
func (s DocumentStats) FallbackCount() int {
	return s.Tiers[TierFallback]
}

// RunSummary aggregates per-document stats for one batch run.
type RunSummary struct {
	// RunID uniquely identifies the run.
	RunID string `json:"run_id"`

	// Project is the processed folder name.
	Project string `json:"project"`

	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// Documents holds one entry per successfully linked document.
	Documents []DocumentStats `json:"documents"`

	// Skipped counts documents rejected by the extractor.
	Skipped int `json:"skipped"`
}

// CollectStats builds DocumentStats from a linked document.
func CollectStats(doc *Document) DocumentStats {
	stats := DocumentStats{
		GroupKey:   doc.GroupKey,
		SourcePath: doc.SourcePath,
		Patterns:   len(doc.Patterns),
		Variations: len(doc.Variations),
		Tiers:      make(map[Tier]int),
	}
	for _, v := range doc.Variations {
		if v.Tier != "" {
			stats.Tiers[v.Tier]++
		}
	}
	return stats
}
