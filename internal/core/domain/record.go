package domain

// Tier identifies the cascade stage that produced a variation's final
// pattern assignment.
type Tier string

// Resolution tiers, in cascade precedence order.
const (
	// TierStructural is a declared reference or the index fast path.
	TierStructural Tier = "structural"

	// TierSemantic is an embedding cosine-similarity match.
	TierSemantic Tier = "semantic"

	// TierFuzzy is a normalized string-similarity match on titles.
	TierFuzzy Tier = "fuzzy"

	// TierKnowledge is a previously confirmed mapping from the knowledge store.
	TierKnowledge Tier = "knowledge_base"

	// TierAdvisor is a validated suggestion from the external advisor.
	TierAdvisor Tier = "external_advisor"

	// TierFallback attaches an otherwise unresolvable variation to the
	// first pattern. Always a data-quality smell, never a real resolution.
	TierFallback Tier = "fallback"
)

// IsValid returns true if the tier is recognised.
func (t Tier) IsValid() bool {
	switch t {
	case TierStructural, TierSemantic, TierFuzzy, TierKnowledge, TierAdvisor, TierFallback:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (t Tier) String() string {
	return string(t)
}

// Pattern is a parent section extracted from a document. Patterns are
// created once by the extractor; the linker appends matched variations;
// nothing else mutates them.
type Pattern struct {
	// Ordinal is the 1-based position of the pattern heading within its
	// document.
	Ordinal int `json:"ordinal"`

	// Title is the heading title text.
	Title string `json:"title"`

	// Body is the captured section text below the heading.
	Body string `json:"body"`

	// Variations are the child records attached by the linker, in the
	// order they were resolved.
	Variations []*Variation `json:"variations"`
}

// Variation is a child section awaiting (or carrying) a pattern assignment.
type Variation struct {
	// Ordinal is the 1-based position claimed by or assigned to the
	// variation heading.
	Ordinal int `json:"ordinal"`

	// Title is the heading title text.
	Title string `json:"title"`

	// Body is the captured section text below the heading.
	Body string `json:"body"`

	// DeclaredPattern is the pattern ordinal the source text itself claims,
	// or zero when the source declares nothing. May be wrong.
	DeclaredPattern int `json:"declared_pattern,omitempty"`

	// Resolved is the engine's final pattern ordinal, zero until linked.
	Resolved int `json:"resolved_pattern"`

	// Tier names the cascade stage that produced Resolved. Empty until
	// linked.
	Tier Tier `json:"tier,omitempty"`

	// Confidence is the stage score for probabilistic tiers (semantic,
	// fuzzy) and nil for deterministic ones.
	Confidence *float64 `json:"confidence,omitempty"`
}

// Document is one extracted lens document: its group key, preamble summary
// and the pattern/variation records found in it.
type Document struct {
	// ID uniquely identifies this extraction.
	ID string `json:"id"`

	// GroupKey scopes knowledge-store entries to this document so that
	// corrections learned for one lens never leak into another. Derived
	// from the source file stem.
	GroupKey string `json:"group_key"`

	// SourcePath is the originating file, when known.
	SourcePath string `json:"source_path,omitempty"`

	// Summary is the document-level preamble text before the first
	// pattern heading.
	Summary string `json:"summary"`

	// Patterns are the parent records in document order.
	Patterns []*Pattern `json:"patterns"`

	// Variations are the child records in document order. After linking,
	// every entry also appears under exactly one pattern.
	Variations []*Variation `json:"variations"`
}

// PatternByOrdinal returns the pattern with the given ordinal, or nil.
func (d *Document) PatternByOrdinal(ordinal int) *Pattern {
	for _, p := range d.Patterns {
		if p.Ordinal == ordinal {
			return p
		}
	}
	return nil
}

// Unresolved returns the variations that have no assignment yet.
func (d *Document) Unresolved() []*Variation {
	var out []*Variation
	for _, v := range d.Variations {
		if v.Resolved == 0 {
			out = append(out, v)
		}
	}
	return out
}

// AdapterCheckpoint is a trained linear projection applied to embeddings
// before comparison. Created by the trainer, consumed read-only by the
// encoder. Versioned by file replacement only.
type AdapterCheckpoint struct {
	// Dim is the embedding dimension; Weights is Dim x Dim.
	Dim int `json:"dim"`

	// BaseModel is the embedding model the projection was trained against.
	BaseModel string `json:"base_model"`

	// Weights is the square projection matrix, row-major.
	Weights [][]float64 `json:"weights"`
}
