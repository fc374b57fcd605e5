package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/lenslink/internal/core/domain"
	"github.com/custodia-labs/lenslink/internal/core/ports/driven"
	"github.com/custodia-labs/lenslink/internal/core/ports/driving"
	"github.com/custodia-labs/lenslink/internal/logger"
	"github.com/custodia-labs/lenslink/internal/textutil"
)

// Ensure LinkService implements the interface.
var _ driving.LinkService = (*LinkService)(nil)

// SemanticEncoder is the capability the semantic tier needs. Absence or
// failure of the real embedding backend degrades the cascade, never the
// engine.
type SemanticEncoder interface {
	// Available reports whether encoding can be attempted at all.
	Available() bool

	// Encode returns one unit-length vector per input text.
	Encode(ctx context.Context, texts []string) ([][]float64, error)
}

// LinkService resolves variations to patterns through a cascade of
// strategies of increasing cost and decreasing reliability. Stages run in
// strict precedence order; each sees only the variations left unresolved
// by earlier stages.
type LinkService struct {
	encoder  SemanticEncoder
	kb       driven.KnowledgeStore
	advisor  driven.MappingAdvisor
	settings domain.LinkSettings
}

// NewLinkService creates a linkage engine. The encoder, knowledge store
// and advisor are all optional (can be nil); the fallback stage guarantees
// totality regardless.
func NewLinkService(
	encoder SemanticEncoder,
	kb driven.KnowledgeStore,
	advisor driven.MappingAdvisor,
	settings domain.LinkSettings,
) *LinkService {
	return &LinkService{
		encoder:  encoder,
		kb:       kb,
		advisor:  advisor,
		settings: settings,
	}
}

// Link runs the cascade over one document. On return every variation has
// a resolved pattern ordinal and a tier; only the advisor stage may have
// written to the knowledge store.
func (s *LinkService) Link(ctx context.Context, doc *domain.Document) error {
	if doc == nil || len(doc.Patterns) == 0 {
		return fmt.Errorf("link: %w", domain.ErrInvalidInput)
	}
	logger.Section("Linking " + doc.GroupKey)

	if s.structuralStage(doc) {
		return nil
	}
	if err := s.semanticStage(ctx, doc); err != nil {
		if errIsUnavailable(err) {
			logger.Debug("semantic stage skipped for %s: %v", doc.GroupKey, err)
		} else {
			logger.Warn("semantic stage skipped for %s: %v", doc.GroupKey, err)
		}
	}
	s.fuzzyStage(doc)
	if err := s.knowledgeStage(ctx, doc); err != nil {
		logger.Warn("knowledge stage skipped for %s: %v", doc.GroupKey, err)
	}
	s.advisorStage(ctx, doc)
	s.fallbackStage(doc)
	return nil
}

// assign records a resolution and attaches the variation to its pattern.
func assign(doc *domain.Document, v *domain.Variation, patternOrdinal int, tier domain.Tier, confidence *float64) {
	target := doc.PatternByOrdinal(patternOrdinal)
	v.Resolved = patternOrdinal
	v.Tier = tier
	v.Confidence = confidence
	target.Variations = append(target.Variations, v)
}

// structuralStage applies valid declared references, then the index fast
// path: when variation and pattern ordinals are both exactly 1..N, map
// i -> i and short-circuit the rest of the cascade for the whole document.
// Deterministic, so no confidence is recorded. Returns true when the fast
// path handled the document completely.
func (s *LinkService) structuralStage(doc *domain.Document) bool {
	for _, v := range doc.Unresolved() {
		if v.DeclaredPattern != 0 && doc.PatternByOrdinal(v.DeclaredPattern) != nil {
			logger.Debug("declared reference: variation %d -> pattern %d", v.Ordinal, v.DeclaredPattern)
			assign(doc, v, v.DeclaredPattern, domain.TierStructural, nil)
		}
	}

	if s.settings.DisableIndexMap {
		return false
	}
	unresolved := doc.Unresolved()
	if len(unresolved) == 0 {
		return len(doc.Variations) > 0
	}
	if len(doc.Variations) != len(doc.Patterns) {
		return false
	}
	if !isContiguousRange(ordinalsOfPatterns(doc.Patterns)) ||
		!isContiguousRange(ordinalsOfVariations(doc.Variations)) {
		return false
	}

	logger.Info("index fast path: %d aligned sections", len(doc.Patterns))
	for _, v := range unresolved {
		assign(doc, v, v.Ordinal, domain.TierStructural, nil)
	}
	return true
}

// semanticStage assigns each unresolved variation to its most similar
// pattern by embedding cosine similarity, accepting matches at or above
// the threshold.
func (s *LinkService) semanticStage(ctx context.Context, doc *domain.Document) error {
	unresolved := doc.Unresolved()
	if len(unresolved) == 0 {
		return nil
	}
	if s.encoder == nil || !s.encoder.Available() {
		return domain.ErrEmbeddingUnavailable
	}

	patternTexts := make([]string, len(doc.Patterns))
	for i, p := range doc.Patterns {
		patternTexts[i] = PatternText(p)
	}
	variationTexts := make([]string, len(unresolved))
	for i, v := range unresolved {
		variationTexts[i] = VariationText(v)
	}

	patternVecs, err := s.encoder.Encode(ctx, patternTexts)
	if err != nil {
		return err
	}
	variationVecs, err := s.encoder.Encode(ctx, variationTexts)
	if err != nil {
		return err
	}

	for i, v := range unresolved {
		bestIdx, bestScore := -1, 0.0
		for j := range doc.Patterns {
			if score := dot(variationVecs[i], patternVecs[j]); bestIdx == -1 || score > bestScore {
				bestIdx, bestScore = j, score
			}
		}
		if bestScore < s.settings.SemanticThreshold {
			logger.Debug("semantic: variation %d best %.3f below threshold %.3f",
				v.Ordinal, bestScore, s.settings.SemanticThreshold)
			continue
		}
		score := bestScore
		assign(doc, v, doc.Patterns[bestIdx].Ordinal, domain.TierSemantic, &score)
		logger.Debug("semantic: variation %d -> pattern %d (%.3f)",
			v.Ordinal, doc.Patterns[bestIdx].Ordinal, bestScore)
	}
	return nil
}

// fuzzyStage assigns by normalized title-similarity ratio.
func (s *LinkService) fuzzyStage(doc *domain.Document) {
	unresolved := doc.Unresolved()
	if len(unresolved) > 0 {
		logger.Debug("unresolved after semantic stage: %d, trying fuzzy titles", len(unresolved))
	}
	for _, v := range unresolved {
		var best *domain.Pattern
		bestScore := 0.0
		for _, p := range doc.Patterns {
			if score := textutil.FuzzyRatio(v.Title, p.Title); score > bestScore {
				best, bestScore = p, score
			}
		}
		if best == nil || bestScore < s.settings.FuzzyThreshold {
			continue
		}
		score := bestScore
		assign(doc, v, best.Ordinal, domain.TierFuzzy, &score)
		logger.Debug("fuzzy: variation %d -> pattern %d (%.3f)", v.Ordinal, best.Ordinal, bestScore)
	}
}

// knowledgeStage applies previously confirmed mappings. These reflect
// confirmed facts rather than scores, so confidence stays nil.
func (s *LinkService) knowledgeStage(ctx context.Context, doc *domain.Document) error {
	unresolved := doc.Unresolved()
	if len(unresolved) == 0 || s.kb == nil {
		return nil
	}
	mapping, err := s.kb.GetMapping(ctx, doc.GroupKey)
	if err != nil {
		return fmt.Errorf("knowledge lookup: %w", err)
	}
	for _, v := range unresolved {
		target, ok := mapping[v.Ordinal]
		if !ok || doc.PatternByOrdinal(target) == nil {
			continue
		}
		assign(doc, v, target, domain.TierKnowledge, nil)
		logger.Debug("knowledge: variation %d -> pattern %d", v.Ordinal, target)
	}
	return nil
}

// advisorStage consults the external advisor once per document, validates
// every suggestion against the actual pattern set, applies the accepted
// ones and persists them for future runs. Any advisor failure degrades to
// "no suggestion".
func (s *LinkService) advisorStage(ctx context.Context, doc *domain.Document) {
	unresolved := doc.Unresolved()
	if len(unresolved) == 0 || s.advisor == nil || !s.advisor.Available() {
		return
	}
	logger.Debug("unresolved after knowledge stage: %d, consulting advisor", len(unresolved))

	suggested, err := s.advisor.SuggestMapping(ctx, doc.GroupKey, doc.Patterns, doc.Variations)
	if err != nil {
		logger.Warn("advisor consultation failed for %s: %v", doc.GroupKey, err)
		return
	}

	accepted := make(map[int]int)
	for _, v := range unresolved {
		target, ok := suggested[v.Ordinal]
		if !ok {
			continue
		}
		if doc.PatternByOrdinal(target) == nil {
			logger.Warn("advisor suggested nonexistent pattern %d for variation %d: discarded",
				target, v.Ordinal)
			continue
		}
		assign(doc, v, target, domain.TierAdvisor, nil)
		accepted[v.Ordinal] = target
		logger.Debug("advisor: variation %d -> pattern %d", v.Ordinal, target)
	}

	if len(accepted) > 0 && s.kb != nil {
		if err := s.kb.AddMapping(ctx, doc.GroupKey, accepted); err != nil {
			logger.Warn("persisting advisor mappings for %s failed: %v", doc.GroupKey, err)
		}
	}
}

// fallbackStage attaches whatever is left to the first pattern in document
// order (or a configured ordinal). This keeps the totality invariant but
// is a data-quality smell; the count is surfaced in run diagnostics.
func (s *LinkService) fallbackStage(doc *domain.Document) {
	unresolved := doc.Unresolved()
	if len(unresolved) == 0 {
		return
	}
	target := doc.Patterns[0].Ordinal
	if s.settings.FallbackPattern != 0 && doc.PatternByOrdinal(s.settings.FallbackPattern) != nil {
		target = s.settings.FallbackPattern
	}
	logger.Warn("fallback: attaching %d unresolved variations of %s to pattern %d",
		len(unresolved), doc.GroupKey, target)
	for _, v := range unresolved {
		assign(doc, v, target, domain.TierFallback, nil)
	}
}

// isContiguousRange reports whether the ordinals are exactly 1..N.
func isContiguousRange(ordinals []int) bool {
	if len(ordinals) == 0 {
		return false
	}
	seen := make(map[int]bool, len(ordinals))
	for _, n := range ordinals {
		if n < 1 || n > len(ordinals) || seen[n] {
			return false
		}
		seen[n] = true
	}
	return true
}

func ordinalsOfPatterns(patterns []*domain.Pattern) []int {
	out := make([]int, len(patterns))
	for i, p := range patterns {
		out[i] = p.Ordinal
	}
	return out
}

func ordinalsOfVariations(variations []*domain.Variation) []int {
	out := make([]int, len(variations))
	for i, v := range variations {
		out[i] = v.Ordinal
	}
	return out
}

// errIsUnavailable reports capability-unavailability errors that should be
// logged at debug rather than warn level.
func errIsUnavailable(err error) bool {
	return errors.Is(err, domain.ErrEmbeddingUnavailable) || errors.Is(err, domain.ErrAdvisorUnavailable)
}
