package services

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/lenslink/internal/core/domain"
	"github.com/custodia-labs/lenslink/internal/core/ports/driving"
	"github.com/custodia-labs/lenslink/internal/logger"
	"github.com/custodia-labs/lenslink/internal/textutil"
)

// Ensure ExtractService implements the interface.
var _ driving.ExtractService = (*ExtractService)(nil)

// Heading grammars. Pattern and variation headings share the shape
// "keyword + number + separator + title" under a small family of surface
// forms; variations additionally allow an optional explicit pattern
// reference in the title, e.g. "Variation 4 (Pattern 2): Counterplay".
var (
	patternHeadingRe   = regexp.MustCompile(`(?i)^(?:pattern|task|part)\s*(\d+)[:\-.)\s]+(.+)$`)
	variationHeadingRe = regexp.MustCompile(`(?i)^(?:variation|var|option)\s*(\d+)[:\-.)\s]+(.+)$`)
	anyHeadingRe       = regexp.MustCompile(`(?i)^(?:pattern|task|part|variation|var|option)\s*\d+[:\-.)\s]+`)
	patternRefRe       = regexp.MustCompile(`(?i)[(\[]\s*pattern\s+(\d+)\s*[)\]]`)
	firstSectionRe     = regexp.MustCompile(`(?i)^(?:task\s*1|pattern\s*1|part\s*i)\b`)
	titlePrefixRe      = regexp.MustCompile(`^.*?\b\d+[:\-.)\s]+`)
)

// minSummaryChars is the preamble length gate: a single stray title line is
// not a descriptive summary.
const minSummaryChars = 50

// ExtractService scans ordered text lines for pattern and variation
// headings, capturing section bodies and the document preamble.
type ExtractService struct {
	fullBodies bool
}

// NewExtractService creates a structural extractor.
func NewExtractService(settings domain.ExtractSettings) *ExtractService {
	return &ExtractService{fullBodies: settings.FullBodies}
}

// heading is an intermediate scan record.
type heading struct {
	lineIdx     int
	ordinal     int
	title       string
	isPattern   bool
	declaredPat int
	zeroLiteral bool
}

// ExtractDocument scans the lines of one document. Returns
// domain.ErrNoStructure when no pattern headings are found or the preamble
// fails the validity gate.
func (s *ExtractService) ExtractDocument(groupKey string, lines []string) (*domain.Document, error) {
	if len(lines) == 0 {
		return nil, domain.ErrNoStructure
	}

	headings := s.scanHeadings(lines)

	var patterns, variations []heading
	for _, h := range headings {
		if h.isPattern {
			patterns = append(patterns, h)
		} else {
			variations = append(variations, h)
		}
	}
	if len(patterns) == 0 {
		logger.Warn("skipping %s: no pattern headings found", groupKey)
		return nil, domain.ErrNoStructure
	}

	summary, hasSummary := s.extractSummary(lines)
	if !hasSummary {
		logger.Warn("skipping %s: preamble too short to be a summary", groupKey)
		return nil, domain.ErrNoStructure
	}

	resolveZeroOrdinals(variations)

	doc := &domain.Document{
		ID:       uuid.New().String(),
		GroupKey: groupKey,
		Summary:  summary,
	}
	bodies := s.captureBodies(lines, headings)
	for i, h := range patterns {
		doc.Patterns = append(doc.Patterns, &domain.Pattern{
			Ordinal: h.ordinal,
			Title:   h.title,
			Body:    bodies[patternBodyKey(patterns[i])],
		})
	}
	for _, h := range variations {
		doc.Variations = append(doc.Variations, &domain.Variation{
			Ordinal:         h.ordinal,
			Title:           h.title,
			Body:            bodies[variationBodyKey(h)],
			DeclaredPattern: h.declaredPat,
		})
	}

	logger.Debug("extracted %s: %d patterns, %d variations",
		groupKey, len(doc.Patterns), len(doc.Variations))
	return doc, nil
}

// scanHeadings walks the lines once, matching the explicit grammars first,
// then the generic numbered form, then the implicit rule-plus-title form.
func (s *ExtractService) scanHeadings(lines []string) []heading {
	var out []heading
	lastVariationOrdinal := 0
	seenVariation := make(map[int]bool)

	for i, line := range lines {
		if m := patternHeadingRe.FindStringSubmatch(line); m != nil {
			ordinal, ok := parseOrdinal(m[1])
			if !ok {
				continue
			}
			out = append(out, heading{
				lineIdx:   i,
				ordinal:   ordinal,
				title:     strings.TrimSpace(m[2]),
				isPattern: true,
			})
			continue
		}
		if m := variationHeadingRe.FindStringSubmatch(line); m != nil {
			ordinal, ok := parseOrdinal(m[1])
			if !ok {
				continue
			}
			h := heading{
				lineIdx:     i,
				ordinal:     ordinal,
				title:       strings.TrimSpace(m[2]),
				zeroLiteral: ordinal == 0,
			}
			h.declaredPat, h.title = splitDeclaredPattern(h.title)
			out = append(out, h)
			if ordinal > 0 {
				lastVariationOrdinal = ordinal
				seenVariation[ordinal] = true
			}
			continue
		}

		// Generic "N) Title" lines that look like headings count as
		// variations when that ordinal is still unclaimed.
		if num, ok := textutil.ExtractNumberPrefix(line); ok && textutil.LooksLikeHeading(line) {
			title := strings.TrimSpace(titlePrefixRe.ReplaceAllString(line, ""))
			if title == "" || (num > 0 && seenVariation[num]) {
				continue
			}
			h := heading{
				lineIdx:     i,
				ordinal:     num,
				title:       title,
				zeroLiteral: num == 0,
			}
			h.declaredPat, h.title = splitDeclaredPattern(h.title)
			out = append(out, h)
			if num > 0 {
				lastVariationOrdinal = num
				seenVariation[num] = true
			}
			continue
		}

		// Implicit form: a rule line followed by a bare ALL-CAPS or
		// Title-Cased phrase with no number. Ordinal continues the
		// variation sequence.
		if i > 0 && textutil.IsRuleLine(lines[i-1]) && isImplicitHeading(line) {
			lastVariationOrdinal++
			out = append(out, heading{
				lineIdx: i,
				ordinal: lastVariationOrdinal,
				title:   strings.TrimSpace(line),
			})
			seenVariation[lastVariationOrdinal] = true
		}
	}
	return out
}

// isImplicitHeading accepts short phrases that are ALL CAPS or Title Cased
// and carry no numeric prefix.
func isImplicitHeading(line string) bool {
	if !textutil.LooksLikeHeading(line) || textutil.IsRuleLine(line) {
		return false
	}
	if _, hasNum := textutil.ExtractNumberPrefix(line); hasNum {
		return false
	}
	return textutil.IsUpperPhrase(line) || textutil.IsTitleCased(line)
}

// resolveZeroOrdinals applies the wrap-around convention: a zero literal
// means the maximum expected ordinal, so zeros are assigned past the
// highest ordinal seen, in scan order.
func resolveZeroOrdinals(variations []heading) {
	maxSeen := 0
	for _, h := range variations {
		if h.ordinal > maxSeen {
			maxSeen = h.ordinal
		}
	}
	for i := range variations {
		if variations[i].zeroLiteral {
			maxSeen++
			variations[i].ordinal = maxSeen
		}
	}
}

// splitDeclaredPattern extracts an explicit "(Pattern N)" reference from a
// variation title. Out-of-range or non-numeric references degrade to "no
// declared reference".
func splitDeclaredPattern(title string) (int, string) {
	m := patternRefRe.FindStringSubmatch(title)
	if m == nil {
		return 0, title
	}
	cleaned := strings.TrimSpace(patternRefRe.ReplaceAllString(title, ""))
	cleaned = strings.TrimSpace(strings.TrimLeft(cleaned, ":-.)"))
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return 0, cleaned
	}
	return n, cleaned
}

// captureBodies collects the text between each heading and the next.
// By default only the first non-empty, non-heading line is kept.
func (s *ExtractService) captureBodies(lines []string, headings []heading) map[string]string {
	bodies := make(map[string]string, len(headings))
	for idx, h := range headings {
		end := len(lines)
		if idx+1 < len(headings) {
			end = headings[idx+1].lineIdx
		}
		var captured []string
		for j := h.lineIdx + 1; j < end; j++ {
			if anyHeadingRe.MatchString(lines[j]) {
				break
			}
			if strings.TrimSpace(lines[j]) == "" {
				continue
			}
			captured = append(captured, lines[j])
			if !s.fullBodies {
				break
			}
		}
		key := variationBodyKey(h)
		if h.isPattern {
			key = patternBodyKey(h)
		}
		bodies[key] = strings.TrimSpace(strings.Join(captured, "\n"))
	}
	return bodies
}

// Body keys disambiguate pattern and variation sections sharing an ordinal.
func patternBodyKey(h heading) string   { return "p" + strconv.Itoa(h.lineIdx) }
func variationBodyKey(h heading) string { return "v" + strconv.Itoa(h.lineIdx) }

// extractSummary captures the preamble before the first section heading,
// skipping the leading title line and decoration. Valid iff it has at
// least two lines or exceeds the minimum character length.
func (s *ExtractService) extractSummary(lines []string) (string, bool) {
	var out []string
	firstSkipped := false
	for _, line := range lines {
		if firstSectionRe.MatchString(line) {
			break
		}
		if (textutil.IsUpperPhrase(line) && len(line) < 100) || textutil.IsRuleLine(line) {
			continue
		}
		if !firstSkipped {
			firstSkipped = true
			continue
		}
		out = append(out, line)
	}
	summary := strings.TrimSpace(strings.Join(out, "\n\n"))
	valid := len(out) >= 2 || len(summary) > minSummaryChars
	return summary, valid
}

// parseOrdinal converts a matched digit group. Values that overflow are
// treated as "no declared reference" rather than an error.
func parseOrdinal(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
