// Package textutil provides text canonicalisation and similarity helpers
// used for comparison keys throughout the linking pipeline.
package textutil

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	nonWordRe    = regexp.MustCompile(`[^\p{L}\p{N}\s-]`)
	numPrefixRe  = regexp.MustCompile(`(?i)^(?:variation|pattern)?\s*(\d+)[).:\-\s]+`)
	ruleLineRe   = regexp.MustCompile(`^[_\-=]{3,}$`)
)

// Normalize canonicalises whitespace and dashes for display and comparison.
// Em and en dashes collapse to plain hyphens; runs of whitespace collapse to
// a single space.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ReplaceAll(s, "—", "-")
	s = strings.ReplaceAll(s, "–", "-")
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// NormalizeKey produces a lowercase, de-punctuated comparison key.
func NormalizeKey(s string) string {
	s = strings.ToLower(Normalize(s))
	s = nonWordRe.ReplaceAllString(s, "")
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// FuzzyRatio computes a normalized similarity ratio between two strings
// after key normalisation. The ratio is 2*M/T where M is the total length
// of the longest matching blocks and T is the combined length, mirroring
// Python's difflib.SequenceMatcher.ratio.
func FuzzyRatio(a, b string) float64 {
	a = NormalizeKey(a)
	b = NormalizeKey(b)
	if a == "" || b == "" {
		return 0
	}
	ra, rb := []rune(a), []rune(b)
	matched := matchingBlocks(ra, rb)
	return 2 * float64(matched) / float64(len(ra)+len(rb))
}

// matchingBlocks returns the total length of non-overlapping matching
// blocks found by recursively locating the longest common substring.
func matchingBlocks(a, b []rune) int {
	size, ai, bi := longestMatch(a, b)
	if size == 0 {
		return 0
	}
	total := size
	total += matchingBlocks(a[:ai], b[:bi])
	total += matchingBlocks(a[ai+size:], b[bi+size:])
	return total
}

// longestMatch finds the longest common substring of a and b.
func longestMatch(a, b []rune) (size, ai, bi int) {
	if len(a) == 0 || len(b) == 0 {
		return 0, 0, 0
	}
	// prev[j] is the match length ending at a[i-1], b[j-1].
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1] + 1
				if cur[j] > size {
					size = cur[j]
					ai = i - size
					bi = j - size
				}
			} else {
				cur[j] = 0
			}
		}
		prev, cur = cur, prev
	}
	return size, ai, bi
}

// LooksLikeHeading reports whether a line is short and title-like enough to
// be treated as a section heading candidate.
func LooksLikeHeading(s string) bool {
	if s == "" || len(s) > 140 || strings.HasSuffix(s, ":") {
		return false
	}
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

// IsRuleLine reports whether the line is a horizontal rule (---, ===, ___).
func IsRuleLine(s string) bool {
	return ruleLineRe.MatchString(strings.TrimSpace(s))
}

// IsUpperPhrase reports whether the line is entirely upper case where it
// contains letters at all.
func IsUpperPhrase(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			hasLetter = true
			if !unicode.IsUpper(r) {
				return false
			}
		}
	}
	return hasLetter
}

// IsTitleCased reports whether every word in the phrase starts with an
// upper-case letter.
func IsTitleCased(s string) bool {
	words := strings.Fields(s)
	if len(words) == 0 {
		return false
	}
	for _, w := range words {
		r := []rune(w)[0]
		if unicode.IsLetter(r) && !unicode.IsUpper(r) {
			return false
		}
	}
	return true
}

// ExtractNumberPrefix parses a leading ordinal from heading forms like
// "1) Title", "2. Title" or "Variation 3: Title". The second return is
// false when no numeric prefix is present.
func ExtractNumberPrefix(s string) (int, bool) {
	m := numPrefixRe.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	n := 0
	for _, r := range m[1] {
		n = n*10 + int(r-'0')
	}
	return n, true
}
