// Package llm provides a mapping advisor backed by a chat LLM. The model
// sees only section titles and must answer with a JSON object; everything
// about the reply is treated as untrusted and parsed defensively.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/lenslink/internal/core/domain"
	"github.com/custodia-labs/lenslink/internal/core/ports/driven"
	"github.com/custodia-labs/lenslink/internal/logger"
)

// Ensure Advisor implements the interface.
var _ driven.MappingAdvisor = (*Advisor)(nil)

// Default configuration values.
const (
	DefaultRequestInterval = 2 * time.Second
	DefaultRequestTimeout  = 45 * time.Second
	DefaultMaxTokens       = 512
)

const systemPrompt = `You map document sections. Given numbered patterns and numbered variations, decide which pattern each variation belongs to. Answer with a single JSON object whose keys are variation numbers and whose values are pattern numbers, for example {"1": 2, "3": 1}. No prose, no code fences.`

// Config holds configuration for the advisor.
type Config struct {
	// RequestInterval is the minimum spacing between model calls
	// (default: 2s). Batch runs over many documents must not hammer the
	// provider.
	RequestInterval time.Duration

	// RequestTimeout bounds each consultation (default: 45s).
	RequestTimeout time.Duration

	// MaxTokens caps the reply length (default: 512).
	MaxTokens int
}

// Advisor asks a chat model for variation-to-pattern suggestions.
type Advisor struct {
	llm       driven.LLMService
	limiter   *rate.Limiter
	timeout   time.Duration
	maxTokens int
}

// NewAdvisor creates an advisor over an optional LLM service. A nil
// service yields a permanently unavailable advisor.
func NewAdvisor(llm driven.LLMService, cfg Config) *Advisor {
	if cfg.RequestInterval <= 0 {
		cfg.RequestInterval = DefaultRequestInterval
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	return &Advisor{
		llm:       llm,
		limiter:   rate.NewLimiter(rate.Every(cfg.RequestInterval), 1),
		timeout:   cfg.RequestTimeout,
		maxTokens: cfg.MaxTokens,
	}
}

// Available reports whether a model is configured.
func (a *Advisor) Available() bool {
	return a.llm != nil
}

// SuggestMapping asks the model for a full mapping over the document's
// titles. The reply is parsed defensively; entries that cannot be coerced
// to ordinals are dropped rather than failing the whole suggestion.
func (a *Advisor) SuggestMapping(ctx context.Context, groupKey string, patterns []*domain.Pattern, variations []*domain.Variation) (map[int]int, error) {
	if a.llm == nil {
		return nil, domain.ErrAdvisorUnavailable
	}
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("advisor pacing: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	reply, err := a.llm.Chat(ctx, []driven.ChatMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: buildPrompt(groupKey, patterns, variations)},
	}, driven.ChatOptions{MaxTokens: a.maxTokens})
	if err != nil {
		return nil, fmt.Errorf("advisor chat: %w", err)
	}

	mapping, err := parseMappingReply(reply)
	if err != nil {
		return nil, fmt.Errorf("advisor reply for %s: %w", groupKey, err)
	}
	logger.Debug("advisor returned %d suggestions for %s", len(mapping), groupKey)
	return mapping, nil
}

// buildPrompt lists the numbered titles for one document.
func buildPrompt(groupKey string, patterns []*domain.Pattern, variations []*domain.Variation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Document: %s\n\nPatterns:\n", groupKey)
	for _, p := range patterns {
		fmt.Fprintf(&b, "%d. %s\n", p.Ordinal, p.Title)
	}
	b.WriteString("\nVariations:\n")
	for _, v := range variations {
		fmt.Fprintf(&b, "%d. %s\n", v.Ordinal, v.Title)
	}
	b.WriteString("\nReturn the JSON mapping now.")
	return b.String()
}

// parseMappingReply extracts the JSON object from a model reply. Models
// wrap answers in prose or code fences often enough that we cut from the
// first '{' to the last '}' before decoding.
func parseMappingReply(reply string) (map[int]int, error) {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start == -1 || end <= start {
		return nil, fmt.Errorf("no JSON object in reply")
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(reply[start:end+1]), &raw); err != nil {
		return nil, fmt.Errorf("decode reply: %w", err)
	}

	mapping := make(map[int]int, len(raw))
	for key, value := range raw {
		from, ok := coerceOrdinal(key)
		if !ok {
			continue
		}
		to, ok := coerceOrdinal(value)
		if !ok {
			continue
		}
		mapping[from] = to
	}
	return mapping, nil
}

// coerceOrdinal accepts JSON numbers and numeric strings.
func coerceOrdinal(v any) (int, bool) {
	switch n := v.(type) {
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil || parsed <= 0 {
			return 0, false
		}
		return parsed, true
	case float64:
		parsed := int(n)
		if float64(parsed) != n || parsed <= 0 {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}
