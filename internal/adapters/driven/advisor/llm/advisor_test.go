package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lenslink/internal/core/domain"
	"github.com/custodia-labs/lenslink/internal/core/ports/driven"
)

// stubLLM returns a canned reply and records the prompt it was given.
type stubLLM struct {
	reply      string
	err        error
	lastPrompt string
}

func (s *stubLLM) Chat(_ context.Context, messages []driven.ChatMessage, _ driven.ChatOptions) (string, error) {
	if len(messages) > 0 {
		s.lastPrompt = messages[len(messages)-1].Content
	}
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

func (s *stubLLM) ModelName() string             { return "stub-model" }
func (s *stubLLM) Ping(_ context.Context) error  { return nil }
func (s *stubLLM) Close() error                  { return nil }

func testSections(t *testing.T) ([]*domain.Pattern, []*domain.Variation) {
	t.Helper()
	patterns := []*domain.Pattern{
		{Ordinal: 1, Title: "Isolani Attack"},
		{Ordinal: 2, Title: "Hanging Pawns"},
	}
	variations := []*domain.Variation{
		{Ordinal: 1, Title: "Isolani With Rook Lift"},
		{Ordinal: 2, Title: "Hanging Pawns Advance"},
	}
	return patterns, variations
}

func fastConfig() Config {
	return Config{RequestInterval: time.Nanosecond}
}

// TestAdvisor_SuggestMapping tests a clean JSON reply.
func TestAdvisor_SuggestMapping(t *testing.T) {
	llm := &stubLLM{reply: `{"1": 1, "2": 2}`}
	advisor := NewAdvisor(llm, fastConfig())
	patterns, variations := testSections(t)

	mapping, err := advisor.SuggestMapping(context.Background(), "isolani", patterns, variations)
	require.NoError(t, err)
	assert.Equal(t, map[int]int{1: 1, 2: 2}, mapping)

	assert.Contains(t, llm.lastPrompt, "Isolani Attack")
	assert.Contains(t, llm.lastPrompt, "Hanging Pawns Advance")
}

// TestAdvisor_ParsesWrappedReply tests the JSON sniffing against prose and
// code-fence wrapping.
func TestAdvisor_ParsesWrappedReply(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  map[int]int
	}{
		{
			name:  "code fences",
			reply: "```json\n{\"1\": 2}\n```",
			want:  map[int]int{1: 2},
		},
		{
			name:  "surrounding prose",
			reply: "Here is the mapping you asked for: {\"2\": 1} hope that helps!",
			want:  map[int]int{2: 1},
		},
		{
			name:  "string-typed values",
			reply: `{"1": "2", "2": "1"}`,
			want:  map[int]int{1: 2, 2: 1},
		},
		{
			name:  "junk entries dropped",
			reply: `{"1": 2, "oops": 1, "2": "many", "3": 1.5}`,
			want:  map[int]int{1: 2},
		},
	}

	patterns, variations := testSections(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			advisor := NewAdvisor(&stubLLM{reply: tt.reply}, fastConfig())
			mapping, err := advisor.SuggestMapping(context.Background(), "g", patterns, variations)
			require.NoError(t, err)
			assert.Equal(t, tt.want, mapping)
		})
	}
}

// TestAdvisor_RejectsNonJSONReply tests that a reply without any JSON
// object is an error, not an empty mapping.
func TestAdvisor_RejectsNonJSONReply(t *testing.T) {
	advisor := NewAdvisor(&stubLLM{reply: "I cannot help with that."}, fastConfig())
	patterns, variations := testSections(t)

	_, err := advisor.SuggestMapping(context.Background(), "g", patterns, variations)
	assert.Error(t, err)
}

// TestAdvisor_ChatError tests error propagation from the model.
func TestAdvisor_ChatError(t *testing.T) {
	advisor := NewAdvisor(&stubLLM{err: errors.New("rate limited")}, fastConfig())
	patterns, variations := testSections(t)

	_, err := advisor.SuggestMapping(context.Background(), "g", patterns, variations)
	assert.Error(t, err)
}

// TestAdvisor_Unavailable tests the nil-service degradation.
func TestAdvisor_Unavailable(t *testing.T) {
	advisor := NewAdvisor(nil, Config{})
	assert.False(t, advisor.Available())

	_, err := advisor.SuggestMapping(context.Background(), "g", nil, nil)
	assert.ErrorIs(t, err, domain.ErrAdvisorUnavailable)
}
