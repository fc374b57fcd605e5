package domain

// AIProvider identifies an AI service provider for embeddings or LLM calls.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is a local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is the OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// EmbeddingSettings configures the embedding backend.
type EmbeddingSettings struct {
	// Provider selects the embedding backend; empty disables the
	// semantic tier entirely.
	Provider AIProvider `toml:"provider"`

	// Model is the embedding model name.
	Model string `toml:"model"`

	// APIKey authenticates cloud providers.
	APIKey string `toml:"api_key"`

	// BaseURL overrides the provider endpoint (Azure, local proxies).
	BaseURL string `toml:"base_url"`

	// AdapterPath points at a trained projection checkpoint; empty means
	// use the unmodified base embedding.
	AdapterPath string `toml:"adapter_path"`
}

// LLMSettings configures the chat model behind the external advisor.
type LLMSettings struct {
	// Provider selects the LLM backend; empty disables the advisor tier.
	Provider AIProvider `toml:"provider"`

	// Model is the chat model name.
	Model string `toml:"model"`

	// APIKey authenticates cloud providers.
	APIKey string `toml:"api_key"`

	// BaseURL overrides the provider endpoint.
	BaseURL string `toml:"base_url"`

	// MaxTokens is the per-request token budget for advisor calls.
	MaxTokens int `toml:"max_tokens"`
}

// LinkSettings configures the resolution cascade.
type LinkSettings struct {
	// SemanticThreshold is the minimum cosine similarity the semantic
	// tier accepts. A similarity exactly at the threshold is accepted.
	SemanticThreshold float64 `toml:"semantic_threshold"`

	// FuzzyThreshold is the minimum string-similarity ratio the fuzzy
	// tier accepts.
	FuzzyThreshold float64 `toml:"fuzzy_threshold"`

	// DisableIndexMap turns off the structural index fast path.
	DisableIndexMap bool `toml:"disable_index_map"`

	// FallbackPattern is the ordinal the fallback tier attaches to;
	// zero means the first pattern in document order.
	FallbackPattern int `toml:"fallback_pattern"`
}

// ExtractSettings configures the structural extractor.
type ExtractSettings struct {
	// FullBodies captures every non-heading line between headings instead
	// of only the first non-empty line.
	FullBodies bool `toml:"full_bodies"`
}

// AppSettings is the complete persisted configuration.
type AppSettings struct {
	Link      LinkSettings      `toml:"link"`
	Extract   ExtractSettings   `toml:"extract"`
	Embedding EmbeddingSettings `toml:"embedding"`
	LLM       LLMSettings       `toml:"llm"`

	// KnowledgePath is the sqlite knowledge-store location; empty uses
	// the default under the config directory.
	KnowledgePath string `toml:"knowledge_path"`

	// OutputDir receives linked-document JSON payloads and run summaries.
	OutputDir string `toml:"output_dir"`
}

// Default cascade thresholds. The semantic default sits in the 0.3-0.4
// band that separates topical matches from noise for normalized embeddings;
// the fuzzy default accepts only clear title overlap.
const (
	DefaultSemanticThreshold = 0.35
	DefaultFuzzyThreshold    = 0.55
	DefaultAdvisorMaxTokens  = 2000
)

// DefaultAppSettings returns the settings used when nothing is configured.
func DefaultAppSettings() *AppSettings {
	return &AppSettings{
		Link: LinkSettings{
			SemanticThreshold: DefaultSemanticThreshold,
			FuzzyThreshold:    DefaultFuzzyThreshold,
		},
		Embedding: EmbeddingSettings{
			Provider: "",
			Model:    "text-embedding-3-small",
		},
		LLM: LLMSettings{
			Provider:  "",
			Model:     "gpt-4o-mini",
			MaxTokens: DefaultAdvisorMaxTokens,
		},
	}
}

// Normalise fills zero values with defaults and discards invalid providers.
func (s *AppSettings) Normalise() {
	defaults := DefaultAppSettings()
	if s.Link.SemanticThreshold <= 0 {
		s.Link.SemanticThreshold = defaults.Link.SemanticThreshold
	}
	if s.Link.FuzzyThreshold <= 0 {
		s.Link.FuzzyThreshold = defaults.Link.FuzzyThreshold
	}
	if s.Embedding.Provider != "" && !s.Embedding.Provider.IsValid() {
		s.Embedding.Provider = ""
	}
	if s.Embedding.Model == "" {
		s.Embedding.Model = defaults.Embedding.Model
	}
	if s.LLM.Provider != "" && !s.LLM.Provider.IsValid() {
		s.LLM.Provider = ""
	}
	if s.LLM.Model == "" {
		s.LLM.Model = defaults.LLM.Model
	}
	if s.LLM.MaxTokens <= 0 {
		s.LLM.MaxTokens = defaults.LLM.MaxTokens
	}
}
