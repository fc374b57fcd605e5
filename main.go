// lenslink links variation sections to their patterns across lens
// documents. This file wires adapters to services and hands control to
// the CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	advisorllm "github.com/custodia-labs/lenslink/internal/adapters/driven/advisor/llm"
	checkpointfile "github.com/custodia-labs/lenslink/internal/adapters/driven/checkpoint/file"
	configfile "github.com/custodia-labs/lenslink/internal/adapters/driven/config/file"
	embollama "github.com/custodia-labs/lenslink/internal/adapters/driven/embedding/ollama"
	embopenai "github.com/custodia-labs/lenslink/internal/adapters/driven/embedding/openai"
	llmollama "github.com/custodia-labs/lenslink/internal/adapters/driven/llm/ollama"
	llmopenai "github.com/custodia-labs/lenslink/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/lenslink/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/lenslink/internal/adapters/driving/cli"
	"github.com/custodia-labs/lenslink/internal/core/domain"
	"github.com/custodia-labs/lenslink/internal/core/ports/driven"
	"github.com/custodia-labs/lenslink/internal/core/services"
	"github.com/custodia-labs/lenslink/internal/logger"
	"github.com/custodia-labs/lenslink/internal/readers/docx"
	"github.com/custodia-labs/lenslink/internal/readers/plaintext"
)

// pingTimeout bounds the startup reachability checks for optional
// backends.
const pingTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configStore, err := configfile.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}
	settings, err := configStore.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	knowledgeStore, err := sqlite.NewKnowledgeStore(settings.KnowledgePath)
	if err != nil {
		return fmt.Errorf("opening knowledge store: %w", err)
	}
	defer knowledgeStore.Close()

	embeddingBackend := buildEmbeddingBackend(settings)
	llmService := buildLLMService(settings)

	checkpointStore, err := checkpointfile.NewStore(settings.Embedding.AdapterPath)
	if err != nil {
		return fmt.Errorf("opening checkpoint store: %w", err)
	}
	checkpoint, err := checkpointStore.Load()
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			logger.Warn("adapter checkpoint unreadable, using base embeddings: %v", err)
		}
		checkpoint = nil
	}

	encoder := services.NewEncoder(embeddingBackend, checkpoint)
	advisor := advisorllm.NewAdvisor(llmService, advisorllm.Config{
		MaxTokens: settings.LLM.MaxTokens,
	})

	cli.SetAppSettings(settings)
	cli.SetExtractService(services.NewExtractService(settings.Extract))
	cli.SetLinkService(services.NewLinkService(encoder, knowledgeStore, advisor, settings.Link))
	cli.SetTrainService(services.NewTrainService(embeddingBackend))
	cli.SetKnowledgeStore(knowledgeStore)
	cli.SetCheckpointStore(checkpointStore)
	cli.SetDocumentReaders([]driven.DocumentReader{
		docx.New(),
		plaintext.New(),
	})

	return cli.Execute()
}

// buildEmbeddingBackend constructs the configured embedding service, or
// nil when none is configured or the backend is unreachable. A nil
// backend only disables the semantic tier.
func buildEmbeddingBackend(settings *domain.AppSettings) driven.EmbeddingService {
	var backend driven.EmbeddingService
	switch settings.Embedding.Provider {
	case domain.AIProviderOpenAI:
		svc, err := embopenai.NewEmbeddingService(embopenai.Config{
			APIKey:  settings.Embedding.APIKey,
			BaseURL: settings.Embedding.BaseURL,
			Model:   settings.Embedding.Model,
		})
		if err != nil {
			logger.Warn("embedding backend disabled: %v", err)
			return nil
		}
		backend = svc
	case domain.AIProviderOllama:
		backend = embollama.NewEmbeddingService(embollama.Config{
			BaseURL: settings.Embedding.BaseURL,
			Model:   settings.Embedding.Model,
		})
	default:
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := backend.Ping(ctx); err != nil {
		logger.Warn("embedding backend unreachable, semantic tier disabled: %v", err)
		return nil
	}
	return backend
}

// buildLLMService constructs the configured chat service behind the
// advisor, or nil when none is configured or the service is unreachable.
func buildLLMService(settings *domain.AppSettings) driven.LLMService {
	var svc driven.LLMService
	switch settings.LLM.Provider {
	case domain.AIProviderOpenAI:
		s, err := llmopenai.NewLLMService(llmopenai.Config{
			APIKey:  settings.LLM.APIKey,
			BaseURL: settings.LLM.BaseURL,
			Model:   settings.LLM.Model,
		})
		if err != nil {
			logger.Warn("advisor disabled: %v", err)
			return nil
		}
		svc = s
	case domain.AIProviderOllama:
		svc = llmollama.NewLLMService(llmollama.Config{
			BaseURL: settings.LLM.BaseURL,
			Model:   settings.LLM.Model,
		})
	default:
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := svc.Ping(ctx); err != nil {
		logger.Warn("advisor model unreachable, advisor tier disabled: %v", err)
		return nil
	}
	return svc
}
