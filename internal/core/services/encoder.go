package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/lenslink/internal/core/domain"
	"github.com/custodia-labs/lenslink/internal/core/ports/driven"
	"github.com/custodia-labs/lenslink/internal/logger"
)

// Encoder maps text spans to unit-length vectors so cosine similarity
// reduces to a dot product. It wraps the embedding backend and optionally
// applies a trained linear projection before normalisation; the projection
// is a learned re-weighting of the frozen base representation, not a
// replacement for it.
type Encoder struct {
	backend driven.EmbeddingService

	mu          sync.Mutex
	unavailable bool

	// adapter is the projection matrix, nil when no checkpoint is loaded.
	adapter [][]float64
}

// NewEncoder creates an encoder over an optional embedding backend and an
// optional adapter checkpoint. A nil backend or a checkpoint whose
// dimension disagrees with the backend leaves the encoder degraded rather
// than failing construction.
func NewEncoder(backend driven.EmbeddingService, ckpt *domain.AdapterCheckpoint) *Encoder {
	e := &Encoder{backend: backend, unavailable: backend == nil}
	if ckpt == nil {
		return e
	}
	if backend != nil && backend.Dimensions() != ckpt.Dim {
		logger.Warn("adapter checkpoint dim %d does not match backend dim %d: using base embeddings",
			ckpt.Dim, backend.Dimensions())
		return e
	}
	if len(ckpt.Weights) != ckpt.Dim {
		logger.Warn("adapter checkpoint is malformed: using base embeddings")
		return e
	}
	e.adapter = ckpt.Weights
	logger.Info("loaded projection adapter (dim %d, base %s)", ckpt.Dim, ckpt.BaseModel)
	return e
}

// Available reports whether the encoder can produce embeddings. Once the
// backend fails, the encoder stays unavailable for the rest of the
// process; there are no retries.
func (e *Encoder) Available() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return !e.unavailable
}

// markUnavailable permanently degrades the encoder.
func (e *Encoder) markUnavailable(err error) {
	e.mu.Lock()
	e.unavailable = true
	e.mu.Unlock()
	logger.Warn("embedding backend failed, semantic tier disabled: %v", err)
}

// Encode returns one unit-length vector per input text, with the adapter
// projection applied when loaded.
func (e *Encoder) Encode(ctx context.Context, texts []string) ([][]float64, error) {
	if !e.Available() {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if len(texts) == 0 {
		return nil, nil
	}

	raw, err := e.backend.EmbedBatch(ctx, texts)
	if err != nil {
		e.markUnavailable(err)
		return nil, fmt.Errorf("encode: %w", domain.ErrEmbeddingUnavailable)
	}
	if len(raw) != len(texts) {
		e.markUnavailable(fmt.Errorf("backend returned %d vectors for %d texts", len(raw), len(texts)))
		return nil, fmt.Errorf("encode: %w", domain.ErrEmbeddingUnavailable)
	}

	out := make([][]float64, len(raw))
	for i, emb := range raw {
		vec := make([]float64, len(emb))
		for j, f := range emb {
			vec[j] = float64(f)
		}
		if e.adapter != nil {
			vec = matVec(e.adapter, vec)
		}
		normalizeVec(vec)
		out[i] = vec
	}
	return out, nil
}

// ModelName returns the backend model identifier, or empty when degraded.
func (e *Encoder) ModelName() string {
	if e.backend == nil {
		return ""
	}
	return e.backend.ModelName()
}

// PatternText builds the comparison text for a pattern: heading plus body
// for richer context than the title alone.
func PatternText(p *domain.Pattern) string {
	return fmt.Sprintf("Pattern %d: %s\n%s", p.Ordinal, p.Title, p.Body)
}

// VariationText builds the comparison text for a variation.
func VariationText(v *domain.Variation) string {
	return fmt.Sprintf("Variation %d: %s\n%s", v.Ordinal, v.Title, v.Body)
}
