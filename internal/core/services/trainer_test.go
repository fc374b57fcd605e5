package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lenslink/internal/core/domain"
	"github.com/custodia-labs/lenslink/internal/core/ports/driving"
)

// trainCorpus builds one document with two well-separated patterns and a
// variation near each, plus the backend vectors for every comparison text.
func trainCorpus(t *testing.T) (*fakeBackend, []*domain.Document) {
	t.Helper()
	doc := &domain.Document{
		ID:       "corpus-doc",
		GroupKey: "kings_indian",
		Patterns: []*domain.Pattern{
			{Ordinal: 1, Title: "Pawn Storm", Body: "kingside"},
			{Ordinal: 2, Title: "Queenside Clamp", Body: "queenside"},
		},
		Variations: []*domain.Variation{
			{Ordinal: 1, Title: "Storm With h4", Body: "kingside"},
			{Ordinal: 2, Title: "Clamp With c5", Body: "queenside"},
		},
	}
	backend := &fakeBackend{
		dim: 3,
		vecs: map[string][]float32{
			PatternText(doc.Patterns[0]):     {1, 0, 0},
			PatternText(doc.Patterns[1]):     {0, 1, 0},
			VariationText(doc.Variations[0]): {0.9, 0.1, 0},
			VariationText(doc.Variations[1]): {0.1, 0.9, 0},
		},
	}
	return backend, []*domain.Document{doc}
}

// TestTrainService_CheckpointShape tests that training produces a square
// matrix matching the backend dimension and model.
func TestTrainService_CheckpointShape(t *testing.T) {
	backend, docs := trainCorpus(t)
	svc := NewTrainService(backend)

	ckpt, err := svc.Train(context.Background(), docs, driving.TrainOptions{Seed: 1})
	require.NoError(t, err)

	assert.Equal(t, 3, ckpt.Dim)
	assert.Equal(t, "fake-embed", ckpt.BaseModel)
	require.Len(t, ckpt.Weights, 3)
	for _, row := range ckpt.Weights {
		assert.Len(t, row, 3)
	}
}

// TestTrainService_StartsNearIdentity tests that with the default small
// learning rate the projection stays a mild perturbation of the identity,
// so an adapter trained briefly cannot wreck the base geometry.
func TestTrainService_StartsNearIdentity(t *testing.T) {
	backend, docs := trainCorpus(t)
	svc := NewTrainService(backend)

	ckpt, err := svc.Train(context.Background(), docs, driving.TrainOptions{Seed: 1})
	require.NoError(t, err)

	for i, row := range ckpt.Weights {
		for j, w := range row {
			if i == j {
				assert.InDelta(t, 1.0, w, 0.05)
			} else {
				assert.InDelta(t, 0.0, w, 0.05)
			}
		}
	}
}

// TestTrainService_Deterministic tests that a fixed seed reproduces the
// exact weights.
func TestTrainService_Deterministic(t *testing.T) {
	backend, docs := trainCorpus(t)
	svc := NewTrainService(backend)

	first, err := svc.Train(context.Background(), docs, driving.TrainOptions{Seed: 7})
	require.NoError(t, err)
	second, err := svc.Train(context.Background(), docs, driving.TrainOptions{Seed: 7})
	require.NoError(t, err)

	assert.Equal(t, first.Weights, second.Weights)
}

// TestTrainService_NoUsableDocuments tests the rejection of corpora that
// carry no discriminative signal.
func TestTrainService_NoUsableDocuments(t *testing.T) {
	backend := &fakeBackend{dim: 3}
	svc := NewTrainService(backend)

	docs := []*domain.Document{
		{
			GroupKey:   "single_pattern",
			Patterns:   []*domain.Pattern{{Ordinal: 1, Title: "Only One"}},
			Variations: []*domain.Variation{{Ordinal: 1, Title: "Lonely"}},
		},
		{
			GroupKey: "no_variations",
			Patterns: []*domain.Pattern{
				{Ordinal: 1, Title: "A"},
				{Ordinal: 2, Title: "B"},
			},
		},
	}

	_, err := svc.Train(context.Background(), docs, driving.TrainOptions{Seed: 1})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Zero(t, backend.calls, "unusable documents are skipped before embedding")
}

// TestTrainService_NoBackend tests that training without an embedding
// backend fails fast.
func TestTrainService_NoBackend(t *testing.T) {
	svc := NewTrainService(nil)

	_, err := svc.Train(context.Background(), nil, driving.TrainOptions{})
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

// TestTrainService_OptionDefaults tests the zero-value option fill-in.
func TestTrainService_OptionDefaults(t *testing.T) {
	opts := driving.TrainOptions{}.Normalise()

	assert.Equal(t, 3, opts.Epochs)
	assert.InDelta(t, 1e-4, opts.LearningRate, 1e-12)
	assert.Equal(t, 32, opts.BatchSize)
	assert.NotZero(t, opts.Seed)
}
