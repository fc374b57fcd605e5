package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lenslink/internal/core/domain"
)

// fakeBackend is an in-memory EmbeddingService serving canned vectors.
type fakeBackend struct {
	dim   int
	vecs  map[string][]float32
	err   error
	calls int
}

func (f *fakeBackend) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, ok := f.vecs[t]
		if !ok {
			v = make([]float32, f.dim)
		}
		out[i] = v
	}
	return out, nil
}

func (f *fakeBackend) Dimensions() int               { return f.dim }
func (f *fakeBackend) ModelName() string             { return "fake-embed" }
func (f *fakeBackend) Ping(_ context.Context) error  { return nil }
func (f *fakeBackend) Close() error                  { return nil }

// TestEncoder_NormalisesOutput tests that raw backend vectors come back
// unit length.
func TestEncoder_NormalisesOutput(t *testing.T) {
	backend := &fakeBackend{dim: 2, vecs: map[string][]float32{"a": {3, 4}}}
	enc := NewEncoder(backend, nil)

	vecs, err := enc.Encode(context.Background(), []string{"a"})
	require.NoError(t, err)
	require.Len(t, vecs, 1)
	assert.InDelta(t, 0.6, vecs[0][0], 1e-9)
	assert.InDelta(t, 0.8, vecs[0][1], 1e-9)
}

// TestEncoder_AppliesAdapter tests that a loaded projection transforms the
// base vector before normalisation.
func TestEncoder_AppliesAdapter(t *testing.T) {
	backend := &fakeBackend{dim: 2, vecs: map[string][]float32{"a": {1, 0}}}
	ckpt := &domain.AdapterCheckpoint{
		Dim:       2,
		BaseModel: "fake-embed",
		Weights:   [][]float64{{0, 1}, {1, 0}},
	}
	enc := NewEncoder(backend, ckpt)

	vecs, err := enc.Encode(context.Background(), []string{"a"})
	require.NoError(t, err)
	assert.InDelta(t, 0.0, vecs[0][0], 1e-9)
	assert.InDelta(t, 1.0, vecs[0][1], 1e-9)
}

// TestEncoder_DimensionMismatchFallsBack tests that a checkpoint trained
// against a different dimension is ignored rather than fatal.
func TestEncoder_DimensionMismatchFallsBack(t *testing.T) {
	backend := &fakeBackend{dim: 2, vecs: map[string][]float32{"a": {0, 2}}}
	ckpt := &domain.AdapterCheckpoint{Dim: 3, Weights: identityMatrix(3)}
	enc := NewEncoder(backend, ckpt)

	vecs, err := enc.Encode(context.Background(), []string{"a"})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, vecs[0][1], 1e-9, "base embedding used unchanged")
}

// TestEncoder_MalformedCheckpointFallsBack tests that a checkpoint whose
// weight matrix disagrees with its declared dimension is ignored.
func TestEncoder_MalformedCheckpointFallsBack(t *testing.T) {
	backend := &fakeBackend{dim: 2, vecs: map[string][]float32{"a": {2, 0}}}
	ckpt := &domain.AdapterCheckpoint{Dim: 2, Weights: [][]float64{{1, 0}}}
	enc := NewEncoder(backend, ckpt)

	vecs, err := enc.Encode(context.Background(), []string{"a"})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, vecs[0][0], 1e-9)
}

// TestEncoder_StickyUnavailability tests that one backend failure disables
// the encoder for the rest of the process, without further backend calls.
func TestEncoder_StickyUnavailability(t *testing.T) {
	backend := &fakeBackend{dim: 2, err: errors.New("connection refused")}
	enc := NewEncoder(backend, nil)
	require.True(t, enc.Available())

	_, err := enc.Encode(context.Background(), []string{"a"})
	require.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	assert.False(t, enc.Available())

	_, err = enc.Encode(context.Background(), []string{"a"})
	require.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	assert.Equal(t, 1, backend.calls, "degraded encoder must not retry the backend")
}

// TestEncoder_NilBackend tests construction without any backend.
func TestEncoder_NilBackend(t *testing.T) {
	enc := NewEncoder(nil, nil)
	assert.False(t, enc.Available())
	assert.Empty(t, enc.ModelName())

	_, err := enc.Encode(context.Background(), []string{"a"})
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

// TestEncoder_EmptyInput tests the zero-text shortcut.
func TestEncoder_EmptyInput(t *testing.T) {
	backend := &fakeBackend{dim: 2}
	enc := NewEncoder(backend, nil)

	vecs, err := enc.Encode(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, vecs)
	assert.Zero(t, backend.calls)
}
