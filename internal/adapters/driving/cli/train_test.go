package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lenslink/internal/core/domain"
	"github.com/custodia-labs/lenslink/internal/core/ports/driving"
)

// stubTrainService returns a fixed checkpoint and records the corpus size.
type stubTrainService struct {
	docsSeen int
	ckpt     *domain.AdapterCheckpoint
}

func (s *stubTrainService) Train(_ context.Context, docs []*domain.Document, _ driving.TrainOptions) (*domain.AdapterCheckpoint, error) {
	s.docsSeen = len(docs)
	return s.ckpt, nil
}

// stubCheckpointStore records the last saved checkpoint.
type stubCheckpointStore struct {
	saved *domain.AdapterCheckpoint
}

func (s *stubCheckpointStore) Save(ckpt *domain.AdapterCheckpoint) error {
	s.saved = ckpt
	return nil
}

func (s *stubCheckpointStore) Load() (*domain.AdapterCheckpoint, error) {
	return nil, domain.ErrNotFound
}

// TestTrainCmd_EndToEnd tests extraction, training and checkpoint save.
func TestTrainCmd_EndToEnd(t *testing.T) {
	setupTestServices(t)
	trainer := &stubTrainService{
		ckpt: &domain.AdapterCheckpoint{Dim: 4, BaseModel: "fake-embed"},
	}
	store := &stubCheckpointStore{}
	trainService = trainer
	checkpointStore = store

	inDir := filepath.Join(t.TempDir(), "corpus")
	require.NoError(t, os.MkdirAll(inDir, 0755))
	writeLensFile(t, inDir, "club tactics.txt", wellFormedLens)
	writeLensFile(t, inDir, "notes.txt", structurelessLens)

	out, err := execute(t, "train", inDir)
	require.NoError(t, err)

	assert.Equal(t, 1, trainer.docsSeen)
	require.NotNil(t, store.saved)
	assert.Equal(t, 4, store.saved.Dim)
	assert.Contains(t, out, "Trained projection adapter (dim 4, base fake-embed)")
}

// TestTrainCmd_EmptyFolder tests rejection when nothing is extractable.
func TestTrainCmd_EmptyFolder(t *testing.T) {
	setupTestServices(t)
	trainService = &stubTrainService{}
	checkpointStore = &stubCheckpointStore{}

	dir := t.TempDir()
	_, err := execute(t, "train", dir)
	assert.Error(t, err)
}
