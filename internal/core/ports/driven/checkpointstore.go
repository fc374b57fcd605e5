package driven

import "github.com/custodia-labs/lenslink/internal/core/domain"

// CheckpointStore persists trained adapter checkpoints. Versioning is by
// file replacement only; there is no migration logic.
type CheckpointStore interface {
	// Save writes a checkpoint, replacing any existing one.
	Save(ckpt *domain.AdapterCheckpoint) error

	// Load reads the checkpoint. Returns domain.ErrNotFound when absent,
	// which callers treat as "use the unmodified base embedding".
	Load() (*domain.AdapterCheckpoint, error)
}
