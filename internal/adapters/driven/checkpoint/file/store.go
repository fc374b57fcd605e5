// Package file provides a JSON file-backed checkpoint store.
package file

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/custodia-labs/lenslink/internal/core/domain"
	"github.com/custodia-labs/lenslink/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.CheckpointStore = (*Store)(nil)

// Store persists adapter checkpoints as a single JSON file. Saves write to
// a temporary file first so a crash mid-write never leaves a truncated
// checkpoint behind.
type Store struct {
	path string
}

// NewStore creates a checkpoint store at the given path. An empty path
// defaults to ~/.lenslink/adapter.json.
func NewStore(path string) (*Store, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		path = filepath.Join(home, ".lenslink", "adapter.json")
	}
	return &Store{path: path}, nil
}

// Save writes the checkpoint, replacing any existing one.
func (s *Store) Save(ckpt *domain.AdapterCheckpoint) error {
	if ckpt == nil {
		return fmt.Errorf("save checkpoint: %w", domain.ErrInvalidInput)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("creating checkpoint directory: %w", err)
	}

	data, err := json.Marshal(ckpt)
	if err != nil {
		return fmt.Errorf("encoding checkpoint: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("writing checkpoint: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replacing checkpoint: %w", err)
	}
	return nil
}

// Load reads the checkpoint. Returns domain.ErrNotFound when no checkpoint
// has been saved yet.
func (s *Store) Load() (*domain.AdapterCheckpoint, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("reading checkpoint: %w", err)
	}

	var ckpt domain.AdapterCheckpoint
	if err := json.Unmarshal(data, &ckpt); err != nil {
		return nil, fmt.Errorf("decoding checkpoint: %w", err)
	}
	return &ckpt, nil
}

// Path returns the checkpoint file path.
func (s *Store) Path() string {
	return s.path
}
