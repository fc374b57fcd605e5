// Package file provides a TOML file-backed settings store.
package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/lenslink/internal/core/domain"
	"github.com/custodia-labs/lenslink/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore persists application settings as a TOML file in the lenslink
// config directory.
type ConfigStore struct {
	mu       sync.Mutex
	filePath string
}

// NewConfigStore creates a TOML-based settings store. If configDir is
// empty, defaults to ~/.lenslink/config.toml.
func NewConfigStore(configDir string) (*ConfigStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		configDir = filepath.Join(home, ".lenslink")
	}
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, err
	}

	return &ConfigStore{
		filePath: filepath.Join(configDir, "config.toml"),
	}, nil
}

// Load reads settings from disk. A missing file yields defaults; stored
// settings are normalised so partial files still produce a usable
// configuration.
func (s *ConfigStore) Load() (*domain.AppSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.DefaultAppSettings(), nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	settings := &domain.AppSettings{}
	if err := toml.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	settings.Normalise()
	return settings, nil
}

// Save persists settings with restricted permissions; the file may carry
// API keys.
func (s *ConfigStore) Save(settings *domain.AppSettings) error {
	if settings == nil {
		return fmt.Errorf("save config: %w", domain.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := toml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(s.filePath, data, 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Path returns the config file path.
func (s *ConfigStore) Path() string {
	return s.filePath
}
