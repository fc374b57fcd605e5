package driven

import "github.com/custodia-labs/lenslink/internal/core/domain"

// ConfigStore persists application settings.
type ConfigStore interface {
	// Load reads settings from storage, returning defaults when nothing
	// is stored yet.
	Load() (*domain.AppSettings, error)

	// Save persists settings.
	Save(settings *domain.AppSettings) error

	// Path returns the backing location for display purposes.
	Path() string
}
