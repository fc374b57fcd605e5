package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lenslink/internal/core/domain"
)

func newTestStore(t *testing.T) *ConfigStore {
	t.Helper()
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	return store
}

// TestConfigStore_LoadDefaults tests that a missing file yields defaults.
func TestConfigStore_LoadDefaults(t *testing.T) {
	store := newTestStore(t)

	settings, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSemanticThreshold, settings.Link.SemanticThreshold)
	assert.Equal(t, domain.DefaultFuzzyThreshold, settings.Link.FuzzyThreshold)
	assert.Equal(t, "gpt-4o-mini", settings.LLM.Model)
}

// TestConfigStore_SaveLoad tests a round trip.
func TestConfigStore_SaveLoad(t *testing.T) {
	store := newTestStore(t)

	settings := domain.DefaultAppSettings()
	settings.Embedding.Provider = domain.AIProviderOllama
	settings.Embedding.Model = "nomic-embed-text"
	settings.Link.SemanticThreshold = 0.4
	settings.OutputDir = "/tmp/lenslink-out"
	require.NoError(t, store.Save(settings))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOllama, loaded.Embedding.Provider)
	assert.Equal(t, "nomic-embed-text", loaded.Embedding.Model)
	assert.InDelta(t, 0.4, loaded.Link.SemanticThreshold, 1e-9)
	assert.Equal(t, "/tmp/lenslink-out", loaded.OutputDir)
}

// TestConfigStore_PartialFileNormalised tests that absent values are
// filled in and invalid providers discarded on load.
func TestConfigStore_PartialFileNormalised(t *testing.T) {
	dir := t.TempDir()
	content := "[embedding]\nprovider = \"carrier-pigeon\"\n\n[link]\nfuzzy_threshold = 0.7\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600))

	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	settings, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, string(settings.Embedding.Provider), "unknown provider is discarded")
	assert.InDelta(t, 0.7, settings.Link.FuzzyThreshold, 1e-9)
	assert.Equal(t, domain.DefaultSemanticThreshold, settings.Link.SemanticThreshold)
}

// TestConfigStore_SaveNil tests the nil guard.
func TestConfigStore_SaveNil(t *testing.T) {
	store := newTestStore(t)
	assert.ErrorIs(t, store.Save(nil), domain.ErrInvalidInput)
}

// TestConfigStore_MalformedFile tests that unparseable TOML is surfaced.
func TestConfigStore_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[[[["), 0600))

	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	_, err = store.Load()
	assert.Error(t, err)
}
