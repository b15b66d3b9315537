package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 1000, cfg.Ingest.ChunkSize)
	assert.Equal(t, 200, cfg.Ingest.ChunkOverlap)
	assert.Equal(t, "checkout.html", cfg.Ingest.CheckoutPage)
	assert.Equal(t, "lexical", cfg.Index.Strategy)
	assert.Equal(t, "qa_documents", cfg.Index.Collection)
	assert.Equal(t, 5, cfg.Index.TopK)
	assert.Empty(t, cfg.Generation.Provider)
}

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadAppliesDefaultsForMissingFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qaforge.yaml")
	require.NoError(t, os.WriteFile(path, []byte("index:\n  strategy: dense\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "dense", cfg.Index.Strategy)
	// Fields the file omits keep their defaults.
	assert.Equal(t, 1000, cfg.Ingest.ChunkSize)
	assert.Equal(t, "qa_documents", cfg.Index.Collection)
}

func TestLoadMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qaforge.yaml")
	require.NoError(t, os.WriteFile(path, []byte("index: [unclosed"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qaforge.yaml")

	cfg := DefaultConfig()
	cfg.Index.Strategy = "dense"
	cfg.Ingest.ChunkSize = 512
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadFromDir(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadFromDir(dir)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "qaforge.yaml"),
		[]byte("index:\n  top_k: 9\n"), 0644))
	cfg, err = LoadFromDir(dir)
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.Index.TopK)
}

func TestLoadFromDirNestedConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".qaforge"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".qaforge", "config.yaml"),
		[]byte("index:\n  collection: custom\n"), 0644))

	cfg, err := LoadFromDir(dir)
	require.NoError(t, err)
	assert.Equal(t, "custom", cfg.Index.Collection)
}

func TestPaths(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Index.PersistDir = "/data/qa"

	assert.Equal(t, filepath.Join("/data/qa", "qa_documents.json"), cfg.CollectionPath())
	assert.Equal(t, filepath.Join("/data/qa", "qa_documents.db"), cfg.VectorDBPath())
}
