package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 400, cfg.Document.ChunkSize)
	assert.Equal(t, 50, cfg.Document.MinChunkChars)
	assert.Equal(t, 8, cfg.Retriever.TopK)
	assert.Equal(t, 10000, cfg.Retriever.MaxContextChars)
	assert.Equal(t, 5, cfg.Completion.MaxToolRounds)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoad_PartialFileGetsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "document:\n  path: data/livre.txt\nretriever:\n  top_k: 3\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "data/livre.txt", cfg.Document.Path)
	assert.Equal(t, 3, cfg.Retriever.TopK)
	// unset fields fall back to defaults
	assert.Equal(t, 400, cfg.Document.ChunkSize)
	assert.Equal(t, 10000, cfg.Retriever.MaxContextChars)
	assert.Equal(t, "gpt-4o-mini", cfg.Completion.Model)
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := defaultConfig()
	cfg.Document.Path = "static/document/autre.txt"
	cfg.Completion.Model = "gpt-4o"
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "static/document/autre.txt", loaded.Document.Path)
	assert.Equal(t, "gpt-4o", loaded.Completion.Model)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("document: [not: a mapping"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}
