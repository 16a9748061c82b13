package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.True(t, cfg.Catalog.AutoMigrate, "default config should auto-migrate")
	assert.Equal(t, "http://localhost:11434", cfg.LLM.BaseURL)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := DefaultConfig()
	cfg.Catalog.Path = "/tmp/cards.db"
	cfg.Meta.Watch = true
	cfg.LLM.Enabled = true
	cfg.App.DebugMode = true

	require.NoError(t, cfg.SaveTo(path))

	got, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/cards.db", got.Catalog.Path)
	assert.True(t, got.Meta.Watch)
	assert.True(t, got.LLM.Enabled)
	assert.True(t, got.App.DebugMode)
}

func TestLoadFrom_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	partial := "[llm]\nenabled = true\n"
	require.NoError(t, os.WriteFile(path, []byte(partial), 0o644))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.True(t, cfg.LLM.Enabled, "llm.enabled should be set from file")
	assert.Equal(t, "qwen3:8b", cfg.LLM.Model, "unset fields should keep defaults")
	assert.Equal(t, 30, cfg.Meta.RemoteRPM, "meta.remote_rpm default should survive")
}

func TestLoadFrom_BadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("not = [valid"), 0o644))

	_, err := LoadFrom(path)
	assert.Error(t, err, "malformed TOML should be an error")
}
