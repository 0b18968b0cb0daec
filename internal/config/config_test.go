// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// LOADING TESTS
// =============================================================================

func TestLoadFromMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err, "a missing config file is not an error")

	def := DefaultConfig()
	assert.Equal(t, def.Transport.BaseURL, cfg.Transport.BaseURL)
	assert.Equal(t, def.Transport.Model, cfg.Transport.Model)
	assert.Equal(t, def.Chat.DefaultAgent, cfg.Chat.DefaultAgent)
	assert.True(t, cfg.UI.Markdown)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
version = "1"

[transport]
base_url = "http://10.0.0.5:11434"
model = "llama3:8b"
timeout_secs = 60

[chat]
default_agent = "Coder"
use_memory = true

[ui]
markdown = false
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, "http://10.0.0.5:11434", cfg.Transport.BaseURL)
	assert.Equal(t, "llama3:8b", cfg.Transport.Model)
	assert.Equal(t, 60, cfg.Transport.TimeoutSecs)
	assert.Equal(t, "Coder", cfg.Chat.DefaultAgent)
	assert.True(t, cfg.Chat.UseMemory)
	assert.False(t, cfg.UI.Markdown)
}

func TestLoadFromSparseFileFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[transport]\nmodel = \"phi3:mini\"\n"), 0644))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, "phi3:mini", cfg.Transport.Model)
	assert.Equal(t, DefaultConfig().Transport.BaseURL, cfg.Transport.BaseURL, "unset fields fall back to defaults")
	assert.Equal(t, DefaultConfig().Transport.TimeoutSecs, cfg.Transport.TimeoutSecs)
}

func TestLoadFromMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("not = [valid"), 0644))

	_, err := LoadFrom(path)
	assert.Error(t, err)
}

// =============================================================================
// ENVIRONMENT OVERRIDE TESTS
// =============================================================================

func TestEnvOverrides(t *testing.T) {
	t.Setenv("GCHAT_BASE_URL", "http://override:11434")
	t.Setenv("GCHAT_MODEL", "env-model:1b")
	t.Setenv("GCHAT_DB_PATH", "/tmp/env.db")
	t.Setenv("GCHAT_TIMEOUT_SECS", "90")
	t.Setenv("GCHAT_USE_MEMORY", "false")

	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)

	assert.Equal(t, "http://override:11434", cfg.Transport.BaseURL)
	assert.Equal(t, "env-model:1b", cfg.Transport.Model)
	assert.Equal(t, "/tmp/env.db", cfg.Storage.Path)
	assert.Equal(t, 90, cfg.Transport.TimeoutSecs)
	assert.False(t, cfg.Chat.UseMemory)
}

func TestEnvInvalidTimeoutIgnored(t *testing.T) {
	t.Setenv("GCHAT_TIMEOUT_SECS", "soon")

	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Transport.TimeoutSecs, cfg.Transport.TimeoutSecs)
}

// =============================================================================
// VALIDATION TESTS
// =============================================================================

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())

	cfg.Transport.BaseURL = "not a url"
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Transport.RequestsPerMinute = -1
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.UI.MaxWidth = -5
	assert.Error(t, cfg.Validate())
}

// =============================================================================
// PERSISTENCE TESTS
// =============================================================================

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")

	cfg := DefaultConfig()
	cfg.Transport.Model = "saved-model:7b"
	cfg.Storage.Path = "/data/gchat.db"
	require.NoError(t, cfg.Save(path))

	loaded, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "saved-model:7b", loaded.Transport.Model)
	assert.Equal(t, "/data/gchat.db", loaded.Storage.Path)
}

func TestDatabasePath(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Storage.Path = "/explicit/gchat.db"

	path, err := cfg.DatabasePath()
	require.NoError(t, err)
	assert.Equal(t, "/explicit/gchat.db", path)

	cfg.Storage.Path = ""
	path, err = cfg.DatabasePath()
	require.NoError(t, err)
	assert.Equal(t, "gchat.db", filepath.Base(path))
}
