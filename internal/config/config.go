// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for gchat.
//
// Configuration is TOML with sensible defaults and environment variable
// overrides. File location: ~/.gchat/config.toml.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/synthetixartifacts/gchat/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete gchat configuration.
type Config struct {
	Version string `toml:"version"`

	// Transport configures the completion server connection.
	Transport TransportConfig `toml:"transport"`

	// Storage configures the local chat database.
	Storage StorageConfig `toml:"storage"`

	// Chat configures session defaults.
	Chat ChatConfig `toml:"chat"`

	// UI configures the terminal surface.
	UI UIConfig `toml:"ui"`
}

// TransportConfig contains completion server settings.
type TransportConfig struct {
	// BaseURL is the chat server URL.
	BaseURL string `toml:"base_url"`
	// Model is the default model when an agent does not name one.
	Model string `toml:"model"`
	// TimeoutSecs is the timeout for non-streaming requests.
	TimeoutSecs int `toml:"timeout_secs"`
	// RequestsPerMinute caps outgoing completion requests (0 = unlimited).
	RequestsPerMinute int `toml:"requests_per_minute"`
}

// StorageConfig contains chat database settings.
type StorageConfig struct {
	// Path is the SQLite database file (empty = ~/.gchat/gchat.db).
	Path string `toml:"path"`
}

// ChatConfig contains session defaults.
type ChatConfig struct {
	// DefaultAgent is the agent selected at startup (empty = first agent,
	// creating a default one when the database has none).
	DefaultAgent string `toml:"default_agent"`
	// UseMemory is the memory setting applied when the default agent is
	// created on first run.
	UseMemory bool `toml:"use_memory"`
	// SystemPrompt is applied when the default agent is created.
	SystemPrompt string `toml:"system_prompt"`
}

// UIConfig contains terminal surface settings.
type UIConfig struct {
	// Markdown enables glamour rendering of assistant messages.
	Markdown bool `toml:"markdown"`
	// MaxWidth caps the rendered chat width (0 = terminal width).
	MaxWidth int `toml:"max_width"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: "1",
		Transport: TransportConfig{
			BaseURL:     "http://127.0.0.1:11434",
			Model:       "qwen2.5:7b",
			TimeoutSecs: 30,
		},
		Chat: ChatConfig{
			DefaultAgent: "Assistant",
			UseMemory:    true,
		},
		UI: UIConfig{
			Markdown: true,
			MaxWidth: 100,
		},
	}
}

// Dir returns the gchat configuration directory (~/.gchat).
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".gchat"), nil
}

// DefaultPath returns the default configuration file path.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// DatabasePath resolves the database file path, falling back to the default
// location when unset.
func (c *Config) DatabasePath() (string, error) {
	if c.Storage.Path != "" {
		return c.Storage.Path, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "gchat.db"), nil
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads the configuration from the default path, merges defaults,
// applies environment overrides, and validates. A missing file is not an
// error; defaults are used.
func Load() (*Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads the configuration from an explicit path.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err == nil {
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg.applyEnv()
	cfg.fillDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv applies GCHAT_* environment variable overrides.
func (c *Config) applyEnv() {
	if v := os.Getenv("GCHAT_BASE_URL"); v != "" {
		c.Transport.BaseURL = v
	}
	if v := os.Getenv("GCHAT_MODEL"); v != "" {
		c.Transport.Model = v
	}
	if v := os.Getenv("GCHAT_DB_PATH"); v != "" {
		c.Storage.Path = v
	}
	if v := os.Getenv("GCHAT_TIMEOUT_SECS"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			c.Transport.TimeoutSecs = secs
		}
	}
	if v := os.Getenv("GCHAT_USE_MEMORY"); v != "" {
		c.Chat.UseMemory = v == "1" || strings.EqualFold(v, "true")
	}
}

// fillDefaults replaces zero values left by a sparse config file.
func (c *Config) fillDefaults() {
	def := DefaultConfig()
	if c.Transport.BaseURL == "" {
		c.Transport.BaseURL = def.Transport.BaseURL
	}
	if c.Transport.Model == "" {
		c.Transport.Model = def.Transport.Model
	}
	if c.Transport.TimeoutSecs <= 0 {
		c.Transport.TimeoutSecs = def.Transport.TimeoutSecs
	}
	if c.Chat.DefaultAgent == "" {
		c.Chat.DefaultAgent = def.Chat.DefaultAgent
	}
}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	parsed, err := url.Parse(c.Transport.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("invalid transport base_url %q", c.Transport.BaseURL)
	}
	if c.Transport.RequestsPerMinute < 0 {
		return fmt.Errorf("requests_per_minute must be >= 0, got %d", c.Transport.RequestsPerMinute)
	}
	if c.UI.MaxWidth < 0 {
		return fmt.Errorf("max_width must be >= 0, got %d", c.UI.MaxWidth)
	}
	return nil
}

// =============================================================================
// SAVING
// =============================================================================

// Save writes the configuration to the given path atomically.
func (c *Config) Save(path string) error {
	var sb strings.Builder
	if err := toml.NewEncoder(&sb).Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, []byte(sb.String()), 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
