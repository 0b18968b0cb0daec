// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for discussions, messages,
// agents, and the transient chat thread projection.
package model

import (
	"encoding/json"
	"time"
)

// =============================================================================
// AGENT TYPE
// =============================================================================

// Agent represents a configurable chat agent.
//
// Configuration is a free-form JSON document. The session bridge reads
// UseMemory from it once per session initialization; configuration changes
// made mid-session are not observed until the session is re-initialized.
type Agent struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Model         string    `json:"model"`
	SystemPrompt  string    `json:"system_prompt"`
	Configuration string    `json:"configuration"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// AgentConfig is the parsed form of Agent.Configuration.
type AgentConfig struct {
	// UseMemory enables history-aware prompting: prior turns of the
	// discussion are serialized into the prompt sent to the model.
	UseMemory bool `json:"use_memory"`

	// Temperature overrides the model sampling temperature when non-zero.
	Temperature float64 `json:"temperature,omitempty"`
}

// Config parses the agent's JSON configuration.
// Malformed or empty configuration yields the zero config rather than an
// error; a broken agent row should degrade to memoryless prompting, not
// block the session.
func (a *Agent) Config() AgentConfig {
	var cfg AgentConfig
	if a.Configuration == "" {
		return cfg
	}
	if err := json.Unmarshal([]byte(a.Configuration), &cfg); err != nil {
		return AgentConfig{}
	}
	return cfg
}

// UseMemory reports whether history-aware prompting is enabled.
func (a *Agent) UseMemory() bool {
	return a.Config().UseMemory
}

// EncodeAgentConfig serializes an AgentConfig for storage in
// Agent.Configuration.
func EncodeAgentConfig(cfg AgentConfig) string {
	data, err := json.Marshal(cfg)
	if err != nil {
		return "{}"
	}
	return string(data)
}
