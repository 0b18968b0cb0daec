// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package llm provides the streaming completion transport.
package llm

import "time"

// =============================================================================
// PROMPT TYPES
// =============================================================================

// PromptMessage is a role-tagged message sent to the model.
type PromptMessage struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// NewSystemMessage builds a system-role prompt message.
func NewSystemMessage(content string) PromptMessage {
	return PromptMessage{Role: "system", Content: content}
}

// NewUserMessage builds a user-role prompt message.
func NewUserMessage(content string) PromptMessage {
	return PromptMessage{Role: "user", Content: content}
}

// Options contains model parameters for a completion request.
type Options struct {
	Temperature float64 `json:"temperature,omitempty"` // 0.0-2.0
	TopP        float64 `json:"top_p,omitempty"`       // 0.0-1.0
	NumPredict  int     `json:"num_predict,omitempty"` // Max tokens, -1 for unlimited
	Stop        []string `json:"stop,omitempty"`
}

// ChatRequest is the request body for the /api/chat endpoint.
type ChatRequest struct {
	Model    string          `json:"model"`
	Messages []PromptMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Options  *Options        `json:"options,omitempty"`
}

// =============================================================================
// STREAM EVENTS
// =============================================================================

// EventType discriminates stream events.
type EventType int

const (
	// EventChunk carries an incremental piece of model output in Data.
	EventChunk EventType = iota
	// EventError terminates the stream with Err set.
	EventError
	// EventComplete terminates the stream successfully.
	EventComplete
)

// String returns the event type name.
func (t EventType) String() string {
	switch t {
	case EventChunk:
		return "chunk"
	case EventError:
		return "error"
	case EventComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// StreamEvent is a single event in a completion stream.
type StreamEvent struct {
	Type EventType
	Data string // Chunk payload; empty for terminal events
	Err  error  // Set only for EventError

	// Completion statistics, populated on EventComplete when the server
	// reports them.
	PromptTokens     int
	CompletionTokens int
	TotalDuration    time.Duration
}

// Terminal reports whether the event ends the stream.
func (e StreamEvent) Terminal() bool {
	return e.Type == EventError || e.Type == EventComplete
}

// =============================================================================
// WIRE TYPES
// =============================================================================

// chatStreamLine is one NDJSON line of a streaming chat response.
type chatStreamLine struct {
	Model     string    `json:"model"`
	CreatedAt time.Time `json:"created_at"`
	Message   struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	Done            bool   `json:"done"`
	DoneReason      string `json:"done_reason,omitempty"`
	TotalDuration   int64  `json:"total_duration,omitempty"` // nanoseconds
	PromptEvalCount int    `json:"prompt_eval_count,omitempty"`
	EvalCount       int    `json:"eval_count,omitempty"`
}

// serverError is the error body returned by the chat server.
type serverError struct {
	Error string `json:"error"`
}

// ModelInfo describes a model available on the server.
type ModelInfo struct {
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	ModifiedAt time.Time `json:"modified_at"`
}

// listModelsResponse is the response from /api/tags.
type listModelsResponse struct {
	Models []ModelInfo `json:"models"`
}
