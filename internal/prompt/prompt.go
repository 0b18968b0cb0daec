// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package prompt builds the prompt sent to the completion transport.
//
// The builder is a pure function over its inputs: the same new message,
// prior messages, and memory flag always produce the same serialized
// output. This keeps prompting testable and cacheable.
package prompt

import (
	"strings"

	"github.com/synthetixartifacts/gchat/internal/llm"
	"github.com/synthetixartifacts/gchat/internal/model"
)

// =============================================================================
// HISTORY MARKERS
// =============================================================================

const (
	// HistoryHeader opens the serialized history block.
	HistoryHeader = "Here is the history of our discussion so far:"

	// InstructionMarker separates the history block from the new message.
	InstructionMarker = "Now, please answer the following message:"

	// userLabel and agentLabel tag history entries by role.
	userLabel  = "User"
	agentLabel = "AI Agent"
)

// =============================================================================
// BUILDER
// =============================================================================

// Build serializes a user turn into the prompt messages for the transport.
//
// With useMemory disabled, or with no prior messages, the result is a single
// user-role message containing exactly newMessage.
//
// With useMemory enabled and prior turns present, the result is a single
// user-role message: the history block wrapping every prior non-system
// message labeled by role in chronological order, the instruction marker,
// then newMessage verbatim.
//
// prior is never mutated. The caller passes the turns that existed before
// the message being sent; the just-persisted user message must not be
// included.
func Build(newMessage string, prior []model.Message, useMemory bool) []llm.PromptMessage {
	if !useMemory || len(prior) == 0 {
		return []llm.PromptMessage{llm.NewUserMessage(newMessage)}
	}

	history := historyEntries(prior)
	if len(history) == 0 {
		return []llm.PromptMessage{llm.NewUserMessage(newMessage)}
	}

	var sb strings.Builder
	sb.WriteString(HistoryHeader)
	sb.WriteString("\n\n")
	for _, entry := range history {
		sb.WriteString(entry)
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(InstructionMarker)
	sb.WriteString("\n")
	sb.WriteString(newMessage)

	return []llm.PromptMessage{llm.NewUserMessage(sb.String())}
}

// historyEntries renders the prior turns as labeled lines, excluding
// system-role messages entirely.
func historyEntries(prior []model.Message) []string {
	entries := make([]string, 0, len(prior))
	for i := range prior {
		msg := &prior[i]
		switch msg.Who {
		case model.RoleUser:
			entries = append(entries, userLabel+": "+msg.Content)
		case model.RoleAgent:
			entries = append(entries, agentLabel+": "+msg.Content)
		default:
			// System messages never appear in the history block.
		}
	}
	return entries
}
