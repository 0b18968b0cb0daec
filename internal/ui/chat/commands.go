// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the Bubble Tea chat surface.
//
// This file implements the slash command registry. Each command is an
// individual handler keyed by name and aliases, dispatched from the input
// line.
package chat

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// =============================================================================
// COMMAND HANDLER REGISTRY
// =============================================================================

// CommandHandler handles one slash command. It receives the model and the
// command arguments and returns the updated model and a follow-up command.
type CommandHandler func(m Model, args []string) (tea.Model, tea.Cmd)

// commandHandlers maps command names to handlers.
var commandHandlers = map[string]CommandHandler{
	// Help & meta
	"help": handleHelpCommand,
	"h":    handleHelpCommand,
	"?":    handleHelpCommand,
	"quit": handleQuitCommand,
	"q":    handleQuitCommand,
	"exit": handleQuitCommand,

	// Discussions
	"new":      handleNewCommand,
	"n":        handleNewCommand,
	"clear":    handleClearCommand,
	"list":     handleListCommand,
	"l":        handleListCommand,
	"open":     handleOpenCommand,
	"o":        handleOpenCommand,
	"favorite": handleFavoriteCommand,
	"fav":      handleFavoriteCommand,
	"delete":   handleDeleteCommand,
	"del":      handleDeleteCommand,

	// Agents & models
	"agents": handleAgentsCommand,
	"agent":  handleAgentCommand,
	"a":      handleAgentCommand,
	"models": handleModelsCommand,
}

// handleCommand parses a "/command args" line and dispatches it.
func (m Model) handleCommand(line string) (tea.Model, tea.Cmd) {
	fields := strings.Fields(strings.TrimPrefix(line, "/"))
	if len(fields) == 0 {
		return m, nil
	}
	name := strings.ToLower(fields[0])

	handler, ok := commandHandlers[name]
	if !ok {
		m.setStatus("Unknown command /"+name+" - try /help", true)
		return m, nil
	}
	return handler(m, fields[1:])
}

// =============================================================================
// HELP & META
// =============================================================================

func handleHelpCommand(m Model, _ []string) (tea.Model, tea.Cmd) {
	m.overlay = m.renderHelp()
	m.refreshViewport(true)
	m.setStatus("Esc to close", false)
	return m, nil
}

func handleQuitCommand(m Model, _ []string) (tea.Model, tea.Cmd) {
	m.cancel.cancel()
	return m, tea.Quit
}

// =============================================================================
// DISCUSSIONS
// =============================================================================

// handleNewCommand drops the current thread and starts a fresh pending
// discussion with the same agent.
func handleNewCommand(m Model, _ []string) (tea.Model, tea.Cmd) {
	agent := m.bridge.Agent()
	if agent == nil {
		m.setStatus("No agent configured - use /agents to pick one", true)
		return m, nil
	}

	// An in-flight send belongs to the thread being dropped: cancel it and
	// bump the send sequence so its finish message is ignored on arrival.
	m.cancel.cancel()
	m.sendSeq++

	m.arena.Drop(m.threadID)
	m.threadN++
	m.threadID = fmt.Sprintf("chat-%d", m.threadN)
	m.bridge = m.arena.Session(m.threadID)
	m.state = StateReady
	m.overlay = ""
	m.refreshViewport(true)
	return m, m.newSessionCmd(agent.ID, m.threadID)
}

// handleClearCommand detaches from the current discussion without dropping
// the thread. The discussion stays in the database.
func handleClearCommand(m Model, _ []string) (tea.Model, tea.Cmd) {
	// Same abandonment as /new: a send against the cleared discussion is
	// cancelled and its eventual finish message orphaned.
	m.cancel.cancel()
	m.sendSeq++

	m.bridge.ClearDiscussion()
	m.state = StateReady
	m.overlay = ""
	m.refreshViewport(true)
	m.setStatus("Cleared", false)
	return m, nil
}

func handleListCommand(m Model, _ []string) (tea.Model, tea.Cmd) {
	m.setStatus("Loading discussions...", false)
	return m, m.loadDiscussionsCmd()
}

func handleOpenCommand(m Model, args []string) (tea.Model, tea.Cmd) {
	index, err := requireIndex(args, "/open")
	if err != nil {
		m.setStatus(err.Error(), true)
		return m, nil
	}
	if m.state == StateSending {
		m.setStatus("Still responding - press Esc to cancel first", true)
		return m, nil
	}
	return m, m.openDiscussionCmd(index)
}

func handleFavoriteCommand(m Model, args []string) (tea.Model, tea.Cmd) {
	index, err := requireIndex(args, "/favorite")
	if err != nil {
		m.setStatus(err.Error(), true)
		return m, nil
	}
	return m, m.favoriteDiscussionCmd(index)
}

func handleDeleteCommand(m Model, args []string) (tea.Model, tea.Cmd) {
	index, err := requireIndex(args, "/delete")
	if err != nil {
		m.setStatus(err.Error(), true)
		return m, nil
	}
	return m, m.deleteDiscussionCmd(index)
}

// =============================================================================
// AGENTS & MODELS
// =============================================================================

func handleAgentsCommand(m Model, _ []string) (tea.Model, tea.Cmd) {
	m.setStatus("Loading agents...", false)
	return m, m.loadAgentsCmd()
}

func handleAgentCommand(m Model, args []string) (tea.Model, tea.Cmd) {
	if len(args) == 0 {
		m.setStatus("Usage: /agent <number|name>", true)
		return m, nil
	}
	if m.state == StateSending {
		m.setStatus("Still responding - press Esc to cancel first", true)
		return m, nil
	}
	return m, m.selectAgentCmd(strings.Join(args, " "))
}

func handleModelsCommand(m Model, _ []string) (tea.Model, tea.Cmd) {
	m.setStatus("Querying server for models...", false)
	return m, m.loadModelsCmd()
}

// =============================================================================
// RESULT HANDLERS
// =============================================================================

func (m Model) handleDiscussionsLoaded(msg DiscussionsLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.setStatus("List failed: "+msg.Err.Error(), true)
		return m, nil
	}
	m.discussions = msg.Discussions
	m.overlay = m.renderDiscussionList(msg.Discussions)
	m.refreshViewport(true)
	m.setStatus("/open N to resume, /favorite N, /delete N - Esc to close", false)
	return m, nil
}

func (m Model) handleAgentsLoaded(msg AgentsLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.setStatus("Agents failed: "+msg.Err.Error(), true)
		return m, nil
	}
	m.agents = msg.Agents
	m.overlay = m.renderAgentList(msg.Agents)
	m.refreshViewport(true)
	m.setStatus("/agent N to switch - Esc to close", false)
	return m, nil
}

func (m Model) handleModelsLoaded(msg ModelsLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.setStatus("Models failed: "+msg.Err.Error(), true)
		return m, nil
	}
	m.overlay = m.renderModelList(msg.Models)
	m.refreshViewport(true)
	m.setStatus("Esc to close", false)
	return m, nil
}

// =============================================================================
// ARGUMENT PARSING
// =============================================================================

// parseIndex parses a 1-based list index.
func parseIndex(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}

// requireIndex extracts the mandatory index argument for list commands.
func requireIndex(args []string, usage string) (int, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("Usage: %s <number> (see /list)", usage)
	}
	index, err := parseIndex(args[0])
	if err != nil || index < 1 {
		return 0, fmt.Errorf("%q is not a valid number", args[0])
	}
	return index, nil
}
