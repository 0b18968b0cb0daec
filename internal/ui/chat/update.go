// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the Bubble Tea chat surface.
//
// This file contains the Update loop and the commands it dispatches. All
// store and transport work runs inside tea.Cmd goroutines; the loop itself
// never blocks.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/synthetixartifacts/gchat/internal/session"
)

// =============================================================================
// UPDATE
// =============================================================================

// Update handles all Bubble Tea messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.handleResize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case StreamTickMsg:
		return m.handleStreamTick()

	case SendFinishedMsg:
		return m.handleSendFinished(msg)

	case spinner.TickMsg:
		if m.state == StateSending {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			return m, cmd
		}
		return m, nil

	case DiscussionsLoadedMsg:
		return m.handleDiscussionsLoaded(msg)

	case DiscussionOpenedMsg:
		if msg.Err != nil {
			m.setStatus("Open failed: "+msg.Err.Error(), true)
			return m, nil
		}
		m.dismissOverlay()
		m.refreshViewport(true)
		m.setStatus("Opened: "+msg.Title, false)
		return m, nil

	case DiscussionDeletedMsg:
		if msg.Err != nil {
			m.setStatus("Delete failed: "+msg.Err.Error(), true)
			return m, nil
		}
		m.arena.HandleDiscussionDeleted(msg.ID)
		m.dismissOverlay()
		m.refreshViewport(true)
		m.setStatus("Discussion deleted", false)
		return m, nil

	case AgentsLoadedMsg:
		return m.handleAgentsLoaded(msg)

	case AgentSelectedMsg:
		if msg.Err != nil {
			m.setStatus("Agent switch failed: "+msg.Err.Error(), true)
			return m, nil
		}
		m.dismissOverlay()
		m.refreshViewport(true)
		m.setStatus("Agent: "+msg.Name, false)
		return m, nil

	case ModelsLoadedMsg:
		return m.handleModelsLoaded(msg)

	case StatusMsg:
		m.setStatus(msg.Text, false)
		return m, nil
	}

	return m, nil
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.cancel.cancel()
		return m, tea.Quit

	case "esc":
		if m.state == StateSending {
			m.cancel.cancel()
			m.setStatus("Cancelling...", false)
			return m, nil
		}
		m.dismissOverlay()
		return m, nil

	case "enter":
		return m.handleSubmit()

	case "pgup":
		m.viewport.HalfViewUp()
		return m, nil

	case "pgdown":
		m.viewport.HalfViewDown()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleSubmit processes the Enter key: dispatch a slash command or send the
// input as a chat message.
func (m Model) handleSubmit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}

	if strings.HasPrefix(text, "/") {
		m.input.SetValue("")
		return m.handleCommand(text)
	}

	if m.state == StateSending {
		// The bridge would no-op anyway; keep the input intact so nothing
		// the user typed is lost.
		m.setStatus("Still responding - press Esc to cancel", false)
		return m, nil
	}

	m.input.SetValue("")
	m.dismissOverlay()
	m.state = StateSending
	m.gate.Reset()
	m.setStatus("", false)

	// The cancel func is armed here, before the command goroutine starts, so
	// an immediate Esc has something to cancel.
	ctx, cancelFn := context.WithCancel(context.Background())
	m.cancel.set(cancelFn)
	m.sendSeq++

	return m, tea.Batch(m.sendCmd(ctx, cancelFn, text, m.sendSeq), m.streamTickCmd(), m.spin.Tick)
}

// =============================================================================
// STREAMING
// =============================================================================

// handleStreamTick repaints the viewport from the live thread projection
// while a send is in flight, at the gate's capped frame rate.
func (m Model) handleStreamTick() (tea.Model, tea.Cmd) {
	if m.state != StateSending {
		return m, nil
	}
	m.refreshViewport(false)
	return m, m.streamTickCmd()
}

// handleSendFinished runs once per send, after the bridge returns.
func (m Model) handleSendFinished(msg SendFinishedMsg) (tea.Model, tea.Cmd) {
	if msg.Seq != m.sendSeq {
		// Outcome of a send that /new or /clear already abandoned. Acting
		// on it would mark a live send as finished and nil its cancel func.
		return m, nil
	}
	m.state = StateReady
	m.cancel.set(nil)
	m.refreshViewport(true)

	switch {
	case msg.Err == nil:
		m.setStatus("", false)
	case errors.Is(msg.Err, session.ErrNotSaved):
		// The reply is on screen but not on disk; the divergence must be
		// visible, not silent.
		m.setStatus("Warning: reply was not saved to the database", true)
	case errors.Is(msg.Err, session.ErrNoAgent):
		m.setStatus("No agent configured - use /agents to pick one", true)
	default:
		m.setStatus(msg.Err.Error(), true)
	}
	return m, nil
}

// =============================================================================
// COMMANDS (tea.Cmd constructors)
// =============================================================================

// sendCmd runs the full send on the bridge in a goroutine. The bridge
// guarantees exactly one outcome per attempt, so exactly one SendFinishedMsg
// comes back, tagged with the send's sequence number.
func (m *Model) sendCmd(ctx context.Context, cancelFn context.CancelFunc, content string, seq uint64) tea.Cmd {
	bridge := m.bridge
	return func() tea.Msg {
		defer cancelFn()
		return SendFinishedMsg{Seq: seq, Err: bridge.SendMessage(ctx, content)}
	}
}

// streamTickCmd schedules the next streaming repaint.
func (m *Model) streamTickCmd() tea.Cmd {
	return tea.Tick(m.gate.Interval(), func(t time.Time) tea.Msg {
		return StreamTickMsg{Time: t}
	})
}

// cmdTimeout bounds store-backed commands. Local SQLite either answers
// quickly or something is wrong.
const cmdTimeout = 10 * time.Second

func (m *Model) loadDiscussionsCmd() tea.Cmd {
	st := m.store
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), cmdTimeout)
		defer cancel()
		discussions, err := st.ListDiscussions(ctx)
		return DiscussionsLoadedMsg{Discussions: discussions, Err: err}
	}
}

func (m *Model) openDiscussionCmd(index int) tea.Cmd {
	st := m.store
	bridge := m.bridge
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), cmdTimeout)
		defer cancel()

		discussions, err := st.ListDiscussions(ctx)
		if err != nil {
			return DiscussionOpenedMsg{Err: err}
		}
		if index < 1 || index > len(discussions) {
			return DiscussionOpenedMsg{Err: fmt.Errorf("no discussion #%d (have %d)", index, len(discussions))}
		}
		meta := discussions[index-1]
		if err := bridge.Initialize(ctx, meta.AgentID, meta.ID); err != nil {
			return DiscussionOpenedMsg{Err: err}
		}
		return DiscussionOpenedMsg{Title: meta.Title}
	}
}

func (m *Model) favoriteDiscussionCmd(index int) tea.Cmd {
	st := m.store
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), cmdTimeout)
		defer cancel()

		discussions, err := st.ListDiscussions(ctx)
		if err != nil {
			return StatusMsg{Text: "Favorite failed: " + err.Error()}
		}
		if index < 1 || index > len(discussions) {
			return StatusMsg{Text: fmt.Sprintf("No discussion #%d", index)}
		}
		meta := discussions[index-1]
		if err := st.SetDiscussionFavorite(ctx, meta.ID, !meta.IsFavorite); err != nil {
			return StatusMsg{Text: "Favorite failed: " + err.Error()}
		}
		if meta.IsFavorite {
			return StatusMsg{Text: "Unfavorited: " + meta.Title}
		}
		return StatusMsg{Text: "Favorited: " + meta.Title}
	}
}

func (m *Model) deleteDiscussionCmd(index int) tea.Cmd {
	st := m.store
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), cmdTimeout)
		defer cancel()

		discussions, err := st.ListDiscussions(ctx)
		if err != nil {
			return DiscussionDeletedMsg{Err: err}
		}
		if index < 1 || index > len(discussions) {
			return DiscussionDeletedMsg{Err: fmt.Errorf("no discussion #%d (have %d)", index, len(discussions))}
		}
		meta := discussions[index-1]
		if err := st.DeleteDiscussion(ctx, meta.ID); err != nil {
			return DiscussionDeletedMsg{Err: err}
		}
		return DiscussionDeletedMsg{ID: meta.ID}
	}
}

func (m *Model) loadAgentsCmd() tea.Cmd {
	st := m.store
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), cmdTimeout)
		defer cancel()
		agents, err := st.ListAgents(ctx)
		return AgentsLoadedMsg{Agents: agents, Err: err}
	}
}

// selectAgentCmd switches the session to another agent. The active
// discussion, if any, is carried over.
func (m *Model) selectAgentCmd(ref string) tea.Cmd {
	st := m.store
	bridge := m.bridge
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), cmdTimeout)
		defer cancel()

		agents, err := st.ListAgents(ctx)
		if err != nil {
			return AgentSelectedMsg{Err: err}
		}

		var agentID int64
		var agentName string
		if index, convErr := parseIndex(ref); convErr == nil {
			if index < 1 || index > len(agents) {
				return AgentSelectedMsg{Err: fmt.Errorf("no agent #%d (have %d)", index, len(agents))}
			}
			agentID = agents[index-1].ID
			agentName = agents[index-1].Name
		} else {
			for i := range agents {
				if strings.EqualFold(agents[i].Name, ref) {
					agentID = agents[i].ID
					agentName = agents[i].Name
					break
				}
			}
			if agentID == 0 {
				return AgentSelectedMsg{Err: fmt.Errorf("no agent named %q", ref)}
			}
		}

		var discussionID int64
		if disc := bridge.Discussion(); disc != nil {
			discussionID = disc.ID
		}
		if err := bridge.Initialize(ctx, agentID, discussionID); err != nil {
			return AgentSelectedMsg{Err: err}
		}
		return AgentSelectedMsg{Name: agentName}
	}
}

func (m *Model) loadModelsCmd() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), cmdTimeout)
		defer cancel()
		models, err := client.ListModels(ctx)
		return ModelsLoadedMsg{Models: models, Err: err}
	}
}

// newSessionCmd starts a fresh pending discussion on a new thread, keeping
// the current agent binding.
func (m *Model) newSessionCmd(agentID int64, threadID string) tea.Cmd {
	arena := m.arena
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), cmdTimeout)
		defer cancel()
		bridge := arena.Session(threadID)
		if err := bridge.Initialize(ctx, agentID, 0); err != nil {
			return AgentSelectedMsg{Err: err}
		}
		return StatusMsg{Text: "New discussion"}
	}
}
