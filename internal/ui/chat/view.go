// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the Bubble Tea chat surface.
//
// This file contains all rendering: the main frame (header, viewport, input,
// status bar), thread rendering with markdown support, and the list overlays
// for discussions, agents, and models.
package chat

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/synthetixartifacts/gchat/internal/llm"
	"github.com/synthetixartifacts/gchat/internal/model"
)

// =============================================================================
// MAIN VIEW
// =============================================================================

// View renders the complete frame.
// Layout: header (1) + viewport + input (3) + status (1); the viewport height
// is pre-computed in handleResize to fill the remainder exactly.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.renderInput())
	b.WriteString("\n")
	b.WriteString(m.renderStatusBar())
	return b.String()
}

// renderHeader shows the application name, the active agent, and the active
// discussion title.
func (m Model) renderHeader() string {
	title := "gchat"
	if agent := m.bridge.Agent(); agent != nil {
		title += "  |  " + agent.Name + " (" + agent.Model + ")"
	}
	if disc := m.bridge.Discussion(); disc != nil {
		title += "  |  " + disc.GetTitle()
	}
	return m.theme.Header.Width(m.width).Render(runewidth.Truncate(title, m.width-2, "..."))
}

func (m Model) renderInput() string {
	return m.theme.InputBox.Width(m.width - 2).Render(m.input.View())
}

// renderStatusBar shows either the transient status line or, while a send is
// in flight, the spinner with a hint.
func (m Model) renderStatusBar() string {
	style := m.theme.StatusBar
	text := m.statusMsg
	if m.statusErr {
		style = m.theme.StatusErr
	}
	if m.state == StateSending && text == "" {
		text = m.spin.View() + " Responding... (Esc to cancel)"
	}
	if text == "" {
		text = "Enter to send - /help for commands"
	}
	return style.Width(m.width).Render(runewidth.Truncate(text, m.width-2, "..."))
}

// =============================================================================
// THREAD RENDERING
// =============================================================================

// renderThread renders a thread projection snapshot into viewport content.
func (m Model) renderThread(thread model.ChatThread) string {
	if len(thread.Messages) == 0 {
		return m.theme.Help.Render("\n  No messages yet. Type below to start a discussion.\n")
	}

	var b strings.Builder
	for i := range thread.Messages {
		msg := &thread.Messages[i]
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(m.renderMessage(msg))
		b.WriteString("\n")
	}
	return b.String()
}

// renderMessage renders one projected message with its label line.
func (m Model) renderMessage(msg *model.ChatMessage) string {
	var b strings.Builder

	stamp := m.theme.Timestamp.Render(msg.CreatedAt.Local().Format("15:04"))
	switch {
	case msg.IsError:
		b.WriteString(m.theme.AgentLabel.Render("Agent"))
		b.WriteString(" ")
		b.WriteString(stamp)
		b.WriteString("\n")
		b.WriteString(m.theme.ErrorText.Render("Error: " + msg.Content))
	case msg.Role == model.ChatRoleUser:
		b.WriteString(m.theme.UserLabel.Render("You"))
		b.WriteString(" ")
		b.WriteString(stamp)
		b.WriteString("\n")
		b.WriteString(m.theme.UserText.Render(msg.Content))
	default:
		b.WriteString(m.theme.AgentLabel.Render("Agent"))
		b.WriteString(" ")
		b.WriteString(stamp)
		b.WriteString("\n")
		if msg.Content == "" && msg.IsPlaceholder() {
			b.WriteString(m.theme.Pending.Render("..."))
		} else {
			b.WriteString(m.renderAgentContent(msg))
		}
	}
	return b.String()
}

// renderAgentContent renders assistant output, through glamour when markdown
// is enabled. Streaming placeholders are rendered as plain text: partial
// markdown (an unclosed code fence, half a table) renders worse than none.
func (m Model) renderAgentContent(msg *model.ChatMessage) string {
	if m.renderer == nil || msg.IsPlaceholder() {
		return m.theme.AgentText.Render(msg.Content)
	}
	rendered, err := m.renderer.Render(msg.Content)
	if err != nil {
		return m.theme.AgentText.Render(msg.Content)
	}
	return strings.TrimRight(rendered, "\n")
}

// =============================================================================
// OVERLAYS
// =============================================================================

func (m Model) renderHelp() string {
	rows := [][2]string{
		{"/new", "Start a fresh discussion (same agent)"},
		{"/clear", "Detach from the current discussion"},
		{"/list", "List saved discussions"},
		{"/open N", "Resume discussion N from the list"},
		{"/favorite N", "Toggle favorite on discussion N"},
		{"/delete N", "Delete discussion N and its messages"},
		{"/agents", "List configured agents"},
		{"/agent N", "Switch to agent N (by number or name)"},
		{"/models", "List models available on the server"},
		{"/quit", "Exit"},
	}

	var b strings.Builder
	b.WriteString(m.theme.AgentLabel.Render("Commands"))
	b.WriteString("\n\n")
	for _, row := range rows {
		b.WriteString("  ")
		b.WriteString(m.theme.ListIndex.Render(fmt.Sprintf("%-13s", row[0])))
		b.WriteString(m.theme.Help.Render(row[1]))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.theme.Help.Render("  Esc cancels a running response or closes this view."))
	b.WriteString("\n")
	return b.String()
}

func (m Model) renderDiscussionList(discussions []model.DiscussionMeta) string {
	var b strings.Builder
	b.WriteString(m.theme.AgentLabel.Render("Discussions"))
	b.WriteString("\n\n")

	if len(discussions) == 0 {
		b.WriteString(m.theme.Help.Render("  Nothing saved yet."))
		b.WriteString("\n")
		return b.String()
	}

	titleWidth := m.width - 30
	if titleWidth < 20 {
		titleWidth = 20
	}
	for i, disc := range discussions {
		marker := "  "
		if disc.IsFavorite {
			marker = m.theme.ListFavorite.Render("* ")
		}
		b.WriteString(fmt.Sprintf("  %s %s%s  %s\n",
			m.theme.ListIndex.Render(fmt.Sprintf("%3d.", i+1)),
			marker,
			m.theme.ListTitle.Render(runewidth.Truncate(disc.Title, titleWidth, "...")),
			m.theme.ListMeta.Render(fmt.Sprintf("%d msgs, %s",
				disc.MessageCount, disc.UpdatedAt.Local().Format("Jan 2 15:04"))),
		))
	}
	return b.String()
}

func (m Model) renderAgentList(agents []model.Agent) string {
	var b strings.Builder
	b.WriteString(m.theme.AgentLabel.Render("Agents"))
	b.WriteString("\n\n")

	if len(agents) == 0 {
		b.WriteString(m.theme.Help.Render("  No agents configured."))
		b.WriteString("\n")
		return b.String()
	}

	active := m.bridge.Agent()
	for i, agent := range agents {
		marker := "  "
		if active != nil && active.ID == agent.ID {
			marker = m.theme.ListFavorite.Render("> ")
		}
		memory := "memory off"
		if agent.UseMemory() {
			memory = "memory on"
		}
		b.WriteString(fmt.Sprintf("  %s %s%s  %s\n",
			m.theme.ListIndex.Render(fmt.Sprintf("%3d.", i+1)),
			marker,
			m.theme.ListTitle.Render(agent.Name),
			m.theme.ListMeta.Render(agent.Model+", "+memory),
		))
	}
	return b.String()
}

func (m Model) renderModelList(models []llm.ModelInfo) string {
	var b strings.Builder
	b.WriteString(m.theme.AgentLabel.Render("Models"))
	b.WriteString("\n\n")

	if len(models) == 0 {
		b.WriteString(m.theme.Help.Render("  The server reported no models."))
		b.WriteString("\n")
		return b.String()
	}

	for i, info := range models {
		b.WriteString(fmt.Sprintf("  %s %s  %s\n",
			m.theme.ListIndex.Render(fmt.Sprintf("%3d.", i+1)),
			m.theme.ListTitle.Render(info.Name),
			m.theme.ListMeta.Render(formatModelSize(info.Size)),
		))
	}
	return b.String()
}

// formatModelSize renders a byte count as a human-readable size.
func formatModelSize(size int64) string {
	const gb = 1024 * 1024 * 1024
	const mb = 1024 * 1024
	switch {
	case size >= gb:
		return fmt.Sprintf("%.1f GB", float64(size)/gb)
	case size >= mb:
		return fmt.Sprintf("%.0f MB", float64(size)/mb)
	case size > 0:
		return fmt.Sprintf("%d B", size)
	default:
		return ""
	}
}
