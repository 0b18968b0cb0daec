// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the Bubble Tea chat surface.
//
// This file defines the visual theme for the chat interface. Colors use
// adaptive light/dark pairs so the interface stays readable on any terminal
// background.
package chat

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// =============================================================================
// THEME
// =============================================================================

// Theme holds every lipgloss style used by the chat surface.
type Theme struct {
	// Message rendering
	UserLabel  lipgloss.Style
	AgentLabel lipgloss.Style
	UserText   lipgloss.Style
	AgentText  lipgloss.Style
	ErrorText  lipgloss.Style
	Pending    lipgloss.Style
	Timestamp  lipgloss.Style

	// Chrome
	Header    lipgloss.Style
	StatusBar lipgloss.Style
	StatusErr lipgloss.Style
	InputBox  lipgloss.Style
	Help      lipgloss.Style

	// Lists (discussions, agents, models)
	ListIndex    lipgloss.Style
	ListTitle    lipgloss.Style
	ListFavorite lipgloss.Style
	ListMeta     lipgloss.Style
}

// NewTheme builds the default theme. The color profile is taken from the
// environment so styles degrade gracefully on dumb terminals.
func NewTheme() *Theme {
	lipgloss.SetColorProfile(termenv.ColorProfile())

	var (
		accent  = lipgloss.AdaptiveColor{Light: "#005FAF", Dark: "#5FAFFF"}
		agent   = lipgloss.AdaptiveColor{Light: "#007A5C", Dark: "#5FD7AF"}
		danger  = lipgloss.AdaptiveColor{Light: "#B3001B", Dark: "#FF5F5F"}
		subtle  = lipgloss.AdaptiveColor{Light: "#6C6C6C", Dark: "#8A8A8A"}
		chrome  = lipgloss.AdaptiveColor{Light: "#EEEEEE", Dark: "#303030"}
		favGold = lipgloss.AdaptiveColor{Light: "#AF8700", Dark: "#FFD700"}
	)

	return &Theme{
		UserLabel:  lipgloss.NewStyle().Foreground(accent).Bold(true),
		AgentLabel: lipgloss.NewStyle().Foreground(agent).Bold(true),
		UserText:   lipgloss.NewStyle(),
		AgentText:  lipgloss.NewStyle(),
		ErrorText:  lipgloss.NewStyle().Foreground(danger),
		Pending:    lipgloss.NewStyle().Foreground(subtle).Italic(true),
		Timestamp:  lipgloss.NewStyle().Foreground(subtle),

		Header: lipgloss.NewStyle().
			Background(chrome).
			Foreground(accent).
			Bold(true).
			Padding(0, 1),
		StatusBar: lipgloss.NewStyle().
			Background(chrome).
			Foreground(subtle).
			Padding(0, 1),
		StatusErr: lipgloss.NewStyle().
			Background(chrome).
			Foreground(danger).
			Padding(0, 1),
		InputBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(subtle).
			Padding(0, 1),
		Help: lipgloss.NewStyle().Foreground(subtle),

		ListIndex:    lipgloss.NewStyle().Foreground(accent).Bold(true),
		ListTitle:    lipgloss.NewStyle(),
		ListFavorite: lipgloss.NewStyle().Foreground(favGold),
		ListMeta:     lipgloss.NewStyle().Foreground(subtle),
	}
}
