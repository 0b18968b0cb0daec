// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the Bubble Tea chat surface.
package chat

import (
	"context"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/synthetixartifacts/gchat/internal/config"
	"github.com/synthetixartifacts/gchat/internal/llm"
	"github.com/synthetixartifacts/gchat/internal/model"
	"github.com/synthetixartifacts/gchat/internal/session"
	"github.com/synthetixartifacts/gchat/internal/store"
)

// =============================================================================
// CHAT STATE
// =============================================================================

// State represents the current state of the chat surface.
type State int

const (
	StateReady   State = iota // Ready for input
	StateSending              // A send is in flight
)

// =============================================================================
// CANCEL TRACKING
// =============================================================================

// sendCancel holds the cancel function of the in-flight send. It lives behind
// a pointer because Bubble Tea copies the model on every update; the mutex
// must not be copied mid-send.
type sendCancel struct {
	mu sync.Mutex
	fn context.CancelFunc
}

func (c *sendCancel) set(fn context.CancelFunc) {
	c.mu.Lock()
	c.fn = fn
	c.mu.Unlock()
}

func (c *sendCancel) cancel() {
	c.mu.Lock()
	fn := c.fn
	c.fn = nil
	c.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat surface.
//
// It owns no conversation state of its own: every frame is rendered from a
// snapshot of the session bridge's thread projection, and all mutation goes
// through the bridge. The model's job is input, layout, and frame pacing.
type Model struct {
	// State
	state State

	// Styling
	theme *Theme

	// Dimensions
	width  int
	height int
	ready  bool

	// Collaborators
	cfg    *config.Config
	store  *store.Store
	client *llm.Client
	arena  *session.Arena
	bridge *session.Bridge

	// Thread identity; bumped by /new so dropped threads keep their name.
	threadID string
	threadN  int

	// Frame pacing during streaming
	gate *RenderGate

	// Markdown rendering; rebuilt on resize so word wrap tracks the width.
	renderer *glamour.TermRenderer

	// UI components
	viewport viewport.Model
	input    textinput.Model
	spin     spinner.Model

	// Overlay replaces the thread view until dismissed (lists, help).
	overlay string

	// Status line
	statusMsg string
	statusErr bool

	// Caches behind /open, /agent and friends; refreshed by each command.
	discussions []model.DiscussionMeta
	agents      []model.Agent

	// In-flight send cancellation (Esc)
	cancel *sendCancel

	// Sequence number of the latest send; finish messages carrying an older
	// number belong to an abandoned send and are ignored.
	sendSeq uint64
}

// New constructs the chat surface over an already-initialized bridge.
// The caller is responsible for having bound the bridge to an agent.
func New(cfg *config.Config, st *store.Store, client *llm.Client, arena *session.Arena, threadID string) Model {
	ti := textinput.New()
	ti.Placeholder = "Type a message, or /help for commands"
	ti.CharLimit = 0
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	vp := viewport.New(80, 20)

	return Model{
		state:    StateReady,
		theme:    NewTheme(),
		cfg:      cfg,
		store:    st,
		client:   client,
		arena:    arena,
		bridge:   arena.Session(threadID),
		threadID: threadID,
		gate:     NewRenderGate(),
		viewport: vp,
		input:    ti,
		spin:     sp,
		cancel:   &sendCancel{},
	}
}

// Init starts cursor blinking.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// =============================================================================
// LAYOUT
// =============================================================================

// Fixed chrome heights, in lines. Header and status are single lines; the
// input box border adds two.
const (
	headerHeight = 1
	statusHeight = 1
	inputHeight  = 3
)

// handleResize recomputes component dimensions and rebuilds the markdown
// renderer for the new wrap width.
func (m *Model) handleResize(width, height int) {
	m.width = width
	m.height = height
	m.ready = true

	viewHeight := height - headerHeight - statusHeight - inputHeight
	if viewHeight < 1 {
		viewHeight = 1
	}
	m.viewport.Width = width
	m.viewport.Height = viewHeight
	m.input.Width = width - 6

	wrap := width - 2
	if max := m.cfg.UI.MaxWidth; max > 0 && wrap > max {
		wrap = max
	}
	if wrap < 20 {
		wrap = 20
	}
	if m.cfg.UI.Markdown {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(wrap),
		)
		if err == nil {
			m.renderer = renderer
		}
	}

	m.refreshViewport(true)
}

// refreshViewport repaints the viewport from the current thread snapshot.
// force bypasses the render gate; streaming ticks pass force=false.
func (m *Model) refreshViewport(force bool) {
	if m.overlay != "" {
		m.viewport.SetContent(m.overlay)
		m.viewport.GotoTop()
		return
	}
	content := m.renderThread(m.bridge.Thread())
	if !force && !m.gate.Allow(content) {
		return
	}
	if force {
		m.gate.Force(content)
	}
	m.viewport.SetContent(content)
	m.viewport.GotoBottom()
}

// dismissOverlay returns to the thread view.
func (m *Model) dismissOverlay() {
	if m.overlay == "" {
		return
	}
	m.overlay = ""
	m.refreshViewport(true)
}

// setStatus replaces the status line.
func (m *Model) setStatus(text string, isErr bool) {
	m.statusMsg = text
	m.statusErr = isErr
}
