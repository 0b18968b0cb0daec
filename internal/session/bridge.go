// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session implements the conversation streaming bridge.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/synthetixartifacts/gchat/internal/llm"
	"github.com/synthetixartifacts/gchat/internal/model"
	"github.com/synthetixartifacts/gchat/internal/prompt"
	"github.com/synthetixartifacts/gchat/internal/store"
)

// =============================================================================
// COLLABORATOR CONTRACTS
// =============================================================================

// MessageStore is the slice of the durable store the bridge consumes.
type MessageStore interface {
	CreateDiscussion(ctx context.Context, params store.DiscussionParams) (*model.Discussion, error)
	CreateMessage(ctx context.Context, params store.MessageParams) (*model.Message, error)
	GetDiscussionWithMessages(ctx context.Context, id int64) (*store.DiscussionWithMessages, error)
	GetAgent(ctx context.Context, id int64) (*model.Agent, error)
}

// Transport is the streaming completion transport the bridge consumes.
// The returned channel carries zero or more chunk events followed by exactly
// one terminal event, then closes.
type Transport interface {
	StreamChan(ctx context.Context, model string, messages []llm.PromptMessage, opts *llm.Options) <-chan llm.StreamEvent
}

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrNoAgent is returned when SendMessage is invoked before Initialize
	// established an agent.
	ErrNoAgent = errors.New("no discussion or agent configured")

	// ErrDiscussionCreateFailed is returned when discussion creation
	// produced no record.
	ErrDiscussionCreateFailed = errors.New("failed to create discussion")

	// ErrNotSaved is returned when the streamed assistant message could not
	// be persisted after a successful stream. The content the user already
	// saw is retained in the UI projection; this condition is deliberately
	// distinct from a transport error.
	ErrNotSaved = errors.New("assistant message not saved")
)

// =============================================================================
// SESSION BRIDGE
// =============================================================================

// Bridge orchestrates a single chat session: discussion creation on first
// message, message persistence, prompt construction, transport invocation,
// and incremental application of streamed chunks to the thread projection.
//
// One Bridge exists per active discussion-or-pending-discussion. At most one
// send is in flight per Bridge (see package documentation for the
// single-flight policy).
type Bridge struct {
	mu    sync.Mutex
	state State

	// gen is bumped by Initialize and ClearDiscussion. A send attempt
	// captures gen at start; once stale, the attempt stops mutating the
	// working copy. The projector has its own epoch guard.
	gen uint64

	store     MessageStore
	transport Transport
	projector *Projector

	// Session configuration, established by Initialize. useMemory is read
	// from the agent once; mid-session agent edits are not observed.
	agent     *model.Agent
	useMemory bool

	// Working copy of the active discussion. Exclusively owned by the
	// bridge; the store remains the system of record.
	discussion *model.Discussion
	messages   []model.Message

	// epoch is the projector epoch of the current thread generation.
	epoch uint64
}

// NewBridge creates a bridge over the given collaborators for one thread.
func NewBridge(st MessageStore, transport Transport, threadID string) *Bridge {
	return &Bridge{
		store:     st,
		transport: transport,
		projector: NewProjector(threadID),
	}
}

// =============================================================================
// LIFECYCLE
// =============================================================================

// Initialize binds the session to an agent and, optionally, an existing
// discussion (discussionID > 0). The thread projection is rebuilt wholesale;
// any in-flight continuation from a previous generation becomes a no-op.
func (b *Bridge) Initialize(ctx context.Context, agentID, discussionID int64) error {
	agent, err := b.store.GetAgent(ctx, agentID)
	if err != nil {
		return fmt.Errorf("failed to load agent: %w", err)
	}
	if agent == nil {
		return fmt.Errorf("failed to load agent %d: store returned no record", agentID)
	}

	var disc *store.DiscussionWithMessages
	if discussionID > 0 {
		disc, err = b.store.GetDiscussionWithMessages(ctx, discussionID)
		if err != nil {
			return fmt.Errorf("failed to load discussion: %w", err)
		}
	}

	epoch := b.projector.Initialize(disc)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.gen++
	b.state = StateIdle
	b.agent = agent
	b.useMemory = agent.UseMemory()
	b.epoch = epoch
	if disc != nil {
		working := disc.Discussion
		b.discussion = &working
		b.messages = append([]model.Message(nil), disc.Messages...)
	} else {
		b.discussion = nil
		b.messages = nil
	}
	return nil
}

// ClearDiscussion detaches the session from its discussion and empties the
// thread. The agent binding is kept, so the next SendMessage starts a fresh
// discussion with the same agent.
func (b *Bridge) ClearDiscussion() {
	epoch := b.projector.Clear()

	b.mu.Lock()
	defer b.mu.Unlock()
	b.gen++
	b.state = StateIdle
	b.discussion = nil
	b.messages = nil
	b.epoch = epoch
}

// HandleDiscussionDeleted clears the session if it currently points at the
// deleted discussion.
func (b *Bridge) HandleDiscussionDeleted(discussionID int64) {
	b.mu.Lock()
	active := b.discussion != nil && b.discussion.ID == discussionID
	b.mu.Unlock()

	if active {
		b.ClearDiscussion()
	}
}

// =============================================================================
// SEND
// =============================================================================

// SendMessage runs one full send attempt: ensure a discussion exists,
// persist the user turn, stream the completion into the thread projection,
// and persist the assistant turn.
//
// A call while a previous send is still in flight is a silent no-op and
// returns nil. All failure paths return the bridge to StateIdle.
func (b *Bridge) SendMessage(ctx context.Context, content string) error {
	b.mu.Lock()
	if b.state.Busy() {
		b.mu.Unlock()
		return nil
	}
	if b.agent == nil {
		b.mu.Unlock()
		return ErrNoAgent
	}
	agent := b.agent
	useMemory := b.useMemory
	disc := b.discussion
	gen := b.gen
	epoch := b.epoch
	prior := append([]model.Message(nil), b.messages...)
	if disc == nil {
		b.state = StateEnsuringDiscussion
	} else {
		b.state = StatePersisting
	}
	b.mu.Unlock()

	// EnsuringDiscussion: create on first message.
	if disc == nil {
		created, err := b.store.CreateDiscussion(ctx, store.DiscussionParams{
			Title:   model.DiscussionTitle(content),
			AgentID: agent.ID,
		})
		if err != nil {
			return b.fail(gen, fmt.Errorf("%w: %v", ErrDiscussionCreateFailed, err))
		}
		if created == nil {
			return b.fail(gen, ErrDiscussionCreateFailed)
		}
		disc = created
		b.adoptDiscussion(gen, created)
		b.setState(gen, StatePersisting)
	}

	// Persisting: write the user turn.
	userMsg, err := b.store.CreateMessage(ctx, store.MessageParams{
		Who:          model.RoleUser,
		Content:      content,
		DiscussionID: disc.ID,
	})
	if err != nil {
		return b.fail(gen, fmt.Errorf("failed to persist user message: %w", err))
	}
	if userMsg == nil {
		return b.fail(gen, errors.New("failed to persist user message: store returned no record"))
	}
	b.appendWorking(gen, userMsg)
	b.projector.Append(epoch, model.ChatMessageFrom(userMsg))

	// Build the prompt from the turns that preceded this send; the user
	// message just persisted is carried as the new message, not as history.
	messages := prompt.Build(content, prior, useMemory)
	if agent.SystemPrompt != "" {
		messages = append([]llm.PromptMessage{llm.NewSystemMessage(agent.SystemPrompt)}, messages...)
	}

	var opts *llm.Options
	if temp := agent.Config().Temperature; temp > 0 {
		opts = &llm.Options{Temperature: temp}
	}

	// Streaming: placeholder goes up before the first chunk arrives.
	b.setState(gen, StateStreaming)
	placeholderID := model.NewPlaceholderID()
	b.projector.Append(epoch, model.ChatMessage{
		ID:        placeholderID,
		Role:      model.ChatRoleAssistant,
		CreatedAt: time.Now().UTC(),
	})

	// The accumulator is the single source of truth for rendered content;
	// each chunk triggers a full-content overwrite of the placeholder, so a
	// duplicated delivery cannot corrupt the rendering.
	var acc strings.Builder
	var streamErr error
	terminalSeen := false
	for event := range b.transport.StreamChan(ctx, agent.Model, messages, opts) {
		if terminalSeen {
			// At most one terminal event is honored; anything after it is
			// ignorable by contract.
			continue
		}
		switch event.Type {
		case llm.EventChunk:
			acc.WriteString(event.Data)
			b.projector.SetContent(epoch, placeholderID, acc.String())
		case llm.EventError:
			streamErr = event.Err
			if streamErr == nil {
				streamErr = errors.New("transport reported an unspecified error")
			}
			terminalSeen = true
		case llm.EventComplete:
			terminalSeen = true
		}
	}

	if !terminalSeen && streamErr == nil {
		// The channel closed without a terminal event. The accumulator may
		// hold a prefix of the reply; it cannot be trusted as a completion.
		streamErr = ctx.Err()
		if streamErr == nil {
			streamErr = errors.New("stream closed without completing")
		}
	}

	if streamErr != nil {
		// Partial, unconfirmed model output is discarded, never persisted.
		// The UI gets an inline error bubble in place of the placeholder.
		b.projector.Remove(epoch, placeholderID)
		b.projector.Append(epoch, model.ChatMessage{
			ID:        model.NewPlaceholderID(),
			Role:      model.ChatRoleAssistant,
			Content:   streamErr.Error(),
			CreatedAt: time.Now().UTC(),
			IsError:   true,
		})
		return b.fail(gen, fmt.Errorf("stream failed: %w", streamErr))
	}

	// Persist the assistant turn and reconcile the placeholder in place.
	agentMsg, err := b.store.CreateMessage(ctx, store.MessageParams{
		Who:          model.RoleAgent,
		Content:      acc.String(),
		DiscussionID: disc.ID,
	})
	if err == nil && agentMsg == nil {
		err = errors.New("store returned no record")
	}
	if err != nil {
		// The user already saw this content; keep the placeholder and
		// surface the divergence as a distinct not-saved condition.
		return b.fail(gen, fmt.Errorf("%w: %v", ErrNotSaved, err))
	}

	b.appendWorking(gen, agentMsg)
	b.projector.Reconcile(epoch, placeholderID, agentMsg)
	b.setState(gen, StateIdle)
	return nil
}

// =============================================================================
// ACCESSORS
// =============================================================================

// State returns the bridge's current send state.
func (b *Bridge) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Agent returns the agent bound by Initialize, or nil.
func (b *Bridge) Agent() *model.Agent {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.agent
}

// Discussion returns a copy of the working discussion, or nil when the
// session has no active discussion yet.
func (b *Bridge) Discussion() *model.Discussion {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.discussion == nil {
		return nil
	}
	working := *b.discussion
	return &working
}

// Messages returns a copy of the working message list.
func (b *Bridge) Messages() []model.Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]model.Message(nil), b.messages...)
}

// Thread returns a snapshot of the UI projection.
func (b *Bridge) Thread() model.ChatThread {
	return b.projector.Thread()
}

// ThreadID returns the projection's thread ID.
func (b *Bridge) ThreadID() string {
	return b.projector.Thread().ID
}

// =============================================================================
// INTERNAL STATE HELPERS
// =============================================================================

// setState moves the state machine forward if the send's generation is still
// current. A stale generation means the session was re-initialized or
// cleared mid-send; its state was already reset.
func (b *Bridge) setState(gen uint64, state State) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.gen == gen {
		b.state = state
	}
}

// fail walks the state machine through Failed back to Idle and returns err.
func (b *Bridge) fail(gen uint64, err error) error {
	b.setState(gen, StateFailed)
	b.setState(gen, StateIdle)
	return err
}

// adoptDiscussion installs the freshly created discussion as working copy.
func (b *Bridge) adoptDiscussion(gen uint64, disc *model.Discussion) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.gen == gen {
		working := *disc
		b.discussion = &working
	}
}

// appendWorking appends a persisted message to the working copy and bumps
// the working discussion's UpdatedAt, mirroring the store-side bump.
func (b *Bridge) appendWorking(gen uint64, msg *model.Message) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.gen != gen {
		return
	}
	b.messages = append(b.messages, *msg)
	if b.discussion != nil {
		b.discussion.UpdatedAt = msg.CreatedAt
	}
}
