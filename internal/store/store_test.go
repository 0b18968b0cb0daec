// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synthetixartifacts/gchat/internal/model"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "gchat.db"))
	require.NoError(t, err, "open store")
	t.Cleanup(func() { st.Close() })
	return st
}

func seedAgent(t *testing.T, st *Store) *model.Agent {
	t.Helper()
	agent, err := st.CreateAgent(context.Background(), AgentParams{
		Name:  "helper",
		Model: "qwen2.5:7b",
	})
	require.NoError(t, err, "seed agent")
	return agent
}

func seedDiscussion(t *testing.T, st *Store, agentID int64) *model.Discussion {
	t.Helper()
	disc, err := st.CreateDiscussion(context.Background(), DiscussionParams{
		Title:   "Test discussion",
		AgentID: agentID,
	})
	require.NoError(t, err, "seed discussion")
	return disc
}

// =============================================================================
// DISCUSSION TESTS
// =============================================================================

func TestCreateDiscussionRequiresAgent(t *testing.T) {
	st := openTestStore(t)

	_, err := st.CreateDiscussion(context.Background(), DiscussionParams{
		Title:   "orphan",
		AgentID: 42,
	})
	assert.ErrorIs(t, err, ErrInvalidAgent)
}

func TestGetDiscussionNotFound(t *testing.T) {
	st := openTestStore(t)

	_, err := st.GetDiscussion(context.Background(), 99)
	assert.ErrorIs(t, err, ErrDiscussionNotFound)
}

func TestDiscussionRoundTrip(t *testing.T) {
	st := openTestStore(t)
	agent := seedAgent(t, st)
	created := seedDiscussion(t, st, agent.ID)

	got, err := st.GetDiscussion(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Title, got.Title)
	assert.Equal(t, agent.ID, got.AgentID)
	assert.False(t, got.IsFavorite)
}

func TestSetDiscussionFavorite(t *testing.T) {
	st := openTestStore(t)
	agent := seedAgent(t, st)
	disc := seedDiscussion(t, st, agent.ID)

	require.NoError(t, st.SetDiscussionFavorite(context.Background(), disc.ID, true))

	got, err := st.GetDiscussion(context.Background(), disc.ID)
	require.NoError(t, err)
	assert.True(t, got.IsFavorite)

	err = st.SetDiscussionFavorite(context.Background(), 999, true)
	assert.ErrorIs(t, err, ErrDiscussionNotFound)
}

func TestListDiscussionsOrderAndCounts(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	agent := seedAgent(t, st)

	first := seedDiscussion(t, st, agent.ID)
	second := seedDiscussion(t, st, agent.ID)

	// Touch the first discussion so it becomes the most recently updated.
	time.Sleep(5 * time.Millisecond)
	_, err := st.CreateMessage(ctx, MessageParams{
		Who: model.RoleUser, Content: "hi", DiscussionID: first.ID,
	})
	require.NoError(t, err)

	metas, err := st.ListDiscussions(ctx)
	require.NoError(t, err)
	require.Len(t, metas, 2)

	assert.Equal(t, first.ID, metas[0].ID, "most recently updated first")
	assert.Equal(t, 1, metas[0].MessageCount)
	assert.Equal(t, second.ID, metas[1].ID)
	assert.Equal(t, 0, metas[1].MessageCount)
}

func TestDeleteDiscussionCascades(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	agent := seedAgent(t, st)
	disc := seedDiscussion(t, st, agent.ID)

	var lastID int64
	for _, content := range []string{"one", "two", "three"} {
		msg, err := st.CreateMessage(ctx, MessageParams{
			Who: model.RoleUser, Content: content, DiscussionID: disc.ID,
		})
		require.NoError(t, err)
		lastID = msg.ID
	}

	require.NoError(t, st.DeleteDiscussion(ctx, disc.ID))

	_, err := st.GetDiscussion(ctx, disc.ID)
	assert.ErrorIs(t, err, ErrDiscussionNotFound)

	_, err = st.GetMessage(ctx, lastID)
	assert.ErrorIs(t, err, ErrMessageNotFound, "messages must cascade with their discussion")

	messages, err := st.ListMessages(ctx, disc.ID)
	require.NoError(t, err)
	assert.Empty(t, messages)
}

// =============================================================================
// MESSAGE TESTS
// =============================================================================

func TestCreateMessageBumpsDiscussion(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	agent := seedAgent(t, st)
	disc := seedDiscussion(t, st, agent.ID)

	time.Sleep(5 * time.Millisecond)
	msg, err := st.CreateMessage(ctx, MessageParams{
		Who: model.RoleUser, Content: "hello", DiscussionID: disc.ID,
	})
	require.NoError(t, err)

	got, err := st.GetDiscussion(ctx, disc.ID)
	require.NoError(t, err)
	assert.True(t, got.UpdatedAt.After(disc.UpdatedAt), "appending a message must bump updated_at")
	assert.Equal(t, msg.CreatedAt, got.UpdatedAt)
}

func TestCreateMessageInvalidRole(t *testing.T) {
	st := openTestStore(t)
	agent := seedAgent(t, st)
	disc := seedDiscussion(t, st, agent.ID)

	_, err := st.CreateMessage(context.Background(), MessageParams{
		Who: model.Role("robot"), Content: "x", DiscussionID: disc.ID,
	})
	assert.Error(t, err)
}

func TestCreateMessageMissingDiscussion(t *testing.T) {
	st := openTestStore(t)
	seedAgent(t, st)

	_, err := st.CreateMessage(context.Background(), MessageParams{
		Who: model.RoleUser, Content: "x", DiscussionID: 123,
	})
	assert.ErrorIs(t, err, ErrDiscussionNotFound)
}

func TestListMessagesChronological(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	agent := seedAgent(t, st)
	disc := seedDiscussion(t, st, agent.ID)

	for _, content := range []string{"first", "second", "third"} {
		_, err := st.CreateMessage(ctx, MessageParams{
			Who: model.RoleUser, Content: content, DiscussionID: disc.ID,
		})
		require.NoError(t, err)
	}

	messages, err := st.ListMessages(ctx, disc.ID)
	require.NoError(t, err)
	require.Len(t, messages, 3)
	assert.Equal(t, "first", messages[0].Content)
	assert.Equal(t, "second", messages[1].Content)
	assert.Equal(t, "third", messages[2].Content)
}

func TestGetDiscussionWithMessages(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	agent := seedAgent(t, st)
	disc := seedDiscussion(t, st, agent.ID)

	_, err := st.CreateMessage(ctx, MessageParams{
		Who: model.RoleUser, Content: "hi", DiscussionID: disc.ID,
	})
	require.NoError(t, err)
	_, err = st.CreateMessage(ctx, MessageParams{
		Who: model.RoleAgent, Content: "hello", DiscussionID: disc.ID,
	})
	require.NoError(t, err)

	got, err := st.GetDiscussionWithMessages(ctx, disc.ID)
	require.NoError(t, err)
	assert.Equal(t, disc.ID, got.ID)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, model.RoleUser, got.Messages[0].Who)
	assert.Equal(t, model.RoleAgent, got.Messages[1].Who)
}

func TestCountMessages(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	agent := seedAgent(t, st)
	disc := seedDiscussion(t, st, agent.ID)

	count, err := st.CountMessages(ctx, disc.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	_, err = st.CreateMessage(ctx, MessageParams{
		Who: model.RoleUser, Content: "hi", DiscussionID: disc.ID,
	})
	require.NoError(t, err)

	count, err = st.CountMessages(ctx, disc.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

// =============================================================================
// AGENT TESTS
// =============================================================================

func TestAgentRoundTrip(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	created, err := st.CreateAgent(ctx, AgentParams{
		Name:         "coder",
		Model:        "qwen2.5:7b",
		SystemPrompt: "You write Go.",
		Configuration: model.EncodeAgentConfig(model.AgentConfig{
			UseMemory: true, Temperature: 0.2,
		}),
	})
	require.NoError(t, err)

	got, err := st.GetAgent(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "coder", got.Name)
	assert.Equal(t, "You write Go.", got.SystemPrompt)
	assert.True(t, got.UseMemory())
	assert.Equal(t, 0.2, got.Config().Temperature)
}

func TestGetAgentByName(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	seedAgent(t, st)

	got, err := st.GetAgentByName(ctx, "helper")
	require.NoError(t, err)
	assert.Equal(t, "helper", got.Name)

	_, err = st.GetAgentByName(ctx, "nobody")
	assert.ErrorIs(t, err, ErrAgentNotFound)
}

func TestUpdateAgent(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	agent := seedAgent(t, st)

	err := st.UpdateAgent(ctx, agent.ID, AgentParams{
		Name:  "helper",
		Model: "llama3:8b",
	})
	require.NoError(t, err)

	got, err := st.GetAgent(ctx, agent.ID)
	require.NoError(t, err)
	assert.Equal(t, "llama3:8b", got.Model)

	err = st.UpdateAgent(ctx, 999, AgentParams{Name: "x"})
	assert.ErrorIs(t, err, ErrAgentNotFound)
}

func TestDeleteAgent(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	agent := seedAgent(t, st)

	require.NoError(t, st.DeleteAgent(ctx, agent.ID))

	_, err := st.GetAgent(ctx, agent.ID)
	assert.ErrorIs(t, err, ErrAgentNotFound)

	err = st.DeleteAgent(ctx, agent.ID)
	assert.ErrorIs(t, err, ErrAgentNotFound)
}

// =============================================================================
// TIMESTAMP TESTS
// =============================================================================

func TestTimestampMillisecondRoundTrip(t *testing.T) {
	now := time.Now().UTC()
	got := fromMillis(toMillis(now))
	assert.Equal(t, now.Truncate(time.Millisecond), got)
}
