// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store provides durable persistence for discussions, messages, and
// agents on SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/synthetixartifacts/gchat/internal/model"
)

// =============================================================================
// MESSAGE CRUD
// =============================================================================

// MessageParams holds the fields for creating a message.
type MessageParams struct {
	Who          model.Role
	Content      string
	DiscussionID int64
}

// CreateMessage appends a message to a discussion and bumps the discussion's
// updated_at, atomically.
func (s *Store) CreateMessage(ctx context.Context, params MessageParams) (*model.Message, error) {
	if !params.Who.Valid() {
		return nil, fmt.Errorf("invalid message role %q", params.Who)
	}

	now := time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO messages (who, content, discussion_id, created_at)
		 VALUES (?, ?, ?, ?)`,
		params.Who.String(), params.Content, params.DiscussionID, toMillis(now))
	if err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read message id: %w", err)
	}

	bump, err := tx.ExecContext(ctx,
		`UPDATE discussions SET updated_at = ? WHERE id = ?`,
		toMillis(now), params.DiscussionID)
	if err != nil {
		return nil, fmt.Errorf("failed to touch discussion: %w", err)
	}
	affected, err := bump.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return nil, fmt.Errorf("%w: id %d", ErrDiscussionNotFound, params.DiscussionID)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit message: %w", err)
	}

	return &model.Message{
		ID:           id,
		Who:          params.Who,
		Content:      params.Content,
		DiscussionID: params.DiscussionID,
		CreatedAt:    fromMillis(toMillis(now)),
	}, nil
}

// GetMessage retrieves a message by ID.
func (s *Store) GetMessage(ctx context.Context, id int64) (*model.Message, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, who, content, discussion_id, created_at
		 FROM messages WHERE id = ?`, id)

	var msg model.Message
	var who string
	var createdMs int64
	err := row.Scan(&msg.ID, &who, &msg.Content, &msg.DiscussionID, &createdMs)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMessageNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan message: %w", err)
	}
	msg.Who = model.Role(who)
	msg.CreatedAt = fromMillis(createdMs)
	return &msg, nil
}

// ListMessages returns all messages of a discussion in chronological order.
// Insertion order breaks ties between messages created in the same
// millisecond.
func (s *Store) ListMessages(ctx context.Context, discussionID int64) ([]model.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, who, content, discussion_id, created_at
		 FROM messages WHERE discussion_id = ?
		 ORDER BY created_at ASC, id ASC`, discussionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var messages []model.Message
	for rows.Next() {
		var msg model.Message
		var who string
		var createdMs int64
		if err := rows.Scan(&msg.ID, &who, &msg.Content, &msg.DiscussionID, &createdMs); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		msg.Who = model.Role(who)
		msg.CreatedAt = fromMillis(createdMs)
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// CountMessages returns the number of messages in a discussion.
func (s *Store) CountMessages(ctx context.Context, discussionID int64) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM messages WHERE discussion_id = ?`, discussionID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count messages: %w", err)
	}
	return count, nil
}

// DeleteMessage removes a single message.
func (s *Store) DeleteMessage(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM messages WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: id %d", ErrMessageNotFound, id)
	}
	return nil
}
