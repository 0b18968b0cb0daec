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
// DISCUSSION CRUD
// =============================================================================

// DiscussionParams holds the fields for creating a discussion.
type DiscussionParams struct {
	Title      string
	AgentID    int64
	IsFavorite bool
}

// DiscussionWithMessages bundles a discussion with its chronologically
// ordered messages, as consumed by session initialization.
type DiscussionWithMessages struct {
	model.Discussion
	Messages []model.Message
}

// CreateDiscussion inserts a new discussion and returns the stored record.
// Fails with ErrInvalidAgent if the agent reference does not exist.
func (s *Store) CreateDiscussion(ctx context.Context, params DiscussionParams) (*model.Discussion, error) {
	now := time.Now().UTC()

	var exists int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM agents WHERE id = ?`, params.AgentID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to validate agent: %w", err)
	}
	if exists == 0 {
		return nil, fmt.Errorf("%w: id %d", ErrInvalidAgent, params.AgentID)
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO discussions (title, is_favorite, agent_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		params.Title, boolToInt(params.IsFavorite), params.AgentID,
		toMillis(now), toMillis(now))
	if err != nil {
		return nil, fmt.Errorf("failed to create discussion: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read discussion id: %w", err)
	}

	return &model.Discussion{
		ID:         id,
		Title:      params.Title,
		IsFavorite: params.IsFavorite,
		AgentID:    params.AgentID,
		CreatedAt:  fromMillis(toMillis(now)),
		UpdatedAt:  fromMillis(toMillis(now)),
	}, nil
}

// GetDiscussion retrieves a discussion by ID.
func (s *Store) GetDiscussion(ctx context.Context, id int64) (*model.Discussion, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, is_favorite, agent_id, created_at, updated_at
		 FROM discussions WHERE id = ?`, id)
	return scanDiscussion(row)
}

// GetDiscussionWithMessages retrieves a discussion together with all of its
// messages in chronological order.
func (s *Store) GetDiscussionWithMessages(ctx context.Context, id int64) (*DiscussionWithMessages, error) {
	disc, err := s.GetDiscussion(ctx, id)
	if err != nil {
		return nil, err
	}

	messages, err := s.ListMessages(ctx, id)
	if err != nil {
		return nil, err
	}

	return &DiscussionWithMessages{Discussion: *disc, Messages: messages}, nil
}

// ListDiscussions returns metadata for all discussions, most recently
// updated first.
func (s *Store) ListDiscussions(ctx context.Context) ([]model.DiscussionMeta, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT d.id, d.title, d.is_favorite, d.agent_id, d.created_at, d.updated_at,
		        COUNT(m.id)
		 FROM discussions d
		 LEFT JOIN messages m ON m.discussion_id = d.id
		 GROUP BY d.id
		 ORDER BY d.updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list discussions: %w", err)
	}
	defer rows.Close()

	var metas []model.DiscussionMeta
	for rows.Next() {
		var meta model.DiscussionMeta
		var fav int
		var createdMs, updatedMs int64
		if err := rows.Scan(&meta.ID, &meta.Title, &fav, &meta.AgentID,
			&createdMs, &updatedMs, &meta.MessageCount); err != nil {
			return nil, fmt.Errorf("failed to scan discussion: %w", err)
		}
		meta.IsFavorite = fav != 0
		meta.CreatedAt = fromMillis(createdMs)
		meta.UpdatedAt = fromMillis(updatedMs)
		metas = append(metas, meta)
	}
	return metas, rows.Err()
}

// SetDiscussionTitle updates a discussion's title.
func (s *Store) SetDiscussionTitle(ctx context.Context, id int64, title string) error {
	return s.updateDiscussion(ctx, id,
		`UPDATE discussions SET title = ?, updated_at = ? WHERE id = ?`,
		title, toMillis(time.Now().UTC()), id)
}

// SetDiscussionFavorite updates a discussion's favorite flag.
func (s *Store) SetDiscussionFavorite(ctx context.Context, id int64, favorite bool) error {
	return s.updateDiscussion(ctx, id,
		`UPDATE discussions SET is_favorite = ?, updated_at = ? WHERE id = ?`,
		boolToInt(favorite), toMillis(time.Now().UTC()), id)
}

// DeleteDiscussion removes a discussion. Its messages are removed by the
// ON DELETE CASCADE constraint.
func (s *Store) DeleteDiscussion(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM discussions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete discussion: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: id %d", ErrDiscussionNotFound, id)
	}
	return nil
}

// =============================================================================
// INTERNAL HELPERS
// =============================================================================

func (s *Store) updateDiscussion(ctx context.Context, id int64, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update discussion: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: id %d", ErrDiscussionNotFound, id)
	}
	return nil
}

func scanDiscussion(row *sql.Row) (*model.Discussion, error) {
	var disc model.Discussion
	var fav int
	var createdMs, updatedMs int64
	err := row.Scan(&disc.ID, &disc.Title, &fav, &disc.AgentID, &createdMs, &updatedMs)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDiscussionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan discussion: %w", err)
	}
	disc.IsFavorite = fav != 0
	disc.CreatedAt = fromMillis(createdMs)
	disc.UpdatedAt = fromMillis(updatedMs)
	return &disc, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
