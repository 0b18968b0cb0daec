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
// AGENT CRUD
// =============================================================================

// AgentParams holds the fields for creating or updating an agent.
type AgentParams struct {
	Name          string
	Model         string
	SystemPrompt  string
	Configuration string
}

// CreateAgent inserts a new agent and returns the stored record.
func (s *Store) CreateAgent(ctx context.Context, params AgentParams) (*model.Agent, error) {
	now := time.Now().UTC()
	config := params.Configuration
	if config == "" {
		config = "{}"
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO agents (name, model, system_prompt, configuration, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		params.Name, params.Model, params.SystemPrompt, config,
		toMillis(now), toMillis(now))
	if err != nil {
		return nil, fmt.Errorf("failed to create agent: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read agent id: %w", err)
	}

	return &model.Agent{
		ID:            id,
		Name:          params.Name,
		Model:         params.Model,
		SystemPrompt:  params.SystemPrompt,
		Configuration: config,
		CreatedAt:     fromMillis(toMillis(now)),
		UpdatedAt:     fromMillis(toMillis(now)),
	}, nil
}

// GetAgent retrieves an agent by ID.
func (s *Store) GetAgent(ctx context.Context, id int64) (*model.Agent, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, model, system_prompt, configuration, created_at, updated_at
		 FROM agents WHERE id = ?`, id)
	return scanAgent(row)
}

// GetAgentByName retrieves an agent by its unique name. If multiple agents
// share a name, the oldest wins.
func (s *Store) GetAgentByName(ctx context.Context, name string) (*model.Agent, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, model, system_prompt, configuration, created_at, updated_at
		 FROM agents WHERE name = ? ORDER BY id ASC LIMIT 1`, name)
	return scanAgent(row)
}

// ListAgents returns all agents ordered by creation time.
func (s *Store) ListAgents(ctx context.Context) ([]model.Agent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, model, system_prompt, configuration, created_at, updated_at
		 FROM agents ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list agents: %w", err)
	}
	defer rows.Close()

	var agents []model.Agent
	for rows.Next() {
		var agent model.Agent
		var createdMs, updatedMs int64
		if err := rows.Scan(&agent.ID, &agent.Name, &agent.Model, &agent.SystemPrompt,
			&agent.Configuration, &createdMs, &updatedMs); err != nil {
			return nil, fmt.Errorf("failed to scan agent: %w", err)
		}
		agent.CreatedAt = fromMillis(createdMs)
		agent.UpdatedAt = fromMillis(updatedMs)
		agents = append(agents, agent)
	}
	return agents, rows.Err()
}

// UpdateAgent overwrites an agent's mutable fields.
func (s *Store) UpdateAgent(ctx context.Context, id int64, params AgentParams) error {
	config := params.Configuration
	if config == "" {
		config = "{}"
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE agents SET name = ?, model = ?, system_prompt = ?, configuration = ?, updated_at = ?
		 WHERE id = ?`,
		params.Name, params.Model, params.SystemPrompt, config,
		toMillis(time.Now().UTC()), id)
	if err != nil {
		return fmt.Errorf("failed to update agent: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: id %d", ErrAgentNotFound, id)
	}
	return nil
}

// DeleteAgent removes an agent. Discussions referencing the agent are left
// in place; deleting them is a caller decision.
func (s *Store) DeleteAgent(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM agents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete agent: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: id %d", ErrAgentNotFound, id)
	}
	return nil
}

// =============================================================================
// INTERNAL HELPERS
// =============================================================================

func scanAgent(row *sql.Row) (*model.Agent, error) {
	var agent model.Agent
	var createdMs, updatedMs int64
	err := row.Scan(&agent.ID, &agent.Name, &agent.Model, &agent.SystemPrompt,
		&agent.Configuration, &createdMs, &updatedMs)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAgentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan agent: %w", err)
	}
	agent.CreatedAt = fromMillis(createdMs)
	agent.UpdatedAt = fromMillis(updatedMs)
	return &agent, nil
}
