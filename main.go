// gchat - a terminal chat client with durable discussions.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/synthetixartifacts/gchat/internal/config"
	"github.com/synthetixartifacts/gchat/internal/llm"
	"github.com/synthetixartifacts/gchat/internal/model"
	"github.com/synthetixartifacts/gchat/internal/session"
	"github.com/synthetixartifacts/gchat/internal/store"
	"github.com/synthetixartifacts/gchat/internal/ui/chat"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	var (
		configPath  = flag.String("config", "", "path to config file (default ~/.gchat/config.toml)")
		showVersion = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("gchat %s (%s, built %s)\n", Version, GitCommit, BuildDate)
		return
	}

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if os.Getenv("GCHAT_DEBUG") != "" {
		f, logErr := tea.LogToFile("gchat-debug.log", "gchat")
		if logErr != nil {
			return fmt.Errorf("failed to open debug log: %w", logErr)
		}
		defer f.Close()
	}

	dbPath, err := cfg.DatabasePath()
	if err != nil {
		return fmt.Errorf("failed to resolve database path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer st.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	agent, err := ensureDefaultAgent(ctx, st, cfg)
	if err != nil {
		return fmt.Errorf("failed to prepare default agent: %w", err)
	}

	client := llm.NewClientWithConfig(&llm.ClientConfig{
		BaseURL:           cfg.Transport.BaseURL,
		Timeout:           time.Duration(cfg.Transport.TimeoutSecs) * time.Second,
		DefaultModel:      cfg.Transport.Model,
		RequestsPerMinute: cfg.Transport.RequestsPerMinute,
	})

	arena := session.NewArena(st, client)
	const threadID = "chat-0"
	if err := arena.Session(threadID).Initialize(ctx, agent.ID, 0); err != nil {
		return fmt.Errorf("failed to initialize session: %w", err)
	}

	p := tea.NewProgram(
		chat.New(cfg, st, client, arena, threadID),
		tea.WithAltScreen(),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("interface error: %w", err)
	}
	return nil
}

// loadConfig reads the config file, creating it with defaults on first run
// so the user has something to edit.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}

	defaultPath, err := config.DefaultPath()
	if err != nil {
		return nil, err
	}
	if _, statErr := os.Stat(defaultPath); os.IsNotExist(statErr) {
		cfg := config.DefaultConfig()
		if saveErr := cfg.Save(defaultPath); saveErr == nil {
			fmt.Fprintf(os.Stderr, "Created default config at %s\n", defaultPath)
		}
	}
	return config.Load()
}

// ensureDefaultAgent looks up the configured default agent, creating it on
// first run. The agent's model and memory setting come from the config file;
// later edits to the agent row win over the config.
func ensureDefaultAgent(ctx context.Context, st *store.Store, cfg *config.Config) (*model.Agent, error) {
	name := cfg.Chat.DefaultAgent
	if name == "" {
		name = "assistant"
	}

	agent, err := st.GetAgentByName(ctx, name)
	if err == nil {
		return agent, nil
	}
	if !errors.Is(err, store.ErrAgentNotFound) {
		return nil, err
	}

	return st.CreateAgent(ctx, store.AgentParams{
		Name:         name,
		Model:        cfg.Transport.Model,
		SystemPrompt: cfg.Chat.SystemPrompt,
		Configuration: model.EncodeAgentConfig(model.AgentConfig{
			UseMemory: cfg.Chat.UseMemory,
		}),
	})
}
