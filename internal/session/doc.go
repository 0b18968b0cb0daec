// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session implements the conversation streaming bridge: the single
// coordination point between user input, durable persistence, and the
// streaming completion transport.
//
// # Components
//
//   - Bridge: per-thread orchestrator. Creates the discussion on first
//     message, persists the user turn, builds the prompt, consumes the
//     transport's event stream, and persists the assistant turn.
//   - Projector: keeps the transient ChatThread UI projection consistent
//     with durable state. Only the Bridge mutates the projector; the single
//     writer eliminates reconciliation logic between the two
//     representations.
//   - Arena: owns bridges keyed by thread ID, so multiple independent
//     sessions exist without shared module-level state.
//
// # State machine
//
// Each send attempt walks Idle -> EnsuringDiscussion -> Persisting ->
// Streaming -> Idle, detouring through Failed on any error. Failed is
// terminal for the attempt only; the bridge is immediately reusable.
//
// # Single-flight policy
//
// SendMessage while the bridge is in ANY non-Idle state is a silent no-op.
// The guard is deliberately wider than the streaming phase: a second send
// while the first is still creating the discussion or persisting the user
// turn would race on the working discussion copy, so one consistent
// rejection policy covers every in-flight phase. This is backpressure, not
// queuing.
//
// # Teardown safety
//
// Projector mutations are epoch-checked: re-initializing or clearing the
// thread bumps the epoch, and in-flight continuations holding a stale epoch
// become no-ops instead of writing into a disposed thread.
package session
