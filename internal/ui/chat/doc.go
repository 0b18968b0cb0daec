// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the Bubble Tea chat surface.
//
// The surface never talks to the store or the transport directly during a
// session: it submits input to the session bridge and renders snapshots of
// the bridge's thread projection. While a send is in flight, a frame-capped
// tick loop re-renders the viewport from the latest snapshot, which keeps
// streaming smooth without re-rendering on every token.
//
// Slash commands cover the surrounding application features: switching and
// deleting discussions, selecting agents, and inspecting available models.
package chat
