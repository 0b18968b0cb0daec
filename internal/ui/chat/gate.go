// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the Bubble Tea chat surface.
//
// This file implements the render gate used during streaming. The thread
// projection mutates on every streamed chunk, which can arrive far faster
// than a terminal can usefully repaint. The gate caps repaints at a fixed
// frame rate and skips frames whose content has not changed, keeping the
// viewport smooth without burning CPU on redundant renders.
package chat

import (
	"hash/fnv"
	"sync"
	"time"
)

// =============================================================================
// RENDER GATE
// =============================================================================

const (
	// defaultMaxFPS caps streaming repaints. 30fps is smooth on every
	// terminal tested; higher rates only add flicker and CPU load.
	defaultMaxFPS = 30
)

// RenderGate decides whether a streaming tick should repaint the viewport.
//
// Two conditions must hold for a repaint:
//  1. At least minInterval has elapsed since the last repaint.
//  2. The content fingerprint differs from the last painted frame.
//
// Thread-safety: guarded by a mutex; ticks arrive on the Bubble Tea loop but
// Reset may be called from command goroutines.
type RenderGate struct {
	mu          sync.Mutex
	lastPaint   time.Time
	lastDigest  uint64
	minInterval time.Duration
}

// NewRenderGate creates a gate capped at the default frame rate.
func NewRenderGate() *RenderGate {
	return NewRenderGateWithFPS(defaultMaxFPS)
}

// NewRenderGateWithFPS creates a gate capped at maxFPS frames per second.
func NewRenderGateWithFPS(maxFPS int) *RenderGate {
	if maxFPS <= 0 || maxFPS > 60 {
		maxFPS = defaultMaxFPS
	}
	return &RenderGate{
		minInterval: time.Second / time.Duration(maxFPS),
	}
}

// Interval returns the minimum time between repaints, which doubles as the
// streaming tick period.
func (g *RenderGate) Interval() time.Duration {
	return g.minInterval
}

// Allow reports whether content should be painted now. When it returns true
// the gate records the frame; the caller must actually paint it.
func (g *RenderGate) Allow(content string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if time.Since(g.lastPaint) < g.minInterval {
		return false
	}
	digest := fingerprint(content)
	if digest == g.lastDigest && !g.lastPaint.IsZero() {
		return false
	}
	g.lastPaint = time.Now()
	g.lastDigest = digest
	return true
}

// Force records and allows a paint unconditionally. Used for the final frame
// after a stream terminates so the last chunk is never dropped.
func (g *RenderGate) Force(content string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.lastPaint = time.Now()
	g.lastDigest = fingerprint(content)
}

// Reset clears gate state so the next frame always paints.
func (g *RenderGate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.lastPaint = time.Time{}
	g.lastDigest = 0
}

// fingerprint hashes content cheaply. FNV-1a is sufficient here: a collision
// only costs one skipped repaint, corrected on the next tick.
func fingerprint(content string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(content))
	return h.Sum64()
}
