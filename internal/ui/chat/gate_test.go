// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"testing"
	"time"
)

// =============================================================================
// RENDER GATE TESTS
// =============================================================================

func TestNewRenderGateDefaults(t *testing.T) {
	gate := NewRenderGate()
	if gate.Interval() != time.Second/30 {
		t.Errorf("Expected ~33ms interval, got %v", gate.Interval())
	}

	// Out-of-range rates fall back to the default.
	if NewRenderGateWithFPS(0).Interval() != time.Second/30 {
		t.Error("Zero FPS should fall back to the default")
	}
	if NewRenderGateWithFPS(500).Interval() != time.Second/30 {
		t.Error("Excessive FPS should fall back to the default")
	}
	if NewRenderGateWithFPS(10).Interval() != 100*time.Millisecond {
		t.Error("Custom FPS should set the interval")
	}
}

func TestRenderGateFirstFrameAllowed(t *testing.T) {
	gate := NewRenderGate()
	if !gate.Allow("hello") {
		t.Error("The first frame must always paint")
	}
}

func TestRenderGateThrottlesRepaints(t *testing.T) {
	gate := NewRenderGate()
	gate.Allow("frame one")

	// Immediately after a paint, even changed content is throttled.
	if gate.Allow("frame two") {
		t.Error("Repaint inside the frame interval must be throttled")
	}
}

func TestRenderGateSkipsUnchangedContent(t *testing.T) {
	gate := NewRenderGateWithFPS(60)
	gate.Allow("same")

	time.Sleep(2 * gate.Interval())
	if gate.Allow("same") {
		t.Error("Unchanged content must not repaint")
	}

	time.Sleep(2 * gate.Interval())
	if !gate.Allow("different") {
		t.Error("Changed content after the interval must paint")
	}
}

func TestRenderGateForce(t *testing.T) {
	gate := NewRenderGate()
	gate.Allow("partial")

	// Force records the final frame even inside the interval.
	gate.Force("final")

	time.Sleep(2 * gate.Interval())
	if gate.Allow("final") {
		t.Error("A forced frame must register as painted")
	}
}

func TestRenderGateReset(t *testing.T) {
	gate := NewRenderGate()
	gate.Allow("content")
	gate.Reset()

	if !gate.Allow("content") {
		t.Error("After reset the next frame must paint, even if identical")
	}
}
