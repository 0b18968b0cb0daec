// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package llm provides the streaming completion transport.
package llm

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"strings"
	"time"
)

// =============================================================================
// STREAM READER
// =============================================================================

// StreamReader handles line-by-line JSON parsing of streaming responses and
// converts them to StreamEvent values.
type StreamReader struct {
	reader *bufio.Reader
	// PERFORMANCE: strings.Builder avoids quadratic allocations
	accumulator strings.Builder
	chunkCount  int
	model       string
	done        bool
}

// NewStreamReader creates a stream reader over an io.Reader.
func NewStreamReader(r io.Reader) *StreamReader {
	return &StreamReader{
		reader: bufio.NewReader(r),
	}
}

// Process reads the stream and calls the callback for each event in order.
// Returns when the stream reports completion, the underlying reader ends,
// or the context is cancelled. Events after the terminal record are not
// read.
func (s *StreamReader) Process(ctx context.Context, callback StreamCallback) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			event, err := s.readEvent()
			if err != nil {
				if err == io.EOF {
					// Stream ended without a done record; treat as complete
					// so accumulated content is not discarded.
					if !s.done {
						callback(StreamEvent{Type: EventComplete})
					}
					return nil
				}
				return err
			}

			if event != nil {
				callback(*event)
				if event.Terminal() {
					return nil
				}
			}
		}
	}
}

// readEvent reads and parses a single line from the stream.
// Returns (nil, nil) for lines that produce no event (blank or malformed).
func (s *StreamReader) readEvent() (*StreamEvent, error) {
	line, err := s.reader.ReadBytes('\n')
	if err != nil {
		if err == io.EOF && len(line) == 0 {
			return nil, io.EOF
		}
		// Process a trailing partial line before surfacing EOF.
		if len(line) == 0 {
			return nil, err
		}
	}

	trimmed := strings.TrimSpace(string(line))
	if trimmed == "" {
		return nil, nil
	}

	var response chatStreamLine
	if err := json.Unmarshal([]byte(trimmed), &response); err != nil {
		// Skip malformed lines
		return nil, nil
	}

	if response.Model != "" {
		s.model = response.Model
	}

	if response.Done {
		s.done = true
		return &StreamEvent{
			Type:             EventComplete,
			PromptTokens:     response.PromptEvalCount,
			CompletionTokens: response.EvalCount,
			TotalDuration:    time.Duration(response.TotalDuration),
		}, nil
	}

	content := response.Message.Content
	if content == "" {
		return nil, nil
	}

	s.accumulator.WriteString(content)
	s.chunkCount++
	return &StreamEvent{Type: EventChunk, Data: content}, nil
}

// Accumulated returns all content received so far.
func (s *StreamReader) Accumulated() string {
	return s.accumulator.String()
}

// ChunkCount returns the number of non-empty chunks received.
func (s *StreamReader) ChunkCount() int {
	return s.chunkCount
}

// Model returns the model name reported by the stream.
func (s *StreamReader) Model() string {
	return s.model
}
