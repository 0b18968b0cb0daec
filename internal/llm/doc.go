// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package llm provides the streaming completion transport.
//
// The transport speaks an Ollama-compatible NDJSON chat protocol: a POST to
// /api/chat with a list of role-tagged prompt messages yields a sequence of
// line-delimited JSON chunks terminated by a final "done" record.
//
// Consumers see the stream as a sequence of StreamEvent values:
//
//	chunk*  (error | complete)
//
// Exactly one terminal event is emitted per stream, after which the channel
// is closed. Any event observed after a terminal one is ignorable by
// contract; the session bridge consumes the channel as a single sequential
// reader so chunk application is strictly in delivery order.
package llm
