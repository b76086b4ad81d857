// Package server implements the MCP (Model Context Protocol) server for the
// card recognizer.
//
// This package provides a JSON-RPC 2.0 server that exposes the recognition
// pipeline, one stage at a time, to MCP-compatible clients.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
//   - image_load: Load a scene and report its metadata
//   - card_recognize: Detect and label every card, optionally saving an annotated copy
//   - card_candidates: List card-shaped contours and rejection counts
//   - card_flatten: Return a candidate's canonical 200x300 image or one corner region
//   - card_match_region: Score suit and rank templates against one corner
//
// Candidate indexes are stable for a given scene: card_candidates,
// card_flatten and card_match_region all number cards by descending contour
// area, the order card_recognize reports them in.
//
// # Image Caching
//
// Decoded scenes are cached by path for the lifetime of the server process.
// Templates are loaded once, when the pipeline is built.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// Protocol problems are logged through the configured logger, never to
// stdout, which carries responses only.
package server
