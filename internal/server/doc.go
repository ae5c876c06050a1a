// Package server implements the MCP (Model Context Protocol) server for meme
// caption recognition.
//
// This package provides a JSON-RPC 2.0 server that exposes the caption
// pipeline and its inspection helpers through the MCP protocol.
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
// Image:
//   - image_load: Size, format and ink pixel count
//
// Caption Recognition:
//   - caption_extract: Corrected and raw caption with per-region candidates
//   - caption_threshold: The ink mask as PNG
//   - caption_regions: Region boxes, candidates and assembled lines
//   - caption_annotate: Region boxes drawn over the image
//
// Inspection:
//   - caption_region_crop: Extract an inclusive box
//   - caption_sample_color: Color and ink verdict at a pixel
//   - caption_glyph_similarity: Which glyph templates resemble each other
//
// Evaluation:
//   - caption_evaluate: Compare a caption with the expected text
//   - caption_compare: Rank captions of several images by dictionary quality
//
// # Shared State
//
// Decoded images are cached by path for the lifetime of the process. The
// glyph library and dictionary are loaded on the first tool call that needs
// them; a load failure is reported by every later call as well.
//
// # Error Handling
//
// Tool errors are returned as JSON-RPC error responses:
//   - -32602: malformed params, missing or mistyped arguments, unknown tool
//   - -32000: tool execution failure; data is the ocr.Error map when the
//     failure is a recognition error, otherwise the Go error string
//
// # Usage
//
//	srv := server.New(cfg, logging.New("caption-mcp", cfg.LogLevel))
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server
