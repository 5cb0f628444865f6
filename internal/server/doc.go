// Package server implements the MCP (Model Context Protocol) server for the
// image transform pipeline.
//
// This package provides a JSON-RPC 2.0 server that exposes an editing
// session (one source image plus an ordered pipeline of transforms) and a
// few one-shot operations through the MCP protocol.
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
// Session source:
//   - image_load: Load the session source image and get metadata
//   - image_dimensions: Get width and height of any image file
//   - image_sample_color: Get color at a pixel of the result or source
//
// Session pipeline:
//   - pipeline_append: Add a transform at the end
//   - pipeline_remove: Remove the transform at an index
//   - pipeline_clear: Remove every transform
//   - pipeline_set: Replace the whole pipeline
//   - pipeline_list: Show the pipeline in wire form
//   - pipeline_result: Wait for the latest recompute and return it
//   - image_save: Write the latest result to disk
//
// One-shot operations:
//   - image_transform: Apply a pipeline to a file
//   - image_edge_detect: Sobel or Canny edge detection
//   - image_segment: Color segmentation with region statistics
//
// # Recomputation
//
// Every change to the session source or pipeline submits a recompute to a
// background runner. A newer submission cancels an older one, and only the
// newest result is ever published. Tools that read the result wait for it.
//
// # Image Caching
//
// The server maintains an in-memory cache of decoded images keyed by path
// and maximum dimension. The cache persists for the lifetime of the server
// process.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// # Usage
//
// The server is typically started by an MCP client:
//
//	srv := server.New(config.Default(), logger.NewConsole("info"))
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
