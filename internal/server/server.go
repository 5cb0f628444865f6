package server

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"sync"

	"github.com/rs/zerolog"

	"github.com/semajyllek/image-transform-app/internal/config"
	"github.com/semajyllek/image-transform-app/internal/imaging"
	"github.com/semajyllek/image-transform-app/internal/pipeline"
)

// Server handles MCP protocol communication and owns the editing session:
// the active source image, its pipeline and the background runner.
type Server struct {
	cache  *imaging.BufferCache
	cfg    config.Config
	log    zerolog.Logger
	env    pipeline.Env
	runner *pipeline.Runner

	mu         sync.Mutex
	source     *imaging.PixelBuffer
	sourcePath string
	pipe       *pipeline.Pipeline
}

// MCPRequest represents an incoming JSON-RPC request
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// MCPResponse represents an outgoing JSON-RPC response
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError represents a JSON-RPC error
type MCPError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// New creates a new MCP server instance
func New(cfg config.Config, log zerolog.Logger) *Server {
	imaging.SetMaxPixels(cfg.MaxPixels)
	env := EnvFromConfig(cfg)
	return &Server{
		cache:  imaging.NewBufferCache(),
		cfg:    cfg,
		log:    log,
		env:    env,
		runner: pipeline.NewRunner(env, log),
		pipe:   pipeline.New(),
	}
}

// EnvFromConfig derives the pipeline environment from configuration. With a
// seed, every stage that needs randomness gets a fresh generator seeded the
// same way, so results are reproducible.
func EnvFromConfig(cfg config.Config) pipeline.Env {
	env := pipeline.Env{FixedPointHysteresis: cfg.FixedPointHysteresis}
	if cfg.HasSeed {
		seed := cfg.Seed
		env.NewRand = func() *rand.Rand {
			return rand.New(rand.NewPCG(seed, seed))
		}
	}
	return env
}

// Run starts the MCP server, reading from stdin and writing to stdout
func (s *Server) Run() error {
	return s.Serve(os.Stdin, os.Stdout)
}

// Serve processes newline-delimited requests from r until EOF, writing
// responses to w.
func (s *Server) Serve(r io.Reader, w io.Writer) error {
	defer s.runner.Close()

	scanner := bufio.NewScanner(r)
	// Tool calls may carry whole pipelines; allow large lines.
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 4*1024*1024)

	encoder := json.NewEncoder(w)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			s.log.Warn().Err(err).Msg("failed to parse request")
			continue
		}

		resp := s.handleRequest(&req)
		if resp != nil {
			if err := encoder.Encode(resp); err != nil {
				s.log.Error().Err(err).Msg("failed to encode response")
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}

	return nil
}

// handleRequest routes requests to appropriate handlers
func (s *Server) handleRequest(req *MCPRequest) *MCPResponse {
	s.log.Debug().Str("method", req.Method).Msg("request")
	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized":
		// Client acknowledgment, no response needed
		return nil
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(req)
	case "ping":
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  map[string]interface{}{},
		}
	default:
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error: &MCPError{
				Code:    -32601,
				Message: fmt.Sprintf("Method not found: %s", req.Method),
			},
		}
	}
}

// handleInitialize responds to the initialize request
func (s *Server) handleInitialize(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"protocolVersion": "2024-11-05",
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    "image-transform-mcp",
				"version": "0.1.0",
			},
		},
	}
}

