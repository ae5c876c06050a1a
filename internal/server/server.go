package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/ironsheep/caption-ocr-mcp/internal/config"
	"github.com/ironsheep/caption-ocr-mcp/internal/dictionary"
	"github.com/ironsheep/caption-ocr-mcp/internal/imaging"
	"github.com/ironsheep/caption-ocr-mcp/internal/logging"
	"github.com/ironsheep/caption-ocr-mcp/internal/ocr"
)

// Version is reported in serverInfo and by the CLI.
const Version = "0.2.0"

// Server handles MCP protocol communication
type Server struct {
	cache *imaging.ImageCache
	cfg   config.Config
	log   *logging.Logger

	// loaded on first use, see recognizer
	loadOnce sync.Once
	rec      *ocr.Recognizer
	words    ocr.WordSet
	loadErr  error
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

// New creates a new MCP server instance. A nil logger discards output.
func New(cfg config.Config, log *logging.Logger) *Server {
	if log == nil {
		log = logging.Discard()
	}
	return &Server{
		cache: imaging.NewImageCache(),
		cfg:   cfg,
		log:   log,
	}
}

// recognizer builds the glyph library and loads the dictionary once. Both
// are shared by every tool call; a failure is sticky.
func (s *Server) recognizer() (*ocr.Recognizer, ocr.WordSet, error) {
	s.loadOnce.Do(func() {
		lib, err := ocr.LoadLibrary(s.cfg.Glyphs)
		if err != nil {
			s.loadErr = err
			return
		}
		s.rec = ocr.NewRecognizer(lib, s.cfg, s.log.With("component", "recognizer"))
		s.log.Info("glyph library ready", "glyphs", lib.Len())

		if s.cfg.DictionaryPath == "" {
			s.log.Warn("no dictionary configured, captions are not corrected")
			return
		}
		d, err := dictionary.Load(s.cfg.DictionaryPath)
		if err != nil {
			s.loadErr = ocr.NewResourceError("dictionary "+s.cfg.DictionaryPath, err)
			return
		}
		s.words = d
		s.log.Info("dictionary loaded", "path", s.cfg.DictionaryPath, "words", d.Len())
	})
	return s.rec, s.words, s.loadErr
}

// Run starts the MCP server, reading from stdin and writing to stdout
func (s *Server) Run(ctx context.Context) error {
	return s.Serve(ctx, os.Stdin, os.Stdout)
}

// Serve reads one JSON-RPC request per line from r and writes responses to
// w until r is exhausted or ctx is done.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	// Increase buffer size for large requests
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	encoder := json.NewEncoder(w)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			s.log.Warn("failed to parse request", "error", err)
			continue
		}

		resp := s.handleRequest(ctx, &req)
		if resp != nil {
			if err := encoder.Encode(resp); err != nil {
				s.log.Error("failed to encode response", "error", err)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}

	return nil
}

// handleRequest routes requests to appropriate handlers
func (s *Server) handleRequest(ctx context.Context, req *MCPRequest) *MCPResponse {
	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized":
		// Client acknowledgment, no response needed
		return nil
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(ctx, req)
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
				"name":    "caption-ocr-mcp",
				"version": Version,
			},
		},
	}
}
