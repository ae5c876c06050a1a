package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ironsheep/caption-ocr-mcp/internal/imaging"
	"github.com/ironsheep/caption-ocr-mcp/internal/ocr"
)

// errInvalidArgs marks argument problems, reported as -32602.
var errInvalidArgs = errors.New("invalid arguments")

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "caption_extract").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Bad arguments return -32602. Other tool errors return -32000; when the
// error is an *ocr.Error its map form is the error data.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.log.Debug("tool failed", "tool", params.Name, "error", err)
		if errors.Is(err, errInvalidArgs) {
			return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
		}
		var oe *ocr.Error
		if errors.As(err, &oe) {
			return s.errorResponse(req.ID, -32000, "Tool execution failed", oe.ToMap())
		}
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Applies default values for optional parameters
//  3. Loads images from cache as needed
//  4. Calls the appropriate imaging/ocr function
//  5. Returns the result or error
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "image_load":
		return s.handleImageLoad(args)

	// Caption Recognition
	case "caption_extract":
		return s.handleCaptionExtract(ctx, args)
	case "caption_threshold":
		return s.handleCaptionThreshold(args)
	case "caption_regions":
		return s.handleCaptionRegions(ctx, args)
	case "caption_annotate":
		return s.handleCaptionAnnotate(ctx, args)

	// Inspection
	case "caption_region_crop":
		return s.handleRegionCrop(args)
	case "caption_sample_color":
		return s.handleSampleColor(args)
	case "caption_glyph_similarity":
		return s.handleGlyphSimilarity(args)

	// Evaluation
	case "caption_evaluate":
		return s.handleCaptionEvaluate(ctx, args)
	case "caption_compare":
		return s.handleCaptionCompare(ctx, args)

	default:
		return nil, fmt.Errorf("%w: unknown tool: %s", errInvalidArgs, name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message string, data interface{}) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// decodeArgs unmarshals args into v and requires a path when one is given.
func decodeArgs(args json.RawMessage, v interface{}, path *string) error {
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("%w: %v", errInvalidArgs, err)
	}
	if path != nil && *path == "" {
		return fmt.Errorf("%w: path is required", errInvalidArgs)
	}
	return nil
}

type pathArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := decodeArgs(args, &a, &a.Path); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

// === Caption Recognition Handlers ===

type captionExtractArgs struct {
	Path   string `json:"path"`
	Simple bool   `json:"simple"`
}

func (s *Server) handleCaptionExtract(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a captionExtractArgs
	if err := decodeArgs(args, &a, &a.Path); err != nil {
		return nil, err
	}
	return s.extract(ctx, a.Path, a.Simple)
}

func (s *Server) extract(ctx context.Context, path string, simple bool) (*ocr.Result, error) {
	rec, words, err := s.recognizer()
	if err != nil {
		return nil, err
	}
	buf, err := s.cache.LoadBuffer(path)
	if err != nil {
		return nil, ocr.NewResourceError(path, err)
	}
	if simple {
		rec = rec.WithSimple(true)
	}
	return rec.RecognizeBuffer(ctx, buf, words)
}

type thresholdResult struct {
	imaging.EncodedImage
	InkPixels int `json:"ink_pixels"`
}

func (s *Server) handleCaptionThreshold(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := decodeArgs(args, &a, &a.Path); err != nil {
		return nil, err
	}
	buf, err := s.cache.LoadBuffer(a.Path)
	if err != nil {
		return nil, err
	}
	th := imaging.Threshold(buf)
	enc, err := imaging.EncodePNG(th.Image())
	if err != nil {
		return nil, err
	}
	return &thresholdResult{EncodedImage: *enc, InkPixels: th.InkCount()}, nil
}

type captionRegionsArgs struct {
	Path string `json:"path"`
	TopN int    `json:"top_n"`
}

type regionsResult struct {
	RunID      string             `json:"run_id"`
	Regions    []ocr.RegionResult `json:"regions"`
	Rejected   int                `json:"rejected"`
	Noise      int                `json:"noise"`
	Lines      []string           `json:"lines"`
	Degenerate bool               `json:"degenerate"`
}

func (s *Server) analyze(ctx context.Context, path string) (*ocr.Analysis, error) {
	rec, _, err := s.recognizer()
	if err != nil {
		return nil, err
	}
	buf, err := s.cache.LoadBuffer(path)
	if err != nil {
		return nil, ocr.NewResourceError(path, err)
	}
	return rec.Analyze(ctx, buf)
}

func (s *Server) handleCaptionRegions(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a captionRegionsArgs
	if err := decodeArgs(args, &a, &a.Path); err != nil {
		return nil, err
	}
	if a.TopN == 0 {
		a.TopN = 5
	}
	an, err := s.analyze(ctx, a.Path)
	if err != nil {
		return nil, err
	}
	return &regionsResult{
		RunID:      an.RunID,
		Regions:    an.Regions(a.TopN),
		Rejected:   len(an.Segmentation.Rejected),
		Noise:      an.Segmentation.Noise,
		Lines:      an.LineText(),
		Degenerate: an.Degenerate,
	}, nil
}

type captionAnnotateArgs struct {
	Path     string `json:"path"`
	BoxColor string `json:"box_color"`
}

func (s *Server) handleCaptionAnnotate(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a captionAnnotateArgs
	if err := decodeArgs(args, &a, &a.Path); err != nil {
		return nil, err
	}
	if a.BoxColor == "" {
		a.BoxColor = "#FF0000"
	}
	an, err := s.analyze(ctx, a.Path)
	if err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.Annotate(img, an.Annotations(), a.BoxColor)
}

// === Inspection Handlers ===

type regionCropArgs struct {
	Path  string  `json:"path"`
	X1    int     `json:"x1"`
	Y1    int     `json:"y1"`
	X2    int     `json:"x2"`
	Y2    int     `json:"y2"`
	Scale float64 `json:"scale"`
}

func (s *Server) handleRegionCrop(args json.RawMessage) (interface{}, error) {
	var a regionCropArgs
	if err := decodeArgs(args, &a, &a.Path); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.CropRegion(img, a.X1, a.Y1, a.X2, a.Y2, a.Scale)
}

type sampleColorArgs struct {
	Path string `json:"path"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
}

func (s *Server) handleSampleColor(args json.RawMessage) (interface{}, error) {
	var a sampleColorArgs
	if err := decodeArgs(args, &a, &a.Path); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.SampleColor(img, a.X, a.Y)
}

type glyphSimilarityArgs struct {
	Chars string `json:"chars"`
	TopN  int    `json:"top_n"`
}

func (s *Server) handleGlyphSimilarity(args json.RawMessage) (interface{}, error) {
	var a glyphSimilarityArgs
	if len(args) > 0 {
		if err := decodeArgs(args, &a, nil); err != nil {
			return nil, err
		}
	}
	if a.TopN == 0 {
		a.TopN = 5
	}
	rec, _, err := s.recognizer()
	if err != nil {
		return nil, err
	}

	rows := ocr.GlyphSimilarity(rec.Library())
	out := make([]ocr.SimilarityRow, 0, len(rows))
	for _, row := range rows {
		if a.Chars != "" && !strings.Contains(strings.ToUpper(a.Chars), row.Char) {
			continue
		}
		row.Similar = row.Similar.Top(a.TopN)
		out = append(out, row)
	}
	return out, nil
}

// === Evaluation Handlers ===

type captionEvaluateArgs struct {
	Path     string `json:"path"`
	Expected string `json:"expected"`
}

type evaluateResult struct {
	*ocr.Evaluation
	Raw   string `json:"raw"`
	RunID string `json:"run_id"`
}

func (s *Server) handleCaptionEvaluate(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a captionEvaluateArgs
	if err := decodeArgs(args, &a, &a.Path); err != nil {
		return nil, err
	}
	res, err := s.extract(ctx, a.Path, false)
	if err != nil {
		return nil, err
	}
	_, words, _ := s.recognizer()
	return &evaluateResult{
		Evaluation: ocr.Evaluate(res.Caption, a.Expected, words),
		Raw:        res.Raw,
		RunID:      res.RunID,
	}, nil
}

type captionCompareArgs struct {
	Paths []string `json:"paths"`
}

func (s *Server) handleCaptionCompare(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a captionCompareArgs
	if err := decodeArgs(args, &a, nil); err != nil {
		return nil, err
	}
	if len(a.Paths) == 0 {
		return nil, fmt.Errorf("%w: paths is required", errInvalidArgs)
	}

	captions := make([]ocr.RankedCaption, 0, len(a.Paths))
	for _, p := range a.Paths {
		res, err := s.extract(ctx, p, false)
		if err != nil {
			return nil, err
		}
		captions = append(captions, ocr.RankedCaption{Label: p, Caption: res.Caption})
	}
	_, words, _ := s.recognizer()
	return ocr.RankCaptions(words, captions), nil
}
