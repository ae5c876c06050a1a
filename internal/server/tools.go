package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the image file",
	}
}

func boxProperties() map[string]interface{} {
	return map[string]interface{}{
		"path": pathProperty(),
		"x1":   map[string]interface{}{"type": "integer", "description": "Left edge X coordinate (0-based, inclusive)"},
		"y1":   map[string]interface{}{"type": "integer", "description": "Top edge Y coordinate (0-based, inclusive)"},
		"x2":   map[string]interface{}{"type": "integer", "description": "Right edge X coordinate (inclusive)"},
		"y2":   map[string]interface{}{"type": "integer", "description": "Bottom edge Y coordinate (inclusive)"},
		"scale": map[string]interface{}{
			"type":        "number",
			"description": "Optional scale factor (e.g., 2.0 to double size). Default 1.0",
			"default":     1.0,
		},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions, format and how many pixels pass the caption ink threshold (bright, unsaturated).",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},

		// Caption Recognition
		{
			Name:        "caption_extract",
			Description: "Read the white caption text at the top and bottom of a meme image. Returns the dictionary-corrected caption, the raw best-guess caption, per-region candidates and run statistics.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"simple": map[string]interface{}{
						"type":        "boolean",
						"description": "Skip dictionary correction and return the best guess for every word",
						"default":     false,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "caption_threshold",
			Description: "Return the thresholded ink image as base64 PNG: white where a pixel counts as caption ink, black elsewhere.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "caption_regions",
			Description: "List the character regions found in the caption strips with bounding boxes, pixel counts and the top glyph candidates, plus the assembled text lines.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"top_n": map[string]interface{}{
						"type":        "integer",
						"description": "Number of candidates per region (default 5)",
						"default":     5,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "caption_annotate",
			Description: "Draw each character region's box over the image with its best guess above it. Returns base64 PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"box_color": map[string]interface{}{
						"type":        "string",
						"description": "Box color as hex (default #FF0000)",
						"default":     "#FF0000",
					},
				},
				"required": []string{"path"},
			},
		},

		// Inspection
		{
			Name:        "caption_region_crop",
			Description: "Crop an inclusive box (such as a region's bounds) from an image and return it as base64-encoded PNG.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": boxProperties(),
				"required":   []string{"path", "x1", "y1", "x2", "y2"},
			},
		},
		{
			Name:        "caption_sample_color",
			Description: "Get the color at a pixel as hex, RGB and HSV, and whether it counts as caption ink.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"x": map[string]interface{}{
						"type":        "integer",
						"description": "X coordinate (0-based, from left)",
					},
					"y": map[string]interface{}{
						"type":        "integer",
						"description": "Y coordinate (0-based, from top)",
					},
				},
				"required": []string{"path", "x", "y"},
			},
		},
		{
			Name:        "caption_glyph_similarity",
			Description: "Score every glyph template against every other one. Shows which characters the matcher is likely to confuse.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"chars": map[string]interface{}{
						"type":        "string",
						"description": "Only report rows for these characters (default all)",
					},
					"top_n": map[string]interface{}{
						"type":        "integer",
						"description": "Number of similar glyphs per row (default 5)",
						"default":     5,
					},
				},
			},
		},

		// Evaluation
		{
			Name:        "caption_evaluate",
			Description: "Extract the caption of an image and compare it with the expected caption. Returns dictionary quality and spelling similarity.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"expected": map[string]interface{}{
						"type":        "string",
						"description": "The caption the image actually carries",
					},
				},
				"required": []string{"path", "expected"},
			},
		},
		{
			Name:        "caption_compare",
			Description: "Extract captions from several images and rank them by the fraction of words found in the dictionary.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"paths": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"description": "Absolute paths to the image files",
					},
				},
				"required": []string{"paths"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
