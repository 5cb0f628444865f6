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

const paramsDescription = "Kind-specific parameters: contrast/brightness {value: 0-200, 100 = identity}, " +
	"sharpen {amount: 0-10}, threshold {value: 0-255}, canny {low, high: 0-255}, " +
	"segmentation {tolerance: 1-50, minSize: >=1, colorScheme: rainbow|pastel|grayscale|highContrast|preserveBrightness}"

func stageProperties() map[string]interface{} {
	return map[string]interface{}{
		"kind": map[string]interface{}{
			"type":        "string",
			"enum":        []string{"contrast", "brightness", "sharpen", "grayscale", "threshold", "sobel", "canny", "segmentation"},
			"description": "Transform kind. Unknown kinds pass the image through unchanged unless the server runs in strict mode.",
		},
		"params": map[string]interface{}{
			"type":        "object",
			"description": paramsDescription,
		},
	}
}

func pipelineProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "array",
		"description": "Ordered list of transforms, applied first to last",
		"items": map[string]interface{}{
			"type":       "object",
			"properties": stageProperties(),
			"required":   []string{"kind"},
		},
	}
}

func emptySchema() map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Session source
		{
			Name:        "image_load",
			Description: "Load an image file as the session source. The session pipeline is recomputed against it.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"max_dimension": map[string]interface{}{
						"type":        "integer",
						"description": "Optional. Downscale so neither side exceeds this many pixels. 0 keeps full size.",
						"default":     0,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_sample_color",
			Description: "Get the color at a pixel of the current session result (or of the source) as hex, RGBA, HSV and luminance.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"x": map[string]interface{}{
						"type":        "integer",
						"description": "X coordinate (0-based)",
					},
					"y": map[string]interface{}{
						"type":        "integer",
						"description": "Y coordinate (0-based)",
					},
					"source": map[string]interface{}{
						"type":        "boolean",
						"description": "Sample the untransformed source instead of the result",
						"default":     false,
					},
				},
				"required": []string{"x", "y"},
			},
		},

		// Session pipeline
		{
			Name:        "pipeline_append",
			Description: "Append a transform to the session pipeline and recompute.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": stageProperties(),
				"required":   []string{"kind"},
			},
		},
		{
			Name:        "pipeline_remove",
			Description: "Remove the transform at an index from the session pipeline and recompute.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"index": map[string]interface{}{
						"type":        "integer",
						"description": "0-based stage index",
					},
				},
				"required": []string{"index"},
			},
		},
		{
			Name:        "pipeline_clear",
			Description: "Remove every transform from the session pipeline.",
			InputSchema: emptySchema(),
		},
		{
			Name:        "pipeline_set",
			Description: "Replace the session pipeline with the given list of transforms and recompute.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"pipeline": pipelineProperty(),
				},
				"required": []string{"pipeline"},
			},
		},
		{
			Name:        "pipeline_list",
			Description: "List the session pipeline in its wire form.",
			InputSchema: emptySchema(),
		},
		{
			Name:        "pipeline_result",
			Description: "Wait for the latest recompute and return the result as base64 PNG.",
			InputSchema: emptySchema(),
		},
		{
			Name:        "image_save",
			Description: "Save the latest session result. The format follows the extension (.png, .jpg, .bmp).",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute output path",
					},
				},
				"required": []string{"path"},
			},
		},

		// One-shot operations
		{
			Name:        "image_transform",
			Description: "Apply a pipeline to an image file without touching the session and return the result as base64 PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":     pathProperty(),
					"pipeline": pipelineProperty(),
				},
				"required": []string{"path", "pipeline"},
			},
		},
		{
			Name:        "image_edge_detect",
			Description: "Detect edges with Sobel (gradient magnitude) or Canny (binary edges). Returns a grayscale edge image as base64 PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"method": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"sobel", "canny"},
						"description": "Edge detector. Default canny",
						"default":     "canny",
					},
					"threshold_low": map[string]interface{}{
						"type":        "integer",
						"description": "Canny low threshold (0-255). Default 50",
						"default":     50,
					},
					"threshold_high": map[string]interface{}{
						"type":        "integer",
						"description": "Canny high threshold (0-255). Default 150",
						"default":     150,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_segment",
			Description: "Segment an image into regions of similar color and paint each region with a scheme color. Returns the image and per-region statistics.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"tolerance": map[string]interface{}{
						"type":        "number",
						"description": "Max RGB distance from a region's seed color (1-50). Default 10",
						"default":     10,
					},
					"min_size": map[string]interface{}{
						"type":        "integer",
						"description": "Regions smaller than this merge into their closest neighbor. Default 50",
						"default":     50,
					},
					"color_scheme": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"rainbow", "pastel", "grayscale", "highContrast", "preserveBrightness"},
						"description": "Region colors. Default rainbow",
						"default":     "rainbow",
					},
				},
				"required": []string{"path"},
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
