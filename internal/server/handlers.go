package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/semajyllek/image-transform-app/internal/detection"
	"github.com/semajyllek/image-transform-app/internal/imaging"
	"github.com/semajyllek/image-transform-app/internal/pipeline"
	"github.com/semajyllek/image-transform-app/internal/segmentation"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "pipeline_append").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// errNoSource is returned by session tools before image_load.
var errNoSource = errors.New("no image loaded: call image_load first")

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		s.log.Warn().Err(err).Str("tool", params.Name).Msg("tool failed")
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
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Session source
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)
	case "image_sample_color":
		return s.handleImageSampleColor(args)

	// Session pipeline
	case "pipeline_append":
		return s.handlePipelineAppend(args)
	case "pipeline_remove":
		return s.handlePipelineRemove(args)
	case "pipeline_clear":
		return s.handlePipelineClear()
	case "pipeline_set":
		return s.handlePipelineSet(args)
	case "pipeline_list":
		return s.handlePipelineList()
	case "pipeline_result":
		return s.handlePipelineResult()
	case "image_save":
		return s.handleImageSave(args)

	// One-shot operations
	case "image_transform":
		return s.handleImageTransform(args)
	case "image_edge_detect":
		return s.handleImageEdgeDetect(args)
	case "image_segment":
		return s.handleImageSegment(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
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

func unmarshalArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 {
		return nil
	}
	return json.Unmarshal(args, v)
}

// === Session Source Handlers ===

type imageLoadArgs struct {
	Path         string `json:"path"`
	MaxDimension int    `json:"max_dimension"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	info, err := imaging.LoadImageInfo(s.cache, a.Path, a.MaxDimension)
	if err != nil {
		return nil, err
	}
	buf, err := s.cache.Load(a.Path, a.MaxDimension)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.source = buf
	s.sourcePath = a.Path
	s.submitLocked()
	s.mu.Unlock()

	s.log.Info().Str("path", a.Path).Int("width", buf.Width).Int("height", buf.Height).Msg("source loaded")
	return info, nil
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	return imaging.GetDimensions(s.cache, a.Path)
}

type imageSampleColorArgs struct {
	X      int  `json:"x"`
	Y      int  `json:"y"`
	Source bool `json:"source"`
}

func (s *Server) handleImageSampleColor(args json.RawMessage) (interface{}, error) {
	var a imageSampleColorArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}

	var buf *imaging.PixelBuffer
	if a.Source {
		s.mu.Lock()
		buf = s.source
		s.mu.Unlock()
		if buf == nil {
			return nil, errNoSource
		}
	} else {
		out, err := s.latestResult()
		if err != nil {
			return nil, err
		}
		buf = out.Buffer
	}
	return imaging.SampleColor(buf, a.X, a.Y)
}

// === Session Pipeline Handlers ===

// PipelineState describes the session pipeline after a mutation.
type PipelineState struct {
	Stages     []pipeline.Stage `json:"stages"`
	Count      int              `json:"count"`
	Generation uint64           `json:"generation,omitempty"`
}

// submitLocked queues a recompute of the session. s.mu must be held.
func (s *Server) submitLocked() uint64 {
	if s.source == nil {
		return 0
	}
	return s.runner.Submit(s.source, s.pipe.Stages())
}

func (s *Server) stateLocked(gen uint64) (*PipelineState, error) {
	stages, err := pipeline.EncodeStages(s.pipe.Stages())
	if err != nil {
		return nil, err
	}
	return &PipelineState{Stages: stages, Count: len(stages), Generation: gen}, nil
}

func (s *Server) handlePipelineAppend(args json.RawMessage) (interface{}, error) {
	var stage pipeline.Stage
	if err := unmarshalArgs(args, &stage); err != nil {
		return nil, err
	}
	t, err := pipeline.DecodeStage(stage, s.cfg.Strict)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pipe.Append(t)
	return s.stateLocked(s.submitLocked())
}

type pipelineRemoveArgs struct {
	Index int `json:"index"`
}

func (s *Server) handlePipelineRemove(args json.RawMessage) (interface{}, error) {
	var a pipelineRemoveArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.pipe.RemoveAt(a.Index); err != nil {
		return nil, err
	}
	return s.stateLocked(s.submitLocked())
}

func (s *Server) handlePipelineClear() (interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pipe.Clear()
	return s.stateLocked(s.submitLocked())
}

type pipelineSetArgs struct {
	Pipeline []pipeline.Stage `json:"pipeline"`
}

func (s *Server) handlePipelineSet(args json.RawMessage) (interface{}, error) {
	var a pipelineSetArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	ts, err := pipeline.DecodeStages(a.Pipeline, s.cfg.Strict)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pipe = pipeline.New(ts...)
	return s.stateLocked(s.submitLocked())
}

func (s *Server) handlePipelineList() (interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked(0)
}

// latestResult waits for the newest recompute of the session.
func (s *Server) latestResult() (*pipeline.Outcome, error) {
	s.mu.Lock()
	loaded := s.source != nil
	s.mu.Unlock()
	if !loaded {
		return nil, errNoSource
	}

	out, err := s.runner.Wait(context.Background())
	if err != nil {
		return nil, err
	}
	return out, nil
}

// PipelineResult is the encoded output of the session pipeline.
type PipelineResult struct {
	imaging.EncodedImage
	Generation uint64 `json:"generation"`
}

func (s *Server) handlePipelineResult() (interface{}, error) {
	out, err := s.latestResult()
	if err != nil {
		return nil, err
	}
	enc, err := imaging.EncodePNG(out.Buffer)
	if err != nil {
		return nil, err
	}
	return &PipelineResult{EncodedImage: *enc, Generation: out.Generation}, nil
}

type imageSaveArgs struct {
	Path string `json:"path"`
}

// SaveResult reports a written file.
type SaveResult struct {
	Path       string `json:"path"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Generation uint64 `json:"generation"`
}

func (s *Server) handleImageSave(args json.RawMessage) (interface{}, error) {
	var a imageSaveArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errors.New("path is required")
	}
	out, err := s.latestResult()
	if err != nil {
		return nil, err
	}
	if err := imaging.Save(a.Path, out.Buffer); err != nil {
		return nil, err
	}
	return &SaveResult{Path: a.Path, Width: out.Buffer.Width, Height: out.Buffer.Height, Generation: out.Generation}, nil
}

// === One-shot Handlers ===

type imageTransformArgs struct {
	Path     string           `json:"path"`
	Pipeline []pipeline.Stage `json:"pipeline"`
}

func (s *Server) handleImageTransform(args json.RawMessage) (interface{}, error) {
	var a imageTransformArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	ts, err := pipeline.DecodeStages(a.Pipeline, s.cfg.Strict)
	if err != nil {
		return nil, err
	}
	src, err := s.cache.Load(a.Path, 0)
	if err != nil {
		return nil, err
	}
	out, err := pipeline.Recompute(context.Background(), src, ts, s.env)
	if err != nil {
		return nil, err
	}
	return imaging.EncodePNG(out)
}

type imageEdgeDetectArgs struct {
	Path          string `json:"path"`
	Method        string `json:"method"`
	ThresholdLow  *int   `json:"threshold_low"`
	ThresholdHigh *int   `json:"threshold_high"`
}

func (s *Server) handleImageEdgeDetect(args json.RawMessage) (interface{}, error) {
	var a imageEdgeDetectArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	low, high := 50, 150
	if a.ThresholdLow != nil {
		low = *a.ThresholdLow
	}
	if a.ThresholdHigh != nil {
		high = *a.ThresholdHigh
	}

	src, err := s.cache.Load(a.Path, 0)
	if err != nil {
		return nil, err
	}

	var edges *imaging.PixelBuffer
	switch a.Method {
	case "", "canny":
		edges, err = detection.Canny(src, detection.CannyOptions{
			Low:        float64(low),
			High:       float64(high),
			FixedPoint: s.cfg.FixedPointHysteresis,
		})
	case "sobel":
		edges, err = detection.Sobel(src)
	default:
		return nil, fmt.Errorf("unknown edge detection method: %s", a.Method)
	}
	if err != nil {
		return nil, err
	}
	return imaging.EncodePNG(edges)
}

type imageSegmentArgs struct {
	Path        string   `json:"path"`
	Tolerance   *float64 `json:"tolerance"`
	MinSize     *int     `json:"min_size"`
	ColorScheme string   `json:"color_scheme"`
}

// SegmentResult is the recolored image plus its regions.
type SegmentResult struct {
	imaging.EncodedImage
	SegmentCount int                   `json:"segment_count"`
	Regions      []segmentation.Region `json:"regions"`
}

func (s *Server) handleImageSegment(args json.RawMessage) (interface{}, error) {
	var a imageSegmentArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	opts := segmentation.Options{
		Tolerance: pipeline.DefaultTolerance,
		MinSize:   pipeline.DefaultMinSize,
		Scheme:    pipeline.DefaultColorScheme,
	}
	if a.Tolerance != nil {
		opts.Tolerance = *a.Tolerance
	}
	if a.MinSize != nil {
		opts.MinSize = *a.MinSize
	}
	if a.ColorScheme != "" {
		opts.Scheme = segmentation.Scheme(a.ColorScheme)
	}
	if s.env.NewRand != nil {
		opts.Rand = s.env.NewRand()
	}

	if s.cfg.Strict {
		t := pipeline.Segmentation{Tolerance: opts.Tolerance, MinSize: opts.MinSize, ColorScheme: opts.Scheme}
		if err := pipeline.Validate(t); err != nil {
			return nil, err
		}
	}

	src, err := s.cache.Load(a.Path, 0)
	if err != nil {
		return nil, err
	}
	res, err := segmentation.Segment(src, opts)
	if err != nil {
		return nil, err
	}
	enc, err := imaging.EncodePNG(res.Buffer)
	if err != nil {
		return nil, err
	}
	return &SegmentResult{EncodedImage: *enc, SegmentCount: len(res.Regions), Regions: res.Regions}, nil
}
