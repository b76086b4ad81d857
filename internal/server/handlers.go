package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"

	"github.com/ironsheep/cardscan/internal/detection"
	"github.com/ironsheep/cardscan/internal/geometry"
	"github.com/ironsheep/cardscan/internal/imaging"
	"github.com/ironsheep/cardscan/internal/matching"
	"github.com/ironsheep/cardscan/internal/pipeline"
	"github.com/ironsheep/cardscan/pkg/logger"
)

var (
	// ErrNoPipeline is returned by card tools when the server was built
	// without a recognition pipeline.
	ErrNoPipeline = errors.New("no recognition pipeline configured")

	// ErrNoAnnotator is returned when an output path is requested but the
	// server has no annotator.
	ErrNoAnnotator = errors.New("no annotator configured")

	// ErrCandidateIndex is returned when an index names no candidate.
	ErrCandidateIndex = errors.New("candidate index out of range")
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "card_recognize").
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
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.logger.Warn(ctx, "tool failed", logger.String("tool", params.Name), logger.Error(err))
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
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "image_load":
		return s.handleImageLoad(args)
	case "card_recognize":
		return s.handleCardRecognize(ctx, args)
	case "card_candidates":
		return s.handleCardCandidates(args)
	case "card_flatten":
		return s.handleCardFlatten(args)
	case "card_match_region":
		return s.handleCardMatchRegion(args)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response.
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

// mustMarshalJSON marshals v to a JSON string, falling back to an error
// object if marshaling fails.
func mustMarshalJSON(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf(`{"error": "failed to marshal result: %s"}`, err.Error())
	}
	return string(data)
}

// === Image Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

// === Card Handlers ===

type cardRecognizeArgs struct {
	Path       string `json:"path"`
	OutputPath string `json:"output_path"`
}

// RecognizeResult is the card_recognize payload.
type RecognizeResult struct {
	Width      int                  `json:"width"`
	Height     int                  `json:"height"`
	Count      int                  `json:"count"`
	Detections []pipeline.Detection `json:"detections"`
	Annotated  string               `json:"annotated,omitempty"`
}

func (s *Server) handleCardRecognize(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a cardRecognizeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if s.pipeline == nil {
		return nil, ErrNoPipeline
	}
	if a.OutputPath != "" && s.annotator == nil {
		return nil, ErrNoAnnotator
	}

	scene, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	dets, err := s.pipeline.Recognize(ctx, scene)
	if err != nil {
		return nil, err
	}

	size := scene.Bounds().Size()
	result := &RecognizeResult{
		Width:      size.X,
		Height:     size.Y,
		Count:      len(dets),
		Detections: dets,
	}
	if a.OutputPath != "" {
		annotated := s.annotator.Annotate(scene.Color, pipeline.Marks(dets))
		if err := imaging.Save(annotated, a.OutputPath); err != nil {
			return nil, err
		}
		result.Annotated = a.OutputPath
	}
	return result, nil
}

type cardPathArgs struct {
	Path string `json:"path"`
}

// CandidateInfo describes one accepted contour without its pixels.
type CandidateInfo struct {
	Index     int              `json:"index"`
	Box       pipeline.Box     `json:"box"`
	Quad      geometry.Quad    `json:"quad"`
	Regime    string           `json:"regime"`
	Center    geometry.Point   `json:"center"`
	Vertices  []geometry.Point `json:"vertices"`
	Area      float64          `json:"area"`
	Perimeter float64          `json:"perimeter"`
}

// CandidatesResult is the card_candidates payload.
type CandidatesResult struct {
	Width      int             `json:"width"`
	Height     int             `json:"height"`
	Candidates []CandidateInfo `json:"candidates"`
	Stats      detection.Stats `json:"stats"`
}

func (s *Server) handleCardCandidates(args json.RawMessage) (interface{}, error) {
	var a cardPathArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	scene, ext, err := s.extract(a.Path)
	if err != nil {
		return nil, err
	}

	size := scene.Bounds().Size()
	result := &CandidatesResult{
		Width:      size.X,
		Height:     size.Y,
		Candidates: make([]CandidateInfo, len(ext.Candidates)),
		Stats:      ext.Stats,
	}
	for i, c := range ext.Candidates {
		result.Candidates[i] = CandidateInfo{
			Index:     i,
			Box:       pipeline.Box{X: c.Box.Min.X, Y: c.Box.Min.Y, Width: c.Width, Height: c.Height},
			Quad:      c.Quad,
			Regime:    c.Regime.String(),
			Center:    c.Center,
			Vertices:  c.Vertices,
			Area:      c.Area,
			Perimeter: c.Perimeter,
		}
	}
	return result, nil
}

type cardFlattenArgs struct {
	Path   string  `json:"path"`
	Index  int     `json:"index"`
	Region string  `json:"region"`
	Scale  float64 `json:"scale"`
}

func (s *Server) handleCardFlatten(args json.RawMessage) (interface{}, error) {
	var a cardFlattenArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}

	c, err := s.candidate(a.Path, a.Index)
	if err != nil {
		return nil, err
	}

	var img image.Image = c.Warp
	switch a.Region {
	case "", "card":
	case "primary", "secondary":
		img, err = cornerRegion(c.Warp, a.Region)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("invalid region %q: want card, primary or secondary", a.Region)
	}
	return imaging.EncodePNG(img, a.Scale)
}

type cardMatchRegionArgs struct {
	Path   string `json:"path"`
	Index  int    `json:"index"`
	Corner string `json:"corner"`
}

// RegionMatch is the card_match_region payload.
type RegionMatch struct {
	Index  int             `json:"index"`
	Corner string          `json:"corner"`
	Suit   matching.Result `json:"suit"`
	Rank   matching.Result `json:"rank"`
	Label  string          `json:"label"`
}

func (s *Server) handleCardMatchRegion(args json.RawMessage) (interface{}, error) {
	var a cardMatchRegionArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Corner == "" {
		a.Corner = "primary"
	}
	if a.Corner != "primary" && a.Corner != "secondary" {
		return nil, fmt.Errorf("invalid corner %q: want primary or secondary", a.Corner)
	}

	c, err := s.candidate(a.Path, a.Index)
	if err != nil {
		return nil, err
	}
	region, err := cornerRegion(c.Warp, a.Corner)
	if err != nil {
		return nil, err
	}
	suit, rank := s.pipeline.MatchRegion(region)
	return &RegionMatch{
		Index:  a.Index,
		Corner: a.Corner,
		Suit:   suit,
		Rank:   rank,
		Label:  suit.Label + rank.Label,
	}, nil
}

func (s *Server) extract(path string) (*imaging.Scene, *detection.Extraction, error) {
	if s.pipeline == nil {
		return nil, nil, ErrNoPipeline
	}
	scene, err := s.cache.Load(path)
	if err != nil {
		return nil, nil, err
	}
	ext, err := s.pipeline.Extract(scene)
	if err != nil {
		return nil, nil, err
	}
	return scene, ext, nil
}

func (s *Server) candidate(path string, index int) (*detection.Candidate, error) {
	_, ext, err := s.extract(path)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(ext.Candidates) {
		return nil, fmt.Errorf("%w: %d of %d", ErrCandidateIndex, index, len(ext.Candidates))
	}
	return &ext.Candidates[index], nil
}

func cornerRegion(warp *image.Gray, corner string) (*image.Gray, error) {
	primary, secondary, err := pipeline.CornerRegions(warp)
	if err != nil {
		return nil, err
	}
	if corner == "secondary" {
		return secondary, nil
	}
	return primary, nil
}
