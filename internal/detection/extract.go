package detection

import (
	"errors"
	"fmt"
	"image"
	"sort"

	"github.com/ironsheep/cardscan/internal/flatten"
	"github.com/ironsheep/cardscan/internal/geometry"
)

// Options tunes the extractor. The zero value is not usable; start from
// DefaultOptions.
type Options struct {
	// BlurSize is the side of the box filter applied before thresholding.
	BlurSize int

	// BinaryThreshold is the gray level above which a pixel is foreground.
	BinaryThreshold uint8

	// MinAreaDivisor and MaxAreaDivisor bound the accepted contour area to
	// the open interval (sceneArea/MinAreaDivisor, sceneArea/MaxAreaDivisor),
	// using integer division.
	MinAreaDivisor int
	MaxAreaDivisor int

	// ApproxEpsilon is the polygon tolerance, as a fraction of the perimeter,
	// used to count vertices.
	ApproxEpsilon float64

	// CornerEpsilon is the finer tolerance used to locate the corners that
	// are handed to the flattener.
	CornerEpsilon float64
}

// DefaultOptions returns the standard tuning: 5x5 blur, threshold 128, area
// band 1/30..1/5 of the scene, 5% vertex tolerance and 1% corner tolerance.
func DefaultOptions() Options {
	return Options{
		BlurSize:        5,
		BinaryThreshold: 128,
		MinAreaDivisor:  30,
		MaxAreaDivisor:  5,
		ApproxEpsilon:   0.05,
		CornerEpsilon:   0.01,
	}
}

// Validate checks that the options describe a usable extractor.
func (o Options) Validate() error {
	switch {
	case o.BlurSize < 0:
		return fmt.Errorf("%w: blur size %d", ErrInvalidOptions, o.BlurSize)
	case o.MinAreaDivisor <= 0 || o.MaxAreaDivisor <= 0:
		return fmt.Errorf("%w: area divisors must be positive", ErrInvalidOptions)
	case o.MaxAreaDivisor >= o.MinAreaDivisor:
		return fmt.Errorf("%w: max area divisor %d must be below min area divisor %d",
			ErrInvalidOptions, o.MaxAreaDivisor, o.MinAreaDivisor)
	case o.ApproxEpsilon <= 0 || o.CornerEpsilon <= 0:
		return fmt.Errorf("%w: approximation tolerances must be positive", ErrInvalidOptions)
	}
	return nil
}

// Candidate is a contour accepted as a card, with everything needed to match it.
type Candidate struct {
	// Contour is the traced outer border in scene coordinates.
	Contour Contour

	// Box is the axis-aligned bounding rectangle of the contour.
	Box image.Rectangle

	// Width and Height are the bounding rectangle size in pixels.
	Width  int
	Height int

	// Vertices is the 4-point polygon that passed the vertex filter.
	Vertices []geometry.Point

	// Corners are the approximate card corners used for flattening, in the
	// order the polygon approximation produced them.
	Corners []geometry.Point

	// Quad is Corners ordered top-left, top-right, bottom-right, bottom-left.
	Quad geometry.Quad

	// Regime is the orientation rule that produced Quad.
	Regime geometry.Regime

	// Center is the mean of Corners, truncated.
	Center geometry.Point

	// Area is the enclosed contour area in square pixels.
	Area float64

	// Perimeter is the closed contour length in pixels.
	Perimeter float64

	// Warp is the canonical 200x300 binary card image, rotated 180 degrees
	// from the raw flattening output.
	Warp *image.Gray
}

// Stats counts what happened to the contours of one scene.
type Stats struct {
	Contours         int `json:"contours"`
	Accepted         int `json:"accepted"`
	RejectedArea     int `json:"rejected_area"`
	RejectedVertices int `json:"rejected_vertices"`
	Degenerate       int `json:"degenerate"`
}

// Extraction is the outcome of one Extract call.
type Extraction struct {
	// Candidates are the accepted cards, largest contour first.
	Candidates []Candidate

	Stats Stats
}

// Extractor finds card candidates in scenes. It holds no per-scene state and
// is safe for concurrent use.
type Extractor struct {
	opts      Options
	flattener *flatten.Flattener
}

// NewExtractor returns an extractor using opts.
func NewExtractor(opts Options) (*Extractor, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Extractor{opts: opts, flattener: flatten.New()}, nil
}

// Options returns the extractor's tuning.
func (e *Extractor) Options() Options {
	return e.opts
}

// Contours returns every outer contour of gray after blurring and
// thresholding, sorted by area with the largest first.
func (e *Extractor) Contours(gray *image.Gray) []Contour {
	contours := FindContours(Binarize(gray, e.opts.BlurSize, e.opts.BinaryThreshold))

	type measured struct {
		c    Contour
		area float64
	}
	ms := make([]measured, len(contours))
	for i, c := range contours {
		ms[i] = measured{c: c, area: c.Area()}
	}
	sort.SliceStable(ms, func(i, j int) bool {
		return ms[i].area > ms[j].area
	})
	for i := range ms {
		contours[i] = ms[i].c
	}
	return contours
}

// Extract finds the card candidates of a scene.
//
// gray drives contour detection; src supplies the pixels that are flattened
// and may be nil to flatten gray itself. Both are read relative to their own
// bounds and must have the same size.
func (e *Extractor) Extract(gray *image.Gray, src image.Image) (*Extraction, error) {
	if gray == nil {
		return nil, ErrNilImage
	}
	if src == nil {
		src = gray
	}
	if src.Bounds().Size() != gray.Bounds().Size() {
		return nil, fmt.Errorf("%w: color %v, gray %v", ErrSizeMismatch, src.Bounds().Size(), gray.Bounds().Size())
	}

	w, h := gray.Bounds().Dx(), gray.Bounds().Dy()
	sceneArea := w * h
	minArea := float64(sceneArea / e.opts.MinAreaDivisor)
	maxArea := float64(sceneArea / e.opts.MaxAreaDivisor)

	result := &Extraction{Candidates: make([]Candidate, 0)}
	for _, c := range e.Contours(gray) {
		result.Stats.Contours++

		area := c.Area()
		if area <= minArea || area >= maxArea {
			result.Stats.RejectedArea++
			continue
		}

		perimeter := c.Perimeter()
		vertices := ApproxPolygon(c, e.opts.ApproxEpsilon*perimeter)
		if len(vertices) != 4 {
			result.Stats.RejectedVertices++
			continue
		}

		cand, err := e.candidate(src, c, vertices, area, perimeter)
		if errors.Is(err, geometry.ErrDegenerate) {
			result.Stats.Degenerate++
			continue
		}
		if err != nil {
			return nil, err
		}
		result.Candidates = append(result.Candidates, *cand)
		result.Stats.Accepted++
	}
	return result, nil
}

func (e *Extractor) candidate(src image.Image, c Contour, vertices []geometry.Point, area, perimeter float64) (*Candidate, error) {
	box := c.BoundingRect()

	corners := []geometry.Point(ApproxPolygon(c, e.opts.CornerEpsilon*perimeter))
	if len(corners) != 4 {
		corners = vertices
	}

	quad, regime, err := geometry.OrderCornersSlice(corners, box.Dx(), box.Dy())
	if err != nil {
		return nil, err
	}

	warp, err := e.flattener.Canonical(src, quad)
	if err != nil {
		return nil, err
	}

	return &Candidate{
		Contour:   c,
		Box:       box,
		Width:     box.Dx(),
		Height:    box.Dy(),
		Vertices:  vertices,
		Corners:   corners,
		Quad:      quad,
		Regime:    regime,
		Center:    geometry.Centroid(corners),
		Area:      area,
		Perimeter: perimeter,
		Warp:      warp,
	}, nil
}
