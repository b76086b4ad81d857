package geometry

import (
	"errors"
	"image"
)

// ErrNotQuadrilateral is returned when a corner set does not hold exactly four points.
var ErrNotQuadrilateral = errors.New("corner set must contain exactly 4 points")

// Point represents a 2D coordinate in pixel space.
type Point struct {
	X int `json:"x"` // Horizontal position (0 = leftmost)
	Y int `json:"y"` // Vertical position (0 = topmost)
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y int) Point {
	return Point{X: x, Y: y}
}

// ImagePoint converts p to an image.Point.
func (p Point) ImagePoint() image.Point {
	return image.Point{X: p.X, Y: p.Y}
}

// Pointf is a point with sub-pixel precision.
type Pointf struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Float converts p to a Pointf.
func (p Point) Float() Pointf {
	return Pointf{X: float64(p.X), Y: float64(p.Y)}
}

// Quad is a quadrilateral in top-left, top-right, bottom-right, bottom-left order.
type Quad struct {
	TL Point `json:"top_left"`
	TR Point `json:"top_right"`
	BR Point `json:"bottom_right"`
	BL Point `json:"bottom_left"`
}

// Points returns the corners in TL, TR, BR, BL order.
func (q Quad) Points() [4]Point {
	return [4]Point{q.TL, q.TR, q.BR, q.BL}
}

// Floats returns the corners as sub-pixel points in TL, TR, BR, BL order.
func (q Quad) Floats() [4]Pointf {
	return [4]Pointf{q.TL.Float(), q.TR.Float(), q.BR.Float(), q.BL.Float()}
}

// Centroid returns the mean of pts with each coordinate truncated toward zero.
// An empty slice yields the origin.
func Centroid(pts []Point) Point {
	if len(pts) == 0 {
		return Point{}
	}
	var sx, sy int
	for _, p := range pts {
		sx += p.X
		sy += p.Y
	}
	return Point{X: sx / len(pts), Y: sy / len(pts)}
}
