package detection

import (
	"image"
	"math"

	"github.com/ironsheep/cardscan/internal/geometry"
)

// Contour is the closed boundary of a region, one point per border pixel.
// The last point connects back to the first.
type Contour []geometry.Point

// Area returns the absolute enclosed area by the shoelace formula, measured
// through pixel centres. Contours with fewer than three points have zero area.
func (c Contour) Area() float64 {
	if len(c) < 3 {
		return 0
	}
	var sum int
	for i, p := range c {
		q := c[(i+1)%len(c)]
		sum += p.X*q.Y - q.X*p.Y
	}
	return math.Abs(float64(sum)) / 2
}

// Perimeter returns the length of the closed polyline through c.
func (c Contour) Perimeter() float64 {
	if len(c) < 2 {
		return 0
	}
	var total float64
	for i, p := range c {
		q := c[(i+1)%len(c)]
		total += math.Hypot(float64(q.X-p.X), float64(q.Y-p.Y))
	}
	return total
}

// BoundingRect returns the smallest rectangle holding every point of c. Max is
// exclusive, so a single pixel yields a 1x1 rectangle.
func (c Contour) BoundingRect() image.Rectangle {
	if len(c) == 0 {
		return image.Rectangle{}
	}
	r := image.Rect(c[0].X, c[0].Y, c[0].X+1, c[0].Y+1)
	for _, p := range c[1:] {
		r.Min.X = min(r.Min.X, p.X)
		r.Min.Y = min(r.Min.Y, p.Y)
		r.Max.X = max(r.Max.X, p.X+1)
		r.Max.Y = max(r.Max.Y, p.Y+1)
	}
	return r
}

// ApproxPolygon simplifies the closed contour c with the Douglas-Peucker
// algorithm. A point survives when it lies farther than epsilon from the
// chord of the segment being simplified.
//
// The first point is always kept. The curve is split there and at the point
// farthest from it, and both halves are simplified independently. Vertices
// come back in contour order.
func ApproxPolygon(c Contour, epsilon float64) Contour {
	n := len(c)
	if n < 3 {
		return append(Contour(nil), c...)
	}

	far, farDist := 0, 0
	for i := 1; i < n; i++ {
		dx, dy := c[i].X-c[0].X, c[i].Y-c[0].Y
		if d := dx*dx + dy*dy; d > farDist {
			far, farDist = i, d
		}
	}
	if farDist == 0 {
		return Contour{c[0]}
	}

	keep := make([]bool, n)
	keep[0], keep[far] = true, true
	simplify(c, 0, far, epsilon, keep)
	simplify(c, far, n, epsilon, keep)

	out := make(Contour, 0, 8)
	for i, k := range keep {
		if k {
			out = append(out, c[i])
		}
	}
	return out
}

// simplify marks the points of c[first..last] to keep. last may equal
// len(c), meaning the chain closes on c[0].
func simplify(c Contour, first, last int, epsilon float64, keep []bool) {
	type span struct{ a, b int }
	stack := []span{{first, last}}

	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if s.b-s.a < 2 {
			continue
		}

		a, b := c[s.a], c[s.b%len(c)]
		idx, maxDist := -1, 0.0
		for i := s.a + 1; i < s.b; i++ {
			if d := pointLineDistance(c[i], a, b); d > maxDist {
				idx, maxDist = i, d
			}
		}
		if idx < 0 || maxDist <= epsilon {
			continue
		}
		keep[idx] = true
		stack = append(stack, span{s.a, idx}, span{idx, s.b})
	}
}

// pointLineDistance returns the distance from p to the line through a and b,
// or to a itself when a and b coincide.
func pointLineDistance(p, a, b geometry.Point) float64 {
	dx, dy := float64(b.X-a.X), float64(b.Y-a.Y)
	px, py := float64(p.X-a.X), float64(p.Y-a.Y)
	length := math.Hypot(dx, dy)
	if length == 0 {
		return math.Hypot(px, py)
	}
	return math.Abs(px*dy-py*dx) / length
}
