package geometry

import "fmt"

// Regime identifies which orientation rule assigned a card's corners.
type Regime int

const (
	// Portrait cards are upright: width <= 0.8 * height.
	Portrait Regime = iota
	// Landscape cards lie on their side: width >= 1.2 * height.
	Landscape
	// Diamond cards are rotated enough that the bounding box is near square.
	Diamond
)

// String returns the lowercase regime name.
func (r Regime) String() string {
	switch r {
	case Portrait:
		return "portrait"
	case Landscape:
		return "landscape"
	case Diamond:
		return "diamond"
	default:
		return fmt.Sprintf("regime(%d)", int(r))
	}
}

// OrderCorners assigns four approximate card corners to top-left, top-right,
// bottom-right and bottom-left using the bounding width w and height h.
//
// pts must be in the order polygon approximation produced them: the diamond
// rule reads raw indices 1 and 3 and relies on the contour tracer starting at
// the topmost pixel and walking counter-clockwise.
//
// # Regimes
//
//   - Portrait (w <= 0.8h): the min/max of x+y and y-x pick the corners directly.
//   - Landscape (w >= 1.2h): the same four points shifted one slot, because the
//     card's own top-left is where the sum rule found the bottom-left.
//   - Diamond (otherwise): if pts[1] is not lower than pts[3] the card leans
//     left and maps to (pts[1], pts[0], pts[3], pts[2]); otherwise it leans
//     right and maps to (pts[0], pts[3], pts[2], pts[1]).
//
// Every returned corner is one of the inputs. For convex card-like quads the
// four slots hold four different points, but the extreme rules do not
// guarantee it: a thin skewed quad such as (0,0) (2,10) (3,20) (-5,30) has
// one point that is both the minimum of x+y and of y-x, so TL and TR
// coincide. Such a quad cannot be flattened and PerspectiveTransform rejects
// it with ErrDegenerate.
func OrderCorners(pts [4]Point, w, h int) (Quad, Regime) {
	tl, tr, br, bl := extremes(pts)

	// Integer forms of w <= 0.8h and w >= 1.2h keep both boundaries exact.
	switch {
	case 5*w <= 4*h:
		return Quad{TL: tl, TR: tr, BR: br, BL: bl}, Portrait
	case 5*w >= 6*h:
		return Quad{TL: bl, TR: tl, BR: tr, BL: br}, Landscape
	}

	if pts[1].Y <= pts[3].Y {
		return Quad{TL: pts[1], TR: pts[0], BR: pts[3], BL: pts[2]}, Diamond
	}
	return Quad{TL: pts[0], TR: pts[3], BR: pts[2], BL: pts[1]}, Diamond
}

// OrderCornersSlice is OrderCorners for callers holding a slice. It returns
// ErrNotQuadrilateral unless exactly four points are supplied.
func OrderCornersSlice(pts []Point, w, h int) (Quad, Regime, error) {
	if len(pts) != 4 {
		return Quad{}, 0, fmt.Errorf("got %d points: %w", len(pts), ErrNotQuadrilateral)
	}
	q, r := OrderCorners([4]Point{pts[0], pts[1], pts[2], pts[3]}, w, h)
	return q, r, nil
}

// extremes returns the points with minimum x+y, minimum y-x, maximum x+y and
// maximum y-x. Ties keep the earliest index.
func extremes(pts [4]Point) (tl, tr, br, bl Point) {
	minSum, maxSum, minDiff, maxDiff := 0, 0, 0, 0
	for i := 1; i < len(pts); i++ {
		s := pts[i].X + pts[i].Y
		d := pts[i].Y - pts[i].X
		if s < pts[minSum].X+pts[minSum].Y {
			minSum = i
		}
		if s > pts[maxSum].X+pts[maxSum].Y {
			maxSum = i
		}
		if d < pts[minDiff].Y-pts[minDiff].X {
			minDiff = i
		}
		if d > pts[maxDiff].Y-pts[maxDiff].X {
			maxDiff = i
		}
	}
	return pts[minSum], pts[minDiff], pts[maxSum], pts[maxDiff]
}
