package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderCorners_Portrait(t *testing.T) {
	// Upright 100x150 card traced from the top-left, counter-clockwise.
	pts := [4]Point{{10, 10}, {10, 160}, {110, 160}, {110, 10}}

	q, regime := OrderCorners(pts, 101, 151)

	assert.Equal(t, Portrait, regime)
	assert.Equal(t, Quad{TL: Pt(10, 10), TR: Pt(110, 10), BR: Pt(110, 160), BL: Pt(10, 160)}, q)
}

func TestOrderCorners_Landscape(t *testing.T) {
	pts := [4]Point{{10, 10}, {10, 110}, {160, 110}, {160, 10}}

	q, regime := OrderCorners(pts, 151, 101)

	assert.Equal(t, Landscape, regime)
	// The sum/diff corners shifted one slot: (bl, tl, tr, br).
	assert.Equal(t, Quad{TL: Pt(10, 110), TR: Pt(10, 10), BR: Pt(160, 10), BL: Pt(160, 110)}, q)
}

func TestOrderCorners_DiamondTiltedLeft(t *testing.T) {
	// top, left, bottom, right; the left point is higher than the right one.
	pts := [4]Point{{120, 10}, {20, 80}, {90, 200}, {190, 130}}

	q, regime := OrderCorners(pts, 171, 191)

	assert.Equal(t, Diamond, regime)
	assert.Equal(t, Quad{TL: pts[1], TR: pts[0], BR: pts[3], BL: pts[2]}, q)
}

func TestOrderCorners_DiamondTiltedRight(t *testing.T) {
	// top, left, bottom, right; the left point is lower than the right one.
	pts := [4]Point{{80, 10}, {10, 130}, {110, 200}, {180, 80}}

	q, regime := OrderCorners(pts, 171, 191)

	assert.Equal(t, Diamond, regime)
	assert.Equal(t, Quad{TL: pts[0], TR: pts[3], BR: pts[2], BL: pts[1]}, q)
}

func TestOrderCorners_DiamondEqualHeights(t *testing.T) {
	pts := [4]Point{{50, 0}, {0, 50}, {50, 100}, {100, 50}}

	q, regime := OrderCorners(pts, 101, 101)

	assert.Equal(t, Diamond, regime)
	assert.Equal(t, pts[1], q.TL, "equal heights count as tilted left")
}

func TestOrderCorners_RegimeBoundaries(t *testing.T) {
	pts := [4]Point{{0, 0}, {0, 99}, {79, 99}, {79, 0}}

	tests := []struct {
		name string
		w, h int
		want Regime
	}{
		{"exactly 0.8h is portrait", 80, 100, Portrait},
		{"just above 0.8h is diamond", 81, 100, Diamond},
		{"square is diamond", 100, 100, Diamond},
		{"just below 1.2h is diamond", 119, 100, Diamond},
		{"exactly 1.2h is landscape", 120, 100, Landscape},
		{"small exact 0.8h", 4, 5, Portrait},
		{"small exact 1.2h", 6, 5, Landscape},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, regime := OrderCorners(pts, tt.w, tt.h)
			assert.Equal(t, tt.want, regime)
		})
	}
}

func TestOrderCorners_UsesOnlyInputPoints(t *testing.T) {
	sets := [][4]Point{
		{{3, 7}, {1, 40}, {30, 44}, {33, 2}},
		{{50, 0}, {0, 30}, {40, 90}, {95, 55}},
		{{12, 80}, {90, 95}, {100, 10}, {20, 1}},
		{{0, 0}, {0, 0}, {10, 10}, {10, 0}},
	}
	dims := [][2]int{{30, 100}, {100, 100}, {100, 30}, {95, 100}, {120, 80}}

	for _, pts := range sets {
		for _, d := range dims {
			q, _ := OrderCorners(pts, d[0], d[1])
			out := q.Points()

			remaining := append([]Point(nil), pts[:]...)
			for _, p := range out {
				assert.Contains(t, remaining, p)
			}

			// The sets above are convex; skewed quads may repeat a corner.
			if distinct(pts) {
				seen := map[Point]bool{}
				for _, p := range out {
					assert.False(t, seen[p], "corner %v assigned twice for %v (w=%d h=%d)", p, pts, d[0], d[1])
					seen[p] = true
				}
			}
		}
	}
}

func TestOrderCorners_SkewedQuadCollapses(t *testing.T) {
	pts := [4]Point{{0, 0}, {2, 10}, {3, 20}, {-5, 30}}
	require.True(t, distinct(pts))

	q, regime := OrderCorners(pts, 9, 31)
	assert.Equal(t, Portrait, regime)
	assert.Equal(t, Pt(0, 0), q.TL)
	assert.Equal(t, q.TL, q.TR, "min x+y and min y-x pick the same point")
	assert.Equal(t, Pt(-5, 30), q.BR)
	assert.Equal(t, q.BR, q.BL)

	_, err := PerspectiveTransform(q.Floats(), canonicalDst())
	assert.ErrorIs(t, err, ErrDegenerate)
}

func TestOrderCornersSlice_RejectsWrongCount(t *testing.T) {
	_, _, err := OrderCornersSlice([]Point{{0, 0}, {1, 1}, {2, 2}}, 10, 10)
	require.ErrorIs(t, err, ErrNotQuadrilateral)

	q, regime, err := OrderCornersSlice([]Point{{0, 0}, {0, 99}, {59, 99}, {59, 0}}, 60, 100)
	require.NoError(t, err)
	assert.Equal(t, Portrait, regime)
	assert.Equal(t, Pt(0, 0), q.TL)
	assert.Equal(t, Pt(59, 99), q.BR)
}

func TestRegime_String(t *testing.T) {
	assert.Equal(t, "portrait", Portrait.String())
	assert.Equal(t, "landscape", Landscape.String())
	assert.Equal(t, "diamond", Diamond.String())
	assert.Equal(t, "regime(7)", Regime(7).String())
}

func TestCentroid(t *testing.T) {
	assert.Equal(t, Pt(5, 7), Centroid([]Point{{0, 0}, {10, 0}, {10, 15}, {0, 15}}))
	assert.Equal(t, Point{}, Centroid(nil))
}

func distinct(pts [4]Point) bool {
	seen := map[Point]bool{}
	for _, p := range pts {
		if seen[p] {
			return false
		}
		seen[p] = true
	}
	return true
}
