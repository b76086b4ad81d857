package detection

import (
	"image"
	"math"
)

// fillGray returns a w x h gray image filled with v.
func fillGray(w, h int, v uint8) *image.Gray {
	g := image.NewGray(image.Rect(0, 0, w, h))
	for i := range g.Pix {
		g.Pix[i] = v
	}
	return g
}

// fillRect paints r with v.
func fillRect(g *image.Gray, r image.Rectangle, v uint8) {
	r = r.Intersect(g.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			g.Pix[g.PixOffset(x, y)] = v
		}
	}
}

type fpoint struct{ x, y float64 }

// fillPolygon paints every pixel whose centre lies inside poly.
func fillPolygon(g *image.Gray, poly []fpoint, v uint8) {
	b := g.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if insidePolygon(poly, float64(x), float64(y)) {
				g.Pix[g.PixOffset(x, y)] = v
			}
		}
	}
}

func insidePolygon(poly []fpoint, x, y float64) bool {
	in := false
	for i, j := 0, len(poly)-1; i < len(poly); j, i = i, i+1 {
		a, b := poly[i], poly[j]
		if (a.y > y) != (b.y > y) && x < (b.x-a.x)*(y-a.y)/(b.y-a.y)+a.x {
			in = !in
		}
	}
	return in
}

// regularPolygon returns n vertices on a circle, the first pointing straight up.
func regularPolygon(cx, cy, r float64, n int) []fpoint {
	pts := make([]fpoint, n)
	for i := range pts {
		a := -math.Pi/2 + 2*math.Pi*float64(i)/float64(n)
		pts[i] = fpoint{cx + r*math.Cos(a), cy + r*math.Sin(a)}
	}
	return pts
}

// rotatedRect returns the corners of a w x h rectangle centred on (cx, cy)
// and rotated by deg degrees.
func rotatedRect(cx, cy, w, h, deg float64) []fpoint {
	a := deg * math.Pi / 180
	cos, sin := math.Cos(a), math.Sin(a)
	half := []fpoint{{-w / 2, -h / 2}, {w / 2, -h / 2}, {w / 2, h / 2}, {-w / 2, h / 2}}
	pts := make([]fpoint, 4)
	for i, p := range half {
		pts[i] = fpoint{cx + p.x*cos - p.y*sin, cy + p.x*sin + p.y*cos}
	}
	return pts
}
