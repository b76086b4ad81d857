package matching

import (
	"image"
	"math"
)

// varianceEps is the window variance below which a window counts as flat.
const varianceEps = 1e-9

// Surface is the best placement found by MatchTemplate.
type Surface struct {
	// Score is the maximum correlation over all placements, in [-1, 1].
	Score float64

	// Location is the top-left of the best placement, relative to the region's bounds.
	Location image.Point
}

// MatchTemplate scores t at every placement inside region and returns the
// maximum. ok is false when t does not fit inside region.
//
// Placements where either the window or the template has no variance score 0.
func MatchTemplate(region *image.Gray, t *Template) (s Surface, ok bool) {
	rb := region.Bounds()
	rw, rh := rb.Dx(), rb.Dy()
	tw, th := t.width, t.height
	if tw == 0 || th == 0 || tw > rw || th > rh {
		return Surface{}, false
	}

	sum, sq := integrals(region)
	n := float64(tw * th)
	stride := rw + 1

	best := Surface{Score: math.Inf(-1)}
	for y := 0; y+th <= rh; y++ {
		for x := 0; x+tw <= rw; x++ {
			score := 0.0
			if t.norm > 0 {
				a, b := y*stride+x, y*stride+x+tw
				c, d := (y+th)*stride+x, (y+th)*stride+x+tw
				ws := sum[d] - sum[b] - sum[c] + sum[a]
				wq := sq[d] - sq[b] - sq[c] + sq[a]
				variance := wq - ws*ws/n
				if variance > varianceEps {
					score = correlate(region, rb.Min.X+x, rb.Min.Y+y, t) / math.Sqrt(t.norm*variance)
					score = math.Max(-1, math.Min(1, score))
				}
			}
			if score > best.Score {
				best = Surface{Score: score, Location: image.Pt(x, y)}
			}
		}
	}
	return best, true
}

// correlate sums the zero-mean template times the region window at (x, y).
// The window mean drops out because the zero-mean template sums to zero.
func correlate(region *image.Gray, x, y int, t *Template) float64 {
	var acc float64
	for j := 0; j < t.height; j++ {
		row := region.Pix[region.PixOffset(x, y+j):]
		tr := t.centered[j*t.width : (j+1)*t.width]
		for i, v := range tr {
			acc += v * float64(row[i])
		}
	}
	return acc
}

// integrals returns (w+1)x(h+1) summed-area tables of the pixel values and
// their squares.
func integrals(g *image.Gray) (sum, sq []float64) {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	stride := w + 1
	sum = make([]float64, stride*(h+1))
	sq = make([]float64, stride*(h+1))

	for y := 0; y < h; y++ {
		row := g.Pix[g.PixOffset(b.Min.X, b.Min.Y+y):]
		var rs, rq float64
		for x := 0; x < w; x++ {
			v := float64(row[x])
			rs += v
			rq += v * v
			sum[(y+1)*stride+x+1] = sum[y*stride+x+1] + rs
			sq[(y+1)*stride+x+1] = sq[y*stride+x+1] + rq
		}
	}
	return sum, sq
}
