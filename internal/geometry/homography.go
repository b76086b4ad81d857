package geometry

import (
	"errors"
	"image"
	"image/color"
	"math"
)

// ErrDegenerate is returned when four correspondences do not define a
// projective transform (three or more collinear points, repeated corners).
var ErrDegenerate = errors.New("degenerate quadrilateral")

// singularEps is the pivot magnitude below which a system is treated as singular.
const singularEps = 1e-12

// Matrix is a row-major 3x3 projective transform.
type Matrix [9]float64

// Identity returns the identity transform.
func Identity() Matrix {
	return Matrix{1, 0, 0, 0, 1, 0, 0, 0, 1}
}

// Apply maps (x, y) through m. Points mapped to infinity come back as NaN.
func (m Matrix) Apply(x, y float64) (float64, float64) {
	w := m[6]*x + m[7]*y + m[8]
	if w == 0 {
		return math.NaN(), math.NaN()
	}
	return (m[0]*x + m[1]*y + m[2]) / w, (m[3]*x + m[4]*y + m[5]) / w
}

// Inverse returns the inverse transform.
func (m Matrix) Inverse() (Matrix, error) {
	a, b, c := m[0], m[1], m[2]
	d, e, f := m[3], m[4], m[5]
	g, h, i := m[6], m[7], m[8]

	A := e*i - f*h
	B := -(d*i - f*g)
	C := d*h - e*g
	det := a*A + b*B + c*C
	if math.Abs(det) < singularEps {
		return Matrix{}, ErrDegenerate
	}

	inv := Matrix{
		A, -(b*i - c*h), b*f - c*e,
		B, a*i - c*g, -(a*f - c*d),
		C, -(a*h - b*g), a*e - b*d,
	}
	for k := range inv {
		inv[k] /= det
	}
	return inv, nil
}

// PerspectiveTransform solves the homography that maps each src corner onto
// the matching dst corner.
//
// With h33 fixed at 1, every correspondence (x, y) -> (u, v) contributes the rows
//
//	x*h11 + y*h12 + h13 - u*x*h31 - u*y*h32 = u
//	x*h21 + y*h22 + h23 - v*x*h31 - v*y*h32 = v
//
// and the resulting 8x8 system is solved by Gaussian elimination with partial
// pivoting.
func PerspectiveTransform(src, dst [4]Pointf) (Matrix, error) {
	if hasCollinearTriple(src) || hasCollinearTriple(dst) {
		return Matrix{}, ErrDegenerate
	}

	var a [8][9]float64
	for i := 0; i < 4; i++ {
		x, y := src[i].X, src[i].Y
		u, v := dst[i].X, dst[i].Y
		a[2*i] = [9]float64{x, y, 1, 0, 0, 0, -u * x, -u * y, u}
		a[2*i+1] = [9]float64{0, 0, 0, x, y, 1, -v * x, -v * y, v}
	}

	for col := 0; col < 8; col++ {
		pivot := col
		for row := col + 1; row < 8; row++ {
			if math.Abs(a[row][col]) > math.Abs(a[pivot][col]) {
				pivot = row
			}
		}
		if math.Abs(a[pivot][col]) < singularEps {
			return Matrix{}, ErrDegenerate
		}
		a[col], a[pivot] = a[pivot], a[col]

		for row := col + 1; row < 8; row++ {
			factor := a[row][col] / a[col][col]
			if factor == 0 {
				continue
			}
			for k := col; k < 9; k++ {
				a[row][k] -= factor * a[col][k]
			}
		}
	}

	var h [8]float64
	for row := 7; row >= 0; row-- {
		sum := a[row][8]
		for k := row + 1; k < 8; k++ {
			sum -= a[row][k] * h[k]
		}
		h[row] = sum / a[row][row]
	}

	return Matrix{h[0], h[1], h[2], h[3], h[4], h[5], h[6], h[7], 1}, nil
}

func hasCollinearTriple(pts [4]Pointf) bool {
	for i := 0; i < 4; i++ {
		a, b, c := pts[i], pts[(i+1)%4], pts[(i+2)%4]
		cross := (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
		if math.Abs(cross) < singularEps {
			return true
		}
	}
	return false
}

// WarpPerspective resamples src through m into a width x height image.
//
// Each destination pixel is mapped back into src with the inverse of m and
// sampled bilinearly. Source pixels outside src count as opaque black, so the
// output is always fully opaque.
func WarpPerspective(src *image.NRGBA, m Matrix, width, height int) (*image.NRGBA, error) {
	inv, err := m.Inverse()
	if err != nil {
		return nil, err
	}

	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			sx, sy := inv.Apply(float64(x), float64(y))
			c := bilinear(src, sx, sy)
			off := dst.PixOffset(x, y)
			dst.Pix[off+0] = c.R
			dst.Pix[off+1] = c.G
			dst.Pix[off+2] = c.B
			dst.Pix[off+3] = 0xff
		}
	}
	return dst, nil
}

// bilinear samples src at a sub-pixel location relative to its bounds.
func bilinear(src *image.NRGBA, fx, fy float64) color.NRGBA {
	if math.IsNaN(fx) || math.IsNaN(fy) {
		return color.NRGBA{A: 0xff}
	}

	x0 := int(math.Floor(fx))
	y0 := int(math.Floor(fy))
	ax := fx - float64(x0)
	ay := fy - float64(y0)

	var acc [3]float64
	weights := [4]float64{(1 - ax) * (1 - ay), ax * (1 - ay), (1 - ax) * ay, ax * ay}
	offsets := [4][2]int{{0, 0}, {1, 0}, {0, 1}, {1, 1}}
	for k, o := range offsets {
		w := weights[k]
		if w == 0 {
			continue
		}
		r, g, b, ok := rgbAt(src, x0+o[0], y0+o[1])
		if !ok {
			continue
		}
		acc[0] += w * float64(r)
		acc[1] += w * float64(g)
		acc[2] += w * float64(b)
	}

	return color.NRGBA{R: round8(acc[0]), G: round8(acc[1]), B: round8(acc[2]), A: 0xff}
}

func rgbAt(src *image.NRGBA, x, y int) (r, g, b uint8, ok bool) {
	b0 := src.Bounds()
	px, py := x+b0.Min.X, y+b0.Min.Y
	if px < b0.Min.X || px >= b0.Max.X || py < b0.Min.Y || py >= b0.Max.Y {
		return 0, 0, 0, false
	}
	off := src.PixOffset(px, py)
	return src.Pix[off], src.Pix[off+1], src.Pix[off+2], true
}

func round8(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}
