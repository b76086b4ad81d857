// Package flatten turns a card quadrilateral in a scene into the canonical
// top-down binary view used for template matching.
//
// The quadrilateral is mapped onto a fixed 200x300 grid by a projective
// transform, resampled bilinearly, reduced to intensity and binarized with
// an inverted Otsu threshold, so dark ink becomes 255 and card stock 0.
package flatten

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/cardscan/internal/geometry"
	cardimg "github.com/ironsheep/cardscan/internal/imaging"
)

// Canonical card size in pixels.
const (
	CanonicalWidth  = 200
	CanonicalHeight = 300
)

// Flattener warps card quadrilaterals onto a Width x Height grid.
type Flattener struct {
	Width  int
	Height int
}

// New returns a Flattener producing canonical 200x300 images.
func New() *Flattener {
	return &Flattener{Width: CanonicalWidth, Height: CanonicalHeight}
}

// Destination returns the target corners (0,0), (W-1,0), (W-1,H-1), (0,H-1).
func (f *Flattener) Destination() [4]geometry.Pointf {
	w, h := float64(f.Width-1), float64(f.Height-1)
	return [4]geometry.Pointf{{X: 0, Y: 0}, {X: w, Y: 0}, {X: w, Y: h}, {X: 0, Y: h}}
}

// Flatten maps q in src onto the output grid and binarizes the result.
//
// The output is exactly Width x Height and every pixel is 0 or 255. The
// result depends only on the pixels of src and the corner order of q.
func (f *Flattener) Flatten(src image.Image, q geometry.Quad) (*image.Gray, error) {
	if f.Width < 2 || f.Height < 2 {
		return nil, fmt.Errorf("flatten: invalid output size %dx%d", f.Width, f.Height)
	}

	m, err := geometry.PerspectiveTransform(q.Floats(), f.Destination())
	if err != nil {
		return nil, fmt.Errorf("flatten: %w", err)
	}

	warped, err := geometry.WarpPerspective(asNRGBA(src), m, f.Width, f.Height)
	if err != nil {
		return nil, fmt.Errorf("flatten: %w", err)
	}

	gray := cardimg.Grayscale(warped)
	return BinarizeInv(gray, OtsuThreshold(gray)), nil
}

// Canonical flattens q and rotates the result by 180 degrees, the
// orientation the corner regions are cut from.
func (f *Flattener) Canonical(src image.Image, q geometry.Quad) (*image.Gray, error) {
	flat, err := f.Flatten(src, q)
	if err != nil {
		return nil, err
	}
	return cardimg.Rotate180Gray(flat), nil
}

// asNRGBA avoids a copy when src is already a zero-origin NRGBA image.
func asNRGBA(src image.Image) *image.NRGBA {
	if n, ok := src.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return n
	}
	return imaging.Clone(src)
}
