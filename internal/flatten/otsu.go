package flatten

import (
	"image"

	"github.com/anthonynsimon/bild/histogram"
)

// OtsuThreshold picks the gray level that maximizes the between-class
// variance of g's histogram.
//
// Pixels at or below the returned level form the first class. When several
// levels tie the lowest wins, and an image with a single gray level yields 0.
func OtsuThreshold(g *image.Gray) uint8 {
	bins := histogram.NewRGBAHistogram(g).R.Bins

	var total, sum float64
	for level, n := range bins {
		total += float64(n)
		sum += float64(level) * float64(n)
	}
	if total == 0 {
		return 0
	}

	var (
		best      uint8
		bestSigma float64
		w0, s0    float64
	)
	for level, n := range bins {
		w0 += float64(n)
		s0 += float64(level) * float64(n)
		w1 := total - w0
		if w0 == 0 || w1 == 0 {
			continue
		}
		mu0 := s0 / w0
		mu1 := (sum - s0) / w1
		d := mu0 - mu1
		sigma := w0 * w1 * d * d
		if sigma > bestSigma {
			bestSigma = sigma
			best = uint8(level)
		}
	}
	return best
}

// BinarizeInv maps pixels above t to 0 and all others to 255.
func BinarizeInv(g *image.Gray, t uint8) *image.Gray {
	b := g.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		row := g.Pix[g.PixOffset(b.Min.X, b.Min.Y+y):]
		dst := out.Pix[y*out.Stride:]
		for x := 0; x < b.Dx(); x++ {
			if row[x] > t {
				dst[x] = 0
			} else {
				dst[x] = 255
			}
		}
	}
	return out
}
