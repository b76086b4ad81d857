package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/draw"
	"image/png"

	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"
)

// EncodedImage contains a PNG-encoded image ready for a JSON response.
type EncodedImage struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// EncodePNG encodes img as base64 PNG, optionally rescaling it first.
func EncodePNG(img image.Image, scale float64) (*EncodedImage, error) {
	if scale != 1.0 && scale > 0 {
		newWidth := int(float64(img.Bounds().Dx()) * scale)
		newHeight := int(float64(img.Bounds().Dy()) * scale)
		img = imaging.Resize(img, newWidth, newHeight, imaging.NearestNeighbor)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	return &EncodedImage{
		Width:       img.Bounds().Dx(),
		Height:      img.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}

// CropGray copies region r of g into a new zero-origin image.
//
// r is given in g's coordinate space and must lie inside g's bounds with a
// non-empty area.
func CropGray(g *image.Gray, r image.Rectangle) (*image.Gray, error) {
	bounds := g.Bounds()
	if !r.In(bounds) {
		return nil, fmt.Errorf("crop region (%d,%d)-(%d,%d) outside image bounds (%d,%d)-(%d,%d)",
			r.Min.X, r.Min.Y, r.Max.X, r.Max.Y, bounds.Min.X, bounds.Min.Y, bounds.Max.X, bounds.Max.Y)
	}
	if r.Empty() {
		return nil, fmt.Errorf("invalid crop region: x1 must be < x2, y1 must be < y2")
	}
	return GrayOf(imaging.Crop(g, r)), nil
}

// Rotate180Gray returns g rotated by 180 degrees.
func Rotate180Gray(g *image.Gray) *image.Gray {
	return GrayOf(imaging.Rotate180(g))
}

// Luma weights shared with OpenCV's BGR2GRAY conversion.
const (
	lumaR = 0.299
	lumaG = 0.587
	lumaB = 0.114
)

// Grayscale converts img to 8-bit intensity with ITU-R BT.601 weights. The
// result is anchored at the origin.
func Grayscale(img image.Image) *image.Gray {
	return GrayOf(effect.GrayscaleWithWeights(img, lumaR, lumaG, lumaB))
}

// GrayOf narrows an image whose channels are already equal to a
// single-channel image anchored at the origin. Equal-channel pixels convert
// without loss.
func GrayOf(img image.Image) *image.Gray {
	b := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}
