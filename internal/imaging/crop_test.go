package imaging

import (
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
)

// gradientGray returns a gray image whose pixel value encodes its position.
func gradientGray(width, height int) *image.Gray {
	g := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			g.SetGray(x, y, color.Gray{Y: uint8((x + 10*y) % 256)})
		}
	}
	return g
}

func TestCropGray(t *testing.T) {
	src := gradientGray(20, 20)

	out, err := CropGray(src, image.Rect(5, 3, 12, 9))
	if err != nil {
		t.Fatalf("CropGray failed: %v", err)
	}

	if out.Bounds() != image.Rect(0, 0, 7, 6) {
		t.Fatalf("bounds: got %v, want (0,0)-(7,6)", out.Bounds())
	}
	for y := 0; y < 6; y++ {
		for x := 0; x < 7; x++ {
			if got, want := out.GrayAt(x, y), src.GrayAt(x+5, y+3); got != want {
				t.Fatalf("pixel (%d,%d): got %d, want %d", x, y, got.Y, want.Y)
			}
		}
	}
}

func TestCropGray_InvalidRegion(t *testing.T) {
	src := gradientGray(20, 20)

	tests := []struct {
		name string
		r    image.Rectangle
	}{
		{"outside right", image.Rect(10, 0, 21, 5)},
		{"negative origin", image.Rect(-1, 0, 5, 5)},
		{"empty", image.Rect(5, 5, 5, 10)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := CropGray(src, tt.r); err == nil {
				t.Error("CropGray should fail for invalid region")
			}
		})
	}
}

func TestRotate180Gray(t *testing.T) {
	src := gradientGray(13, 7)

	out := Rotate180Gray(src)

	if out.Bounds() != src.Bounds() {
		t.Fatalf("bounds: got %v, want %v", out.Bounds(), src.Bounds())
	}
	for y := 0; y < 7; y++ {
		for x := 0; x < 13; x++ {
			if got, want := out.GrayAt(x, y), src.GrayAt(12-x, 6-y); got != want {
				t.Fatalf("pixel (%d,%d): got %d, want %d", x, y, got.Y, want.Y)
			}
		}
	}
}

func TestRotate180Gray_Twice(t *testing.T) {
	src := gradientGray(9, 4)

	out := Rotate180Gray(Rotate180Gray(src))

	for i := range src.Pix {
		if out.Pix[i] != src.Pix[i] {
			t.Fatalf("double rotation changed pixel %d: got %d, want %d", i, out.Pix[i], src.Pix[i])
		}
	}
}

func TestEncodePNG(t *testing.T) {
	src := gradientGray(40, 30)

	result, err := EncodePNG(src, 1.0)
	if err != nil {
		t.Fatalf("EncodePNG failed: %v", err)
	}

	if result.Width != 40 || result.Height != 30 {
		t.Errorf("dimensions: got %dx%d, want 40x30", result.Width, result.Height)
	}
	if result.MimeType != "image/png" {
		t.Errorf("MimeType: got %s, want image/png", result.MimeType)
	}

	decoded, err := base64.StdEncoding.DecodeString(result.ImageBase64)
	if err != nil {
		t.Fatalf("failed to decode base64: %v", err)
	}
	img, err := png.Decode(strings.NewReader(string(decoded)))
	if err != nil {
		t.Fatalf("failed to decode PNG: %v", err)
	}
	r, _, _, _ := img.At(7, 2).RGBA()
	if got, want := uint8(r>>8), src.GrayAt(7, 2).Y; got != want {
		t.Errorf("pixel (7,2): got %d, want %d", got, want)
	}
}

func TestEncodePNG_WithScale(t *testing.T) {
	src := gradientGray(40, 30)

	tests := []struct {
		scale        float64
		wantW, wantH int
	}{
		{2.0, 80, 60},
		{0.5, 20, 15},
		{0, 40, 30},
	}

	for _, tt := range tests {
		result, err := EncodePNG(src, tt.scale)
		if err != nil {
			t.Fatalf("EncodePNG(scale=%v) failed: %v", tt.scale, err)
		}
		if result.Width != tt.wantW || result.Height != tt.wantH {
			t.Errorf("scale %v: got %dx%d, want %dx%d", tt.scale, result.Width, result.Height, tt.wantW, tt.wantH)
		}
	}
}

func TestGrayscale_Weights(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 1))
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	img.SetNRGBA(1, 0, color.NRGBA{G: 255, A: 255})
	img.SetNRGBA(2, 0, color.NRGBA{B: 255, A: 255})
	img.SetNRGBA(3, 0, color.NRGBA{R: 200, G: 200, B: 200, A: 255})

	var g *image.Gray = Grayscale(img)

	tests := []struct {
		x    int
		want int
	}{
		{0, 76},  // 0.299 * 255
		{1, 150}, // 0.587 * 255
		{2, 29},  // 0.114 * 255
		{3, 200},
	}
	for _, tt := range tests {
		got := int(g.GrayAt(tt.x, 0).Y)
		if got < tt.want-1 || got > tt.want+1 {
			t.Errorf("pixel %d: got %d, want %d±1", tt.x, got, tt.want)
		}
	}
}

func TestGrayscale_OffOrigin(t *testing.T) {
	img := image.NewNRGBA(image.Rect(5, 7, 9, 10))
	img.SetNRGBA(5, 7, color.NRGBA{R: 255, G: 255, B: 255, A: 255})

	g := Grayscale(img)

	if g.Bounds() != image.Rect(0, 0, 4, 3) {
		t.Fatalf("bounds: got %v, want (0,0)-(4,3)", g.Bounds())
	}
	if v := g.GrayAt(0, 0).Y; v < 254 {
		t.Errorf("origin pixel: got %d, want white", v)
	}
}

func TestGrayOf_EqualChannels(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 1))
	src.SetRGBA(0, 0, color.RGBA{R: 37, G: 37, B: 37, A: 255})
	src.SetRGBA(1, 0, color.RGBA{R: 250, G: 250, B: 250, A: 255})

	g := GrayOf(src)

	if g.GrayAt(0, 0).Y != 37 || g.GrayAt(1, 0).Y != 250 {
		t.Errorf("got %d, %d; want 37, 250", g.GrayAt(0, 0).Y, g.GrayAt(1, 0).Y)
	}
}
