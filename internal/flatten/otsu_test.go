package flatten

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
)

func grayFromLevels(counts map[uint8]int) *image.Gray {
	n := 0
	for _, c := range counts {
		n += c
	}
	g := image.NewGray(image.Rect(0, 0, n, 1))
	i := 0
	for level := 0; level < 256; level++ {
		for k := 0; k < counts[uint8(level)]; k++ {
			g.Pix[i] = uint8(level)
			i++
		}
	}
	return g
}

func TestOtsuThreshold(t *testing.T) {
	tests := []struct {
		name   string
		counts map[uint8]int
		want   uint8
	}{
		{"uniform", map[uint8]int{90: 50}, 0},
		{"two levels picks lower", map[uint8]int{50: 40, 200: 60}, 50},
		{"black and white", map[uint8]int{0: 10, 255: 90}, 0},
		{"three levels", map[uint8]int{10: 100, 20: 100, 200: 100}, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OtsuThreshold(grayFromLevels(tt.counts)))
		})
	}
}

func TestBinarizeInv(t *testing.T) {
	g := &image.Gray{Pix: []uint8{0, 49, 50, 51, 255, 7}, Stride: 3, Rect: image.Rect(0, 0, 3, 2)}

	out := BinarizeInv(g, 50)

	assert.Equal(t, []uint8{255, 255, 255, 0, 0, 255}, out.Pix)
}

func TestBinarizeInv_SubImage(t *testing.T) {
	g := image.NewGray(image.Rect(0, 0, 4, 4))
	for i := range g.Pix {
		g.Pix[i] = uint8(i * 16)
	}
	sub := g.SubImage(image.Rect(1, 1, 3, 3)).(*image.Gray)

	out := BinarizeInv(sub, 90)

	// Source values 80, 96, 144, 160.
	assert.Equal(t, image.Rect(0, 0, 2, 2), out.Bounds())
	assert.Equal(t, []uint8{255, 0, 0, 0}, out.Pix)
}
