package pipeline

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ironsheep/cardscan/internal/detection"
	"github.com/ironsheep/cardscan/internal/imaging"
	"github.com/ironsheep/cardscan/internal/matching"
)

// Test font: 3x5 cells, drawn at glyphCell pixels per cell.
const glyphCell = 6

var testGlyphs = map[rune][5]string{
	'1': {"010", "110", "010", "010", "111"},
	'4': {"101", "101", "111", "001", "001"},
	'7': {"111", "001", "001", "001", "001"},
	'c': {"000", "111", "100", "100", "111"},
	'd': {"001", "001", "111", "101", "111"},
	'h': {"100", "100", "111", "101", "101"},
	's': {"000", "011", "100", "001", "110"},
}

// Card placement in the 1000x600 test scene.
var cardRect = image.Rect(400, 150, 600, 450)

func fill(img *image.NRGBA, r image.Rectangle, c color.NRGBA) {
	r = r.Intersect(img.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
}

var (
	black = color.NRGBA{A: 255}
	white = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
)

// drawGlyph paints ch with its top-left at (x, y).
func drawGlyph(img *image.NRGBA, ch rune, x, y int, c color.NRGBA) {
	for row, line := range testGlyphs[ch] {
		for col, px := range line {
			if px == '1' {
				fill(img, image.Rect(x+col*glyphCell, y+row*glyphCell, x+(col+1)*glyphCell, y+(row+1)*glyphCell), c)
			}
		}
	}
}

// cardScene is a white portrait card with a 7 above a heart in its top-left
// corner, on black.
func cardScene() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 1000, 600))
	fill(img, img.Bounds(), black)
	fill(img, cardRect, white)
	drawGlyph(img, '7', cardRect.Min.X+10, cardRect.Min.Y+10, black)
	drawGlyph(img, 'h', cardRect.Min.X+10, cardRect.Min.Y+60, black)
	return img
}

func uniformScene(c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 1000, 600))
	fill(img, img.Bounds(), c)
	return img
}

// pentagonScene holds a white regular pentagon inside the card area band.
func pentagonScene() *image.NRGBA {
	img := uniformScene(black)
	cx, cy, r := 500.0, 300.0, 150.0
	var vx, vy [5]float64
	for i := 0; i < 5; i++ {
		a := -math.Pi/2 + float64(i)*2*math.Pi/5
		vx[i], vy[i] = cx+r*math.Cos(a), cy+r*math.Sin(a)
	}
	for y := 0; y < 600; y++ {
		for x := 0; x < 1000; x++ {
			px, py := float64(x)+0.5, float64(y)+0.5
			inside := false
			for i, j := 0, 4; i < 5; j, i = i, i+1 {
				if (vy[i] > py) != (vy[j] > py) &&
					px < (vx[j]-vx[i])*(py-vy[i])/(vy[j]-vy[i])+vx[i] {
					inside = !inside
				}
			}
			if inside {
				img.SetNRGBA(x, y, white)
			}
		}
	}
	return img
}

// glyphTemplate renders ch as ink 255 on 0 with a 4 pixel margin, the way
// ink looks in a canonical card image.
func glyphTemplate(t *testing.T, kind matching.Kind, ch rune) *matching.Template {
	t.Helper()
	const margin = 4
	g := image.NewGray(image.Rect(0, 0, 3*glyphCell+2*margin, 5*glyphCell+2*margin))
	for row, line := range testGlyphs[ch] {
		for col, px := range line {
			if px != '1' {
				continue
			}
			for y := 0; y < glyphCell; y++ {
				for x := 0; x < glyphCell; x++ {
					g.SetGray(margin+col*glyphCell+x, margin+row*glyphCell+y, color.Gray{Y: 255})
				}
			}
		}
	}
	tpl, err := matching.NewTemplate(kind, string(ch), 0, g)
	require.NoError(t, err)
	return tpl
}

func testTemplates(t *testing.T) *matching.TemplateSet {
	t.Helper()
	set := &matching.TemplateSet{}
	for _, ch := range "147" {
		set.Ranks = append(set.Ranks, glyphTemplate(t, matching.Rank, ch))
	}
	for _, ch := range "cdhs" {
		set.Suits = append(set.Suits, glyphTemplate(t, matching.Suit, ch))
	}
	return set
}

func newTestPipeline(t *testing.T) *Pipeline {
	t.Helper()
	ext, err := detection.NewExtractor(detection.DefaultOptions())
	require.NoError(t, err)
	p, err := New(ext, testTemplates(t), matching.DefaultFloor)
	require.NoError(t, err)
	return p
}

func sceneOf(img image.Image) *imaging.Scene {
	return imaging.NewScene(img)
}
