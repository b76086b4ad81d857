package server

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/ironsheep/cardscan/internal/detection"
	"github.com/ironsheep/cardscan/internal/imaging"
	"github.com/ironsheep/cardscan/internal/matching"
	"github.com/ironsheep/cardscan/internal/pipeline"
)

// 3x5 test font drawn at glyphCell pixels per cell.
const glyphCell = 6

var testGlyphs = map[rune][5]string{
	'1': {"010", "110", "010", "010", "111"},
	'7': {"111", "001", "001", "001", "001"},
	'c': {"000", "111", "100", "100", "111"},
	'h': {"100", "100", "111", "101", "101"},
}

var cardRect = image.Rect(400, 150, 600, 450)

func fillRect(img *image.NRGBA, r image.Rectangle, c color.NRGBA) {
	r = r.Intersect(img.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
}

func drawGlyph(img *image.NRGBA, ch rune, x, y int) {
	ink := color.NRGBA{A: 255}
	for row, line := range testGlyphs[ch] {
		for col, px := range line {
			if px == '1' {
				fillRect(img, image.Rect(x+col*glyphCell, y+row*glyphCell, x+(col+1)*glyphCell, y+(row+1)*glyphCell), ink)
			}
		}
	}
}

// writePNG saves img into the test's temp dir and returns its path.
func writePNG(t *testing.T, name string, img image.Image) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return path
}

// createTestImageFile writes a uniform image and returns its path.
func createTestImageFile(t *testing.T, width, height int, c color.NRGBA) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	fillRect(img, img.Bounds(), c)
	return writePNG(t, "uniform.png", img)
}

// createCardScene writes a 1000x600 black scene holding one white seven of
// hearts and returns its path.
func createCardScene(t *testing.T) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 1000, 600))
	fillRect(img, img.Bounds(), color.NRGBA{A: 255})
	fillRect(img, cardRect, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	drawGlyph(img, '7', cardRect.Min.X+10, cardRect.Min.Y+10)
	drawGlyph(img, 'h', cardRect.Min.X+10, cardRect.Min.Y+60)
	return writePNG(t, "scene.png", img)
}

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
	if err != nil {
		t.Fatalf("failed to build template %q: %v", ch, err)
	}
	return tpl
}

func newTestPipeline(t *testing.T) *pipeline.Pipeline {
	t.Helper()
	set := &matching.TemplateSet{}
	for _, ch := range "17" {
		set.Ranks = append(set.Ranks, glyphTemplate(t, matching.Rank, ch))
	}
	for _, ch := range "ch" {
		set.Suits = append(set.Suits, glyphTemplate(t, matching.Suit, ch))
	}
	ext, err := detection.NewExtractor(detection.DefaultOptions())
	if err != nil {
		t.Fatalf("NewExtractor: %v", err)
	}
	p, err := pipeline.New(ext, set, matching.DefaultFloor)
	if err != nil {
		t.Fatalf("pipeline.New: %v", err)
	}
	return p
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	a, err := imaging.NewAnnotator("#00ff00", "#ff0000", 2)
	if err != nil {
		t.Fatalf("NewAnnotator: %v", err)
	}
	return New(newTestPipeline(t), WithAnnotator(a))
}
