package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Mark is one detection to draw onto a scene.
type Mark struct {
	// Outline is the closed boundary to trace, in scene coordinates.
	Outline []image.Point

	// Anchor is where the label text starts. The text sits just above it.
	Anchor image.Point

	// Label is the text to render, e.g. "h7".
	Label string
}

// Annotator draws detection outlines and labels onto a copy of a scene.
type Annotator struct {
	OutlineColor color.RGBA
	LabelColor   color.RGBA

	// Thickness is the outline stroke width in pixels.
	Thickness int

	// Scale is the size in pixels of one glyph cell of the bitmap font.
	Scale int
}

// NewAnnotator builds an annotator from hex colors ("#RRGGBB", "#RGB" or
// "#RRGGBBAA") and a label scale.
func NewAnnotator(outlineHex, labelHex string, scale int) (*Annotator, error) {
	outline, err := ParseHexColor(outlineHex)
	if err != nil {
		return nil, fmt.Errorf("outline color: %w", err)
	}
	label, err := ParseHexColor(labelHex)
	if err != nil {
		return nil, fmt.Errorf("label color: %w", err)
	}
	if scale < 1 {
		scale = 1
	}
	return &Annotator{
		OutlineColor: outline,
		LabelColor:   label,
		Thickness:    3,
		Scale:        scale,
	}, nil
}

// Annotate returns a copy of img with every mark drawn on it.
func (a *Annotator) Annotate(img image.Image, marks []Mark) *image.RGBA {
	bounds := img.Bounds()
	result := image.NewRGBA(bounds)
	draw.Draw(result, bounds, img, bounds.Min, draw.Src)

	for _, m := range marks {
		drawPolyline(result, m.Outline, a.OutlineColor, a.Thickness)
	}
	// Labels go on top of every outline.
	for _, m := range marks {
		if m.Label == "" {
			continue
		}
		y := m.Anchor.Y - (glyphRows+1)*a.Scale
		drawLabel(result, m.Anchor.X, y, m.Label, a.LabelColor, color.RGBA{}, a.Scale)
	}
	return result
}

// ParseHexColor parses a hex color string like "#FF0000", "#F00" or "#FF000080".
// The leading '#' is optional.
func ParseHexColor(hex string) (color.RGBA, error) {
	hex = strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(hex) == 0 {
		return color.RGBA{}, fmt.Errorf("empty color string")
	}

	var a uint8 = 255
	switch len(hex) {
	case 3, 6:
	case 8:
		val, err := strconv.ParseUint(hex[6:], 16, 8)
		if err != nil {
			return color.RGBA{}, err
		}
		a = uint8(val)
		hex = hex[:6]
	default:
		return color.RGBA{}, fmt.Errorf("invalid hex color length")
	}

	c, err := colorful.Hex("#" + strings.ToLower(hex))
	if err != nil {
		return color.RGBA{}, err
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: a}, nil
}

// drawPolyline strokes the closed polygon pts.
func drawPolyline(img *image.RGBA, pts []image.Point, c color.RGBA, thickness int) {
	if len(pts) == 0 {
		return
	}
	if len(pts) == 1 {
		stamp(img, pts[0].X, pts[0].Y, c, thickness)
		return
	}
	for i := range pts {
		p, q := pts[i], pts[(i+1)%len(pts)]
		drawLine(img, p.X, p.Y, q.X, q.Y, c, thickness)
	}
}

// drawLine walks from (x0,y0) to (x1,y1) with Bresenham's algorithm.
func drawLine(img *image.RGBA, x0, y0, x1, y1 int, c color.RGBA, thickness int) {
	dx := absInt(x1 - x0)
	dy := -absInt(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		stamp(img, x0, y0, c, thickness)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

// stamp paints a size x size square centred on (x, y), clipped to img.
func stamp(img *image.RGBA, x, y int, c color.RGBA, size int) {
	if size < 1 {
		size = 1
	}
	off := (size - 1) / 2
	fillRect(img, image.Rect(x-off, y-off, x-off+size, y-off+size), c)
}

func fillRect(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	r = r.Intersect(img.Bounds())
	for py := r.Min.Y; py < r.Max.Y; py++ {
		for px := r.Min.X; px < r.Max.X; px++ {
			img.SetRGBA(px, py, c)
		}
	}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

const (
	glyphCols = 3
	glyphRows = 5
)

// Simple 3x5 pixel font covering digits, suit letters and "Unknown".
var glyphs = map[rune][glyphRows]string{
	'0': {"111", "101", "101", "101", "111"},
	'1': {"010", "110", "010", "010", "111"},
	'2': {"111", "001", "111", "100", "111"},
	'3': {"111", "001", "111", "001", "111"},
	'4': {"101", "101", "111", "001", "001"},
	'5': {"111", "100", "111", "001", "111"},
	'6': {"111", "100", "111", "101", "111"},
	'7': {"111", "001", "001", "001", "001"},
	'8': {"111", "101", "111", "101", "111"},
	'9': {"111", "101", "111", "001", "111"},
	',': {"000", "000", "000", "010", "010"},
	'c': {"000", "111", "100", "100", "111"},
	'd': {"001", "001", "111", "101", "111"},
	'h': {"100", "100", "111", "101", "101"},
	's': {"000", "011", "100", "001", "110"},
	'k': {"100", "101", "110", "101", "101"},
	'n': {"000", "110", "101", "101", "101"},
	'o': {"000", "111", "101", "101", "111"},
	'w': {"000", "101", "101", "111", "101"},
	'U': {"101", "101", "101", "101", "111"},
}

// drawLabel draws text with its top-left at (x, y). Each font pixel becomes a
// scale x scale block. A zero-alpha bg leaves the background untouched.
func drawLabel(img *image.RGBA, x, y int, text string, fg, bg color.RGBA, scale int) {
	if scale < 1 {
		scale = 1
	}
	charWidth := (glyphCols + 1) * scale

	if bg.A != 0 {
		w := len([]rune(text)) * charWidth
		fillRect(img, image.Rect(x-scale, y-scale, x+w, y+(glyphRows+1)*scale), bg)
	}

	cx := x
	for _, ch := range text {
		glyph, ok := glyphs[ch]
		if !ok {
			cx += charWidth
			continue
		}
		for row, line := range glyph {
			for col, pixel := range line {
				if pixel != '1' {
					continue
				}
				px, py := cx+col*scale, y+row*scale
				fillRect(img, image.Rect(px, py, px+scale, py+scale), fg)
			}
		}
		cx += charWidth
	}
}
