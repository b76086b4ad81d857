package detection

import (
	"image"

	"github.com/anthonynsimon/bild/blur"

	"github.com/ironsheep/cardscan/internal/geometry"
)

// Binarize blurs gray with a blurSize x blurSize box filter and thresholds it:
// pixels brighter than level become 255, the rest 0.
//
// A blurSize below 2 disables the blur. The result is anchored at the origin.
func Binarize(gray *image.Gray, blurSize int, level uint8) *image.Gray {
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))

	if blurSize < 2 {
		for y := 0; y < h; y++ {
			src := gray.Pix[gray.PixOffset(b.Min.X, b.Min.Y+y):]
			dst := out.Pix[y*out.Stride:]
			for x := 0; x < w; x++ {
				dst[x] = thresholdPixel(src[x], level)
			}
		}
		return out
	}

	blurred := blur.Box(gray, float64(blurSize-1)/2)
	bb := blurred.Bounds()
	for y := 0; y < h; y++ {
		src := blurred.Pix[blurred.PixOffset(bb.Min.X, bb.Min.Y+y):]
		dst := out.Pix[y*out.Stride:]
		for x := 0; x < w; x++ {
			// Channels are equal for a gray source; R carries the intensity.
			dst[x] = thresholdPixel(src[4*x], level)
		}
	}
	return out
}

func thresholdPixel(v, level uint8) uint8 {
	if v > level {
		return 255
	}
	return 0
}

// neighbours in counter-clockwise (on screen) order starting east.
var neighbours = [8]geometry.Point{
	{X: 1, Y: 0},   // E
	{X: 1, Y: -1},  // NE
	{X: 0, Y: -1},  // N
	{X: -1, Y: -1}, // NW
	{X: -1, Y: 0},  // W
	{X: -1, Y: 1},  // SW
	{X: 0, Y: 1},   // S
	{X: 1, Y: 1},   // SE
}

const dirWest = 4

// direction returns the index in neighbours of the step from a to b.
func direction(a, b geometry.Point) int {
	dx, dy := b.X-a.X, b.Y-a.Y
	for i, n := range neighbours {
		if n.X == dx && n.Y == dy {
			return i
		}
	}
	return -1
}

// binaryImage is a zero-origin foreground mask.
type binaryImage struct {
	w, h int
	pix  []uint8
}

func newBinaryImage(bin *image.Gray) *binaryImage {
	b := bin.Bounds()
	w, h := b.Dx(), b.Dy()
	pix := make([]uint8, w*h)
	for y := 0; y < h; y++ {
		copy(pix[y*w:(y+1)*w], bin.Pix[bin.PixOffset(b.Min.X, b.Min.Y+y):])
	}
	return &binaryImage{w: w, h: h, pix: pix}
}

// fg reports whether (x, y) is foreground. Pixels outside the image are background.
func (b *binaryImage) fg(x, y int) bool {
	if x < 0 || y < 0 || x >= b.w || y >= b.h {
		return false
	}
	return b.pix[y*b.w+x] != 0
}

// FindContours traces the outer border of every outermost foreground region
// of bin. Any non-zero pixel is foreground; foreground is 8-connected and
// background 4-connected. Regions sitting inside a hole of another region
// are skipped.
//
// Contours are returned in raster order of their starting pixel.
func FindContours(bin *image.Gray) []Contour {
	b := newBinaryImage(bin)
	if b.w == 0 || b.h == 0 {
		return nil
	}

	outside := b.outsideBackground()
	visited := make([]bool, b.w*b.h)
	contours := make([]Contour, 0)

	for y := 0; y < b.h; y++ {
		for x := 0; x < b.w; x++ {
			i := y*b.w + x
			if b.pix[i] == 0 || visited[i] {
				continue
			}
			b.floodFill(visited, x, y)

			// The first pixel met in raster order is the region's topmost-leftmost;
			// the pixel above it is background, and the region is outermost iff
			// that background reaches the image border.
			if y > 0 && !outside[i-b.w] {
				continue
			}
			contours = append(contours, b.traceBorder(geometry.Pt(x, y)))
		}
	}
	return contours
}

// outsideBackground marks every background pixel 4-connected to the image border.
func (b *binaryImage) outsideBackground() []bool {
	outside := make([]bool, b.w*b.h)
	stack := make([]int, 0, 2*(b.w+b.h))

	push := func(x, y int) {
		if x < 0 || y < 0 || x >= b.w || y >= b.h {
			return
		}
		i := y*b.w + x
		if b.pix[i] != 0 || outside[i] {
			return
		}
		outside[i] = true
		stack = append(stack, i)
	}

	for x := 0; x < b.w; x++ {
		push(x, 0)
		push(x, b.h-1)
	}
	for y := 0; y < b.h; y++ {
		push(0, y)
		push(b.w-1, y)
	}

	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		x, y := i%b.w, i/b.w
		push(x+1, y)
		push(x-1, y)
		push(x, y+1)
		push(x, y-1)
	}
	return outside
}

// floodFill marks the 8-connected foreground region containing (startX, startY).
//
// Uses a stack-based approach (not recursive) to avoid stack overflow on
// large regions.
func (b *binaryImage) floodFill(visited []bool, startX, startY int) {
	stack := []geometry.Point{{X: startX, Y: startY}}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !b.fg(p.X, p.Y) {
			continue
		}
		i := p.Y*b.w + p.X
		if visited[i] {
			continue
		}
		visited[i] = true

		for _, n := range neighbours {
			stack = append(stack, geometry.Point{X: p.X + n.X, Y: p.Y + n.Y})
		}
	}
}

// traceBorder follows the outer border of the region whose topmost-leftmost
// pixel is start.
//
// The second border pixel is found by searching clockwise from the west
// neighbour; from then on each step searches counter-clockwise starting just
// past the previous pixel. Tracing stops when the walk is about to leave the
// last pixel back onto start.
func (b *binaryImage) traceBorder(start geometry.Point) Contour {
	var last geometry.Point
	found := false
	for k := 0; k < 8; k++ {
		n := neighbours[(dirWest-k+8)%8]
		q := geometry.Point{X: start.X + n.X, Y: start.Y + n.Y}
		if b.fg(q.X, q.Y) {
			last, found = q, true
			break
		}
	}
	if !found {
		return Contour{start}
	}

	contour := make(Contour, 0, 64)
	prev, cur := last, start
	limit := 4*b.w*b.h + 8
	for step := 0; step < limit; step++ {
		contour = append(contour, cur)

		d := direction(cur, prev)
		next := prev
		for k := 1; k <= 8; k++ {
			n := neighbours[(d+k)%8]
			q := geometry.Point{X: cur.X + n.X, Y: cur.Y + n.Y}
			if b.fg(q.X, q.Y) {
				next = q
				break
			}
		}

		if cur == last && next == start {
			break
		}
		prev, cur = cur, next
	}
	return contour
}
