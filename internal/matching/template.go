package matching

import (
	"fmt"
	"image"
	"strconv"
)

// Kind tells rank templates from suit templates.
type Kind int

const (
	Rank Kind = iota
	Suit
)

func (k Kind) String() string {
	switch k {
	case Rank:
		return "rank"
	case Suit:
		return "suit"
	default:
		return fmt.Sprintf("kind(%d)", k)
	}
}

// Variants is the number of reference images per label.
const Variants = 2

// SuitLabels lists the suit labels in matching order.
var SuitLabels = []string{"c", "d", "h", "s"}

// RankLabels lists the rank labels "1" to "13" in matching order.
var RankLabels = func() []string {
	labels := make([]string, 13)
	for i := range labels {
		labels[i] = strconv.Itoa(i + 1)
	}
	return labels
}()

// Template is an immutable labelled reference image.
type Template struct {
	Kind    Kind
	Label   string
	Variant int

	img      *image.Gray
	width    int
	height   int
	centered []float64
	norm     float64
}

// NewTemplate copies img and precomputes its zero-mean form.
func NewTemplate(kind Kind, label string, variant int, img *image.Gray) (*Template, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("%w: %s %s_%d", ErrEmptyTemplate, kind, label, variant)
	}

	own := image.NewGray(image.Rect(0, 0, w, h))
	var total float64
	for y := 0; y < h; y++ {
		copy(own.Pix[y*own.Stride:y*own.Stride+w], img.Pix[img.PixOffset(b.Min.X, b.Min.Y+y):])
		for x := 0; x < w; x++ {
			total += float64(own.Pix[y*own.Stride+x])
		}
	}

	mean := total / float64(w*h)
	centered := make([]float64, w*h)
	var norm float64
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := float64(own.Pix[y*own.Stride+x]) - mean
			centered[y*w+x] = v
			norm += v * v
		}
	}

	return &Template{
		Kind:     kind,
		Label:    label,
		Variant:  variant,
		img:      own,
		width:    w,
		height:   h,
		centered: centered,
		norm:     norm,
	}, nil
}

// Name returns the store file stem, e.g. "7_1" or "h_0".
func (t *Template) Name() string {
	return fmt.Sprintf("%s_%d", t.Label, t.Variant)
}

// Bounds returns the template size anchored at the origin.
func (t *Template) Bounds() image.Rectangle {
	return image.Rect(0, 0, t.width, t.height)
}

// Image returns a copy of the template pixels.
func (t *Template) Image() *image.Gray {
	cp := image.NewGray(t.img.Rect)
	copy(cp.Pix, t.img.Pix)
	return cp
}

// TemplateSet is the full template library. It must not be modified after
// construction.
type TemplateSet struct {
	Ranks []*Template
	Suits []*Template
}

// Of returns the templates of kind k.
func (s *TemplateSet) Of(k Kind) []*Template {
	if k == Suit {
		return s.Suits
	}
	return s.Ranks
}

// Len returns the number of templates of both kinds.
func (s *TemplateSet) Len() int {
	return len(s.Ranks) + len(s.Suits)
}

// Labels returns the distinct labels of kind k that have at least one template,
// in matching order.
func (s *TemplateSet) Labels(k Kind) []string {
	seen := make(map[string]bool)
	labels := make([]string, 0)
	for _, t := range s.Of(k) {
		if !seen[t.Label] {
			seen[t.Label] = true
			labels = append(labels, t.Label)
		}
	}
	return labels
}
