package matching

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/cardscan/pkg/logger"
)

// Corner region size that every template has to fit inside.
const (
	DefaultMaxWidth  = 70
	DefaultMaxHeight = 150
)

// StoreOptions controls LoadStore.
type StoreOptions struct {
	// Ext is the template file extension including the dot. Default ".JPG".
	Ext string

	// Lenient drops missing or unreadable templates with a warning instead
	// of failing the load.
	Lenient bool

	// MaxWidth and MaxHeight bound the template size. Zero means the corner
	// region size.
	MaxWidth  int
	MaxHeight int

	// Logger receives lenient-mode warnings. Nil discards them.
	Logger logger.Logger
}

func (o StoreOptions) withDefaults() StoreOptions {
	if o.Ext == "" {
		o.Ext = ".JPG"
	}
	if o.MaxWidth <= 0 {
		o.MaxWidth = DefaultMaxWidth
	}
	if o.MaxHeight <= 0 {
		o.MaxHeight = DefaultMaxHeight
	}
	if o.Logger == nil {
		o.Logger = logger.Nop()
	}
	return o
}

// TemplatePath returns where the store keeps the template of kind k, label
// and variant under dir.
func TemplatePath(dir string, k Kind, label string, variant int, ext string) string {
	return filepath.Join(dir, k.String(), fmt.Sprintf("%s_%d%s", label, variant, ext))
}

// LoadStore reads the template library under dir:
//
//	<dir>/rank/<1..13>_<0|1><ext>
//	<dir>/suit/<c|d|h|s>_<0|1><ext>
//
// Images are converted to 8-bit gray. A missing, unreadable or oversized
// template fails the load unless opts.Lenient is set, in which case the slot
// is skipped.
func LoadStore(dir string, opts StoreOptions) (*TemplateSet, error) {
	opts = opts.withDefaults()
	if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
		return nil, fmt.Errorf("%w: template directory %s", ErrTemplateMissing, dir)
	}

	set := &TemplateSet{}
	var err error
	if set.Ranks, err = loadKind(dir, Rank, RankLabels, opts); err != nil {
		return nil, err
	}
	if set.Suits, err = loadKind(dir, Suit, SuitLabels, opts); err != nil {
		return nil, err
	}
	if len(set.Ranks) == 0 || len(set.Suits) == 0 {
		return nil, fmt.Errorf("%w: %d rank and %d suit templates in %s",
			ErrNoTemplates, len(set.Ranks), len(set.Suits), dir)
	}
	return set, nil
}

func loadKind(dir string, k Kind, labels []string, opts StoreOptions) ([]*Template, error) {
	out := make([]*Template, 0, len(labels)*Variants)
	for _, label := range labels {
		for v := 0; v < Variants; v++ {
			path := TemplatePath(dir, k, label, v, opts.Ext)
			t, err := loadTemplate(path, k, label, v, opts)
			if err != nil {
				if opts.Lenient && !errors.Is(err, ErrEmptyTemplate) {
					opts.Logger.Warn(context.Background(), "skipping template",
						logger.String("path", path), logger.Error(err))
					continue
				}
				return nil, err
			}
			out = append(out, t)
		}
	}
	return out, nil
}

func loadTemplate(path string, k Kind, label string, variant int, opts StoreOptions) (*Template, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrTemplateMissing, path, err)
	}

	gray := grayOf(img)
	size := gray.Bounds().Size()
	if size.X > opts.MaxWidth || size.Y > opts.MaxHeight {
		return nil, fmt.Errorf("%w: %s is %dx%d, limit %dx%d",
			ErrTemplateTooLarge, path, size.X, size.Y, opts.MaxWidth, opts.MaxHeight)
	}
	return NewTemplate(k, label, variant, gray)
}

// grayOf converts img to 8-bit gray anchored at the origin.
func grayOf(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok && g.Rect.Min == (image.Point{}) {
		return g
	}
	b := img.Bounds()
	g := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(g, g.Bounds(), img, b.Min, draw.Src)
	return g
}
