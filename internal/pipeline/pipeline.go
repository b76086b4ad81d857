package pipeline

import (
	"context"
	"fmt"
	"image"

	"github.com/ironsheep/cardscan/internal/detection"
	"github.com/ironsheep/cardscan/internal/imaging"
	"github.com/ironsheep/cardscan/internal/matching"
)

// Recognizer finds and labels the cards of a scene.
type Recognizer interface {
	Recognize(ctx context.Context, scene *imaging.Scene) ([]Detection, error)
}

// Pipeline is the native Recognizer. It is safe for concurrent use.
type Pipeline struct {
	extractor *detection.Extractor
	ranks     *matching.Matcher
	suits     *matching.Matcher
}

var _ Recognizer = (*Pipeline)(nil)

// New builds a pipeline over an extractor and a template set. Both matchers
// share floor.
func New(extractor *detection.Extractor, set *matching.TemplateSet, floor float64) (*Pipeline, error) {
	ranks, err := matching.NewRankMatcher(set, floor)
	if err != nil {
		return nil, err
	}
	suits, err := matching.NewSuitMatcher(set, floor)
	if err != nil {
		return nil, err
	}
	return &Pipeline{extractor: extractor, ranks: ranks, suits: suits}, nil
}

// Extract returns the card candidates of scene without matching them.
func (p *Pipeline) Extract(scene *imaging.Scene) (*detection.Extraction, error) {
	if scene == nil {
		return nil, ErrNilScene
	}
	return p.extractor.Extract(scene.Gray, scene.Color)
}

// Recognize extracts every card of scene and labels it. Detections come in
// descending contour-area order. ctx is checked between candidates.
func (p *Pipeline) Recognize(ctx context.Context, scene *imaging.Scene) ([]Detection, error) {
	ext, err := p.Extract(scene)
	if err != nil {
		return nil, err
	}

	size := scene.Bounds().Size()
	dets := make([]Detection, 0, len(ext.Candidates))
	for i := range ext.Candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		c := &ext.Candidates[i]
		m, err := p.MatchWarp(c.Warp)
		if err != nil {
			return nil, fmt.Errorf("candidate %d: %w", i, err)
		}
		dets = append(dets, NewDetection(i, c, m, size))
	}
	return dets, nil
}

// MatchWarp labels both corner regions of a canonical card image.
func (p *Pipeline) MatchWarp(warp *image.Gray) (CornerMatches, error) {
	primary, secondary, err := CornerRegions(warp)
	if err != nil {
		return CornerMatches{}, err
	}
	return CornerMatches{
		PrimarySuit:   p.suits.Match(primary),
		PrimaryRank:   p.ranks.Match(primary),
		SecondarySuit: p.suits.Match(secondary),
		SecondaryRank: p.ranks.Match(secondary),
	}, nil
}

// MatchRegion labels an arbitrary region with both matchers.
func (p *Pipeline) MatchRegion(region *image.Gray) (suit, rank matching.Result) {
	return p.suits.Match(region), p.ranks.Match(region)
}

// CornerRegions cuts the primary region out of warp, and the secondary
// region rotated by 180 degrees.
func CornerRegions(warp *image.Gray) (primary, secondary *image.Gray, err error) {
	b := warp.Bounds()
	primary, err = imaging.CropGray(warp, PrimaryRegion.Add(b.Min))
	if err != nil {
		return nil, nil, fmt.Errorf("primary corner: %w", err)
	}
	sec, err := imaging.CropGray(warp, SecondaryRegion.Add(b.Min))
	if err != nil {
		return nil, nil, fmt.Errorf("secondary corner: %w", err)
	}
	return primary, imaging.Rotate180Gray(sec), nil
}
