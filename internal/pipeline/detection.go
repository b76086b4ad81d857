package pipeline

import (
	"image"

	"github.com/ironsheep/cardscan/internal/detection"
	"github.com/ironsheep/cardscan/internal/geometry"
	"github.com/ironsheep/cardscan/internal/matching"
)

// Corner regions in canonical card coordinates.
var (
	PrimaryRegion   = image.Rect(0, 0, 70, 150)
	SecondaryRegion = image.Rect(129, 149, 199, 299)
)

// CornerMatches holds the four per-region results behind one detection.
type CornerMatches struct {
	PrimarySuit   matching.Result `json:"primary_suit"`
	PrimaryRank   matching.Result `json:"primary_rank"`
	SecondarySuit matching.Result `json:"secondary_suit"`
	SecondaryRank matching.Result `json:"secondary_rank"`
}

// Suit returns the chosen suit result.
func (m CornerMatches) Suit() matching.Result {
	return Select(m.PrimarySuit, m.SecondarySuit)
}

// Rank returns the chosen rank result.
func (m CornerMatches) Rank() matching.Result {
	return Select(m.PrimaryRank, m.SecondaryRank)
}

// Select returns primary when it scores strictly higher than secondary, and
// secondary otherwise.
func Select(primary, secondary matching.Result) matching.Result {
	if primary.Score > secondary.Score {
		return primary
	}
	return secondary
}

// Box is an axis-aligned rectangle in scene pixels.
type Box struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Detection is one recognized card.
type Detection struct {
	// Index is the candidate's position in descending contour-area order.
	Index int `json:"index"`

	// Label is the suit label followed by the rank label, e.g. "h7".
	Label string `json:"label"`

	Suit    matching.Result `json:"suit"`
	Rank    matching.Result `json:"rank"`
	Corners CornerMatches   `json:"corners"`

	Box Box `json:"box"`

	// BoxNormalized is the box as [x1/W, y1/H, x2/W, y2/H] of the scene size.
	BoxNormalized [4]float64 `json:"box_normalized"`

	// Anchor is where the label is drawn: the box top-left.
	Anchor geometry.Point `json:"anchor"`

	Center geometry.Point   `json:"center"`
	Quad   geometry.Quad    `json:"quad"`
	Points []geometry.Point `json:"points"`
	Area   float64          `json:"area"`

	// Outline is the traced card border; it is drawn but not serialized.
	Outline detection.Contour `json:"-"`
}

// NewDetection assembles the detection of candidate c in a scene of the given
// size from its corner matches.
func NewDetection(index int, c *detection.Candidate, m CornerMatches, scene image.Point) Detection {
	suit, rank := m.Suit(), m.Rank()
	d := Detection{
		Index:   index,
		Label:   suit.Label + rank.Label,
		Suit:    suit,
		Rank:    rank,
		Corners: m,
		Box:     Box{X: c.Box.Min.X, Y: c.Box.Min.Y, Width: c.Box.Dx(), Height: c.Box.Dy()},
		Anchor:  geometry.Pt(c.Box.Min.X, c.Box.Min.Y),
		Center:  c.Center,
		Quad:    c.Quad,
		Points:  c.Corners,
		Area:    c.Area,
		Outline: c.Contour,
	}
	if scene.X > 0 && scene.Y > 0 {
		w, h := float64(scene.X), float64(scene.Y)
		d.BoxNormalized = [4]float64{
			float64(c.Box.Min.X) / w,
			float64(c.Box.Min.Y) / h,
			float64(c.Box.Max.X) / w,
			float64(c.Box.Max.Y) / h,
		}
	}
	return d
}
