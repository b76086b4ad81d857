package matching

import (
	"fmt"
	"image"
)

// Unknown is the label reported when no template clears the floor.
const Unknown = "Unknown"

// DefaultFloor is the similarity a template must exceed to name a region.
const DefaultFloor = 0.5

// Result is the outcome of matching one region.
type Result struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`

	// Template is the winning template's file stem; empty for Unknown.
	Template string `json:"template,omitempty"`
}

// Known reports whether a template named the region.
func (r Result) Known() bool {
	return r.Label != Unknown
}

// UnknownResult is the result of a region no template clears.
func UnknownResult() Result {
	return Result{Label: Unknown}
}

// Matcher labels regions against one kind of template. It is safe for
// concurrent use.
type Matcher struct {
	kind      Kind
	floor     float64
	templates []*Template
}

// NewMatcher returns a matcher over the templates of kind k in set.
func NewMatcher(k Kind, set *TemplateSet, floor float64) (*Matcher, error) {
	if set == nil || len(set.Of(k)) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoTemplates, k)
	}
	return &Matcher{kind: k, floor: floor, templates: set.Of(k)}, nil
}

// NewRankMatcher returns a matcher over the rank templates of set.
func NewRankMatcher(set *TemplateSet, floor float64) (*Matcher, error) {
	return NewMatcher(Rank, set, floor)
}

// NewSuitMatcher returns a matcher over the suit templates of set.
func NewSuitMatcher(set *TemplateSet, floor float64) (*Matcher, error) {
	return NewMatcher(Suit, set, floor)
}

// Kind returns the template kind the matcher uses.
func (m *Matcher) Kind() Kind { return m.kind }

// Floor returns the similarity floor.
func (m *Matcher) Floor() float64 { return m.floor }

// Match returns the best template for region. Templates that do not fit
// inside region are skipped.
func (m *Matcher) Match(region *image.Gray) Result {
	res := UnknownResult()
	if region == nil {
		return res
	}

	best := 0.0
	for _, t := range m.templates {
		s, ok := MatchTemplate(region, t)
		if !ok {
			continue
		}
		if s.Score > m.floor && s.Score > best {
			best = s.Score
			res = Result{Label: t.Label, Score: s.Score, Template: t.Name()}
		}
	}
	return res
}
