package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMatcher_NoTemplates(t *testing.T) {
	_, err := NewMatcher(Rank, nil, DefaultFloor)
	assert.ErrorIs(t, err, ErrNoTemplates)

	set := &TemplateSet{Suits: []*Template{mustTemplate(t, Suit, "c", 0, stripes(4, 4, true))}}
	_, err = NewRankMatcher(set, DefaultFloor)
	assert.ErrorIs(t, err, ErrNoTemplates)

	m, err := NewSuitMatcher(set, DefaultFloor)
	require.NoError(t, err)
	assert.Equal(t, Suit, m.Kind())
	assert.Equal(t, DefaultFloor, m.Floor())
}

func TestMatcher_PicksBestTemplate(t *testing.T) {
	set := &TemplateSet{Ranks: []*Template{
		mustTemplate(t, Rank, "1", 0, stripes(8, 8, false)),
		mustTemplate(t, Rank, "2", 0, stripes(8, 8, true)),
		mustTemplate(t, Rank, "3", 0, uniform(8, 8, 128)),
	}}
	m, err := NewRankMatcher(set, DefaultFloor)
	require.NoError(t, err)

	res := m.Match(stripes(20, 20, true))
	assert.Equal(t, "2", res.Label)
	assert.InDelta(t, 1.0, res.Score, 1e-9)
	assert.Equal(t, "2_0", res.Template)
	assert.True(t, res.Known())
}

func TestMatcher_Floor(t *testing.T) {
	set := &TemplateSet{Suits: []*Template{
		mustTemplate(t, Suit, "d", 0, stripes(8, 8, false)),
	}}

	t.Run("below floor", func(t *testing.T) {
		m, err := NewSuitMatcher(set, DefaultFloor)
		require.NoError(t, err)
		res := m.Match(stripes(20, 20, true))
		assert.Equal(t, UnknownResult(), res)
		assert.False(t, res.Known())
	})

	t.Run("floor is exclusive", func(t *testing.T) {
		m, err := NewSuitMatcher(set, 1.0)
		require.NoError(t, err)
		res := m.Match(stripes(20, 20, false))
		assert.Equal(t, Unknown, res.Label)
		assert.Equal(t, 0.0, res.Score)
	})
}

func TestMatcher_TieKeepsFirst(t *testing.T) {
	set := &TemplateSet{Ranks: []*Template{
		mustTemplate(t, Rank, "9", 0, stripes(6, 6, true)),
		mustTemplate(t, Rank, "9", 1, stripes(6, 6, true)),
		mustTemplate(t, Rank, "10", 0, stripes(6, 6, true)),
	}}
	m, err := NewRankMatcher(set, DefaultFloor)
	require.NoError(t, err)

	res := m.Match(stripes(12, 12, true))
	assert.Equal(t, "9", res.Label)
	assert.Equal(t, "9_0", res.Template)
}

func TestMatcher_SkipsOversizedTemplates(t *testing.T) {
	set := &TemplateSet{Ranks: []*Template{
		mustTemplate(t, Rank, "1", 0, stripes(30, 30, true)),
		mustTemplate(t, Rank, "2", 0, stripes(6, 6, true)),
	}}
	m, err := NewRankMatcher(set, DefaultFloor)
	require.NoError(t, err)

	assert.Equal(t, "2", m.Match(stripes(20, 20, true)).Label)
	assert.Equal(t, Unknown, m.Match(stripes(4, 4, true)).Label)
	assert.Equal(t, Unknown, m.Match(nil).Label)
}
