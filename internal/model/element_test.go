package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseElement(t *testing.T) {
	e, ok := ParseElement("thunder")
	require.True(t, ok)
	assert.Equal(t, ElementThunder, e)

	e, ok = ParseElement("  Frost ")
	require.True(t, ok)
	assert.Equal(t, ElementFrost, e)

	_, ok = ParseElement("lava")
	assert.False(t, ok)
}

func TestElementSet_Membership(t *testing.T) {
	s := NewElementSet(ElementFire, ElementVenom)

	assert.True(t, s.Has(ElementFire))
	assert.True(t, s.Has(ElementVenom))
	assert.False(t, s.Has(ElementWater))
	assert.Equal(t, 2, s.Len())

	assert.Zero(t, NewElementSet().Len())
}

func TestElementSet_WithIgnoresOutOfRange(t *testing.T) {
	s := NewElementSet(ElementWood)
	assert.Equal(t, s, s.With(Element(99)))
	assert.Equal(t, s, s.With(Element(-1)))
}

func TestElementSet_ElementsInEnumOrder(t *testing.T) {
	s := NewElementSet(ElementSound, ElementWood, ElementFrost)
	assert.Equal(t, []Element{ElementWood, ElementFrost, ElementSound}, s.Elements())
	assert.Equal(t, "wood,frost,sound", s.String())
}
