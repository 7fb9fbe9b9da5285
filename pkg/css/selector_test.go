package css

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSelector_Compound(t *testing.T) {
	sel, err := ParseSelector(`div#main.a.b[data-x="1"]:first-child`)
	require.NoError(t, err)
	require.Len(t, sel.Parts, 1)
	part := sel.Parts[0]
	assert.Equal(t, "div", part.Element)
	assert.Equal(t, "main", part.ID)
	assert.Equal(t, []string{"a", "b"}, part.Classes)
	require.Len(t, part.Attributes, 1)
	assert.Equal(t, AttributeSelector{Name: "data-x", Operator: "=", Value: "1"}, part.Attributes[0])
	require.Len(t, part.PseudoClasses, 1)
	assert.Equal(t, "first-child", part.PseudoClasses[0].Name)
	assert.Equal(t, Specificity{1, 4, 1}, sel.Specificity)
}

func TestParseSelector_Combinators(t *testing.T) {
	sel, err := ParseSelector("ul > li + li ~ span em")
	require.NoError(t, err)
	require.Len(t, sel.Parts, 5)
	assert.Equal(t, []Combinator{ChildCombinator, AdjacentSiblingCombinator, GeneralSiblingCombinator, DescendantCombinator}, sel.Combinators)
}

func TestParseSelector_PseudoElements(t *testing.T) {
	tests := []struct {
		in     string
		pseudo string
		part   string
		spec   Specificity
	}{
		{"p::before", "before", "", Specificity{0, 0, 2}},
		{"p:after", "after", "", Specificity{0, 0, 2}},
		{"li::marker", "marker", "", Specificity{0, 0, 2}},
		{"input::placeholder", "placeholder", "", Specificity{0, 0, 2}},
		{"x-card::part(label)", "part", "label", Specificity{0, 0, 2}},
		{`[data-print-id="3"]::first-letter`, "first-letter", "", Specificity{0, 1, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			sel, err := ParseSelector(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.pseudo, sel.PseudoElement)
			assert.Equal(t, tt.part, sel.PartName)
			assert.Equal(t, tt.spec, sel.Specificity)
		})
	}
}

func TestParseSelector_Invalid(t *testing.T) {
	for _, in := range []string{"", "}", "[attr", "div >", "p::before span", "a..b", "::part()"} {
		_, err := ParseSelector(in)
		assert.Error(t, err, in)
	}
}

func TestParseSelector_FunctionalPseudoClasses(t *testing.T) {
	sel, err := ParseSelector(":host(.dark) .x:not(#a, .b)")
	require.NoError(t, err)
	require.Len(t, sel.Parts, 2)
	assert.True(t, sel.Parts[0].HasHost())
	require.Len(t, sel.Parts[1].PseudoClasses, 1)
	assert.Len(t, sel.Parts[1].PseudoClasses[0].Args, 2)
	// :host(.dark) = (0,2,0), .x = (0,1,0), :not(#a,.b) takes #a = (1,0,0)
	assert.Equal(t, Specificity{1, 3, 0}, sel.Specificity)
}

func TestParseSelectorList(t *testing.T) {
	sels, err := ParseSelectorList(`a, b[title="x,y"], :is(c, d)`)
	require.NoError(t, err)
	require.Len(t, sels, 3)
	assert.Equal(t, `b[title="x,y"]`, sels[1].Raw)
}
