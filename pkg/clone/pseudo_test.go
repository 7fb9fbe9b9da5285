package clone

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPseudo_MarkerOnlyOnListItems(t *testing.T) {
	c, src := newContext(t, `<html><head><style>
		li::marker, div::marker { color: red }
	</style></head><body><div id="root">
		<ul><li id="li">a</li></ul>
		<div id="block">b</div>
	</div></body></html>`)
	cp := printCopy(t, c, src.GetElementByID("root"))

	rule, ok := ruleFor(c, byID(t, cp, "li"), "marker")
	require.True(t, ok)
	v, _ := rule.Get("color")
	assert.Equal(t, "rgb(255, 0, 0)", v)

	block := byID(t, cp, "block")
	_, ok = ruleFor(c, block, "marker")
	assert.False(t, ok)
	assert.False(t, block.HasAttribute(IDAttribute))
}

func TestPseudo_PlaceholderNeedsText(t *testing.T) {
	c, src := newContext(t, `<html><head><style>
		::placeholder { color: blue }
	</style></head><body><div id="root">
		<input id="named" placeholder="Name">
		<input id="empty" placeholder="  ">
		<input id="box" type="checkbox" placeholder="x">
		<textarea id="ta" placeholder="Notes"></textarea>
	</div></body></html>`)
	cp := printCopy(t, c, src.GetElementByID("root"))

	for id, want := range map[string]bool{"named": true, "empty": false, "box": false, "ta": true} {
		_, ok := ruleFor(c, byID(t, cp, id), "placeholder")
		assert.Equal(t, want, ok, id)
	}
}

func TestPseudo_BeforeAfterNeedContent(t *testing.T) {
	c, src := newContext(t, `<html><head><style>
		#q::before { content: "\201C"; color: gray }
		#q::after { color: red }
	</style></head><body><p id="q">quote</p></body></html>`)
	cp := printCopy(t, c, src.GetElementByID("q"))

	before, ok := ruleFor(c, cp, "before")
	require.True(t, ok)
	assert.True(t, before.Has("content"))
	assert.True(t, before.Has("color"))

	_, ok = ruleFor(c, cp, "after")
	assert.False(t, ok, "no box without content")
}

func TestPseudo_FirstLetterOnBlockContainers(t *testing.T) {
	c, src := newContext(t, `<html><head><style>
		p::first-letter, span::first-letter { font-size: 2em }
	</style></head><body><div id="root"><p id="p">drop</p><span id="s">inline</span></div></body></html>`)
	cp := printCopy(t, c, src.GetElementByID("root"))

	rule, ok := ruleFor(c, byID(t, cp, "p"), "first-letter")
	require.True(t, ok)
	v, _ := rule.Get("font-size")
	assert.Equal(t, "32px", v)

	_, ok = ruleFor(c, byID(t, cp, "s"), "first-letter")
	assert.False(t, ok)
}

func TestPseudo_Applies(t *testing.T) {
	c, src := newContext(t, `<body>
		<input id="file" type="file">
		<input id="text" type="text">
		<details id="d"><summary>s</summary></details>
	</body>`)
	applies := func(pseudo, id string) bool {
		n := src.GetElementByID(id)
		s, err := c.source.Computed(n, "")
		require.NoError(t, err)
		return pseudoApplies(pseudo, n, s)
	}

	assert.True(t, applies("file-selector-button", "file"))
	assert.False(t, applies("file-selector-button", "text"))
	assert.True(t, applies("details-content", "d"))
	assert.False(t, applies("details-content", "text"))
	assert.False(t, applies("placeholder", "text"), "no placeholder attribute")
	assert.True(t, applies("before", "text"))
}
