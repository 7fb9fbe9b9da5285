package css

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lightprint/pkg/html"
)

func mustSelector(t *testing.T, s string) Selector {
	t.Helper()
	sel, err := ParseSelector(s)
	require.NoError(t, err)
	return sel
}

func TestMatchesSelector(t *testing.T) {
	doc, err := html.Parse(`<ul id="list" class="menu main"><li id="a" lang="en-US">one</li><li id="b" title="x y">two</li><li id="c"><em id="e">three</em></li></ul>`)
	require.NoError(t, err)
	a, b, c, e := doc.GetElementByID("a"), doc.GetElementByID("b"), doc.GetElementByID("c"), doc.GetElementByID("e")

	tests := []struct {
		sel  string
		node *html.Node
		want bool
	}{
		{"li", a, true},
		{"*", a, true},
		{"p", a, false},
		{"#a", a, true},
		{".menu.main", doc.GetElementByID("list"), true},
		{".menu.other", doc.GetElementByID("list"), false},
		{"ul > li", a, true},
		{"body > li", a, false},
		{"ul em", e, true},
		{"li + li", b, true},
		{"li + li", a, false},
		{"#a ~ #c", c, true},
		{"[lang|=en]", a, true},
		{"[title~=y]", b, true},
		{"[title^=x]", b, true},
		{"[title$=y]", b, true},
		{"[title*=' ']", b, true},
		{"[title=X i]", b, false},
		{"li:first-child", a, true},
		{"li:last-child", c, true},
		{"li:nth-child(2)", b, true},
		{"li:nth-child(odd)", c, true},
		{"li:not(#a)", a, false},
		{"li:is(#a, #b)", b, true},
		{"li:hover", a, false},
		{"li:unknown", a, false},
		{"em:only-child", e, true},
		{":root", doc.DocumentElement(), true},
	}
	for _, tt := range tests {
		t.Run(tt.sel, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchesSelector(tt.node, mustSelector(t, tt.sel)))
		})
	}
}

func TestMatchesSelector_FormState(t *testing.T) {
	doc, err := html.Parse(`<input id="cb" type="checkbox"><input id="t" placeholder="name">`)
	require.NoError(t, err)
	cb := doc.GetElementByID("cb")
	assert.False(t, MatchesSelector(cb, mustSelector(t, ":checked")))
	cb.SetChecked(true)
	assert.True(t, MatchesSelector(cb, mustSelector(t, ":checked")))

	txt := doc.GetElementByID("t")
	assert.True(t, MatchesSelector(txt, mustSelector(t, ":placeholder-shown")))
	txt.SetValue("bob")
	assert.False(t, MatchesSelector(txt, mustSelector(t, ":placeholder-shown")))
}

func TestMatchContext_ShadowScope(t *testing.T) {
	doc, err := html.Parse(`<div class="wrap"><x-card id="h" class="dark"><template shadowrootmode="open"><p class="in">x</p></template></x-card></div>`)
	require.NoError(t, err)
	host := doc.GetElementByID("h")
	inner := host.OpenShadowRoot().Root.ElementChildren()[0]
	mc := MatchContext{Host: host}

	assert.True(t, mc.Matches(host, mustSelector(t, ":host")))
	assert.True(t, mc.Matches(host, mustSelector(t, ":host(.dark)")))
	assert.False(t, mc.Matches(host, mustSelector(t, "x-card")), "host is featureless inside its own scope")
	assert.True(t, mc.Matches(inner, mustSelector(t, ":host > .in")))
	assert.False(t, mc.Matches(inner, mustSelector(t, ".wrap .in")), "selectors do not cross the shadow boundary")
	assert.False(t, MatchesSelector(host, mustSelector(t, ":host")))
}

func TestQuerySelector(t *testing.T) {
	doc, err := html.Parse(`<main><p>a</p><section id="s"><p class="x">b</p></section><p class="x">c</p></main>`)
	require.NoError(t, err)

	n, err := QuerySelector(doc.Root, "section .x, #none")
	require.NoError(t, err)
	require.NotNil(t, n)
	assert.Equal(t, "b", n.TextContent())

	n, err = QuerySelector(doc.Root, "p.x")
	require.NoError(t, err)
	assert.Equal(t, "b", n.TextContent(), "first in document order")

	n, err = QuerySelector(doc.Root, "article")
	require.NoError(t, err)
	assert.Nil(t, n)

	_, err = QuerySelector(doc.Root, "p[")
	assert.ErrorIs(t, err, ErrInvalidSelector)
	_, err = QuerySelector(doc.Root, " , ")
	assert.ErrorIs(t, err, ErrInvalidSelector)
}
