package clone

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lightprint/pkg/html"
)

func TestShadow_RebuildsOpenRoot(t *testing.T) {
	c, src := newContext(t, `<html><head><style>#host::part(label) { color: green }</style></head>
		<body><div id="host"><template shadowrootmode="open" shadowrootdelegatesfocus>
			<style>p { margin: 0 }</style>
			<p part="label">hi</p>
			<input id="in">
		</template></div></body></html>`)
	host := src.GetElementByID("host")
	srcRoot := host.OpenShadowRoot()
	require.NotNil(t, srcRoot)
	srcRoot.AdoptedStyleSheets = append(srcRoot.AdoptedStyleSheets,
		html.NewConstructedSheet("input { width: 40px }"))
	srcRoot.Root.ElementChildren()[2].SetValue("typed")

	cp := printCopy(t, c, host)

	dst := cp.AttachedShadowRoot()
	require.NotNil(t, dst)
	assert.Equal(t, html.ShadowRootOpen, dst.Mode)
	assert.True(t, dst.DelegatesFocus)
	require.Len(t, dst.AdoptedStyleSheets, 1)
	assert.Contains(t, dst.AdoptedStyleSheets[0].Text(), "width: 40px")
	assert.Equal(t, 1, c.Stats().ShadowRoots)

	kids := dst.Root.ElementChildren()
	require.Len(t, kids, 4)
	p, input, sheet := kids[1], kids[2], kids[3]
	assert.Equal(t, "typed", input.Value())

	assert.Equal(t, "style", sheet.TagName, "the shadow tree gets its own style node")
	rule := `[` + IDAttribute + `="` + p.Attr(IDAttribute) + `"]{`
	assert.Contains(t, sheet.TextContent(), rule)
	assert.Equal(t, "rgb(0, 128, 0)", computedValue(t, c.target, p, "color"))
	assert.Equal(t, "40px", computedValue(t, c.target, input, "width"))
	assert.False(t, input.HasAttribute(IDAttribute), "adopted rules already apply to the copy")

	head := c.doc.Head()
	for _, n := range head.ElementChildren() {
		assert.NotContains(t, n.TextContent(), "rgb(0, 128, 0)")
	}
}

func TestShadow_ClonableRootKeptFromImport(t *testing.T) {
	c, src := newContext(t, `<body><div id="host"><template shadowrootmode="open" shadowrootclonable>
		<p>inside</p>
	</template></div></body>`)
	host := src.GetElementByID("host")
	host.OpenShadowRoot().AdoptedStyleSheets = []*html.ConstructedSheet{
		html.NewConstructedSheet("p { color: red }\np { margin: 0 }"),
	}

	cp := printCopy(t, c, host)

	dst := cp.AttachedShadowRoot()
	require.NotNil(t, dst)
	assert.True(t, dst.Clonable)
	assert.Zero(t, c.Stats().ShadowRoots)
	require.Len(t, dst.AdoptedStyleSheets, 1)
	assert.Equal(t, []string{"p { color: red }", "p { margin: 0 }"}, dst.AdoptedStyleSheets[0].CSSRules())
	p := dst.Root.ElementChildren()[0]
	assert.Equal(t, "rgb(255, 0, 0)", computedValue(t, c.target, p, "color"))
}

func TestShadow_ClosedRootSkipped(t *testing.T) {
	c, src := newContext(t, `<body><div id="host"><template shadowrootmode="closed">
		<p>secret</p>
	</template></div></body>`)
	cp := printCopy(t, c, src.GetElementByID("host"))

	assert.Nil(t, cp.AttachedShadowRoot())
	assert.Zero(t, c.Stats().ShadowRoots)
}

func TestShadow_NestedRoots(t *testing.T) {
	c, src := newContext(t, `<body><div id="outer"><template shadowrootmode="open">
		<section><template shadowrootmode="open"><b>deep</b></template></section>
	</template></div></body>`)
	cp := printCopy(t, c, src.GetElementByID("outer"))

	outer := cp.AttachedShadowRoot()
	require.NotNil(t, outer)
	section := outer.Root.ElementChildren()[0]
	inner := section.AttachedShadowRoot()
	require.NotNil(t, inner)
	assert.Equal(t, "b", inner.Root.ElementChildren()[0].TagName)
	assert.Equal(t, 2, c.Stats().ShadowRoots)
}
