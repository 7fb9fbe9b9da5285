package html

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeTree() *Node {
	// <div id="parent"><span>hello</span><p>world</p></div>
	parent := NewElement("div")
	parent.SetAttribute("id", "parent")
	span := NewElement("span")
	span.AppendText("hello")
	parent.AddChild(span)

	p := NewElement("p")
	p.AppendText("world")
	parent.AddChild(p)

	return parent
}

func TestRemoveChild(t *testing.T) {
	parent := makeTree()
	span := parent.Children[0]
	removed := parent.RemoveChild(span)
	require.Same(t, span, removed)
	assert.Nil(t, span.Parent)
	require.Len(t, parent.Children, 1)
	assert.Equal(t, "p", parent.Children[0].TagName)
}

func TestRemoveChildNotFound(t *testing.T) {
	parent := makeTree()
	assert.Nil(t, parent.RemoveChild(NewElement("em")))
}

func TestInsertBefore(t *testing.T) {
	parent := makeTree()
	em := NewElement("em")
	parent.InsertBefore(em, parent.Children[1])
	require.Len(t, parent.Children, 3)
	assert.Same(t, em, parent.Children[1])
	assert.Same(t, parent, em.Parent)
}

func TestInsertBeforeReparent(t *testing.T) {
	a := makeTree()
	b := makeTree()
	span := a.Children[0]
	b.InsertBefore(span, b.Children[0])
	assert.Len(t, a.Children, 1)
	assert.Len(t, b.Children, 3)
	assert.Same(t, b, span.Parent)
}

func TestMutationBumpsVersion(t *testing.T) {
	doc := NewDocument()
	v := doc.Version()
	div := doc.CreateElement("div")
	doc.Body().AddChild(div)
	assert.Greater(t, doc.Version(), v)

	v = doc.Version()
	div.SetAttribute("class", "x")
	assert.Greater(t, doc.Version(), v)

	v = doc.Version()
	div.RemoveAttribute("missing")
	assert.Equal(t, v, doc.Version())
}

func TestIsConnected(t *testing.T) {
	doc := NewDocument()
	div := doc.CreateElement("div")
	assert.False(t, div.IsConnected())
	doc.Body().AddChild(div)
	assert.True(t, div.IsConnected())

	sr, err := div.AttachShadow(ShadowRootInit{Mode: ShadowRootOpen})
	require.NoError(t, err)
	inner := doc.CreateElement("span")
	sr.Root.AddChild(inner)
	assert.True(t, inner.IsConnected())

	div.Remove()
	assert.False(t, inner.IsConnected())
}

func TestPath(t *testing.T) {
	doc, err := Parse(`<ul><li>a</li><li id="b">b</li></ul>`)
	require.NoError(t, err)
	li := doc.GetElementByID("b")
	require.NotNil(t, li)
	assert.Equal(t, "html>body[1]>ul>li[1]", li.Path())
}

func TestContains(t *testing.T) {
	parent := makeTree()
	span := parent.Children[0]
	assert.True(t, parent.Contains(parent))
	assert.True(t, parent.Contains(span))
	assert.True(t, parent.Contains(span.Children[0]))
	assert.False(t, parent.Contains(NewElement("em")))
}

func TestIndexInParent(t *testing.T) {
	parent := makeTree()
	assert.Equal(t, -1, parent.IndexInParent())
	assert.Equal(t, 0, parent.Children[0].IndexInParent())
	assert.Equal(t, 1, parent.Children[1].IndexInParent())
}

func TestSerialize(t *testing.T) {
	parent := makeTree()
	assert.Equal(t, "<span>hello</span><p>world</p>", parent.Serialize())
	assert.Equal(t, `<div id="parent"><span>hello</span><p>world</p></div>`, parent.SerializeOuter())
}

func TestSerializeVoidAndEscaping(t *testing.T) {
	n := NewElement("div")
	img := NewElement("img")
	img.SetAttribute("alt", `a "b" <c>`)
	n.AddChild(img)
	n.AppendText("1 < 2 & 3")
	assert.Equal(t, `<img alt="a &quot;b&quot; &lt;c&gt;">1 &lt; 2 &amp; 3`, n.Serialize())
}

func TestDocumentTitle(t *testing.T) {
	doc, err := Parse("<title>  Quarterly\n report </title><p>x</p>")
	require.NoError(t, err)
	assert.Equal(t, "Quarterly report", doc.Title())

	doc.SetTitle("Print")
	assert.Equal(t, "Print", doc.Title())

	empty := NewDocument()
	empty.SetTitle("Fresh")
	assert.Equal(t, "Fresh", empty.Title())
}

func TestImportNodeDeep(t *testing.T) {
	src, err := Parse(`<div id="a" style="color: red"><input id="i" value="v"><canvas id="c" width="4" height="2"></canvas></div>`)
	require.NoError(t, err)
	input := src.GetElementByID("i")
	input.SetValue("typed")
	input.SetChecked(true)
	input.SetScroll(3, 4)

	dst := NewDocument()
	copied := dst.ImportNode(src.GetElementByID("a"), true)
	assert.Same(t, dst, copied.OwnerDocument())
	assert.Equal(t, "color: red", copied.Attr("style"))
	require.Len(t, copied.ElementChildren(), 2)

	ci := copied.ElementChildren()[0]
	assert.Equal(t, "v", ci.Value(), "live value is not imported")
	assert.False(t, ci.Checked())
	assert.Zero(t, ci.ScrollTop())
	assert.Same(t, dst, ci.OwnerDocument())

	cc := copied.ElementChildren()[1]
	w, h := cc.CanvasSize()
	assert.Equal(t, 4, w)
	assert.Equal(t, 2, h)

	shallow := dst.ImportNode(src.GetElementByID("a"), false)
	assert.Empty(t, shallow.Children)
}

func TestImportNodeShadowRoots(t *testing.T) {
	src := NewDocument()
	host := src.CreateElement("x-a")
	src.Body().AddChild(host)
	sr, err := host.AttachShadow(ShadowRootInit{Mode: ShadowRootOpen, DelegatesFocus: true, Clonable: true})
	require.NoError(t, err)
	sr.Root.AddChild(src.CreateElement("b"))

	plain := src.CreateElement("x-b")
	src.Body().AddChild(plain)
	_, err = plain.AttachShadow(ShadowRootInit{Mode: ShadowRootOpen})
	require.NoError(t, err)

	dst := NewDocument()
	ch := dst.ImportNode(host, true)
	csr := ch.OpenShadowRoot()
	require.NotNil(t, csr)
	assert.True(t, csr.DelegatesFocus)
	require.Len(t, csr.Root.Children, 1)
	assert.Equal(t, "b", csr.Root.Children[0].TagName)
	assert.Same(t, ch, csr.Host())

	assert.Nil(t, dst.ImportNode(plain, true).AttachedShadowRoot())
}
