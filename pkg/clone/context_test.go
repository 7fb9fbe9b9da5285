package clone

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lightprint/pkg/css"
	"lightprint/pkg/html"
	"lightprint/pkg/style"
)

func parse(t *testing.T, markup string) *html.Document {
	t.Helper()
	doc, err := html.Parse(markup)
	require.NoError(t, err)
	return doc
}

// newContext pairs a parsed source document with an empty target.
func newContext(t *testing.T, markup string, opts ...Option) (*Context, *html.Document) {
	t.Helper()
	src := parse(t, markup)
	return NewContext(style.NewView(src), style.NewView(html.NewDocument()), opts...), src
}

// printCopy imports src under the target body, traverses the pair and
// finalizes the context.
func printCopy(t *testing.T, c *Context, src *html.Node) *html.Node {
	t.Helper()
	require.NotNil(t, src)
	cp := c.doc.ImportNode(src, true)
	c.doc.Body().AddChild(cp)
	require.NoError(t, c.Traverse(cp, src))
	c.FlushTasks()
	c.MountStyle()
	return cp
}

func byID(t *testing.T, root *html.Node, id string) *html.Node {
	t.Helper()
	var found *html.Node
	root.Walk(func(n *html.Node) bool {
		if n.Attr("id") == id {
			found = n
			return false
		}
		return true
	})
	require.NotNil(t, found, "no element with id %q", id)
	return found
}

func computedValue(t *testing.T, v *style.View, n *html.Node, property string) string {
	t.Helper()
	s, err := v.Computed(n, "")
	require.NoError(t, err)
	return s.Value(property)
}

// ruleFor returns the declarations of the rule written for n.
func ruleFor(c *Context, n *html.Node, pseudo string) (css.Declarations, bool) {
	if c.styleNode == nil {
		return nil, false
	}
	prefix := `[` + IDAttribute + `="` + n.Attr(IDAttribute) + `"]`
	if pseudo != "" {
		prefix += "::" + pseudo
	}
	prefix += "{"
	for _, line := range strings.Split(c.styleNode.TextContent(), "\n") {
		if strings.HasPrefix(line, prefix) {
			return css.ParseDeclarations(strings.TrimSuffix(strings.TrimPrefix(line, prefix), "}")), true
		}
	}
	return nil, false
}

func TestContext_MarkIDStable(t *testing.T) {
	c, _ := newContext(t, `<p>x</p>`)
	a := c.doc.CreateElement("div")
	b := c.doc.CreateElement("div")

	first := c.MarkID(a)
	assert.Equal(t, first, c.MarkID(a))
	assert.NotEqual(t, first, c.MarkID(b))
	assert.Equal(t, first, a.Attr(IDAttribute))
	assert.Equal(t, `[data-print-id="`+first+`"]`, c.Selector(a))
}

func TestContext_IDsUniqueAcrossTraversal(t *testing.T) {
	c, src := newContext(t, `<html><head><style>
		p { color: red } span { font-weight: bold }
	</style></head><body><div id="root"><p>a</p><p>b<span>c</span></p><p>d</p></div></body></html>`)
	cp := printCopy(t, c, src.GetElementByID("root"))

	seen := map[string]bool{}
	cp.Walk(func(n *html.Node) bool {
		if id, ok := n.GetAttribute(IDAttribute); ok {
			assert.False(t, seen[id], "id %s assigned twice", id)
			seen[id] = true
		}
		return true
	})
	assert.Len(t, seen, 4)
	assert.Equal(t, 4, c.Stats().Rules)
}

func TestContext_StyleNodeLifecycle(t *testing.T) {
	c, _ := newContext(t, `<p>x</p>`)
	assert.Nil(t, c.StyleNode())
	c.MountStyle()
	assert.Nil(t, c.StyleNode(), "mounting without rules creates nothing")

	c.AppendStyle("p{color: red;}")
	c.AppendStyle("   ")
	c.MountStyle()
	c.AppendStyle("b{color: blue;}")
	c.MountStyle()

	head := c.doc.Head()
	require.Len(t, head.ElementChildren(), 1)
	assert.Same(t, c.StyleNode(), head.ElementChildren()[0])
	assert.Equal(t, "p{color: red;}\nb{color: blue;}", c.StyleNode().TextContent())
}

func TestContext_FlushRestoresInlineStyle(t *testing.T) {
	c, _ := newContext(t, `<p>x</p>`)
	withInline := c.doc.CreateElement("div")
	withInline.SetAttribute("style", "color: blue; margin-top: 2px")
	bare := c.doc.CreateElement("div")
	c.doc.Body().AddChild(withInline)
	c.doc.Body().AddChild(bare)

	decls := css.Declarations{{Property: "color", Value: "red"}, {Property: "width", Value: "5px"}}
	c.addTask(finalizeTask{node: withInline, inline: "color: blue; margin-top: 2px", hadInline: true, decls: decls})
	c.addTask(finalizeTask{node: bare, decls: decls})
	withInline.SetAttribute("style", "scratch")
	bare.SetAttribute("style", "scratch")
	require.Equal(t, 2, c.Pending())

	c.FlushTasks()
	assert.Zero(t, c.Pending())
	assert.Equal(t, "color: blue; margin-top: 2px", withInline.Attr("style"))
	assert.False(t, bare.HasAttribute("style"))

	rule, ok := ruleFor(c, withInline, "")
	require.True(t, ok)
	assert.Equal(t, css.Declarations{
		{Property: "color", Value: "red", Important: true},
		{Property: "width", Value: "5px"},
	}, rule)
	rule, ok = ruleFor(c, bare, "")
	require.True(t, ok)
	assert.Equal(t, decls, rule)
	assert.Equal(t, "1", withInline.Attr(IDAttribute), "ids follow task order")
}

func TestContext_StripsStaleIDs(t *testing.T) {
	c, src := newContext(t, `<div id="root" data-print-id="7"><p data-print-id="3">a</p></div>`)
	cp := printCopy(t, c, src.GetElementByID("root"))
	assert.False(t, cp.HasAttribute(IDAttribute))
	assert.False(t, cp.ElementChildren()[0].HasAttribute(IDAttribute))
}
