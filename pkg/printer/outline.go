package printer

import (
	"strings"

	"github.com/xlab/treeprint"

	"lightprint/pkg/html"
)

// Outline draws the element tree of the printed copy, shadow trees
// included, one element per line.
func (j *Job) Outline() string {
	if j == nil || j.Root == nil {
		return ""
	}
	tree := treeprint.NewWithRoot(label(j.Root))
	outline(tree, j.Root)
	return tree.String()
}

func outline(branch treeprint.Tree, n *html.Node) {
	if sr := n.AttachedShadowRoot(); sr != nil {
		shadow := branch.AddBranch("#shadow-root (" + string(sr.Mode) + ")")
		for _, c := range sr.Root.ElementChildren() {
			outline(add(shadow, c), c)
		}
	}
	for _, c := range n.ElementChildren() {
		outline(add(branch, c), c)
	}
}

func add(branch treeprint.Tree, n *html.Node) treeprint.Tree {
	if len(n.ElementChildren()) == 0 && n.AttachedShadowRoot() == nil {
		return branch.AddNode(label(n))
	}
	return branch.AddBranch(label(n))
}

// label names an element the way a selector would, e.g. "div#main.card".
func label(n *html.Node) string {
	var b strings.Builder
	b.WriteString(n.TagName)
	if id := n.Attr("id"); id != "" {
		b.WriteString("#" + id)
	}
	for _, c := range strings.Fields(n.Attr("class")) {
		b.WriteString("." + c)
	}
	return b.String()
}
