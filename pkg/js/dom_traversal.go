package js

import (
	"github.com/dop251/goja"

	"lightprint/pkg/html"
)

// child returns the first or last child, optionally only among elements.
func (e *elementAccessor) child(first, elementsOnly bool) goja.Value {
	kids := e.node.Children
	if elementsOnly {
		kids = e.node.ElementChildren()
	}
	if len(kids) == 0 {
		return goja.Null()
	}
	if first {
		return e.ctx.proxy(kids[0])
	}
	return e.ctx.proxy(kids[len(kids)-1])
}

// sibling walks the parent's children from this node in direction step.
func (e *elementAccessor) sibling(step int, elementsOnly bool) goja.Value {
	p := e.node.Parent
	if p == nil {
		return goja.Null()
	}
	for i := e.node.IndexInParent() + step; i >= 0 && i < len(p.Children); i += step {
		if c := p.Children[i]; !elementsOnly || c.Type == html.ElementNode {
			return e.ctx.proxy(c)
		}
	}
	return goja.Null()
}
