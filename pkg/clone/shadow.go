package clone

import (
	"fmt"
	"strings"

	"lightprint/pkg/html"
)

// cloneShadowRoot rebuilds the open shadow root of src on cp. A clonable
// root was already copied by import and only needs its adopted sheets; any
// other root is attached, imported and traversed with a context of its
// own, whose style node lands in the new shadow root.
func (c *Context) cloneShadowRoot(cp, src *html.Node) error {
	srcRoot := src.OpenShadowRoot()
	if srcRoot == nil {
		return nil
	}
	if srcRoot.Clonable {
		c.cloneSheets(cp.AttachedShadowRoot(), srcRoot)
		return nil
	}

	dst := cp.AttachedShadowRoot()
	if dst == nil {
		var err error
		dst, err = cp.AttachShadow(html.ShadowRootInit{
			Mode:           html.ShadowRootOpen,
			DelegatesFocus: srcRoot.DelegatesFocus,
		})
		if err != nil {
			return fmt.Errorf("%s: %w", cp.Path(), err)
		}
	} else {
		dst.Root.ReplaceChildren()
	}
	for _, child := range srcRoot.Root.Children {
		dst.Root.AddChild(c.doc.ImportNode(child, true))
	}
	c.cloneSheets(dst, srcRoot)
	c.stats.ShadowRoots++

	inner := c.shadowContext(dst)
	stack := pushChildren(nil, dst.Root.ElementChildren(), srcRoot.Root.ElementChildren())
	if err := inner.walk(stack); err != nil {
		return err
	}
	inner.FlushTasks()
	inner.MountStyle()
	return nil
}

// cloneSheets adopts the rules of every adopted sheet of src on dst as a
// single sheet.
func (c *Context) cloneSheets(dst, src *html.ShadowRoot) {
	if dst == nil {
		return
	}
	var rules []string
	for _, sheet := range src.AdoptedStyleSheets {
		rules = append(rules, sheet.CSSRules()...)
	}
	if len(rules) == 0 {
		return
	}
	dst.AdoptedStyleSheets = append(dst.AdoptedStyleSheets, html.NewConstructedSheet(strings.Join(rules, "\n")))
	c.target.Invalidate()
}
