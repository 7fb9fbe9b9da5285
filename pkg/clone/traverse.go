package clone

import (
	"fmt"

	"go.uber.org/zap"

	"lightprint/pkg/css"
	"lightprint/pkg/html"
)

// nonRendering tags are pruned unless restyled away from their default
// display.
var nonRendering = map[string]bool{
	"source": true, "track": true, "template": true, "script": true,
	"slot": true, "wbr": true, "noscript": true, "param": true,
}

// keep decides whether a copy element stays. Stylesheets always stay so
// the rules they carry keep applying.
func keep(src *html.Node, s *css.Style) bool {
	if src.IsStyleSheet() {
		return true
	}
	d := s.Display()
	if d == "none" {
		return false
	}
	if !nonRendering[src.TagName] || d != css.UADisplay(src.TagName) {
		return true
	}
	// A slot at its default display still renders what is assigned to
	// it, or its fallback content.
	return src.Is("slot") && (len(src.AssignedNodes()) > 0 || len(src.ElementChildren()) > 0)
}

type pair struct {
	copy, source *html.Node
}

// pushChildren pushes child pairs so that they pop in document order.
// Surplus children on either side are left unpaired.
func pushChildren(stack []pair, copies, sources []*html.Node) []pair {
	n := min(len(copies), len(sources))
	for i := n - 1; i >= 0; i-- {
		stack = append(stack, pair{copy: copies[i], source: sources[i]})
	}
	return stack
}

// Traverse walks the copy and source subtrees in step, in source document
// order. Each pair is visited; a pair that is not kept has its copy removed
// and its children skipped. copyRoot must already be in the target
// document.
func (c *Context) Traverse(copyRoot, sourceRoot *html.Node) error {
	if !copyRoot.IsElement() || copyRoot.OwnerDocument() != c.doc || !copyRoot.IsConnected() {
		return fmt.Errorf("copy root: %w", ErrInvalidTarget)
	}
	if !sourceRoot.IsElement() || sourceRoot.OwnerDocument() != c.source.Document() {
		return fmt.Errorf("source root: %w", ErrInvalidTarget)
	}
	return c.walk([]pair{{copy: copyRoot, source: sourceRoot}})
}

func (c *Context) walk(stack []pair) error {
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		kept, err := c.visit(p.copy, p.source)
		if err != nil {
			return err
		}
		if !kept {
			p.copy.Remove()
			c.stats.Pruned++
			continue
		}

		sources, err := p.source.ChildElements()
		if err != nil {
			c.stats.Uncooperative++
			c.logger.Warn("not descending into element",
				zap.String("tag", p.source.TagName),
				zap.String("path", p.source.Path()),
				zap.Error(err))
			continue
		}
		copies := p.copy.ElementChildren()
		if len(copies) != len(sources) {
			c.logger.Debug("child count mismatch",
				zap.String("path", p.source.Path()),
				zap.Int("copy", len(copies)),
				zap.Int("source", len(sources)))
		}
		stack = pushChildren(stack, copies, sources)
	}
	return nil
}

// visit styles one pair and reports whether the copy stays.
func (c *Context) visit(cp, src *html.Node) (bool, error) {
	c.stats.Elements++
	c.stripStaleID(cp)

	srcStyle, err := c.source.Computed(src, "")
	if err != nil {
		return false, fmt.Errorf("clone %s: %w", src.Path(), err)
	}
	if !keep(src, srcStyle) {
		return false, nil
	}
	if src.IsStyleSheet() {
		return true, nil
	}

	c.cloneProperties(cp, src)
	if err := c.applyStyle(cp, src, srcStyle); err != nil {
		return false, err
	}
	// Inside a rebuilt shadow tree only parts can be reached by outer
	// pseudo-element rules.
	if !c.scoped || src.HasAttribute("part") {
		if err := c.synthesizePseudo(cp, src, srcStyle); err != nil {
			return false, err
		}
	}
	if err := c.cloneShadowRoot(cp, src); err != nil {
		return false, err
	}
	return true, nil
}
