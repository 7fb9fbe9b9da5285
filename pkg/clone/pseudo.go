package clone

import (
	"fmt"
	"strings"

	"lightprint/pkg/css"
	"lightprint/pkg/html"
)

// PseudoElements are the pseudo-elements whose styles are carried over.
var PseudoElements = []string{
	"before", "after", "marker", "first-letter", "first-line",
	"placeholder", "file-selector-button", "details-content",
}

// pseudoApplies reports whether a pseudo-element can exist on src.
func pseudoApplies(pseudo string, src *html.Node, srcStyle *css.Style) bool {
	kind := KindOf(src)
	switch pseudo {
	case "placeholder":
		return kind.AcceptsPlaceholder(src) && strings.TrimSpace(src.Attr("placeholder")) != ""
	case "file-selector-button":
		return kind.HasFileButton(src)
	case "details-content":
		return src.Is("details")
	case "marker":
		return srcStyle.Display() == "list-item"
	case "first-letter", "first-line":
		return css.IsBlockContainer(srcStyle.Display())
	}
	return true
}

func hasContent(s *css.Style) bool {
	switch s.Value("content") {
	case "", "normal", "none":
		return false
	}
	return true
}

// synthesizePseudo appends a rule for each pseudo-element of src whose
// style differs from the copy's. Rules are written immediately.
func (c *Context) synthesizePseudo(cp, src *html.Node, srcStyle *css.Style) error {
	for _, pseudo := range PseudoElements {
		if !pseudoApplies(pseudo, src, srcStyle) {
			continue
		}
		ps, err := c.source.Computed(src, pseudo)
		if err != nil {
			return fmt.Errorf("%s::%s: %w", src.Path(), pseudo, err)
		}
		if (pseudo == "before" || pseudo == "after") && !hasContent(ps) {
			continue
		}
		cs, err := c.target.Computed(cp, pseudo)
		if err != nil {
			return fmt.Errorf("%s::%s: %w", cp.Path(), pseudo, err)
		}
		if decls := diff(cs, ps); len(decls) > 0 {
			c.appendRule(c.Selector(cp)+"::"+pseudo, decls)
		}
	}
	return nil
}
