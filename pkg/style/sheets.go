package style

import (
	"strings"

	"go.uber.org/zap"

	"lightprint/pkg/css"
	"lightprint/pkg/html"
)

// scopeSheets returns the stylesheets of a tree scope in order: <style>
// and loaded <link> elements of the tree (not entering nested shadow
// trees), then the adopted sheets of the shadow root.
func (v *View) scopeSheets(root *html.Node, sr *html.ShadowRoot) []*css.Stylesheet {
	if sheets, ok := v.scopes[root]; ok {
		return sheets
	}
	media := v.media()
	var sheets []*css.Stylesheet
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Is("template") {
			return
		}
		if n.IsStyleSheet() {
			text := n.StyleSheetText()
			if n.Is("style") {
				text = n.TextContent()
			}
			m, hasMedia := n.GetAttribute("media")
			if sheet := v.parse(text); sheet != nil && (!hasMedia || media.Matches(m)) {
				sheets = append(sheets, sheet)
			}
			return
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(root)
	if sr != nil {
		for _, cs := range sr.AdoptedStyleSheets {
			if sheet := v.parse(cs.Text()); sheet != nil {
				sheets = append(sheets, sheet)
			}
		}
	}
	v.scopes[root] = sheets
	return sheets
}

func (v *View) parse(text string) *css.Stylesheet {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if sheet, ok := v.parsed[text]; ok {
		return sheet
	}
	sheet, err := css.ParseStylesheet(text)
	if err != nil {
		v.logger.Debug("stylesheet has no usable rules", zap.Error(err))
	}
	v.parsed[text] = sheet
	return sheet
}

// scopeOf returns the root node of the tree n lives in, with its shadow
// root when that tree is a shadow tree.
func (v *View) scopeOf(n *html.Node) (*html.Node, *html.ShadowRoot) {
	if sr := n.ShadowRootOf(); sr != nil {
		return sr.Root, sr
	}
	return v.doc.Root, nil
}

// cascade collects and cascades the declarations that apply to n or to
// one of its pseudo-elements.
func (v *View) cascade(n *html.Node, pseudo string) css.Declarations {
	media := v.media()
	root, sr := v.scopeOf(n)
	mc := css.MatchContext{}
	if sr != nil {
		mc.Host = sr.Host()
	}

	var matched []css.MatchedRule
	add := func(rules []css.Rule, origin css.Origin, depth, sheet int) {
		for _, r := range rules {
			matched = append(matched, css.MatchedRule{Rule: r, Origin: origin, Depth: depth, Sheet: sheet})
		}
	}

	add(css.FindMatchingRules(n, css.UserAgentStylesheet(), media, mc, pseudo), css.OriginUserAgent, 0, 0)
	for i, sheet := range v.scopeSheets(root, sr) {
		add(css.FindMatchingRules(n, sheet, media, mc, pseudo), css.OriginAuthor, 0, i)
	}

	// :host rules of the element's own shadow tree.
	if own := n.AttachedShadowRoot(); own != nil {
		inner := css.MatchContext{Host: n}
		for i, sheet := range v.scopeSheets(own.Root, own) {
			add(css.FindMatchingRules(n, sheet, media, inner, pseudo), css.OriginAuthor, 1, i)
		}
	}

	// ::part() rules from the scope around the host.
	if parts := strings.Fields(n.Attr("part")); sr != nil && len(parts) > 0 {
		host := sr.Host()
		outerRoot, outerSR := v.scopeOf(host)
		outer := css.MatchContext{}
		if outerSR != nil {
			outer.Host = outerSR.Host()
		}
		for i, sheet := range v.scopeSheets(outerRoot, outerSR) {
			add(css.FindPartRules(host, parts, sheet, media, outer, pseudo), css.OriginAuthor, -1, i)
		}
	}

	var inline css.Declarations
	if pseudo == "" {
		inline = css.ParseDeclarations(n.Attr("style"))
	}
	return css.Cascade(matched, inline)
}

// FontFaces returns the @font-face rules of the document's own
// stylesheets that apply to the view's medium.
func (v *View) FontFaces() []*html.FontFace {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.sync()
	media := v.media()
	var faces []*html.FontFace
	for _, sheet := range v.scopeSheets(v.doc.Root, nil) {
		for _, f := range sheet.FontFaces {
			if media.Matches(f.Media) {
				faces = append(faces, f)
			}
		}
	}
	return faces
}
