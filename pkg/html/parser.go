package html

import (
	"fmt"
	"strings"

	xhtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	stdnet "lightprint/std/net"
)

// CSSFetcher loads the text of an external stylesheet.
type CSSFetcher func(uri string) (string, error)

// Parse builds a document from markup. Only data: stylesheets are loaded.
func Parse(markup string) (*Document, error) {
	return ParseWithFetcher(markup, nil)
}

// ParseWithFetcher builds a document from markup, loading
// <link rel=stylesheet> through fetch. Fetch failures leave the sheet
// empty, as a browser would.
func ParseWithFetcher(markup string, fetch CSSFetcher) (*Document, error) {
	root, err := xhtml.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parsing html: %w", err)
	}
	p := &parser{doc: newBareDocument(), fetch: fetch}
	p.children(p.doc.Root, root)
	return p.doc, nil
}

// ParseFragment parses markup as the content of context, an element of d,
// and returns the top-level nodes detached. Scripts in the fragment are
// not collected.
func (d *Document) ParseFragment(markup string, context *Node) ([]*Node, error) {
	tag := "body"
	if context.IsElement() {
		tag = context.TagName
	}
	parsed, err := xhtml.ParseFragment(strings.NewReader(markup), &xhtml.Node{
		Type:     xhtml.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	})
	if err != nil {
		return nil, fmt.Errorf("parsing fragment: %w", err)
	}
	holder := &Node{Type: FragmentNode, TagName: "#document-fragment", doc: d}
	p := &parser{doc: d, fragment: true}
	for _, n := range parsed {
		p.node(holder, n)
	}
	nodes := append([]*Node(nil), holder.Children...)
	for _, n := range nodes {
		holder.RemoveChild(n)
	}
	return nodes, nil
}

type parser struct {
	doc      *Document
	fetch    CSSFetcher
	fragment bool
}

func (p *parser) children(dst *Node, src *xhtml.Node) {
	for c := src.FirstChild; c != nil; c = c.NextSibling {
		p.node(dst, c)
	}
}

func (p *parser) node(dst *Node, src *xhtml.Node) {
	switch src.Type {
	case xhtml.TextNode:
		dst.AppendText(src.Data)
	case xhtml.CommentNode:
		dst.AddChild(&Node{Type: CommentNode, Text: src.Data})
	case xhtml.ElementNode:
		if src.Data == "template" && p.declarativeShadow(dst, src) {
			return
		}
		el := p.doc.CreateElement(src.Data)
		for _, a := range src.Attr {
			name := a.Key
			if a.Namespace != "" {
				name = a.Namespace + ":" + a.Key
			}
			el.Attributes[name] = a.Val
		}
		dst.AddChild(el)
		p.children(el, src)
		p.finish(el)
	}
}

// declarativeShadow turns <template shadowrootmode> into a shadow root on
// its parent element.
func (p *parser) declarativeShadow(host *Node, src *xhtml.Node) bool {
	var mode string
	var delegates, clonable bool
	for _, a := range src.Attr {
		switch a.Key {
		case "shadowrootmode":
			mode = strings.ToLower(a.Val)
		case "shadowrootdelegatesfocus":
			delegates = true
		case "shadowrootclonable":
			clonable = true
		}
	}
	if mode != string(ShadowRootOpen) && mode != string(ShadowRootClosed) {
		return false
	}
	sr, err := host.AttachShadow(ShadowRootInit{
		Mode:           ShadowRootMode(mode),
		DelegatesFocus: delegates,
		Clonable:       clonable,
	})
	if err != nil {
		return false
	}
	p.children(sr.Root, src)
	return true
}

func (p *parser) finish(el *Node) {
	switch {
	case el.Is("script"):
		if !p.fragment && el.Attr("src") == "" {
			p.doc.Scripts = append(p.doc.Scripts, el.TextContent())
		}
	case el.Is("link") && el.IsStyleSheet():
		if css := p.loadStylesheet(el.Attr("href")); css != "" {
			el.SetStyleSheetText(css)
		}
	case el.IsMedia():
		el.LoadMedia()
	}
}

func (p *parser) loadStylesheet(href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	if stdnet.IsDataURL(href) {
		body, _, err := stdnet.DecodeDataURL(href)
		if err != nil {
			return ""
		}
		return string(body)
	}
	if p.fetch == nil {
		return ""
	}
	css, err := p.fetch(href)
	if err != nil {
		return ""
	}
	return css
}
