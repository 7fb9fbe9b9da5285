// Package style resolves computed styles for the elements of a document:
// cascade over the user agent, document and shadow-tree stylesheets,
// inheritance, value normalisation, and used sizes for rendered boxes.
package style

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"lightprint/pkg/css"
	"lightprint/pkg/html"
)

// ErrNoStyleContext is returned for nodes the view cannot style: nil or
// non-element nodes, nodes of another document and disconnected nodes.
var ErrNoStyleContext = errors.New("style: no style context")

type styleKey struct {
	node   *html.Node
	pseudo string
}

// View computes styles for one document. It is safe for concurrent use;
// cached results are dropped whenever the document version changes.
type View struct {
	doc    *html.Document
	medium string
	logger *zap.Logger

	mu      sync.Mutex
	version uint64
	styles  map[styleKey]*css.Style
	scopes  map[*html.Node][]*css.Stylesheet
	widths  map[*html.Node]float64
	heights map[*html.Node]float64
	parsed  map[string]*css.Stylesheet // by sheet text, kept across versions
}

type Option func(*View)

// WithMedium sets the media type queries are evaluated against. The
// default is "screen".
func WithMedium(medium string) Option {
	return func(v *View) { v.medium = medium }
}

func WithLogger(l *zap.Logger) Option {
	return func(v *View) { v.logger = l }
}

func NewView(doc *html.Document, opts ...Option) *View {
	v := &View{
		doc:    doc,
		medium: "screen",
		logger: zap.NewNop(),
		parsed: make(map[string]*css.Stylesheet),
	}
	for _, opt := range opts {
		opt(v)
	}
	v.reset()
	return v
}

func (v *View) Document() *html.Document { return v.doc }

func (v *View) Medium() string { return v.medium }

// Invalidate drops cached styles. Tree and attribute mutations do this
// automatically; changes the document cannot observe, such as replacing
// the rules of an adopted sheet, need an explicit call.
func (v *View) Invalidate() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.reset()
}

func (v *View) reset() {
	v.version = v.doc.Version()
	v.styles = make(map[styleKey]*css.Style)
	v.scopes = make(map[*html.Node][]*css.Stylesheet)
	v.widths = make(map[*html.Node]float64)
	v.heights = make(map[*html.Node]float64)
}

func (v *View) sync() {
	if v.doc.Version() != v.version {
		v.reset()
	}
}

func (v *View) media() css.Media {
	return css.Media{
		Type:           v.medium,
		ViewportWidth:  v.doc.ViewportWidth,
		ViewportHeight: v.doc.ViewportHeight,
	}
}

// Computed returns the computed style of n, or of its pseudo-element when
// pseudo is non-empty ("before", "::before" and ":before" are the same).
// For rendered elements width, height and percentage box edges hold used
// pixel values. The returned style belongs to the caller.
func (v *View) Computed(n *html.Node, pseudo string) (*css.Style, error) {
	if err := v.check(n); err != nil {
		return nil, err
	}
	pseudo = strings.TrimLeft(strings.ToLower(pseudo), ":")

	v.mu.Lock()
	defer v.mu.Unlock()
	v.sync()

	s := v.computed(n, pseudo).Clone()
	if pseudo == "" && v.rendered(n) {
		v.applyUsed(n, s)
	}
	return s, nil
}

func (v *View) check(n *html.Node) error {
	switch {
	case n == nil || !n.IsElement():
		return fmt.Errorf("not an element: %w", ErrNoStyleContext)
	case n.OwnerDocument() != v.doc:
		return fmt.Errorf("%s: element of another document: %w", n.Path(), ErrNoStyleContext)
	case !n.IsConnected():
		return fmt.Errorf("%s: element not connected: %w", n.Path(), ErrNoStyleContext)
	}
	return nil
}

// flatParent returns the element n inherits from: its parent element, or
// the host for top-level nodes of a shadow tree.
func flatParent(n *html.Node) *html.Node {
	p := n.Parent
	if p == nil {
		return nil
	}
	if p.IsElement() {
		return p
	}
	if p.Type == html.FragmentNode {
		if sr := p.ShadowRootOf(); sr != nil && sr.Root == p {
			return sr.Host()
		}
	}
	return nil
}

// rendered reports whether n and all of its flat ancestors generate boxes.
func (v *View) rendered(n *html.Node) bool {
	for cur := n; cur != nil; cur = flatParent(cur) {
		if v.computed(cur, "").Display() == "none" {
			return false
		}
	}
	return true
}
