package html

import (
	"fmt"
	"strconv"
	"strings"

	"lightprint/pkg/canvas"
)

// liveState is element state that lives outside attributes and is not
// carried over by ImportNode.
type liveState struct {
	value         *string
	checked       *bool
	indeterminate bool
	selected      *bool

	scrollTop  float64
	scrollLeft float64

	currentSrc  string
	currentTime float64
	playing     bool

	surface  *canvas.Surface
	children func(*Node) ([]*Node, error)

	naturalW, naturalH float64
	hasNatural         bool

	sheetText string
}

func (n *Node) state() *liveState {
	if n.live == nil {
		n.live = &liveState{}
	}
	return n.live
}

// Value returns the current value of a form control.
func (n *Node) Value() string {
	switch n.TagName {
	case "select":
		if opt := n.selectedOption(); opt != nil {
			return opt.Value()
		}
		return ""
	case "option":
		if v, ok := n.GetAttribute("value"); ok {
			return v
		}
		return strings.Join(strings.Fields(n.TextContent()), " ")
	}
	if n.live != nil && n.live.value != nil {
		return *n.live.value
	}
	if n.TagName == "textarea" {
		return n.TextContent()
	}
	return n.Attr("value")
}

// SetValue sets the current value. For a select it selects the first
// option with that value and deselects the rest.
func (n *Node) SetValue(v string) {
	if n.TagName == "select" {
		for _, opt := range n.Options() {
			opt.SetSelected(false)
		}
		for _, opt := range n.Options() {
			if opt.Value() == v {
				opt.SetSelected(true)
				break
			}
		}
		return
	}
	if n.TagName == "option" {
		n.SetAttribute("value", v)
		return
	}
	n.state().value = &v
	n.touch()
}

func (n *Node) Checked() bool {
	if n.live != nil && n.live.checked != nil {
		return *n.live.checked
	}
	return n.HasAttribute("checked")
}

// SetChecked sets checkedness. Checking a radio button unchecks the other
// radios of its group within the same form owner subtree.
func (n *Node) SetChecked(v bool) {
	n.state().checked = &v
	if v && strings.EqualFold(n.Attr("type"), "radio") && n.Attr("name") != "" {
		scope := n
		for scope.Parent != nil && !scope.Is("form") {
			scope = scope.Parent
		}
		scope.Walk(func(o *Node) bool {
			if o != n && o.Is("input") && strings.EqualFold(o.Attr("type"), "radio") &&
				o.Attr("name") == n.Attr("name") {
				f := false
				o.state().checked = &f
			}
			return true
		})
	}
	n.touch()
}

func (n *Node) Indeterminate() bool { return n.live != nil && n.live.indeterminate }

func (n *Node) SetIndeterminate(v bool) {
	n.state().indeterminate = v
	n.touch()
}

// Options returns the option elements of a select, optgroups included.
func (n *Node) Options() []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.Is("option") {
			out = append(out, c)
		} else if c.Is("optgroup") {
			for _, o := range c.Children {
				if o.Is("option") {
					out = append(out, o)
				}
			}
		}
	}
	return out
}

// Selected reports an option's selectedness. A single-select with no
// explicitly selected option selects its first option.
func (n *Node) Selected() bool {
	if n.live != nil && n.live.selected != nil {
		return *n.live.selected
	}
	if n.HasAttribute("selected") {
		return true
	}
	sel := n.ownerSelect()
	if sel == nil || sel.HasAttribute("multiple") {
		return false
	}
	for _, o := range sel.Options() {
		if o.explicitlySelected() {
			return false
		}
	}
	opts := sel.Options()
	return len(opts) > 0 && opts[0] == n
}

func (n *Node) explicitlySelected() bool {
	if n.live != nil && n.live.selected != nil {
		return *n.live.selected
	}
	return n.HasAttribute("selected")
}

// SetSelected sets an option's selectedness. In a single-select, selecting
// one option deselects the others.
func (n *Node) SetSelected(v bool) {
	n.state().selected = &v
	if sel := n.ownerSelect(); v && sel != nil && !sel.HasAttribute("multiple") {
		for _, o := range sel.Options() {
			if o != n {
				f := false
				o.state().selected = &f
			}
		}
	}
	n.touch()
}

func (n *Node) ownerSelect() *Node {
	p := n.Parent
	if p.Is("optgroup") {
		p = p.Parent
	}
	if p.Is("select") {
		return p
	}
	return nil
}

func (n *Node) selectedOption() *Node {
	for _, o := range n.Options() {
		if o.Selected() {
			return o
		}
	}
	return nil
}

// SelectedIndex returns the index of the first selected option, or -1.
func (n *Node) SelectedIndex() int {
	for i, o := range n.Options() {
		if o.Selected() {
			return i
		}
	}
	return -1
}

func (n *Node) SetSelectedIndex(i int) {
	opts := n.Options()
	for j, o := range opts {
		if j != i {
			f := false
			o.state().selected = &f
		}
	}
	if i >= 0 && i < len(opts) {
		opts[i].SetSelected(true)
	}
	n.touch()
}

func (n *Node) ScrollTop() float64 {
	if n.live == nil {
		return 0
	}
	return n.live.scrollTop
}

func (n *Node) ScrollLeft() float64 {
	if n.live == nil {
		return 0
	}
	return n.live.scrollLeft
}

// SetScroll sets both scroll offsets. Negative offsets clamp to zero.
func (n *Node) SetScroll(top, left float64) {
	s := n.state()
	s.scrollTop = max(top, 0)
	s.scrollLeft = max(left, 0)
}

func (n *Node) SetScrollTop(v float64) { n.SetScroll(v, n.ScrollLeft()) }

func (n *Node) SetScrollLeft(v float64) { n.SetScroll(n.ScrollTop(), v) }

// IsMedia reports whether n is an audio or video element.
func (n *Node) IsMedia() bool { return n.Is("audio") || n.Is("video") }

// CurrentSrc is the media resource selected by the last load, or "".
func (n *Node) CurrentSrc() string {
	if n.live == nil {
		return ""
	}
	return n.live.currentSrc
}

// LoadMedia runs resource selection: the src attribute, else the first
// <source> child with a src.
func (n *Node) LoadMedia() {
	src := n.Attr("src")
	if src == "" {
		for _, c := range n.Children {
			if c.Is("source") && c.Attr("src") != "" {
				src = c.Attr("src")
				break
			}
		}
	}
	s := n.state()
	s.currentSrc = src
	s.currentTime = 0
	s.playing = n.HasAttribute("autoplay") && src != ""
}

// SetSrc sets the src attribute and loads it.
func (n *Node) SetSrc(src string) {
	n.SetAttribute("src", src)
	n.LoadMedia()
}

func (n *Node) CurrentTime() float64 {
	if n.live == nil {
		return 0
	}
	return n.live.currentTime
}

func (n *Node) SetCurrentTime(t float64) { n.state().currentTime = max(t, 0) }

func (n *Node) Paused() bool { return n.live == nil || !n.live.playing }

func (n *Node) Play() error {
	if n.CurrentSrc() == "" {
		return fmt.Errorf("play %s: %w", n.Path(), ErrNotSupported)
	}
	n.state().playing = true
	return nil
}

func (n *Node) Pause() {
	if n.live != nil {
		n.live.playing = false
	}
}

// SetAutoplay toggles the autoplay attribute.
func (n *Node) SetAutoplay(v bool) {
	if v {
		n.SetAttribute("autoplay", "")
	} else {
		n.RemoveAttribute("autoplay")
	}
}

// Canvas returns the 2D surface of a canvas element, creating it from the
// width/height attributes on first use.
func (n *Node) Canvas() *canvas.Surface {
	if !n.Is("canvas") {
		return nil
	}
	s := n.state()
	if s.surface == nil {
		s.surface = canvas.NewSurface(n.intAttr("width", canvas.DefaultWidth),
			n.intAttr("height", canvas.DefaultHeight))
	}
	return s.surface
}

// ExistingCanvas returns the surface without creating one.
func (n *Node) ExistingCanvas() *canvas.Surface {
	if n.live == nil {
		return nil
	}
	return n.live.surface
}

// CanvasSize is the bitmap size from the width/height attributes.
func (n *Node) CanvasSize() (int, int) {
	if s := n.ExistingCanvas(); s != nil {
		return s.Width(), s.Height()
	}
	return n.intAttr("width", canvas.DefaultWidth), n.intAttr("height", canvas.DefaultHeight)
}

func (n *Node) intAttr(name string, def int) int {
	v, ok := n.GetAttribute(name)
	if !ok {
		return def
	}
	i, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || i < 0 {
		return def
	}
	return i
}

// SetChildrenAccessor overrides how the element reports its children, as
// custom elements can.
func (n *Node) SetChildrenAccessor(fn func(*Node) ([]*Node, error)) {
	n.state().children = fn
}

// ChildElements returns the element children through the children
// accessor when one is set.
func (n *Node) ChildElements() ([]*Node, error) {
	if n.live != nil && n.live.children != nil {
		kids, err := n.live.children(n)
		if err != nil {
			return nil, fmt.Errorf("%s: %w: %v", n.Path(), ErrChildrenAccessor, err)
		}
		return kids, nil
	}
	return n.ElementChildren(), nil
}

// SetNaturalSize records the intrinsic size of a decoded image.
func (n *Node) SetNaturalSize(w, h float64) {
	s := n.state()
	s.naturalW, s.naturalH, s.hasNatural = w, h, true
	n.touch()
}

func (n *Node) NaturalSize() (w, h float64, ok bool) {
	if n.live == nil || !n.live.hasNatural {
		return 0, 0, false
	}
	return n.live.naturalW, n.live.naturalH, true
}

// StyleSheetText is the loaded text of a <link rel=stylesheet>.
func (n *Node) StyleSheetText() string {
	if n.live == nil {
		return ""
	}
	return n.live.sheetText
}

func (n *Node) SetStyleSheetText(css string) {
	n.state().sheetText = css
	n.touch()
}

// IsStyleSheet reports whether n is a <style> or <link rel=stylesheet>.
func (n *Node) IsStyleSheet() bool {
	if n.Is("style") {
		return true
	}
	if !n.Is("link") {
		return false
	}
	for _, rel := range strings.Fields(strings.ToLower(n.Attr("rel"))) {
		if rel == "stylesheet" {
			return true
		}
	}
	return false
}
