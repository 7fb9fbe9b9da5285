package html

import "strings"

type ShadowRootMode string

const (
	ShadowRootOpen   ShadowRootMode = "open"
	ShadowRootClosed ShadowRootMode = "closed"
)

type ShadowRootInit struct {
	Mode           ShadowRootMode
	DelegatesFocus bool
	Clonable       bool
}

// ShadowRoot is an encapsulated tree attached to a host element. Root is a
// fragment node holding the shadow children.
type ShadowRoot struct {
	Mode               ShadowRootMode
	DelegatesFocus     bool
	Clonable           bool
	Root               *Node
	AdoptedStyleSheets []*ConstructedSheet

	host *Node
}

// AttachShadow attaches a new shadow root to n.
func (n *Node) AttachShadow(init ShadowRootInit) (*ShadowRoot, error) {
	if !n.IsElement() || n.shadow != nil {
		return nil, ErrInvalidShadowHost
	}
	if init.Mode != ShadowRootClosed {
		init.Mode = ShadowRootOpen
	}
	sr := &ShadowRoot{
		Mode:           init.Mode,
		DelegatesFocus: init.DelegatesFocus,
		Clonable:       init.Clonable,
		host:           n,
	}
	sr.Root = &Node{
		Type:     FragmentNode,
		TagName:  "#shadow-root",
		Children: make([]*Node, 0),
		doc:      n.doc,
		hostOf:   sr,
	}
	n.shadow = sr
	n.touch()
	return sr, nil
}

// OpenShadowRoot returns the attached shadow root when its mode is open.
func (n *Node) OpenShadowRoot() *ShadowRoot {
	if n.shadow == nil || n.shadow.Mode != ShadowRootOpen {
		return nil
	}
	return n.shadow
}

// AttachedShadowRoot returns the attached shadow root regardless of mode.
// Style resolution and rendering need closed roots too.
func (n *Node) AttachedShadowRoot() *ShadowRoot { return n.shadow }

// ShadowRootOf returns the shadow root n lives in, or nil for light-tree
// nodes.
func (n *Node) ShadowRootOf() *ShadowRoot {
	for cur := n; cur != nil; cur = cur.Parent {
		if cur.hostOf != nil {
			return cur.hostOf
		}
	}
	return nil
}

func (s *ShadowRoot) Host() *Node { return s.host }

// AssignedNodes returns the host children a <slot> of a shadow tree
// renders: elements whose slot attribute names it, and for the default
// slot also text. Slots outside shadow trees have none.
func (n *Node) AssignedNodes() []*Node {
	sr := n.ShadowRootOf()
	if !n.Is("slot") || sr == nil {
		return nil
	}
	name := n.Attr("name")
	var out []*Node
	for _, c := range sr.host.Children {
		switch {
		case c.IsElement() && c.Attr("slot") == name:
			out = append(out, c)
		case c.Type == TextNode && name == "":
			out = append(out, c)
		}
	}
	return out
}

// ConstructedSheet is a stylesheet built from script and shared by
// reference through AdoptedStyleSheets.
type ConstructedSheet struct {
	rules []string
}

// NewConstructedSheet parses text into a new sheet.
func NewConstructedSheet(text string) *ConstructedSheet {
	s := &ConstructedSheet{}
	s.ReplaceSync(text)
	return s
}

// ReplaceSync replaces every rule of the sheet.
func (s *ConstructedSheet) ReplaceSync(text string) {
	s.rules = SplitRules(text)
}

// CSSRules returns the text of each top-level rule.
func (s *ConstructedSheet) CSSRules() []string {
	out := make([]string, len(s.rules))
	copy(out, s.rules)
	return out
}

func (s *ConstructedSheet) Text() string { return strings.Join(s.rules, "\n") }

// SplitRules splits stylesheet text into top-level rules by brace depth.
// Comments are dropped and quoted strings are kept intact.
func SplitRules(text string) []string {
	var rules []string
	var cur strings.Builder
	depth := 0
	var quote byte
	for i := 0; i < len(text); i++ {
		c := text[i]
		if quote != 0 {
			cur.WriteByte(c)
			if c == '\\' && i+1 < len(text) {
				i++
				cur.WriteByte(text[i])
			} else if c == quote {
				quote = 0
			}
			continue
		}
		if c == '/' && i+1 < len(text) && text[i+1] == '*' {
			end := strings.Index(text[i+2:], "*/")
			if end < 0 {
				break
			}
			i += end + 3
			continue
		}
		switch c {
		case '"', '\'':
			quote = c
		case '{':
			depth++
		case '}':
			depth--
			if depth <= 0 {
				depth = 0
				cur.WriteByte(c)
				if r := strings.TrimSpace(cur.String()); r != "" {
					rules = append(rules, r)
				}
				cur.Reset()
				continue
			}
		case ';':
			// statement at-rules such as @import end at the semicolon
			if depth == 0 {
				cur.WriteByte(c)
				if r := strings.TrimSpace(cur.String()); r != "" {
					rules = append(rules, r)
				}
				cur.Reset()
				continue
			}
		}
		cur.WriteByte(c)
	}
	return rules
}

// SetAdoptedStyleSheets replaces the adopted sheets of s.
func (s *ShadowRoot) SetAdoptedStyleSheets(sheets []*ConstructedSheet) {
	s.AdoptedStyleSheets = sheets
	s.host.touch()
}
