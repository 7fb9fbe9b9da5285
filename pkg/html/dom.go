package html

import (
	"sort"
	"strconv"
	"strings"
)

type Node struct {
	Type       NodeType
	TagName    string
	Attributes map[string]string
	Text       string
	Children   []*Node
	Parent     *Node

	doc    *Document
	shadow *ShadowRoot // shadow root attached to this element
	hostOf *ShadowRoot // set on the fragment node that roots a shadow tree
	live   *liveState
}

type NodeType int

const (
	ElementNode NodeType = iota
	TextNode
	CommentNode
	DocumentNode
	FragmentNode
)

// NewElement creates a detached element owned by no document.
func NewElement(tag string) *Node {
	return &Node{
		Type:       ElementNode,
		TagName:    strings.ToLower(tag),
		Attributes: make(map[string]string),
		Children:   make([]*Node, 0),
	}
}

func (n *Node) IsElement() bool { return n != nil && n.Type == ElementNode }

// Is reports whether n is an element with the given tag name.
func (n *Node) Is(tag string) bool { return n.IsElement() && n.TagName == tag }

// OwnerDocument returns the document the node belongs to, or nil.
func (n *Node) OwnerDocument() *Document { return n.doc }

func (n *Node) touch() {
	if n.doc != nil {
		n.doc.version++
	}
}

func (n *Node) GetAttribute(name string) (string, bool) {
	if n.Attributes == nil {
		return "", false
	}
	val, ok := n.Attributes[name]
	return val, ok
}

// Attr returns the attribute value, or "" when absent.
func (n *Node) Attr(name string) string {
	v, _ := n.GetAttribute(name)
	return v
}

func (n *Node) HasAttribute(name string) bool {
	_, ok := n.GetAttribute(name)
	return ok
}

func (n *Node) SetAttribute(name, value string) {
	if n.Attributes == nil {
		n.Attributes = make(map[string]string)
	}
	n.Attributes[name] = value
	n.touch()
}

func (n *Node) RemoveAttribute(name string) {
	if _, ok := n.Attributes[name]; !ok {
		return
	}
	delete(n.Attributes, name)
	n.touch()
}

// AddChild adds a child node and sets up the parent relationship
func (n *Node) AddChild(child *Node) {
	if child.Parent != nil {
		child.Parent.RemoveChild(child)
	}
	child.Parent = n
	n.Children = append(n.Children, child)
	child.adopt(n.doc)
	n.touch()
}

// AppendText creates a text node and adds it as a child
func (n *Node) AppendText(text string) {
	if text == "" {
		return
	}
	textNode := &Node{
		Type:   TextNode,
		Text:   text,
		Parent: n,
		doc:    n.doc,
	}
	n.Children = append(n.Children, textNode)
	n.touch()
}

// RemoveChild removes the given child from this node's children list,
// clears its parent pointer, and returns the removed child.
// Returns nil if child is not found.
func (n *Node) RemoveChild(child *Node) *Node {
	for i, c := range n.Children {
		if c == child {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			child.Parent = nil
			n.touch()
			return child
		}
	}
	return nil
}

// Remove detaches the node from its parent.
func (n *Node) Remove() {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// InsertBefore inserts newChild before refChild in this node's children.
// If refChild is nil, appends newChild at the end.
// If newChild already has a parent, it is removed from that parent first.
func (n *Node) InsertBefore(newChild, refChild *Node) *Node {
	if newChild.Parent != nil {
		newChild.Parent.RemoveChild(newChild)
	}

	if refChild == nil {
		n.AddChild(newChild)
		return newChild
	}

	for i, c := range n.Children {
		if c == refChild {
			n.Children = append(n.Children, nil)
			copy(n.Children[i+1:], n.Children[i:])
			n.Children[i] = newChild
			newChild.Parent = n
			newChild.adopt(n.doc)
			n.touch()
			return newChild
		}
	}

	// refChild not found, append
	n.AddChild(newChild)
	return newChild
}

// ReplaceChildren removes every child of n.
func (n *Node) ReplaceChildren() {
	for _, c := range n.Children {
		c.Parent = nil
	}
	n.Children = n.Children[:0]
	n.touch()
}

// adopt moves n and its subtree, shadow trees included, into doc.
func (n *Node) adopt(doc *Document) {
	if n.doc == doc {
		return
	}
	n.doc = doc
	for _, c := range n.Children {
		c.adopt(doc)
	}
	if n.shadow != nil {
		n.shadow.Root.adopt(doc)
	}
}

// ElementChildren returns the element children of n, ignoring any
// children accessor.
func (n *Node) ElementChildren() []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.Type == ElementNode {
			out = append(out, c)
		}
	}
	return out
}

// Contains returns true if other is a descendant of n (or n itself).
func (n *Node) Contains(other *Node) bool {
	if n == other {
		return true
	}
	for _, child := range n.Children {
		if child.Contains(other) {
			return true
		}
	}
	return false
}

// IndexInParent returns the index of this node among its parent's children,
// or -1 if it has no parent.
func (n *Node) IndexInParent() int {
	if n.Parent == nil {
		return -1
	}
	for i, c := range n.Parent.Children {
		if c == n {
			return i
		}
	}
	return -1
}

// TextContent concatenates the text of all descendant text nodes.
func (n *Node) TextContent() string {
	if n.Type == TextNode {
		return n.Text
	}
	var sb strings.Builder
	for _, c := range n.Children {
		if c.Type == TextNode || c.Type == ElementNode {
			sb.WriteString(c.TextContent())
		}
	}
	return sb.String()
}

// SetTextContent replaces all children with a single text node.
func (n *Node) SetTextContent(text string) {
	n.ReplaceChildren()
	n.AppendText(text)
}

// ParentElement returns the parent when it is an element.
func (n *Node) ParentElement() *Node {
	if n.Parent != nil && n.Parent.Type == ElementNode {
		return n.Parent
	}
	return nil
}

// IsConnected reports whether n is reachable from its document root,
// crossing shadow boundaries through their hosts.
func (n *Node) IsConnected() bool {
	if n.doc == nil {
		return false
	}
	for cur := n; cur != nil; {
		if cur == n.doc.Root {
			return true
		}
		if cur.hostOf != nil {
			cur = cur.hostOf.host
			continue
		}
		cur = cur.Parent
	}
	return false
}

// Path describes the position of n for diagnostics, e.g. "div>ul>li[2]".
func (n *Node) Path() string {
	var parts []string
	for cur := n; cur != nil && cur.Type == ElementNode; {
		part := cur.TagName
		if idx := cur.IndexInParent(); idx > 0 {
			part += "[" + strconv.Itoa(idx) + "]"
		}
		parts = append(parts, part)
		if cur.Parent != nil && cur.Parent.hostOf != nil {
			parts = append(parts, "#shadow-root")
			cur = cur.Parent.hostOf.host
			continue
		}
		cur = cur.Parent
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, ">")
}

// Walk visits n and its light-tree descendants in document order until fn
// returns false.
func (n *Node) Walk(fn func(*Node) bool) bool {
	if !fn(n) {
		return false
	}
	for _, c := range n.Children {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}

// Serialize returns the innerHTML of this node: the serialized HTML of
// its children without the node's own tags.
func (n *Node) Serialize() string {
	var sb strings.Builder
	for _, child := range n.Children {
		serializeNode(&sb, child)
	}
	return sb.String()
}

// SerializeOuter returns the outerHTML of this node.
func (n *Node) SerializeOuter() string {
	var sb strings.Builder
	serializeNode(&sb, n)
	return sb.String()
}

func serializeNode(sb *strings.Builder, n *Node) {
	switch n.Type {
	case TextNode:
		sb.WriteString(escapeHTML(n.Text))
		return
	case CommentNode:
		sb.WriteString("<!--")
		sb.WriteString(n.Text)
		sb.WriteString("-->")
		return
	case DocumentNode, FragmentNode:
		for _, child := range n.Children {
			serializeNode(sb, child)
		}
		return
	}

	sb.WriteByte('<')
	sb.WriteString(n.TagName)

	// Sort attributes for deterministic output
	if len(n.Attributes) > 0 {
		keys := make([]string, 0, len(n.Attributes))
		for k := range n.Attributes {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			sb.WriteByte(' ')
			sb.WriteString(k)
			sb.WriteString(`="`)
			sb.WriteString(escapeAttr(n.Attributes[k]))
			sb.WriteByte('"')
		}
	}

	if IsVoidElement(n.TagName) {
		sb.WriteString(">")
		return
	}

	sb.WriteByte('>')
	for _, child := range n.Children {
		serializeNode(sb, child)
	}
	sb.WriteString("</")
	sb.WriteString(n.TagName)
	sb.WriteByte('>')
}

func escapeHTML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}

func escapeAttr(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, `"`, "&quot;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}

// IsVoidElement reports whether tag never has children.
func IsVoidElement(tag string) bool {
	switch tag {
	case "br", "hr", "img", "input", "meta", "link", "area", "base",
		"col", "embed", "param", "source", "track", "wbr":
		return true
	}
	return false
}
