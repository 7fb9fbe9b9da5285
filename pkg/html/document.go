package html

import "strings"

// Default viewport used for layout when a document does not set one.
const (
	DefaultViewportWidth  = 800.0
	DefaultViewportHeight = 600.0
)

type Document struct {
	Root           *Node
	Scripts        []string // JavaScript from <script> tags
	URL            string
	ViewportWidth  float64
	ViewportHeight float64

	fonts   []*FontFace
	version uint64
}

// NewDocument returns an empty document with <html>, <head> and <body>.
func NewDocument() *Document {
	doc := newBareDocument()
	htmlEl := doc.CreateElement("html")
	htmlEl.AddChild(doc.CreateElement("head"))
	htmlEl.AddChild(doc.CreateElement("body"))
	doc.Root.AddChild(htmlEl)
	return doc
}

func newBareDocument() *Document {
	doc := &Document{
		Scripts:        make([]string, 0),
		ViewportWidth:  DefaultViewportWidth,
		ViewportHeight: DefaultViewportHeight,
	}
	doc.Root = &Node{
		Type:     DocumentNode,
		TagName:  "document",
		Children: make([]*Node, 0),
		doc:      doc,
	}
	return doc
}

// Version increases on every tree or attribute mutation. Style caches key
// on it.
func (d *Document) Version() uint64 { return d.version }

// CreateElement creates an element owned by d but not yet inserted.
func (d *Document) CreateElement(tag string) *Node {
	n := NewElement(tag)
	n.doc = d
	return n
}

// CreateTextNode creates a text node owned by d.
func (d *Document) CreateTextNode(text string) *Node {
	return &Node{Type: TextNode, Text: text, doc: d}
}

// DocumentElement returns the <html> element.
func (d *Document) DocumentElement() *Node {
	for _, c := range d.Root.Children {
		if c.Type == ElementNode {
			return c
		}
	}
	return nil
}

func (d *Document) Head() *Node { return d.child("head") }

func (d *Document) Body() *Node { return d.child("body") }

func (d *Document) child(tag string) *Node {
	root := d.DocumentElement()
	if root == nil {
		return nil
	}
	for _, c := range root.Children {
		if c.Is(tag) {
			return c
		}
	}
	return nil
}

// Title returns the whitespace-collapsed text of the first <title>.
func (d *Document) Title() string {
	var title string
	d.Root.Walk(func(n *Node) bool {
		if n.Is("title") {
			title = strings.Join(strings.Fields(n.TextContent()), " ")
			return false
		}
		return true
	})
	return title
}

// SetTitle replaces (or creates) the <title> in the head.
func (d *Document) SetTitle(title string) {
	var el *Node
	d.Root.Walk(func(n *Node) bool {
		if n.Is("title") {
			el = n
			return false
		}
		return true
	})
	if el == nil {
		head := d.Head()
		if head == nil {
			return
		}
		el = d.CreateElement("title")
		head.AddChild(el)
	}
	el.SetTextContent(title)
}

// GetElementByID returns the first light-tree element with the given id.
func (d *Document) GetElementByID(id string) *Node {
	return getElementByID(d.Root, id)
}

func getElementByID(root *Node, id string) *Node {
	var found *Node
	root.Walk(func(n *Node) bool {
		if n.IsElement() && n.Attr("id") == id && n.HasAttribute("id") {
			found = n
			return false
		}
		return true
	})
	return found
}

// GetElementsByTagName collects light-tree elements with the given tag.
func (d *Document) GetElementsByTagName(tag string) []*Node {
	var out []*Node
	d.Root.Walk(func(n *Node) bool {
		if n.Is(tag) {
			out = append(out, n)
		}
		return true
	})
	return out
}
