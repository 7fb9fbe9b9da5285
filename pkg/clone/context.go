// Package clone makes an imported copy of a DOM subtree look like its
// source: it prunes what does not render, writes the computed-style
// differences back as CSS, synthesises pseudo-element rules, copies live
// element state and rebuilds open shadow trees.
package clone

import (
	"errors"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"lightprint/pkg/css"
	"lightprint/pkg/html"
	"lightprint/pkg/style"
)

// IDAttribute marks copy elements that need a generated selector.
const IDAttribute = "data-print-id"

// ErrInvalidTarget is returned when the roots handed to Traverse do not
// belong to the context's documents.
var ErrInvalidTarget = errors.New("clone: invalid target")

// Stats counts what a traversal did, shadow trees included.
type Stats struct {
	Elements      int // element pairs visited
	Pruned        int // copy subtrees removed
	Uncooperative int // elements whose children could not be read
	Rules         int // rules written to the style node
	ShadowRoots   int // shadow trees rebuilt on the copy
}

// finalizeTask moves one element's style diff from its inline style into
// the shared style node once traversal is done.
type finalizeTask struct {
	node      *html.Node
	inline    string
	hadInline bool
	decls     css.Declarations
}

// Context holds the state of one clone operation: the style views of both
// documents, the generated ids, the shared style node and the deferred
// tasks. A Context is not safe for concurrent use; concurrent operations
// each get their own.
type Context struct {
	source *style.View
	target *style.View
	doc    *html.Document
	logger *zap.Logger

	// mount receives the style node: the document head, or the shadow
	// root for a context scoped to a shadow tree.
	mount  *html.Node
	scoped bool

	ids       map[*html.Node]int
	nextID    int
	styleNode *html.Node
	mounted   bool
	tasks     []finalizeTask
	stats     *Stats
}

// Option configures a Context.
type Option func(*Context)

// WithLogger sets the logger traversal problems are reported to. The
// default discards them.
func WithLogger(l *zap.Logger) Option {
	return func(c *Context) { c.logger = l }
}

// NewContext creates a context that styles elements of target's document
// after elements of source's document.
func NewContext(source, target *style.View, opts ...Option) *Context {
	c := &Context{
		source: source,
		target: target,
		doc:    target.Document(),
		logger: zap.NewNop(),
		ids:    make(map[*html.Node]int),
		stats:  &Stats{},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.mount = c.doc.Head()
	if c.mount == nil {
		c.mount = c.doc.DocumentElement()
	}
	return c
}

// shadowContext returns a fresh context for a shadow tree of the target
// document. It shares views, logger and stats with c but has its own ids,
// style node and tasks.
func (c *Context) shadowContext(sr *html.ShadowRoot) *Context {
	return &Context{
		source: c.source,
		target: c.target,
		doc:    c.doc,
		logger: c.logger,
		mount:  sr.Root,
		scoped: true,
		ids:    make(map[*html.Node]int),
		stats:  c.stats,
	}
}

func (c *Context) Stats() Stats { return *c.stats }

// MarkID returns the id of n, assigning the next one on first use.
func (c *Context) MarkID(n *html.Node) string {
	id, ok := c.ids[n]
	if !ok {
		c.nextID++
		id = c.nextID
		c.ids[n] = id
		n.SetAttribute(IDAttribute, strconv.Itoa(id))
	}
	return strconv.Itoa(id)
}

// Selector returns an attribute selector matching only n.
func (c *Context) Selector(n *html.Node) string {
	return `[` + IDAttribute + `="` + c.MarkID(n) + `"]`
}

// stripStaleID removes an id attribute this context did not assign, as
// found on copies of already printed content.
func (c *Context) stripStaleID(n *html.Node) {
	if _, ok := c.ids[n]; !ok && n.HasAttribute(IDAttribute) {
		n.RemoveAttribute(IDAttribute)
	}
}

// AppendStyle adds CSS text to the shared style node, creating the node on
// first use. Text appended after mounting still lands in the mounted node.
func (c *Context) AppendStyle(text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	if c.styleNode == nil {
		c.styleNode = c.doc.CreateElement("style")
	}
	cur := c.styleNode.TextContent()
	if cur != "" {
		cur += "\n"
	}
	c.styleNode.SetTextContent(cur + text)
}

func (c *Context) appendRule(selector string, decls css.Declarations) {
	c.AppendStyle(selector + "{" + decls.String() + "}")
	c.stats.Rules++
}

// StyleNode returns the shared style node, or nil before the first append.
func (c *Context) StyleNode() *html.Node { return c.styleNode }

// MountStyle inserts the shared style node into the document head (or the
// shadow root). It does nothing before the first append or once mounted.
func (c *Context) MountStyle() {
	if c.mounted || c.styleNode == nil {
		return
	}
	c.mount.AddChild(c.styleNode)
	c.mounted = true
}

func (c *Context) addTask(t finalizeTask) {
	c.tasks = append(c.tasks, t)
}

// FlushTasks runs the deferred tasks in creation order and drops them.
// Each task restores the element's imported inline style and emits its
// diff as a rule keyed by the element's id. Declarations for properties
// the restored inline style also sets are marked important so the rule
// still wins over them.
func (c *Context) FlushTasks() {
	tasks := c.tasks
	c.tasks = nil
	for _, t := range tasks {
		var inline css.Declarations
		if t.hadInline {
			t.node.SetAttribute("style", t.inline)
			inline = css.ParseDeclarations(t.inline)
		} else {
			t.node.RemoveAttribute("style")
		}
		decls := make(css.Declarations, len(t.decls))
		for i, d := range t.decls {
			d.Important = d.Important || inline.Has(d.Property)
			decls[i] = d
		}
		c.appendRule(c.Selector(t.node), decls)
	}
}

// Pending reports the number of queued tasks.
func (c *Context) Pending() int { return len(c.tasks) }
