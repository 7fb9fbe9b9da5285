package js

import (
	"strings"
	"unicode"

	"github.com/dop251/goja"

	"lightprint/pkg/css"
	"lightprint/pkg/html"
)

// domContext holds the bindings of one document. It keeps a node-to-proxy
// cache so the same JS object is returned for the same node (needed for
// === identity checks), and the reverse map to unwrap arguments.
type domContext struct {
	engine  *Engine
	vm      *goja.Runtime
	doc     *html.Document
	proxies map[*html.Node]*goja.Object
	nodes   map[*goja.Object]*html.Node
	sheets  map[*goja.Object]*html.ConstructedSheet
	defined map[string]goja.Callable
}

// registerDocument sets up the document, customElements and CSSStyleSheet
// globals for doc.
func registerDocument(e *Engine, doc *html.Document) *domContext {
	ctx := &domContext{
		engine:  e,
		vm:      e.vm,
		doc:     doc,
		proxies: make(map[*html.Node]*goja.Object),
		nodes:   make(map[*goja.Object]*html.Node),
		sheets:  make(map[*goja.Object]*html.ConstructedSheet),
		defined: make(map[string]goja.Callable),
	}
	vm := e.vm

	d := vm.NewObject()
	d.Set("getElementById", func(call goja.FunctionCall) goja.Value {
		return ctx.proxy(doc.GetElementByID(argString(call, 0)))
	})
	d.Set("getElementsByTagName", func(call goja.FunctionCall) goja.Value {
		return ctx.array(doc.GetElementsByTagName(strings.ToLower(argString(call, 0))))
	})
	d.Set("getElementsByClassName", func(call goja.FunctionCall) goja.Value {
		return ctx.array(elementsByClassName(doc.Root, argString(call, 0)))
	})
	d.Set("createElement", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			panic(vm.NewTypeError("Failed to execute 'createElement' on 'Document': 1 argument required"))
		}
		n := doc.CreateElement(strings.ToLower(call.Arguments[0].String()))
		ctx.upgrade(n)
		return ctx.proxy(n)
	})
	d.Set("createTextNode", func(call goja.FunctionCall) goja.Value {
		return ctx.proxy(doc.CreateTextNode(argString(call, 0)))
	})
	d.Set("querySelector", querySelectorFn(ctx, doc.Root))
	d.Set("querySelectorAll", querySelectorAllFn(ctx, doc.Root))
	ctx.accessor(d, "documentElement", func() goja.Value { return ctx.proxy(doc.DocumentElement()) }, nil)
	ctx.accessor(d, "head", func() goja.Value { return ctx.proxy(doc.Head()) }, nil)
	ctx.accessor(d, "body", func() goja.Value { return ctx.proxy(doc.Body()) }, nil)
	ctx.accessor(d, "title",
		func() goja.Value { return vm.ToValue(doc.Title()) },
		func(v goja.Value) { doc.SetTitle(v.String()) })
	vm.Set("document", d)

	registerCustomElements(ctx)
	registerStyleSheets(ctx)
	return ctx
}

// accessor defines a getter, and a setter when set is non-nil, on o.
func (ctx *domContext) accessor(o *goja.Object, name string, get func() goja.Value, set func(goja.Value)) {
	getter := ctx.vm.ToValue(func(goja.FunctionCall) goja.Value { return get() })
	var setter goja.Value
	if set != nil {
		setter = ctx.vm.ToValue(func(call goja.FunctionCall) goja.Value {
			set(call.Argument(0))
			return goja.Undefined()
		})
	}
	_ = o.DefineAccessorProperty(name, getter, setter, goja.FLAG_TRUE, goja.FLAG_TRUE)
}

func argString(call goja.FunctionCall, i int) string {
	v := call.Argument(i)
	if goja.IsUndefined(v) || goja.IsNull(v) {
		return ""
	}
	return v.String()
}

func elementsByClassName(root *html.Node, cls string) []*html.Node {
	want := strings.Fields(cls)
	if len(want) == 0 {
		return nil
	}
	var out []*html.Node
	root.Walk(func(n *html.Node) bool {
		if n != root && n.IsElement() && hasClasses(n, want) {
			out = append(out, n)
		}
		return true
	})
	return out
}

func hasClasses(n *html.Node, want []string) bool {
	have := strings.Fields(n.Attr("class"))
	for _, w := range want {
		if !containsToken(have, w) {
			return false
		}
	}
	return true
}

// proxy returns the JS object for n, or null.
func (ctx *domContext) proxy(n *html.Node) goja.Value {
	if n == nil {
		return goja.Null()
	}
	if o, ok := ctx.proxies[n]; ok {
		return o
	}
	o := ctx.vm.NewDynamicObject(&elementAccessor{ctx: ctx, node: n})
	ctx.proxies[n] = o
	ctx.nodes[o] = n
	return o
}

// unwrap returns the node behind a proxy, or nil for anything else.
func (ctx *domContext) unwrap(v goja.Value) *html.Node {
	o, ok := v.(*goja.Object)
	if !ok {
		return nil
	}
	return ctx.nodes[o]
}

// array returns a JS array of proxies.
func (ctx *domContext) array(nodes []*html.Node) goja.Value {
	items := make([]any, len(nodes))
	for i, n := range nodes {
		items[i] = ctx.proxy(n)
	}
	return ctx.vm.NewArray(items...)
}

// elementAccessor implements goja.DynamicObject for nodes: elements, text,
// and shadow roots.
type elementAccessor struct {
	ctx  *domContext
	node *html.Node
}

var nodeProps = []string{
	"nodeType", "nodeName", "nodeValue", "tagName", "localName", "id", "className",
	"textContent", "innerHTML", "outerHTML",
	"getAttribute", "setAttribute", "hasAttribute", "removeAttribute",
	"children", "childNodes", "parentElement", "parentNode",
	"firstChild", "lastChild", "firstElementChild", "lastElementChild",
	"nextSibling", "previousSibling", "nextElementSibling", "previousElementSibling",
	"childElementCount", "style", "classList",
	"appendChild", "removeChild", "insertBefore",
	"append", "prepend", "before", "after", "remove", "replaceWith", "replaceChildren",
	"querySelector", "querySelectorAll", "matches", "closest",
	"cloneNode", "contains", "hasChildNodes",
	"getElementsByTagName", "getElementsByClassName",
}

var nodePropSet = func() map[string]bool {
	m := make(map[string]bool)
	for _, list := range [][]string{nodeProps, stateProps, shadowProps} {
		for _, k := range list {
			m[k] = true
		}
	}
	return m
}()

func (e *elementAccessor) Get(key string) goja.Value {
	if v, ok := e.stateGet(key); ok {
		return v
	}
	if v, ok := e.shadowGet(key); ok {
		return v
	}
	vm := e.ctx.vm
	n := e.node

	switch key {
	case "nodeType":
		switch n.Type {
		case html.TextNode:
			return vm.ToValue(3)
		case html.CommentNode:
			return vm.ToValue(8)
		case html.DocumentNode:
			return vm.ToValue(9)
		case html.FragmentNode:
			return vm.ToValue(11)
		}
		return vm.ToValue(1)
	case "nodeName":
		switch n.Type {
		case html.TextNode:
			return vm.ToValue("#text")
		case html.CommentNode:
			return vm.ToValue("#comment")
		case html.FragmentNode:
			return vm.ToValue("#document-fragment")
		}
		return vm.ToValue(strings.ToUpper(n.TagName))
	case "nodeValue":
		if n.Type == html.TextNode || n.Type == html.CommentNode {
			return vm.ToValue(n.Text)
		}
		return goja.Null()
	case "tagName":
		if !n.IsElement() {
			return goja.Undefined()
		}
		return vm.ToValue(strings.ToUpper(n.TagName))
	case "localName":
		if !n.IsElement() {
			return goja.Null()
		}
		return vm.ToValue(n.TagName)
	case "id":
		return vm.ToValue(n.Attr("id"))
	case "className":
		return vm.ToValue(n.Attr("class"))
	case "textContent":
		return vm.ToValue(n.TextContent())
	case "innerHTML":
		return vm.ToValue(n.Serialize())
	case "outerHTML":
		return vm.ToValue(n.SerializeOuter())
	case "getAttribute":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			v, ok := n.GetAttribute(strings.ToLower(argString(call, 0)))
			if !ok {
				return goja.Null()
			}
			return vm.ToValue(v)
		})
	case "setAttribute":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			if len(call.Arguments) < 2 {
				panic(vm.NewTypeError("Failed to execute 'setAttribute': 2 arguments required"))
			}
			e.setAttribute(strings.ToLower(call.Arguments[0].String()), call.Arguments[1].String())
			return goja.Undefined()
		})
	case "hasAttribute":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			return vm.ToValue(n.HasAttribute(strings.ToLower(argString(call, 0))))
		})
	case "removeAttribute":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			n.RemoveAttribute(strings.ToLower(argString(call, 0)))
			return goja.Undefined()
		})
	case "children":
		return e.ctx.array(n.ElementChildren())
	case "childNodes":
		return e.ctx.array(n.Children)
	case "parentElement":
		return e.ctx.proxy(n.ParentElement())
	case "parentNode":
		if n.Parent == nil || n.Parent.Type == html.DocumentNode {
			return goja.Null()
		}
		return e.ctx.proxy(n.Parent)
	case "firstChild":
		return e.child(true, false)
	case "lastChild":
		return e.child(false, false)
	case "firstElementChild":
		return e.child(true, true)
	case "lastElementChild":
		return e.child(false, true)
	case "nextSibling":
		return e.sibling(1, false)
	case "previousSibling":
		return e.sibling(-1, false)
	case "nextElementSibling":
		return e.sibling(1, true)
	case "previousElementSibling":
		return e.sibling(-1, true)
	case "childElementCount":
		return vm.ToValue(len(n.ElementChildren()))
	case "style":
		return vm.NewDynamicObject(&styleAccessor{vm: vm, node: n})
	case "classList":
		return newClassListProxy(e.ctx, n)

	case "appendChild":
		return vm.ToValue(e.appendChildFn())
	case "removeChild":
		return vm.ToValue(e.removeChildFn())
	case "insertBefore":
		return vm.ToValue(e.insertBeforeFn())
	case "append":
		return vm.ToValue(e.appendFn())
	case "prepend":
		return vm.ToValue(e.prependFn())
	case "before":
		return vm.ToValue(e.beforeFn())
	case "after":
		return vm.ToValue(e.afterFn())
	case "remove":
		return vm.ToValue(func(goja.FunctionCall) goja.Value {
			n.Remove()
			return goja.Undefined()
		})
	case "replaceWith":
		return vm.ToValue(e.replaceWithFn())
	case "replaceChildren":
		return vm.ToValue(e.replaceChildrenFn())

	case "querySelector":
		return vm.ToValue(querySelectorFn(e.ctx, n))
	case "querySelectorAll":
		return vm.ToValue(querySelectorAllFn(e.ctx, n))
	case "matches":
		return vm.ToValue(matchesFn(e.ctx, n))
	case "closest":
		return vm.ToValue(closestFn(e.ctx, n))

	case "cloneNode":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			doc := n.OwnerDocument()
			if doc == nil {
				doc = e.ctx.doc
			}
			return e.ctx.proxy(doc.ImportNode(n, call.Argument(0).ToBoolean()))
		})
	case "contains":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			other := e.ctx.unwrap(call.Argument(0))
			return vm.ToValue(other != nil && n.Contains(other))
		})
	case "hasChildNodes":
		return vm.ToValue(func(goja.FunctionCall) goja.Value {
			return vm.ToValue(len(n.Children) > 0)
		})
	case "getElementsByTagName":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			tag := strings.ToLower(argString(call, 0))
			var out []*html.Node
			n.Walk(func(c *html.Node) bool {
				if c != n && c.IsElement() && (tag == "*" || c.TagName == tag) {
					out = append(out, c)
				}
				return true
			})
			return e.ctx.array(out)
		})
	case "getElementsByClassName":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			return e.ctx.array(elementsByClassName(n, argString(call, 0)))
		})
	}
	return goja.Undefined()
}

func (e *elementAccessor) Set(key string, val goja.Value) bool {
	if e.stateSet(key, val) || e.shadowSet(key, val) {
		return true
	}
	switch key {
	case "textContent":
		e.node.SetTextContent(val.String())
		return true
	case "className":
		e.node.SetAttribute("class", val.String())
		return true
	case "id":
		e.node.SetAttribute("id", val.String())
		return true
	case "innerHTML":
		e.setInnerHTML(val.String())
		return true
	case "nodeValue":
		if e.node.Type == html.TextNode || e.node.Type == html.CommentNode {
			e.node.Text = val.String()
		}
		return true
	}
	return false
}

func (e *elementAccessor) Has(key string) bool { return nodePropSet[key] }

func (e *elementAccessor) Delete(key string) bool { return false }

func (e *elementAccessor) Keys() []string { return nodeProps }

// setAttribute sets an attribute, reloading media when src changes.
func (e *elementAccessor) setAttribute(name, value string) {
	if name == "src" && e.node.IsMedia() {
		e.node.SetSrc(value)
		return
	}
	e.node.SetAttribute(name, value)
}

// styleAccessor maps camelCase property access to the element's inline
// style attribute. Shorthands expand to their longhands.
type styleAccessor struct {
	vm   *goja.Runtime
	node *html.Node
}

func (s *styleAccessor) decls() css.Declarations {
	return css.ParseDeclarations(s.node.Attr("style"))
}

func (s *styleAccessor) write(decls css.Declarations) {
	if len(decls) == 0 {
		s.node.RemoveAttribute("style")
		return
	}
	s.node.SetAttribute("style", decls.String())
}

func (s *styleAccessor) setProperty(prop, value string, important bool) {
	decls := s.decls()
	if strings.TrimSpace(value) == "" {
		s.removeProperty(prop)
		return
	}
	set := css.ParseDeclarations(prop + ": " + value)
	for i := range set {
		set[i].Important = important
	}
	s.write(decls.Merge(set))
}

func (s *styleAccessor) removeProperty(prop string) {
	decls := s.decls()
	for _, p := range css.ParseDeclarations(prop + ": inherit").Properties() {
		decls.Remove(p)
	}
	decls.Remove(prop)
	s.write(decls)
}

func (s *styleAccessor) Get(key string) goja.Value {
	switch key {
	case "cssText":
		return s.vm.ToValue(s.decls().String())
	case "length":
		return s.vm.ToValue(len(s.decls()))
	case "setProperty":
		return s.vm.ToValue(func(call goja.FunctionCall) goja.Value {
			s.setProperty(argString(call, 0), argString(call, 1), strings.EqualFold(argString(call, 2), "important"))
			return goja.Undefined()
		})
	case "getPropertyValue":
		return s.vm.ToValue(func(call goja.FunctionCall) goja.Value {
			v, _ := s.decls().Get(argString(call, 0))
			return s.vm.ToValue(v)
		})
	case "removeProperty":
		return s.vm.ToValue(func(call goja.FunctionCall) goja.Value {
			prop := argString(call, 0)
			old, _ := s.decls().Get(prop)
			s.removeProperty(prop)
			return s.vm.ToValue(old)
		})
	}
	v, _ := s.decls().Get(camelToKebab(key))
	return s.vm.ToValue(v)
}

func (s *styleAccessor) Set(key string, val goja.Value) bool {
	if key == "cssText" {
		s.write(css.ParseDeclarations(val.String()))
		return true
	}
	s.setProperty(camelToKebab(key), val.String(), false)
	return true
}

func (s *styleAccessor) Has(key string) bool { return true }

func (s *styleAccessor) Delete(key string) bool {
	s.removeProperty(camelToKebab(key))
	return true
}

func (s *styleAccessor) Keys() []string { return s.decls().Properties() }

// camelToKebab converts a JS camelCase property name to CSS kebab-case.
func camelToKebab(s string) string {
	if s == "cssFloat" {
		return "float"
	}
	var sb strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				sb.WriteByte('-')
			}
			sb.WriteRune(unicode.ToLower(r))
		} else {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
