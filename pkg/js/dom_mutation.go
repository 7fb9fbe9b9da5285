package js

import (
	"github.com/dop251/goja"
	"go.uber.org/zap"

	"lightprint/pkg/html"
)

// argNode returns the node behind a proxy argument; other values become
// text nodes, as append and friends do.
func (e *elementAccessor) argNode(v goja.Value) *html.Node {
	if n := e.ctx.unwrap(v); n != nil {
		return n
	}
	doc := e.node.OwnerDocument()
	if doc == nil {
		doc = e.ctx.doc
	}
	return doc.CreateTextNode(v.String())
}

func (e *elementAccessor) nodeArg(call goja.FunctionCall, i int, method string) *html.Node {
	if len(call.Arguments) <= i {
		panic(e.ctx.vm.NewTypeError("Failed to execute '" + method + "': argument required"))
	}
	n := e.ctx.unwrap(call.Arguments[i])
	if n == nil {
		panic(e.ctx.vm.NewTypeError("Failed to execute '" + method + "': parameter is not a Node"))
	}
	return n
}

func (e *elementAccessor) appendChildFn() func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		child := e.nodeArg(call, 0, "appendChild")
		if child.Contains(e.node) {
			panic(e.ctx.vm.NewTypeError("Failed to execute 'appendChild': the new child contains the parent"))
		}
		e.node.AddChild(child)
		e.ctx.upgradeTree(child)
		return e.ctx.proxy(child)
	}
}

func (e *elementAccessor) removeChildFn() func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		child := e.nodeArg(call, 0, "removeChild")
		if e.node.RemoveChild(child) == nil {
			panic(e.ctx.vm.NewTypeError("Failed to execute 'removeChild': the node to be removed is not a child of this node"))
		}
		return e.ctx.proxy(child)
	}
}

func (e *elementAccessor) insertBeforeFn() func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		child := e.nodeArg(call, 0, "insertBefore")
		ref := e.ctx.unwrap(call.Argument(1))
		e.node.InsertBefore(child, ref)
		e.ctx.upgradeTree(child)
		return e.ctx.proxy(child)
	}
}

// setInnerHTML parses markup in the context of the node and replaces its
// children. Parse failures leave the node empty.
func (e *elementAccessor) setInnerHTML(markup string) {
	e.node.ReplaceChildren()
	if markup == "" {
		return
	}
	doc := e.node.OwnerDocument()
	if doc == nil {
		doc = e.ctx.doc
	}
	context := e.node
	if !context.IsElement() {
		context = nil
	}
	nodes, err := doc.ParseFragment(markup, context)
	if err != nil {
		e.ctx.engine.logger.Warn("innerHTML", zap.Error(err))
		return
	}
	for _, n := range nodes {
		e.node.AddChild(n)
		e.ctx.upgradeTree(n)
	}
}

// insertArgs inserts each argument before ref under parent.
func (e *elementAccessor) insertArgs(parent, ref *html.Node, args []goja.Value) {
	for _, arg := range args {
		n := e.argNode(arg)
		if n == ref {
			continue
		}
		parent.InsertBefore(n, ref)
		e.ctx.upgradeTree(n)
	}
}

func (e *elementAccessor) appendFn() func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		e.insertArgs(e.node, nil, call.Arguments)
		return goja.Undefined()
	}
}

func (e *elementAccessor) prependFn() func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		var first *html.Node
		if len(e.node.Children) > 0 {
			first = e.node.Children[0]
		}
		e.insertArgs(e.node, first, call.Arguments)
		return goja.Undefined()
	}
}

func (e *elementAccessor) beforeFn() func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		if p := e.node.Parent; p != nil {
			e.insertArgs(p, e.node, call.Arguments)
		}
		return goja.Undefined()
	}
}

func (e *elementAccessor) afterFn() func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		p := e.node.Parent
		if p == nil {
			return goja.Undefined()
		}
		var next *html.Node
		if i := e.node.IndexInParent(); i+1 < len(p.Children) {
			next = p.Children[i+1]
		}
		e.insertArgs(p, next, call.Arguments)
		return goja.Undefined()
	}
}

func (e *elementAccessor) replaceWithFn() func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		p := e.node.Parent
		if p == nil {
			return goja.Undefined()
		}
		e.insertArgs(p, e.node, call.Arguments)
		p.RemoveChild(e.node)
		return goja.Undefined()
	}
}

func (e *elementAccessor) replaceChildrenFn() func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		e.node.ReplaceChildren()
		e.insertArgs(e.node, nil, call.Arguments)
		return goja.Undefined()
	}
}
