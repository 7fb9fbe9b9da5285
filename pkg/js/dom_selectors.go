package js

import (
	"github.com/dop251/goja"

	"lightprint/pkg/css"
	"lightprint/pkg/html"
)

// selectors parses a selector list argument and throws when it is
// invalid.
func selectors(ctx *domContext, call goja.FunctionCall, method string) []css.Selector {
	if len(call.Arguments) == 0 {
		panic(ctx.vm.NewTypeError("Failed to execute '" + method + "': 1 argument required"))
	}
	sels, err := css.ParseSelectorList(call.Arguments[0].String())
	if err != nil {
		panic(ctx.vm.NewGoError(err))
	}
	return sels
}

func matchesAny(n *html.Node, sels []css.Selector) bool {
	for _, s := range sels {
		if css.MatchesSelector(n, s) {
			return true
		}
	}
	return false
}

// descendants returns the elements under root in document order that
// match sels, stopping after limit matches when limit is positive.
func descendants(root *html.Node, sels []css.Selector, limit int) []*html.Node {
	var out []*html.Node
	root.Walk(func(n *html.Node) bool {
		if n != root && n.IsElement() && matchesAny(n, sels) {
			out = append(out, n)
			if limit > 0 && len(out) == limit {
				return false
			}
		}
		return true
	})
	return out
}

func querySelectorFn(ctx *domContext, root *html.Node) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		found := descendants(root, selectors(ctx, call, "querySelector"), 1)
		if len(found) == 0 {
			return goja.Null()
		}
		return ctx.proxy(found[0])
	}
}

func querySelectorAllFn(ctx *domContext, root *html.Node) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		return ctx.array(descendants(root, selectors(ctx, call, "querySelectorAll"), 0))
	}
}

func matchesFn(ctx *domContext, n *html.Node) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		return ctx.vm.ToValue(n.IsElement() && matchesAny(n, selectors(ctx, call, "matches")))
	}
}

func closestFn(ctx *domContext, n *html.Node) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		sels := selectors(ctx, call, "closest")
		for cur := n; cur != nil; cur = cur.ParentElement() {
			if cur.IsElement() && matchesAny(cur, sels) {
				return ctx.proxy(cur)
			}
		}
		return goja.Null()
	}
}
