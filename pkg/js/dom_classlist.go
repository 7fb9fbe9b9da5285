package js

import (
	"slices"
	"strconv"
	"strings"

	"github.com/dop251/goja"

	"lightprint/pkg/html"
)

// newClassListProxy returns a DOMTokenList view of the class attribute.
func newClassListProxy(ctx *domContext, node *html.Node) goja.Value {
	return ctx.vm.NewDynamicObject(&classListAccessor{ctx: ctx, node: node})
}

type classListAccessor struct {
	ctx  *domContext
	node *html.Node
}

var classListProps = []string{"length", "value", "add", "remove", "toggle", "contains", "replace", "item", "toString"}

func (cl *classListAccessor) classes() []string {
	return strings.Fields(cl.node.Attr("class"))
}

func (cl *classListAccessor) setClasses(classes []string) {
	cl.node.SetAttribute("class", strings.Join(classes, " "))
}

func (cl *classListAccessor) fn(f func(call goja.FunctionCall) goja.Value) goja.Value {
	return cl.ctx.vm.ToValue(f)
}

func (cl *classListAccessor) Get(key string) goja.Value {
	vm := cl.ctx.vm
	classes := cl.classes()

	switch key {
	case "length":
		return vm.ToValue(len(classes))
	case "value":
		return vm.ToValue(strings.Join(classes, " "))
	case "add":
		return cl.fn(func(call goja.FunctionCall) goja.Value {
			cls := cl.classes()
			for _, arg := range call.Arguments {
				if token := arg.String(); !containsToken(cls, token) {
					cls = append(cls, token)
				}
			}
			cl.setClasses(cls)
			return goja.Undefined()
		})
	case "remove":
		return cl.fn(func(call goja.FunctionCall) goja.Value {
			cls := cl.classes()
			for _, arg := range call.Arguments {
				cls = removeToken(cls, arg.String())
			}
			cl.setClasses(cls)
			return goja.Undefined()
		})
	case "toggle":
		return cl.fn(func(call goja.FunctionCall) goja.Value {
			if len(call.Arguments) == 0 {
				panic(vm.NewTypeError("Failed to execute 'toggle': 1 argument required"))
			}
			token := call.Arguments[0].String()
			cls := cl.classes()
			want := !containsToken(cls, token)
			if len(call.Arguments) > 1 {
				want = call.Arguments[1].ToBoolean()
			}
			cls = removeToken(cls, token)
			if want {
				cls = append(cls, token)
			}
			cl.setClasses(cls)
			return vm.ToValue(want)
		})
	case "contains":
		return cl.fn(func(call goja.FunctionCall) goja.Value {
			return vm.ToValue(containsToken(classes, argString(call, 0)))
		})
	case "replace":
		return cl.fn(func(call goja.FunctionCall) goja.Value {
			if len(call.Arguments) < 2 {
				panic(vm.NewTypeError("Failed to execute 'replace': 2 arguments required"))
			}
			cls := cl.classes()
			i := slices.Index(cls, call.Arguments[0].String())
			if i < 0 {
				return vm.ToValue(false)
			}
			cls[i] = call.Arguments[1].String()
			cl.setClasses(cls)
			return vm.ToValue(true)
		})
	case "item":
		return cl.fn(func(call goja.FunctionCall) goja.Value {
			i := int(call.Argument(0).ToInteger())
			if i < 0 || i >= len(classes) {
				return goja.Null()
			}
			return vm.ToValue(classes[i])
		})
	case "toString":
		return cl.fn(func(goja.FunctionCall) goja.Value {
			return vm.ToValue(strings.Join(classes, " "))
		})
	}
	if i, err := strconv.Atoi(key); err == nil && i >= 0 && i < len(classes) {
		return vm.ToValue(classes[i])
	}
	return goja.Undefined()
}

func (cl *classListAccessor) Set(key string, val goja.Value) bool {
	if key == "value" {
		cl.node.SetAttribute("class", val.String())
		return true
	}
	return false
}

func (cl *classListAccessor) Has(key string) bool {
	if slices.Contains(classListProps, key) {
		return true
	}
	i, err := strconv.Atoi(key)
	return err == nil && i >= 0 && i < len(cl.classes())
}

func (cl *classListAccessor) Delete(key string) bool { return false }

func (cl *classListAccessor) Keys() []string { return classListProps }

func containsToken(tokens []string, token string) bool {
	return slices.Contains(tokens, token)
}

func removeToken(tokens []string, token string) []string {
	return slices.DeleteFunc(tokens, func(t string) bool { return t == token })
}
