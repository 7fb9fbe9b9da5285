package js

import (
	"fmt"
	"strings"

	"github.com/dop251/goja"
	"go.uber.org/zap"

	"lightprint/pkg/html"
)

var shadowProps = []string{
	"attachShadow", "shadowRoot",
	"host", "mode", "delegatesFocus", "clonable", "adoptedStyleSheets",
}

// shadowRoot returns the shadow root n is the root node of.
func shadowRoot(n *html.Node) *html.ShadowRoot {
	if n.Type != html.FragmentNode || n.Parent != nil {
		return nil
	}
	if sr := n.ShadowRootOf(); sr != nil && sr.Root == n {
		return sr
	}
	return nil
}

func (e *elementAccessor) shadowGet(key string) (goja.Value, bool) {
	vm := e.ctx.vm
	n := e.node

	if n.IsElement() {
		switch key {
		case "attachShadow":
			return vm.ToValue(e.attachShadowFn()), true
		case "shadowRoot":
			if sr := n.OpenShadowRoot(); sr != nil {
				return e.ctx.proxy(sr.Root), true
			}
			return goja.Null(), true
		}
		return nil, false
	}

	sr := shadowRoot(n)
	if sr == nil {
		return nil, false
	}
	switch key {
	case "host":
		return e.ctx.proxy(sr.Host()), true
	case "mode":
		return vm.ToValue(string(sr.Mode)), true
	case "delegatesFocus":
		return vm.ToValue(sr.DelegatesFocus), true
	case "clonable":
		return vm.ToValue(sr.Clonable), true
	case "adoptedStyleSheets":
		items := make([]any, 0, len(sr.AdoptedStyleSheets))
		for _, s := range sr.AdoptedStyleSheets {
			items = append(items, e.ctx.sheetProxy(s))
		}
		return vm.NewArray(items...), true
	}
	return nil, false
}

func (e *elementAccessor) shadowSet(key string, val goja.Value) bool {
	sr := shadowRoot(e.node)
	if sr == nil || key != "adoptedStyleSheets" {
		return false
	}
	var sheets []*html.ConstructedSheet
	if o, ok := val.(*goja.Object); ok {
		var length int
		if v := member(o, "length"); v != nil {
			length = int(v.ToInteger())
		}
		for i := 0; i < length; i++ {
			item, _ := o.Get(fmt.Sprint(i)).(*goja.Object)
			s, ok := e.ctx.sheets[item]
			if !ok {
				panic(e.ctx.vm.NewTypeError("Failed to set 'adoptedStyleSheets': item is not a CSSStyleSheet"))
			}
			sheets = append(sheets, s)
		}
	}
	sr.SetAdoptedStyleSheets(sheets)
	return true
}

// member returns o[key], or nil when o has no such member or it is
// undefined.
func member(o *goja.Object, key string) goja.Value {
	v := o.Get(key)
	if v == nil || goja.IsUndefined(v) {
		return nil
	}
	return v
}

func (e *elementAccessor) attachShadowFn() func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		vm := e.ctx.vm
		init := html.ShadowRootInit{}
		if o, ok := call.Argument(0).(*goja.Object); ok {
			if v := member(o, "mode"); v != nil {
				init.Mode = html.ShadowRootMode(strings.ToLower(v.String()))
			}
			if v := member(o, "delegatesFocus"); v != nil {
				init.DelegatesFocus = v.ToBoolean()
			}
			if v := member(o, "clonable"); v != nil {
				init.Clonable = v.ToBoolean()
			}
		}
		if init.Mode != html.ShadowRootOpen && init.Mode != html.ShadowRootClosed {
			panic(vm.NewTypeError("Failed to execute 'attachShadow': mode must be 'open' or 'closed'"))
		}
		sr, err := e.node.AttachShadow(init)
		if err != nil {
			panic(vm.NewGoError(err))
		}
		return e.ctx.proxy(sr.Root)
	}
}

// registerStyleSheets installs the CSSStyleSheet constructor for adopted
// sheets.
func registerStyleSheets(ctx *domContext) {
	ctx.vm.Set("CSSStyleSheet", func(call goja.ConstructorCall) *goja.Object {
		return ctx.sheetProxy(html.NewConstructedSheet(""))
	})
}

func (ctx *domContext) sheetProxy(s *html.ConstructedSheet) *goja.Object {
	for o, sheet := range ctx.sheets {
		if sheet == s {
			return o
		}
	}
	vm := ctx.vm
	o := vm.NewObject()
	o.Set("replaceSync", func(call goja.FunctionCall) goja.Value {
		s.ReplaceSync(argString(call, 0))
		return goja.Undefined()
	})
	ctx.accessor(o, "cssRules", func() goja.Value {
		rules := s.CSSRules()
		items := make([]any, len(rules))
		for i, r := range rules {
			rule := vm.NewObject()
			rule.Set("cssText", r)
			items[i] = rule
		}
		return vm.NewArray(items...)
	}, nil)
	ctx.sheets[o] = s
	return o
}

// registerCustomElements installs customElements. A definition may give a
// children function; it then answers for the element's children wherever
// they are enumerated, as custom elements that override children do.
func registerCustomElements(ctx *domContext) {
	vm := ctx.vm
	registry := vm.NewObject()
	registry.Set("define", func(call goja.FunctionCall) goja.Value {
		name := strings.ToLower(argString(call, 0))
		if !strings.Contains(name, "-") {
			panic(vm.NewTypeError(fmt.Sprintf("Failed to execute 'define': %q is not a valid custom element name", name)))
		}
		if _, ok := ctx.defined[name]; ok {
			panic(vm.NewTypeError(fmt.Sprintf("Failed to execute 'define': %q has already been defined", name)))
		}
		var children goja.Callable
		if o, ok := call.Argument(1).(*goja.Object); ok {
			children, _ = goja.AssertFunction(o.Get("children"))
		}
		ctx.defined[name] = children
		for _, n := range ctx.doc.GetElementsByTagName(name) {
			ctx.upgrade(n)
		}
		return goja.Undefined()
	})
	registry.Set("get", func(call goja.FunctionCall) goja.Value {
		_, ok := ctx.defined[strings.ToLower(argString(call, 0))]
		return vm.ToValue(ok)
	})
	vm.Set("customElements", registry)
}

// upgradeTree upgrades n and its descendants.
func (ctx *domContext) upgradeTree(n *html.Node) {
	n.Walk(func(c *html.Node) bool {
		ctx.upgrade(c)
		return true
	})
}

// upgrade installs the children accessor of n's definition, if any. The
// accessor runs the script function under the engine lock, so it may be
// called from any goroutine once scripts have finished.
func (ctx *domContext) upgrade(n *html.Node) {
	if !n.IsElement() {
		return
	}
	fn := ctx.defined[n.TagName]
	if fn == nil {
		return
	}
	n.SetChildrenAccessor(func(el *html.Node) ([]*html.Node, error) {
		ctx.engine.mu.Lock()
		defer ctx.engine.mu.Unlock()

		this := ctx.proxy(el)
		v, err := fn(this, this)
		if err != nil {
			ctx.engine.logger.Debug("children accessor failed", zap.String("tag", el.TagName), zap.Error(err))
			return nil, err
		}
		o, ok := v.(*goja.Object)
		if !ok {
			return nil, fmt.Errorf("children of %s: not an array", el.TagName)
		}
		var length int
		if v := member(o, "length"); v != nil {
			length = int(v.ToInteger())
		}
		kids := make([]*html.Node, 0, length)
		for i := 0; i < length; i++ {
			k := ctx.unwrap(o.Get(fmt.Sprint(i)))
			if !k.IsElement() {
				return nil, fmt.Errorf("children of %s: item %d is not an element", el.TagName, i)
			}
			kids = append(kids, k)
		}
		return kids, nil
	})
}
