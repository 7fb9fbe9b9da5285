package js

import (
	"strconv"

	"github.com/dop251/goja"

	"lightprint/pkg/html"
)

// Live state: properties that do not reflect attributes and so are lost
// by a structural copy.
var stateProps = []string{
	"value", "checked", "indeterminate", "selected", "selectedIndex", "options",
	"scrollTop", "scrollLeft", "scrollTo",
	"currentTime", "paused", "play", "pause", "src", "currentSrc", "autoplay", "load",
	"getContext", "width", "height", "naturalWidth", "naturalHeight",
}

func hasValue(n *html.Node) bool {
	switch n.TagName {
	case "input", "textarea", "select", "option", "button":
		return n.IsElement()
	}
	return false
}

func (e *elementAccessor) stateGet(key string) (goja.Value, bool) {
	vm := e.ctx.vm
	n := e.node
	if !n.IsElement() {
		return nil, false
	}

	switch key {
	case "value":
		if hasValue(n) {
			return vm.ToValue(n.Value()), true
		}
	case "checked", "indeterminate":
		if n.Is("input") {
			if key == "checked" {
				return vm.ToValue(n.Checked()), true
			}
			return vm.ToValue(n.Indeterminate()), true
		}
	case "selected":
		if n.Is("option") {
			return vm.ToValue(n.Selected()), true
		}
	case "selectedIndex":
		if n.Is("select") {
			return vm.ToValue(n.SelectedIndex()), true
		}
	case "options":
		if n.Is("select") {
			return e.ctx.array(n.Options()), true
		}
	case "scrollTop":
		return vm.ToValue(n.ScrollTop()), true
	case "scrollLeft":
		return vm.ToValue(n.ScrollLeft()), true
	case "scrollTo":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			top, left := n.ScrollTop(), n.ScrollLeft()
			if o, ok := call.Argument(0).(*goja.Object); ok {
				if v := o.Get("top"); v != nil && !goja.IsUndefined(v) {
					top = v.ToFloat()
				}
				if v := o.Get("left"); v != nil && !goja.IsUndefined(v) {
					left = v.ToFloat()
				}
			} else if len(call.Arguments) >= 2 {
				left, top = call.Arguments[0].ToFloat(), call.Arguments[1].ToFloat()
			}
			n.SetScroll(top, left)
			return goja.Undefined()
		}), true
	}

	if n.IsMedia() {
		switch key {
		case "currentTime":
			return vm.ToValue(n.CurrentTime()), true
		case "paused":
			return vm.ToValue(n.Paused()), true
		case "currentSrc":
			return vm.ToValue(n.CurrentSrc()), true
		case "src":
			return vm.ToValue(n.Attr("src")), true
		case "autoplay":
			return vm.ToValue(n.HasAttribute("autoplay")), true
		case "load":
			return vm.ToValue(func(goja.FunctionCall) goja.Value {
				n.LoadMedia()
				return goja.Undefined()
			}), true
		case "play":
			return vm.ToValue(func(goja.FunctionCall) goja.Value {
				p, resolve, reject := vm.NewPromise()
				if err := n.Play(); err != nil {
					_ = reject(vm.NewGoError(err))
				} else {
					_ = resolve(goja.Undefined())
				}
				return vm.ToValue(p)
			}), true
		case "pause":
			return vm.ToValue(func(goja.FunctionCall) goja.Value {
				n.Pause()
				return goja.Undefined()
			}), true
		}
	}

	switch {
	case n.Is("canvas"):
		switch key {
		case "getContext":
			return vm.ToValue(func(call goja.FunctionCall) goja.Value {
				if argString(call, 0) != "2d" {
					return goja.Null()
				}
				return e.ctx.context2D(n)
			}), true
		case "width", "height":
			w, h := n.CanvasSize()
			if key == "width" {
				return vm.ToValue(w), true
			}
			return vm.ToValue(h), true
		}
	case n.Is("img"):
		switch key {
		case "naturalWidth", "naturalHeight":
			w, h, _ := n.NaturalSize()
			if key == "naturalWidth" {
				return vm.ToValue(w), true
			}
			return vm.ToValue(h), true
		}
	}
	return nil, false
}

func (e *elementAccessor) stateSet(key string, val goja.Value) bool {
	n := e.node
	if !n.IsElement() {
		return false
	}

	switch key {
	case "value":
		if hasValue(n) {
			n.SetValue(val.String())
			return true
		}
	case "checked":
		if n.Is("input") {
			n.SetChecked(val.ToBoolean())
			return true
		}
	case "indeterminate":
		if n.Is("input") {
			n.SetIndeterminate(val.ToBoolean())
			return true
		}
	case "selected":
		if n.Is("option") {
			n.SetSelected(val.ToBoolean())
			return true
		}
	case "selectedIndex":
		if n.Is("select") {
			n.SetSelectedIndex(int(val.ToInteger()))
			return true
		}
	case "scrollTop":
		n.SetScrollTop(val.ToFloat())
		return true
	case "scrollLeft":
		n.SetScrollLeft(val.ToFloat())
		return true
	}

	if n.IsMedia() {
		switch key {
		case "currentTime":
			n.SetCurrentTime(val.ToFloat())
			return true
		case "src":
			n.SetSrc(val.String())
			return true
		case "autoplay":
			n.SetAutoplay(val.ToBoolean())
			return true
		}
	}

	if n.Is("canvas") && (key == "width" || key == "height") {
		size := int(val.ToInteger())
		n.SetAttribute(key, strconv.Itoa(size))
		if s := n.ExistingCanvas(); s != nil {
			w, h := s.Width(), s.Height()
			if key == "width" {
				w = size
			} else {
				h = size
			}
			s.Resize(w, h)
		}
		return true
	}
	return false
}

// context2D returns a CanvasRenderingContext2D-like object drawing on the
// element's surface.
func (ctx *domContext) context2D(n *html.Node) goja.Value {
	vm := ctx.vm
	surface := n.Canvas()
	fill, stroke := "#000000", "#000000"

	c := vm.NewObject()
	ctx.accessor(c, "canvas", func() goja.Value { return ctx.proxy(n) }, nil)
	ctx.accessor(c, "fillStyle",
		func() goja.Value { return vm.ToValue(fill) },
		func(v goja.Value) {
			if surface.SetFillStyle(v.String()) == nil {
				fill = v.String()
			}
		})
	ctx.accessor(c, "strokeStyle",
		func() goja.Value { return vm.ToValue(stroke) },
		func(v goja.Value) {
			if surface.SetStrokeStyle(v.String()) == nil {
				stroke = v.String()
			}
		})
	ctx.accessor(c, "lineWidth", func() goja.Value { return vm.ToValue(1) },
		func(v goja.Value) { surface.SetLineWidth(v.ToFloat()) })

	rect := func(draw func(x, y, w, h float64)) func(goja.FunctionCall) goja.Value {
		return func(call goja.FunctionCall) goja.Value {
			draw(call.Argument(0).ToFloat(), call.Argument(1).ToFloat(),
				call.Argument(2).ToFloat(), call.Argument(3).ToFloat())
			return goja.Undefined()
		}
	}
	c.Set("fillRect", rect(surface.FillRect))
	c.Set("strokeRect", rect(surface.StrokeRect))
	c.Set("clearRect", rect(surface.ClearRect))
	c.Set("drawImage", func(call goja.FunctionCall) goja.Value {
		src := ctx.unwrap(call.Argument(0))
		if src == nil || !src.Is("canvas") {
			panic(vm.NewTypeError("Failed to execute 'drawImage': source is not a canvas"))
		}
		surface.DrawImage(src.Canvas().Image(), int(call.Argument(1).ToInteger()), int(call.Argument(2).ToInteger()))
		return goja.Undefined()
	})
	return c
}
