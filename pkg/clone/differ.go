package clone

import (
	"fmt"
	"strings"

	"lightprint/pkg/css"
	"lightprint/pkg/html"
	"lightprint/pkg/style"
)

// diff lists, in property order, the enumerable longhands whose value in
// from is set and differs from their value in to.
func diff(to, from *css.Style) css.Declarations {
	var out css.Declarations
	for _, name := range css.EnumerableLonghands() {
		v := from.Value(name)
		if v != "" && v != to.Value(name) {
			out = append(out, css.Declaration{Property: name, Value: v})
		}
	}
	return out
}

func sizeAffecting(property string) bool {
	if strings.HasPrefix(property, "padding-") {
		return true
	}
	return strings.HasPrefix(property, "border-") && strings.HasSuffix(property, "-width")
}

// diffStyle returns the declarations that make the copy's computed style
// match the source's, plus the declarations layout needs pinned.
func (c *Context) diffStyle(cp, src *html.Node, srcStyle *css.Style) (css.Declarations, error) {
	copyStyle, err := c.target.Computed(cp, "")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cp.Path(), err)
	}
	decls := diff(copyStyle, srcStyle)

	// The counter properties are not enumerable.
	for _, name := range css.CounterProperties {
		if v := srcStyle.Value(name); v != "" && v != copyStyle.Value(name) {
			decls = append(decls, css.Declaration{Property: name, Value: v})
		}
	}

	force := func(name string) {
		if v := srcStyle.Value(name); v != "" {
			decls.Set(name, v, false)
		}
	}

	sizeChanged := false
	for _, d := range decls {
		if sizeAffecting(d.Property) {
			sizeChanged = true
			break
		}
	}
	_, ratio := style.Ratio(srcStyle.Value("aspect-ratio"))
	if KindOf(src).HasIntrinsicRatio(src) || ratio ||
		sizeChanged && srcStyle.Value("box-sizing") == "border-box" {
		force("width")
		force("height")
	}
	if srcStyle.Display() == "table" {
		force("width")
	}
	for _, side := range css.Sides {
		prefix := "border-" + side
		if css.IsBorderStyleVisible(srcStyle.Value(prefix+"-style")) &&
			!css.IsBorderStyleVisible(copyStyle.Value(prefix+"-style")) {
			force(prefix + "-width")
		}
	}
	return decls, nil
}

// applyStyle diffs a pair and writes the result into the copy's inline
// style right away, so descendants are diffed against the new layout. A
// deferred task later moves it into the shared style node.
func (c *Context) applyStyle(cp, src *html.Node, srcStyle *css.Style) error {
	decls, err := c.diffStyle(cp, src, srcStyle)
	if err != nil || len(decls) == 0 {
		return err
	}
	inline, hadInline := cp.GetAttribute("style")
	cp.SetAttribute("style", css.ParseDeclarations(inline).Merge(decls).String())
	c.addTask(finalizeTask{node: cp, inline: inline, hadInline: hadInline, decls: decls})
	return nil
}
