package css

import (
	"strings"
)

var borderStyles = map[string]bool{
	"none": true, "hidden": true, "dotted": true, "dashed": true, "solid": true,
	"double": true, "groove": true, "ridge": true, "inset": true, "outset": true,
}

// IsBorderStyleVisible reports whether a border-style draws anything.
func IsBorderStyleVisible(style string) bool {
	return style != "" && style != "none" && style != "hidden"
}

// Expand turns a declaration into longhand declarations. Unknown and
// longhand properties are returned as they are.
func Expand(property, value string) []Declaration {
	property = strings.ToLower(strings.TrimSpace(property))
	value = strings.TrimSpace(value)
	out := expandShorthand(property, value)
	if out == nil {
		return []Declaration{{Property: property, Value: value}}
	}
	return out
}

func expandShorthand(property, value string) []Declaration {
	parts := SplitValue(value)
	if len(parts) == 0 {
		return nil
	}
	if isGlobalKeyword(value) {
		if names := shorthandLonghands(property); names != nil {
			out := make([]Declaration, len(names))
			for i, n := range names {
				out[i] = Declaration{Property: n, Value: value}
			}
			return out
		}
		return nil
	}
	switch property {
	case "margin", "padding":
		return expandBox(property+"-%s", parts)
	case "inset":
		return expandBox("%s", parts)
	case "border-width", "border-style", "border-color":
		return expandBox("border-%s-"+strings.TrimPrefix(property, "border-"), parts)
	case "border-radius":
		if slash := indexOf(parts, "/"); slash >= 0 {
			parts = parts[:slash]
		}
		return expandCorners(parts)
	case "border":
		var out []Declaration
		for _, side := range Sides {
			out = append(out, expandBorderSide("border-"+side, parts)...)
		}
		return out
	case "border-top", "border-right", "border-bottom", "border-left":
		return expandBorderSide(property, parts)
	case "outline":
		return expandBorderSide("outline", parts)
	case "overflow":
		y := parts[0]
		if len(parts) > 1 {
			y = parts[1]
		}
		return []Declaration{{Property: "overflow-x", Value: parts[0]}, {Property: "overflow-y", Value: y}}
	case "gap":
		col := parts[0]
		if len(parts) > 1 {
			col = parts[1]
		}
		return []Declaration{{Property: "row-gap", Value: parts[0]}, {Property: "column-gap", Value: col}}
	case "background":
		return expandBackground(parts)
	case "list-style":
		return expandListStyle(parts)
	case "text-decoration":
		return expandTextDecoration(parts)
	case "font":
		return expandFont(value)
	case "flex":
		return expandFlex(parts)
	}
	return nil
}

// shorthandLonghands lists the longhands a shorthand sets.
func shorthandLonghands(property string) []string {
	probe := map[string]string{
		"margin": "0", "padding": "0", "inset": "0", "border-width": "0",
		"border-style": "none", "border-color": "red", "border-radius": "0",
		"border": "0 none red", "border-top": "0 none red", "border-right": "0 none red",
		"border-bottom": "0 none red", "border-left": "0 none red",
		"outline": "0 none red", "overflow": "visible", "gap": "0",
		"background": "red", "list-style": "none", "text-decoration": "none",
		"font": "16px serif", "flex": "0 1 auto",
	}
	v, ok := probe[property]
	if !ok {
		return nil
	}
	var names []string
	for _, d := range expandShorthand(property, v) {
		names = append(names, d.Property)
	}
	return names
}

func isGlobalKeyword(v string) bool {
	switch strings.ToLower(v) {
	case "inherit", "initial", "unset", "revert":
		return true
	}
	return false
}

// expandBox expands a 1-4 value list over top, right, bottom, left.
func expandBox(pattern string, parts []string) []Declaration {
	var vals [4]string
	switch len(parts) {
	case 1:
		vals = [4]string{parts[0], parts[0], parts[0], parts[0]}
	case 2:
		vals = [4]string{parts[0], parts[1], parts[0], parts[1]}
	case 3:
		vals = [4]string{parts[0], parts[1], parts[2], parts[1]}
	default:
		vals = [4]string{parts[0], parts[1], parts[2], parts[3]}
	}
	out := make([]Declaration, 4)
	for i, side := range Sides {
		out[i] = Declaration{Property: strings.Replace(pattern, "%s", side, 1), Value: vals[i]}
	}
	return out
}

func expandCorners(parts []string) []Declaration {
	if len(parts) == 0 {
		return nil
	}
	var vals [4]string
	switch len(parts) {
	case 1:
		vals = [4]string{parts[0], parts[0], parts[0], parts[0]}
	case 2:
		vals = [4]string{parts[0], parts[1], parts[0], parts[1]}
	case 3:
		vals = [4]string{parts[0], parts[1], parts[2], parts[1]}
	default:
		vals = [4]string{parts[0], parts[1], parts[2], parts[3]}
	}
	out := make([]Declaration, 4)
	for i, c := range Corners {
		out[i] = Declaration{Property: "border-" + c + "-radius", Value: vals[i]}
	}
	return out
}

// expandBorderSide expands "<width> <style> <color>" in any order; missing
// components reset to their initial values.
func expandBorderSide(prefix string, parts []string) []Declaration {
	width, style, color := "medium", "none", "currentcolor"
	for _, p := range parts {
		lp := strings.ToLower(p)
		switch {
		case borderStyles[lp]:
			style = lp
		case lp == "thin" || lp == "medium" || lp == "thick" || isLengthToken(lp):
			width = lp
		default:
			color = p
		}
	}
	return []Declaration{
		{Property: prefix + "-width", Value: width},
		{Property: prefix + "-style", Value: style},
		{Property: prefix + "-color", Value: color},
	}
}

func expandBackground(parts []string) []Declaration {
	color, image, repeat := "rgba(0, 0, 0, 0)", "none", "repeat"
	var position []string
	for _, p := range parts {
		lp := strings.ToLower(p)
		switch {
		case strings.HasPrefix(lp, "url(") || strings.Contains(lp, "gradient("):
			image = p
		case lp == "none":
			image = "none"
		case strings.HasPrefix(lp, "repeat") || strings.HasPrefix(lp, "no-repeat") || lp == "space" || lp == "round":
			repeat = lp
		case lp == "left" || lp == "right" || lp == "top" || lp == "bottom" || lp == "center" || isLengthToken(lp):
			position = append(position, lp)
		default:
			color = p
		}
	}
	out := []Declaration{
		{Property: "background-color", Value: color},
		{Property: "background-image", Value: image},
		{Property: "background-repeat", Value: repeat},
	}
	if len(position) > 0 {
		out = append(out, Declaration{Property: "background-position", Value: strings.Join(position, " ")})
	}
	return out
}

func expandListStyle(parts []string) []Declaration {
	typ, pos := "disc", "outside"
	for _, p := range parts {
		switch lp := strings.ToLower(p); lp {
		case "inside", "outside":
			pos = lp
		default:
			typ = lp
		}
	}
	return []Declaration{
		{Property: "list-style-type", Value: typ},
		{Property: "list-style-position", Value: pos},
	}
}

func expandTextDecoration(parts []string) []Declaration {
	var lines []string
	style, color := "solid", "currentcolor"
	for _, p := range parts {
		switch lp := strings.ToLower(p); lp {
		case "none", "underline", "overline", "line-through", "blink":
			if lp != "none" {
				lines = append(lines, lp)
			}
		case "solid", "double", "dotted", "dashed", "wavy":
			style = lp
		default:
			color = p
		}
	}
	line := "none"
	if len(lines) > 0 {
		line = strings.Join(lines, " ")
	}
	return []Declaration{
		{Property: "text-decoration-line", Value: line},
		{Property: "text-decoration-style", Value: style},
		{Property: "text-decoration-color", Value: color},
	}
}

// expandFont handles "[style] [weight] size[/line-height] family".
func expandFont(value string) []Declaration {
	parts := SplitValue(value)
	style, weight, lineHeight := "normal", "400", "normal"
	i := 0
	for ; i < len(parts); i++ {
		lp := strings.ToLower(parts[i])
		if lp == "italic" || lp == "oblique" {
			style = lp
		} else if lp == "bold" {
			weight = "700"
		} else if lp == "bolder" || lp == "lighter" || (len(lp) == 3 && lp[0] >= '1' && lp[0] <= '9' && lp[1:] == "00") {
			weight = lp
		} else if lp != "normal" && lp != "small-caps" {
			break
		}
	}
	if i >= len(parts) {
		return nil
	}
	size := parts[i]
	if slash := strings.IndexByte(size, '/'); slash >= 0 {
		size, lineHeight = size[:slash], size[slash+1:]
		if lineHeight == "" && i+1 < len(parts) {
			i++
			lineHeight = parts[i]
		}
	} else if i+1 < len(parts) && strings.HasPrefix(parts[i+1], "/") {
		i++
		lineHeight = strings.TrimPrefix(parts[i], "/")
		if lineHeight == "" && i+1 < len(parts) {
			i++
			lineHeight = parts[i]
		}
	}
	family := strings.Join(parts[i+1:], " ")
	if family == "" {
		return nil
	}
	return []Declaration{
		{Property: "font-style", Value: style},
		{Property: "font-weight", Value: weight},
		{Property: "font-size", Value: size},
		{Property: "line-height", Value: lineHeight},
		{Property: "font-family", Value: family},
	}
}

func expandFlex(parts []string) []Declaration {
	grow, shrink, basis := "0", "1", "auto"
	switch {
	case len(parts) == 1 && parts[0] == "none":
		shrink = "0"
	case len(parts) == 1 && parts[0] == "auto":
		grow = "1"
	default:
		nums := 0
		for _, p := range parts {
			if isNumberToken(p) && nums < 2 {
				if nums == 0 {
					grow = p
					basis = "0%"
				} else {
					shrink = p
				}
				nums++
			} else {
				basis = p
			}
		}
	}
	return []Declaration{
		{Property: "flex-grow", Value: grow},
		{Property: "flex-shrink", Value: shrink},
		{Property: "flex-basis", Value: basis},
	}
}

func isNumberToken(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= '0' && c <= '9') && c != '.' && !(i == 0 && (c == '-' || c == '+')) {
			return false
		}
	}
	return true
}

func isLengthToken(s string) bool {
	if s == "0" {
		return true
	}
	if strings.HasPrefix(s, "calc(") {
		return true
	}
	num, unit := SplitNumber(s)
	return num != "" && unit != ""
}

// SplitNumber splits "12.5px" into "12.5" and "px".
func SplitNumber(s string) (num, unit string) {
	i := 0
	if i < len(s) && (s[i] == '-' || s[i] == '+') {
		i++
	}
	digits := false
	for i < len(s) && (s[i] >= '0' && s[i] <= '9' || s[i] == '.') {
		digits = true
		i++
	}
	if !digits {
		return "", s
	}
	return s[:i], strings.ToLower(s[i:])
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}

// SplitValue splits a value on whitespace outside parentheses and quotes.
func SplitValue(value string) []string {
	var out []string
	depth := 0
	var quote byte
	start := -1
	for i := 0; i < len(value); i++ {
		c := value[i]
		if quote != 0 {
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
			continue
		}
		switch {
		case c == '"' || c == '\'':
			quote = c
			if start < 0 {
				start = i
			}
		case c == '(':
			depth++
			if start < 0 {
				start = i
			}
		case c == ')':
			depth--
		case isSpace(c) && depth == 0:
			if start >= 0 {
				out = append(out, value[start:i])
				start = -1
			}
		default:
			if start < 0 {
				start = i
			}
		}
	}
	if start >= 0 {
		out = append(out, value[start:])
	}
	return out
}
