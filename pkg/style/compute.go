package style

import (
	"math"
	"strconv"
	"strings"

	"lightprint/pkg/css"
	"lightprint/pkg/html"
)

const defaultFontSize = 16.0

// computed returns the cached computed style without used sizes.
func (v *View) computed(n *html.Node, pseudo string) *css.Style {
	key := styleKey{n, pseudo}
	if s, ok := v.styles[key]; ok {
		return s
	}
	var parent *css.Style
	if pseudo != "" {
		parent = v.computed(n, "")
	} else if p := flatParent(n); p != nil {
		parent = v.computed(p, "")
	}
	s := v.resolve(n, pseudo, v.cascade(n, pseudo), parent)
	v.styles[key] = s
	return s
}

// specified applies defaulting: inheritance, initial values and the
// global keywords.
func specified(decls css.Declarations, parent *css.Style) map[string]string {
	out := make(map[string]string)
	for _, name := range css.Longhands() {
		prop, _ := css.Lookup(name)
		inherit := func() string {
			if parent != nil {
				if pv, ok := parent.Get(name); ok {
					return pv
				}
			}
			return prop.Initial
		}
		val, ok := decls.Get(name)
		val = strings.TrimSpace(val)
		switch {
		case !ok || val == "":
			if prop.Inherited {
				val = inherit()
			} else {
				val = prop.Initial
			}
		case strings.EqualFold(val, "inherit"):
			val = inherit()
		case strings.EqualFold(val, "initial"):
			val = prop.Initial
		case strings.EqualFold(val, "unset"), strings.EqualFold(val, "revert"), strings.EqualFold(val, "revert-layer"):
			if prop.Inherited {
				val = inherit()
			} else {
				val = prop.Initial
			}
		}
		out[name] = val
	}
	return out
}

// resolve turns specified values into computed values.
func (v *View) resolve(n *html.Node, pseudo string, decls css.Declarations, parent *css.Style) *css.Style {
	vals := specified(decls, parent)
	s := css.NewStyle()

	parentFont := defaultFontSize
	parentWeight := 400.0
	parentColor := "rgb(0, 0, 0)"
	if parent != nil {
		parentFont = parent.GetFontSize()
		parentWeight, _ = strconv.ParseFloat(parent.Value("font-weight"), 64)
		parentColor = parent.Value("color")
	}
	root := v.rootFontSize(n)

	fontSize := fontSizePx(vals["font-size"], parentFont, root, v.doc)
	s.Set("font-size", css.FormatPx(fontSize))
	u := units{font: fontSize, root: root, vw: v.doc.ViewportWidth, vh: v.doc.ViewportHeight}

	color := css.NormalizeColor(vals["color"])
	if isCurrentColor(color) {
		color = parentColor
	}
	s.Set("color", color)
	s.Set("font-weight", fontWeight(vals["font-weight"], parentWeight))

	for name, val := range vals {
		if _, done := s.Get(name); done {
			continue
		}
		prop, _ := css.Lookup(name)
		switch prop.Kind {
		case css.KindLength:
			val = u.length(val)
		case css.KindLengthAuto:
			if name == "line-height" {
				val = u.lineHeight(val)
			} else if !isSizeKeyword(val) {
				val = u.length(val)
			}
		case css.KindColor:
			val = css.NormalizeColor(val)
			if isCurrentColor(val) {
				val = color
			}
		case css.KindBorderWidth:
			val = borderWidth(val, vals[strings.TrimSuffix(name, "-width")+"-style"], u)
		case css.KindNumber:
			val = number(val)
		case css.KindRaw:
			if name == "aspect-ratio" {
				val = aspectRatio(val)
			}
		case css.KindKeyword:
			if !strings.ContainsAny(val, "\"'(") {
				val = strings.ToLower(val)
			}
		}
		s.Set(name, val)
	}

	s.Set("display", v.display(n, pseudo, s, parent))
	if pseudo == "before" || pseudo == "after" {
		if c := s.Value("content"); c == "normal" {
			s.Set("content", "none")
		}
	}
	return s
}

// display applies blockification to floats, absolutely positioned boxes,
// flex and grid items and the root element.
func (v *View) display(n *html.Node, pseudo string, s, parent *css.Style) string {
	d := s.Value("display")
	pos := s.Value("position")
	isRoot := pseudo == "" && n == v.doc.DocumentElement()
	item := false
	if parent != nil {
		switch parent.Display() {
		case "flex", "inline-flex", "grid", "inline-grid":
			item = true
		}
	}
	if s.Value("float") == "none" && pos != "absolute" && pos != "fixed" && !isRoot && !item {
		return d
	}
	switch d {
	case "inline", "inline-block", "table-row-group", "table-column", "table-column-group",
		"table-header-group", "table-footer-group", "table-row", "table-cell", "table-caption":
		return "block"
	case "inline-table":
		return "table"
	case "inline-flex":
		return "flex"
	case "inline-grid":
		return "grid"
	}
	return d
}

func (v *View) rootFontSize(n *html.Node) float64 {
	root := v.doc.DocumentElement()
	if root == nil || root == n {
		return defaultFontSize
	}
	return v.computed(root, "").GetFontSize()
}

func isCurrentColor(v string) bool { return strings.EqualFold(v, "currentcolor") }

func isSizeKeyword(v string) bool {
	switch strings.ToLower(v) {
	case "auto", "none", "normal", "min-content", "max-content", "fit-content", "stretch":
		return true
	}
	return false
}

var fontKeywords = map[string]float64{
	"xx-small": 9, "x-small": 10, "small": 13, "medium": 16,
	"large": 18, "x-large": 24, "xx-large": 32, "xxx-large": 48,
}

func fontSizePx(val string, parent, root float64, doc *html.Document) float64 {
	val = strings.ToLower(strings.TrimSpace(val))
	if px, ok := fontKeywords[val]; ok {
		return px
	}
	switch val {
	case "larger":
		return parent * 1.2
	case "smaller":
		return parent / 1.2
	}
	u := units{font: parent, root: root, vw: doc.ViewportWidth, vh: doc.ViewportHeight, percent: parent}
	if px, ok := u.px(val); ok && px >= 0 {
		return px
	}
	return parent
}

func fontWeight(val string, parent float64) string {
	switch strings.ToLower(strings.TrimSpace(val)) {
	case "normal":
		return "400"
	case "bold":
		return "700"
	case "bolder":
		switch {
		case parent < 350:
			return "400"
		case parent < 550:
			return "700"
		}
		return "900"
	case "lighter":
		switch {
		case parent < 550:
			return "100"
		case parent < 750:
			return "400"
		}
		return "700"
	}
	return number(val)
}

func borderWidth(val, style string, u units) string {
	if !css.IsBorderStyleVisible(strings.ToLower(style)) {
		return "0px"
	}
	switch strings.ToLower(val) {
	case "thin":
		return "1px"
	case "medium":
		return "3px"
	case "thick":
		return "5px"
	}
	return u.length(val)
}

func number(val string) string {
	val = strings.TrimSpace(val)
	if f, err := strconv.ParseFloat(val, 64); err == nil {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	if strings.HasSuffix(val, "%") {
		if f, err := strconv.ParseFloat(strings.TrimSuffix(val, "%"), 64); err == nil {
			return strconv.FormatFloat(f/100, 'f', -1, 64)
		}
	}
	return val
}

// aspectRatio normalises "2" to "2 / 1"; "auto" and "auto 2 / 1" keep
// their keyword.
func aspectRatio(val string) string {
	val = strings.ToLower(strings.TrimSpace(val))
	if val == "" || val == "auto" {
		return "auto"
	}
	prefix := ""
	if strings.HasPrefix(val, "auto ") {
		prefix, val = "auto ", strings.TrimSpace(val[len("auto "):])
	} else if strings.HasSuffix(val, " auto") {
		prefix, val = "auto ", strings.TrimSpace(strings.TrimSuffix(val, " auto"))
	}
	w, h, ok := parseRatio(val)
	if !ok {
		return prefix + val
	}
	return prefix + strconv.FormatFloat(w, 'f', -1, 64) + " / " + strconv.FormatFloat(h, 'f', -1, 64)
}

func parseRatio(val string) (w, h float64, ok bool) {
	parts := strings.SplitN(val, "/", 2)
	w, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, false
	}
	h = 1
	if len(parts) == 2 {
		if h, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64); err != nil {
			return 0, 0, false
		}
	}
	return w, h, true
}

// Ratio returns the width/height ratio of a computed aspect-ratio, or
// false for "auto" and degenerate ratios.
func Ratio(aspect string) (float64, bool) {
	aspect = strings.TrimSpace(strings.TrimPrefix(aspect, "auto"))
	if aspect == "" {
		return 0, false
	}
	w, h, ok := parseRatio(aspect)
	if !ok || w <= 0 || h <= 0 {
		return 0, false
	}
	return w / h, true
}

// units resolves lengths. percent is the base for percentages; zero keeps
// percentages as written.
type units struct {
	font, root float64
	vw, vh     float64
	percent    float64
}

var absoluteUnits = map[string]float64{
	"px": 1, "pt": 4.0 / 3, "pc": 16, "in": 96, "cm": 96 / 2.54, "mm": 96 / 25.4, "q": 96 / 101.6,
}

func (u units) px(val string) (float64, bool) {
	val = strings.ToLower(strings.TrimSpace(val))
	num, unit := css.SplitNumber(val)
	if num == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, false
	}
	if unit == "" {
		return f, f == 0
	}
	if k, ok := absoluteUnits[unit]; ok {
		return f * k, true
	}
	switch unit {
	case "em":
		return f * u.font, true
	case "rem":
		return f * u.root, true
	case "ex", "ch":
		return f * u.font / 2, true
	case "vw":
		return f * u.vw / 100, true
	case "vh":
		return f * u.vh / 100, true
	case "vmin":
		return f * math.Min(u.vw, u.vh) / 100, true
	case "vmax":
		return f * math.Max(u.vw, u.vh) / 100, true
	case "%":
		if u.percent > 0 {
			return f * u.percent / 100, true
		}
	}
	return 0, false
}

// length returns val in px, or unchanged when it cannot be resolved here
// (percentages, calc()).
func (u units) length(val string) string {
	if px, ok := u.px(val); ok {
		return css.FormatPx(px)
	}
	return strings.TrimSpace(val)
}

func (u units) lineHeight(val string) string {
	val = strings.ToLower(strings.TrimSpace(val))
	if val == "normal" {
		return val
	}
	if f, err := strconv.ParseFloat(val, 64); err == nil {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	u.percent = u.font
	return u.length(val)
}

// LineHeight returns the used line height of a computed style in px.
func LineHeight(s *css.Style) float64 {
	lh := s.Value("line-height")
	if f, err := strconv.ParseFloat(lh, 64); err == nil {
		return f * s.GetFontSize()
	}
	return s.GetLineHeight()
}
