package style

import (
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"lightprint/pkg/css"
	"lightprint/pkg/html"
)

// The geometry below is a flow approximation: block boxes fill their
// containing block, inline content wraps into lines of text measured at
// half an em per character, tables and atomic inlines shrink to fit.
// Percentage heights behave like auto.

// applyUsed overlays used sizes on the computed style of a rendered
// element.
func (v *View) applyUsed(n *html.Node, s *css.Style) {
	d := s.Display()
	if d == "contents" {
		return
	}
	cb := v.containingWidth(n)
	for _, side := range css.Sides {
		for _, name := range []string{"margin-" + side, "padding-" + side} {
			if px, ok := percentOf(s.Value(name), cb); ok {
				s.Set(name, css.FormatPx(px))
			}
		}
	}
	if d == "inline" && !isReplaced(n) {
		return
	}
	w, h := v.contentWidth(n), v.contentHeight(n)
	if s.Value("box-sizing") == "border-box" {
		_, pad, border := edges(s, cb)
		w += pad.Horizontal() + border.Horizontal()
		h += pad.Vertical() + border.Vertical()
	}
	s.Set("width", css.FormatPx(w))
	s.Set("height", css.FormatPx(h))
}

// UsedSize returns the used border-box size of a rendered element, or
// false when it generates no box.
func (v *View) UsedSize(n *html.Node) (w, h float64, ok bool) {
	if v.check(n) != nil {
		return 0, 0, false
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.sync()
	if !v.rendered(n) {
		return 0, 0, false
	}
	s := v.computed(n, "")
	if d := s.Display(); d == "contents" || d == "inline" && !isReplaced(n) {
		return 0, 0, false
	}
	_, pad, border := edges(s, v.containingWidth(n))
	w = v.contentWidth(n) + pad.Horizontal() + border.Horizontal()
	h = v.contentHeight(n) + pad.Vertical() + border.Vertical()
	return w, h, true
}

func percentOf(val string, base float64) (float64, bool) {
	if !strings.HasSuffix(val, "%") {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSuffix(val, "%"), 64)
	if err != nil {
		return 0, false
	}
	return f * base / 100, true
}

// edges returns margin, padding and border widths in px. Percentages
// resolve against base, or count as zero when base is negative. Auto
// margins count as zero.
func edges(s *css.Style, base float64) (margin, padding, border css.BoxEdge) {
	side := func(name string) float64 {
		val := s.Value(name)
		if px, ok := css.ParseLength(val); ok {
			return px
		}
		if base >= 0 {
			if px, ok := percentOf(val, base); ok {
				return px
			}
		}
		return 0
	}
	margin = css.BoxEdge{Top: side("margin-top"), Right: side("margin-right"), Bottom: side("margin-bottom"), Left: side("margin-left")}
	padding = css.BoxEdge{Top: side("padding-top"), Right: side("padding-right"), Bottom: side("padding-bottom"), Left: side("padding-left")}
	border = s.GetBorderWidth()
	return margin, padding, border
}

// specifiedSize returns a definite width or height property as a content
// box size. base resolves percentages; a negative base makes them
// indefinite.
func specifiedSize(s *css.Style, prop string, base, pb float64) (float64, bool) {
	val := s.Value(prop)
	px, ok := css.ParseLength(val)
	if !ok {
		if base < 0 {
			return 0, false
		}
		if px, ok = percentOf(val, base); !ok {
			return 0, false
		}
	}
	if s.Value("box-sizing") == "border-box" {
		px -= pb
	}
	return math.Max(px, 0), true
}

func clampSize(size float64, s *css.Style, axis string, base, pb float64) float64 {
	if mx, ok := specifiedSize(s, "max-"+axis, base, pb); ok {
		size = math.Min(size, mx)
	}
	if mn, ok := specifiedSize(s, "min-"+axis, base, pb); ok {
		size = math.Max(size, mn)
	}
	return math.Max(size, 0)
}

func isReplaced(n *html.Node) bool {
	switch n.TagName {
	case "img", "canvas", "video", "audio", "iframe", "embed", "object", "svg":
		return true
	}
	return false
}

func isBlockLevel(display string) bool {
	switch display {
	case "block", "list-item", "flow-root", "table", "flex", "grid",
		"table-row-group", "table-header-group", "table-footer-group", "table-row", "table-caption":
		return true
	}
	return false
}

func isFlexRow(s *css.Style) bool {
	switch s.Display() {
	case "flex", "inline-flex":
		return !strings.HasPrefix(s.Value("flex-direction"), "column")
	}
	return false
}

func outOfFlow(s *css.Style) bool {
	pos := s.Value("position")
	return pos == "absolute" || pos == "fixed"
}

// containingWidth is the content width of the nearest ancestor box that
// can contain blocks, or the viewport width.
func (v *View) containingWidth(n *html.Node) float64 {
	for p := flatParent(n); p != nil; p = flatParent(p) {
		d := v.computed(p, "").Display()
		if d == "contents" || d == "inline" && !isReplaced(p) {
			continue
		}
		return v.contentWidth(p)
	}
	return v.doc.ViewportWidth
}

// natural returns the natural size of a replaced element.
func natural(n *html.Node) (w, h float64) {
	if nw, nh, ok := n.NaturalSize(); ok {
		return nw, nh
	}
	attr := func(name string, def float64) float64 {
		if f, err := strconv.ParseFloat(strings.TrimSpace(n.Attr(name)), 64); err == nil && f >= 0 {
			return f
		}
		return def
	}
	switch n.TagName {
	case "img":
		return attr("width", 0), attr("height", 0)
	case "canvas":
		cw, ch := n.CanvasSize()
		return float64(cw), float64(ch)
	case "audio":
		return 300, 54
	case "svg":
		if vb := strings.Fields(strings.ReplaceAll(n.Attr("viewBox"), ",", " ")); len(vb) == 4 {
			vw, _ := strconv.ParseFloat(vb[2], 64)
			vh, _ := strconv.ParseFloat(vb[3], 64)
			return attr("width", vw), attr("height", vh)
		}
	}
	return attr("width", 300), attr("height", 150)
}

// replacedSize resolves the content size of a replaced element from its
// specified size, aspect ratio and natural size.
func (v *View) replacedSize(n *html.Node, s *css.Style, cb float64) (w, h float64) {
	nw, nh := natural(n)
	ratio := 0.0
	if nw > 0 && nh > 0 {
		ratio = nw / nh
	}
	aspect := s.Value("aspect-ratio")
	if r, ok := Ratio(aspect); ok && (!strings.HasPrefix(aspect, "auto") || ratio == 0) {
		ratio = r
	}
	_, pad, border := edges(s, cb)
	pbH, pbV := pad.Horizontal()+border.Horizontal(), pad.Vertical()+border.Vertical()
	sw, wok := specifiedSize(s, "width", cb, pbH)
	sh, hok := specifiedSize(s, "height", -1, pbV)
	switch {
	case wok && hok:
		w, h = sw, sh
	case wok:
		w, h = sw, nh
		if ratio > 0 {
			h = sw / ratio
		}
	case hok:
		w, h = nw, sh
		if ratio > 0 {
			w = sh * ratio
		}
	default:
		w, h = nw, nh
	}
	return clampSize(w, s, "width", cb, pbH), clampSize(h, s, "height", -1, pbV)
}

// contentWidth returns the used content-box width of n.
func (v *View) contentWidth(n *html.Node) float64 {
	if w, ok := v.widths[n]; ok {
		return w
	}
	w := v.computeWidth(n, v.computed(n, ""))
	v.widths[n] = w
	return w
}

func (v *View) computeWidth(n *html.Node, s *css.Style) float64 {
	d := s.Display()
	if d == "none" || d == "contents" {
		return 0
	}
	cb := v.containingWidth(n)
	if isReplaced(n) {
		w, _ := v.replacedSize(n, s, cb)
		return w
	}
	margin, pad, border := edges(s, cb)
	pbH, pbV := pad.Horizontal()+border.Horizontal(), pad.Vertical()+border.Vertical()
	avail := math.Max(cb-margin.Horizontal()-pbH, 0)

	w, ok := specifiedSize(s, "width", cb, pbH)
	if !ok {
		if h, hok := specifiedSize(s, "height", -1, pbV); hok {
			if r, rok := Ratio(s.Value("aspect-ratio")); rok {
				w, ok = ratioSize(h, r, s.Value("box-sizing") == "border-box", pbV, pbH), true
			}
		}
	}

	parent := flatParent(n)
	flexItem := parent != nil && isFlexRow(v.computed(parent, ""))
	switch {
	case d == "table" || d == "inline-table":
		minW, maxW := v.intrinsic(n, s)
		switch {
		case ok && s.Value("table-layout") == "fixed":
		case ok:
			w = math.Max(w, minW)
		default:
			w = math.Min(math.Max(minW, avail), maxW)
		}
	case ok:
	case d == "table-cell":
		w = v.cellWidth(n, s, cb, pbH+margin.Horizontal())
	case isBlockLevel(d) && s.Value("float") == "none" && !outOfFlow(s) && !flexItem:
		w = avail
	default:
		minW, maxW := v.intrinsic(n, s)
		w = math.Min(math.Max(minW, avail), maxW)
	}
	return clampSize(w, s, "width", cb, pbH)
}

// ratioSize converts a content size on one axis to the other axis through
// an aspect ratio applied to the box given by box-sizing.
func ratioSize(size, ratio float64, borderBox bool, pbFrom, pbTo float64) float64 {
	if !borderBox {
		return size * ratio
	}
	return math.Max((size+pbFrom)*ratio-pbTo, 0)
}

// cellWidth shares the row width between cells by max-content width.
func (v *View) cellWidth(n *html.Node, s *css.Style, rowWidth, extra float64) float64 {
	minW, maxW := v.intrinsic(n, s)
	row := flatParent(n)
	if row == nil {
		return maxW
	}
	var total, cells float64
	for _, c := range v.boxChildren(row) {
		if !c.IsElement() {
			continue
		}
		cs := v.computed(c, "")
		if cs.Display() == "none" {
			continue
		}
		_, cmax := v.outerIntrinsic(c, cs)
		total += cmax
		cells++
	}
	share := rowWidth
	switch {
	case total > 0:
		share = rowWidth * (maxW + extra) / total
	case cells > 0:
		share = rowWidth / cells
	}
	return math.Max(share-extra, minW)
}

// intrinsic returns the min-content and max-content widths of the content
// of n.
func (v *View) intrinsic(n *html.Node, s *css.Style) (minW, maxW float64) {
	if isReplaced(n) {
		w, _ := v.replacedSize(n, s, -1)
		return w, w
	}
	row := s.Display() == "table-row" || isFlexRow(s)
	var line, rowMin float64
	flush := func() {
		maxW = math.Max(maxW, line)
		line = 0
	}
	for _, c := range v.boxChildren(n) {
		if c.Type == html.TextNode {
			w, longest := textMetrics(c.Text, v.textStyle(c, s))
			line += w
			minW = math.Max(minW, longest)
			continue
		}
		cs := v.computed(c, "")
		cd := cs.Display()
		if cd == "none" || outOfFlow(cs) {
			continue
		}
		cmin, cmax := v.outerIntrinsic(c, cs)
		switch {
		case row:
			line += cmax
			rowMin += cmin
		case isBlockLevel(cd) && cs.Value("float") == "none":
			flush()
			maxW = math.Max(maxW, cmax)
			minW = math.Max(minW, cmin)
		default:
			line += cmax
			minW = math.Max(minW, cmin)
		}
	}
	flush()
	if row {
		minW = math.Max(minW, rowMin)
	}
	return minW, math.Max(minW, maxW)
}

func (v *View) outerIntrinsic(n *html.Node, s *css.Style) (minW, maxW float64) {
	margin, pad, border := edges(s, -1)
	pb := pad.Horizontal() + border.Horizontal()
	extra := margin.Horizontal() + pb
	if !isReplaced(n) {
		if w, ok := specifiedSize(s, "width", -1, pb); ok {
			return w + extra, w + extra
		}
	}
	minW, maxW = v.intrinsic(n, s)
	return minW + extra, maxW + extra
}

// textStyle returns the style that applies to a text node.
func (v *View) textStyle(t *html.Node, fallback *css.Style) *css.Style {
	if t.Parent != nil && t.Parent.IsElement() {
		return v.computed(t.Parent, "")
	}
	return fallback
}

// textMetrics measures text at half an em per character after white
// space processing.
func textMetrics(text string, s *css.Style) (width, longest float64) {
	char := s.GetFontSize() / 2
	if ls, ok := css.ParseLength(s.Value("letter-spacing")); ok {
		char += ls
	}
	ws := s.Value("white-space")
	if ws == "pre" || ws == "pre-wrap" || ws == "break-spaces" || ws == "pre-line" {
		for _, l := range strings.Split(text, "\n") {
			longest = math.Max(longest, float64(utf8.RuneCountInString(l))*char)
		}
		if ws != "pre" {
			longest = longestWord(text, char)
		}
		return float64(utf8.RuneCountInString(strings.ReplaceAll(text, "\n", ""))) * char, longest
	}
	words := strings.Fields(text)
	if len(words) == 0 {
		return 0, 0
	}
	runes := utf8.RuneCountInString(strings.Join(words, " "))
	if r, _ := utf8.DecodeRuneInString(text); unicode.IsSpace(r) {
		runes++
	}
	if r, _ := utf8.DecodeLastRuneInString(text); unicode.IsSpace(r) {
		runes++
	}
	width = float64(runes) * char
	if ws == "nowrap" {
		return width, width
	}
	return width, longestWord(text, char)
}

func longestWord(text string, char float64) float64 {
	longest := 0
	for _, w := range strings.Fields(text) {
		longest = max(longest, utf8.RuneCountInString(w))
	}
	return float64(longest) * char
}

// BoxChildren returns the nodes laid out inside n, with shadow trees,
// slots and display: contents flattened.
func (v *View) BoxChildren(n *html.Node) []*html.Node {
	if v.check(n) != nil {
		return nil
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.sync()
	return v.boxChildren(n)
}

// boxChildren returns the nodes laid out inside n: the shadow tree when n
// is a host, with slots replaced by their assigned nodes and display:
// contents elements replaced by their children.
func (v *View) boxChildren(n *html.Node) []*html.Node {
	src := n.Children
	if sr := n.AttachedShadowRoot(); sr != nil {
		src = sr.Root.Children
	}
	var out []*html.Node
	v.flatten(src, &out)
	return out
}

func (v *View) flatten(nodes []*html.Node, out *[]*html.Node) {
	for _, c := range nodes {
		switch {
		case c.Type == html.TextNode:
			*out = append(*out, c)
		case !c.IsElement():
		case c.Is("slot") && c.ShadowRootOf() != nil:
			v.flatten(assigned(c), out)
		case v.computed(c, "").Display() == "contents":
			v.flatten(v.boxChildren(c), out)
		default:
			*out = append(*out, c)
		}
	}
}

// assigned returns the nodes a slot renders: its assigned nodes, or its
// fallback content when none are assigned.
func assigned(slot *html.Node) []*html.Node {
	if nodes := slot.AssignedNodes(); len(nodes) > 0 {
		return nodes
	}
	return slot.Children
}

// contentHeight returns the used content-box height of n.
func (v *View) contentHeight(n *html.Node) float64 {
	if h, ok := v.heights[n]; ok {
		return h
	}
	h := v.computeHeight(n, v.computed(n, ""))
	v.heights[n] = h
	return h
}

func (v *View) computeHeight(n *html.Node, s *css.Style) float64 {
	d := s.Display()
	if d == "none" || d == "contents" {
		return 0
	}
	cb := v.containingWidth(n)
	if isReplaced(n) {
		_, h := v.replacedSize(n, s, cb)
		return h
	}
	_, pad, border := edges(s, cb)
	pbH, pbV := pad.Horizontal()+border.Horizontal(), pad.Vertical()+border.Vertical()
	if h, ok := specifiedSize(s, "height", -1, pbV); ok {
		return clampSize(h, s, "height", -1, pbV)
	}
	if r, ok := Ratio(s.Value("aspect-ratio")); ok {
		h := ratioSize(v.contentWidth(n), 1/r, s.Value("box-sizing") == "border-box", pbH, pbV)
		return clampSize(h, s, "height", -1, pbV)
	}
	return clampSize(v.flowHeight(n, s), s, "height", -1, pbV)
}

// flowHeight stacks block children and wraps inline content into lines.
func (v *View) flowHeight(n *html.Node, s *css.Style) float64 {
	width := v.contentWidth(n)
	row := s.Display() == "table-row" || isFlexRow(s)
	var total, line, lineMax, rowMax float64
	flush := func() {
		if line <= 0 {
			return
		}
		lines := 1.0
		if width > 0 {
			lines = math.Max(1, math.Ceil(line/width-1e-9))
		}
		total += lineMax + (lines-1)*LineHeight(s)
		line, lineMax = 0, 0
	}
	for _, c := range v.boxChildren(n) {
		if c.Type == html.TextNode {
			ts := v.textStyle(c, s)
			if w, _ := textMetrics(c.Text, ts); w > 0 {
				line += w
				lineMax = math.Max(lineMax, LineHeight(ts))
			}
			continue
		}
		cs := v.computed(c, "")
		cd := cs.Display()
		if cd == "none" || outOfFlow(cs) || strings.HasPrefix(cd, "table-column") {
			continue
		}
		switch {
		case row:
			rowMax = math.Max(rowMax, v.outerHeight(c, cs))
		case isBlockLevel(cd) && cs.Value("float") == "none":
			flush()
			total += v.outerHeight(c, cs)
		case cd == "inline" && !isReplaced(c):
			_, w := v.outerIntrinsic(c, cs)
			line += w
			lineMax = math.Max(lineMax, LineHeight(cs))
		default:
			line += v.outerWidth(c, cs)
			lineMax = math.Max(lineMax, v.outerHeight(c, cs))
		}
	}
	flush()
	return math.Max(total, rowMax)
}

func (v *View) outerHeight(n *html.Node, s *css.Style) float64 {
	margin, pad, border := edges(s, v.containingWidth(n))
	return margin.Vertical() + pad.Vertical() + border.Vertical() + v.contentHeight(n)
}

func (v *View) outerWidth(n *html.Node, s *css.Style) float64 {
	margin, pad, border := edges(s, v.containingWidth(n))
	return margin.Horizontal() + pad.Horizontal() + border.Horizontal() + v.contentWidth(n)
}
