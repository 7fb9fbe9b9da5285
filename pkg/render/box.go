package render

import (
	"math"
	"strings"
	"unicode/utf8"

	"lightprint/pkg/css"
	"lightprint/pkg/html"
	"lightprint/pkg/style"
)

// Box is a laid out element. X, Y, Width and Height describe the border
// box.
type Box struct {
	Node    *html.Node
	Style   *css.Style
	X, Y    float64
	Width   float64
	Height  float64
	Border  css.BoxEdge
	Padding css.BoxEdge

	Children []*Box
	Lines    []Line
}

// Line is one line of text inside a box.
type Line struct {
	Text  string
	X, Y  float64 // baseline origin
	Style *css.Style
}

// ContentX returns the left edge of the content box.
func (b *Box) ContentX() float64 { return b.X + b.Border.Left + b.Padding.Left }

// ContentY returns the top edge of the content box.
func (b *Box) ContentY() float64 { return b.Y + b.Border.Top + b.Padding.Top }

func (b *Box) ContentWidth() float64 {
	return math.Max(0, b.Width-b.Border.Horizontal()-b.Padding.Horizontal())
}

func (b *Box) ContentHeight() float64 {
	return math.Max(0, b.Height-b.Border.Vertical()-b.Padding.Vertical())
}

type layouter struct {
	view *style.View
}

// Layout positions the rendered elements of the document the view styles,
// starting at its root element.
func Layout(view *style.View) *Box {
	root := view.Document().DocumentElement()
	if root == nil {
		return nil
	}
	l := &layouter{view: view}
	return l.box(root, 0, 0)
}

func (l *layouter) box(n *html.Node, x, y float64) *Box {
	s, err := l.view.Computed(n, "")
	if err != nil || s.Display() == "none" {
		return nil
	}
	w, h, ok := l.view.UsedSize(n)
	if !ok && n.Parent != nil && n.Parent.Type == html.DocumentNode {
		w = l.view.Document().ViewportWidth
	}
	b := &Box{
		Node:    n,
		Style:   s,
		X:       x,
		Y:       y,
		Width:   w,
		Height:  h,
		Border:  s.GetBorderWidth(),
		Padding: s.GetPadding(),
	}
	bottom := l.flow(b)
	if !ok || b.Height <= 0 && bottom > b.ContentY() {
		b.Height = bottom - y + b.Padding.Bottom + b.Border.Bottom
	}
	return b
}

// flow lays out the children of b and returns the bottom of its content.
func (l *layouter) flow(b *Box) float64 {
	cx, cy, cw := b.ContentX(), b.ContentY(), b.ContentWidth()
	row := b.Style.Display() == "table-row" || b.Style.Display() == "flex" &&
		!strings.HasPrefix(b.Style.Value("flex-direction"), "column")

	scrollX, scrollY := b.Node.ScrollLeft(), b.Node.ScrollTop()
	cx -= scrollX
	cy -= scrollY

	cursorY, cursorX, rowBottom := cy, cx, cy
	var run []fragment
	flush := func() {
		if len(run) == 0 {
			return
		}
		cursorY = l.lines(b, run, cx, cursorY, cw)
		run = nil
	}

	if text := l.pseudoText(b.Node, "before"); text != "" {
		run = append(run, fragment{text: text, style: b.Style})
	}
	for _, c := range l.view.BoxChildren(b.Node) {
		if c.Type == html.TextNode {
			if strings.TrimSpace(c.Text) != "" {
				run = append(run, fragment{text: c.Text, style: b.Style})
			}
			continue
		}
		cs, err := l.view.Computed(c, "")
		if err != nil || cs.Display() == "none" {
			continue
		}
		margin := cs.GetMargin()
		switch d := cs.Display(); {
		case row:
			child := l.box(c, cursorX+margin.Left, cy+margin.Top)
			if child == nil {
				continue
			}
			b.Children = append(b.Children, child)
			cursorX += margin.Left + child.Width + margin.Right
			rowBottom = math.Max(rowBottom, child.Y+child.Height+margin.Bottom)
		case d == "inline" && !isReplaced(c):
			if text := strings.TrimSpace(c.TextContent()); text != "" {
				run = append(run, fragment{text: text, style: cs})
			}
		case isBlockLevel(d):
			flush()
			left := cx + margin.Left
			if cs.Value("margin-left") == "auto" && cs.Value("margin-right") == "auto" {
				if w, _, ok := l.view.UsedSize(c); ok {
					left = cx + math.Max(0, (cw-w)/2)
				}
			}
			child := l.box(c, left, cursorY+margin.Top)
			if child == nil {
				continue
			}
			b.Children = append(b.Children, child)
			cursorY = child.Y + child.Height + margin.Bottom
		default:
			flush()
			child := l.box(c, cx+margin.Left, cursorY+margin.Top)
			if child == nil {
				continue
			}
			b.Children = append(b.Children, child)
			cursorY = child.Y + child.Height + margin.Bottom
		}
	}
	if text := l.pseudoText(b.Node, "after"); text != "" {
		run = append(run, fragment{text: text, style: b.Style})
	}
	flush()
	return math.Max(cursorY, rowBottom) + scrollY
}

// fragment is a run of text in one style.
type fragment struct {
	text  string
	style *css.Style
}

// lines wraps the fragments into lines of width w and returns the bottom
// of the last line. Characters are half an em wide, as in style metrics.
func (l *layouter) lines(b *Box, run []fragment, x, y, w float64) float64 {
	cursor := 0.0
	var lineHeight float64
	baseline := func(s *css.Style) float64 { return y + style.LineHeight(s)*0.8 }
	for _, f := range run {
		char := f.style.GetFontSize() * 0.5
		lh := style.LineHeight(f.style)
		lineHeight = math.Max(lineHeight, lh)
		var line strings.Builder
		flushLine := func() {
			if line.Len() > 0 {
				b.Lines = append(b.Lines, Line{Text: line.String(), X: x + cursor, Y: baseline(f.style), Style: f.style})
				cursor += float64(utf8.RuneCountInString(line.String())) * char
				line.Reset()
			}
		}
		for _, word := range strings.Fields(f.text) {
			piece := word
			if line.Len() > 0 || cursor > 0 {
				piece = " " + word
			}
			width := float64(utf8.RuneCountInString(line.String())+utf8.RuneCountInString(piece)) * char
			if cursor+width > w && (line.Len() > 0 || cursor > 0) {
				flushLine()
				y += lineHeight
				cursor = 0
				lineHeight = lh
				piece = word
			}
			line.WriteString(piece)
		}
		flushLine()
	}
	return y + lineHeight
}

func (l *layouter) pseudoText(n *html.Node, pseudo string) string {
	s, err := l.view.Computed(n, pseudo)
	if err != nil {
		return ""
	}
	content := strings.TrimSpace(s.Value("content"))
	if len(content) < 2 || content[0] != '"' && content[0] != '\'' {
		return ""
	}
	return content[1 : len(content)-1]
}

func isReplaced(n *html.Node) bool {
	switch n.TagName {
	case "img", "canvas", "video", "audio", "iframe", "embed", "object", "svg",
		"input", "select", "textarea", "button":
		return true
	}
	return false
}

func isBlockLevel(display string) bool {
	switch display {
	case "block", "list-item", "table", "flex", "grid", "flow-root",
		"table-row-group", "table-header-group", "table-footer-group",
		"table-row", "table-caption":
		return true
	}
	return false
}
