package css

import (
	"strconv"
	"strings"
)

// Style is a resolved set of longhand values, as produced by the computed
// style view.
type Style struct {
	Properties map[string]string
}

func NewStyle() *Style {
	return &Style{Properties: make(map[string]string)}
}

func (s *Style) Get(property string) (string, bool) {
	val, ok := s.Properties[property]
	return val, ok
}

// Value returns the property value or "".
func (s *Style) Value(property string) string {
	return s.Properties[property]
}

func (s *Style) Set(property, value string) {
	s.Properties[property] = value
}

func (s *Style) GetLength(property string) (float64, bool) {
	val, ok := s.Get(property)
	if !ok {
		return 0, false
	}
	return ParseLength(val)
}

// Clone returns an independent copy.
func (s *Style) Clone() *Style {
	c := &Style{Properties: make(map[string]string, len(s.Properties))}
	for k, v := range s.Properties {
		c.Properties[k] = v
	}
	return c
}

// ParseLength parses a px length ("100px" or a bare number).
func ParseLength(val string) (float64, bool) {
	val = strings.TrimSpace(val)
	val = strings.TrimSuffix(val, "px")
	num, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, false
	}
	return num, true
}

// FormatPx formats a pixel length the way computed styles do.
func FormatPx(v float64) string {
	return strconv.FormatFloat(roundPx(v), 'f', -1, 64) + "px"
}

func roundPx(v float64) float64 {
	r := float64(int64(v*1000+sign(v)*0.5)) / 1000
	if r == 0 {
		return 0
	}
	return r
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}

// BoxEdge represents the four sides of a box (top, right, bottom, left)
type BoxEdge struct {
	Top    float64
	Right  float64
	Bottom float64
	Left   float64
}

func (e BoxEdge) Horizontal() float64 { return e.Left + e.Right }

func (e BoxEdge) Vertical() float64 { return e.Top + e.Bottom }

func (s *Style) edge(prefix, suffix string) BoxEdge {
	return BoxEdge{
		Top:    s.getLengthOrZero(prefix + "top" + suffix),
		Right:  s.getLengthOrZero(prefix + "right" + suffix),
		Bottom: s.getLengthOrZero(prefix + "bottom" + suffix),
		Left:   s.getLengthOrZero(prefix + "left" + suffix),
	}
}

func (s *Style) GetMargin() BoxEdge { return s.edge("margin-", "") }

func (s *Style) GetPadding() BoxEdge { return s.edge("padding-", "") }

func (s *Style) GetBorderWidth() BoxEdge { return s.edge("border-", "-width") }

// getLengthOrZero returns the length value or 0 if not found
func (s *Style) getLengthOrZero(property string) float64 {
	val, ok := s.GetLength(property)
	if !ok {
		return 0
	}
	return val
}

// GetFontSize returns the font-size in pixels (default: 16px)
func (s *Style) GetFontSize() float64 {
	if size, ok := s.GetLength("font-size"); ok {
		return size
	}
	return 16.0
}

// GetColor returns the colour of a property, black when unset.
func (s *Style) GetColor(property string) Color {
	if c, ok := ParseColor(s.Value(property)); ok {
		return c
	}
	return Color{A: 255}
}

// GetLineHeight returns the line-height in pixels (default: 1.2 * font-size)
func (s *Style) GetLineHeight() float64 {
	if lh, ok := s.GetLength("line-height"); ok {
		return lh
	}
	return s.GetFontSize() * 1.2
}

func (s *Style) Display() string {
	if d := s.Value("display"); d != "" {
		return d
	}
	return "inline"
}

// IsBlockContainer reports whether the display establishes a block
// container that can carry ::first-letter and ::first-line.
func IsBlockContainer(display string) bool {
	switch display {
	case "block", "inline-block", "list-item", "flow-root", "table-caption",
		"table-cell", "table-column", "table-column-group":
		return true
	}
	return false
}

// ParseURLValue extracts the address from url(...).
func ParseURLValue(value string) (string, bool) {
	value = strings.TrimSpace(value)
	if !strings.HasPrefix(value, "url(") || !strings.HasSuffix(value, ")") {
		return "", false
	}
	inner := unquote(strings.TrimSpace(value[len("url(") : len(value)-1]))
	inner = strings.TrimSpace(inner)
	if inner == "" {
		return "", false
	}
	return inner, true
}
