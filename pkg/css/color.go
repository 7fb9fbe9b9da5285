package css

import (
	"fmt"
	"math"
	"strings"

	"github.com/mazznoer/csscolorparser"
)

// Color is an 8-bit RGBA colour.
type Color struct {
	R, G, B, A uint8
}

// ParseColor parses any CSS colour syntax.
func ParseColor(value string) (Color, bool) {
	value = strings.TrimSpace(value)
	if strings.EqualFold(value, "transparent") {
		return Color{}, true
	}
	c, err := csscolorparser.Parse(value)
	if err != nil {
		return Color{}, false
	}
	return Color{to8(c.R), to8(c.G), to8(c.B), to8(c.A)}, true
}

func to8(f float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(1, f)) * 255))
}

// String serialises the colour the way computed styles report it.
func (c Color) String() string {
	if c.A == 255 {
		return fmt.Sprintf("rgb(%d, %d, %d)", c.R, c.G, c.B)
	}
	alpha := math.Round(float64(c.A)/255*100) / 100
	return fmt.Sprintf("rgba(%d, %d, %d, %g)", c.R, c.G, c.B, alpha)
}

// NormalizeColor returns the computed form of a colour value, or the
// input unchanged when it does not parse.
func NormalizeColor(value string) string {
	if c, ok := ParseColor(value); ok {
		return c.String()
	}
	return value
}
