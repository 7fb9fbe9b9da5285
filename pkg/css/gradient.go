package css

import (
	"strconv"
	"strings"
)

// LinearGradient is a parsed linear-gradient() image.
type LinearGradient struct {
	Direction string // "to right", "45deg", ...; "to bottom" when omitted
	Stops     []GradientStop
}

// GradientStop is one colour stop. Unit is "%", "px" or "" for a stop
// without a position.
type GradientStop struct {
	Color Color
	Pos   float64
	Unit  string
}

// ParseLinearGradient parses the first linear-gradient() of a
// background-image value.
func ParseLinearGradient(value string) (*LinearGradient, bool) {
	const fn = "linear-gradient("
	start := strings.Index(value, fn)
	if start < 0 {
		return nil, false
	}
	args, ok := functionArgs(value[start+len(fn):])
	if !ok {
		return nil, false
	}
	parts := splitTopLevel(args, ',')
	if len(parts) == 0 {
		return nil, false
	}

	g := &LinearGradient{Direction: "to bottom"}
	if first := strings.TrimSpace(parts[0]); strings.HasPrefix(first, "to ") || strings.HasSuffix(first, "deg") {
		g.Direction = first
		parts = parts[1:]
	}
	for _, p := range parts {
		stop, ok := parseGradientStop(p)
		if !ok {
			return nil, false
		}
		g.Stops = append(g.Stops, stop)
	}
	if len(g.Stops) < 2 {
		return nil, false
	}
	return g, true
}

// functionArgs returns the text up to the parenthesis closing an already
// opened function call.
func functionArgs(s string) (string, bool) {
	depth := 1
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return s[:i], true
			}
		}
	}
	return "", false
}

func parseGradientStop(text string) (GradientStop, bool) {
	fields := SplitValue(strings.TrimSpace(text))
	if len(fields) == 0 {
		return GradientStop{}, false
	}
	c, ok := ParseColor(fields[0])
	if !ok {
		return GradientStop{}, false
	}
	stop := GradientStop{Color: c}
	if len(fields) > 1 {
		pos := fields[1]
		unit := "px"
		num, found := strings.CutSuffix(pos, "px")
		if !found {
			if num, found = strings.CutSuffix(pos, "%"); found {
				unit = "%"
			}
		}
		if !found && pos != "0" {
			return GradientStop{}, false
		}
		v, err := strconv.ParseFloat(num, 64)
		if err != nil {
			return GradientStop{}, false
		}
		stop.Pos, stop.Unit = v, unit
	}
	return stop, true
}

// Offsets resolves the stop positions to fractions of a gradient line of
// the given length. Missing positions are spread evenly between their
// neighbours and a position never precedes the one before it.
func (g *LinearGradient) Offsets(length float64) []float64 {
	n := len(g.Stops)
	out := make([]float64, n)
	known := make([]bool, n)
	for i, s := range g.Stops {
		switch {
		case s.Unit == "%":
			out[i], known[i] = s.Pos/100, true
		case s.Unit == "px" && length > 0:
			out[i], known[i] = s.Pos/length, true
		}
	}
	if !known[0] {
		out[0], known[0] = 0, true
	}
	if !known[n-1] {
		out[n-1], known[n-1] = 1, true
	}

	prev := 0
	for i := 1; i < n; i++ {
		if !known[i] {
			continue
		}
		out[i] = max(out[i], out[prev])
		for j := prev + 1; j < i; j++ {
			out[j] = out[prev] + (out[i]-out[prev])*float64(j-prev)/float64(i-prev)
		}
		prev = i
	}
	return out
}
