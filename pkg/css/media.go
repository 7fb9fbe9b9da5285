package css

import (
	"strings"
)

// Media is the environment media queries are evaluated against.
type Media struct {
	Type           string // "screen" or "print"
	ViewportWidth  float64
	ViewportHeight float64
}

// Matches evaluates a media query list. An empty list matches.
func (m Media) Matches(query string) bool {
	query = strings.TrimSpace(query)
	if query == "" {
		return true
	}
	for _, q := range splitTopLevel(query, ',') {
		if m.matchesOne(strings.ToLower(q)) {
			return true
		}
	}
	return false
}

func (m Media) matchesOne(q string) bool {
	negate := false
	words := SplitValue(q)
	if len(words) > 0 && words[0] == "not" {
		negate = true
		words = words[1:]
	} else if len(words) > 0 && words[0] == "only" {
		words = words[1:]
	}
	ok := true
	for _, w := range words {
		switch {
		case w == "and":
		case w == "all":
		case w == "screen" || w == "print":
			ok = ok && w == m.Type
		case strings.HasPrefix(w, "("):
			ok = ok && m.matchesFeature(strings.Trim(w, "()"))
		default:
			ok = false
		}
	}
	return ok != negate
}

func (m Media) matchesFeature(f string) bool {
	name, value, hasValue := strings.Cut(f, ":")
	name = strings.TrimSpace(name)
	value = strings.TrimSpace(value)
	px := func() (float64, bool) { return ParseLength(value) }
	switch name {
	case "min-width":
		v, ok := px()
		return ok && m.ViewportWidth >= v
	case "max-width":
		v, ok := px()
		return ok && m.ViewportWidth <= v
	case "min-height":
		v, ok := px()
		return ok && m.ViewportHeight >= v
	case "max-height":
		v, ok := px()
		return ok && m.ViewportHeight <= v
	case "orientation":
		portrait := m.ViewportHeight >= m.ViewportWidth
		return hasValue && (value == "portrait") == portrait
	case "color", "hover", "pointer":
		return !hasValue || m.Type == "screen"
	}
	return false
}
