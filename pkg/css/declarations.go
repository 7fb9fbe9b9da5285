package css

import (
	"strings"

	"github.com/aymerick/douceur/parser"
)

type Declaration struct {
	Property  string
	Value     string
	Important bool
}

func (d Declaration) String() string {
	if d.Important {
		return d.Property + ": " + d.Value + " !important;"
	}
	return d.Property + ": " + d.Value + ";"
}

// Declarations is an ordered block of longhand declarations, as found in a
// style attribute or a rule body.
type Declarations []Declaration

// ParseDeclarations parses a declaration block, expanding shorthands.
// Malformed declarations are skipped.
func ParseDeclarations(text string) Declarations {
	var out Declarations
	for _, raw := range splitTopLevel(text, ';') {
		parsed, err := parser.ParseDeclarations(raw + ";")
		if err != nil || len(parsed) != 1 {
			continue
		}
		d := parsed[0]
		if d.Property == "" || d.Value == "" {
			continue
		}
		for _, long := range Expand(d.Property, d.Value) {
			long.Important = d.Important
			out.Set(long.Property, long.Value, long.Important)
		}
	}
	return out
}

// Get returns the value of a property.
func (ds Declarations) Get(property string) (string, bool) {
	for _, d := range ds {
		if d.Property == property {
			return d.Value, true
		}
	}
	return "", false
}

func (ds Declarations) Has(property string) bool {
	_, ok := ds.Get(property)
	return ok
}

// Set replaces the value in place or appends a new declaration.
func (ds *Declarations) Set(property, value string, important bool) {
	for i := range *ds {
		if (*ds)[i].Property == property {
			(*ds)[i].Value = value
			(*ds)[i].Important = important
			return
		}
	}
	*ds = append(*ds, Declaration{Property: property, Value: value, Important: important})
}

func (ds *Declarations) Remove(property string) {
	out := (*ds)[:0]
	for _, d := range *ds {
		if d.Property != property {
			out = append(out, d)
		}
	}
	*ds = out
}

// Merge returns ds overlaid with other.
func (ds Declarations) Merge(other Declarations) Declarations {
	out := make(Declarations, len(ds), len(ds)+len(other))
	copy(out, ds)
	for _, d := range other {
		out.Set(d.Property, d.Value, d.Important)
	}
	return out
}

// Properties lists the declared property names in order.
func (ds Declarations) Properties() []string {
	names := make([]string, len(ds))
	for i, d := range ds {
		names[i] = d.Property
	}
	return names
}

// String serialises the block as "a: b; c: d;".
func (ds Declarations) String() string {
	parts := make([]string, len(ds))
	for i, d := range ds {
		parts[i] = d.String()
	}
	return strings.Join(parts, " ")
}
