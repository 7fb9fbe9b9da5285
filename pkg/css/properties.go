package css

import "sort"

// ValueKind tells the computed-style resolver how to normalise a value.
type ValueKind int

const (
	KindKeyword     ValueKind = iota
	KindLength                // resolved to px
	KindLengthAuto            // length or auto/none/normal keyword
	KindColor                 // resolved to rgb()/rgba()
	KindBorderWidth           // thin/medium/thick, zero when the side's style is none/hidden
	KindNumber
	KindRaw
)

// Property describes a longhand.
type Property struct {
	Name      string
	Initial   string
	Inherited bool
	Kind      ValueKind
	// Enumerable longhands show up when iterating a computed style.
	// The counter properties do not.
	Enumerable bool
}

var properties = map[string]Property{}

func define(name, initial string, inherited bool, kind ValueKind) {
	properties[name] = Property{Name: name, Initial: initial, Inherited: inherited, Kind: kind, Enumerable: true}
}

func init() {
	for _, p := range []string{"display:inline", "position:static", "float:none", "clear:none",
		"box-sizing:content-box", "visibility", "overflow-x:visible", "overflow-y:visible",
		"table-layout:auto", "border-collapse", "caption-side", "list-style-position",
		"list-style-type", "text-align", "text-transform", "white-space", "font-style",
		"font-weight", "text-decoration-line:none", "text-decoration-style:solid",
		"vertical-align:baseline", "object-fit:fill", "empty-cells", "direction",
		"writing-mode", "cursor", "pointer-events", "resize:none", "appearance:none",
		"break-inside:auto", "break-before:auto", "break-after:auto", "content:normal",
		"transform:none", "background-repeat:repeat", "background-image:none",
		"background-size:auto", "background-position:0% 0%", "quotes"} {
		name, initial, own := splitDef(p)
		inherited := !own
		if !own {
			initial = inheritedKeywordInitial[name]
		}
		define(name, initial, inherited, KindKeyword)
	}
	for _, side := range Sides {
		define("margin-"+side, "0px", false, KindLength)
		define("padding-"+side, "0px", false, KindLength)
		define("border-"+side+"-width", "medium", false, KindBorderWidth)
		define("border-"+side+"-style", "none", false, KindKeyword)
		define("border-"+side+"-color", "currentcolor", false, KindColor)
		define(side, "auto", false, KindLengthAuto)
	}
	for _, corner := range Corners {
		define("border-"+corner+"-radius", "0px", false, KindLength)
	}
	for _, name := range []string{"width", "height", "min-width", "min-height"} {
		define(name, "auto", false, KindLengthAuto)
	}
	define("max-width", "none", false, KindLengthAuto)
	define("max-height", "none", false, KindLengthAuto)
	define("aspect-ratio", "auto", false, KindRaw)
	define("z-index", "auto", false, KindRaw)
	define("opacity", "1", false, KindNumber)
	define("zoom", "1", false, KindNumber)
	define("flex-grow", "0", false, KindNumber)
	define("flex-shrink", "1", false, KindNumber)
	define("flex-basis", "auto", false, KindLengthAuto)
	define("flex-direction", "row", false, KindKeyword)
	define("flex-wrap", "nowrap", false, KindKeyword)
	define("justify-content", "normal", false, KindKeyword)
	define("align-items", "normal", false, KindKeyword)
	define("column-gap", "normal", false, KindLengthAuto)
	define("row-gap", "normal", false, KindLengthAuto)
	define("background-color", "rgba(0, 0, 0, 0)", false, KindColor)
	define("outline-width", "medium", false, KindBorderWidth)
	define("outline-style", "none", false, KindKeyword)
	define("outline-color", "currentcolor", false, KindColor)
	define("text-decoration-color", "currentcolor", false, KindColor)
	define("color", "rgb(0, 0, 0)", true, KindColor)
	define("font-size", "16px", true, KindLength)
	define("font-family", "serif", true, KindRaw)
	define("line-height", "normal", true, KindLengthAuto)
	define("letter-spacing", "normal", true, KindLengthAuto)
	define("word-spacing", "0px", true, KindLength)
	define("text-indent", "0px", true, KindLength)
	define("border-spacing", "0px 0px", true, KindRaw)
	define("orphans", "2", true, KindNumber)
	define("widows", "2", true, KindNumber)

	for _, name := range []string{"counter-reset", "counter-set", "counter-increment"} {
		properties[name] = Property{Name: name, Initial: "none", Kind: KindRaw}
	}
}

var inheritedKeywordInitial = map[string]string{
	"visibility":          "visible",
	"border-collapse":     "separate",
	"caption-side":        "top",
	"list-style-position": "outside",
	"list-style-type":     "disc",
	"text-align":          "start",
	"text-transform":      "none",
	"white-space":         "normal",
	"font-style":          "normal",
	"font-weight":         "400",
	"empty-cells":         "show",
	"direction":           "ltr",
	"writing-mode":        "horizontal-tb",
	"cursor":              "auto",
	"pointer-events":      "auto",
	"quotes":              "auto",
}

// splitDef splits "name:initial"; a bare name marks an inherited keyword.
func splitDef(def string) (name, initial string, own bool) {
	for i := 0; i < len(def); i++ {
		if def[i] == ':' {
			return def[:i], def[i+1:], true
		}
	}
	return def, "", false
}

// Sides in top, right, bottom, left order.
var Sides = []string{"top", "right", "bottom", "left"}

var Corners = []string{"top-left", "top-right", "bottom-right", "bottom-left"}

// Lookup returns the registered longhand.
func Lookup(name string) (Property, bool) {
	p, ok := properties[name]
	return p, ok
}

// IsInherited reports whether a registered property inherits by default.
func IsInherited(name string) bool { return properties[name].Inherited }

// Longhands returns every registered longhand sorted by name.
func Longhands() []string {
	names := make([]string, 0, len(properties))
	for n := range properties {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// EnumerableLonghands returns the longhands that appear when iterating a
// computed style, sorted by name.
func EnumerableLonghands() []string {
	var names []string
	for _, n := range Longhands() {
		if properties[n].Enumerable {
			names = append(names, n)
		}
	}
	return names
}

// CounterProperties are left out of computed-style iteration.
var CounterProperties = []string{"counter-reset", "counter-set", "counter-increment"}
