package css

import (
	"sort"
)

type Origin int

const (
	OriginUserAgent Origin = iota
	OriginAuthor
)

// MatchedRule is a rule that applies to an element, tagged with where it
// came from. Depth counts shadow boundaries: rules from a host's own shadow
// tree (:host rules) are one deeper than rules of the host's tree.
type MatchedRule struct {
	Rule   Rule
	Origin Origin
	Depth  int
	Sheet  int // document order of the stylesheet
}

// Cascade resolves the winning declaration for each property: UA normal,
// author normal, inline normal, author important, inline important, UA
// important. Among author rules of different shadow depths the outer
// context wins for normal declarations and the inner for important ones.
func Cascade(rules []MatchedRule, inline Declarations) Declarations {
	sorted := make([]MatchedRule, len(rules))
	copy(sorted, rules)

	var out Declarations
	apply := func(ds Declarations, important bool) {
		for _, d := range ds {
			if d.Important == important {
				out.Set(d.Property, d.Value, important)
			}
		}
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Origin != b.Origin {
			return a.Origin < b.Origin
		}
		if a.Depth != b.Depth {
			return a.Depth > b.Depth
		}
		return precedes(a, b)
	})
	for _, m := range sorted {
		apply(m.Rule.Declarations, false)
	}
	apply(inline, false)

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Origin != b.Origin {
			return a.Origin > b.Origin
		}
		if a.Depth != b.Depth {
			return a.Depth < b.Depth
		}
		return precedes(a, b)
	})
	for _, m := range sorted {
		if m.Origin == OriginAuthor {
			apply(m.Rule.Declarations, true)
		}
	}
	apply(inline, true)
	for _, m := range sorted {
		if m.Origin == OriginUserAgent {
			apply(m.Rule.Declarations, true)
		}
	}
	return out
}

func precedes(a, b MatchedRule) bool {
	if a.Rule.Selector.Specificity != b.Rule.Selector.Specificity {
		return a.Rule.Selector.Specificity.Less(b.Rule.Selector.Specificity)
	}
	if a.Sheet != b.Sheet {
		return a.Sheet < b.Sheet
	}
	return a.Rule.Order < b.Rule.Order
}
