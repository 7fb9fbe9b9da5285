package css

import (
	"strconv"
	"strings"

	"lightprint/pkg/html"
)

// MatchContext scopes selector matching. Host is the shadow host when the
// selector comes from a stylesheet inside that host's shadow tree; only
// then can :host match.
type MatchContext struct {
	Host *html.Node
}

// MatchesSelector returns true if the node matches the complex selector.
// The pseudo-element of the selector is ignored; callers filter on it.
func MatchesSelector(node *html.Node, selector Selector) bool {
	return MatchContext{}.Matches(node, selector)
}

func (mc MatchContext) Matches(node *html.Node, selector Selector) bool {
	if !node.IsElement() || len(selector.Parts) == 0 {
		return false
	}
	return mc.matchesFrom(node, selector, len(selector.Parts)-1)
}

func (mc MatchContext) matchesFrom(node *html.Node, selector Selector, partIndex int) bool {
	if !mc.matchesPart(node, selector.Parts[partIndex]) {
		return false
	}
	if partIndex == 0 {
		return true
	}
	prev := partIndex - 1
	switch selector.Combinators[prev] {
	case DescendantCombinator:
		for anc := mc.parent(node); anc != nil; anc = mc.parent(anc) {
			if mc.matchesFrom(anc, selector, prev) {
				return true
			}
		}
	case ChildCombinator:
		if p := mc.parent(node); p != nil {
			return mc.matchesFrom(p, selector, prev)
		}
	case AdjacentSiblingCombinator:
		if sib := previousElementSibling(node); sib != nil {
			return mc.matchesFrom(sib, selector, prev)
		}
	case GeneralSiblingCombinator:
		for sib := previousElementSibling(node); sib != nil; sib = previousElementSibling(sib) {
			if mc.matchesFrom(sib, selector, prev) {
				return true
			}
		}
	}
	return false
}

// parent returns the element parent for matching. Top-level nodes of the
// scoped shadow tree see the host as their parent, and the walk ends at
// the host.
func (mc MatchContext) parent(n *html.Node) *html.Node {
	if mc.Host != nil && n == mc.Host {
		return nil
	}
	if p := n.ParentElement(); p != nil {
		return p
	}
	if mc.Host != nil && n.Parent != nil && n.Parent.Type == html.FragmentNode {
		if sr := mc.Host.AttachedShadowRoot(); sr != nil && sr.Root == n.Parent {
			return mc.Host
		}
	}
	return nil
}

func (mc MatchContext) matchesPart(node *html.Node, part SelectorPart) bool {
	// Inside its own shadow scope the host is featureless: only :host
	// compounds match it.
	isScopeHost := mc.Host != nil && node == mc.Host
	if isScopeHost != part.HasHost() {
		return false
	}
	if part.Element != "" && part.Element != "*" && node.TagName != part.Element {
		return false
	}
	if part.ID != "" && node.Attr("id") != part.ID {
		return false
	}
	if len(part.Classes) > 0 {
		classes := strings.Fields(node.Attr("class"))
		for _, want := range part.Classes {
			if !contains(classes, want) {
				return false
			}
		}
	}
	for _, attr := range part.Attributes {
		if !matchesAttributeSelector(node, attr) {
			return false
		}
	}
	for _, pc := range part.PseudoClasses {
		if !mc.matchesPseudoClass(node, pc) {
			return false
		}
	}
	return true
}

func (mc MatchContext) matchesPseudoClass(node *html.Node, pc PseudoClass) bool {
	switch pc.Name {
	case "host":
		if len(pc.Args) == 0 {
			return true
		}
		return anyMatch(MatchContext{}, node, pc.Args)
	case "not":
		return !anyMatch(mc, node, pc.Args)
	case "is", "where", "matches":
		return anyMatch(mc, node, pc.Args)
	case "root":
		return node.Parent != nil && node.Parent.Type == html.DocumentNode
	case "first-child":
		return previousElementSibling(node) == nil
	case "last-child":
		return nextElementSibling(node) == nil
	case "only-child":
		return previousElementSibling(node) == nil && nextElementSibling(node) == nil
	case "nth-child":
		return matchesNth(pc.Arg, elementIndex(node, false)+1)
	case "nth-of-type":
		return matchesNth(pc.Arg, elementIndex(node, true)+1)
	case "first-of-type":
		return elementIndex(node, true) == 0
	case "empty":
		for _, c := range node.Children {
			if c.Type == html.ElementNode || (c.Type == html.TextNode && c.Text != "") {
				return false
			}
		}
		return true
	case "checked":
		if node.Is("option") {
			return node.Selected()
		}
		return node.Is("input") && node.Checked()
	case "indeterminate":
		return node.Is("input") && node.Indeterminate()
	case "disabled":
		return isFormControl(node) && node.HasAttribute("disabled")
	case "enabled":
		return isFormControl(node) && !node.HasAttribute("disabled")
	case "placeholder-shown":
		return (node.Is("input") || node.Is("textarea")) &&
			node.Attr("placeholder") != "" && node.Value() == ""
	case "defined":
		return !strings.Contains(node.TagName, "-")
	case "link", "any-link":
		return (node.Is("a") || node.Is("area")) && node.HasAttribute("href")
	}
	// Dynamic (:hover, :focus, ...) and unknown pseudo-classes never match
	// in a static document.
	return false
}

func anyMatch(mc MatchContext, node *html.Node, sels []Selector) bool {
	for _, s := range sels {
		if mc.Matches(node, s) {
			return true
		}
	}
	return false
}

func isFormControl(n *html.Node) bool {
	switch n.TagName {
	case "input", "select", "textarea", "button", "option", "fieldset":
		return true
	}
	return false
}

// matchesAttributeSelector checks if a node matches an attribute selector
func matchesAttributeSelector(node *html.Node, attr AttributeSelector) bool {
	value, ok := node.GetAttribute(attr.Name)
	if !ok {
		return false
	}
	if attr.Operator == "" {
		return true
	}
	want := attr.Value
	if attr.Fold {
		value, want = strings.ToLower(value), strings.ToLower(want)
	}
	switch attr.Operator {
	case "=":
		return value == want
	case "^=":
		return want != "" && strings.HasPrefix(value, want)
	case "$=":
		return want != "" && strings.HasSuffix(value, want)
	case "*=":
		return want != "" && strings.Contains(value, want)
	case "~=":
		return contains(strings.Fields(value), want)
	case "|=":
		return value == want || strings.HasPrefix(value, want+"-")
	}
	return false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func previousElementSibling(node *html.Node) *html.Node {
	if node.Parent == nil {
		return nil
	}
	var prev *html.Node
	for _, sib := range node.Parent.Children {
		if sib == node {
			return prev
		}
		if sib.Type == html.ElementNode {
			prev = sib
		}
	}
	return nil
}

func nextElementSibling(node *html.Node) *html.Node {
	if node.Parent == nil {
		return nil
	}
	seen := false
	for _, sib := range node.Parent.Children {
		if seen && sib.Type == html.ElementNode {
			return sib
		}
		if sib == node {
			seen = true
		}
	}
	return nil
}

// elementIndex is the zero-based position among element siblings,
// optionally only those with the same tag.
func elementIndex(node *html.Node, sameType bool) int {
	if node.Parent == nil {
		return 0
	}
	i := 0
	for _, sib := range node.Parent.Children {
		if sib == node {
			return i
		}
		if sib.Type == html.ElementNode && (!sameType || sib.TagName == node.TagName) {
			i++
		}
	}
	return i
}

// matchesNth evaluates an An+B expression against a one-based index.
func matchesNth(expr string, index int) bool {
	expr = strings.ToLower(strings.ReplaceAll(expr, " ", ""))
	switch expr {
	case "odd":
		expr = "2n+1"
	case "even":
		expr = "2n"
	}
	nAt := strings.IndexByte(expr, 'n')
	if nAt < 0 {
		b, err := strconv.Atoi(expr)
		return err == nil && index == b
	}
	a := 1
	switch aText := expr[:nAt]; aText {
	case "", "+":
	case "-":
		a = -1
	default:
		v, err := strconv.Atoi(aText)
		if err != nil {
			return false
		}
		a = v
	}
	b := 0
	if rest := expr[nAt+1:]; rest != "" {
		v, err := strconv.Atoi(rest)
		if err != nil {
			return false
		}
		b = v
	}
	if a == 0 {
		return index == b
	}
	diff := index - b
	return diff%a == 0 && diff/a >= 0
}

// QuerySelector returns the first element in the light tree under root, in
// document order, that matches any selector of the list.
func QuerySelector(root *html.Node, selectors string) (*html.Node, error) {
	sels, err := ParseSelectorList(selectors)
	if err != nil {
		return nil, err
	}
	var found *html.Node
	root.Walk(func(n *html.Node) bool {
		if n.IsElement() && anyMatch(MatchContext{}, n, sels) {
			found = n
			return false
		}
		return true
	})
	return found, nil
}
