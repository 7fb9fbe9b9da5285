package css

import (
	"fmt"
	"strings"

	douceur "github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"

	"lightprint/pkg/html"
)

// Rule is one selector with its declarations. A qualified rule with a
// selector list becomes one Rule per selector.
type Rule struct {
	Selector     Selector
	Declarations Declarations
	MediaQuery   string // enclosing @media prelude, "" when unconditional
	Order        int    // position in the stylesheet
}

// Stylesheet represents a parsed CSS stylesheet
type Stylesheet struct {
	Rules     []Rule
	FontFaces []*html.FontFace
}

// ParseStylesheet parses stylesheet text. Malformed rules and
// declarations are skipped the way browsers skip them; the error is
// reserved for callers that want to know nothing could be read.
func ParseStylesheet(text string) (*Stylesheet, error) {
	sheet := &Stylesheet{Rules: make([]Rule, 0)}
	raws := html.SplitRules(text)
	for _, raw := range raws {
		sheet.addRaw(raw, "")
	}
	if len(sheet.Rules) == 0 && len(sheet.FontFaces) == 0 && len(raws) > 0 && !onlyAtRules(raws) {
		return sheet, fmt.Errorf("css: no usable rules in %d blocks", len(raws))
	}
	return sheet, nil
}

func onlyAtRules(raws []string) bool {
	for _, r := range raws {
		if !strings.HasPrefix(r, "@") {
			return false
		}
	}
	return true
}

// addRaw adds one top-level block. Qualified rules are parsed with
// douceur, falling back to a prelude/body split when douceur rejects them.
// At-rules are split here: douceur loops forever on a nested block whose
// prelude is empty.
func (s *Stylesheet) addRaw(raw, media string) {
	brace := strings.IndexByte(raw, '{')
	end := strings.LastIndexByte(raw, '}')
	if brace < 0 || end < brace {
		return
	}
	prelude, body := strings.TrimSpace(raw[:brace]), raw[brace+1:end]
	lower := strings.ToLower(prelude)
	switch {
	case prelude == "":
		// a block without a selector is dropped whole
	case strings.HasPrefix(lower, "@media"):
		inner := joinMedia(media, strings.TrimSpace(prelude[len("@media"):]))
		for _, r := range html.SplitRules(body) {
			s.addRaw(r, inner)
		}
	case lower == "@font-face":
		s.addFontFace(body, media)
	case strings.HasPrefix(prelude, "@"):
		// @keyframes, @supports, @page and friends carry no element styles.
	default:
		if parsed, err := parser.Parse(raw); err == nil {
			s.addQualified(parsed.Rules, media)
			return
		}
		s.addRule(prelude, ParseDeclarations(body), media)
	}
}

func joinMedia(outer, inner string) string {
	if outer == "" {
		return inner
	}
	return outer + " and " + inner
}

func (s *Stylesheet) addQualified(rules []*douceur.Rule, media string) {
	for _, r := range rules {
		if r.Kind != douceur.QualifiedRule {
			continue
		}
		var decls Declarations
		for _, d := range r.Declarations {
			if d.Property == "" || d.Value == "" {
				continue
			}
			for _, long := range Expand(d.Property, d.Value) {
				decls.Set(long.Property, long.Value, d.Important)
			}
		}
		s.addRule(r.Prelude, decls, media)
	}
}

func (s *Stylesheet) addRule(prelude string, decls Declarations, media string) {
	sels, err := ParseSelectorList(prelude)
	if err != nil {
		return
	}
	for _, sel := range sels {
		s.Rules = append(s.Rules, Rule{
			Selector:     sel,
			Declarations: decls,
			MediaQuery:   media,
			Order:        len(s.Rules),
		})
	}
}

// FindMatchingRules returns the rules of the sheet that apply to node for
// the given pseudo-element ("" for the element itself).
func FindMatchingRules(node *html.Node, sheet *Stylesheet, media Media, mc MatchContext, pseudo string) []Rule {
	matches := make([]Rule, 0)
	for _, rule := range sheet.Rules {
		if rule.Selector.PseudoElement != pseudo || rule.Selector.PseudoElement == "part" {
			continue
		}
		if !media.Matches(rule.MediaQuery) {
			continue
		}
		if mc.Matches(node, rule.Selector) {
			matches = append(matches, rule)
		}
	}
	return matches
}

// FindPartRules returns the ::part() rules of an outer sheet that apply to
// a part element of host.
func FindPartRules(host *html.Node, partNames []string, sheet *Stylesheet, media Media, mc MatchContext, pseudo string) []Rule {
	matches := make([]Rule, 0)
	for _, rule := range sheet.Rules {
		if rule.Selector.PseudoElement != "part" || !contains(partNames, rule.Selector.PartName) {
			continue
		}
		if pseudo != "" {
			// ::part(x)::before is not representable; skip.
			continue
		}
		if !media.Matches(rule.MediaQuery) {
			continue
		}
		if mc.Matches(host, rule.Selector) {
			matches = append(matches, rule)
		}
	}
	return matches
}
