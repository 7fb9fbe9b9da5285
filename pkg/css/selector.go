package css

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidSelector is returned for selector text that does not parse.
var ErrInvalidSelector = errors.New("css: invalid selector")

// Selector is one complex selector: compound parts joined by combinators,
// with an optional trailing pseudo-element.
type Selector struct {
	Raw           string
	Parts         []SelectorPart
	Combinators   []Combinator // Combinators[i] joins Parts[i] and Parts[i+1]
	PseudoElement string       // "before", "after", "part", ...
	PartName      string       // argument of ::part()
	Specificity   Specificity
}

// SelectorPart is a compound selector.
type SelectorPart struct {
	Element       string // "" or "*" match any element
	ID            string
	Classes       []string
	Attributes    []AttributeSelector
	PseudoClasses []PseudoClass
}

type AttributeSelector struct {
	Name     string
	Operator string // "", "=", "~=", "|=", "^=", "$=", "*="
	Value    string
	Fold     bool // [attr=value i]
}

// PseudoClass is a pseudo-class with its optional argument. Arguments of
// :not(), :is(), :where() and :host() are parsed into Args.
type PseudoClass struct {
	Name string
	Arg  string
	Args []Selector
}

type Combinator int

const (
	DescendantCombinator Combinator = iota
	ChildCombinator
	AdjacentSiblingCombinator
	GeneralSiblingCombinator
)

// Specificity is (ids, classes, types).
type Specificity [3]int

func (s Specificity) Less(o Specificity) bool {
	for i := range s {
		if s[i] != o[i] {
			return s[i] < o[i]
		}
	}
	return false
}

func (s Specificity) add(o Specificity) Specificity {
	return Specificity{s[0] + o[0], s[1] + o[1], s[2] + o[2]}
}

// Elements that still accept the single-colon pseudo-element syntax.
var legacyPseudoElements = map[string]bool{
	"before": true, "after": true, "first-letter": true, "first-line": true,
}

// ParseSelectorList parses a comma-separated selector list.
func ParseSelectorList(text string) ([]Selector, error) {
	var out []Selector
	for _, raw := range splitTopLevel(text, ',') {
		sel, err := ParseSelector(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, sel)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: empty selector list", ErrInvalidSelector)
	}
	return out, nil
}

// ParseSelector parses a single complex selector.
func ParseSelector(text string) (Selector, error) {
	p := &selectorParser{src: strings.TrimSpace(text)}
	sel, err := p.parse()
	if err != nil {
		return Selector{}, fmt.Errorf("%w %q: %w", ErrInvalidSelector, text, err)
	}
	sel.Raw = p.src
	return sel, nil
}

type selectorParser struct {
	src string
	pos int
}

func (p *selectorParser) eof() bool { return p.pos >= len(p.src) }

func (p *selectorParser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.src[p.pos]
}

func (p *selectorParser) skipSpace() bool {
	start := p.pos
	for !p.eof() && isSpace(p.src[p.pos]) {
		p.pos++
	}
	return p.pos > start
}

func (p *selectorParser) parse() (Selector, error) {
	var sel Selector
	if p.src == "" {
		return sel, fmt.Errorf("empty selector")
	}
	for {
		part, err := p.compound(&sel)
		if err != nil {
			return sel, err
		}
		sel.Parts = append(sel.Parts, part)
		sel.Specificity = sel.Specificity.add(part.specificity())

		spaced := p.skipSpace()
		if p.eof() {
			break
		}
		if sel.PseudoElement != "" {
			return sel, fmt.Errorf("pseudo-element must be last")
		}
		comb := DescendantCombinator
		switch p.peek() {
		case '>':
			comb = ChildCombinator
			p.pos++
		case '+':
			comb = AdjacentSiblingCombinator
			p.pos++
		case '~':
			comb = GeneralSiblingCombinator
			p.pos++
		default:
			if !spaced {
				return sel, fmt.Errorf("unexpected %q at %d", p.peek(), p.pos)
			}
		}
		p.skipSpace()
		if p.eof() {
			return sel, fmt.Errorf("dangling combinator")
		}
		sel.Combinators = append(sel.Combinators, comb)
	}
	if sel.PseudoElement != "" {
		sel.Specificity[2]++
	}
	return sel, nil
}

func (p *selectorParser) compound(sel *Selector) (SelectorPart, error) {
	var part SelectorPart
	start := p.pos
	if p.peek() == '*' {
		part.Element = "*"
		p.pos++
	} else if isIdentStart(p.peek()) {
		part.Element = strings.ToLower(p.ident())
	}
	for !p.eof() {
		switch c := p.peek(); c {
		case '#':
			p.pos++
			part.ID = p.ident()
			if part.ID == "" {
				return part, fmt.Errorf("empty id")
			}
		case '.':
			p.pos++
			cls := p.ident()
			if cls == "" {
				return part, fmt.Errorf("empty class")
			}
			part.Classes = append(part.Classes, cls)
		case '[':
			attr, err := p.attribute()
			if err != nil {
				return part, err
			}
			part.Attributes = append(part.Attributes, attr)
		case ':':
			if sel.PseudoElement != "" {
				return part, fmt.Errorf("selector after pseudo-element")
			}
			if err := p.pseudo(&part, sel); err != nil {
				return part, err
			}
		default:
			if p.pos == start {
				return part, fmt.Errorf("unexpected %q at %d", c, p.pos)
			}
			return part, nil
		}
	}
	if p.pos == start {
		return part, fmt.Errorf("empty compound")
	}
	return part, nil
}

func (p *selectorParser) ident() string {
	start := p.pos
	for !p.eof() {
		c := p.src[p.pos]
		if c == '\\' && p.pos+1 < len(p.src) {
			p.pos += 2
			continue
		}
		if !isIdentChar(c) {
			break
		}
		p.pos++
	}
	return strings.ReplaceAll(p.src[start:p.pos], `\`, "")
}

func (p *selectorParser) attribute() (AttributeSelector, error) {
	var attr AttributeSelector
	end := matchingClose(p.src, p.pos, '[', ']')
	if end < 0 {
		return attr, fmt.Errorf("unterminated attribute selector")
	}
	body := strings.TrimSpace(p.src[p.pos+1 : end])
	p.pos = end + 1

	opAt := strings.IndexAny(body, "=~|^$*")
	if opAt < 0 {
		attr.Name = strings.ToLower(body)
		return attr, nil
	}
	attr.Name = strings.ToLower(strings.TrimSpace(body[:opAt]))
	rest := body[opAt:]
	if rest[0] == '=' {
		attr.Operator = "="
		rest = rest[1:]
	} else if len(rest) > 1 && rest[1] == '=' {
		attr.Operator = rest[:2]
		rest = rest[2:]
	} else {
		return attr, fmt.Errorf("bad attribute operator in [%s]", body)
	}
	rest = strings.TrimSpace(rest)
	if n := len(rest); n > 2 && (rest[n-1] == 'i' || rest[n-1] == 'I') && isSpace(rest[n-2]) {
		attr.Fold = true
		rest = strings.TrimSpace(rest[:n-1])
	}
	attr.Value = unquote(rest)
	if attr.Name == "" {
		return attr, fmt.Errorf("empty attribute name")
	}
	return attr, nil
}

func (p *selectorParser) pseudo(part *SelectorPart, sel *Selector) error {
	p.pos++
	double := false
	if p.peek() == ':' {
		double = true
		p.pos++
	}
	name := strings.ToLower(p.ident())
	if name == "" {
		return fmt.Errorf("empty pseudo selector")
	}
	var arg string
	hasArg := false
	if p.peek() == '(' {
		end := matchingClose(p.src, p.pos, '(', ')')
		if end < 0 {
			return fmt.Errorf("unterminated :%s(", name)
		}
		arg = strings.TrimSpace(p.src[p.pos+1 : end])
		hasArg = true
		p.pos = end + 1
	}
	if double || legacyPseudoElements[name] {
		if name == "part" {
			if !hasArg || arg == "" {
				return fmt.Errorf("::part needs a name")
			}
			sel.PartName = arg
		}
		sel.PseudoElement = name
		return nil
	}
	pc := PseudoClass{Name: name, Arg: arg}
	switch name {
	case "not", "is", "where", "host", "matches":
		if hasArg {
			args, err := ParseSelectorList(arg)
			if err != nil {
				return err
			}
			pc.Args = args
		}
	}
	part.PseudoClasses = append(part.PseudoClasses, pc)
	return nil
}

func (part SelectorPart) specificity() Specificity {
	var s Specificity
	if part.ID != "" {
		s[0]++
	}
	s[1] += len(part.Classes) + len(part.Attributes)
	if part.Element != "" && part.Element != "*" {
		s[2]++
	}
	for _, pc := range part.PseudoClasses {
		switch pc.Name {
		case "where":
		case "not", "is", "matches", "host":
			if pc.Name == "host" {
				s[1]++
			}
			var best Specificity
			for _, a := range pc.Args {
				if best.Less(a.Specificity) {
					best = a.Specificity
				}
			}
			s = s.add(best)
		default:
			s[1]++
		}
	}
	return s
}

// HasHost reports whether the compound contains :host.
func (part SelectorPart) HasHost() bool {
	for _, pc := range part.PseudoClasses {
		if pc.Name == "host" {
			return true
		}
	}
	return false
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '-' || c == '\\' || (c|0x20 >= 'a' && c|0x20 <= 'z') || c >= 0x80
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

// matchingClose returns the index of the bracket closing the one at start,
// skipping quoted strings.
func matchingClose(s string, start int, open, close byte) int {
	depth := 0
	var quote byte
	for i := start; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			quote = c
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// splitTopLevel splits s on sep outside brackets and quotes.
func splitTopLevel(s string, sep byte) []string {
	var out []string
	depth := 0
	var quote byte
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			quote = c
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		case sep:
			if depth == 0 {
				if part := strings.TrimSpace(s[start:i]); part != "" {
					out = append(out, part)
				}
				start = i + 1
			}
		}
	}
	if part := strings.TrimSpace(s[start:]); part != "" {
		out = append(out, part)
	}
	return out
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return strings.ReplaceAll(s[1:len(s)-1], `\`+string(s[0]), string(s[0]))
	}
	return s
}
