package clone

import (
	"strings"

	"lightprint/pkg/html"
)

// Kind is the category of an element as far as cloning is concerned. Every
// gate the cloner applies is a method on Kind, so a new category has to
// answer all of them.
type Kind uint8

const (
	KindGeneric Kind = iota
	KindFormControl
	KindCanvas
	KindMedia
	KindImage
	KindTable
	KindSVG
)

var kindNames = [...]string{
	KindGeneric:     "generic",
	KindFormControl: "form-control",
	KindCanvas:      "canvas",
	KindMedia:       "media",
	KindImage:       "image",
	KindTable:       "table",
	KindSVG:         "svg",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// KindOf classifies an element by tag.
func KindOf(n *html.Node) Kind {
	switch n.TagName {
	case "input", "select", "textarea", "option":
		return KindFormControl
	case "canvas":
		return KindCanvas
	case "audio", "video":
		return KindMedia
	case "img":
		return KindImage
	case "table":
		return KindTable
	case "svg":
		return KindSVG
	}
	return KindGeneric
}

// HasIntrinsicRatio reports whether the element sizes itself from a natural
// aspect ratio. An svg has one only with a viewBox.
func (k Kind) HasIntrinsicRatio(n *html.Node) bool {
	switch k {
	case KindImage, KindCanvas:
		return true
	case KindMedia:
		return n.TagName == "video"
	case KindSVG:
		return n.HasAttribute("viewBox") || n.HasAttribute("viewbox")
	}
	return false
}

// CarriesFormState reports whether the element holds a value, checkedness
// or selectedness that import does not copy.
func (k Kind) CarriesFormState() bool { return k == KindFormControl }

// CarriesBitmap reports whether the element holds pixels drawn by script.
func (k Kind) CarriesBitmap() bool { return k == KindCanvas }

// CarriesPlayback reports whether the element has a media source and a
// playback position.
func (k Kind) CarriesPlayback() bool { return k == KindMedia }

var textInputTypes = map[string]bool{
	"": true, "text": true, "search": true, "url": true, "tel": true,
	"email": true, "password": true, "number": true,
}

// AcceptsPlaceholder reports whether the element can show placeholder text.
func (k Kind) AcceptsPlaceholder(n *html.Node) bool {
	if k != KindFormControl {
		return false
	}
	switch n.TagName {
	case "textarea":
		return true
	case "input":
		return textInputTypes[strings.ToLower(strings.TrimSpace(n.Attr("type")))]
	}
	return false
}

// HasFileButton reports whether the element is a file input.
func (k Kind) HasFileButton(n *html.Node) bool {
	return k == KindFormControl && n.TagName == "input" && strings.EqualFold(n.Attr("type"), "file")
}
