package css

import (
	"strings"

	"lightprint/pkg/html"
)

// addFontFace records an @font-face block. Faces without a family are
// ignored, as browsers ignore them.
func (s *Stylesheet) addFontFace(body, media string) {
	decls := ParseDeclarations(body)
	family, _ := decls.Get("font-family")
	family = unquote(strings.TrimSpace(family))
	if family == "" {
		return
	}
	src, _ := decls.Get("src")
	weight, _ := decls.Get("font-weight")
	style, _ := decls.Get("font-style")
	s.FontFaces = append(s.FontFaces, &html.FontFace{
		Family:  family,
		Sources: FontSources(src),
		Weight:  weight,
		Style:   style,
		Media:   media,
		Status:  html.FontUnloaded,
	})
}

// FontSources returns the url() sources of an @font-face src descriptor.
// local() sources name installed fonts and are skipped.
func FontSources(src string) []string {
	var urls []string
	for _, part := range splitTopLevel(src, ',') {
		part = strings.TrimSpace(part)
		if !strings.HasPrefix(strings.ToLower(part), "url(") {
			continue
		}
		arg, ok := functionArgs(part[len("url("):])
		if !ok {
			continue
		}
		if u := unquote(strings.TrimSpace(arg)); u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}
