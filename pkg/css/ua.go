package css

import (
	"sync"

	"lightprint/pkg/html"
)

// UserAgentCSS is the default stylesheet applied beneath author styles.
const UserAgentCSS = `
html, body, address, blockquote, center, dd, div, dl, dt, fieldset, figure,
figcaption, footer, form, h1, h2, h3, h4, h5, h6, header, hgroup, hr, legend,
main, menu, nav, ol, p, pre, section, article, aside, search, ul, details,
dialog, optgroup { display: block }
head, script, style, link, meta, title, template, source, track, param,
noscript, datalist, area, base, [hidden] { display: none }
audio:not([controls]), dialog:not([open]) { display: none }
li, summary { display: list-item }
slot { display: contents }
table { display: table; border-collapse: separate; border-spacing: 2px 2px }
caption { display: table-caption; text-align: center }
colgroup { display: table-column-group }
col { display: table-column }
thead { display: table-header-group; vertical-align: middle }
tbody { display: table-row-group; vertical-align: middle }
tfoot { display: table-footer-group; vertical-align: middle }
tr { display: table-row; vertical-align: inherit }
td, th { display: table-cell; padding: 1px; vertical-align: inherit }
th { font-weight: 700; text-align: center }
body { margin: 8px }
p, blockquote, figure, dl { margin-top: 1em; margin-bottom: 1em }
blockquote, figure { margin-left: 40px; margin-right: 40px }
h1 { font-size: 2em; margin-top: 0.67em; margin-bottom: 0.67em; font-weight: 700 }
h2 { font-size: 1.5em; margin-top: 0.83em; margin-bottom: 0.83em; font-weight: 700 }
h3 { font-size: 1.17em; margin-top: 1em; margin-bottom: 1em; font-weight: 700 }
h4, h5, h6 { margin-top: 1.33em; margin-bottom: 1.33em; font-weight: 700 }
ul, ol, menu { margin-top: 1em; margin-bottom: 1em; padding-left: 40px }
ol { list-style-type: decimal }
dd { margin-left: 40px }
b, strong { font-weight: 700 }
i, em, cite, var, dfn { font-style: italic }
pre, code, kbd, samp, tt { font-family: monospace }
pre { white-space: pre }
a:any-link { color: #0645ad; text-decoration: underline }
hr { border: 1px inset rgb(128, 128, 128); margin-top: 0.5em; margin-bottom: 0.5em }
input, select, textarea, button { display: inline-block; border: 2px inset rgb(118, 118, 118); padding: 1px 2px }
textarea { white-space: pre-wrap }
input[type="hidden"] { display: none }
input[type="checkbox"], input[type="radio"] { border: none; padding: 0; margin: 3px 3px 3px 4px }
img, canvas, video, iframe, embed, object { display: inline }
iframe { border: 2px inset rgb(118, 118, 118) }
fieldset { border: 2px groove rgb(192, 192, 192); padding: 0.35em 0.75em 0.625em; margin-left: 2px; margin-right: 2px }
input::placeholder, textarea::placeholder { color: rgb(117, 117, 117) }
`

var (
	uaOnce  sync.Once
	uaSheet *Stylesheet

	uaDisplayMu sync.Mutex
	uaDisplay   = map[string]string{}
)

// UserAgentStylesheet returns the parsed default stylesheet.
func UserAgentStylesheet() *Stylesheet {
	uaOnce.Do(func() {
		uaSheet, _ = ParseStylesheet(UserAgentCSS)
	})
	return uaSheet
}

// UADisplay returns the display a bare element of the given tag gets from
// the user agent stylesheet.
func UADisplay(tag string) string {
	uaDisplayMu.Lock()
	defer uaDisplayMu.Unlock()
	if d, ok := uaDisplay[tag]; ok {
		return d
	}
	el := html.NewElement(tag)
	var matched []MatchedRule
	for _, r := range FindMatchingRules(el, UserAgentStylesheet(), Media{Type: "screen"}, MatchContext{}, "") {
		matched = append(matched, MatchedRule{Rule: r, Origin: OriginUserAgent})
	}
	d, ok := Cascade(matched, nil).Get("display")
	if !ok {
		d = properties["display"].Initial
	}
	uaDisplay[tag] = d
	return d
}
