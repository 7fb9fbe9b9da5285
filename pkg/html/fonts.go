package html

// FontStatus is the load state of a FontFace.
type FontStatus string

const (
	FontUnloaded FontStatus = "unloaded"
	FontLoaded   FontStatus = "loaded"
	FontError    FontStatus = "error"
)

// FontFace is an @font-face rule registered with a document.
type FontFace struct {
	Family  string
	Sources []string // url() sources in preference order
	Weight  string
	Style   string
	Media   string // enclosing @media prelude

	Status FontStatus
	Source string // the source that loaded
	Name   string // family name read from the font file, when readable
	Data   []byte
}

// Clone returns an unloaded copy of f.
func (f *FontFace) Clone() *FontFace {
	return &FontFace{
		Family:  f.Family,
		Sources: append([]string(nil), f.Sources...),
		Weight:  f.Weight,
		Style:   f.Style,
		Media:   f.Media,
		Status:  FontUnloaded,
	}
}

// Fonts returns the font faces registered with d, in registration order.
func (d *Document) Fonts() []*FontFace { return d.fonts }

// AddFont registers f unless a face with the same family, sources, weight
// and style is already present. It reports whether f was added.
func (d *Document) AddFont(f *FontFace) bool {
	for _, have := range d.fonts {
		if have.same(f) {
			return false
		}
	}
	if f.Status == "" {
		f.Status = FontUnloaded
	}
	d.fonts = append(d.fonts, f)
	return true
}

func (f *FontFace) same(o *FontFace) bool {
	if f.Family != o.Family || f.Weight != o.Weight || f.Style != o.Style || len(f.Sources) != len(o.Sources) {
		return false
	}
	for i := range f.Sources {
		if f.Sources[i] != o.Sources[i] {
			return false
		}
	}
	return true
}
