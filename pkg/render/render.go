package render

import (
	"image"
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"

	"lightprint/pkg/css"
	"lightprint/pkg/images"
)

// Renderer paints laid out boxes with gg.
type Renderer struct {
	context *gg.Context
	images  *images.Cache
}

func NewRenderer(width, height int, cache *images.Cache) *Renderer {
	dc := gg.NewContext(width, height)
	dc.SetFontFace(basicfont.Face7x13)
	if cache == nil {
		cache = images.NewCache()
	}
	return &Renderer{context: dc, images: cache}
}

// Render clears to white and paints root, scaled by zoom.
func (r *Renderer) Render(root *Box, zoom float64) {
	r.context.SetRGB(1, 1, 1)
	r.context.Clear()
	if root == nil {
		return
	}
	r.context.Push()
	if zoom > 0 && zoom != 1 {
		r.context.Scale(zoom, zoom)
	}
	r.drawBox(root)
	r.context.Pop()
}

func (r *Renderer) Image() image.Image { return r.context.Image() }

func (r *Renderer) SavePNG(filename string) error {
	return r.context.SavePNG(filename)
}

func (r *Renderer) setColor(c css.Color) {
	r.context.SetRGBA255(int(c.R), int(c.G), int(c.B), int(c.A))
}

func (r *Renderer) drawBox(box *Box) {
	visible := box.Style.Value("visibility") != "hidden"
	if visible {
		r.drawBackground(box)
		r.drawBorder(box)
		r.drawReplaced(box)
		r.drawMarker(box)
		for _, line := range box.Lines {
			r.drawText(line)
		}
	}

	clip := box.Style.Value("overflow-x") != "visible" || box.Style.Value("overflow-y") != "visible"
	if clip {
		r.context.Push()
		r.context.DrawRectangle(box.X+box.Border.Left, box.Y+box.Border.Top,
			box.Width-box.Border.Horizontal(), box.Height-box.Border.Vertical())
		r.context.Clip()
	}
	for _, child := range box.Children {
		r.drawBox(child)
	}
	if clip {
		// Clip masks survive Pop.
		r.context.ResetClip()
		r.context.Pop()
	}
}

func (r *Renderer) drawBackground(box *Box) {
	x, y := box.X+box.Border.Left, box.Y+box.Border.Top
	w, h := box.Width-box.Border.Horizontal(), box.Height-box.Border.Vertical()
	if w <= 0 || h <= 0 {
		return
	}
	radius, _ := box.Style.GetLength("border-top-left-radius")
	shape := func() {
		if radius > 0 {
			r.context.DrawRoundedRectangle(x, y, w, h, radius)
		} else {
			r.context.DrawRectangle(x, y, w, h)
		}
	}

	if c := box.Style.GetColor("background-color"); c.A > 0 {
		r.setColor(c)
		shape()
		r.context.Fill()
	}
	if g, ok := css.ParseLinearGradient(box.Style.Value("background-image")); ok {
		x0, y0, x1, y1 := gradientLine(g.Direction, x, y, w, h)
		grad := gg.NewLinearGradient(x0, y0, x1, y1)
		for i, off := range g.Offsets(math.Hypot(x1-x0, y1-y0)) {
			c := g.Stops[i].Color
			grad.AddColorStop(off, color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A})
		}
		r.context.SetFillStyle(grad)
		shape()
		r.context.Fill()
	}
}

// gradientLine returns the end points of a gradient line for a direction
// keyword or angle. The default runs top to bottom.
func gradientLine(direction string, x, y, w, h float64) (x0, y0, x1, y1 float64) {
	switch strings.TrimSpace(direction) {
	case "to right":
		return x, y, x + w, y
	case "to left":
		return x + w, y, x, y
	case "to top":
		return x, y + h, x, y
	case "to bottom right":
		return x, y, x + w, y + h
	case "to top right":
		return x, y + h, x + w, y
	}
	if deg, ok := strings.CutSuffix(strings.TrimSpace(direction), "deg"); ok {
		if a, err := strconv.ParseFloat(deg, 64); err == nil {
			rad := a * math.Pi / 180
			cx, cy := x+w/2, y+h/2
			half := (math.Abs(w*math.Sin(rad)) + math.Abs(h*math.Cos(rad))) / 2
			dx, dy := math.Sin(rad)*half, -math.Cos(rad)*half
			return cx - dx, cy - dy, cx + dx, cy + dy
		}
	}
	return x, y, x, y + h
}

// drawBorder draws each visible side as a trapezoid.
func (r *Renderer) drawBorder(box *Box) {
	bw := box.Border
	if bw.Top <= 0 && bw.Right <= 0 && bw.Bottom <= 0 && bw.Left <= 0 {
		return
	}
	outerLeft, outerTop := box.X, box.Y
	outerRight, outerBottom := box.X+box.Width, box.Y+box.Height
	innerLeft, innerTop := outerLeft+bw.Left, outerTop+bw.Top
	innerRight, innerBottom := outerRight-bw.Right, outerBottom-bw.Bottom

	side := func(name string, width float64, pts [4][2]float64) {
		if width <= 0 || !css.IsBorderStyleVisible(box.Style.Value("border-"+name+"-style")) {
			return
		}
		c := box.Style.GetColor("border-" + name + "-color")
		if c.A == 0 {
			return
		}
		r.setColor(c)
		r.context.MoveTo(pts[0][0], pts[0][1])
		for _, p := range pts[1:] {
			r.context.LineTo(p[0], p[1])
		}
		r.context.ClosePath()
		r.context.Fill()
	}
	side("top", bw.Top, [4][2]float64{{outerLeft, outerTop}, {outerRight, outerTop}, {innerRight, innerTop}, {innerLeft, innerTop}})
	side("right", bw.Right, [4][2]float64{{outerRight, outerTop}, {outerRight, outerBottom}, {innerRight, innerBottom}, {innerRight, innerTop}})
	side("bottom", bw.Bottom, [4][2]float64{{outerLeft, outerBottom}, {outerRight, outerBottom}, {innerRight, innerBottom}, {innerLeft, innerBottom}})
	side("left", bw.Left, [4][2]float64{{outerLeft, outerTop}, {outerLeft, outerBottom}, {innerLeft, innerBottom}, {innerLeft, innerTop}})
}

func (r *Renderer) drawText(line Line) {
	r.setColor(line.Style.GetColor("color"))
	text := line.Text
	switch line.Style.Value("text-transform") {
	case "uppercase":
		text = strings.ToUpper(text)
	case "lowercase":
		text = strings.ToLower(text)
	}
	r.context.DrawString(text, line.X, line.Y)
	if strings.Contains(line.Style.Value("text-decoration-line"), "underline") {
		w, _ := r.context.MeasureString(text)
		r.context.SetLineWidth(1)
		r.context.DrawLine(line.X, line.Y+2, line.X+w, line.Y+2)
		r.context.Stroke()
	}
}

// drawMarker paints a disc to the left of list items.
func (r *Renderer) drawMarker(box *Box) {
	if box.Style.Display() != "list-item" || box.Style.Value("list-style-type") == "none" {
		return
	}
	size := box.Style.GetFontSize()
	r.setColor(box.Style.GetColor("color"))
	r.context.DrawCircle(box.ContentX()-size*0.75, box.ContentY()+size*0.6, size*0.18)
	r.context.Fill()
}

// drawReplaced paints images, canvas bitmaps, media placeholders and form
// controls with their live state.
func (r *Renderer) drawReplaced(box *Box) {
	n := box.Node
	x, y := box.ContentX(), box.ContentY()
	w, h := box.ContentWidth(), box.ContentHeight()
	switch {
	case n.Is("img"):
		img, ok := r.images.Get(n.Attr("src"))
		if !ok {
			r.brokenImage(x, y, w, h)
			return
		}
		r.drawScaled(img, x, y, w, h)
	case n.Is("canvas"):
		if s := n.ExistingCanvas(); s != nil {
			r.drawScaled(s.Image(), x, y, w, h)
		}
	case n.Is("video"):
		r.context.SetRGB(0.1, 0.1, 0.1)
		r.context.DrawRectangle(x, y, w, h)
		r.context.Fill()
	case n.Is("input"):
		r.drawInput(box, x, y, w, h)
	case n.Is("select"):
		r.drawControlText(box, n.Value(), x, y, h)
	case n.Is("textarea"):
		r.drawControlText(box, n.Value(), x, y, h)
	}
}

func (r *Renderer) drawInput(box *Box, x, y, w, h float64) {
	n := box.Node
	switch strings.ToLower(n.Attr("type")) {
	case "checkbox", "radio":
		r.context.SetRGB(0.45, 0.45, 0.45)
		r.context.SetLineWidth(1)
		r.context.DrawRectangle(x+0.5, y+0.5, w-1, h-1)
		r.context.Stroke()
		switch {
		case n.Indeterminate():
			r.context.DrawLine(x+w*0.25, y+h/2, x+w*0.75, y+h/2)
			r.context.SetLineWidth(2)
			r.context.Stroke()
		case n.Checked():
			r.context.MoveTo(x+w*0.2, y+h*0.5)
			r.context.LineTo(x+w*0.45, y+h*0.75)
			r.context.LineTo(x+w*0.8, y+h*0.25)
			r.context.SetLineWidth(2)
			r.context.Stroke()
		}
	case "hidden":
	default:
		text := n.Value()
		if text == "" {
			text = n.Attr("placeholder")
		}
		r.drawControlText(box, text, x, y, h)
	}
}

func (r *Renderer) drawControlText(box *Box, text string, x, y, h float64) {
	if text == "" {
		return
	}
	r.setColor(box.Style.GetColor("color"))
	r.context.DrawStringAnchored(text, x+2, y+h/2, 0, 0.35)
}

func (r *Renderer) drawScaled(img image.Image, x, y, w, h float64) {
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 || w <= 0 || h <= 0 {
		return
	}
	r.context.Push()
	r.context.Translate(x, y)
	r.context.Scale(w/float64(b.Dx()), h/float64(b.Dy()))
	r.context.DrawImage(img, 0, 0)
	r.context.Pop()
}

func (r *Renderer) brokenImage(x, y, w, h float64) {
	if w <= 0 || h <= 0 {
		return
	}
	r.context.SetRGB(0.9, 0.9, 0.9)
	r.context.DrawRectangle(x, y, w, h)
	r.context.Fill()
	r.context.SetRGB(0.5, 0.5, 0.5)
	r.context.SetLineWidth(2)
	r.context.DrawLine(x, y, x+w, y+h)
	r.context.DrawLine(x+w, y, x, y+h)
	r.context.Stroke()
}

// Rasterize paints a laid out tree onto a new image of the given width,
// tall enough for the content.
func Rasterize(root *Box, width int, zoom float64, cache *images.Cache) image.Image {
	height := 1
	if root != nil {
		height = max(1, int(math.Ceil(root.Height*max(zoom, 0.01))))
	}
	r := NewRenderer(width, height, cache)
	r.Render(root, zoom)
	return r.Image()
}

// zoomOf returns the zoom of a root element style.
func zoomOf(s *css.Style) float64 {
	if s == nil {
		return 1
	}
	z, err := strconv.ParseFloat(s.Value("zoom"), 64)
	if err != nil || z <= 0 {
		return 1
	}
	return z
}
