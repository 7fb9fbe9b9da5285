package render

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lightprint/pkg/html"
	"lightprint/pkg/style"
)

func view(t *testing.T, markup string, opts ...style.Option) *style.View {
	t.Helper()
	doc, err := html.Parse(markup)
	require.NoError(t, err)
	return style.NewView(doc, opts...)
}

func rgb(img image.Image, x, y int) [3]uint32 {
	r, g, b, _ := img.At(x, y).RGBA()
	return [3]uint32{r >> 8, g >> 8, b >> 8}
}

func TestLayout_StacksBlocks(t *testing.T) {
	v := view(t, `<body style="margin: 0">
		<div id="a" style="height: 20px"></div>
		<div id="b" style="height: 10px; margin-top: 5px; padding: 2px; border: 1px solid"></div>
	</body>`)
	root := Layout(v)
	require.NotNil(t, root)
	body := root.Children[0]
	require.Len(t, body.Children, 2)

	a, b := body.Children[0], body.Children[1]
	assert.Equal(t, 0.0, a.Y)
	assert.Equal(t, 20.0, a.Height)
	assert.Equal(t, 25.0, b.Y)
	assert.Equal(t, 16.0, b.Height)
	assert.Equal(t, 3.0, b.ContentX())
	assert.Equal(t, 794.0, b.ContentWidth())
}

func TestLayout_WrapsText(t *testing.T) {
	v := view(t, `<body style="margin: 0"><p style="width: 80px; margin: 0">aaaa bbbb cccc dddd</p></body>`)
	p := Layout(v).Children[0].Children[0]
	require.Len(t, p.Lines, 2, "eight characters fit in 80px at 8px each")
	assert.Equal(t, "aaaa bbbb", p.Lines[0].Text)
	assert.Equal(t, "cccc dddd", p.Lines[1].Text)
	assert.Greater(t, p.Lines[1].Y, p.Lines[0].Y)
}

func TestLayout_PseudoContent(t *testing.T) {
	v := view(t, `<html><head><style>p::before { content: "> " }</style></head>
		<body><p>quoted</p></body></html>`)
	p := Layout(v).Children[0].Children[0]
	var text string
	for _, line := range p.Lines {
		text += line.Text
	}
	assert.Equal(t, "> quoted", text)
}

func TestSnapshot_PaintsBackgrounds(t *testing.T) {
	v := view(t, `<body style="margin: 0">
		<div style="height: 20px; background-color: red"></div>
		<div style="height: 20px; border-top: 4px solid blue"></div>
	</body>`)
	img := Snapshot(v, nil)

	assert.Equal(t, 800, img.Bounds().Dx())
	assert.Equal(t, [3]uint32{255, 0, 0}, rgb(img, 5, 5))
	assert.Equal(t, [3]uint32{0, 0, 255}, rgb(img, 5, 21))
	assert.Equal(t, [3]uint32{255, 255, 255}, rgb(img, 5, 30))
}

func TestSnapshot_Zoom(t *testing.T) {
	v := view(t, `<html style="zoom: 2"><body style="margin: 0">
		<div style="height: 10px; width: 10px; background-color: red"></div>
	</body></html>`)
	img := Snapshot(v, nil)
	assert.Equal(t, 1600, img.Bounds().Dx())
	assert.Equal(t, [3]uint32{255, 0, 0}, rgb(img, 15, 15))
}

func TestSnapshot_CanvasBitmap(t *testing.T) {
	v := view(t, `<body style="margin: 0"><canvas id="c" width="10" height="10" style="display: block"></canvas></body>`)
	surface := v.Document().GetElementByID("c").Canvas()
	require.NoError(t, surface.SetFillStyle("lime"))
	surface.FillRect(0, 0, 10, 10)

	img := Snapshot(v, nil)
	assert.Equal(t, [3]uint32{0, 255, 0}, rgb(img, 5, 5))
}

func TestPNGDevice(t *testing.T) {
	v := view(t, `<body><p>hello</p></body>`, style.WithMedium("print"))
	var buf bytes.Buffer
	d := NewPNGDevice(&buf)
	require.NoError(t, d.Print(context.Background(), v))

	decoded, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, d.Last().Bounds(), decoded.Bounds())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, d.Print(ctx, v), context.Canceled)
}

func TestGradientLine(t *testing.T) {
	x0, y0, x1, y1 := gradientLine("to right", 0, 0, 100, 50)
	assert.Equal(t, [4]float64{0, 0, 100, 0}, [4]float64{x0, y0, x1, y1})
	x0, y0, x1, y1 = gradientLine("", 0, 0, 100, 50)
	assert.Equal(t, [4]float64{0, 0, 0, 50}, [4]float64{x0, y0, x1, y1})
	x0, _, x1, _ = gradientLine("90deg", 0, 0, 100, 50)
	assert.InDelta(t, 0, x0, 1e-9)
	assert.InDelta(t, 100, x1, 1e-9)
}

func TestPDFDevice(t *testing.T) {
	v := view(t, `<body><div style="height: 20px; background-color: red"></div></body>`, style.WithMedium("print"))
	var buf bytes.Buffer
	d := NewPDFDevice(&buf)
	require.NoError(t, d.Print(context.Background(), v))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
	assert.NotNil(t, d.Last())
}

func TestMarkdownDevice(t *testing.T) {
	v := view(t, `<html><head><title>Report</title><style>p { color: red }</style></head>
		<body><h2>Totals</h2><p>See <a href="/more">more</a>.</p>
		<table><tr><th>k</th><th>v</th></tr><tr><td>a</td><td>1</td></tr></table></body></html>`)
	v.Document().URL = "https://example.com/page"
	var buf bytes.Buffer
	require.NoError(t, NewMarkdownDevice(&buf).Print(context.Background(), v))

	md := buf.String()
	assert.True(t, strings.HasPrefix(md, "# Report\n\n"), md)
	assert.Contains(t, md, "## Totals")
	assert.Contains(t, md, "[more](https://example.com/more)")
	assert.Contains(t, md, "| a")
	assert.NotContains(t, md, "color: red")
}

func TestNewDevice(t *testing.T) {
	for path, want := range map[string]any{
		"out.png":      &PNGDevice{},
		"out.PDF":      &PDFDevice{},
		"notes.md":     &MarkdownDevice{},
		"no-extension": &PNGDevice{},
	} {
		d, err := NewDevice(FormatOf(path), io.Discard)
		require.NoError(t, err, path)
		assert.IsType(t, want, d, path)
	}
	_, err := NewDevice("tiff", io.Discard)
	assert.ErrorIs(t, err, ErrUnknownFormat)
}
