package printer

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/image/font/gofont/goregular"

	"lightprint/pkg/clone"
	"lightprint/pkg/html"
	"lightprint/pkg/render"
	"lightprint/pkg/resource"
	"lightprint/pkg/style"
)

type recorder struct {
	mu    sync.Mutex
	views []*style.View
	err   error
}

func (r *recorder) Print(_ context.Context, v *style.View) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.views = append(r.views, v)
	return r.err
}

type waiterFunc func(context.Context, *html.Document) error

func (f waiterFunc) Wait(ctx context.Context, doc *html.Document) error { return f(ctx, doc) }

func parse(t *testing.T, markup string) *html.Document {
	t.Helper()
	doc, err := html.Parse(markup)
	require.NoError(t, err)
	return doc
}

const report = `<html><head><title>Quarterly   report</title>
<style>.box { width: 50px; color: red } #hidden { display: none }</style></head>
<body><div id="b" class="box"><span>x</span><p id="hidden">gone</p><p>shown</p></div></body></html>`

func TestPrint_CopiesElement(t *testing.T) {
	doc := parse(t, report)
	core, logs := observer.New(zapcore.InfoLevel)
	rec := &recorder{}

	src := doc.GetElementByID("b")
	job, err := Print(context.Background(), src, DefaultOptions(), WithDevice(rec), WithLogger(zap.New(core)))
	require.NoError(t, err)

	require.Len(t, rec.views, 1)
	assert.Same(t, job.View, rec.views[0])
	assert.Equal(t, "print", job.View.Medium())
	assert.Equal(t, "Quarterly report", job.Title)
	assert.Same(t, job.Document.Body(), job.Root.Parent)

	want, err := style.NewView(doc).Computed(src, "")
	require.NoError(t, err)
	got, err := job.View.Computed(job.Root, "")
	require.NoError(t, err)
	assert.Equal(t, want.Value("color"), got.Value("color"))
	w, _, ok := job.View.UsedSize(job.Root)
	require.True(t, ok)
	assert.Equal(t, 50.0, w)

	assert.Nil(t, job.Document.GetElementByID("hidden"))
	assert.Equal(t, 1, job.Stats.Pruned)
	assert.False(t, src.HasAttribute(clone.IDAttribute), "source is untouched")
	assert.NotNil(t, doc.GetElementByID("hidden"))

	entries := logs.FilterMessage("printed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "Quarterly report", entries[0].ContextMap()["title"])
	_, err = uuid.Parse(job.ID)
	assert.NoError(t, err)
	assert.Equal(t, job.ID, entries[0].ContextMap()["job"])
}

func TestPrint_Options(t *testing.T) {
	doc := parse(t, `<html><head><title>Source</title></head><body><div id="b"><p>text</p></div></body></html>`)
	opts := Options{DocumentTitle: "Custom", MediaPrintStyle: "p { font-style: italic }", Zoom: "150%"}

	job, err := Print(context.Background(), doc.GetElementByID("b"), opts, WithDevice(&recorder{}))
	require.NoError(t, err)
	assert.Equal(t, "Custom", job.Document.Title())
	assert.Equal(t, "Source", doc.Title())

	root, err := job.View.Computed(job.Document.DocumentElement(), "")
	require.NoError(t, err)
	assert.Equal(t, "1.5", root.Value("zoom"))

	p := job.Root.ElementChildren()[0]
	s, err := job.View.Computed(p, "")
	require.NoError(t, err)
	assert.Equal(t, "italic", s.Value("font-style"))

	head := job.Document.Head().ElementChildren()
	styleNode := head[len(head)-1]
	require.True(t, styleNode.Is("style"))
	assert.Contains(t, styleNode.TextContent(), "@media print {p { font-style: italic }}")
}

func TestPrint_WaitsAfterPruning(t *testing.T) {
	doc := parse(t, `<body><div id="b"><img id="shown" src="pic.png"><div style="display:none"><img src="hidden.png"></div></div></body>`)
	var seen *html.Document
	var urls []string
	waiter := waiterFunc(func(_ context.Context, d *html.Document) error {
		seen = d
		for _, img := range d.GetElementsByTagName("img") {
			urls = append(urls, img.Attr("src"))
			img.SetNaturalSize(30, 10)
		}
		return nil
	})

	job, err := Print(context.Background(), doc.GetElementByID("b"), DefaultOptions(), WithWaiter(waiter), WithDevice(&recorder{}))
	require.NoError(t, err)
	assert.Same(t, job.Document, seen)
	assert.Equal(t, []string{"pic.png"}, urls)
	w, h, ok := job.Document.GetElementByID("shown").NaturalSize()
	require.True(t, ok)
	assert.Equal(t, []float64{30, 10}, []float64{w, h})
}

func TestPrint_SkipsPrunedResources(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "broken", http.StatusInternalServerError)
	}))
	defer srv.Close()

	doc := parse(t, `<head><style>.off { display: none }</style></head>
<body><div id="b"><div style="display:none"><img src="/hidden.png"></div>
<p class="off"><video src="/clip.mp4"></video></p><template><img src="/tpl.png"></template></div></body>`)
	doc.URL = srv.URL + "/page.html"

	job, err := Print(context.Background(), doc.GetElementByID("b"), DefaultOptions(), WithDevice(&recorder{}))
	require.NoError(t, err)
	assert.Zero(t, hits.Load(), "no request for pruned subtrees")
	assert.Empty(t, job.Document.GetElementsByTagName("img"))
	assert.Empty(t, job.Document.GetElementsByTagName("video"))
}

func TestPrint_ImportsFonts(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		switch r.URL.Path {
		case "/go.ttf":
			_, _ = w.Write(goregular.TTF)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	doc := parse(t, `<head><style>
@font-face { font-family: "Brand"; src: local("Brand"), url(/missing.woff2) format("woff2"), url(/go.ttf); font-weight: 700 }
@font-face { font-family: Gone; src: url(/gone.ttf) }
@media print { @font-face { font-family: PrintOnly; src: url(/print.ttf) } }
p { font-family: Brand }
</style></head><body><div id="b"><p>hi</p></div></body>`)
	doc.URL = srv.URL + "/"
	core, logs := observer.New(zapcore.WarnLevel)

	job, err := Print(context.Background(), doc.GetElementByID("b"), DefaultOptions(), WithDevice(&recorder{}), WithLogger(zap.New(core)))
	require.NoError(t, err, "a font failure does not fail the print")

	fonts := job.Document.Fonts()
	require.Len(t, fonts, 2, "screen faces of the page")
	assert.Equal(t, "Brand", fonts[0].Family)
	assert.Equal(t, html.FontLoaded, fonts[0].Status)
	assert.Equal(t, "/go.ttf", fonts[0].Source)
	assert.NotEmpty(t, fonts[0].Name, "family read from the font file")
	assert.Equal(t, "700", fonts[0].Weight)
	assert.Equal(t, html.FontError, fonts[1].Status)
	assert.Equal(t, 1, logs.FilterMessage("font failed to load").Len())
	assert.Equal(t, int32(3), hits.Load())

	assert.Empty(t, doc.Fonts(), "the source document is untouched")
}

func TestPrint_ResourceFailure(t *testing.T) {
	doc := parse(t, `<body><div id="b"><img src="missing.png"></div></body>`)
	doc.URL = resource.BaseForFile(filepath.Join(t.TempDir(), "page.html"))
	rec := &recorder{}

	_, err := Print(context.Background(), doc.GetElementByID("b"), DefaultOptions(), WithDevice(rec))
	assert.ErrorIs(t, err, resource.ErrLoad)
	assert.Empty(t, rec.views, "nothing is printed")
}

func TestPrint_InvalidSource(t *testing.T) {
	doc := parse(t, `<body><div id="b">text</div></body>`)
	other := parse(t, `<body></body>`)
	ctx := context.Background()

	_, err := Print(ctx, nil, DefaultOptions())
	assert.ErrorIs(t, err, ErrInvalidSource)
	_, err = Print(ctx, doc.CreateElement("div"), DefaultOptions())
	assert.ErrorIs(t, err, ErrInvalidSource, "detached")
	_, err = Print(ctx, doc.GetElementByID("b").Children[0], DefaultOptions())
	assert.ErrorIs(t, err, ErrInvalidSource, "text node")
	_, err = Print(ctx, doc.GetElementByID("b"), DefaultOptions(), WithSourceView(style.NewView(other)))
	assert.ErrorIs(t, err, ErrInvalidSource)
}

func TestPrint_DeviceFailure(t *testing.T) {
	doc := parse(t, `<body><div id="b"></div></body>`)
	jam := errors.New("paper jam")
	_, err := Print(context.Background(), doc.GetElementByID("b"), DefaultOptions(), WithDevice(&recorder{err: jam}))
	assert.ErrorIs(t, err, jam)
}

func TestPrint_Cancelled(t *testing.T) {
	doc := parse(t, `<body><div id="b"></div></body>`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Print(ctx, doc.GetElementByID("b"), DefaultOptions())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPrint_PNG(t *testing.T) {
	doc := parse(t, report)
	var buf bytes.Buffer
	_, err := Print(context.Background(), doc.GetElementByID("b"), DefaultOptions(), WithDevice(render.NewPNGDevice(&buf)))
	require.NoError(t, err)

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 800, img.Bounds().Dx())
}

func TestPrint_Concurrent(t *testing.T) {
	doc := parse(t, report)
	src := doc.GetElementByID("b")
	view := style.NewView(doc)

	var wg sync.WaitGroup
	jobs := make([]*Job, 6)
	errs := make([]error, len(jobs))
	for i := range jobs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			jobs[i], errs[i] = Print(context.Background(), src, DefaultOptions(), WithSourceView(view), WithDevice(&recorder{}))
		}(i)
	}
	wg.Wait()
	for i := range jobs {
		require.NoError(t, errs[i])
		assert.Equal(t, jobs[0].Stats, jobs[i].Stats)
		assert.Equal(t, jobs[0].Root.Serialize(), jobs[i].Root.Serialize())
	}
}

func TestSelect(t *testing.T) {
	doc := parse(t, report)
	n, err := Select(doc, ".box")
	require.NoError(t, err)
	assert.Equal(t, "b", n.Attr("id"))

	_, err = Select(doc, "table")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = Select(doc, "[")
	assert.Error(t, err)
}

func TestLoadOptions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "print.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`document_title: Invoice
media_print_style: |
  body { margin: 0 }
zoom: 0.8
`), 0o644))

	opts, err := LoadOptions(path)
	require.NoError(t, err)
	assert.Equal(t, "Invoice", opts.DocumentTitle)
	assert.Equal(t, "body { margin: 0 }\n", opts.MediaPrintStyle)
	assert.Equal(t, "0.8", opts.Zoom)

	partial := filepath.Join(dir, "partial.yaml")
	require.NoError(t, os.WriteFile(partial, []byte("document_title: Only\n"), 0o644))
	opts, err = LoadOptions(partial)
	require.NoError(t, err)
	assert.Equal(t, "1", opts.Zoom, "defaults survive")

	_, err = LoadOptions(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("zoom: [1, 2\n"), 0o644))
	_, err = LoadOptions(bad)
	assert.Error(t, err)
}

func TestJobOutline(t *testing.T) {
	doc := parse(t, `<body><section id="s" class="a b"><h1>t</h1><ul><li>1</li><li>2</li></ul><x-card><b>n</b></x-card></section></body>`)
	host := doc.GetElementsByTagName("x-card")[0]
	sr, err := host.AttachShadow(html.ShadowRootInit{Mode: html.ShadowRootOpen})
	require.NoError(t, err)
	sr.Root.AddChild(doc.CreateElement("slot"))

	job, err := Print(context.Background(), doc.GetElementByID("s"), DefaultOptions(), WithDevice(&recorder{}))
	require.NoError(t, err)

	out := job.Outline()
	assert.True(t, strings.HasPrefix(out, "section#s.a.b\n"), out)
	for _, want := range []string{"── h1", "── ul", "── li", "── x-card", "#shadow-root (open)", "── slot", "── b"} {
		assert.Contains(t, out, want)
	}
	assert.Empty(t, (*Job)(nil).Outline())
}
