package resource

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/image/font/gofont/goregular"

	"lightprint/pkg/html"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func parse(t *testing.T, markup string) *html.Document {
	t.Helper()
	doc, err := html.Parse(markup)
	require.NoError(t, err)
	return doc
}

func TestLoader_DecodesImages(t *testing.T) {
	data := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes(t, 7, 3))
	doc := parse(t, `<body><img id="a" src="`+data+`"><img id="none"></body>`)

	l := NewLoader(NewFetcher(""))
	require.NoError(t, l.Wait(context.Background(), doc))

	a := doc.GetElementByID("a")
	w, h, ok := a.NaturalSize()
	require.True(t, ok)
	assert.Equal(t, 7.0, w)
	assert.Equal(t, 3.0, h)
	assert.Equal(t, "eager", a.Attr("loading"))
	assert.False(t, doc.GetElementByID("none").HasAttribute("loading"), "elements without a URL are ignored")
	assert.Equal(t, 1, l.Cache().Len())
}

func TestLoader_HTTPAndFiles(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path == "/pic.png" {
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write(pngBytes(t, 4, 4))
			return
		}
		_, _ = w.Write([]byte("frame"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "local.png"), pngBytes(t, 2, 5), 0o644))
	doc := parse(t, `<body>
		<img id="remote" src="`+srv.URL+`/pic.png">
		<iframe src="`+srv.URL+`/frame.html"></iframe>
		<img id="local" src="local.png">
	</body>`)

	l := NewLoader(NewFetcher(BaseForFile(filepath.Join(dir, "page.html"))), WithConcurrency(2))
	require.NoError(t, l.Wait(context.Background(), doc))

	assert.EqualValues(t, 2, hits.Load())
	w, _, ok := doc.GetElementByID("remote").NaturalSize()
	require.True(t, ok)
	assert.Equal(t, 4.0, w)
	_, h, ok := doc.GetElementByID("local").NaturalSize()
	require.True(t, ok)
	assert.Equal(t, 5.0, h)
}

func TestLoader_FailureNamesElement(t *testing.T) {
	dir := t.TempDir()
	doc := parse(t, `<body><video src="missing.mp4"></video></body>`)

	err := NewLoader(NewFetcher(BaseForFile(filepath.Join(dir, "page.html")))).Wait(context.Background(), doc)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLoad)
	assert.ErrorIs(t, err, os.ErrNotExist)

	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, "video", le.Tag)
	assert.Equal(t, "Failed to load resource (video: missing.mp4).", err.Error())
}

func TestLoader_UndecodableImage(t *testing.T) {
	doc := parse(t, `<body><img src="data:image/png;base64,aGVsbG8="></body>`)
	err := NewLoader(NewFetcher("")).Wait(context.Background(), doc)
	assert.ErrorIs(t, err, ErrLoad)
}

func TestLoader_Cancelled(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(block)

	doc := parse(t, `<body><img src="`+srv.URL+`/slow.png"></body>`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewLoader(NewFetcher("")).Wait(ctx, doc)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestURLOf(t *testing.T) {
	doc := parse(t, `<body>
		<object id="o" data="doc.pdf" src="ignored"></object>
		<video id="v"><source src="clip.webm"></video>
		<embed id="e" src="e.swf">
	</body>`)
	assert.Equal(t, "doc.pdf", URLOf(doc.GetElementByID("o")))
	assert.Equal(t, "clip.webm", URLOf(doc.GetElementByID("v")))
	assert.Equal(t, "e.swf", URLOf(doc.GetElementByID("e")))
}

func TestFetcher_DataAndCSS(t *testing.T) {
	f := NewFetcher("")
	css, err := f.FetchCSS("data:text/css,p%7Bcolor:red%7D")
	require.NoError(t, err)
	assert.Equal(t, "p{color:red}", css)

	_, err = f.FetchCSS("data:image/png;base64,aGVsbG8=")
	assert.Error(t, err)

	_, _, err = f.Fetch(context.Background(), "ftp://example.com/x")
	assert.Error(t, err)
}

func TestRemoteFetcher_RefusesLocalFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "secret.css")
	require.NoError(t, os.WriteFile(path, []byte("p{}"), 0o644))

	_, _, err := NewFetcher("").Fetch(context.Background(), path)
	require.NoError(t, err)

	f := NewRemoteFetcher(BaseForFile(filepath.Join(dir, "page.html")))
	_, _, err = f.Fetch(context.Background(), "secret.css")
	assert.ErrorIs(t, err, ErrLocalResource)
	_, _, err = NewRemoteFetcher("").Fetch(context.Background(), path)
	assert.ErrorIs(t, err, ErrLocalResource)

	css, err := f.FetchCSS("data:text/css,a%7B%7D")
	require.NoError(t, err)
	assert.Equal(t, "a{}", css)
}

func TestLoader_WaitFonts(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.ttf"), goregular.TTF, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "web.woff2"), []byte("wOF2 rest of container"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "junk.ttf"), []byte("not a font"), 0o644))

	doc := html.NewDocument()
	fallback := &html.FontFace{Family: "Fallback", Sources: []string{"missing.ttf", "junk.ttf", "go.ttf"}}
	web := &html.FontFace{Family: "Web", Sources: []string{"web.woff2"}}
	broken := &html.FontFace{Family: "Broken", Sources: []string{"junk.ttf"}}
	installed := &html.FontFace{Family: "Installed"}
	done := &html.FontFace{Family: "Done", Sources: []string{"missing.ttf"}, Status: html.FontLoaded}
	for _, f := range []*html.FontFace{fallback, web, broken, installed, done} {
		require.True(t, doc.AddFont(f))
	}
	assert.False(t, doc.AddFont(fallback.Clone()), "duplicate face")

	core, logs := observer.New(zapcore.WarnLevel)
	l := NewLoader(NewFetcher(BaseForFile(filepath.Join(dir, "page.html"))), WithLogger(zap.New(core)))
	require.NoError(t, l.Wait(context.Background(), doc))

	assert.Equal(t, html.FontLoaded, fallback.Status)
	assert.Equal(t, "go.ttf", fallback.Source)
	assert.Equal(t, goregular.TTF, fallback.Data)
	assert.NotEmpty(t, fallback.Name)

	assert.Equal(t, html.FontLoaded, web.Status)
	assert.Empty(t, web.Name)
	assert.Equal(t, html.FontLoaded, installed.Status)
	assert.Nil(t, done.Data, "loaded faces are not fetched again")

	assert.Equal(t, html.FontError, broken.Status)
	entries := logs.FilterMessage("font failed to load").All()
	require.Len(t, entries, 1)
	err, ok := entries[0].ContextMap()["error"].(string)
	require.True(t, ok)
	assert.Contains(t, err, ErrNotAFont.Error())
}

func TestLoader_WaitFontsCancelled(t *testing.T) {
	doc := html.NewDocument()
	doc.AddFont(&html.FontFace{Family: "Slow", Sources: []string{"a.ttf"}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := NewLoader(NewFetcher("")).WaitFonts(ctx, doc)
	assert.ErrorIs(t, err, context.Canceled)
}
