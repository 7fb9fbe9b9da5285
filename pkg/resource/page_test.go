package resource

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"lightprint/pkg/html"
)

type scriptFunc func(ctx context.Context, doc *html.Document) error

func (f scriptFunc) Execute(ctx context.Context, doc *html.Document) error { return f(ctx, doc) }

func TestOpenPage(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "site.css"), []byte("p { color: red }"), 0o644))
	path := filepath.Join(dir, "index.html")
	require.NoError(t, os.WriteFile(path, []byte(
		`<html><head><link rel="stylesheet" href="site.css"></head><body><p id="p">x</p></body></html>`), 0o644))

	doc, err := OpenPage(context.Background(), path, WithViewport(640, 480))
	require.NoError(t, err)
	assert.Equal(t, BaseForFile(path), doc.URL)
	assert.Equal(t, 640.0, doc.ViewportWidth)
	assert.Equal(t, 480.0, doc.ViewportHeight)
	assert.NotNil(t, doc.GetElementByID("p"))
	links := doc.GetElementsByTagName("link")
	require.Len(t, links, 1)
	assert.Equal(t, "p { color: red }", links[0].StyleSheetText())
}

func TestOpenPage_Missing(t *testing.T) {
	_, err := OpenPage(context.Background(), filepath.Join(t.TempDir(), "none.html"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadPage_Scripts(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	ran := 0
	scripts := scriptFunc(func(_ context.Context, doc *html.Document) error {
		ran++
		doc.GetElementByID("p").SetTextContent("scripted")
		return errors.New("second script failed")
	})

	doc, err := LoadPage(context.Background(), `<p id="p">static</p><script>go()</script>`, "",
		WithScripts(scripts), WithPageLogger(zap.New(core)))
	require.NoError(t, err, "script failures are logged")
	assert.Equal(t, 1, ran)
	assert.Equal(t, "scripted", doc.GetElementByID("p").TextContent())
	assert.Equal(t, 1, logs.FilterMessage("page scripts failed").Len())

	ran = 0
	_, err = LoadPage(context.Background(), `<p id="p"></p>`, "", WithScripts(scripts))
	require.NoError(t, err)
	assert.Zero(t, ran, "pages without scripts skip the runner")
}

func TestLoadPage_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	scripts := scriptFunc(func(ctx context.Context, _ *html.Document) error {
		cancel()
		return ctx.Err()
	})
	_, err := LoadPage(ctx, `<p id="p"></p><script>x</script>`, "", WithScripts(scripts))
	assert.ErrorIs(t, err, context.Canceled)
}
