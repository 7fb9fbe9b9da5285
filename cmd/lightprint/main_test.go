package main

import (
	"bytes"
	"context"
	"flag"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"lightprint/pkg/printer"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseFlags(t *testing.T) {
	dir := t.TempDir()
	conf := writeFile(t, dir, "options.yaml", "document_title: From file\nzoom: \"2\"\nmedia_print_style: \"p { color: red }\"\n")

	cfg, verbose, err := parseFlags([]string{"-config", conf, "-zoom", "50%", "-selector", "#main", "-v", "page.html"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.True(t, verbose)
	assert.Equal(t, "page.html", cfg.input)
	assert.Equal(t, "#main", cfg.selector)
	assert.Equal(t, printer.Options{
		DocumentTitle:   "From file",
		MediaPrintStyle: "p { color: red }",
		Zoom:            "50%",
	}, cfg.options, "flags override the file")
	assert.True(t, cfg.scripts)
}

func TestParseFlags_Errors(t *testing.T) {
	var stderr bytes.Buffer
	_, _, err := parseFlags(nil, &stderr)
	assert.Error(t, err)
	assert.Contains(t, stderr.String(), "Usage: lightprint")

	_, _, err = parseFlags([]string{"-help"}, &stderr)
	assert.ErrorIs(t, err, flag.ErrHelp)

	_, _, err = parseFlags([]string{"-config", filepath.Join(t.TempDir(), "none.yaml"), "page.html"}, &stderr)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	page := writeFile(t, dir, "page.html", `<html><head><title>Page</title></head><body>
		<div id="main" style="height: 40px; background-color: navy"><span id="n"></span></div>
		<div>other</div>
		<script>document.getElementById("n").textContent = "filled";</script>
	</body></html>`)
	out := filepath.Join(dir, "out.png")

	core, logs := observer.New(zapcore.InfoLevel)
	cfg := config{
		input:    page,
		output:   out,
		selector: "#main",
		options:  printer.DefaultOptions(),
		width:    400,
		height:   300,
		scripts:  true,
	}
	require.NoError(t, run(context.Background(), cfg, io.Discard, zap.New(core)))

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 400, img.Bounds().Dx())

	printed := logs.FilterMessage("printed").All()
	require.Len(t, printed, 1)
	assert.Equal(t, "Page", printed[0].ContextMap()["title"])
	assert.Equal(t, 1, logs.FilterMessage("saved").Len())
}

func TestRun_NoMatch(t *testing.T) {
	dir := t.TempDir()
	cfg := config{
		input:    writeFile(t, dir, "page.html", `<p>nothing to see</p>`),
		output:   filepath.Join(dir, "out.png"),
		selector: "#missing",
		options:  printer.DefaultOptions(),
	}
	err := run(context.Background(), cfg, io.Discard, zap.NewNop())
	assert.ErrorIs(t, err, printer.ErrNotFound)
	assert.NoFileExists(t, cfg.output)
}

func TestRun_MarkdownWithOutline(t *testing.T) {
	dir := t.TempDir()
	cfg := config{
		input:    writeFile(t, dir, "page.html", `<title>Notes</title><article id="a"><h2>Intro</h2><p>Some <b>bold</b> text.</p></article>`),
		output:   filepath.Join(dir, "notes.md"),
		selector: "#a",
		options:  printer.DefaultOptions(),
		tree:     true,
	}
	var stdout bytes.Buffer
	require.NoError(t, run(context.Background(), cfg, &stdout, zap.NewNop()))

	md, err := os.ReadFile(cfg.output)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(md), "# Notes\n"))
	assert.Contains(t, string(md), "## Intro")
	assert.Contains(t, string(md), "**bold**")

	assert.True(t, strings.HasPrefix(stdout.String(), "article#a\n"), stdout.String())
	assert.Contains(t, stdout.String(), "── h2")
}
