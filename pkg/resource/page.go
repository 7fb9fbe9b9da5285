package resource

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"lightprint/pkg/html"
)

// ScriptRunner runs the scripts of a document. *js.Engine implements it.
type ScriptRunner interface {
	Execute(ctx context.Context, doc *html.Document) error
}

type pageConfig struct {
	scripts       ScriptRunner
	logger        *zap.Logger
	width, height float64
	remoteOnly    bool
}

type PageOption func(*pageConfig)

// WithScripts runs the page's scripts once it is parsed. A failing script
// is logged and the page is still returned.
func WithScripts(r ScriptRunner) PageOption {
	return func(c *pageConfig) { c.scripts = r }
}

// WithViewport sets the viewport the page is laid out in.
func WithViewport(width, height float64) PageOption {
	return func(c *pageConfig) { c.width, c.height = width, height }
}

// WithRemoteOnly refuses stylesheets from file and local path URIs.
func WithRemoteOnly() PageOption {
	return func(c *pageConfig) { c.remoteOnly = true }
}

func WithPageLogger(l *zap.Logger) PageOption {
	return func(c *pageConfig) { c.logger = l }
}

// OpenPage reads an HTML file and loads it with LoadPage.
func OpenPage(ctx context.Context, path string, opts ...PageOption) (*html.Document, error) {
	base := BaseForFile(path)
	body, _, err := NewFetcher(base).Fetch(ctx, base)
	if err != nil {
		return nil, fmt.Errorf("reading page: %w", err)
	}
	return LoadPage(ctx, string(body), base, opts...)
}

// LoadPage parses markup whose relative URLs resolve against baseURL.
// External stylesheets are fetched while parsing.
func LoadPage(ctx context.Context, markup, baseURL string, opts ...PageOption) (*html.Document, error) {
	c := pageConfig{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&c)
	}

	fetcher := NewFetcher(baseURL)
	if c.remoteOnly {
		fetcher = NewRemoteFetcher(baseURL)
	}
	doc, err := html.ParseWithFetcher(markup, fetcher.FetchCSS)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	doc.URL = baseURL
	if c.width > 0 {
		doc.ViewportWidth = c.width
	}
	if c.height > 0 {
		doc.ViewportHeight = c.height
	}

	if c.scripts != nil && len(doc.Scripts) > 0 {
		if err := c.scripts.Execute(ctx, doc); err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			c.logger.Warn("page scripts failed", zap.String("url", baseURL), zap.Error(err))
		}
	}
	return doc, nil
}
