// Package resource waits for the external resources of a printed document:
// images, media, frames and embedded objects.
package resource

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"lightprint/pkg/html"
	"lightprint/pkg/images"
)

// ErrLoad matches every resource load failure.
var ErrLoad = errors.New("resource: load failed")

// LoadError reports the element and URL of a failed load.
type LoadError struct {
	Tag string
	URL string
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("Failed to load resource (%s: %s).", e.Tag, e.URL)
}

func (e *LoadError) Unwrap() []error { return []error{ErrLoad, e.Err} }

// Tags are the elements whose resources are waited for. Stylesheets are
// loaded with the document.
var Tags = []string{"img", "audio", "video", "iframe", "object", "embed"}

// URLOf returns the resource URL of an element, or "" when it has none.
func URLOf(n *html.Node) string {
	switch {
	case n.Is("object"):
		return n.Attr("data")
	case n.IsMedia():
		if src := n.CurrentSrc(); src != "" {
			return src
		}
	}
	return n.Attr("src")
}

// Waiter blocks until the resources of a document have loaded.
type Waiter interface {
	Wait(ctx context.Context, doc *html.Document) error
}

// Loader fetches resources concurrently. Images are decoded, their natural
// size recorded on the element and the bitmap kept in the cache.
type Loader struct {
	fetcher     Fetcher
	cache       *images.Cache
	logger      *zap.Logger
	concurrency int
}

type Option func(*Loader)

func WithLogger(l *zap.Logger) Option {
	return func(ld *Loader) { ld.logger = l }
}

func WithCache(c *images.Cache) Option {
	return func(ld *Loader) { ld.cache = c }
}

// WithConcurrency bounds the number of fetches in flight.
func WithConcurrency(n int) Option {
	return func(ld *Loader) {
		if n > 0 {
			ld.concurrency = n
		}
	}
}

func NewLoader(fetcher Fetcher, opts ...Option) *Loader {
	l := &Loader{
		fetcher:     fetcher,
		cache:       images.NewCache(),
		logger:      zap.NewNop(),
		concurrency: 4,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Loader) Cache() *images.Cache { return l.cache }

type fetched struct {
	node *html.Node
	url  string
	img  *decoded
	err  error
}

type decoded struct {
	width, height int
}

// Wait loads the font faces of doc, then marks every resource element for
// eager loading and fetches them. It returns the first element failure, or
// ctx's error once cancelled. Nodes are only mutated on the calling
// goroutine.
func (l *Loader) Wait(ctx context.Context, doc *html.Document) error {
	if err := l.WaitFonts(ctx, doc); err != nil {
		return err
	}
	var nodes []*html.Node
	doc.Root.Walk(func(n *html.Node) bool {
		if n.IsElement() && isResource(n.TagName) && URLOf(n) != "" {
			nodes = append(nodes, n)
		}
		return true
	})
	if len(nodes) == 0 {
		return nil
	}

	type job struct {
		node      *html.Node
		tag, url  string
		wantImage bool
	}
	jobs := make([]job, len(nodes))
	for i, n := range nodes {
		n.SetAttribute("loading", "eager")
		jobs[i] = job{node: n, tag: n.TagName, url: URLOf(n), wantImage: n.Is("img")}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]fetched, len(jobs))
	sem := make(chan struct{}, l.concurrency)
	var wg sync.WaitGroup
	for i, j := range jobs {
		wg.Add(1)
		go func(i int, j job) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				results[i] = fetched{node: j.node, url: j.url, err: ctx.Err()}
				return
			}
			res := l.load(ctx, j.url, j.wantImage)
			res.node = j.node
			if res.err != nil {
				res.err = &LoadError{Tag: j.tag, URL: j.url, Err: res.err}
				cancel()
			}
			results[i] = res
		}(i, j)
	}
	wg.Wait()

	var first error
	for _, r := range results {
		if r.err != nil {
			if first == nil || errors.Is(first, context.Canceled) && !errors.Is(r.err, context.Canceled) {
				first = r.err
			}
			continue
		}
		if r.img != nil {
			r.node.SetNaturalSize(float64(r.img.width), float64(r.img.height))
		}
		l.logger.Debug("resource loaded", zap.String("tag", r.node.TagName), zap.String("url", r.url))
	}
	return first
}

func (l *Loader) load(ctx context.Context, url string, wantImage bool) fetched {
	if wantImage {
		if img, ok := l.cache.Get(url); ok {
			w, h := images.Dimensions(img)
			return fetched{url: url, img: &decoded{w, h}}
		}
	}
	body, _, err := l.fetcher.Fetch(ctx, url)
	if err != nil {
		return fetched{url: url, err: err}
	}
	if !wantImage {
		return fetched{url: url}
	}
	img, _, err := images.Decode(body)
	if err != nil {
		return fetched{url: url, err: err}
	}
	l.cache.Put(url, img)
	w, h := images.Dimensions(img)
	return fetched{url: url, img: &decoded{w, h}}
}

func isResource(tag string) bool {
	for _, t := range Tags {
		if t == tag {
			return true
		}
	}
	return false
}
