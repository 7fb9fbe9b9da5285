// Package printer prints one element of a page: it imports the element and
// the page's font faces into a fresh document, makes the copy look like the
// original, waits for the resources the copy still references and hands
// the result to a device.
package printer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"lightprint/pkg/clone"
	"lightprint/pkg/css"
	"lightprint/pkg/html"
	"lightprint/pkg/render"
	"lightprint/pkg/resource"
	"lightprint/pkg/style"
)

var (
	// ErrInvalidSource is returned for a source that is not an element
	// connected to a document.
	ErrInvalidSource = errors.New("printer: invalid HTML element")
	// ErrNotFound is returned by Select when nothing matches.
	ErrNotFound = errors.New("printer: no element matches selector")
)

// Device prints a finished document. The view styles it for the print
// medium.
type Device interface {
	Print(ctx context.Context, view *style.View) error
}

// Job is the result of a print.
type Job struct {
	ID       string
	Document *html.Document
	View     *style.View
	Root     *html.Node // the copy of the printed element
	Title    string
	Stats    clone.Stats
	Elapsed  time.Duration
}

type printer struct {
	device Device
	waiter resource.Waiter
	source *style.View
	logger *zap.Logger
}

type Option func(*printer)

// WithDevice sets the device. The default rasterises the page and keeps
// the image.
func WithDevice(d Device) Option {
	return func(p *printer) { p.device = d }
}

// WithWaiter sets what the copy's resources are awaited with. The default
// fetches them relative to the source document's URL.
func WithWaiter(w resource.Waiter) Option {
	return func(p *printer) { p.waiter = w }
}

// WithSourceView reuses a style view of the source document.
func WithSourceView(v *style.View) Option {
	return func(p *printer) { p.source = v }
}

func WithLogger(l *zap.Logger) Option {
	return func(p *printer) { p.logger = l }
}

// Select returns the first element of doc matching selector.
func Select(doc *html.Document, selector string) (*html.Node, error) {
	n, err := css.QuerySelector(doc.Root, selector)
	if err != nil {
		return nil, fmt.Errorf("printer: %w", err)
	}
	if n == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, selector)
	}
	return n, nil
}

// Print prints source, which stays untouched. Jobs on the same source
// document may run concurrently.
func Print(ctx context.Context, source *html.Node, opts Options, options ...Option) (*Job, error) {
	start := time.Now()
	if !source.IsElement() || source.OwnerDocument() == nil || !source.IsConnected() {
		return nil, ErrInvalidSource
	}
	srcDoc := source.OwnerDocument()

	p := &printer{logger: zap.NewNop()}
	for _, opt := range options {
		opt(p)
	}
	if p.source == nil {
		p.source = style.NewView(srcDoc, style.WithLogger(p.logger))
	} else if p.source.Document() != srcDoc {
		return nil, fmt.Errorf("%w: source view styles another document", ErrInvalidSource)
	}
	var images *resource.Loader
	if p.waiter == nil {
		images = resource.NewLoader(resource.NewFetcher(srcDoc.URL), resource.WithLogger(p.logger))
		p.waiter = images
	}
	if p.device == nil {
		devOpts := []render.DeviceOption{render.WithLogger(p.logger)}
		if images != nil {
			devOpts = append(devOpts, render.WithImages(images.Cache()))
		}
		p.device = render.NewPNGDevice(nil, devOpts...)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc := newDocument(srcDoc, opts)
	root := doc.ImportNode(source, true)
	doc.Body().AddChild(root)
	for _, f := range p.source.FontFaces() {
		doc.AddFont(f.Clone())
	}

	view := style.NewView(doc, style.WithMedium("print"), style.WithLogger(p.logger))
	c := clone.NewContext(p.source, view, clone.WithLogger(p.logger))
	if err := c.Traverse(root, source); err != nil {
		return nil, fmt.Errorf("printer: %w", err)
	}

	c.FlushTasks()
	if strings.TrimSpace(opts.MediaPrintStyle) != "" {
		c.AppendStyle("@media print {" + opts.MediaPrintStyle + "}")
	}
	c.MountStyle()

	// Pruned subtrees are gone by now, so nothing they reference is fetched.
	if err := p.waiter.Wait(ctx, doc); err != nil {
		return nil, fmt.Errorf("printer: waiting for resources: %w", err)
	}

	job := &Job{
		ID:       uuid.NewString(),
		Document: doc,
		View:     view,
		Root:     root,
		Title:    doc.Title(),
		Stats:    c.Stats(),
	}
	if err := p.device.Print(ctx, view); err != nil {
		return nil, fmt.Errorf("printer: device: %w", err)
	}
	job.Elapsed = time.Since(start)
	p.logger.Info("printed",
		zap.String("job", job.ID),
		zap.String("title", job.Title),
		zap.String("element", source.Path()),
		zap.Int("elements", job.Stats.Elements),
		zap.Int("pruned", job.Stats.Pruned),
		zap.Int("rules", job.Stats.Rules),
		zap.Int("fonts", len(doc.Fonts())),
		zap.Duration("elapsed", job.Elapsed))
	return job, nil
}

// newDocument creates the document the copy is printed from. It shares the
// source's URL and viewport.
func newDocument(src *html.Document, opts Options) *html.Document {
	doc := html.NewDocument()
	doc.URL = src.URL
	doc.ViewportWidth = src.ViewportWidth
	doc.ViewportHeight = src.ViewportHeight

	title := opts.DocumentTitle
	if title == "" {
		title = src.Title()
	}
	doc.SetTitle(title)

	zoom := strings.TrimSpace(opts.Zoom)
	if zoom == "" {
		zoom = "1"
	}
	doc.DocumentElement().SetAttribute("style", "zoom: "+zoom)
	return doc
}
