package visualtest

import (
	"context"
	"fmt"
	"image"

	"lightprint/pkg/html"
	"lightprint/pkg/printer"
	"lightprint/pkg/render"
	"lightprint/pkg/style"
)

// Pair is a page as shown on screen and the printed copy of one of its
// elements.
type Pair struct {
	Source image.Image
	Copy   image.Image
	Job    *printer.Job
}

// PrintPair snapshots the document source belongs to and prints source.
func PrintPair(ctx context.Context, source *html.Node, opts printer.Options) (*Pair, error) {
	doc := source.OwnerDocument()
	if doc == nil {
		return nil, printer.ErrInvalidSource
	}
	view := style.NewView(doc)
	device := render.NewPNGDevice(nil)
	job, err := printer.Print(ctx, source, opts,
		printer.WithSourceView(view),
		printer.WithDevice(device))
	if err != nil {
		return nil, err
	}
	return &Pair{
		Source: render.Snapshot(view, nil),
		Copy:   device.Last(),
		Job:    job,
	}, nil
}

// Fidelity prints source and compares the copy with the page it came
// from. Without a region the area both images cover is compared, which
// for an element that starts the page is the element itself.
func Fidelity(ctx context.Context, source *html.Node, opts printer.Options, cmp CompareOptions) (*CompareResult, *Pair, error) {
	pair, err := PrintPair(ctx, source, opts)
	if err != nil {
		return nil, nil, err
	}
	if cmp.Region.Empty() {
		cmp.Region = pair.Source.Bounds().Intersect(pair.Copy.Bounds())
	}
	result, err := Compare(pair.Copy, pair.Source, cmp)
	if err != nil {
		return nil, pair, fmt.Errorf("comparing %s: %w", source.Path(), err)
	}
	return result, pair, nil
}
