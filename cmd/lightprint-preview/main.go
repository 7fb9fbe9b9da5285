// Command lightprint-preview shows a page next to the printed copy of one
// of its elements.
package main

import (
	"context"
	"fmt"
	"image"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"

	"lightprint/pkg/html"
	"lightprint/pkg/js"
	"lightprint/pkg/printer"
	"lightprint/pkg/render"
	"lightprint/pkg/resource"
	"lightprint/pkg/style"
	stdnet "lightprint/std/net"
)

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		logger = zap.NewNop()
	}
	defer logger.Sync()

	a := app.New()
	w := a.NewWindow("lightprint preview")
	w.Resize(fyne.NewSize(1280, 800))

	blank := image.NewRGBA(image.Rect(0, 0, 1, 1))
	sourceImg := canvas.NewImageFromImage(blank)
	sourceImg.FillMode = canvas.ImageFillOriginal
	copyImg := canvas.NewImageFromImage(blank)
	copyImg.FillMode = canvas.ImageFillOriginal

	status := widget.NewLabel("Enter a page and a selector, then press Print")

	pageEntry := widget.NewEntry()
	pageEntry.SetPlaceHolder("page.html or https://example.com")
	selectorEntry := widget.NewEntry()
	selectorEntry.SetText("body")
	styleEntry := widget.NewEntry()
	styleEntry.SetPlaceHolder("print-only CSS")

	printPage := func() {
		page, selector := pageEntry.Text, selectorEntry.Text
		opts := printer.DefaultOptions()
		opts.MediaPrintStyle = styleEntry.Text
		status.SetText("Printing " + selector + " of " + page + "...")
		go func() {
			src, printed, job, err := preview(context.Background(), page, selector, opts, logger)
			fyne.Do(func() {
				if err != nil {
					status.SetText("Error: " + err.Error())
					return
				}
				sourceImg.Image = src
				sourceImg.Refresh()
				copyImg.Image = printed
				copyImg.Refresh()
				status.SetText(fmt.Sprintf("%d elements, %d rules, %d pruned in %s",
					job.Stats.Elements, job.Stats.Rules, job.Stats.Pruned, job.Elapsed))
				w.SetTitle("lightprint preview: " + job.Title)
			})
		}()
	}
	pageEntry.OnSubmitted = func(string) { printPage() }
	selectorEntry.OnSubmitted = func(string) { printPage() }

	form := container.NewBorder(nil, nil, nil, widget.NewButton("Print", printPage),
		container.NewGridWithColumns(3, pageEntry, selectorEntry, styleEntry))
	split := container.NewHSplit(
		container.NewBorder(widget.NewLabel("Page"), nil, nil, nil, container.NewScroll(sourceImg)),
		container.NewBorder(widget.NewLabel("Printed copy"), nil, nil, nil, container.NewScroll(copyImg)),
	)
	w.SetContent(container.NewBorder(form, status, nil, nil, split))
	w.Canvas().Focus(pageEntry)
	w.ShowAndRun()
}

// preview loads page, prints the element selector picks and returns the
// page as shown on screen and the printed copy.
func preview(ctx context.Context, page, selector string, opts printer.Options, logger *zap.Logger) (image.Image, image.Image, *printer.Job, error) {
	pageOpts := []resource.PageOption{
		resource.WithScripts(js.New(js.WithLogger(logger))),
		resource.WithPageLogger(logger),
	}
	var (
		doc *html.Document
		err error
	)
	if stdnet.IsNetworkURL(page) {
		var body []byte
		if body, _, err = stdnet.FetchContext(ctx, page); err == nil {
			doc, err = resource.LoadPage(ctx, string(body), page, pageOpts...)
		}
	} else {
		doc, err = resource.OpenPage(ctx, page, pageOpts...)
	}
	if err != nil {
		return nil, nil, nil, err
	}

	source, err := printer.Select(doc, selector)
	if err != nil {
		return nil, nil, nil, err
	}

	images := resource.NewLoader(resource.NewFetcher(doc.URL), resource.WithLogger(logger))
	if err := images.Wait(ctx, doc); err != nil {
		logger.Warn("page resources", zap.Error(err))
	}
	view := style.NewView(doc, style.WithLogger(logger))
	device := render.NewPNGDevice(nil, render.WithImages(images.Cache()), render.WithLogger(logger))
	job, err := printer.Print(ctx, source, opts,
		printer.WithSourceView(view),
		printer.WithWaiter(images),
		printer.WithDevice(device),
		printer.WithLogger(logger))
	if err != nil {
		return nil, nil, nil, err
	}
	return render.Snapshot(view, images.Cache()), device.Last(), job, nil
}
