// Command lightprint prints one element of an HTML page to a PNG, PDF or
// Markdown file, chosen by the output file's extension.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"io"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"lightprint/pkg/html"
	"lightprint/pkg/js"
	"lightprint/pkg/printer"
	"lightprint/pkg/render"
	"lightprint/pkg/resource"
	stdnet "lightprint/std/net"
)

type config struct {
	input    string
	output   string
	selector string
	options  printer.Options
	width    float64
	height   float64
	scripts  bool
	tree     bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, verbose, err := parseFlags(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	logger := newLogger(verbose)
	defer logger.Sync()

	if err := run(ctx, cfg, os.Stdout, logger); err != nil {
		logger.Error("print failed", zap.Error(err))
		os.Exit(1)
	}
}

func newLogger(verbose bool) *zap.Logger {
	zc := zap.NewDevelopmentConfig()
	if !verbose {
		zc.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	logger, err := zc.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// parseFlags reads the command line. Flags given explicitly override the
// options file.
func parseFlags(args []string, stderr io.Writer) (config, bool, error) {
	fs := flag.NewFlagSet("lightprint", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "YAML options file")
	selector := fs.String("selector", "body", "CSS selector of the element to print")
	title := fs.String("title", "", "title of the printed document")
	style := fs.String("style", "", "CSS applied to the print medium only")
	zoom := fs.String("zoom", "", "zoom of the printed document, e.g. 1.5 or 150%")
	output := fs.String("o", "output.png", "output file: .png, .pdf or .md")
	width := fs.Float64("w", html.DefaultViewportWidth, "viewport width in pixels")
	height := fs.Float64("h", html.DefaultViewportHeight, "viewport height in pixels")
	noScripts := fs.Bool("no-scripts", false, "do not run the page's scripts")
	tree := fs.Bool("tree", false, "print an outline of the printed copy to stdout")
	verbose := fs.Bool("v", false, "debug logging")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: lightprint [flags] <file-or-url>\n\nFlags:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return config{}, false, err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return config{}, false, errors.New("expected one input page")
	}

	opts := printer.DefaultOptions()
	if *configPath != "" {
		var err error
		if opts, err = printer.LoadOptions(*configPath); err != nil {
			return config{}, false, err
		}
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "title":
			opts.DocumentTitle = *title
		case "style":
			opts.MediaPrintStyle = *style
		case "zoom":
			opts.Zoom = *zoom
		}
	})

	return config{
		input:    fs.Arg(0),
		output:   *output,
		selector: *selector,
		options:  opts,
		width:    *width,
		height:   *height,
		scripts:  !*noScripts,
		tree:     *tree,
	}, *verbose, nil
}

func run(ctx context.Context, cfg config, stdout io.Writer, logger *zap.Logger) error {
	pageOpts := []resource.PageOption{
		resource.WithViewport(cfg.width, cfg.height),
		resource.WithPageLogger(logger),
	}
	if cfg.scripts {
		pageOpts = append(pageOpts, resource.WithScripts(js.New(js.WithLogger(logger))))
	}

	var (
		doc *html.Document
		err error
	)
	if stdnet.IsNetworkURL(cfg.input) {
		logger.Info("fetching", zap.String("url", cfg.input))
		var body []byte
		if body, _, err = stdnet.FetchContext(ctx, cfg.input); err == nil {
			doc, err = resource.LoadPage(ctx, string(body), cfg.input, pageOpts...)
		}
	} else {
		doc, err = resource.OpenPage(ctx, cfg.input, pageOpts...)
	}
	if err != nil {
		return err
	}

	source, err := printer.Select(doc, cfg.selector)
	if err != nil {
		return err
	}

	f, err := os.Create(cfg.output)
	if err != nil {
		return fmt.Errorf("creating output: %w", err)
	}
	defer f.Close()

	images := resource.NewLoader(resource.NewFetcher(doc.URL), resource.WithLogger(logger))
	device, err := render.NewDevice(render.FormatOf(cfg.output), f,
		render.WithImages(images.Cache()), render.WithLogger(logger))
	if err != nil {
		return err
	}
	job, err := printer.Print(ctx, source, cfg.options,
		printer.WithWaiter(images),
		printer.WithDevice(device),
		printer.WithLogger(logger))
	if err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	if cfg.tree {
		fmt.Fprint(stdout, job.Outline())
	}

	fields := []zap.Field{zap.String("output", cfg.output), zap.String("title", job.Title)}
	if raster, ok := device.(interface{ Last() image.Image }); ok {
		b := raster.Last().Bounds()
		fields = append(fields, zap.Int("width", b.Dx()), zap.Int("height", b.Dy()))
	}
	logger.Info("saved", fields...)
	return nil
}
