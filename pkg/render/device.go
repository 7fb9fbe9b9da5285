package render

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"math"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"lightprint/pkg/css"
	"lightprint/pkg/images"
	"lightprint/pkg/style"
)

var ErrUnknownFormat = errors.New("render: unknown output format")

// Device prints a finished document.
type Device interface {
	Print(ctx context.Context, view *style.View) error
}

type deviceConfig struct {
	cache  *images.Cache
	logger *zap.Logger
}

type DeviceOption func(*deviceConfig)

// WithImages supplies decoded images for <img> elements.
func WithImages(c *images.Cache) DeviceOption {
	return func(d *deviceConfig) { d.cache = c }
}

func WithLogger(l *zap.Logger) DeviceOption {
	return func(d *deviceConfig) { d.logger = l }
}

func newDeviceConfig(opts []DeviceOption) deviceConfig {
	cfg := deviceConfig{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// FormatOf returns the output format named by a file extension: "png",
// "pdf" or "md". Anything else is "png".
func FormatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return "pdf"
	case ".md", ".markdown":
		return "md"
	}
	return "png"
}

// NewDevice returns a device writing format to w.
func NewDevice(format string, w io.Writer, opts ...DeviceOption) (Device, error) {
	switch format {
	case "png", "":
		return NewPNGDevice(w, opts...), nil
	case "pdf":
		return NewPDFDevice(w, opts...), nil
	case "md", "markdown":
		return NewMarkdownDevice(w, opts...), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// PNGDevice prints a page by rasterising it and encoding it as PNG. With a
// nil writer it only keeps the last page.
type PNGDevice struct {
	deviceConfig
	w    io.Writer
	last image.Image
}

func NewPNGDevice(w io.Writer, opts ...DeviceOption) *PNGDevice {
	return &PNGDevice{deviceConfig: newDeviceConfig(opts), w: w}
}

// Print rasterises the document the view styles.
func (d *PNGDevice) Print(ctx context.Context, view *style.View) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	img := Snapshot(view, d.cache)
	d.last = img
	b := img.Bounds()
	d.logger.Debug("page rasterised",
		zap.String("medium", view.Medium()),
		zap.Int("width", b.Dx()),
		zap.Int("height", b.Dy()))
	if d.w == nil {
		return nil
	}
	if err := png.Encode(d.w, img); err != nil {
		return fmt.Errorf("encoding page: %w", err)
	}
	return nil
}

// Last returns the most recently printed page.
func (d *PNGDevice) Last() image.Image { return d.last }

// Snapshot lays out and paints the document the view styles at its
// viewport width, scaled by the root element's zoom.
func Snapshot(view *style.View, cache *images.Cache) image.Image {
	root := Layout(view)
	var rootStyle *css.Style
	if root != nil {
		rootStyle = root.Style
	}
	zoom := zoomOf(rootStyle)
	width := max(1, int(math.Ceil(view.Document().ViewportWidth*zoom)))
	return Rasterize(root, width, zoom, cache)
}
