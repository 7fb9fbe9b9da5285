package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"io"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"go.uber.org/zap"

	"lightprint/pkg/style"
)

// PDFDevice prints a page as a one-page PDF holding the rasterised page.
type PDFDevice struct {
	raster *PNGDevice
	w      io.Writer
	logger *zap.Logger
}

func NewPDFDevice(w io.Writer, opts ...DeviceOption) *PDFDevice {
	raster := NewPNGDevice(nil, opts...)
	return &PDFDevice{raster: raster, w: w, logger: raster.logger}
}

func (d *PDFDevice) Print(ctx context.Context, view *style.View) error {
	if err := d.raster.Print(ctx, view); err != nil {
		return err
	}
	var page bytes.Buffer
	if err := png.Encode(&page, d.raster.Last()); err != nil {
		return fmt.Errorf("encoding page: %w", err)
	}

	conf := model.NewDefaultConfiguration()
	imp := pdfcpu.DefaultImportConfig()
	if err := api.ImportImages(nil, d.w, []io.Reader{&page}, imp, conf); err != nil {
		return fmt.Errorf("writing pdf: %w", err)
	}
	d.logger.Debug("pdf written", zap.Int("image_bytes", page.Len()))
	return nil
}

// Last returns the most recently printed page.
func (d *PDFDevice) Last() image.Image { return d.raster.Last() }
