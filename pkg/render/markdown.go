package render

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"go.uber.org/zap"

	"lightprint/pkg/style"
)

// MarkdownDevice prints the text of a page as Markdown, headed by the
// document title. Links and images resolve against the document URL.
type MarkdownDevice struct {
	w      io.Writer
	conv   *converter.Converter
	logger *zap.Logger
}

func NewMarkdownDevice(w io.Writer, opts ...DeviceOption) *MarkdownDevice {
	cfg := newDeviceConfig(opts)
	return &MarkdownDevice{
		w: w,
		conv: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(),
			),
		),
		logger: cfg.logger,
	}
}

func (d *MarkdownDevice) Print(ctx context.Context, view *style.View) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	doc := view.Document()
	body := doc.Body()
	if body == nil {
		return fmt.Errorf("converting page: document has no body")
	}

	convOpts := []converter.ConvertOptionFunc{converter.WithContext(ctx)}
	if doc.URL != "" {
		convOpts = append(convOpts, converter.WithDomain(doc.URL))
	}
	md, err := d.conv.ConvertString(body.SerializeOuter(), convOpts...)
	if err != nil {
		return fmt.Errorf("converting page: %w", err)
	}

	var out strings.Builder
	if title := strings.TrimSpace(doc.Title()); title != "" {
		out.WriteString("# " + title + "\n\n")
	}
	out.WriteString(strings.TrimSpace(md))
	out.WriteString("\n")
	if _, err := io.WriteString(d.w, out.String()); err != nil {
		return fmt.Errorf("writing markdown: %w", err)
	}
	d.logger.Debug("markdown written", zap.Int("bytes", out.Len()))
	return nil
}
