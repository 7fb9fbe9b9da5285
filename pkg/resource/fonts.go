package resource

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/image/font/sfnt"

	"lightprint/pkg/html"
)

// ErrNotAFont is returned for a font source whose body is neither an
// sfnt (TrueType/OpenType) font nor a WOFF container.
var ErrNotAFont = errors.New("resource: not a font")

type fontResult struct {
	source string
	name   string
	data   []byte
	err    error
}

// WaitFonts loads the unloaded font faces registered with doc, trying each
// face's sources in order. A face none of whose sources load is marked
// html.FontError and logged; it does not fail the wait, since text falls
// back to another family. Only ctx's error is returned.
func (l *Loader) WaitFonts(ctx context.Context, doc *html.Document) error {
	var faces []*html.FontFace
	for _, f := range doc.Fonts() {
		if f.Status == html.FontUnloaded {
			faces = append(faces, f)
		}
	}
	if len(faces) == 0 {
		return nil
	}

	results := make([]fontResult, len(faces))
	sem := make(chan struct{}, l.concurrency)
	var wg sync.WaitGroup
	for i, f := range faces {
		wg.Add(1)
		go func(i int, sources []string) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				results[i] = fontResult{err: ctx.Err()}
				return
			}
			results[i] = l.loadFont(ctx, sources)
		}(i, f.Sources)
	}
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return err
	}

	for i, r := range results {
		f := faces[i]
		if r.err != nil {
			f.Status = html.FontError
			l.logger.Warn("font failed to load", zap.String("family", f.Family), zap.Error(r.err))
			continue
		}
		f.Status, f.Source, f.Name, f.Data = html.FontLoaded, r.source, r.name, r.data
		l.logger.Debug("font loaded", zap.String("family", f.Family), zap.String("url", r.source))
	}
	return nil
}

// loadFont returns the first source that fetches and decodes. A face with
// no url() sources names installed fonts only and counts as loaded.
func (l *Loader) loadFont(ctx context.Context, sources []string) fontResult {
	var errs []error
	for _, src := range sources {
		body, _, err := l.fetcher.Fetch(ctx, src)
		if err == nil {
			var name string
			name, err = fontName(body)
			if err == nil {
				return fontResult{source: src, name: name, data: body}
			}
		}
		errs = append(errs, fmt.Errorf("%s: %w", src, err))
	}
	return fontResult{err: errors.Join(errs...)}
}

// fontName reads the family name of an sfnt font. WOFF and WOFF2
// containers are accepted without a name.
func fontName(data []byte) (string, error) {
	if bytes.HasPrefix(data, []byte("wOFF")) || bytes.HasPrefix(data, []byte("wOF2")) {
		return "", nil
	}
	f, err := sfnt.Parse(data)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNotAFont, err)
	}
	name, err := f.Name(nil, sfnt.NameIDFamily)
	if err != nil {
		return "", nil
	}
	return name, nil
}
