package resource

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	stdnet "lightprint/std/net"
)

// ErrLocalResource is returned by a remote-only fetcher for file and
// local path URIs.
var ErrLocalResource = errors.New("resource: local resources are not allowed")

// Fetcher retrieves resources by URI.
type Fetcher interface {
	Fetch(ctx context.Context, uri string) (body []byte, contentType string, err error)
}

// DefaultFetcher fetches data:, file: and HTTP(S) resources, resolving
// relative URIs against a base, which is either a URL or a local path.
type DefaultFetcher struct {
	baseURL    string
	remoteOnly bool
}

// NewFetcher creates a DefaultFetcher with the given base.
func NewFetcher(baseURL string) *DefaultFetcher {
	return &DefaultFetcher{baseURL: baseURL}
}

// NewRemoteFetcher creates a DefaultFetcher that only fetches data: and
// HTTP(S) resources.
func NewRemoteFetcher(baseURL string) *DefaultFetcher {
	return &DefaultFetcher{baseURL: baseURL, remoteOnly: true}
}

// BaseForFile returns a file: base URL for a document read from path.
func BaseForFile(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String()
}

// Resolve turns uri into an absolute URL against the fetcher's base.
func (f *DefaultFetcher) Resolve(uri string) string {
	uri = strings.TrimSpace(uri)
	if stdnet.IsDataURL(uri) || f.baseURL == "" {
		return uri
	}
	return stdnet.ResolveURL(f.baseURL, uri)
}

// Fetch retrieves the resource at uri.
func (f *DefaultFetcher) Fetch(ctx context.Context, uri string) ([]byte, string, error) {
	resolved := f.Resolve(uri)
	switch {
	case stdnet.IsDataURL(resolved):
		return stdnet.DecodeDataURL(resolved)
	case stdnet.IsNetworkURL(resolved):
		return stdnet.FetchContext(ctx, resolved)
	case f.remoteOnly:
		return nil, "", fmt.Errorf("%w: %s", ErrLocalResource, resolved)
	case strings.HasPrefix(resolved, "file:"):
		u, err := url.Parse(resolved)
		if err != nil {
			return nil, "", fmt.Errorf("parsing %s: %w", resolved, err)
		}
		return readFile(ctx, filepath.FromSlash(u.Path))
	}
	if strings.Contains(resolved, "://") {
		return nil, "", fmt.Errorf("cannot fetch URI: %s", resolved)
	}
	return readFile(ctx, resolved)
}

func readFile(ctx context.Context, path string) ([]byte, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	return body, contentTypeOf(path), nil
}

func contentTypeOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".css":
		return "text/css"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".bmp":
		return "image/bmp"
	case ".html", ".htm":
		return "text/html"
	}
	return ""
}

// FetchCSS fetches a stylesheet and returns its text. It has the shape of
// html.CSSFetcher.
func (f *DefaultFetcher) FetchCSS(uri string) (string, error) {
	body, contentType, err := f.Fetch(context.Background(), uri)
	if err != nil {
		return "", err
	}
	ct := strings.ToLower(contentType)
	if ct != "" && !strings.HasPrefix(ct, "text/") && !strings.Contains(ct, "css") {
		return "", fmt.Errorf("unexpected content type for CSS: %s", contentType)
	}
	return string(body), nil
}
