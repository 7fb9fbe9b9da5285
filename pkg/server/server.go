// Package server exposes printing over HTTP. A client posts a page, by URL
// or as markup, with the selector of the element to print and gets the
// printed copy back as PNG, PDF or Markdown.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"lightprint/pkg/css"
	"lightprint/pkg/html"
	"lightprint/pkg/js"
	"lightprint/pkg/printer"
	"lightprint/pkg/render"
	"lightprint/pkg/resource"
	stdnet "lightprint/std/net"
)

var errBadRequest = errors.New("bad request")

// PrintRequest is the body of POST /print. Exactly one of URL and HTML is
// set; BaseURL resolves the resources of HTML.
type PrintRequest struct {
	URL      string          `json:"url,omitempty"`
	HTML     string          `json:"html,omitempty"`
	BaseURL  string          `json:"base_url,omitempty"`
	Selector string          `json:"selector,omitempty"`
	Format   string          `json:"format,omitempty"`
	Options  printer.Options `json:"options"`
	Width    float64         `json:"width,omitempty"`
	Height   float64         `json:"height,omitempty"`
	Scripts  *bool           `json:"scripts,omitempty"`
}

type Server struct {
	logger  *zap.Logger
	timeout time.Duration
	maxBody int64
	fetch   func(ctx context.Context, url string) ([]byte, string, error)
}

type Option func(*Server)

func WithLogger(l *zap.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithTimeout bounds each request, page loading and scripts included.
func WithTimeout(d time.Duration) Option {
	return func(s *Server) { s.timeout = d }
}

// WithMaxBody limits the size of a request body.
func WithMaxBody(n int64) Option {
	return func(s *Server) { s.maxBody = n }
}

func New(opts ...Option) *Server {
	s := &Server{
		logger:  zap.NewNop(),
		timeout: 30 * time.Second,
		maxBody: 8 << 20,
		fetch:   stdnet.FetchContext,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the service routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/healthz"))

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(s.timeout))
		r.Use(middleware.RequestSize(s.maxBody))
		r.Post("/print", s.handlePrint)
	})
	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("elapsed", time.Since(start)))
	})
}

func (s *Server) handlePrint(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := s.logger.With(zap.String("request_id", middleware.GetReqID(ctx)))

	var req PrintRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	if req.Selector == "" {
		req.Selector = "body"
	}
	if req.Options.Zoom == "" {
		req.Options.Zoom = printer.DefaultOptions().Zoom
	}

	doc, err := s.load(ctx, req, logger)
	if err != nil {
		writeError(w, statusOf(err), err)
		return
	}
	source, err := printer.Select(doc, req.Selector)
	if err != nil {
		writeError(w, statusOf(err), err)
		return
	}

	var out bytes.Buffer
	images := resource.NewLoader(resource.NewRemoteFetcher(doc.URL), resource.WithLogger(logger))
	device, err := render.NewDevice(req.Format, &out, render.WithImages(images.Cache()), render.WithLogger(logger))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	job, err := printer.Print(ctx, source, req.Options,
		printer.WithWaiter(images),
		printer.WithDevice(device),
		printer.WithLogger(logger))
	if err != nil {
		writeError(w, statusOf(err), err)
		return
	}

	w.Header().Set("Content-Type", contentType(req.Format))
	w.Header().Set("X-Print-Job", job.ID)
	w.Header().Set("X-Print-Title", job.Title)
	w.Header().Set("X-Print-Elements", strconv.Itoa(job.Stats.Elements))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out.Bytes())
}

// load parses the requested page and runs its scripts.
func (s *Server) load(ctx context.Context, req PrintRequest, logger *zap.Logger) (*html.Document, error) {
	opts := []resource.PageOption{
		resource.WithViewport(req.Width, req.Height),
		resource.WithPageLogger(logger),
		resource.WithRemoteOnly(),
	}
	if req.Scripts == nil || *req.Scripts {
		opts = append(opts, resource.WithScripts(js.New(js.WithLogger(logger))))
	}

	switch {
	case req.URL != "" && req.HTML != "":
		return nil, fmt.Errorf("%w: url and html are exclusive", errBadRequest)
	case req.HTML != "":
		if req.BaseURL != "" && !stdnet.IsNetworkURL(req.BaseURL) {
			return nil, fmt.Errorf("%w: base_url must be http or https", errBadRequest)
		}
		return resource.LoadPage(ctx, req.HTML, req.BaseURL, opts...)
	case req.URL != "":
		if !stdnet.IsNetworkURL(req.URL) {
			return nil, fmt.Errorf("%w: url must be http or https", errBadRequest)
		}
		body, _, err := s.fetch(ctx, req.URL)
		if err != nil {
			return nil, &fetchError{err}
		}
		return resource.LoadPage(ctx, string(body), req.URL, opts...)
	}
	return nil, fmt.Errorf("%w: url or html is required", errBadRequest)
}

type fetchError struct{ err error }

func (e *fetchError) Error() string { return "fetching page: " + e.err.Error() }
func (e *fetchError) Unwrap() error { return e.err }

func statusOf(err error) int {
	var fe *fetchError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, errBadRequest), errors.Is(err, printer.ErrInvalidSource), errors.Is(err, css.ErrInvalidSelector):
		return http.StatusBadRequest
	case errors.Is(err, printer.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &fe):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func contentType(format string) string {
	switch format {
	case "pdf":
		return "application/pdf"
	case "md", "markdown":
		return "text/markdown; charset=utf-8"
	}
	return "image/png"
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}
