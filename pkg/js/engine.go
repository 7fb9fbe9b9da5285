// Package js runs page scripts with goja against a document. Scripts set
// up the live state a print has to carry over: form values, scroll
// offsets, media positions, canvas pixels, shadow trees and custom
// element children.
package js

import (
	"context"
	"fmt"
	"sync"

	"github.com/dop251/goja"
	"go.uber.org/zap"

	"lightprint/pkg/html"
)

// Engine executes JavaScript against one document at a time. Its methods
// are safe for concurrent use; script execution is serialised.
type Engine struct {
	mu     sync.Mutex
	vm     *goja.Runtime
	logger *zap.Logger
	dom    *domContext
}

type Option func(*Engine)

// WithLogger receives console output and script diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// New creates an engine with a fresh goja runtime.
func New(opts ...Option) *Engine {
	e := &Engine{vm: goja.New(), logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	c := &consoleAPI{logger: e.logger.Named("console")}
	c.register(e.vm)
	return e
}

// Execute runs the document's scripts in order and stops at the first
// error. Cancelling ctx interrupts a running script.
func (e *Engine) Execute(ctx context.Context, doc *html.Document) error {
	for i, script := range doc.Scripts {
		if _, err := e.Run(ctx, doc, script); err != nil {
			return fmt.Errorf("script %d: %w", i, err)
		}
	}
	return nil
}

// Run evaluates one script against doc and returns its completion value
// exported to Go.
func (e *Engine) Run(ctx context.Context, doc *html.Document, script string) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.bind(doc)

	stop, exited := make(chan struct{}), make(chan struct{})
	go func() {
		defer close(exited)
		select {
		case <-ctx.Done():
			e.vm.Interrupt(ctx.Err())
		case <-stop:
		}
	}()

	v, err := e.vm.RunString(script)
	close(stop)
	<-exited
	e.vm.ClearInterrupt()
	if err != nil {
		return nil, err
	}
	return v.Export(), nil
}

// bind points the document global at doc. Proxies and custom element
// definitions belong to the bound document.
func (e *Engine) bind(doc *html.Document) {
	if e.dom != nil && e.dom.doc == doc {
		return
	}
	e.dom = registerDocument(e, doc)
}
