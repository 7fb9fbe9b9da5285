package html

import "errors"

var (
	// ErrChildrenAccessor is returned when an element's children accessor
	// fails, as with a scripted custom element that throws.
	ErrChildrenAccessor = errors.New("html: children accessor failed")

	// ErrInvalidShadowHost is returned by AttachShadow for non-elements and
	// for elements that already host a shadow root.
	ErrInvalidShadowHost = errors.New("html: element cannot host a shadow root")

	ErrNotSupported = errors.New("html: operation not supported")
)
