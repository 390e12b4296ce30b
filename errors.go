package hxfeed

import (
	"errors"

	"github.com/pthm/hxfeed/lib/attreval"
)

// Sentinel errors for feed operations.
var (
	ErrUnknownCallback   = errors.New("hxfeed: unknown JSONP callback")
	ErrMalformedResponse = errors.New("hxfeed: malformed response")
	ErrNotSequence       = errors.New("hxfeed: entries are not a sequence")
	ErrUnknownTemplate   = errors.New("hxfeed: unknown template")

	// ErrUnknownContext is logged by the attribute evaluator when a binding
	// context is run before it was added.
	ErrUnknownContext = attreval.ErrUnknownContext
)

// IsUnknownCallback checks if err reports a JSONP script naming a callback
// nobody registered.
func IsUnknownCallback(err error) bool {
	return errors.Is(err, ErrUnknownCallback)
}

// IsMalformedResponse checks if err reports a body or script that could not
// be decoded.
func IsMalformedResponse(err error) bool {
	return errors.Is(err, ErrMalformedResponse)
}

// IsNotSequence checks if err reports entries that are not a list.
func IsNotSequence(err error) bool {
	return errors.Is(err, ErrNotSequence)
}

// IsUnknownContext checks if err reports an unregistered binding context.
func IsUnknownContext(err error) bool {
	return errors.Is(err, ErrUnknownContext)
}
