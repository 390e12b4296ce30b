package hxfeed

import (
	"errors"
	"fmt"

	"github.com/pthm/hxfeed/lib/encoding"
)

// DecodeBody decodes a response body into generic values (maps, slices,
// strings, numbers, booleans and nil). Bodies labelled application/msgpack
// are read as msgpack, everything else as JSON.
func DecodeBody(body []byte, contentType string) (any, error) {
	v, err := encoding.Decode(body, contentType)
	return v, wrapEncodingError(err)
}

// wrapEncodingError maps encoding package errors onto ErrMalformedResponse.
func wrapEncodingError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, encoding.ErrInvalidFormat) || errors.Is(err, encoding.ErrInvalidJSONP) {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return err
}
