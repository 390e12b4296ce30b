// Package encoding decodes feed response bodies and JSONP scripts.
//
// Bodies are JSON unless the server labels them as msgpack. JSONP scripts
// have the form name(<json>) and are split into the callback name and the
// payload so the payload can be routed to whoever registered the name.
package encoding

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/vmihailenco/msgpack/v5"
)

// Content types understood by Decode and Encode.
const (
	ContentTypeJSON       = "application/json"
	ContentTypeMsgpack    = "application/msgpack"
	ContentTypeXMsgpack   = "application/x-msgpack"
	ContentTypeJavaScript = "application/javascript"
)

var (
	ErrInvalidFormat = errors.New("encoding: invalid format")
	ErrInvalidJSONP  = errors.New("encoding: invalid JSONP script")
)

// IsMsgpack reports whether contentType names a msgpack body.
func IsMsgpack(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mt = strings.TrimSpace(strings.ToLower(contentType))
	}
	return mt == ContentTypeMsgpack || mt == ContentTypeXMsgpack
}

// Decode unmarshals body into generic values: map[string]any, []any,
// strings, numbers, booleans and nil.
func Decode(body []byte, contentType string) (any, error) {
	var v any
	if IsMsgpack(contentType) {
		dec := msgpack.NewDecoder(bytes.NewReader(body))
		dec.UseLooseInterfaceDecoding(true)
		if err := dec.Decode(&v); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
		}
		return normalize(v), nil
	}

	if err := json.Unmarshal(body, &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	return v, nil
}

// Encode marshals v as msgpack when contentType asks for it and as JSON
// otherwise.
func Encode(v any, contentType string) ([]byte, error) {
	if IsMsgpack(contentType) {
		return msgpack.Marshal(v)
	}
	return json.Marshal(v)
}

// normalize rewrites maps with interface keys into map[string]any so that
// msgpack and JSON documents look the same to callers.
func normalize(v any) any {
	switch x := v.(type) {
	case map[any]any:
		m := make(map[string]any, len(x))
		for k, val := range x {
			m[fmt.Sprint(k)] = normalize(val)
		}
		return m
	case map[string]any:
		for k, val := range x {
			x[k] = normalize(val)
		}
		return x
	case []any:
		for i, val := range x {
			x[i] = normalize(val)
		}
		return x
	}
	return v
}

// ParseJSONP splits a script of the form name(payload) or name(payload);
// into the callback name and the raw payload. A leading /**/ guard is
// accepted.
func ParseJSONP(script []byte) (string, []byte, error) {
	s := strings.TrimSpace(string(script))
	s = strings.TrimSpace(strings.TrimPrefix(s, "/**/"))
	s = strings.TrimSpace(strings.TrimSuffix(s, ";"))

	open := strings.IndexByte(s, '(')
	if open <= 0 || !strings.HasSuffix(s, ")") {
		return "", nil, ErrInvalidJSONP
	}

	name := strings.TrimSpace(s[:open])
	if !validCallbackName(name) {
		return "", nil, fmt.Errorf("%w: bad callback name %q", ErrInvalidJSONP, name)
	}
	payload := strings.TrimSpace(s[open+1 : len(s)-1])
	if payload == "" {
		return "", nil, fmt.Errorf("%w: empty payload", ErrInvalidJSONP)
	}
	return name, []byte(payload), nil
}

// WriteJSONP renders v as a JSONP script calling name.
func WriteJSONP(name string, v any) ([]byte, error) {
	if !validCallbackName(name) {
		return nil, fmt.Errorf("%w: bad callback name %q", ErrInvalidJSONP, name)
	}
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString("/**/")
	buf.WriteString(name)
	buf.WriteByte('(')
	buf.Write(payload)
	buf.WriteString(");")
	return buf.Bytes(), nil
}

// validCallbackName accepts identifiers and dotted identifier paths.
func validCallbackName(name string) bool {
	if name == "" {
		return false
	}
	for _, part := range strings.Split(name, ".") {
		if part == "" {
			return false
		}
		first, _ := utf8.DecodeRuneInString(part)
		if unicode.IsDigit(first) {
			return false
		}
		for _, r := range part {
			if r != '_' && r != '$' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
				return false
			}
		}
	}
	return true
}
