// Package interpolate replaces {{token}} placeholders in strings.
package interpolate

import (
	"regexp"
	"strconv"
)

// DefaultPattern matches {{token}} placeholders. The first submatch is the
// lookup key.
var DefaultPattern = regexp.MustCompile(`{{([\s\S]+?)}}`)

// Supplant replaces every placeholder matched by pattern with the value stored
// under its key in values. Only strings and numbers are substituted; missing
// keys and values of any other type leave the placeholder untouched.
//
// A nil pattern uses DefaultPattern. The pattern must have at least one
// capture group.
func Supplant(s string, values map[string]any, pattern *regexp.Regexp) string {
	if pattern == nil {
		pattern = DefaultPattern
	}
	if values == nil {
		return s
	}
	return pattern.ReplaceAllStringFunc(s, func(match string) string {
		sub := pattern.FindStringSubmatch(match)
		if len(sub) < 2 {
			return match
		}
		if v, ok := Format(values[sub[1]]); ok {
			return v
		}
		return match
	})
}

// Format renders v the way Supplant substitutes it. The second result is
// false when v is not a string or a number.
func Format(v any) (string, bool) {
	switch n := v.(type) {
	case string:
		return n, true
	case int:
		return strconv.Itoa(n), true
	case int8:
		return strconv.FormatInt(int64(n), 10), true
	case int16:
		return strconv.FormatInt(int64(n), 10), true
	case int32:
		return strconv.FormatInt(int64(n), 10), true
	case int64:
		return strconv.FormatInt(n, 10), true
	case uint:
		return strconv.FormatUint(uint64(n), 10), true
	case uint8:
		return strconv.FormatUint(uint64(n), 10), true
	case uint16:
		return strconv.FormatUint(uint64(n), 10), true
	case uint32:
		return strconv.FormatUint(uint64(n), 10), true
	case uint64:
		return strconv.FormatUint(n, 10), true
	case float32:
		return strconv.FormatFloat(float64(n), 'f', -1, 32), true
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64), true
	}
	return "", false
}
