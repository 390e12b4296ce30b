package interpolate

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSupplant(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		values map[string]any
		want   string
	}{
		{"strings and numbers", "/s?q={{query}}&o={{offset}}&l={{limit}}", map[string]any{"query": "abc", "offset": 0, "limit": 5}, "/s?q=abc&o=0&l=5"},
		{"missing key kept", "{{a}}-{{b}}", map[string]any{"a": "x"}, "x-{{b}}"},
		{"non scalar kept", "{{a}}", map[string]any{"a": []string{"x"}}, "{{a}}"},
		{"nil value kept", "{{a}}", map[string]any{"a": nil}, "{{a}}"},
		{"bool kept", "{{a}}", map[string]any{"a": true}, "{{a}}"},
		{"float", "{{a}}", map[string]any{"a": 1.5}, "1.5"},
		{"nil values", "{{a}}", nil, "{{a}}"},
		{"no placeholders", "plain", map[string]any{"a": 1}, "plain"},
		{"key not trimmed", "{{ a }}", map[string]any{"a": 1}, "{{ a }}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Supplant(tt.in, tt.values, nil))
		})
	}
}

func TestSupplant_CustomPattern(t *testing.T) {
	pattern := regexp.MustCompile(`\{([^{}]*)\}`)
	got := Supplant("/s/{query}/{page}", map[string]any{"query": "go", "page": 2}, pattern)
	assert.Equal(t, "/s/go/2", got)
}
