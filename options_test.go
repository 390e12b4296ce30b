package hxfeed

import (
	"math"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm/hxfeed/lib/expr"
)

func TestExtractField(t *testing.T) {
	extract := ExtractField("streams")

	streams := []any{"a"}
	assert.Equal(t, streams, extract(map[string]any{"streams": streams}))
	assert.True(t, expr.IsUndefined(extract(map[string]any{})))
	assert.True(t, expr.IsUndefined(extract(nil)))
}

func TestExtractCount(t *testing.T) {
	extract := ExtractCount("_total")

	tests := []struct {
		name string
		data any
		want int
	}{
		{"float", map[string]any{"_total": float64(13)}, 13},
		{"int", map[string]any{"_total": 7}, 7},
		{"numeric string", map[string]any{"_total": "4"}, 4},
		{"missing", map[string]any{}, 0},
		{"negative", map[string]any{"_total": -2}, 0},
		{"nil response", nil, 0},
		{"huge", map[string]any{"_total": 1e300}, MaxResultsCount},
		{"infinite", map[string]any{"_total": math.Inf(1)}, MaxResultsCount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extract(tt.data))
		})
	}
}

func TestSequence(t *testing.T) {
	list, err := sequence([]any{1, 2})
	require.NoError(t, err)
	assert.Len(t, list, 2)

	list, err = sequence([]string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Equal(t, []any{"a", "b", "c"}, list)

	_, err = sequence(map[string]any{})
	assert.True(t, IsNotSequence(err))
	assert.Contains(t, err.Error(), "map[string]interface {}")

	_, err = sequence(nil)
	assert.True(t, IsNotSequence(err))
	assert.Contains(t, err.Error(), "null")
}

func TestSequenceLength(t *testing.T) {
	assert.Equal(t, 3, sequenceLength([]any{1, 2, 3}))
	assert.Equal(t, 0, sequenceLength(map[string]any{"length": 3}))
}

func TestOptions(t *testing.T) {
	pattern := regexp.MustCompile(`<%(\w+)%>`)
	o := defaultOptions()
	for _, opt := range []Option{
		WithEntriesPerPage(0),
		WithEntriesPerPage(-1),
		WithInterpolate(nil),
		WithExtractEntries(nil),
		WithExtractNumResults(nil),
	} {
		opt(&o)
	}
	assert.Equal(t, DefaultEntriesPerPage, o.entriesPerPage)
	assert.NotNil(t, o.pattern)
	assert.NotNil(t, o.extractEntries)
	assert.NotNil(t, o.extractNumResults)

	WithInterpolate(pattern)(&o)
	WithEntriesPerPage(10)(&o)
	assert.Same(t, pattern, o.pattern)
	assert.Equal(t, 10, o.entriesPerPage)
}

func TestWithInterpolate_URL(t *testing.T) {
	f := searchFetcher(13)
	logger, _ := newTestLogger()
	l := New("http://api.test/search?q=<%query%>&offset=<%offset%>&limit=<%limit%>",
		WithRegistry(NewRegistry()),
		WithFetcher(f),
		WithLogger(logger),
		WithInterpolate(regexp.MustCompile(`<%(\w+)%>`)),
		WithEntriesPerPage(10),
	)

	l.Query("abc")
	l.Wait()

	assert.Equal(t, []string{"http://api.test/search?q=abc&offset=0&limit=10"}, f.URLs())
}
