package expr

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type channel struct {
	DisplayName string `json:"display_name"`
	URL         string `json:"url"`
	Followers   int
}

type stream struct {
	Game    string
	Viewers int `json:"viewers"`
	Channel *channel
	Tags    []string
}

type channelMeta struct {
	Title string
}

type embeddedStream struct {
	*channelMeta
	Game string
}

type counter struct{ n int }

func (c counter) Property(name string) (any, bool) {
	if name == "count" {
		return c.n, true
	}
	return nil, false
}

func TestEval(t *testing.T) {
	data := map[string]any{
		"a":     1,
		"title": "Feed",
		"items": []any{"x", "y", "z"},
		"nested": map[string]any{
			"b": 2.5,
		},
		"zero": 0,
		"none": nil,
	}

	tests := []struct {
		name string
		src  string
		want any
	}{
		{"addition", "a + 1", 2.0},
		{"concat", "title + ' ' + a", "Feed 1"},
		{"this member", "this.title", "Feed"},
		{"nested", "nested.b * 2", 5.0},
		{"index", "items[1]", "y"},
		{"length", "items.length", 3},
		{"string length", "title.length", 4},
		{"ternary", "a > 0 ? 'pos' : 'neg'", "pos"},
		{"logical or returns operand", "zero || 'fallback'", "fallback"},
		{"logical and returns operand", "a && title", "Feed"},
		{"not", "!zero", true},
		{"loose equality", "a == '1'", true},
		{"strict equality", "a === '1'", false},
		{"null equals undefined", "none == undefined", true},
		{"missing property", "nested.c", Undefined},
		{"parentheses", "(a + 1) * 3", 6.0},
		{"unary minus", "-a + 4", 3.0},
		{"modulo", "7 % 3", 1.0},
		{"string compare", "'a' < 'b'", true},
		{"double quotes", `"x" + 'y'`, "xy"},
		{"trailing semicolon", "a;", 1},
		{"empty", "", Undefined},
		{"computed key", "nested['b']", 2.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Eval(tt.src, Scope{This: data})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEval_Structs(t *testing.T) {
	s := &stream{
		Game:    "StarCraft II",
		Viewers: 1200,
		Channel: &channel{DisplayName: "Day9", URL: "https://example.com/day9", Followers: 10},
		Tags:    []string{"rts", "esports"},
	}

	tests := []struct {
		src  string
		want string
	}{
		{"Game", "StarCraft II"},
		{"game", "StarCraft II"},
		{"viewers + ' viewers'", "1200 viewers"},
		{"channel.display_name", "Day9"},
		{"this.Channel.url", "https://example.com/day9"},
		{"channel.followers", "10"},
		{"tags", "rts,esports"},
		{"tags[0]", "rts"},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got, err := Eval(tt.src, Scope{This: s})
			require.NoError(t, err)
			assert.Equal(t, tt.want, ToString(got))
		})
	}
}

func TestEval_NilEmbeddedPointer(t *testing.T) {
	s := embeddedStream{Game: "Go"}

	_, err := Eval("this.title", Scope{This: s})
	var typeErr *TypeError
	require.ErrorAs(t, err, &typeErr)

	_, err = Eval("Title", Scope{This: s})
	var refErr *ReferenceError
	require.ErrorAs(t, err, &refErr)

	got, err := Eval("game", Scope{This: s})
	require.NoError(t, err)
	assert.Equal(t, "Go", got)

	got, err = Eval("title", Scope{This: embeddedStream{channelMeta: &channelMeta{Title: "live"}}})
	require.NoError(t, err)
	assert.Equal(t, "live", got)
}

func TestEval_Getter(t *testing.T) {
	got, err := Eval("count * 2", Scope{This: counter{n: 21}})
	require.NoError(t, err)
	assert.Equal(t, 42.0, got)

	got, err = Eval("this.missing", Scope{This: counter{}})
	require.NoError(t, err)
	assert.Equal(t, Undefined, got)
}

func TestEval_ScopeOrder(t *testing.T) {
	scope := Scope{
		This:    map[string]any{"x": "this"},
		Locals:  map[string]any{"x": "locals", "y": "locals"},
		Globals: map[string]any{"x": "globals", "y": "globals", "z": "globals"},
	}

	for src, want := range map[string]string{
		"x":        "this",
		"y":        "locals",
		"z":        "globals",
		"locals.x": "locals",
	} {
		got, err := Eval(src, scope)
		require.NoError(t, err, src)
		assert.Equal(t, want, got, src)
	}
}

func TestEval_Errors(t *testing.T) {
	data := map[string]any{"none": nil}

	_, err := Eval("missing + 1", Scope{This: data})
	var refErr *ReferenceError
	require.ErrorAs(t, err, &refErr)
	assert.Equal(t, "missing", refErr.Name)

	_, err = Eval("none.field", Scope{This: data})
	var typeErr *TypeError
	require.ErrorAs(t, err, &typeErr)

	_, err = Eval("this.a.b", Scope{})
	require.ErrorAs(t, err, &typeErr)

	for _, src := range []string{"a +", "(a", "a b", "'open", "a ? b", "1abc", "a = 1", "f(x)"} {
		_, err := Parse(src)
		var synErr *SyntaxError
		assert.ErrorAs(t, err, &synErr, src)
	}
}

func TestToString(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{Undefined, "undefined"},
		{nil, "null"},
		{true, "true"},
		{2.0, "2"},
		{2.5, "2.5"},
		{int64(7), "7"},
		{uint8(3), "3"},
		{math.Inf(1), "Infinity"},
		{math.NaN(), "NaN"},
		{[]any{1, nil, "a"}, "1,,a"},
		{map[string]any{"a": 1}, "[object Object]"},
		{(*stream)(nil), "null"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ToString(tt.in))
	}
}

func TestTruthy(t *testing.T) {
	assert.False(t, Truthy(nil))
	assert.False(t, Truthy(Undefined))
	assert.False(t, Truthy(0))
	assert.False(t, Truthy(""))
	assert.False(t, Truthy(math.NaN()))
	assert.True(t, Truthy("0"))
	assert.True(t, Truthy([]any{}))
	assert.True(t, Truthy(map[string]any{}))
}

func TestParse_Reuse(t *testing.T) {
	p, err := Parse("n * 2")
	require.NoError(t, err)
	assert.Equal(t, "n * 2", p.Source())

	for i := 0; i < 3; i++ {
		got, err := p.Eval(Scope{This: map[string]any{"n": i}})
		require.NoError(t, err)
		assert.Equal(t, float64(i*2), got)
	}
}
