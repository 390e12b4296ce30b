package mockfeed

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm/hxfeed/lib/encoding"
)

func get(t *testing.T, h http.Handler, target string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestSearch_Paging(t *testing.T) {
	s := New(Options{Total: 13})

	tests := []struct {
		name   string
		offset int
		limit  int
		want   int
		first  int
	}{
		{"first page", 0, 5, 5, 1},
		{"middle page", 5, 5, 5, 6},
		{"last page", 10, 5, 3, 11},
		{"past the end", 20, 5, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := s.Search("abc", tt.offset, tt.limit)
			assert.Equal(t, 13, resp.Total)
			require.Len(t, resp.Streams, tt.want)
			if tt.want > 0 {
				assert.Equal(t, tt.first, resp.Streams[0].ID)
			}
		})
	}
}

func TestHandleSearch_JSON(t *testing.T) {
	s := New(Options{Total: 13})
	rec := get(t, s.Handler(), "/search?q=abc&offset=0&limit=5", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, encoding.ContentTypeJSON, rec.Header().Get("Content-Type"))

	v, err := encoding.Decode(rec.Body.Bytes(), rec.Header().Get("Content-Type"))
	require.NoError(t, err)
	m := v.(map[string]any)
	assert.Equal(t, float64(13), m["_total"])
	assert.Len(t, m["streams"], 5)
}

func TestHandleSearch_Msgpack(t *testing.T) {
	s := New(Options{Total: 3})
	rec := get(t, s.Handler(), "/search?q=abc", http.Header{"Accept": {encoding.ContentTypeMsgpack}})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, encoding.ContentTypeMsgpack, rec.Header().Get("Content-Type"))

	v, err := encoding.Decode(rec.Body.Bytes(), encoding.ContentTypeMsgpack)
	require.NoError(t, err)
	m := v.(map[string]any)
	streams := m["streams"].([]any)
	require.Len(t, streams, 3)
	channel := streams[0].(map[string]any)["channel"].(map[string]any)
	assert.Equal(t, "abc_streamer_1", channel["display_name"])
}

func TestHandleSearch_JSONP(t *testing.T) {
	s := New(Options{Total: 2})
	rec := get(t, s.Handler(), "/search?q=abc&callback=receiveJSONdeadbeef", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, encoding.ContentTypeJavaScript, rec.Header().Get("Content-Type"))

	name, payload, err := encoding.ParseJSONP(rec.Body.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "receiveJSONdeadbeef", name)
	assert.Contains(t, string(payload), `"_total":2`)
}

func TestHandleSearch_BadRequest(t *testing.T) {
	s := New(Options{})

	tests := []struct {
		name   string
		target string
	}{
		{"negative offset", "/search?q=a&offset=-1"},
		{"non-numeric limit", "/search?q=a&limit=ten"},
		{"bad callback", "/search?q=a&callback=alert(1)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, s.Handler(), tt.target, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestHealth(t *testing.T) {
	s := New(Options{})
	server := httptest.NewServer(s.Handler())
	defer server.Close()

	resp, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "OK", string(body))
}
