// Package mockfeed serves a stand-in search API for local runs and tests.
//
// GET /search?q=<query>&offset=<n>&limit=<n> answers with
//
//	{"_total": 13, "streams": [...]}
//
// as JSON, as msgpack when the request accepts application/msgpack, or as a
// JSONP script when a callback parameter is present.
package mockfeed

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pthm/hxfeed/lib/encoding"
)

const (
	defaultLimit = 25
	maxLimit     = 100
)

// Options configures a Server.
type Options struct {
	// Total is the number of streams every query matches. Zero means 13.
	Total int
	// CallbackParam names the JSONP callback query parameter. Empty means "callback".
	CallbackParam string
	// Latency delays every search response.
	Latency func(query string) time.Duration
	Logger  *log.Logger
}

// Server is the mock search API.
type Server struct {
	opts   Options
	router *mux.Router
}

// New creates a Server with its routes registered.
func New(opts Options) *Server {
	if opts.Total == 0 {
		opts.Total = 13
	}
	if opts.CallbackParam == "" {
		opts.CallbackParam = "callback"
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	s := &Server{opts: opts, router: mux.NewRouter()}
	s.router.HandleFunc("/search", s.handleSearch).Methods(http.MethodGet)
	s.router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprint(w, "OK")
	}).Methods(http.MethodGet)
	s.router.Handle("/metrics", promhttp.Handler())
	return s
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// SearchResponse is the body of a search answer.
type SearchResponse struct {
	Total   int      `json:"_total" msgpack:"_total"`
	Streams []Stream `json:"streams" msgpack:"streams"`
}

type Stream struct {
	ID      int     `json:"_id" msgpack:"_id"`
	Game    string  `json:"game" msgpack:"game"`
	Viewers int     `json:"viewers" msgpack:"viewers"`
	Preview Preview `json:"preview" msgpack:"preview"`
	Channel Channel `json:"channel" msgpack:"channel"`
}

type Preview struct {
	Medium string `json:"medium" msgpack:"medium"`
}

type Channel struct {
	DisplayName string `json:"display_name" msgpack:"display_name"`
	Status      string `json:"status" msgpack:"status"`
	URL         string `json:"url" msgpack:"url"`
}

// Search returns the page of streams matching query.
func (s *Server) Search(query string, offset, limit int) SearchResponse {
	resp := SearchResponse{Total: s.opts.Total, Streams: []Stream{}}
	for i := offset; i < offset+limit && i < s.opts.Total; i++ {
		resp.Streams = append(resp.Streams, makeStream(query, i))
	}
	return resp
}

func makeStream(query string, i int) Stream {
	slug := strings.ToLower(strings.Join(strings.Fields(query), "_"))
	name := fmt.Sprintf("%s_streamer_%d", slug, i+1)
	return Stream{
		ID:      i + 1,
		Game:    query,
		Viewers: 5000 - i*137,
		Preview: Preview{Medium: "https://static.example.com/previews/" + url.PathEscape(name) + "-320x180.jpg"},
		Channel: Channel{
			DisplayName: name,
			Status:      fmt.Sprintf("Playing %s, stream #%d", query, i+1),
			URL:         "https://www.twitch.tv/" + url.PathEscape(name),
		},
	}
}

var errBadParam = errors.New("mockfeed: bad parameter")

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := q.Get("q")

	offset, err := intParam(q, "offset", 0)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	limit, err := intParam(q, "limit", defaultLimit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	if s.opts.Latency != nil {
		if d := s.opts.Latency(query); d > 0 {
			select {
			case <-time.After(d):
			case <-r.Context().Done():
				return
			}
		}
	}

	resp := s.Search(query, offset, limit)
	s.opts.Logger.Debug("search", "q", query, "offset", offset, "limit", limit, "streams", len(resp.Streams))

	if callback := q.Get(s.opts.CallbackParam); callback != "" {
		script, err := encoding.WriteJSONP(callback, resp)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", encoding.ContentTypeJavaScript)
		s.write(w, script)
		return
	}

	contentType := encoding.ContentTypeJSON
	if encoding.IsMsgpack(r.Header.Get("Accept")) {
		contentType = encoding.ContentTypeMsgpack
	}
	body, err := encoding.Encode(resp, contentType)
	if err != nil {
		s.opts.Logger.Error("failed to encode response", "err", err)
		http.Error(w, "encode failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentType)
	s.write(w, body)
}

func (s *Server) write(w http.ResponseWriter, body []byte) {
	if _, err := w.Write(body); err != nil {
		s.opts.Logger.Warn("failed to write response", "err", err)
	}
}

func intParam(q url.Values, name string, fallback int) (int, error) {
	raw := q.Get(name)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %s=%q", errBadParam, name, raw)
	}
	return n, nil
}
