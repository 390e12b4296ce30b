package hxfeed

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"sync"

	"github.com/PuerkitoBio/goquery"

	"github.com/pthm/hxfeed/lib/dom"
	"github.com/pthm/hxfeed/lib/encoding"
	"github.com/pthm/hxfeed/lib/fetch"
)

// FetchFunc answers one request made through a RecordingFetcher.
type FetchFunc func(ctx context.Context, url string) (*fetch.Response, error)

// RecordingFetcher is a Fetcher for tests. It records every requested URL
// and answers with Handler.
//
//	f := hxfeed.NewRecordingFetcher(func(ctx context.Context, url string) (*fetch.Response, error) {
//	    return hxfeed.JSONResponse(map[string]any{"_total": 13, "streams": streams}), nil
//	})
//	feed := hxfeed.New(searchURL, hxfeed.WithFetcher(f), hxfeed.WithRegistry(hxfeed.NewRegistry()))
//	feed.Query("abc")
//	feed.Wait()
//	f.URLs() // [".../search?q=abc&offset=0&limit=5"]
type RecordingFetcher struct {
	Handler FetchFunc

	mu   sync.Mutex
	urls []string
}

// NewRecordingFetcher creates a RecordingFetcher answering with handler.
func NewRecordingFetcher(handler FetchFunc) *RecordingFetcher {
	return &RecordingFetcher{Handler: handler}
}

// Get records url and calls Handler. Without a Handler it answers with an
// empty JSON list.
func (f *RecordingFetcher) Get(ctx context.Context, url string) (*fetch.Response, error) {
	f.mu.Lock()
	f.urls = append(f.urls, url)
	f.mu.Unlock()

	if f.Handler == nil {
		return JSONResponse([]any{}), nil
	}
	return f.Handler(ctx, url)
}

// URLs returns the requested URLs in request order.
func (f *RecordingFetcher) URLs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.urls)
}

// ScriptFunc answers one request made through RecordingScripts.
type ScriptFunc func(ctx context.Context, src string) ([]byte, error)

// RecordingScripts is a ScriptLoader for tests. It records every script
// source and answers with Handler.
type RecordingScripts struct {
	Handler ScriptFunc

	mu   sync.Mutex
	srcs []string
}

// NewRecordingScripts creates a RecordingScripts answering with handler.
func NewRecordingScripts(handler ScriptFunc) *RecordingScripts {
	return &RecordingScripts{Handler: handler}
}

// LoadScript records src and calls Handler. Without a Handler it fails the
// load with a 404 status error.
func (s *RecordingScripts) LoadScript(ctx context.Context, src string) ([]byte, error) {
	s.mu.Lock()
	s.srcs = append(s.srcs, src)
	s.mu.Unlock()

	if s.Handler == nil {
		return nil, &fetch.StatusError{URL: src, StatusCode: http.StatusNotFound, Status: "404 Not Found"}
	}
	return s.Handler(ctx, src)
}

// Srcs returns the requested script sources in request order.
func (s *RecordingScripts) Srcs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.srcs)
}

// JSONResponse builds a 200 JSON response carrying v.
func JSONResponse(v any) *fetch.Response {
	body, err := json.Marshal(v)
	if err != nil {
		panic("hxfeed: JSONResponse: " + err.Error())
	}
	return &fetch.Response{
		StatusCode:  http.StatusOK,
		ContentType: encoding.ContentTypeJSON,
		Body:        body,
	}
}

// JSONPScript builds the script a JSONP API would answer with.
func JSONPScript(callback string, v any) []byte {
	script, err := encoding.WriteJSONP(callback, v)
	if err != nil {
		panic("hxfeed: JSONPScript: " + err.Error())
	}
	return script
}

// TestPage returns a document with an empty #feed-wrapper container to
// attach loaders to.
func TestPage() (*goquery.Document, *goquery.Selection) {
	doc, err := dom.ParseDocument(`<html><head></head><body><div id="feed-wrapper"></div></body></html>`)
	if err != nil {
		panic("hxfeed: TestPage: " + err.Error())
	}
	return doc, doc.Find("#feed-wrapper")
}

// Click triggers the click listeners bound on the elements matching
// selector inside the loader's widget and returns how many ran. It may be
// called while a load is in flight.
func Click(l *Loader, selector string) int {
	return l.Listeners().Trigger(l.Find(selector), ClickEvent)
}
