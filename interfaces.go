package hxfeed

import (
	"context"

	"github.com/PuerkitoBio/goquery"

	"github.com/pthm/hxfeed/lib/fetch"
)

// Fetcher performs the GET request behind a plain (non-JSONP) load.
//
// A non-nil error means no response is handled: the loader logs it and
// keeps its state. *fetch.Client is the default implementation.
type Fetcher interface {
	Get(ctx context.Context, url string) (*fetch.Response, error)
}

// ScriptLoader fetches the script a JSONP load points at. The returned
// source is handed to Registry.Dispatch, which routes it to the loader
// named by its callback.
//
// *fetch.Client is the default implementation.
type ScriptLoader interface {
	LoadScript(ctx context.Context, src string) ([]byte, error)
}

// Transform adjusts the element rendered from the template of the same name
// before it is inserted. It receives the loader explicitly and returns the
// element to insert, usually el itself.
//
// The default pager transform binds click listeners:
//
//	func(l *hxfeed.Loader, el *goquery.Selection) *goquery.Selection {
//	    l.Listeners().On(el.Find(".tf-pager-next"), "click", func(*goquery.Selection) {
//	        l.Advance(1)
//	    })
//	    return el
//	}
//
// Transforms run while the loader renders and must not call Query, GoToPage,
// Advance or Load synchronously.
type Transform func(l *Loader, el *goquery.Selection) *goquery.Selection
