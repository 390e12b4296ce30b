// Package hxfeed renders paginated search results from a remote API into an
// HTML widget with pager controls.
//
// A Loader owns one widget. It fills a URL template with the current query
// and page, fetches the page in the background, and renders the entries
// into an in-memory HTML tree (golang.org/x/net/html nodes handled through
// goquery selections). The host decides when to query and when to page, and
// reads or serializes the tree when it needs it.
//
// # Core Concepts
//
// A loader is built from a URL template and options, then attached:
//
//	feed := hxfeed.New(
//	    "https://api.example.com/search/streams?q={{query}}&offset={{offset}}&limit={{limit}}",
//	    hxfeed.WithExtractEntries(hxfeed.ExtractField("streams")),
//	    hxfeed.WithExtractNumResults(hxfeed.ExtractCount("_total")),
//	    hxfeed.WithDefaultQuery("starcraft"),
//	)
//	feed.InitInto(doc.Find("#feed-wrapper"))
//
// Query starts a search at page 1. GoToPage and Advance move between pages;
// the target page is clamped to the pages reported by the last response.
// Each call that changes the page starts a load, and every load supersedes
// the previous one: its request is canceled and a late response is dropped.
//
// # Templates and Bindings
//
// The widget is assembled from four templ components: feed (the root, with
// tf-controls and tf-entries slots), results, pager and entry. Templates
// emit markup only. Values are bound afterwards by an attribute evaluator
// (package lib/attreval) through three contexts:
//
//   - feed: the loader itself (resultsCount, numPages, currentPageIndex...)
//   - feedContent: the copy map set with WithContent
//   - streamEntry: one entry of the response
//
// An element opts in with data-context and names an expression per action:
//
//	<span data-context="feed" data-content="currentPageIndex + ' / ' + numPages"></span>
//	<img data-context="streamEntry" data-src="preview.medium">
//
// Any template can be replaced with WithTemplates, and each template has a
// transform (WithTransforms) that may adjust the rendered element before it
// is inserted. The default pager transform binds the next and previous
// controls to Advance.
//
// # Transports
//
// Plain loads GET the URL and decode the body as JSON (or msgpack when the
// server says so). With WithJSONPCallback the loader instead appends
// callback=receiveJSON<key> and fetches the script; the script is routed
// through the loader's Registry to the callback it names, exactly as a
// browser would run it. Both transports share one lib/fetch client with a
// circuit breaker.
//
// # Events
//
// Loaders emit two events to listeners registered with AddEventListener:
//
//   - query: after Query starts a new search; Detail is the query
//   - loadentries: after a response is handled; Detail is the decoded body
//
// Listeners run synchronously, in registration order, on the goroutine that
// produced the event.
//
// # Interaction
//
// The tree has no event loop. Pager controls are bound in the loader's
// Listeners table; hosts and tests trigger them explicitly:
//
//	hxfeed.Click(feed, ".tf-pager-next")
//	feed.Wait()
//
// # Testing
//
// RecordingFetcher and RecordingScripts stand in for the network, and
// package lib/mockfeed serves a search API over httptest:
//
//	f := hxfeed.NewRecordingFetcher(func(ctx context.Context, url string) (*fetch.Response, error) {
//	    return hxfeed.JSONResponse(page), nil
//	})
//	feed := hxfeed.New(searchURL, hxfeed.WithFetcher(f), hxfeed.WithRegistry(hxfeed.NewRegistry()))
package hxfeed
