package hxfeed

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/log"

	"github.com/pthm/hxfeed/lib/attreval"
	"github.com/pthm/hxfeed/lib/dom"
	"github.com/pthm/hxfeed/lib/fetch"
	"github.com/pthm/hxfeed/lib/interpolate"
	"github.com/pthm/hxfeed/lib/metrics"
)

// Loader fetches pages of search results from a remote API and renders them
// into a widget.
//
// The URL template names three placeholders, filled in on every load:
//
//	https://api.example.com/search?q={{query}}&offset={{offset}}&limit={{limit}}
//
// A loader does nothing until asked. InitInto builds the widget and attaches
// it to a container (issuing the default query, if any); Query starts a new
// search at page 1; GoToPage and Advance move between pages of the current
// search.
//
//	feed := hxfeed.New(searchURL,
//	    hxfeed.WithExtractEntries(hxfeed.ExtractField("streams")),
//	    hxfeed.WithExtractNumResults(hxfeed.ExtractCount("_total")),
//	    hxfeed.WithDefaultQuery("starcraft"),
//	)
//	feed.InitInto(doc.Find("#feed-wrapper"))
//	feed.Wait()
//
// Loads run in the background. Starting a new load cancels the one in
// flight, and a response belonging to a superseded load is dropped, so the
// widget always ends up showing the latest request.
//
// The loader's methods are safe for concurrent use. The tree returned by
// Element is not: it changes whenever a response is handled, so read it
// after Wait. Templates and transforms run while the widget is being
// rendered and must not start loads themselves.
type Loader struct {
	feedURL    string
	key        string
	opts       options
	templates  map[string]Template
	transforms map[string]Transform
	content    map[string]any
	registry   *Registry
	fetcher    Fetcher
	scripts    ScriptLoader
	eval       *attreval.Evaluator
	listeners  *dom.Listeners
	logger     *log.Logger
	events     EventTarget

	// renderMu guards el and every mutation of the widget tree.
	renderMu sync.Mutex
	el       *goquery.Selection

	mu               sync.RWMutex
	resultsCount     int
	numPages         int
	currentPageIndex int
	currentQuery     string
	isInit           bool
	generation       uint64
	cancel           context.CancelFunc

	inflight sync.WaitGroup
}

// New creates a loader for the URL template feedURL and registers it.
// No request is made.
func New(feedURL string, opts ...Option) *Loader {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.Default()
	}
	if o.registry == nil {
		o.registry = Default()
	}
	if o.fetcher == nil || o.scripts == nil {
		client := fetch.New(fetch.Options{Logger: o.logger})
		if o.fetcher == nil {
			o.fetcher = client
		}
		if o.scripts == nil {
			o.scripts = client
		}
	}
	if o.evaluator == nil {
		o.evaluator = attreval.New(
			attreval.WithInterpolate(o.pattern),
			attreval.WithLogger(o.logger),
		)
	}

	l := &Loader{
		feedURL:    feedURL,
		opts:       o,
		templates:  mergeTemplates(o.templates),
		transforms: mergeTransforms(o.transforms),
		content:    cloneContent(o.content),
		registry:   o.registry,
		fetcher:    o.fetcher,
		scripts:    o.scripts,
		eval:       o.evaluator,
		listeners:  dom.NewListeners(),
	}

	l.eval.AddContext(ContextFeed, attreval.ContextOptions{}).
		AddContext(ContextFeedContent, attreval.ContextOptions{Data: l.content}).
		AddContext(ContextStreamEntry, attreval.ContextOptions{})

	l.key = l.registry.add(feedURL, l)
	l.logger = o.logger.With("key", l.key)

	if o.jsonpCallback != "" {
		l.registry.RegisterCallback(CallbackName(l.key), l.receiveCallback)
	}
	return l
}

// Key returns the loader's registry key.
func (l *Loader) Key() string { return l.key }

// URL returns the URL template.
func (l *Loader) URL() string { return l.feedURL }

// Listeners returns the element listener table the pager controls are bound
// in. Trigger "click" on a control to simulate a user click.
func (l *Loader) Listeners() *dom.Listeners { return l.listeners }

// Element returns the widget root, or nil before InitInto. The root is the
// live tree that loads render into; call Wait before reading it, or use Find.
func (l *Loader) Element() *goquery.Selection {
	l.renderMu.Lock()
	defer l.renderMu.Unlock()
	return l.el
}

// Find returns the widget elements matching selector, searched while no
// response is being rendered. It is empty before InitInto.
func (l *Loader) Find(selector string) *goquery.Selection {
	l.renderMu.Lock()
	defer l.renderMu.Unlock()
	if l.el == nil {
		return &goquery.Selection{}
	}
	return l.el.Find(selector)
}

func (l *Loader) ResultsCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.resultsCount
}

func (l *Loader) NumPages() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.numPages
}

// CurrentPageIndex returns the 1-based page shown, or 0 before any query.
func (l *Loader) CurrentPageIndex() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.currentPageIndex
}

// CurrentQuery returns the active query, "" when none was issued.
func (l *Loader) CurrentQuery() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.currentQuery
}

func (l *Loader) IsInit() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.isInit
}

// Property exposes loader state to markup bound through the feed context:
// resultsCount, numPages, currentPageIndex, currentQuery, entriesPerPage,
// key, url, hasPrev and hasNext.
func (l *Loader) Property(name string) (any, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	switch name {
	case "resultsCount":
		return l.resultsCount, true
	case "numPages":
		return l.numPages, true
	case "currentPageIndex":
		return l.currentPageIndex, true
	case "currentQuery":
		if l.currentQuery == "" {
			return nil, true
		}
		return l.currentQuery, true
	case "entriesPerPage":
		return l.opts.entriesPerPage, true
	case "key":
		return l.key, true
	case "url":
		return l.feedURL, true
	case "hasPrev":
		return l.currentPageIndex > 1, true
	case "hasNext":
		return l.currentPageIndex < l.numPages, true
	}
	return nil, false
}

// AddEventListener registers fn for the query or loadentries event.
func (l *Loader) AddEventListener(typ string, fn Listener) ListenerID {
	return l.events.AddEventListener(typ, fn)
}

// RemoveEventListener unregisters a listener added with AddEventListener.
func (l *Loader) RemoveEventListener(typ string, id ListenerID) bool {
	return l.events.RemoveEventListener(typ, id)
}

// Wait blocks until every load started so far has finished.
func (l *Loader) Wait() {
	l.inflight.Wait()
}

// InitInto appends the widget root to container and returns container.
//
// The root is built once, from the feed template with the results and pager
// templates inside its controls slot. Later calls move the same root. The
// first call also issues the default query.
func (l *Loader) InitInto(container *goquery.Selection) *goquery.Selection {
	l.renderMu.Lock()
	if l.el == nil {
		el, err := l.buildEl()
		if err != nil {
			l.renderMu.Unlock()
			l.logger.Error("failed to build feed", "err", err)
			return container
		}
		l.el = el
	}
	container.AppendSelection(l.el)
	l.renderMu.Unlock()

	l.mu.Lock()
	first := !l.isInit
	l.isInit = true
	l.mu.Unlock()

	if first && l.opts.defaultQuery != "" {
		l.Query(l.opts.defaultQuery)
	}
	return container
}

// Query starts a search for q at page 1 and emits a query event. An empty
// q, or the query already active, does nothing.
//
// q is query-escaped before it fills {{query}}, so "a b&c" is sent as
// a+b%26c. WithRawQuery substitutes it unchanged. CurrentQuery and the
// event carry q as given.
func (l *Loader) Query(q string) {
	l.mu.Lock()
	if q == "" || q == l.currentQuery {
		l.mu.Unlock()
		return
	}
	l.currentQuery = q
	l.currentPageIndex = 1
	u := l.pageURL(q, 0)
	l.mu.Unlock()

	l.Load(u)
	l.events.DispatchEvent(Event{Type: EventQuery, Detail: q, Target: l})
}

// GoToPage moves to page p of the current search, clamped to the pages
// known from the last response (and never below 1). Moving to the page
// already shown does nothing.
func (l *Loader) GoToPage(p int) {
	l.goTo(func(int) int { return p })
}

// Advance moves delta pages forward (or back when negative).
func (l *Loader) Advance(delta int) {
	l.goTo(func(current int) int { return current + delta })
}

func (l *Loader) goTo(target func(current int) int) {
	l.mu.Lock()
	p := max(1, min(target(l.currentPageIndex), l.numPages))
	if p == l.currentPageIndex {
		l.mu.Unlock()
		return
	}
	l.currentPageIndex = p
	u := l.pageURL(l.currentQuery, (p-1)*l.opts.entriesPerPage)
	l.mu.Unlock()

	l.Load(u)
}

// pageURL fills the URL template. Callers hold mu.
func (l *Loader) pageURL(query string, offset int) string {
	if !l.opts.rawQuery {
		query = url.QueryEscape(query)
	}
	return interpolate.Supplant(l.feedURL, map[string]any{
		"query":  query,
		"offset": offset,
		"limit":  l.opts.entriesPerPage,
	}, l.opts.pattern)
}

// Load requests fullURL in the background, superseding any load in flight.
// The widget root is marked with ClassLoading until a response is handled.
//
// With JSONP enabled the callback parameter is appended and the script is
// routed through the registry; otherwise the body is decoded and handled
// directly. Failures are logged and leave the loader unchanged.
func (l *Loader) Load(fullURL string) {
	l.mu.Lock()
	if l.cancel != nil {
		l.cancel()
	}
	l.generation++
	gen := l.generation
	ctx, cancel := context.WithCancel(context.Background())
	l.cancel = cancel
	l.mu.Unlock()

	l.renderMu.Lock()
	if l.el != nil {
		l.el.AddClass(ClassLoading)
	}
	l.renderMu.Unlock()

	ctx = withGeneration(ctx, l.key, gen)
	l.inflight.Add(1)
	if l.opts.jsonpCallback != "" {
		src := fullURL + "&" + l.opts.jsonpCallback + "=" + CallbackName(l.key)
		go l.loadScript(ctx, cancel, src)
		return
	}
	go l.fetch(ctx, cancel, fullURL)
}

func (l *Loader) fetch(ctx context.Context, cancel context.CancelFunc, u string) {
	defer l.inflight.Done()
	defer cancel()

	l.logger.Debug("fetching", "url", u)
	resp, err := l.fetcher.Get(ctx, u)
	if err != nil {
		l.logFailure(u, err)
		return
	}

	data, err := DecodeBody(resp.Body, resp.ContentType)
	if err != nil {
		l.logger.Error("request failed", "url", u, "err", err)
		return
	}
	l.receive(generationFrom(ctx, l.key), data)
}

func (l *Loader) loadScript(ctx context.Context, cancel context.CancelFunc, src string) {
	defer l.inflight.Done()
	defer cancel()

	l.logger.Debug("loading script", "src", src)
	script, err := l.scripts.LoadScript(ctx, src)
	if err != nil {
		l.logFailure(src, err)
		return
	}
	if err := l.registry.Dispatch(ctx, script); err != nil {
		l.logger.Error("request failed", "url", src, "err", err)
	}
}

func (l *Loader) logFailure(u string, err error) {
	if errors.Is(err, context.Canceled) {
		l.logger.Debug("request superseded", "url", u)
		return
	}
	l.logger.Error("request failed", "url", u, "err", err)
}

// ReceiveJSON handles a decoded response as if a load had just completed:
// counts are recomputed, the widget is re-bound and the entries re-rendered
// (when attached), then a loadentries event is emitted. It is never treated
// as stale.
func (l *Loader) ReceiveJSON(data any) {
	l.receive(0, data)
}

func (l *Loader) receiveCallback(ctx context.Context, data any) {
	l.receive(generationFrom(ctx, l.key), data)
}

// receive applies data unless gen is non-zero and no longer current.
func (l *Loader) receive(gen uint64, data any) {
	l.renderMu.Lock()

	l.mu.RLock()
	stale := gen != 0 && gen != l.generation
	l.mu.RUnlock()
	if stale {
		l.renderMu.Unlock()
		metrics.StaleResponsesDropped.Inc()
		l.logger.Debug("dropping stale response", "generation", gen)
		return
	}

	if l.el != nil {
		count := min(max(0, l.opts.extractNumResults(data)), MaxResultsCount)

		l.mu.Lock()
		l.resultsCount = count
		l.numPages = (count + l.opts.entriesPerPage - 1) / l.opts.entriesPerPage
		l.mu.Unlock()

		l.el.RemoveClass(ClassLoading)
		l.eval.Run(ContextFeed, attreval.RunOptions{Base: l.el, Data: l})
		l.eval.Run(ContextFeedContent, attreval.RunOptions{Base: l.el, Data: l.content})
		l.parseEntries(l.opts.extractEntries(data))
	}
	l.renderMu.Unlock()

	l.events.DispatchEvent(Event{Type: EventLoadEntries, Detail: data, Target: l})
}

// ParseEntries renders entries into the entries slot, replacing what was
// there. entries must be a list; anything else is logged and ignored.
func (l *Loader) ParseEntries(entries any) {
	l.renderMu.Lock()
	defer l.renderMu.Unlock()
	l.parseEntries(entries)
}

// parseEntries requires renderMu.
func (l *Loader) parseEntries(entries any) {
	list, err := sequence(entries)
	if err != nil {
		l.logger.Error("cannot parse entries", "err", err)
		return
	}
	if l.el == nil {
		return
	}
	entriesEl := l.el.Find("." + ClassEntries).First()
	if entriesEl.Length() == 0 {
		return
	}

	entriesEl.Empty()
	for i, entry := range list {
		entryEl, err := l.parseTemplate(TemplateEntry, entry)
		if err != nil {
			l.logger.Error("failed to render entry", "index", i, "err", err)
			continue
		}
		entriesEl.AppendSelection(entryEl)
		l.eval.Run(ContextStreamEntry, attreval.RunOptions{Base: entryEl, Data: entry})
		metrics.EntriesRendered.Inc()
	}
	l.eval.Run(ContextFeedContent, attreval.RunOptions{Base: entriesEl, Data: l.content})
}

// buildEl renders the widget root. Requires renderMu.
func (l *Loader) buildEl() (*goquery.Selection, error) {
	el, err := l.parseTemplate(TemplateFeed, l)
	if err != nil {
		return nil, err
	}
	results, err := l.parseTemplate(TemplateResults, l)
	if err != nil {
		return nil, err
	}
	pager, err := l.parseTemplate(TemplatePager, l)
	if err != nil {
		return nil, err
	}

	controls := el.Find("." + ClassControls).First()
	if controls.Length() == 0 {
		l.logger.Warn("feed template has no controls slot", "class", ClassControls)
		return el, nil
	}
	controls.AppendSelection(results)
	controls.AppendSelection(pager)
	return el, nil
}

// parseTemplate renders the named template and applies its transform.
func (l *Loader) parseTemplate(name string, data any) (*goquery.Selection, error) {
	tpl, ok := l.templates[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTemplate, name)
	}
	el, err := dom.RenderComponent(context.Background(), tpl(data))
	if err != nil {
		return nil, fmt.Errorf("hxfeed: render %s template: %w", name, err)
	}
	if tr := l.transforms[name]; tr != nil {
		el = tr(l, el)
	}
	return el, nil
}

type generationKey struct{}

type generationTag struct {
	key string
	gen uint64
}

func withGeneration(ctx context.Context, key string, gen uint64) context.Context {
	return context.WithValue(ctx, generationKey{}, generationTag{key: key, gen: gen})
}

// generationFrom returns the load generation ctx carries for the loader
// key, 0 when it carries none or one issued by another loader.
func generationFrom(ctx context.Context, key string) uint64 {
	if ctx == nil {
		return 0
	}
	tag, ok := ctx.Value(generationKey{}).(generationTag)
	if !ok || tag.key != key {
		return 0
	}
	return tag.gen
}
