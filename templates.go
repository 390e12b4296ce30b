package hxfeed

import (
	"context"
	"io"
	"maps"

	"github.com/a-h/templ"
)

// Class names carried by the default templates. Custom templates must keep
// ClassControls and ClassEntries for the loader to find its slots, and
// ClassPagerNext / ClassPagerPrev for the default pager transform.
const (
	ClassFeed      = "tf-feed"
	ClassEntries   = "tf-entries"
	ClassEntry     = "tf-feed-entry"
	ClassControls  = "tf-controls"
	ClassLoading   = "tf-loading"
	ClassPager     = "tf-pager"
	ClassPagerNext = "tf-pager-next"
	ClassPagerPrev = "tf-pager-prev"
)

// Template names.
const (
	TemplateFeed    = "feed"
	TemplateResults = "results"
	TemplatePager   = "pager"
	TemplateEntry   = "entry"
)

// Binding contexts the loader runs.
const (
	// ContextFeed binds against the loader (see Loader.Property).
	ContextFeed = "feed"
	// ContextFeedContent binds against the copy map (see WithContent).
	ContextFeedContent = "feedContent"
	// ContextStreamEntry binds against one entry of the response.
	ContextStreamEntry = "streamEntry"
)

// Template renders one piece of the widget. The feed, results and pager
// templates receive the *Loader; the entry template receives one entry.
//
// Templates produce markup only. Values are filled in afterwards by the
// attribute evaluator, so a template marks elements with data-context and
// an action attribute instead of printing data:
//
//	<span data-context="feed" data-content="resultsCount"></span>
type Template func(data any) templ.Component

// DefaultContent is the copy bound through the feedContent context.
func DefaultContent() map[string]any {
	return map[string]any{
		"resultsLabel": "results",
		"previous":     "Previous",
		"next":         "Next",
		"pageLabel":    "Page",
		"ofLabel":      "of",
		"viewersLabel": "viewers",
		"playingLabel": "playing",
	}
}

// DefaultTemplates returns the built-in templates keyed by name.
func DefaultTemplates() map[string]Template {
	return map[string]Template{
		TemplateFeed:    FeedTemplate,
		TemplateResults: ResultsTemplate,
		TemplatePager:   PagerTemplate,
		TemplateEntry:   EntryTemplate,
	}
}

func mergeTemplates(overrides map[string]Template) map[string]Template {
	merged := DefaultTemplates()
	for name, tpl := range overrides {
		if tpl != nil {
			merged[name] = tpl
		}
	}
	return merged
}

func staticComponent(markup string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, markup)
		return err
	})
}

// FeedTemplate is the widget root with slots for controls and entries.
func FeedTemplate(any) templ.Component {
	return staticComponent(`<div class="` + ClassFeed + `">` +
		`<div class="` + ClassControls + `"></div>` +
		`<ul class="` + ClassEntries + `"></ul>` +
		`</div>`)
}

// ResultsTemplate shows the result count.
func ResultsTemplate(any) templ.Component {
	return staticComponent(`<div class="tf-results">` +
		`<span class="tf-results-count" data-context="feed" data-content="resultsCount"></span> ` +
		`<span data-context="feedContent" data-content="resultsLabel"></span>` +
		`</div>`)
}

// PagerTemplate holds the previous/next controls and the page position.
func PagerTemplate(any) templ.Component {
	return staticComponent(`<div class="` + ClassPager + `">` +
		`<a class="` + ClassPagerPrev + `" href="#" data-context="feedContent" data-content="previous"></a>` +
		`<span class="tf-pager-status">` +
		`<span data-context="feedContent" data-content="pageLabel"></span> ` +
		`<span data-context="feed" data-content="currentPageIndex"></span> ` +
		`<span data-context="feedContent" data-content="ofLabel"></span> ` +
		`<span data-context="feed" data-content="numPages"></span>` +
		`</span>` +
		`<a class="` + ClassPagerNext + `" href="#" data-context="feedContent" data-content="next"></a>` +
		`</div>`)
}

// EntryTemplate renders one stream: preview image, channel name, game and
// viewer count.
func EntryTemplate(any) templ.Component {
	return staticComponent(`<li class="` + ClassEntry + `">` +
		`<a class="tf-entry-preview" data-context="streamEntry" data-href="channel.url">` +
		`<img data-context="streamEntry" data-src="preview.medium">` +
		`</a>` +
		`<div class="tf-entry-body">` +
		`<h3 class="tf-entry-title" data-context="streamEntry" data-content="channel.display_name"></h3>` +
		`<p class="tf-entry-meta">` +
		`<span data-context="streamEntry" data-content="game"></span> - ` +
		`<span data-context="streamEntry" data-content="viewers"></span> ` +
		`<span data-context="feedContent" data-content="viewersLabel"></span>` +
		`</p>` +
		`<p class="tf-entry-status" data-context="streamEntry" data-content="channel.status"></p>` +
		`</div>` +
		`</li>`)
}

func cloneContent(content map[string]any) map[string]any {
	if content == nil {
		return DefaultContent()
	}
	merged := DefaultContent()
	maps.Copy(merged, content)
	return merged
}
