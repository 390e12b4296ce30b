package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/log"

	"github.com/pthm/hxfeed"
	"github.com/pthm/hxfeed/lib/attreval"
	"github.com/pthm/hxfeed/lib/config"
	"github.com/pthm/hxfeed/lib/dom"
	"github.com/pthm/hxfeed/lib/fetch"
	"github.com/pthm/hxfeed/lib/mockfeed"
)

const version = "0.1.0"

const page = `<!DOCTYPE html>
<html>
<head><title data-context="siteContent" data-content="title"></title></head>
<body>
<h1 data-context="siteContent" data-content="title"></h1>
<form id="feed-query-form">
<input id="feed-query-input" type="text" name="q" data-context="siteContent" data-placeholder="searchPlaceholder">
<button type="submit" data-context="siteContent" data-content="searchLabel"></button>
</form>
<div id="feed-wrapper"></div>
</body>
</html>`

var siteContent = map[string]any{
	"title":             "Live streams",
	"searchLabel":       "Search",
	"searchPlaceholder": "Search streams",
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "render":
		if err := runRender(args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	case "page":
		if err := runPage(args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	case "mock":
		if err := runMock(args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	case "version":
		fmt.Printf("hxfeed version %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`hxfeed - paginated search feed widget

Usage:
  hxfeed <command> [arguments]

Commands:
  render [query]        Load the first page of query and print the page HTML
  page <n> [query]      Load page n of query and print the page HTML
  mock                  Serve the mock search API
  version               Print version
  help                  Show this help

Environment (also read from .env):
  HXFEED_URL               Search URL template with {{query}}, {{offset}} and {{limit}}
  HXFEED_ENTRIES_PER_PAGE  Entries per page (default 5)
  HXFEED_DEFAULT_QUERY     Query used when none is given
  HXFEED_JSONP_CALLBACK    Load over JSONP using this callback parameter
  HXFEED_TIMEOUT           Request timeout (default 10s)
  HXFEED_MOCK_ADDR         Listen address for mock (default :8081)
  HXFEED_LOG_LEVEL         debug, info, warn or error (default info)

Examples:
  hxfeed mock &
  hxfeed render starcraft
  hxfeed page 2 starcraft`)
}

func newLogger(cfg *config.Config) *log.Logger {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	return log.NewWithOptions(os.Stderr, log.Options{
		Level:           level,
		ReportTimestamp: true,
		Prefix:          "hxfeed",
	})
}

// widget is a loaded page with the feed attached.
type widget struct {
	doc  *goquery.Document
	feed *hxfeed.Loader
}

func newWidget(cfg *config.Config, logger *log.Logger) (*widget, error) {
	doc, err := dom.ParseDocument(page)
	if err != nil {
		return nil, err
	}

	client := fetch.New(fetch.Options{
		Name:                   "search",
		Timeout:                cfg.Timeout,
		MaxConsecutiveFailures: uint32(max(cfg.BreakerFailures, 1)),
		OpenTimeout:            cfg.BreakerOpen,
		Logger:                 logger,
	})

	opts := []hxfeed.Option{
		hxfeed.WithEntriesPerPage(cfg.EntriesPerPage),
		hxfeed.WithExtractEntries(hxfeed.ExtractField("streams")),
		hxfeed.WithExtractNumResults(hxfeed.ExtractCount("_total")),
		hxfeed.WithFetcher(client),
		hxfeed.WithScriptLoader(client),
		hxfeed.WithLogger(logger),
	}
	if cfg.JSONPCallback != "" {
		opts = append(opts, hxfeed.WithJSONPCallback(cfg.JSONPCallback))
	}
	feed := hxfeed.New(cfg.FeedURL, opts...)

	input := doc.Find("#feed-query-input")
	feed.AddEventListener(hxfeed.EventQuery, func(e hxfeed.Event) {
		if q, ok := e.Detail.(string); ok {
			input.SetAttr("value", q)
		}
	})

	attreval.New(attreval.WithDocument(doc.Selection), attreval.WithLogger(logger)).
		AddContext("siteContent", attreval.ContextOptions{Data: siteContent}).
		Run("siteContent", attreval.RunOptions{})

	return &widget{doc: doc, feed: feed}, nil
}

func (w *widget) query(q string) {
	w.feed.InitInto(w.doc.Find("#feed-wrapper"))
	w.feed.Query(q)
	w.feed.Wait()
}

func (w *widget) print() error {
	out, err := w.doc.Html()
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}

func queryArg(args []string, cfg *config.Config) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if cfg.DefaultQuery != "" {
		return cfg.DefaultQuery, nil
	}
	return "", errors.New("no query given and HXFEED_DEFAULT_QUERY is unset")
}

func runRender(args []string) error {
	cfg := config.Load()
	logger := newLogger(cfg)

	q, err := queryArg(args, cfg)
	if err != nil {
		return err
	}
	w, err := newWidget(cfg, logger)
	if err != nil {
		return err
	}
	w.query(q)
	return w.print()
}

func runPage(args []string) error {
	if len(args) < 1 {
		return errors.New("usage: hxfeed page <n> [query]")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid page %q: %w", args[0], err)
	}

	cfg := config.Load()
	logger := newLogger(cfg)

	q, err := queryArg(args[1:], cfg)
	if err != nil {
		return err
	}
	w, err := newWidget(cfg, logger)
	if err != nil {
		return err
	}
	w.query(q)
	w.feed.GoToPage(n)
	w.feed.Wait()
	logger.Info("page loaded", "page", w.feed.CurrentPageIndex(), "pages", w.feed.NumPages(), "results", w.feed.ResultsCount())
	return w.print()
}

func runMock(args []string) error {
	cfg := config.Load()
	logger := newLogger(cfg)

	server := mockfeed.New(mockfeed.Options{Total: cfg.MockEntries, Logger: logger})
	logger.Info("mock search API listening", "addr", cfg.MockAddr)
	return http.ListenAndServe(cfg.MockAddr, server.Handler())
}
