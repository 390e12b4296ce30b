package main

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm/hxfeed/lib/config"
	"github.com/pthm/hxfeed/lib/mockfeed"
)

func testConfig(serverURL string) *config.Config {
	return &config.Config{
		FeedURL:         serverURL + "/search?q={{query}}&offset={{offset}}&limit={{limit}}",
		EntriesPerPage:  5,
		Timeout:         time.Second,
		BreakerFailures: 3,
		BreakerOpen:     time.Second,
		LogLevel:        "error",
	}
}

func TestWidget_Query(t *testing.T) {
	server := httptest.NewServer(mockfeed.New(mockfeed.Options{Total: 13}).Handler())
	defer server.Close()

	for _, callback := range []string{"", "callback"} {
		t.Run("jsonp="+callback, func(t *testing.T) {
			cfg := testConfig(server.URL)
			cfg.JSONPCallback = callback

			w, err := newWidget(cfg, log.New(io.Discard))
			require.NoError(t, err)
			w.query("starcraft")
			w.feed.GoToPage(3)
			w.feed.Wait()

			assert.Equal(t, "Live streams", w.doc.Find("h1").Text())
			assert.Equal(t, "Live streams", w.doc.Find("title").Text())
			value, _ := w.doc.Find("#feed-query-input").Attr("value")
			assert.Equal(t, "starcraft", value)
			placeholder, _ := w.doc.Find("#feed-query-input").Attr("placeholder")
			assert.Equal(t, "Search streams", placeholder)

			assert.Equal(t, 3, w.doc.Find(".tf-feed-entry").Length())
			assert.Equal(t, "starcraft_streamer_11", w.doc.Find(".tf-entry-title").First().Text())
		})
	}
}

func TestQueryArg(t *testing.T) {
	cfg := &config.Config{}
	_, err := queryArg(nil, cfg)
	assert.Error(t, err)

	cfg.DefaultQuery = "starcraft"
	q, err := queryArg(nil, cfg)
	require.NoError(t, err)
	assert.Equal(t, "starcraft", q)

	q, err = queryArg([]string{"dota"}, cfg)
	require.NoError(t, err)
	assert.Equal(t, "dota", q)
}
