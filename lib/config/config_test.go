package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, DefaultFeedURL, cfg.FeedURL)
	assert.Equal(t, 5, cfg.EntriesPerPage)
	assert.Empty(t, cfg.JSONPCallback)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, ":8081", cfg.MockAddr)
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("HXFEED_URL", "http://api.test/s?q={{query}}")
	t.Setenv("HXFEED_ENTRIES_PER_PAGE", "10")
	t.Setenv("HXFEED_JSONP_CALLBACK", "callback")
	t.Setenv("HXFEED_TIMEOUT", "5")
	t.Setenv("HXFEED_BREAKER_OPEN", "1m")

	cfg := Load()

	assert.Equal(t, "http://api.test/s?q={{query}}", cfg.FeedURL)
	assert.Equal(t, 10, cfg.EntriesPerPage)
	assert.Equal(t, "callback", cfg.JSONPCallback)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, time.Minute, cfg.BreakerOpen)
}

func TestGetIntEnv_Invalid(t *testing.T) {
	t.Setenv("HXFEED_TEST_INT", "many")
	assert.Equal(t, 7, getIntEnv("HXFEED_TEST_INT", 7))
}

func TestGetDurationEnv_Invalid(t *testing.T) {
	t.Setenv("HXFEED_TEST_DURATION", "soon")
	assert.Equal(t, time.Second, getDurationEnv("HXFEED_TEST_DURATION", time.Second))
}
