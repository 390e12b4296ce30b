// Package config loads CLI settings from the environment and an optional
// .env file.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// DefaultFeedURL points at the mock search API.
const DefaultFeedURL = "http://localhost:8081/search?q={{query}}&offset={{offset}}&limit={{limit}}"

type Config struct {
	FeedURL         string
	EntriesPerPage  int
	DefaultQuery    string
	JSONPCallback   string
	Timeout         time.Duration
	BreakerFailures int
	BreakerOpen     time.Duration
	MockAddr        string
	MockEntries     int
	LogLevel        string
}

// Load reads .env (when present) and then HXFEED_* variables.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		FeedURL:         getEnv("HXFEED_URL", DefaultFeedURL),
		EntriesPerPage:  getIntEnv("HXFEED_ENTRIES_PER_PAGE", 5),
		DefaultQuery:    getEnv("HXFEED_DEFAULT_QUERY", ""),
		JSONPCallback:   getEnv("HXFEED_JSONP_CALLBACK", ""),
		Timeout:         getDurationEnv("HXFEED_TIMEOUT", 10*time.Second),
		BreakerFailures: getIntEnv("HXFEED_BREAKER_FAILURES", 3),
		BreakerOpen:     getDurationEnv("HXFEED_BREAKER_OPEN", 30*time.Second),
		MockAddr:        getEnv("HXFEED_MOCK_ADDR", ":8081"),
		MockEntries:     getIntEnv("HXFEED_MOCK_ENTRIES", 13),
		LogLevel:        getEnv("HXFEED_LOG_LEVEL", "info"),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		i, err := strconv.Atoi(value)
		if err == nil {
			return i
		}
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		// "1m", "30s"
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		// bare integer seconds
		if i, err := strconv.Atoi(value); err == nil {
			return time.Duration(i) * time.Second
		}
	}
	return fallback
}
