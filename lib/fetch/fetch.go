// Package fetch performs the GET requests behind feed loads.
//
// A Client issues one request per call, never retries, and guards the
// upstream with a circuit breaker so a dead API fails fast instead of
// stacking up timeouts.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/sony/gobreaker"

	"github.com/pthm/hxfeed/lib/metrics"
)

// Transport labels.
const (
	TransportHTTP  = "http"
	TransportJSONP = "jsonp"
)

// Response is a completed 200 response.
type Response struct {
	URL         string
	StatusCode  int
	ContentType string
	Body        []byte
}

// StatusError is returned for any status other than 200.
type StatusError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch: %s returned %s", e.URL, e.Status)
}

// Options configures a Client.
type Options struct {
	// Name labels the circuit breaker in logs.
	Name string
	// Timeout bounds each request. Zero means 10s.
	Timeout time.Duration
	// MaxConsecutiveFailures trips the breaker. Zero means 3.
	MaxConsecutiveFailures uint32
	// OpenTimeout is how long the breaker stays open. Zero means 30s.
	OpenTimeout time.Duration
	// HTTPClient overrides the underlying client; Timeout is ignored when set.
	HTTPClient *http.Client
	Logger     *log.Logger
}

// Client fetches feed pages and JSONP scripts.
type Client struct {
	http   *http.Client
	cb     *gobreaker.CircuitBreaker
	logger *log.Logger
}

// New creates a Client.
func New(opts Options) *Client {
	if opts.Name == "" {
		opts.Name = "hxfeed"
	}
	if opts.Timeout == 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.MaxConsecutiveFailures == 0 {
		opts.MaxConsecutiveFailures = 3
	}
	if opts.OpenTimeout == 0 {
		opts.OpenTimeout = 30 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	logger := opts.Logger
	maxFailures := opts.MaxConsecutiveFailures
	cbSettings := gobreaker.Settings{
		Name:        opts.Name,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     opts.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		IsSuccessful: isBreakerSuccess,
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	}

	return &Client{
		http:   httpClient,
		cb:     gobreaker.NewCircuitBreaker(cbSettings),
		logger: logger,
	}
}

// isBreakerSuccess keeps cancellations and client errors from tripping the
// breaker; only transport failures and 5xx count against the upstream.
func isBreakerSuccess(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return true
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode < http.StatusInternalServerError
	}
	return false
}

// Get requests url and returns the body of a 200 response.
func (c *Client) Get(ctx context.Context, url string) (*Response, error) {
	return c.do(ctx, TransportHTTP, url)
}

// LoadScript requests a JSONP script and returns its source.
func (c *Client) LoadScript(ctx context.Context, src string) ([]byte, error) {
	resp, err := c.do(ctx, TransportJSONP, src)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// State reports the breaker state ("closed", "half-open" or "open").
func (c *Client) State() string {
	return c.cb.State().String()
}

func (c *Client) do(ctx context.Context, transport, url string) (*Response, error) {
	start := time.Now()
	out, err := c.cb.Execute(func() (interface{}, error) {
		return c.request(ctx, url)
	})
	metrics.FetchDuration.WithLabelValues(transport).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.FetchesTotal.WithLabelValues(transport, outcome(err)).Inc()
		return nil, err
	}
	metrics.FetchesTotal.WithLabelValues(transport, metrics.OutcomeOK).Inc()
	return out.(*Response), nil
}

func (c *Client) request(ctx context.Context, url string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch: failed to create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Warn("failed to close response body", "url", url, "err", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode, Status: resp.Status}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fetch: failed to read body: %w", err)
	}

	return &Response{
		URL:         url,
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

func outcome(err error) string {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return metrics.OutcomeCanceled
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return metrics.OutcomeRejected
	}
	return metrics.OutcomeError
}
