package devtools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// ErrTabNotFound indicates the polling budget elapsed without any tab
// matching the predicate.
var ErrTabNotFound = errors.New("tab not found")

const (
	// defaultPollInterval is how often FindTab re-lists tabs.
	defaultPollInterval = 250 * time.Millisecond

	// defaultHTTPTimeout bounds a single tab-listing request.
	defaultHTTPTimeout = 5 * time.Second
)

// Client talks to a browser remote debugging endpoint.
type Client struct {
	httpClient   *http.Client
	dialer       *websocket.Dialer
	pollInterval time.Duration
}

// NewClient creates a client with default timeouts.
func NewClient() *Client {
	return &Client{
		httpClient:   &http.Client{Timeout: defaultHTTPTimeout},
		dialer:       websocket.DefaultDialer,
		pollInterval: defaultPollInterval,
	}
}

// ListTabs fetches the open tabs from the debugging HTTP endpoint. It fails
// with a connection error while the endpoint is not yet listening, which is
// expected immediately after browser launch.
func (c *Client) ListTabs(ctx context.Context, host string, port int) ([]Tab, error) {
	url := fmt.Sprintf("http://%s:%d/json", host, port)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build tab listing request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list tabs: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list tabs: unexpected status %d", resp.StatusCode)
	}

	var tabs []Tab
	if err := json.NewDecoder(resp.Body).Decode(&tabs); err != nil {
		return nil, fmt.Errorf("parse tab listing: %w", err)
	}
	return tabs, nil
}

// FindTab polls ListTabs until a tab satisfies predicate or retryFor elapses,
// in which case it fails with ErrTabNotFound. Listing errors are treated as
// retryable; bounded polling is the only recovery mechanism here because both
// the debugging endpoint and page navigation are asynchronous relative to
// process launch.
func (c *Client) FindTab(ctx context.Context, host string, port int, predicate func(Tab) bool, retryFor time.Duration) (Tab, error) {
	deadline := time.Now().Add(retryFor)
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		tabs, err := c.ListTabs(ctx, host, port)
		if err == nil {
			for _, tab := range tabs {
				if predicate(tab) {
					return tab, nil
				}
			}
		}

		if time.Now().After(deadline) {
			return Tab{}, fmt.Errorf("%w: no match within %s", ErrTabNotFound, retryFor)
		}

		select {
		case <-ctx.Done():
			return Tab{}, ctx.Err()
		case <-ticker.C:
		}
	}
}

// MatchHarness returns a tab predicate accepting either an exact URL match
// against pageURL or a trailing-path match against the harness file name.
// Either form is sufficient.
func MatchHarness(pageURL, harnessFile string) func(Tab) bool {
	return func(tab Tab) bool {
		if tab.URL == pageURL {
			return true
		}
		return harnessFile != "" && strings.HasSuffix(tab.URL, "/"+harnessFile)
	}
}
