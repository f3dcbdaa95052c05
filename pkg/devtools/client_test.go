package devtools

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// debugEndpoint runs a fake /json tab listing and returns host, port and a
// pointer to the served tab slice.
func debugEndpoint(t *testing.T, tabs func() []Tab) (string, int) {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(tabs()))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	host, portStr, err := net.SplitHostPort(srv.Listener.Addr().String())
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)
	return host, port
}

func TestListTabs(t *testing.T) {
	want := []Tab{
		{ID: "1", URL: "http://127.0.0.1:51000/index.html", DebugSocketURL: "ws://127.0.0.1:33417/devtools/page/1"},
		{ID: "2", URL: "about:blank", DebugSocketURL: "ws://127.0.0.1:33417/devtools/page/2"},
	}
	host, port := debugEndpoint(t, func() []Tab { return want })

	got, err := NewClient().ListTabs(context.Background(), host, port)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestListTabs_EndpointNotListening(t *testing.T) {
	// Grab a port that nothing listens on.
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())

	_, err = NewClient().ListTabs(context.Background(), "127.0.0.1", port)
	assert.Error(t, err)
}

func TestFindTab_AppearsAfterPolling(t *testing.T) {
	var ready atomic.Bool
	host, port := debugEndpoint(t, func() []Tab {
		if !ready.Load() {
			return nil
		}
		return []Tab{{ID: "1", URL: "http://127.0.0.1:51000/index.html"}}
	})

	go func() {
		time.Sleep(300 * time.Millisecond)
		ready.Store(true)
	}()

	c := NewClient()
	c.pollInterval = 50 * time.Millisecond
	tab, err := c.FindTab(context.Background(), host, port,
		MatchHarness("http://127.0.0.1:51000/index.html", "index.html"), 3*time.Second)
	require.NoError(t, err)
	assert.Equal(t, "1", tab.ID)
}

func TestFindTab_BudgetExhausted(t *testing.T) {
	host, port := debugEndpoint(t, func() []Tab {
		return []Tab{{ID: "1", URL: "http://example.com/other.html"}}
	})

	c := NewClient()
	c.pollInterval = 20 * time.Millisecond

	start := time.Now()
	_, err := c.FindTab(context.Background(), host, port,
		func(Tab) bool { return false }, 200*time.Millisecond)
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTabNotFound)
	assert.Less(t, elapsed, 2*time.Second, "FindTab must not block past its budget")
}

func TestFindTab_ContextCancelled(t *testing.T) {
	host, port := debugEndpoint(t, func() []Tab { return nil })

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	c := NewClient()
	c.pollInterval = 20 * time.Millisecond
	_, err := c.FindTab(ctx, host, port, func(Tab) bool { return false }, 10*time.Second)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMatchHarness(t *testing.T) {
	predicate := MatchHarness("http://127.0.0.1:51000/index.html", "index.html")

	tests := []struct {
		url  string
		want bool
	}{
		{"http://127.0.0.1:51000/index.html", true},  // exact
		{"http://localhost:8080/deep/index.html", true}, // trailing path
		{"http://127.0.0.1:51000/other.html", false},
		{"about:blank", false},
		{"http://127.0.0.1:51000/notindex.html", false}, // suffix must be a path segment
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, predicate(Tab{URL: tt.url}), tt.url)
	}
}
