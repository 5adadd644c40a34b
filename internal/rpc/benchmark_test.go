package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePing answers from a fixed table keyed by URL.
func fakePing(table map[string]BenchmarkResult) PingFunc {
	return func(_ context.Context, url string) (time.Duration, uint64, error) {
		r, ok := table[url]
		if !ok {
			return 0, 0, errors.New("connection refused")
		}
		return r.Latency, r.BlockNumber, r.Err
	}
}

func TestResultsToEndpointsMarksChecked(t *testing.T) {
	endpoints := ResultsToEndpoints([]BenchmarkResult{
		{URL: "https://rpc1.example.com", Latency: 50 * time.Millisecond, BlockNumber: 100},
		{URL: "https://rpc2.example.com", Err: errors.New("timeout")},
	})
	require.Len(t, endpoints, 2)

	assert.True(t, endpoints[0].Healthy)
	assert.Equal(t, uint64(100), endpoints[0].BlockNumber)
	assert.False(t, endpoints[1].Healthy)
	for _, ep := range endpoints {
		assert.True(t, ep.Checked)
	}
}

func TestBenchmarkPreservesOrder(t *testing.T) {
	urls := []string{"https://a.com", "https://b.com", "https://c.com"}
	results := Benchmark(context.Background(), urls, fakePing(map[string]BenchmarkResult{
		"https://a.com": {Latency: 30 * time.Millisecond, BlockNumber: 7},
		"https://c.com": {Latency: 10 * time.Millisecond, BlockNumber: 7},
	}))

	require.Len(t, results, 3)
	for i, u := range urls {
		assert.Equal(t, u, results[i].URL)
	}
	assert.NoError(t, results[0].Err)
	assert.Error(t, results[1].Err)
}

func TestBestPicksFastestHealthy(t *testing.T) {
	url, err := Best(context.Background(), []string{"https://slow", "https://dead", "https://fast"}, AlgorithmFastest,
		fakePing(map[string]BenchmarkResult{
			"https://slow": {Latency: 300 * time.Millisecond, BlockNumber: 50},
			"https://fast": {Latency: 20 * time.Millisecond, BlockNumber: 50},
		}))
	require.NoError(t, err)
	assert.Equal(t, "https://fast", url)
}

func TestBestAllDown(t *testing.T) {
	_, err := Best(context.Background(), []string{"https://x", "https://y"}, AlgorithmFastest, fakePing(nil))
	assert.ErrorIs(t, err, ErrNoHealthyRPC)
}

func TestBestSingleURLSkipsBenchmark(t *testing.T) {
	called := false
	ping := func(context.Context, string) (time.Duration, uint64, error) {
		called = true
		return 0, 0, nil
	}
	url, err := Best(context.Background(), []string{"http://localhost:8545"}, AlgorithmFastest, ping)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8545", url)
	assert.False(t, called)
}

func TestBestNoURLs(t *testing.T) {
	_, err := BestEVM(context.Background(), nil, AlgorithmFastest)
	assert.ErrorIs(t, err, ErrNoHealthyRPC)
}

func TestDialPingAgainstNode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID json.RawMessage `json:"id"`
		}
		json.NewDecoder(r.Body).Decode(&req) //nolint:errcheck
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"jsonrpc": "2.0", "id": req.ID, "result": "0x2a"}) //nolint:errcheck
	}))
	defer srv.Close()

	_, block, err := DialPing(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), block)
}
