package rpc

import (
	"context"
	"sync"
	"time"

	"github.com/bigincgenesis/bigcli/internal/chain"
	"github.com/bigincgenesis/bigcli/internal/logging"
)

// BenchmarkResult holds the result of a single endpoint benchmark.
type BenchmarkResult struct {
	URL         string
	Latency     time.Duration
	BlockNumber uint64
	Err         error
}

// PingFunc measures one endpoint.
type PingFunc func(ctx context.Context, url string) (time.Duration, uint64, error)

// DialPing dials url with the chain client and pings it once.
func DialPing(ctx context.Context, url string) (time.Duration, uint64, error) {
	c, err := chain.Dial(ctx, url)
	if err != nil {
		return 0, 0, err
	}
	defer c.Close()
	return c.Ping(ctx)
}

// Benchmark pings all URLs in parallel and returns results in input order.
func Benchmark(ctx context.Context, urls []string, ping PingFunc) []BenchmarkResult {
	results := make([]BenchmarkResult, len(urls))
	var wg sync.WaitGroup

	for i, url := range urls {
		wg.Add(1)
		go func(idx int, u string) {
			defer wg.Done()
			latency, block, err := ping(ctx, u)
			results[idx] = BenchmarkResult{URL: u, Latency: latency, BlockNumber: block, Err: err}
			if err != nil {
				logging.Debug("rpc benchmark failed", "url", u, logging.Err(err))
			}
		}(i, url)
	}

	wg.Wait()
	return results
}

// BenchmarkEVM benchmarks urls with DialPing.
func BenchmarkEVM(ctx context.Context, urls []string) []BenchmarkResult {
	return Benchmark(ctx, urls, DialPing)
}

// ResultsToEndpoints converts benchmark results to picker Endpoints.
// Every returned endpoint is marked Checked.
func ResultsToEndpoints(results []BenchmarkResult) []Endpoint {
	endpoints := make([]Endpoint, 0, len(results))
	for _, r := range results {
		endpoints = append(endpoints, Endpoint{
			URL:         r.URL,
			Latency:     r.Latency,
			BlockNumber: r.BlockNumber,
			Healthy:     r.Err == nil,
			Checked:     true,
		})
	}
	return endpoints
}

// Best benchmarks urls with ping and returns the URL chosen by algo.
// A single URL is returned without benchmarking.
func Best(ctx context.Context, urls []string, algo Algorithm, ping PingFunc) (string, error) {
	switch len(urls) {
	case 0:
		return "", ErrNoHealthyRPC
	case 1:
		return urls[0], nil
	}

	endpoints := ResultsToEndpoints(Benchmark(ctx, urls, ping))
	winner, err := NewPicker(algo).Pick(endpoints)
	if err != nil {
		return "", err
	}
	logging.Debug("rpc selected", "url", winner.URL, "algorithm", string(algo), "latency", winner.Latency)
	return winner.URL, nil
}

// BestEVM is Best with DialPing.
func BestEVM(ctx context.Context, urls []string, algo Algorithm) (string, error) {
	return Best(ctx, urls, algo, DialPing)
}
