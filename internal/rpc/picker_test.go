package rpc_test

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/bigincgenesis/bigcli/internal/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checked(url string, latency time.Duration, block uint64, healthy bool) rpc.Endpoint {
	return rpc.Endpoint{URL: url, Latency: latency, BlockNumber: block, Healthy: healthy, Checked: true}
}

func unchecked(url string, latency time.Duration, block uint64) rpc.Endpoint {
	return rpc.Endpoint{URL: url, Latency: latency, BlockNumber: block}
}

func TestPickerSelectsFastest(t *testing.T) {
	endpoints := []rpc.Endpoint{
		unchecked("http://slow.rpc", 200*time.Millisecond, 100),
		unchecked("http://fast.rpc", 30*time.Millisecond, 100),
		unchecked("http://medium.rpc", 80*time.Millisecond, 100),
	}

	winner, err := rpc.NewPicker(rpc.AlgorithmFastest).Pick(endpoints)
	require.NoError(t, err)
	assert.Equal(t, "http://fast.rpc", winner.URL)
}

func TestPickerSubMillisecondLatency(t *testing.T) {
	endpoints := []rpc.Endpoint{
		unchecked("http://remote.rpc", 40*time.Millisecond, 100),
		unchecked("http://localhost:8545", 300*time.Microsecond, 100),
	}

	winner, err := rpc.NewPicker(rpc.AlgorithmFastest).Pick(endpoints)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8545", winner.URL)
}

func TestPickerDiscardsStaleNodes(t *testing.T) {
	endpoints := []rpc.Endpoint{
		checked("http://fresh.rpc", 50*time.Millisecond, 1000, true),
		checked("http://stale.rpc", 10*time.Millisecond, 990, true),
	}

	winner, err := rpc.NewPicker(rpc.AlgorithmFastest).Pick(endpoints)
	require.NoError(t, err)
	assert.Equal(t, "http://fresh.rpc", winner.URL, "stale node should be discarded even if faster")
}

func TestPickerFailover(t *testing.T) {
	endpoints := []rpc.Endpoint{
		checked("http://primary", 0, 100, false),
		checked("http://secondary", 0, 100, true),
		checked("http://tertiary", 0, 100, true),
	}

	winner, err := rpc.NewPicker(rpc.AlgorithmFailover).Pick(endpoints)
	require.NoError(t, err)
	assert.Equal(t, "http://secondary", winner.URL)
}

func TestPickerErrorsWhenAllUnhealthy(t *testing.T) {
	endpoints := []rpc.Endpoint{
		checked("http://rpc1", 100*time.Millisecond, 0, false),
		checked("http://rpc2", 200*time.Millisecond, 0, false),
	}

	for _, algo := range []rpc.Algorithm{rpc.AlgorithmFastest, rpc.AlgorithmRoundRobin, rpc.AlgorithmFailover} {
		_, err := rpc.NewPicker(algo).Pick(endpoints)
		assert.ErrorIs(t, err, rpc.ErrNoHealthyRPC, string(algo))
	}
}

func TestPickerEmptyEndpoints(t *testing.T) {
	_, err := rpc.NewPicker(rpc.AlgorithmFastest).Pick(nil)
	assert.ErrorIs(t, err, rpc.ErrNoHealthyRPC)
}

func TestPickerRoundRobinCycles(t *testing.T) {
	endpoints := []rpc.Endpoint{
		checked("http://rpc1", 0, 100, true),
		checked("http://down", 0, 100, false),
		checked("http://rpc2", 0, 100, true),
	}

	picker := rpc.NewPicker(rpc.AlgorithmRoundRobin)
	var urls []string
	for range 3 {
		e, err := picker.Pick(endpoints)
		require.NoError(t, err)
		urls = append(urls, e.URL)
	}
	assert.Equal(t, []string{"http://rpc1", "http://rpc2", "http://rpc1"}, urls)
}

// ---------------------------------------------------------------------------
// Winner cache
// ---------------------------------------------------------------------------

func TestPickerCachesWinnerUntilTTL(t *testing.T) {
	mock := clock.NewMock()
	picker := rpc.NewPicker(rpc.AlgorithmFastest, rpc.WithClock(mock))
	benchmarks := 0
	picker.OnBenchmark(func() { benchmarks++ })

	endpoints := []rpc.Endpoint{unchecked("http://fast.rpc", 30*time.Millisecond, 100)}

	for range 3 {
		_, err := picker.Pick(endpoints)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, benchmarks, "cached within TTL")

	mock.Add(5*time.Minute + time.Second)
	_, err := picker.Pick(endpoints)
	require.NoError(t, err)
	assert.Equal(t, 2, benchmarks, "re-scored after TTL")
}

func TestPickerCacheIgnoredWhenWinnerMissing(t *testing.T) {
	mock := clock.NewMock()
	picker := rpc.NewPicker(rpc.AlgorithmFastest, rpc.WithClock(mock))

	first, err := picker.Pick([]rpc.Endpoint{unchecked("http://a.rpc", 10*time.Millisecond, 5)})
	require.NoError(t, err)
	assert.Equal(t, "http://a.rpc", first.URL)

	second, err := picker.Pick([]rpc.Endpoint{unchecked("http://b.rpc", 10*time.Millisecond, 5)})
	require.NoError(t, err)
	assert.Equal(t, "http://b.rpc", second.URL)
}

func TestParseAlgorithm(t *testing.T) {
	a, err := rpc.ParseAlgorithm("")
	require.NoError(t, err)
	assert.Equal(t, rpc.AlgorithmFastest, a)

	a, err = rpc.ParseAlgorithm("failover")
	require.NoError(t, err)
	assert.Equal(t, rpc.AlgorithmFailover, a)

	_, err = rpc.ParseAlgorithm("random")
	assert.Error(t, err)
}
