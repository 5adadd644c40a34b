// Package metrics exposes contract-call, polling and buy-flow counters in
// the Prometheus exposition format.
package metrics

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "bigcli"

// Collector owns a dedicated registry so it never touches the global one.
type Collector struct {
	registry *prometheus.Registry

	calls        *prometheus.CounterVec
	callDuration *prometheus.HistogramVec
	dispatches   *prometheus.CounterVec
	discards     *prometheus.CounterVec
	transitions  *prometheus.CounterVec
}

// New creates a Collector with all metrics registered.
func New() *Collector {
	reg := prometheus.NewRegistry()

	calls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "contract_calls_total",
		Help:      "Contract calls by method and outcome.",
	}, []string{"method", "outcome"})

	callDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "contract_call_duration_seconds",
		Help:      "Contract call latency by method.",
		Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	}, []string{"method"})

	dispatches := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "poll_dispatches_total",
		Help:      "Polling reads dispatched by method.",
	}, []string{"method"})

	discards := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "poll_stale_discards_total",
		Help:      "Polling results dropped because a newer request was outstanding.",
	}, []string{"method"})

	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "buyflow_transitions_total",
		Help:      "Buy flow state transitions.",
	}, []string{"from", "to"})

	reg.MustRegister(calls, callDuration, dispatches, discards, transitions)

	return &Collector{
		registry:     reg,
		calls:        calls,
		callDuration: callDuration,
		dispatches:   dispatches,
		discards:     discards,
		transitions:  transitions,
	}
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// ObserveCall records one contract call.
func (c *Collector) ObserveCall(method string, d time.Duration, err error) {
	c.calls.WithLabelValues(method, outcome(err)).Inc()
	c.callDuration.WithLabelValues(method).Observe(d.Seconds())
}

// ObserveDispatch records one polling read issued for key.
func (c *Collector) ObserveDispatch(key string) {
	c.dispatches.WithLabelValues(methodOf(key)).Inc()
}

// ObserveDiscard records one polling result dropped by the sequence guard.
func (c *Collector) ObserveDiscard(key string) {
	c.discards.WithLabelValues(methodOf(key)).Inc()
}

// ObserveTransition records a buy flow state change.
func (c *Collector) ObserveTransition(from, to string) {
	c.transitions.WithLabelValues(from, to).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Serve runs a /metrics endpoint on addr until the server fails or is closed.
func (c *Collector) Serve(addr string) (*http.Server, <-chan error) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errc := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()
	return srv, errc
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return "error"
}

// methodOf strips the argument list from a poll key so per-address keys
// share one label value.
func methodOf(key string) string {
	m, _, _ := strings.Cut(key, "(")
	return m
}
