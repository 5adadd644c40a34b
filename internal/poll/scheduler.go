// Package poll keeps contract reads fresh. A single Scheduler owns one timer;
// hooks subscribe to keyed reads, and identical keys share one request per
// tick.
package poll

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/bigincgenesis/bigcli/internal/logging"
)

// DefaultInterval is the refresh cadence for every subscription.
const DefaultInterval = 5 * time.Second

// Observer is notified of dispatched and discarded reads.
type Observer interface {
	ObserveDispatch(key string)
	ObserveDiscard(key string)
}

// Scheduler fans one ticker out to every enabled entry.
type Scheduler struct {
	clock    clock.Clock
	interval time.Duration
	observer Observer

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	entries map[string]*entry
	started bool
	closed  bool
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock replaces the wall clock.
func WithClock(c clock.Clock) Option {
	return func(s *Scheduler) { s.clock = c }
}

// WithObserver reports dispatches and stale discards.
func WithObserver(o Observer) Option {
	return func(s *Scheduler) { s.observer = o }
}

// NewScheduler creates a stopped scheduler. A non-positive interval means
// DefaultInterval.
func NewScheduler(interval time.Duration, opts ...Option) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		clock:    clock.New(),
		interval: interval,
		ctx:      ctx,
		cancel:   cancel,
		entries:  make(map[string]*entry),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Interval returns the tick period.
func (s *Scheduler) Interval() time.Duration { return s.interval }

// Start launches the tick loop. Subscriptions made before Start still get
// their immediate first read.
func (s *Scheduler) Start() {
	s.mu.Lock()
	if s.started || s.closed {
		s.mu.Unlock()
		return
	}
	s.started = true
	ticker := s.clock.Ticker(s.interval)
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		defer ticker.Stop()
		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.tick()
			}
		}
	}()
}

// Close stops the loop, cancels in-flight reads and waits for them.
func (s *Scheduler) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
}

func (s *Scheduler) tick() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		// A key whose last read has not resolved waits for the next tick.
		if e.active() && e.pending == 0 {
			s.dispatchLocked(e)
		}
	}
}

// dispatchLocked issues one read for e. Caller holds s.mu.
func (s *Scheduler) dispatchLocked(e *entry) {
	if s.closed {
		return
	}
	e.issued++
	seq := e.issued
	e.pending++
	e.notify()
	if s.observer != nil {
		s.observer.ObserveDispatch(e.key)
	}

	s.wg.Add(1)
	go s.run(e, seq)
}

func (s *Scheduler) run(e *entry, seq uint64) {
	defer s.wg.Done()
	v, err := e.fetch(s.ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	e.pending--

	if seq <= e.applied {
		// A newer request already resolved.
		if s.observer != nil {
			s.observer.ObserveDiscard(e.key)
		}
		logging.Debug("poll result discarded", "key", e.key, "seq", seq, "applied", e.applied)
		e.notify()
		return
	}
	e.applied = seq

	if err != nil {
		e.err = err
		logging.Debug("poll read failed", "key", e.key, logging.Err(err))
	} else {
		e.data = v
		e.hasData = true
		e.err = nil
	}
	e.notify()
}

// entry is the shared state of one key.
type entry struct {
	key     string
	fetch   func(context.Context) (any, error)
	subs    map[*sub]struct{}
	issued  uint64
	applied uint64
	pending int
	data    any
	hasData bool
	err     error
}

type sub struct {
	enabled bool
	updates chan struct{}
}

func (e *entry) active() bool {
	for s := range e.subs {
		if s.enabled {
			return true
		}
	}
	return false
}

func (e *entry) notify() {
	for s := range e.subs {
		select {
		case s.updates <- struct{}{}:
		default:
		}
	}
}

// Key builds the dedup key for a method call, e.g. "get_shares(0xabc…)".
func Key(method string, args ...any) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = fmt.Sprint(a)
	}
	return method + "(" + strings.Join(parts, ",") + ")"
}
