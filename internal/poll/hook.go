package poll

import "context"

// State is a snapshot of one polled value.
type State[T any] struct {
	Data    T
	Loading bool
	Err     error
}

// Hook is one subscriber's view of a polled read.
type Hook[T any] struct {
	s      *Scheduler
	e      *entry
	sub    *sub
	def    T
	closed bool
}

// Watch subscribes to key. Subscribers of an existing key share its fetch
// function and data; fetch is only used when the key is new. An enabled
// hook whose key has no other enabled subscriber triggers a read right away.
func Watch[T any](s *Scheduler, key string, fetch func(context.Context) (T, error), def T, enabled bool) *Hook[T] {
	h := &Hook[T]{
		s:   s,
		def: def,
		sub: &sub{updates: make(chan struct{}, 1)},
	}

	s.mu.Lock()
	e, ok := s.entries[key]
	if !ok {
		e = &entry{
			key: key,
			fetch: func(ctx context.Context) (any, error) {
				v, err := fetch(ctx)
				return v, err
			},
			subs: make(map[*sub]struct{}),
		}
		s.entries[key] = e
	}
	e.subs[h.sub] = struct{}{}
	h.e = e
	s.mu.Unlock()

	if enabled {
		h.SetEnabled(true)
	}
	return h
}

// Key returns the key this hook is subscribed to.
func (h *Hook[T]) Key() string { return h.e.key }

// State returns the current data, loading flag and last error. Until the
// first successful read Data is the hook's default.
func (h *Hook[T]) State() State[T] {
	h.s.mu.Lock()
	defer h.s.mu.Unlock()

	st := State[T]{Data: h.def, Loading: h.e.pending > 0, Err: h.e.err}
	if h.e.hasData {
		if v, ok := h.e.data.(T); ok {
			st.Data = v
		}
	}
	return st
}

// Enabled reports whether the hook currently takes part in polling.
func (h *Hook[T]) Enabled() bool {
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	return h.sub.enabled
}

// SetEnabled turns polling on or off for this subscriber. Disabling never
// cancels a read already in flight.
func (h *Hook[T]) SetEnabled(on bool) {
	h.s.mu.Lock()
	defer h.s.mu.Unlock()

	if h.closed || h.sub.enabled == on {
		return
	}
	wasActive := h.e.active()
	h.sub.enabled = on
	if on && !wasActive {
		h.s.dispatchLocked(h.e)
	}
}

// Refetch issues a read now. It does nothing while the hook is disabled.
func (h *Hook[T]) Refetch() {
	h.s.mu.Lock()
	defer h.s.mu.Unlock()

	if h.closed || !h.sub.enabled {
		return
	}
	h.s.dispatchLocked(h.e)
}

// Updates signals (coalesced) whenever the shared state changes.
func (h *Hook[T]) Updates() <-chan struct{} {
	return h.sub.updates
}

// Close unsubscribes. The key stops being polled once no subscriber remains.
func (h *Hook[T]) Close() {
	h.s.mu.Lock()
	defer h.s.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	h.sub.enabled = false
	delete(h.e.subs, h.sub)
	if len(h.e.subs) == 0 && h.s.entries[h.e.key] == h.e {
		delete(h.s.entries, h.e.key)
	}
}
