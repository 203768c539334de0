// Package store holds the process-wide catalog cache: synchronous reads, the
// mutation API, change notification, and write-through to a durable backend.
package store

import (
	"context"
	"sync"

	"rackcatalog/pkg/catalog"
)

// Store owns the single in-memory catalog document for a process. Reads are
// served from the cache; every mutation replaces the cache wholesale, triggers
// persistence (immediate for sync backends, coalesced for async ones), and
// broadcasts a payloadless change notification.
//
// Construct one Store per backend and pass it by reference; there is no
// module-level instance.
type Store struct {
	mu           sync.RWMutex
	state        catalog.State
	dirty        bool
	backend      catalog.Backend
	norm         *catalog.Normalizer
	flush        *coalescer
	listeners    map[int]func()
	nextListener int
	hydrated     chan struct{}
	opts         storeOptions
}

// New constructs a store over the given backend. A nil backend yields a purely
// in-memory store.
//
// Sync backends hydrate before New returns. Async backends hydrate in the
// background: until hydration resolves, readers observe the seed document (or
// any mutations already applied); this stale window is part of the contract.
func New(backend catalog.Backend, opts ...Option) *Store {
	options := defaultStoreOptions()
	for _, opt := range opts {
		opt(&options)
	}
	norm := catalog.NewNormalizer()
	norm.Now = options.clock.Now
	if options.newID != nil {
		norm.NewID = options.newID
	}

	s := &Store{
		state:     catalog.Seed(),
		backend:   backend,
		norm:      norm,
		listeners: make(map[int]func()),
		hydrated:  make(chan struct{}),
		opts:      options,
	}

	if backend == nil {
		close(s.hydrated)
		return s
	}

	switch backend.Mode() {
	case catalog.ModeAsync:
		s.flush = newCoalescer(options.coalesceDelay, s.writeThrough)
		go s.hydrate()
	default:
		s.adoptLoaded(context.Background())
		close(s.hydrated)
	}
	return s
}

// Read returns a deep-cloned snapshot of the current document.
func (s *Store) Read() catalog.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return catalog.CloneState(s.state)
}

// Subscribe registers a payloadless change callback and returns its
// unsubscribe function. Callbacks fire after every successful mutation and
// after background hydration; a panicking callback is isolated and does not
// stop the others.
func (s *Store) Subscribe(fn func()) func() {
	if fn == nil {
		return func() {}
	}
	s.mu.Lock()
	id := s.nextListener
	s.nextListener++
	s.listeners[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// WaitForHydration blocks until the backend document has been adopted (or the
// store was constructed without one), or until ctx is done.
func (s *Store) WaitForHydration(ctx context.Context) error {
	select {
	case <-s.hydrated:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close flushes any coalesced write and releases the backend.
func (s *Store) Close() error {
	if s.flush != nil {
		s.flush.Stop()
	}
	if s.backend == nil {
		return nil
	}
	return s.backend.Close()
}

// Backend exposes the configured backend, mainly for integration tests.
func (s *Store) Backend() catalog.Backend { return s.backend }

// FlushPending forces any coalesced write to the backend immediately. No-op
// for sync backends.
func (s *Store) FlushPending() {
	if s.flush != nil {
		s.flush.Flush()
	}
}

// hydrate populates the cache from an async backend. If a mutation lands
// before the load resolves, the loaded document is discarded: the mutation
// already holds the newer state and has scheduled its own write.
func (s *Store) hydrate() {
	defer close(s.hydrated)
	st, ok, err := s.backend.Load(context.Background())
	if err != nil {
		s.opts.logger.Warn("catalog hydration failed, serving seed state",
			"driver", string(s.backend.Driver()), "error", err)
		return
	}
	if !ok {
		return
	}
	s.mu.Lock()
	if s.dirty {
		s.mu.Unlock()
		s.opts.logger.Debug("catalog hydration superseded by earlier mutation",
			"driver", string(s.backend.Driver()))
		return
	}
	s.state = st
	s.mu.Unlock()
	s.notifyAll()
}

// adoptLoaded performs synchronous hydration for sync backends.
func (s *Store) adoptLoaded(ctx context.Context) {
	st, ok, err := s.backend.Load(ctx)
	if err != nil {
		s.opts.logger.Warn("catalog load failed, serving seed state",
			"driver", string(s.backend.Driver()), "error", err)
		return
	}
	if ok {
		s.state = st
	}
}

// mutate runs fn against a cloned document. When fn reports a change the
// clone becomes the cache, persistence is triggered, and subscribers are
// notified. The boolean result is fn's own: false means no-op (invalid id,
// out-of-range index) and leaves every observable unchanged.
func (s *Store) mutate(op string, fn func(st *catalog.State) bool) bool {
	ctx, span := s.opts.tracer.Start(context.Background(), op)
	start := s.opts.clock.Now()

	s.mu.Lock()
	next := catalog.CloneState(s.state)
	changed := fn(&next)
	if changed {
		s.state = next
		s.dirty = true
	}
	s.mu.Unlock()

	if changed {
		s.persist(ctx, next)
		s.notifyAll()
	}

	s.opts.metrics.Observe(ctx, op, changed, s.opts.clock.Now().Sub(start))
	span.End(nil)
	return changed
}

// persist hands the new state to the backend. Failures are soft: the cache
// stays authoritative and the error is logged, never surfaced to the mutator.
func (s *Store) persist(ctx context.Context, st catalog.State) {
	if s.backend == nil {
		return
	}
	if s.flush != nil {
		s.flush.Schedule(st)
		return
	}
	if err := s.backend.Save(ctx, st); err != nil {
		s.opts.logger.Warn("catalog persist failed, in-memory state remains authoritative",
			"driver", string(s.backend.Driver()), "error", err)
		s.opts.metrics.Observe(ctx, "persist", false, 0)
	}
}

// writeThrough is the coalescer's flush target for async backends.
func (s *Store) writeThrough(st catalog.State) {
	ctx := context.Background()
	if err := s.backend.Save(ctx, st); err != nil {
		s.opts.logger.Warn("catalog flush failed, in-memory state remains authoritative",
			"driver", string(s.backend.Driver()), "error", err)
		s.opts.metrics.Observe(ctx, "persist", false, 0)
	}
}

func (s *Store) notifyAll() {
	s.mu.RLock()
	callbacks := make([]func(), 0, len(s.listeners))
	for _, fn := range s.listeners {
		callbacks = append(callbacks, fn)
	}
	s.mu.RUnlock()
	for _, fn := range callbacks {
		s.invoke(fn)
	}
}

func (s *Store) invoke(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			s.opts.logger.Error("catalog change listener panicked", "panic", r)
		}
	}()
	fn()
}

func (s *Store) nowMillis() int64 {
	return s.opts.clock.Now().UnixMilli()
}
