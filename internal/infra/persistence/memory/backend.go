// Package memory provides an in-memory catalog backend used for tests and
// ephemeral environments.
package memory

import (
	"context"
	"sync"

	"rackcatalog/pkg/catalog"
)

var _ catalog.Backend = (*Backend)(nil)

// Backend keeps the persisted document in memory. Mode is sync by default;
// NewAsyncBackend yields the async flavor so coalescing paths can be
// exercised without a real database.
type Backend struct {
	mu      sync.Mutex
	mode    catalog.Mode
	state   catalog.State
	exists  bool
	saves   int
	loadErr error
	saveErr error
}

// NewBackend constructs an empty synchronous in-memory backend.
func NewBackend() *Backend {
	return &Backend{mode: catalog.ModeSync}
}

// NewAsyncBackend constructs an empty asynchronous in-memory backend.
func NewAsyncBackend() *Backend {
	return &Backend{mode: catalog.ModeAsync}
}

// Load returns the stored document, or the seed document when none exists.
func (b *Backend) Load(context.Context) (catalog.State, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.loadErr != nil {
		return catalog.Seed(), false, b.loadErr
	}
	if !b.exists {
		return catalog.Seed(), false, nil
	}
	return catalog.CloneState(b.state), true, nil
}

// Save overwrites the stored document.
func (b *Backend) Save(_ context.Context, st catalog.State) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.saveErr != nil {
		return b.saveErr
	}
	b.state = catalog.CloneState(st)
	b.exists = true
	b.saves++
	return nil
}

func (b *Backend) Mode() catalog.Mode     { return b.mode }
func (b *Backend) Driver() catalog.Driver { return catalog.DriverMemory }
func (b *Backend) Close() error           { return nil }

// Seed pre-populates the backend with a document, as if a prior session had
// persisted it.
func (b *Backend) Seed(st catalog.State) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = catalog.CloneState(st)
	b.exists = true
}

// SaveCount reports how many Save calls succeeded.
func (b *Backend) SaveCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.saves
}

// LastSaved returns the most recently persisted document.
func (b *Backend) LastSaved() (catalog.State, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.exists {
		return catalog.Seed(), false
	}
	return catalog.CloneState(b.state), true
}

// FailLoads makes subsequent loads return err.
func (b *Backend) FailLoads(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.loadErr = err
}

// FailSaves makes subsequent saves return err.
func (b *Backend) FailSaves(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.saveErr = err
}
