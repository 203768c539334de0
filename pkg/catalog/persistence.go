package catalog

import "context"

// Mode describes how a backend participates in the store's write path.
type Mode string

const (
	// ModeSync backends complete Save before the mutation returns; hydration
	// happens before the store serves its first read.
	ModeSync Mode = "sync"
	// ModeAsync backends are written through the store's coalescer; hydration
	// runs in the background while readers observe the seed document.
	ModeAsync Mode = "async"
)

// Driver identifies a concrete persistent backend implementation.
type Driver string

const (
	DriverMemory   Driver = "memory"   // in-memory only (tests / ephemeral)
	DriverFile     Driver = "file"     // JSON document on the local filesystem
	DriverSQLite   Driver = "sqlite"   // single-key snapshot in an embedded sqlite table
	DriverPostgres Driver = "postgres" // single-key JSONB snapshot in PostgreSQL
)

// Backend is the minimal abstraction over durable document storage. The store
// depends only on this interface; the concrete driver is injected once at
// construction.
type Backend interface {
	// Load returns the persisted document. The boolean reports whether a
	// document existed; implementations return (Seed(), false, nil) for an
	// empty backend so callers never observe a zero State.
	Load(ctx context.Context) (State, bool, error)
	// Save overwrites the persisted document with the full state.
	Save(ctx context.Context, st State) error
	Mode() Mode
	Driver() Driver
	Close() error
}

// LegacyStore is a size-constrained single-key store holding a JSON-encoded
// document of any prior schema version. It is read at most once during
// hydration and then deleted; it is never rewritten.
type LegacyStore interface {
	Get(ctx context.Context) ([]byte, bool, error)
	Delete(ctx context.Context) error
}
