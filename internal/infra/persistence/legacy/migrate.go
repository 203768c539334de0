// Package legacy adopts a document from a size-constrained single-key store
// exactly once, then retires that store. Wrapping any backend with
// WithMigration guarantees the legacy store is never the system of record for
// more than one session: the key is deleted after a successful migration and
// cleared (never rewritten) after any subsequent write through the new
// backend.
package legacy

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"rackcatalog/pkg/catalog"
)

var _ catalog.Backend = (*Migrator)(nil)

// Migrator decorates a backend with one-time legacy adoption.
type Migrator struct {
	inner  catalog.Backend
	legacy catalog.LegacyStore
	norm   *catalog.Normalizer
}

// WithMigration wraps backend so its first empty Load consults the legacy
// store.
func WithMigration(backend catalog.Backend, legacy catalog.LegacyStore) *Migrator {
	return &Migrator{inner: backend, legacy: legacy, norm: catalog.NewNormalizer()}
}

// Load defers to the inner backend. When the inner backend holds no document
// and the legacy key does, the legacy document is normalized, adopted, and
// written through to the inner backend; the key is deleted only once that
// write succeeds.
func (m *Migrator) Load(ctx context.Context) (catalog.State, bool, error) {
	st, ok, err := m.inner.Load(ctx)
	if err != nil || ok {
		return st, ok, err
	}
	raw, found, err := m.legacy.Get(ctx)
	if err != nil {
		return st, false, fmt.Errorf("read legacy store: %w", err)
	}
	if !found {
		return st, false, nil
	}
	adopted := m.norm.NormalizeJSON(raw)
	if err := m.inner.Save(ctx, adopted); err == nil {
		_ = m.legacy.Delete(ctx)
	}
	return adopted, true, nil
}

// Save writes through to the inner backend and clears the legacy key on
// success. The legacy store is never rewritten.
func (m *Migrator) Save(ctx context.Context, st catalog.State) error {
	if err := m.inner.Save(ctx, st); err != nil {
		return err
	}
	_ = m.legacy.Delete(ctx)
	return nil
}

func (m *Migrator) Mode() catalog.Mode     { return m.inner.Mode() }
func (m *Migrator) Driver() catalog.Driver { return m.inner.Driver() }
func (m *Migrator) Close() error           { return m.inner.Close() }

// Inner exposes the wrapped backend for tests.
func (m *Migrator) Inner() catalog.Backend { return m.inner }

// FileStore is a LegacyStore reading a single JSON document from a flat file,
// the shape produced by the constrained single-key stores this package
// retires.
type FileStore struct {
	path string
}

// NewFileStore points at the legacy document path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Get reads the legacy document. A missing file reports no document.
func (s *FileStore) Get(context.Context) ([]byte, bool, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Delete removes the legacy document. Idempotent.
func (s *FileStore) Delete(context.Context) error {
	err := os.Remove(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// MemoryStore is a LegacyStore for tests.
type MemoryStore struct {
	data   []byte
	exists bool
}

// NewMemoryStore holds the given document; nil means empty.
func NewMemoryStore(data []byte) *MemoryStore {
	return &MemoryStore{data: data, exists: data != nil}
}

func (s *MemoryStore) Get(context.Context) ([]byte, bool, error) {
	if !s.exists {
		return nil, false, nil
	}
	return s.data, true, nil
}

func (s *MemoryStore) Delete(context.Context) error {
	s.data = nil
	s.exists = false
	return nil
}

// Exists reports whether the key still holds a document.
func (s *MemoryStore) Exists() bool { return s.exists }
