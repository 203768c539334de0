// Package file provides the synchronous filesystem catalog backend: a single
// pretty-printed JSON document under a data directory.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"rackcatalog/pkg/catalog"
)

var _ catalog.Backend = (*Backend)(nil)

const (
	defaultDir = "data"
	// DocumentName is the on-disk document filename.
	DocumentName = "products.db.json"
)

// Backend stores the catalog document at <dir>/products.db.json. Reads that
// fail for any reason (missing directory, unreadable file, malformed JSON)
// degrade to the seed document instead of propagating; the directory is
// recreated defensively before every write.
type Backend struct {
	dir  string
	norm *catalog.Normalizer
}

// NewBackend constructs a file backend rooted at dir (default "data").
func NewBackend(dir string) *Backend {
	if dir == "" {
		dir = defaultDir
	}
	return &Backend{dir: dir, norm: catalog.NewNormalizer()}
}

// Path returns the full document path.
func (b *Backend) Path() string { return filepath.Join(b.dir, DocumentName) }

// Load reads and normalizes the on-disk document. When the document is absent
// a freshly seeded one is written and returned, so a new environment starts
// with a valid file on disk.
func (b *Backend) Load(ctx context.Context) (catalog.State, bool, error) {
	if err := os.MkdirAll(b.dir, 0o750); err != nil && !errors.Is(err, fs.ErrExist) {
		return catalog.Seed(), false, nil
	}
	data, err := os.ReadFile(b.Path())
	if errors.Is(err, fs.ErrNotExist) {
		seeded := catalog.Seed()
		_ = b.Save(ctx, seeded)
		return seeded, true, nil
	}
	if err != nil {
		return catalog.Seed(), false, nil
	}
	return b.norm.NormalizeJSON(data), true, nil
}

// Save overwrites the document with pretty-printed JSON. The write goes
// through a temp file and rename so a crash never leaves a torn document.
func (b *Backend) Save(_ context.Context, st catalog.State) error {
	if err := os.MkdirAll(b.dir, 0o750); err != nil && !errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("create data dir: %w", err)
	}
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	tmp, err := os.CreateTemp(b.dir, ".tmp-catalog-*")
	if err != nil {
		return fmt.Errorf("create temp document: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp document: %w", err)
	}
	if err := os.Rename(tmp.Name(), b.Path()); err != nil {
		return fmt.Errorf("replace document: %w", err)
	}
	return nil
}

func (b *Backend) Mode() catalog.Mode     { return catalog.ModeSync }
func (b *Backend) Driver() catalog.Driver { return catalog.DriverFile }
func (b *Backend) Close() error           { return nil }
