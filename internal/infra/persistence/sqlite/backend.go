// Package sqlite provides the asynchronous key-value catalog backend: the
// whole document stored as a JSON payload under a fixed key in an embedded
// sqlite table created on first open.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"rackcatalog/pkg/catalog"
)

var _ catalog.Backend = (*Backend)(nil)

const (
	defaultPath = "rackcatalog.db"
	documentKey = "catalog"
	// storeVersion is stamped into PRAGMA user_version on first open so a
	// future layout change can upgrade in place.
	storeVersion = 3
)

// Backend persists the catalog document as a single row in a key/payload
// table. Get/put style semantics: Load of a missing key reports no document,
// Save upserts the fixed key.
type Backend struct {
	db   *sql.DB
	path string
	norm *catalog.Normalizer
}

// NewBackend opens (creating if necessary) the sqlite database and ensures
// the state table exists.
func NewBackend(path string) (*Backend, error) {
	if path == "" {
		path = defaultPath
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS catalog_state (
		key TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create state table: %w", err)
	}
	var version int
	if err := db.QueryRow(`PRAGMA user_version`).Scan(&version); err == nil && version == 0 {
		_, _ = db.Exec(fmt.Sprintf(`PRAGMA user_version = %d`, storeVersion))
	}
	return &Backend{db: db, path: path, norm: catalog.NewNormalizer()}, nil
}

// Load fetches and normalizes the document under the fixed key.
func (b *Backend) Load(ctx context.Context) (catalog.State, bool, error) {
	var payload []byte
	err := b.db.QueryRowContext(ctx, `SELECT payload FROM catalog_state WHERE key = ?`, documentKey).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.Seed(), false, nil
	}
	if err != nil {
		return catalog.Seed(), false, fmt.Errorf("select state: %w", err)
	}
	return b.norm.NormalizeJSON(payload), true, nil
}

// Save upserts the document under the fixed key.
func (b *Backend) Save(ctx context.Context, st catalog.State) error {
	payload, err := marshalState(st)
	if err != nil {
		return err
	}
	if _, err := b.db.ExecContext(ctx,
		`INSERT INTO catalog_state(key, payload) VALUES(?, ?)
		 ON CONFLICT(key) DO UPDATE SET payload = excluded.payload`,
		documentKey, payload); err != nil {
		return fmt.Errorf("upsert state: %w", err)
	}
	return nil
}

func (b *Backend) Mode() catalog.Mode     { return catalog.ModeAsync }
func (b *Backend) Driver() catalog.Driver { return catalog.DriverSQLite }

// Close releases the database handle.
func (b *Backend) Close() error { return b.db.Close() }

// DB exposes the underlying sql.DB for integration testing hooks.
func (b *Backend) DB() *sql.DB { return b.db }

// Path returns the configured database path.
func (b *Backend) Path() string { return b.path }

func marshalState(st catalog.State) ([]byte, error) {
	payload, err := json.Marshal(st)
	if err != nil {
		return nil, fmt.Errorf("encode catalog: %w", err)
	}
	return payload, nil
}
