// Package postgres provides a Postgres-backed catalog backend mirroring the
// sqlite key/payload layout with a JSONB column.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver

	"rackcatalog/pkg/catalog"
)

var _ catalog.Backend = (*Backend)(nil)

const (
	defaultDriver = "pgx"
	defaultDSN    = "postgres://localhost/rackcatalog?sslmode=disable"
	documentKey   = "catalog"
)

var (
	sqlOpen = sql.Open
	openMu  sync.Mutex
)

// OverrideSQLOpen swaps the sqlOpen function for tests and returns a restore
// function.
func OverrideSQLOpen(fn func(driverName, dataSourceName string) (*sql.DB, error)) func() {
	openMu.Lock()
	defer openMu.Unlock()
	prev := sqlOpen
	sqlOpen = fn
	return func() {
		openMu.Lock()
		defer openMu.Unlock()
		sqlOpen = prev
	}
}

// Backend persists the catalog document as a single JSONB row.
type Backend struct {
	db   *sql.DB
	norm *catalog.Normalizer
}

// NewBackend opens a Postgres-backed backend using the provided DSN (falls
// back to defaultDSN) and ensures the state table exists.
func NewBackend(dsn string) (*Backend, error) {
	if dsn == "" {
		dsn = defaultDSN
	}
	openMu.Lock()
	db, err := sqlOpen(defaultDriver, dsn)
	openMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS catalog_state (
		key TEXT PRIMARY KEY,
		payload JSONB NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure state table: %w", err)
	}
	return &Backend{db: db, norm: catalog.NewNormalizer()}, nil
}

// Load fetches and normalizes the document under the fixed key.
func (b *Backend) Load(ctx context.Context) (catalog.State, bool, error) {
	var payload []byte
	err := b.db.QueryRowContext(ctx, `SELECT payload FROM catalog_state WHERE key = $1`, documentKey).Scan(&payload)
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
	payload, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	if _, err := b.db.ExecContext(ctx,
		`INSERT INTO catalog_state(key, payload) VALUES($1, $2)
		 ON CONFLICT(key) DO UPDATE SET payload = excluded.payload`,
		documentKey, payload); err != nil {
		return fmt.Errorf("upsert state: %w", err)
	}
	return nil
}

func (b *Backend) Mode() catalog.Mode     { return catalog.ModeAsync }
func (b *Backend) Driver() catalog.Driver { return catalog.DriverPostgres }

// Close releases the database handle.
func (b *Backend) Close() error { return b.db.Close() }

// DB exposes the underlying sql.DB for integration testing hooks.
func (b *Backend) DB() *sql.DB { return b.db }
