package store

import (
	"fmt"
	"os"

	"rackcatalog/internal/infra/persistence/file"
	"rackcatalog/internal/infra/persistence/legacy"
	"rackcatalog/internal/infra/persistence/memory"
	"rackcatalog/internal/infra/persistence/postgres"
	"rackcatalog/internal/infra/persistence/sqlite"
	"rackcatalog/pkg/catalog"
)

// OpenBackend selects a persistence backend using environment variables.
// Defaults to the file backend when unset.
//
//	RACKCATALOG_STORAGE_DRIVER: memory|file|sqlite|postgres (default file)
//	RACKCATALOG_DATA_DIR: directory for the file backend (default ./data)
//	RACKCATALOG_SQLITE_PATH: path to sqlite file (default ./rackcatalog.db)
//	RACKCATALOG_POSTGRES_DSN: postgres DSN when driver=postgres
//	RACKCATALOG_LEGACY_PATH: optional legacy single-key document adopted once
func OpenBackend() (catalog.Backend, error) {
	driver := os.Getenv("RACKCATALOG_STORAGE_DRIVER")
	if driver == "" {
		driver = string(catalog.DriverFile)
	}
	var (
		backend catalog.Backend
		err     error
	)
	switch catalog.Driver(driver) {
	case catalog.DriverMemory:
		backend = memory.NewBackend()
	case catalog.DriverFile:
		backend = file.NewBackend(os.Getenv("RACKCATALOG_DATA_DIR"))
	case catalog.DriverSQLite:
		backend, err = sqlite.NewBackend(os.Getenv("RACKCATALOG_SQLITE_PATH"))
	case catalog.DriverPostgres:
		backend, err = postgres.NewBackend(os.Getenv("RACKCATALOG_POSTGRES_DSN"))
	default:
		return nil, fmt.Errorf("unknown storage driver %s", driver)
	}
	if err != nil {
		return nil, err
	}
	if path := os.Getenv("RACKCATALOG_LEGACY_PATH"); path != "" {
		backend = legacy.WithMigration(backend, legacy.NewFileStore(path))
	}
	return backend, nil
}
