package legacy

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"rackcatalog/internal/infra/persistence/memory"
	"rackcatalog/pkg/catalog"
)

const legacyDoc = `{"categories":["AV"],"subcats":{"AV":["Mixers"]},"products":[{"name":"DM7","subcategory":"Mixers"}]}`

func TestLoadAdoptsLegacyDocumentOnce(t *testing.T) {
	inner := memory.NewBackend()
	store := NewMemoryStore([]byte(legacyDoc))
	m := WithMigration(inner, store)
	ctx := context.Background()

	st, ok, err := m.Load(ctx)
	if err != nil || !ok {
		t.Fatalf("load: ok=%t err=%v", ok, err)
	}
	if st.SchemaVersion != catalog.SchemaVersion || len(st.Products) != 1 {
		t.Fatalf("adopted state = %+v", st)
	}
	if store.Exists() {
		t.Fatalf("legacy key not deleted after successful adoption")
	}
	// The adopted document was written through to the new backend.
	persisted, ok := inner.LastSaved()
	if !ok || len(persisted.Products) != 1 {
		t.Fatalf("inner backend state = %+v", persisted)
	}

	// A second load comes from the inner backend, not the retired store.
	again, ok, err := m.Load(ctx)
	if err != nil || !ok {
		t.Fatalf("second load: ok=%t err=%v", ok, err)
	}
	if len(again.Products) != 1 {
		t.Fatalf("second load state = %+v", again)
	}
}

func TestLoadPrefersInnerDocument(t *testing.T) {
	inner := memory.NewBackend()
	seeded := catalog.Seed()
	seeded.Categories = append(seeded.Categories, "Lighting")
	inner.Seed(seeded)
	store := NewMemoryStore([]byte(legacyDoc))
	m := WithMigration(inner, store)

	st, ok, err := m.Load(context.Background())
	if err != nil || !ok {
		t.Fatalf("load: ok=%t err=%v", ok, err)
	}
	if len(st.Categories) != 2 {
		t.Fatalf("inner document not preferred: %v", st.Categories)
	}
	if !store.Exists() {
		t.Fatalf("legacy key must survive when inner backend already holds a document")
	}
}

func TestLoadKeepsLegacyKeyWhenWriteThroughFails(t *testing.T) {
	inner := memory.NewBackend()
	inner.FailSaves(errors.New("disk full"))
	store := NewMemoryStore([]byte(legacyDoc))
	m := WithMigration(inner, store)

	st, ok, err := m.Load(context.Background())
	if err != nil || !ok {
		t.Fatalf("load: ok=%t err=%v", ok, err)
	}
	if len(st.Products) != 1 {
		t.Fatalf("adopted state = %+v", st)
	}
	// Adoption still serves the document, but the key must survive for the
	// next session to retry.
	if !store.Exists() {
		t.Fatalf("legacy key deleted despite failed write-through")
	}
}

func TestSaveClearsLegacyKey(t *testing.T) {
	inner := memory.NewBackend()
	inner.Seed(catalog.Seed())
	store := NewMemoryStore([]byte(legacyDoc))
	m := WithMigration(inner, store)

	if err := m.Save(context.Background(), catalog.Seed()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if store.Exists() {
		t.Fatalf("legacy key survived a write through the new backend")
	}
}

func TestSaveFailureKeepsLegacyKey(t *testing.T) {
	inner := memory.NewBackend()
	inner.FailSaves(errors.New("disk full"))
	store := NewMemoryStore([]byte(legacyDoc))
	m := WithMigration(inner, store)

	if err := m.Save(context.Background(), catalog.Seed()); err == nil {
		t.Fatalf("save error swallowed")
	}
	if !store.Exists() {
		t.Fatalf("legacy key deleted despite failed save")
	}
}

func TestEmptyLegacyStoreIsNoop(t *testing.T) {
	inner := memory.NewBackend()
	m := WithMigration(inner, NewMemoryStore(nil))
	_, ok, err := m.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if ok {
		t.Fatalf("empty stores reported a document")
	}
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.json")
	s := NewFileStore(path)
	ctx := context.Background()

	if _, ok, err := s.Get(ctx); err != nil || ok {
		t.Fatalf("missing file: ok=%t err=%v", ok, err)
	}
	if err := s.Delete(ctx); err != nil {
		t.Fatalf("delete of missing file: %v", err)
	}

	if err := os.WriteFile(path, []byte(legacyDoc), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	data, ok, err := s.Get(ctx)
	if err != nil || !ok || string(data) != legacyDoc {
		t.Fatalf("get: ok=%t err=%v data=%q", ok, err, data)
	}
	if err := s.Delete(ctx); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("file survived delete: %v", err)
	}
}

func TestMigratorPassesThroughMetadata(t *testing.T) {
	inner := memory.NewBackend()
	m := WithMigration(inner, NewMemoryStore(nil))
	if m.Mode() != inner.Mode() || m.Driver() != inner.Driver() {
		t.Fatalf("mode/driver not passed through")
	}
	if m.Inner() != catalog.Backend(inner) {
		t.Fatalf("Inner() does not expose wrapped backend")
	}
}
