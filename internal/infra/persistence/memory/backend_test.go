package memory

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"rackcatalog/pkg/catalog"
)

func TestEmptyBackendReportsNoDocument(t *testing.T) {
	b := NewBackend()
	st, ok, err := b.Load(context.Background())
	if err != nil || ok {
		t.Fatalf("load: ok=%t err=%v", ok, err)
	}
	if !reflect.DeepEqual(st, catalog.Seed()) {
		t.Fatalf("state = %+v, want seed", st)
	}
}

func TestSaveLoadDetached(t *testing.T) {
	b := NewBackend()
	ctx := context.Background()

	st := catalog.Seed()
	st.Categories = append(st.Categories, "Lighting")
	if err := b.Save(ctx, st); err != nil {
		t.Fatalf("save: %v", err)
	}
	st.Categories[0] = "mutated" // must not leak into the stored copy

	got, ok, err := b.Load(ctx)
	if err != nil || !ok {
		t.Fatalf("load: ok=%t err=%v", ok, err)
	}
	if got.Categories[0] != "AV" {
		t.Fatalf("stored state aliased caller slice: %v", got.Categories)
	}
	if b.SaveCount() != 1 {
		t.Fatalf("save count = %d", b.SaveCount())
	}
}

func TestInjectedFailures(t *testing.T) {
	b := NewBackend()
	b.FailLoads(errors.New("load boom"))
	if _, _, err := b.Load(context.Background()); err == nil {
		t.Fatalf("injected load failure not surfaced")
	}
	b.FailSaves(errors.New("save boom"))
	if err := b.Save(context.Background(), catalog.Seed()); err == nil {
		t.Fatalf("injected save failure not surfaced")
	}
	if b.SaveCount() != 0 {
		t.Fatalf("failed save counted")
	}
}

func TestModes(t *testing.T) {
	if NewBackend().Mode() != catalog.ModeSync {
		t.Fatalf("default backend not sync")
	}
	if NewAsyncBackend().Mode() != catalog.ModeAsync {
		t.Fatalf("async backend not async")
	}
}
