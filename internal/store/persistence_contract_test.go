package store

import (
	"go/types"
	"testing"

	"golang.org/x/tools/go/packages"
)

// TestBackendImplementationsHardening ensures only sanctioned persistence
// packages provide concrete implementations of the catalog.Backend interface.
// This guards against additional backends appearing outside the vetted
// locations without an explicit test update.
func TestBackendImplementationsHardening(t *testing.T) {
	cfg := &packages.Config{Mode: packages.NeedName | packages.NeedTypes, Tests: true}
	pkgs, err := packages.Load(cfg, "rackcatalog/...")
	if err != nil {
		t.Fatalf("load packages: %v", err)
	}

	var backend *types.Interface
	for _, p := range pkgs {
		if p.PkgPath == "rackcatalog/pkg/catalog" {
			obj := p.Types.Scope().Lookup("Backend")
			if obj == nil {
				t.Fatalf("catalog.Backend not found")
			}
			iface, ok := obj.Type().Underlying().(*types.Interface)
			if !ok {
				t.Fatalf("catalog.Backend is not an interface")
			}
			backend = iface
		}
	}
	if backend == nil {
		t.Fatalf("failed to resolve Backend interface")
	}

	allowed := map[string]struct{}{
		"rackcatalog/internal/infra/persistence/memory":   {},
		"rackcatalog/internal/infra/persistence/file":     {},
		"rackcatalog/internal/infra/persistence/sqlite":   {},
		"rackcatalog/internal/infra/persistence/postgres": {},
		"rackcatalog/internal/infra/persistence/legacy":   {},
	}
	var unexpected []string
	for _, p := range pkgs {
		if p.Types == nil || p.Types.Scope() == nil {
			continue
		}
		for _, name := range p.Types.Scope().Names() {
			obj := p.Types.Scope().Lookup(name)
			named, ok := obj.Type().(*types.Named)
			if !ok {
				continue
			}
			if _, ok := named.Underlying().(*types.Struct); !ok {
				continue
			}
			if types.Implements(types.NewPointer(named), backend) {
				if _, ok := allowed[p.PkgPath]; !ok {
					unexpected = append(unexpected, p.PkgPath+"."+name)
				}
			}
		}
	}
	if len(unexpected) > 0 {
		t.Fatalf("unexpected Backend implementations (update the allowed list when intentionally adding a backend): %v", unexpected)
	}
}
