package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestModuleInternalForbiddenPredicate(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"rackcatalog/internal/store", true},
		{"rackcatalog/internal/infra/persistence/file", true},
		{"rackcatalog/pkg/catalog", false},
		{"crypto/internal/boring", false},
	}
	for _, c := range cases {
		if got := ModuleInternalForbidden(c.in); got != c.want {
			t.Fatalf("ModuleInternalForbidden(%q)=%v want %v", c.in, got, c.want)
		}
	}
}

func TestStoreImportForbiddenPredicate(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"rackcatalog/internal/store", true},
		{"rackcatalog/internal/blob", false},
		{"rackcatalog/pkg/catalog", false},
	}
	for _, c := range cases {
		if got := StoreImportForbidden(c.in); got != c.want {
			t.Fatalf("StoreImportForbidden(%q)=%v want %v", c.in, got, c.want)
		}
	}
}

// TestAssertNoDirectImports exercises the success path by creating a tiny temp package with safe imports.
func TestAssertNoDirectImports(t *testing.T) {
	dir := t.TempDir()
	src := []byte("package tmp\nimport \"fmt\"\nfunc X(){fmt.Println(1)}")
	if err := os.WriteFile(filepath.Join(dir, "x.go"), src, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	AssertNoDirectImports(t, dir, func(string) bool { return false }, "none")
}

func TestAssertNoDirectImportsReportsViolation(t *testing.T) {
	dir := t.TempDir()
	src := []byte("package tmp\nimport _ \"rackcatalog/internal/store\"\n")
	if err := os.WriteFile(filepath.Join(dir, "x.go"), src, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	viols, err := directImportViolations(dir, StoreImportForbidden)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(viols) != 1 {
		t.Fatalf("violations = %v, want exactly one", viols)
	}
}

func TestTransitiveDependencyViolationsUsesListOutput(t *testing.T) {
	restore := goListDeps
	goListDeps = func(string) ([]byte, error) {
		return []byte("fmt\nrackcatalog/internal/store\n\n"), nil
	}
	defer func() { goListDeps = restore }()

	viols, _, err := transitiveDependencyViolations(".", StoreImportForbidden)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(viols) != 1 || viols[0] != "rackcatalog/internal/store" {
		t.Fatalf("violations = %v", viols)
	}
}

// TestAssertNoTransitiveDependency runs against the current package with a predicate
// that always returns false to exercise the go list path.
func TestAssertNoTransitiveDependency(t *testing.T) {
	AssertNoTransitiveDependency(t, ".", func(string) bool { return false }, "none")
}
