package store

import (
	"reflect"
	"testing"

	"rackcatalog/pkg/catalog"
)

func TestEnsureCategoryRejectsBlank(t *testing.T) {
	s := newTestStore(t, nil)
	if s.EnsureCategory("  ") {
		t.Fatalf("blank category accepted")
	}
	if s.EnsureMake("AV", "\t") || s.EnsureMake(" ", "Yamaha") {
		t.Fatalf("blank make arguments accepted")
	}
	if s.EnsureModel("AV", "Yamaha", "") {
		t.Fatalf("blank model accepted")
	}
}

func TestEnsureModelCreatesParents(t *testing.T) {
	s := newTestStore(t, nil)
	if !s.EnsureModel("Lighting", "Chauvet", "Maverick") {
		t.Fatalf("EnsureModel failed")
	}
	st := s.Read()
	if !reflect.DeepEqual(st.Makes["Lighting"], []string{"Chauvet"}) {
		t.Fatalf("makes = %v", st.Makes["Lighting"])
	}
	if !reflect.DeepEqual(st.Models["Lighting"]["Chauvet"], []string{"Maverick"}) {
		t.Fatalf("models = %v", st.Models["Lighting"]["Chauvet"])
	}
}

func TestDeleteCategoryRemovesSubtreesButKeepsProducts(t *testing.T) {
	s := newTestStore(t, nil)
	p := s.UpsertProduct(catalog.Product{Name: "Par", Category: "Lighting", Make: "Chauvet", Model: "Par64"})

	if !s.DeleteCategory("Lighting") {
		t.Fatalf("DeleteCategory failed")
	}
	st := s.Read()
	if _, ok := st.Makes["Lighting"]; ok {
		t.Fatalf("makes subtree survived: %v", st.Makes)
	}
	if _, ok := st.Models["Lighting"]; ok {
		t.Fatalf("models subtree survived: %v", st.Models)
	}
	// Category deletion does not cascade to products.
	if _, ok := s.GetProduct(p.ID); !ok {
		t.Fatalf("product wrongly cascaded on category delete")
	}
	if s.DeleteCategory("Lighting") {
		t.Fatalf("second delete reported change")
	}
}

func TestDeleteMakeKeepsProducts(t *testing.T) {
	s := newTestStore(t, nil)
	p := s.UpsertProduct(catalog.Product{Name: "DM7", Category: "AV", Make: "Yamaha", Model: "DM7"})

	if !s.DeleteMake("AV", "Yamaha") {
		t.Fatalf("DeleteMake failed")
	}
	st := s.Read()
	if len(st.Makes["AV"]) != 0 {
		t.Fatalf("make survived: %v", st.Makes["AV"])
	}
	if _, ok := st.Models["AV"]["Yamaha"]; ok {
		t.Fatalf("model subtree survived: %v", st.Models["AV"])
	}
	if _, ok := s.GetProduct(p.ID); !ok {
		t.Fatalf("product wrongly cascaded on make delete")
	}
	if s.DeleteMake("AV", "Yamaha") {
		t.Fatalf("second delete reported change")
	}
}

func TestDeleteModelCascadesToProductsAndRacks(t *testing.T) {
	s := newTestStore(t, nil)
	doomed := s.UpsertProduct(catalog.Product{Name: "DM7", Category: "AV", Make: "Yamaha", Model: "DM7"})
	other := s.UpsertProduct(catalog.Product{Name: "CL5", Category: "AV", Make: "Yamaha", Model: "CL5"})
	rack := s.UpsertRack(catalog.Rack{Name: "FOH"})
	s.AddProductToRack(rack.ID, doomed.ID, 2)
	s.AddProductToRack(rack.ID, other.ID, 1)

	if !s.DeleteModel("AV", "Yamaha", "DM7") {
		t.Fatalf("DeleteModel failed")
	}
	if _, ok := s.GetProduct(doomed.ID); ok {
		t.Fatalf("product survived model delete")
	}
	if _, ok := s.GetProduct(other.ID); !ok {
		t.Fatalf("unrelated product cascaded")
	}
	got, _ := s.GetRack(rack.ID)
	if len(got.Items) != 1 || got.Items[0].ProductID != other.ID {
		t.Fatalf("rack items = %v, want doomed line pruned", got.Items)
	}
	st := s.Read()
	if !reflect.DeepEqual(st.Models["AV"]["Yamaha"], []string{"CL5"}) {
		t.Fatalf("models = %v", st.Models["AV"]["Yamaha"])
	}
}

func TestDeleteModelUnknownPathIsNoop(t *testing.T) {
	s := newTestStore(t, nil)
	if s.DeleteModel("AV", "Yamaha", "DM7") {
		t.Fatalf("delete of unknown model reported change")
	}
}
