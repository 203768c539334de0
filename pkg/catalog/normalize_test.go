package catalog

import (
	"encoding/json"
	"fmt"
	"reflect"
	"testing"
	"time"
)

func testNormalizer() *Normalizer {
	seq := 0
	return &Normalizer{
		NewID: func() string {
			seq++
			return fmt.Sprintf("id-%d", seq)
		},
		Now: func() time.Time { return time.UnixMilli(1700000000000).UTC() },
	}
}

func TestNormalizeJSONInvalidYieldsSeed(t *testing.T) {
	n := testNormalizer()
	for _, raw := range []string{"", "{", "not json", "\x00"} {
		if got := n.NormalizeJSON([]byte(raw)); !reflect.DeepEqual(got, Seed()) {
			t.Fatalf("NormalizeJSON(%q) = %+v, want seed", raw, got)
		}
	}
}

func TestNormalizeNonObjectYieldsSeed(t *testing.T) {
	n := testNormalizer()
	for _, raw := range []any{nil, "doc", 42.0, []any{"a"}, true} {
		if got := n.Normalize(raw); !reflect.DeepEqual(got, Seed()) {
			t.Fatalf("Normalize(%v) = %+v, want seed", raw, got)
		}
	}
}

func TestNormalizeLegacyDocument(t *testing.T) {
	n := testNormalizer()
	doc := map[string]any{
		"categories": []any{"AV", "Lighting"},
		"subcats": map[string]any{
			"AV":       []any{"Mixers", "Speakers"},
			"Lighting": []any{"Moving Head"},
		},
		"products": []any{
			map[string]any{
				"name":        "DM7",
				"category":    "AV",
				"subcategory": "Mixers",
				"width":       90.0,
				"height":      30.0,
				"length":      60.0,
			},
		},
	}

	st := n.Normalize(doc)

	if st.SchemaVersion != SchemaVersion {
		t.Fatalf("schema version = %d, want %d", st.SchemaVersion, SchemaVersion)
	}
	if want := []string{"AV", "Lighting"}; !reflect.DeepEqual(st.Categories, want) {
		t.Fatalf("categories = %v, want %v", st.Categories, want)
	}
	for _, cat := range st.Categories {
		if want := []string{DefaultMake}; !reflect.DeepEqual(st.Makes[cat], want) {
			t.Fatalf("makes[%s] = %v, want %v", cat, st.Makes[cat], want)
		}
	}
	if want := []string{"Mixers", "Speakers"}; !reflect.DeepEqual(st.Models["AV"][DefaultMake], want) {
		t.Fatalf("models[AV][Generic] = %v, want %v", st.Models["AV"][DefaultMake], want)
	}

	if len(st.Products) != 1 {
		t.Fatalf("products = %d, want 1", len(st.Products))
	}
	p := st.Products[0]
	if p.Make != DefaultMake {
		t.Fatalf("make = %q, want %q", p.Make, DefaultMake)
	}
	if p.Model != "Mixers" {
		t.Fatalf("model = %q, want Mixers (from subcategory)", p.Model)
	}
	if p.Dims != (Dims{W: 90, H: 30, L: 60}) {
		t.Fatalf("dims = %+v, want legacy aliases resolved", p.Dims)
	}
	if p.ID == "" || p.UpdatedAt <= 0 {
		t.Fatalf("expected generated id and stamped updatedAt, got %+v", p)
	}
	if len(st.Racks) != 0 {
		t.Fatalf("legacy migration produced racks: %v", st.Racks)
	}
}

func TestNormalizeLegacyProductWithoutCategory(t *testing.T) {
	n := testNormalizer()
	st := n.Normalize(map[string]any{
		"categories": []any{"Lighting"},
		"products":   []any{map[string]any{"name": "Par"}},
	})
	if st.Products[0].Category != "Lighting" {
		t.Fatalf("category = %q, want first document category", st.Products[0].Category)
	}
	if st.Products[0].Model != DefaultModel {
		t.Fatalf("model = %q, want %q", st.Products[0].Model, DefaultModel)
	}
	// The migrated product's taxonomy path must exist.
	if !containsString(st.Models["Lighting"][DefaultMake], DefaultModel) {
		t.Fatalf("models[Lighting][Generic] = %v, missing %q", st.Models["Lighting"][DefaultMake], DefaultModel)
	}
}

func TestNormalizeV3AbsentCategoriesFallBackToDefaults(t *testing.T) {
	n := testNormalizer()
	st := n.Normalize(map[string]any{"schemaVersion": 3.0})
	if want := []string{DefaultCategory}; !reflect.DeepEqual(st.Categories, want) {
		t.Fatalf("categories = %v, want %v", st.Categories, want)
	}
}

func TestNormalizeV2AbsentCategoriesStayEmpty(t *testing.T) {
	n := testNormalizer()
	st := n.Normalize(map[string]any{"schemaVersion": 2.0})
	if len(st.Categories) != 0 {
		t.Fatalf("categories = %v, want empty for v2 copy", st.Categories)
	}
	if st.SchemaVersion != SchemaVersion {
		t.Fatalf("schema version = %d, want %d", st.SchemaVersion, SchemaVersion)
	}
}

func TestNormalizeDeduplicatesByID(t *testing.T) {
	n := testNormalizer()
	st := n.Normalize(map[string]any{
		"schemaVersion": 3.0,
		"products": []any{
			map[string]any{"id": "p1", "name": "first"},
			map[string]any{"id": "p1", "name": "second"},
			"not a product",
		},
		"racks": []any{
			map[string]any{"id": "r1", "name": "A"},
			map[string]any{"id": "r1", "name": "B"},
		},
	})
	if len(st.Products) != 1 || st.Products[0].Name != "first" {
		t.Fatalf("products = %+v, want single first-wins entry", st.Products)
	}
	if len(st.Racks) != 1 || st.Racks[0].Name != "A" {
		t.Fatalf("racks = %+v, want single first-wins entry", st.Racks)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	n := testNormalizer()
	docs := []string{
		`{"categories":["AV"],"subcats":{"AV":["Mixers"]},"products":[{"name":"X","subcategory":"Mixers"}]}`,
		`{"schemaVersion":2,"categories":["AV","AV"," "],"products":[{"id":"p","rackU":99}]}`,
		`{"schemaVersion":3,"products":[{"id":"p","image":"a.png","typeTags":["amp","amp",""]}]}`,
		`[]`,
		`"scalar"`,
	}
	for _, doc := range docs {
		first := n.NormalizeJSON([]byte(doc))
		payload, err := json.Marshal(first)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		second := n.NormalizeJSON(payload)
		if !reflect.DeepEqual(first, second) {
			t.Fatalf("normalize not idempotent for %s:\nfirst:  %+v\nsecond: %+v", doc, first, second)
		}
	}
}

func TestCleanProductDefaults(t *testing.T) {
	n := testNormalizer()
	p := n.CleanProduct(Product{Name: "Bare"})
	if p.ID != "id-1" {
		t.Fatalf("id = %q, want generated id-1", p.ID)
	}
	if p.Category != DefaultCategory || p.Make != DefaultMake || p.Model != DefaultModel {
		t.Fatalf("classification = %q/%q/%q, want defaults", p.Category, p.Make, p.Model)
	}
	if p.UpdatedAt != 0 {
		t.Fatalf("updatedAt = %d, want passthrough of caller value", p.UpdatedAt)
	}
	if p.RackU != nil {
		t.Fatalf("rackU = %v, want nil for non-rack product", *p.RackU)
	}
}

func TestNormalizeStampsOnlyAbsentUpdatedAt(t *testing.T) {
	n := testNormalizer()
	st := n.Normalize(map[string]any{
		"schemaVersion": 3.0,
		"products": []any{
			map[string]any{"id": "absent"},
			map[string]any{"id": "zero", "updatedAt": 0.0},
			map[string]any{"id": "negative", "updatedAt": -5.0},
			map[string]any{"id": "bogus", "updatedAt": "not a number"},
		},
	})
	want := map[string]int64{
		"absent":   1700000000000,
		"zero":     0,
		"negative": -5,
		"bogus":    1700000000000,
	}
	for _, p := range st.Products {
		if p.UpdatedAt != want[p.ID] {
			t.Fatalf("updatedAt[%s] = %d, want %d", p.ID, p.UpdatedAt, want[p.ID])
		}
	}
}

func TestNormalizeLegacyKeepsExplicitUpdatedAt(t *testing.T) {
	n := testNormalizer()
	st := n.Normalize(map[string]any{
		"categories": []any{"AV"},
		"products":   []any{map[string]any{"id": "old", "name": "Old", "updatedAt": 0.0}},
	})
	if st.Products[0].UpdatedAt != 0 {
		t.Fatalf("updatedAt = %d, want explicit zero preserved through migration", st.Products[0].UpdatedAt)
	}
}

func TestCleanProductTrimsBlankClassification(t *testing.T) {
	n := testNormalizer()
	p := n.CleanProduct(Product{ID: "p", Category: "  ", Make: " Yamaha ", Model: "\t"})
	if p.Category != DefaultCategory {
		t.Fatalf("category = %q, want default after trim", p.Category)
	}
	if p.Make != "Yamaha" {
		t.Fatalf("make = %q, want trimmed Yamaha", p.Make)
	}
	if p.Model != DefaultModel {
		t.Fatalf("model = %q, want default after trim", p.Model)
	}
}

func TestCleanProductImages(t *testing.T) {
	n := testNormalizer()

	p := n.CleanProduct(Product{ID: "p", Images: []string{"", "a.png", "b.png", ""}})
	if !reflect.DeepEqual(p.Images, []string{"a.png", "b.png"}) {
		t.Fatalf("images = %v, want blanks dropped", p.Images)
	}
	if p.Image != "a.png" {
		t.Fatalf("cover = %q, want first image", p.Image)
	}

	// Legacy single-image documents promote image into images.
	p = n.CleanProduct(Product{ID: "p", Image: "legacy.png"})
	if !reflect.DeepEqual(p.Images, []string{"legacy.png"}) || p.Image != "legacy.png" {
		t.Fatalf("legacy fallback: images=%v image=%q", p.Images, p.Image)
	}

	p = n.CleanProduct(Product{ID: "p", Image: "stale.png", Images: []string{"real.png"}})
	if p.Image != "real.png" {
		t.Fatalf("cover = %q, want derived from images, not stale field", p.Image)
	}
}

func TestCleanProductRackUClamped(t *testing.T) {
	n := testNormalizer()
	for _, tc := range []struct{ in, want int }{{-3, MinRackU}, {0, MinRackU}, {1, 1}, {4, 4}, {5, 5}, {99, MaxRackU}} {
		u := tc.in
		p := n.CleanProduct(Product{ID: "p", RackU: &u})
		if p.RackU == nil || *p.RackU != tc.want {
			t.Fatalf("rackU %d cleaned to %v, want %d", tc.in, p.RackU, tc.want)
		}
	}
}

func TestCleanProductTypeTags(t *testing.T) {
	n := testNormalizer()
	p := n.CleanProduct(Product{ID: "p", TypeTags: []string{"amp", "", "amp", "dsp"}})
	if !reflect.DeepEqual(p.TypeTags, []string{"amp", "dsp"}) {
		t.Fatalf("typeTags = %v, want deduped without blanks", p.TypeTags)
	}
}

func TestCleanProductIsFixedPoint(t *testing.T) {
	n := testNormalizer()
	u := 7
	once := n.CleanProduct(Product{Name: " X ", Image: "a.png", RackU: &u, TypeTags: []string{"t", "t"}})
	twice := n.CleanProduct(CloneProduct(once))
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("CleanProduct not a fixed point:\nonce:  %+v\ntwice: %+v", once, twice)
	}
}

func TestCleanRack(t *testing.T) {
	n := testNormalizer()
	r := n.CleanRack(Rack{
		Items: []RackItem{
			{ProductID: "p1", Qty: 0},
			{ProductID: "", Qty: 5},
			{ProductID: "p2", Qty: 3},
		},
	})
	if r.ID != "id-1" || r.Name != DefaultRackName {
		t.Fatalf("rack defaults: id=%q name=%q", r.ID, r.Name)
	}
	if r.Width != DefaultRackWidth || r.Height != DefaultRackHeight || r.Length != DefaultRackLength {
		t.Fatalf("rack dims = %v/%v/%v, want defaults", r.Width, r.Height, r.Length)
	}
	want := []RackItem{{ProductID: "p1", Qty: 1}, {ProductID: "p2", Qty: 3}}
	if !reflect.DeepEqual(r.Items, want) {
		t.Fatalf("items = %v, want %v", r.Items, want)
	}
}

func TestDecodeProductNumericCoercion(t *testing.T) {
	n := testNormalizer()
	st := n.Normalize(map[string]any{
		"schemaVersion": "3",
		"products": []any{map[string]any{
			"id":        "p",
			"weight":    "12.5",
			"rackU":     "2",
			"updatedAt": 1000.0,
			"dims":      map[string]any{"w": 10.0, "h": 20.0, "l": 30.0},
		}},
	})
	p := st.Products[0]
	if p.Weight != 12.5 {
		t.Fatalf("weight = %v, want parsed 12.5", p.Weight)
	}
	if p.RackU == nil || *p.RackU != 2 {
		t.Fatalf("rackU = %v, want 2", p.RackU)
	}
	if p.UpdatedAt != 1000 {
		t.Fatalf("updatedAt = %d, want 1000", p.UpdatedAt)
	}
	if p.Dims != (Dims{W: 10, H: 20, L: 30}) {
		t.Fatalf("dims = %+v", p.Dims)
	}
}

func TestToNumberRejectsNonFinite(t *testing.T) {
	for _, v := range []any{"NaN", "+Inf", "-Inf", "abc", nil, []any{}} {
		if _, ok := toNumber(v); ok {
			t.Fatalf("toNumber(%v) accepted, want rejection", v)
		}
	}
}
