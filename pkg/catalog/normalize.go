package catalog

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Normalizer converts arbitrary decoded documents into canonical
// current-version state. It is total: malformed input degrades to the seed
// document and never produces an error.
//
// The id generator and clock are injectable so tests can assert exact output;
// both cleaning functions are fixed points, which makes Normalize idempotent.
type Normalizer struct {
	NewID func() string
	Now   func() time.Time
}

// NewNormalizer returns a normalizer with uuid ids and the system clock.
func NewNormalizer() *Normalizer {
	return &Normalizer{
		NewID: uuid.NewString,
		Now:   func() time.Time { return time.Now().UTC() },
	}
}

// NormalizeJSON decodes raw bytes and normalizes the result. Invalid JSON
// yields the seed document.
func (n *Normalizer) NormalizeJSON(data []byte) State {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return Seed()
	}
	return n.Normalize(raw)
}

// Normalize maps any decoded document to canonical v3 state.
//
// Version 3 documents are shallow-merged into the seed defaults and every
// product and rack is re-cleaned; re-validating current data protects against
// partially written or hand-edited documents. Version 2 documents carry their
// taxonomy as-is (uniquified). Anything else takes the legacy migration path.
func (n *Normalizer) Normalize(raw any) State {
	m, ok := raw.(map[string]any)
	if !ok {
		return Seed()
	}
	version, _ := toNumber(m["schemaVersion"])
	switch int(version) {
	case 3:
		return n.normalizeTyped(m, true)
	case 2:
		return n.normalizeTyped(m, false)
	default:
		return n.migrateLegacy(m)
	}
}

// normalizeTyped handles v2/v3 documents, which share the current shape.
// mergeDefaults controls whether absent top-level keys fall back to the seed
// document (v3 shallow-merge) or to empty collections (v2 copy).
func (n *Normalizer) normalizeTyped(m map[string]any, mergeDefaults bool) State {
	st := State{SchemaVersion: SchemaVersion}

	if v, ok := m["categories"]; ok {
		st.Categories = uniqStrings(toStringSlice(v))
	} else if mergeDefaults {
		st.Categories = append([]string(nil), defaultCategories...)
	} else {
		st.Categories = []string{}
	}

	st.Makes = map[string][]string{}
	for cat, v := range toMap(m["makes"]) {
		cat = strings.TrimSpace(cat)
		if cat == "" {
			continue
		}
		st.Makes[cat] = uniqStrings(toStringSlice(v))
	}

	st.Models = map[string]map[string][]string{}
	for cat, v := range toMap(m["models"]) {
		cat = strings.TrimSpace(cat)
		if cat == "" {
			continue
		}
		byMake := map[string][]string{}
		for mk, names := range toMap(v) {
			mk = strings.TrimSpace(mk)
			if mk == "" {
				continue
			}
			byMake[mk] = uniqStrings(toStringSlice(names))
		}
		st.Models[cat] = byMake
	}

	st.Products = n.cleanProducts(toSlice(m["products"]))
	st.Racks = n.cleanRacks(toSlice(m["racks"]))
	return st
}

// migrateLegacy upgrades v1 (or unversioned) documents. Pre-v2 documents knew
// only categories and per-category "subcats"; every subcat becomes a model
// under the synthetic "Generic" make. Racks did not exist before v2.
func (n *Normalizer) migrateLegacy(m map[string]any) State {
	st := State{
		SchemaVersion: SchemaVersion,
		Categories:    uniqStrings(toStringSlice(m["categories"])),
		Makes:         map[string][]string{},
		Models:        map[string]map[string][]string{},
		Products:      []Product{},
		Racks:         []Rack{},
	}

	subcats := toMap(m["subcats"])
	for _, cat := range st.Categories {
		st.Makes[cat] = []string{DefaultMake}
		st.Models[cat] = map[string][]string{
			DefaultMake: uniqStrings(toStringSlice(subcats[cat])),
		}
	}

	seen := make(map[string]struct{})
	for _, raw := range toSlice(m["products"]) {
		pm, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		p, hasStamp := decodeProduct(pm)
		if p.Category = strings.TrimSpace(p.Category); p.Category == "" {
			if len(st.Categories) > 0 {
				p.Category = st.Categories[0]
			} else {
				p.Category = DefaultCategory
			}
		}
		if p.Make = strings.TrimSpace(p.Make); p.Make == "" {
			p.Make = DefaultMake
		}
		if p.Model = strings.TrimSpace(p.Model); p.Model == "" {
			if sub := strings.TrimSpace(toString(pm["subcategory"])); sub != "" {
				p.Model = sub
			} else {
				p.Model = DefaultModel
			}
		}
		EnsureModel(&st, p.Category, p.Make, p.Model)
		p = n.CleanProduct(p)
		if !hasStamp {
			p.UpdatedAt = n.Now().UnixMilli()
		}
		if _, dup := seen[p.ID]; dup {
			continue
		}
		seen[p.ID] = struct{}{}
		st.Products = append(st.Products, p)
	}
	return st
}

// CleanProduct coerces a product to canonical form: generated id, defaulted
// classification, deduplicated tags, derived cover image, and clamped rack
// units. updatedAt passes through untouched; stamping happens where products
// are decoded or mutated. Cleaning a clean product is a no-op.
func (n *Normalizer) CleanProduct(p Product) Product {
	if p.ID == "" {
		p.ID = n.NewID()
	}
	if p.Category = strings.TrimSpace(p.Category); p.Category == "" {
		p.Category = DefaultCategory
	}
	if p.Make = strings.TrimSpace(p.Make); p.Make == "" {
		p.Make = DefaultMake
	}
	if p.Model = strings.TrimSpace(p.Model); p.Model == "" {
		p.Model = DefaultModel
	}

	tags := make([]string, 0, len(p.TypeTags))
	seen := make(map[string]struct{}, len(p.TypeTags))
	for _, tag := range p.TypeTags {
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	p.TypeTags = tags

	images := make([]string, 0, len(p.Images))
	for _, img := range p.Images {
		if img != "" {
			images = append(images, img)
		}
	}
	if len(images) == 0 && p.Image != "" {
		images = append(images, p.Image)
	}
	p.Images = images
	if len(p.Images) > 0 {
		p.Image = p.Images[0]
	} else {
		p.Image = ""
	}

	if p.RackU != nil {
		u := *p.RackU
		if u < MinRackU {
			u = MinRackU
		}
		if u > MaxRackU {
			u = MaxRackU
		}
		p.RackU = &u
	}

	return p
}

// CleanRack coerces a rack to canonical form. Zero dimensions take the
// defaults; malformed line items are dropped and quantities floored at 1.
func (n *Normalizer) CleanRack(r Rack) Rack {
	if r.ID == "" {
		r.ID = n.NewID()
	}
	if r.Name = strings.TrimSpace(r.Name); r.Name == "" {
		r.Name = DefaultRackName
	}
	if r.Width == 0 {
		r.Width = DefaultRackWidth
	}
	if r.Height == 0 {
		r.Height = DefaultRackHeight
	}
	if r.Length == 0 {
		r.Length = DefaultRackLength
	}
	items := make([]RackItem, 0, len(r.Items))
	for _, item := range r.Items {
		if item.ProductID == "" {
			continue
		}
		if item.Qty < 1 {
			item.Qty = 1
		}
		items = append(items, item)
	}
	r.Items = items
	return r
}

func (n *Normalizer) cleanProducts(raw []any) []Product {
	products := make([]Product, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, v := range raw {
		pm, ok := v.(map[string]any)
		if !ok {
			continue
		}
		decoded, hasStamp := decodeProduct(pm)
		p := n.CleanProduct(decoded)
		if !hasStamp {
			p.UpdatedAt = n.Now().UnixMilli()
		}
		if _, dup := seen[p.ID]; dup {
			continue
		}
		seen[p.ID] = struct{}{}
		products = append(products, p)
	}
	return products
}

func (n *Normalizer) cleanRacks(raw []any) []Rack {
	racks := make([]Rack, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, v := range raw {
		rm, ok := v.(map[string]any)
		if !ok {
			continue
		}
		r := n.CleanRack(decodeRack(rm))
		if _, dup := seen[r.ID]; dup {
			continue
		}
		seen[r.ID] = struct{}{}
		racks = append(racks, r)
	}
	return racks
}

// decodeProduct maps loosely typed document fields onto a Product, resolving
// the legacy width/height/length dimension aliases. The second return reports
// whether the document carried a finite updatedAt; only when it did not do
// the decode paths stamp the current time, so an explicit zero or negative
// stamp survives normalization and still loses merges on recency.
func decodeProduct(m map[string]any) (Product, bool) {
	p := Product{
		ID:          toString(m["id"]),
		Name:        toString(m["name"]),
		Category:    toString(m["category"]),
		Make:        toString(m["make"]),
		Model:       toString(m["model"]),
		TypeTags:    toStringSlice(m["typeTags"]),
		Description: toString(m["description"]),
		Images:      toStringSlice(m["images"]),
		Image:       toString(m["image"]),
	}
	p.Weight, _ = toNumber(m["weight"])

	dims := toMap(m["dims"])
	if w, ok := toNumber(dims["w"]); ok {
		p.Dims.W = w
	} else if w, ok := toNumber(m["width"]); ok {
		p.Dims.W = w
	}
	if h, ok := toNumber(dims["h"]); ok {
		p.Dims.H = h
	} else if h, ok := toNumber(m["height"]); ok {
		p.Dims.H = h
	}
	if l, ok := toNumber(dims["l"]); ok {
		p.Dims.L = l
	} else if l, ok := toNumber(m["length"]); ok {
		p.Dims.L = l
	}

	if u, ok := toNumber(m["rackU"]); ok {
		v := int(u)
		p.RackU = &v
	}
	ts, hasStamp := toNumber(m["updatedAt"])
	if hasStamp {
		p.UpdatedAt = int64(ts)
	}
	return p, hasStamp
}

func decodeRack(m map[string]any) Rack {
	r := Rack{
		ID:   toString(m["id"]),
		Name: toString(m["name"]),
	}
	r.Width, _ = toNumber(m["width"])
	r.Height, _ = toNumber(m["height"])
	r.Length, _ = toNumber(m["length"])
	r.Weight, _ = toNumber(m["weight"])
	for _, v := range toSlice(m["items"]) {
		im, ok := v.(map[string]any)
		if !ok {
			continue
		}
		item := RackItem{ProductID: toString(im["productId"])}
		if q, ok := toNumber(im["qty"]); ok {
			item.Qty = int(q)
		}
		r.Items = append(r.Items, item)
	}
	return r
}

// --- lenient coercion helpers ---

func toMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func toSlice(v any) []any {
	s, _ := v.([]any)
	return s
}

func toString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case json.Number:
		return t.String()
	default:
		return ""
	}
}

func toStringSlice(v any) []string {
	raw, ok := v.([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func toNumber(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return 0, false
		}
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
