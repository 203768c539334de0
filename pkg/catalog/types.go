// Package catalog defines the product/rack catalog document model, the
// normalizer that migrates arbitrary decoded documents to the current schema,
// and the persistence contracts durable backends implement.
package catalog

// SchemaVersion is the current persisted document version.
const SchemaVersion = 3

// Defaults applied by the normalizer when fields are absent or blank.
const (
	DefaultCategory = "AV"
	DefaultMake     = "Generic"
	DefaultModel    = "Default"
	DefaultRackName = "Rack"
)

// Default rack dimensions in centimeters.
const (
	DefaultRackWidth  = 60
	DefaultRackHeight = 200
	DefaultRackLength = 80
)

// RackU bounds for rack-mountable products.
const (
	MinRackU = 1
	MaxRackU = 5
)

var defaultCategories = []string{DefaultCategory}

// Dims holds product dimensions in centimeters.
type Dims struct {
	W float64 `json:"w"`
	H float64 `json:"h"`
	L float64 `json:"l"`
}

// Product is a single catalog entry classified by the category/make/model taxonomy.
type Product struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Make        string   `json:"make"`
	Model       string   `json:"model"`
	TypeTags    []string `json:"typeTags"`
	Dims        Dims     `json:"dims"`
	Weight      float64  `json:"weight"`
	Description string   `json:"description"`
	Images      []string `json:"images"`
	// Image is the derived cover, always images[0] when images is non-empty.
	Image string `json:"image"`
	// RackU is the rack-unit height in [MinRackU, MaxRackU]; nil when the
	// product is not rack-mountable.
	RackU *int `json:"rackU"`
	// UpdatedAt is a logical millisecond timestamp used only for merge
	// conflict resolution. It is not wall-clock authoritative.
	UpdatedAt int64 `json:"updatedAt"`
}

// RackItem is a rack line item referencing a product by id.
type RackItem struct {
	ProductID string `json:"productId"`
	Qty       int    `json:"qty"`
}

// Rack is a physical rack holding an ordered list of product line items.
type Rack struct {
	ID     string     `json:"id"`
	Name   string     `json:"name"`
	Width  float64    `json:"width"`
	Height float64    `json:"height"`
	Length float64    `json:"length"`
	Weight float64    `json:"weight"`
	Items  []RackItem `json:"items"`
}

// State is the single persisted catalog document.
type State struct {
	SchemaVersion int                            `json:"schemaVersion"`
	Categories    []string                       `json:"categories"`
	Makes         map[string][]string            `json:"makes"`
	Models        map[string]map[string][]string `json:"models"`
	Products      []Product                      `json:"products"`
	Racks         []Rack                         `json:"racks"`
}

// Seed returns the empty current-version document used on first access and as
// the recovery value for malformed input.
func Seed() State {
	return State{
		SchemaVersion: SchemaVersion,
		Categories:    append([]string(nil), defaultCategories...),
		Makes:         map[string][]string{},
		Models:        map[string]map[string][]string{},
		Products:      []Product{},
		Racks:         []Rack{},
	}
}

// CloneState deep-copies a document so cached state never aliases caller data.
func CloneState(st State) State {
	cp := st
	cp.Categories = append([]string(nil), st.Categories...)
	cp.Makes = make(map[string][]string, len(st.Makes))
	for cat, makes := range st.Makes {
		cp.Makes[cat] = append([]string(nil), makes...)
	}
	cp.Models = make(map[string]map[string][]string, len(st.Models))
	for cat, byMake := range st.Models {
		models := make(map[string][]string, len(byMake))
		for mk, names := range byMake {
			models[mk] = append([]string(nil), names...)
		}
		cp.Models[cat] = models
	}
	cp.Products = make([]Product, 0, len(st.Products))
	for _, p := range st.Products {
		cp.Products = append(cp.Products, CloneProduct(p))
	}
	cp.Racks = make([]Rack, 0, len(st.Racks))
	for _, r := range st.Racks {
		cp.Racks = append(cp.Racks, CloneRack(r))
	}
	return cp
}

// CloneProduct copies a product including its slice fields.
func CloneProduct(p Product) Product {
	cp := p
	cp.TypeTags = append([]string(nil), p.TypeTags...)
	cp.Images = append([]string(nil), p.Images...)
	if p.RackU != nil {
		u := *p.RackU
		cp.RackU = &u
	}
	return cp
}

// CloneRack copies a rack including its line items.
func CloneRack(r Rack) Rack {
	cp := r
	cp.Items = append([]RackItem(nil), r.Items...)
	return cp
}

// FindProduct returns the product with the given id and its index, or -1.
func FindProduct(st State, id string) (Product, int) {
	for i, p := range st.Products {
		if p.ID == id {
			return p, i
		}
	}
	return Product{}, -1
}

// FindRack returns the rack with the given id and its index, or -1.
func FindRack(st State, id string) (Rack, int) {
	for i, r := range st.Racks {
		if r.ID == id {
			return r, i
		}
	}
	return Rack{}, -1
}
