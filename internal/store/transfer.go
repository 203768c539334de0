package store

import (
	"encoding/json"

	"rackcatalog/pkg/catalog"
)

// ExportJSON serializes the full current document as pretty-printed JSON, the
// same shape the file backend persists.
func (s *Store) ExportJSON() []byte {
	st := s.Read()
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		// State contains only JSON-serializable fields.
		panic(err)
	}
	return data
}

// ImportReplace parses external bytes, normalizes them, and unconditionally
// replaces the current document, taxonomy included. Malformed input degrades
// to the seed document rather than failing.
func (s *Store) ImportReplace(data []byte) catalog.State {
	incoming := s.norm.NormalizeJSON(data)
	s.mutate("import_replace", func(st *catalog.State) bool {
		*st = catalog.CloneState(incoming)
		return true
	})
	return s.Read()
}

// ImportMerge parses and normalizes external bytes, then merges them into the
// current document with id-keyed, recency-based conflict resolution:
//
//   - products absent from the current set are adopted;
//   - products present in both keep whichever side has the larger updatedAt,
//     ties favoring the incoming record;
//   - categories are unioned, current order first;
//   - makes/models start from the current state and every merged product
//     re-runs taxonomy ensure so its triple is guaranteed present;
//   - racks are taken from the current state unmodified.
func (s *Store) ImportMerge(data []byte) catalog.State {
	incoming := s.norm.NormalizeJSON(data)
	s.mutate("import_merge", func(st *catalog.State) bool {
		index := make(map[string]int, len(st.Products))
		for i, p := range st.Products {
			index[p.ID] = i
		}
		for _, in := range incoming.Products {
			if at, ok := index[in.ID]; ok {
				if in.UpdatedAt >= st.Products[at].UpdatedAt {
					st.Products[at] = catalog.CloneProduct(in)
				}
				continue
			}
			index[in.ID] = len(st.Products)
			st.Products = append(st.Products, catalog.CloneProduct(in))
		}

		for _, cat := range incoming.Categories {
			catalog.EnsureCategory(st, cat)
		}
		for _, p := range st.Products {
			catalog.EnsureProductTaxonomy(st, p)
		}
		return true
	})
	return s.Read()
}
