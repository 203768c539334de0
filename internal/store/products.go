package store

import "rackcatalog/pkg/catalog"

// UpsertProduct cleans the product, stamps updatedAt with the store clock,
// ensures its {category, make, model} taxonomy entries exist, and replaces the
// product by id or appends it. The stored product is returned so callers see
// the generated id and defaulted fields.
func (s *Store) UpsertProduct(p catalog.Product) catalog.Product {
	var stored catalog.Product
	s.mutate("upsert_product", func(st *catalog.State) bool {
		p.UpdatedAt = s.nowMillis()
		p = s.norm.CleanProduct(p)
		catalog.EnsureProductTaxonomy(st, p)
		if _, idx := catalog.FindProduct(*st, p.ID); idx >= 0 {
			st.Products[idx] = p
		} else {
			st.Products = append(st.Products, p)
		}
		stored = catalog.CloneProduct(p)
		return true
	})
	return stored
}

// DeleteProduct removes the product and prunes its id from every rack's line
// items in the same mutation. Unknown ids are a no-op returning false.
func (s *Store) DeleteProduct(id string) bool {
	if id == "" {
		return false
	}
	return s.mutate("delete_product", func(st *catalog.State) bool {
		_, idx := catalog.FindProduct(*st, id)
		if idx < 0 {
			return false
		}
		st.Products = append(st.Products[:idx], st.Products[idx+1:]...)
		pruneRackItems(st, map[string]struct{}{id: {}})
		return true
	})
}

// GetProduct returns a product snapshot by id.
func (s *Store) GetProduct(id string) (catalog.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, idx := catalog.FindProduct(s.state, id)
	if idx < 0 {
		return catalog.Product{}, false
	}
	return catalog.CloneProduct(p), true
}

// ListProducts returns a snapshot of all products in document order.
func (s *Store) ListProducts() []catalog.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]catalog.Product, 0, len(s.state.Products))
	for _, p := range s.state.Products {
		out = append(out, catalog.CloneProduct(p))
	}
	return out
}
