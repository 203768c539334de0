package store

import "rackcatalog/pkg/catalog"

// UpsertRack cleans the rack and replaces it by id or appends it.
func (s *Store) UpsertRack(r catalog.Rack) catalog.Rack {
	var stored catalog.Rack
	s.mutate("upsert_rack", func(st *catalog.State) bool {
		r = s.norm.CleanRack(r)
		if _, idx := catalog.FindRack(*st, r.ID); idx >= 0 {
			st.Racks[idx] = r
		} else {
			st.Racks = append(st.Racks, r)
		}
		stored = catalog.CloneRack(r)
		return true
	})
	return stored
}

// DeleteRack removes a rack. Unknown ids are a no-op returning false.
func (s *Store) DeleteRack(id string) bool {
	if id == "" {
		return false
	}
	return s.mutate("delete_rack", func(st *catalog.State) bool {
		_, idx := catalog.FindRack(*st, id)
		if idx < 0 {
			return false
		}
		st.Racks = append(st.Racks[:idx], st.Racks[idx+1:]...)
		return true
	})
}

// GetRack returns a rack snapshot by id.
func (s *Store) GetRack(id string) (catalog.Rack, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, idx := catalog.FindRack(s.state, id)
	if idx < 0 {
		return catalog.Rack{}, false
	}
	return catalog.CloneRack(r), true
}

// ListRacks returns a snapshot of all racks in document order.
func (s *Store) ListRacks() []catalog.Rack {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]catalog.Rack, 0, len(s.state.Racks))
	for _, r := range s.state.Racks {
		out = append(out, catalog.CloneRack(r))
	}
	return out
}

// AddProductToRack increments an existing line item's quantity or appends a
// new one. Quantities below 1 are floored at 1. Unknown racks and blank
// product ids are a no-op returning false.
func (s *Store) AddProductToRack(rackID, productID string, qty int) bool {
	if productID == "" {
		return false
	}
	if qty < 1 {
		qty = 1
	}
	return s.mutate("add_product_to_rack", func(st *catalog.State) bool {
		_, idx := catalog.FindRack(*st, rackID)
		if idx < 0 {
			return false
		}
		rack := &st.Racks[idx]
		for i := range rack.Items {
			if rack.Items[i].ProductID == productID {
				rack.Items[i].Qty += qty
				return true
			}
		}
		rack.Items = append(rack.Items, catalog.RackItem{ProductID: productID, Qty: qty})
		return true
	})
}

// RemoveProductFromRack decrements a line item's quantity; a result at or
// below zero removes the line entirely. Missing racks or line items are a
// no-op returning false.
func (s *Store) RemoveProductFromRack(rackID, productID string, qty int) bool {
	if qty < 1 {
		qty = 1
	}
	return s.mutate("remove_product_from_rack", func(st *catalog.State) bool {
		_, idx := catalog.FindRack(*st, rackID)
		if idx < 0 {
			return false
		}
		rack := &st.Racks[idx]
		for i := range rack.Items {
			if rack.Items[i].ProductID != productID {
				continue
			}
			rack.Items[i].Qty -= qty
			if rack.Items[i].Qty <= 0 {
				rack.Items = append(rack.Items[:i], rack.Items[i+1:]...)
			}
			return true
		}
		return false
	})
}

// SetRackItemQty upserts-or-removes a line item: qty <= 0 removes it, qty > 0
// inserts it when absent or sets it directly otherwise.
func (s *Store) SetRackItemQty(rackID, productID string, qty int) bool {
	if productID == "" {
		return false
	}
	return s.mutate("set_rack_item_qty", func(st *catalog.State) bool {
		_, idx := catalog.FindRack(*st, rackID)
		if idx < 0 {
			return false
		}
		rack := &st.Racks[idx]
		for i := range rack.Items {
			if rack.Items[i].ProductID != productID {
				continue
			}
			if qty <= 0 {
				rack.Items = append(rack.Items[:i], rack.Items[i+1:]...)
			} else {
				rack.Items[i].Qty = qty
			}
			return true
		}
		if qty <= 0 {
			return false
		}
		rack.Items = append(rack.Items, catalog.RackItem{ProductID: productID, Qty: qty})
		return true
	})
}

// SetRackItems replaces a rack's line items wholesale. Items are cleaned the
// same way rack persistence cleans them: blank product ids dropped, quantities
// floored at 1.
func (s *Store) SetRackItems(rackID string, items []catalog.RackItem) bool {
	return s.mutate("set_rack_items", func(st *catalog.State) bool {
		_, idx := catalog.FindRack(*st, rackID)
		if idx < 0 {
			return false
		}
		cleaned := make([]catalog.RackItem, 0, len(items))
		for _, item := range items {
			if item.ProductID == "" {
				continue
			}
			if item.Qty < 1 {
				item.Qty = 1
			}
			cleaned = append(cleaned, item)
		}
		st.Racks[idx].Items = cleaned
		return true
	})
}

// MoveRackItem reorders a line item from one index to another. Indices outside
// [0, len(items)) are a no-op returning false.
func (s *Store) MoveRackItem(rackID string, fromIndex, toIndex int) bool {
	return s.mutate("move_rack_item", func(st *catalog.State) bool {
		_, idx := catalog.FindRack(*st, rackID)
		if idx < 0 {
			return false
		}
		rack := &st.Racks[idx]
		n := len(rack.Items)
		if fromIndex < 0 || fromIndex >= n || toIndex < 0 || toIndex >= n {
			return false
		}
		if fromIndex == toIndex {
			return true
		}
		item := rack.Items[fromIndex]
		rest := append(rack.Items[:fromIndex], rack.Items[fromIndex+1:]...)
		rack.Items = append(rest[:toIndex], append([]catalog.RackItem{item}, rest[toIndex:]...)...)
		return true
	})
}
