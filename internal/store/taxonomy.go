package store

import (
	"strings"

	"rackcatalog/pkg/catalog"
)

// EnsureCategory idempotently inserts a category. Blank names are rejected.
func (s *Store) EnsureCategory(category string) bool {
	if strings.TrimSpace(category) == "" {
		return false
	}
	return s.mutate("ensure_category", func(st *catalog.State) bool {
		return catalog.EnsureCategory(st, category)
	})
}

// EnsureMake idempotently inserts a make, lazily creating its category.
func (s *Store) EnsureMake(category, mk string) bool {
	if strings.TrimSpace(category) == "" || strings.TrimSpace(mk) == "" {
		return false
	}
	return s.mutate("ensure_make", func(st *catalog.State) bool {
		return catalog.EnsureMake(st, category, mk)
	})
}

// EnsureModel idempotently inserts a model, lazily creating both parents.
func (s *Store) EnsureModel(category, mk, model string) bool {
	if strings.TrimSpace(category) == "" || strings.TrimSpace(mk) == "" || strings.TrimSpace(model) == "" {
		return false
	}
	return s.mutate("ensure_model", func(st *catalog.State) bool {
		return catalog.EnsureModel(st, category, mk, model)
	})
}

// DeleteCategory removes a category and its make/model subtrees. Products
// classified under the category are left in place; only the taxonomy node is
// removed.
func (s *Store) DeleteCategory(category string) bool {
	category = strings.TrimSpace(category)
	return s.mutate("delete_category", func(st *catalog.State) bool {
		idx := -1
		for i, c := range st.Categories {
			if c == category {
				idx = i
				break
			}
		}
		if idx < 0 {
			return false
		}
		st.Categories = append(st.Categories[:idx], st.Categories[idx+1:]...)
		delete(st.Makes, category)
		delete(st.Models, category)
		return true
	})
}

// DeleteMake removes a make and its model subtree from a category. As with
// DeleteCategory, contained products are not cascaded.
func (s *Store) DeleteMake(category, mk string) bool {
	category = strings.TrimSpace(category)
	mk = strings.TrimSpace(mk)
	return s.mutate("delete_make", func(st *catalog.State) bool {
		makes, ok := st.Makes[category]
		if !ok {
			return false
		}
		idx := -1
		for i, m := range makes {
			if m == mk {
				idx = i
				break
			}
		}
		if idx < 0 {
			return false
		}
		st.Makes[category] = append(makes[:idx], makes[idx+1:]...)
		if byMake, ok := st.Models[category]; ok {
			delete(byMake, mk)
		}
		return true
	})
}

// DeleteModel removes a model and cascades: every product classified with the
// {category, make, model} triple is deleted and its id pruned from every
// rack's line items, all within the same mutation.
func (s *Store) DeleteModel(category, mk, model string) bool {
	category = strings.TrimSpace(category)
	mk = strings.TrimSpace(mk)
	model = strings.TrimSpace(model)
	return s.mutate("delete_model", func(st *catalog.State) bool {
		byMake, ok := st.Models[category]
		if !ok {
			return false
		}
		models, ok := byMake[mk]
		if !ok {
			return false
		}
		idx := -1
		for i, m := range models {
			if m == model {
				idx = i
				break
			}
		}
		if idx < 0 {
			return false
		}
		byMake[mk] = append(models[:idx], models[idx+1:]...)

		removed := make(map[string]struct{})
		kept := st.Products[:0]
		for _, p := range st.Products {
			if p.Category == category && p.Make == mk && p.Model == model {
				removed[p.ID] = struct{}{}
				continue
			}
			kept = append(kept, p)
		}
		st.Products = kept
		if len(removed) > 0 {
			pruneRackItems(st, removed)
		}
		return true
	})
}

// pruneRackItems drops line items referencing any of the given product ids.
func pruneRackItems(st *catalog.State, ids map[string]struct{}) {
	for i := range st.Racks {
		items := st.Racks[i].Items[:0]
		for _, item := range st.Racks[i].Items {
			if _, gone := ids[item.ProductID]; gone {
				continue
			}
			items = append(items, item)
		}
		st.Racks[i].Items = items
	}
}
