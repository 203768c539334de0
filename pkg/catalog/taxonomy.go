package catalog

import "strings"

// EnsureCategory inserts a category if absent. Names are trimmed; blank names
// are rejected. Returns false when the name is invalid.
func EnsureCategory(st *State, category string) bool {
	category = strings.TrimSpace(category)
	if category == "" {
		return false
	}
	if !containsString(st.Categories, category) {
		st.Categories = append(st.Categories, category)
	}
	if st.Makes == nil {
		st.Makes = map[string][]string{}
	}
	if _, ok := st.Makes[category]; !ok {
		st.Makes[category] = []string{}
	}
	if st.Models == nil {
		st.Models = map[string]map[string][]string{}
	}
	if _, ok := st.Models[category]; !ok {
		st.Models[category] = map[string][]string{}
	}
	return true
}

// EnsureMake inserts a make under a category, lazily creating the category.
func EnsureMake(st *State, category, mk string) bool {
	mk = strings.TrimSpace(mk)
	if mk == "" {
		return false
	}
	if !EnsureCategory(st, category) {
		return false
	}
	category = strings.TrimSpace(category)
	if !containsString(st.Makes[category], mk) {
		st.Makes[category] = append(st.Makes[category], mk)
	}
	if _, ok := st.Models[category][mk]; !ok {
		st.Models[category][mk] = []string{}
	}
	return true
}

// EnsureModel inserts a model under a category/make pair, lazily creating
// both parent levels.
func EnsureModel(st *State, category, mk, model string) bool {
	model = strings.TrimSpace(model)
	if model == "" {
		return false
	}
	if !EnsureMake(st, category, mk) {
		return false
	}
	category = strings.TrimSpace(category)
	mk = strings.TrimSpace(mk)
	if !containsString(st.Models[category][mk], model) {
		st.Models[category][mk] = append(st.Models[category][mk], model)
	}
	return true
}

// EnsureProductTaxonomy registers a product's classification triple.
func EnsureProductTaxonomy(st *State, p Product) {
	EnsureModel(st, p.Category, p.Make, p.Model)
}

func containsString(values []string, v string) bool {
	for _, existing := range values {
		if existing == v {
			return true
		}
	}
	return false
}

// uniqStrings trims entries, drops blanks, and removes duplicates while
// preserving first-seen order. Always returns a non-nil slice.
func uniqStrings(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
