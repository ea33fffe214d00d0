package fridge

import (
	"sort"
	"strings"
)

// Recipe is an externally supplied recipe: a name, an ordered ingredient
// list and ordered steps. An ingredient needed more than once appears
// more than once in the list.
type Recipe struct {
	Name        string   `json:"name"`
	Ingredients []string `json:"ingredients"`
	Steps       []string `json:"steps"`
}

// matchIngredient binds a recipe ingredient to an inventory key using
// bidirectional case-insensitive substring containment: "egg" matches
// "eggs", and "fresh whole milk" matches "milk". Keys are scanned in
// lexicographic order so the first-match-wins tie-break is reproducible
// rather than left to map iteration order.
func matchIngredient(inventory map[string]float64, ingredient string) (string, bool) {
	needle := canonicalKey(ingredient)
	if needle == "" {
		return "", false
	}

	keys := make([]string, 0, len(inventory))
	for key := range inventory {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if inventory[key] <= 0 {
			continue
		}
		if strings.Contains(key, needle) || strings.Contains(needle, key) {
			return key, true
		}
	}
	return "", false
}

// CanCook reports whether every recipe ingredient resolves to an
// inventory key with positive quantity. All-or-nothing: one unmatched
// ingredient fails the whole check.
func (f *Fridge) CanCook(r Recipe) bool {
	for _, ingredient := range r.Ingredients {
		if _, ok := matchIngredient(f.Inventory, ingredient); !ok {
			return false
		}
	}
	return true
}

// DeductRecipe removes the cooked recipe's ingredients from the
// inventory, one unit per ingredient occurrence. Only meaningful after
// a passing CanCook; returns false without touching anything otherwise.
func (f *Fridge) DeductRecipe(r Recipe) bool {
	if !f.CanCook(r) {
		return false
	}

	for _, ingredient := range r.Ingredients {
		key, ok := matchIngredient(f.Inventory, ingredient)
		if !ok {
			continue
		}
		f.RemoveItem(key, 1)
	}
	return true
}
