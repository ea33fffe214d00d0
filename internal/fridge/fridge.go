package fridge

import (
	"strings"
)

// Fridge tracks one user's inventory of ingredients. Keys are canonical
// item names; values are either unit counts or weights in kilograms.
// An item with quantity <= 0 is never present as a key.
type Fridge struct {
	User      string             `json:"user"`
	Inventory map[string]float64 `json:"inventory"`
}

// New creates an empty Fridge for a user
func New(user string) *Fridge {
	return &Fridge{
		User:      user,
		Inventory: map[string]float64{},
	}
}

// canonicalKey normalizes an item name into its inventory key form:
// lowercase, trimmed, internal whitespace collapsed.
func canonicalKey(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// AddItem increases the quantity of an item, creating it if absent
func (f *Fridge) AddItem(name string, qty float64) {
	key := canonicalKey(name)
	if key == "" {
		return
	}
	f.Inventory[key] += qty
	if f.Inventory[key] <= 0 {
		delete(f.Inventory, key)
	}
}

// RemoveItem subtracts a quantity from an item, clamping at zero and
// deleting the key when nothing is left
func (f *Fridge) RemoveItem(name string, qty float64) {
	key := canonicalKey(name)
	current, ok := f.Inventory[key]
	if !ok {
		return
	}
	if current-qty <= 0 {
		delete(f.Inventory, key)
		return
	}
	f.Inventory[key] = current - qty
}

// Merge accumulates a scanned item set into the inventory. The same
// rule as within a single scan: quantities for recurring keys add up.
func (f *Fridge) Merge(items map[string]float64) {
	for name, qty := range items {
		f.AddItem(name, qty)
	}
}

// Has reports whether an item is present with positive quantity
func (f *Fridge) Has(name string) bool {
	return f.Inventory[canonicalKey(name)] > 0
}

// Clear empties the inventory
func (f *Fridge) Clear() {
	f.Inventory = map[string]float64{}
}
