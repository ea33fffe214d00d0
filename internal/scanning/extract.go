package scanning

import (
	"strconv"
	"strings"
)

// Items is the output of a receipt scan: canonical item name to quantity.
// Quantities are either unit counts or weights in kilograms.
type Items map[string]float64

// lineItemLocations lists the places a Tabscanner result may carry its
// line items, in priority order. The field name moved between provider
// schema versions, so each location is tried until one is present.
var lineItemLocations = []func(result map[string]any) (any, bool){
	func(result map[string]any) (any, bool) { v, ok := result["lineItems"]; return v, ok },
	func(result map[string]any) (any, bool) { v, ok := result["line_items"]; return v, ok },
	func(result map[string]any) (any, bool) {
		data, ok := result["data"].(map[string]any)
		if !ok {
			return nil, false
		}
		v, ok := data["products"]
		return v, ok
	},
}

// descriptionFields lists the possible description field names of a raw
// line item, in priority order. First present field wins.
var descriptionFields = []string{"descClean", "desc", "description", "item", "name"}

// quantityFields lists the possible quantity field names of a raw line item.
var quantityFields = []string{"qty", "quantity"}

// locateLineItems finds the line-item list in a provider result object.
// Returns an empty list when no known location is present; an absent
// list is not an error, just a receipt with nothing usable on it.
func locateLineItems(result map[string]any) []any {
	for _, locate := range lineItemLocations {
		v, ok := locate(result)
		if !ok {
			continue
		}
		list, ok := v.([]any)
		if !ok {
			return nil
		}
		return list
	}
	return nil
}

// lineItemDescription extracts the raw description from a line item.
func lineItemDescription(item map[string]any) (string, bool) {
	for _, field := range descriptionFields {
		if v, ok := item[field]; ok {
			if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
				return s, true
			}
		}
	}
	return "", false
}

// lineItemQuantity extracts the quantity from a line item, defaulting
// to 1 when absent or non-numeric.
func lineItemQuantity(item map[string]any) float64 {
	for _, field := range quantityFields {
		v, ok := item[field]
		if !ok {
			continue
		}
		if qty, ok := toFloat(v); ok {
			return qty
		}
	}
	return 1
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(n), ",", "."), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// extractItems walks a terminal provider result and builds the cleaned
// item set. Lines rejected by CleanItem are dropped; duplicate lines
// for the same product accumulate their quantities.
func extractItems(result map[string]any) Items {
	items := Items{}
	for _, raw := range locateLineItems(result) {
		lineItem, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		desc, ok := lineItemDescription(lineItem)
		if !ok {
			continue
		}
		name, qty, ok := CleanItem(desc, lineItemQuantity(lineItem))
		if !ok {
			continue
		}
		items[name] += qty
	}
	return items
}
