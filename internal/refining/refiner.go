package refining

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fridgelab/fridge-tracker/internal/scanning"
)

// Refiner defines the interface for semantic cleanup of a scanned item
// set: food-only filtering, translation to English, brand stripping.
type Refiner interface {
	// Refine returns a cleaned version of the item set
	Refine(items scanning.Items) (scanning.Items, error)
	// Close closes the refiner and releases resources
	Close() error
}

// refinePrompt is the shared instruction used by all LLM providers for
// cleaning the scanned item list. Quantities must survive unchanged.
const refinePrompt = `Act as a professional grocery data cleaner.

Input items with quantities (mostly French):
%s

CRITICAL TASKS:
1. Translate ALL food item names to simple English (e.g. "porc" -> "pork").
2. Remove NON-FOOD items (bags, taxes, receipt codes).
3. Strip brand names, marker symbols (*) and package codes (33cl, sleek).
4. Keep every quantity EXACTLY as given. Never merge two distinct items.

Return ONLY a JSON object mapping each cleaned name to its quantity.
Example: {"coke": 1.0, "pork": 0.5}
Do not include any text before or after the JSON.
Do not use markdown code blocks.`

// buildPrompt renders the refinement instruction for an item set.
// Items are listed in sorted order so the prompt is deterministic.
func buildPrompt(items scanning.Items) string {
	names := make([]string, 0, len(items))
	for name := range items {
		names = append(names, name)
	}
	sort.Strings(names)

	var list strings.Builder
	for _, name := range names {
		fmt.Fprintf(&list, "- %s: %g\n", name, items[name])
	}

	return fmt.Sprintf(refinePrompt, strings.TrimRight(list.String(), "\n"))
}
