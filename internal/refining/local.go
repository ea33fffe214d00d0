package refining

import (
	"strings"

	"github.com/fridgelab/fridge-tracker/internal/scanning"
)

// LocalCleanup is the deterministic fallback Refiner used when no LLM
// is reachable: strip stray marker symbols and drop keys too short to
// be real product names. Quantities pass through unchanged.
type LocalCleanup struct{}

// Refine applies the local cleanup rules. It never returns an error.
func (LocalCleanup) Refine(items scanning.Items) (scanning.Items, error) {
	cleaned := scanning.Items{}
	for name, qty := range items {
		if len(name) <= 2 {
			continue
		}
		name = strings.TrimSpace(strings.ReplaceAll(name, "*", ""))
		if name == "" {
			continue
		}
		cleaned[name] = qty
	}
	return cleaned, nil
}

// Close closes the refiner (no-op)
func (LocalCleanup) Close() error {
	return nil
}
