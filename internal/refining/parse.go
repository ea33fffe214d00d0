package refining

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/fridgelab/fridge-tracker/internal/scanning"
)

// parseItemsJSON parses an LLM response into an item set. The model is
// asked for a bare JSON object but routinely wraps it in markdown
// fences or prose, so the first {...} span is extracted before
// unmarshaling. Keys are lowercased and trimmed; entries whose value
// cannot be coerced to a number are dropped, not defaulted.
func parseItemsJSON(text string) (scanning.Items, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSpace(text)

	startIdx := strings.Index(text, "{")
	if startIdx == -1 {
		return nil, fmt.Errorf("no JSON object found in response")
	}
	endIdx := strings.LastIndex(text, "}")
	if endIdx == -1 || endIdx < startIdx {
		return nil, fmt.Errorf("invalid JSON object in response")
	}
	text = text[startIdx : endIdx+1]

	var raw map[string]any
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("unmarshaling json: %w", err)
	}

	items := scanning.Items{}
	for name, value := range raw {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		qty, ok := coerceQuantity(value)
		if !ok {
			continue
		}
		items[name] = qty
	}

	return items, nil
}

func coerceQuantity(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}
