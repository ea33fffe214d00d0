package suggesting

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fridgelab/fridge-tracker/internal/fridge"
)

// parseRecipesJSON parses the model's reply into recipes. The model is
// asked for a JSON list but sometimes wraps it in markdown fences or
// returns a single object; both are tolerated.
func parseRecipesJSON(text string) ([]fridge.Recipe, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	if span, ok := extractSpan(text, '[', ']'); ok {
		var recipes []fridge.Recipe
		if err := json.Unmarshal([]byte(span), &recipes); err != nil {
			return nil, fmt.Errorf("unmarshaling recipe list: %w", err)
		}
		return nonEmpty(recipes)
	}

	if span, ok := extractSpan(text, '{', '}'); ok {
		var recipe fridge.Recipe
		if err := json.Unmarshal([]byte(span), &recipe); err != nil {
			return nil, fmt.Errorf("unmarshaling recipe object: %w", err)
		}
		return nonEmpty([]fridge.Recipe{recipe})
	}

	return nil, fmt.Errorf("no JSON found in response")
}

// extractSpan returns the text between the first open and last close
// delimiter, inclusive.
func extractSpan(text string, open, closing byte) (string, bool) {
	startIdx := strings.IndexByte(text, open)
	if startIdx == -1 {
		return "", false
	}
	endIdx := strings.LastIndexByte(text, closing)
	if endIdx == -1 || endIdx < startIdx {
		return "", false
	}
	return text[startIdx : endIdx+1], true
}

func nonEmpty(recipes []fridge.Recipe) ([]fridge.Recipe, error) {
	usable := make([]fridge.Recipe, 0, len(recipes))
	for _, r := range recipes {
		if r.Name == "" || len(r.Ingredients) == 0 {
			continue
		}
		usable = append(usable, r)
	}
	if len(usable) == 0 {
		return nil, fmt.Errorf("no usable recipes in response")
	}
	return usable, nil
}
