// Package suggesting generates recipe suggestions from the current
// fridge inventory using a local LLM.
package suggesting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/fridgelab/fridge-tracker/internal/fridge"
)

// suggestPrompt asks for a strict JSON list of simple recipes built
// from the listed ingredients.
const suggestPrompt = `You are a professional chef API.
My ingredients: %s.

TASK:
Create %d simple recipes using these ingredients.

RULES:
1. Output MUST be valid JSON.
2. Return a LIST of objects.
3. ENGLISH ONLY. No intro, no explanation.
4. If an ingredient is needed more than once, list it that many times.

REQUIRED JSON STRUCTURE:
[
  {
    "name": "Recipe Name",
    "ingredients": ["item1", "item2"],
    "steps": ["Step 1...", "Step 2..."]
  }
]`

// Ollama suggests recipes using a local Ollama server
type Ollama struct {
	baseURL string
	model   string
	client  *http.Client
}

// NewOllama creates a new Ollama recipe suggester
func NewOllama(baseURL string, modelName string) (*Ollama, error) {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if modelName == "" {
		modelName = "llama3.2"
	}

	return &Ollama{
		baseURL: baseURL,
		model:   modelName,
		client: &http.Client{
			Timeout: 45 * time.Second,
		},
	}, nil
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
	Format string `json:"format,omitempty"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Suggest generates up to count recipes from the inventory
func (o *Ollama) Suggest(inventory map[string]float64, count int) ([]fridge.Recipe, error) {
	if count <= 0 {
		count = 3
	}

	names := make([]string, 0, len(inventory))
	for name := range inventory {
		names = append(names, name)
	}
	sort.Strings(names)

	ctx, cancel := context.WithTimeout(context.Background(), 45*time.Second)
	defer cancel()

	reqBody := generateRequest{
		Model:  o.model,
		Prompt: fmt.Sprintf(suggestPrompt, strings.Join(names, ", "), count),
		Stream: false,
		Format: "json",
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	url := fmt.Sprintf("%s/api/generate", o.baseURL)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling ollama API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("ollama API error (status %d): %s", resp.StatusCode, string(body))
	}

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	recipes, err := parseRecipesJSON(genResp.Response)
	if err != nil {
		return nil, fmt.Errorf("parsing recipes: %w", err)
	}

	return recipes, nil
}

// Close closes the suggester (no-op for HTTP client)
func (o *Ollama) Close() error {
	return nil
}
