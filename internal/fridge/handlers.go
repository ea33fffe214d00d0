package fridge

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/fridgelab/fridge-tracker/internal/scanning"
)

// maxUploadSize bounds receipt uploads; phone photos run large
const maxUploadSize = int64(50 << 20) // 50MB

// corsError writes an error response with CORS headers set
func corsError(w http.ResponseWriter, message string, code int) {
	setCORSHeaders(w)
	http.Error(w, message, code)
}

// setCORSHeaders sets CORS headers on a response
func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	w.Header().Set("Access-Control-Max-Age", "3600")
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

func writeJSONError(w http.ResponseWriter, message string, code int) {
	setCORSHeaders(w)
	writeJSON(w, code, map[string]string{"error": message})
}

// scanStatusCode maps scan failures onto distinct status codes so the
// front end can message the user differently for each.
func scanStatusCode(err error) int {
	switch {
	case errors.Is(err, scanning.ErrUploadFailed):
		return http.StatusBadGateway
	case errors.Is(err, scanning.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, scanning.ErrImageNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// handleScanReceipt ingests an uploaded receipt image into the fridge
func (s *Server) handleScanReceipt(w http.ResponseWriter, r *http.Request) {
	user := r.PathValue("user")

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		slog.Error("Error parsing multipart form", "error", err)
		writeJSONError(w, "Error parsing form", http.StatusBadRequest)
		return
	}

	f, header, err := r.FormFile("file")
	if err != nil {
		writeJSONError(w, "No file was selected. Please choose a receipt image to upload.", http.StatusBadRequest)
		return
	}
	defer f.Close()

	if header.Size > maxUploadSize {
		writeJSONError(w, "File is too large. Maximum size is 50MB.", http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(f)
	if err != nil {
		slog.Error("Error reading file data", "error", err, "filename", header.Filename)
		writeJSONError(w, "Error reading file", http.StatusBadRequest)
		return
	}

	fridge, items, err := s.service.ScanReceipt(user, header.Filename, data, header.Header.Get("Content-Type"))
	if err != nil {
		slog.Error("Error scanning receipt", "user", user, "error", err)
		writeJSONError(w, err.Error(), scanStatusCode(err))
		return
	}

	setCORSHeaders(w)
	writeJSON(w, http.StatusOK, map[string]any{
		"fridge": fridge,
		"items":  items,
	})
}

// handleHealth reports liveness
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleGetFridge returns the user's current inventory
func (s *Server) handleGetFridge(w http.ResponseWriter, r *http.Request) {
	fridge, err := s.service.Get(r.PathValue("user"))
	if err != nil {
		slog.Error("Error loading fridge", "error", err)
		corsError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, fridge)
}

// handleClearFridge empties the user's inventory
func (s *Server) handleClearFridge(w http.ResponseWriter, r *http.Request) {
	fridge, err := s.service.Clear(r.PathValue("user"))
	if err != nil {
		slog.Error("Error clearing fridge", "error", err)
		corsError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, fridge)
}

// handleAddItem manually adds an item to the fridge
func (s *Server) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string  `json:"name"`
		Qty  float64 `json:"qty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Name == "" {
		writeJSONError(w, "Request body must be JSON with a name and qty", http.StatusBadRequest)
		return
	}
	if body.Qty == 0 {
		body.Qty = 1
	}

	fridge, err := s.service.AddItem(r.PathValue("user"), body.Name, body.Qty)
	if err != nil {
		slog.Error("Error adding item", "error", err)
		corsError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, fridge)
}

// handleRemoveItem manually removes a quantity of an item (default 1)
func (s *Server) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	qty := 1.0
	if raw := r.URL.Query().Get("qty"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed <= 0 {
			writeJSONError(w, "qty must be a positive number", http.StatusBadRequest)
			return
		}
		qty = parsed
	}

	fridge, err := s.service.RemoveItem(r.PathValue("user"), r.PathValue("name"), qty)
	if err != nil {
		slog.Error("Error removing item", "error", err)
		corsError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, fridge)
}

// handleCook deducts a recipe's ingredients from the fridge
func (s *Server) handleCook(w http.ResponseWriter, r *http.Request) {
	var recipe Recipe
	if err := json.NewDecoder(r.Body).Decode(&recipe); err != nil {
		writeJSONError(w, "Request body must be a JSON recipe", http.StatusBadRequest)
		return
	}
	if len(recipe.Ingredients) == 0 {
		writeJSONError(w, "Recipe has no ingredients", http.StatusBadRequest)
		return
	}

	fridge, err := s.service.Cook(r.PathValue("user"), recipe)
	if err != nil {
		if errors.Is(err, ErrMissingIngredients) {
			writeJSONError(w, err.Error(), http.StatusConflict)
			return
		}
		slog.Error("Error cooking recipe", "error", err)
		corsError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, fridge)
}

// handleHistory returns the user's activity log
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := s.service.History(r.PathValue("user"))
	if err != nil {
		slog.Error("Error listing history", "error", err)
		corsError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// handleSuggestions asks the suggester for recipes the user could cook
func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	if s.suggester == nil {
		writeJSONError(w, "Recipe suggestions are not configured", http.StatusServiceUnavailable)
		return
	}

	count := 3
	if raw := r.URL.Query().Get("count"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeJSONError(w, "count must be a positive integer", http.StatusBadRequest)
			return
		}
		count = parsed
	}

	fridge, err := s.service.Get(r.PathValue("user"))
	if err != nil {
		slog.Error("Error loading fridge", "error", err)
		corsError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if len(fridge.Inventory) == 0 {
		writeJSONError(w, "Fridge is empty", http.StatusConflict)
		return
	}

	recipes, err := s.suggester.Suggest(fridge.Inventory, count)
	if err != nil {
		slog.Error("Error generating suggestions", "error", err)
		writeJSONError(w, "Recipe suggestions are unavailable right now", http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, recipes)
}
