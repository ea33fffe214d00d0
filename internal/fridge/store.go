package fridge

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Store owns the persisted multi-user fridge record
type Store interface {
	// Load returns a user's fridge, empty when the user has no record
	Load(user string) (*Fridge, error)

	// Save rewrites the user's record in the persisted store
	Save(f *Fridge) error
}

// userRecord is the per-user envelope in the persisted file:
// {"username": {"inventory": {"milk": 1}}}
type userRecord struct {
	Inventory map[string]any `json:"inventory"`
}

// FileStore implements Store on a single JSON file holding every user's
// fridge. The whole file is rewritten on each save via a temp file and
// rename, so a record is never partially written. Writers within one
// process are serialized by the Service; two processes sharing the file
// is not supported.
type FileStore struct {
	path string
}

// NewFileStore creates a FileStore, creating the parent directory if needed
func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}
	return &FileStore{path: path}, nil
}

// Load returns a user's fridge. A missing file, a missing user key, or
// an unreadable record all yield an empty fridge; persistence corruption
// must not take the pipeline down. A record wrapped one extra level (a
// known historical corruption) is flattened and re-persisted right away.
func (s *FileStore) Load(user string) (*Fridge, error) {
	records := s.readAll()

	record, ok := records[user]
	if !ok {
		return New(user), nil
	}

	inventory, repaired := flattenInventory(record.Inventory)

	f := New(user)
	for name, value := range inventory {
		qty, ok := value.(float64)
		if !ok || qty <= 0 {
			continue
		}
		f.AddItem(name, qty)
	}

	if repaired {
		slog.Warn("Repaired nested fridge record", "user", user)
		if err := s.Save(f); err != nil {
			return nil, fmt.Errorf("re-persisting repaired record: %w", err)
		}
	}

	return f, nil
}

// Save rewrites the full multi-user record with this user's fridge replaced
func (s *FileStore) Save(f *Fridge) error {
	records := s.readAll()

	inventory := make(map[string]any, len(f.Inventory))
	for name, qty := range f.Inventory {
		inventory[name] = qty
	}
	records[f.User] = userRecord{Inventory: inventory}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling fridge records: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing fridge records: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replacing fridge records: %w", err)
	}
	return nil
}

// readAll loads the whole multi-user record, treating a missing or
// malformed file as an empty store.
func (s *FileStore) readAll() map[string]userRecord {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("Unreadable fridge store, treating as empty", "path", s.path, "error", err)
		}
		return map[string]userRecord{}
	}

	var records map[string]userRecord
	if err := json.Unmarshal(data, &records); err != nil {
		slog.Warn("Corrupt fridge store, treating as empty", "path", s.path, "error", err)
		return map[string]userRecord{}
	}
	if records == nil {
		records = map[string]userRecord{}
	}
	return records
}

// flattenInventory unwraps a double-nested inventory mapping
// ({"inventory": {"inventory": {...}}}) produced by an old save bug.
// Returns the usable mapping and whether a repair happened.
func flattenInventory(inventory map[string]any) (map[string]any, bool) {
	if len(inventory) == 1 {
		if inner, ok := inventory["inventory"].(map[string]any); ok {
			return inner, true
		}
	}
	return inventory, false
}
