package fridge

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fridgelab/fridge-tracker/internal/scanning"
)

// ErrMissingIngredients means a recipe could not be cooked because at
// least one ingredient has no match in the fridge.
var ErrMissingIngredients = errors.New("missing ingredients for recipe")

// Refiner cleans a scanned item set. Refinement is best effort and
// never fails; see the refining package.
type Refiner interface {
	Refine(items scanning.Items) scanning.Items
}

// Suggester proposes recipes from the current inventory
type Suggester interface {
	Suggest(inventory map[string]float64, count int) ([]Recipe, error)
}

// IDGenerator generates unique IDs for stored images and history entries
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

type uuidGenerator struct{}

func (uuidGenerator) Generate() string {
	return uuid.NewString()
}

type defaultTimeSource struct{}

func (defaultTimeSource) Now() time.Time {
	return time.Now()
}

// Service runs the receipt-to-fridge pipeline: archive the image, scan
// it, refine the items, merge them into the user's fridge, and record
// the action. It also handles cooking and manual adjustments.
//
// Every mutation is load -> mutate -> save over the full per-user
// record. A mutex serializes mutations within this process; the store
// assumes a single writing process.
type Service struct {
	store       Store
	scanner     scanning.Scanner
	refiner     Refiner
	history     HistoryDB
	storage     Storage
	idGenerator IDGenerator
	timeSource  TimeSource

	mu sync.Mutex
}

// NewService creates a new Service with default ID generator and time source
func NewService(store Store, scanner scanning.Scanner, refiner Refiner, history HistoryDB, storage Storage) *Service {
	return NewServiceWithDeps(store, scanner, refiner, history, storage, uuidGenerator{}, defaultTimeSource{})
}

// NewServiceWithDeps creates a new Service with custom dependencies for testing
func NewServiceWithDeps(store Store, scanner scanning.Scanner, refiner Refiner, history HistoryDB, storage Storage, idGen IDGenerator, timeSrc TimeSource) *Service {
	return &Service{
		store:       store,
		scanner:     scanner,
		refiner:     refiner,
		history:     history,
		storage:     storage,
		idGenerator: idGen,
		timeSource:  timeSrc,
	}
}

var filenameCleanRe = regexp.MustCompile(`[^a-zA-Z0-9.\-_]`)

// sanitizeFilename cleans up phone-generated filenames before archiving
func sanitizeFilename(filename string) string {
	name := filenameCleanRe.ReplaceAllString(filepath.Base(filename), "_")
	if len(name) > 60 {
		name = name[len(name)-60:]
	}
	if name == "" || name == "." {
		name = "receipt"
	}
	return name
}

// ScanReceipt runs the full pipeline for an uploaded receipt image and
// returns the updated fridge together with the merged item set.
//
// Scan failures (upload rejected, poll timeout) propagate to the caller
// so "the scan failed" is distinguishable from "no receipt data"; the
// refinement stage degrades gracefully and never aborts the pipeline.
func (s *Service) ScanReceipt(user, filename string, data []byte, contentType string) (*Fridge, scanning.Items, error) {
	id := s.idGenerator.Generate()

	savedPath, err := s.storage.Save(fmt.Sprintf("%s_%s", id, sanitizeFilename(filename)), data)
	if err != nil {
		return nil, nil, fmt.Errorf("saving receipt image: %w", err)
	}

	items, err := s.scanner.ScanReceipt(data, contentType)
	if err != nil {
		slog.Error("Failed to scan receipt",
			"user", user,
			"filename", filename,
			"file_size", len(data),
			"error", err,
		)
		// Keep the archive clean of images that never produced items
		s.storage.Delete(savedPath)
		return nil, nil, fmt.Errorf("scanning receipt: %w", err)
	}

	refined := s.refiner.Refine(items)

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.store.Load(user)
	if err != nil {
		return nil, nil, fmt.Errorf("loading fridge: %w", err)
	}
	f.Merge(refined)
	if err := s.store.Save(f); err != nil {
		return nil, nil, fmt.Errorf("saving fridge: %w", err)
	}

	s.logAction(user, ActionScan, fmt.Sprintf("merged %d items from receipt %s", len(refined), savedPath))

	return f, refined, nil
}

// ScanReceiptFile runs the pipeline for a receipt image on disk. The
// file must exist; a missing path fails with scanning.ErrImageNotFound
// before anything else happens.
func (s *Service) ScanReceiptFile(user, path string) (*Fridge, scanning.Items, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, nil, fmt.Errorf("%w: %s", scanning.ErrImageNotFound, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading receipt image: %w", err)
	}

	return s.ScanReceipt(user, filepath.Base(path), data, http.DetectContentType(data))
}

// Cook deducts a recipe's ingredients from the user's fridge. Fails
// with ErrMissingIngredients when any ingredient has no fuzzy match,
// leaving the fridge untouched.
func (s *Service) Cook(user string, recipe Recipe) (*Fridge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.store.Load(user)
	if err != nil {
		return nil, fmt.Errorf("loading fridge: %w", err)
	}

	if !f.DeductRecipe(recipe) {
		return nil, fmt.Errorf("%w: %s", ErrMissingIngredients, recipe.Name)
	}

	if err := s.store.Save(f); err != nil {
		return nil, fmt.Errorf("saving fridge: %w", err)
	}

	s.logAction(user, ActionCook, fmt.Sprintf("cooked %q (%d ingredients)", recipe.Name, len(recipe.Ingredients)))

	return f, nil
}

// AddItem manually adds a quantity of an item
func (s *Service) AddItem(user, name string, qty float64) (*Fridge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.store.Load(user)
	if err != nil {
		return nil, fmt.Errorf("loading fridge: %w", err)
	}
	f.AddItem(name, qty)
	if err := s.store.Save(f); err != nil {
		return nil, fmt.Errorf("saving fridge: %w", err)
	}

	s.logAction(user, ActionAdd, fmt.Sprintf("added %g %s", qty, name))

	return f, nil
}

// RemoveItem manually removes a quantity of an item
func (s *Service) RemoveItem(user, name string, qty float64) (*Fridge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.store.Load(user)
	if err != nil {
		return nil, fmt.Errorf("loading fridge: %w", err)
	}
	f.RemoveItem(name, qty)
	if err := s.store.Save(f); err != nil {
		return nil, fmt.Errorf("saving fridge: %w", err)
	}

	s.logAction(user, ActionRemove, fmt.Sprintf("removed %g %s", qty, name))

	return f, nil
}

// Clear empties the user's fridge
func (s *Service) Clear(user string) (*Fridge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.store.Load(user)
	if err != nil {
		return nil, fmt.Errorf("loading fridge: %w", err)
	}
	f.Clear()
	if err := s.store.Save(f); err != nil {
		return nil, fmt.Errorf("saving fridge: %w", err)
	}

	s.logAction(user, ActionClear, "emptied the fridge")

	return f, nil
}

// Get returns the user's current fridge
func (s *Service) Get(user string) (*Fridge, error) {
	f, err := s.store.Load(user)
	if err != nil {
		return nil, fmt.Errorf("loading fridge: %w", err)
	}
	return f, nil
}

// History returns the user's activity log, newest first
func (s *Service) History(user string) ([]*HistoryEntry, error) {
	entries, err := s.history.ListEntries(user)
	if err != nil {
		return nil, fmt.Errorf("listing history: %w", err)
	}
	return entries, nil
}

// logAction records an action in the history log. History is advisory;
// a failed write is logged and otherwise ignored.
func (s *Service) logAction(user, action, detail string) {
	entry := &HistoryEntry{
		ID:        s.idGenerator.Generate(),
		User:      user,
		Action:    action,
		Detail:    detail,
		CreatedAt: s.timeSource.Now(),
	}
	if err := s.history.SaveEntry(entry); err != nil {
		slog.Warn("Failed to record history entry", "user", user, "action", action, "error", err)
	}
}
