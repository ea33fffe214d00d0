package refining

import (
	"log/slog"

	"github.com/fridgelab/fridge-tracker/internal/scanning"
)

// Service wraps a remote Refiner with the deterministic local fallback.
// Refinement is best effort: the caller always gets a usable item set
// back, never an error. Remote output may vary run to run; only the
// fallback path is deterministic.
type Service struct {
	remote   Refiner
	fallback LocalCleanup
}

// NewService creates a refinement Service. remote may be nil, in which
// case only the local cleanup rules are applied.
func NewService(remote Refiner) *Service {
	return &Service{remote: remote}
}

// Refine cleans up an item set. Empty input short-circuits without a
// network call. Any remote failure (network, timeout, malformed output)
// is absorbed into the local fallback.
func (s *Service) Refine(items scanning.Items) scanning.Items {
	if len(items) == 0 {
		return scanning.Items{}
	}

	if s.remote != nil {
		refined, err := s.remote.Refine(items)
		if err == nil {
			return refined
		}
		slog.Warn("Refinement unavailable, using local cleanup", "error", err)
	}

	cleaned, _ := s.fallback.Refine(items)
	return cleaned
}

// Close closes the remote refiner, if any
func (s *Service) Close() error {
	if s.remote != nil {
		return s.remote.Close()
	}
	return nil
}
