// internal/stores/filters/filters.go

// Package filters holds the discovery filter selections. The store is an
// explicit state container: actions apply pure reducers over an immutable
// state value, reads return defensive copies, and persistence is an explicit
// Save the caller sequences. A failed Save never rolls back the in-memory
// state.
package filters

import (
	"context"
	"sync"

	"delivery-engine/internal/common/logger"
	"delivery-engine/internal/common/metrics"
	"delivery-engine/internal/discovery"
	"delivery-engine/internal/models"
	"delivery-engine/internal/storage"
	"delivery-engine/internal/stores"
)

// Domain is the persistence key suffix for this store.
const Domain = "filters"

// Store is the filter state container.
type Store struct {
	mu     sync.RWMutex
	state  models.FilterState
	kv     storage.KV
	logger logger.Logger
}

// NewStore creates a filter store holding the default state.
func NewStore(kv storage.KV, log logger.Logger) *Store {
	return &Store{
		state: models.DefaultFilterState(),
		kv:    kv,
		logger: log.WithFields(map[string]interface{}{
			"store": Domain,
		}),
	}
}

// ==========================
// Reducers
// ==========================

func reduceSetSortBy(state models.FilterState, mode models.SortMode) models.FilterState {
	next := state.Clone()
	next.SortBy = mode
	return next
}

func reduceTogglePriceLevel(state models.FilterState, level int) models.FilterState {
	next := state.Clone()
	next.PriceLevels.Toggle(level)
	return next
}

func reduceSetMinRating(state models.FilterState, rating *float64) models.FilterState {
	next := state.Clone()
	next.MinRating = nil
	if rating != nil {
		v := *rating
		next.MinRating = &v
	}
	return next
}

func reduceSetMaxDeliveryTime(state models.FilterState, minutes *int) models.FilterState {
	next := state.Clone()
	next.MaxDeliveryTime = nil
	if minutes != nil {
		v := *minutes
		next.MaxDeliveryTime = &v
	}
	return next
}

func reduceToggleDietary(state models.FilterState, tag models.DietaryTag) models.FilterState {
	next := state.Clone()
	next.Dietary.Toggle(tag)
	return next
}

// ==========================
// Actions
// ==========================

func (s *Store) apply(action string, next models.FilterState) {
	s.state = next
	metrics.StoreMutations.WithLabelValues(Domain, action).Inc()
	s.logger.Debug("Filter state changed", map[string]interface{}{
		"action":       action,
		"active_count": discovery.ActiveFilterCount(next),
	})
}

// SetSortBy replaces the sort mode. Unknown modes are ignored.
func (s *Store) SetSortBy(mode models.SortMode) {
	if !models.ValidSortModes[mode] {
		s.logger.Warn("Ignoring unknown sort mode", map[string]interface{}{
			"mode": string(mode),
		})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.apply("set_sort_by", reduceSetSortBy(s.state, mode))
}

// TogglePriceLevel adds the level when absent and removes it when present.
// New levels append at the end of the selection order.
func (s *Store) TogglePriceLevel(level int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apply("toggle_price_level", reduceTogglePriceLevel(s.state, level))
}

// SetMinRating replaces the rating threshold; nil clears it.
func (s *Store) SetMinRating(rating *float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apply("set_min_rating", reduceSetMinRating(s.state, rating))
}

// SetMaxDeliveryTime replaces the delivery limit; nil clears it.
func (s *Store) SetMaxDeliveryTime(minutes *int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apply("set_max_delivery_time", reduceSetMaxDeliveryTime(s.state, minutes))
}

// ToggleDietary adds the tag when absent and removes it when present. Unknown
// tags are ignored.
func (s *Store) ToggleDietary(tag models.DietaryTag) {
	if !models.ValidDietaryTags[tag] {
		s.logger.Warn("Ignoring unknown dietary tag", map[string]interface{}{
			"tag": string(tag),
		})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.apply("toggle_dietary", reduceToggleDietary(s.state, tag))
}

// ClearFilters resets every selection to the default state.
func (s *Store) ClearFilters() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apply("clear_filters", models.DefaultFilterState())
}

// ApplyFilters bulk-replaces the whole state, e.g. from a saved preset.
func (s *Store) ApplyFilters(state models.FilterState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apply("apply_filters", state.Clone())
}

// ==========================
// Reads
// ==========================

// State returns a deep copy of the current selections.
func (s *Store) State() models.FilterState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// ActiveFilterCount counts selections deviating from the default state.
func (s *Store) ActiveFilterCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return discovery.ActiveFilterCount(s.state)
}

// HasActiveFilters reports whether any selection deviates from the default.
func (s *Store) HasActiveFilters() bool {
	return s.ActiveFilterCount() > 0
}

// ==========================
// Persistence
// ==========================

// Save writes the current state to device storage. The in-memory state is
// already committed when Save runs; a failure is reported but changes nothing.
func (s *Store) Save(ctx context.Context) error {
	s.mu.RLock()
	snapshot := s.state.Clone()
	s.mu.RUnlock()

	return stores.Persist(ctx, s.kv, s.logger, Domain, snapshot)
}

// Load replaces the in-memory state with the persisted one. A missing key
// keeps the default state.
func (s *Store) Load(ctx context.Context) error {
	var stored models.FilterState
	found, err := storage.LoadJSON(ctx, s.kv, storage.StoreKey(Domain), &stored)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = stored.Clone()
	return nil
}
