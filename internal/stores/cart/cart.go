// internal/stores/cart/cart.go

// Package cart holds the active order draft. All line items belong to one
// restaurant at a time: adding from a different restaurant silently clears
// the cart first (the confirmation dialog is a UI concern, not enforced
// here). Totals are pure derived reads recomputed on every call.
package cart

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"delivery-engine/internal/common/logger"
	"delivery-engine/internal/common/metrics"
	"delivery-engine/internal/models"
	"delivery-engine/internal/storage"
	"delivery-engine/internal/stores"
)

// Domain is the persistence key suffix for this store.
const Domain = "cart"

// State is the persisted cart shape.
type State struct {
	Items      []models.CartItem      `json:"items"`
	Restaurant *models.CartRestaurant `json:"restaurant,omitempty"`
}

// Store is the cart state container.
type Store struct {
	mu     sync.RWMutex
	state  State
	kv     storage.KV
	logger logger.Logger
}

// NewStore creates an empty cart.
func NewStore(kv storage.KV, log logger.Logger) *Store {
	return &Store{
		kv: kv,
		logger: log.WithFields(map[string]interface{}{
			"store": Domain,
		}),
	}
}

// ==========================
// Reducers
// ==========================

func cloneState(state State) State {
	next := State{}
	if len(state.Items) > 0 {
		next.Items = make([]models.CartItem, len(state.Items))
		copy(next.Items, state.Items)
	}
	if state.Restaurant != nil {
		r := *state.Restaurant
		next.Restaurant = &r
	}
	return next
}

func reduceAddItem(state State, line models.CartItem, restaurant models.CartRestaurant) (State, bool) {
	cleared := false
	next := cloneState(state)

	if next.Restaurant != nil && next.Restaurant.ID != restaurant.ID {
		next = State{}
		cleared = true
	}

	r := restaurant
	next.Restaurant = &r
	next.Items = append(next.Items, line)
	return next, cleared
}

func reduceRemoveItem(state State, itemID string) State {
	next := cloneState(state)

	kept := next.Items[:0]
	for _, item := range next.Items {
		if item.ID != itemID {
			kept = append(kept, item)
		}
	}
	next.Items = kept

	if len(next.Items) == 0 {
		next.Restaurant = nil
		next.Items = nil
	}
	return next
}

func reduceUpdateQuantity(state State, itemID string, quantity int) State {
	if quantity <= 0 {
		return reduceRemoveItem(state, itemID)
	}

	next := cloneState(state)
	for i := range next.Items {
		if next.Items[i].ID == itemID {
			next.Items[i].Quantity = quantity
			break
		}
	}
	return next
}

// ==========================
// Actions
// ==========================

func (s *Store) apply(action string, next State) {
	s.state = next
	metrics.StoreMutations.WithLabelValues(Domain, action).Inc()
	metrics.CartItemsActive.Set(float64(len(next.Items)))
	s.logger.Debug("Cart changed", map[string]interface{}{
		"action": action,
		"lines":  len(next.Items),
	})
}

// AddItem appends a line item built from a menu item snapshot. A cart scoped
// to a different restaurant is cleared first; the returned bool reports
// whether that happened. Quantities below one are treated as one.
func (s *Store) AddItem(item models.MenuItem, quantity int, selections []models.CustomizationSelection, instructions string, restaurant models.CartRestaurant) (models.CartItem, bool) {
	if quantity < 1 {
		quantity = 1
	}

	line := models.CartItem{
		ID:           uuid.New().String(),
		MenuItem:     item,
		Quantity:     quantity,
		Selections:   selections,
		Instructions: instructions,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next, cleared := reduceAddItem(s.state, line, restaurant)
	s.apply("add_item", next)

	if cleared {
		s.logger.Info("Cart cleared for new restaurant", map[string]interface{}{
			"restaurant_id": restaurant.ID,
		})
	}
	return line, cleared
}

// UpdateQuantity replaces a line's quantity. Zero or below removes the line.
// Unknown line IDs are ignored.
func (s *Store) UpdateQuantity(itemID string, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apply("update_quantity", reduceUpdateQuantity(s.state, itemID, quantity))
}

// RemoveItem deletes a line. Removing the last line clears the restaurant
// scope so any restaurant can fill the cart next.
func (s *Store) RemoveItem(itemID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apply("remove_item", reduceRemoveItem(s.state, itemID))
}

// Clear empties the cart and its restaurant scope.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apply("clear", State{})
}

// ==========================
// Reads
// ==========================

// CanAddFromRestaurant reports whether adding from the restaurant would keep
// the current cart contents.
func (s *Store) CanAddFromRestaurant(restaurantID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Restaurant == nil || s.state.Restaurant.ID == restaurantID
}

// Items returns a copy of the current line items.
func (s *Store) Items() []models.CartItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.CartItem, len(s.state.Items))
	copy(out, s.state.Items)
	return out
}

// Restaurant returns the restaurant the cart is scoped to, or nil when empty.
func (s *Store) Restaurant() *models.CartRestaurant {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.state.Restaurant == nil {
		return nil
	}
	r := *s.state.Restaurant
	return &r
}

// Subtotal sums every line total. Recomputed on each call.
func (s *Store) Subtotal() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total float64
	for _, item := range s.state.Items {
		total += item.LineTotal()
	}
	return total
}

// ItemCount sums the quantities across lines.
func (s *Store) ItemCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, item := range s.state.Items {
		count += item.Quantity
	}
	return count
}

// IsEmpty reports whether the cart holds no lines.
func (s *Store) IsEmpty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.state.Items) == 0
}

// ==========================
// Persistence
// ==========================

// Save writes the cart to device storage.
func (s *Store) Save(ctx context.Context) error {
	s.mu.RLock()
	snapshot := cloneState(s.state)
	s.mu.RUnlock()

	return stores.Persist(ctx, s.kv, s.logger, Domain, snapshot)
}

// Load replaces the cart with the persisted one; a missing key keeps the
// empty cart.
func (s *Store) Load(ctx context.Context) error {
	var stored State
	found, err := storage.LoadJSON(ctx, s.kv, storage.StoreKey(Domain), &stored)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = stored
	metrics.CartItemsActive.Set(float64(len(stored.Items)))
	return nil
}
