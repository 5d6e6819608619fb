// internal/stores/ratings/ratings.go

// Package ratings records post-delivery star ratings. One rating per order;
// rating the same order again replaces the earlier entry.
package ratings

import (
	"context"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	stderrors "delivery-engine/internal/common/errors"
	"delivery-engine/internal/common/logger"
	"delivery-engine/internal/common/metrics"
	"delivery-engine/internal/events"
	"delivery-engine/internal/models"
	"delivery-engine/internal/storage"
	"delivery-engine/internal/stores"
)

// Domain is the persistence key suffix for this store.
const Domain = "ratings"

var validate = validator.New()

// RateInput is one star rating. DriverStars is optional; zero means the user
// skipped rating the courier.
type RateInput struct {
	OrderID      string `validate:"required"`
	RestaurantID string `validate:"required"`
	Stars        int    `validate:"required,min=1,max=5"`
	DriverStars  int    `validate:"omitempty,min=1,max=5"`
	Comment      string `validate:"omitempty,max=500"`
}

// State is the persisted shape of the rating store.
type State struct {
	Ratings []models.Rating `json:"ratings"`
}

// Store is the rating state container.
type Store struct {
	mu     sync.RWMutex
	state  State
	kv     storage.KV
	sink   events.Sink
	logger logger.Logger
}

// NewStore creates a rating store.
func NewStore(kv storage.KV, sink events.Sink, log logger.Logger) *Store {
	return &Store{
		kv:   kv,
		sink: sink,
		logger: log.WithFields(map[string]interface{}{
			"store": Domain,
		}),
	}
}

func cloneState(state State) State {
	next := State{}
	if len(state.Ratings) > 0 {
		next.Ratings = make([]models.Rating, len(state.Ratings))
		copy(next.Ratings, state.Ratings)
	}
	return next
}

func (s *Store) apply(action string, next State) {
	s.state = next
	metrics.StoreMutations.WithLabelValues(Domain, action).Inc()
	s.logger.Debug("Rating state changed", map[string]interface{}{
		"action":  action,
		"ratings": len(next.Ratings),
	})
}

// ==========================
// Actions
// ==========================

// RateOrder records a rating for an order, replacing any earlier rating for
// the same order.
func (s *Store) RateOrder(ctx context.Context, input RateInput) (models.Rating, error) {
	if err := validate.Struct(input); err != nil {
		return models.Rating{}, stderrors.NewBusinessRuleError("invalid rating", err.Error())
	}

	rating := models.Rating{
		ID:           uuid.New().String(),
		OrderID:      input.OrderID,
		RestaurantID: input.RestaurantID,
		Stars:        input.Stars,
		DriverStars:  input.DriverStars,
		Comment:      input.Comment,
		CreatedAt:    time.Now().UTC(),
	}

	s.mu.Lock()
	next := cloneState(s.state)
	replaced := false
	for i := range next.Ratings {
		if next.Ratings[i].OrderID == rating.OrderID {
			next.Ratings[i] = rating
			replaced = true
			break
		}
	}
	if !replaced {
		next.Ratings = append(next.Ratings, rating)
	}
	action := "rate_order"
	if replaced {
		action = "rerate_order"
	}
	s.apply(action, next)
	s.mu.Unlock()

	s.logger.Info("Order rated", map[string]interface{}{
		"order_id":      rating.OrderID,
		"restaurant_id": rating.RestaurantID,
		"stars":         rating.Stars,
		"replaced":      replaced,
	})

	if err := s.sink.Publish(ctx, events.New(events.TypeRatingSubmitted, rating.OrderID, map[string]interface{}{
		"orderId":      rating.OrderID,
		"restaurantId": rating.RestaurantID,
		"stars":        rating.Stars,
	})); err != nil {
		s.logger.WithError(err).Warn("Failed to publish rating event", map[string]interface{}{
			"order_id": rating.OrderID,
		})
	}

	return rating, nil
}

// ==========================
// Reads
// ==========================

// ForOrder returns the rating recorded for an order, if any.
func (s *Store) ForOrder(orderID string) (models.Rating, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.state.Ratings {
		if r.OrderID == orderID {
			return r, true
		}
	}
	return models.Rating{}, false
}

// List returns copies of every rating, oldest first.
func (s *Store) List() []models.Rating {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneState(s.state).Ratings
}

// AggregateForRestaurant averages the stars given to one restaurant.
func (s *Store) AggregateForRestaurant(restaurantID string) (average float64, count int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sum int
	for _, r := range s.state.Ratings {
		if r.RestaurantID == restaurantID {
			sum += r.Stars
			count++
		}
	}
	if count == 0 {
		return 0, 0
	}
	return float64(sum) / float64(count), count
}

// ==========================
// Persistence
// ==========================

// Save writes the current state to device storage. The in-memory state is
// already committed when Save runs; a failure is reported but changes nothing.
func (s *Store) Save(ctx context.Context) error {
	s.mu.RLock()
	snapshot := cloneState(s.state)
	s.mu.RUnlock()

	return stores.Persist(ctx, s.kv, s.logger, Domain, snapshot)
}

// Load replaces the in-memory state with the persisted one.
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
	s.state = cloneState(stored)
	return nil
}
