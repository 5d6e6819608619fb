// internal/stores/payments/payments.go

// Package payments manages the user's saved payment methods. Exactly one
// method is the default whenever any method exists: the first added method
// becomes the default, and removing the default promotes the oldest survivor.
package payments

import (
	"context"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	stderrors "delivery-engine/internal/common/errors"
	"delivery-engine/internal/common/logger"
	"delivery-engine/internal/common/metrics"
	"delivery-engine/internal/models"
	"delivery-engine/internal/storage"
	"delivery-engine/internal/stores"
)

// Domain is the persistence key suffix for this store.
const Domain = "payments"

var validate = validator.New()

// State is the persisted shape of the payment store.
type State struct {
	Methods []models.PaymentMethod `json:"methods"`
}

// Store is the payment method state container.
type Store struct {
	mu     sync.RWMutex
	state  State
	kv     storage.KV
	logger logger.Logger
}

// NewStore creates a payment store.
func NewStore(kv storage.KV, log logger.Logger) *Store {
	return &Store{
		kv: kv,
		logger: log.WithFields(map[string]interface{}{
			"store": Domain,
		}),
	}
}

func cloneState(state State) State {
	next := State{}
	if len(state.Methods) > 0 {
		next.Methods = make([]models.PaymentMethod, len(state.Methods))
		copy(next.Methods, state.Methods)
	}
	return next
}

func (s *Store) apply(action string, next State) {
	s.state = next
	metrics.StoreMutations.WithLabelValues(Domain, action).Inc()
	s.logger.Debug("Payment state changed", map[string]interface{}{
		"action":  action,
		"methods": len(next.Methods),
	})
}

func indexOf(methods []models.PaymentMethod, id string) int {
	for i := range methods {
		if methods[i].ID == id {
			return i
		}
	}
	return -1
}

// ==========================
// Actions
// ==========================

// AddMethod validates and stores a payment method. The first method added is
// always the default; adding a later method with IsDefault set moves the
// default to it.
func (s *Store) AddMethod(ctx context.Context, method models.PaymentMethod) (models.PaymentMethod, error) {
	if err := validate.Struct(method); err != nil {
		return models.PaymentMethod{}, stderrors.NewPaymentMethodInvalidError(err.Error())
	}
	if method.ID == "" {
		method.ID = uuid.New().String()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := cloneState(s.state)
	if len(next.Methods) == 0 {
		method.IsDefault = true
	}
	if method.IsDefault {
		for i := range next.Methods {
			next.Methods[i].IsDefault = false
		}
	}
	next.Methods = append(next.Methods, method)
	s.apply("add_method", next)

	s.logger.Info("Payment method added", map[string]interface{}{
		"method_id": method.ID,
		"kind":      string(method.Kind),
		"default":   method.IsDefault,
	})
	return method, nil
}

// RemoveMethod deletes a payment method. Removing the default promotes the
// oldest remaining method.
func (s *Store) RemoveMethod(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := indexOf(s.state.Methods, id)
	if idx < 0 {
		return stderrors.NewPaymentMethodNotFoundError(id)
	}

	next := cloneState(s.state)
	wasDefault := next.Methods[idx].IsDefault
	next.Methods = append(next.Methods[:idx], next.Methods[idx+1:]...)
	if wasDefault && len(next.Methods) > 0 {
		next.Methods[0].IsDefault = true
	}
	s.apply("remove_method", next)
	return nil
}

// SetDefault marks one method as the default and unsets the rest.
func (s *Store) SetDefault(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := indexOf(s.state.Methods, id)
	if idx < 0 {
		return stderrors.NewPaymentMethodNotFoundError(id)
	}

	next := cloneState(s.state)
	for i := range next.Methods {
		next.Methods[i].IsDefault = i == idx
	}
	s.apply("set_default", next)
	return nil
}

// ==========================
// Reads
// ==========================

// List returns copies of every saved method, oldest first.
func (s *Store) List() []models.PaymentMethod {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneState(s.state).Methods
}

// Get returns a copy of one method.
func (s *Store) Get(id string) (models.PaymentMethod, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := indexOf(s.state.Methods, id)
	if idx < 0 {
		return models.PaymentMethod{}, stderrors.NewPaymentMethodNotFoundError(id)
	}
	return s.state.Methods[idx], nil
}

// DefaultMethod returns the default method, when any method exists.
func (s *Store) DefaultMethod() (models.PaymentMethod, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, m := range s.state.Methods {
		if m.IsDefault {
			return m, true
		}
	}
	return models.PaymentMethod{}, false
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
