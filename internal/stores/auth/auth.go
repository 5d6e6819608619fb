// internal/stores/auth/auth.go

// Package auth holds the signed-in session and the user's address book. Sign
// in verifies credentials against the catalog and issues a signed session
// token; sign out drops the session but keeps the address book on the device.
package auth

import (
	"context"
	"errors"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"delivery-engine/internal/catalog"
	"delivery-engine/internal/common/config"
	stderrors "delivery-engine/internal/common/errors"
	"delivery-engine/internal/common/logger"
	"delivery-engine/internal/common/metrics"
	"delivery-engine/internal/models"
	"delivery-engine/internal/storage"
	"delivery-engine/internal/stores"
)

// Domain is the persistence key suffix for this store.
const Domain = "auth"

var validate = validator.New()

// State is the persisted shape of the auth store. User is stored sanitized;
// the password hash never leaves the catalog.
type State struct {
	User      *models.User     `json:"user,omitempty"`
	Token     string           `json:"token,omitempty"`
	Addresses []models.Address `json:"addresses,omitempty"`
}

// Store is the session state container.
type Store struct {
	mu     sync.RWMutex
	state  State
	kv     storage.KV
	source catalog.Source
	cfg    config.AuthConfig
	logger logger.Logger
}

// NewStore creates an auth store verifying credentials against the catalog.
func NewStore(kv storage.KV, source catalog.Source, cfg config.AuthConfig, log logger.Logger) *Store {
	return &Store{
		kv:     kv,
		source: source,
		cfg:    cfg,
		logger: log.WithFields(map[string]interface{}{
			"store": Domain,
		}),
	}
}

func cloneState(state State) State {
	next := State{Token: state.Token}
	if state.User != nil {
		user := *state.User
		if len(user.Addresses) > 0 {
			user.Addresses = make([]models.Address, len(state.User.Addresses))
			copy(user.Addresses, state.User.Addresses)
		}
		next.User = &user
	}
	if len(state.Addresses) > 0 {
		next.Addresses = make([]models.Address, len(state.Addresses))
		copy(next.Addresses, state.Addresses)
	}
	return next
}

func (s *Store) apply(action string, next State) {
	s.state = next
	metrics.StoreMutations.WithLabelValues(Domain, action).Inc()
	s.logger.Debug("Auth state changed", map[string]interface{}{
		"action":        action,
		"authenticated": next.User != nil,
	})
}

// ==========================
// Session
// ==========================

// SignIn verifies the credentials and opens a session. A missing account and
// a wrong password both surface as the same invalid-credentials error. The
// user's saved addresses seed the local address book.
func (s *Store) SignIn(ctx context.Context, email, password string) (models.User, string, error) {
	user, err := s.source.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return models.User{}, "", stderrors.NewInvalidCredentialsError()
		}
		return models.User{}, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.User{}, "", stderrors.NewInvalidCredentialsError()
	}

	token, err := generateToken(s.cfg, user)
	if err != nil {
		return models.User{}, "", stderrors.NewInternalError(err)
	}

	sanitized := user.Sanitized()

	s.mu.Lock()
	next := cloneState(s.state)
	next.User = &sanitized
	next.Token = token
	if len(user.Addresses) > 0 {
		next.Addresses = make([]models.Address, len(user.Addresses))
		copy(next.Addresses, user.Addresses)
	}
	s.apply("sign_in", next)
	s.mu.Unlock()

	s.logger.Info("User signed in", map[string]interface{}{
		"user_id": sanitized.ID,
	})
	return sanitized, token, nil
}

// SignOut drops the session. The address book stays on the device.
func (s *Store) SignOut() {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := cloneState(s.state)
	next.User = nil
	next.Token = ""
	s.apply("sign_out", next)
}

// ValidateSession parses the stored session token and returns its claims.
func (s *Store) ValidateSession() (*Claims, error) {
	s.mu.RLock()
	token := s.state.Token
	s.mu.RUnlock()

	return ParseToken(s.cfg, token)
}

// CurrentUser returns the signed-in user, if any.
func (s *Store) CurrentUser() (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.state.User == nil {
		return models.User{}, false
	}
	return *s.state.User, true
}

// Token returns the raw session token, or "" when signed out.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Token
}

// IsAuthenticated reports whether a user is signed in.
func (s *Store) IsAuthenticated() bool {
	_, ok := s.CurrentUser()
	return ok
}

// ==========================
// Address Book
// ==========================

// AddAddress validates and stores a delivery address. The first address is
// always the default; adding a later address with IsDefault set moves the
// default to it.
func (s *Store) AddAddress(address models.Address) (models.Address, error) {
	if err := validate.Struct(address); err != nil {
		return models.Address{}, stderrors.NewBusinessRuleError("invalid address", err.Error())
	}
	if address.ID == "" {
		address.ID = uuid.New().String()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := cloneState(s.state)
	if len(next.Addresses) == 0 {
		address.IsDefault = true
	}
	if address.IsDefault {
		for i := range next.Addresses {
			next.Addresses[i].IsDefault = false
		}
	}
	next.Addresses = append(next.Addresses, address)
	s.apply("add_address", next)
	return address, nil
}

// RemoveAddress deletes an address. Removing the default promotes the oldest
// remaining address.
func (s *Store) RemoveAddress(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.addressIndex(id)
	if idx < 0 {
		return stderrors.NewRecordNotFoundError("address", id)
	}

	next := cloneState(s.state)
	wasDefault := next.Addresses[idx].IsDefault
	next.Addresses = append(next.Addresses[:idx], next.Addresses[idx+1:]...)
	if wasDefault && len(next.Addresses) > 0 {
		next.Addresses[0].IsDefault = true
	}
	s.apply("remove_address", next)
	return nil
}

// SetDefaultAddress marks one address as the default and unsets the rest.
func (s *Store) SetDefaultAddress(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.addressIndex(id)
	if idx < 0 {
		return stderrors.NewRecordNotFoundError("address", id)
	}

	next := cloneState(s.state)
	for i := range next.Addresses {
		next.Addresses[i].IsDefault = i == idx
	}
	s.apply("set_default_address", next)
	return nil
}

// addressIndex returns the position of an address, or -1. Caller holds the
// lock.
func (s *Store) addressIndex(id string) int {
	for i := range s.state.Addresses {
		if s.state.Addresses[i].ID == id {
			return i
		}
	}
	return -1
}

// Addresses returns copies of the address book, oldest first.
func (s *Store) Addresses() []models.Address {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneState(s.state).Addresses
}

// DefaultAddress returns the default address, when any address exists.
func (s *Store) DefaultAddress() (models.Address, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.state.Addresses {
		if a.IsDefault {
			return a, true
		}
	}
	return models.Address{}, false
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

// Load replaces the in-memory state with the persisted one. The stored token
// is kept as-is; ValidateSession decides whether it is still usable.
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
