// internal/stores/orders/orders.go

// Package orders owns the checkout pipeline and the order lifecycle. Checkout
// snapshots the cart into an immutable order record; afterwards the order only
// moves along the transitions the state machine permits, with every change
// appended to an audit history.
package orders

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"

	"delivery-engine/internal/catalog"
	stderrors "delivery-engine/internal/common/errors"
	"delivery-engine/internal/common/logger"
	"delivery-engine/internal/common/metrics"
	"delivery-engine/internal/events"
	"delivery-engine/internal/models"
	"delivery-engine/internal/storage"
	"delivery-engine/internal/stores"
	"delivery-engine/internal/stores/cart"
)

// Domain is the persistence key suffix for this store.
const Domain = "orders"

// receiptSize is the pixel width of the generated pickup QR code.
const receiptSize = 256

// CheckoutInput carries the user's checkout choices. The cart contents come
// from the cart store, not from the caller.
type CheckoutInput struct {
	UserID          string
	PaymentMethodID string
	PromoCode       string
}

// State is the persisted shape of the order store.
type State struct {
	Orders []models.Order `json:"orders"`
}

// Store is the order state container.
type Store struct {
	mu     sync.RWMutex
	state  State
	kv     storage.KV
	source catalog.Source
	cart   *cart.Store
	sink   events.Sink
	logger logger.Logger
}

// NewStore creates an order store. The sink receives lifecycle events on a
// best-effort basis; publish failures are logged and never fail the action.
func NewStore(kv storage.KV, source catalog.Source, cartStore *cart.Store, sink events.Sink, log logger.Logger) *Store {
	return &Store{
		kv:     kv,
		source: source,
		cart:   cartStore,
		sink:   sink,
		logger: log.WithFields(map[string]interface{}{
			"store": Domain,
		}),
	}
}

func cloneOrder(o models.Order) models.Order {
	out := o
	if len(o.Items) > 0 {
		out.Items = make([]models.CartItem, len(o.Items))
		copy(out.Items, o.Items)
	}
	if len(o.StatusHistory) > 0 {
		out.StatusHistory = make([]models.OrderStatusChange, len(o.StatusHistory))
		copy(out.StatusHistory, o.StatusHistory)
	}
	return out
}

func cloneState(state State) State {
	next := State{}
	if len(state.Orders) > 0 {
		next.Orders = make([]models.Order, len(state.Orders))
		for i, o := range state.Orders {
			next.Orders[i] = cloneOrder(o)
		}
	}
	return next
}

func (s *Store) apply(action string, next State) {
	s.state = next
	metrics.StoreMutations.WithLabelValues(Domain, action).Inc()
	s.logger.Debug("Order state changed", map[string]interface{}{
		"action": action,
		"orders": len(next.Orders),
	})
}

// publish sends a lifecycle event without holding the store lock. A failed
// publish is logged and swallowed; order state is already committed.
func (s *Store) publish(ctx context.Context, event events.Event) {
	if err := s.sink.Publish(ctx, event); err != nil {
		s.logger.WithError(err).Warn("Failed to publish order event", map[string]interface{}{
			"event_type": event.Type,
			"event_key":  event.Key,
		})
	}
}

// ==========================
// Checkout
// ==========================

// Checkout turns the current cart into a placed order. The cart must not be
// empty. A promo code, when given, is validated against the catalog before any
// state changes; validation failures leave both cart and orders untouched. On
// success the cart is cleared and an order.placed event is emitted.
func (s *Store) Checkout(ctx context.Context, input CheckoutInput) (models.Order, error) {
	items := s.cart.Items()
	if len(items) == 0 {
		return models.Order{}, stderrors.NewEmptyCartError()
	}
	cartRestaurant := s.cart.Restaurant()

	restaurant, err := s.source.GetRestaurant(ctx, cartRestaurant.ID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return models.Order{}, stderrors.NewRecordNotFoundError("restaurant", cartRestaurant.ID)
		}
		return models.Order{}, err
	}

	subtotal := s.cart.Subtotal()
	var discount float64
	promoCode := strings.TrimSpace(input.PromoCode)
	if promoCode != "" {
		discount, err = s.resolvePromo(ctx, promoCode, subtotal)
		if err != nil {
			return models.Order{}, err
		}
	}

	now := time.Now().UTC()
	order := models.Order{
		ID:              uuid.New().String(),
		UserID:          input.UserID,
		RestaurantID:    cartRestaurant.ID,
		RestaurantName:  cartRestaurant.Name,
		Items:           items,
		Subtotal:        subtotal,
		DeliveryFee:     cartRestaurant.DeliveryFee,
		Discount:        discount,
		Total:           subtotal + cartRestaurant.DeliveryFee - discount,
		PromoCode:       promoCode,
		PaymentMethodID: input.PaymentMethodID,
		Status:          models.OrderPlaced,
		StatusHistory: []models.OrderStatusChange{
			{To: models.OrderPlaced, Actor: ActorUser, Timestamp: now},
		},
		ETAMinutes: restaurant.DeliveryTime.Max,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	s.mu.Lock()
	next := cloneState(s.state)
	next.Orders = append(next.Orders, order)
	s.apply("checkout", next)
	s.mu.Unlock()

	s.cart.Clear()
	metrics.OrdersPlaced.Inc()
	s.logger.Info("Order placed", map[string]interface{}{
		"order_id":      order.ID,
		"restaurant_id": order.RestaurantID,
		"total":         order.Total,
		"eta_minutes":   order.ETAMinutes,
	})

	s.publish(ctx, events.New(events.TypeOrderPlaced, order.ID, map[string]interface{}{
		"orderId":      order.ID,
		"restaurantId": order.RestaurantID,
		"total":        order.Total,
		"itemCount":    len(order.Items),
	}))

	return cloneOrder(order), nil
}

// resolvePromo validates a promo code against the catalog and returns the
// discount it grants on the subtotal.
func (s *Store) resolvePromo(ctx context.Context, code string, subtotal float64) (float64, error) {
	promo, err := s.source.GetPromo(ctx, code)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return 0, stderrors.NewPromoNotFoundError(code)
		}
		return 0, err
	}
	if !promo.Active {
		return 0, stderrors.NewPromoInactiveError(promo.Code)
	}
	if time.Now().UTC().After(promo.ExpiresAt) {
		return 0, stderrors.NewPromoExpiredError(promo.Code)
	}
	if subtotal < promo.MinSubtotal {
		return 0, stderrors.NewPromoMinSubtotalError(promo.Code, promo.MinSubtotal, subtotal)
	}
	return promo.DiscountFor(subtotal), nil
}

// ==========================
// Lifecycle
// ==========================

// UpdateStatus moves an order along the lifecycle. The transition must be one
// the state machine permits for the acting role; anything else is rejected
// without touching the order. Successful transitions append to the status
// history and emit an order.status_changed event.
func (s *Store) UpdateStatus(ctx context.Context, orderID string, to models.OrderStatus, actor string) (models.Order, error) {
	s.mu.Lock()
	idx := s.indexOf(orderID)
	if idx < 0 {
		s.mu.Unlock()
		return models.Order{}, stderrors.NewOrderNotFoundError(orderID)
	}
	from := s.state.Orders[idx].Status

	if err := CanTransition(from, to, actor); err != nil {
		s.mu.Unlock()
		s.logger.Warn("Rejected order transition", map[string]interface{}{
			"order_id":   orderID,
			"from":       string(from),
			"to":         string(to),
			"actor":      actor,
			"valid_next": ValidTransitionsFrom(from),
		})
		return models.Order{}, err
	}

	now := time.Now().UTC()
	next := cloneState(s.state)
	order := &next.Orders[idx]
	order.Status = to
	order.UpdatedAt = now
	order.StatusHistory = append(order.StatusHistory, models.OrderStatusChange{
		From:      from,
		To:        to,
		Actor:     actor,
		Timestamp: now,
	})
	updated := cloneOrder(*order)
	s.apply("update_status", next)
	s.mu.Unlock()

	s.publish(ctx, events.New(events.TypeOrderStatusChanged, orderID, map[string]interface{}{
		"orderId": orderID,
		"from":    string(from),
		"to":      string(to),
		"actor":   actor,
	}))

	return updated, nil
}

// AssignDriver attaches a courier to an order. The driver must exist in the
// catalog.
func (s *Store) AssignDriver(ctx context.Context, orderID, driverID string) (models.Order, error) {
	driver, err := s.source.GetDriver(ctx, driverID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return models.Order{}, stderrors.NewRecordNotFoundError("driver", driverID)
		}
		return models.Order{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(orderID)
	if idx < 0 {
		return models.Order{}, stderrors.NewOrderNotFoundError(orderID)
	}

	next := cloneState(s.state)
	next.Orders[idx].DriverID = driver.ID
	next.Orders[idx].UpdatedAt = time.Now().UTC()
	updated := cloneOrder(next.Orders[idx])
	s.apply("assign_driver", next)
	return updated, nil
}

// ==========================
// Receipt
// ==========================

// receiptPayload is the QR-encoded pickup summary a courier or counter scans.
type receiptPayload struct {
	OrderID        string  `json:"orderId"`
	RestaurantName string  `json:"restaurantName"`
	Total          float64 `json:"total"`
	Status         string  `json:"status"`
	ETAMinutes     int     `json:"etaMinutes"`
}

// Receipt renders an order's pickup summary as a PNG QR code.
func (s *Store) Receipt(orderID string) ([]byte, error) {
	order, err := s.Get(orderID)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(receiptPayload{
		OrderID:        order.ID,
		RestaurantName: order.RestaurantName,
		Total:          order.Total,
		Status:         string(order.Status),
		ETAMinutes:     order.ETAMinutes,
	})
	if err != nil {
		return nil, stderrors.NewReceiptEncodingFailedError(orderID, err)
	}

	png, err := qrcode.Encode(string(payload), qrcode.Medium, receiptSize)
	if err != nil {
		return nil, stderrors.NewReceiptEncodingFailedError(orderID, err)
	}
	return png, nil
}

// ==========================
// Reads
// ==========================

// indexOf returns the position of an order, or -1. Caller holds the lock.
func (s *Store) indexOf(orderID string) int {
	for i := range s.state.Orders {
		if s.state.Orders[i].ID == orderID {
			return i
		}
	}
	return -1
}

// Get returns a copy of one order.
func (s *Store) Get(orderID string) (models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.indexOf(orderID)
	if idx < 0 {
		return models.Order{}, stderrors.NewOrderNotFoundError(orderID)
	}
	return cloneOrder(s.state.Orders[idx]), nil
}

// List returns copies of every order, oldest first.
func (s *Store) List() []models.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneState(s.state).Orders
}

// Active returns copies of the orders still moving through the lifecycle.
func (s *Store) Active() []models.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var active []models.Order
	for _, o := range s.state.Orders {
		if !IsTerminal(o.Status) {
			active = append(active, cloneOrder(o))
		}
	}
	return active
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

// Load replaces the in-memory state with the persisted one. A missing key
// keeps the empty state.
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
