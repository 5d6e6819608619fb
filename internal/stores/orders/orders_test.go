// internal/stores/orders/orders_test.go
package orders

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"delivery-engine/internal/catalog"
	stderrors "delivery-engine/internal/common/errors"
	"delivery-engine/internal/common/logger"
	"delivery-engine/internal/events"
	"delivery-engine/internal/models"
	"delivery-engine/internal/storage"
	"delivery-engine/internal/stores/cart"
)

// ==========================
// Test Helper Functions
// ==========================

type captureSink struct {
	mu     sync.Mutex
	events []events.Event
}

func (c *captureSink) Publish(ctx context.Context, event events.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
	return nil
}

func (c *captureSink) Close() error { return nil }

func (c *captureSink) byType(eventType string) []events.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []events.Event
	for _, e := range c.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

type failingSink struct{}

func (failingSink) Publish(ctx context.Context, event events.Event) error {
	return errors.New("broker unreachable")
}
func (failingSink) Close() error { return nil }

func createTestStore(t *testing.T) (*Store, *cart.Store, *captureSink) {
	t.Helper()

	source, err := catalog.NewFixtureSource()
	require.NoError(t, err)

	cartStore := cart.NewStore(storage.NewMemory(), logger.NewTestLogger(t))
	sink := &captureSink{}
	store := NewStore(storage.NewMemory(), source, cartStore, sink, logger.NewTestLogger(t))
	return store, cartStore, sink
}

// fillCart puts quantity Pad Thais from Siam Spice Kitchen in the cart,
// 12.50 each.
func fillCart(t *testing.T, cartStore *cart.Store, quantity int) {
	t.Helper()
	item := models.MenuItem{
		ID: "m-101", RestaurantID: "r-001", Name: "Pad Thai",
		Price: 12.5, Category: "Noodles", IsAvailable: true,
	}
	restaurant := models.CartRestaurant{ID: "r-001", Name: "Siam Spice Kitchen", DeliveryFee: 2.49}
	cartStore.AddItem(item, quantity, nil, "", restaurant)
}

func placeTestOrder(t *testing.T, store *Store, cartStore *cart.Store) models.Order {
	t.Helper()
	fillCart(t, cartStore, 2)
	order, err := store.Checkout(context.Background(), CheckoutInput{UserID: "u-001", PaymentMethodID: "pm-1"})
	require.NoError(t, err)
	return order
}

// ==========================
// Checkout Tests
// ==========================

func TestStore_Checkout(t *testing.T) {
	store, cartStore, sink := createTestStore(t)
	fillCart(t, cartStore, 2)

	order, err := store.Checkout(context.Background(), CheckoutInput{
		UserID:          "u-001",
		PaymentMethodID: "pm-1",
		PromoCode:       "WELCOME10",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, order.ID)
	assert.Equal(t, "r-001", order.RestaurantID)
	assert.Equal(t, "Siam Spice Kitchen", order.RestaurantName)
	assert.Len(t, order.Items, 1)
	assert.InDelta(t, 25.0, order.Subtotal, 1e-9)
	assert.InDelta(t, 2.49, order.DeliveryFee, 1e-9)
	assert.InDelta(t, 2.5, order.Discount, 1e-9, "WELCOME10 takes 10 percent")
	assert.InDelta(t, 24.99, order.Total, 1e-9)
	assert.Equal(t, models.OrderPlaced, order.Status)
	assert.Equal(t, 30, order.ETAMinutes, "ETA is the delivery window upper bound")

	require.Len(t, order.StatusHistory, 1)
	assert.Equal(t, models.OrderPlaced, order.StatusHistory[0].To)
	assert.Equal(t, ActorUser, order.StatusHistory[0].Actor)

	assert.True(t, cartStore.IsEmpty(), "checkout consumes the cart")

	placed := sink.byType(events.TypeOrderPlaced)
	require.Len(t, placed, 1)
	assert.Equal(t, order.ID, placed[0].Key)
}

func TestStore_Checkout_EmptyCart(t *testing.T) {
	store, _, _ := createTestStore(t)

	_, err := store.Checkout(context.Background(), CheckoutInput{UserID: "u-001"})

	require.Error(t, err)
	assert.Equal(t, stderrors.ErrCodeEmptyCart, stderrors.CodeOf(err))
}

func TestStore_Checkout_PromoValidation(t *testing.T) {
	tests := []struct {
		name     string
		quantity int
		promo    string
		wantCode stderrors.ErrorCode
	}{
		{
			name:     "unknown code",
			quantity: 2,
			promo:    "BOGUS",
			wantCode: stderrors.ErrCodePromoNotFound,
		},
		{
			name:     "deactivated code",
			quantity: 2,
			promo:    "VIPONLY",
			wantCode: stderrors.ErrCodePromoInactive,
		},
		{
			name:     "expired code",
			quantity: 2,
			promo:    "SUMMER20",
			wantCode: stderrors.ErrCodePromoExpired,
		},
		{
			name:     "subtotal below minimum",
			quantity: 1, // 12.50, SAVE5 needs 25.00
			promo:    "SAVE5",
			wantCode: stderrors.ErrCodePromoMinSubtotal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, cartStore, _ := createTestStore(t)
			fillCart(t, cartStore, tt.quantity)

			_, err := store.Checkout(context.Background(), CheckoutInput{
				UserID:    "u-001",
				PromoCode: tt.promo,
			})

			require.Error(t, err)
			assert.Equal(t, tt.wantCode, stderrors.CodeOf(err))
			assert.False(t, cartStore.IsEmpty(), "failed checkout keeps the cart")
			assert.Empty(t, store.List(), "failed checkout places no order")
		})
	}
}

func TestStore_Checkout_PromoCodeIsCaseInsensitive(t *testing.T) {
	store, cartStore, _ := createTestStore(t)
	fillCart(t, cartStore, 2)

	order, err := store.Checkout(context.Background(), CheckoutInput{
		UserID:    "u-001",
		PromoCode: "welcome10",
	})

	require.NoError(t, err)
	assert.InDelta(t, 2.5, order.Discount, 1e-9)
}

func TestStore_Checkout_PublishFailureDoesNotFailCheckout(t *testing.T) {
	source, err := catalog.NewFixtureSource()
	require.NoError(t, err)
	cartStore := cart.NewStore(storage.NewMemory(), logger.NewNoOpLogger())
	store := NewStore(storage.NewMemory(), source, cartStore, failingSink{}, logger.NewNoOpLogger())
	fillCart(t, cartStore, 2)

	order, err := store.Checkout(context.Background(), CheckoutInput{UserID: "u-001"})

	require.NoError(t, err)
	assert.Equal(t, models.OrderPlaced, order.Status)
	assert.True(t, cartStore.IsEmpty())
}

// ==========================
// Lifecycle Tests
// ==========================

func TestStore_UpdateStatus_FullLifecycle(t *testing.T) {
	store, cartStore, sink := createTestStore(t)
	order := placeTestOrder(t, store, cartStore)

	steps := []struct {
		to    models.OrderStatus
		actor string
	}{
		{models.OrderConfirmed, ActorRestaurant},
		{models.OrderPreparing, ActorRestaurant},
		{models.OrderReadyForPickup, ActorRestaurant},
		{models.OrderPickedUp, ActorDriver},
		{models.OrderDelivered, ActorDriver},
	}

	for _, step := range steps {
		updated, err := store.UpdateStatus(context.Background(), order.ID, step.to, step.actor)
		require.NoError(t, err)
		assert.Equal(t, step.to, updated.Status)
	}

	final, err := store.Get(order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderDelivered, final.Status)
	require.Len(t, final.StatusHistory, 6, "placement plus five transitions")
	assert.Equal(t, models.OrderPickedUp, final.StatusHistory[5].From)
	assert.Equal(t, models.OrderDelivered, final.StatusHistory[5].To)
	assert.Equal(t, ActorDriver, final.StatusHistory[5].Actor)

	assert.Len(t, sink.byType(events.TypeOrderStatusChanged), 5)
	assert.Empty(t, store.Active(), "delivered orders are no longer active")
}

func TestStore_UpdateStatus_RejectsInvalidTransition(t *testing.T) {
	store, cartStore, _ := createTestStore(t)
	order := placeTestOrder(t, store, cartStore)

	_, err := store.UpdateStatus(context.Background(), order.ID, models.OrderDelivered, ActorDriver)

	require.Error(t, err)
	assert.Equal(t, stderrors.ErrCodeInvalidOrderTransition, stderrors.CodeOf(err))

	unchanged, err := store.Get(order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderPlaced, unchanged.Status)
	assert.Len(t, unchanged.StatusHistory, 1)
}

func TestStore_UpdateStatus_RejectsWrongActor(t *testing.T) {
	store, cartStore, _ := createTestStore(t)
	order := placeTestOrder(t, store, cartStore)

	_, err := store.UpdateStatus(context.Background(), order.ID, models.OrderConfirmed, ActorUser)

	require.Error(t, err)
	assert.Equal(t, stderrors.ErrCodeInvalidOrderTransition, stderrors.CodeOf(err))
}

func TestStore_UpdateStatus_CancellationWindow(t *testing.T) {
	store, cartStore, _ := createTestStore(t)

	// A user can cancel while the order is merely placed.
	order := placeTestOrder(t, store, cartStore)
	cancelled, err := store.UpdateStatus(context.Background(), order.ID, models.OrderCancelled, ActorUser)
	require.NoError(t, err)
	assert.Equal(t, models.OrderCancelled, cancelled.Status)

	// Once the kitchen is preparing, cancellation is rejected.
	order = placeTestOrder(t, store, cartStore)
	_, err = store.UpdateStatus(context.Background(), order.ID, models.OrderConfirmed, ActorRestaurant)
	require.NoError(t, err)
	_, err = store.UpdateStatus(context.Background(), order.ID, models.OrderPreparing, ActorRestaurant)
	require.NoError(t, err)

	_, err = store.UpdateStatus(context.Background(), order.ID, models.OrderCancelled, ActorUser)
	require.Error(t, err)
	assert.Equal(t, stderrors.ErrCodeInvalidOrderTransition, stderrors.CodeOf(err))
}

func TestStore_UpdateStatus_UnknownOrder(t *testing.T) {
	store, _, _ := createTestStore(t)

	_, err := store.UpdateStatus(context.Background(), "o-missing", models.OrderConfirmed, ActorRestaurant)

	require.Error(t, err)
	assert.Equal(t, stderrors.ErrCodeOrderNotFound, stderrors.CodeOf(err))
}

func TestStore_AssignDriver(t *testing.T) {
	store, cartStore, _ := createTestStore(t)
	order := placeTestOrder(t, store, cartStore)

	updated, err := store.AssignDriver(context.Background(), order.ID, "d-001")
	require.NoError(t, err)
	assert.Equal(t, "d-001", updated.DriverID)

	_, err = store.AssignDriver(context.Background(), order.ID, "d-999")
	require.Error(t, err)
	assert.Equal(t, stderrors.ErrCodeRecordNotFound, stderrors.CodeOf(err))
}

// ==========================
// Receipt Tests
// ==========================

func TestStore_Receipt(t *testing.T) {
	store, cartStore, _ := createTestStore(t)
	order := placeTestOrder(t, store, cartStore)

	png, err := store.Receipt(order.ID)

	require.NoError(t, err)
	require.NotEmpty(t, png)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, png[:4], "receipt is a PNG image")
}

func TestStore_Receipt_UnknownOrder(t *testing.T) {
	store, _, _ := createTestStore(t)

	_, err := store.Receipt("o-missing")

	require.Error(t, err)
	assert.Equal(t, stderrors.ErrCodeOrderNotFound, stderrors.CodeOf(err))
}

// ==========================
// Persistence Tests
// ==========================

func TestStore_SaveAndLoad(t *testing.T) {
	kv := storage.NewMemory()
	source, err := catalog.NewFixtureSource()
	require.NoError(t, err)

	cartStore := cart.NewStore(storage.NewMemory(), logger.NewNoOpLogger())
	store := NewStore(kv, source, cartStore, events.NopSink{}, logger.NewNoOpLogger())
	fillCart(t, cartStore, 2)
	order, err := store.Checkout(context.Background(), CheckoutInput{UserID: "u-001"})
	require.NoError(t, err)
	_, err = store.UpdateStatus(context.Background(), order.ID, models.OrderConfirmed, ActorRestaurant)
	require.NoError(t, err)
	require.NoError(t, store.Save(context.Background()))

	restored := NewStore(kv, source, cartStore, events.NopSink{}, logger.NewNoOpLogger())
	require.NoError(t, restored.Load(context.Background()))

	loaded, err := restored.Get(order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderConfirmed, loaded.Status)
	assert.Len(t, loaded.StatusHistory, 2)
	assert.InDelta(t, order.Total, loaded.Total, 1e-9)
}
