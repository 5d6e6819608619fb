// internal/stores/orders/statemachine_test.go
package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stderrors "delivery-engine/internal/common/errors"
	"delivery-engine/internal/models"
)

// ==========================
// Transition Table Tests
// ==========================

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    models.OrderStatus
		to      models.OrderStatus
		actor   string
		allowed bool
	}{
		{
			name:    "restaurant confirms a placed order",
			from:    models.OrderPlaced,
			to:      models.OrderConfirmed,
			actor:   ActorRestaurant,
			allowed: true,
		},
		{
			name:    "user cancels a placed order",
			from:    models.OrderPlaced,
			to:      models.OrderCancelled,
			actor:   ActorUser,
			allowed: true,
		},
		{
			name:    "user cancels a confirmed order",
			from:    models.OrderConfirmed,
			to:      models.OrderCancelled,
			actor:   ActorUser,
			allowed: true,
		},
		{
			name:    "driver delivers a picked up order",
			from:    models.OrderPickedUp,
			to:      models.OrderDelivered,
			actor:   ActorDriver,
			allowed: true,
		},
		{
			name:    "user cannot confirm their own order",
			from:    models.OrderPlaced,
			to:      models.OrderConfirmed,
			actor:   ActorUser,
			allowed: false,
		},
		{
			name:    "no skipping straight to delivered",
			from:    models.OrderPlaced,
			to:      models.OrderDelivered,
			actor:   ActorDriver,
			allowed: false,
		},
		{
			name:    "preparing is past the cancellation window",
			from:    models.OrderPreparing,
			to:      models.OrderCancelled,
			actor:   ActorUser,
			allowed: false,
		},
		{
			name:    "delivered is terminal",
			from:    models.OrderDelivered,
			to:      models.OrderPlaced,
			actor:   ActorRestaurant,
			allowed: false,
		},
		{
			name:    "cancelled is terminal",
			from:    models.OrderCancelled,
			to:      models.OrderConfirmed,
			actor:   ActorRestaurant,
			allowed: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanTransition(tt.from, tt.to, tt.actor)
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Equal(t, stderrors.ErrCodeInvalidOrderTransition, stderrors.CodeOf(err))
			}
		})
	}
}

func TestValidTransitionsFrom(t *testing.T) {
	assert.ElementsMatch(t,
		[]models.OrderStatus{models.OrderConfirmed, models.OrderCancelled},
		ValidTransitionsFrom(models.OrderPlaced))
	assert.ElementsMatch(t,
		[]models.OrderStatus{models.OrderPreparing, models.OrderCancelled},
		ValidTransitionsFrom(models.OrderConfirmed))
	assert.ElementsMatch(t,
		[]models.OrderStatus{models.OrderReadyForPickup},
		ValidTransitionsFrom(models.OrderPreparing))
	assert.Empty(t, ValidTransitionsFrom(models.OrderDelivered))
	assert.Empty(t, ValidTransitionsFrom(models.OrderCancelled))
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, IsTerminal(models.OrderDelivered))
	assert.True(t, IsTerminal(models.OrderCancelled))
	assert.False(t, IsTerminal(models.OrderPlaced))
	assert.False(t, IsTerminal(models.OrderReadyForPickup))
}
