// internal/stores/orders/statemachine.go
package orders

import (
	stderrors "delivery-engine/internal/common/errors"
	"delivery-engine/internal/models"
)

// Actors that may drive an order through its lifecycle.
const (
	ActorUser       = "user"
	ActorRestaurant = "restaurant"
	ActorDriver     = "driver"
)

// Transition is one permitted status change and the actor allowed to make it.
type Transition struct {
	From  models.OrderStatus
	To    models.OrderStatus
	Actor string
}

// validTransitions is the authoritative lifecycle definition. An order stays
// cancellable until the kitchen starts preparing it.
var validTransitions = []Transition{
	{From: models.OrderPlaced, To: models.OrderConfirmed, Actor: ActorRestaurant},
	{From: models.OrderPlaced, To: models.OrderCancelled, Actor: ActorRestaurant},
	{From: models.OrderPlaced, To: models.OrderCancelled, Actor: ActorUser},
	{From: models.OrderConfirmed, To: models.OrderPreparing, Actor: ActorRestaurant},
	{From: models.OrderConfirmed, To: models.OrderCancelled, Actor: ActorRestaurant},
	{From: models.OrderConfirmed, To: models.OrderCancelled, Actor: ActorUser},
	{From: models.OrderPreparing, To: models.OrderReadyForPickup, Actor: ActorRestaurant},
	{From: models.OrderReadyForPickup, To: models.OrderPickedUp, Actor: ActorDriver},
	{From: models.OrderPickedUp, To: models.OrderDelivered, Actor: ActorDriver},
}

type transitionKey struct {
	From  models.OrderStatus
	To    models.OrderStatus
	Actor string
}

var transitionMap = func() map[transitionKey]bool {
	m := make(map[transitionKey]bool, len(validTransitions))
	for _, t := range validTransitions {
		m[transitionKey{t.From, t.To, t.Actor}] = true
	}
	return m
}()

// ValidTransitionsFrom lists the distinct statuses reachable from a status,
// regardless of actor.
func ValidTransitionsFrom(status models.OrderStatus) []models.OrderStatus {
	var nexts []models.OrderStatus
	seen := map[models.OrderStatus]bool{}
	for _, t := range validTransitions {
		if t.From == status && !seen[t.To] {
			nexts = append(nexts, t.To)
			seen[t.To] = true
		}
	}
	return nexts
}

// CanTransition reports whether the actor may move an order from one status
// to another.
func CanTransition(from, to models.OrderStatus, actor string) error {
	if transitionMap[transitionKey{From: from, To: to, Actor: actor}] {
		return nil
	}
	return stderrors.NewInvalidOrderTransitionError(string(from), string(to))
}

// IsTerminal reports whether a status has no outgoing transitions.
func IsTerminal(status models.OrderStatus) bool {
	return len(ValidTransitionsFrom(status)) == 0
}
