// cmd/engine-sim/session.go
package main

import (
	"context"
	"fmt"

	"delivery-engine/internal/common/logger"
	"delivery-engine/internal/discovery"
	"delivery-engine/internal/models"
	"delivery-engine/internal/stores/auth"
	"delivery-engine/internal/stores/cart"
	"delivery-engine/internal/stores/filters"
	"delivery-engine/internal/stores/issues"
	"delivery-engine/internal/stores/orders"
	"delivery-engine/internal/stores/payments"
	"delivery-engine/internal/stores/ratings"
)

// session walks one simulated client through the whole engine: sign-in,
// filtered browse, cart assembly, checkout, delivery lifecycle, a support
// issue and a rating.
type session struct {
	discovery *discovery.Engine
	filters   *filters.Store
	cart      *cart.Store
	auth      *auth.Store
	payments  *payments.Store
	orders    *orders.Store
	issues    *issues.Store
	ratings   *ratings.Store
	log       logger.Logger
}

func (s *session) run(ctx context.Context) error {
	// Sign-in is best effort. The fixture accounts exist for demos; a failed
	// sign-in leaves the session anonymous and everything else still works.
	userID := "u-001"
	if user, _, err := s.auth.SignIn(ctx, "ava.chen@example.com", "secret"); err != nil {
		s.log.WithError(err).Warn("Sign-in failed, continuing as guest", nil)
	} else {
		userID = user.ID
		s.log.Info("Signed in", map[string]interface{}{
			"user_id":   user.ID,
			"addresses": len(s.auth.Addresses()),
		})
	}

	// Narrow the feed: budget places with decent ratings that deliver fast.
	s.filters.TogglePriceLevel(1)
	s.filters.TogglePriceLevel(2)
	minRating := 4.5
	s.filters.SetMinRating(&minRating)
	maxWait := 30
	s.filters.SetMaxDeliveryTime(&maxWait)
	s.filters.SetSortBy(models.SortRating)

	restaurants, err := s.discovery.Browse(ctx, s.filters.State(), "")
	if err != nil {
		return err
	}
	s.log.Info("Browse results", map[string]interface{}{
		"matches":        len(restaurants),
		"active_filters": s.filters.ActiveFilterCount(),
	})
	if len(restaurants) == 0 {
		s.filters.ClearFilters()
		if restaurants, err = s.discovery.Browse(ctx, s.filters.State(), ""); err != nil {
			return err
		}
	}
	if len(restaurants) == 0 {
		return fmt.Errorf("catalog returned no restaurants")
	}
	if err := s.filters.Save(ctx); err != nil {
		return err
	}
	chosen := restaurants[0]

	menu, err := s.discovery.Menu(ctx, chosen.ID, "")
	if err != nil {
		return err
	}
	if len(menu) == 0 {
		return fmt.Errorf("restaurant %s has no menu", chosen.ID)
	}

	cartRestaurant := models.CartRestaurant{
		ID:          chosen.ID,
		Name:        chosen.Name,
		DeliveryFee: chosen.DeliveryFee,
	}
	line, _ := s.cart.AddItem(menu[0], 2, nil, "Extra napkins, please", cartRestaurant)
	if len(menu) > 1 {
		s.cart.AddItem(menu[1], 1, nil, "", cartRestaurant)
	}
	s.log.Info("Cart built", map[string]interface{}{
		"restaurant": chosen.Name,
		"items":      s.cart.ItemCount(),
		"first_line": line.LineTotal(),
		"subtotal":   s.cart.Subtotal(),
	})
	if err := s.cart.Save(ctx); err != nil {
		return err
	}

	method, err := s.payments.AddMethod(ctx, models.PaymentMethod{
		Kind:        models.PaymentCard,
		Label:       "Personal Visa",
		CardBrand:   "visa",
		Last4:       "4242",
		ExpiryMonth: 8,
		ExpiryYear:  2028,
	})
	if err != nil {
		return err
	}

	order, err := s.orders.Checkout(ctx, orders.CheckoutInput{
		UserID:          userID,
		PaymentMethodID: method.ID,
		PromoCode:       "WELCOME10",
	})
	if err != nil {
		return err
	}
	s.log.Info("Order placed", map[string]interface{}{
		"order_id": order.ID,
		"total":    order.Total,
		"discount": order.Discount,
		"eta_min":  order.ETAMinutes,
	})

	// Walk the order through the delivery lifecycle the way the restaurant
	// and driver apps would.
	steps := []struct {
		to    models.OrderStatus
		actor string
	}{
		{models.OrderConfirmed, orders.ActorRestaurant},
		{models.OrderPreparing, orders.ActorRestaurant},
		{models.OrderReadyForPickup, orders.ActorRestaurant},
		{models.OrderPickedUp, orders.ActorDriver},
		{models.OrderDelivered, orders.ActorDriver},
	}
	for _, step := range steps {
		if step.to == models.OrderPickedUp {
			if _, err := s.orders.AssignDriver(ctx, order.ID, "d-001"); err != nil {
				return err
			}
		}
		if _, err := s.orders.UpdateStatus(ctx, order.ID, step.to, step.actor); err != nil {
			return err
		}
	}

	receipt, err := s.orders.Receipt(order.ID)
	if err != nil {
		return err
	}
	s.log.Info("Order delivered", map[string]interface{}{
		"order_id":      order.ID,
		"receipt_bytes": len(receipt),
	})

	// Report a problem against the delivered order and follow it to
	// resolution.
	issue, err := s.issues.Submit(ctx, issues.SubmitInput{
		OrderID:     order.ID,
		Category:    models.IssueMissingItems,
		Description: "One of the drinks was missing from the bag",
	})
	if err != nil {
		s.log.WithError(err).Warn("Issue submission failed", map[string]interface{}{
			"order_id": order.ID,
		})
	} else {
		if _, err := s.issues.UpdateStatus(ctx, issue.ID, models.IssueUnderReview); err != nil {
			return err
		}
		if _, err := s.issues.UpdateStatus(ctx, issue.ID, models.IssueResolved); err != nil {
			return err
		}
	}

	if _, err := s.ratings.RateOrder(ctx, ratings.RateInput{
		OrderID:      order.ID,
		RestaurantID: chosen.ID,
		Stars:        5,
		DriverStars:  5,
		Comment:      "Quick and still hot on arrival",
	}); err != nil {
		return err
	}
	average, count := s.ratings.AggregateForRestaurant(chosen.ID)

	s.log.Info("Session complete", map[string]interface{}{
		"order_id":       order.ID,
		"order_status":   string(models.OrderDelivered),
		"issues_open":    len(s.issues.Issues()),
		"rating_average": average,
		"rating_count":   count,
	})
	return nil
}
