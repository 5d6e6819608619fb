// internal/models/order.go
package models

import "time"

// OrderStatus is the delivery lifecycle position of a placed order.
type OrderStatus string

const (
	OrderPlaced         OrderStatus = "placed"
	OrderConfirmed      OrderStatus = "confirmed"
	OrderPreparing      OrderStatus = "preparing"
	OrderReadyForPickup OrderStatus = "ready_for_pickup"
	OrderPickedUp       OrderStatus = "picked_up"
	OrderDelivered      OrderStatus = "delivered"
	OrderCancelled      OrderStatus = "cancelled"
)

// OrderStatusChange is one audit entry in an order's status history.
type OrderStatusChange struct {
	From      OrderStatus `json:"from"`
	To        OrderStatus `json:"to"`
	Actor     string      `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
}

type Order struct {
	ID              string              `json:"id"`
	UserID          string              `json:"userId,omitempty"`
	RestaurantID    string              `json:"restaurantId"`
	RestaurantName  string              `json:"restaurantName"`
	Items           []CartItem          `json:"items"`
	Subtotal        float64             `json:"subtotal"`
	DeliveryFee     float64             `json:"deliveryFee"`
	Discount        float64             `json:"discount"`
	Total           float64             `json:"total"`
	PromoCode       string              `json:"promoCode,omitempty"`
	PaymentMethodID string              `json:"paymentMethodId,omitempty"`
	Status          OrderStatus         `json:"status"`
	StatusHistory   []OrderStatusChange `json:"statusHistory"`
	ETAMinutes      int                 `json:"etaMinutes"`
	DriverID        string              `json:"driverId,omitempty"`
	CreatedAt       time.Time           `json:"createdAt"`
	UpdatedAt       time.Time           `json:"updatedAt"`
}
