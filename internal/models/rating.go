// internal/models/rating.go
package models

import "time"

// Rating is the post-delivery star rating for an order. One rating per order;
// re-rating replaces the earlier entry.
type Rating struct {
	ID           string    `json:"id"`
	OrderID      string    `json:"orderId"`
	RestaurantID string    `json:"restaurantId"`
	Stars        int       `json:"stars"`
	DriverStars  int       `json:"driverStars,omitempty"`
	Comment      string    `json:"comment,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}
