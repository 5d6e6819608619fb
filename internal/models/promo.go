// internal/models/promo.go
package models

import "time"

// PromoCode is a checkout discount. Either Percent or AmountOff is set, not both.
type PromoCode struct {
	Code        string    `json:"code"`
	Description string    `json:"description,omitempty"`
	Percent     int       `json:"percent,omitempty"`
	AmountOff   float64   `json:"amountOff,omitempty"`
	MinSubtotal float64   `json:"minSubtotal,omitempty"`
	ExpiresAt   time.Time `json:"expiresAt"`
	Active      bool      `json:"active"`
}

// DiscountFor computes the discount the code grants on a subtotal. The result
// never exceeds the subtotal.
func (p PromoCode) DiscountFor(subtotal float64) float64 {
	var discount float64
	if p.Percent > 0 {
		discount = subtotal * float64(p.Percent) / 100.0
	} else {
		discount = p.AmountOff
	}
	if discount > subtotal {
		return subtotal
	}
	return discount
}
