// internal/models/payment.go
package models

// PaymentKind distinguishes the supported payment method types.
type PaymentKind string

const (
	PaymentCard     PaymentKind = "card"
	PaymentPayPal   PaymentKind = "paypal"
	PaymentApplePay PaymentKind = "apple_pay"
	PaymentCash     PaymentKind = "cash"
)

type PaymentMethod struct {
	ID          string      `json:"id"`
	Kind        PaymentKind `json:"kind" validate:"required,oneof=card paypal apple_pay cash"`
	Label       string      `json:"label" validate:"required,max=64"`
	CardBrand   string      `json:"cardBrand,omitempty" validate:"required_if=Kind card"`
	Last4       string      `json:"last4,omitempty" validate:"required_if=Kind card,omitempty,len=4,numeric"`
	ExpiryMonth int         `json:"expiryMonth,omitempty" validate:"omitempty,min=1,max=12"`
	ExpiryYear  int         `json:"expiryYear,omitempty" validate:"omitempty,min=2020,max=2100"`
	IsDefault   bool        `json:"isDefault"`
}
