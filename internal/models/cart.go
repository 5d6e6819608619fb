// internal/models/cart.go
package models

// CustomizationSelection records the options a user picked within one group.
// Option snapshots are copied from the menu at add time so later menu edits
// cannot change a cart line's price.
type CustomizationSelection struct {
	GroupID   string                `json:"groupId"`
	GroupName string                `json:"groupName"`
	Options   []CustomizationOption `json:"options"`
}

type CartItem struct {
	ID           string                   `json:"id"`
	MenuItem     MenuItem                 `json:"menuItem"`
	Quantity     int                      `json:"quantity"`
	Selections   []CustomizationSelection `json:"selections,omitempty"`
	Instructions string                   `json:"instructions,omitempty"`
}

// UnitPrice is the item base price plus the deltas of every selected option.
func (c CartItem) UnitPrice() float64 {
	price := c.MenuItem.Price
	for _, sel := range c.Selections {
		for _, opt := range sel.Options {
			price += opt.PriceDelta
		}
	}
	return price
}

// LineTotal is UnitPrice multiplied by quantity.
func (c CartItem) LineTotal() float64 {
	return c.UnitPrice() * float64(c.Quantity)
}

// CartRestaurant is the snapshot of the restaurant a cart is scoped to.
type CartRestaurant struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	DeliveryFee float64 `json:"deliveryFee"`
}
