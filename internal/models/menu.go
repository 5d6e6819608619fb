// internal/models/menu.go
package models

type MenuItem struct {
	ID                  string               `json:"id"`
	RestaurantID        string               `json:"restaurantId"`
	Name                string               `json:"name"`
	Description         string               `json:"description,omitempty"`
	Price               float64              `json:"price"`
	Category            string               `json:"category"`
	IsAvailable         bool                 `json:"isAvailable"`
	IsPopular           bool                 `json:"isPopular,omitempty"`
	IsSpicy             bool                 `json:"isSpicy,omitempty"`
	DietaryTags         []string             `json:"dietaryTags,omitempty"`
	CustomizationGroups []CustomizationGroup `json:"customizationGroups,omitempty"`
	ImageURL            string               `json:"imageUrl,omitempty"`
}

// CustomizationGroup is a named choice block on a menu item, e.g. "Size" or
// "Extra toppings". MinSelect/MaxSelect bound how many options may be chosen.
type CustomizationGroup struct {
	ID        string                `json:"id"`
	Name      string                `json:"name"`
	Required  bool                  `json:"required"`
	MinSelect int                   `json:"minSelect"`
	MaxSelect int                   `json:"maxSelect"`
	Options   []CustomizationOption `json:"options"`
}

// CustomizationOption carries the price delta added to the item base price
// when the option is selected.
type CustomizationOption struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	PriceDelta float64 `json:"priceDelta"`
}
