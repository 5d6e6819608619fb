// internal/models/filter.go
package models

import "delivery-engine/pkg/orderedset"

// SortMode selects the comparator used to order restaurant lists.
type SortMode string

const (
	SortRecommended     SortMode = "recommended"
	SortFastestDelivery SortMode = "fastest_delivery"
	SortRating          SortMode = "rating"
	SortDistance        SortMode = "distance"
	SortPriceLowToHigh  SortMode = "price_low_to_high"
	SortPriceHighToLow  SortMode = "price_high_to_low"
)

// ValidSortModes lists every accepted sort mode.
var ValidSortModes = map[SortMode]bool{
	SortRecommended:     true,
	SortFastestDelivery: true,
	SortRating:          true,
	SortDistance:        true,
	SortPriceLowToHigh:  true,
	SortPriceHighToLow:  true,
}

// DietaryTag is a special dietary accommodation category.
type DietaryTag string

const (
	DietVegetarian DietaryTag = "vegetarian"
	DietVegan      DietaryTag = "vegan"
	DietGlutenFree DietaryTag = "gluten_free"
	DietHalal      DietaryTag = "halal"
	DietKosher     DietaryTag = "kosher"
)

// ValidDietaryTags lists every accepted dietary tag.
var ValidDietaryTags = map[DietaryTag]bool{
	DietVegetarian: true,
	DietVegan:      true,
	DietGlutenFree: true,
	DietHalal:      true,
	DietKosher:     true,
}

// FilterState holds the discovery filter selections. The zero-valued
// selections (empty sets, nil thresholds, recommended sort) form the default
// state against which the active filter count is measured.
type FilterState struct {
	SortBy          SortMode                    `json:"sortBy"`
	PriceLevels     *orderedset.Set[int]        `json:"priceLevels"`
	MinRating       *float64                    `json:"minRating"`
	MaxDeliveryTime *int                        `json:"maxDeliveryTime"`
	Dietary         *orderedset.Set[DietaryTag] `json:"dietary"`
}

// DefaultFilterState returns the baseline state: recommended sort, no
// thresholds, empty selection sets.
func DefaultFilterState() FilterState {
	return FilterState{
		SortBy:      SortRecommended,
		PriceLevels: orderedset.New[int](),
		Dietary:     orderedset.New[DietaryTag](),
	}
}

// Clone returns a deep copy so reducers can derive a new state without
// touching the original.
func (f FilterState) Clone() FilterState {
	out := FilterState{SortBy: f.SortBy}
	if f.PriceLevels != nil {
		out.PriceLevels = f.PriceLevels.Clone()
	} else {
		out.PriceLevels = orderedset.New[int]()
	}
	if f.Dietary != nil {
		out.Dietary = f.Dietary.Clone()
	} else {
		out.Dietary = orderedset.New[DietaryTag]()
	}
	if f.MinRating != nil {
		v := *f.MinRating
		out.MinRating = &v
	}
	if f.MaxDeliveryTime != nil {
		v := *f.MaxDeliveryTime
		out.MaxDeliveryTime = &v
	}
	return out
}
