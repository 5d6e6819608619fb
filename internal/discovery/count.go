// internal/discovery/count.go
package discovery

import "delivery-engine/internal/models"

// ActiveFilterCount counts how many filter dimensions deviate from the
// default state. Each selected price level and each selected dietary tag
// counts on its own; a non-default sort, a rating threshold and a delivery
// limit count one each.
func ActiveFilterCount(state models.FilterState) int {
	count := 0
	if state.SortBy != models.SortRecommended {
		count++
	}
	if state.PriceLevels != nil {
		count += state.PriceLevels.Len()
	}
	if state.MinRating != nil {
		count++
	}
	if state.MaxDeliveryTime != nil {
		count++
	}
	if state.Dietary != nil {
		count += state.Dietary.Len()
	}
	return count
}

// HasActiveFilters reports whether any filter deviates from the default.
func HasActiveFilters(state models.FilterState) bool {
	return ActiveFilterCount(state) > 0
}
