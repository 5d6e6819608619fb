// internal/discovery/filter.go
package discovery

import (
	"strings"

	"delivery-engine/internal/models"
)

// Matches reports whether the restaurant passes every active filter. Closed
// restaurants never match regardless of the other selections. Predicates
// short-circuit; their order changes performance only, never the result.
func Matches(r models.Restaurant, state models.FilterState, category string) bool {
	if !r.IsOpen {
		return false
	}
	if !MatchesPriceRange(r, state.PriceLevels) {
		return false
	}
	if !MatchesMinRating(r, state.MinRating) {
		return false
	}
	if !MatchesDeliveryTime(r, state.MaxDeliveryTime) {
		return false
	}
	if !MatchesDietary(r, state.Dietary) {
		return false
	}
	return MatchesCategory(r, category)
}

// FilterRestaurants returns the restaurants that pass Matches, preserving
// input order. The input slice is never modified.
func FilterRestaurants(list []models.Restaurant, state models.FilterState, category string) []models.Restaurant {
	out := make([]models.Restaurant, 0, len(list))
	for _, r := range list {
		if Matches(r, state, category) {
			out = append(out, r)
		}
	}
	return out
}

// FilterMenu returns the available items, optionally narrowed to one category.
// The category comparison is case-insensitive with the same CategoryAll
// sentinel as restaurant filtering.
func FilterMenu(items []models.MenuItem, category string) []models.MenuItem {
	out := make([]models.MenuItem, 0, len(items))
	for _, item := range items {
		if !item.IsAvailable {
			continue
		}
		if category != "" && category != CategoryAll && !strings.EqualFold(item.Category, category) {
			continue
		}
		out = append(out, item)
	}
	return out
}

// GroupMenuByCategory buckets available items by category label. Category
// order follows first appearance in the input so menus keep their authored
// section order.
func GroupMenuByCategory(items []models.MenuItem) ([]string, map[string][]models.MenuItem) {
	var order []string
	groups := make(map[string][]models.MenuItem)

	for _, item := range items {
		if !item.IsAvailable {
			continue
		}
		if _, seen := groups[item.Category]; !seen {
			order = append(order, item.Category)
		}
		groups[item.Category] = append(groups[item.Category], item)
	}

	return order, groups
}
