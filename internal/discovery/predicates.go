// internal/discovery/predicates.go

// Package discovery implements the pure filtering and sorting layer over
// catalog records. Every function here is side-effect free: predicates map
// one restaurant and one filter value to a boolean, the sorter returns a new
// slice. No predicate returns an error; an unmatched or unknown input reads
// as "constraint not satisfied".
package discovery

import (
	"strings"

	"delivery-engine/internal/models"
	"delivery-engine/pkg/orderedset"
)

// CategoryAll is the sentinel meaning "no category constraint". The sentinel
// comparison is case-sensitive: "all" and "ALL" are treated as real category
// names.
const CategoryAll = "All"

// DietaryImplications maps each dietary tag to the lowercase cuisine keywords
// that satisfy it. The first keyword is the tag's own display form, so a
// cuisine tag containing "vegetarian" satisfies the vegetarian filter through
// the same lookup as the implied matches. Matching is substring containment
// against the lowercased cuisine tag, never fuzzy inference.
var DietaryImplications = map[models.DietaryTag][]string{
	models.DietVegetarian: {"vegetarian", "vegan", "salad", "indian", "curry"},
	models.DietVegan:      {"vegan", "salad", "plant-based", "juice"},
	models.DietGlutenFree: {"gluten free", "salad", "poke", "bowl"},
	models.DietHalal:      {"halal", "indian", "curry", "middle eastern", "turkish", "lebanese", "pakistani"},
	models.DietKosher:     {"kosher", "deli", "israeli"},
}

// MatchesPriceRange reports whether the restaurant's price level is one of the
// selected levels. An empty or nil selection means no constraint.
func MatchesPriceRange(r models.Restaurant, levels *orderedset.Set[int]) bool {
	if levels == nil || levels.Len() == 0 {
		return true
	}
	return levels.Has(r.PriceLevel)
}

// MatchesMinRating reports whether the restaurant's rating meets the
// threshold. The boundary is inclusive: a 4.5 restaurant passes a 4.5 filter.
func MatchesMinRating(r models.Restaurant, minRating *float64) bool {
	if minRating == nil {
		return true
	}
	return r.Rating >= *minRating
}

// MatchesDeliveryTime compares the slow end of the restaurant's delivery
// window against the limit, inclusive. The best-case bound is never compared.
func MatchesDeliveryTime(r models.Restaurant, maxMinutes *int) bool {
	if maxMinutes == nil {
		return true
	}
	return r.DeliveryTime.Max <= *maxMinutes
}

// MatchesDietary reports whether at least one cuisine tag satisfies at least
// one of the requested dietary tags per DietaryImplications. An empty or nil
// selection means no constraint; a tag missing from the table cannot be
// satisfied.
func MatchesDietary(r models.Restaurant, dietary *orderedset.Set[models.DietaryTag]) bool {
	if dietary == nil || dietary.Len() == 0 {
		return true
	}
	for _, tag := range dietary.Values() {
		keywords, ok := DietaryImplications[tag]
		if !ok {
			continue
		}
		for _, cuisine := range r.CuisineTags {
			lower := strings.ToLower(cuisine)
			for _, keyword := range keywords {
				if strings.Contains(lower, keyword) {
					return true
				}
			}
		}
	}
	return false
}

// MatchesCategory reports whether any cuisine tag equals the category,
// case-insensitively. An empty category or the CategoryAll sentinel means no
// constraint.
func MatchesCategory(r models.Restaurant, category string) bool {
	if category == "" || category == CategoryAll {
		return true
	}
	for _, tag := range r.CuisineTags {
		if strings.EqualFold(tag, category) {
			return true
		}
	}
	return false
}
