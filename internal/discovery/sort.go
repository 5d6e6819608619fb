// internal/discovery/sort.go
package discovery

import (
	"sort"

	"delivery-engine/internal/models"
)

// recommendedScore combines rating and review count. Both inputs raise the
// score monotonically; the review-count contribution saturates at 10k reviews
// so rating decides between equally saturated competitors.
func recommendedScore(r models.Restaurant) float64 {
	ratingComponent := r.Rating * 20
	popularity := float64(r.ReviewCount) / 100
	if popularity > 100 {
		popularity = 100
	}
	return ratingComponent*0.8 + popularity*0.2
}

// SortRestaurants returns a new slice ordered by the given mode. The input is
// never mutated. Ties keep the input's relative order, so output is
// deterministic for any fixed input. An unknown mode returns the copy
// unordered.
func SortRestaurants(list []models.Restaurant, mode models.SortMode) []models.Restaurant {
	out := make([]models.Restaurant, len(list))
	copy(out, list)

	var less func(i, j int) bool
	switch mode {
	case models.SortRecommended:
		less = func(i, j int) bool { return recommendedScore(out[i]) > recommendedScore(out[j]) }
	case models.SortFastestDelivery:
		less = func(i, j int) bool { return out[i].DeliveryTime.Min < out[j].DeliveryTime.Min }
	case models.SortRating:
		less = func(i, j int) bool { return out[i].Rating > out[j].Rating }
	case models.SortDistance:
		// Delivery fee stands in for distance; there is no geolocation.
		less = func(i, j int) bool { return out[i].DeliveryFee < out[j].DeliveryFee }
	case models.SortPriceLowToHigh:
		less = func(i, j int) bool { return out[i].PriceLevel < out[j].PriceLevel }
	case models.SortPriceHighToLow:
		less = func(i, j int) bool { return out[i].PriceLevel > out[j].PriceLevel }
	default:
		return out
	}

	sort.SliceStable(out, less)
	return out
}
