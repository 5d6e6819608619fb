// internal/discovery/filter_test.go
package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"delivery-engine/internal/models"
)

// ==========================
// Composite Filter Tests
// ==========================

func TestMatches_RejectsClosedRestaurants(t *testing.T) {
	closed := models.Restaurant{
		ID: "r-closed", Rating: 5.0, PriceLevel: 1, IsOpen: false,
		DeliveryTime: models.DeliveryWindow{Min: 5, Max: 10},
	}

	// Even the all-pass default state must reject a closed restaurant.
	assert.False(t, Matches(closed, models.DefaultFilterState(), ""))

	state := models.DefaultFilterState()
	state.MinRating = floatPtr(1.0)
	assert.False(t, Matches(closed, state, ""))
}

func TestMatches_RequiresEveryPredicate(t *testing.T) {
	r := models.Restaurant{
		ID: "r-test", Rating: 4.6, PriceLevel: 2, IsOpen: true,
		DeliveryTime: models.DeliveryWindow{Min: 20, Max: 30},
		CuisineTags:  []string{"Indian", "Curry"},
	}

	tests := []struct {
		name     string
		mutate   func(state *models.FilterState)
		category string
		want     bool
	}{
		{
			name:   "default state passes open restaurant",
			mutate: func(state *models.FilterState) {},
			want:   true,
		},
		{
			name:   "price level mismatch fails",
			mutate: func(state *models.FilterState) { state.PriceLevels = levelSet(4) },
			want:   false,
		},
		{
			name:   "rating threshold above fails",
			mutate: func(state *models.FilterState) { state.MinRating = floatPtr(4.7) },
			want:   false,
		},
		{
			name:   "delivery limit below worst case fails",
			mutate: func(state *models.FilterState) { state.MaxDeliveryTime = intPtr(29) },
			want:   false,
		},
		{
			name:   "unsatisfied dietary selection fails",
			mutate: func(state *models.FilterState) { state.Dietary = dietSet(models.DietKosher) },
			want:   false,
		},
		{
			name:     "category mismatch fails",
			mutate:   func(state *models.FilterState) {},
			category: "Sushi",
			want:     false,
		},
		{
			name: "all constraints satisfied together",
			mutate: func(state *models.FilterState) {
				state.PriceLevels = levelSet(1, 2)
				state.MinRating = floatPtr(4.5)
				state.MaxDeliveryTime = intPtr(30)
				state.Dietary = dietSet(models.DietHalal)
			},
			category: "indian",
			want:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := models.DefaultFilterState()
			tt.mutate(&state)
			assert.Equal(t, tt.want, Matches(r, state, tt.category))
		})
	}
}

func TestFilterRestaurants_PreservesInputOrder(t *testing.T) {
	state := models.DefaultFilterState()

	got := FilterRestaurants(createTestRestaurants(), state, "")

	// All open restaurants, original order.
	ids := restaurantIDs(got)
	assert.Equal(t, []string{"r-001", "r-002", "r-003", "r-004", "r-005", "r-006", "r-007"}, ids)
}

func TestFilterRestaurants_ThenSortByRating(t *testing.T) {
	state := models.DefaultFilterState()
	state.PriceLevels = levelSet(1, 2)
	state.MinRating = floatPtr(4.5)
	state.MaxDeliveryTime = intPtr(30)

	matched := FilterRestaurants(createTestRestaurants(), state, "")
	sorted := SortRestaurants(matched, models.SortRating)

	// Survivors: price 1-2, rating at or above 4.5 and worst-case delivery at
	// or under 30 minutes, open only. Boundary cases r-001 (max exactly 30)
	// and r-007 (rating exactly 4.5) are included.
	assert.Equal(t, []string{"r-001", "r-003", "r-007"}, restaurantIDs(sorted))
}

// ==========================
// Menu Filter Tests
// ==========================

func createTestMenu() []models.MenuItem {
	return []models.MenuItem{
		{ID: "m-1", RestaurantID: "r-001", Name: "Pad Thai", Category: "Noodles", Price: 12.5, IsAvailable: true},
		{ID: "m-2", RestaurantID: "r-001", Name: "Green Curry", Category: "Curries", Price: 13.9, IsAvailable: true},
		{ID: "m-3", RestaurantID: "r-001", Name: "Tom Yum", Category: "Soups", Price: 8.9, IsAvailable: false},
		{ID: "m-4", RestaurantID: "r-001", Name: "Massaman Curry", Category: "Curries", Price: 14.2, IsAvailable: true},
	}
}

func TestFilterMenu(t *testing.T) {
	tests := []struct {
		name     string
		category string
		wantIDs  []string
	}{
		{"no category returns all available", "", []string{"m-1", "m-2", "m-4"}},
		{"All sentinel returns all available", "All", []string{"m-1", "m-2", "m-4"}},
		{"category narrows case-insensitively", "curries", []string{"m-2", "m-4"}},
		{"unknown category returns none", "Desserts", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterMenu(createTestMenu(), tt.category)
			ids := make([]string, 0, len(got))
			for _, item := range got {
				ids = append(ids, item.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestGroupMenuByCategory(t *testing.T) {
	order, groups := GroupMenuByCategory(createTestMenu())

	require.Equal(t, []string{"Noodles", "Curries"}, order, "category order follows first appearance")
	assert.Len(t, groups["Curries"], 2)
	assert.Len(t, groups["Noodles"], 1)
	_, hasSoups := groups["Soups"]
	assert.False(t, hasSoups, "unavailable items never create a category")
}

// ==========================
// Active Filter Count Tests
// ==========================

func TestActiveFilterCount_DefaultIsZero(t *testing.T) {
	assert.Equal(t, 0, ActiveFilterCount(models.DefaultFilterState()))
	assert.False(t, HasActiveFilters(models.DefaultFilterState()))
}

func TestActiveFilterCount_EachSelectionCountsIndependently(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(state *models.FilterState)
		want   int
	}{
		{"non-default sort", func(s *models.FilterState) { s.SortBy = models.SortRating }, 1},
		{"one price level", func(s *models.FilterState) { s.PriceLevels.Add(1) }, 1},
		{"two price levels", func(s *models.FilterState) { s.PriceLevels.Add(1); s.PriceLevels.Add(2) }, 2},
		{"rating threshold", func(s *models.FilterState) { s.MinRating = floatPtr(4.0) }, 1},
		{"delivery limit", func(s *models.FilterState) { s.MaxDeliveryTime = intPtr(30) }, 1},
		{"one dietary tag", func(s *models.FilterState) { s.Dietary.Add(models.DietVegan) }, 1},
		{"two dietary tags", func(s *models.FilterState) { s.Dietary.Add(models.DietVegan); s.Dietary.Add(models.DietHalal) }, 2},
		{
			name: "all dimensions together",
			mutate: func(s *models.FilterState) {
				s.SortBy = models.SortFastestDelivery
				s.PriceLevels.Add(1)
				s.PriceLevels.Add(2)
				s.MinRating = floatPtr(4.5)
				s.MaxDeliveryTime = intPtr(30)
				s.Dietary.Add(models.DietVegetarian)
			},
			want: 6,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := models.DefaultFilterState()
			tt.mutate(&state)
			assert.Equal(t, tt.want, ActiveFilterCount(state))
			assert.True(t, HasActiveFilters(state))
		})
	}
}

func TestActiveFilterCount_ToggleAddsExactlyOne(t *testing.T) {
	state := models.DefaultFilterState()

	before := ActiveFilterCount(state)
	state.PriceLevels.Toggle(3)
	assert.Equal(t, before+1, ActiveFilterCount(state))

	state.Dietary.Toggle(models.DietVegan)
	assert.Equal(t, before+2, ActiveFilterCount(state))

	// Toggling the same values back returns to the baseline.
	state.PriceLevels.Toggle(3)
	state.Dietary.Toggle(models.DietVegan)
	assert.Equal(t, before, ActiveFilterCount(state))
}

func restaurantIDs(list []models.Restaurant) []string {
	ids := make([]string, 0, len(list))
	for _, r := range list {
		ids = append(ids, r.ID)
	}
	return ids
}
