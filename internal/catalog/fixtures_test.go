// internal/catalog/fixtures_test.go
package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stderrors "delivery-engine/internal/common/errors"
)

// ==========================
// Embedded Catalog Tests
// ==========================

func TestNewFixtureSource_LoadsEmbeddedCatalog(t *testing.T) {
	source, err := NewFixtureSource()
	require.NoError(t, err)
	defer source.Close()

	restaurants, err := source.ListRestaurants(context.Background())
	require.NoError(t, err)
	assert.Len(t, restaurants, 8)

	// Every embedded record passed schema validation on load; spot-check a
	// few fields survived the trip.
	byID := make(map[string]bool)
	for _, r := range restaurants {
		byID[r.ID] = true
		assert.NotEmpty(t, r.Name)
		assert.GreaterOrEqual(t, r.PriceLevel, 1)
		assert.LessOrEqual(t, r.PriceLevel, 4)
		assert.LessOrEqual(t, r.DeliveryTime.Min, r.DeliveryTime.Max)
	}
	assert.True(t, byID["r-001"])
	assert.True(t, byID["r-008"])
}

func TestFixtureSource_GetRestaurant(t *testing.T) {
	source, err := NewFixtureSource()
	require.NoError(t, err)

	tests := []struct {
		name      string
		id        string
		expectErr error
		checkName string
	}{
		{
			name:      "known restaurant",
			id:        "r-001",
			checkName: "Siam Spice Kitchen",
		},
		{
			name:      "closed restaurant still resolvable",
			id:        "r-008",
			checkName: "Taco Loco",
		},
		{
			name:      "unknown restaurant",
			id:        "r-999",
			expectErr: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := source.GetRestaurant(context.Background(), tt.id)
			if tt.expectErr != nil {
				assert.ErrorIs(t, err, tt.expectErr)
				assert.Nil(t, r)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.checkName, r.Name)
		})
	}
}

func TestFixtureSource_ListMenu(t *testing.T) {
	source, err := NewFixtureSource()
	require.NoError(t, err)

	items, err := source.ListMenu(context.Background(), "r-001")
	require.NoError(t, err)
	require.Len(t, items, 4)
	for _, item := range items {
		assert.Equal(t, "r-001", item.RestaurantID)
	}

	// Unknown restaurant yields an empty menu, not an error.
	items, err = source.ListMenu(context.Background(), "r-999")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestFixtureSource_GetMenuItem_CarriesCustomizations(t *testing.T) {
	source, err := NewFixtureSource()
	require.NoError(t, err)

	item, err := source.GetMenuItem(context.Background(), "m-101")
	require.NoError(t, err)
	require.Len(t, item.CustomizationGroups, 2)

	protein := item.CustomizationGroups[0]
	assert.Equal(t, "Protein", protein.Name)
	assert.True(t, protein.Required)
	require.Len(t, protein.Options, 3)
	assert.Equal(t, 2.5, protein.Options[1].PriceDelta)
}

func TestFixtureSource_GetUserByEmail_CaseInsensitive(t *testing.T) {
	source, err := NewFixtureSource()
	require.NoError(t, err)

	u, err := source.GetUserByEmail(context.Background(), "AVA.CHEN@example.COM")
	require.NoError(t, err)
	assert.Equal(t, "u-001", u.ID)
	assert.NotEmpty(t, u.PasswordHash)

	_, err = source.GetUserByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFixtureSource_GetPromo(t *testing.T) {
	source, err := NewFixtureSource()
	require.NoError(t, err)

	p, err := source.GetPromo(context.Background(), "welcome10")
	require.NoError(t, err)
	assert.Equal(t, "WELCOME10", p.Code)
	assert.Equal(t, 10, p.Percent)

	_, err = source.GetPromo(context.Background(), "BOGUS")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFixtureSource_GetDriver(t *testing.T) {
	source, err := NewFixtureSource()
	require.NoError(t, err)

	d, err := source.GetDriver(context.Background(), "d-001")
	require.NoError(t, err)
	assert.Equal(t, "Leo Martins", d.Name)

	_, err = source.GetDriver(context.Background(), "d-999")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFixtureSource_ListRestaurants_ReturnsCopy(t *testing.T) {
	source, err := NewFixtureSource()
	require.NoError(t, err)

	first, err := source.ListRestaurants(context.Background())
	require.NoError(t, err)
	first[0].Name = "mutated"

	second, err := source.ListRestaurants(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, "mutated", second[0].Name)
}

// ==========================
// Directory Override Tests
// ==========================

func writeFixtureDir(t *testing.T, overrides map[string]string) string {
	t.Helper()

	defaults := map[string]string{
		"restaurants": `[{"id": "r-1", "name": "Test Kitchen", "rating": 4.0, "reviewCount": 10,
			"deliveryTime": {"min": 10, "max": 20}, "deliveryFee": 1.0, "cuisineTags": ["Test"],
			"priceLevel": 1, "isOpen": true, "address": "1 Test St"}]`,
		"menu_items": `[{"id": "m-1", "restaurantId": "r-1", "name": "Test Dish", "price": 5.0,
			"category": "Mains", "isAvailable": true}]`,
		"users":       `[{"id": "u-1", "name": "Test User", "email": "test@example.com"}]`,
		"drivers":     `[{"id": "d-1", "name": "Test Driver"}]`,
		"promo_codes": `[{"code": "TEST", "expiresAt": "2027-01-01T00:00:00Z", "active": true}]`,
	}
	for name, doc := range overrides {
		defaults[name] = doc
	}

	dir := t.TempDir()
	for name, doc := range defaults {
		err := os.WriteFile(filepath.Join(dir, name+".json"), []byte(doc), 0o644)
		require.NoError(t, err)
	}
	return dir
}

func TestNewFixtureSourceFromDir(t *testing.T) {
	dir := writeFixtureDir(t, nil)

	source, err := NewFixtureSourceFromDir(dir)
	require.NoError(t, err)

	r, err := source.GetRestaurant(context.Background(), "r-1")
	require.NoError(t, err)
	assert.Equal(t, "Test Kitchen", r.Name)
}

func TestNewFixtureSourceFromDir_SchemaViolation(t *testing.T) {
	// priceLevel out of range and rating missing.
	dir := writeFixtureDir(t, map[string]string{
		"restaurants": `[{"id": "r-1", "name": "Bad", "reviewCount": 0,
			"deliveryTime": {"min": 10, "max": 20}, "deliveryFee": 1.0, "cuisineTags": [],
			"priceLevel": 9, "isOpen": true, "address": "1 Test St"}]`,
	})

	_, err := NewFixtureSourceFromDir(dir)
	require.Error(t, err)
	assert.Equal(t, stderrors.ErrCodeCatalogValidationFailed, stderrors.CodeOf(err))
}

func TestNewFixtureSourceFromDir_MissingDocument(t *testing.T) {
	dir := writeFixtureDir(t, nil)
	require.NoError(t, os.Remove(filepath.Join(dir, "drivers.json")))

	_, err := NewFixtureSourceFromDir(dir)
	require.Error(t, err)
	assert.Equal(t, stderrors.ErrCodeCatalogSourceFailed, stderrors.CodeOf(err))
	assert.True(t, stderrors.IsRetryable(err))
}
