// Package catalog provides read-only access to restaurant, menu, user, driver
// and promo records. The engine treats the catalog as inert external input:
// discovery filters it, stores snapshot from it, nothing writes back.
package catalog

import (
	"context"
	"errors"

	"delivery-engine/internal/models"
)

// ErrNotFound is returned by lookup methods when no record matches.
var ErrNotFound = errors.New("catalog: record not found")

// Source is the catalog backend. FixtureSource serves embedded mock data;
// PostgresSource serves the same records from a relational catalog.
type Source interface {
	ListRestaurants(ctx context.Context) ([]models.Restaurant, error)
	GetRestaurant(ctx context.Context, id string) (*models.Restaurant, error)
	ListMenu(ctx context.Context, restaurantID string) ([]models.MenuItem, error)
	GetMenuItem(ctx context.Context, id string) (*models.MenuItem, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetDriver(ctx context.Context, id string) (*models.Driver, error)
	GetPromo(ctx context.Context, code string) (*models.PromoCode, error)
	Close() error
}
