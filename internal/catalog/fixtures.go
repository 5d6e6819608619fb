// internal/catalog/fixtures.go
package catalog

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	stderrors "delivery-engine/internal/common/errors"
	"delivery-engine/internal/models"
)

//go:embed fixtures/*.json
var fixtureFS embed.FS

// FixtureSource serves the mock catalog shipped with the binary. Lookups are
// linear scans; the dataset is small enough that indexing would be noise.
type FixtureSource struct {
	restaurants []models.Restaurant
	menuItems   []models.MenuItem
	users       []models.User
	drivers     []models.Driver
	promos      []models.PromoCode
}

// NewFixtureSource loads and validates the embedded catalog.
func NewFixtureSource() (*FixtureSource, error) {
	return loadFixtures(func(name string) ([]byte, error) {
		return fixtureFS.ReadFile("fixtures/" + name + ".json")
	})
}

// NewFixtureSourceFromDir loads the catalog from JSON files on disk instead of
// the embedded copies. Each document keeps the embedded naming, e.g.
// restaurants.json.
func NewFixtureSourceFromDir(dir string) (*FixtureSource, error) {
	return loadFixtures(func(name string) ([]byte, error) {
		return os.ReadFile(filepath.Join(dir, name+".json"))
	})
}

// NewStaticSource wraps in-memory records without schema validation, for tests
// that need full control over the dataset.
func NewStaticSource(restaurants []models.Restaurant, menuItems []models.MenuItem) *FixtureSource {
	return &FixtureSource{restaurants: restaurants, menuItems: menuItems}
}

func loadFixtures(read func(name string) ([]byte, error)) (*FixtureSource, error) {
	s := &FixtureSource{}

	documents := []struct {
		name string
		dst  interface{}
	}{
		{"restaurants", &s.restaurants},
		{"menu_items", &s.menuItems},
		{"users", &s.users},
		{"drivers", &s.drivers},
		{"promo_codes", &s.promos},
	}

	for _, doc := range documents {
		data, err := read(doc.name)
		if err != nil {
			return nil, stderrors.NewCatalogSourceFailedError(fmt.Errorf("read %s: %w", doc.name, err))
		}
		if err := ValidateDocument(doc.name, data); err != nil {
			return nil, stderrors.NewCatalogValidationFailedError(err.Error())
		}
		if err := json.Unmarshal(data, doc.dst); err != nil {
			return nil, stderrors.NewCatalogSourceFailedError(fmt.Errorf("decode %s: %w", doc.name, err))
		}
	}

	return s, nil
}

func (s *FixtureSource) ListRestaurants(ctx context.Context) ([]models.Restaurant, error) {
	out := make([]models.Restaurant, len(s.restaurants))
	copy(out, s.restaurants)
	return out, nil
}

func (s *FixtureSource) GetRestaurant(ctx context.Context, id string) (*models.Restaurant, error) {
	for i := range s.restaurants {
		if s.restaurants[i].ID == id {
			r := s.restaurants[i]
			return &r, nil
		}
	}
	return nil, ErrNotFound
}

func (s *FixtureSource) ListMenu(ctx context.Context, restaurantID string) ([]models.MenuItem, error) {
	var out []models.MenuItem
	for _, item := range s.menuItems {
		if item.RestaurantID == restaurantID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (s *FixtureSource) GetMenuItem(ctx context.Context, id string) (*models.MenuItem, error) {
	for i := range s.menuItems {
		if s.menuItems[i].ID == id {
			item := s.menuItems[i]
			return &item, nil
		}
	}
	return nil, ErrNotFound
}

func (s *FixtureSource) GetUser(ctx context.Context, id string) (*models.User, error) {
	for i := range s.users {
		if s.users[i].ID == id {
			u := s.users[i]
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (s *FixtureSource) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	for i := range s.users {
		if strings.EqualFold(s.users[i].Email, email) {
			u := s.users[i]
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (s *FixtureSource) GetDriver(ctx context.Context, id string) (*models.Driver, error) {
	for i := range s.drivers {
		if s.drivers[i].ID == id {
			d := s.drivers[i]
			return &d, nil
		}
	}
	return nil, ErrNotFound
}

func (s *FixtureSource) GetPromo(ctx context.Context, code string) (*models.PromoCode, error) {
	for i := range s.promos {
		if strings.EqualFold(s.promos[i].Code, code) {
			p := s.promos[i]
			return &p, nil
		}
	}
	return nil, ErrNotFound
}

// Close is a no-op; the fixture source holds no external resources.
func (s *FixtureSource) Close() error {
	return nil
}
