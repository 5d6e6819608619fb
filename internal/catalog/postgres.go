// internal/catalog/postgres.go
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"

	"delivery-engine/internal/common/config"
	stderrors "delivery-engine/internal/common/errors"
	"delivery-engine/internal/models"
)

// PostgresSource serves the catalog from a relational backend. Array columns
// (cuisine_tags, dietary_tags) are text[]; customization_groups and addresses
// are JSONB documents decoded into the model types.
type PostgresSource struct {
	db *sql.DB
}

// NewPostgresSource opens a connection pool against the catalog database.
func NewPostgresSource(cfg config.PostgresConfig) (*PostgresSource, error) {
	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdle)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return &PostgresSource{db: db}, nil
}

// NewPostgresSourceFromDB wraps an existing connection, used by tests to
// inject a mock.
func NewPostgresSourceFromDB(db *sql.DB) *PostgresSource {
	return &PostgresSource{db: db}
}

// Ping tests the database connection.
func (s *PostgresSource) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

const restaurantColumns = `id, name, COALESCE(description, ''), rating, review_count,
	delivery_min, delivery_max, delivery_fee, cuisine_tags, price_level, is_open,
	address, COALESCE(image_url, ''), promoted`

func scanRestaurant(scan func(dest ...interface{}) error) (*models.Restaurant, error) {
	var r models.Restaurant
	var tags pq.StringArray

	err := scan(
		&r.ID, &r.Name, &r.Description, &r.Rating, &r.ReviewCount,
		&r.DeliveryTime.Min, &r.DeliveryTime.Max, &r.DeliveryFee, &tags,
		&r.PriceLevel, &r.IsOpen, &r.Address, &r.ImageURL, &r.Promoted,
	)
	if err != nil {
		return nil, err
	}

	r.CuisineTags = []string(tags)
	return &r, nil
}

func (s *PostgresSource) ListRestaurants(ctx context.Context) ([]models.Restaurant, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT %s FROM restaurants ORDER BY id`, restaurantColumns))
	if err != nil {
		return nil, stderrors.NewCatalogSourceFailedError(err)
	}
	defer rows.Close()

	var out []models.Restaurant
	for rows.Next() {
		r, err := scanRestaurant(rows.Scan)
		if err != nil {
			return nil, stderrors.NewCatalogSourceFailedError(err)
		}
		out = append(out, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, stderrors.NewCatalogSourceFailedError(err)
	}

	return out, nil
}

func (s *PostgresSource) GetRestaurant(ctx context.Context, id string) (*models.Restaurant, error) {
	row := s.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT %s FROM restaurants WHERE id = $1`, restaurantColumns), id)

	r, err := scanRestaurant(row.Scan)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, stderrors.NewCatalogSourceFailedError(err)
	}
	return r, nil
}

const menuItemColumns = `id, restaurant_id, name, COALESCE(description, ''), price, category,
	is_available, is_popular, is_spicy, dietary_tags, COALESCE(customization_groups, '[]'),
	COALESCE(image_url, '')`

func scanMenuItem(scan func(dest ...interface{}) error) (*models.MenuItem, error) {
	var item models.MenuItem
	var tags pq.StringArray
	var groupsJSON []byte

	err := scan(
		&item.ID, &item.RestaurantID, &item.Name, &item.Description, &item.Price,
		&item.Category, &item.IsAvailable, &item.IsPopular, &item.IsSpicy,
		&tags, &groupsJSON, &item.ImageURL,
	)
	if err != nil {
		return nil, err
	}

	item.DietaryTags = []string(tags)
	if len(groupsJSON) > 0 {
		if err := json.Unmarshal(groupsJSON, &item.CustomizationGroups); err != nil {
			return nil, fmt.Errorf("decode customization_groups for %s: %w", item.ID, err)
		}
	}
	return &item, nil
}

func (s *PostgresSource) ListMenu(ctx context.Context, restaurantID string) ([]models.MenuItem, error) {
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT %s FROM menu_items WHERE restaurant_id = $1 ORDER BY id`, menuItemColumns),
		restaurantID)
	if err != nil {
		return nil, stderrors.NewCatalogSourceFailedError(err)
	}
	defer rows.Close()

	var out []models.MenuItem
	for rows.Next() {
		item, err := scanMenuItem(rows.Scan)
		if err != nil {
			return nil, stderrors.NewCatalogSourceFailedError(err)
		}
		out = append(out, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, stderrors.NewCatalogSourceFailedError(err)
	}

	return out, nil
}

func (s *PostgresSource) GetMenuItem(ctx context.Context, id string) (*models.MenuItem, error) {
	row := s.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT %s FROM menu_items WHERE id = $1`, menuItemColumns), id)

	item, err := scanMenuItem(row.Scan)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, stderrors.NewCatalogSourceFailedError(err)
	}
	return item, nil
}

const userColumns = `id, name, email, COALESCE(phone, ''), COALESCE(password_hash, ''),
	COALESCE(addresses, '[]')`

func scanUser(scan func(dest ...interface{}) error) (*models.User, error) {
	var u models.User
	var addressesJSON []byte

	err := scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.PasswordHash, &addressesJSON)
	if err != nil {
		return nil, err
	}

	if len(addressesJSON) > 0 {
		if err := json.Unmarshal(addressesJSON, &u.Addresses); err != nil {
			return nil, fmt.Errorf("decode addresses for %s: %w", u.ID, err)
		}
	}
	return &u, nil
}

func (s *PostgresSource) GetUser(ctx context.Context, id string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userColumns), id)

	u, err := scanUser(row.Scan)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, stderrors.NewCatalogSourceFailedError(err)
	}
	return u, nil
}

func (s *PostgresSource) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT %s FROM users WHERE LOWER(email) = LOWER($1)`, userColumns), email)

	u, err := scanUser(row.Scan)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, stderrors.NewCatalogSourceFailedError(err)
	}
	return u, nil
}

func (s *PostgresSource) GetDriver(ctx context.Context, id string) (*models.Driver, error) {
	var d models.Driver

	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, COALESCE(phone, ''), COALESCE(vehicle_type, ''), COALESCE(rating, 0)
		 FROM drivers WHERE id = $1`, id).
		Scan(&d.ID, &d.Name, &d.Phone, &d.VehicleType, &d.Rating)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, stderrors.NewCatalogSourceFailedError(err)
	}
	return &d, nil
}

func (s *PostgresSource) GetPromo(ctx context.Context, code string) (*models.PromoCode, error) {
	var p models.PromoCode

	err := s.db.QueryRowContext(ctx,
		`SELECT code, COALESCE(description, ''), COALESCE(percent, 0), COALESCE(amount_off, 0),
		        COALESCE(min_subtotal, 0), expires_at, active
		 FROM promo_codes WHERE UPPER(code) = UPPER($1)`, code).
		Scan(&p.Code, &p.Description, &p.Percent, &p.AmountOff, &p.MinSubtotal, &p.ExpiresAt, &p.Active)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, stderrors.NewCatalogSourceFailedError(err)
	}
	return &p, nil
}

// Close closes the connection pool.
func (s *PostgresSource) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
