// internal/discovery/engine.go
package discovery

import (
	"context"
	"time"

	"delivery-engine/internal/catalog"
	"delivery-engine/internal/common/logger"
	"delivery-engine/internal/common/metrics"
	"delivery-engine/internal/models"
)

// Engine runs filter and sort passes against a catalog source. The pure
// functions in this package stay usable without it; the engine adds catalog
// access, logging and query-duration metrics on top.
type Engine struct {
	source catalog.Source
	logger logger.Logger
}

// NewEngine creates a discovery engine over the given catalog source.
func NewEngine(source catalog.Source, log logger.Logger) *Engine {
	return &Engine{
		source: source,
		logger: log.WithFields(map[string]interface{}{
			"component": "discovery",
		}),
	}
}

// Browse lists the restaurants that pass the filter state, ordered by its
// sort mode. Closed restaurants are always excluded.
func (e *Engine) Browse(ctx context.Context, state models.FilterState, category string) ([]models.Restaurant, error) {
	start := time.Now()

	all, err := e.source.ListRestaurants(ctx)
	if err != nil {
		e.logger.WithError(err).Error("Failed to list restaurants from catalog", map[string]interface{}{
			"category": category,
		})
		return nil, err
	}

	matched := FilterRestaurants(all, state, category)
	sorted := SortRestaurants(matched, state.SortBy)

	duration := time.Since(start)
	metrics.DiscoveryQueryDuration.WithLabelValues("browse").Observe(duration.Seconds())

	e.logger.Debug("Browse pass complete", map[string]interface{}{
		"total":       len(all),
		"matched":     len(matched),
		"sort_by":     string(state.SortBy),
		"duration_ms": duration.Milliseconds(),
	})

	return sorted, nil
}

// Menu returns the available menu items for a restaurant, optionally narrowed
// to one category.
func (e *Engine) Menu(ctx context.Context, restaurantID, category string) ([]models.MenuItem, error) {
	start := time.Now()

	items, err := e.source.ListMenu(ctx, restaurantID)
	if err != nil {
		e.logger.WithError(err).Error("Failed to list menu from catalog", map[string]interface{}{
			"restaurant_id": restaurantID,
		})
		return nil, err
	}

	filtered := FilterMenu(items, category)

	duration := time.Since(start)
	metrics.DiscoveryQueryDuration.WithLabelValues("menu").Observe(duration.Seconds())

	e.logger.Debug("Menu pass complete", map[string]interface{}{
		"restaurant_id": restaurantID,
		"total":         len(items),
		"available":     len(filtered),
		"duration_ms":   duration.Milliseconds(),
	})

	return filtered, nil
}
