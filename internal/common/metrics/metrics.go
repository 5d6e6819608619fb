// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	StoreMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_store_mutations_total",
			Help: "Total number of state mutations applied per store",
		},
		[]string{"store", "action"},
	)

	PersistFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_persist_failures_total",
			Help: "Total number of failed device-storage save operations",
		},
		[]string{"store"},
	)

	PersistDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "engine_persist_duration_seconds",
			Help: "Duration of device-storage save operations in seconds",
		},
		[]string{"store"},
	)

	DiscoveryQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "engine_discovery_query_duration_seconds",
			Help: "Duration of filter/sort passes over the catalog in seconds",
		},
		[]string{"operation"},
	)

	IssueSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_issue_submissions_total",
			Help: "Total number of issue submissions by outcome",
		},
		[]string{"outcome"},
	)

	OrdersPlaced = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "engine_orders_placed_total",
			Help: "Total number of orders checked out",
		},
	)

	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_events_published_total",
			Help: "Total number of lifecycle events handed to the sink",
		},
		[]string{"type"},
	)

	CartItemsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "engine_cart_items_active",
			Help: "Number of line items currently in the cart",
		},
	)
)
