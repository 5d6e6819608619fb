// cmd/engine-sim/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"delivery-engine/internal/catalog"
	"delivery-engine/internal/common/config"
	"delivery-engine/internal/common/logger"
	"delivery-engine/internal/discovery"
	"delivery-engine/internal/events"
	"delivery-engine/internal/storage"
	"delivery-engine/internal/stores/auth"
	"delivery-engine/internal/stores/cart"
	"delivery-engine/internal/stores/filters"
	"delivery-engine/internal/stores/issues"
	"delivery-engine/internal/stores/orders"
	"delivery-engine/internal/stores/payments"
	"delivery-engine/internal/stores/ratings"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "console")

	zapLog.Info("Starting engine simulator...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	// Rebuild the logger with the configured level and format.
	zapLog = logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	ctx := context.Background()

	// --- Device storage backend ---
	kv, err := openStorage(ctx, cfg, zapLog)
	if err != nil {
		zapLog.Fatal("storage backend failed", zap.Error(err))
	}
	zapLog.Info("Storage backend ready", zap.String("backend", cfg.Storage.Backend))

	// --- Catalog source ---
	source, err := openCatalog(ctx, cfg, zapLog)
	if err != nil {
		zapLog.Fatal("catalog source failed", zap.Error(err))
	}
	zapLog.Info("Catalog source ready", zap.String("source", cfg.Catalog.Source))

	// --- Event sink ---
	sink := openSink(cfg, log)
	zapLog.Info("Event sink ready", zap.String("sink", cfg.Events.Sink))

	// --- Support gateway ---
	var gateway issues.Gateway
	if cfg.Gateway.BaseURL != "" {
		gateway = issues.NewHTTPGateway(cfg.Gateway)
		zapLog.Info("Support gateway ready", zap.String("base_url", cfg.Gateway.BaseURL))
	} else {
		gateway = issues.NewSimulatedGateway(cfg.Gateway)
		zapLog.Info("Support gateway ready (simulated)",
			zap.Int("min_latency_ms", cfg.Gateway.MinLatencyMs),
			zap.Int("max_latency_ms", cfg.Gateway.MaxLatencyMs),
		)
	}

	// --- State stores ---
	filterStore := filters.NewStore(kv, log)
	cartStore := cart.NewStore(kv, log)
	authStore := auth.NewStore(kv, source, cfg.Auth, log)
	payStore := payments.NewStore(kv, log)
	orderStore := orders.NewStore(kv, source, cartStore, sink, log)
	issueStore := issues.NewStore(kv, gateway, sink, log)
	ratingStore := ratings.NewStore(kv, sink, log)
	engine := discovery.NewEngine(source, log)

	persistent := []struct {
		name  string
		store interface {
			Load(ctx context.Context) error
			Save(ctx context.Context) error
		}
	}{
		{"filters", filterStore},
		{"cart", cartStore},
		{"auth", authStore},
		{"payments", payStore},
		{"orders", orderStore},
		{"issues", issueStore},
		{"ratings", ratingStore},
	}

	for _, p := range persistent {
		if err := p.store.Load(ctx); err != nil {
			zapLog.Fatal("state hydration failed", zap.String("store", p.name), zap.Error(err))
		}
	}
	zapLog.Info("All 7 stores hydrated")

	// --- Ops server (health, readiness, metrics, state snapshots) ---
	snapshots := map[string]func() interface{}{
		"filters": func() interface{} { return filterStore.State() },
		"cart": func() interface{} {
			return map[string]interface{}{
				"restaurant": cartStore.Restaurant(),
				"items":      cartStore.Items(),
				"subtotal":   cartStore.Subtotal(),
			}
		},
		"orders":   func() interface{} { return orderStore.List() },
		"issues":   func() interface{} { return issueStore.Issues() },
		"ratings":  func() interface{} { return ratingStore.List() },
		"payments": func() interface{} { return payStore.List() },
		"auth": func() interface{} {
			out := map[string]interface{}{
				"authenticated": authStore.IsAuthenticated(),
				"addresses":     authStore.Addresses(),
			}
			if user, ok := authStore.CurrentUser(); ok {
				out["user"] = user
			}
			return out
		},
	}

	router := mux.NewRouter()
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	}).Methods(http.MethodGet)
	router.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{
			"status": "ready",
			"time":   time.Now().Format(time.RFC3339),
		})
	}).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	router.HandleFunc("/state/{store}", func(w http.ResponseWriter, r *http.Request) {
		name := mux.Vars(r)["store"]
		snapshot, ok := snapshots[name]
		if !ok {
			http.Error(w, fmt.Sprintf("unknown store %q", name), http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(snapshot())
	}).Methods(http.MethodGet)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: cfg.Ops.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet},
	}).Handler(router)

	srv := &http.Server{
		Addr:    cfg.Ops.Address,
		Handler: corsHandler,
	}

	go func() {
		zapLog.Info("Ops server listening", zap.String("address", cfg.Ops.Address))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Error("Ops server failed", zap.Error(err))
		}
	}()

	// --- Scripted client session ---
	sess := &session{
		discovery: engine,
		filters:   filterStore,
		cart:      cartStore,
		auth:      authStore,
		payments:  payStore,
		orders:    orderStore,
		issues:    issueStore,
		ratings:   ratingStore,
		log:       log,
	}
	if err := sess.run(ctx); err != nil {
		zapLog.Error("Scripted session did not complete", zap.Error(err))
	}

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, persisting state...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, p := range persistent {
		if err := p.store.Save(shutdownCtx); err != nil {
			zapLog.Error("Save failed", zap.String("store", p.name), zap.Error(err))
		}
	}

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Ops server shutdown failed", zap.Error(err))
	}
	if err := sink.Close(); err != nil {
		zapLog.Error("Error closing event sink", zap.Error(err))
	}
	if err := source.Close(); err != nil {
		zapLog.Error("Error closing catalog source", zap.Error(err))
	}
	if err := kv.Close(); err != nil {
		zapLog.Error("Error closing storage backend", zap.Error(err))
	}

	zapLog.Info("Engine simulator stopped gracefully")
}

// openStorage picks the KV backend from config. Redis waits for the server
// to come up the same way the catalog waits for Postgres.
func openStorage(ctx context.Context, cfg *config.Config, zapLog *zap.Logger) (storage.KV, error) {
	switch cfg.Storage.Backend {
	case config.StorageSQLite:
		return storage.NewSQLite(cfg.Storage.SQLite.Path)
	case config.StorageRedis:
		var kv *storage.Redis
		err := retryWithBackoff(func() error {
			var err error
			kv, err = storage.NewRedis(cfg.Storage.Redis)
			if err != nil {
				return err
			}
			return kv.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			return nil, err
		}
		return kv, nil
	default:
		return storage.NewMemory(), nil
	}
}

func openCatalog(ctx context.Context, cfg *config.Config, zapLog *zap.Logger) (catalog.Source, error) {
	switch cfg.Catalog.Source {
	case config.CatalogPostgres:
		var source *catalog.PostgresSource
		err := retryWithBackoff(func() error {
			var err error
			source, err = catalog.NewPostgresSource(cfg.Catalog.Postgres)
			if err != nil {
				return err
			}
			return source.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
		if err != nil {
			return nil, err
		}
		return source, nil
	default:
		if cfg.Catalog.FixturesDir != "" {
			return catalog.NewFixtureSourceFromDir(cfg.Catalog.FixturesDir)
		}
		return catalog.NewFixtureSource()
	}
}

func openSink(cfg *config.Config, log logger.Logger) events.Sink {
	if cfg.Events.Sink == config.EventSinkKafka {
		return events.NewKafkaSink(cfg.Events.Kafka)
	}
	return events.NewLogSink(log)
}
