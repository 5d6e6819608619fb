// internal/stores/stores.go

// Package stores hosts the engine's state containers. Every substore follows
// the same contract: synchronous in-memory mutations applied through pure
// reducers, reads that return copies, and an explicit awaitable Save the
// caller sequences or batches. Persistence is best-effort; a failed Save is
// reported and counted but never rolls back the committed in-memory state.
package stores

import (
	"context"
	"time"

	"delivery-engine/internal/common/logger"
	"delivery-engine/internal/common/metrics"
	"delivery-engine/internal/storage"
)

// Persist writes one store's state snapshot under its domain key and records
// duration and failure metrics.
func Persist(ctx context.Context, kv storage.KV, log logger.Logger, domain string, state interface{}) error {
	start := time.Now()
	err := storage.SaveJSON(ctx, kv, storage.StoreKey(domain), state)
	metrics.PersistDuration.WithLabelValues(domain).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.PersistFailures.WithLabelValues(domain).Inc()
		log.WithError(err).Warn("Device storage save failed", map[string]interface{}{
			"domain": domain,
		})
		return err
	}

	log.Debug("State persisted", map[string]interface{}{
		"domain": domain,
	})
	return nil
}
