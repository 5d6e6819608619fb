// internal/events/log.go
package events

import (
	"context"

	"delivery-engine/internal/common/logger"
	"delivery-engine/internal/common/metrics"
)

// LogSink writes events to the structured log. This is the default sink when
// no broker is configured.
type LogSink struct {
	logger logger.Logger
}

// NewLogSink creates a sink that logs each event at info level.
func NewLogSink(log logger.Logger) *LogSink {
	return &LogSink{
		logger: log.WithFields(map[string]interface{}{
			"component": "events",
		}),
	}
}

func (s *LogSink) Publish(ctx context.Context, event Event) error {
	s.logger.Info("Lifecycle event", map[string]interface{}{
		"type":        event.Type,
		"key":         event.Key,
		"occurred_at": event.OccurredAt,
		"payload":     event.Payload,
	})
	metrics.EventsPublished.WithLabelValues(event.Type).Inc()
	return nil
}

func (s *LogSink) Close() error {
	return nil
}
