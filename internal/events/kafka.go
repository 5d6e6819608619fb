// internal/events/kafka.go
package events

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"delivery-engine/internal/common/config"
	stderrors "delivery-engine/internal/common/errors"
	"delivery-engine/internal/common/metrics"
)

// messageWriter is the slice of kafka.Writer the sink needs; tests substitute
// a capture.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSink publishes events to a Kafka topic keyed by the event's Key, so
// all events for one order or issue land on the same partition.
type KafkaSink struct {
	writer messageWriter
}

// NewKafkaSink creates a sink writing to the configured brokers and topic.
func NewKafkaSink(cfg config.KafkaConfig) *KafkaSink {
	return &KafkaSink{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(cfg.Brokers...),
			Topic:    cfg.Topic,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

// NewKafkaSinkFromWriter wraps an existing writer, used by tests.
func NewKafkaSinkFromWriter(w messageWriter) *KafkaSink {
	return &KafkaSink{writer: w}
}

func (s *KafkaSink) Publish(ctx context.Context, event Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return stderrors.NewEventPublishFailedError(event.Type, err)
	}

	err = s.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.Key),
		Value: value,
	})
	if err != nil {
		return stderrors.NewEventPublishFailedError(event.Type, err)
	}

	metrics.EventsPublished.WithLabelValues(event.Type).Inc()
	return nil
}

func (s *KafkaSink) Close() error {
	return s.writer.Close()
}
