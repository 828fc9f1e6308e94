package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	kafkago "github.com/segmentio/kafka-go"

	"noaa-archive/pkg/logging"
	"noaa-archive/pkg/metrics"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// KafkaObserver publishes events as JSON messages keyed by archive kind
type KafkaObserver struct {
	writer  messageWriter
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
	clock   clockwork.Clock
}

// NewKafkaObserver creates an asynchronous producer for topic. Delivery
// failures are logged and counted, never returned to the caller.
func NewKafkaObserver(brokers []string, topic string, logger *logging.StructuredLogger, metricsCollector *metrics.Collector, clock clockwork.Clock) *KafkaObserver {
	o := &KafkaObserver{
		logger:  logger,
		metrics: metricsCollector,
		clock:   clock,
	}
	if o.clock == nil {
		o.clock = clockwork.NewRealClock()
	}
	o.writer = &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireOne,
		BatchTimeout: 100 * time.Millisecond,
		Async:        true,
		Completion:   o.completion,
	}
	return o
}

func (o *KafkaObserver) Observe(ctx context.Context, e Event) {
	msg, err := serializeEvent(stamp(e, o.clock))
	if err != nil {
		o.dropped(ctx, err, 1)
		return
	}
	if err := o.writer.WriteMessages(ctx, msg); err != nil {
		o.dropped(ctx, err, 1)
	}
}

// Close flushes pending messages
func (o *KafkaObserver) Close() error {
	return o.writer.Close()
}

func (o *KafkaObserver) completion(msgs []kafkago.Message, err error) {
	if err != nil {
		o.dropped(context.Background(), err, len(msgs))
	}
}

func (o *KafkaObserver) dropped(ctx context.Context, err error, n int) {
	if o.metrics != nil {
		o.metrics.TelemetryDroppedTotal.Add(float64(n))
	}
	o.logger.Warn(ctx, "[TELEMETRY_DROPPED] Failed to publish activity event", logging.Fields{
		"count": n,
		"error": err.Error(),
	})
}

func serializeEvent(e Event) (kafkago.Message, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize activity event: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(e.Archive),
		Value: data,
		Time:  e.At,
		Headers: []kafkago.Header{
			{Key: "action", Value: []byte(e.Action)},
			{Key: "outcome", Value: []byte(e.Outcome)},
		},
	}, nil
}
