package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Alexrusso3108/cura-doctors-portal/pkg/circuitbreaker"
	"github.com/twmb/franz-go/pkg/kgo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// KafkaConfig holds configuration for the Kafka publisher
type KafkaConfig struct {
	Brokers []string
	Topic   string
	// Timeout bounds a single produce call
	Timeout time.Duration
}

// KafkaPublisher writes events to a Kafka topic, keyed by aggregate id so
// that events about one bill or form stay ordered
type KafkaPublisher struct {
	client  *kgo.Client
	topic   string
	timeout time.Duration
	breaker *circuitbreaker.CircuitBreaker
	logger  *zap.Logger
	tracer  trace.Tracer
}

// NewKafkaPublisher creates the client. Brokers are contacted lazily.
func NewKafkaPublisher(cfg KafkaConfig, breaker *circuitbreaker.CircuitBreaker, logger *zap.Logger) (*KafkaPublisher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.DefaultProduceTopic(cfg.Topic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.ProducerBatchCompression(kgo.Lz4Compression()),
		kgo.RecordRetries(3),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka client: %w", err)
	}

	return &KafkaPublisher{
		client:  client,
		topic:   cfg.Topic,
		timeout: cfg.Timeout,
		breaker: breaker,
		logger:  logger,
		tracer:  otel.Tracer("kafka-publisher"),
	}, nil
}

// Publish produces the event and waits for the broker to acknowledge it
func (p *KafkaPublisher) Publish(ctx context.Context, e Event) error {
	ctx, span := p.tracer.Start(ctx, "publish_event",
		trace.WithAttributes(
			attribute.String("topic", p.topic),
			attribute.String("event_type", e.Type),
		))
	defer span.End()

	value, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	record := eventRecord(ctx, p.topic, e, value)

	produce := func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, p.timeout)
		defer cancel()
		return p.client.ProduceSync(ctx, record).FirstErr()
	}
	if p.breaker != nil {
		err = p.breaker.Execute(ctx, produce)
	} else {
		err = produce(ctx)
	}
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("produce %s: %w", e.Type, err)
	}

	p.logger.Debug("event produced",
		zap.String("topic", record.Topic),
		zap.String("type", e.Type),
		zap.Int32("partition", record.Partition),
		zap.Int64("offset", record.Offset))
	return nil
}

// Close flushes buffered records and closes the client
func (p *KafkaPublisher) Close(ctx context.Context) {
	if err := p.client.Flush(ctx); err != nil {
		p.logger.Warn("kafka flush failed", zap.Error(err))
	}
	p.client.Close()
}

// eventRecord builds the record with the event type and trace context
// carried in headers
func eventRecord(ctx context.Context, topic string, e Event, value []byte) *kgo.Record {
	record := &kgo.Record{
		Topic: topic,
		Key:   []byte(e.Key),
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: "event_type", Value: []byte(e.Type)},
		},
	}
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	for k, v := range carrier {
		record.Headers = append(record.Headers, kgo.RecordHeader{Key: k, Value: []byte(v)})
	}
	return record
}
