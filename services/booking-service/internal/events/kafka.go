package events

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/md-rashed-zaman/apptbook/libs/kafkax"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer      messageWriter
	topicPrefix string
}

type KafkaConfig struct {
	Brokers      string
	TopicPrefix  string
	WriteTimeout time.Duration
}

// NewKafkaPublisher returns a publisher for cfg, or NopPublisher when no
// brokers are configured.
func NewKafkaPublisher(cfg KafkaConfig) Publisher {
	brokers := kafkax.SplitBrokers(cfg.Brokers)
	if len(brokers) == 0 {
		return NopPublisher{}
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 5 * time.Second
	}
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireAll,
			WriteTimeout:           cfg.WriteTimeout,
			AllowAutoTopicCreation: true,
		},
		topicPrefix: cfg.TopicPrefix,
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, evt Event) error {
	topic := p.topicPrefix + evt.Type
	eventID := uuid.NewString()

	ctx, span := otel.Tracer("booking-service/events").Start(ctx, "kafka.produce",
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.destination.name", topic),
			attribute.String("messaging.message.id", eventID),
		),
	)
	defer span.End()

	msg := kafka.Message{
		Topic:   topic,
		Key:     []byte(evt.AggregateID),
		Value:   evt.Payload,
		Headers: kafkax.InjectTraceHeaders(ctx, kafkax.EventHeaders(eventID, evt.Type)),
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "produce failed")
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
