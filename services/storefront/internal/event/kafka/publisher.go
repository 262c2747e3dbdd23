package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	platformkafka "github.com/shestoi/storefront/platform/kafka"
	"github.com/shestoi/storefront/platform/observability"
	"github.com/shestoi/storefront/services/storefront/internal/domain"
)

const (
	eventType    = "storefront.checkout.approved"
	eventVersion = 1
)

// messageWriter - часть kafka.Writer, которой пользуется publisher
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// CheckoutEventPublisher публикует события подтверждения оплаты в Kafka
type CheckoutEventPublisher struct {
	logger  *zap.Logger
	writer  messageWriter
	topic   string
	timeout time.Duration
}

// NewCheckoutEventPublisher создаёт publisher поверх kafka.Writer
func NewCheckoutEventPublisher(logger *zap.Logger, cfg platformkafka.Config) *CheckoutEventPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		WriteTimeout: cfg.WriteTimeout,
	}
	return newPublisher(logger, writer, cfg.Topic, cfg.WriteTimeout)
}

func newPublisher(logger *zap.Logger, writer messageWriter, topic string, timeout time.Duration) *CheckoutEventPublisher {
	return &CheckoutEventPublisher{
		logger:  logger,
		writer:  writer,
		topic:   topic,
		timeout: timeout,
	}
}

// Close закрывает Kafka writer
func (p *CheckoutEventPublisher) Close() error {
	return p.writer.Close()
}

// PublishCheckout публикует событие; ключ сообщения - id сессии, чтобы события одной сессии шли по порядку
func (p *CheckoutEventPublisher) PublishCheckout(ctx context.Context, event domain.CheckoutEvent) error {
	if event.EventID == "" {
		event.EventID = uuid.NewString()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	if event.Items == nil {
		event.Items = []domain.OrderItem{}
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal checkout event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.SessionID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(eventType)},
			{Key: "event_version", Value: []byte(fmt.Sprint(eventVersion))},
		},
	}
	// trace context запроса уходит вместе с событием
	otel.GetTextMapPropagator().Inject(ctx, observability.NewKafkaHeaderCarrier(&msg.Headers))

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("failed to publish checkout event",
			zap.Error(err),
			zap.String("topic", p.topic),
			zap.String("order_id", event.OrderID),
			zap.String("outcome", string(event.Outcome)),
		)
		return fmt.Errorf("publish checkout event: %w", err)
	}

	p.logger.Info("checkout event published",
		zap.String("topic", p.topic),
		zap.String("event_id", event.EventID),
		zap.String("order_id", event.OrderID),
		zap.String("outcome", string(event.Outcome)),
	)
	return nil
}

// NoopPublisher используется, когда брокеры Kafka не сконфигурированы
type NoopPublisher struct {
	logger *zap.Logger
}

func NewNoopPublisher(logger *zap.Logger) *NoopPublisher {
	return &NoopPublisher{logger: logger}
}

func (p *NoopPublisher) PublishCheckout(ctx context.Context, event domain.CheckoutEvent) error {
	p.logger.Debug("checkout event dropped, kafka disabled",
		zap.String("order_id", event.OrderID),
		zap.String("outcome", string(event.Outcome)),
	)
	return nil
}

func (p *NoopPublisher) Close() error { return nil }
