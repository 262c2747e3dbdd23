package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	platformkafka "github.com/shestoi/storefront/platform/kafka"
	"github.com/shestoi/storefront/platform/observability"
	"github.com/shestoi/storefront/services/storefront/internal/domain"
)

// messageReader - часть kafka.Reader, которой пользуется consumer
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// CheckoutEventHandler обрабатывает одно событие оформления
type CheckoutEventHandler func(ctx context.Context, event domain.CheckoutEvent) error

const (
	defaultHandlerMaxTries = 3
	defaultHandlerRetry    = 200 * time.Millisecond
)

// CheckoutEventConsumer читает события оформления из Kafka.
// Семантика at-least-once: offset коммитится после успешной обработки. Если обработчик
// не справился за все попытки, Start останавливается без коммита, и после перезапуска
// сообщение придёт снова.
type CheckoutEventConsumer struct {
	logger  *zap.Logger
	reader  messageReader
	handler CheckoutEventHandler

	maxTries      uint
	retryInterval time.Duration

	processed ProcessedEvents
	dedupTTL  time.Duration
}

// NewCheckoutEventConsumer создаёт consumer группы groupID для топика из cfg
func NewCheckoutEventConsumer(logger *zap.Logger, cfg platformkafka.Config, groupID string, handler CheckoutEventHandler) *CheckoutEventConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		GroupID:  groupID,
		Topic:    cfg.Topic,
		MinBytes: 1,
		MaxBytes: 10e6, // 10MB
	})
	return newConsumer(logger, reader, handler)
}

func newConsumer(logger *zap.Logger, reader messageReader, handler CheckoutEventHandler) *CheckoutEventConsumer {
	return &CheckoutEventConsumer{
		logger:        logger,
		reader:        reader,
		handler:       handler,
		maxTries:      defaultHandlerMaxTries,
		retryInterval: defaultHandlerRetry,
	}
}

// WithDeduplication включает пропуск уже обработанных event_id
func (c *CheckoutEventConsumer) WithDeduplication(store ProcessedEvents, ttl time.Duration) *CheckoutEventConsumer {
	c.processed = store
	c.dedupTTL = ttl
	return c
}

// Close закрывает Kafka reader
func (c *CheckoutEventConsumer) Close() error {
	return c.reader.Close()
}

// Start читает сообщения до отмены ctx. Возвращает ошибку, если событие так и не удалось обработать.
func (c *CheckoutEventConsumer) Start(ctx context.Context) error {
	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("consumer context cancelled, stopping")
				return nil
			}
			c.logger.Error("failed to fetch message from kafka", zap.Error(err))
			continue
		}

		msgCtx := otel.GetTextMapPropagator().Extract(ctx, observability.NewKafkaHeaderCarrier(&m.Headers))
		if err := c.processMessage(msgCtx, m); err != nil {
			if ctx.Err() != nil {
				c.logger.Info("consumer context cancelled, stopping")
				return nil
			}
			return fmt.Errorf("handle message at partition %d offset %d: %w", m.Partition, m.Offset, err)
		}

		if err := c.reader.CommitMessages(ctx, m); err != nil {
			c.logger.Error("failed to commit message offset",
				zap.Error(err),
				zap.String("topic", m.Topic),
				zap.Int("partition", m.Partition),
				zap.Int64("offset", m.Offset),
			)
		}
	}
}

// processMessage возвращает ошибку, только если обработчик отказал во всех попытках;
// тогда offset коммитить нельзя
func (c *CheckoutEventConsumer) processMessage(ctx context.Context, m kafka.Message) error {
	event, err := DecodeCheckoutEvent(m)
	if err != nil {
		c.logger.Error("failed to decode checkout event",
			zap.Error(err),
			zap.Int("partition", m.Partition),
			zap.Int64("offset", m.Offset),
		)
		// poison pill коммитим, чтобы не зациклиться
		return nil
	}

	if c.processed != nil && event.EventID != "" {
		done, err := c.processed.IsProcessed(ctx, event.EventID)
		if err != nil {
			c.logger.Warn("failed to check processed event", zap.Error(err), zap.String("event_id", event.EventID))
		} else if done {
			c.logger.Debug("duplicate checkout event skipped", zap.String("event_id", event.EventID))
			return nil
		}
	}

	if err := c.handleWithRetry(ctx, event); err != nil {
		c.logger.Error("failed to handle checkout event",
			zap.Error(err),
			zap.String("event_id", event.EventID),
			zap.String("order_id", event.OrderID),
		)
		return err
	}

	if c.processed != nil && event.EventID != "" {
		if err := c.processed.MarkProcessed(ctx, event.EventID, c.dedupTTL); err != nil {
			c.logger.Warn("failed to mark event processed", zap.Error(err), zap.String("event_id", event.EventID))
		}
	}
	return nil
}

func (c *CheckoutEventConsumer) handleWithRetry(ctx context.Context, event domain.CheckoutEvent) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.retryInterval

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		return struct{}{}, c.handler(ctx, event)
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(c.maxTries),
		backoff.WithNotify(func(err error, next time.Duration) {
			c.logger.Warn("retrying checkout event",
				zap.Error(err),
				zap.String("event_id", event.EventID),
				zap.Duration("backoff", next),
			)
		}),
	)
	return err
}

// DecodeCheckoutEvent разбирает сообщение, проверяя заголовки event_type и event_version
func DecodeCheckoutEvent(m kafka.Message) (domain.CheckoutEvent, error) {
	for _, h := range m.Headers {
		switch h.Key {
		case "event_type":
			if string(h.Value) != eventType {
				return domain.CheckoutEvent{}, fmt.Errorf("unexpected event_type %q", h.Value)
			}
		case "event_version":
			if string(h.Value) != fmt.Sprint(eventVersion) {
				return domain.CheckoutEvent{}, fmt.Errorf("unsupported event_version %q", h.Value)
			}
		}
	}

	var event domain.CheckoutEvent
	if err := json.Unmarshal(m.Value, &event); err != nil {
		return domain.CheckoutEvent{}, fmt.Errorf("unmarshal checkout event: %w", err)
	}
	if event.OrderID == "" || event.Outcome == "" {
		return domain.CheckoutEvent{}, fmt.Errorf("checkout event without order_id or outcome")
	}
	return event, nil
}
