// Command checkout-events читает события оформления заказа из Kafka и пишет их в лог.
//
// Брокеры и топик берутся из KAFKA_BROKERS / KAFKA_TOPIC (как у storefront),
// группа consumer'а из KAFKA_GROUP_ID.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	platformkafka "github.com/shestoi/storefront/platform/kafka"
	platformlogging "github.com/shestoi/storefront/platform/logging"
	"github.com/shestoi/storefront/services/storefront/internal/domain"
	eventkafka "github.com/shestoi/storefront/services/storefront/internal/event/kafka"
)

const (
	defaultGroupID = "storefront-checkout-events"
	dedupTTL       = 24 * time.Hour
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := platformlogging.New(platformlogging.Config{
		ServiceName: "checkout-events",
		Env:         "local",
		Level:       os.Getenv("LOG_LEVEL"),
		Format:      os.Getenv("LOG_FORMAT"),
	})
	if err != nil {
		os.Stderr.WriteString("Failed to initialize logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer platformlogging.Sync(logger)

	cfg, err := platformkafka.LoadEnv()
	if err != nil {
		logger.Error("failed to load kafka config", zap.Error(err))
		os.Exit(1)
	}
	if !cfg.Enabled() {
		logger.Error("KAFKA_BROKERS is not set")
		os.Exit(1)
	}

	groupID := os.Getenv("KAFKA_GROUP_ID")
	if groupID == "" {
		groupID = defaultGroupID
	}

	logger.Info("kafka config loaded",
		zap.Strings("brokers", cfg.Brokers),
		zap.String("topic", cfg.Topic),
		zap.String("group_id", groupID),
	)

	consumer := eventkafka.NewCheckoutEventConsumer(logger, cfg, groupID, func(ctx context.Context, event domain.CheckoutEvent) error {
		logger.Info("checkout event",
			zap.String("event_id", event.EventID),
			zap.String("session_id", event.SessionID),
			zap.String("order_id", event.OrderID),
			zap.String("outcome", string(event.Outcome)),
			zap.String("transaction_id", event.TransactionID),
			zap.Float64("total", event.Total),
			zap.Time("occurred_at", event.OccurredAt),
		)
		return nil
	}).WithDeduplication(eventkafka.NewMemoryProcessedEvents(), dedupTTL)
	defer func() {
		if err := consumer.Close(); err != nil {
			logger.Warn("failed to close kafka reader", zap.Error(err))
		}
	}()

	if err := consumer.Start(ctx); err != nil {
		logger.Error("consumer stopped with error", zap.Error(err))
	}
}
