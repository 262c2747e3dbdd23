package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/shestoi/storefront/services/storefront/internal/repository"
)

// Repository реализует SlotRepository поверх Redis string ключей.
// ttl > 0 продлевается при каждой записи, так что брошенные корзины истекают сами.
type Repository struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRepository создаёт Redis репозиторий слотов
func NewRepository(client *redis.Client, ttl time.Duration, logger *zap.Logger) *Repository {
	return &Repository{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func (r *Repository) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			r.logger.Debug("slot not found in redis", zap.String("key", key))
			return nil, repository.ErrNotFound
		}
		r.logger.Error("failed to get slot from redis",
			zap.Error(err),
			zap.String("key", key),
		)
		return nil, fmt.Errorf("failed to get slot: %w", err)
	}
	return value, nil
}

// Set пишет значение; ttl == 0 означает ключ без срока жизни
func (r *Repository) Set(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, key, value, r.ttl).Err(); err != nil {
		r.logger.Error("failed to set slot in redis",
			zap.Error(err),
			zap.String("key", key),
		)
		return fmt.Errorf("failed to set slot: %w", err)
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		r.logger.Error("failed to delete slot from redis",
			zap.Error(err),
			zap.String("key", key),
		)
		return fmt.Errorf("failed to delete slot: %w", err)
	}
	return nil
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
