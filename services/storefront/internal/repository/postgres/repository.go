package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shestoi/storefront/services/storefront/internal/repository"
)

// Repository реализует SlotRepository поверх таблицы cart_slots.
// Нужен, когда несколько инстансов storefront делят корзины и Redis недоступен.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository создаёт PostgreSQL репозиторий
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{
		pool: pool,
	}
}

func (r *Repository) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := r.pool.QueryRow(ctx, `SELECT value FROM cart_slots WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("select slot: %w", err)
	}
	return value, nil
}

// Set - upsert: запись всегда заменяет слот целиком
func (r *Repository) Set(ctx context.Context, key string, value []byte) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO cart_slots (key, value, updated_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (key) DO UPDATE SET
		   value = EXCLUDED.value,
		   updated_at = EXCLUDED.updated_at`,
		key, value, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("upsert slot: %w", err)
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, key string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM cart_slots WHERE key = $1`, key); err != nil {
		return fmt.Errorf("delete slot: %w", err)
	}
	return nil
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// DeleteOlderThan удаляет слоты, не обновлявшиеся дольше ttl. Возвращает число удалённых.
func (r *Repository) DeleteOlderThan(ctx context.Context, ttl time.Duration) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM cart_slots WHERE updated_at < $1`, time.Now().UTC().Add(-ttl))
	if err != nil {
		return 0, fmt.Errorf("delete stale slots: %w", err)
	}
	return tag.RowsAffected(), nil
}
