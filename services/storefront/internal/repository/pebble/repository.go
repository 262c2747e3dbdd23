package pebble

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/cockroachdb/pebble"

	"github.com/shestoi/storefront/services/storefront/internal/repository"
)

// Repository реализует SlotRepository поверх локальной PebbleDB.
// Подходит для одного инстанса storefront: слоты переживают рестарт процесса без внешних сервисов.
type Repository struct {
	db *pebble.DB
}

// Open открывает (или создаёт) базу в каталоге dir
func Open(dir string) (*Repository, error) {
	db, err := pebble.Open(filepath.Clean(dir), &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("pebble open: %w", err)
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Close() error { return r.db.Close() }

func (r *Repository) Get(ctx context.Context, key string) ([]byte, error) {
	v, closer, err := r.db.Get([]byte(key))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("pebble get: %w", err)
	}
	defer closer.Close()

	// v валиден только до closer.Close()
	return append([]byte(nil), v...), nil
}

func (r *Repository) Set(ctx context.Context, key string, value []byte) error {
	if err := r.db.Set([]byte(key), value, pebble.Sync); err != nil {
		return fmt.Errorf("pebble set: %w", err)
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, key string) error {
	if err := r.db.Delete([]byte(key), pebble.Sync); err != nil {
		return fmt.Errorf("pebble delete: %w", err)
	}
	return nil
}

// Ping проверяет, что база открыта и читается
func (r *Repository) Ping(ctx context.Context) error {
	_, closer, err := r.db.Get([]byte("__ping__"))
	if err == nil {
		return closer.Close()
	}
	if errors.Is(err, pebble.ErrNotFound) {
		return nil
	}
	return err
}
