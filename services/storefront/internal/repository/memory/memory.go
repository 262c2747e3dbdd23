package memory

import (
	"context"
	"sync"

	"github.com/shestoi/storefront/services/storefront/internal/repository"
)

// Repository реализует SlotRepository в памяти процесса.
// Используется локально и в тестах; содержимое теряется при рестарте.
type Repository struct {
	mu    sync.RWMutex
	slots map[string][]byte
}

// NewRepository создаёт пустой in-memory репозиторий
func NewRepository() *Repository {
	return &Repository{
		slots: make(map[string][]byte),
	}
}

// Get возвращает копию значения, чтобы вызывающий не мог изменить хранимые байты
func (r *Repository) Get(ctx context.Context, key string) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.slots[key]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (r *Repository) Set(ctx context.Context, key string, value []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.slots[key] = append([]byte(nil), value...)
	return nil
}

func (r *Repository) Delete(ctx context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.slots, key)
	return nil
}

func (r *Repository) Ping(ctx context.Context) error {
	return nil
}
