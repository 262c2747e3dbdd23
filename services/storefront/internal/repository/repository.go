package repository

import (
	"context"
	"errors"
)

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=SlotRepository --dir=. --output=./mocks --outpkg=mocks

// SlotRepository - durable key/value хранилище слотов (корзина сессии лежит в одном слоте).
// Значение - непрозрачный blob, формат знает только cartstore.
type SlotRepository interface {
	// Get возвращает значение слота или ErrNotFound
	Get(ctx context.Context, key string) ([]byte, error)

	// Set перезаписывает слот целиком
	Set(ctx context.Context, key string, value []byte) error

	// Delete удаляет слот; отсутствие слота не ошибка
	Delete(ctx context.Context, key string) error

	// Ping проверяет доступность хранилища (readiness)
	Ping(ctx context.Context) error
}

// ErrNotFound возвращается, когда слота нет в хранилище
var ErrNotFound = errors.New("slot not found")
