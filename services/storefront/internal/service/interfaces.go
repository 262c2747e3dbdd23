package service

import (
	"context"
	"time"

	"github.com/shestoi/storefront/services/storefront/internal/domain"
)

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=CatalogClient --dir=. --output=./mocks --outpkg=mocks

// CatalogClient определяет интерфейс для получения товаров из каталога.
// Ошибки возвращаются как *domain.FetchError с сообщением для покупателя.
type CatalogClient interface {
	Fetch(ctx context.Context, selection domain.Selection) ([]domain.Product, error)
}

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=PaymentClient --dir=. --output=./mocks --outpkg=mocks

// PaymentClient определяет интерфейс сервиса оплаты
type PaymentClient interface {
	// CreateOrder создаёт заказ и возвращает его id
	CreateOrder(ctx context.Context, items []domain.OrderItem) (string, error)

	// CaptureOrder подтверждает оплату одобренного заказа
	CaptureOrder(ctx context.Context, orderID string) (domain.Capture, error)
}

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=CartStore --dir=. --output=./mocks --outpkg=mocks

// CartStore - сохранённая корзина сессии. Методы не возвращают ошибок:
// сбои хранилища логируются внутри и не влияют на вызывающего.
type CartStore interface {
	Load(ctx context.Context, sessionID string) domain.Cart
	Save(ctx context.Context, sessionID string, cart domain.Cart)
	Clear(ctx context.Context, sessionID string)
}

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=CheckoutEventPublisher --dir=. --output=./mocks --outpkg=mocks

// CheckoutEventPublisher публикует события оформления заказа
type CheckoutEventPublisher interface {
	PublishCheckout(ctx context.Context, event domain.CheckoutEvent) error
}

// Recorder - счётчики бизнес-метрик (реализуется internal/metrics)
type Recorder interface {
	CartOperation(op, result string)
	CatalogFetch(result string, d time.Duration)
	CheckoutOutcome(outcome string)
	SessionsActive(n int)
}
