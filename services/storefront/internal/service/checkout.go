package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/shestoi/storefront/platform/observability"
	"github.com/shestoi/storefront/services/storefront/internal/domain"
)

// NoItemsMessage показывается на странице оформления, когда корзина пуста
const NoItemsMessage = "No items in the cart."

// ErrEmptyCart - оформление пустой корзины
var ErrEmptyCart = errors.New("cart is empty")

// CheckoutService передаёт сохранённую корзину сервису оплаты и переводит его ответы
// в сообщения для покупателя.
type CheckoutService struct {
	carts          CartStore
	payments       PaymentClient
	events         CheckoutEventPublisher
	metrics        Recorder
	clearOnCapture bool
	logger         *zap.Logger
	now            func() time.Time
}

// NewCheckoutService создаёт сервис оформления. clearOnCapture включает очистку корзины после успешной оплаты.
func NewCheckoutService(
	carts CartStore,
	payments PaymentClient,
	events CheckoutEventPublisher,
	metrics Recorder,
	clearOnCapture bool,
	logger *zap.Logger,
) *CheckoutService {
	return &CheckoutService{
		carts:          carts,
		payments:       payments,
		events:         events,
		metrics:        metrics,
		clearOnCapture: clearOnCapture,
		logger:         logger,
		now:            time.Now,
	}
}

// SummaryOutput - содержимое страницы оформления
type SummaryOutput struct {
	Lines   domain.Cart
	Total   float64
	Units   int
	Empty   bool
	Message string
}

// Summary читает сохранённую корзину и считает сумму заказа
func (s *CheckoutService) Summary(ctx context.Context, sessionID string) SummaryOutput {
	cart := s.carts.Load(ctx, sessionID)
	out := SummaryOutput{
		Lines: cart,
		Total: cart.Total(),
		Units: cart.Units(),
		Empty: len(cart) == 0,
	}
	if out.Empty {
		out.Message = NoItemsMessage
	}
	return out
}

// CreateOrderOutput - результат создания заказа. Message заполнен при ошибке.
type CreateOrderOutput struct {
	OrderID string
	Message string
}

// CreateOrder создаёт заказ у сервиса оплаты из позиций сохранённой корзины
func (s *CheckoutService) CreateOrder(ctx context.Context, sessionID string) (CreateOrderOutput, error) {
	log := observability.L(ctx, s.logger).With(zap.String("session_id", sessionID))

	cart := s.carts.Load(ctx, sessionID)
	if len(cart) == 0 {
		return CreateOrderOutput{Message: NoItemsMessage}, ErrEmptyCart
	}

	orderID, err := s.payments.CreateOrder(ctx, cart.OrderItems())
	if err != nil {
		log.Error("Failed to create payment order", zap.Error(err))
		s.metrics.CheckoutOutcome(string(domain.OutcomeCreateFailed))
		return CreateOrderOutput{
			Message: "Could not initiate PayPal Checkout...Error: " + err.Error(),
		}, fmt.Errorf("create payment order: %w", err)
	}

	log.Info("Payment order created",
		zap.String("order_id", orderID),
		zap.Int("lines", len(cart)),
		zap.Float64("total", cart.Total()),
	)
	s.metrics.CheckoutOutcome(string(domain.OutcomeCreated))

	return CreateOrderOutput{OrderID: orderID}, nil
}

// ApproveOutput - итог подтверждения оплаты
type ApproveOutput struct {
	Outcome       domain.Outcome
	Message       string
	Status        string
	TransactionID string
}

// Approve подтверждает (capture) одобренный покупателем заказ.
//
// INSTRUMENT_DECLINED даёт OutcomeRestart без сообщения: покупатель повторяет оплату.
// Любая другая ошибка терминальна. Успешный capture по умолчанию корзину не очищает.
func (s *CheckoutService) Approve(ctx context.Context, sessionID, orderID string) ApproveOutput {
	log := observability.L(ctx, s.logger).With(
		zap.String("session_id", sessionID),
		zap.String("order_id", orderID),
	)

	cart := s.carts.Load(ctx, sessionID)
	capture, err := s.payments.CaptureOrder(ctx, orderID)

	var out ApproveOutput
	switch {
	case err == nil:
		out = ApproveOutput{
			Outcome:       domain.OutcomeCaptured,
			Status:        capture.Status,
			TransactionID: capture.ID,
			Message: fmt.Sprintf("Transaction %s: %s. See console for all available details",
				capture.Status, capture.ID),
		}
		log.Info("Payment captured",
			zap.String("status", capture.Status),
			zap.String("transaction_id", capture.ID),
		)
		if s.clearOnCapture {
			s.carts.Clear(ctx, sessionID)
		}
	case isDeclined(err):
		out = ApproveOutput{Outcome: domain.OutcomeRestart}
		log.Info("Payment instrument declined, restarting checkout", zap.Error(err))
	default:
		out = ApproveOutput{
			Outcome: domain.OutcomeFailed,
			Message: "Sorry, your transaction could not be processed...Error: " + failureDetail(err),
		}
		log.Error("Payment capture failed", zap.Error(err))
	}

	s.metrics.CheckoutOutcome(string(out.Outcome))
	s.publish(ctx, log, domain.CheckoutEvent{
		SessionID:     sessionID,
		OrderID:       orderID,
		Outcome:       out.Outcome,
		CaptureStatus: out.Status,
		TransactionID: out.TransactionID,
		Total:         cart.Total(),
		Items:         cart.OrderItems(),
		Message:       out.Message,
		OccurredAt:    s.now().UTC(),
	})

	return out
}

// publish не влияет на результат оформления: оплата уже прошла или уже отклонена
func (s *CheckoutService) publish(ctx context.Context, log *zap.Logger, event domain.CheckoutEvent) {
	if err := s.events.PublishCheckout(ctx, event); err != nil {
		log.Warn("Failed to publish checkout event",
			zap.String("outcome", string(event.Outcome)),
			zap.Error(err),
		)
	}
}

func isDeclined(err error) bool {
	var orderErr *domain.PaymentOrderError
	return errors.As(err, &orderErr) && orderErr.Declined()
}

// failureDetail - "<description> (<debug_id>)", если сервис оплаты вернул details
func failureDetail(err error) string {
	var orderErr *domain.PaymentOrderError
	if errors.As(err, &orderErr) && (orderErr.Issue != "" || orderErr.Description != "") {
		return fmt.Sprintf("%s (%s)", orderErr.Description, orderErr.DebugID)
	}
	return err.Error()
}
