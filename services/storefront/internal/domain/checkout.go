package domain

import "time"

// Outcome - итог шага оформления заказа
type Outcome string

const (
	// OutcomeCreated - заказ создан у сервиса оплаты
	OutcomeCreated Outcome = "created"
	// OutcomeCreateFailed - заказ создать не удалось
	OutcomeCreateFailed Outcome = "create_failed"
	// OutcomeRestart - платёжный инструмент отклонён, покупатель повторяет оплату
	OutcomeRestart Outcome = "restart"
	// OutcomeFailed - терминальная ошибка capture
	OutcomeFailed Outcome = "failed"
	// OutcomeCaptured - оплата прошла
	OutcomeCaptured Outcome = "captured"
)

// CheckoutEvent - событие о результате подтверждения оплаты
type CheckoutEvent struct {
	EventID       string      `json:"event_id"`
	SessionID     string      `json:"session_id"`
	OrderID       string      `json:"order_id"`
	Outcome       Outcome     `json:"outcome"`
	CaptureStatus string      `json:"capture_status,omitempty"`
	TransactionID string      `json:"transaction_id,omitempty"`
	Total         float64     `json:"total"`
	Items         []OrderItem `json:"items"`
	Message       string      `json:"message,omitempty"`
	OccurredAt    time.Time   `json:"occurred_at"`
}
