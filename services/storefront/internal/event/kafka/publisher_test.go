package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shestoi/storefront/services/storefront/internal/domain"
)

type fakeWriter struct {
	msgs        []kafka.Message
	err         error
	hadDeadline bool
	closed      bool
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	_, w.hadDeadline = ctx.Deadline()
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestCheckoutEventPublisher_PublishCheckout(t *testing.T) {
	w := &fakeWriter{}
	p := newPublisher(zap.NewNop(), w, "storefront.checkout.completed", time.Second)

	err := p.PublishCheckout(context.Background(), domain.CheckoutEvent{
		SessionID:     "s1",
		OrderID:       "ORDER-1",
		Outcome:       domain.OutcomeCaptured,
		CaptureStatus: "COMPLETED",
		TransactionID: "CAP-1",
		Total:         25.5,
		Items:         []domain.OrderItem{{ProductID: 1, Quantity: 2}},
	})
	require.NoError(t, err)
	require.True(t, w.hadDeadline)
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	require.Equal(t, "s1", string(msg.Key))
	require.Equal(t, "event_type", msg.Headers[0].Key)
	require.Equal(t, eventType, string(msg.Headers[0].Value))

	var got map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	require.NotEmpty(t, got["event_id"])
	require.NotEmpty(t, got["occurred_at"])
	require.Equal(t, "captured", got["outcome"])
	require.Equal(t, "CAP-1", got["transaction_id"])
	require.Equal(t, 25.5, got["total"])
	require.Equal(t, []any{map[string]any{"product_id": 1.0, "quantity": 2.0}}, got["items"])
}

func TestCheckoutEventPublisher_WriteError(t *testing.T) {
	w := &fakeWriter{err: errors.New("leader not available")}
	p := newPublisher(zap.NewNop(), w, "topic", 0)

	err := p.PublishCheckout(context.Background(), domain.CheckoutEvent{OrderID: "ORDER-1"})

	require.ErrorContains(t, err, "leader not available")
	require.False(t, w.hadDeadline)
}

func TestCheckoutEventPublisher_Close(t *testing.T) {
	w := &fakeWriter{}
	p := newPublisher(zap.NewNop(), w, "topic", 0)

	require.NoError(t, p.Close())
	require.True(t, w.closed)
}

func TestNoopPublisher(t *testing.T) {
	p := NewNoopPublisher(zap.NewNop())

	require.NoError(t, p.PublishCheckout(context.Background(), domain.CheckoutEvent{}))
	require.NoError(t, p.Close())
}
