package service

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shestoi/storefront/services/storefront/internal/domain"
	"github.com/shestoi/storefront/services/storefront/internal/metrics"
	"github.com/shestoi/storefront/services/storefront/internal/service/mocks"
)

func checkoutCart() domain.Cart {
	return domain.Cart{
		{Product: domain.Product{ID: 1, Name: "Tent", Price: 10.00}, Quantity: 2},
		{Product: domain.Product{ID: 2, Name: "Boot", Price: 5.50}, Quantity: 1},
	}
}

func TestCheckoutService_Summary(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		cart        domain.Cart
		wantTotal   float64
		wantEmpty   bool
		wantMessage string
	}{
		{
			name:      "two lines",
			cart:      checkoutCart(),
			wantTotal: 25.50,
		},
		{
			name:        "empty cart",
			cart:        domain.Cart{},
			wantEmpty:   true,
			wantMessage: NoItemsMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			carts := mocks.NewCartStore(t)
			carts.On("Load", mock.Anything, "s1").Return(tt.cart).Once()

			svc := NewCheckoutService(carts, mocks.NewPaymentClient(t), mocks.NewCheckoutEventPublisher(t), metrics.New(), false, zap.NewNop())
			out := svc.Summary(ctx, "s1")

			require.Equal(t, tt.wantTotal, out.Total)
			require.Equal(t, tt.wantEmpty, out.Empty)
			require.Equal(t, tt.wantMessage, out.Message)
			require.Equal(t, tt.cart, out.Lines)
		})
	}
}

func TestCheckoutService_CreateOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		carts := mocks.NewCartStore(t)
		payments := mocks.NewPaymentClient(t)
		reg := metrics.New()

		carts.On("Load", mock.Anything, "s1").Return(checkoutCart()).Once()
		payments.On("CreateOrder", mock.Anything, []domain.OrderItem{
			{ProductID: 1, Quantity: 2},
			{ProductID: 2, Quantity: 1},
		}).Return("ORDER-1", nil).Once()

		svc := NewCheckoutService(carts, payments, mocks.NewCheckoutEventPublisher(t), reg, false, zap.NewNop())
		out, err := svc.CreateOrder(ctx, "s1")

		require.NoError(t, err)
		require.Equal(t, "ORDER-1", out.OrderID)
		require.Empty(t, out.Message)
		require.Equal(t, 1.0, testutil.ToFloat64(reg.CheckoutOutcomes.WithLabelValues("created")))
	})

	t.Run("empty cart makes no remote call", func(t *testing.T) {
		carts := mocks.NewCartStore(t)
		carts.On("Load", mock.Anything, "s1").Return(domain.Cart{}).Once()

		svc := NewCheckoutService(carts, mocks.NewPaymentClient(t), mocks.NewCheckoutEventPublisher(t), metrics.New(), false, zap.NewNop())
		out, err := svc.CreateOrder(ctx, "s1")

		require.ErrorIs(t, err, ErrEmptyCart)
		require.Equal(t, NoItemsMessage, out.Message)
	})

	t.Run("payment service error", func(t *testing.T) {
		carts := mocks.NewCartStore(t)
		payments := mocks.NewPaymentClient(t)

		carts.On("Load", mock.Anything, "s1").Return(checkoutCart()).Once()
		payments.On("CreateOrder", mock.Anything, mock.Anything).Return("", &domain.PaymentOrderError{
			Issue:       "INVALID_REQUEST",
			Description: "bad items",
			DebugID:     "dbg-1",
		}).Once()

		svc := NewCheckoutService(carts, payments, mocks.NewCheckoutEventPublisher(t), metrics.New(), false, zap.NewNop())
		out, err := svc.CreateOrder(ctx, "s1")

		var orderErr *domain.PaymentOrderError
		require.ErrorAs(t, err, &orderErr)
		require.Empty(t, out.OrderID)
		require.Equal(t, "Could not initiate PayPal Checkout...Error: INVALID_REQUEST bad items (dbg-1)", out.Message)
	})
}

func TestCheckoutService_Approve(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name           string
		capture        domain.Capture
		captureErr     error
		clearOnCapture bool
		expectClear    bool
		publishErr     error
		want           ApproveOutput
	}{
		{
			name:    "captured keeps cart by default",
			capture: domain.Capture{Status: "COMPLETED", ID: "CAP-1"},
			want: ApproveOutput{
				Outcome:       domain.OutcomeCaptured,
				Status:        "COMPLETED",
				TransactionID: "CAP-1",
				Message:       "Transaction COMPLETED: CAP-1. See console for all available details",
			},
		},
		{
			name:           "captured clears cart when enabled",
			capture:        domain.Capture{Status: "COMPLETED", ID: "CAP-2"},
			clearOnCapture: true,
			expectClear:    true,
			want: ApproveOutput{
				Outcome:       domain.OutcomeCaptured,
				Status:        "COMPLETED",
				TransactionID: "CAP-2",
				Message:       "Transaction COMPLETED: CAP-2. See console for all available details",
			},
		},
		{
			name: "instrument declined restarts",
			captureErr: &domain.PaymentOrderError{
				Issue:       domain.IssueInstrumentDeclined,
				Description: "declined",
				DebugID:     "dbg-2",
			},
			want: ApproveOutput{Outcome: domain.OutcomeRestart},
		},
		{
			name: "other issue fails",
			captureErr: &domain.PaymentOrderError{
				Issue:       "ORDER_NOT_APPROVED",
				Description: "payer has not approved",
				DebugID:     "dbg-3",
			},
			want: ApproveOutput{
				Outcome: domain.OutcomeFailed,
				Message: "Sorry, your transaction could not be processed...Error: payer has not approved (dbg-3)",
			},
		},
		{
			name:       "transport failure fails",
			captureErr: errors.New("connection reset"),
			publishErr: errors.New("kafka down"),
			want: ApproveOutput{
				Outcome: domain.OutcomeFailed,
				Message: "Sorry, your transaction could not be processed...Error: connection reset",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			carts := mocks.NewCartStore(t)
			payments := mocks.NewPaymentClient(t)
			events := mocks.NewCheckoutEventPublisher(t)
			reg := metrics.New()

			carts.On("Load", mock.Anything, "s1").Return(checkoutCart()).Once()
			payments.On("CaptureOrder", mock.Anything, "ORDER-1").Return(tt.capture, tt.captureErr).Once()
			if tt.expectClear {
				carts.On("Clear", mock.Anything, "s1").Return().Once()
			}
			events.On("PublishCheckout", mock.Anything, mock.MatchedBy(func(e domain.CheckoutEvent) bool {
				return e.SessionID == "s1" &&
					e.OrderID == "ORDER-1" &&
					e.Outcome == tt.want.Outcome &&
					e.Total == 25.50 &&
					len(e.Items) == 2
			})).Return(tt.publishErr).Once()

			svc := NewCheckoutService(carts, payments, events, reg, tt.clearOnCapture, zap.NewNop())
			out := svc.Approve(ctx, "s1", "ORDER-1")

			require.Equal(t, tt.want, out)
			require.Equal(t, 1.0, testutil.ToFloat64(reg.CheckoutOutcomes.WithLabelValues(string(tt.want.Outcome))))
			if !tt.expectClear {
				carts.AssertNotCalled(t, "Clear", mock.Anything, mock.Anything)
			}
		})
	}
}
