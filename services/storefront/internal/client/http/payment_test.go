package httpclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shestoi/storefront/services/storefront/internal/domain"
)

func newPaymentClient(t *testing.T, h http.HandlerFunc) *PaymentClient {
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewPaymentClient(srv.URL+"/", srv.Client(), zap.NewNop())
}

func TestPaymentClient_CreateOrder(t *testing.T) {
	client := newPaymentClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/orders", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, map[string]any{
			"cartItems": []any{
				map[string]any{"id": "1", "quantity": "2"},
				map[string]any{"id": "7", "quantity": "1"},
			},
		}, body)

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"ORDER-1","status":"CREATED"}`))
	})

	id, err := client.CreateOrder(context.Background(), []domain.OrderItem{
		{ProductID: 1, Quantity: 2},
		{ProductID: 7, Quantity: 1},
	})

	require.NoError(t, err)
	require.Equal(t, "ORDER-1", id)
}

func TestPaymentClient_CreateOrderErrors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{
			name:    "details",
			body:    `{"details":[{"issue":"INVALID_REQUEST","description":"bad items"}],"debug_id":"dbg-1"}`,
			wantMsg: "INVALID_REQUEST bad items (dbg-1)",
		},
		{
			name:    "no details",
			body:    `{"error":"boom"}`,
			wantMsg: `{"error":"boom"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newPaymentClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnprocessableEntity)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := client.CreateOrder(context.Background(), []domain.OrderItem{{ProductID: 1, Quantity: 1}})

			var orderErr *domain.PaymentOrderError
			require.ErrorAs(t, err, &orderErr)
			require.Equal(t, tt.wantMsg, orderErr.Error())
		})
	}
}

func TestPaymentClient_CreateOrderUndecodable(t *testing.T) {
	client := newPaymentClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("bad gateway"))
	})

	_, err := client.CreateOrder(context.Background(), nil)

	require.ErrorContains(t, err, "decode payment response (status 502)")
}

func TestPaymentClient_CaptureOrder(t *testing.T) {
	client := newPaymentClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/orders/ORDER-1/capture", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"id":"ORDER-1",
			"status":"COMPLETED",
			"purchase_units":[{"payments":{"captures":[{"id":"CAP-9","status":"COMPLETED"}]}}]
		}`))
	})

	capture, err := client.CaptureOrder(context.Background(), "ORDER-1")

	require.NoError(t, err)
	require.Equal(t, domain.Capture{Status: "COMPLETED", ID: "CAP-9"}, capture)
}

func TestPaymentClient_CaptureDeclined(t *testing.T) {
	client := newPaymentClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"details":[{"issue":"INSTRUMENT_DECLINED","description":"card declined"}],"debug_id":"dbg-2"}`))
	})

	_, err := client.CaptureOrder(context.Background(), "ORDER-1")

	var orderErr *domain.PaymentOrderError
	require.ErrorAs(t, err, &orderErr)
	require.True(t, orderErr.Declined())
	require.Equal(t, "card declined", orderErr.Description)
	require.Equal(t, "dbg-2", orderErr.DebugID)
}

func TestPaymentClient_CaptureWithoutCaptures(t *testing.T) {
	client := newPaymentClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"ORDER-1","status":"APPROVED"}`))
	})

	_, err := client.CaptureOrder(context.Background(), "ORDER-1")

	var orderErr *domain.PaymentOrderError
	require.ErrorAs(t, err, &orderErr)
	require.False(t, orderErr.Declined())
}

func TestPaymentClient_CaptureRequiresOrderID(t *testing.T) {
	client := NewPaymentClient("http://127.0.0.1:1", http.DefaultClient, zap.NewNop())

	_, err := client.CaptureOrder(context.Background(), "")

	require.Error(t, err)
}
