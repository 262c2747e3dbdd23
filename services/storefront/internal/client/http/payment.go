package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/shestoi/storefront/platform/observability"
	"github.com/shestoi/storefront/services/storefront/internal/domain"
)

const maxPaymentBody = 1 << 20

// PaymentClient вызывает REST сервис оплаты: создание заказа и capture
type PaymentClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewPaymentClient создаёт клиент сервиса оплаты; baseURL без завершающего "/"
func NewPaymentClient(baseURL string, httpClient *http.Client, logger *zap.Logger) *PaymentClient {
	return &PaymentClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
	}
}

type cartItemRequest struct {
	ID       string `json:"id"`
	Quantity string `json:"quantity"`
}

type createOrderRequest struct {
	CartItems []cartItemRequest `json:"cartItems"`
}

type errorDetail struct {
	Issue       string `json:"issue"`
	Description string `json:"description"`
}

type orderResponse struct {
	ID            string        `json:"id"`
	Status        string        `json:"status"`
	Details       []errorDetail `json:"details"`
	DebugID       string        `json:"debug_id"`
	PurchaseUnits []struct {
		Payments struct {
			Captures []struct {
				ID     string `json:"id"`
				Status string `json:"status"`
			} `json:"captures"`
		} `json:"payments"`
	} `json:"purchase_units"`
}

func (r orderResponse) orderError(raw []byte) *domain.PaymentOrderError {
	if len(r.Details) == 0 {
		return &domain.PaymentOrderError{Raw: strings.TrimSpace(string(raw))}
	}
	return &domain.PaymentOrderError{
		Issue:       r.Details[0].Issue,
		Description: r.Details[0].Description,
		DebugID:     r.DebugID,
	}
}

// CreateOrder создаёт заказ у сервиса оплаты и возвращает его id.
// Количество и id передаются строками, как их ждёт сервис оплаты.
func (c *PaymentClient) CreateOrder(ctx context.Context, items []domain.OrderItem) (string, error) {
	req := createOrderRequest{CartItems: make([]cartItemRequest, 0, len(items))}
	for _, item := range items {
		req.CartItems = append(req.CartItems, cartItemRequest{
			ID:       strconv.FormatInt(item.ProductID, 10),
			Quantity: strconv.Itoa(item.Quantity),
		})
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("encode order request: %w", err)
	}

	resp, raw, err := c.post(ctx, c.baseURL+"/api/orders", body)
	if err != nil {
		return "", err
	}

	if resp.ID != "" {
		return resp.ID, nil
	}
	return "", resp.orderError(raw)
}

// CaptureOrder подтверждает оплату одобренного заказа.
// Ответ с details возвращается как *domain.PaymentOrderError.
func (c *PaymentClient) CaptureOrder(ctx context.Context, orderID string) (domain.Capture, error) {
	if orderID == "" {
		return domain.Capture{}, errors.New("order id is required")
	}

	resp, raw, err := c.post(ctx, c.baseURL+"/api/orders/"+url.PathEscape(orderID)+"/capture", nil)
	if err != nil {
		return domain.Capture{}, err
	}

	if len(resp.Details) > 0 {
		return domain.Capture{}, resp.orderError(raw)
	}
	if len(resp.PurchaseUnits) == 0 || len(resp.PurchaseUnits[0].Payments.Captures) == 0 {
		return domain.Capture{}, resp.orderError(raw)
	}

	capture := resp.PurchaseUnits[0].Payments.Captures[0]
	return domain.Capture{Status: capture.Status, ID: capture.ID}, nil
}

// post отправляет JSON и разбирает тело ответа при любом статусе: ошибки сервис оплаты
// описывает в теле (details, debug_id).
func (c *PaymentClient) post(ctx context.Context, target string, body []byte) (orderResponse, []byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, reader)
	if err != nil {
		return orderResponse{}, nil, fmt.Errorf("build payment request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return orderResponse{}, nil, fmt.Errorf("payment request: %w", err)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(httpResp.Body, maxPaymentBody))
	if err != nil {
		return orderResponse{}, nil, fmt.Errorf("read payment response: %w", err)
	}

	observability.L(ctx, c.logger).Debug("Payment service responded",
		zap.String("url", target),
		zap.Int("status", httpResp.StatusCode),
		zap.ByteString("body", raw),
	)

	var resp orderResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return orderResponse{}, raw, fmt.Errorf("decode payment response (status %d): %w", httpResp.StatusCode, err)
	}
	return resp, raw, nil
}
