package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/shestoi/storefront/platform/observability"
	"github.com/shestoi/storefront/services/storefront/internal/authctx"
	"github.com/shestoi/storefront/services/storefront/internal/domain"
	"github.com/shestoi/storefront/services/storefront/internal/reconciler"
	"github.com/shestoi/storefront/services/storefront/internal/service"
)

// Handler содержит JSON обработчики storefront API.
// Вся логика корзины в service слое; здесь только разбор запроса и формирование ответа.
type Handler struct {
	storefront *service.StorefrontService
	checkout   *service.CheckoutService
	logger     *zap.Logger
}

// NewHandler создаёт новый HTTP handler
func NewHandler(storefront *service.StorefrontService, checkout *service.CheckoutService, logger *zap.Logger) *Handler {
	return &Handler{
		storefront: storefront,
		checkout:   checkout,
		logger:     logger,
	}
}

// ViewResponse - страница каталога
type ViewResponse struct {
	Categories []domain.Category `json:"categories"`
	Selection  []string          `json:"selection"`
	Products   []domain.Product  `json:"products"`
	Cart       domain.Cart       `json:"cart"`
	Total      float64           `json:"total"`
	Units      int               `json:"units"`
	Error      string            `json:"error,omitempty"`
}

// DispatchResponse - результат операции над корзиной
type DispatchResponse struct {
	Applied bool         `json:"applied"`
	Reason  string       `json:"reason,omitempty"`
	View    ViewResponse `json:"view"`
}

// CartResponse - сохранённая корзина
type CartResponse struct {
	Lines domain.Cart `json:"lines"`
	Total float64     `json:"total"`
	Units int         `json:"units"`
}

// CheckoutResponse - страница оформления
type CheckoutResponse struct {
	CartResponse
	Empty   bool   `json:"empty"`
	Message string `json:"message,omitempty"`
}

// CreateOrderResponse - id созданного заказа или сообщение об ошибке
type CreateOrderResponse struct {
	ID      string `json:"id,omitempty"`
	Message string `json:"message,omitempty"`
}

// ApproveResponse - итог capture
type ApproveResponse struct {
	Outcome       string `json:"outcome"`
	Message       string `json:"message,omitempty"`
	Status        string `json:"status,omitempty"`
	TransactionID string `json:"transaction_id,omitempty"`
}

// ToggleCategoryRequest - тело PUT /api/categories/{key}
type ToggleCategoryRequest struct {
	Checked *bool `json:"checked"`
}

// GetView обрабатывает GET /api/view
func (h *Handler) GetView(w http.ResponseWriter, r *http.Request) {
	sid := sessionID(r)
	h.writeView(w, r, h.storefront.View(r.Context(), sid))
}

// PostReload обрабатывает POST /api/view/reload
func (h *Handler) PostReload(w http.ResponseWriter, r *http.Request) {
	sid := sessionID(r)
	h.writeView(w, r, h.storefront.Reload(r.Context(), sid))
}

// PutCategory обрабатывает PUT /api/categories/{key}
func (h *Handler) PutCategory(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if unescaped, err := url.PathUnescape(key); err == nil {
		key = unescaped
	}

	var req ToggleCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Checked == nil {
		http.Error(w, "Invalid payload: checked is required", http.StatusBadRequest)
		return
	}

	view, err := h.storefront.ToggleCategory(r.Context(), sessionID(r), key, *req.Checked)
	if err != nil {
		if errors.Is(err, service.ErrUnknownCategory) {
			http.Error(w, "Unknown category: "+key, http.StatusNotFound)
			return
		}
		h.internalError(w, r, err)
		return
	}

	h.writeView(w, r, view)
}

// GetCart обрабатывает GET /api/cart
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	cart := h.storefront.Cart(r.Context(), sessionID(r))
	h.writeJSON(w, r, http.StatusOK, cartResponse(cart))
}

// CartOperation возвращает обработчик операции над позицией /api/cart/items/{id}
func (h *Handler) CartOperation(kind reconciler.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			http.Error(w, "Invalid product id", http.StatusBadRequest)
			return
		}

		out := h.storefront.Dispatch(r.Context(), sessionID(r), reconciler.Operation{Kind: kind, ProductID: productID})

		// отказ операции - штатная ситуация: 200 и applied=false
		h.writeJSON(w, r, http.StatusOK, DispatchResponse{
			Applied: out.Applied,
			Reason:  out.Reason,
			View:    viewResponse(out.View),
		})
	}
}

// GetCheckout обрабатывает GET /api/checkout
func (h *Handler) GetCheckout(w http.ResponseWriter, r *http.Request) {
	summary := h.checkout.Summary(r.Context(), sessionID(r))
	h.writeJSON(w, r, http.StatusOK, CheckoutResponse{
		CartResponse: CartResponse{Lines: nonNilCart(summary.Lines), Total: summary.Total, Units: summary.Units},
		Empty:        summary.Empty,
		Message:      summary.Message,
	})
}

// PostCheckoutOrder обрабатывает POST /api/checkout/orders
func (h *Handler) PostCheckoutOrder(w http.ResponseWriter, r *http.Request) {
	out, err := h.checkout.CreateOrder(r.Context(), sessionID(r))
	switch {
	case err == nil:
		h.writeJSON(w, r, http.StatusCreated, CreateOrderResponse{ID: out.OrderID})
	case errors.Is(err, service.ErrEmptyCart):
		h.writeJSON(w, r, http.StatusConflict, CreateOrderResponse{Message: out.Message})
	default:
		h.writeJSON(w, r, http.StatusBadGateway, CreateOrderResponse{Message: out.Message})
	}
}

// PostCapture обрабатывает POST /api/checkout/orders/{orderID}/capture
func (h *Handler) PostCapture(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")
	if orderID == "" {
		http.Error(w, "Invalid order id", http.StatusBadRequest)
		return
	}

	out := h.checkout.Approve(r.Context(), sessionID(r), orderID)
	h.writeJSON(w, r, http.StatusOK, ApproveResponse{
		Outcome:       string(out.Outcome),
		Message:       out.Message,
		Status:        out.Status,
		TransactionID: out.TransactionID,
	})
}

func (h *Handler) writeView(w http.ResponseWriter, r *http.Request, view service.ViewOutput) {
	status := http.StatusOK
	if view.Error != "" {
		status = http.StatusServiceUnavailable
	}
	h.writeJSON(w, r, status, viewResponse(view))
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		observability.LoggerFromContext(r.Context(), h.logger).Error("Failed to encode response", zap.Error(err))
	}
}

func (h *Handler) internalError(w http.ResponseWriter, r *http.Request, err error) {
	observability.LoggerFromContext(r.Context(), h.logger).Error("Request failed",
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}

// sessionID берёт id из контекста; middleware.Session гарантирует, что он есть
func sessionID(r *http.Request) string {
	sid, _ := authctx.SessionIDFromContext(r.Context())
	return sid
}

func viewResponse(v service.ViewOutput) ViewResponse {
	return ViewResponse{
		Categories: v.Categories,
		Selection:  append([]string{}, v.Selection...),
		Products:   v.Products,
		Cart:       nonNilCart(v.Cart),
		Total:      v.Total,
		Units:      v.Units,
		Error:      v.Error,
	}
}

func cartResponse(cart domain.Cart) CartResponse {
	return CartResponse{Lines: nonNilCart(cart), Total: cart.Total(), Units: cart.Units()}
}

func nonNilCart(cart domain.Cart) domain.Cart {
	if cart == nil {
		return domain.Cart{}
	}
	return cart
}
