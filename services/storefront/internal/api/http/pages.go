package httpapi

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"go.uber.org/zap"

	"github.com/shestoi/storefront/platform/observability"
	"github.com/shestoi/storefront/services/storefront/internal/service"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Pages рендерит HTML страницы каталога и оформления заказа
type Pages struct {
	catalog    *template.Template
	checkout   *template.Template
	storefront *service.StorefrontService
	checkoutSv *service.CheckoutService

	payPalClientID string
	currency       string
	logger         *zap.Logger
}

// PagesConfig - параметры PayPal SDK на странице оформления
type PagesConfig struct {
	PayPalClientID string
	Currency       string
}

// NewPages разбирает встроенные шаблоны
func NewPages(storefront *service.StorefrontService, checkout *service.CheckoutService, cfg PagesConfig, logger *zap.Logger) (*Pages, error) {
	catalog, err := template.ParseFS(templatesFS, "templates/layout.html", "templates/catalog.html")
	if err != nil {
		return nil, fmt.Errorf("parse catalog template: %w", err)
	}
	checkoutTpl, err := template.ParseFS(templatesFS, "templates/layout.html", "templates/checkout.html")
	if err != nil {
		return nil, fmt.Errorf("parse checkout template: %w", err)
	}

	return &Pages{
		catalog:        catalog,
		checkout:       checkoutTpl,
		storefront:     storefront,
		checkoutSv:     checkout,
		payPalClientID: cfg.PayPalClientID,
		currency:       cfg.Currency,
		logger:         logger,
	}, nil
}

type catalogPage struct {
	Title string
	service.ViewOutput
}

// Selected используется шаблоном для отметки чекбоксов категорий
func (p catalogPage) Selected(key string) bool {
	return p.Selection.Has(key)
}

type checkoutPage struct {
	Title string
	service.SummaryOutput
	PayPalClientID string
	Currency       string
}

// Catalog обрабатывает GET /
func (p *Pages) Catalog(w http.ResponseWriter, r *http.Request) {
	view := p.storefront.View(r.Context(), sessionID(r))

	status := http.StatusOK
	if view.Error != "" {
		status = http.StatusServiceUnavailable
	}
	p.render(w, r, p.catalog, "catalog.html", status, catalogPage{Title: "Products", ViewOutput: view})
}

// Checkout обрабатывает GET /checkout
func (p *Pages) Checkout(w http.ResponseWriter, r *http.Request) {
	summary := p.checkoutSv.Summary(r.Context(), sessionID(r))
	p.render(w, r, p.checkout, "checkout.html", http.StatusOK, checkoutPage{
		Title:          "Checkout",
		SummaryOutput:  summary,
		PayPalClientID: p.payPalClientID,
		Currency:       p.currency,
	})
}

// render выполняет шаблон в буфер, чтобы ошибка шаблона не оставила половину страницы
func (p *Pages) render(w http.ResponseWriter, r *http.Request, tpl *template.Template, name string, status int, data any) {
	var buf bytes.Buffer
	if err := tpl.ExecuteTemplate(&buf, name, data); err != nil {
		observability.LoggerFromContext(r.Context(), p.logger).Error("Failed to render page",
			zap.String("template", name),
			zap.Error(err),
		)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
