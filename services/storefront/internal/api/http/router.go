package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	platformhealth "github.com/shestoi/storefront/platform/health/http"
	platformobservability "github.com/shestoi/storefront/platform/observability"
	"github.com/shestoi/storefront/services/storefront/internal/api/http/middleware"
	"github.com/shestoi/storefront/services/storefront/internal/reconciler"
)

// RouterConfig - параметры сессионного middleware
type RouterConfig struct {
	SessionCookieTTL    time.Duration
	SessionCookieSecure bool
}

// NewRouter создаёт и настраивает HTTP роутер storefront.
// readiness проверяет хранилище корзин; при ошибке /health отвечает 503.
// metrics может быть nil, тогда /metrics не регистрируется.
func NewRouter(
	handler *Handler,
	pages *Pages,
	readiness platformhealth.Readiness,
	metrics http.Handler,
	cfg RouterConfig,
	logger *zap.Logger,
) chi.Router {
	router := chi.NewRouter()

	// Observability: trace context + span на каждый запрос, logger с trace_id в контексте
	if logger != nil {
		router.Use(platformobservability.HTTPMiddleware("storefront", logger))
	}

	router.Group(func(r chi.Router) {
		r.Use(middleware.Session(cfg.SessionCookieTTL, cfg.SessionCookieSecure))

		r.Get("/", pages.Catalog)
		r.Get("/checkout", pages.Checkout)

		r.Route("/api", func(r chi.Router) {
			r.Get("/view", handler.GetView)
			r.Post("/view/reload", handler.PostReload)
			r.Put("/categories/{key}", handler.PutCategory)

			r.Get("/cart", handler.GetCart)
			r.Route("/cart/items/{id}", func(r chi.Router) {
				r.Post("/", handler.CartOperation(reconciler.KindAdd))
				r.Delete("/", handler.CartOperation(reconciler.KindRemove))
				r.Post("/increase", handler.CartOperation(reconciler.KindIncrease))
				r.Post("/decrease", handler.CartOperation(reconciler.KindDecrease))
			})

			r.Get("/checkout", handler.GetCheckout)
			r.Post("/checkout/orders", handler.PostCheckoutOrder)
			r.Post("/checkout/orders/{orderID}/capture", handler.PostCapture)
		})
	})

	// Health и metrics без сессии
	router.Get("/health", platformhealth.Handler(readiness))
	if metrics != nil {
		router.Handle("/metrics", metrics)
	}

	return router
}
