// Package metrics - Prometheus метрики storefront на собственном registry.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "storefront"

// Registry хранит метрики и отдаёт их через Handler
type Registry struct {
	reg *prometheus.Registry

	CartOperations   *prometheus.CounterVec
	CatalogFetches   *prometheus.CounterVec
	CatalogLatency   prometheus.Histogram
	CheckoutOutcomes *prometheus.CounterVec
	ActiveSessions   prometheus.Gauge
}

// New создаёт registry с метриками сервиса и стандартными go/process коллекторами
func New() *Registry {
	r := prometheus.NewRegistry()

	cartOps := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cart_operations_total",
		Help:      "Cart operations by kind and result (applied or rejection reason).",
	}, []string{"op", "result"})
	catalogFetches := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "catalog_fetch_total",
		Help:      "Catalog fetches by result.",
	}, []string{"result"})
	catalogLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "catalog_fetch_duration_seconds",
		Help:      "Catalog fetch latency including retries.",
		Buckets:   prometheus.DefBuckets,
	})
	checkout := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "checkout_outcomes_total",
		Help:      "Checkout steps by outcome.",
	}, []string{"outcome"})
	sessions := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_sessions",
		Help:      "Sessions with in-memory page view state.",
	})

	r.MustRegister(
		cartOps, catalogFetches, catalogLatency, checkout, sessions,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Registry{
		reg:              r,
		CartOperations:   cartOps,
		CatalogFetches:   catalogFetches,
		CatalogLatency:   catalogLatency,
		CheckoutOutcomes: checkout,
		ActiveSessions:   sessions,
	}
}

// CartOperation учитывает операцию над корзиной
func (r *Registry) CartOperation(op, result string) {
	r.CartOperations.WithLabelValues(op, result).Inc()
}

// CatalogFetch учитывает выборку каталога
func (r *Registry) CatalogFetch(result string, d time.Duration) {
	r.CatalogFetches.WithLabelValues(result).Inc()
	r.CatalogLatency.Observe(d.Seconds())
}

// CheckoutOutcome учитывает итог шага оформления
func (r *Registry) CheckoutOutcome(outcome string) {
	r.CheckoutOutcomes.WithLabelValues(outcome).Inc()
}

// SessionsActive выставляет число активных сессий
func (r *Registry) SessionsActive(n int) {
	r.ActiveSessions.Set(float64(n))
}

func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}
