package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Counters(t *testing.T) {
	r := New()

	r.CartOperation("add", "applied")
	r.CartOperation("add", "applied")
	r.CartOperation("increase", "out of stock")
	r.CatalogFetch("ok", 20*time.Millisecond)
	r.CheckoutOutcome("captured")
	r.SessionsActive(3)

	require.Equal(t, 2.0, testutil.ToFloat64(r.CartOperations.WithLabelValues("add", "applied")))
	require.Equal(t, 1.0, testutil.ToFloat64(r.CartOperations.WithLabelValues("increase", "out of stock")))
	require.Equal(t, 1.0, testutil.ToFloat64(r.CatalogFetches.WithLabelValues("ok")))
	require.Equal(t, 1.0, testutil.ToFloat64(r.CheckoutOutcomes.WithLabelValues("captured")))
	require.Equal(t, 3.0, testutil.ToFloat64(r.ActiveSessions))
}

func TestRegistry_Handler(t *testing.T) {
	r := New()
	r.CheckoutOutcome("restart")

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `storefront_checkout_outcomes_total{outcome="restart"} 1`)
	require.Contains(t, rec.Body.String(), "go_goroutines")
}
