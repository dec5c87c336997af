package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "claimcomms_http_request_duration_seconds",
		Help:    "Duration of admin HTTP requests.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method", "status"})

	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "claimcomms_http_requests_total",
		Help: "Total number of admin HTTP requests.",
	}, []string{"route", "method", "status"})
)

// MetricsMiddleware records RED metrics keyed by route pattern.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		code := strconv.Itoa(status)
		httpDuration.WithLabelValues(route, r.Method, code).Observe(time.Since(start).Seconds())
		httpRequests.WithLabelValues(route, r.Method, code).Inc()
	})
}
