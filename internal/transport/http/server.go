package http

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/strogmv/claimcomms/internal/pkg/errors"
	"github.com/strogmv/claimcomms/internal/port"
)

// HealthChecker reports whether a dependency is usable.
type HealthChecker func() error

// Options configure the admin router.
type Options struct {
	AllowedOrigins []string
	APIKeys        []string
	ExposeMetrics  bool
	Health         map[string]HealthChecker
}

// NewRouter builds the admin API: health, metrics, support lookup and PII redaction.
func NewRouter(ledger port.Ledger, opts Options) http.Handler {
	h := &Handler{ledger: ledger, health: opts.Health}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Api-Key"},
		MaxAge:         300,
	}))

	r.Get("/health", h.Health)
	if opts.ExposeMetrics {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(APIKeyMiddleware(opts.APIKeys))
		r.Get("/support/message-generation", h.Lookup)
		r.Post("/redact/pii", h.RedactPII)
	})

	return otelhttp.NewHandler(r, "admin",
		otelhttp.WithFilter(func(req *http.Request) bool { return req.URL.Path != "/health" }),
	)
}

// NewServer wraps handler with the timeouts used for the admin listener.
func NewServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

// APIKeyMiddleware requires x-api-key to match one of keys. With no keys
// configured every request is refused.
func APIKeyMiddleware(keys []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get("x-api-key")
			if got != "" {
				for _, k := range keys {
					if k != "" && subtle.ConstantTimeCompare([]byte(got), []byte(k)) == 1 {
						next.ServeHTTP(w, r)
						return
					}
				}
			}
			errors.WriteError(w, r, errors.New(http.StatusUnauthorized, "Unauthorized", "valid x-api-key header required"))
		})
	}
}
