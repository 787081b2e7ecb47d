package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"phonebook/internal/platform/metrics"
	"phonebook/internal/platform/middleware"
	dErrors "phonebook/pkg/domain-errors"
	"phonebook/pkg/platform/httputil"
	metadatamw "phonebook/pkg/platform/middleware/metadata"
	"phonebook/pkg/platform/middleware/requesttime"
)

// RouteRegistrar is implemented by module handlers that own a set of routes.
type RouteRegistrar interface {
	Register(r chi.Router)
}

// HealthChecker reports whether the service's dependencies are reachable.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Options configures NewRouter. Nil Metrics and Gatherer disable the latency
// middleware and the /metrics endpoint.
type Options struct {
	Logger         *slog.Logger
	Metrics        *metrics.Metrics
	Gatherer       prometheus.Gatherer
	Health         HealthChecker
	RequestTimeout time.Duration
	CORSOrigins    []string
}

// NewRouter wires the shared middleware chain, the operational endpoints and
// every module's routes.
func NewRouter(opts Options, modules ...RouteRegistrar) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(metadatamw.ClientMetadata)
	r.Use(requesttime.Middleware)
	r.Use(middleware.Logger(logger))
	if opts.Metrics != nil {
		r.Use(middleware.Latency(opts.Metrics))
	}
	if opts.RequestTimeout > 0 {
		r.Use(middleware.Timeout(opts.RequestTimeout))
	}
	r.Use(cors.New(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
	}).Handler)

	r.Get("/", handleRoot)
	r.Get("/health", handleHealth(opts.Health))
	if opts.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}

	for _, m := range modules {
		m.Register(r)
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "unknown endpoint"))
	})
	return r
}

func handleRoot(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("Hello, World!"))
}

func handleHealth(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if checker != nil {
			if err := checker.Health(r.Context()); err != nil {
				httputil.WriteError(w, err)
				return
			}
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
