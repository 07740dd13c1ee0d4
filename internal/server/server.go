// Package server assembles the HTTP handler for `cashflow serve`.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"connectrpc.com/connect"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mmynk/cashflow/internal/auth"
	"github.com/mmynk/cashflow/internal/metrics"
	"github.com/mmynk/cashflow/internal/middleware"
	"github.com/mmynk/cashflow/internal/service"
	"github.com/mmynk/cashflow/internal/storage"
	"github.com/mmynk/cashflow/pkg/api/apiconnect"
)

// Deps are the collaborators the handler wires together.
type Deps struct {
	Store         storage.Store
	JWT           *auth.JWTManager
	Authenticator auth.Authenticator
	Metrics       *metrics.Metrics
	Gatherer      prometheus.Gatherer
	Logger        *slog.Logger
}

// NewHandler returns the router serving the Connect services, /metrics and
// /healthz.
func NewHandler(d Deps) http.Handler {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Authenticator == nil {
		d.Authenticator = auth.NewPasswordAuthenticator(d.Store)
	}
	if d.Gatherer == nil {
		d.Gatherer = prometheus.DefaultGatherer
	}

	r := chi.NewRouter()
	r.Use(loggingMiddleware, corsMiddleware)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok\n"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))

	logging := middleware.LoggingInterceptor(d.Metrics)

	// Auth runs first so the logging interceptor sees the account.
	settlementPath, settlementHandler := apiconnect.NewSettlementServiceHandler(
		service.NewSettlementService(d.Store, d.Metrics),
		connect.WithInterceptors(middleware.OptionalAuth(d.JWT), logging),
	)
	r.Handle(settlementPath+"*", settlementHandler)

	groupPath, groupHandler := apiconnect.NewGroupServiceHandler(
		service.NewGroupService(d.Store),
		connect.WithInterceptors(middleware.RequireAuth(d.JWT), logging),
	)
	r.Handle(groupPath+"*", groupHandler)

	authPath, authHandler := apiconnect.NewAuthServiceHandler(
		service.NewAuthService(d.Authenticator, d.JWT, d.Store, d.Logger),
		[]connect.HandlerOption{connect.WithInterceptors(logging)},
		connect.WithInterceptors(middleware.RequireAuth(d.JWT)),
	)
	r.Handle(authPath+"*", authHandler)

	return r
}

// loggingMiddleware logs all incoming requests
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		slog.Debug("Request received",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"user_agent", r.UserAgent(),
		)

		next.ServeHTTP(w, r)

		slog.Debug("Request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// corsMiddleware adds CORS headers for browser access
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Connect-Protocol-Version, Connect-Timeout-Ms")
		w.Header().Set("Access-Control-Expose-Headers", "Connect-Protocol-Version, Connect-Timeout-Ms")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
