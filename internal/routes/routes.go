package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/hollowayclinic/intake/internal/config"
	"github.com/hollowayclinic/intake/internal/handlers"
	"github.com/hollowayclinic/intake/internal/middleware"
	"github.com/hollowayclinic/intake/pkg/httpx"
	pkglogger "github.com/hollowayclinic/intake/pkg/logger"
)

// RegisterRoutes registers all application routes
func RegisterRoutes(
	router chi.Router,
	cfg *config.ServerConfig,
	contactHandler *handlers.ContactHandler,
	statusHandler *handlers.StatusHandler,
	auditLogger *pkglogger.AuditLogger,
) {
	// JSON envelope for method and route misses, matching the contract
	// the front-end expects everywhere.
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteMethodNotAllowed(w)
	})
	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteResult(w, http.StatusNotFound, false, "Not found.")
	})

	originGuard := middleware.OriginGuard(middleware.OriginGuardConfig{
		AllowedOrigins:         cfg.AllowedOrigins,
		AllowedReferrerDomains: cfg.AllowedReferrerDomains,
	}, auditLogger)

	// Coarse per-IP throttle on the intake route, independent of the
	// domain submission limit enforced inside the handler.
	throttle := httprate.Limit(
		cfg.ThrottleRequestsPerMin,
		1*time.Minute,
		httprate.WithKeyByRealIP(),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			httpx.WriteTooManyRequests(w, "Too many requests. Please slow down.")
		}),
	)

	router.With(throttle, originGuard).Post("/api/contact", contactHandler.Submit)

	router.Get("/health", statusHandler.Health)
	router.Get("/status", statusHandler.Status)
}
