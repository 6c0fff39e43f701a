package middleware

import (
	"net/http"
	"strings"

	"github.com/hollowayclinic/intake/pkg/httpx"
	pkglogger "github.com/hollowayclinic/intake/pkg/logger"
)

// OriginGuardConfig holds the allow-lists for the origin check.
type OriginGuardConfig struct {
	// AllowedOrigins are exact scheme+host values matched against the
	// Origin header.
	AllowedOrigins []string
	// AllowedReferrerDomains are substrings matched against the Referer
	// header when the Origin header does not match.
	AllowedReferrerDomains []string
}

// OriginGuard rejects requests that do not plausibly come from an
// approved front-end: the Origin header must exactly match an allowed
// origin, or the Referer must contain an allowed domain. Everything else
// gets 403 with the standard envelope, and a denial audit event.
func OriginGuard(config OriginGuardConfig, auditLogger *pkglogger.AuditLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if originAllowed(r, config) {
				next.ServeHTTP(w, r)
				return
			}

			auditLogger.LogPipelineEvent(pkglogger.AuditEvent{
				EventType:     pkglogger.EventOriginDenied,
				IPAddress:     httpx.ClientIP(r),
				UserAgent:     r.UserAgent(),
				Success:       false,
				FailureReason: "origin and referrer both unrecognized",
			})
			httpx.WriteForbidden(w)
		})
	}
}

func originAllowed(r *http.Request, config OriginGuardConfig) bool {
	origin := r.Header.Get("Origin")
	if origin != "" {
		for _, allowed := range config.AllowedOrigins {
			if origin == allowed {
				return true
			}
		}
	}

	referer := r.Header.Get("Referer")
	if referer != "" {
		for _, domain := range config.AllowedReferrerDomains {
			if strings.Contains(referer, domain) {
				return true
			}
		}
	}

	return false
}
