// Package httpapi assembles the HTTP surface: routing, shared middleware,
// health, and metrics. Endpoint behavior lives with the module handlers.
package httpapi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	attendancehandler "rollcall/internal/attendance/handler"
	"rollcall/internal/platform/metrics"
	rosterhandler "rollcall/internal/roster/handler"
	"rollcall/pkg/platform/httputil"
	"rollcall/pkg/platform/middleware/requestid"
	"rollcall/pkg/platform/middleware/requesttime"
)

// HealthChecker reports whether a backing dependency is reachable.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Deps collects everything the router mounts. Nil health checkers are
// skipped, so a memory-only deployment stays healthy.
type Deps struct {
	Roster     *rosterhandler.Handler
	Attendance *attendancehandler.Handler
	HTTP       *metrics.HTTPMetrics
	Checks     map[string]HealthChecker
}

// NewRouter wires all public endpoints.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(requestid.Middleware)
	r.Use(requesttime.Middleware)
	if deps.HTTP != nil {
		r.Use(deps.HTTP.Middleware)
	}

	deps.Roster.Register(r)
	deps.Attendance.Register(r)

	r.Get("/healthz", healthHandler(deps.Checks))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}

func healthHandler(checks map[string]HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK
		result := make(map[string]string, len(checks)+1)
		result["status"] = "ok"
		for name, check := range checks {
			if check == nil {
				continue
			}
			if err := check.Health(r.Context()); err != nil {
				status = http.StatusServiceUnavailable
				result[name] = "unreachable"
				result["status"] = "degraded"
				continue
			}
			result[name] = "ok"
		}
		httputil.WriteJSON(w, status, result)
	}
}
