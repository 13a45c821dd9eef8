package router

import (
	"net/http"
	"slices"
	"strconv"

	"github.com/shandysiswandi/pagemail/internal/pkg/config"
)

const maintenanceRetryAfter = 300

// middlewareMaintenance rejects matched routes listed in app.maintenance.endpoints
// ("*" for all but /health). The list is read per request so a watched config
// file can pause sending without a restart.
func middlewareMaintenance(cfg config.Config) Middleware {
	return func(next http.Handler) http.Handler {
		if cfg == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route := matchedRoutePath(r)
			blocked := cfg.GetArray("app.maintenance.endpoints")

			if route != "/health" && (slices.Contains(blocked, "*") || slices.Contains(blocked, route)) {
				w.Header().Set("Retry-After", strconv.Itoa(maintenanceRetryAfter))
				writeJSON(w, errorResponse{Message: "Service is under maintenance"}, http.StatusServiceUnavailable)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
