package router

import (
	"net/http"

	"github.com/samber/lo"
	"github.com/shandysiswandi/emailotp/internal/pkg/config"
)

const maintenanceAll = "*"

// maintenance holds the route paths from app.maintenance.endpoints.
type maintenance map[string]struct{}

func newMaintenance(cfg config.Config) maintenance {
	if cfg == nil {
		return nil
	}
	return lo.Keyify(cfg.GetArray("app.maintenance.endpoints"))
}

// blocks reports whether route is under maintenance. "*" covers every route
// except /health so probes keep passing.
func (m maintenance) blocks(route string) bool {
	if _, ok := m[route]; ok {
		return true
	}
	_, all := m[maintenanceAll]
	return all && route != "/health"
}

// middlewareMaintenance answers 503 for routes listed in app.maintenance.endpoints.
func middlewareMaintenance(cfg config.Config) Middleware {
	m := newMaintenance(cfg)

	return func(next http.Handler) http.Handler {
		if len(m) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if m.blocks(matchedRoutePath(r)) {
				writeJSON(w, errorResponse{Message: "service is under maintenance"}, http.StatusServiceUnavailable)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
