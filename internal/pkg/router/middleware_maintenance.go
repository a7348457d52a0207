package router

import (
	"net/http"
	"slices"

	"github.com/bridj/tripmailer/internal/pkg/config"
)

// middlewareMaintenance answers 503 for the route patterns listed in
// app.maintenance.endpoints ("*" matches all). The key is read on every
// request, so editing the config file switches routes off without a restart.
func middlewareMaintenance(cfg config.Config) Middleware {
	if cfg == nil {
		return func(next http.Handler) http.Handler { return next }
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			off := cfg.GetArray("app.maintenance.endpoints")
			if slices.ContainsFunc(off, func(p string) bool { return p == "*" || p == matchedRoutePath(r) }) {
				writeJSON(w, errorResponse{Message: "service is under maintenance"}, http.StatusServiceUnavailable)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
