package router

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
)

// HealthCheck probes one dependency.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type healthResponse struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components,omitempty"`
}

// RegisterHealth serves GET /health, returning 503 when any check fails.
// It bypasses the middleware chain so probes stay out of request logs.
func (r *Router) RegisterHealth(timeout time.Duration, checks ...HealthCheck) {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}

	r.hr.GET("/health", func(w http.ResponseWriter, req *http.Request, _ httprouter.Params) {
		ctx, cancel := context.WithTimeout(req.Context(), timeout)
		defer cancel()

		resp := healthResponse{Status: "ok", Components: make(map[string]string, len(checks))}
		code := http.StatusOK
		for _, c := range checks {
			if err := c.Check(ctx); err != nil {
				slog.WarnContext(ctx, "health check failed", "component", c.Name, "error", err)
				resp.Components[c.Name] = "down"
				resp.Status = "degraded"
				code = http.StatusServiceUnavailable
				continue
			}
			resp.Components[c.Name] = "up"
		}

		writeJSON(w, resp, code)
	})
}
