package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/dealdesk/dealdesk-backend/api/responses"
	"github.com/dealdesk/dealdesk-backend/pkg/config"
)

// Pinger is the dependency probe surface used by the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Healthz reports liveness plus best-effort dependency probes. The endpoint
// stays 200 unless a probe fails; probes may be nil in tests.
func Healthz(cfg *config.Config, db, cache Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		checks := map[string]string{}

		probe := func(name string, p Pinger) {
			if p == nil {
				checks[name] = "skipped"
				return
			}
			if err := p.Ping(ctx); err != nil {
				checks[name] = "down"
				status = http.StatusServiceUnavailable
				return
			}
			checks[name] = "ok"
		}
		probe("database", db)
		probe("cache", cache)

		payload := map[string]any{
			"status": "ok",
			"env":    cfg.App.Env,
			"checks": checks,
		}
		if status != http.StatusOK {
			payload["status"] = "degraded"
		}
		responses.WriteSuccess(w, status, "health", payload)
	}
}
