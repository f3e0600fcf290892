package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/novathreads/storefront-backend/api/responses"
	pkgerrors "github.com/novathreads/storefront-backend/pkg/errors"
	"github.com/novathreads/storefront-backend/pkg/logger"
)

const readyCheckTimeout = 2 * time.Second

// Pinger is a dependency checked by the readiness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

type healthResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// HealthLive reports that the process is serving.
func HealthLive(now func() time.Time) http.HandlerFunc {
	if now == nil {
		now = time.Now
	}
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteJSON(w, http.StatusOK, healthResponse{
			Success:   true,
			Message:   "NovaThreads API is running",
			Timestamp: now().UTC().Format(time.RFC3339Nano),
		})
	}
}

// HealthReady pings every named dependency. Nil pingers are skipped.
func HealthReady(deps map[string]Pinger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readyCheckTimeout)
		defer cancel()

		status := make(map[string]string, len(deps))
		for name, dep := range deps {
			if dep == nil {
				continue
			}
			if err := dep.Ping(ctx); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, name+" unavailable"))
				return
			}
			status[name] = "ok"
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": status})
	}
}
