package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/angelmondragon/limited-access-backend/api/responses"
	"github.com/angelmondragon/limited-access-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/limited-access-backend/pkg/errors"
	"github.com/angelmondragon/limited-access-backend/pkg/logger"
)

const readinessTimeout = 2 * time.Second

// Pinger is anything the readiness probe can check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ReadinessCheck names one dependency of the readiness probe.
type ReadinessCheck struct {
	Name   string
	Pinger Pinger
}

type healthPayload struct {
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Root answers GET / with a short description of the API.
func Root() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteMessage(w, http.StatusOK, "Limited Edition Access API", map[string]string{
			"health":   "/api/health",
			"waitlist": "/api/waitlist",
			"webhooks": "/api/webhooks/shopify",
		})
	}
}

func HealthLive(cfg *config.Config, now func() time.Time) http.HandlerFunc {
	if now == nil {
		now = time.Now
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if cfg != nil {
			w.Header().Set("X-Waitlist-Env", cfg.App.Env)
		}
		responses.WriteSuccess(w, healthPayload{
			Status:    "OK",
			Message:   "Limited Edition Access API is running",
			Timestamp: now().UTC(),
		})
	}
}

// HealthReady pings every check and reports 503 on the first failure.
func HealthReady(logg *logger.Logger, checks ...ReadinessCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		status := map[string]string{}
		for _, check := range checks {
			if check.Pinger == nil {
				continue
			}
			if err := check.Pinger.Ping(ctx); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, check.Name+" unavailable").
					WithDetails(map[string]string{"dependency": check.Name}))
				return
			}
			status[check.Name] = "ok"
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": status})
	}
}
