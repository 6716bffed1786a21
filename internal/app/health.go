package app

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/laundrydesk/laundrydesk/internal/platform/httpx"
)

// HealthCheck probes one dependency. Nil checks are skipped.
type HealthCheck func(ctx context.Context) error

func healthHandler(logger *slog.Logger, check HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				if logger != nil {
					logger.Warn("health check failed", slog.Any("error", err))
				}
				httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
