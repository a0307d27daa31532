package http

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/aussiebroadwan/tasks/internal/tasks/session"
	"github.com/aussiebroadwan/tasks/internal/tasks/store"
	"github.com/aussiebroadwan/tasks/pkg/httpx"
	"github.com/aussiebroadwan/tasks/pkg/tasksdk"
)

// readyTimeout bounds each dependency ping.
const readyTimeout = 2 * time.Second

// ReadyzHandler godoc
//
//	@Summary		Readiness Check Endpoint
//	@Description	Readiness probe that pings the database and the session cache concurrently
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	tasksdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	tasksdk.HealthResponse	"status, uptime, version, checks - service not ready"
//	@Router			/readyz [get].
func ReadyzHandler(
	startTime time.Time,
	version string,
	st store.Store,
	sessions session.Cache,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		checks := &tasksdk.HealthChecks{Database: "ok", Cache: "ok"}

		// Each goroutine owns one field. A plain Group lets both checks run
		// to completion so every failure is reported.
		var g errgroup.Group
		g.Go(func() error {
			if err := st.Ping(ctx); err != nil {
				checks.Database = "error: " + err.Error()
				return err
			}
			return nil
		})
		g.Go(func() error {
			if err := sessions.Ping(ctx); err != nil {
				checks.Cache = "error: " + err.Error()
				return err
			}
			return nil
		})

		status, code := "ok", http.StatusOK
		if err := g.Wait(); err != nil {
			status, code = "degraded", http.StatusServiceUnavailable
		}

		httpx.WriteJSON(w, code, tasksdk.HealthResponse{
			Status:  status,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		})
	}
}
