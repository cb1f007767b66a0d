package http

import (
	"context"
	"net/http"
	"time"

	"github.com/harborhealth/claims/internal/authcore/store"
	"github.com/harborhealth/claims/pkg/authapi"
	"github.com/harborhealth/claims/pkg/httpx"
)

// Pinger is the slice of a session backend the readiness probe needs.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ReadyzHandler is the readiness probe: it checks the primary store and,
// when sessions live in a separate backend, that backend too.
func ReadyzHandler(
	startTime time.Time,
	version string,
	st store.Store,
	sessionBackend Pinger,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &authapi.HealthChecks{
			Database: "ok",
			Sessions: "ok",
		}
		overallStatus := "ok"
		statusCode := http.StatusOK

		if err := st.Ping(r.Context()); err != nil {
			checks.Database = "error: " + err.Error()
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		if sessionBackend != nil {
			if err := sessionBackend.Ping(r.Context()); err != nil {
				checks.Sessions = "error: " + err.Error()
				overallStatus = "degraded"
				statusCode = http.StatusServiceUnavailable
			}
		}

		httpx.WriteJSON(w, statusCode, authapi.HealthResponse{
			Status:  overallStatus,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		})
	}
}
