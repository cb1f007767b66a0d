package http

import (
	"errors"
	"net/http"

	"github.com/harborhealth/claims/internal/authcore/service"
	"github.com/harborhealth/claims/pkg/authapi"
	"github.com/harborhealth/claims/pkg/httpx"
	"github.com/harborhealth/claims/pkg/jwtx"
)

// SessionStatusHandler backs the session-countdown indicator. It
// authenticates the token itself instead of going through the guard,
// because reading the countdown must not count as activity.
type SessionStatusHandler struct {
	Codec          *jwtx.Codec
	SessionService *service.SessionService
}

// ServeHTTP handles GET /v1/session.
func (h *SessionStatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	raw := tokenFromRequest(r)
	if raw == "" {
		authapi.ErrUnauthenticated.Write(w)
		return
	}

	claims, err := h.Codec.Verify(raw)
	if err != nil {
		if errors.Is(err, jwtx.ErrExpired) {
			authapi.ErrSessionExpired.Write(w)
			return
		}
		authapi.ErrUnauthenticated.Write(w)
		return
	}

	remaining, near, err := h.SessionService.Status(ctx, claims.SID)
	if err != nil {
		if errors.Is(err, service.ErrSessionExpired) {
			authapi.ErrSessionExpired.Write(w)
			return
		}
		authapi.ErrUnauthenticated.Write(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authapi.SessionStatusResponse{
		RemainingSeconds: int64(remaining.Seconds()),
		NearExpiry:       near,
	})
}
