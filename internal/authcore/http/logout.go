package http

import (
	"net/http"

	"github.com/harborhealth/claims/internal/authcore/service"
	"github.com/harborhealth/claims/pkg/authapi"
	"github.com/harborhealth/claims/pkg/httpx"
	"github.com/harborhealth/claims/pkg/slogx"
)

type LogoutHandler struct {
	AuthService *service.AuthService
}

// ServeHTTP handles POST /v1/logout. The session dies unconditionally.
func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sessionID := httpx.SessionIDFromCtx(ctx)
	if sessionID == "" {
		authapi.ErrUnauthenticated.Write(w)
		return
	}

	if err := h.AuthService.Logout(ctx, sessionID); err != nil {
		slogx.FromContext(ctx).Error("logout failed", "err", err)
		authapi.ErrServerError.Write(w)
		return
	}

	clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}
