package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/harborhealth/claims/internal/authcore/service"
	"github.com/harborhealth/claims/pkg/authapi"
	"github.com/harborhealth/claims/pkg/httpx"
	"github.com/harborhealth/claims/pkg/slogx"
)

type BootstrapHandler struct {
	BootstrapService *service.BootstrapService
}

// ServeHTTP handles POST /v1/bootstrap, the one-time initial-admin setup.
func (h *BootstrapHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req authapi.BootstrapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		authapi.ErrInvalidRequest.Write(w)
		return
	}
	if req.AdminUsername == "" || req.AdminPassword == "" {
		authapi.ErrInvalidRequest.Write(w)
		return
	}

	adminID, err := h.BootstrapService.Bootstrap(ctx, req.Token, req.AdminUsername, req.AdminPassword)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBootstrapDone):
			authapi.ErrConflict.Write(w)
		case errors.Is(err, service.ErrBootstrapToken):
			authapi.ErrUnauthenticated.Write(w)
		case errors.Is(err, service.ErrWeakPassword):
			authapi.ErrInvalidRequest.Write(w)
		default:
			slogx.FromContext(ctx).Error("bootstrap failed", "err", err)
			authapi.ErrServerError.Write(w)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, authapi.BootstrapResponse{
		AdminUserID: adminID,
	})
}
