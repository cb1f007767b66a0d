package http

import (
	"net/http"

	"github.com/harborhealth/claims/internal/authcore/rbac"
	"github.com/harborhealth/claims/internal/authcore/service"
	"github.com/harborhealth/claims/pkg/authapi"
	"github.com/harborhealth/claims/pkg/httpx"
)

type UserInfoHandler struct {
	UserService *service.UserService
}

// ServeHTTP handles GET /v1/userinfo for the authenticated subject.
func (h *UserInfoHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := httpx.UserIDFromCtx(ctx)
	if userID == "" {
		authapi.ErrUnauthenticated.Write(w)
		return
	}

	role := httpx.RoleFromCtx(ctx)
	subRole := httpx.SubRoleFromCtx(ctx)

	httpx.WriteJSON(w, http.StatusOK, authapi.UserInfoResponse{
		UserID:       userID,
		Username:     httpx.UsernameFromCtx(ctx),
		Role:         role,
		SubRole:      subRole,
		Organization: httpx.OrgFromCtx(ctx),
		LandingRoute: rbac.LandingRoute(rbac.Role(role), rbac.SubRole(subRole)),
	})
}
