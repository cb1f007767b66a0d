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

// UsersHandler covers account administration (users:manage capability).
type UsersHandler struct {
	UserService *service.UserService
}

// HandleCreate handles POST /v1/users.
func (h *UsersHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req authapi.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		authapi.ErrInvalidRequest.Write(w)
		return
	}

	user, err := h.UserService.CreateUser(ctx, service.CreateUserParams{
		Username:     req.Username,
		Password:     req.Password,
		Role:         req.Role,
		SubRole:      req.SubRole,
		Organization: req.Organization,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUsernameTaken):
			authapi.ErrConflict.Write(w)
		case errors.Is(err, service.ErrInvalidRole),
			errors.Is(err, service.ErrInvalidUsername),
			errors.Is(err, service.ErrWeakPassword):
			authapi.ErrInvalidRequest.Write(w)
		default:
			slogx.FromContext(ctx).Error("user creation failed", "err", err)
			authapi.ErrServerError.Write(w)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, authapi.CreateUserResponse{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		SubRole:  user.SubRole,
	})
}

// HandleDelete handles DELETE /v1/users/{id}.
func (h *UsersHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := r.PathValue("id")
	if userID == "" {
		authapi.ErrInvalidRequest.Write(w)
		return
	}

	if err := h.UserService.DeleteUser(ctx, userID); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			authapi.ErrNotFound.Write(w)
			return
		}
		slogx.FromContext(ctx).Error("user deletion failed", "err", err)
		authapi.ErrServerError.Write(w)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ChangePasswordHandler lets the authenticated subject rotate their own
// password. Every session of the user dies with the old password, so the
// response also clears the cookie.
type ChangePasswordHandler struct {
	AuthService *service.AuthService
}

// ServeHTTP handles PUT /v1/users/me/password.
func (h *ChangePasswordHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := httpx.UserIDFromCtx(ctx)
	if userID == "" {
		authapi.ErrUnauthenticated.Write(w)
		return
	}

	var req authapi.ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		authapi.ErrInvalidRequest.Write(w)
		return
	}

	err := h.AuthService.ChangePassword(ctx, userID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			authapi.ErrInvalidCredentials.Write(w)
		case errors.Is(err, service.ErrWeakPassword):
			authapi.ErrInvalidRequest.Write(w)
		default:
			slogx.FromContext(ctx).Error("password change failed", "err", err)
			authapi.ErrServerError.Write(w)
		}
		return
	}

	clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}
