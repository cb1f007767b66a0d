package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/harborhealth/claims/internal/authcore/service"
	"github.com/harborhealth/claims/pkg/authapi"
	"github.com/harborhealth/claims/pkg/httpx"
	"github.com/harborhealth/claims/pkg/slogx"
)

type LoginHandler struct {
	AuthService *service.AuthService
}

// ServeHTTP handles POST /v1/login. The failure response is identical for
// unknown usernames and wrong passwords.
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req authapi.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		authapi.ErrInvalidRequest.Write(w)
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		authapi.ErrInvalidRequest.Write(w)
		return
	}

	res, err := h.AuthService.Login(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			authapi.ErrInvalidCredentials.Write(w)
			return
		}
		log.Error("login failed unexpectedly", "err", err)
		authapi.ErrServerError.Write(w)
		return
	}

	// The cookie outlives the inactivity budget on purpose: expiry is
	// enforced server-side against the sliding window, and a cookie capped
	// at the budget would vanish mid-task on an active session.
	setSessionCookie(w, res.Token, int(h.AuthService.TokenLifetime().Seconds()))
	httpx.WriteJSON(w, http.StatusOK, authapi.LoginResponse{
		Token:        res.Token,
		TokenType:    "Bearer",
		LandingRoute: res.LandingRoute,
		ExpiresIn:    int64(h.AuthService.InactivityBudget.Seconds()),
	})
}
