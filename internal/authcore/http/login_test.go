package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/harborhealth/claims/internal/authcore/domain"
	"github.com/harborhealth/claims/pkg/authapi"
	"github.com/harborhealth/claims/pkg/cryptox"
	"github.com/harborhealth/claims/pkg/idx"
)

func TestLoginCookieOutlivesInactivityBudget(t *testing.T) {
	f := newGuardFixture(t, false)

	hash, err := cryptox.HashCredential("test123456")
	require.NoError(t, err)
	require.NoError(t, f.store.Users().CreateUser(context.Background(), domain.User{
		ID:             idx.New().String(),
		Username:       "doctor1",
		CredentialHash: hash,
		Role:           "doctor",
	}))

	h := &LoginHandler{AuthService: f.auth}
	body := `{"username":"doctor1","password":"test123456"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/login", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var res authapi.LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Equal(t, "/doctor", res.LandingRoute)

	// The countdown the client shows follows the inactivity budget...
	require.Equal(t, int64(f.auth.InactivityBudget.Seconds()), res.ExpiresIn)

	// ...but the cookie must last as long as the token stays verifiable.
	// A cookie capped at the budget would log out an active browser
	// session the moment the cookie lapsed, despite the sliding window.
	var sessionCookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookie {
			sessionCookie = c
		}
	}
	require.NotNil(t, sessionCookie)
	require.Equal(t, res.Token, sessionCookie.Value)
	require.Equal(t, int(f.auth.TokenLifetime().Seconds()), sessionCookie.MaxAge)
	require.Greater(t, sessionCookie.MaxAge, int(f.auth.InactivityBudget.Seconds()))
}
