package authcore_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	httpapi "github.com/harborhealth/claims/internal/authcore/http"
	"github.com/harborhealth/claims/internal/authcore/service"
	"github.com/harborhealth/claims/internal/authcore/store/drivers/sqlite"
	"github.com/harborhealth/claims/pkg/authapi"
	"github.com/harborhealth/claims/pkg/jwtx"
	"github.com/harborhealth/claims/pkg/slogx"
)

/*
 * Common helpers for authcore end-to-end tests. Each test gets its own
 * service instance wired exactly as cmd/authcore wires it, served over
 * httptest, and exercised purely through the HTTP surface.
 */

const (
	bootstrapToken = "test-bootstrap-token-12345"
	adminUsername  = "admin"
	adminPassword  = "Admin123!long"
	userPassword   = "test123456"
)

type testService struct {
	baseURL string
	client  *http.Client
}

type serviceOptions struct {
	inactivityBudget    time.Duration
	nearExpiryThreshold time.Duration
}

// setupService assembles a full authcore stack over a throwaway sqlite
// database and serves it in-process.
func setupService(t *testing.T, opts serviceOptions) *testService {
	t.Helper()

	if opts.inactivityBudget == 0 {
		opts.inactivityBudget = 15 * time.Minute
	}
	if opts.nearExpiryThreshold == 0 {
		opts.nearExpiryThreshold = 2 * time.Minute
	}

	st, err := sqlite.NewStore(filepath.Join(t.TempDir(), "e2e.db"))
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	codec, err := jwtx.NewCodec("authcore-e2e")
	require.NoError(t, err)

	logger := slogx.New(slogx.Config{
		Service: "authcore",
		Version: "e2e",
		Env:     "test",
		Level:   "error",
		Format:  "text",
	})

	router := httpapi.NewRouter(codec, "e2e", st, logger)
	router.AuthService = &service.AuthService{
		Store:            st,
		Codec:            codec,
		InactivityBudget: opts.inactivityBudget,
	}
	router.SessionService = &service.SessionService{
		Store:               st,
		NearExpiryThreshold: opts.nearExpiryThreshold,
	}
	router.UserService = &service.UserService{Store: st}
	router.BootstrapService = &service.BootstrapService{
		Store: st,
		Token: bootstrapToken,
	}
	router.ApplyRoutes()

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	// Redirects are assertions in these tests, never followed.
	client := &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	return &testService{baseURL: server.URL, client: client}
}

// do sends a request with an optional bearer token and decodes the JSON
// response body into out when out is non-nil.
func (s *testService) do(t *testing.T, method, path, token string, body, out any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, s.baseURL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.client.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

// browse sends a cookie-authenticated GET the way a portal page load
// would arrive.
func (s *testService) browse(t *testing.T, path, token string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, s.baseURL+path, nil)
	require.NoError(t, err)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: httpapi.SessionCookie, Value: token})
	}

	resp, err := s.client.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

// bootstrap performs the one-time setup call and fails the test if it is
// rejected.
func (s *testService) bootstrap(t *testing.T) authapi.BootstrapResponse {
	t.Helper()

	var out authapi.BootstrapResponse
	resp := s.do(t, http.MethodPost, "/v1/bootstrap", "", authapi.BootstrapRequest{
		Token:         bootstrapToken,
		AdminUsername: adminUsername,
		AdminPassword: adminPassword,
	}, &out)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.NotEmpty(t, out.AdminUserID)
	return out
}

// login authenticates a user and returns the session token and landing
// route from the response.
func (s *testService) login(t *testing.T, username, password string) authapi.LoginResponse {
	t.Helper()

	var out authapi.LoginResponse
	resp := s.do(t, http.MethodPost, "/v1/login", "", authapi.LoginRequest{
		Username: username,
		Password: password,
	}, &out)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "Bearer", out.TokenType)
	require.NotEmpty(t, out.Token)
	return out
}

// createUser provisions an account through the admin API.
func (s *testService) createUser(t *testing.T, adminToken, username, role, subRole string) authapi.CreateUserResponse {
	t.Helper()

	var out authapi.CreateUserResponse
	resp := s.do(t, http.MethodPost, "/v1/users", adminToken, authapi.CreateUserRequest{
		Username: username,
		Password: userPassword,
		Role:     role,
		SubRole:  subRole,
	}, &out)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.NotEmpty(t, out.UserID)
	return out
}

// errorCode extracts the machine-readable error code from an API error
// response.
func errorCode(t *testing.T, resp *http.Response) string {
	t.Helper()

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body["error"]
}
