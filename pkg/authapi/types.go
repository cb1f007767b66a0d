package authapi

// LoginRequest is the body of POST /v1/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is returned on successful login. The token is also set as
// the authcore_session cookie for browser clients.
type LoginResponse struct {
	Token        string `json:"token"`
	TokenType    string `json:"token_type"` // always "Bearer"
	LandingRoute string `json:"landing_route"`
	ExpiresIn    int64  `json:"expires_in"` // seconds of inactivity budget
}

// SessionStatusResponse backs the session-countdown indicator.
// Reading it does not refresh the session's activity window.
type SessionStatusResponse struct {
	RemainingSeconds int64 `json:"remaining_seconds"`
	NearExpiry       bool  `json:"near_expiry"`
}

// UserInfoResponse describes the authenticated subject.
type UserInfoResponse struct {
	UserID       string `json:"user_id"`
	Username     string `json:"username"`
	Role         string `json:"role"`
	SubRole      string `json:"sub_role,omitempty"`
	Organization string `json:"organization,omitempty"`
	LandingRoute string `json:"landing_route"`
}

// CreateUserRequest is the body of POST /v1/users (admin only).
type CreateUserRequest struct {
	Username     string `json:"username"`
	Password     string `json:"password"`
	Role         string `json:"role"`
	SubRole      string `json:"sub_role,omitempty"`
	Organization string `json:"organization,omitempty"`
}

// CreateUserResponse is returned on successful account creation.
type CreateUserResponse struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	SubRole  string `json:"sub_role,omitempty"`
}

// ChangePasswordRequest is the body of PUT /v1/users/me/password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// BootstrapRequest is the body of POST /v1/bootstrap, the one-time setup
// call that creates the initial admin account.
type BootstrapRequest struct {
	Token         string `json:"token"`
	AdminUsername string `json:"admin_username"`
	AdminPassword string `json:"admin_password"`
}

// BootstrapResponse is returned on successful bootstrap.
type BootstrapResponse struct {
	AdminUserID string `json:"admin_user_id"`
}

// HealthChecks reports per-dependency status in readiness probes.
type HealthChecks struct {
	Database string `json:"database"`
	Sessions string `json:"sessions"`
}

// HealthResponse is returned by /livez and /readyz.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}
