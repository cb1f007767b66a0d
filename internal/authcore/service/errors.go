package service

import (
	"errors"

	"github.com/harborhealth/claims/internal/authcore/rbac"
)

var (
	// ErrInvalidCredentials covers unknown usernames and wrong passwords
	// alike; callers must not be able to tell which one happened.
	ErrInvalidCredentials = errors.New("invalid_credentials")

	// ErrUnauthenticated means no valid session backs the request. Store
	// failures on the auth path degrade to this, never to allowed.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrSessionExpired means the session existed but its inactivity
	// budget ran out; the caller must log in again.
	ErrSessionExpired = errors.New("session_expired")

	// ErrForbidden is the rbac sentinel: live session, insufficient role.
	ErrForbidden = rbac.ErrForbidden

	ErrUsernameTaken   = errors.New("username_taken")
	ErrInvalidUsername = errors.New("invalid_username")
	ErrInvalidRole     = errors.New("invalid_role")
	ErrWeakPassword    = errors.New("weak_password")
	ErrBootstrapDone   = errors.New("bootstrap_already_completed")
	ErrBootstrapToken  = errors.New("invalid_bootstrap_token")
	ErrUserNotFound    = errors.New("user_not_found")
)
