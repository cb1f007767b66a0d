// Package jwtx signs and verifies the session tokens handed to browsers
// and API clients after login.
//
// The token is a transport for the session ID, not an authorization
// artifact: role and sub-role ride along for display and routing, but every
// guarded request is still resolved against the server-side session store.
package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims are the claims embedded in a signed session token.
type SessionClaims struct {
	jwt.RegisteredClaims

	// SID is the server-side session identifier (ULID).
	SID string `json:"sid"`

	// Role is the subject's base role (e.g. "doctor", "insurer").
	Role string `json:"role,omitempty"`

	// SubRole narrows the base role for insurer staff
	// (e.g. "claims_manager").
	SubRole string `json:"sub_role,omitempty"`

	// Org is the affiliated organization for insurer staff.
	Org string `json:"org,omitempty"`

	// Username for the authenticated user.
	Username string `json:"username,omitempty"`
}

// NewSessionClaims builds minimally-correct claims for a session token.
// The exp claim is an outer cap on the token's transport lifetime; the
// server-side sliding window is authoritative, so middleware re-checks
// the store on every request regardless.
func NewSessionClaims(
	subject, sid, role, subRole, org, username string,
	ttl time.Duration,
	issuer string,
	now time.Time,
) SessionClaims {
	return SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        newJTI(),
		},
		SID:      sid,
		Role:     role,
		SubRole:  subRole,
		Org:      org,
		Username: username,
	}
}

// newJTI returns a URL-safe random identifier for the "jti" claim.
func newJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// ValidateIssuer checks the issuer matches the expected value.
func (c *SessionClaims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil // nothing to enforce
	}
	if c.Issuer != expected {
		return ErrIssuer
	}
	return nil
}

// ValidateExpiry ensures the token hasn't expired (exp) and isn't used
// before it is valid (nbf).
func (c *SessionClaims) ValidateExpiry(now time.Time) error {
	now = now.UTC()

	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Time) {
		return ErrExpired
	}
	if c.NotBefore != nil && now.Before(c.NotBefore.Time) {
		return ErrNotYetValid
	}
	return nil
}
