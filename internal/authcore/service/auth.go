package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/harborhealth/claims/internal/authcore/domain"
	"github.com/harborhealth/claims/internal/authcore/rbac"
	"github.com/harborhealth/claims/internal/authcore/store"
	"github.com/harborhealth/claims/pkg/cryptox"
	"github.com/harborhealth/claims/pkg/idx"
	"github.com/harborhealth/claims/pkg/jwtx"
	"github.com/harborhealth/claims/pkg/slogx"
)

// MinPasswordLength applies to new passwords only; stored credentials
// are verified as-is.
const MinPasswordLength = 8

// DefaultTokenTTL caps how long a session token stays verifiable. It is
// deliberately much longer than the inactivity budget: the sliding
// window lives server-side, and an actively used session must not be cut
// off just because its token aged. The store remains authoritative.
const DefaultTokenTTL = 12 * time.Hour

// AuthService owns login, logout, and password changes.
type AuthService struct {
	Store            store.Store
	Codec            *jwtx.Codec
	InactivityBudget time.Duration
	TokenTTL         time.Duration
}

func (s *AuthService) tokenTTL() time.Duration {
	if s.TokenTTL > 0 {
		return s.TokenTTL
	}
	return DefaultTokenTTL
}

// TokenLifetime is the effective outer lifetime of minted session tokens.
// The browser cookie must live at least this long; a shorter cookie would
// log out an actively used session when the cookie lapses, even though
// the sliding window had kept the session alive.
func (s *AuthService) TokenLifetime() time.Duration {
	return s.tokenTTL()
}

// LoginResult carries everything the transport layer needs after a
// successful login.
type LoginResult struct {
	User         domain.User
	Session      domain.Session
	Token        string
	LandingRoute string
}

// Login verifies the credential and mints a fresh session. Unknown users
// and wrong passwords are indistinguishable to the caller; a malformed
// stored credential is logged for operators but reported the same way.
func (s *AuthService) Login(ctx context.Context, username, password string) (LoginResult, error) {
	l := slogx.FromContext(ctx)

	user, err := s.Store.Users().GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Burn a derivation anyway so response timing does not reveal
			// whether the username exists.
			_, _ = cryptox.HashCredential(password)
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, err
	}

	ok, err := cryptox.VerifyCredential(password, user.CredentialHash)
	if err != nil {
		if errors.Is(err, cryptox.ErrMalformedCredential) {
			l.Warn("stored credential is malformed, treating as mismatch",
				slog.String("user_id", user.ID))
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, err
	}
	if !ok {
		l.Info("login failed", slog.String("user_id", user.ID))
		return LoginResult{}, ErrInvalidCredentials
	}

	now := time.Now().UTC()
	sess := domain.Session{
		ID:               idx.New().String(),
		UserID:           user.ID,
		LastActivityAt:   now,
		CreatedAt:        now,
		InactivityBudget: s.InactivityBudget,
	}
	if err := s.Store.Sessions().CreateSession(ctx, sess); err != nil {
		return LoginResult{}, err
	}

	claims := jwtx.NewSessionClaims(
		user.ID, sess.ID,
		user.Role, user.SubRole, user.Organization, user.Username,
		s.tokenTTL(), s.Codec.Issuer(), now,
	)
	token, err := s.Codec.Sign(claims)
	if err != nil {
		// The session is useless without its token.
		_ = s.Store.Sessions().DeleteSession(ctx, sess.ID)
		return LoginResult{}, err
	}

	l.Info("login succeeded",
		slog.String("user_id", user.ID),
		slog.String("session_id", sess.ID),
		slog.String("role", user.Role),
	)

	return LoginResult{
		User:         user,
		Session:      sess,
		Token:        token,
		LandingRoute: rbac.LandingRoute(rbac.Role(user.Role), rbac.SubRole(user.SubRole)),
	}, nil
}

// Logout destroys the session unconditionally. Logging out an already
// gone session is not an error.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	err := s.Store.Sessions().DeleteSession(ctx, sessionID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}
	slogx.FromContext(ctx).Info("logout", slog.String("session_id", sessionID))
	return nil
}

// ChangePassword verifies the current password, stores a freshly salted
// hash of the new one, and revokes every other session of the user.
func (s *AuthService) ChangePassword(ctx context.Context, userID, current, next string) error {
	if len(next) < MinPasswordLength {
		return ErrWeakPassword
	}

	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidCredentials
		}
		return err
	}

	ok, err := cryptox.VerifyCredential(current, user.CredentialHash)
	if err != nil {
		if errors.Is(err, cryptox.ErrMalformedCredential) {
			slogx.FromContext(ctx).Warn("stored credential is malformed, treating as mismatch",
				slog.String("user_id", user.ID))
			return ErrInvalidCredentials
		}
		return err
	}
	if !ok {
		return ErrInvalidCredentials
	}

	newHash, err := cryptox.HashCredential(next)
	if err != nil {
		return err
	}
	if err := s.Store.Users().UpdateCredentialHash(ctx, userID, newHash); err != nil {
		return err
	}

	// Stale sessions minted under the old password die with it.
	if err := s.Store.Sessions().DeleteAllUserSessions(ctx, userID); err != nil {
		return err
	}

	slogx.FromContext(ctx).Info("password changed", slog.String("user_id", userID))
	return nil
}
