package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/harborhealth/claims/internal/authcore/domain"
	"github.com/harborhealth/claims/internal/authcore/store"
	"github.com/harborhealth/claims/internal/authcore/store/drivers/sqlite"
	"github.com/harborhealth/claims/pkg/cryptox"
	"github.com/harborhealth/claims/pkg/idx"
	"github.com/harborhealth/claims/pkg/jwtx"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	s, err := sqlite.NewStore(filepath.Join(t.TempDir(), "service_test.db"))
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newAuthService(t *testing.T, s store.Store) *AuthService {
	t.Helper()

	codec, err := jwtx.NewCodec("authcore-test")
	require.NoError(t, err)
	return &AuthService{
		Store:            s,
		Codec:            codec,
		InactivityBudget: 15 * time.Minute,
	}
}

func seedUser(t *testing.T, s store.Store, username, password, role, subRole string) domain.User {
	t.Helper()

	hash, err := cryptox.HashCredential(password)
	require.NoError(t, err)

	u := domain.User{
		ID:             idx.New().String(),
		Username:       username,
		CredentialHash: hash,
		Role:           role,
		SubRole:        subRole,
	}
	require.NoError(t, s.Users().CreateUser(context.Background(), u))
	return u
}

func TestLoginSuccess(t *testing.T) {
	s := newTestStore(t)
	svc := newAuthService(t, s)
	ctx := context.Background()

	u := seedUser(t, s, "doctor1", "test123456", "doctor", "")

	res, err := svc.Login(ctx, "doctor1", "test123456")
	require.NoError(t, err)
	require.Equal(t, u.ID, res.User.ID)
	require.Equal(t, "/doctor", res.LandingRoute)
	require.NotEmpty(t, res.Token)

	// The session is persisted and fresh.
	sess, err := s.Sessions().GetSession(ctx, res.Session.ID)
	require.NoError(t, err)
	require.Equal(t, u.ID, sess.UserID)
	require.False(t, sess.Expired(time.Now().UTC()))

	// The token round-trips and carries the session id.
	claims, err := svc.Codec.Verify(res.Token)
	require.NoError(t, err)
	require.Equal(t, res.Session.ID, claims.SID)
	require.Equal(t, u.ID, claims.Subject)
	require.Equal(t, "doctor", claims.Role)
}

func TestLoginFailureIsUniform(t *testing.T) {
	s := newTestStore(t)
	svc := newAuthService(t, s)
	ctx := context.Background()

	seedUser(t, s, "doctor1", "test123456", "doctor", "")

	// Unknown user and wrong password yield the identical error value.
	_, errUnknown := svc.Login(ctx, "nobody", "test123456")
	_, errWrong := svc.Login(ctx, "doctor1", "wrong-password")

	require.ErrorIs(t, errUnknown, ErrInvalidCredentials)
	require.ErrorIs(t, errWrong, ErrInvalidCredentials)
	require.Equal(t, errUnknown.Error(), errWrong.Error())
}

func TestLoginMalformedStoredCredential(t *testing.T) {
	s := newTestStore(t)
	svc := newAuthService(t, s)
	ctx := context.Background()

	u := seedUser(t, s, "corrupted", "test123456", "doctor", "")
	require.NoError(t, s.Users().UpdateCredentialHash(ctx, u.ID, "not-a-credential"))

	// Fails closed as a plain mismatch; the caller learns nothing more.
	_, err := svc.Login(ctx, "corrupted", "test123456")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogout(t *testing.T) {
	s := newTestStore(t)
	svc := newAuthService(t, s)
	ctx := context.Background()

	seedUser(t, s, "doctor1", "test123456", "doctor", "")
	res, err := svc.Login(ctx, "doctor1", "test123456")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, res.Session.ID))
	_, err = s.Sessions().GetSession(ctx, res.Session.ID)
	require.ErrorIs(t, err, store.ErrNotFound)

	// Logging out twice is fine.
	require.NoError(t, svc.Logout(ctx, res.Session.ID))
}

func TestChangePassword(t *testing.T) {
	s := newTestStore(t)
	svc := newAuthService(t, s)
	ctx := context.Background()

	u := seedUser(t, s, "doctor1", "old-password", "doctor", "")
	res, err := svc.Login(ctx, "doctor1", "old-password")
	require.NoError(t, err)

	t.Run("wrong current password", func(t *testing.T) {
		err := svc.ChangePassword(ctx, u.ID, "not-the-password", "new-password-1")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("weak new password", func(t *testing.T) {
		err := svc.ChangePassword(ctx, u.ID, "old-password", "short")
		require.ErrorIs(t, err, ErrWeakPassword)
	})

	t.Run("success rotates credential and revokes sessions", func(t *testing.T) {
		require.NoError(t, svc.ChangePassword(ctx, u.ID, "old-password", "new-password-1"))

		// Old password no longer works, new one does.
		_, err := svc.Login(ctx, "doctor1", "old-password")
		require.ErrorIs(t, err, ErrInvalidCredentials)
		_, err = svc.Login(ctx, "doctor1", "new-password-1")
		require.NoError(t, err)

		// The pre-change session is gone.
		_, err = s.Sessions().GetSession(ctx, res.Session.ID)
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}
