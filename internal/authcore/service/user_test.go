package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/harborhealth/claims/internal/authcore/store"
)

func TestCreateUser(t *testing.T) {
	s := newTestStore(t)
	svc := &UserService{Store: s}
	ctx := context.Background()

	t.Run("valid insurer staff account", func(t *testing.T) {
		u, err := svc.CreateUser(ctx, CreateUserParams{
			Username:     "claims1",
			Password:     "test123456",
			Role:         "insurer",
			SubRole:      "claims_manager",
			Organization: "acme-health",
		})
		require.NoError(t, err)
		require.NotEmpty(t, u.ID)
		require.Equal(t, "claims_manager", u.SubRole)

		stored, err := s.Users().GetUserByUsername(ctx, "claims1")
		require.NoError(t, err)
		require.Equal(t, "acme-health", stored.Organization)
		// The stored credential is a hash, never the plaintext.
		require.NotContains(t, stored.CredentialHash, "test123456")
	})

	t.Run("duplicate username", func(t *testing.T) {
		_, err := svc.CreateUser(ctx, CreateUserParams{
			Username: "claims1", Password: "test123456", Role: "insurer",
		})
		require.ErrorIs(t, err, ErrUsernameTaken)
	})

	t.Run("unknown role", func(t *testing.T) {
		_, err := svc.CreateUser(ctx, CreateUserParams{
			Username: "x1", Password: "test123456", Role: "superuser",
		})
		require.ErrorIs(t, err, ErrInvalidRole)
	})

	t.Run("sub-role on a role that takes none", func(t *testing.T) {
		_, err := svc.CreateUser(ctx, CreateUserParams{
			Username: "x2", Password: "test123456", Role: "doctor", SubRole: "claims_manager",
		})
		require.ErrorIs(t, err, ErrInvalidRole)
	})

	t.Run("weak password", func(t *testing.T) {
		_, err := svc.CreateUser(ctx, CreateUserParams{
			Username: "x3", Password: "short", Role: "doctor",
		})
		require.ErrorIs(t, err, ErrWeakPassword)
	})

	t.Run("blank username", func(t *testing.T) {
		_, err := svc.CreateUser(ctx, CreateUserParams{
			Username: "   ", Password: "test123456", Role: "doctor",
		})
		require.ErrorIs(t, err, ErrInvalidUsername)
	})
}

func TestDeleteUserRemovesSessions(t *testing.T) {
	s := newTestStore(t)
	svc := &UserService{Store: s}
	authSvc := newAuthService(t, s)
	ctx := context.Background()

	seedUser(t, s, "doctor1", "test123456", "doctor", "")
	res, err := authSvc.Login(ctx, "doctor1", "test123456")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteUser(ctx, res.User.ID))

	_, err = s.Users().GetUserByID(ctx, res.User.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.Sessions().GetSession(ctx, res.Session.ID)
	require.ErrorIs(t, err, store.ErrNotFound)

	require.ErrorIs(t, svc.DeleteUser(ctx, res.User.ID), ErrUserNotFound)
}

func TestBootstrap(t *testing.T) {
	s := newTestStore(t)
	svc := &BootstrapService{Store: s, Token: "secret-setup-token"}
	ctx := context.Background()

	t.Run("wrong token", func(t *testing.T) {
		_, err := svc.Bootstrap(ctx, "nope", "admin", "admin-password")
		require.ErrorIs(t, err, ErrBootstrapToken)
	})

	t.Run("creates the initial admin", func(t *testing.T) {
		adminID, err := svc.Bootstrap(ctx, "secret-setup-token", "admin", "admin-password")
		require.NoError(t, err)

		admin, err := s.Users().GetUserByID(ctx, adminID)
		require.NoError(t, err)
		require.Equal(t, "admin", admin.Role)

		done, err := svc.IsBootstrapped(ctx)
		require.NoError(t, err)
		require.True(t, done)
	})

	t.Run("refuses to run twice", func(t *testing.T) {
		_, err := svc.Bootstrap(ctx, "secret-setup-token", "admin2", "admin-password")
		require.ErrorIs(t, err, ErrBootstrapDone)
	})
}

func TestBootstrapWithoutConfiguredToken(t *testing.T) {
	s := newTestStore(t)
	svc := &BootstrapService{Store: s, Token: ""}

	// An unset token disables bootstrap entirely rather than opening it up.
	_, err := svc.Bootstrap(context.Background(), "", "admin", "admin-password")
	require.ErrorIs(t, err, ErrBootstrapToken)
}
