package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/harborhealth/claims/internal/authcore/domain"
	"github.com/harborhealth/claims/internal/authcore/store"
	"github.com/harborhealth/claims/pkg/idx"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := NewStore(filepath.Join(t.TempDir(), "authcore_test.db"))
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())

	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testUser(t *testing.T) domain.User {
	t.Helper()
	return domain.User{
		ID:             idx.New().String(),
		Username:       "doctor1-" + idx.New().String(),
		CredentialHash: "deadbeef.cafef00d",
		Role:           "doctor",
	}
}

func TestUsersRoundtrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	empty, err := s.Users().IsEmpty(ctx)
	require.NoError(t, err)
	require.True(t, empty)

	u := testUser(t)
	u.SubRole = ""
	u.Organization = "harbor-clinic"
	require.NoError(t, s.Users().CreateUser(ctx, u))

	byID, err := s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, u.Username, byID.Username)
	require.Equal(t, u.CredentialHash, byID.CredentialHash)
	require.Equal(t, "doctor", byID.Role)
	require.Equal(t, "harbor-clinic", byID.Organization)
	require.False(t, byID.CreatedAt.IsZero())

	byName, err := s.Users().GetUserByUsername(ctx, u.Username)
	require.NoError(t, err)
	require.Equal(t, u.ID, byName.ID)

	empty, err = s.Users().IsEmpty(ctx)
	require.NoError(t, err)
	require.False(t, empty)
}

func TestUsersNotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Users().GetUserByID(ctx, "missing")
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.Users().GetUserByUsername(ctx, "nobody")
	require.ErrorIs(t, err, store.ErrNotFound)

	err = s.Users().UpdateCredentialHash(ctx, "missing", "aa.bb")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestUsersDuplicateUsername(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := testUser(t)
	require.NoError(t, s.Users().CreateUser(ctx, u))

	dup := testUser(t)
	dup.Username = u.Username
	err := s.Users().CreateUser(ctx, dup)
	require.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestUsersUpdateCredentialHash(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := testUser(t)
	require.NoError(t, s.Users().CreateUser(ctx, u))
	require.NoError(t, s.Users().UpdateCredentialHash(ctx, u.ID, "feedface.baadf00d"))

	got, err := s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "feedface.baadf00d", got.CredentialHash)
}

func TestSessionsRoundtrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := testUser(t)
	require.NoError(t, s.Users().CreateUser(ctx, u))

	now := time.Now().UTC().Truncate(time.Second)
	sess := domain.Session{
		ID:               idx.New().String(),
		UserID:           u.ID,
		LastActivityAt:   now,
		CreatedAt:        now,
		InactivityBudget: 15 * time.Minute,
	}
	require.NoError(t, s.Sessions().CreateSession(ctx, sess))

	got, err := s.Sessions().GetSession(ctx, sess.ID)
	require.NoError(t, err)
	require.Equal(t, u.ID, got.UserID)
	require.Equal(t, 15*time.Minute, got.InactivityBudget)
	require.True(t, got.LastActivityAt.Equal(now))

	// Touch overwrites the activity timestamp.
	later := now.Add(5 * time.Minute)
	require.NoError(t, s.Sessions().TouchSession(ctx, sess.ID, later))

	got, err = s.Sessions().GetSession(ctx, sess.ID)
	require.NoError(t, err)
	require.True(t, got.LastActivityAt.Equal(later))

	require.NoError(t, s.Sessions().DeleteSession(ctx, sess.ID))
	_, err = s.Sessions().GetSession(ctx, sess.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestSessionsTouchMissing(t *testing.T) {
	s := newTestStore(t)

	err := s.Sessions().TouchSession(context.Background(), "missing", time.Now())
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestSessionsDeleteAllForUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := testUser(t)
	require.NoError(t, s.Users().CreateUser(ctx, u))

	now := time.Now().UTC()
	var ids []string
	for range 3 {
		sess := domain.Session{
			ID:               idx.New().String(),
			UserID:           u.ID,
			LastActivityAt:   now,
			CreatedAt:        now,
			InactivityBudget: 15 * time.Minute,
		}
		require.NoError(t, s.Sessions().CreateSession(ctx, sess))
		ids = append(ids, sess.ID)
	}

	require.NoError(t, s.Sessions().DeleteAllUserSessions(ctx, u.ID))
	for _, id := range ids {
		_, err := s.Sessions().GetSession(ctx, id)
		require.ErrorIs(t, err, store.ErrNotFound)
	}
}

func TestSessionsDeleteExpired(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := testUser(t)
	require.NoError(t, s.Users().CreateUser(ctx, u))

	now := time.Now().UTC().Truncate(time.Second)
	stale := domain.Session{
		ID: idx.New().String(), UserID: u.ID,
		LastActivityAt: now.Add(-time.Hour), CreatedAt: now.Add(-time.Hour),
		InactivityBudget: 15 * time.Minute,
	}
	fresh := domain.Session{
		ID: idx.New().String(), UserID: u.ID,
		LastActivityAt: now, CreatedAt: now,
		InactivityBudget: 15 * time.Minute,
	}
	// Idle past the 15-minute default but minted with a longer budget;
	// the sweep must honor the budget the session was created with.
	grandfathered := domain.Session{
		ID: idx.New().String(), UserID: u.ID,
		LastActivityAt: now.Add(-time.Hour), CreatedAt: now.Add(-time.Hour),
		InactivityBudget: 2 * time.Hour,
	}
	require.NoError(t, s.Sessions().CreateSession(ctx, stale))
	require.NoError(t, s.Sessions().CreateSession(ctx, fresh))
	require.NoError(t, s.Sessions().CreateSession(ctx, grandfathered))

	removed, err := s.Sessions().DeleteExpiredSessions(ctx, now)
	require.NoError(t, err)
	require.EqualValues(t, 1, removed)

	_, err = s.Sessions().GetSession(ctx, stale.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.Sessions().GetSession(ctx, fresh.ID)
	require.NoError(t, err)
	_, err = s.Sessions().GetSession(ctx, grandfathered.ID)
	require.NoError(t, err)
}

func TestSessionsCascadeOnUserDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := testUser(t)
	require.NoError(t, s.Users().CreateUser(ctx, u))

	now := time.Now().UTC()
	sess := domain.Session{
		ID: idx.New().String(), UserID: u.ID,
		LastActivityAt: now, CreatedAt: now,
		InactivityBudget: 15 * time.Minute,
	}
	require.NoError(t, s.Sessions().CreateSession(ctx, sess))

	require.NoError(t, s.Users().DeleteUser(ctx, u.ID))
	_, err := s.Sessions().GetSession(ctx, sess.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestWithTxRollback(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := testUser(t)
	err := s.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().CreateUser(ctx, u); err != nil {
			return err
		}
		return context.Canceled // force rollback
	})
	require.Error(t, err)

	_, err = s.Users().GetUserByID(ctx, u.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestWithTxCommit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := testUser(t)
	require.NoError(t, s.WithTx(ctx, func(tx store.Tx) error {
		return tx.Users().CreateUser(ctx, u)
	}))

	_, err := s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
}
