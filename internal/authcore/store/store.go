package store

import (
	"context"
	"errors"
	"time"

	"github.com/harborhealth/claims/internal/authcore/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite,
// redis-backed sessions) implement this. It exposes sub-repositories to
// keep concerns tidy and testable.
type Store interface {
	Users() Users
	Sessions() Sessions

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed. This is the
	// recommended way to handle transactions.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the backing connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByUsername is used during login.
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by app via ULID).
	CreateUser(ctx context.Context, u domain.User) error

	// UpdateCredentialHash sets the stored credential and bumps updated_at.
	UpdateCredentialHash(ctx context.Context, userID string, newHash string) error

	// DeleteUser removes the account; its sessions cascade per schema.
	DeleteUser(ctx context.Context, userID string) error

	// IsEmpty returns true if there are no users (bootstrap gate).
	IsEmpty(ctx context.Context) (bool, error)
}

// Sessions is the session-store contract: opaque persistence keyed by
// session id, holding the owner and last-activity timestamp.
type Sessions interface {
	// CreateSession stores a freshly minted session.
	CreateSession(ctx context.Context, s domain.Session) error

	// GetSession returns a session by id.
	GetSession(ctx context.Context, id string) (domain.Session, error)

	// TouchSession overwrites last_activity_at. A plain last-write-wins
	// timestamp write; later values are always more true, so no
	// read-modify-write is needed under concurrent requests.
	TouchSession(ctx context.Context, id string, lastActivityAt time.Time) error

	// DeleteSession destroys a session (logout or expiry).
	DeleteSession(ctx context.Context, id string) error

	// DeleteAllUserSessions bulk destruction for a user (password change,
	// account deletion).
	DeleteAllUserSessions(ctx context.Context, userID string) error

	// DeleteExpiredSessions removes sessions whose own inactivity budget
	// has lapsed at now. Each session is judged against the budget it was
	// created with, not the currently configured one. Housekeeping;
	// returns the number removed.
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}
