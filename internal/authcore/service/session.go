package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/harborhealth/claims/internal/authcore/domain"
	"github.com/harborhealth/claims/internal/authcore/store"
	"github.com/harborhealth/claims/pkg/slogx"
)

// SessionService answers "is this session still good" for the guard
// middleware and the countdown endpoint.
type SessionService struct {
	Store               store.Store
	NearExpiryThreshold time.Duration
}

// Resolve authenticates a session id for an active request: read the
// session, reject it if expired (destroying the stale record), otherwise
// record the activity and return the refreshed session.
//
// Store failures degrade to ErrUnauthenticated. A broken session store
// must never let a request through.
func (s *SessionService) Resolve(ctx context.Context, sessionID string) (domain.Session, error) {
	l := slogx.FromContext(ctx)
	now := time.Now().UTC()

	sess, err := s.Store.Sessions().GetSession(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			l.Error("session lookup failed, rejecting request", slog.Any("error", err))
		}
		return domain.Session{}, ErrUnauthenticated
	}

	if sess.Expired(now) {
		// One-way transition; the record is useless now.
		if err := s.Store.Sessions().DeleteSession(ctx, sessionID); err != nil {
			l.Error("failed to delete expired session", slog.Any("error", err))
		}
		l.Info("session expired",
			slog.String("session_id", sessionID),
			slog.Duration("idle", now.Sub(sess.LastActivityAt)),
		)
		return domain.Session{}, ErrSessionExpired
	}

	if err := s.Store.Sessions().TouchSession(ctx, sessionID, now); err != nil {
		l.Error("session touch failed, rejecting request", slog.Any("error", err))
		return domain.Session{}, ErrUnauthenticated
	}

	return sess.Touched(now), nil
}

// Status reports the countdown without refreshing the activity window, so
// a polling UI does not keep its own session alive forever.
func (s *SessionService) Status(ctx context.Context, sessionID string) (remaining time.Duration, nearExpiry bool, err error) {
	now := time.Now().UTC()

	sess, err := s.Store.Sessions().GetSession(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			slogx.FromContext(ctx).Error("session lookup failed", slog.Any("error", err))
		}
		return 0, false, ErrUnauthenticated
	}

	if sess.Expired(now) {
		return 0, false, ErrSessionExpired
	}

	return sess.Remaining(now), sess.NearExpiry(now, s.NearExpiryThreshold), nil
}
