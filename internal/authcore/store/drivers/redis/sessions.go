// Package redis provides a TTL-backed Sessions driver. Redis evicts idle
// sessions on its own once their inactivity budget lapses, so the
// housekeeping sweep is a formality for this driver.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/harborhealth/claims/internal/authcore/domain"
	"github.com/harborhealth/claims/internal/authcore/store"
)

const (
	sessionKeyPrefix = "authcore:session:"
	userSessionsKey  = "authcore:user_sessions:"
)

type Sessions struct {
	client *redis.Client
}

func NewSessions(client *redis.Client) *Sessions {
	return &Sessions{client: client}
}

// Ping verifies the redis connection is still alive.
func (s *Sessions) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// sessionRecord is the JSON shape stored per session key. The budget is
// kept in nanoseconds so the key TTL mirrors the domain value exactly;
// rounding to seconds would turn a sub-second budget into a key that
// never expires (Set with TTL 0 persists).
type sessionRecord struct {
	ID               string        `json:"id"`
	UserID           string        `json:"user_id"`
	LastActivityAt   time.Time     `json:"last_activity_at"`
	CreatedAt        time.Time     `json:"created_at"`
	InactivityBudget time.Duration `json:"inactivity_budget_ns"`
}

func toRecord(sess domain.Session) sessionRecord {
	return sessionRecord{
		ID:               sess.ID,
		UserID:           sess.UserID,
		LastActivityAt:   sess.LastActivityAt,
		CreatedAt:        sess.CreatedAt,
		InactivityBudget: sess.InactivityBudget,
	}
}

func (r sessionRecord) toDomain() domain.Session {
	return domain.Session{
		ID:               r.ID,
		UserID:           r.UserID,
		LastActivityAt:   r.LastActivityAt,
		CreatedAt:        r.CreatedAt,
		InactivityBudget: r.InactivityBudget,
	}
}

// write stores the record under its session key with a TTL equal to the
// remaining inactivity budget, and tracks the id in the owner's set.
func (s *Sessions) write(ctx context.Context, rec sessionRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	if err := s.client.Set(ctx, sessionKeyPrefix+rec.ID, data, rec.InactivityBudget).Err(); err != nil {
		return fmt.Errorf("set session: %w", err)
	}
	if err := s.client.SAdd(ctx, userSessionsKey+rec.UserID, rec.ID).Err(); err != nil {
		return fmt.Errorf("track session for user: %w", err)
	}
	return nil
}

func (s *Sessions) CreateSession(ctx context.Context, sess domain.Session) error {
	exists, err := s.client.Exists(ctx, sessionKeyPrefix+sess.ID).Result()
	if err != nil {
		return fmt.Errorf("check session: %w", err)
	}
	if exists > 0 {
		return store.ErrAlreadyExists
	}
	return s.write(ctx, toRecord(sess))
}

func (s *Sessions) GetSession(ctx context.Context, id string) (domain.Session, error) {
	data, err := s.client.Get(ctx, sessionKeyPrefix+id).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Session{}, store.ErrNotFound
		}
		return domain.Session{}, fmt.Errorf("get session: %w", err)
	}

	var rec sessionRecord
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return domain.Session{}, fmt.Errorf("unmarshal session: %w", err)
	}
	return rec.toDomain(), nil
}

// TouchSession rewrites the record with the new activity timestamp, which
// also refreshes the key's TTL to a full inactivity budget.
func (s *Sessions) TouchSession(ctx context.Context, id string, lastActivityAt time.Time) error {
	sess, err := s.GetSession(ctx, id)
	if err != nil {
		return err
	}

	rec := toRecord(sess)
	rec.LastActivityAt = lastActivityAt
	return s.write(ctx, rec)
}

func (s *Sessions) DeleteSession(ctx context.Context, id string) error {
	// Fetch first so the owner's tracking set can be trimmed.
	sess, err := s.GetSession(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if err := s.client.Del(ctx, sessionKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if err := s.client.SRem(ctx, userSessionsKey+sess.UserID, id).Err(); err != nil {
		return fmt.Errorf("untrack session: %w", err)
	}
	return nil
}

func (s *Sessions) DeleteAllUserSessions(ctx context.Context, userID string) error {
	ids, err := s.client.SMembers(ctx, userSessionsKey+userID).Result()
	if err != nil {
		return fmt.Errorf("list user sessions: %w", err)
	}

	for _, id := range ids {
		if err := s.client.Del(ctx, sessionKeyPrefix+id).Err(); err != nil {
			return fmt.Errorf("delete session %s: %w", id, err)
		}
	}
	return s.client.Del(ctx, userSessionsKey+userID).Err()
}

// DeleteExpiredSessions sweeps tracking-set entries whose session key has
// already been evicted by TTL. Redis enforces each session's own budget
// through the key's TTL, so there is nothing to compare against now; this
// keeps the per-user sets from growing without bound.
func (s *Sessions) DeleteExpiredSessions(ctx context.Context, _ time.Time) (int64, error) {
	var removed int64

	iter := s.client.Scan(ctx, 0, userSessionsKey+"*", 0).Iterator()
	for iter.Next(ctx) {
		setKey := iter.Val()
		ids, err := s.client.SMembers(ctx, setKey).Result()
		if err != nil {
			return removed, fmt.Errorf("list tracked sessions: %w", err)
		}

		for _, id := range ids {
			exists, err := s.client.Exists(ctx, sessionKeyPrefix+id).Result()
			if err != nil {
				return removed, fmt.Errorf("check session: %w", err)
			}
			if exists == 0 {
				if err := s.client.SRem(ctx, setKey, id).Err(); err != nil {
					return removed, fmt.Errorf("untrack session: %w", err)
				}
				removed++
			}
		}
	}
	if err := iter.Err(); err != nil {
		return removed, fmt.Errorf("scan user sessions: %w", err)
	}
	return removed, nil
}
