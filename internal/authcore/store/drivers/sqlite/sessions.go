package sqlite

import (
	"context"
	"time"

	"github.com/harborhealth/claims/internal/authcore/domain"
)

type sessionsRepo struct {
	q querier
}

func (r *sessionsRepo) CreateSession(ctx context.Context, s domain.Session) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO sessions (id, user_id, last_activity_at, created_at, inactivity_budget_seconds)
		 VALUES (?, ?, ?, ?, ?)`,
		s.ID, s.UserID, s.LastActivityAt.UTC(), s.CreatedAt.UTC(),
		int64(s.InactivityBudget.Seconds()),
	)
	return mapConflict(err)
}

func (r *sessionsRepo) GetSession(ctx context.Context, id string) (domain.Session, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT id, user_id, last_activity_at, created_at, inactivity_budget_seconds
		 FROM sessions WHERE id = ?`, id)

	var s domain.Session
	var budgetSeconds int64
	err := row.Scan(&s.ID, &s.UserID, &s.LastActivityAt, &s.CreatedAt, &budgetSeconds)
	if err != nil {
		return domain.Session{}, mapNotFound(err)
	}
	s.InactivityBudget = time.Duration(budgetSeconds) * time.Second
	return s, nil
}

// TouchSession is a plain timestamp overwrite; last write wins.
func (r *sessionsRepo) TouchSession(ctx context.Context, id string, lastActivityAt time.Time) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE sessions SET last_activity_at = ? WHERE id = ?`,
		lastActivityAt.UTC(), id,
	)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *sessionsRepo) DeleteSession(ctx context.Context, id string) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	return err
}

func (r *sessionsRepo) DeleteAllUserSessions(ctx context.Context, userID string) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = ?`, userID)
	return err
}

// DeleteExpiredSessions judges each session against its own recorded
// budget, so sessions minted under a longer budget survive a config
// change. The timestamp column's text encoding rules out doing the
// per-row date arithmetic in SQL, so expiry is computed here and the
// delete re-checks last_activity_at to spare sessions touched mid-sweep.
func (r *sessionsRepo) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT id, last_activity_at, inactivity_budget_seconds FROM sessions`)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	type candidate struct {
		id           string
		lastActivity time.Time
	}
	var expired []candidate
	for rows.Next() {
		var c candidate
		var budgetSeconds int64
		if err := rows.Scan(&c.id, &c.lastActivity, &budgetSeconds); err != nil {
			return 0, err
		}
		deadline := c.lastActivity.Add(time.Duration(budgetSeconds) * time.Second)
		if !now.Before(deadline) {
			expired = append(expired, c)
		}
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	var removed int64
	for _, c := range expired {
		res, err := r.q.ExecContext(ctx,
			`DELETE FROM sessions WHERE id = ? AND last_activity_at = ?`,
			c.id, c.lastActivity.UTC())
		if err != nil {
			return removed, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return removed, err
		}
		removed += n
	}
	return removed, nil
}
