package domain

import "time"

// DefaultInactivityBudget is how long a session may sit idle before it
// expires. Any authenticated request restarts the window.
const DefaultInactivityBudget = 15 * time.Minute

// DefaultNearExpiryThreshold is the remaining-time mark under which UI
// clients should surface a "session about to expire" warning.
const DefaultNearExpiryThreshold = 2 * time.Minute

type Session struct {
	ID             string
	UserID         string
	LastActivityAt time.Time
	CreatedAt      time.Time

	// InactivityBudget is copied from config at creation so in-flight
	// sessions keep their window across a config change.
	InactivityBudget time.Duration
}

// Deadline is the instant the session expires absent further activity.
func (s Session) Deadline() time.Time {
	return s.LastActivityAt.Add(s.InactivityBudget)
}

// Remaining reports how much of the inactivity budget is left at now,
// clamped at zero.
func (s Session) Remaining(now time.Time) time.Duration {
	left := s.Deadline().Sub(now)
	if left < 0 {
		return 0
	}
	return left
}

// Expired reports whether the inactivity budget has been exhausted. The
// session is live strictly before its deadline; zero remaining means
// expired.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.Deadline())
}

// NearExpiry reports whether the session is live but within threshold of
// expiring. Expired sessions are not near expiry; they are gone.
func (s Session) NearExpiry(now time.Time, threshold time.Duration) bool {
	if s.Expired(now) {
		return false
	}
	return s.Remaining(now) < threshold
}

// Touched returns a copy with the activity window restarted at now.
func (s Session) Touched(now time.Time) Session {
	s.LastActivityAt = now
	return s
}
