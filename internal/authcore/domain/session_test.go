package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testSession(lastActivity time.Time) Session {
	return Session{
		ID:               "01TESTSESSION",
		UserID:           "01TESTUSER",
		LastActivityAt:   lastActivity,
		CreatedAt:        lastActivity,
		InactivityBudget: DefaultInactivityBudget,
	}
}

func TestSessionRemaining(t *testing.T) {
	start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	s := testSession(start)

	tests := []struct {
		name string
		now  time.Time
		want time.Duration
	}{
		{"at last activity", start, 15 * time.Minute},
		{"midway", start.Add(7 * time.Minute), 8 * time.Minute},
		{"one second left", start.Add(15*time.Minute - time.Second), time.Second},
		{"exactly at deadline", start.Add(15 * time.Minute), 0},
		{"past deadline clamps to zero", start.Add(20 * time.Minute), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, s.Remaining(tt.now))
		})
	}
}

func TestSessionExpired(t *testing.T) {
	start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	s := testSession(start)

	// Live strictly before the deadline, expired from the deadline on.
	require.False(t, s.Expired(start))
	require.False(t, s.Expired(start.Add(14*time.Minute)))
	require.False(t, s.Expired(start.Add(15*time.Minute-time.Nanosecond)))
	require.True(t, s.Expired(start.Add(15*time.Minute)))
	require.True(t, s.Expired(start.Add(time.Hour)))
}

func TestSessionExpiryBoundary(t *testing.T) {
	start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	s := testSession(start)
	deadline := s.Deadline()

	// Zero remaining and expired are the same instant.
	require.Equal(t, time.Duration(0), s.Remaining(deadline))
	require.True(t, s.Expired(deadline))

	require.Positive(t, s.Remaining(deadline.Add(-time.Nanosecond)))
	require.False(t, s.Expired(deadline.Add(-time.Nanosecond)))
}

func TestSessionNearExpiry(t *testing.T) {
	start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	s := testSession(start)

	// Fresh session is nowhere near expiry, nor is one sitting exactly at
	// the threshold (the warning fires strictly below it).
	require.False(t, s.NearExpiry(start, DefaultNearExpiryThreshold))
	require.False(t, s.NearExpiry(start.Add(12*time.Minute), DefaultNearExpiryThreshold))
	require.False(t, s.NearExpiry(start.Add(13*time.Minute), DefaultNearExpiryThreshold))

	// Inside the warn threshold.
	require.True(t, s.NearExpiry(start.Add(13*time.Minute+time.Second), DefaultNearExpiryThreshold))
	require.True(t, s.NearExpiry(start.Add(15*time.Minute-time.Second), DefaultNearExpiryThreshold))

	// Expired sessions are not "near" expiry.
	require.False(t, s.NearExpiry(start.Add(15*time.Minute), DefaultNearExpiryThreshold))
	require.False(t, s.NearExpiry(start.Add(16*time.Minute), DefaultNearExpiryThreshold))
}

func TestSessionTouched(t *testing.T) {
	start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	s := testSession(start)

	// Idle almost to the deadline, then one request restarts the window.
	almost := start.Add(14 * time.Minute)
	s = s.Touched(almost)

	require.Equal(t, almost, s.LastActivityAt)
	require.Equal(t, 15*time.Minute, s.Remaining(almost))
	require.False(t, s.Expired(almost.Add(14*time.Minute)))

	// Touch does not rewrite history.
	require.Equal(t, start, s.CreatedAt)
}

func TestSessionTouchedLastWriteWins(t *testing.T) {
	start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	s := testSession(start)

	// Two near-simultaneous touches; the later write is the one that
	// sticks, and either outcome keeps the session live.
	a := s.Touched(start.Add(time.Minute))
	b := a.Touched(start.Add(time.Minute + 50*time.Millisecond))

	require.True(t, b.LastActivityAt.After(a.LastActivityAt))
	require.False(t, b.Expired(start.Add(16*time.Minute)))
}
