package auth

import (
	"sync"
	"time"
)

// DefaultIdleWindow is the inactivity threshold after which a session is
// treated as expired regardless of the token's own remaining lifetime.
const DefaultIdleWindow = 30 * time.Minute

// ActivityTracker maps subject ids to the timestamp of their most recent
// successful guard pass. It is process-local: entries are lost on restart,
// which only forces a re-authentication since the token TTL still bounds the
// worst case.
type ActivityTracker struct {
	mu       sync.RWMutex
	lastSeen map[string]time.Time
}

// NewActivityTracker creates an empty tracker.
func NewActivityTracker() *ActivityTracker {
	return &ActivityTracker{
		lastSeen: make(map[string]time.Time),
	}
}

// Touch records the current time for the subject, overwriting any previous
// value.
func (t *ActivityTracker) Touch(subjectID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lastSeen[subjectID] = time.Now()
}

// LastSeen returns the recorded timestamp for the subject, if any.
func (t *ActivityTracker) LastSeen(subjectID string) (time.Time, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	ts, ok := t.lastSeen[subjectID]
	return ts, ok
}

// Clear removes the subject's entry. Used on logout and idle expiry.
func (t *ActivityTracker) Clear(subjectID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.lastSeen, subjectID)
}

// IsExpired reports whether the subject's session has been idle longer than
// the window. A subject with no entry is not expired: the first guard pass
// after a restart must succeed.
func (t *ActivityTracker) IsExpired(subjectID string, window time.Duration, now time.Time) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	ts, ok := t.lastSeen[subjectID]
	if !ok {
		return false
	}
	return now.Sub(ts) > window
}

// Len returns the number of tracked subjects.
func (t *ActivityTracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.lastSeen)
}
