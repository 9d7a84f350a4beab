package connect

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

// Tracker remembers delivered notifications so that redeliveries within a
// window are recognised.
type Tracker struct {
	mu     sync.Mutex
	seen   map[string]time.Time
	window time.Duration
	now    func() time.Time
}

// NewTracker creates a tracker that remembers notifications for window
func NewTracker(window time.Duration) *Tracker {
	return &Tracker{
		seen:   make(map[string]time.Time),
		window: window,
		now:    time.Now,
	}
}

// IsDuplicate reports whether key was marked within the window
func (t *Tracker) IsDuplicate(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	at, ok := t.seen[key]
	if !ok {
		return false
	}
	return t.now().Sub(at) < t.window
}

// MarkReceived records key. Expired entries are pruned on the way.
func (t *Tracker) MarkReceived(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	for k, at := range t.seen {
		if now.Sub(at) >= t.window {
			delete(t.seen, k)
		}
	}
	t.seen[key] = now
}

// Len returns the number of remembered notifications
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.seen)
}

// BodyKey identifies a notification by the hash of its body. Redeliveries
// carry the same body.
func BodyKey(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}
