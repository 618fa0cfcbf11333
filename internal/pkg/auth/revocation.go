package auth

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/clubhub/internal/pkg/helpers"
)

// RevocationList remembers logged-out token ids until their expiry. It is created
// at startup, pruned in the background while Run is active, and cleared by Close.
type RevocationList struct {
	mu      sync.RWMutex
	entries map[string]time.Time
	clock   helpers.Clock
	log     zerolog.Logger
}

// NewRevocationList creates an empty list.
func NewRevocationList(clock helpers.Clock, log zerolog.Logger) *RevocationList {
	if clock == nil {
		clock = helpers.SystemClock{}
	}
	return &RevocationList{
		entries: make(map[string]time.Time),
		clock:   clock,
		log:     log,
	}
}

// Revoke records id as revoked until expiresAt.
func (l *RevocationList) Revoke(id string, expiresAt time.Time) {
	l.mu.Lock()
	l.entries[id] = expiresAt
	l.mu.Unlock()
}

// IsRevoked reports whether id was revoked and has not expired yet.
func (l *RevocationList) IsRevoked(id string) bool {
	l.mu.RLock()
	exp, ok := l.entries[id]
	l.mu.RUnlock()
	return ok && l.clock.Now().Before(exp)
}

// Prune drops entries whose tokens have expired and returns how many were removed.
func (l *RevocationList) Prune() int {
	now := l.clock.Now()
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for id, exp := range l.entries {
		if !now.Before(exp) {
			delete(l.entries, id)
			n++
		}
	}
	return n
}

// Len returns the number of tracked entries.
func (l *RevocationList) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Run prunes every interval until ctx is done.
func (l *RevocationList) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := l.Prune(); n > 0 {
				l.log.Debug().Int("pruned", n).Msg("Pruned expired token revocations")
			}
		}
	}
}

// Close clears the list.
func (l *RevocationList) Close() {
	l.mu.Lock()
	l.entries = make(map[string]time.Time)
	l.mu.Unlock()
}
