package portfolio

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Sessions maps opaque session ids to portfolios and expires idle ones.
// Unlike the result cache, sessions are strictly isolated per id.
type Sessions struct {
	mu    sync.Mutex
	ttl   time.Duration
	nowFn func() time.Time

	entries map[string]*sessionEntry
}

type sessionEntry struct {
	portfolio *Portfolio
	lastSeen  time.Time
}

// NewSessions builds a session registry with the given idle TTL.
func NewSessions(ttl time.Duration) *Sessions {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &Sessions{
		ttl:     ttl,
		nowFn:   time.Now,
		entries: make(map[string]*sessionEntry),
	}
}

// GetOrCreate resolves a session id to its portfolio, minting a fresh
// session when the id is empty, unknown or expired. The returned id is
// what the handler should hand back to the client.
func (s *Sessions) GetOrCreate(id string) (string, *Portfolio) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.nowFn()
	s.sweepLocked(now)

	if id != "" {
		if entry, ok := s.entries[id]; ok {
			entry.lastSeen = now
			return id, entry.portfolio
		}
	}

	id = uuid.NewString()
	entry := &sessionEntry{portfolio: New(), lastSeen: now}
	s.entries[id] = entry
	return id, entry.portfolio
}

// Get resolves an existing session without creating one.
func (s *Sessions) Get(id string) (*Portfolio, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.nowFn()
	s.sweepLocked(now)

	entry, ok := s.entries[id]
	if !ok {
		return nil, false
	}
	entry.lastSeen = now
	return entry.portfolio, true
}

// Len reports the live session count.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked(s.nowFn())
	return len(s.entries)
}

func (s *Sessions) sweepLocked(now time.Time) {
	for id, entry := range s.entries {
		if now.Sub(entry.lastSeen) > s.ttl {
			delete(s.entries, id)
		}
	}
}
