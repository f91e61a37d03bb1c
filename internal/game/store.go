package game

import (
	"context"
	"sync"
	"time"
)

// SessionPersistence — абстракция "положить/достать snapshot".
// Redis in production, InMemorySessionStore when no Redis is configured.
type SessionPersistence interface {
	Save(ctx context.Context, gameID string, snap SessionSnapshot) error
	Load(ctx context.Context, gameID string) (SessionSnapshot, bool, error)
	Delete(ctx context.Context, gameID string) error
}

type memEntry struct {
	snap    SessionSnapshot
	expires time.Time
}

// InMemorySessionStore keeps snapshots in a map with the same TTL semantics
// as the Redis store. Lost on restart.
type InMemorySessionStore struct {
	mu  sync.Mutex
	m   map[string]memEntry
	ttl time.Duration
	now func() time.Time
}

func NewInMemorySessionStore(ttl time.Duration) *InMemorySessionStore {
	return &InMemorySessionStore{
		m:   make(map[string]memEntry),
		ttl: ttl,
		now: time.Now,
	}
}

func (s *InMemorySessionStore) Save(_ context.Context, gameID string, snap SessionSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var exp time.Time
	if s.ttl > 0 {
		exp = s.now().Add(s.ttl)
	}
	s.m[gameID] = memEntry{snap: snap, expires: exp}
	return nil
}

func (s *InMemorySessionStore) Load(_ context.Context, gameID string) (SessionSnapshot, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.m[gameID]
	if !ok {
		return SessionSnapshot{}, false, nil
	}
	if s.expiredLocked(e) {
		delete(s.m, gameID)
		return SessionSnapshot{}, false, nil
	}
	// sliding TTL, как GETEX в redis
	if s.ttl > 0 {
		e.expires = s.now().Add(s.ttl)
		s.m[gameID] = e
	}
	return e.snap, true, nil
}

func (s *InMemorySessionStore) Delete(_ context.Context, gameID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, gameID)
	return nil
}

// PurgeExpired drops every expired snapshot and reports how many went.
func (s *InMemorySessionStore) PurgeExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, e := range s.m {
		if s.expiredLocked(e) {
			delete(s.m, id)
			n++
		}
	}
	return n
}

func (s *InMemorySessionStore) expiredLocked(e memEntry) bool {
	return !e.expires.IsZero() && !s.now().Before(e.expires)
}
