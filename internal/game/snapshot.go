package game

import "fmt"

// SessionSnapshot — сериализуемое состояние сессии, которое можно положить в Redis.
// It holds the secret, so it never leaves the server.
type SessionSnapshot struct {
	GameID string `json:"gameId"`
	Owner  string `json:"owner,omitempty"`

	Engine EngineSnapshot `json:"engine"`

	History    []Attempt    `json:"history"`
	LastResult *ScoreResult `json:"lastResult,omitempty"`
}

func (s *Session) snapshotLocked() SessionSnapshot {
	snap := SessionSnapshot{
		GameID:  s.id,
		Owner:   s.owner,
		Engine:  s.engine.Snapshot(),
		History: append([]Attempt(nil), s.history...),
	}
	if s.last != nil {
		last := *s.last
		snap.LastResult = &last
	}
	return snap
}

func (s *Session) restoreLocked(snap SessionSnapshot, opts ...Option) error {
	e, err := RestoreEngine(snap.Engine, opts...)
	if err != nil {
		return fmt.Errorf("session %s: %w", snap.GameID, err)
	}

	s.owner = snap.Owner
	s.engine = e
	s.history = append([]Attempt(nil), snap.History...)
	s.last = nil
	if snap.LastResult != nil {
		last := *snap.LastResult
		s.last = &last
	}
	return nil
}
