package game

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ResultRecorder receives solved games that belong to a registered player.
type ResultRecorder interface {
	RecordResult(ctx context.Context, r Result) error
}

// SessionService отвечает за:
// - in-memory кэш сессий
// - восстановление сессий из persistent storage (Redis)
// - запись результатов решённых игр
type SessionService struct {
	mu sync.Mutex
	in map[string]*Session

	cfg     Config
	persist SessionPersistence
	results ResultRecorder
	log     zerolog.Logger
}

func NewSessionService(cfg Config, persist SessionPersistence, results ResultRecorder, log zerolog.Logger) *SessionService {
	return &SessionService{
		in:      make(map[string]*Session),
		cfg:     cfg,
		persist: persist,
		results: results,
		log:     log,
	}
}

// Create opens a new session for owner ("" for a guest) and deals its first
// game.
func (s *SessionService) Create(ctx context.Context, owner string) (*Session, error) {
	id := randID(10)
	sess := NewSession(id, owner, s.cfg.engineOptions()...)
	s.hook(sess)

	// первичное сохранение идёт через hook
	if err := sess.NewGame(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.in[id] = sess
	s.mu.Unlock()

	s.log.Info().Str("game_id", id).Str("user_id", owner).Msg("session created")
	return sess, nil
}

// GetOrLoad returns a cached session or rebuilds it from persistence.
// ErrSessionNotFound if neither has it.
func (s *SessionService) GetOrLoad(ctx context.Context, gameID string) (*Session, error) {
	s.mu.Lock()
	sess, ok := s.in[gameID]
	s.mu.Unlock()
	if ok {
		return sess, nil
	}

	snap, found, err := s.persist.Load(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrSessionNotFound
	}

	sess = NewSession(gameID, snap.Owner)
	sess.mu.Lock()
	err = sess.restoreLocked(snap, s.cfg.engineOptions()...)
	sess.mu.Unlock()
	if err != nil {
		return nil, err
	}
	s.hook(sess)

	s.mu.Lock()
	// кто-то мог успеть загрузить параллельно
	if existing, ok := s.in[gameID]; ok {
		s.mu.Unlock()
		return existing, nil
	}
	s.in[gameID] = sess
	s.mu.Unlock()

	s.log.Debug().Str("game_id", gameID).Msg("session restored")
	return sess, nil
}

// Delete closes a session: any live connection is dropped and the
// snapshot removed. Holders of the old *Session get ErrSessionNotFound from
// then on, so nothing writes the snapshot back.
func (s *SessionService) Delete(ctx context.Context, gameID string) error {
	s.mu.Lock()
	sess, ok := s.in[gameID]
	delete(s.in, gameID)
	s.mu.Unlock()

	// закрываем до удаления снапшота: последний Save успевает раньше Delete
	if ok {
		if cc := sess.close(ErrSessionNotFound); cc != nil {
			cc.Close()
		}
	}
	if err := s.persist.Delete(ctx, gameID); err != nil {
		return fmt.Errorf("delete session %s: %w", gameID, err)
	}
	s.log.Info().Str("game_id", gameID).Msg("session deleted")
	return nil
}

// Sweep drops sessions idle for longer than idle from the cache. Their
// snapshots stay in persistence until its own TTL runs out. An evicted
// instance is closed, so a request still holding it has to reload rather
// than drift from the copy GetOrLoad rebuilds.
func (s *SessionService) Sweep(now time.Time, idle time.Duration) int {
	s.mu.Lock()
	n := 0
	for id, sess := range s.in {
		if sess.closeIfIdle(now, idle) {
			delete(s.in, id)
			n++
		}
	}
	s.mu.Unlock()

	if p, ok := s.persist.(interface{ PurgeExpired() int }); ok {
		p.PurgeExpired()
	}
	return n
}

// RunSweeper calls Sweep every interval until ctx is done.
func (s *SessionService) RunSweeper(ctx context.Context, interval, idle time.Duration) error {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-t.C:
			if n := s.Sweep(now, idle); n > 0 {
				s.log.Debug().Int("evicted", n).Msg("idle sessions swept")
			}
		}
	}
}

func (s *SessionService) hook(sess *Session) {
	gameID := sess.id
	// hook: любое изменение сессии сохраняет snapshot
	sess.onPersist = func(snap SessionSnapshot) {
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.persistTimeout())
		defer cancel()
		if err := s.persist.Save(ctx, gameID, snap); err != nil {
			s.log.Error().Err(err).Str("game_id", gameID).Msg("save session snapshot")
		}
	}
	sess.onSolved = func(r Result) {
		s.log.Info().
			Str("game_id", r.GameID).
			Str("user_id", r.UserID).
			Int("attempts", r.Attempts).
			Str("tier", r.Tier.String()).
			Msg("game solved")
		if s.results == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.persistTimeout())
		defer cancel()
		if err := s.results.RecordResult(ctx, r); err != nil {
			s.log.Error().Err(err).Str("game_id", r.GameID).Msg("record result")
		}
	}
}
