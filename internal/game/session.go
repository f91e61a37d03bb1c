package game

import (
	"encoding/json"
	"sync"
	"time"
)

// Session is one player's table: an Engine plus the attempt log and the
// optional live connection that mirrors it. All Engine access goes through
// the session mutex.
type Session struct {
	id    string
	owner string // user id, "" для гостя
	mu    sync.Mutex

	engine  *Engine
	history []Attempt
	last    *ScoreResult
	touched time.Time

	conn *ClientConn
	// не nil после Delete или вытеснения из кэша; такой экземпляр больше не играет
	closed error

	onPersist func(SessionSnapshot)
	onSolved  func(Result)
}

// Result is what gets recorded when an owned game is solved.
type Result struct {
	GameID   string
	UserID   string
	Attempts int
	Tier     Tier
}

func NewSession(id, owner string, opts ...Option) *Session {
	return &Session{
		id:      id,
		owner:   owner,
		engine:  NewEngine(opts...),
		touched: time.Now(),
	}
}

func (s *Session) ID() string    { return s.id }
func (s *Session) Owner() string { return s.owner }

// NewGame draws a new secret and clears the log. Works from any state of an
// open session.
func (s *Session) NewGame() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed != nil {
		return s.closed
	}
	s.engine.NewGame()
	s.history = nil
	s.last = nil
	s.touched = time.Now()

	s.sendLocked(Envelope{Type: "game_started", Payload: mustJSON(map[string]string{"gameId": s.id})})
	s.sendStateLocked()
	s.persistLocked()
	return nil
}

func (s *Session) SubmitGuess(guess []Color) (ScoreResult, error) {
	s.mu.Lock()

	if s.closed != nil {
		err := s.closed
		s.mu.Unlock()
		return ScoreResult{}, err
	}
	res, err := s.engine.SubmitGuess(guess)
	if err != nil {
		s.mu.Unlock()
		return ScoreResult{}, err
	}

	s.history = append(s.history, Attempt{
		Guess:     append([]Color(nil), guess...),
		Exact:     res.Exact,
		Misplaced: res.Misplaced,
	})
	s.last = &res
	s.touched = time.Now()

	s.sendLocked(Envelope{Type: "guess_result", Payload: mustJSON(res)})
	s.sendStateLocked()
	s.persistLocked()

	onSolved := s.onSolved
	s.mu.Unlock()

	// запись результата может ходить в БД, поэтому уже без блокировки
	if res.Solved && s.owner != "" && onSolved != nil {
		onSolved(Result{GameID: s.id, UserID: s.owner, Attempts: res.Attempts, Tier: res.Tier})
	}
	return res, nil
}

// State builds the client view. The secret is included only when asked for
// and the engine runs in debug mode.
func (s *Session) State(includeSecret bool) StatePayload {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buildStateLocked(includeSecret)
}

func (s *Session) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.IsRunning()
}

func (s *Session) PeekSecret() (Code, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.PeekSecret()
}

// Attach makes cc the live connection, replacing any previous one (reconnect).
func (s *Session) Attach(cc *ClientConn) (*ClientConn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed != nil {
		return nil, s.closed
	}
	prev := s.conn
	s.conn = cc
	s.touched = time.Now()
	return prev, nil
}

// Detach forgets cc unless a newer connection already replaced it.
func (s *Session) Detach(cc *ClientConn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == cc {
		s.conn = nil
	}
}

func (s *Session) SendError(code, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sendLocked(Envelope{
		Type:    "error",
		Payload: mustJSON(ErrorPayload{Code: code, Message: message}),
	})
}

func (s *Session) SendState() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sendStateLocked()
}

// close retires the session with reason and hands back the live connection
// for the caller to shut.
func (s *Session) close(reason error) *ClientConn {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed == nil {
		s.closed = reason
	}
	cc := s.conn
	s.conn = nil
	return cc
}

// closeIfIdle retires the session when nothing is attached and it has not
// been touched for longer than idle.
func (s *Session) closeIfIdle(now time.Time, idle time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed != nil || s.conn != nil || now.Sub(s.touched) <= idle {
		return false
	}
	s.closed = errSessionEvicted
	return true
}

func (s *Session) sendStateLocked() {
	if s.conn == nil {
		return
	}
	// секрет попадёт сюда только у debug-движка
	state := s.buildStateLocked(true)
	s.sendLocked(Envelope{Type: "state", Payload: mustJSON(state)})
}

func (s *Session) buildStateLocked(includeSecret bool) StatePayload {
	st := StatePayload{
		GameID:   s.id,
		Status:   s.engine.State().String(),
		Running:  s.engine.IsRunning(),
		Attempts: s.engine.AttemptCount(),
		History:  append([]Attempt{}, s.history...),
	}
	if s.last != nil {
		last := *s.last
		st.LastResult = &last
	}
	if includeSecret {
		if secret, ok := s.engine.PeekSecret(); ok {
			st.Secret = secret[:]
		}
	}
	return st
}

func (s *Session) sendLocked(env Envelope) {
	if s.conn == nil {
		return
	}
	b, _ := json.Marshal(env)
	select {
	case s.conn.send <- b:
	default:
		// клиент не успевает читать: дропаем, следующий state всё равно полный
	}
}

func (s *Session) persistLocked() {
	if s.onPersist == nil || s.closed != nil {
		return
	}
	s.onPersist(s.snapshotLocked())
}

func mustJSON(v any) json.RawMessage {
	b, _ := json.Marshal(v)
	return b
}
