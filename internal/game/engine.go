package game

import (
	"fmt"
	"math/rand/v2"
)

// State is the lifecycle position of an Engine.
type State int

const (
	StateNotStarted State = iota
	StateRunning
	StateSolved
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateSolved:
		return "solved"
	default:
		return "not_started"
	}
}

// ScoreResult is the feedback for one submitted guess.
type ScoreResult struct {
	Exact     int  `json:"exact"`
	Misplaced int  `json:"misplaced"`
	Solved    bool `json:"solved"`
	Attempts  int  `json:"attempts"`
	Tier      Tier `json:"tier,omitempty"`
}

// Engine owns the state of a single game: the secret, the attempt counter
// and whether play is still open. It is not safe for concurrent use; callers
// that share an Engine must serialize access.
type Engine struct {
	secret   Code
	started  bool
	running  bool
	attempts int

	shuffle func(n int, swap func(i, j int))
	debug   bool
}

type Option func(*Engine)

// WithRand makes secret generation draw from r instead of the global source.
func WithRand(r *rand.Rand) Option {
	return func(e *Engine) {
		if r != nil {
			e.shuffle = r.Shuffle
		}
	}
}

// WithDebug enables PeekSecret.
func WithDebug(on bool) Option {
	return func(e *Engine) { e.debug = on }
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{shuffle: rand.Shuffle}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewGame draws a fresh secret and reopens play. Any game in progress is
// discarded.
func (e *Engine) NewGame() {
	colors := AllColors()
	e.shuffle(len(colors), func(i, j int) {
		colors[i], colors[j] = colors[j], colors[i]
	})

	var secret Code
	copy(secret[:], colors[:CodeLength])
	e.start(secret)
}

func (e *Engine) start(secret Code) {
	e.secret = secret
	e.started = true
	e.running = true
	e.attempts = 0
}

// SubmitGuess scores guess against the secret. A rejected guess leaves the
// engine untouched. Entries are expected to be pairwise distinct; see Score.
func (e *Engine) SubmitGuess(guess []Color) (ScoreResult, error) {
	if !e.running {
		return ScoreResult{}, ErrInactiveGame
	}
	code, err := toCode(guess)
	if err != nil {
		return ScoreResult{}, err
	}

	e.attempts++
	exact, misplaced := Score(e.secret, code)

	res := ScoreResult{
		Exact:     exact,
		Misplaced: misplaced,
		Attempts:  e.attempts,
	}
	if exact == CodeLength {
		res.Solved = true
		res.Tier = TierFor(e.attempts)
		e.running = false
	}
	return res, nil
}

func toCode(guess []Color) (Code, error) {
	var code Code
	if len(guess) != CodeLength {
		return code, fmt.Errorf("%w: got %d colors", ErrInvalidGuess, len(guess))
	}
	for i, c := range guess {
		if !c.Valid() {
			return code, fmt.Errorf("%w: position %d: %w", ErrInvalidGuess, i+1, ErrUnknownColor)
		}
		code[i] = c
	}
	return code, nil
}

func (e *Engine) IsRunning() bool {
	return e.running
}

func (e *Engine) AttemptCount() int {
	return e.attempts
}

func (e *Engine) State() State {
	switch {
	case e.running:
		return StateRunning
	case e.started:
		return StateSolved
	default:
		return StateNotStarted
	}
}

// PeekSecret discloses the secret, but only on a debug engine that has
// started a game.
func (e *Engine) PeekSecret() (Code, bool) {
	if !e.debug || !e.started {
		return Code{}, false
	}
	return e.secret, true
}

// EngineSnapshot is the serializable form of an Engine. It carries the
// secret and must stay server-side.
type EngineSnapshot struct {
	Secret   []Color `json:"secret,omitempty"`
	Running  bool    `json:"running"`
	Attempts int     `json:"attempts"`
}

func (e *Engine) Snapshot() EngineSnapshot {
	snap := EngineSnapshot{
		Running:  e.running,
		Attempts: e.attempts,
	}
	if e.started {
		snap.Secret = append([]Color(nil), e.secret[:]...)
	}
	return snap
}

// RestoreEngine rebuilds an Engine from a snapshot taken by Snapshot.
func RestoreEngine(snap EngineSnapshot, opts ...Option) (*Engine, error) {
	e := NewEngine(opts...)
	if snap.Secret == nil {
		return e, nil
	}
	code, err := toCode(snap.Secret)
	if err != nil {
		return nil, fmt.Errorf("restore engine: %w", err)
	}
	if !code.Distinct() {
		return nil, fmt.Errorf("restore engine: secret has repeated colors")
	}
	e.start(code)
	e.running = snap.Running
	e.attempts = snap.Attempts
	return e, nil
}
