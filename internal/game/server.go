package game

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"example.com/mastermind/internal/auth"
	"example.com/mastermind/internal/validation"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// guess bodies are a handful of color names
const maxGuessBody = 1 << 12

type Config struct {
	Debug          bool          // GAME_DEBUG: secret visible via /secret and state
	PersistTimeout time.Duration // 0 => 2s
	RequestTimeout time.Duration // REST only, 0 => none
}

func (c Config) engineOptions() []Option {
	return []Option{WithDebug(c.Debug)}
}

func (c Config) persistTimeout() time.Duration {
	if c.PersistTimeout <= 0 {
		return 2 * time.Second
	}
	return c.PersistTimeout
}

// TokenVerifier is the slice of auth.Service the game routes need.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

type Server struct {
	cfg      Config
	sessions *SessionService
	verifier TokenVerifier // nil => only guest games
	validate *validator.Validate
	log      zerolog.Logger
}

func NewServer(cfg Config, sessions *SessionService, verifier TokenVerifier, log zerolog.Logger) *Server {
	v := validation.New()
	_ = v.RegisterValidation("color", func(fl validator.FieldLevel) bool {
		_, err := ParseColor(fl.Field().String())
		return err == nil
	})

	return &Server{
		cfg:      cfg,
		sessions: sessions,
		verifier: verifier,
		validate: v,
		log:      log,
	}
}

type createGameResponse struct {
	GameID string       `json:"gameId"`
	State  StatePayload `json:"state"`
}

func (s *Server) RegisterRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		// ws живёт дольше таймаута запроса, поэтому таймаут только на REST
		if s.cfg.RequestTimeout > 0 {
			r.Use(middleware.Timeout(s.cfg.RequestTimeout))
		}

		r.Get("/api/palette", s.handlePalette)
		r.Route("/api/games", func(r chi.Router) {
			r.Post("/", s.handleCreateGame)
			r.Route("/{gameID}", func(r chi.Router) {
				r.Get("/", s.handleGetGame)
				r.Delete("/", s.handleDeleteGame)
				r.Post("/new", s.handleNewGame)
				r.Post("/guesses", s.handleGuess)
				if s.cfg.Debug {
					r.Get("/secret", s.handleSecret)
				}
			})
		})
	})

	r.Get("/ws/{gameID}", s.handleWS)
}

func (s *Server) handlePalette(w http.ResponseWriter, r *http.Request) {
	colors := AllColors()
	out := make([]PaletteEntry, 0, len(colors))
	for _, c := range colors {
		out = append(out, PaletteEntry{ID: c.ID(), Name: c.String()})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requester(w, r)
	if !ok {
		return
	}

	sess, err := s.sessions.Create(r.Context(), userID)
	if err != nil {
		s.log.Error().Err(err).Msg("create game")
		writeError(w, http.StatusInternalServerError, "internal", "failed to create game")
		return
	}

	writeJSON(w, http.StatusCreated, createGameResponse{
		GameID: sess.ID(),
		State:  sess.State(s.cfg.Debug),
	})
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.State(s.cfg.Debug))
}

func (s *Server) handleDeleteGame(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	if err := s.sessions.Delete(r.Context(), sess.ID()); err != nil {
		s.writeGameError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	err := s.withLive(r.Context(), sess, func(live *Session) error {
		if err := live.NewGame(); err != nil {
			return err
		}
		sess = live
		return nil
	})
	if err != nil {
		s.writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.State(s.cfg.Debug))
}

func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	var req SubmitGuessPayload
	body := http.MaxBytesReader(w, r.Body, maxGuessBody)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "bad_request", "body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "bad_request", "invalid json")
		return
	}

	guess, err := s.parseGuess(req.Guess)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_guess", err.Error())
		return
	}

	var res ScoreResult
	err = s.withLive(r.Context(), sess, func(live *Session) error {
		var err error
		res, err = live.SubmitGuess(guess)
		return err
	})
	if err != nil {
		s.writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleSecret(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	secret, ok := sess.PeekSecret()
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", "no secret to show")
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"secret": secret.Names()})
}

// withLive runs fn on sess, or on a freshly loaded copy if the sweeper
// evicted sess in the meantime.
func (s *Server) withLive(ctx context.Context, sess *Session, fn func(*Session) error) error {
	err := fn(sess)
	if !errors.Is(err, errSessionEvicted) {
		return err
	}
	fresh, err := s.sessions.GetOrLoad(ctx, sess.ID())
	if err != nil {
		return err
	}
	return fn(fresh)
}

// parseGuess validates a wire guess: 4 distinct palette colors.
func (s *Server) parseGuess(names []string) ([]Color, error) {
	if err := s.validate.Struct(SubmitGuessPayload{Guess: names}); err != nil {
		return nil, errors.New(validation.Details(err))
	}
	guess, err := ParseColors(names)
	if err != nil {
		return nil, err
	}
	// "r" и "red" проходят unique, но это один цвет
	var code Code
	copy(code[:], guess)
	if !code.Distinct() {
		return nil, errors.New("guess colors must be distinct")
	}
	return guess, nil
}

// session resolves {gameID} and checks the caller may play it.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	gameID := chi.URLParam(r, "gameID")
	if !validGameID(gameID) {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid game id")
		return nil, false
	}

	userID, ok := s.requester(w, r)
	if !ok {
		return nil, false
	}

	sess, err := s.sessions.GetOrLoad(r.Context(), gameID)
	if err != nil {
		s.writeGameError(w, err)
		return nil, false
	}
	if sess.Owner() != "" && sess.Owner() != userID {
		s.writeGameError(w, ErrForbidden)
		return nil, false
	}
	return sess, true
}

// requester returns the user id behind an optional bearer token ("" for
// guests). A token that is present but invalid is rejected.
func (s *Server) requester(w http.ResponseWriter, r *http.Request) (string, bool) {
	token := bearerToken(r)
	if token == "" || s.verifier == nil {
		return "", true
	}
	claims, err := s.verifier.Verify(token)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "invalid token")
		return "", false
	}
	return claims.UserID, true
}

func (s *Server) writeGameError(w http.ResponseWriter, err error) {
	code := errorCode(err)
	status := http.StatusInternalServerError
	switch code {
	case "inactive_game":
		status = http.StatusConflict
	case "invalid_guess", "unknown_color":
		status = http.StatusBadRequest
	case "not_found":
		status = http.StatusNotFound
	case "forbidden":
		status = http.StatusForbidden
	}
	if status == http.StatusInternalServerError {
		s.log.Error().Err(err).Msg("game request failed")
		writeError(w, status, code, "internal error")
		return
	}
	writeError(w, status, code, err.Error())
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}

// validGameID: 1..64 символа [a-z0-9]
func validGameID(id string) bool {
	if id == "" || len(id) > 64 {
		return false
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		if (c < 'a' || c > 'z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}

// randID returns n (up to 26) base32 characters, lowercased to fit
// validGameID.
func randID(n int) string {
	return strings.ToLower(rand.Text()[:n])
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, errCode, msg string) {
	writeJSON(w, code, ErrorPayload{Code: errCode, Message: msg})
}
