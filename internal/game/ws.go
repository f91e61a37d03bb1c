package game

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

// входящие сообщения: envelope с четырьмя цветами
const maxWSMessage = 1 << 12

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true }, // MVP
}

type ClientConn struct {
	ws   *websocket.Conn
	send chan []byte

	closeOnce sync.Once
}

func (c *ClientConn) Close() {
	c.closeOnce.Do(func() {
		close(c.send)
		if c.ws != nil {
			_ = c.ws.Close()
		}
	})
}

// handleWS — WebSocket вход в игру: /ws/{gameID}
// Token (if the game has an owner): Authorization header or ?token=.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "gameID")
	if !validGameID(gameID) {
		http.Error(w, "invalid game id", http.StatusBadRequest)
		return
	}

	if r.Header.Get("Authorization") == "" {
		if tok := r.URL.Query().Get("token"); tok != "" {
			r.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	ws.SetReadLimit(maxWSMessage)

	cc := &ClientConn{
		ws:   ws,
		send: make(chan []byte, 64),
	}
	err = s.withLive(r.Context(), sess, func(live *Session) error {
		prev, err := live.Attach(cc)
		if err != nil {
			return err
		}
		if prev != nil {
			prev.Close()
		}
		sess = live
		return nil
	})
	if err != nil {
		_ = ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, err.Error()),
			time.Now().Add(time.Second))
		cc.Close()
		return
	}
	log := s.log.With().Str("game_id", sess.ID()).Logger()
	log.Debug().Msg("ws attached")

	// writer loop
	go func() {
		ticker := time.NewTicker(25 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case msg, ok := <-cc.send:
				if !ok {
					return
				}
				_ = ws.WriteMessage(websocket.TextMessage, msg)
			case <-ticker.C:
				_ = ws.WriteMessage(websocket.PingMessage, []byte{})
			}
		}
	}()

	// initial state
	sess.SendState()

	// reader loop
	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			break
		}

		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			sess.SendError("bad_json", "invalid json")
			continue
		}

		switch env.Type {
		case "new_game":
			if err := sess.NewGame(); err != nil {
				sess.SendError(errorCode(err), err.Error())
			}

		case "submit_guess":
			var p SubmitGuessPayload
			if err := json.Unmarshal(env.Payload, &p); err != nil {
				sess.SendError("bad_input", "invalid payload")
				continue
			}
			guess, err := s.parseGuess(p.Guess)
			if err != nil {
				sess.SendError("invalid_guess", err.Error())
				continue
			}
			if _, err := sess.SubmitGuess(guess); err != nil {
				sess.SendError(errorCode(err), err.Error())
			}

		case "state":
			sess.SendState()

		default:
			sess.SendError("unknown_type", "unknown message type")
		}
	}

	// disconnect
	sess.Detach(cc)
	cc.Close()
	log.Debug().Msg("ws detached")
}
