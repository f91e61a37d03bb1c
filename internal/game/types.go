package game

import "encoding/json"

// Envelope WS envelope: {"type":"...","payload":{...}}
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// SubmitGuessPayload входящие
type SubmitGuessPayload struct {
	Guess []string `json:"guess" validate:"required,len=4,unique,dive,color"`
}

// Attempt is one line of the game log: what was guessed and how it scored.
type Attempt struct {
	Guess     []Color `json:"guess"`
	Exact     int     `json:"exact"`
	Misplaced int     `json:"misplaced"`
}

type PaletteEntry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type StatePayload struct {
	GameID     string       `json:"gameId"`
	Status     string       `json:"status"` // not_started|running|solved
	Running    bool         `json:"running"`
	Attempts   int          `json:"attempts"`
	History    []Attempt    `json:"history"`
	LastResult *ScoreResult `json:"lastResult,omitempty"`
	Secret     []Color      `json:"secret,omitempty"` // только в debug
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
