package game

import "errors"

var (
	// ErrInactiveGame is returned when a guess arrives while no game is running.
	ErrInactiveGame = errors.New("no game running, start a new game")
	// ErrInvalidGuess is returned for guesses that are not 4 palette colors.
	ErrInvalidGuess = errors.New("guess must be exactly 4 palette colors")
	ErrUnknownColor = errors.New("unknown color")

	ErrSessionNotFound = errors.New("game not found")
	ErrForbidden       = errors.New("game belongs to another player")

	// errSessionEvicted marks an instance dropped from the cache by Sweep.
	// The game itself lives on in persistence; callers load it again.
	errSessionEvicted = errors.New("session evicted, reload it")
)

// errorCode maps domain errors onto the wire codes used by HTTP and WS.
func errorCode(err error) string {
	switch {
	case errors.Is(err, ErrInactiveGame):
		return "inactive_game"
	case errors.Is(err, ErrUnknownColor):
		return "unknown_color"
	case errors.Is(err, ErrInvalidGuess):
		return "invalid_guess"
	case errors.Is(err, ErrSessionNotFound), errors.Is(err, errSessionEvicted):
		return "not_found"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	default:
		return "internal"
	}
}
