package console

import (
	"strings"

	"example.com/mastermind/internal/game"
)

// Terminal color codes
const (
	Reset   = "\033[0m"
	Bold    = "\033[1m"
	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
	// 256-color orange, the basic 8 have none
	Orange = "\033[38;5;208m"
)

var pegCodes = map[game.Color]string{
	game.Red:     Red,
	game.Green:   Green,
	game.Blue:    Blue,
	game.Orange:  Orange,
	game.Magenta: Magenta,
	game.Cyan:    Cyan,
}

// Painter decorates output with ANSI codes, or passes it through when
// colors are off (pipes, dumb terminals).
type Painter struct {
	Color bool
}

func (p Painter) wrap(code, s string) string {
	if !p.Color {
		return s
	}
	return code + s + Reset
}

// Peg renders one color by name, tinted with itself.
func (p Painter) Peg(c game.Color) string {
	return p.wrap(pegCodes[c], c.String())
}

func (p Painter) Pegs(cs []game.Color) string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = p.Peg(c)
	}
	return strings.Join(parts, "  ")
}

func (p Painter) Error(s string) string   { return p.wrap(Red, s) }
func (p Painter) Info(s string) string    { return p.wrap(Cyan, s) }
func (p Painter) Success(s string) string { return p.wrap(Bold+Green, s) }

// Prompt returns a colored prompt string
func (p Painter) Prompt(text string) string {
	if !p.Color {
		return text + " > "
	}
	return Yellow + text + " > " + Reset
}
