// Package console is the terminal front end: it reads commands, drives a
// game.Engine and prints the running log of attempts.
package console

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"example.com/mastermind/internal/game"
)

var tierMessages = map[game.Tier]string{
	game.TierBrilliant:  "SOLVED: BRILLIANT LEVEL",
	game.TierGood:       "SOLVED: GOOD LEVEL",
	game.TierImprovable: "SOLVED: IMPROVABLE LEVEL",
	game.TierLow:        "SOLVED: LOW LEVEL",
}

const rules = `Rules:
-> The game has 6 colors: red green blue orange magenta cyan
-> A new game hides 4 distinct colors you must place in order
-> Each attempt picks 4 colors without repeating any
-> Feedback: exact = right color in the right place,
   misplaced = right color in the wrong place

Commands:
  new                  start a new game
  guess r g b o        submit a guess (names or one-letter codes, "guess" optional)
  history              show all attempts of this game
  secret               show the secret (debug mode only)
  rules, help          this text
  quit, exit           leave
`

// Console is not safe for concurrent use.
type Console struct {
	engine  *game.Engine
	out     io.Writer
	paint   Painter
	debug   bool
	history []game.Attempt
}

func New(engine *game.Engine, out io.Writer, paint Painter, debug bool) *Console {
	return &Console{engine: engine, out: out, paint: paint, debug: debug}
}

// Prompt reflects the game position: attempt count while running.
func (c *Console) Prompt() string {
	switch c.engine.State() {
	case game.StateRunning:
		return c.paint.Prompt(fmt.Sprintf("mastermind [attempt %d]", c.engine.AttemptCount()+1))
	default:
		return c.paint.Prompt("mastermind")
	}
}

func (c *Console) Welcome() {
	c.println(c.paint.Info("<<< Mastermind >>>"))
	c.println(rules)
}

// Execute runs one input line. It reports false when the user asked to quit.
func (c *Console) Execute(line string) bool {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return true
	}

	switch cmd, args := fields[0], fields[1:]; cmd {
	case "quit", "exit", "q":
		c.println(c.paint.Info("<<< Bye >>>"))
		return false
	case "help", "rules", "?":
		c.println(rules)
	case "new", "n":
		c.newGame()
	case "history", "h":
		c.printHistory()
	case "secret":
		c.printSecret()
	case "guess":
		c.guess(args)
	default:
		// bare colors: "r g b o", "rgbo", "red green blue orange"
		c.guess(fields)
	}
	return true
}

func (c *Console) newGame() {
	c.engine.NewGame()
	c.history = c.history[:0]
	c.println(c.paint.Info("<<< New game started >>>"))
	if c.debug {
		c.printSecret()
	}
}

func (c *Console) guess(args []string) {
	colors, err := ParseGuess(args)
	if err != nil {
		c.println(c.paint.Error("-> " + err.Error()))
		return
	}

	res, err := c.engine.SubmitGuess(colors)
	switch {
	case errors.Is(err, game.ErrInactiveGame):
		c.println(c.paint.Error(`-> Start a "new" game`))
		return
	case err != nil:
		c.println(c.paint.Error("-> " + err.Error()))
		return
	}

	c.history = append(c.history, game.Attempt{Guess: colors, Exact: res.Exact, Misplaced: res.Misplaced})

	c.printf("\n-> Attempt %d:  %s\n", res.Attempts, c.paint.Pegs(colors))
	if res.Solved {
		line := strings.Repeat("*", 34)
		c.println(line)
		c.println(c.paint.Success(tierMessages[res.Tier]))
		c.println(line)
		return
	}
	c.printf("-> Exact: %d\n", res.Exact)
	c.printf("-> Misplaced: %d\n", res.Misplaced)
	c.println("-> TRY AGAIN")
}

func (c *Console) printHistory() {
	if len(c.history) == 0 {
		c.println("-> No attempts yet")
		return
	}
	for i, a := range c.history {
		c.printf("%2d. %s   exact %d, misplaced %d\n", i+1, c.paint.Pegs(a.Guess), a.Exact, a.Misplaced)
	}
}

func (c *Console) printSecret() {
	if !c.debug {
		c.println(c.paint.Error("-> secret is only shown with -debug"))
		return
	}
	secret, ok := c.engine.PeekSecret()
	if !ok {
		c.println("-> No game yet")
		return
	}
	c.printf("DEBUG Secret: %s\n", c.paint.Pegs(secret[:]))
}

// ParseGuess reads 4 distinct colors from names, one-letter codes, or a
// single run of codes like "rgbo".
func ParseGuess(args []string) ([]game.Color, error) {
	if len(args) == 1 && len(args[0]) == game.CodeLength {
		if _, err := game.ParseColor(args[0]); err != nil {
			args = strings.Split(args[0], "")
		}
	}
	if len(args) != game.CodeLength {
		return nil, fmt.Errorf("pick exactly %d colors, got %d", game.CodeLength, len(args))
	}

	colors, err := game.ParseColors(args)
	if err != nil {
		return nil, err
	}
	var code game.Code
	copy(code[:], colors)
	if !code.Distinct() {
		return nil, errors.New("colors must not repeat")
	}
	return colors, nil
}

func (c *Console) println(s string) {
	_, _ = fmt.Fprintln(c.out, s)
}

func (c *Console) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(c.out, format, args...)
}
