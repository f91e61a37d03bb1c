// Command mastermind plays Mastermind in the terminal.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"example.com/mastermind/internal/console"
	"example.com/mastermind/internal/game"
	"github.com/chzyer/readline"
	"golang.org/x/term"
)

func main() {
	debug := flag.Bool("debug", false, "show the secret when a game starts")
	noColor := flag.Bool("no-color", false, "disable ANSI colors")
	flag.Parse()

	paint := console.Painter{
		Color: !*noColor && os.Getenv("NO_COLOR") == "" && term.IsTerminal(int(os.Stdout.Fd())),
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          paint.Prompt("mastermind"),
		HistoryFile:     historyFile(),
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, paint.Error(err.Error()))
		os.Exit(1)
	}
	defer rl.Close()

	c := console.New(game.NewEngine(game.WithDebug(*debug)), rl.Stdout(), paint, *debug)
	c.Welcome()
	c.Execute("new")

	for {
		rl.SetPrompt(c.Prompt())

		line, err := rl.Readline()
		if err == io.EOF {
			break
		}
		if err != nil {
			// ^C
			continue
		}
		if !c.Execute(line) {
			break
		}
	}
}

func historyFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".mastermind_history")
}
