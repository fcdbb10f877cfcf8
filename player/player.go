package player

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"xoxo/game"
)

// LineReader yields one line of human input per call. *readline.Instance implements it.
type LineReader interface {
	Readline() (string, error)
}

// Console is a human player typing moves on the terminal. Input that does not parse as a
// move is fatal.
type Console[B game.Board[B, C], C game.Coordinate] struct {
	mark  game.Mark
	parse func(string) (C, error)
	hint  string
	lines LineReader
	out   io.Writer
}

// NewConsole returns a console player for mark. parse turns a typed line into a move, and
// hint explains the expected input.
func NewConsole[B game.Board[B, C], C game.Coordinate](mark game.Mark, parse func(string) (C, error), hint string, lines LineReader, out io.Writer) *Console[B, C] {
	if parse == nil || lines == nil || out == nil {
		panic("Must specify a move parser, input and output")
	}
	return &Console[B, C]{
		mark:  mark,
		parse: parse,
		hint:  hint,
		lines: lines,
		out:   out,
	}
}

type targeted interface {
	TargetBoard() (int, bool)
}

func (p *Console[B, C]) Play(b B) C {
	fmt.Fprintf(p.out, "Time for %v to make a move\n%v", p.mark, b)
	if t, ok := any(b).(targeted); ok {
		if sub, forced := t.TargetBoard(); forced {
			fmt.Fprintf(p.out, "You must play in board %d %d\n", sub/3+1, sub%3+1)
		} else {
			fmt.Fprintln(p.out, "You can play in any board")
		}
	}
	fmt.Fprintln(p.out, p.hint)

	line, err := p.lines.Readline()
	if err != nil {
		panic(fmt.Sprintf("Could not read a move: %v", err))
	}
	move, err := p.parse(strings.TrimSpace(line))
	if err != nil {
		panic(fmt.Sprintf("Invalid move %q: %v", line, err))
	}
	fmt.Fprintf(p.out, "Got %v\n", move)
	return move
}

// Blitz ignores the clock; the driver still charges the thinking time.
func (p *Console[B, C]) Blitz(b B, remaining time.Duration) C {
	fmt.Fprintf(p.out, "%v left on your clock\n", remaining.Round(time.Millisecond))
	return p.Play(b)
}

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

// NewTerminal opens a readline terminal for console players.
func NewTerminal() (*readline.Instance, error) {
	l, err := readline.NewEx(&readline.Config{
		Prompt:              "> ",
		EOFPrompt:           "exit",
		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open terminal: %w", err)
	}
	return l, nil
}
