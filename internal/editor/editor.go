// Package editor implements the single-line, soft-wrapping input editor the
// shell reads queries with.
package editor

import (
	"io"
	"strings"
	"unicode"

	"github.com/mattn/go-runewidth"

	"github.com/kobzarvs/qsql/internal/input"
	"github.com/kobzarvs/qsql/internal/logger"
	"github.com/kobzarvs/qsql/internal/terminal"
)

// Output is where the editor draws. Everything written is flushed once per
// handled key.
type Output interface {
	io.Writer
	Flush() error
}

// Highlighter decorates a line with zero-width escape sequences.
type Highlighter interface {
	Colorize(line string) string
}

type State int

const (
	StateEditing State = iota
	StateSubmitted
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateSubmitted:
		return "submitted"
	case StateCancelled:
		return "cancelled"
	}
	return "editing"
}

type Action int

const (
	ActionNone Action = iota
	ActionSubmit
	ActionCancel
	ActionHistoryPrev
	ActionHistoryNext
)

// Result is what a key produced. Raw and Text are set only on ActionSubmit.
type Result struct {
	Action Action
	Raw    []rune
	Text   string
}

type Options struct {
	Prompt string
	// PromptStyle is an SGR prefix applied to the prompt, if any.
	PromptStyle string
	Width       int
	Height      int
	// Row is the terminal line the prompt starts on.
	Row         int
	Highlighter Highlighter
}

// Editor is one input session: it starts editing and ends submitted or
// cancelled. A fresh Editor is created for every prompt.
type Editor struct {
	out   Output
	opts  Options
	geo   *Geometry
	state State
}

func New(out Output, opts Options) *Editor {
	if opts.Row < 1 {
		opts.Row = 1
	}
	return &Editor{
		out:  out,
		opts: opts,
		geo:  NewGeometry(runewidth.StringWidth(opts.Prompt), opts.Width, opts.Height, opts.Row),
	}
}

func (e *Editor) State() State { return e.state }

// Content returns a copy of the buffer.
func (e *Editor) Content() []rune { return e.geo.Content() }

// Cursor returns the terminal cell the cursor is drawn at.
func (e *Editor) Cursor() (col, row int) {
	return e.geo.Column(), e.geo.Row() + e.geo.Wrap()
}

func (e *Editor) Geometry() *Geometry { return e.geo }

// Replace swaps the buffer, typically for a history entry, and redraws.
func (e *Editor) Replace(r []rune) {
	for n := e.geo.SetContent(r); n > 0; n-- {
		e.write(terminal.ScrollUp)
	}
	e.render()
}

// HandleKey applies one event. Events after submit or cancel are ignored.
func (e *Editor) HandleKey(ev input.Event) Result {
	if e.state != StateEditing {
		return Result{}
	}
	if ev.Kind != input.EventKey {
		return Result{}
	}
	k := ev.Key
	switch k.Chord {
	case input.ChordCtrl:
		return e.handleCtrl(k)
	case input.ChordAlt:
		return Result{}
	}

	switch k.Key {
	case input.KeyRune:
		if !unicode.IsPrint(k.Rune) {
			return Result{}
		}
		if e.geo.Insert(k.Rune) {
			e.write(terminal.ScrollUp)
		}
	case input.KeyEnter:
		e.geo.End()
		e.render()
		e.state = StateSubmitted
		raw := e.geo.Content()
		return Result{Action: ActionSubmit, Raw: raw, Text: string(raw)}
	case input.KeyBackspace:
		e.geo.Backspace()
	case input.KeyDelete:
		e.geo.Delete()
	case input.KeyLeft:
		e.geo.Left()
	case input.KeyRight:
		e.geo.Right()
	case input.KeyUp:
		e.geo.Up()
	case input.KeyDown:
		e.geo.Down()
	case input.KeyHome:
		e.geo.Home()
	case input.KeyEnd:
		e.geo.End()
	case input.KeyPageUp:
		e.geo.WordLeft()
	case input.KeyPageDown:
		e.geo.WordRight()
	default:
		return Result{}
	}
	e.render()
	return Result{}
}

func (e *Editor) handleCtrl(k input.KeyEvent) Result {
	switch k.Key {
	case input.KeyLeft:
		e.geo.WordLeft()
	case input.KeyRight:
		e.geo.WordRight()
	case input.KeyUp:
		return Result{Action: ActionHistoryPrev}
	case input.KeyDown:
		return Result{Action: ActionHistoryNext}
	case input.KeyRune:
		switch k.Rune {
		case 'c', 'd':
			e.state = StateCancelled
			return Result{Action: ActionCancel}
		case 'a':
			e.geo.Home()
		case 'e':
			e.geo.End()
		case 'l':
			e.write(terminal.ClearAll)
			e.geo.ClearScreen()
		case 'u':
			e.geo.SetContent(nil)
		case 'k':
			e.geo.KillToEnd()
		case 'w':
			e.geo.DeleteWordLeft()
		default:
			return Result{}
		}
	default:
		return Result{}
	}
	e.render()
	return Result{}
}

// Render redraws the prompt and buffer from the prompt row down. Drawing the
// same state twice produces the same screen.
func (e *Editor) Render() {
	e.render()
}

func (e *Editor) render() {
	var b strings.Builder
	b.WriteString(terminal.Goto(1, e.geo.Row()))
	b.WriteString(terminal.ClearAfterCursor)
	if e.opts.PromptStyle != "" {
		b.WriteString(e.opts.PromptStyle)
		b.WriteString(e.opts.Prompt)
		b.WriteString(terminal.ResetStyle)
	} else {
		b.WriteString(e.opts.Prompt)
	}
	line := string(e.geo.buf)
	if e.opts.Highlighter != nil && line != "" {
		line = e.opts.Highlighter.Colorize(line)
	}
	b.WriteString(line)
	col, row := e.Cursor()
	b.WriteString(terminal.Goto(col, row))
	e.write(b.String())
	if err := e.out.Flush(); err != nil {
		logger.Warn("editor flush failed", "err", err)
	}
}

func (e *Editor) write(s string) {
	if _, err := io.WriteString(e.out, s); err != nil {
		logger.Warn("editor write failed", "err", err)
	}
}
