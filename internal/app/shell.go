package app

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"

	"github.com/kobzarvs/qsql/internal/config"
	"github.com/kobzarvs/qsql/internal/editor"
	"github.com/kobzarvs/qsql/internal/history"
	"github.com/kobzarvs/qsql/internal/input"
	"github.com/kobzarvs/qsql/internal/logger"
	"github.com/kobzarvs/qsql/internal/terminal"
)

// Terminal is the raw-mode terminal the shell draws on and reads from.
type Terminal interface {
	io.Writer
	Flush() error
	Reader() *bufio.Reader
	Size() (width, height int)
	// CursorPos also returns any input read ahead of the position report.
	CursorPos() (col, row int, ahead []byte, err error)
}

// Executor runs one query and returns the lines to show.
type Executor interface {
	Run(ctx context.Context, query string) ([]string, error)
}

// Pager shows rows on the alternate screen until dismissed.
type Pager interface {
	Page(rows []string) error
}

type OutputKind int

const (
	OutputInline OutputKind = iota
	OutputPaged
	OutputError
)

// Output is one query result, tagged with how it is shown.
type Output struct {
	Kind OutputKind
	Rows []string
	Err  error
}

// ShellOptions controls presentation.
type ShellOptions struct {
	Prompt      string
	PromptStyle string
	ErrorStyle  string
	PagerMode   string
	ClearScreen bool
	Highlighter editor.Highlighter
}

// Shell runs input sessions until the user quits.
type Shell struct {
	term  Terminal
	src   *input.Source
	hist  *history.Store
	exec  Executor
	pager Pager
	opts  ShellOptions
}

func NewShell(term Terminal, norm *input.Normalizer, hist *history.Store, exec Executor, pager Pager, opts ShellOptions) *Shell {
	if opts.Prompt == "" {
		opts.Prompt = "$> "
	}
	if opts.PagerMode == "" {
		opts.PagerMode = config.PagerAuto
	}
	if hist == nil {
		hist = history.New()
	}
	return &Shell{
		term:  term,
		src:   input.NewSource(input.NewDecoder(term.Reader()), norm),
		hist:  hist,
		exec:  exec,
		pager: pager,
		opts:  opts,
	}
}

// Run loops over input sessions. It returns nil once the user quits or
// input ends.
func (s *Shell) Run(ctx context.Context) error {
	if s.opts.ClearScreen {
		s.write(terminal.Goto(1, 1) + terminal.ClearAll)
	}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		quit, err := s.session(ctx)
		if err != nil {
			return err
		}
		if quit {
			return nil
		}
	}
}

func (s *Shell) session(ctx context.Context) (bool, error) {
	s.hist.ResetIndex()
	width, height := s.term.Size()
	col, row, ahead, err := s.term.CursorPos()
	s.src.Unread(ahead)
	if err != nil {
		logger.Warn("cursor position unavailable", "err", err)
		col, row = 1, height
	}
	if col != 1 {
		s.write(terminal.CRLF)
		row = min(row+1, height)
	}

	ed := editor.New(s.term, editor.Options{
		Prompt:      s.opts.Prompt,
		PromptStyle: s.opts.PromptStyle,
		Width:       width,
		Height:      height,
		Row:         row,
		Highlighter: s.opts.Highlighter,
	})
	ed.Render()

	var draft []rune
	for {
		ev, err := s.src.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.quit(ed)
				return true, nil
			}
			return false, err
		}

		res := ed.HandleKey(ev)
		switch res.Action {
		case editor.ActionHistoryPrev:
			if s.hist.Index() == -1 {
				draft = ed.Content()
			}
			if entry, ok := s.hist.Prev(); ok {
				ed.Replace([]rune(entry))
			}
		case editor.ActionHistoryNext:
			browsing := s.hist.Index() >= 0
			if entry, ok := s.hist.Next(); ok {
				ed.Replace([]rune(entry))
			} else if browsing {
				ed.Replace(draft)
			}
		case editor.ActionCancel:
			s.quit(ed)
			return true, nil
		case editor.ActionSubmit:
			s.write(terminal.CRLF)
			s.submit(ctx, res.Text, height)
			return false, nil
		}
	}
}

func (s *Shell) submit(ctx context.Context, query string, height int) {
	if strings.TrimSpace(query) == "" {
		s.flush()
		return
	}
	if err := s.hist.PushAndPersist(query); err != nil {
		logger.Warn("history not saved", "err", err)
	}
	s.hist.ResetIndex()

	rows, err := s.exec.Run(ctx, query)
	s.dispatch(classify(rows, err, height, s.opts.PagerMode))
}

// classify picks how a result is shown. In auto mode a result that does not
// fit above the prompt is paged.
func classify(rows []string, err error, height int, mode string) Output {
	if err != nil {
		return Output{Kind: OutputError, Err: err}
	}
	switch mode {
	case config.PagerNever:
		return Output{Kind: OutputInline, Rows: rows}
	case config.PagerAlways:
		return Output{Kind: OutputPaged, Rows: rows}
	}
	if len(rows) > height-1 {
		return Output{Kind: OutputPaged, Rows: rows}
	}
	return Output{Kind: OutputInline, Rows: rows}
}

func (s *Shell) dispatch(out Output) {
	switch out.Kind {
	case OutputError:
		msg := "ERROR: " + out.Err.Error()
		if s.opts.ErrorStyle != "" {
			msg = s.opts.ErrorStyle + msg + terminal.ResetStyle
		}
		s.write(msg + terminal.CRLF)
	case OutputPaged:
		if s.pager != nil {
			s.flush()
			err := s.pager.Page(out.Rows)
			if err == nil {
				return
			}
			logger.Warn("pager failed, printing inline", "err", err)
		}
		s.writeRows(out.Rows)
	default:
		s.writeRows(out.Rows)
	}
	s.flush()
}

func (s *Shell) writeRows(rows []string) {
	var b strings.Builder
	for _, r := range rows {
		b.WriteString(r)
		b.WriteString(terminal.CRLF)
	}
	s.write(b.String())
}

// quit leaves the cursor after the whole buffer, which may wrap below the
// cursor row, and prints Quit on a line of its own.
func (s *Shell) quit(ed *editor.Editor) {
	ed.Geometry().End()
	ed.Render()
	if col, _ := ed.Cursor(); col != 1 {
		s.write(terminal.CRLF)
	}
	s.write("Quit" + terminal.CRLF)
	s.flush()
}

func (s *Shell) write(str string) {
	if _, err := io.WriteString(s.term, str); err != nil {
		logger.Warn("terminal write failed", "err", err)
	}
}

func (s *Shell) flush() {
	if err := s.term.Flush(); err != nil {
		logger.Warn("terminal flush failed", "err", err)
	}
}
