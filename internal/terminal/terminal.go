// Package terminal wraps the controlling terminal: raw mode, size queries,
// cursor position reports and the handful of escape sequences the shell emits.
package terminal

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"

	"golang.org/x/term"
)

const (
	fallbackWidth  = 80
	fallbackHeight = 24
	maxReply       = 32
)

// TTY is a buffered terminal handle. Reads and writes share one reader so a
// cursor position reply is never split from the key stream.
type TTY struct {
	in  *os.File
	out *os.File
	r   *bufio.Reader
	w   *bufio.Writer
}

func New(in, out *os.File) *TTY {
	return &TTY{
		in:  in,
		out: out,
		r:   bufio.NewReader(in),
		w:   bufio.NewWriterSize(out, 4096),
	}
}

// Open binds to the process's standard streams and fails when stdin is not
// a terminal.
func Open() (*TTY, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return nil, errors.New("stdin is not a terminal")
	}
	return New(os.Stdin, os.Stdout), nil
}

func (t *TTY) Reader() *bufio.Reader { return t.r }

func (t *TTY) Write(p []byte) (int, error) { return t.w.Write(p) }

func (t *TTY) WriteString(s string) (int, error) { return t.w.WriteString(s) }

func (t *TTY) Flush() error { return t.w.Flush() }

// Size returns columns and rows, falling back to 80x24 when the output is
// not a terminal or reports zero.
func (t *TTY) Size() (int, int) {
	w, h, err := term.GetSize(int(t.out.Fd()))
	if err != nil || w <= 0 || h <= 0 {
		return fallbackWidth, fallbackHeight
	}
	return w, h
}

// EnterRaw switches the input side into raw mode.
func (t *TTY) EnterRaw() (*RawGuard, error) {
	return EnterRaw(int(t.in.Fd()))
}

// CursorPos asks the terminal where the cursor is. Columns and rows are
// 1-based. The terminal must already be in raw mode. Input that arrives ahead
// of the reply, escape sequences included, is returned in ahead so the caller
// can feed it back to its decoder.
func (t *TTY) CursorPos() (col, row int, ahead []byte, err error) {
	if _, err := t.w.WriteString(QueryCursor); err != nil {
		return 0, 0, nil, err
	}
	if err := t.w.Flush(); err != nil {
		return 0, 0, nil, err
	}
	for {
		b, err := t.r.ReadByte()
		if err != nil {
			return 0, 0, ahead, fmt.Errorf("cursor report: %w", err)
		}
		if b != 0x1b {
			ahead = append(ahead, b)
			continue
		}
		seq, err := t.readSequence()
		if err != nil {
			return 0, 0, append(ahead, seq...), fmt.Errorf("cursor report: %w", err)
		}
		if len(seq) > 2 && seq[1] == '[' && seq[len(seq)-1] == 'R' {
			col, row, err := parseCursorReply(seq)
			return col, row, ahead, err
		}
		ahead = append(ahead, seq...)
	}
}

// readSequence reads the rest of an escape sequence whose ESC was just read.
// A second ESC is left unread; it starts a sequence of its own.
func (t *TTY) readSequence() ([]byte, error) {
	seq := []byte{0x1b}
	b, err := t.r.ReadByte()
	if err != nil {
		return seq, err
	}
	switch b {
	case 0x1b:
		_ = t.r.UnreadByte()
		return seq, nil
	case '[':
		seq = append(seq, b)
		for len(seq) < maxReply {
			c, err := t.r.ReadByte()
			if err != nil {
				return seq, err
			}
			seq = append(seq, c)
			if c >= 0x40 && c <= 0x7e {
				break
			}
		}
		return seq, nil
	case 'O':
		seq = append(seq, b)
		c, err := t.r.ReadByte()
		if err != nil {
			return seq, err
		}
		return append(seq, c), nil
	}
	return append(seq, b), nil
}

// parseCursorReply decodes "ESC [ row ; col R".
func parseCursorReply(b []byte) (int, int, error) {
	if len(b) < 6 || b[0] != 0x1b || b[1] != '[' || b[len(b)-1] != 'R' {
		return 0, 0, fmt.Errorf("cursor report: malformed reply %q", b)
	}
	body := b[2 : len(b)-1]
	sep := -1
	for i, c := range body {
		if c == ';' {
			sep = i
			break
		}
	}
	if sep < 0 {
		return 0, 0, fmt.Errorf("cursor report: malformed reply %q", b)
	}
	row, err := strconv.Atoi(string(body[:sep]))
	if err != nil {
		return 0, 0, fmt.Errorf("cursor report: row: %w", err)
	}
	col, err := strconv.Atoi(string(body[sep+1:]))
	if err != nil {
		return 0, 0, fmt.Errorf("cursor report: col: %w", err)
	}
	return col, row, nil
}

// RawGuard restores the terminal state captured when raw mode was entered.
type RawGuard struct {
	fd    int
	state *term.State
	once  sync.Once
	err   error
}

func EnterRaw(fd int) (*RawGuard, error) {
	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("enter raw mode: %w", err)
	}
	return &RawGuard{fd: fd, state: state}, nil
}

// Restore is safe to call more than once; only the first call touches the
// terminal.
func (g *RawGuard) Restore() error {
	if g == nil {
		return nil
	}
	g.once.Do(func() {
		g.err = term.Restore(g.fd, g.state)
	})
	return g.err
}
