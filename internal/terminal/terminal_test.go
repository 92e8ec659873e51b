//go:build !windows

package terminal

import (
	"bufio"
	"io"
	"reflect"
	"strings"
	"testing"

	"github.com/creack/pty"
	"golang.org/x/term"
)

func TestGoto(t *testing.T) {
	if got := Goto(5, 12); got != "\x1b[12;5H" {
		t.Fatalf("Goto(5, 12) = %q, want %q", got, "\x1b[12;5H")
	}
}

func TestParseCursorReply(t *testing.T) {
	col, row, err := parseCursorReply([]byte("\x1b[12;40R"))
	if err != nil {
		t.Fatalf("parseCursorReply error: %v", err)
	}
	if col != 40 || row != 12 {
		t.Fatalf("parseCursorReply = (%d, %d), want (40, 12)", col, row)
	}
	for _, bad := range []string{"\x1b[12R", "[1;2R", "\x1b[a;2R", "\x1b[1;2"} {
		if _, _, err := parseCursorReply([]byte(bad)); err == nil {
			t.Fatalf("parseCursorReply(%q) error = nil, want error", bad)
		}
	}
}

func TestRawGuardRestoresState(t *testing.T) {
	ptmx, tty, err := pty.Open()
	if err != nil {
		t.Skipf("pty unavailable: %v", err)
	}
	defer ptmx.Close()
	defer tty.Close()

	fd := int(tty.Fd())
	before, err := term.GetState(fd)
	if err != nil {
		t.Fatalf("GetState: %v", err)
	}
	guard, err := EnterRaw(fd)
	if err != nil {
		t.Fatalf("EnterRaw: %v", err)
	}
	raw, _ := term.GetState(fd)
	if reflect.DeepEqual(before, raw) {
		t.Fatalf("terminal state unchanged after EnterRaw")
	}
	if err := guard.Restore(); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if err := guard.Restore(); err != nil {
		t.Fatalf("second Restore: %v", err)
	}
	after, _ := term.GetState(fd)
	if !reflect.DeepEqual(before, after) {
		t.Fatalf("terminal state not restored")
	}
}

func TestCursorPosAndSize(t *testing.T) {
	ptmx, tty, err := pty.Open()
	if err != nil {
		t.Skipf("pty unavailable: %v", err)
	}
	defer ptmx.Close()
	defer tty.Close()

	if err := pty.Setsize(tty, &pty.Winsize{Rows: 30, Cols: 100}); err != nil {
		t.Fatalf("Setsize: %v", err)
	}
	tt := New(tty, tty)
	guard, err := tt.EnterRaw()
	if err != nil {
		t.Fatalf("EnterRaw: %v", err)
	}
	defer guard.Restore()

	if w, h := tt.Size(); w != 100 || h != 30 {
		t.Fatalf("Size = (%d, %d), want (100, 30)", w, h)
	}

	if _, err := ptmx.Write([]byte("select 2;\r\x1b[A\x1b[7;3R")); err != nil {
		t.Fatalf("write reply: %v", err)
	}
	col, row, ahead, err := tt.CursorPos()
	if err != nil {
		t.Fatalf("CursorPos error: %v", err)
	}
	if col != 3 || row != 7 {
		t.Fatalf("CursorPos = (%d, %d), want (3, 7)", col, row)
	}
	if string(ahead) != "select 2;\r\x1b[A" {
		t.Fatalf("ahead = %q, want %q", ahead, "select 2;\r\x1b[A")
	}

	if _, err := ptmx.Write([]byte("X")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if b, err := tt.Reader().ReadByte(); err != nil || b != 'X' {
		t.Fatalf("next byte = %q, %v, want 'X'", b, err)
	}
}

func TestCursorPosKeepsTypedAhead(t *testing.T) {
	tests := []struct {
		in       string
		col, row int
		ahead    string
	}{
		{"\x1b[5;1R", 1, 5, ""},
		{"select 1;\rselect 2;\r\x1b[5;1R", 1, 5, "select 1;\rselect 2;\r"},
		{"a\x1b[1;5Cb\x1bOA\x1b[12;40R", 40, 12, "a\x1b[1;5Cb\x1bOA"},
		{"\x1b\x1b[3;9R", 9, 3, "\x1b"},
		{"\x1bx\x1b[2;2R", 2, 2, "\x1bx"},
	}
	for _, tc := range tests {
		var out strings.Builder
		tt := &TTY{r: bufio.NewReader(strings.NewReader(tc.in + "rest")), w: bufio.NewWriter(&out)}
		col, row, ahead, err := tt.CursorPos()
		if err != nil {
			t.Fatalf("CursorPos(%q) error: %v", tc.in, err)
		}
		if col != tc.col || row != tc.row || string(ahead) != tc.ahead {
			t.Fatalf("CursorPos(%q) = (%d, %d, %q), want (%d, %d, %q)", tc.in, col, row, ahead, tc.col, tc.row, tc.ahead)
		}
		if out.String() != QueryCursor {
			t.Fatalf("wrote %q, want %q", out.String(), QueryCursor)
		}
		rest, _ := io.ReadAll(tt.Reader())
		if string(rest) != "rest" {
			t.Fatalf("input after reply = %q, want %q", rest, "rest")
		}
	}
}

func TestCursorPosEndOfInputReturnsAhead(t *testing.T) {
	tt := &TTY{r: bufio.NewReader(strings.NewReader("abc\x1b[1")), w: bufio.NewWriter(io.Discard)}
	_, _, ahead, err := tt.CursorPos()
	if err == nil {
		t.Fatalf("CursorPos error = nil, want error")
	}
	if string(ahead) != "abc\x1b[1" {
		t.Fatalf("ahead = %q, want %q", ahead, "abc\x1b[1")
	}
}
