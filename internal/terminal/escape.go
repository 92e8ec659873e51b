package terminal

import "fmt"

const (
	ClearAfterCursor = "\x1b[J"
	ClearAll         = "\x1b[2J"
	ClearLine        = "\x1b[2K"
	ScrollUp         = "\x1b[S"
	QueryCursor      = "\x1b[6n"
	CRLF             = "\r\n"
)

// Goto positions the cursor at a 1-based column and row. Arguments are
// column first; the CUP sequence it emits is row first.
func Goto(col, row int) string {
	return fmt.Sprintf("\x1b[%d;%dH", row, col)
}

// FgRGB selects a 24-bit foreground colour. Components run 0 to 255.
func FgRGB(r, g, b int32) string {
	return fmt.Sprintf("\x1b[38;2;%d;%d;%dm", r, g, b)
}

const ResetStyle = "\x1b[0m"
