package editor

import "unicode"

// Geometry tracks the edit buffer and where its cursor lands on screen when
// the prompt plus buffer soft-wrap at the viewport width.
//
// col and row are 1-based terminal coordinates. row is the line holding the
// prompt; wrap counts how many wrapped lines below it the cursor sits. The
// cursor cell is therefore (col, row+wrap).
type Geometry struct {
	buf    []rune
	index  int
	col    int
	row    int
	wrap   int
	width  int
	height int
	prompt int
}

// NewGeometry starts an empty buffer whose prompt begins at column 1 of row.
func NewGeometry(promptWidth, width, height, row int) *Geometry {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	g := &Geometry{
		prompt: promptWidth,
		width:  width,
		height: height,
		row:    row,
	}
	g.place()
	g.clamp()
	return g
}

func (g *Geometry) Content() []rune {
	out := make([]rune, len(g.buf))
	copy(out, g.buf)
	return out
}

func (g *Geometry) Index() int  { return g.index }
func (g *Geometry) Column() int { return g.col }
func (g *Geometry) Row() int    { return g.row }
func (g *Geometry) Wrap() int   { return g.wrap }
func (g *Geometry) Len() int    { return len(g.buf) }

// rows is the number of wrapped lines below the prompt row needed for a
// buffer of n runes, counting the cell the cursor occupies after the last
// rune.
func (g *Geometry) rows(n int) int {
	return (g.prompt + n) / g.width
}

// Insert adds r at the cursor. It reports whether the terminal must scroll
// up one line to make room.
func (g *Geometry) Insert(r rune) bool {
	g.buf = append(g.buf, 0)
	copy(g.buf[g.index+1:], g.buf[g.index:])
	g.buf[g.index] = r
	g.index++
	g.col++
	if g.col > g.width {
		g.col = 1
		g.wrap++
	}
	scrolled := false
	if g.row+g.rows(len(g.buf)) > g.height && g.row > 1 {
		g.row--
		scrolled = true
	}
	g.clamp()
	return scrolled
}

// Backspace removes the rune before the cursor.
func (g *Geometry) Backspace() {
	if g.index == 0 {
		return
	}
	g.buf = append(g.buf[:g.index-1], g.buf[g.index:]...)
	g.Left()
}

// Delete removes the rune under the cursor without moving it.
func (g *Geometry) Delete() {
	if g.index >= len(g.buf) {
		return
	}
	g.buf = append(g.buf[:g.index], g.buf[g.index+1:]...)
	g.clamp()
}

func (g *Geometry) Left() {
	if g.index == 0 {
		return
	}
	g.index--
	if g.col == 1 {
		g.col = g.width
		g.wrap--
	} else {
		g.col--
	}
	g.clamp()
}

func (g *Geometry) Right() {
	if g.index >= len(g.buf) {
		return
	}
	g.index++
	if g.col == g.width {
		g.col = 1
		g.wrap++
	} else {
		g.col++
	}
	g.clamp()
}

// Up moves one wrapped line up, keeping the column, or to the start when no
// full line sits above the cursor.
func (g *Geometry) Up() {
	if g.wrap > 0 && g.index >= g.width {
		g.index -= g.width
		g.wrap--
		g.clamp()
		return
	}
	g.Home()
}

// Down moves one wrapped line down, keeping the column, or to the end when
// the buffer does not reach that far.
func (g *Geometry) Down() {
	if g.wrap < g.rows(len(g.buf)) && g.index+g.width <= len(g.buf) {
		g.index += g.width
		g.wrap++
		g.clamp()
		return
	}
	g.End()
}

func (g *Geometry) Home() {
	g.index = 0
	g.place()
	g.clamp()
}

func (g *Geometry) End() {
	g.index = len(g.buf)
	g.place()
	g.clamp()
}

// WordLeft moves to the start of the previous word.
func (g *Geometry) WordLeft() {
	i := g.index
	for i > 0 && unicode.IsSpace(g.buf[i-1]) {
		i--
	}
	for i > 0 && !unicode.IsSpace(g.buf[i-1]) {
		i--
	}
	g.index = i
	g.place()
	g.clamp()
}

// WordRight moves past the current word and the whitespace after it.
func (g *Geometry) WordRight() {
	i := g.index
	for i < len(g.buf) && !unicode.IsSpace(g.buf[i]) {
		i++
	}
	for i < len(g.buf) && unicode.IsSpace(g.buf[i]) {
		i++
	}
	g.index = i
	g.place()
	g.clamp()
}

// DeleteWordLeft removes from the start of the previous word up to the cursor.
func (g *Geometry) DeleteWordLeft() {
	end := g.index
	g.WordLeft()
	g.buf = append(g.buf[:g.index], g.buf[end:]...)
	g.clamp()
}

// KillToEnd drops everything from the cursor to the end of the buffer.
func (g *Geometry) KillToEnd() {
	g.buf = g.buf[:g.index]
	g.clamp()
}

// ClearScreen records that the prompt was moved to the top line.
func (g *Geometry) ClearScreen() {
	g.row = 1
	g.clamp()
}

// SetContent replaces the buffer, moves the cursor to the end and returns how
// many lines the terminal has to scroll so the whole buffer is visible.
func (g *Geometry) SetContent(r []rune) int {
	g.buf = append(g.buf[:0:0], r...)
	g.index = len(g.buf)
	g.place()
	scrolls := 0
	for g.row+g.rows(len(g.buf)) > g.height && g.row > 1 {
		g.row--
		scrolls++
	}
	g.clamp()
	return scrolls
}

// place derives the cursor cell from index alone.
func (g *Geometry) place() {
	g.col = (g.prompt+g.index)%g.width + 1
	g.wrap = (g.prompt + g.index) / g.width
}

func (g *Geometry) clamp() {
	if g.index < 0 {
		g.index = 0
	}
	if g.index > len(g.buf) {
		g.index = len(g.buf)
	}
	if g.col < 1 {
		g.col = 1
	}
	if g.col > g.width {
		g.col = g.width
	}
	if g.wrap < 0 {
		g.wrap = 0
	}
	if g.row < 1 {
		g.row = 1
	}
	if g.row > g.height {
		g.row = g.height
	}
}
