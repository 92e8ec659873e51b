// Package viewer is a read-only pager for result rows. It draws on the
// alternate screen so the shell's scrollback is left untouched.
package viewer

import (
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/kobzarvs/qsql/internal/logger"
)

// Viewer holds the rows and the top-left offset of the window onto them.
// The offset never lets the window run past the content: y+h <= len(rows)
// and x+w <= the widest row currently visible.
type Viewer struct {
	rows   []string
	x, y   int
	w, h   int
	maxLen int
	style  tcell.Style
}

func New(rows []string, style tcell.Style) *Viewer {
	return &Viewer{rows: rows, style: style}
}

func (v *Viewer) Offset() (int, int) { return v.x, v.y }

// SetSize adopts a new window size and pulls the offset back into bounds.
func (v *Viewer) SetSize(w, h int) {
	v.w, v.h = w, h
	if limit := len(v.rows) - v.h; v.y > limit {
		v.y = max(0, limit)
	}
	v.refresh()
}

// HandleKey applies a navigation key. Any other key ends paging and true is
// returned.
func (v *Viewer) HandleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyUp:
		if v.y > 0 {
			v.y--
			v.refresh()
		}
	case tcell.KeyDown:
		if v.y+v.h < len(v.rows) {
			v.y++
			v.refresh()
		}
	case tcell.KeyLeft:
		if v.x > 0 {
			v.x--
		}
	case tcell.KeyRight:
		if v.x+v.w < v.maxLen {
			v.x++
		}
	default:
		return true
	}
	return false
}

// refresh recomputes the widest visible row and clamps x against it.
func (v *Viewer) refresh() {
	v.maxLen = 0
	end := min(len(v.rows), v.y+v.h)
	for _, row := range v.rows[v.y:end] {
		v.maxLen = max(v.maxLen, runewidth.StringWidth(row))
	}
	v.x = min(v.x, max(0, v.maxLen-v.w))
}

func (v *Viewer) Render(s tcell.Screen) {
	s.Clear()
	s.HideCursor()
	for i := 0; i < v.h && v.y+i < len(v.rows); i++ {
		v.drawRow(s, i, v.rows[v.y+i])
	}
	s.Show()
}

func (v *Viewer) drawRow(s tcell.Screen, screenRow int, line string) {
	col := 0
	for _, r := range line {
		rw := runewidth.RuneWidth(r)
		if rw == 0 {
			continue
		}
		if col >= v.x {
			if col-v.x+rw > v.w {
				return
			}
			s.SetContent(col-v.x, screenRow, r, nil, v.style)
		}
		col += rw
	}
}

// Run pages until a non-navigation key arrives or the screen goes away.
func (v *Viewer) Run(s tcell.Screen) error {
	v.SetSize(s.Size())
	v.Render(s)
	for {
		switch ev := s.PollEvent().(type) {
		case nil:
			return nil
		case *tcell.EventResize:
			s.Sync()
			v.SetSize(s.Size())
		case *tcell.EventKey:
			if v.HandleKey(ev) {
				return nil
			}
		default:
			continue
		}
		v.Render(s)
	}
}

// Pager opens a screen for every Page call and closes it before returning.
type Pager struct {
	style     tcell.Style
	newScreen func() (tcell.Screen, error)
}

func NewPager(style tcell.Style) *Pager {
	return &Pager{style: style, newScreen: tcell.NewScreen}
}

func (p *Pager) Page(rows []string) error {
	s, err := p.newScreen()
	if err != nil {
		return err
	}
	if err := s.Init(); err != nil {
		return err
	}
	defer s.Fini()
	logger.Debug("pager opened", "rows", len(rows))
	return New(rows, p.style).Run(s)
}
