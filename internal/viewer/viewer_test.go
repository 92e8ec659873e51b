package viewer

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
)

func numberedRows(n int) []string {
	rows := make([]string, n)
	for i := range rows {
		rows[i] = fmt.Sprintf("row %d", i)
	}
	return rows
}

func key(k tcell.Key) *tcell.EventKey {
	return tcell.NewEventKey(k, 0, tcell.ModNone)
}

func TestViewerVerticalBound(t *testing.T) {
	v := New(numberedRows(100), tcell.StyleDefault)
	v.SetSize(80, 20)
	for i := 0; i < 500; i++ {
		if v.HandleKey(key(tcell.KeyDown)) {
			t.Fatalf("KeyDown ended paging")
		}
	}
	if _, y := v.Offset(); y != 80 {
		t.Fatalf("y = %d, want 80", y)
	}
	for i := 0; i < 500; i++ {
		v.HandleKey(key(tcell.KeyUp))
	}
	if _, y := v.Offset(); y != 0 {
		t.Fatalf("y = %d, want 0", y)
	}
}

func TestViewerShortContentDoesNotScroll(t *testing.T) {
	v := New(numberedRows(5), tcell.StyleDefault)
	v.SetSize(80, 20)
	v.HandleKey(key(tcell.KeyDown))
	if x, y := v.Offset(); x != 0 || y != 0 {
		t.Fatalf("offset = (%d, %d), want (0, 0)", x, y)
	}
}

func TestViewerHorizontalBoundFollowsVisibleRows(t *testing.T) {
	rows := []string{strings.Repeat("w", 30), "short", "short"}
	v := New(rows, tcell.StyleDefault)
	v.SetSize(10, 2)
	for i := 0; i < 100; i++ {
		v.HandleKey(key(tcell.KeyRight))
	}
	if x, _ := v.Offset(); x != 20 {
		t.Fatalf("x = %d, want 20", x)
	}
	// Scrolling the wide row out of view shrinks the bound and pulls x back.
	v.HandleKey(key(tcell.KeyDown))
	if x, y := v.Offset(); x != 0 || y != 1 {
		t.Fatalf("offset = (%d, %d), want (0, 1)", x, y)
	}
}

func TestViewerOtherKeyExits(t *testing.T) {
	v := New(numberedRows(3), tcell.StyleDefault)
	v.SetSize(80, 20)
	if !v.HandleKey(tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone)) {
		t.Fatalf("'q' did not end paging")
	}
	if !v.HandleKey(key(tcell.KeyEnter)) {
		t.Fatalf("Enter did not end paging")
	}
}

func TestViewerRender(t *testing.T) {
	s := tcell.NewSimulationScreen("UTF-8")
	if err := s.Init(); err != nil {
		t.Fatalf("init screen: %v", err)
	}
	defer s.Fini()
	s.SetSize(6, 3)

	v := New([]string{"abcdefghij", "xyz", "123", "456"}, tcell.StyleDefault)
	v.SetSize(s.Size())
	v.HandleKey(key(tcell.KeyRight))
	v.HandleKey(key(tcell.KeyRight))
	v.Render(s)

	cells, w, _ := s.GetContents()
	if w != 6 {
		t.Fatalf("width = %d, want 6", w)
	}
	got := string(cells[0].Runes)
	if got != "c" {
		t.Fatalf("first cell = %q, want %q", got, "c")
	}
	if r := cells[w].Runes; len(r) == 0 || r[0] != 'z' {
		t.Fatalf("second row first cell = %q, want 'z'", r)
	}
}

func TestViewerRunStopsOnKey(t *testing.T) {
	s := tcell.NewSimulationScreen("UTF-8")
	if err := s.Init(); err != nil {
		t.Fatalf("init screen: %v", err)
	}
	defer s.Fini()
	s.SetSize(20, 5)

	v := New(numberedRows(50), tcell.StyleDefault)
	_ = s.PostEvent(key(tcell.KeyDown))
	_ = s.PostEvent(key(tcell.KeyDown))
	_ = s.PostEvent(tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone))
	if err := v.Run(s); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if _, y := v.Offset(); y != 2 {
		t.Fatalf("y = %d, want 2", y)
	}
}

// trackedScreen records teardown and feeds queued events once initialised.
type trackedScreen struct {
	tcell.Screen
	initErr error
	events  []tcell.Event
	finis   int
}

func (s *trackedScreen) Init() error {
	if s.initErr != nil {
		return s.initErr
	}
	if err := s.Screen.Init(); err != nil {
		return err
	}
	s.SetSize(20, 5)
	for _, ev := range s.events {
		_ = s.PostEvent(ev)
	}
	return nil
}

func (s *trackedScreen) Fini() {
	s.finis++
	s.Screen.Fini()
}

func TestPagerFinalizesScreen(t *testing.T) {
	screen := &trackedScreen{
		Screen: tcell.NewSimulationScreen("UTF-8"),
		events: []tcell.Event{key(tcell.KeyDown), key(tcell.KeyEscape)},
	}
	p := NewPager(tcell.StyleDefault)
	p.newScreen = func() (tcell.Screen, error) { return screen, nil }

	if err := p.Page(numberedRows(50)); err != nil {
		t.Fatalf("Page error: %v", err)
	}
	if screen.finis != 1 {
		t.Fatalf("Fini calls = %d, want 1", screen.finis)
	}
}

func TestPagerInitFailure(t *testing.T) {
	initErr := errors.New("no terminal")
	screen := &trackedScreen{Screen: tcell.NewSimulationScreen("UTF-8"), initErr: initErr}
	p := NewPager(tcell.StyleDefault)
	p.newScreen = func() (tcell.Screen, error) { return screen, nil }

	if err := p.Page(numberedRows(3)); !errors.Is(err, initErr) {
		t.Fatalf("Page error = %v, want %v", err, initErr)
	}
	if screen.finis != 0 {
		t.Fatalf("Fini called %d times on a screen that never started", screen.finis)
	}
}

func TestPagerScreenUnavailable(t *testing.T) {
	openErr := errors.New("open /dev/tty")
	p := NewPager(tcell.StyleDefault)
	p.newScreen = func() (tcell.Screen, error) { return nil, openErr }
	if err := p.Page(numberedRows(3)); !errors.Is(err, openErr) {
		t.Fatalf("Page error = %v, want %v", err, openErr)
	}
}
