// Package input turns raw terminal bytes into key events the line editor
// understands.
package input

import "fmt"

type Key int

const (
	KeyNone Key = iota
	KeyRune
	KeyEnter
	KeyBackspace
	KeyDelete
	KeyTab
	KeyEsc
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyInsert
)

var keyNames = map[Key]string{
	KeyNone:      "none",
	KeyRune:      "rune",
	KeyEnter:     "enter",
	KeyBackspace: "backspace",
	KeyDelete:    "del",
	KeyTab:       "tab",
	KeyEsc:       "esc",
	KeyLeft:      "left",
	KeyRight:     "right",
	KeyUp:        "up",
	KeyDown:      "down",
	KeyHome:      "home",
	KeyEnd:       "end",
	KeyPageUp:    "pgup",
	KeyPageDown:  "pgdn",
	KeyInsert:    "ins",
}

func (k Key) String() string {
	if name, ok := keyNames[k]; ok {
		return name
	}
	return fmt.Sprintf("key(%d)", int(k))
}

// Chord is the modifier a key arrived with.
type Chord int

const (
	ChordPlain Chord = iota
	ChordCtrl
	ChordAlt
)

type EventKind int

const (
	EventKey EventKind = iota
	EventUnsupported
)

// KeyEvent is a normalized key. Rune is set only for KeyRune.
type KeyEvent struct {
	Chord Chord
	Key   Key
	Rune  rune
}

func (k KeyEvent) String() string {
	name := k.Key.String()
	if k.Key == KeyRune {
		name = string(k.Rune)
	}
	switch k.Chord {
	case ChordCtrl:
		return "ctrl+" + name
	case ChordAlt:
		return "alt+" + name
	}
	return name
}

// Event is what the editor consumes: a key, or raw bytes nobody recognized.
type Event struct {
	Kind EventKind
	Key  KeyEvent
	Raw  []byte
}

// Plain, Ctrl and Alt build key events; handy for callers and tests.
func Plain(k Key) Event { return Event{Kind: EventKey, Key: KeyEvent{Key: k}} }

func Rune(r rune) Event { return Event{Kind: EventKey, Key: KeyEvent{Key: KeyRune, Rune: r}} }

func Ctrl(r rune) Event {
	return Event{Kind: EventKey, Key: KeyEvent{Chord: ChordCtrl, Key: KeyRune, Rune: r}}
}

func CtrlKey(k Key) Event { return Event{Kind: EventKey, Key: KeyEvent{Chord: ChordCtrl, Key: k}} }

func Alt(r rune) Event {
	return Event{Kind: EventKey, Key: KeyEvent{Chord: ChordAlt, Key: KeyRune, Rune: r}}
}
