package input

import (
	"bufio"
	"bytes"
	"io"
	"strings"
	"testing"
)

func decodeAll(t *testing.T, in string) []RawEvent {
	t.Helper()
	dec := NewDecoder(bufio.NewReader(strings.NewReader(in)))
	var out []RawEvent
	for {
		ev, err := dec.ReadEvent()
		if err == io.EOF {
			return out
		}
		if err != nil {
			t.Fatalf("ReadEvent error: %v", err)
		}
		out = append(out, ev)
	}
}

func TestDecoderKeys(t *testing.T) {
	tests := []struct {
		in   string
		key  Key
		r    rune
		ctrl bool
		alt  bool
	}{
		{"a", KeyRune, 'a', false, false},
		{"é", KeyRune, 'é', false, false},
		{"\r", KeyEnter, 0, false, false},
		{"\n", KeyEnter, 0, false, false},
		{"\x7f", KeyBackspace, 0, false, false},
		{"\t", KeyTab, 0, false, false},
		{"\x03", KeyRune, 'c', true, false},
		{"\x04", KeyRune, 'd', true, false},
		{"\x0c", KeyRune, 'l', true, false},
		{"\x1b", KeyEsc, 0, false, false},
		{"\x1bx", KeyRune, 'x', false, true},
		{"\x1b[A", KeyUp, 0, false, false},
		{"\x1b[B", KeyDown, 0, false, false},
		{"\x1b[C", KeyRight, 0, false, false},
		{"\x1b[D", KeyLeft, 0, false, false},
		{"\x1b[H", KeyHome, 0, false, false},
		{"\x1b[F", KeyEnd, 0, false, false},
		{"\x1bOH", KeyHome, 0, false, false},
		{"\x1b[1~", KeyHome, 0, false, false},
		{"\x1b[4~", KeyEnd, 0, false, false},
		{"\x1b[3~", KeyDelete, 0, false, false},
		{"\x1b[5~", KeyPageUp, 0, false, false},
		{"\x1b[6~", KeyPageDown, 0, false, false},
	}
	for _, tc := range tests {
		evs := decodeAll(t, tc.in)
		if len(evs) != 1 {
			t.Fatalf("%q: got %d events, want 1", tc.in, len(evs))
		}
		ev := evs[0]
		if ev.Kind != RawKey || ev.Key != tc.key || ev.Rune != tc.r || ev.Ctrl != tc.ctrl || ev.Alt != tc.alt {
			t.Fatalf("%q: got %+v, want key=%v rune=%q ctrl=%v alt=%v", tc.in, ev, tc.key, tc.r, tc.ctrl, tc.alt)
		}
		if string(ev.Bytes) != tc.in {
			t.Fatalf("%q: Bytes = %q", tc.in, ev.Bytes)
		}
	}
}

func TestDecoderUnsupportedKeepsBytes(t *testing.T) {
	for _, in := range []string{"\x1b[1;5C", "\x1bOc", "\x1b[15~", "\x1b[1;2P"} {
		evs := decodeAll(t, in)
		if len(evs) != 1 || evs[0].Kind != RawUnsupported {
			t.Fatalf("%q: got %+v, want one unsupported event", in, evs)
		}
		if !bytes.Equal(evs[0].Bytes, []byte(in)) {
			t.Fatalf("%q: Bytes = %q", in, evs[0].Bytes)
		}
	}
}

func TestDecoderSequenceStream(t *testing.T) {
	evs := decodeAll(t, "ab\x1b[Dc\r")
	want := []Key{KeyRune, KeyRune, KeyLeft, KeyRune, KeyEnter}
	if len(evs) != len(want) {
		t.Fatalf("got %d events, want %d", len(evs), len(want))
	}
	for i, k := range want {
		if evs[i].Key != k {
			t.Fatalf("event %d key = %v, want %v", i, evs[i].Key, k)
		}
	}
}

func TestDecoderInvalidUTF8(t *testing.T) {
	evs := decodeAll(t, "\xc3a")
	if len(evs) != 2 {
		t.Fatalf("got %d events, want 2", len(evs))
	}
	if evs[0].Kind != RawUnsupported {
		t.Fatalf("first event = %+v, want unsupported", evs[0])
	}
	if evs[1].Rune != 'a' {
		t.Fatalf("second rune = %q, want 'a'", evs[1].Rune)
	}
}

func TestNormalizeCtrlArrows(t *testing.T) {
	n := NewNormalizer(nil)
	tests := map[string]Key{
		"\x1b[1;5C": KeyRight,
		"\x1bOc":    KeyRight,
		"\x1b[1;5D": KeyLeft,
		"\x1bOd":    KeyLeft,
		"\x1b[1;5A": KeyUp,
		"\x1bOa":    KeyUp,
		"\x1b[1;5B": KeyDown,
		"\x1bOb":    KeyDown,
	}
	for seq, want := range tests {
		ev := n.Normalize(RawEvent{Kind: RawUnsupported, Bytes: []byte(seq)})
		if ev.Kind != EventKey || ev.Key.Chord != ChordCtrl || ev.Key.Key != want {
			t.Fatalf("%q: got %+v, want ctrl+%v", seq, ev, want)
		}
	}
}

func TestNormalizeExtraSequences(t *testing.T) {
	n := NewNormalizer(map[string][]string{
		"left":     {"\x1b[1;9D"},
		"sideways": {"\x1b[1;9Z"},
	})
	ev := n.Normalize(RawEvent{Kind: RawUnsupported, Bytes: []byte("\x1b[1;9D")})
	if ev.Key != (KeyEvent{Chord: ChordCtrl, Key: KeyLeft}) {
		t.Fatalf("extra sequence = %+v, want ctrl+left", ev.Key)
	}
	ev = n.Normalize(RawEvent{Kind: RawUnsupported, Bytes: []byte("\x1b[1;9Z")})
	if ev.Kind != EventUnsupported {
		t.Fatalf("unknown direction mapped to %+v", ev)
	}
}

func TestNormalizePassesThroughUnknown(t *testing.T) {
	n := NewNormalizer(nil)
	in := []byte("\x1b[15~")
	ev := n.Normalize(RawEvent{Kind: RawUnsupported, Bytes: in})
	if ev.Kind != EventUnsupported || !bytes.Equal(ev.Raw, in) {
		t.Fatalf("got %+v, want unsupported %q", ev, in)
	}
	in[0] = 'x'
	if ev.Raw[0] != 0x1b {
		t.Fatalf("Raw aliases decoder bytes")
	}
}

func TestNormalizeChords(t *testing.T) {
	n := NewNormalizer(nil)
	if ev := n.Normalize(RawEvent{Kind: RawKey, Key: KeyRune, Rune: 'c', Ctrl: true}); ev.Kind != EventKey || ev.Key != Ctrl('c').Key {
		t.Fatalf("ctrl+c = %+v", ev)
	}
	if got := n.Normalize(RawEvent{Kind: RawKey, Key: KeyRune, Rune: 'b', Alt: true}); got.Key.String() != "alt+b" {
		t.Fatalf("alt+b = %v", got.Key)
	}
	if got := n.Normalize(RawEvent{Kind: RawKey, Key: KeyHome}); got.Key.String() != "home" {
		t.Fatalf("home = %v", got.Key)
	}
}

func TestDecoderUnreadComesFirst(t *testing.T) {
	dec := NewDecoder(bufio.NewReader(strings.NewReader("Z")))
	dec.Unread([]byte("ab\x1b[A"))
	dec.Unread([]byte("x"))

	want := []struct {
		key Key
		r   rune
	}{
		{KeyRune, 'x'},
		{KeyRune, 'a'},
		{KeyRune, 'b'},
		{KeyUp, 0},
		{KeyRune, 'Z'},
	}
	for i, w := range want {
		ev, err := dec.ReadEvent()
		if err != nil {
			t.Fatalf("event %d: ReadEvent error: %v", i, err)
		}
		if ev.Key != w.key || ev.Rune != w.r {
			t.Fatalf("event %d = %v %q, want %v %q", i, ev.Key, ev.Rune, w.key, w.r)
		}
	}
	if _, err := dec.ReadEvent(); err != io.EOF {
		t.Fatalf("ReadEvent error = %v, want EOF", err)
	}
}

func TestDecoderUnreadSplitsAcrossSources(t *testing.T) {
	dec := NewDecoder(bufio.NewReader(strings.NewReader("\xa9")))
	dec.Unread([]byte("\xc3"))
	ev, err := dec.ReadEvent()
	if err != nil {
		t.Fatalf("ReadEvent error: %v", err)
	}
	if ev.Key != KeyRune || ev.Rune != 'é' {
		t.Fatalf("event = %v %q, want rune 'é'", ev.Key, ev.Rune)
	}

	dec = NewDecoder(bufio.NewReader(strings.NewReader("")))
	dec.Unread([]byte("\x1b"))
	if ev, _ := dec.ReadEvent(); ev.Key != KeyEsc {
		t.Fatalf("lone ESC decoded as %v, want Esc", ev.Key)
	}
}
