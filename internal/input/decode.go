package input

import (
	"bufio"
	"unicode/utf8"
)

type RawKind int

const (
	RawKey RawKind = iota
	RawUnsupported
)

// RawEvent is one decoded unit of terminal input before normalization.
// Bytes always holds the exact input that produced it.
type RawEvent struct {
	Kind  RawKind
	Key   Key
	Rune  rune
	Ctrl  bool
	Alt   bool
	Bytes []byte
}

const maxSequence = 16

// Decoder reads key events from a terminal in raw mode. Bytes handed back
// with Unread are decoded before anything still unread in r.
type Decoder struct {
	r       *bufio.Reader
	pending []byte
}

func NewDecoder(r *bufio.Reader) *Decoder {
	return &Decoder{r: r}
}

// Unread queues input that was consumed elsewhere, such as keys typed
// ahead of a cursor position report.
func (d *Decoder) Unread(p []byte) {
	if len(p) == 0 {
		return
	}
	d.pending = append(append([]byte(nil), p...), d.pending...)
}

func (d *Decoder) readByte() (byte, error) {
	if len(d.pending) > 0 {
		b := d.pending[0]
		d.pending = d.pending[1:]
		return b, nil
	}
	return d.r.ReadByte()
}

func (d *Decoder) unreadByte(b byte) {
	d.pending = append([]byte{b}, d.pending...)
}

func (d *Decoder) buffered() int {
	return len(d.pending) + d.r.Buffered()
}

func (d *Decoder) ReadEvent() (RawEvent, error) {
	b, err := d.readByte()
	if err != nil {
		return RawEvent{}, err
	}
	raw := []byte{b}

	switch {
	case b == 0x1b:
		return d.readEscape(), nil
	case b == '\r' || b == '\n':
		return RawEvent{Kind: RawKey, Key: KeyEnter, Bytes: raw}, nil
	case b == 0x7f || b == 0x08:
		return RawEvent{Kind: RawKey, Key: KeyBackspace, Bytes: raw}, nil
	case b == '\t':
		return RawEvent{Kind: RawKey, Key: KeyTab, Bytes: raw}, nil
	case b >= 0x01 && b <= 0x1a:
		return RawEvent{Kind: RawKey, Key: KeyRune, Rune: rune('a' + b - 1), Ctrl: true, Bytes: raw}, nil
	case b < 0x20:
		return RawEvent{Kind: RawUnsupported, Bytes: raw}, nil
	case b < utf8.RuneSelf:
		return RawEvent{Kind: RawKey, Key: KeyRune, Rune: rune(b), Bytes: raw}, nil
	}

	for !utf8.FullRune(raw) && len(raw) < utf8.UTFMax {
		next, err := d.readByte()
		if err != nil {
			break
		}
		if next&0xc0 != 0x80 {
			// Not a continuation byte; it starts the next event.
			d.unreadByte(next)
			break
		}
		raw = append(raw, next)
	}
	r, size := utf8.DecodeRune(raw)
	if r == utf8.RuneError && size <= 1 {
		return RawEvent{Kind: RawUnsupported, Bytes: raw}, nil
	}
	return RawEvent{Kind: RawKey, Key: KeyRune, Rune: r, Bytes: raw}, nil
}

// readEscape runs after ESC. A lone ESC is only distinguishable from the start
// of a sequence by the absence of buffered input.
func (d *Decoder) readEscape() RawEvent {
	seq := []byte{0x1b}
	if d.buffered() == 0 {
		return RawEvent{Kind: RawKey, Key: KeyEsc, Bytes: seq}
	}
	next, err := d.readByte()
	if err != nil {
		return RawEvent{Kind: RawKey, Key: KeyEsc, Bytes: seq}
	}
	seq = append(seq, next)

	switch {
	case (next == '[' || next == 'O') && d.buffered() > 0:
		if next == '[' {
			return d.readCSI(seq)
		}
		final, _ := d.readByte()
		seq = append(seq, final)
		if k, ok := ss3Keys[final]; ok {
			return RawEvent{Kind: RawKey, Key: k, Bytes: seq}
		}
		return RawEvent{Kind: RawUnsupported, Bytes: seq}
	case next >= 0x20 && next < 0x7f:
		return RawEvent{Kind: RawKey, Key: KeyRune, Rune: rune(next), Alt: true, Bytes: seq}
	}
	return RawEvent{Kind: RawUnsupported, Bytes: seq}
}

var ss3Keys = map[byte]Key{
	'A': KeyUp,
	'B': KeyDown,
	'C': KeyRight,
	'D': KeyLeft,
	'H': KeyHome,
	'F': KeyEnd,
}

var tildeKeys = map[string]Key{
	"1": KeyHome,
	"2": KeyInsert,
	"3": KeyDelete,
	"4": KeyEnd,
	"5": KeyPageUp,
	"6": KeyPageDown,
	"7": KeyHome,
	"8": KeyEnd,
}

// readCSI consumes parameter and intermediate bytes up to the final byte.
// Only unmodified sequences decode to keys; anything carrying modifiers is
// left for the normalizer.
func (d *Decoder) readCSI(seq []byte) RawEvent {
	start := len(seq)
	for len(seq) < maxSequence {
		b, err := d.readByte()
		if err != nil {
			return RawEvent{Kind: RawUnsupported, Bytes: seq}
		}
		seq = append(seq, b)
		if b >= 0x40 && b <= 0x7e {
			break
		}
	}
	final := seq[len(seq)-1]
	params := string(seq[start : len(seq)-1])

	if params == "" {
		if k, ok := ss3Keys[final]; ok {
			return RawEvent{Kind: RawKey, Key: k, Bytes: seq}
		}
	}
	if final == '~' {
		if k, ok := tildeKeys[params]; ok {
			return RawEvent{Kind: RawKey, Key: k, Bytes: seq}
		}
	}
	return RawEvent{Kind: RawUnsupported, Bytes: seq}
}
