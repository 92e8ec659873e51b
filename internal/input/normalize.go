package input

import "github.com/kobzarvs/qsql/internal/logger"

// Terminals disagree on how ctrl+arrow is encoded. Every known spelling is
// listed here and nowhere else.
var builtinCtrlArrows = map[string]Key{
	"\x1b[1;5C": KeyRight,
	"\x1bOc":    KeyRight,
	"\x1b[5C":   KeyRight,
	"\x1b[1;5D": KeyLeft,
	"\x1bOd":    KeyLeft,
	"\x1b[5D":   KeyLeft,
	"\x1b[1;5A": KeyUp,
	"\x1bOa":    KeyUp,
	"\x1b[5A":   KeyUp,
	"\x1b[1;5B": KeyDown,
	"\x1bOb":    KeyDown,
	"\x1b[5B":   KeyDown,
}

var directions = map[string]Key{
	"left":  KeyLeft,
	"right": KeyRight,
	"up":    KeyUp,
	"down":  KeyDown,
}

// Normalizer maps decoder output onto editor events.
type Normalizer struct {
	ctrlArrows map[string]Key
}

// NewNormalizer builds a normalizer from the built-in ctrl+arrow table plus
// extra sequences keyed by direction name. Unknown directions are skipped.
func NewNormalizer(extra map[string][]string) *Normalizer {
	table := make(map[string]Key, len(builtinCtrlArrows))
	for seq, k := range builtinCtrlArrows {
		table[seq] = k
	}
	for dir, seqs := range extra {
		k, ok := directions[dir]
		if !ok {
			logger.Warn("ignoring ctrl-arrow sequences", "direction", dir)
			continue
		}
		for _, seq := range seqs {
			if seq != "" {
				table[seq] = k
			}
		}
	}
	return &Normalizer{ctrlArrows: table}
}

func (n *Normalizer) Normalize(ev RawEvent) Event {
	if ev.Kind == RawUnsupported {
		if k, ok := n.ctrlArrows[string(ev.Bytes)]; ok {
			return CtrlKey(k)
		}
		raw := make([]byte, len(ev.Bytes))
		copy(raw, ev.Bytes)
		return Event{Kind: EventUnsupported, Raw: raw}
	}

	out := Event{Kind: EventKey, Key: KeyEvent{Key: ev.Key, Rune: ev.Rune}}
	switch {
	case ev.Ctrl:
		out.Key.Chord = ChordCtrl
	case ev.Alt:
		out.Key.Chord = ChordAlt
	}
	return out
}

// Source couples a decoder with a normalizer.
type Source struct {
	dec  *Decoder
	norm *Normalizer
}

func NewSource(dec *Decoder, norm *Normalizer) *Source {
	return &Source{dec: dec, norm: norm}
}

func (s *Source) Next() (Event, error) {
	raw, err := s.dec.ReadEvent()
	if err != nil {
		return Event{}, err
	}
	ev := s.norm.Normalize(raw)
	if ev.Kind == EventUnsupported {
		logger.Debug("unsupported input", "bytes", ev.Raw)
	}
	return ev, nil
}

// Unread hands bytes back to the decoder; they are decoded next.
func (s *Source) Unread(p []byte) {
	s.dec.Unread(p)
}
