// Package keys turns a raw terminal byte stream into key events.
package keys

import "strconv"

// Key is a decoded key event. Values below 256 are the byte that was read;
// named keys use values from 1000 upward.
type Key int

const (
	ArrowLeft Key = 1000 + iota
	ArrowRight
	ArrowUp
	ArrowDown
	Delete
	Home
	End
	PageUp
	PageDown
)

// Escape is a lone escape key press, or an escape sequence that could not
// be decoded.
const Escape Key = 0x1b

// Ctrl returns the key produced by holding Ctrl with c.
func Ctrl(c byte) Key { return Key(c & 0x1f) }

// IsByte reports whether k carries a single input byte.
func (k Key) IsByte() bool { return k >= 0 && k < 256 && k != Escape }

var keyNames = map[Key]string{
	ArrowLeft:  "ArrowLeft",
	ArrowRight: "ArrowRight",
	ArrowUp:    "ArrowUp",
	ArrowDown:  "ArrowDown",
	Delete:     "Delete",
	Home:       "Home",
	End:        "End",
	PageUp:     "PageUp",
	PageDown:   "PageDown",
	Escape:     "Escape",
}

func (k Key) String() string {
	if name, ok := keyNames[k]; ok {
		return name
	}
	switch {
	case k >= 0 && k < 0x20:
		return "Ctrl-" + string(rune('@'+k))
	case k == 0x7f:
		return "Backspace"
	case k >= 0x20 && k < 0x7f:
		return strconv.QuoteRune(rune(k))
	}
	return "Key(" + strconv.Itoa(int(k)) + ")"
}
