package keys

import (
	"fmt"
	"iter"
)

// Source yields input one byte at a time. A read that times out without
// input returns ok == false and a nil error.
type Source interface {
	ReadByte() (b byte, ok bool, err error)
}

type stateKind int

const (
	stateNormal stateKind = iota
	stateEscape
	stateEscapeO
	stateBracket
	stateBracketDigit
)

type state struct {
	kind  stateKind
	digit byte
}

// Decoder reads key events from a Source.
type Decoder struct {
	src Source
}

// NewDecoder returns a Decoder reading from src.
func NewDecoder(src Source) *Decoder {
	return &Decoder{src: src}
}

// Next blocks until one complete key has been read. Timeouts are waited out
// between keys, but inside an escape sequence a timeout ends the sequence as
// a lone Escape.
func (d *Decoder) Next() (Key, error) {
	st := state{kind: stateNormal}
	for {
		b, ok, err := d.src.ReadByte()
		if err != nil {
			return 0, fmt.Errorf("reading key: %w", err)
		}
		var k Key
		var emit bool
		if ok {
			st, k, emit = step(st, b)
		} else {
			k, emit = expire(st)
		}
		if emit {
			return k, nil
		}
	}
}

// Keys returns the decoded key stream. It ends after the first read error,
// which is yielded with a zero Key.
func (d *Decoder) Keys() iter.Seq2[Key, error] {
	return func(yield func(Key, error) bool) {
		for {
			k, err := d.Next()
			if !yield(k, err) || err != nil {
				return
			}
		}
	}
}

func step(st state, b byte) (state, Key, bool) {
	switch st.kind {
	case stateNormal:
		if b == 0x1b {
			return state{kind: stateEscape}, 0, false
		}
		return st, Key(b), true
	case stateEscape:
		switch b {
		case '[':
			return state{kind: stateBracket}, 0, false
		case 'O':
			return state{kind: stateEscapeO}, 0, false
		}
	case stateEscapeO:
		switch b {
		case 'H':
			return state{}, Home, true
		case 'F':
			return state{}, End, true
		}
	case stateBracket:
		if b >= '1' && b <= '9' {
			return state{kind: stateBracketDigit, digit: b}, 0, false
		}
		switch b {
		case 'A':
			return state{}, ArrowUp, true
		case 'B':
			return state{}, ArrowDown, true
		case 'C':
			return state{}, ArrowRight, true
		case 'D':
			return state{}, ArrowLeft, true
		case 'H':
			return state{}, Home, true
		case 'F':
			return state{}, End, true
		}
	case stateBracketDigit:
		if b != '~' {
			break
		}
		switch st.digit {
		case '1', '7':
			return state{}, Home, true
		case '3':
			return state{}, Delete, true
		case '4', '8':
			return state{}, End, true
		case '5':
			return state{}, PageUp, true
		case '6':
			return state{}, PageDown, true
		}
	}
	return state{}, Escape, true
}

func expire(st state) (Key, bool) {
	if st.kind == stateNormal {
		return 0, false
	}
	return Escape, true
}
