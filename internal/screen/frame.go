// Package screen composes editor frames as VT100 escape sequences.
package screen

import (
	"bytes"
	"io"
	"strconv"
)

// Sequence is a raw terminal control sequence.
type Sequence string

const (
	HideCursor  Sequence = "\x1b[?25l"
	ShowCursor  Sequence = "\x1b[?25h"
	CursorHome  Sequence = "\x1b[H"
	EraseLine   Sequence = "\x1b[K"
	ClearScreen Sequence = "\x1b[2J"
	Reverse     Sequence = "\x1b[7m"
	Reset       Sequence = "\x1b[m"
	// ProbeCorner pushes the cursor to the bottom-right corner.
	ProbeCorner Sequence = "\x1b[999C\x1b[999B"
	// CursorReport asks the terminal for the cursor position.
	CursorReport Sequence = "\x1b[6n"
)

// Frame accumulates one screen update so it can be written at once.
type Frame struct {
	buf    bytes.Buffer
	numBuf [20]byte
}

// Set appends a control sequence.
func (f *Frame) Set(s Sequence) {
	f.buf.WriteString(string(s))
}

// MoveTo appends a cursor-position sequence for 1-indexed row and col.
func (f *Frame) MoveTo(row, col int) {
	f.buf.WriteString("\x1b[")
	f.buf.Write(strconv.AppendInt(f.numBuf[:0], int64(row), 10))
	f.buf.WriteByte(';')
	f.buf.Write(strconv.AppendInt(f.numBuf[:0], int64(col), 10))
	f.buf.WriteByte('H')
}

// Write appends p to the frame.
func (f *Frame) Write(p []byte) (int, error) {
	return f.buf.Write(p)
}

// WriteString appends s to the frame.
func (f *Frame) WriteString(s string) (int, error) {
	return f.buf.WriteString(s)
}

// WriteByte appends c to the frame.
func (f *Frame) WriteByte(c byte) error {
	return f.buf.WriteByte(c)
}

// Bytes returns the pending frame.
func (f *Frame) Bytes() []byte {
	return f.buf.Bytes()
}

// Len returns the number of pending bytes.
func (f *Frame) Len() int {
	return f.buf.Len()
}

// Reset discards the pending frame.
func (f *Frame) Reset() {
	f.buf.Reset()
}

// Flush writes the pending frame to w in a single Write call and resets it.
func (f *Frame) Flush(w io.Writer) error {
	_, err := w.Write(f.buf.Bytes())
	f.buf.Reset()
	return err
}
