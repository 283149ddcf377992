//go:build linux || darwin || dragonfly || freebsd || netbsd || openbsd

// Package terminal provides the raw-mode terminal the editor runs on.
package terminal

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// DefaultReadTimeout bounds how long a read waits for the next byte.
const DefaultReadTimeout = 100 * time.Millisecond

// ErrNotTerminal is returned when a file descriptor is not a terminal.
var ErrNotTerminal = errors.New("not a terminal")

// RawMode holds the terminal state to restore after raw mode.
type RawMode struct {
	fd    int
	saved *term.State
}

// EnableRaw switches fd to raw mode: no echo, no line buffering, no signal
// keys, no output processing. Reads return after timeout when no byte
// arrives.
func EnableRaw(fd int, timeout time.Duration) (*RawMode, error) {
	if !term.IsTerminal(fd) {
		return nil, ErrNotTerminal
	}
	saved, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("enabling raw mode: %w", err)
	}
	raw := &RawMode{fd: fd, saved: saved}

	t, err := unix.IoctlGetTermios(fd, ioctlGetTermios)
	if err != nil {
		_ = raw.Restore()
		return nil, fmt.Errorf("reading terminal attributes: %w", err)
	}
	t.Cc[unix.VMIN] = 0
	t.Cc[unix.VTIME] = deciseconds(timeout)
	if err := unix.IoctlSetTermios(fd, ioctlSetTermios, t); err != nil {
		_ = raw.Restore()
		return nil, fmt.Errorf("setting read timeout: %w", err)
	}
	return raw, nil
}

// Restore puts the terminal back into its original mode. It is safe to
// call more than once.
func (r *RawMode) Restore() error {
	if r == nil || r.saved == nil {
		return nil
	}
	saved := r.saved
	r.saved = nil
	if err := term.Restore(r.fd, saved); err != nil {
		return fmt.Errorf("restoring terminal: %w", err)
	}
	return nil
}

func deciseconds(d time.Duration) uint8 {
	ds := (d + 99*time.Millisecond) / (100 * time.Millisecond)
	return uint8(min(max(ds, 1), 255))
}

// Input reads single bytes from a raw-mode terminal.
type Input struct {
	fd  int
	buf [1]byte
}

// NewInput returns an Input reading from fd.
func NewInput(fd int) *Input {
	return &Input{fd: fd}
}

// ReadByte reads one byte. It returns ok == false when the terminal read
// timeout elapses first.
func (in *Input) ReadByte() (byte, bool, error) {
	n, err := unix.Read(in.fd, in.buf[:])
	if err != nil {
		if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EINTR) {
			return 0, false, nil
		}
		return 0, false, err
	}
	if n == 0 {
		return 0, false, nil
	}
	return in.buf[0], true, nil
}
