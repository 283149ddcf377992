//go:build linux || darwin || dragonfly || freebsd || netbsd || openbsd

package terminal

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"golang.org/x/sys/unix"

	"termedit/internal/keys"
	"termedit/internal/screen"
)

// ErrNoSize is returned when the terminal reports a zero width.
var ErrNoSize = errors.New("terminal reported no size")

const maxReportLen = 31

// Size returns the window size of the terminal on fd.
func Size(fd int) (rows, cols int, err error) {
	ws, err := unix.IoctlGetWinsize(fd, unix.TIOCGWINSZ)
	if err != nil {
		return 0, 0, fmt.Errorf("getting window size: %w", err)
	}
	if ws.Col == 0 {
		return 0, 0, ErrNoSize
	}
	return int(ws.Row), int(ws.Col), nil
}

// WindowSize returns the size of the terminal on fd, falling back to
// ProbeSize when the terminal cannot report it directly.
func WindowSize(fd int, in keys.Source, out io.Writer) (rows, cols int, err error) {
	rows, cols, err = Size(fd)
	if err == nil {
		return rows, cols, nil
	}
	return ProbeSize(in, out)
}

// ProbeSize moves the cursor to the bottom-right corner and reads back its
// position from the terminal.
func ProbeSize(in keys.Source, out io.Writer) (rows, cols int, err error) {
	if _, err := io.WriteString(out, string(screen.ProbeCorner)); err != nil {
		return 0, 0, fmt.Errorf("probing window size: %w", err)
	}
	if _, err := io.WriteString(out, string(screen.CursorReport)); err != nil {
		return 0, 0, fmt.Errorf("probing window size: %w", err)
	}

	var report []byte
	for len(report) < maxReportLen {
		b, ok, err := in.ReadByte()
		if err != nil {
			return 0, 0, fmt.Errorf("reading cursor position: %w", err)
		}
		if !ok || b == 'R' {
			break
		}
		report = append(report, b)
	}
	return ParseCursorReport(report)
}

// ParseCursorReport parses a cursor position report of the form
// ESC [ rows ; cols, without the trailing R.
func ParseCursorReport(report []byte) (rows, cols int, err error) {
	rest, ok := bytes.CutPrefix(report, []byte("\x1b["))
	if !ok {
		return 0, 0, fmt.Errorf("malformed cursor position report %q", report)
	}
	if _, err := fmt.Sscanf(string(rest), "%d;%d", &rows, &cols); err != nil {
		return 0, 0, fmt.Errorf("malformed cursor position report %q: %w", report, err)
	}
	return rows, cols, nil
}
