package screen

import (
	"fmt"
	"time"

	"github.com/mattn/go-runewidth"

	"termedit/internal/rows"
	"termedit/internal/viewport"
)

// DefaultMessageTimeout is how long a status message stays visible.
const DefaultMessageTimeout = 5 * time.Second

const maxStatusName = 20

// State is the editor state a frame is drawn from. View must already be
// scrolled to Cursor.
type State struct {
	Rows        *rows.Store
	Cursor      viewport.Cursor
	View        viewport.Viewport
	Filename    string
	Message     string
	MessageTime time.Time
}

// Composer draws frames.
type Composer struct {
	Version        string
	MessageTimeout time.Duration
	Now            func() time.Time
}

// Compose appends a full frame for st to f: text rows, status line,
// message line and cursor placement, with the cursor hidden while drawing.
func (c *Composer) Compose(f *Frame, st State) {
	f.Set(HideCursor)
	f.Set(CursorHome)

	c.drawRows(f, st)
	c.drawStatusBar(f, st)
	c.drawMessageBar(f, st)

	f.MoveTo(st.Cursor.Y-st.View.RowOff+1, st.Cursor.RX-st.View.ColOff+1)
	f.Set(ShowCursor)
}

func (c *Composer) drawRows(f *Frame, st State) {
	v := st.View
	numrows := st.Rows.Len()
	for y := 0; y < v.Rows; y++ {
		fr := y + v.RowOff
		switch {
		case fr < numrows:
			render := st.Rows.Row(fr).Render()
			if v.ColOff < len(render) {
				line := render[v.ColOff:]
				if len(line) > v.Cols {
					line = line[:v.Cols]
				}
				for _, b := range line {
					_ = f.WriteByte(safeTermByte(b))
				}
			}
		case numrows == 0 && y == v.Rows/3:
			c.drawWelcome(f, v.Cols)
		default:
			_ = f.WriteByte('~')
		}
		f.Set(EraseLine)
		_, _ = f.WriteString("\r\n")
	}
}

func (c *Composer) drawWelcome(f *Frame, cols int) {
	msg := runewidth.Truncate("termedit -- version "+c.Version, cols, "")
	padding := (cols - runewidth.StringWidth(msg)) / 2
	if padding > 0 {
		_ = f.WriteByte('~')
		padding--
	}
	for ; padding > 0; padding-- {
		_ = f.WriteByte(' ')
	}
	_, _ = f.WriteString(msg)
}

func (c *Composer) drawStatusBar(f *Frame, st State) {
	cols := st.View.Cols
	numrows := st.Rows.Len()

	name := "[No Name]"
	if st.Filename != "" {
		name = runewidth.Truncate(safeTermString(st.Filename), maxStatusName, "")
	}
	left := runewidth.Truncate(fmt.Sprintf("%s - %d lines", name, numrows), cols, "")
	right := fmt.Sprintf("%d/%d", st.Cursor.Y+1, numrows)
	rightWidth := runewidth.StringWidth(right)

	f.Set(Reverse)
	_, _ = f.WriteString(left)
	for width := runewidth.StringWidth(left); width < cols; width++ {
		if cols-width == rightWidth {
			_, _ = f.WriteString(right)
			break
		}
		_ = f.WriteByte(' ')
	}
	f.Set(Reset)
	_, _ = f.WriteString("\r\n")
}

func (c *Composer) drawMessageBar(f *Frame, st State) {
	f.Set(EraseLine)
	if st.Message == "" || c.now().Sub(st.MessageTime) >= c.messageTimeout() {
		return
	}
	_, _ = f.WriteString(runewidth.Truncate(safeTermString(st.Message), st.View.Cols, ""))
}

func (c *Composer) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c *Composer) messageTimeout() time.Duration {
	if c.MessageTimeout > 0 {
		return c.MessageTimeout
	}
	return DefaultMessageTimeout
}

// safeTermByte keeps control bytes in the buffer from reaching the terminal.
func safeTermByte(c byte) byte {
	if c < 0x20 || c == 0x7f {
		return '?'
	}
	return c
}

func safeTermString(s string) string {
	b := []byte(s)
	for i := range b {
		b[i] = safeTermByte(b[i])
	}
	return string(b)
}
