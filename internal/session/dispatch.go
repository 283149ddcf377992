package session

import (
	"io"

	"termedit/internal/keys"
	"termedit/internal/screen"
)

// ProcessKey applies one key to the session. It reports quit == true after
// clearing the screen for the quit key.
func (s *Session) ProcessKey(k keys.Key) (quit bool, err error) {
	s.log.Debug("key", "key", k)

	switch k {
	case QuitKey:
		s.log.Info("quit")
		return true, s.clearScreen()

	case keys.Home:
		s.cursor.X = 0
	case keys.End:
		if r := s.rows.Row(s.cursor.Y); r != nil {
			s.cursor.X = r.Size()
		}

	case keys.PageUp, keys.PageDown:
		move := keys.ArrowUp
		if k == keys.PageUp {
			s.cursor.Y = s.view.RowOff
		} else {
			move = keys.ArrowDown
			s.cursor.Y = min(s.view.RowOff+s.view.Rows-1, s.rows.Len())
		}
		for range s.view.Rows {
			s.moveCursor(move)
		}

	case keys.ArrowUp, keys.ArrowDown, keys.ArrowLeft, keys.ArrowRight:
		s.moveCursor(k)

	case keys.Escape, keys.Delete:

	default:
		if k.IsByte() {
			s.insertChar(byte(k))
		}
	}
	return false, nil
}

func (s *Session) clearScreen() error {
	if _, err := io.WriteString(s.out, string(screen.ClearScreen)); err != nil {
		return &FatalError{Op: "write", Err: err}
	}
	if _, err := io.WriteString(s.out, string(screen.CursorHome)); err != nil {
		return &FatalError{Op: "write", Err: err}
	}
	return nil
}

func (s *Session) moveCursor(k keys.Key) {
	c := &s.cursor
	row := s.rows.Row(c.Y)

	switch k {
	case keys.ArrowLeft:
		if c.X != 0 {
			c.X--
		} else if c.Y > 0 {
			c.Y--
			c.X = s.rows.Row(c.Y).Size()
		}
	case keys.ArrowRight:
		if row != nil && c.X < row.Size() {
			c.X++
		} else if row != nil && c.X == row.Size() {
			c.Y++
			c.X = 0
		}
	case keys.ArrowUp:
		if c.Y != 0 {
			c.Y--
		}
	case keys.ArrowDown:
		if c.Y < s.rows.Len() {
			c.Y++
		}
	}

	rowLen := 0
	if row := s.rows.Row(c.Y); row != nil {
		rowLen = row.Size()
	}
	if c.X > rowLen {
		c.X = rowLen
	}
}

// insertChar types c at the cursor. Typing on the virtual row past the end
// of the document appends a row first.
func (s *Session) insertChar(c byte) {
	if s.cursor.Y == s.rows.Len() {
		s.rows.Append(nil)
	}
	s.rows.InsertChar(s.cursor.Y, s.cursor.X, c)
	s.cursor.X++
}
