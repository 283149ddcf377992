// Package rows holds the editor's line buffer: the raw bytes of every line
// and their tab-expanded render form.
package rows

import (
	"bufio"
	"errors"
	"fmt"
	"io"
)

// DefaultTabStop is the column width a tab advances to.
const DefaultTabStop = 8

// Row is one logical line of text.
type Row struct {
	chars  []byte
	render []byte
}

// Size returns the number of bytes in the row.
func (r *Row) Size() int { return len(r.chars) }

// RSize returns the number of bytes in the rendered row.
func (r *Row) RSize() int { return len(r.render) }

// Chars returns the row content. The slice must not be modified.
func (r *Row) Chars() []byte { return r.chars }

// Render returns the tab-expanded row. The slice must not be modified.
func (r *Row) Render() []byte { return r.render }

// Store is the ordered sequence of rows in a document.
type Store struct {
	rows    []Row
	tabStop int
}

// New returns an empty Store expanding tabs to tabStop columns.
func New(tabStop int) *Store {
	if tabStop < 1 {
		tabStop = DefaultTabStop
	}
	return &Store{tabStop: tabStop}
}

// Len returns the number of rows.
func (s *Store) Len() int { return len(s.rows) }

// TabStop returns the tab width used for rendering.
func (s *Store) TabStop() int { return s.tabStop }

// Row returns the row at idx, or nil when idx is out of range.
func (s *Store) Row(idx int) *Row {
	if idx < 0 || idx >= len(s.rows) {
		return nil
	}
	return &s.rows[idx]
}

// Append adds a row built from a copy of text and returns its index.
func (s *Store) Append(text []byte) int {
	r := Row{chars: append([]byte(nil), text...)}
	s.update(&r)
	s.rows = append(s.rows, r)
	return len(s.rows) - 1
}

// InsertChar inserts c into the row at byte offset at. Offsets outside the
// row insert at its end.
func (s *Store) InsertChar(row, at int, c byte) {
	r := s.Row(row)
	if r == nil {
		return
	}
	if at < 0 || at > len(r.chars) {
		at = len(r.chars)
	}
	r.chars = append(r.chars, 0)
	copy(r.chars[at+1:], r.chars[at:])
	r.chars[at] = c
	s.update(r)
}

// CxToRx converts a byte offset in a row into its rendered column.
func (s *Store) CxToRx(row, cx int) int {
	r := s.Row(row)
	if r == nil {
		return 0
	}
	if cx > len(r.chars) {
		cx = len(r.chars)
	}
	rx := 0
	for i := 0; i < cx; i++ {
		if r.chars[i] == '\t' {
			rx += (s.tabStop - 1) - (rx % s.tabStop)
		}
		rx++
	}
	return rx
}

func (s *Store) update(r *Row) {
	tabs := 0
	for _, c := range r.chars {
		if c == '\t' {
			tabs++
		}
	}
	render := make([]byte, 0, len(r.chars)+tabs*(s.tabStop-1))
	for _, c := range r.chars {
		if c != '\t' {
			render = append(render, c)
			continue
		}
		render = append(render, ' ')
		for len(render)%s.tabStop != 0 {
			render = append(render, ' ')
		}
	}
	r.render = render
}

// Load appends every line read from rd, dropping trailing newline and
// carriage-return bytes.
func (s *Store) Load(rd io.Reader) error {
	br := bufio.NewReader(rd)
	for {
		line, err := br.ReadBytes('\n')
		if len(line) > 0 {
			n := len(line)
			for n > 0 && (line[n-1] == '\n' || line[n-1] == '\r') {
				n--
			}
			s.Append(line[:n])
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading rows: %w", err)
		}
	}
}
