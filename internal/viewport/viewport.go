// Package viewport tracks the visible window of a document and keeps the
// cursor inside it.
package viewport

// Cursor is a position in logical coordinates. Y may equal the row count,
// addressing the empty virtual row past the end of the document. RX is the
// rendered column of X and is derived by Scroll.
type Cursor struct {
	X, Y int
	RX   int
}

// RowMeasurer exposes the row metrics Scroll needs.
type RowMeasurer interface {
	Len() int
	CxToRx(row, cx int) int
}

// Viewport is the top-left offset of the visible window, in rendered
// coordinates, and its size in text rows and columns.
type Viewport struct {
	RowOff, ColOff int
	Rows, Cols     int
}

// New returns a Viewport at the top of the document.
func New(rows, cols int) *Viewport {
	return &Viewport{Rows: max(rows, 1), Cols: max(cols, 1)}
}

// Scroll derives c.RX and moves the offsets so the cursor is visible.
func (v *Viewport) Scroll(c *Cursor, rs RowMeasurer) {
	c.RX = 0
	if c.Y < rs.Len() {
		c.RX = rs.CxToRx(c.Y, c.X)
	}

	if c.Y < v.RowOff {
		v.RowOff = c.Y
	}
	if c.Y >= v.RowOff+v.Rows {
		v.RowOff = c.Y - v.Rows + 1
	}
	if c.RX < v.ColOff {
		v.ColOff = c.RX
	}
	if c.RX >= v.ColOff+v.Cols {
		v.ColOff = c.RX - v.Cols + 1
	}
	v.RowOff = max(v.RowOff, 0)
	v.ColOff = max(v.ColOff, 0)
}

// Contains reports whether the rendered cursor position is on screen.
func (v *Viewport) Contains(c Cursor) bool {
	return c.Y >= v.RowOff && c.Y < v.RowOff+v.Rows &&
		c.RX >= v.ColOff && c.RX < v.ColOff+v.Cols
}
