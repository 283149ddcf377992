package session

import (
	"errors"
	"io"
	"io/fs"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"termedit/internal/keys"
	"termedit/internal/viewport"
)

type recordingWriter struct {
	writes []string
	err    error
}

func (w *recordingWriter) Write(p []byte) (int, error) {
	if w.err != nil {
		return 0, w.err
	}
	w.writes = append(w.writes, string(p))
	return len(p), nil
}

func seedSession(t *testing.T, lines []string, cx, cy int) (*Session, *recordingWriter) {
	t.Helper()
	out := &recordingWriter{}
	s := New(Options{Rows: 12, Cols: 40, Version: "test", Out: out})
	for _, ln := range lines {
		s.rows.Append([]byte(ln))
	}
	s.cursor = viewport.Cursor{X: cx, Y: cy}
	return s, out
}

func press(t *testing.T, s *Session, ks ...keys.Key) {
	t.Helper()
	for _, k := range ks {
		quit, err := s.ProcessKey(k)
		require.NoError(t, err)
		require.False(t, quit)
		require.NoError(t, s.Refresh())
	}
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestOpenAndWrapRight(t *testing.T) {
	s, _ := seedSession(t, nil, 0, 0)
	require.NoError(t, s.Open(writeFile(t, "ab\tc\n\n")))

	require.Equal(t, 2, s.Rows().Len())
	assert.Equal(t, 4, s.Rows().Row(0).Size())
	assert.Equal(t, 9, s.Rows().Row(0).RSize())
	assert.Equal(t, "ab      c", string(s.Rows().Row(0).Render()))

	press(t, s, keys.End)
	assert.Equal(t, viewport.Cursor{X: 4, Y: 0, RX: 9}, s.Cursor())

	press(t, s, keys.ArrowRight)
	assert.Equal(t, 0, s.Cursor().X)
	assert.Equal(t, 1, s.Cursor().Y)
}

func TestOpenMissingFileIsFatal(t *testing.T) {
	s, _ := seedSession(t, nil, 0, 0)
	err := s.Open(filepath.Join(t.TempDir(), "missing.txt"))

	var fatal *FatalError
	require.ErrorAs(t, err, &fatal)
	assert.Equal(t, "open", fatal.Op)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.Empty(t, s.Filename())
}

func TestQuitClearsScreen(t *testing.T) {
	s, out := seedSession(t, []string{"unsaved"}, 3, 0)
	press(t, s, 'x')
	out.writes = nil

	quit, err := s.ProcessKey(QuitKey)
	require.NoError(t, err)
	assert.True(t, quit)
	assert.Equal(t, []string{"\x1b[2J", "\x1b[H"}, out.writes)
}

func TestArrowLeftWrapsToPreviousRow(t *testing.T) {
	s, _ := seedSession(t, []string{"hello", "x"}, 0, 1)
	press(t, s, keys.ArrowLeft)
	assert.Equal(t, 5, s.Cursor().X)
	assert.Equal(t, 0, s.Cursor().Y)

	s.cursor = viewport.Cursor{}
	press(t, s, keys.ArrowLeft)
	assert.Equal(t, viewport.Cursor{}, s.Cursor())
}

func TestArrowRightStopsOnVirtualRow(t *testing.T) {
	s, _ := seedSession(t, []string{"a"}, 1, 0)
	press(t, s, keys.ArrowRight)
	assert.Equal(t, 1, s.Cursor().Y)
	press(t, s, keys.ArrowRight)
	assert.Equal(t, 1, s.Cursor().Y)
	assert.Equal(t, 0, s.Cursor().X)
}

func TestVerticalMovesClampColumn(t *testing.T) {
	s, _ := seedSession(t, []string{"long line", "ab", "longer line"}, 8, 0)
	press(t, s, keys.ArrowDown)
	assert.Equal(t, 2, s.Cursor().X)
	press(t, s, keys.ArrowDown)
	assert.Equal(t, 2, s.Cursor().X, "column is not remembered across rows")

	press(t, s, keys.ArrowDown, keys.ArrowDown, keys.ArrowDown)
	assert.Equal(t, 3, s.Cursor().Y, "down stops on the virtual row")
	assert.Equal(t, 0, s.Cursor().X)

	press(t, s, keys.ArrowUp, keys.ArrowUp, keys.ArrowUp, keys.ArrowUp)
	assert.Equal(t, 0, s.Cursor().Y)
}

func TestHomeEnd(t *testing.T) {
	s, _ := seedSession(t, []string{"abc"}, 1, 0)
	press(t, s, keys.End)
	assert.Equal(t, 3, s.Cursor().X)
	press(t, s, keys.Home)
	assert.Equal(t, 0, s.Cursor().X)

	s.cursor = viewport.Cursor{Y: 1}
	press(t, s, keys.End)
	assert.Equal(t, 0, s.Cursor().X, "end is a no-op on the virtual row")
}

func TestPageUpDown(t *testing.T) {
	lines := make([]string, 50)
	s, _ := seedSession(t, lines, 0, 0)
	require.NoError(t, s.Refresh())
	require.Equal(t, 10, s.View().Rows)

	press(t, s, keys.PageDown)
	assert.Equal(t, 19, s.Cursor().Y)
	assert.Equal(t, 10, s.View().RowOff)

	press(t, s, keys.PageDown)
	assert.Equal(t, 29, s.Cursor().Y)
	assert.Equal(t, 20, s.View().RowOff)

	press(t, s, keys.PageUp)
	assert.Equal(t, 10, s.Cursor().Y)
	assert.Equal(t, 10, s.View().RowOff)

	for range 10 {
		press(t, s, keys.PageDown)
	}
	assert.Equal(t, 50, s.Cursor().Y)
}

func TestInsertOnEmptyDocument(t *testing.T) {
	s, _ := seedSession(t, nil, 0, 0)
	press(t, s, 'h', 'i')
	require.Equal(t, 1, s.Rows().Len())
	assert.Equal(t, "hi", string(s.Rows().Row(0).Chars()))
	assert.Equal(t, 2, s.Cursor().X)
}

func TestInsertPastEndAppendsRow(t *testing.T) {
	s, _ := seedSession(t, []string{"first"}, 0, 1)
	press(t, s, '\t', 'x')
	require.Equal(t, 2, s.Rows().Len())
	assert.Equal(t, "\tx", string(s.Rows().Row(1).Chars()))
	assert.Equal(t, 9, s.Cursor().RX)
}

func TestInsertMidRow(t *testing.T) {
	s, _ := seedSession(t, []string{"ac"}, 1, 0)
	press(t, s, 'b')
	assert.Equal(t, "abc", string(s.Rows().Row(0).Chars()))
	assert.Equal(t, 2, s.Cursor().X)
}

func TestNamedKeysWithoutActionAreIgnored(t *testing.T) {
	s, _ := seedSession(t, []string{"abc"}, 1, 0)
	press(t, s, keys.Escape, keys.Delete)
	assert.Equal(t, "abc", string(s.Rows().Row(0).Chars()))
	assert.Equal(t, 1, s.Cursor().X)
}

func TestCursorInvariantRandomWalk(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))
	s, _ := seedSession(t, []string{"short", "", "\ttabbed\tline", "a much longer line of text here"}, 0, 0)
	pool := []keys.Key{
		keys.ArrowUp, keys.ArrowDown, keys.ArrowLeft, keys.ArrowRight,
		keys.Home, keys.End, keys.PageUp, keys.PageDown, 'z', '\t',
	}
	for i := 0; i < 3000; i++ {
		press(t, s, pool[r.IntN(len(pool))])
		c := s.Cursor()
		require.GreaterOrEqual(t, c.Y, 0)
		require.LessOrEqual(t, c.Y, s.Rows().Len())
		size := 0
		if row := s.Rows().Row(c.Y); row != nil {
			size = row.Size()
		}
		require.GreaterOrEqual(t, c.X, 0)
		require.LessOrEqual(t, c.X, size)
		v := s.View()
		require.True(t, v.Contains(c), "cursor %+v outside %+v", c, v)
	}
}

func TestRefreshDrawsStatusMessage(t *testing.T) {
	now := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	out := &recordingWriter{}
	s := New(Options{Rows: 5, Cols: 30, Out: out, Now: func() time.Time { return now }})
	s.SetStatus("HELP: %s = quit", "Ctrl-Q")

	require.NoError(t, s.Refresh())
	require.Len(t, out.writes, 1)
	assert.Contains(t, out.writes[0], "\x1b[KHELP: Ctrl-Q = quit")
	assert.Equal(t, now, s.Status().Time)
}

func TestRefreshWriteErrorIsFatal(t *testing.T) {
	boom := errors.New("boom")
	s := New(Options{Rows: 5, Cols: 30, Out: &recordingWriter{err: boom}})
	err := s.Refresh()

	var fatal *FatalError
	require.ErrorAs(t, err, &fatal)
	assert.Equal(t, "write", fatal.Op)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "write: boom", err.Error())
}

type byteSource struct {
	data []byte
}

func (b *byteSource) ReadByte() (byte, bool, error) {
	if len(b.data) == 0 {
		return 0, false, io.EOF
	}
	c := b.data[0]
	b.data = b.data[1:]
	return c, true, nil
}

func TestRunUntilQuit(t *testing.T) {
	s, out := seedSession(t, nil, 0, 0)
	src := &byteSource{data: []byte("hi\x1b[Dy\x11ignored")}

	require.NoError(t, s.Run(keys.NewDecoder(src)))
	assert.Equal(t, "hyi", string(s.Rows().Row(0).Chars()))
	assert.Equal(t, "ignored", string(src.data))

	n := len(out.writes)
	require.GreaterOrEqual(t, n, 6)
	assert.Equal(t, []string{"\x1b[2J", "\x1b[H"}, out.writes[n-2:])
	assert.True(t, strings.HasPrefix(out.writes[0], "\x1b[?25l\x1b[H"))
}

func TestRunReadErrorIsFatal(t *testing.T) {
	s, _ := seedSession(t, nil, 0, 0)
	err := s.Run(keys.NewDecoder(&byteSource{data: []byte("ab")}))

	var fatal *FatalError
	require.ErrorAs(t, err, &fatal)
	assert.Equal(t, "read", fatal.Op)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, "ab", string(s.Rows().Row(0).Chars()))
}
