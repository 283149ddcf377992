// Package session runs a single editing session: it owns the document, the
// cursor and the viewport, applies key events and redraws the screen.
package session

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"termedit/internal/keys"
	"termedit/internal/rows"
	"termedit/internal/screen"
	"termedit/internal/viewport"
)

// QuitKey ends the session.
var QuitKey = keys.Ctrl('q')

// reservedRows are the status and message lines below the text.
const reservedRows = 2

// FatalError is an error the session cannot continue after. The caller is
// expected to restore the terminal and exit non-zero.
type FatalError struct {
	Op  string
	Err error
}

func (e *FatalError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

// StatusMessage is a transient line shown under the status bar.
type StatusMessage struct {
	Text string
	Time time.Time
}

// Options configure a Session.
type Options struct {
	// Rows and Cols are the full terminal size.
	Rows, Cols     int
	TabStop        int
	Version        string
	MessageTimeout time.Duration
	Out            io.Writer
	Logger         *slog.Logger
	Now            func() time.Time
}

// Session is the state of one editor process.
type Session struct {
	rows     *rows.Store
	view     *viewport.Viewport
	cursor   viewport.Cursor
	filename string
	status   StatusMessage

	composer screen.Composer
	frame    screen.Frame
	out      io.Writer
	log      *slog.Logger
	now      func() time.Time
}

// New returns a Session with an empty document.
func New(opts Options) *Session {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	out := opts.Out
	if out == nil {
		out = io.Discard
	}
	return &Session{
		rows: rows.New(opts.TabStop),
		view: viewport.New(opts.Rows-reservedRows, opts.Cols),
		composer: screen.Composer{
			Version:        opts.Version,
			MessageTimeout: opts.MessageTimeout,
			Now:            now,
		},
		out: out,
		log: logger,
		now: now,
	}
}

// Rows returns the document.
func (s *Session) Rows() *rows.Store { return s.rows }

// Cursor returns the cursor position.
func (s *Session) Cursor() viewport.Cursor { return s.cursor }

// View returns the viewport.
func (s *Session) View() viewport.Viewport { return *s.view }

// Filename returns the name of the loaded file, if any.
func (s *Session) Filename() string { return s.filename }

// Status returns the current status message.
func (s *Session) Status() StatusMessage { return s.status }

// SetStatus sets the status message and restarts its timeout.
func (s *Session) SetStatus(format string, args ...any) {
	s.status = StatusMessage{Text: fmt.Sprintf(format, args...), Time: s.now()}
}

// Open loads the file at path into the document.
func (s *Session) Open(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return &FatalError{Op: "open", Err: err}
	}
	defer f.Close()
	if err := s.rows.Load(f); err != nil {
		return &FatalError{Op: "open", Err: err}
	}
	s.filename = path
	s.log.Info("opened file", "path", path, "rows", s.rows.Len())
	return nil
}

// Refresh scrolls the viewport to the cursor and redraws the screen with a
// single write.
func (s *Session) Refresh() error {
	s.view.Scroll(&s.cursor, s.rows)
	s.composer.Compose(&s.frame, screen.State{
		Rows:        s.rows,
		Cursor:      s.cursor,
		View:        *s.view,
		Filename:    s.filename,
		Message:     s.status.Text,
		MessageTime: s.status.Time,
	})
	if err := s.frame.Flush(s.out); err != nil {
		return &FatalError{Op: "write", Err: err}
	}
	return nil
}

// Run redraws, then applies keys from dec until the quit key is read. It
// returns nil on quit.
func (s *Session) Run(dec *keys.Decoder) error {
	if err := s.Refresh(); err != nil {
		return err
	}
	for k, err := range dec.Keys() {
		if err != nil {
			s.log.Error("reading input", "err", err)
			return &FatalError{Op: "read", Err: err}
		}
		quit, err := s.ProcessKey(k)
		if err != nil {
			return err
		}
		if quit {
			return nil
		}
		if err := s.Refresh(); err != nil {
			return err
		}
	}
	return nil
}
