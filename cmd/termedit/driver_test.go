//go:build linux || darwin || dragonfly || freebsd || netbsd || openbsd

package main

import (
	"bytes"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/creack/pty"
	"github.com/stretchr/testify/require"
)

// driver runs the editor in-process on a pseudo terminal and talks to it
// through the master side.
type driver struct {
	t      *testing.T
	ptm    *os.File
	pts    *os.File
	stderr *os.File

	mu  sync.Mutex
	out bytes.Buffer

	done chan int
}

func startDriver(t *testing.T, args ...string) *driver {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	ptm, pts, err := pty.Open()
	if err != nil {
		t.Skipf("pty unavailable: %v", err)
	}
	require.NoError(t, pty.Setsize(ptm, &pty.Winsize{Rows: 24, Cols: 80}))
	stderr, err := os.CreateTemp(t.TempDir(), "stderr")
	require.NoError(t, err)

	d := &driver{t: t, ptm: ptm, pts: pts, stderr: stderr, done: make(chan int, 1)}
	t.Cleanup(func() {
		_ = pts.Close()
		_ = ptm.Close()
		_ = stderr.Close()
	})
	go d.drain()
	go func() {
		d.done <- run(args, pts, pts, stderr)
	}()
	return d
}

func (d *driver) drain() {
	buf := make([]byte, 8192)
	for {
		n, err := d.ptm.Read(buf)
		if n > 0 {
			d.mu.Lock()
			d.out.Write(buf[:n])
			d.mu.Unlock()
		}
		if err != nil {
			return
		}
	}
}

func (d *driver) output() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.out.String()
}

func (d *driver) waitFor(substr string) {
	d.t.Helper()
	require.Eventually(d.t, func() bool {
		return strings.Contains(d.output(), substr)
	}, 5*time.Second, 10*time.Millisecond, "waiting for %q in %q", substr, d.output())
}

func (d *driver) sendKeys(keys string) {
	d.t.Helper()
	_, err := d.ptm.Write(convertKeys(keys))
	require.NoError(d.t, err)
}

func (d *driver) wait() int {
	d.t.Helper()
	select {
	case code := <-d.done:
		return code
	case <-time.After(5 * time.Second):
		d.t.Fatalf("timed out waiting for exit; output %q", d.output())
		return -1
	}
}

func (d *driver) stderrText() string {
	d.t.Helper()
	b, err := os.ReadFile(d.stderr.Name())
	require.NoError(d.t, err)
	return string(b)
}

// convertKeys expands <Name> key notation into terminal input bytes.
func convertKeys(keys string) []byte {
	var out []byte
	for i := 0; i < len(keys); i++ {
		if keys[i] == '<' {
			end := strings.IndexByte(keys[i:], '>')
			if end != -1 {
				if b := specialKeyBytes(keys[i+1 : i+end]); b != nil {
					out = append(out, b...)
					i += end
					continue
				}
			}
		}
		out = append(out, keys[i])
	}
	return out
}

func specialKeyBytes(key string) []byte {
	switch key {
	case "ESC":
		return []byte("\x1b")
	case "Tab":
		return []byte("\t")
	case "Up":
		return []byte("\x1b[A")
	case "Down":
		return []byte("\x1b[B")
	case "Right":
		return []byte("\x1b[C")
	case "Left":
		return []byte("\x1b[D")
	case "Home":
		return []byte("\x1b[H")
	case "End":
		return []byte("\x1b[F")
	case "PageUp":
		return []byte("\x1b[5~")
	case "PageDown":
		return []byte("\x1b[6~")
	case "Del":
		return []byte("\x1b[3~")
	}
	if strings.HasPrefix(key, "C-") && len(key) == 3 {
		return []byte{key[2] & 0x1f}
	}
	return nil
}
