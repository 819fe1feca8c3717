// Package frontend supplies the reference backend.TTYBackend,
// backend.VGABackend, and backend.FloppyDrive implementations cmd/ape
// wires by default, so the core is runnable as a program and not only
// usable as a library.
package frontend

import (
	"fmt"
	"io"
	"os"
	"sync"

	"golang.org/x/term"
)

// TermTTY is a backend.TTYBackend built on golang.org/x/term: raw-mode
// stdin so INT 16h keyboard reads see individual keystrokes rather than
// line-buffered input, and direct stdout writes with teletype-style
// CR/LF/backspace handling.
type TermTTY struct {
	in       *os.File
	out      io.Writer
	oldState *term.State
	raw      bool

	row, col int

	// startRd/chars back HasChar's non-blocking peek: a single goroutine
	// drains stdin one byte at a time onto chars, so ReadChar and HasChar
	// can both be expressed as channel operations instead of racing two
	// independent reads of the same fd.
	startRd sync.Once
	chars   chan byte
	peeked  byte
	hasPeek bool
}

// NewTermTTY wires stdin/stdout as the console. If stdin is not a
// terminal (e.g. piped input in a test harness), it falls back to
// line-buffered reads rather than failing.
func NewTermTTY() *TermTTY {
	return &TermTTY{in: os.Stdin, out: os.Stdout}
}

// EnterRawMode puts stdin into raw mode so ReadChar sees keystrokes
// immediately. Call before Start; call Close when the machine stops to
// restore the terminal.
func (t *TermTTY) EnterRawMode() error {
	if !term.IsTerminal(int(t.in.Fd())) {
		return nil
	}
	old, err := term.MakeRaw(int(t.in.Fd()))
	if err != nil {
		return err
	}
	t.oldState = old
	t.raw = true
	return nil
}

// Close restores the terminal's original mode.
func (t *TermTTY) Close() error {
	if !t.raw || t.oldState == nil {
		return nil
	}
	return term.Restore(int(t.in.Fd()), t.oldState)
}

func (t *TermTTY) WriteChar(c byte) {
	switch c {
	case '\r':
		fmt.Fprint(t.out, "\r")
		t.col = 0
	case '\n':
		fmt.Fprint(t.out, "\n")
		t.row++
		t.col = 0
	case '\b':
		if t.col > 0 {
			fmt.Fprint(t.out, "\b \b")
			t.col--
		}
	default:
		fmt.Fprintf(t.out, "%c", c)
		t.col++
	}
}

// startReader lazily launches the background goroutine that feeds chars.
// ReadChar and HasChar both depend on it rather than reading t.in directly.
func (t *TermTTY) startReader() {
	t.startRd.Do(func() {
		t.chars = make(chan byte, 16)
		go func() {
			buf := make([]byte, 1)
			for {
				n, err := t.in.Read(buf)
				if err != nil {
					close(t.chars)
					return
				}
				if n > 0 {
					t.chars <- buf[0]
				}
			}
		}()
	})
}

func (t *TermTTY) ReadChar() byte {
	t.startReader()
	if t.hasPeek {
		t.hasPeek = false
		return t.peeked
	}
	c, ok := <-t.chars
	if !ok {
		return 0
	}
	return c
}

// HasChar reports whether a keystroke is already buffered, without
// consuming it or blocking for one to arrive.
func (t *TermTTY) HasChar() bool {
	t.startReader()
	if t.hasPeek {
		return true
	}
	select {
	case c, ok := <-t.chars:
		if !ok {
			return false
		}
		t.peeked = c
		t.hasPeek = true
		return true
	default:
		return false
	}
}

func (t *TermTTY) Scroll(lines int, attr byte) {
	for i := 0; i < lines; i++ {
		fmt.Fprint(t.out, "\n")
	}
}

func (t *TermTTY) MoveCursor(x, y int) {
	fmt.Fprintf(t.out, "\x1b[%d;%dH", y+1, x+1)
	t.col, t.row = x, y
}

func (t *TermTTY) Clear() {
	fmt.Fprint(t.out, "\x1b[2J\x1b[H")
	t.row, t.col = 0, 0
}

func (t *TermTTY) CursorRow() int        { return t.row }
func (t *TermTTY) SetCursorRow(r int)    { t.row = r }
func (t *TermTTY) CursorColumn() int     { return t.col }
func (t *TermTTY) SetCursorColumn(c int) { t.col = c }
